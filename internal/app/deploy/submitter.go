package deploy

import (
	"context"
	"encoding/base64"
	"fmt"

	"github.com/osvaldoandrade/movectl/internal/domain"
)

// Submitter resolves, encodes, signs and submits transactions for one
// account.
type Submitter struct {
	encoder Encoder
	signer  Signer
	ledger  Ledger
	hasher  Hasher
	sender  string
}

// NewSubmitter binds the submission ports. sender overrides the address of
// unsigned transactions only; signer may be nil when only unsigned
// transactions are prepared.
func NewSubmitter(encoder Encoder, signer Signer, ledger Ledger, hasher Hasher, sender string) *Submitter {
	return &Submitter{
		encoder: encoder,
		signer:  signer,
		ledger:  ledger,
		hasher:  hasher,
		sender:  sender,
	}
}

// Sender is the address a transaction is built for. A signed transaction is
// always sent from the signer's own address.
func (s *Submitter) Sender(signed bool) (string, error) {
	if signed {
		if s.signer == nil {
			return "", ErrSignerRequired
		}
		return s.signer.Address(), nil
	}
	if s.sender != "" {
		return s.sender, nil
	}
	if s.signer != nil {
		return s.signer.Address(), nil
	}
	return "", ErrSenderRequired
}

// Submission is what happened to one transaction. TxBytes and TxHash are set
// once encoding succeeded, even when submission then failed.
type Submission struct {
	TxBytes  []byte
	TxHash   string
	Response domain.TransactionResponse
}

func (s *Submitter) Prepare(ctx context.Context, tx domain.Transaction) (PreparedTransaction, error) {
	tx, err := s.resolve(ctx, tx)
	if err != nil {
		return PreparedTransaction{}, err
	}
	encoded, err := s.encoder.Encode(tx)
	if err != nil {
		return PreparedTransaction{}, fmt.Errorf("encode transaction: %w", err)
	}
	return PreparedTransaction{
		Sender:  tx.Sender,
		TxBytes: base64.StdEncoding.EncodeToString(encoded),
		TxHash:  s.hasher.SumHex(encoded),
	}, nil
}

func (s *Submitter) Submit(ctx context.Context, tx domain.Transaction) (Submission, error) {
	if s.signer == nil {
		return Submission{}, ErrSignerRequired
	}
	if tx.Sender != s.signer.Address() {
		return Submission{}, fmt.Errorf("%w: transaction sender %s is not the signer %s", ErrSignerMismatch, tx.Sender, s.signer.Address())
	}

	tx, err := s.resolve(ctx, tx)
	if err != nil {
		return Submission{}, err
	}
	encoded, err := s.encoder.Encode(tx)
	if err != nil {
		return Submission{}, fmt.Errorf("encode transaction: %w", err)
	}
	sub := Submission{TxBytes: encoded, TxHash: s.hasher.SumHex(encoded)}

	signature, err := s.signer.Sign(ctx, encoded)
	if err != nil {
		return sub, fmt.Errorf("sign transaction: %w", err)
	}

	resp, err := s.ledger.Execute(ctx, domain.ExecuteRequest{
		TxBytes:    encoded,
		Signatures: []string{signature},
	})
	if err != nil {
		return sub, fmt.Errorf("execute transaction: %w", err)
	}
	sub.Response = resp
	return sub, nil
}

// resolve fills in what only the ledger knows: the current version of every
// object input, the reference gas price, and coins covering the budget.
func (s *Submitter) resolve(ctx context.Context, tx domain.Transaction) (domain.Transaction, error) {
	if s.ledger == nil {
		return tx, ErrLedgerRequired
	}

	inputs := append([]domain.Input(nil), tx.Inputs...)
	for i, in := range inputs {
		if in.Resolved() {
			continue
		}
		ref, err := s.ledger.ObjectRef(ctx, in.ObjectID)
		if err != nil {
			return tx, fmt.Errorf("resolve object %s: %w", in.ObjectID, err)
		}
		inputs[i].Version = ref.Version
		inputs[i].Digest = ref.Digest
	}
	tx.Inputs = inputs

	if tx.GasPrice == 0 {
		price, err := s.ledger.ReferenceGasPrice(ctx)
		if err != nil {
			return tx, fmt.Errorf("reference gas price: %w", err)
		}
		tx.GasPrice = price
	}

	if len(tx.GasPayment) == 0 {
		coins, err := s.ledger.GasCoins(ctx, tx.Sender)
		if err != nil {
			return tx, fmt.Errorf("list gas coins: %w", err)
		}
		payment, err := selectGasCoins(coins, tx.GasBudget, inputs)
		if err != nil {
			return tx, fmt.Errorf("%w: sender %s", err, tx.Sender)
		}
		tx.GasPayment = payment
	}
	return tx, nil
}

// selectGasCoins takes coins in the order listed until their balance covers
// budget. Coins already used as transaction inputs are skipped.
func selectGasCoins(coins []domain.Coin, budget uint64, inputs []domain.Input) ([]domain.ObjectRef, error) {
	used := map[string]bool{}
	for _, in := range inputs {
		if in.Kind == domain.InputObject {
			used[in.ObjectID] = true
		}
	}

	var payment []domain.ObjectRef
	var total uint64
	for _, coin := range coins {
		if used[coin.Ref.ObjectID] || coin.Balance == 0 {
			continue
		}
		payment = append(payment, coin.Ref)
		total += coin.Balance
		if total >= budget {
			return payment, nil
		}
	}
	return nil, fmt.Errorf("%w: have %d, need %d", ErrInsufficientGas, total, budget)
}

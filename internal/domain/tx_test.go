package domain

import (
	"errors"
	"testing"
)

func TestTransactionBuilderUpgradeThreadsTicketAndReceipt(t *testing.T) {
	b := NewTransactionBuilder("0xa11ce", 1000)
	ticket := b.MoveCall("0x2::package::authorize_upgrade", b.Object("0xcap"), b.PureU8(0), b.PureBytes([]byte{1, 2, 3}))
	receipt := b.Upgrade([]string{"AQID"}, []string{"0x1", "0x2"}, "0xpkg", ticket)
	b.MoveCall("0x2::package::commit_upgrade", b.Object("0xcap"), receipt)

	tx, err := b.Build()
	if err != nil {
		t.Fatalf("Build returned error: %v", err)
	}
	if len(tx.Commands) != 3 {
		t.Fatalf("expected 3 commands, got %d", len(tx.Commands))
	}
	if tx.Commands[1].Ticket != ResultArg(0) {
		t.Fatalf("expected ticket from command 0, got %+v", tx.Commands[1].Ticket)
	}
	if tx.Commands[2].Arguments[1] != ResultArg(1) {
		t.Fatalf("expected receipt from command 1, got %+v", tx.Commands[2].Arguments[1])
	}
	if got := tx.Inputs[2].Pure; len(got) != 4 || got[0] != 3 {
		t.Fatalf("expected length-prefixed digest, got %v", got)
	}
}

func TestTransactionValidateRejectsForwardResult(t *testing.T) {
	tx := Transaction{
		Sender:    "0xa11ce",
		GasBudget: 1,
		Commands: []Command{
			{Kind: CommandUpgrade, Modules: [][]byte{{1}}, Package: "0xpkg", Ticket: ResultArg(0)},
		},
	}
	if err := tx.Validate(); !errors.Is(err, ErrResultNotAvailable) {
		t.Fatalf("expected ErrResultNotAvailable, got %v", err)
	}
}

func TestTransactionValidateRequiresSender(t *testing.T) {
	tx := Transaction{GasBudget: 1, Commands: []Command{{Kind: CommandPublish, Modules: [][]byte{{1}}}}}
	if err := tx.Validate(); err != ErrSenderRequired {
		t.Fatalf("expected ErrSenderRequired, got %v", err)
	}
}

func TestTransactionBuilderRejectsBadModule(t *testing.T) {
	b := NewTransactionBuilder("0xa11ce", 1)
	b.Publish([]string{"not base64!"}, nil)
	if _, err := b.Build(); err == nil {
		t.Fatalf("expected error for invalid module encoding")
	}
}

func TestTransactionBuilderRejectsBadTarget(t *testing.T) {
	b := NewTransactionBuilder("0xa11ce", 1)
	b.MoveCall("0x2::package")
	if _, err := b.Build(); !errors.Is(err, ErrInvalidTarget) {
		t.Fatalf("expected ErrInvalidTarget, got %v", err)
	}
}

func TestDecodeAddressPadsShortForm(t *testing.T) {
	raw, err := DecodeAddress("0x2")
	if err != nil {
		t.Fatalf("DecodeAddress returned error: %v", err)
	}
	if len(raw) != AddressLength || raw[AddressLength-1] != 2 {
		t.Fatalf("unexpected address bytes %x", raw)
	}
	for _, b := range raw[:AddressLength-1] {
		if b != 0 {
			t.Fatalf("expected zero padding, got %x", raw)
		}
	}
}

func TestTransactionBuilderReusesObjectInput(t *testing.T) {
	b := NewTransactionBuilder("0xa11ce", 1)
	first := b.Object("0xca5")
	b.PureU8(0)
	second := b.Object("0xca5")
	if first != second || first != InputArg(0) {
		t.Fatalf("expected the same input for one object, got %+v and %+v", first, second)
	}
}

func TestTransactionCheckResolved(t *testing.T) {
	b := NewTransactionBuilder("0xa11ce", 1)
	b.MoveCall("0x2::package::commit_upgrade", b.Object("0xca5"))
	tx, err := b.Build()
	if err != nil {
		t.Fatalf("Build returned error: %v", err)
	}

	if err := tx.CheckResolved(); !errors.Is(err, ErrGasPriceRequired) {
		t.Fatalf("expected ErrGasPriceRequired, got %v", err)
	}
	tx.GasPrice = 750
	if err := tx.CheckResolved(); !errors.Is(err, ErrGasPaymentRequired) {
		t.Fatalf("expected ErrGasPaymentRequired, got %v", err)
	}
	tx.GasPayment = []ObjectRef{{ObjectID: "0x9a5", Version: 3, Digest: "11111111111111111111111111111111"}}
	if err := tx.CheckResolved(); !errors.Is(err, ErrObjectUnresolved) {
		t.Fatalf("expected ErrObjectUnresolved, got %v", err)
	}
	tx.Inputs[0].Version = 7
	tx.Inputs[0].Digest = "11111111111111111111111111111111"
	if err := tx.CheckResolved(); err != nil {
		t.Fatalf("CheckResolved returned error: %v", err)
	}
}

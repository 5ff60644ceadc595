package txcodec

import (
	"errors"
	"fmt"

	"github.com/fardream/go-bcs/bcs"
	"github.com/mr-tron/base58"
	"github.com/osvaldoandrade/movectl/internal/domain"
)

const digestLength = 32

var ErrInvalidDigest = errors.New("invalid object digest")

type Encoder struct{}

func (Encoder) Encode(tx domain.Transaction) ([]byte, error) {
	return Encode(tx)
}

// Encode serializes tx as BCS TransactionData, the bytes a fullnode executes
// and a wallet signs. tx must be valid and resolved.
func Encode(tx domain.Transaction) ([]byte, error) {
	if err := tx.Validate(); err != nil {
		return nil, err
	}
	if err := tx.CheckResolved(); err != nil {
		return nil, err
	}

	data, err := toWire(tx)
	if err != nil {
		return nil, err
	}
	out, err := bcs.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("encode transaction: %w", err)
	}
	return out, nil
}

func toWire(tx domain.Transaction) (transactionData, error) {
	sender, err := toAddress(tx.Sender)
	if err != nil {
		return transactionData{}, fmt.Errorf("sender: %w", err)
	}

	payment := make([]objectRef, 0, len(tx.GasPayment))
	for i, ref := range tx.GasPayment {
		wire, err := toObjectRef(ref)
		if err != nil {
			return transactionData{}, fmt.Errorf("gas payment %d: %w", i, err)
		}
		payment = append(payment, wire)
	}

	inputs := make([]callArg, 0, len(tx.Inputs))
	for i, in := range tx.Inputs {
		arg, err := toCallArg(in)
		if err != nil {
			return transactionData{}, fmt.Errorf("input %d: %w", i, err)
		}
		inputs = append(inputs, arg)
	}

	commands := make([]command, 0, len(tx.Commands))
	for i, cmd := range tx.Commands {
		wire, err := toCommand(cmd)
		if err != nil {
			return transactionData{}, fmt.Errorf("command %d: %w", i, err)
		}
		commands = append(commands, wire)
	}

	return transactionData{V1: &transactionDataV1{
		Kind: transactionKind{ProgrammableTransaction: &programmableTransaction{
			Inputs:   inputs,
			Commands: commands,
		}},
		Sender: sender,
		GasData: gasData{
			Payment: payment,
			Owner:   sender,
			Price:   tx.GasPrice,
			Budget:  tx.GasBudget,
		},
		Expiration: transactionExpiration{None: &unit{}},
	}}, nil
}

func toCallArg(in domain.Input) (callArg, error) {
	switch in.Kind {
	case domain.InputPure:
		pure := append([]byte{}, in.Pure...)
		return callArg{Pure: &pure}, nil
	case domain.InputObject:
		ref, err := toObjectRef(domain.ObjectRef{ObjectID: in.ObjectID, Version: in.Version, Digest: in.Digest})
		if err != nil {
			return callArg{}, err
		}
		return callArg{Object: &objectArg{ImmOrOwnedObject: &ref}}, nil
	default:
		return callArg{}, fmt.Errorf("unknown input kind %d", in.Kind)
	}
}

func toCommand(cmd domain.Command) (command, error) {
	switch cmd.Kind {
	case domain.CommandMoveCall:
		pkg, err := toAddress(cmd.Package)
		if err != nil {
			return command{}, err
		}
		return command{MoveCall: &moveCall{
			Package:       pkg,
			Module:        cmd.Module,
			Function:      cmd.Function,
			TypeArguments: []typeTag{},
			Arguments:     toArguments(cmd.Arguments),
		}}, nil
	case domain.CommandTransferObjects:
		return command{TransferObjects: &transferObjects{
			Objects:   toArguments(cmd.Arguments),
			Recipient: toArgument(cmd.Recipient),
		}}, nil
	case domain.CommandPublish:
		deps, err := toAddresses(cmd.Dependencies)
		if err != nil {
			return command{}, err
		}
		return command{Publish: &publish{Modules: cmd.Modules, Dependencies: deps}}, nil
	case domain.CommandUpgrade:
		deps, err := toAddresses(cmd.Dependencies)
		if err != nil {
			return command{}, err
		}
		pkg, err := toAddress(cmd.Package)
		if err != nil {
			return command{}, err
		}
		return command{Upgrade: &upgrade{
			Modules:      cmd.Modules,
			Dependencies: deps,
			Package:      pkg,
			Ticket:       toArgument(cmd.Ticket),
		}}, nil
	default:
		return command{}, fmt.Errorf("%w: %s", domain.ErrInvalidCommand, cmd.Kind)
	}
}

func toArguments(args []domain.Argument) []argument {
	out := make([]argument, 0, len(args))
	for _, arg := range args {
		out = append(out, toArgument(arg))
	}
	return out
}

func toArgument(arg domain.Argument) argument {
	index := arg.Index
	switch arg.Kind {
	case domain.ArgInput:
		return argument{Input: &index}
	case domain.ArgResult:
		return argument{Result: &index}
	case domain.ArgNestedResult:
		return argument{NestedResult: &nestedResult{Command: arg.Index, Result: arg.Nested}}
	default:
		return argument{GasCoin: &unit{}}
	}
}

func toObjectRef(ref domain.ObjectRef) (objectRef, error) {
	id, err := toAddress(ref.ObjectID)
	if err != nil {
		return objectRef{}, err
	}
	digest, err := base58.Decode(ref.Digest)
	if err != nil {
		return objectRef{}, fmt.Errorf("%w %q: %v", ErrInvalidDigest, ref.Digest, err)
	}
	if len(digest) != digestLength {
		return objectRef{}, fmt.Errorf("%w %q: %d bytes", ErrInvalidDigest, ref.Digest, len(digest))
	}
	return objectRef{ObjectID: id, Version: ref.Version, Digest: digest}, nil
}

func toAddresses(values []string) ([]address, error) {
	out := make([]address, 0, len(values))
	for _, value := range values {
		addr, err := toAddress(value)
		if err != nil {
			return nil, err
		}
		out = append(out, addr)
	}
	return out, nil
}

func toAddress(value string) (address, error) {
	raw, err := domain.DecodeAddress(value)
	if err != nil {
		return address{}, err
	}
	var addr address
	copy(addr[:], raw)
	return addr, nil
}

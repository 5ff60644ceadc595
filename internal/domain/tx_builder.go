package domain

import (
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"strings"
)

const AddressLength = 32

// TransactionBuilder assembles a programmable transaction. Each command
// method returns the Argument addressing that command's result, so handles
// like upgrade tickets can only be threaded forward within the same builder.
type TransactionBuilder struct {
	tx  Transaction
	err error
}

func NewTransactionBuilder(sender string, gasBudget uint64) *TransactionBuilder {
	return &TransactionBuilder{tx: Transaction{Sender: sender, GasBudget: gasBudget}}
}

// Object adds an owned object input. An object already added is returned
// as the same input, since the ledger rejects duplicate object inputs.
func (b *TransactionBuilder) Object(id string) Argument {
	for i, in := range b.tx.Inputs {
		if in.Kind == InputObject && in.ObjectID == id {
			return InputArg(uint16(i))
		}
	}
	return b.addInput(Input{Kind: InputObject, ObjectID: id})
}

func (b *TransactionBuilder) PureU8(value uint8) Argument {
	return b.addInput(Input{Kind: InputPure, Pure: []byte{value}})
}

// PureBytes adds a vector<u8> input: ULEB128 length prefix followed by the
// bytes.
func (b *TransactionBuilder) PureBytes(value []byte) Argument {
	encoded := appendULEB128(nil, uint64(len(value)))
	encoded = append(encoded, value...)
	return b.addInput(Input{Kind: InputPure, Pure: encoded})
}

func (b *TransactionBuilder) PureAddress(address string) Argument {
	raw, err := DecodeAddress(address)
	if err != nil {
		b.fail(err)
		return Argument{}
	}
	return b.addInput(Input{Kind: InputPure, Pure: raw})
}

func (b *TransactionBuilder) Publish(modules []string, dependencies []string) Argument {
	decoded := b.decodeModules(modules)
	return b.addCommand(Command{
		Kind:         CommandPublish,
		Modules:      decoded,
		Dependencies: append([]string(nil), dependencies...),
	})
}

func (b *TransactionBuilder) Upgrade(modules []string, dependencies []string, packageID string, ticket Argument) Argument {
	decoded := b.decodeModules(modules)
	return b.addCommand(Command{
		Kind:         CommandUpgrade,
		Modules:      decoded,
		Dependencies: append([]string(nil), dependencies...),
		Package:      packageID,
		Ticket:       ticket,
	})
}

// MoveCall adds a call to target, written as package::module::function.
func (b *TransactionBuilder) MoveCall(target string, args ...Argument) Argument {
	parts := strings.Split(target, "::")
	if len(parts) != 3 || parts[0] == "" || parts[1] == "" || parts[2] == "" {
		b.fail(fmt.Errorf("%w: %q", ErrInvalidTarget, target))
		return Argument{}
	}
	return b.addCommand(Command{
		Kind:      CommandMoveCall,
		Package:   parts[0],
		Module:    parts[1],
		Function:  parts[2],
		Arguments: append([]Argument(nil), args...),
	})
}

func (b *TransactionBuilder) TransferObjects(objects []Argument, recipient Argument) {
	b.addCommand(Command{
		Kind:      CommandTransferObjects,
		Arguments: append([]Argument(nil), objects...),
		Recipient: recipient,
	})
}

func (b *TransactionBuilder) Build() (Transaction, error) {
	if b.err != nil {
		return Transaction{}, b.err
	}
	if err := b.tx.Validate(); err != nil {
		return Transaction{}, err
	}
	return b.tx, nil
}

func (b *TransactionBuilder) addInput(input Input) Argument {
	b.tx.Inputs = append(b.tx.Inputs, input)
	return InputArg(uint16(len(b.tx.Inputs) - 1))
}

func (b *TransactionBuilder) addCommand(cmd Command) Argument {
	b.tx.Commands = append(b.tx.Commands, cmd)
	return ResultArg(uint16(len(b.tx.Commands) - 1))
}

func (b *TransactionBuilder) decodeModules(modules []string) [][]byte {
	decoded := make([][]byte, 0, len(modules))
	for i, module := range modules {
		raw, err := base64.StdEncoding.DecodeString(module)
		if err != nil {
			b.fail(fmt.Errorf("decode module %d: %w", i, err))
			return nil
		}
		decoded = append(decoded, raw)
	}
	return decoded
}

func (b *TransactionBuilder) fail(err error) {
	if b.err == nil {
		b.err = err
	}
}

// DecodeAddress parses a 0x-prefixed hex address, left-padding short forms
// such as 0x2 to the full address length.
func DecodeAddress(address string) ([]byte, error) {
	trimmed := strings.TrimPrefix(strings.TrimSpace(address), "0x")
	if trimmed == "" || len(trimmed) > AddressLength*2 {
		return nil, fmt.Errorf("invalid address %q", address)
	}
	if len(trimmed)%2 == 1 {
		trimmed = "0" + trimmed
	}
	raw, err := hex.DecodeString(trimmed)
	if err != nil {
		return nil, fmt.Errorf("invalid address %q: %w", address, err)
	}
	out := make([]byte, AddressLength)
	copy(out[AddressLength-len(raw):], raw)
	return out, nil
}

func appendULEB128(dst []byte, value uint64) []byte {
	for {
		b := byte(value & 0x7f)
		value >>= 7
		if value != 0 {
			dst = append(dst, b|0x80)
			continue
		}
		return append(dst, b)
	}
}

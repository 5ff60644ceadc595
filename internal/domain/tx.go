package domain

import (
	"errors"
	"fmt"
)

type CommandKind int

const (
	CommandUnknown CommandKind = iota
	CommandPublish
	CommandUpgrade
	CommandMoveCall
	CommandTransferObjects
)

var (
	ErrSenderRequired     = errors.New("transaction sender is required")
	ErrGasBudgetRequired  = errors.New("gas budget is required")
	ErrNoCommands         = errors.New("transaction has no commands")
	ErrInvalidCommand     = errors.New("invalid command")
	ErrModulesRequired    = errors.New("modules are required")
	ErrInputOutOfRange    = errors.New("input argument out of range")
	ErrResultNotAvailable = errors.New("result argument refers to a command that has not run")
	ErrInvalidTarget      = errors.New("invalid move call target")
	ErrGasPriceRequired   = errors.New("gas price is required")
	ErrGasPaymentRequired = errors.New("gas payment is required")
	ErrObjectUnresolved   = errors.New("object input has no version or digest")
)

func (k CommandKind) IsValid() bool {
	return k >= CommandPublish && k <= CommandTransferObjects
}

func (k CommandKind) String() string {
	switch k {
	case CommandPublish:
		return "publish"
	case CommandUpgrade:
		return "upgrade"
	case CommandMoveCall:
		return "move_call"
	case CommandTransferObjects:
		return "transfer_objects"
	default:
		return "unknown"
	}
}

type ArgumentKind int

const (
	ArgGasCoin ArgumentKind = iota
	ArgInput
	ArgResult
	ArgNestedResult
)

// Argument addresses a transaction input or the output of an earlier command
// in the same transaction. Upgrade tickets and receipts only ever exist as
// Result arguments.
type Argument struct {
	Kind   ArgumentKind
	Index  uint16
	Nested uint16
}

func GasCoin() Argument           { return Argument{Kind: ArgGasCoin} }
func InputArg(i uint16) Argument  { return Argument{Kind: ArgInput, Index: i} }
func ResultArg(i uint16) Argument { return Argument{Kind: ArgResult, Index: i} }
func NestedResultArg(i, j uint16) Argument {
	return Argument{Kind: ArgNestedResult, Index: i, Nested: j}
}

type InputKind int

const (
	InputPure InputKind = iota
	InputObject
)

// Input is a pure value or an owned object. Object inputs start with only
// ObjectID set; Version and Digest are filled in from the ledger before the
// transaction is encoded.
type Input struct {
	Kind     InputKind
	Pure     []byte
	ObjectID string
	Version  uint64
	Digest   string
}

func (in Input) Resolved() bool {
	return in.Kind != InputObject || in.Digest != ""
}

// ObjectRef pins an object to one version. Digest is base58, as the ledger
// reports it.
type ObjectRef struct {
	ObjectID string
	Version  uint64
	Digest   string
}

// Coin is a gas coin owned by the sender.
type Coin struct {
	Ref     ObjectRef
	Balance uint64
}

// Command is one step of a programmable transaction. Which fields are used
// depends on Kind:
//
//	publish:          Modules, Dependencies
//	upgrade:          Modules, Dependencies, Package, Ticket
//	move_call:        Package, Module, Function, Arguments
//	transfer_objects: Arguments (objects), Recipient
type Command struct {
	Kind         CommandKind
	Modules      [][]byte
	Dependencies []string
	Package      string
	Module       string
	Function     string
	Arguments    []Argument
	Ticket       Argument
	Recipient    Argument
}

// Transaction is a programmable transaction. The gas owner is always the
// sender and transactions never expire.
type Transaction struct {
	Sender     string
	GasBudget  uint64
	GasPrice   uint64
	GasPayment []ObjectRef
	Inputs     []Input
	Commands   []Command
}

// CheckResolved reports whether everything the ledger has to supply is
// present: gas price, gas payment, and the version of every object input.
func (t Transaction) CheckResolved() error {
	if t.GasPrice == 0 {
		return ErrGasPriceRequired
	}
	if len(t.GasPayment) == 0 {
		return ErrGasPaymentRequired
	}
	for i, in := range t.Inputs {
		if !in.Resolved() {
			return fmt.Errorf("input %d (%s): %w", i, in.ObjectID, ErrObjectUnresolved)
		}
	}
	return nil
}

func (t Transaction) Validate() error {
	if t.Sender == "" {
		return ErrSenderRequired
	}
	if t.GasBudget == 0 {
		return ErrGasBudgetRequired
	}
	if len(t.Commands) == 0 {
		return ErrNoCommands
	}

	for i, cmd := range t.Commands {
		if !cmd.Kind.IsValid() {
			return fmt.Errorf("command %d: %w", i, ErrInvalidCommand)
		}
		switch cmd.Kind {
		case CommandPublish:
			if len(cmd.Modules) == 0 {
				return fmt.Errorf("command %d: %w", i, ErrModulesRequired)
			}
		case CommandUpgrade:
			if len(cmd.Modules) == 0 {
				return fmt.Errorf("command %d: %w", i, ErrModulesRequired)
			}
			if cmd.Package == "" {
				return fmt.Errorf("command %d: upgrade package is required: %w", i, ErrInvalidCommand)
			}
			if err := t.checkArgument(i, cmd.Ticket); err != nil {
				return fmt.Errorf("command %d ticket: %w", i, err)
			}
		case CommandMoveCall:
			if cmd.Package == "" || cmd.Module == "" || cmd.Function == "" {
				return fmt.Errorf("command %d: %w", i, ErrInvalidTarget)
			}
		case CommandTransferObjects:
			if len(cmd.Arguments) == 0 {
				return fmt.Errorf("command %d: no objects to transfer: %w", i, ErrInvalidCommand)
			}
			if err := t.checkArgument(i, cmd.Recipient); err != nil {
				return fmt.Errorf("command %d recipient: %w", i, err)
			}
		}
		for _, arg := range cmd.Arguments {
			if err := t.checkArgument(i, arg); err != nil {
				return fmt.Errorf("command %d: %w", i, err)
			}
		}
	}
	return nil
}

// checkArgument rejects arguments that point past the inputs or at the
// output of the current or a later command.
func (t Transaction) checkArgument(command int, arg Argument) error {
	switch arg.Kind {
	case ArgGasCoin:
		return nil
	case ArgInput:
		if int(arg.Index) >= len(t.Inputs) {
			return ErrInputOutOfRange
		}
	case ArgResult, ArgNestedResult:
		if int(arg.Index) >= command {
			return ErrResultNotAvailable
		}
	default:
		return ErrInvalidCommand
	}
	return nil
}

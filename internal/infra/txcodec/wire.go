package txcodec

// BCS layout of TransactionData. Enum variants are pointer fields in variant
// order; exactly one is set. Variants never produced here are kept so the
// following indices stay right.

type address [32]byte

type unit struct{}

type transactionData struct {
	V1 *transactionDataV1
}

func (transactionData) IsBcsEnum() {}

type transactionDataV1 struct {
	Kind       transactionKind
	Sender     address
	GasData    gasData
	Expiration transactionExpiration
}

type transactionKind struct {
	ProgrammableTransaction *programmableTransaction
}

func (transactionKind) IsBcsEnum() {}

type programmableTransaction struct {
	Inputs   []callArg
	Commands []command
}

type callArg struct {
	Pure   *[]byte
	Object *objectArg
}

func (callArg) IsBcsEnum() {}

type objectArg struct {
	ImmOrOwnedObject *objectRef
}

func (objectArg) IsBcsEnum() {}

type objectRef struct {
	ObjectID address
	Version  uint64
	Digest   []byte
}

type command struct {
	MoveCall        *moveCall
	TransferObjects *transferObjects
	SplitCoins      *unit
	MergeCoins      *unit
	Publish         *publish
	MakeMoveVec     *unit
	Upgrade         *upgrade
}

func (command) IsBcsEnum() {}

type moveCall struct {
	Package       address
	Module        string
	Function      string
	TypeArguments []typeTag
	Arguments     []argument
}

// typeTag is only ever encoded as an empty vector.
type typeTag struct {
	Bool *unit
}

func (typeTag) IsBcsEnum() {}

type transferObjects struct {
	Objects   []argument
	Recipient argument
}

type publish struct {
	Modules      [][]byte
	Dependencies []address
}

type upgrade struct {
	Modules      [][]byte
	Dependencies []address
	Package      address
	Ticket       argument
}

type argument struct {
	GasCoin      *unit
	Input        *uint16
	Result       *uint16
	NestedResult *nestedResult
}

func (argument) IsBcsEnum() {}

type nestedResult struct {
	Command uint16
	Result  uint16
}

type gasData struct {
	Payment []objectRef
	Owner   address
	Price   uint64
	Budget  uint64
}

type transactionExpiration struct {
	None  *unit
	Epoch *uint64
}

func (transactionExpiration) IsBcsEnum() {}

package domain

type ObjectChangeType string

const (
	ChangePublished ObjectChangeType = "published"
	ChangeCreated   ObjectChangeType = "created"
	ChangeMutated   ObjectChangeType = "mutated"
	ChangeDeleted   ObjectChangeType = "deleted"
	ChangeWrapped   ObjectChangeType = "wrapped"
	ChangeTransfer  ObjectChangeType = "transferred"
)

// ObjectChange is one entry of a transaction's object change list. Owner is
// only meaningful for created, mutated and transferred objects.
type ObjectChange struct {
	Type       ObjectChangeType `json:"type"`
	Sender     string           `json:"sender,omitempty"`
	Owner      *Owner           `json:"owner,omitempty"`
	ObjectType string           `json:"objectType,omitempty"`
	ObjectID   string           `json:"objectId,omitempty"`
	PackageID  string           `json:"packageId,omitempty"`
	Version    string           `json:"version,omitempty"`
	Digest     string           `json:"digest,omitempty"`
	Modules    []string         `json:"modules,omitempty"`
}

type ExecutionStatus struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

func (s ExecutionStatus) Succeeded() bool {
	return s.Status == "success"
}

type TransactionEffects struct {
	Status ExecutionStatus `json:"status"`
}

// TransactionResponse is what the ledger reports once a transaction reached
// finality.
type TransactionResponse struct {
	Digest        string              `json:"digest"`
	Effects       *TransactionEffects `json:"effects,omitempty"`
	ObjectChanges []ObjectChange      `json:"objectChanges,omitempty"`
}

func (r TransactionResponse) Succeeded() bool {
	return r.Effects != nil && r.Effects.Status.Succeeded()
}

// FailureMessage returns the ledger's error text for a non-successful
// transaction.
func (r TransactionResponse) FailureMessage() string {
	if r.Effects == nil {
		return "transaction effects missing from ledger response"
	}
	if r.Effects.Status.Error != "" {
		return r.Effects.Status.Error
	}
	return "transaction status " + r.Effects.Status.Status
}

// ExecuteRequest carries signed transaction bytes to the ledger.
type ExecuteRequest struct {
	TxBytes    []byte
	Signatures []string
}

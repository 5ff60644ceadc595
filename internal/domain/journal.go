package domain

import "time"

type OperationKind string

const (
	OperationPublish OperationKind = "publish"
	OperationUpgrade OperationKind = "upgrade"
)

type OperationStatus string

const (
	StatusSuccess OperationStatus = "success"
	StatusFailed  OperationStatus = "failed"
)

// JournalEntry records one submitted publish or upgrade, successful or not.
type JournalEntry struct {
	ID           string
	Kind         OperationKind
	PackagePath  string
	Network      Network
	PackageID    string
	UpgradeCapID string
	TxDigest     string
	TxHash       string
	SourceCommit string
	SourceDirty  bool
	Status       OperationStatus
	Error        string
	RecordedAt   time.Time
}

// SourceRevision identifies the source tree a package was built from.
type SourceRevision struct {
	Commit string
	Branch string
	Dirty  bool
}

func (r SourceRevision) IsZero() bool {
	return r.Commit == ""
}

// JournalQuery narrows a journal listing. Zero fields match everything.
type JournalQuery struct {
	PackagePath string
	Network     Network
	Limit       int
}

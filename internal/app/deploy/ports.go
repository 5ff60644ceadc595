package deploy

import (
	"context"
	"time"

	"github.com/osvaldoandrade/movectl/internal/domain"
)

type Compiler interface {
	Build(ctx context.Context, packagePath string, opts domain.BuildOptions) (domain.BuildArtifact, error)
}

type Manifests interface {
	PinNetworkDependency(ctx context.Context, packagePath string, network domain.Network) error
	WriteNetworkManifest(ctx context.Context, packagePath, packageID string, network domain.Network) error
	UpdatePublishedAt(ctx context.Context, packagePath, packageID string, network domain.Network) error
	SwapToNetworkManifest(ctx context.Context, packagePath string, network domain.Network) error
	RestoreManifest(ctx context.Context, packagePath string) error
	HasNetworkManifest(packagePath string, network domain.Network) (bool, error)
}

type StateStore interface {
	Read(ctx context.Context, packagePath string, network domain.Network) (domain.PublishState, error)
	Write(ctx context.Context, state domain.PublishState, packagePath string, network domain.Network) error
}

type StateMerger interface {
	MergeState(ctx context.Context, prior, update domain.PublishState) (domain.PublishState, error)
}

type Encoder interface {
	Encode(tx domain.Transaction) ([]byte, error)
}

type Signer interface {
	Address() string
	Sign(ctx context.Context, txBytes []byte) (string, error)
}

type Ledger interface {
	Execute(ctx context.Context, req domain.ExecuteRequest) (domain.TransactionResponse, error)
	ReferenceGasPrice(ctx context.Context) (uint64, error)
	GasCoins(ctx context.Context, owner string) ([]domain.Coin, error)
	ObjectRef(ctx context.Context, objectID string) (domain.ObjectRef, error)
}

type Journal interface {
	Record(ctx context.Context, entry domain.JournalEntry) error
}

type SourceInspector interface {
	Inspect(ctx context.Context, packagePath string) (domain.SourceRevision, error)
}

type Hasher interface {
	SumHex(data []byte) string
}

type Clock interface {
	Now() time.Time
}

type IDGenerator interface {
	NewID() (string, error)
}

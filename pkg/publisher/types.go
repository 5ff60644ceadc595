package publisher

import (
	"github.com/osvaldoandrade/movectl/internal/app/deploy"
	"github.com/osvaldoandrade/movectl/internal/app/effects"
	"github.com/osvaldoandrade/movectl/internal/domain"
)

type (
	BuildOptions        = domain.BuildOptions
	BuildArtifact       = domain.BuildArtifact
	PublishOptions      = deploy.PublishOptions
	UpgradeOptions      = deploy.UpgradeOptions
	UpgradePolicy       = deploy.UpgradePolicy
	BatchEntry          = deploy.BatchEntry
	PreparedTransaction = deploy.PreparedTransaction
	PublishResult       = domain.PublishResult
	UpgradeResult       = domain.UpgradeResult
	CreatedObject       = domain.CreatedObject
	PublishState        = domain.PublishState
	JournalEntry        = domain.JournalEntry
	ResultParser        = effects.ResultParser
)

const (
	PolicyCompatible = deploy.PolicyCompatible
	PolicyAdditive   = deploy.PolicyAdditive
	PolicyDepOnly    = deploy.PolicyDepOnly
)

// HistoryQuery narrows History. Zero fields match everything on the
// client's network.
type HistoryQuery struct {
	PackagePath string
	Limit       int
}

func ParseUpgradePolicy(value string) (UpgradePolicy, error) {
	return deploy.ParseUpgradePolicy(value)
}

// CaptureByType stores the id of the first created object of each type under
// the given state field. Types without a 0x prefix are relative to the
// published package.
func CaptureByType(fields map[string]string) ResultParser {
	return effects.CaptureByType(fields)
}

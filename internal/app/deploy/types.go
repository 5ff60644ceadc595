package deploy

import (
	"fmt"
	"strings"

	"github.com/osvaldoandrade/movectl/internal/app/effects"
	"github.com/osvaldoandrade/movectl/internal/domain"
)

const DefaultGasBudget uint64 = 1_000_000_000

// Config is shared by every service bound to one network.
type Config struct {
	Network   domain.Network
	GasBudget uint64
	// Sender overrides the signer's address, for preparing unsigned
	// transactions on behalf of another account.
	Sender string
}

func (c Config) normalized() Config {
	c.Network = domain.NormalizeNetwork(c.Network)
	if c.GasBudget == 0 {
		c.GasBudget = DefaultGasBudget
	}
	c.Sender = strings.TrimSpace(c.Sender)
	return c
}

type UpgradePolicy uint8

const (
	PolicyCompatible UpgradePolicy = 0
	PolicyAdditive   UpgradePolicy = 128
	PolicyDepOnly    UpgradePolicy = 192
)

func (p UpgradePolicy) String() string {
	switch p {
	case PolicyCompatible:
		return "compatible"
	case PolicyAdditive:
		return "additive"
	case PolicyDepOnly:
		return "dep-only"
	default:
		return fmt.Sprintf("policy(%d)", uint8(p))
	}
}

func ParseUpgradePolicy(value string) (UpgradePolicy, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", "compatible":
		return PolicyCompatible, nil
	case "additive":
		return PolicyAdditive, nil
	case "dep-only", "dep_only", "deponly":
		return PolicyDepOnly, nil
	default:
		return PolicyCompatible, fmt.Errorf("%w: %q", ErrInvalidPolicy, value)
	}
}

type PublishOptions struct {
	// Build overrides the publish build defaults when set.
	Build     *domain.BuildOptions
	GasBudget uint64
	// Enforce publishes even when a network manifest shows the package was
	// already published.
	Enforce           bool
	SkipManifestWrite bool
	ResultParser      effects.ResultParser
}

type UpgradeOptions struct {
	// Build overrides the upgrade build defaults when set.
	Build     *domain.BuildOptions
	GasBudget uint64
	Policy    UpgradePolicy
}

type BatchEntry struct {
	PackagePath string
	Options     PublishOptions
}

// PreparedTransaction is an encoded, unsigned transaction ready to be signed
// elsewhere.
type PreparedTransaction struct {
	Sender  string
	TxBytes string
	TxHash  string
}

func buildOptionsOrDefault(opts *domain.BuildOptions, fallback domain.BuildOptions) domain.BuildOptions {
	if opts == nil {
		return fallback
	}
	return *opts
}

func gasBudgetOrDefault(value uint64, cfg Config) uint64 {
	if value == 0 {
		return cfg.GasBudget
	}
	return value
}

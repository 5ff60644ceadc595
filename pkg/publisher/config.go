package publisher

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/osvaldoandrade/movectl/internal/app/deploy"
	"github.com/osvaldoandrade/movectl/internal/domain"
)

// Config defines how a Client reaches the compiler, the ledger and the
// journal.
type Config struct {
	Network string
	// RPCURL defaults to the network's public fullnode.
	RPCURL string
	// Compiler is the compiler binary, "sui" by default.
	Compiler string
	// SecretKey is an ed25519 key in hex or base64. Without it the client
	// can only prepare unsigned transactions, which requires Sender.
	SecretKey string
	Sender    string
	GasBudget uint64
	// JournalPath is the SQLite deployment journal. Empty disables it.
	JournalPath string
	Framework   Framework
	// BuildDir holds temporary compiler output, the system temp dir by
	// default.
	BuildDir   string
	Logger     *slog.Logger
	HTTPClient *http.Client
}

// Framework is the framework dependency pinned in Move.toml before builds.
// Empty fields take the Sui framework defaults.
type Framework struct {
	Name   string
	Git    string
	Subdir string
}

func DefaultConfig(network string) Config {
	return Config{
		Network:   network,
		GasBudget: deploy.DefaultGasBudget,
	}
}

func normalizeConfig(cfg Config) (Config, domain.Network, error) {
	network, err := domain.ParseNetwork(cfg.Network)
	if err != nil {
		return cfg, "", err
	}
	cfg.Network = string(network)
	cfg.RPCURL = strings.TrimSpace(cfg.RPCURL)
	if cfg.RPCURL == "" {
		cfg.RPCURL = network.FullnodeURL()
	}
	if cfg.GasBudget == 0 {
		cfg.GasBudget = deploy.DefaultGasBudget
	}
	cfg.SecretKey = strings.TrimSpace(cfg.SecretKey)
	cfg.Sender = strings.TrimSpace(cfg.Sender)
	cfg.JournalPath = strings.TrimSpace(cfg.JournalPath)
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return cfg, network, nil
}

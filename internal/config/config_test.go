package config

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/osvaldoandrade/movectl/internal/domain"
	"github.com/spf13/pflag"
)

func TestLoadDefaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, path, err := Load(context.Background(), LoadOptions{})
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if path != "" {
		t.Fatalf("no config file expected, got %s", path)
	}
	if cfg != Default() {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if cfg.Network != string(domain.NetworkDevnet) {
		t.Fatalf("unexpected network: %s", cfg.Network)
	}
}

func TestLoadPrecedence(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	file := `network = "testnet"
gas_budget = 5000
journal = ""
timeout = "2m"

[framework]
git = "https://example.com/sui.git"
`
	if err := os.WriteFile(filepath.Join(dir, DefaultFileName), []byte(file), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("MOVECTL_GAS_BUDGET", "7000")
	t.Setenv("MOVECTL_RPC_URL", "http://127.0.0.1:9000")

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("network", "devnet", "")
	flags.Uint64("gas-budget", 0, "")
	if err := flags.Parse([]string{"--network", "mainnet"}); err != nil {
		t.Fatalf("parse flags: %v", err)
	}

	cfg, path, err := Load(context.Background(), LoadOptions{Flags: flags})
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if path != DefaultFileName {
		t.Fatalf("expected %s, got %s", DefaultFileName, path)
	}
	if cfg.Network != "mainnet" {
		t.Fatalf("flag should win, got %s", cfg.Network)
	}
	if cfg.GasBudget != 7000 {
		t.Fatalf("env should win over file, got %d", cfg.GasBudget)
	}
	if cfg.Journal != "" {
		t.Fatalf("file should disable the journal, got %q", cfg.Journal)
	}
	if cfg.Timeout != 2*time.Minute {
		t.Fatalf("unexpected timeout: %s", cfg.Timeout)
	}
	if cfg.Framework.Git != "https://example.com/sui.git" || cfg.Framework.Name != "Sui" {
		t.Fatalf("unexpected framework: %+v", cfg.Framework)
	}
	if cfg.RPCURL != "http://127.0.0.1:9000" {
		t.Fatalf("unexpected rpc url: %s", cfg.RPCURL)
	}
}

func TestPublisherConfig(t *testing.T) {
	cfg := Default()
	cfg.Network = "testnet"
	cfg.RPCURL = "http://127.0.0.1:9000"
	cfg.Sender = "0xbb"
	cfg.Framework.Git = "https://example.com/sui.git"

	pub := cfg.Publisher(false)
	if pub.Network != "testnet" || pub.RPCURL != cfg.RPCURL || pub.Sender != "0xbb" {
		t.Fatalf("unexpected publisher config: %+v", pub)
	}
	if pub.GasBudget != cfg.GasBudget || pub.Compiler != "sui" {
		t.Fatalf("unexpected publisher defaults: %+v", pub)
	}
	if pub.Framework.Git != "https://example.com/sui.git" || pub.Framework.Name != cfg.Framework.Name {
		t.Fatalf("unexpected framework: %+v", pub.Framework)
	}
	if pub.JournalPath != "" {
		t.Fatalf("journal should be left out, got %q", pub.JournalPath)
	}
	if got := cfg.Publisher(true).JournalPath; got != DefaultJournal {
		t.Fatalf("expected journal %s, got %q", DefaultJournal, got)
	}
}

func TestLoadExplicitFileMissing(t *testing.T) {
	_, _, err := Load(context.Background(), LoadOptions{ConfigFile: filepath.Join(t.TempDir(), "absent.toml")})
	if !errors.Is(err, ErrConfigFileNotFound) {
		t.Fatalf("expected config file not found, got %v", err)
	}
}

func TestLoadRejectsUnknownNetwork(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("MOVECTL_NETWORK", "moonnet")

	if _, _, err := Load(context.Background(), LoadOptions{}); err == nil {
		t.Fatalf("expected invalid network error")
	}
}

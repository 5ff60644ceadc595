package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/osvaldoandrade/movectl/internal/app/deploy"
	"github.com/osvaldoandrade/movectl/internal/domain"
	"github.com/osvaldoandrade/movectl/internal/infra/movetoml"
	"github.com/osvaldoandrade/movectl/pkg/publisher"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	EnvPrefix       = "MOVECTL"
	DefaultFileName = "movectl.toml"
	DefaultJournal  = ".movectl/journal.db"
)

var ErrConfigFileNotFound = errors.New("config file not found")

type Config struct {
	Network   string          `mapstructure:"network"`
	Compiler  string          `mapstructure:"compiler"`
	RPCURL    string          `mapstructure:"rpc_url"`
	SecretKey string          `mapstructure:"secret_key"`
	Sender    string          `mapstructure:"sender"`
	GasBudget uint64          `mapstructure:"gas_budget"`
	Journal   string          `mapstructure:"journal"`
	Framework FrameworkConfig `mapstructure:"framework"`
	LogLevel  string          `mapstructure:"log_level"`
	LogFormat string          `mapstructure:"log_format"`
	Timeout   time.Duration   `mapstructure:"timeout"`
}

type FrameworkConfig struct {
	Name   string `mapstructure:"name"`
	Git    string `mapstructure:"git"`
	Subdir string `mapstructure:"subdir"`
}

type LoadOptions struct {
	// ConfigFile is used exclusively when set and must exist.
	ConfigFile string
	// Flags are bound by name, with dashes standing for underscores
	// (--gas-budget sets gas_budget). Only flags set on the command line
	// take precedence over the environment and the config file.
	Flags *pflag.FlagSet
}

func Default() Config {
	framework := movetoml.DefaultFrameworkDependency()
	return Config{
		Network:   string(domain.DefaultNetwork),
		Compiler:  "sui",
		GasBudget: deploy.DefaultGasBudget,
		Journal:   DefaultJournal,
		Framework: FrameworkConfig{
			Name:   framework.Name,
			Git:    framework.Git,
			Subdir: framework.Subdir,
		},
		LogLevel:  "info",
		LogFormat: "text",
	}
}

// Load resolves configuration from, highest precedence first: flags set on
// the command line, MOVECTL_* environment variables, the config file, and
// defaults. It returns the config file used, if any.
func Load(ctx context.Context, opts LoadOptions) (Config, string, error) {
	if err := ctx.Err(); err != nil {
		return Config{}, "", fmt.Errorf("load config canceled: %w", err)
	}

	v := viper.New()
	defaults := Default()
	v.SetDefault("network", defaults.Network)
	v.SetDefault("compiler", defaults.Compiler)
	v.SetDefault("rpc_url", "")
	v.SetDefault("secret_key", "")
	v.SetDefault("sender", "")
	v.SetDefault("gas_budget", defaults.GasBudget)
	v.SetDefault("journal", defaults.Journal)
	v.SetDefault("framework.name", defaults.Framework.Name)
	v.SetDefault("framework.git", defaults.Framework.Git)
	v.SetDefault("framework.subdir", defaults.Framework.Subdir)
	v.SetDefault("log_level", defaults.LogLevel)
	v.SetDefault("log_format", defaults.LogFormat)
	v.SetDefault("timeout", defaults.Timeout)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	resolvedPath := ""
	path := strings.TrimSpace(opts.ConfigFile)
	if path != "" {
		if !fileExists(path) {
			return Config{}, "", fmt.Errorf("%w: %s", ErrConfigFileNotFound, path)
		}
		resolvedPath = path
	} else if fileExists(DefaultFileName) {
		resolvedPath = DefaultFileName
	}
	if resolvedPath != "" {
		v.SetConfigFile(resolvedPath)
		v.SetConfigType("toml")
		if err := v.ReadInConfig(); err != nil {
			return Config{}, "", fmt.Errorf("read config %s: %w", resolvedPath, err)
		}
	}

	if opts.Flags != nil {
		for _, key := range v.AllKeys() {
			flag := opts.Flags.Lookup(strings.ReplaceAll(key, "_", "-"))
			if flag == nil {
				continue
			}
			if err := v.BindPFlag(key, flag); err != nil {
				return Config{}, "", fmt.Errorf("bind flag %s: %w", flag.Name, err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, "", fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, "", err
	}
	return cfg, resolvedPath, nil
}

func (c Config) Validate() error {
	if _, err := domain.ParseNetwork(c.Network); err != nil {
		return err
	}
	if c.Timeout < 0 {
		return fmt.Errorf("invalid timeout %s", c.Timeout)
	}
	return nil
}

// Publisher maps the resolved configuration onto a client config. Defaults
// for empty values are applied by the client. The journal is included only
// when withJournal is set.
func (c Config) Publisher(withJournal bool) publisher.Config {
	cfg := publisher.Config{
		Network:   c.Network,
		RPCURL:    c.RPCURL,
		Compiler:  c.Compiler,
		SecretKey: c.SecretKey,
		Sender:    c.Sender,
		GasBudget: c.GasBudget,
		Framework: publisher.Framework{
			Name:   c.Framework.Name,
			Git:    c.Framework.Git,
			Subdir: c.Framework.Subdir,
		},
	}
	if withJournal {
		cfg.JournalPath = c.Journal
	}
	return cfg
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

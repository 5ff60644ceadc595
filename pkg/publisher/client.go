package publisher

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/osvaldoandrade/movectl/internal/app/deploy"
	"github.com/osvaldoandrade/movectl/internal/app/paths"
	"github.com/osvaldoandrade/movectl/internal/domain"
	"github.com/osvaldoandrade/movectl/internal/infra/compiler"
	"github.com/osvaldoandrade/movectl/internal/infra/gitsource"
	"github.com/osvaldoandrade/movectl/internal/infra/hash"
	"github.com/osvaldoandrade/movectl/internal/infra/ident"
	"github.com/osvaldoandrade/movectl/internal/infra/jsonmerge"
	"github.com/osvaldoandrade/movectl/internal/infra/keys"
	"github.com/osvaldoandrade/movectl/internal/infra/movetoml"
	"github.com/osvaldoandrade/movectl/internal/infra/rpcledger"
	"github.com/osvaldoandrade/movectl/internal/infra/sqlitejournal"
	"github.com/osvaldoandrade/movectl/internal/infra/statefile"
	"github.com/osvaldoandrade/movectl/internal/infra/txcodec"
	"github.com/osvaldoandrade/movectl/internal/platform"
)

// Client runs package lifecycle operations against one network. Calls on
// the same package must not overlap.
type Client struct {
	cfg     Config
	network domain.Network
	logger  *slog.Logger
	signer  *keys.Ed25519Signer
	state   *statefile.Store

	build   *deploy.BuildService
	publish *deploy.PublishService
	upgrade *deploy.UpgradeService

	mu      sync.Mutex
	journal *sqlitejournal.Store
}

// New creates a client without opening the journal.
func New(cfg Config) (*Client, error) {
	return newClient(cfg, nil)
}

// Open creates a client and opens the deployment journal when JournalPath
// is set.
func Open(ctx context.Context, cfg Config) (*Client, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var journal *sqlitejournal.Store
	if path := cfg.JournalPath; path != "" {
		store, err := sqlitejournal.OpenWithOptions(path, sqlitejournal.OpenOptions{Fast: true})
		if err != nil {
			return nil, fmt.Errorf("open journal: %w", err)
		}
		journal = store
	}
	client, err := newClient(cfg, journal)
	if err != nil {
		if journal != nil {
			_ = journal.Close()
		}
		return nil, err
	}
	return client, nil
}

func newClient(cfg Config, journal *sqlitejournal.Store) (*Client, error) {
	normalized, network, err := normalizeConfig(cfg)
	if err != nil {
		return nil, err
	}

	var signer *keys.Ed25519Signer
	var deploySigner deploy.Signer
	if normalized.SecretKey != "" {
		signer, err = keys.ParseSecretKey(normalized.SecretKey)
		if err != nil {
			return nil, err
		}
		deploySigner = signer
	}

	var ledgerOpts []rpcledger.ClientOption
	if normalized.HTTPClient != nil {
		ledgerOpts = append(ledgerOpts, rpcledger.WithHTTPClient(normalized.HTTPClient))
	}
	ledger := rpcledger.NewClient(normalized.RPCURL, ledgerOpts...)

	var runnerOpts []compiler.RunnerOption
	if normalized.BuildDir != "" {
		runnerOpts = append(runnerOpts, compiler.WithTempRoot(normalized.BuildDir))
	}
	runner := compiler.NewRunner(normalized.Compiler, runnerOpts...)

	manifests := movetoml.NewStore(movetoml.FrameworkDependency{
		Name:   normalized.Framework.Name,
		Git:    normalized.Framework.Git,
		Subdir: normalized.Framework.Subdir,
	})
	state := statefile.NewStore()
	logger := normalized.Logger

	var deployJournal deploy.Journal
	if journal != nil {
		deployJournal = journal
	}
	recorder := deploy.NewRecorder(deployJournal, gitsource.Inspector{}, platform.RealClock{}, ident.NewULIDGenerator(), logger)
	submitter := deploy.NewSubmitter(txcodec.Encoder{}, deploySigner, ledger, hash.Blake2b256{}, normalized.Sender)

	deployCfg := deploy.Config{Network: network, GasBudget: normalized.GasBudget, Sender: normalized.Sender}
	return &Client{
		cfg:     normalized,
		network: network,
		logger:  logger,
		signer:  signer,
		state:   state,
		build:   deploy.NewBuildService(runner, logger),
		publish: deploy.NewPublishService(deployCfg, runner, manifests, state, jsonmerge.Merger{}, submitter, recorder, logger),
		upgrade: deploy.NewUpgradeService(deployCfg, runner, manifests, state, jsonmerge.Merger{}, submitter, recorder, logger),
		journal: journal,
	}, nil
}

// Close releases the journal.
func (c *Client) Close() error {
	c.mu.Lock()
	journal := c.journal
	c.journal = nil
	c.mu.Unlock()

	if journal != nil {
		return journal.Close()
	}
	return nil
}

func (c *Client) Network() string {
	return string(c.network)
}

// Address is the signing account, empty without a secret key.
func (c *Client) Address() string {
	if c.signer == nil {
		return ""
	}
	return c.signer.Address()
}

func (c *Client) Build(ctx context.Context, packagePath string, opts *BuildOptions) (BuildArtifact, error) {
	return c.build.Build(ctx, packagePath, opts)
}

func (c *Client) Publish(ctx context.Context, packagePath string, opts PublishOptions) (PublishResult, error) {
	return c.publish.Publish(ctx, packagePath, opts)
}

func (c *Client) PreparePublish(ctx context.Context, packagePath string, opts PublishOptions) (PreparedTransaction, error) {
	return c.publish.PreparePublish(ctx, packagePath, opts)
}

// PublishBatch publishes entries in order and stops at the first failure,
// returning the results gathered so far.
func (c *Client) PublishBatch(ctx context.Context, entries []BatchEntry) ([]PublishResult, error) {
	return c.publish.PublishBatch(ctx, entries)
}

// Upgrade upgrades the package; empty ids are read from the publish state.
// dependencyPaths are built against their published addresses.
func (c *Client) Upgrade(ctx context.Context, packagePath, packageID, upgradeCapID string, dependencyPaths []string, opts UpgradeOptions) (UpgradeResult, error) {
	return c.upgrade.Upgrade(ctx, packagePath, packageID, upgradeCapID, dependencyPaths, opts)
}

func (c *Client) PrepareUpgrade(ctx context.Context, packagePath, packageID, upgradeCapID string, opts UpgradeOptions) (PreparedTransaction, error) {
	return c.upgrade.PrepareUpgrade(ctx, packagePath, packageID, upgradeCapID, opts)
}

// State returns the publish state recorded for the package on the client's
// network.
func (c *Client) State(ctx context.Context, packagePath string) (PublishState, error) {
	absPath, err := paths.NormalizePackagePath(packagePath)
	if err != nil {
		return nil, err
	}
	return c.state.Read(ctx, absPath, c.network)
}

// History lists journal entries for the client's network, newest first.
func (c *Client) History(ctx context.Context, query HistoryQuery) ([]JournalEntry, error) {
	c.mu.Lock()
	journal := c.journal
	c.mu.Unlock()
	if journal == nil {
		return nil, ErrJournalDisabled
	}

	q := domain.JournalQuery{Network: c.network, Limit: query.Limit}
	if query.PackagePath != "" {
		absPath, err := paths.NormalizePackagePath(query.PackagePath)
		if err != nil {
			return nil, err
		}
		q.PackagePath = absPath
	}
	return journal.List(ctx, q)
}

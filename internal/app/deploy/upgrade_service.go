package deploy

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/osvaldoandrade/movectl/internal/app/effects"
	"github.com/osvaldoandrade/movectl/internal/app/paths"
	"github.com/osvaldoandrade/movectl/internal/domain"
)

const (
	authorizeUpgradeTarget = "0x2::package::authorize_upgrade"
	commitUpgradeTarget    = "0x2::package::commit_upgrade"
)

type UpgradeService struct {
	cfg       Config
	compiler  Compiler
	manifests Manifests
	state     StateStore
	merger    StateMerger
	submitter *Submitter
	recorder  *Recorder
	logger    *slog.Logger
}

func NewUpgradeService(cfg Config, compiler Compiler, manifests Manifests, state StateStore, merger StateMerger, submitter *Submitter, recorder *Recorder, logger *slog.Logger) *UpgradeService {
	if logger == nil {
		logger = slog.Default()
	}
	return &UpgradeService{
		cfg:       cfg.normalized(),
		compiler:  compiler,
		manifests: manifests,
		state:     state,
		merger:    merger,
		submitter: submitter,
		recorder:  recorder,
		logger:    logger,
	}
}

// Upgrade publishes a new version of packageID in one transaction that
// authorizes, performs, and commits the upgrade. Empty packageID or
// upgradeCapID are read from the publish state.
//
// With dependencyPaths, each dependency's Move.toml is swapped for its
// network copy for the duration of the upgrade and restored afterwards,
// whatever the outcome.
func (s *UpgradeService) Upgrade(ctx context.Context, packagePath, packageID, upgradeCapID string, dependencyPaths []string, opts UpgradeOptions) (result domain.UpgradeResult, err error) {
	absPath, err := paths.NormalizePackagePath(packagePath)
	if err != nil {
		return domain.UpgradeResult{}, err
	}
	deps, err := paths.NormalizePackagePaths(dependencyPaths)
	if err != nil {
		return domain.UpgradeResult{}, err
	}

	if len(deps) > 0 {
		swaps := newManifestSwaps(s.manifests, s.cfg.Network)
		defer func() {
			err = withRestore(err, swaps.release(ctx))
		}()
		for _, dep := range deps {
			if err := swaps.swap(ctx, dep); err != nil {
				return domain.UpgradeResult{}, err
			}
		}
	}

	return s.upgrade(ctx, absPath, packageID, upgradeCapID, opts)
}

// PrepareUpgrade builds the upgrade transaction and returns it encoded but
// unsigned. Nothing is submitted and no state is written.
func (s *UpgradeService) PrepareUpgrade(ctx context.Context, packagePath, packageID, upgradeCapID string, opts UpgradeOptions) (PreparedTransaction, error) {
	absPath, err := paths.NormalizePackagePath(packagePath)
	if err != nil {
		return PreparedTransaction{}, err
	}
	prior, err := readPriorState(ctx, s.state, absPath, s.cfg.Network)
	if err != nil {
		return PreparedTransaction{}, err
	}
	packageID, upgradeCapID, err = s.resolveIDs(absPath, prior, packageID, upgradeCapID)
	if err != nil {
		return PreparedTransaction{}, err
	}
	tx, err := s.upgradeTransaction(ctx, absPath, packageID, upgradeCapID, opts, false)
	if err != nil {
		return PreparedTransaction{}, err
	}
	return s.submitter.Prepare(ctx, tx)
}

func (s *UpgradeService) upgrade(ctx context.Context, absPath, packageID, upgradeCapID string, opts UpgradeOptions) (domain.UpgradeResult, error) {
	network := s.cfg.Network
	prior, err := readPriorState(ctx, s.state, absPath, network)
	if err != nil {
		return domain.UpgradeResult{}, err
	}
	packageID, upgradeCapID, err = s.resolveIDs(absPath, prior, packageID, upgradeCapID)
	if err != nil {
		return domain.UpgradeResult{}, err
	}
	log := s.logger.With("package", absPath, "network", network, "package_id", packageID)

	rev := s.recorder.Revision(ctx, absPath)
	tx, err := s.upgradeTransaction(ctx, absPath, packageID, upgradeCapID, opts, true)
	if err != nil {
		return domain.UpgradeResult{}, err
	}

	log.Info("upgrading package", "policy", opts.Policy, "gas_budget", tx.GasBudget)
	sub, err := s.submitter.Submit(ctx, tx)
	if err != nil {
		failure := &domain.UpgradeFailedError{PackagePath: absPath, PackageID: packageID, Network: network, Err: err}
		s.recordFailure(ctx, absPath, packageID, sub, failure, rev)
		return domain.UpgradeResult{}, failure
	}
	resp := sub.Response
	if !resp.Succeeded() {
		failure := &domain.UpgradeFailedError{
			PackagePath: absPath,
			PackageID:   packageID,
			Network:     network,
			Digest:      resp.Digest,
			LedgerError: resp.FailureMessage(),
		}
		s.recordFailure(ctx, absPath, packageID, sub, failure, rev)
		return domain.UpgradeResult{}, failure
	}

	result := effects.ParseUpgrade(resp)
	if result.PackageID == "" {
		failure := &domain.UpgradeFailedError{PackagePath: absPath, PackageID: packageID, Network: network, Digest: resp.Digest, Err: ErrNoPublishedPackage}
		s.recordFailure(ctx, absPath, packageID, sub, failure, rev)
		return domain.UpgradeResult{}, failure
	}
	log.Info("package upgraded", "digest", resp.Digest, "new_package_id", result.PackageID)

	s.recorder.Record(ctx, domain.JournalEntry{
		Kind:         domain.OperationUpgrade,
		PackagePath:  absPath,
		Network:      network,
		PackageID:    result.PackageID,
		UpgradeCapID: firstNonEmpty(result.UpgradeCapID, upgradeCapID),
		TxDigest:     resp.Digest,
		TxHash:       sub.TxHash,
		Status:       domain.StatusSuccess,
	}, rev)

	update := domain.PublishState{domain.StateKeyPackageID: result.PackageID}
	if result.UpgradeCapID != "" {
		update[domain.StateKeyUpgradeCapID] = result.UpgradeCapID
	}
	if err := writeMergedState(ctx, s.state, s.merger, absPath, network, prior, update); err != nil {
		return result, err
	}

	if err := s.manifests.UpdatePublishedAt(ctx, absPath, result.PackageID, network); err != nil {
		if !errors.Is(err, domain.ErrManifestNotFound) {
			return result, fmt.Errorf("update network manifest: %w", err)
		}
		log.Warn("network manifest missing, published-at not updated")
	}
	return result, nil
}

// resolveIDs fills empty ids from the prior publish state.
func (s *UpgradeService) resolveIDs(absPath string, prior domain.PublishState, packageID, upgradeCapID string) (string, string, error) {
	packageID = strings.TrimSpace(packageID)
	upgradeCapID = strings.TrimSpace(upgradeCapID)
	if packageID != "" && upgradeCapID != "" {
		return packageID, upgradeCapID, nil
	}

	if prior == nil {
		return "", "", fmt.Errorf("resolve upgrade ids: %w: %s", domain.ErrStateNotFound, domain.StatePath(absPath, s.cfg.Network))
	}
	if packageID == "" {
		packageID = prior.PackageID()
	}
	if upgradeCapID == "" {
		upgradeCapID = prior.UpgradeCapID()
	}
	if packageID == "" {
		return "", "", ErrPackageIDRequired
	}
	if upgradeCapID == "" {
		return "", "", ErrUpgradeCapRequired
	}
	return packageID, upgradeCapID, nil
}

func (s *UpgradeService) upgradeTransaction(ctx context.Context, absPath, packageID, upgradeCapID string, opts UpgradeOptions, signed bool) (domain.Transaction, error) {
	if err := s.manifests.PinNetworkDependency(ctx, absPath, s.cfg.Network); err != nil {
		return domain.Transaction{}, err
	}
	sender, err := s.submitter.Sender(signed)
	if err != nil {
		return domain.Transaction{}, err
	}
	s.logger.Info("building package", "package", absPath, "network", s.cfg.Network)
	artifact, err := s.compiler.Build(ctx, absPath, buildOptionsOrDefault(opts.Build, domain.DefaultUpgradeBuildOptions()))
	if err != nil {
		return domain.Transaction{}, err
	}

	b := domain.NewTransactionBuilder(sender, gasBudgetOrDefault(opts.GasBudget, s.cfg))
	upgradeCap := b.Object(upgradeCapID)
	ticket := b.MoveCall(authorizeUpgradeTarget, upgradeCap, b.PureU8(uint8(opts.Policy)), b.PureBytes(artifact.Digest))
	receipt := b.Upgrade(artifact.Modules, artifact.Dependencies, packageID, ticket)
	b.MoveCall(commitUpgradeTarget, upgradeCap, receipt)
	tx, err := b.Build()
	if err != nil {
		return domain.Transaction{}, fmt.Errorf("build upgrade transaction: %w", err)
	}
	return tx, nil
}

func (s *UpgradeService) recordFailure(ctx context.Context, absPath, packageID string, sub Submission, failure *domain.UpgradeFailedError, rev domain.SourceRevision) {
	if sub.TxHash == "" {
		return
	}
	s.recorder.Record(ctx, domain.JournalEntry{
		Kind:        domain.OperationUpgrade,
		PackagePath: absPath,
		Network:     s.cfg.Network,
		PackageID:   packageID,
		TxDigest:    failure.Digest,
		TxHash:      sub.TxHash,
		Status:      domain.StatusFailed,
		Error:       failure.Error(),
	}, rev)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

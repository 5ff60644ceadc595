package deploy

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/osvaldoandrade/movectl/internal/app/effects"
	"github.com/osvaldoandrade/movectl/internal/app/paths"
	"github.com/osvaldoandrade/movectl/internal/domain"
)

type PublishService struct {
	cfg       Config
	compiler  Compiler
	manifests Manifests
	state     StateStore
	merger    StateMerger
	submitter *Submitter
	recorder  *Recorder
	logger    *slog.Logger
}

func NewPublishService(cfg Config, compiler Compiler, manifests Manifests, state StateStore, merger StateMerger, submitter *Submitter, recorder *Recorder, logger *slog.Logger) *PublishService {
	if logger == nil {
		logger = slog.Default()
	}
	return &PublishService{
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

func (s *PublishService) Network() domain.Network {
	return s.cfg.Network
}

// Publish deploys the package as a new package object and transfers its
// upgrade capability to the sender. On success the publish state is merged
// and Move.<network>.toml is written last; on failure neither is touched.
func (s *PublishService) Publish(ctx context.Context, packagePath string, opts PublishOptions) (domain.PublishResult, error) {
	absPath, err := paths.NormalizePackagePath(packagePath)
	if err != nil {
		return domain.PublishResult{}, err
	}
	network := s.cfg.Network
	log := s.logger.With("package", absPath, "network", network)

	if !opts.Enforce {
		published, err := s.manifests.HasNetworkManifest(absPath, network)
		if err != nil {
			return domain.PublishResult{}, fmt.Errorf("check network manifest: %w", err)
		}
		if published {
			return domain.PublishResult{}, &domain.AlreadyPublishedError{PackagePath: absPath, Network: network}
		}
	}

	prior, err := readPriorState(ctx, s.state, absPath, network)
	if err != nil {
		return domain.PublishResult{}, err
	}

	rev := s.recorder.Revision(ctx, absPath)
	tx, err := s.publishTransaction(ctx, absPath, opts, true)
	if err != nil {
		return domain.PublishResult{}, err
	}

	log.Info("publishing package", "sender", tx.Sender, "gas_budget", tx.GasBudget)
	sub, err := s.submitter.Submit(ctx, tx)
	if err != nil {
		failure := &domain.PublishFailedError{PackagePath: absPath, Network: network, Err: err}
		s.recordFailure(ctx, absPath, sub, failure, rev)
		return domain.PublishResult{}, failure
	}
	resp := sub.Response
	if !resp.Succeeded() {
		failure := &domain.PublishFailedError{
			PackagePath: absPath,
			Network:     network,
			Digest:      resp.Digest,
			LedgerError: resp.FailureMessage(),
		}
		s.recordFailure(ctx, absPath, sub, failure, rev)
		return domain.PublishResult{}, failure
	}

	result := effects.ParsePublish(resp)
	if result.PackageID == "" {
		failure := &domain.PublishFailedError{PackagePath: absPath, Network: network, Digest: resp.Digest, Err: ErrNoPublishedPackage}
		s.recordFailure(ctx, absPath, sub, failure, rev)
		return domain.PublishResult{}, failure
	}
	log.Info("package published", "digest", resp.Digest, "package_id", result.PackageID, "upgrade_cap_id", result.UpgradeCapID)

	s.recorder.Record(ctx, domain.JournalEntry{
		Kind:         domain.OperationPublish,
		PackagePath:  absPath,
		Network:      network,
		PackageID:    result.PackageID,
		UpgradeCapID: result.UpgradeCapID,
		TxDigest:     resp.Digest,
		TxHash:       sub.TxHash,
		Status:       domain.StatusSuccess,
	}, rev)

	if err := s.persistState(ctx, absPath, prior, result, opts.ResultParser); err != nil {
		return result, err
	}
	if !opts.SkipManifestWrite {
		if err := s.manifests.WriteNetworkManifest(ctx, absPath, result.PackageID, network); err != nil {
			return result, fmt.Errorf("write network manifest: %w", err)
		}
	}
	return result, nil
}

// PreparePublish builds the publish transaction and returns it encoded but
// unsigned. Nothing is submitted and no state is written.
func (s *PublishService) PreparePublish(ctx context.Context, packagePath string, opts PublishOptions) (PreparedTransaction, error) {
	absPath, err := paths.NormalizePackagePath(packagePath)
	if err != nil {
		return PreparedTransaction{}, err
	}
	tx, err := s.publishTransaction(ctx, absPath, opts, false)
	if err != nil {
		return PreparedTransaction{}, err
	}
	return s.submitter.Prepare(ctx, tx)
}

// PublishBatch publishes packages in order. After each publish the package's
// Move.toml is swapped for its network copy so later packages resolve it by
// its published address. Every swapped manifest is restored before return,
// whether the batch succeeded or not. The first failure stops the batch.
func (s *PublishService) PublishBatch(ctx context.Context, entries []BatchEntry) (results []domain.PublishResult, err error) {
	swaps := newManifestSwaps(s.manifests, s.cfg.Network)
	defer func() {
		err = withRestore(err, swaps.release(ctx))
	}()

	for i, entry := range entries {
		absPath, err := paths.NormalizePackagePath(entry.PackagePath)
		if err != nil {
			return results, fmt.Errorf("batch entry %d: %w", i, err)
		}

		result, err := s.Publish(ctx, absPath, entry.Options)
		if err != nil {
			return results, fmt.Errorf("batch entry %d: %w", i, err)
		}
		results = append(results, result)

		hasCopy, err := s.manifests.HasNetworkManifest(absPath, s.cfg.Network)
		if err != nil {
			return results, fmt.Errorf("batch entry %d: check network manifest: %w", i, err)
		}
		if !hasCopy {
			s.logger.Warn("network manifest missing, dependents will build against the default manifest", "package", absPath)
			continue
		}
		if err := swaps.swap(ctx, absPath); err != nil {
			return results, fmt.Errorf("batch entry %d: %w", i, err)
		}
	}
	return results, nil
}

func (s *PublishService) publishTransaction(ctx context.Context, absPath string, opts PublishOptions, signed bool) (domain.Transaction, error) {
	if err := s.manifests.PinNetworkDependency(ctx, absPath, s.cfg.Network); err != nil {
		return domain.Transaction{}, err
	}
	sender, err := s.submitter.Sender(signed)
	if err != nil {
		return domain.Transaction{}, err
	}
	s.logger.Info("building package", "package", absPath, "network", s.cfg.Network)
	artifact, err := s.compiler.Build(ctx, absPath, buildOptionsOrDefault(opts.Build, domain.DefaultPublishBuildOptions()))
	if err != nil {
		return domain.Transaction{}, err
	}

	b := domain.NewTransactionBuilder(sender, gasBudgetOrDefault(opts.GasBudget, s.cfg))
	upgradeCap := b.Publish(artifact.Modules, artifact.Dependencies)
	b.TransferObjects([]domain.Argument{upgradeCap}, b.PureAddress(sender))
	tx, err := b.Build()
	if err != nil {
		return domain.Transaction{}, fmt.Errorf("build publish transaction: %w", err)
	}
	return tx, nil
}

// persistState merges the default fields and the parser's fields over the
// prior state. Parser fields win over defaults.
func (s *PublishService) persistState(ctx context.Context, absPath string, prior domain.PublishState, result domain.PublishResult, parser effects.ResultParser) error {
	update := domain.DefaultPublishState(result)
	if parser != nil {
		for key, value := range parser(result) {
			update[key] = value
		}
	}
	return writeMergedState(ctx, s.state, s.merger, absPath, s.cfg.Network, prior, update)
}

func (s *PublishService) recordFailure(ctx context.Context, absPath string, sub Submission, failure *domain.PublishFailedError, rev domain.SourceRevision) {
	if sub.TxHash == "" {
		return
	}
	s.recorder.Record(ctx, domain.JournalEntry{
		Kind:        domain.OperationPublish,
		PackagePath: absPath,
		Network:     s.cfg.Network,
		TxDigest:    failure.Digest,
		TxHash:      sub.TxHash,
		Status:      domain.StatusFailed,
		Error:       failure.Error(),
	}, rev)
}

// readPriorState loads the state an operation will merge into. A missing
// file yields nil; a corrupt one fails the operation before anything is
// submitted.
func readPriorState(ctx context.Context, store StateStore, absPath string, network domain.Network) (domain.PublishState, error) {
	prior, err := store.Read(ctx, absPath, network)
	switch {
	case err == nil:
		return prior, nil
	case errors.Is(err, domain.ErrStateNotFound):
		return nil, nil
	default:
		return nil, fmt.Errorf("read publish state: %w", err)
	}
}

func writeMergedState(ctx context.Context, store StateStore, merger StateMerger, absPath string, network domain.Network, prior, update domain.PublishState) error {
	merged, err := merger.MergeState(ctx, prior, update)
	if err != nil {
		return fmt.Errorf("merge publish state: %w", err)
	}
	if err := store.Write(ctx, merged, absPath, network); err != nil {
		return fmt.Errorf("write publish state: %w", err)
	}
	return nil
}

package deploy

import (
	"context"
	"log/slog"

	"github.com/osvaldoandrade/movectl/internal/domain"
)

// Recorder appends outcomes to the deployment journal. A nil Recorder, or
// one without a journal, records nothing. Journal failures are logged and
// never fail the operation, since the ledger has already applied it.
type Recorder struct {
	journal   Journal
	inspector SourceInspector
	clock     Clock
	idGen     IDGenerator
	logger    *slog.Logger
}

func NewRecorder(journal Journal, inspector SourceInspector, clock Clock, idGen IDGenerator, logger *slog.Logger) *Recorder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Recorder{
		journal:   journal,
		inspector: inspector,
		clock:     clock,
		idGen:     idGen,
		logger:    logger,
	}
}

func (r *Recorder) enabled() bool {
	return r != nil && r.journal != nil
}

// Revision captures the source revision of packagePath. It is read before a
// pipeline touches any file so the dirty flag reflects the user's tree.
func (r *Recorder) Revision(ctx context.Context, packagePath string) domain.SourceRevision {
	if !r.enabled() || r.inspector == nil {
		return domain.SourceRevision{}
	}
	rev, err := r.inspector.Inspect(ctx, packagePath)
	if err != nil {
		r.logger.Warn("source revision unavailable", "package", packagePath, "err", err)
		return domain.SourceRevision{}
	}
	return rev
}

func (r *Recorder) Record(ctx context.Context, entry domain.JournalEntry, rev domain.SourceRevision) {
	if !r.enabled() {
		return
	}

	id, err := r.idGen.NewID()
	if err != nil {
		r.logger.Warn("journal entry skipped", "package", entry.PackagePath, "err", err)
		return
	}
	entry.ID = id
	entry.RecordedAt = r.clock.Now().UTC()
	entry.SourceCommit = rev.Commit
	entry.SourceDirty = rev.Dirty

	if err := r.journal.Record(context.WithoutCancel(ctx), entry); err != nil {
		r.logger.Warn("journal write failed", "package", entry.PackagePath, "digest", entry.TxDigest, "err", err)
		return
	}
	r.logger.Debug("journal entry recorded", "id", id, "kind", entry.Kind, "status", entry.Status)
}

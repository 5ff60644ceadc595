package sqlitejournal

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/osvaldoandrade/movectl/internal/domain"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "state", "journal.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() {
		_ = store.Close()
	})
	return store
}

func TestRecordAndList(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	entries := []domain.JournalEntry{
		{ID: "01A", Kind: domain.OperationPublish, PackagePath: "/pkg/a", Network: domain.NetworkTestnet,
			PackageID: "0x1", UpgradeCapID: "0xcap", TxDigest: "D1", TxHash: "h1", SourceCommit: "abc",
			SourceDirty: true, Status: domain.StatusSuccess, RecordedAt: base},
		{ID: "01B", Kind: domain.OperationUpgrade, PackagePath: "/pkg/a", Network: domain.NetworkTestnet,
			PackageID: "0x2", TxDigest: "D2", Status: domain.StatusFailed, Error: "MoveAbort", RecordedAt: base.Add(time.Minute)},
		{ID: "01C", Kind: domain.OperationPublish, PackagePath: "/pkg/b", Network: domain.NetworkDevnet,
			PackageID: "0x3", Status: domain.StatusSuccess, RecordedAt: base.Add(2 * time.Minute)},
	}
	for _, entry := range entries {
		if err := store.Record(ctx, entry); err != nil {
			t.Fatalf("record %s: %v", entry.ID, err)
		}
	}

	all, err := store.List(ctx, domain.JournalQuery{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(all) != 3 || all[0].ID != "01C" || all[2].ID != "01A" {
		t.Fatalf("unexpected order: %+v", all)
	}

	filtered, err := store.List(ctx, domain.JournalQuery{PackagePath: "/pkg/a", Network: domain.NetworkTestnet, Limit: 1})
	if err != nil {
		t.Fatalf("list filtered: %v", err)
	}
	if len(filtered) != 1 || filtered[0].ID != "01B" {
		t.Fatalf("unexpected filtered entries: %+v", filtered)
	}
	if filtered[0].Status != domain.StatusFailed || filtered[0].Error != "MoveAbort" {
		t.Fatalf("unexpected status: %+v", filtered[0])
	}

	first := all[2]
	if !first.SourceDirty || first.SourceCommit != "abc" || !first.RecordedAt.Equal(base) {
		t.Fatalf("fields not preserved: %+v", first)
	}
}

func TestRecordRequiresID(t *testing.T) {
	store := openTestStore(t)
	if err := store.Record(context.Background(), domain.JournalEntry{Kind: domain.OperationPublish}); err == nil {
		t.Fatalf("expected error")
	}
}

func TestOpenRequiresPath(t *testing.T) {
	if _, err := Open("  "); err == nil {
		t.Fatalf("expected error")
	}
}

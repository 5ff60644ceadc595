package gitsource

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
)

func TestInspectCommittedPackage(t *testing.T) {
	root := t.TempDir()
	repo, err := git.PlainInit(root, false)
	if err != nil {
		t.Fatalf("init repo: %v", err)
	}
	pkgDir := filepath.Join(root, "contracts", "coin_flip")
	if err := os.MkdirAll(pkgDir, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(pkgDir, "Move.toml"), []byte("[package]\nname = \"coin_flip\"\n"), 0o644); err != nil {
		t.Fatalf("write manifest: %v", err)
	}

	worktree, err := repo.Worktree()
	if err != nil {
		t.Fatalf("worktree: %v", err)
	}
	if _, err := worktree.Add("contracts/coin_flip/Move.toml"); err != nil {
		t.Fatalf("add: %v", err)
	}
	hash, err := worktree.Commit("add package", &git.CommitOptions{
		Author: &object.Signature{Name: "dev", Email: "dev@example.com", When: time.Now()},
	})
	if err != nil {
		t.Fatalf("commit: %v", err)
	}

	rev, err := (Inspector{}).Inspect(context.Background(), pkgDir)
	if err != nil {
		t.Fatalf("inspect: %v", err)
	}
	if rev.Commit != hash.String() {
		t.Fatalf("expected commit %s, got %s", hash, rev.Commit)
	}
	if rev.Branch == "" {
		t.Fatalf("expected branch name")
	}
	if rev.Dirty {
		t.Fatalf("expected clean worktree")
	}

	if err := os.WriteFile(filepath.Join(pkgDir, "Move.testnet.toml"), []byte("x"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	rev, err = (Inspector{}).Inspect(context.Background(), pkgDir)
	if err != nil {
		t.Fatalf("inspect: %v", err)
	}
	if !rev.Dirty {
		t.Fatalf("expected dirty worktree")
	}
}

func TestInspectOutsideRepository(t *testing.T) {
	rev, err := (Inspector{}).Inspect(context.Background(), t.TempDir())
	if err != nil {
		t.Fatalf("inspect: %v", err)
	}
	if !rev.IsZero() {
		t.Fatalf("expected zero revision, got %+v", rev)
	}
}

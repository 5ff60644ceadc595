package gitsource

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/osvaldoandrade/movectl/internal/domain"
)

// Inspector reports the git revision a package directory is checked out at.
type Inspector struct{}

// Inspect walks up from packagePath to the enclosing repository. A package
// outside any repository, or in one without commits, yields a zero revision.
func (Inspector) Inspect(ctx context.Context, packagePath string) (domain.SourceRevision, error) {
	if err := ctx.Err(); err != nil {
		return domain.SourceRevision{}, err
	}

	repo, err := git.PlainOpenWithOptions(packagePath, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		if errors.Is(err, git.ErrRepositoryNotExists) {
			return domain.SourceRevision{}, nil
		}
		return domain.SourceRevision{}, fmt.Errorf("open git repo: %w", err)
	}

	ref, err := repo.Head()
	if err != nil {
		if errors.Is(err, plumbing.ErrReferenceNotFound) {
			return domain.SourceRevision{}, nil
		}
		return domain.SourceRevision{}, fmt.Errorf("read HEAD: %w", err)
	}

	rev := domain.SourceRevision{Commit: ref.Hash().String()}
	if ref.Name().IsBranch() {
		rev.Branch = ref.Name().Short()
	}

	worktree, err := repo.Worktree()
	if err != nil {
		if errors.Is(err, git.ErrIsBareRepository) {
			return rev, nil
		}
		return domain.SourceRevision{}, fmt.Errorf("open worktree: %w", err)
	}
	status, err := worktree.Status()
	if err != nil {
		return domain.SourceRevision{}, fmt.Errorf("worktree status: %w", err)
	}
	rev.Dirty = !status.IsClean()
	return rev, nil
}

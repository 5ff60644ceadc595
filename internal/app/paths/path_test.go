package paths

import (
	"errors"
	"path/filepath"
	"testing"
)

func TestNormalizePackagePath(t *testing.T) {
	if _, err := NormalizePackagePath("  "); !errors.Is(err, ErrPackagePathRequired) {
		t.Fatalf("expected package path required, got %v", err)
	}

	got, err := NormalizePackagePath("contracts/../contracts/coin_flip")
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if !filepath.IsAbs(got) || filepath.Base(got) != "coin_flip" {
		t.Fatalf("unexpected path: %s", got)
	}
}

func TestNormalizePackagePathsKeepsOrder(t *testing.T) {
	got, err := NormalizePackagePaths([]string{"b", "a"})
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if filepath.Base(got[0]) != "b" || filepath.Base(got[1]) != "a" {
		t.Fatalf("order not kept: %v", got)
	}
	if _, err := NormalizePackagePaths([]string{"a", ""}); !errors.Is(err, ErrPackagePathRequired) {
		t.Fatalf("expected error for empty entry, got %v", err)
	}
}

package compiler

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/osvaldoandrade/movectl/internal/domain"
)

func writeStub(t *testing.T, body string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell stub requires a POSIX shell")
	}
	path := filepath.Join(t.TempDir(), "sui")
	script := "#!/bin/sh\n" + body + "\n"
	if err := os.WriteFile(path, []byte(script), 0o755); err != nil {
		t.Fatalf("write stub: %v", err)
	}
	return path
}

func TestBuildParsesCompilerOutput(t *testing.T) {
	argsFile := filepath.Join(t.TempDir(), "args")
	stub := writeStub(t, `echo "$@" > `+argsFile+`
echo '{"modules":["AQID"],"dependencies":["0x2"],"digest":[1,2,3]}'`)

	tempRoot := t.TempDir()
	runner := NewRunner(stub, WithTempRoot(tempRoot))
	artifact, err := runner.Build(context.Background(), "/work/pkg", domain.BuildOptions{WithUnpublishedDependencies: true})
	if err != nil {
		t.Fatalf("build: %v", err)
	}

	if len(artifact.Modules) != 1 || artifact.Modules[0] != "AQID" {
		t.Fatalf("unexpected modules: %v", artifact.Modules)
	}
	if len(artifact.Dependencies) != 1 || artifact.Dependencies[0] != "0x2" {
		t.Fatalf("unexpected dependencies: %v", artifact.Dependencies)
	}
	if !bytes.Equal(artifact.Digest, []byte{1, 2, 3}) {
		t.Fatalf("unexpected digest: %v", artifact.Digest)
	}

	recorded, err := os.ReadFile(argsFile)
	if err != nil {
		t.Fatalf("read args: %v", err)
	}
	args := strings.Fields(string(recorded))
	want := []string{"move", "build", "--dump-bytecode-as-base64", "--path", "/work/pkg", "--with-unpublished-dependencies", "--install-dir"}
	if len(args) != len(want)+1 {
		t.Fatalf("unexpected args: %v", args)
	}
	for i, arg := range want {
		if args[i] != arg {
			t.Fatalf("arg %d: expected %q, got %q", i, arg, args[i])
		}
	}
	if !strings.HasPrefix(args[len(args)-1], tempRoot) {
		t.Fatalf("install dir %q not under %q", args[len(args)-1], tempRoot)
	}

	entries, err := os.ReadDir(tempRoot)
	if err != nil {
		t.Fatalf("read temp root: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("expected build dir to be removed, found %d entries", len(entries))
	}
}

func TestBuildArgsFlags(t *testing.T) {
	args := BuildArgs("pkg", "out", domain.BuildOptions{SkipFetchLatestGitDeps: true})
	joined := strings.Join(args, " ")
	if joined != "move build --dump-bytecode-as-base64 --path pkg --skip-fetch-latest-git-deps --install-dir out" {
		t.Fatalf("unexpected args: %s", joined)
	}
}

func TestBuildNonZeroExit(t *testing.T) {
	stub := writeStub(t, `echo "error[E01002]: unexpected token" >&2
exit 1`)

	tempRoot := t.TempDir()
	runner := NewRunner(stub, WithTempRoot(tempRoot))
	_, err := runner.Build(context.Background(), "/work/pkg", domain.DefaultBuildOptions())
	if !errors.Is(err, domain.ErrBuildFailed) {
		t.Fatalf("expected build failed, got %v", err)
	}
	var buildErr *domain.BuildFailedError
	if !errors.As(err, &buildErr) {
		t.Fatalf("expected BuildFailedError, got %T", err)
	}
	if !strings.Contains(buildErr.Output, "unexpected token") {
		t.Fatalf("expected compiler output in error, got %q", buildErr.Output)
	}
	if buildErr.PackagePath != "/work/pkg" {
		t.Fatalf("unexpected package path: %s", buildErr.PackagePath)
	}

	entries, _ := os.ReadDir(tempRoot)
	if len(entries) != 0 {
		t.Fatalf("expected build dir to be removed after failure")
	}
}

func TestBuildRejectsMalformedOutput(t *testing.T) {
	cases := map[string]string{
		"not json":      `echo 'BUILDING pkg'`,
		"empty":         `true`,
		"missing":       `echo '{"modules":["AQID"]}'`,
		"digest range":  `echo '{"modules":["AQID"],"dependencies":[],"digest":[256]}'`,
		"empty modules": `echo '{"modules":[],"dependencies":[],"digest":[1]}'`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			runner := NewRunner(writeStub(t, body), WithTempRoot(t.TempDir()))
			_, err := runner.Build(context.Background(), "pkg", domain.DefaultBuildOptions())
			if !errors.Is(err, domain.ErrBuildFailed) {
				t.Fatalf("expected build failed, got %v", err)
			}
		})
	}
}

func TestBuildMissingBinary(t *testing.T) {
	runner := NewRunner(filepath.Join(t.TempDir(), "missing"), WithTempRoot(t.TempDir()))
	_, err := runner.Build(context.Background(), "pkg", domain.DefaultBuildOptions())
	if !errors.Is(err, domain.ErrBuildFailed) {
		t.Fatalf("expected build failed, got %v", err)
	}
}

func TestBuildCancelled(t *testing.T) {
	stub := writeStub(t, `sleep 5`)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	runner := NewRunner(stub, WithTempRoot(t.TempDir()))
	_, err := runner.Build(ctx, "pkg", domain.DefaultBuildOptions())
	if !errors.Is(err, domain.ErrBuildFailed) {
		t.Fatalf("expected build failed, got %v", err)
	}
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected cancellation cause, got %v", err)
	}
}

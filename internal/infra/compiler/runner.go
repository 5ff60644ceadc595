package compiler

import (
	"bytes"
	"context"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/go-json-experiment/json"
	"github.com/osvaldoandrade/movectl/internal/domain"
	"github.com/osvaldoandrade/movectl/internal/infra/schema"
)

const DefaultBinary = "sui"

//go:embed schema.json
var outputSchema []byte

var outputDocument = schema.MustCompile("compiler-output.json", outputSchema)

type execFunc func(ctx context.Context, name string, args ...string) *exec.Cmd

// Runner builds packages by running the Move compiler as a subprocess.
type Runner struct {
	binary      string
	tempRoot    string
	execCommand execFunc
}

type RunnerOption func(*Runner)

// WithTempRoot places build work directories under dir instead of the
// system temp directory.
func WithTempRoot(dir string) RunnerOption {
	return func(r *Runner) {
		r.tempRoot = dir
	}
}

func NewRunner(binary string, opts ...RunnerOption) *Runner {
	if strings.TrimSpace(binary) == "" {
		binary = DefaultBinary
	}
	r := &Runner{
		binary:      binary,
		execCommand: exec.CommandContext,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *Runner) Binary() string {
	return r.binary
}

// BuildArgs returns the compiler arguments for one build.
//
// Generated command: <binary> move build --dump-bytecode-as-base64 --path <pkg> [flags] --install-dir <dir>
func BuildArgs(packagePath, installDir string, opts domain.BuildOptions) []string {
	args := []string{"move", "build", "--dump-bytecode-as-base64", "--path", packagePath}
	if opts.SkipFetchLatestGitDeps {
		args = append(args, "--skip-fetch-latest-git-deps")
	}
	if opts.WithUnpublishedDependencies {
		args = append(args, "--with-unpublished-dependencies")
	}
	return append(args, "--install-dir", installDir)
}

// Build compiles the package at packagePath. Compiler artifacts go to a
// fresh work directory that is removed before Build returns, including when
// ctx is cancelled and the compiler is killed.
func (r *Runner) Build(ctx context.Context, packagePath string, opts domain.BuildOptions) (domain.BuildArtifact, error) {
	workDir, err := os.MkdirTemp(r.tempRoot, "movectl-build-*")
	if err != nil {
		return domain.BuildArtifact{}, &domain.BuildFailedError{
			PackagePath: packagePath,
			Err:         fmt.Errorf("create build dir: %w", err),
		}
	}
	defer func() {
		_ = os.RemoveAll(workDir)
	}()

	cmd := r.execCommand(ctx, r.binary, BuildArgs(packagePath, workDir, opts)...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			err = fmt.Errorf("compiler interrupted: %w", ctxErr)
		} else {
			var exitErr *exec.ExitError
			if errors.As(err, &exitErr) {
				err = fmt.Errorf("compiler exited with code %d", exitErr.ExitCode())
			} else {
				err = fmt.Errorf("run compiler: %w", err)
			}
		}
		return domain.BuildArtifact{}, &domain.BuildFailedError{
			PackagePath: packagePath,
			Output:      combinedOutput(stdout.String(), stderr.String()),
			Err:         err,
		}
	}

	artifact, err := ParseOutput(stdout.Bytes())
	if err != nil {
		return domain.BuildArtifact{}, &domain.BuildFailedError{
			PackagePath: packagePath,
			Output:      combinedOutput(stdout.String(), stderr.String()),
			Err:         err,
		}
	}
	return artifact, nil
}

type buildOutput struct {
	Modules      []string `json:"modules"`
	Dependencies []string `json:"dependencies"`
	Digest       []int    `json:"digest"`
}

// ParseOutput decodes the single JSON object the compiler prints with
// --dump-bytecode-as-base64.
func ParseOutput(data []byte) (domain.BuildArtifact, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return domain.BuildArtifact{}, errors.New("compiler produced no output")
	}
	if err := outputDocument.ValidateJSON(data); err != nil {
		return domain.BuildArtifact{}, fmt.Errorf("parse compiler output: %w", err)
	}

	var out buildOutput
	if err := json.Unmarshal(data, &out); err != nil {
		return domain.BuildArtifact{}, fmt.Errorf("parse compiler output: %w", err)
	}

	digest := make([]byte, len(out.Digest))
	for i, b := range out.Digest {
		digest[i] = byte(b)
	}
	deps := out.Dependencies
	if deps == nil {
		deps = []string{}
	}
	return domain.BuildArtifact{
		Modules:      out.Modules,
		Dependencies: deps,
		Digest:       digest,
	}, nil
}

func combinedOutput(stdout, stderr string) string {
	stdout = strings.TrimSpace(stdout)
	stderr = strings.TrimSpace(stderr)
	switch {
	case stdout == "":
		return stderr
	case stderr == "":
		return stdout
	default:
		return stdout + "\n" + stderr
	}
}

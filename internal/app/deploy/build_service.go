package deploy

import (
	"context"
	"log/slog"

	"github.com/osvaldoandrade/movectl/internal/app/paths"
	"github.com/osvaldoandrade/movectl/internal/domain"
)

type BuildService struct {
	compiler Compiler
	logger   *slog.Logger
}

func NewBuildService(compiler Compiler, logger *slog.Logger) *BuildService {
	if logger == nil {
		logger = slog.Default()
	}
	return &BuildService{compiler: compiler, logger: logger}
}

// Build compiles the package without touching manifests or state. A nil
// opts uses the build defaults.
func (s *BuildService) Build(ctx context.Context, packagePath string, opts *domain.BuildOptions) (domain.BuildArtifact, error) {
	absPath, err := paths.NormalizePackagePath(packagePath)
	if err != nil {
		return domain.BuildArtifact{}, err
	}

	buildOpts := buildOptionsOrDefault(opts, domain.DefaultBuildOptions())
	s.logger.Info("building package", "package", absPath)
	artifact, err := s.compiler.Build(ctx, absPath, buildOpts)
	if err != nil {
		return domain.BuildArtifact{}, err
	}
	s.logger.Debug("package built", "package", absPath, "modules", len(artifact.Modules), "dependencies", len(artifact.Dependencies))
	return artifact, nil
}

package domain

// BuildArtifact is the compiler output for one package. Modules are base64
// encoded bytecode blobs; Digest authorizes an upgrade carrying exactly these
// modules.
type BuildArtifact struct {
	Modules      []string
	Dependencies []string
	Digest       []byte
}

type BuildOptions struct {
	// Also build and include transitive dependencies that are not published yet.
	WithUnpublishedDependencies bool
	// Use locally cached dependency sources instead of refreshing git deps.
	SkipFetchLatestGitDeps bool
}

func DefaultBuildOptions() BuildOptions {
	return BuildOptions{WithUnpublishedDependencies: true}
}

func DefaultPublishBuildOptions() BuildOptions {
	return BuildOptions{SkipFetchLatestGitDeps: true}
}

func DefaultUpgradeBuildOptions() BuildOptions {
	return BuildOptions{WithUnpublishedDependencies: true}
}

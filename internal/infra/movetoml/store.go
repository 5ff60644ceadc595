package movetoml

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/osvaldoandrade/movectl/internal/domain"
	"github.com/osvaldoandrade/movectl/internal/infra/filesystem"
	"github.com/pelletier/go-toml/v2"
)

const (
	sectionPackage      = "package"
	sectionDependencies = "dependencies"
	sectionAddresses    = "addresses"
	keyPublishedAt      = "published-at"
	keyRev              = "rev"
	keyGit              = "git"
	keySubdir           = "subdir"

	manifestPerm os.FileMode = 0o644
)

var ErrSwapInProgress = errors.New("manifest backup already exists")

// FrameworkDependency names the framework package every Move package depends
// on. Its rev is pinned to the network's framework branch before a build.
type FrameworkDependency struct {
	Name   string
	Git    string
	Subdir string
}

func DefaultFrameworkDependency() FrameworkDependency {
	return FrameworkDependency{
		Name:   "Sui",
		Git:    "https://github.com/MystenLabs/sui.git",
		Subdir: "crates/sui-framework/packages/sui-framework",
	}
}

// Store reads and rewrites Move manifests. Documents are handled as plain
// maps so sections it does not know about survive a rewrite.
type Store struct {
	framework FrameworkDependency
}

func NewStore(framework FrameworkDependency) *Store {
	defaults := DefaultFrameworkDependency()
	if strings.TrimSpace(framework.Name) == "" {
		framework.Name = defaults.Name
	}
	if strings.TrimSpace(framework.Git) == "" {
		framework.Git = defaults.Git
	}
	if strings.TrimSpace(framework.Subdir) == "" {
		framework.Subdir = defaults.Subdir
	}
	return &Store{framework: framework}
}

// PinNetworkDependency points the framework dependency at the network's
// framework revision. The file is left untouched when it already is.
func (s *Store) PinNetworkDependency(ctx context.Context, packagePath string, network domain.Network) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	path := domain.ManifestPath(packagePath)
	doc, err := load(path)
	if err != nil {
		return err
	}

	deps, err := table(doc, sectionDependencies, path)
	if err != nil {
		return err
	}

	rev := network.FrameworkRevision()
	dep, ok := deps[s.framework.Name].(map[string]any)
	if ok {
		if current, _ := dep[keyRev].(string); current == rev {
			return nil
		}
		dep[keyRev] = rev
	} else {
		deps[s.framework.Name] = map[string]any{
			keyGit:    s.framework.Git,
			keySubdir: s.framework.Subdir,
			keyRev:    rev,
		}
	}

	return save(ctx, path, doc)
}

// WriteNetworkManifest snapshots Move.toml into Move.<network>.toml with
// published-at and every named address set to packageID.
func (s *Store) WriteNetworkManifest(ctx context.Context, packagePath, packageID string, network domain.Network) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	source := domain.ManifestPath(packagePath)
	doc, err := load(source)
	if err != nil {
		return err
	}

	pkg, err := table(doc, sectionPackage, source)
	if err != nil {
		return err
	}
	pkg[keyPublishedAt] = packageID

	if _, present := doc[sectionAddresses]; present {
		addresses, err := table(doc, sectionAddresses, source)
		if err != nil {
			return err
		}
		for name := range addresses {
			addresses[name] = packageID
		}
	}

	return save(ctx, domain.NetworkManifestPath(packagePath, network), doc)
}

// UpdatePublishedAt moves the network copy's published-at to packageID after
// an upgrade.
func (s *Store) UpdatePublishedAt(ctx context.Context, packagePath, packageID string, network domain.Network) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	path := domain.NetworkManifestPath(packagePath, network)
	doc, err := load(path)
	if err != nil {
		return err
	}
	pkg, err := table(doc, sectionPackage, path)
	if err != nil {
		return err
	}
	pkg[keyPublishedAt] = packageID
	return save(ctx, path, doc)
}

// SwapToNetworkManifest backs up Move.toml and replaces it with the network
// copy so dependents build against the published addresses. Every successful
// swap must be followed by RestoreManifest.
func (s *Store) SwapToNetworkManifest(ctx context.Context, packagePath string, network domain.Network) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	manifest := domain.ManifestPath(packagePath)
	backup := domain.ManifestBackupPath(packagePath)
	networkCopy := domain.NetworkManifestPath(packagePath, network)

	if err := requireFile(manifest); err != nil {
		return err
	}
	if err := requireFile(networkCopy); err != nil {
		return err
	}
	exists, err := filesystem.Exists(backup)
	if err != nil {
		return fmt.Errorf("stat %s: %w", backup, err)
	}
	if exists {
		return fmt.Errorf("%w: %s", ErrSwapInProgress, backup)
	}

	if err := filesystem.CopyFile(ctx, manifest, backup); err != nil {
		return fmt.Errorf("back up %s: %w", manifest, err)
	}
	if err := filesystem.CopyFile(ctx, networkCopy, manifest); err != nil {
		return errors.Join(fmt.Errorf("swap %s: %w", manifest, err), s.RestoreManifest(context.WithoutCancel(ctx), packagePath))
	}
	return nil
}

// RestoreManifest puts the backed up Move.toml back in place. Without a
// backup it does nothing.
func (s *Store) RestoreManifest(ctx context.Context, packagePath string) error {
	backup := domain.ManifestBackupPath(packagePath)
	exists, err := filesystem.Exists(backup)
	if err != nil {
		return fmt.Errorf("stat %s: %w", backup, err)
	}
	if !exists {
		return nil
	}

	manifest := domain.ManifestPath(packagePath)
	if err := filesystem.CopyFile(ctx, backup, manifest); err != nil {
		return fmt.Errorf("restore %s: %w", manifest, err)
	}
	if err := os.Remove(backup); err != nil {
		return fmt.Errorf("remove %s: %w", backup, err)
	}
	return nil
}

func (s *Store) HasNetworkManifest(packagePath string, network domain.Network) (bool, error) {
	return filesystem.Exists(domain.NetworkManifestPath(packagePath, network))
}

// Load returns the parsed manifest at path.
func Load(path string) (map[string]any, error) {
	return load(path)
}

func load(path string) (map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, &domain.ManifestNotFoundError{Path: path}
		}
		return nil, fmt.Errorf("read manifest %s: %w", path, err)
	}

	doc := map[string]any{}
	if err := toml.Unmarshal(data, &doc); err != nil {
		return nil, &domain.ManifestCorruptError{Path: path, Err: err}
	}
	return doc, nil
}

func save(ctx context.Context, path string, doc map[string]any) error {
	data, err := toml.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode manifest %s: %w", path, err)
	}
	return filesystem.WriteFileAtomic(ctx, path, data, manifestPerm)
}

// table returns doc[name] as a table, creating it when absent.
func table(doc map[string]any, name, path string) (map[string]any, error) {
	raw, ok := doc[name]
	if !ok {
		created := map[string]any{}
		doc[name] = created
		return created, nil
	}
	t, ok := raw.(map[string]any)
	if !ok {
		return nil, &domain.ManifestCorruptError{Path: path, Err: fmt.Errorf("[%s] is not a table", name)}
	}
	return t, nil
}

func requireFile(path string) error {
	exists, err := filesystem.Exists(path)
	if err != nil {
		return fmt.Errorf("stat %s: %w", path, err)
	}
	if !exists {
		return &domain.ManifestNotFoundError{Path: path}
	}
	return nil
}

package cli

import (
	"encoding/hex"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/osvaldoandrade/movectl/internal/domain"
	"github.com/osvaldoandrade/movectl/pkg/publisher"
	"github.com/spf13/cobra"
)

type buildFlags struct {
	skipFetch   bool
	unpublished bool
}

func (f *buildFlags) register(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&f.skipFetch, "skip-fetch-latest-git-deps", false, "Use cached git dependencies")
	cmd.Flags().BoolVar(&f.unpublished, "with-unpublished-dependencies", false, "Include unpublished dependencies in the build")
}

// options returns nil unless a build flag was given, leaving the operation's
// defaults in place. Given flags override those defaults.
func (f *buildFlags) options(cmd *cobra.Command, defaults domain.BuildOptions) *domain.BuildOptions {
	changed := false
	opts := defaults
	if cmd.Flags().Changed("skip-fetch-latest-git-deps") {
		opts.SkipFetchLatestGitDeps = f.skipFetch
		changed = true
	}
	if cmd.Flags().Changed("with-unpublished-dependencies") {
		opts.WithUnpublishedDependencies = f.unpublished
		changed = true
	}
	if !changed {
		return nil
	}
	return &opts
}

func newBuildCmd(opts *RootOptions) *cobra.Command {
	var build buildFlags
	cmd := &cobra.Command{
		Use:   "build <package>",
		Short: "Compile a package without publishing it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := withTimeout(cmd.Context(), opts.Config.Timeout)
			defer cancel()

			client, err := openClient(ctx, opts, false)
			if err != nil {
				return err
			}
			defer client.Close()

			var artifact publisher.BuildArtifact
			err = withSpinner(ctx, cmd.ErrOrStderr(), spinnerEnabled(cmd.ErrOrStderr(), opts.JSONOutput), "building "+args[0], func() error {
				var buildErr error
				artifact, buildErr = client.Build(ctx, args[0], build.options(cmd, domain.DefaultBuildOptions()))
				return buildErr
			})
			if err != nil {
				return err
			}
			return writeBuildResult(cmd, artifact, opts.JSONOutput)
		},
	}
	build.register(cmd)
	return cmd
}

func newPublishCmd(opts *RootOptions) *cobra.Command {
	var build buildFlags
	var enforce, skipManifest, unsigned bool
	var captures []string
	cmd := &cobra.Command{
		Use:   "publish <package>",
		Short: "Publish a package and record its ids",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			parser, err := parseCaptures(captures)
			if err != nil {
				return err
			}
			ctx, cancel := withTimeout(cmd.Context(), opts.Config.Timeout)
			defer cancel()

			client, err := openClient(ctx, opts, !unsigned)
			if err != nil {
				return err
			}
			defer client.Close()

			publishOpts := publisher.PublishOptions{
				Build:             build.options(cmd, domain.DefaultPublishBuildOptions()),
				Enforce:           enforce,
				SkipManifestWrite: skipManifest,
				ResultParser:      parser,
			}
			if unsigned {
				prepared, err := client.PreparePublish(ctx, args[0], publishOpts)
				if err != nil {
					return err
				}
				return writePrepared(cmd, prepared, opts.JSONOutput)
			}

			var result publisher.PublishResult
			err = withSpinner(ctx, cmd.ErrOrStderr(), spinnerEnabled(cmd.ErrOrStderr(), opts.JSONOutput), "publishing "+args[0], func() error {
				var publishErr error
				result, publishErr = client.Publish(ctx, args[0], publishOpts)
				return publishErr
			})
			if err != nil {
				return err
			}
			return writePublishResults(cmd, []publisher.PublishResult{result}, opts.JSONOutput)
		},
	}
	build.register(cmd)
	cmd.Flags().BoolVar(&enforce, "enforce", false, "Publish even if a network manifest shows the package was published")
	cmd.Flags().BoolVar(&skipManifest, "skip-manifest", false, "Do not write Move.<network>.toml")
	cmd.Flags().BoolVar(&unsigned, "unsigned", false, "Print the unsigned transaction instead of submitting it")
	cmd.Flags().StringArrayVar(&captures, "capture", nil, "Record a created object's id as field=Type (repeatable)")
	return cmd
}

func newPublishBatchCmd(opts *RootOptions) *cobra.Command {
	var enforce, skipManifest bool
	cmd := &cobra.Command{
		Use:   "publish-batch <package>...",
		Short: "Publish packages in order, each built against the ones before it",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := withTimeout(cmd.Context(), opts.Config.Timeout)
			defer cancel()

			client, err := openClient(ctx, opts, true)
			if err != nil {
				return err
			}
			defer client.Close()

			entries := make([]publisher.BatchEntry, 0, len(args))
			for _, path := range args {
				entries = append(entries, publisher.BatchEntry{
					PackagePath: path,
					Options:     publisher.PublishOptions{Enforce: enforce, SkipManifestWrite: skipManifest},
				})
			}
			results, err := client.PublishBatch(ctx, entries)
			if len(results) > 0 {
				if writeErr := writePublishResults(cmd, results, opts.JSONOutput); writeErr != nil && err == nil {
					err = writeErr
				}
			}
			return err
		},
	}
	cmd.Flags().BoolVar(&enforce, "enforce", false, "Publish even if a network manifest shows a package was published")
	cmd.Flags().BoolVar(&skipManifest, "skip-manifest", false, "Do not write Move.<network>.toml files")
	return cmd
}

func newUpgradeCmd(opts *RootOptions) *cobra.Command {
	var build buildFlags
	var packageID, upgradeCap, policy string
	var deps []string
	var unsigned bool
	cmd := &cobra.Command{
		Use:   "upgrade <package>",
		Short: "Upgrade a published package",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			parsedPolicy, err := publisher.ParseUpgradePolicy(policy)
			if err != nil {
				return err
			}
			ctx, cancel := withTimeout(cmd.Context(), opts.Config.Timeout)
			defer cancel()

			client, err := openClient(ctx, opts, !unsigned)
			if err != nil {
				return err
			}
			defer client.Close()

			upgradeOpts := publisher.UpgradeOptions{
				Build:  build.options(cmd, domain.DefaultUpgradeBuildOptions()),
				Policy: parsedPolicy,
			}
			if unsigned {
				if len(deps) > 0 {
					return fmt.Errorf("--dep cannot be combined with --unsigned")
				}
				prepared, err := client.PrepareUpgrade(ctx, args[0], packageID, upgradeCap, upgradeOpts)
				if err != nil {
					return err
				}
				return writePrepared(cmd, prepared, opts.JSONOutput)
			}

			var result publisher.UpgradeResult
			err = withSpinner(ctx, cmd.ErrOrStderr(), spinnerEnabled(cmd.ErrOrStderr(), opts.JSONOutput), "upgrading "+args[0], func() error {
				var upgradeErr error
				result, upgradeErr = client.Upgrade(ctx, args[0], packageID, upgradeCap, deps, upgradeOpts)
				return upgradeErr
			})
			if err != nil {
				return err
			}
			return writeUpgradeResult(cmd, result, opts.JSONOutput)
		},
	}
	build.register(cmd)
	cmd.Flags().StringVar(&packageID, "package-id", "", "Package to upgrade (defaults to the recorded packageId)")
	cmd.Flags().StringVar(&upgradeCap, "upgrade-cap", "", "Upgrade capability (defaults to the recorded upgradeCapId)")
	cmd.Flags().StringVar(&policy, "policy", "compatible", "Upgrade policy (compatible, additive, dep-only)")
	cmd.Flags().StringArrayVar(&deps, "dep", nil, "Dependency package to build against its published address (repeatable)")
	cmd.Flags().BoolVar(&unsigned, "unsigned", false, "Print the unsigned transaction instead of submitting it")
	return cmd
}

func newStateCmd(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "state <package>",
		Short: "Show the recorded publish state of a package",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := openClient(cmd.Context(), opts, false)
			if err != nil {
				return err
			}
			defer client.Close()

			state, err := client.State(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return writeState(cmd, state, opts.JSONOutput)
		},
	}
}

func newHistoryCmd(opts *RootOptions) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "history [package]",
		Short: "List recorded deployments, newest first",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := openClient(cmd.Context(), opts, true)
			if err != nil {
				return err
			}
			defer client.Close()

			query := publisher.HistoryQuery{Limit: limit}
			if len(args) == 1 {
				query.PackagePath = args[0]
			}
			entries, err := client.History(cmd.Context(), query)
			if err != nil {
				return err
			}
			return writeHistory(cmd, entries, opts.JSONOutput)
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum entries to show (0 for all)")
	return cmd
}

// parseCaptures turns field=Type pairs into a result parser.
func parseCaptures(values []string) (publisher.ResultParser, error) {
	if len(values) == 0 {
		return nil, nil
	}
	fields := make(map[string]string, len(values))
	for _, value := range values {
		field, objectType, ok := strings.Cut(value, "=")
		field = strings.TrimSpace(field)
		objectType = strings.TrimSpace(objectType)
		if !ok || field == "" || objectType == "" {
			return nil, fmt.Errorf("%w: %q", errInvalidCapture, value)
		}
		fields[field] = objectType
	}
	return publisher.CaptureByType(fields), nil
}

type buildOutput struct {
	Modules      []string `json:"modules"`
	Dependencies []string `json:"dependencies"`
	Digest       string   `json:"digest"`
}

type preparedOutput struct {
	Sender  string `json:"sender"`
	TxBytes string `json:"txBytes"`
	TxHash  string `json:"txHash"`
}

type historyEntryOutput struct {
	ID           string `json:"id"`
	Kind         string `json:"kind"`
	Status       string `json:"status"`
	PackagePath  string `json:"packagePath"`
	Network      string `json:"network"`
	PackageID    string `json:"packageId,omitempty"`
	UpgradeCapID string `json:"upgradeCapId,omitempty"`
	TxDigest     string `json:"txDigest,omitempty"`
	TxHash       string `json:"txHash,omitempty"`
	SourceCommit string `json:"sourceCommit,omitempty"`
	SourceDirty  bool   `json:"sourceDirty,omitempty"`
	Error        string `json:"error,omitempty"`
	RecordedAt   string `json:"recordedAt"`
}

func writeBuildResult(cmd *cobra.Command, artifact publisher.BuildArtifact, asJSON bool) error {
	out := cmd.OutOrStdout()
	if asJSON {
		return writeJSON(out, buildOutput{
			Modules:      artifact.Modules,
			Dependencies: artifact.Dependencies,
			Digest:       hex.EncodeToString(artifact.Digest),
		})
	}

	ui := newRenderer(out, asJSON)
	if err := writeKV(out, ui, "Modules", fmt.Sprintf("%d", len(artifact.Modules))); err != nil {
		return err
	}
	if err := writeKV(out, ui, "Dependencies", strings.Join(artifact.Dependencies, ", ")); err != nil {
		return err
	}
	return writeKV(out, ui, "Digest", hex.EncodeToString(artifact.Digest))
}

func writePublishResults(cmd *cobra.Command, results []publisher.PublishResult, asJSON bool) error {
	out := cmd.OutOrStdout()
	if asJSON {
		if len(results) == 1 {
			return writeJSON(out, results[0])
		}
		return writeJSON(out, results)
	}

	ui := newRenderer(out, asJSON)
	for i, result := range results {
		if i > 0 {
			if _, err := fmt.Fprintln(out); err != nil {
				return err
			}
		}
		if err := writeKV(out, ui, "Package ID", ui.ok(result.PackageID)); err != nil {
			return err
		}
		if err := writeKV(out, ui, "Upgrade Cap", result.UpgradeCapID); err != nil {
			return err
		}
		if result.Digest != "" {
			if err := writeKV(out, ui, "Digest", result.Digest); err != nil {
				return err
			}
		}
		if len(result.PublisherIDs) > 0 {
			if err := writeKV(out, ui, "Publishers", strings.Join(result.PublisherIDs, ", ")); err != nil {
				return err
			}
		}
		if len(result.Created) == 0 {
			continue
		}
		if _, err := fmt.Fprintf(out, "%s:\n", ui.key("Created")); err != nil {
			return err
		}
		for _, created := range result.Created {
			owner := string(created.Owner)
			if created.OwnerRef != "" {
				owner += " " + created.OwnerRef
			}
			if _, err := fmt.Fprintf(out, "  %s %s %s\n", created.ObjectID, ui.accent(created.Type), ui.dim("("+owner+")")); err != nil {
				return err
			}
		}
	}
	return nil
}

func writeUpgradeResult(cmd *cobra.Command, result publisher.UpgradeResult, asJSON bool) error {
	out := cmd.OutOrStdout()
	if asJSON {
		return writeJSON(out, result)
	}

	ui := newRenderer(out, asJSON)
	if err := writeKV(out, ui, "Package ID", ui.ok(result.PackageID)); err != nil {
		return err
	}
	if result.UpgradeCapID != "" {
		if err := writeKV(out, ui, "Upgrade Cap", result.UpgradeCapID); err != nil {
			return err
		}
	}
	if result.Digest != "" {
		return writeKV(out, ui, "Digest", result.Digest)
	}
	return nil
}

func writePrepared(cmd *cobra.Command, prepared publisher.PreparedTransaction, asJSON bool) error {
	out := cmd.OutOrStdout()
	if asJSON {
		return writeJSON(out, preparedOutput(prepared))
	}

	ui := newRenderer(out, asJSON)
	if err := writeKV(out, ui, "Sender", prepared.Sender); err != nil {
		return err
	}
	if err := writeKV(out, ui, "Tx Hash", prepared.TxHash); err != nil {
		return err
	}
	return writeKV(out, ui, "Tx Bytes", prepared.TxBytes)
}

func writeState(cmd *cobra.Command, state publisher.PublishState, asJSON bool) error {
	out := cmd.OutOrStdout()
	if asJSON {
		return writeJSON(out, state)
	}

	ui := newRenderer(out, asJSON)
	keys := make([]string, 0, len(state))
	for key := range state {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		if err := writeKV(out, ui, key, formatStateValue(state[key])); err != nil {
			return err
		}
	}
	return nil
}

func formatStateValue(value any) string {
	switch v := value.(type) {
	case string:
		return v
	case []any:
		parts := make([]string, 0, len(v))
		for _, item := range v {
			parts = append(parts, formatStateValue(item))
		}
		return strings.Join(parts, ", ")
	default:
		return fmt.Sprint(v)
	}
}

func writeHistory(cmd *cobra.Command, entries []publisher.JournalEntry, asJSON bool) error {
	out := cmd.OutOrStdout()
	if asJSON {
		payload := make([]historyEntryOutput, 0, len(entries))
		for _, entry := range entries {
			payload = append(payload, historyEntryOutput{
				ID:           entry.ID,
				Kind:         string(entry.Kind),
				Status:       string(entry.Status),
				PackagePath:  entry.PackagePath,
				Network:      string(entry.Network),
				PackageID:    entry.PackageID,
				UpgradeCapID: entry.UpgradeCapID,
				TxDigest:     entry.TxDigest,
				TxHash:       entry.TxHash,
				SourceCommit: entry.SourceCommit,
				SourceDirty:  entry.SourceDirty,
				Error:        entry.Error,
				RecordedAt:   entry.RecordedAt.Format(time.RFC3339Nano),
			})
		}
		return writeJSON(out, payload)
	}

	ui := newRenderer(out, asJSON)
	for _, entry := range entries {
		status := ui.ok(string(entry.Status))
		if entry.Status == domain.StatusFailed {
			status = ui.err(string(entry.Status))
		}
		commit := entry.SourceCommit
		if len(commit) > 12 {
			commit = commit[:12]
		}
		if entry.SourceDirty {
			commit += "+dirty"
		}
		if _, err := fmt.Fprintf(out, "%s %s %s %s %s %s\n",
			ui.dim(entry.RecordedAt.Format(time.RFC3339)),
			colorKind(ui, entry.Kind),
			status,
			valueOrDash(entry.PackageID),
			valueOrDash(entry.TxDigest),
			valueOrDash(commit),
		); err != nil {
			return err
		}
	}
	return nil
}

func writeKV(out io.Writer, ui renderer, key, value string) error {
	_, err := fmt.Fprintf(out, "%s: %s\n", ui.key(key), value)
	return err
}

func colorKind(ui renderer, kind domain.OperationKind) string {
	switch kind {
	case domain.OperationPublish:
		return ui.ok(string(kind))
	case domain.OperationUpgrade:
		return ui.warn(string(kind))
	default:
		return ui.dim(string(kind))
	}
}

func valueOrDash(value string) string {
	if value == "" {
		return "-"
	}
	return value
}

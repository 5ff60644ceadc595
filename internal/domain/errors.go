package domain

import (
	"errors"
	"fmt"
	"strings"
)

var ErrBuildFailed = errors.New("build failed")
var ErrManifestNotFound = errors.New("manifest not found")
var ErrManifestCorrupt = errors.New("manifest corrupt")
var ErrAlreadyPublished = errors.New("package already published")
var ErrPublishFailed = errors.New("publish failed")
var ErrUpgradeFailed = errors.New("upgrade failed")
var ErrStateNotFound = errors.New("publish state not found")
var ErrStateCorrupt = errors.New("publish state corrupt")

// BuildFailedError reports a compiler run that exited non-zero, was
// interrupted, or produced output that could not be parsed. Output holds what
// the compiler wrote.
type BuildFailedError struct {
	PackagePath string
	Output      string
	Err         error
}

func (e *BuildFailedError) Error() string {
	msg := fmt.Sprintf("build package %s: %v", e.PackagePath, e.Err)
	if out := strings.TrimSpace(e.Output); out != "" {
		msg += "\n" + out
	}
	return msg
}

func (e *BuildFailedError) Unwrap() []error {
	return []error{ErrBuildFailed, e.Err}
}

type ManifestNotFoundError struct {
	Path string
}

func (e *ManifestNotFoundError) Error() string {
	return fmt.Sprintf("manifest not found: %s", e.Path)
}

func (e *ManifestNotFoundError) Unwrap() error {
	return ErrManifestNotFound
}

type ManifestCorruptError struct {
	Path string
	Err  error
}

func (e *ManifestCorruptError) Error() string {
	return fmt.Sprintf("manifest %s: %v", e.Path, e.Err)
}

func (e *ManifestCorruptError) Unwrap() []error {
	return []error{ErrManifestCorrupt, e.Err}
}

type AlreadyPublishedError struct {
	PackagePath string
	Network     Network
}

func (e *AlreadyPublishedError) Error() string {
	return fmt.Sprintf("package %s already published to %s (%s exists; use enforce to publish again)",
		e.PackagePath, e.Network, NetworkManifestPath(e.PackagePath, e.Network))
}

func (e *AlreadyPublishedError) Unwrap() error {
	return ErrAlreadyPublished
}

// PublishFailedError reports a publish transaction that could not be
// submitted or that the ledger did not execute successfully. LedgerError is
// the ledger's own status text when it produced one.
type PublishFailedError struct {
	PackagePath string
	Network     Network
	Digest      string
	LedgerError string
	Err         error
}

func (e *PublishFailedError) Error() string {
	return ledgerFailureMessage("publish package "+e.PackagePath, e.Network, e.Digest, e.LedgerError, e.Err)
}

func (e *PublishFailedError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrPublishFailed}
	}
	return []error{ErrPublishFailed, e.Err}
}

type UpgradeFailedError struct {
	PackagePath string
	PackageID   string
	Network     Network
	Digest      string
	LedgerError string
	Err         error
}

func (e *UpgradeFailedError) Error() string {
	subject := fmt.Sprintf("upgrade package %s (%s)", e.PackagePath, e.PackageID)
	return ledgerFailureMessage(subject, e.Network, e.Digest, e.LedgerError, e.Err)
}

func (e *UpgradeFailedError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrUpgradeFailed}
	}
	return []error{ErrUpgradeFailed, e.Err}
}

type StateCorruptError struct {
	Path string
	Err  error
}

func (e *StateCorruptError) Error() string {
	return fmt.Sprintf("publish state %s: %v", e.Path, e.Err)
}

func (e *StateCorruptError) Unwrap() []error {
	return []error{ErrStateCorrupt, e.Err}
}

func ledgerFailureMessage(subject string, network Network, digest, ledgerErr string, err error) string {
	var builder strings.Builder
	builder.WriteString(subject)
	builder.WriteString(" on ")
	builder.WriteString(string(network))
	if digest != "" {
		builder.WriteString(" (tx ")
		builder.WriteString(digest)
		builder.WriteString(")")
	}
	if ledgerErr != "" {
		builder.WriteString(": ")
		builder.WriteString(ledgerErr)
	}
	if err != nil {
		builder.WriteString(": ")
		builder.WriteString(err.Error())
	}
	return builder.String()
}

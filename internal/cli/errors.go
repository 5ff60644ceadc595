package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/go-json-experiment/json"
	"github.com/go-json-experiment/json/jsontext"
	"github.com/osvaldoandrade/movectl/internal/app/deploy"
	"github.com/osvaldoandrade/movectl/internal/app/paths"
	"github.com/osvaldoandrade/movectl/internal/config"
	"github.com/osvaldoandrade/movectl/internal/domain"
	"github.com/osvaldoandrade/movectl/internal/infra/keys"
	"github.com/osvaldoandrade/movectl/internal/infra/movetoml"
	"github.com/osvaldoandrade/movectl/pkg/publisher"
)

type ErrorKind string

const (
	KindInternal   ErrorKind = "internal"
	KindValidation ErrorKind = "validation"
	KindNotFound   ErrorKind = "not_found"
	KindConflict   ErrorKind = "conflict"
	KindRejected   ErrorKind = "rejected"
	KindBuild      ErrorKind = "build"
)

const (
	ExitInternal = 1
	ExitInvalid  = 2
	ExitNotFound = 3
	ExitConflict = 4
	ExitRejected = 5
	ExitBuild    = 6
)

var errInvalidCapture = errors.New("invalid capture, expected field=Type")

type ExitError struct {
	Code    int
	Kind    ErrorKind
	Message string
	Err     error
}

func (e ExitError) Error() string {
	return errorMessage(e)
}

// NormalizeError maps an error to its exit code. Validation is checked
// first: a publish that failed for want of a signer is a usage error, not a
// ledger rejection.
func NormalizeError(err error) ExitError {
	if err == nil {
		return ExitError{Code: 0}
	}
	var exitErr ExitError
	if errors.As(err, &exitErr) {
		if exitErr.Code == 0 {
			exitErr.Code = ExitInternal
		}
		return exitErr
	}

	switch {
	case errors.Is(err, paths.ErrPackagePathRequired),
		errors.Is(err, deploy.ErrSignerRequired),
		errors.Is(err, deploy.ErrLedgerRequired),
		errors.Is(err, deploy.ErrSenderRequired),
		errors.Is(err, deploy.ErrSignerMismatch),
		errors.Is(err, deploy.ErrPackageIDRequired),
		errors.Is(err, deploy.ErrUpgradeCapRequired),
		errors.Is(err, deploy.ErrInvalidPolicy),
		errors.Is(err, keys.ErrInvalidSecretKey),
		errors.Is(err, publisher.ErrJournalDisabled),
		errors.Is(err, errInvalidCapture),
		errors.Is(err, domain.ErrManifestCorrupt),
		errors.Is(err, domain.ErrStateCorrupt):
		return ExitError{Code: ExitInvalid, Kind: KindValidation, Err: err}
	case errors.Is(err, domain.ErrBuildFailed):
		return ExitError{Code: ExitBuild, Kind: KindBuild, Err: err}
	case errors.Is(err, domain.ErrPublishFailed),
		errors.Is(err, domain.ErrUpgradeFailed),
		errors.Is(err, deploy.ErrInsufficientGas):
		return ExitError{Code: ExitRejected, Kind: KindRejected, Err: err}
	case errors.Is(err, domain.ErrAlreadyPublished),
		errors.Is(err, movetoml.ErrSwapInProgress):
		return ExitError{Code: ExitConflict, Kind: KindConflict, Err: err}
	case errors.Is(err, domain.ErrManifestNotFound),
		errors.Is(err, domain.ErrStateNotFound),
		errors.Is(err, config.ErrConfigFileNotFound):
		return ExitError{Code: ExitNotFound, Kind: KindNotFound, Err: err}
	default:
		return ExitError{Code: ExitInternal, Kind: KindInternal, Err: err}
	}
}

func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	return NormalizeError(err).Code
}

func writeCLIError(w io.Writer, exitErr ExitError, asJSON bool) error {
	if exitErr.Code == 0 {
		return nil
	}
	message := errorMessage(exitErr)
	if asJSON {
		payload := struct {
			Code    int    `json:"code"`
			Kind    string `json:"kind"`
			Message string `json:"message"`
		}{
			Code:    exitErr.Code,
			Kind:    string(exitErr.Kind),
			Message: message,
		}
		return writeJSON(w, payload)
	}

	ui := newRenderer(w, false)
	prefix := "Error"
	if exitErr.Kind != "" {
		prefix = fmt.Sprintf("Error (%s)", exitErr.Kind)
	}
	prefix = ui.err(prefix)
	_, err := fmt.Fprintf(w, "%s: %s\n", prefix, message)
	return err
}

func errorMessage(exitErr ExitError) string {
	if exitErr.Message != "" {
		return exitErr.Message
	}
	if exitErr.Err != nil {
		return exitErr.Err.Error()
	}
	return "unknown error"
}

func writeJSON(w io.Writer, v any) error {
	return json.MarshalEncode(jsontext.NewEncoder(w, jsontext.WithIndent("  ")), v)
}

package publisher

import (
	"errors"

	"github.com/osvaldoandrade/movectl/internal/app/deploy"
	"github.com/osvaldoandrade/movectl/internal/domain"
)

var ErrJournalDisabled = errors.New("publisher: deployment journal is disabled")

// Errors returned by Client operations match these with errors.Is.
var (
	ErrBuildFailed        = domain.ErrBuildFailed
	ErrManifestNotFound   = domain.ErrManifestNotFound
	ErrManifestCorrupt    = domain.ErrManifestCorrupt
	ErrAlreadyPublished   = domain.ErrAlreadyPublished
	ErrPublishFailed      = domain.ErrPublishFailed
	ErrUpgradeFailed      = domain.ErrUpgradeFailed
	ErrStateNotFound      = domain.ErrStateNotFound
	ErrStateCorrupt       = domain.ErrStateCorrupt
	ErrSignerRequired     = deploy.ErrSignerRequired
	ErrSenderRequired     = deploy.ErrSenderRequired
	ErrInsufficientGas    = deploy.ErrInsufficientGas
	ErrUpgradeCapRequired = deploy.ErrUpgradeCapRequired
)

package deploy

import "errors"

var ErrSignerRequired = errors.New("signer is required to submit transactions")
var ErrLedgerRequired = errors.New("ledger client is required to submit transactions")
var ErrSenderRequired = errors.New("sender address is required")
var ErrSignerMismatch = errors.New("signed transactions must be sent from the signer address")
var ErrPackageIDRequired = errors.New("package id is required")
var ErrUpgradeCapRequired = errors.New("upgrade cap id is required")
var ErrNoPublishedPackage = errors.New("ledger reported no published package")
var ErrInvalidPolicy = errors.New("invalid upgrade policy")
var ErrInsufficientGas = errors.New("gas coins do not cover the gas budget")

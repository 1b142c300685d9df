package wallet

import "errors"

var (
	ErrWalletNotFound    = errors.New("wallet: wallet not found")
	ErrWalletExists      = errors.New("wallet: wallet already exists for user")
	ErrProvisionerFailed = errors.New("wallet: provisioner failed")
	ErrMissingUserID     = errors.New("wallet: user ID is required")
)

package util

import "errors"

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrModuleNotFound     = errors.New("module not found")
	ErrInvalidStorageMode = errors.New("invalid storage mode")

	// ErrLookupFailed wraps read failures during a gap-fill pass. The affected
	// module is skipped and the batch continues; create failures abort instead.
	ErrLookupFailed = errors.New("lookup failed")
)

package installer

import "errors"

var (
	ErrInvalidState        = errors.New("install task is not in a valid state for this operation")
	ErrInstallNotSupported = errors.New("install variant is not supported on this platform")
	ErrDuplicateStrategy   = errors.New("strategy already registered for variant kind")
)

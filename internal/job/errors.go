package job

import (
	"errors"

	"github.com/eagraf/habitat-store/core/state/library"
)

var (
	ErrDownload     = errors.New("download failed")
	ErrVerification = errors.New("downloaded file does not match its hash")
	ErrExtraction   = errors.New("extraction failed")
	ErrUninstall    = errors.New("uninstall failed")
)

// Worker exit codes. The orchestrator only tells zero from nonzero, the rest is for
// people reading logs.
const (
	ExitOK           = 0
	ExitFailure      = 1
	ExitUsage        = 2
	ExitDownload     = 3
	ExitVerification = 4
	ExitExtraction   = 5
	ExitUninstall    = 6
)

func ExitCode(err error) int {
	switch {
	case err == nil:
		return ExitOK
	case errors.Is(err, library.ErrInvalidAppID):
		return ExitUsage
	case errors.Is(err, ErrDownload):
		return ExitDownload
	case errors.Is(err, ErrVerification):
		return ExitVerification
	case errors.Is(err, ErrExtraction):
		return ExitExtraction
	case errors.Is(err, ErrUninstall):
		return ExitUninstall
	}
	return ExitFailure
}

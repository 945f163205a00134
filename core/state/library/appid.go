package library

import (
	"errors"
	"fmt"
	"regexp"
)

var ErrInvalidAppID = errors.New("invalid app id")

// App ids name a directory under the install root, so they must be a single plain path
// element. Keep in sync with the catalog schema.
var appIDPattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]{0,127}$`)

func ValidateAppID(appID string) error {
	if !appIDPattern.MatchString(appID) {
		return fmt.Errorf("%w: %q", ErrInvalidAppID, appID)
	}
	return nil
}

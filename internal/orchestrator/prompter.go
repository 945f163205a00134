package orchestrator

import (
	"context"

	"github.com/eagraf/habitat-store/core/state/catalog"
	"github.com/eagraf/habitat-store/core/state/library"
)

//go:generate mockgen -destination=mocks/prompter.go -package=mocks github.com/eagraf/habitat-store/internal/orchestrator Prompter

// Prompter asks the user to decide when the service cannot.
type Prompter interface {
	// ChooseVersion is asked when the library already records current and it differs
	// from latest. It returns the version number to install.
	ChooseVersion(ctx context.Context, app *catalog.App, current, latest string) (string, error)
	// ChooseVariant picks one of the installable variants of version.
	ChooseVariant(ctx context.Context, app *catalog.App, version *catalog.Version, variants []library.Variant) (library.Variant, error)
}

type StartOptions struct {
	// Version installs this exact version instead of resolving one.
	Version string
	// ConfirmVersion asks the prompter before switching an installed app to the latest
	// version.
	ConfirmVersion bool
	// ForceChooser asks the prompter for a variant even when only one is installable.
	ForceChooser bool
	Prompter     Prompter
}

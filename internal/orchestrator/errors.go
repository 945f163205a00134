package orchestrator

import (
	"errors"

	"github.com/eagraf/habitat-store/internal/installer"
	"github.com/eagraf/habitat-store/internal/worker"
)

var (
	ErrAlreadyInstalling = errors.New("app is already being installed")
	ErrVersionNotFound   = errors.New("app version not found")
	ErrNotInstalled      = errors.New("app is not installed")
	ErrChoiceRequired    = errors.New("a choice is required but no prompter was given")
	ErrNoTask            = errors.New("no install task for app")

	ErrInstallNotSupported = installer.ErrInstallNotSupported
	ErrStartFailure        = worker.ErrStartFailure
)

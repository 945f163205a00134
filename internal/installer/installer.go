package installer

import (
	"fmt"

	"github.com/eagraf/habitat-store/core/state/library"
	"github.com/eagraf/habitat-store/internal/worker"
	"github.com/rs/zerolog/log"
)

//go:generate mockgen -destination=mocks/installer.go -package=mocks github.com/eagraf/habitat-store/internal/installer Installer

// Installer creates install and uninstall tasks for the variants this platform can
// handle. Tasks are returned unstarted.
type Installer interface {
	Supported(variant library.Variant) bool
	Install(appID string, variant library.Variant) (*Task, error)
	Uninstall(appID string, variant library.Variant) (*Task, error)
	Close() error
}

// PipeInstaller runs every task in a store-worker process that reports back over a
// local pipe.
type PipeInstaller struct {
	launcher   Launcher
	strategies map[library.VariantKind]Strategy
	procs      *worker.ProcessTable
}

var _ Installer = &PipeInstaller{}

func NewPipeInstaller(launcher Launcher, strategies ...Strategy) (*PipeInstaller, error) {
	p := &PipeInstaller{
		launcher:   launcher,
		strategies: make(map[library.VariantKind]Strategy),
		procs:      worker.NewProcessTable(),
	}
	for _, strategy := range strategies {
		if _, ok := p.strategies[strategy.Kind()]; ok {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateStrategy, strategy.Kind())
		}
		p.strategies[strategy.Kind()] = strategy
	}
	return p, nil
}

func (p *PipeInstaller) Supported(variant library.Variant) bool {
	if !variant.Installable() {
		return false
	}
	_, ok := p.strategies[variant.Kind]
	return ok
}

func (p *PipeInstaller) strategy(variant library.Variant) (Strategy, error) {
	strategy, ok := p.strategies[variant.Kind]
	if !ok || !variant.Installable() {
		return nil, fmt.Errorf("%w: %s", ErrInstallNotSupported, variant.Kind)
	}
	return strategy, nil
}

func (p *PipeInstaller) Install(appID string, variant library.Variant) (*Task, error) {
	strategy, err := p.strategy(variant)
	if err != nil {
		return nil, err
	}
	args, err := strategy.InstallArgs(variant)
	if err != nil {
		return nil, err
	}
	return newTask(appID, variant, worker.OperationInstall, args, p.launcher, p.procs), nil
}

func (p *PipeInstaller) Uninstall(appID string, variant library.Variant) (*Task, error) {
	strategy, err := p.strategy(variant)
	if err != nil {
		return nil, err
	}
	args, err := strategy.UninstallArgs(variant)
	if err != nil {
		return nil, err
	}
	return newTask(appID, variant, worker.OperationUninstall, args, p.launcher, p.procs), nil
}

// Live is the number of workers this installer currently has running.
func (p *PipeInstaller) Live() int {
	return p.procs.Len()
}

// Close kills every worker this installer spawned that is still running.
func (p *PipeInstaller) Close() error {
	if n := p.procs.KillAll(); n > 0 {
		log.Info().Msgf("Killed %d running workers", n)
	}
	return nil
}

// UnsupportedInstaller is used on platforms with no worker. It supports nothing.
type UnsupportedInstaller struct{}

var _ Installer = &UnsupportedInstaller{}

func (u *UnsupportedInstaller) Supported(variant library.Variant) bool {
	return false
}

func (u *UnsupportedInstaller) Install(appID string, variant library.Variant) (*Task, error) {
	return nil, fmt.Errorf("%w: %s", ErrInstallNotSupported, appID)
}

func (u *UnsupportedInstaller) Uninstall(appID string, variant library.Variant) (*Task, error) {
	return nil, fmt.Errorf("%w: %s", ErrInstallNotSupported, appID)
}

func (u *UnsupportedInstaller) Close() error {
	return nil
}

//go:build linux || darwin || windows

package installer

import "github.com/eagraf/habitat-store/internal/worker"

// NewPlatformInstaller returns the installer for the platform this binary was built for.
func NewPlatformInstaller(config worker.LauncherConfig) (Installer, error) {
	return NewPipeInstaller(worker.NewLauncher(config), &BinaryStrategy{})
}

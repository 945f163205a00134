//go:build !linux && !darwin && !windows

package installer

import "github.com/eagraf/habitat-store/internal/worker"

func NewPlatformInstaller(config worker.LauncherConfig) (Installer, error) {
	return &UnsupportedInstaller{}, nil
}

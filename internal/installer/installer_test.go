//go:build !windows

package installer

import (
	"context"
	"testing"

	"github.com/eagraf/habitat-store/core/state/library"
	"github.com/eagraf/habitat-store/internal/worker"
	"github.com/eagraf/habitat-store/internal/worker/workertest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBinaryStrategyArgs(t *testing.T) {
	s := &BinaryStrategy{}
	assert.Equal(t, library.VariantKindBinary, s.Kind())

	args, err := s.InstallArgs(testVariant)
	require.NoError(t, err)
	assert.Equal(t, []string{"binary", "https://example.com/app.zip", "--hash", "q83vEjRWeJA="}, args)

	args, err = s.UninstallArgs(testVariant)
	require.NoError(t, err)
	assert.Equal(t, []string{"binary"}, args)

	_, err = s.InstallArgs(library.BinaryVariant("", "", ""))
	assert.ErrorIs(t, err, library.ErrInvalidVariant)

	_, err = s.InstallArgs(library.WebsiteVariant("https://example.com"))
	assert.ErrorIs(t, err, ErrInstallNotSupported)
}

func TestPipeInstallerDuplicateStrategy(t *testing.T) {
	_, err := NewPipeInstaller(&failingLauncher{}, &BinaryStrategy{}, &BinaryStrategy{})
	assert.ErrorIs(t, err, ErrDuplicateStrategy)
}

func TestPipeInstallerSupported(t *testing.T) {
	p, err := NewPipeInstaller(&failingLauncher{}, &BinaryStrategy{})
	require.NoError(t, err)

	assert.True(t, p.Supported(testVariant))
	assert.False(t, p.Supported(library.WebsiteVariant("https://example.com")))
	assert.False(t, p.Supported(library.StoreVariant("https://store.example.com")))

	_, err = p.Install("app1", library.WebsiteVariant("https://example.com"))
	assert.ErrorIs(t, err, ErrInstallNotSupported)

	empty, err := NewPipeInstaller(&failingLauncher{})
	require.NoError(t, err)
	assert.False(t, empty.Supported(testVariant))
	_, err = empty.Uninstall("app1", testVariant)
	assert.ErrorIs(t, err, ErrInstallNotSupported)
}

func TestPipeInstallerUninstall(t *testing.T) {
	p := newTestInstaller(t, workertest.ModeSucceed)
	task, err := p.Uninstall("app1", testVariant)
	require.NoError(t, err)
	assert.Equal(t, worker.OperationUninstall, task.Operation())

	require.NoError(t, task.Start(context.Background()))
	assert.Equal(t, Success(), waitResult(t, task))
}

func TestPipeInstallerCloseKillsWorkers(t *testing.T) {
	p := newTestInstaller(t, workertest.ModeHang)

	var tasks []*Task
	for _, id := range []string{"app1", "app2"} {
		task, err := p.Install(id, testVariant)
		require.NoError(t, err)
		require.NoError(t, task.Start(context.Background()))
		tasks = append(tasks, task)
	}
	assert.Equal(t, 2, p.Live())

	require.NoError(t, p.Close())
	for _, task := range tasks {
		outcome := waitResult(t, task)
		assert.Equal(t, OutcomeErrored, outcome.Kind)
	}
	assert.Equal(t, 0, p.Live())
}

func TestUnsupportedInstaller(t *testing.T) {
	u := &UnsupportedInstaller{}
	assert.False(t, u.Supported(testVariant))

	_, err := u.Install("app1", testVariant)
	assert.ErrorIs(t, err, ErrInstallNotSupported)
	_, err = u.Uninstall("app1", testVariant)
	assert.ErrorIs(t, err, ErrInstallNotSupported)
	assert.NoError(t, u.Close())
}

func TestOutcomeString(t *testing.T) {
	assert.Equal(t, "success", Success().String())
	assert.Equal(t, "cancelled", Cancelled().String())
	assert.Equal(t, "errored: worker exited with code 4", Errored("worker exited with code %d", 4).String())
}

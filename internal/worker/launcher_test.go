//go:build !windows

package worker

import (
	"context"
	"errors"
	"io"
	"os"
	"os/exec"
	"sync/atomic"
	"testing"
	"time"

	"github.com/eagraf/habitat-store/internal/ipc"
	"github.com/eagraf/habitat-store/internal/progress"
	"github.com/eagraf/habitat-store/internal/worker/workertest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

func TestMain(m *testing.M) {
	workertest.MaybeRunWorker()
	os.Exit(m.Run())
}

func newTestLauncher(t *testing.T, mode workertest.Mode, timeout time.Duration) *Launcher {
	return NewLauncher(LauncherConfig{
		WorkerPath:     os.Args[0],
		IPCDir:         t.TempDir(),
		ConnectTimeout: timeout,
		Env:            workertest.Env(mode),
	})
}

func installSpec() Spec {
	return Spec{
		Operation: OperationInstall,
		AppID:     "app1",
		ChannelID: ipc.ChannelID("app1"),
		Args:      []string{"binary", "https://example.com/app1.zip", "--hash", "q83v"},
	}
}

func readAll(t *testing.T, r io.Reader) []progress.Event {
	var events []progress.Event
	pr := progress.NewReader(r)
	for {
		e, err := pr.Next()
		if err != nil {
			require.True(t, errors.Is(err, io.EOF), "unexpected read error: %v", err)
			return events
		}
		events = append(events, e)
	}
}

func TestLaunchSucceeds(t *testing.T) {
	l := newTestLauncher(t, workertest.ModeSucceed, 5*time.Second)
	spec := installSpec()

	proc, err := l.Launch(context.Background(), spec)
	require.NoError(t, err)
	defer proc.Close()

	events := readAll(t, proc.Conn())
	require.Len(t, events, 3)
	assert.Equal(t, progress.Indeterminate("Starting"), events[0])
	assert.Equal(t, progress.Download(512, 2048), events[1])

	code, err := proc.Wait()
	require.NoError(t, err)
	assert.Equal(t, 0, code)
	assert.False(t, proc.Alive())
	assert.Contains(t, proc.Output(), "argv: install app1 --pipe "+spec.ChannelID+" binary https://example.com/app1.zip --hash q83v\n")
}

func TestElevatedLaunchPassesPaths(t *testing.T) {
	l := NewLauncher(LauncherConfig{
		WorkerPath:     os.Args[0],
		IPCDir:         t.TempDir(),
		InstallRoot:    "/opt/habitat/apps",
		ConnectTimeout: 5 * time.Second,
		// env -i drops the environment the way sudo and pkexec do.
		Elevation: append([]string{"env", "-i"}, workertest.Env(workertest.ModeSucceed)...),
	})
	spec := installSpec()
	proc, err := l.Launch(context.Background(), spec)
	require.NoError(t, err)
	defer proc.Close()

	readAll(t, proc.Conn())
	code, err := proc.Wait()
	require.NoError(t, err)
	assert.Equal(t, 0, code)
	assert.Contains(t, proc.Output(), "argv: install app1 --pipe "+spec.ChannelID+" binary https://example.com/app1.zip --hash q83v --ipc-dir "+l.Config().IPCDir+" --install-root /opt/habitat/apps\n")
}

// Workers that connect, report and exit straight away must never be mistaken for
// workers that died before connecting.
func TestLaunchFastWorkersConcurrently(t *testing.T) {
	l := newTestLauncher(t, workertest.ModeSucceed, 10*time.Second)

	var failed atomic.Int32
	g := new(errgroup.Group)
	g.SetLimit(8)
	for i := 0; i < 64; i++ {
		g.Go(func() error {
			proc, err := l.Launch(context.Background(), installSpec())
			if err != nil {
				failed.Add(1)
				return err
			}
			defer proc.Close()
			_, _ = io.Copy(io.Discard, proc.Conn())
			_, err = proc.Wait()
			return err
		})
	}
	err := g.Wait()
	assert.NoError(t, err)
	assert.Equal(t, int32(0), failed.Load())
}

func TestLaunchWorkerFails(t *testing.T) {
	l := newTestLauncher(t, workertest.ModeFail, 5*time.Second)

	proc, err := l.Launch(context.Background(), installSpec())
	require.NoError(t, err)
	defer proc.Close()

	readAll(t, proc.Conn())
	code, err := proc.Wait()
	require.NoError(t, err)
	assert.Equal(t, workertest.FailCode, code)
	assert.Equal(t, "hash mismatch", proc.LastOutputLine())
}

func TestLaunchConnectTimeout(t *testing.T) {
	l := newTestLauncher(t, workertest.ModeNoConnect, 200*time.Millisecond)

	start := time.Now()
	proc, err := l.Launch(context.Background(), installSpec())
	require.Nil(t, proc)
	require.ErrorIs(t, err, ErrStartFailure)
	require.ErrorIs(t, err, ipc.ErrConnectTimeout)
	assert.Less(t, time.Since(start), 5*time.Second)
}

func TestLaunchWorkerExitsBeforeConnecting(t *testing.T) {
	l := newTestLauncher(t, workertest.ModeExitEarly, 10*time.Second)

	start := time.Now()
	_, err := l.Launch(context.Background(), installSpec())
	require.ErrorIs(t, err, ErrStartFailure)
	assert.NotErrorIs(t, err, ipc.ErrConnectTimeout)
	assert.ErrorContains(t, err, "code 2")
	assert.ErrorContains(t, err, "elevation refused")
	assert.Less(t, time.Since(start), 5*time.Second)
}

func TestLaunchMissingBinary(t *testing.T) {
	l := NewLauncher(LauncherConfig{
		WorkerPath: "/nonexistent/store-worker",
		IPCDir:     t.TempDir(),
	})
	_, err := l.Launch(context.Background(), installSpec())
	require.ErrorIs(t, err, ErrStartFailure)
}

func TestElevationPrefix(t *testing.T) {
	l := NewLauncher(LauncherConfig{
		WorkerPath:     os.Args[0],
		IPCDir:         t.TempDir(),
		ConnectTimeout: 5 * time.Second,
		Elevation:      []string{"env", "ELEVATED=1"},
		Env:            workertest.Env(workertest.ModeSucceed),
	})
	spec := installSpec()
	proc, err := l.Launch(context.Background(), spec)
	require.NoError(t, err)
	defer proc.Close()

	readAll(t, proc.Conn())
	code, err := proc.Wait()
	require.NoError(t, err)
	assert.Equal(t, 0, code)
	assert.Contains(t, proc.Output(), "argv: install app1 --pipe "+spec.ChannelID)
}

func TestKillTree(t *testing.T) {
	l := newTestLauncher(t, workertest.ModeHang, 5*time.Second)

	proc, err := l.Launch(context.Background(), installSpec())
	require.NoError(t, err)
	defer proc.Close()
	require.True(t, proc.Alive())

	require.NoError(t, proc.KillTree())
	code, err := proc.Wait()
	require.NoError(t, err)
	assert.NotEqual(t, 0, code)

	assert.ErrorIs(t, proc.KillTree(), ErrProcessExited)
}

func TestKillTreeAfterReap(t *testing.T) {
	cmd := exec.Command(os.Args[0])
	cmd.Env = append(os.Environ(), workertest.Env(workertest.ModeExitEarly)...)
	configureProcess(cmd)
	require.NoError(t, cmd.Start())
	_ = cmd.Wait()

	assert.ErrorIs(t, killTree(cmd), ErrProcessExited)
}

func TestProcessTableKillAll(t *testing.T) {
	l := newTestLauncher(t, workertest.ModeHang, 5*time.Second)
	table := NewProcessTable()

	for i := 0; i < 2; i++ {
		proc, err := l.Launch(context.Background(), installSpec())
		require.NoError(t, err)
		table.Add(proc)
	}
	require.Equal(t, 2, table.Len())

	assert.Equal(t, 2, table.KillAll())
	assert.Equal(t, 0, table.Len())
	assert.Equal(t, 0, table.KillAll())
}

package worker

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"time"

	"github.com/eagraf/habitat-store/internal/ipc"
	"github.com/rs/zerolog/log"
)

const DefaultConnectTimeout = 3000 * time.Millisecond

var ErrStartFailure = errors.New("worker failed to start")

type LauncherConfig struct {
	// WorkerPath is the store-worker binary.
	WorkerPath string
	// IPCDir is where endpoints are created. Ignored on Windows.
	IPCDir string
	// InstallRoot, if set, is where the worker installs apps.
	InstallRoot    string
	ConnectTimeout time.Duration
	// Elevation, if set, is prepended to the worker command line, e.g. ["pkexec"].
	Elevation []string
	// Env is appended to the inherited environment.
	Env []string
}

type Launcher struct {
	config LauncherConfig
}

func NewLauncher(config LauncherConfig) *Launcher {
	if config.ConnectTimeout <= 0 {
		config.ConnectTimeout = DefaultConnectTimeout
	}
	if config.IPCDir == "" {
		config.IPCDir = os.TempDir()
	}
	return &Launcher{config: config}
}

func (l *Launcher) Config() LauncherConfig {
	return l.config
}

// Launch binds the attempt's endpoint, spawns the worker and waits for it to connect.
// The endpoint exists before the child does, so there is no window in which the worker
// can try to connect to nothing. Any failure is reported as ErrStartFailure, with
// ipc.ErrConnectTimeout also in the chain when the worker never connected; in that case
// the worker is killed.
func (l *Launcher) Launch(ctx context.Context, spec Spec) (*Process, error) {
	listener, err := ipc.Listen(l.config.IPCDir, spec.ChannelID)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStartFailure, err)
	}

	cmd := l.command(spec)
	output := newTailBuffer(outputTail)
	cmd.Stdout = output
	cmd.Stderr = output
	configureProcess(cmd)

	if err := cmd.Start(); err != nil {
		_ = listener.Close()
		return nil, fmt.Errorf("%w: %s %s: %w", ErrStartFailure, spec.Operation, spec.AppID, err)
	}
	proc := newProcess(cmd, output)
	log.Debug().Msgf("Started worker %d for %s %s on %s", proc.Pid(), spec.Operation, spec.AppID, listener.Endpoint())

	// A worker that dies before connecting (bad arguments, elevation refused) should
	// not make us sit out the whole timeout.
	acceptCtx, cancel := context.WithCancel(ctx)
	go func() {
		select {
		case <-proc.Exited():
			cancel()
		case <-acceptCtx.Done():
		}
	}()
	conn, err := listener.Accept(acceptCtx, l.config.ConnectTimeout)
	cancel()
	if err != nil {
		if killErr := proc.KillTree(); killErr != nil && !errors.Is(killErr, ErrProcessExited) {
			log.Error().Err(killErr).Msgf("Error killing worker %d after failed start", proc.Pid())
		}
		if !proc.Alive() && ctx.Err() == nil && !errors.Is(err, ipc.ErrConnectTimeout) {
			code, _ := proc.Wait()
			return nil, fmt.Errorf("%w: worker exited with code %d before connecting: %s", ErrStartFailure, code, proc.LastOutputLine())
		}
		return nil, fmt.Errorf("%w: %w", ErrStartFailure, err)
	}

	proc.conn = conn
	return proc, nil
}

// envInstallRoot is read by the worker's config.
const envInstallRoot = "HABITAT_STORE_INSTALL_ROOT"

// command builds the worker command line. Paths normally reach the worker through its
// environment. Elevation tools like sudo and pkexec reset the environment, so elevated
// workers get them as trailing flags instead.
func (l *Launcher) command(spec Spec) *exec.Cmd {
	argv := spec.Argv()
	name := l.config.WorkerPath
	if len(l.config.Elevation) > 0 {
		argv = append(argv, "--ipc-dir", l.config.IPCDir)
		if l.config.InstallRoot != "" {
			argv = append(argv, "--install-root", l.config.InstallRoot)
		}
		argv = append(append(append([]string{}, l.config.Elevation[1:]...), l.config.WorkerPath), argv...)
		name = l.config.Elevation[0]
	}
	cmd := exec.Command(name, argv...)
	cmd.Env = append(os.Environ(), ipc.EnvDir+"="+l.config.IPCDir)
	if l.config.InstallRoot != "" {
		cmd.Env = append(cmd.Env, envInstallRoot+"="+l.config.InstallRoot)
	}
	cmd.Env = append(cmd.Env, l.config.Env...)
	return cmd
}

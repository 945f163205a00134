//go:build !windows

package worker

import (
	"errors"
	"os"
	"os/exec"
	"syscall"

	"github.com/rs/zerolog/log"
	"golang.org/x/sys/unix"
)

// Workers get their own process group so the whole tree can be signalled at once.
func configureProcess(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
}

func killTree(cmd *exec.Cmd) error {
	if cmd == nil || cmd.Process == nil {
		return nil
	}
	pid := cmd.Process.Pid
	if pid <= 0 {
		return nil
	}

	// Children that moved to their own session or group are not reached by the group
	// kill below.
	if pids, err := descendants(pid); err == nil {
		for _, child := range pids {
			_ = unix.Kill(child, unix.SIGKILL)
		}
	} else {
		log.Debug().Err(err).Msgf("Could not list descendants of worker %d", pid)
	}

	pgid, err := unix.Getpgid(pid)
	if err != nil || pgid <= 0 {
		err = cmd.Process.Kill()
	} else {
		// Negative PGID targets the full process group.
		err = unix.Kill(-pgid, unix.SIGKILL)
	}
	// The worker may be reaped between the liveness check and the kill.
	if errors.Is(err, os.ErrProcessDone) || errors.Is(err, unix.ESRCH) {
		return ErrProcessExited
	}
	return err
}

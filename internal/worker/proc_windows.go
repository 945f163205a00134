//go:build windows

package worker

import (
	"errors"
	"os"
	"os/exec"

	"github.com/rs/zerolog/log"
)

func configureProcess(cmd *exec.Cmd) {}

func killTree(cmd *exec.Cmd) error {
	if cmd == nil || cmd.Process == nil {
		return nil
	}
	pid := cmd.Process.Pid

	pids, err := descendants(pid)
	if err != nil {
		log.Debug().Err(err).Msgf("Could not list descendants of worker %d", pid)
	}
	for _, child := range pids {
		if proc, err := os.FindProcess(child); err == nil {
			_ = proc.Kill()
		}
	}
	if err := cmd.Process.Kill(); err != nil {
		if errors.Is(err, os.ErrProcessDone) {
			return ErrProcessExited
		}
		return err
	}
	return nil
}

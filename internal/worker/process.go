package worker

import (
	"errors"
	"io"
	"net"
	"os/exec"
	"sync"
)

var ErrProcessExited = errors.New("worker process already exited")

// Process is one live worker: the child process plus the connection it opened back to
// us. The owner must call Close exactly once when done; Close is safe to repeat.
type Process struct {
	cmd    *exec.Cmd
	output *tailBuffer

	conn net.Conn

	exited   chan struct{}
	exitCode int
	waitErr  error

	closeOnce sync.Once
}

// newProcess takes over a started cmd and reaps it in the background.
func newProcess(cmd *exec.Cmd, output *tailBuffer) *Process {
	p := &Process{
		cmd:    cmd,
		output: output,
		exited: make(chan struct{}),
	}
	go p.reap()
	return p
}

func (p *Process) reap() {
	err := p.cmd.Wait()
	p.exitCode, p.waitErr = exitCode(err)
	close(p.exited)
}

func exitCode(err error) (int, error) {
	if err == nil {
		return 0, nil
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		// Killed by a signal reports -1, which still reads as a failure.
		return exitErr.ExitCode(), nil
	}
	return -1, err
}

func (p *Process) Pid() int {
	if p.cmd.Process == nil {
		return 0
	}
	return p.cmd.Process.Pid
}

// Conn is the worker's progress stream. It is nil until the worker has connected.
func (p *Process) Conn() io.Reader {
	if p.conn == nil {
		return nil
	}
	return p.conn
}

func (p *Process) Exited() <-chan struct{} {
	return p.exited
}

func (p *Process) Alive() bool {
	select {
	case <-p.exited:
		return false
	default:
		return true
	}
}

// Wait blocks until the worker exits and returns its exit code. The error is only set
// when the exit status could not be read at all.
func (p *Process) Wait() (int, error) {
	<-p.exited
	return p.exitCode, p.waitErr
}

// KillTree terminates the worker and everything it spawned. Killing a worker that has
// already exited returns ErrProcessExited and does nothing else.
func (p *Process) KillTree() error {
	if !p.Alive() {
		return ErrProcessExited
	}
	return killTree(p.cmd)
}

func (p *Process) Output() string {
	return p.output.String()
}

func (p *Process) LastOutputLine() string {
	return p.output.LastLine()
}

func (p *Process) Close() error {
	var err error
	p.closeOnce.Do(func() {
		if p.conn != nil {
			err = p.conn.Close()
		}
	})
	return err
}

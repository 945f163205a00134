package installer

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/eagraf/habitat-store/core/state/library"
	"github.com/eagraf/habitat-store/internal/ipc"
	"github.com/eagraf/habitat-store/internal/progress"
	"github.com/eagraf/habitat-store/internal/worker"
	"github.com/rs/zerolog/log"
)

type State int

const (
	StateNotStarted State = iota
	StateStarting
	StateRunning
	StateFinished
)

func (s State) String() string {
	switch s {
	case StateNotStarted:
		return "not started"
	case StateStarting:
		return "starting"
	case StateRunning:
		return "running"
	case StateFinished:
		return "finished"
	}
	return "unknown"
}

// Launcher spawns a worker and hands back the connected process.
type Launcher interface {
	Launch(ctx context.Context, spec worker.Spec) (*worker.Process, error)
}

var _ Launcher = &worker.Launcher{}

// How long the exit watcher lets the read loop drain buffered lines after the worker
// exits before closing the connection under it.
const drainTimeout = time.Second

// Task is one install or uninstall of one app, run by an out-of-process worker. A task
// can be restarted after it finishes unsuccessfully; each attempt gets its own worker
// and channel.
type Task struct {
	appID     string
	variant   library.Variant
	operation worker.Operation
	args      []string
	launcher  Launcher
	procs     *worker.ProcessTable

	progress chan progress.Event

	mu         sync.Mutex
	state      State
	unsafe     bool
	cancelling bool
	proc       *worker.Process
	latest     *progress.Event
	outcome    Outcome
	done       chan struct{}
	started    []func(*Task)
	finished   []func(*Task, Outcome)
}

// NewTask builds a task that has not been started. args are the variant-specific
// worker arguments.
func NewTask(appID string, variant library.Variant, operation worker.Operation, args []string, launcher Launcher) *Task {
	return newTask(appID, variant, operation, args, launcher, nil)
}

func newTask(appID string, variant library.Variant, operation worker.Operation, args []string, launcher Launcher, procs *worker.ProcessTable) *Task {
	return &Task{
		appID:     appID,
		variant:   variant,
		operation: operation,
		args:      args,
		launcher:  launcher,
		procs:     procs,
		progress:  make(chan progress.Event, 1),
		state:     StateNotStarted,
		done:      make(chan struct{}),
	}
}

func (t *Task) AppID() string {
	return t.appID
}

func (t *Task) Variant() library.Variant {
	return t.variant
}

func (t *Task) Operation() worker.Operation {
	return t.operation
}

func (t *Task) State() State {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}

func (t *Task) Running() bool {
	return t.State() == StateRunning
}

// Unsafe is set the first time a worker connects and never cleared. From then on the
// app's files may be in any state, whatever the outcome.
func (t *Task) Unsafe() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.unsafe
}

// Start spawns the worker and waits for it to connect. On failure the task goes back
// to StateNotStarted and can be started again.
func (t *Task) Start(ctx context.Context) error {
	t.mu.Lock()
	if t.state != StateNotStarted {
		state := t.state
		t.mu.Unlock()
		return fmt.Errorf("%w: cannot start %s task for %s", ErrInvalidState, state, t.appID)
	}
	t.state = StateStarting
	t.mu.Unlock()

	spec := worker.Spec{
		Operation: t.operation,
		AppID:     t.appID,
		ChannelID: ipc.ChannelID(t.appID),
		Args:      t.args,
	}
	proc, err := t.launcher.Launch(ctx, spec)
	if err != nil {
		t.mu.Lock()
		t.state = StateNotStarted
		t.mu.Unlock()
		log.Error().Err(err).Msgf("Failed to start %s of %s", t.operation, t.appID)
		return err
	}
	if t.procs != nil {
		t.procs.Add(proc)
	}

	t.mu.Lock()
	t.proc = proc
	t.unsafe = true
	t.state = StateRunning
	started := append([]func(*Task){}, t.started...)
	done := t.done
	t.mu.Unlock()

	log.Info().Msgf("Started %s of %s (worker %d)", t.operation, t.appID, proc.Pid())
	for _, fn := range started {
		fn(t)
	}

	readDone := make(chan struct{})
	go t.readLoop(proc, readDone)
	go t.watchExit(proc, readDone, done)
	return nil
}

// readLoop forwards progress until the worker hangs up. It never decides the outcome.
func (t *Task) readLoop(proc *worker.Process, readDone chan<- struct{}) {
	defer close(readDone)
	reader := progress.NewReader(proc.Conn())
	for {
		ev, err := reader.Next()
		if err != nil {
			return
		}
		t.publish(ev)
	}
}

func (t *Task) publish(ev progress.Event) {
	t.mu.Lock()
	t.latest = &ev
	t.mu.Unlock()

	// Keep only the newest event for a slow consumer.
	for {
		select {
		case t.progress <- ev:
			return
		default:
		}
		select {
		case <-t.progress:
		default:
		}
	}
}

func (t *Task) watchExit(proc *worker.Process, readDone <-chan struct{}, done chan struct{}) {
	code, waitErr := proc.Wait()

	select {
	case <-readDone:
	case <-time.After(drainTimeout):
		_ = proc.Close()
		<-readDone
	}
	if err := proc.Close(); err != nil {
		log.Debug().Err(err).Msgf("Error closing channel for %s", t.appID)
	}
	if t.procs != nil {
		t.procs.Remove(proc)
	}

	t.mu.Lock()
	var outcome Outcome
	switch {
	case waitErr == nil && code == 0:
		outcome = Success()
	case t.cancelling:
		outcome = Cancelled()
	case waitErr != nil:
		outcome = Errored("error waiting for worker: %v", waitErr)
	default:
		if last := proc.LastOutputLine(); last != "" {
			outcome = Errored("worker exited with code %d: %s", code, last)
		} else {
			outcome = Errored("worker exited with code %d", code)
		}
	}
	t.outcome = outcome
	t.state = StateFinished
	t.proc = nil
	finished := append([]func(*Task, Outcome){}, t.finished...)
	close(done)
	t.mu.Unlock()

	if outcome.IsError() {
		log.Error().Msgf("%s of %s failed: %s", t.operation, t.appID, outcome.Message)
	} else {
		log.Info().Msgf("%s of %s finished: %s", t.operation, t.appID, outcome)
	}
	for _, fn := range finished {
		fn(t, outcome)
	}
}

// RequestCancel kills the worker's process tree. It returns false when there is no
// live worker to kill.
func (t *Task) RequestCancel() bool {
	t.mu.Lock()
	proc := t.proc
	if t.state != StateRunning || proc == nil {
		t.mu.Unlock()
		return false
	}
	t.cancelling = true
	t.mu.Unlock()

	if err := proc.KillTree(); err != nil {
		if !errors.Is(err, worker.ErrProcessExited) {
			log.Error().Err(err).Msgf("Failed to cancel %s of %s", t.operation, t.appID)
		}
		t.mu.Lock()
		t.cancelling = false
		t.mu.Unlock()
		return false
	}
	log.Info().Msgf("Cancelled %s of %s", t.operation, t.appID)
	return true
}

// Restart cancels a running attempt, waits for it, and starts a fresh one. It does
// nothing and returns false if the last attempt succeeded.
//
// Restart knows nothing about who else may be installing the same app. A task run by
// an orchestrator.Service should be restarted through Service.RestartInstall.
func (t *Task) Restart(ctx context.Context) (bool, error) {
	switch t.State() {
	case StateStarting:
		return false, fmt.Errorf("%w: %s task for %s is starting", ErrInvalidState, t.operation, t.appID)
	case StateRunning:
		t.RequestCancel()
		if _, err := t.WaitForResult(ctx); err != nil {
			return false, err
		}
	}

	if t.State() != StateNotStarted {
		reset, err := t.Reset()
		if err != nil || !reset {
			return false, err
		}
	}
	if err := t.Start(ctx); err != nil {
		return false, err
	}
	return true, nil
}

// Reset puts a finished task back in StateNotStarted so it can be started again. It
// returns false and changes nothing if the last attempt succeeded.
func (t *Task) Reset() (bool, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.state != StateFinished {
		return false, fmt.Errorf("%w: cannot reset %s task for %s", ErrInvalidState, t.state, t.appID)
	}
	if t.outcome.Kind == OutcomeSuccess {
		return false, nil
	}
	t.state = StateNotStarted
	t.outcome = Outcome{}
	t.cancelling = false
	t.latest = nil
	t.done = make(chan struct{})

	select {
	case <-t.progress:
	default:
	}
	return true, nil
}

// WaitForResult blocks until the current attempt finishes or ctx ends.
func (t *Task) WaitForResult(ctx context.Context) (Outcome, error) {
	t.mu.Lock()
	done := t.done
	t.mu.Unlock()

	select {
	case <-done:
		return t.Result()
	case <-ctx.Done():
		return Outcome{}, ctx.Err()
	}
}

func (t *Task) Result() (Outcome, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.state != StateFinished {
		return Outcome{}, fmt.Errorf("%w: %s task for %s has no result", ErrInvalidState, t.state, t.appID)
	}
	return t.outcome, nil
}

// OnStarted registers fn to run every time an attempt's worker connects.
func (t *Task) OnStarted(fn func(*Task)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.started = append(t.started, fn)
}

// OnFinished registers fn to run when each attempt's outcome is final. If the task
// has already finished, fn also runs right away with the stored outcome.
func (t *Task) OnFinished(fn func(*Task, Outcome)) {
	t.mu.Lock()
	t.finished = append(t.finished, fn)
	state, outcome := t.state, t.outcome
	t.mu.Unlock()

	if state == StateFinished {
		fn(t, outcome)
	}
}

// Progress delivers the newest progress event. Events the reader has not taken are
// replaced, never queued.
func (t *Task) Progress() <-chan progress.Event {
	return t.progress
}

func (t *Task) LatestProgress() (progress.Event, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.latest == nil {
		return progress.Event{}, false
	}
	return *t.latest, true
}

// Close kills a running worker. It does not wait for the outcome.
func (t *Task) Close() error {
	t.RequestCancel()
	return nil
}

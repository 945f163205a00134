package progress

import (
	"io"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

const DefaultThrottle = 500 * time.Millisecond

// Emitter is the worker's side of the progress channel. Every line goes to the local
// writer (stdout). When a channel is attached, lines are also sent there, but at most
// one per throttle window so a fast download cannot flood a slow pipe.
type Emitter struct {
	localMu sync.Mutex
	local   io.Writer

	// channelMu is held for the whole of a channel write, including the wait for the
	// throttle window in blocking mode.
	channelMu   sync.Mutex
	channel     io.Writer
	nextAllowed time.Time

	throttle time.Duration
	now      func() time.Time
	sleep    func(time.Duration)
}

type EmitterOption func(*Emitter)

func WithThrottle(d time.Duration) EmitterOption {
	return func(e *Emitter) {
		e.throttle = d
	}
}

func WithClock(now func() time.Time, sleep func(time.Duration)) EmitterOption {
	return func(e *Emitter) {
		e.now = now
		e.sleep = sleep
	}
}

func NewEmitter(local io.Writer, opts ...EmitterOption) *Emitter {
	e := &Emitter{
		local:    local,
		throttle: DefaultThrottle,
		now:      time.Now,
		sleep:    time.Sleep,
	}
	for _, o := range opts {
		o(e)
	}
	return e
}

// Attach sets the channel writer. The first channel write after attaching is never
// throttled.
func (e *Emitter) Attach(channel io.Writer) {
	e.channelMu.Lock()
	defer e.channelMu.Unlock()
	e.channel = channel
	e.nextAllowed = time.Time{}
}

func (e *Emitter) Attached() bool {
	e.channelMu.Lock()
	defer e.channelMu.Unlock()
	return e.channel != nil
}

// Emit writes the event locally, then waits out the throttle window and writes it to
// the channel. Only local write errors are returned.
func (e *Emitter) Emit(ev Event) error {
	line := Format(ev) + "\n"
	if err := e.writeLocal(line); err != nil {
		return err
	}

	e.channelMu.Lock()
	defer e.channelMu.Unlock()
	if e.channel == nil {
		return nil
	}
	if wait := e.nextAllowed.Sub(e.now()); wait > 0 {
		e.sleep(wait)
	}
	e.writeChannelLocked(line)
	return nil
}

func (e *Emitter) EmitLine(status string) error {
	return e.Emit(Indeterminate(status))
}

// TryEmit writes the event locally and sends it on the channel only if the throttle
// window has already elapsed. It reports whether the channel got the line.
func (e *Emitter) TryEmit(ev Event) bool {
	line := Format(ev) + "\n"
	if err := e.writeLocal(line); err != nil {
		log.Debug().Err(err).Msg("local progress write failed")
	}

	// Someone else is mid-write or waiting for the window; either way it has not
	// elapsed for us.
	if !e.channelMu.TryLock() {
		return false
	}
	defer e.channelMu.Unlock()
	if e.channel == nil || e.now().Before(e.nextAllowed) {
		return false
	}
	return e.writeChannelLocked(line)
}

func (e *Emitter) writeLocal(line string) error {
	e.localMu.Lock()
	defer e.localMu.Unlock()
	_, err := io.WriteString(e.local, line)
	return err
}

func (e *Emitter) writeChannelLocked(line string) bool {
	if _, err := io.WriteString(e.channel, line); err != nil {
		log.Warn().Err(err).Msg("progress channel write failed, detaching channel")
		e.channel = nil
		return false
	}
	e.nextAllowed = e.now().Add(e.throttle)
	return true
}

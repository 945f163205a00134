package ipc

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// EnvDir names the environment variable a worker started without --ipc-dir reads its
// endpoint directory from.
const EnvDir = "HABITAT_STORE_IPC_DIR"

// How long Accept still waits for a connection the kernel already queued once ctx
// is done.
const acceptGrace = 100 * time.Millisecond

// Unix socket paths are limited to ~104 bytes on macOS, so long app ids are cut.
const maxAppIDInChannel = 40

var (
	ErrConnectTimeout = errors.New("timed out waiting for worker to connect")
	ErrClosed         = errors.New("ipc listener closed")
)

// ChannelID names the endpoint for one install attempt. The prefix is derived from the
// app id so endpoints are recognisable; the suffix keeps attempts apart.
func ChannelID(appID string) string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	return fmt.Sprintf("install_%s_%s", sanitize(appID), suffix)
}

func sanitize(appID string) string {
	var b strings.Builder
	for _, r := range appID {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '_', r == '-':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
		if b.Len() >= maxAppIDInChannel {
			break
		}
	}
	if b.Len() == 0 {
		return "app"
	}
	return b.String()
}

// Dir is the endpoint directory a worker uses when none was passed to it.
func Dir() string {
	if dir := os.Getenv(EnvDir); dir != "" {
		return dir
	}
	return os.TempDir()
}

// Listener is the orchestrator's end of one install attempt's channel. It is bound
// before the worker is spawned and accepts exactly one connection.
type Listener struct {
	ln       net.Listener
	endpoint string

	closeOnce sync.Once
	closeErr  error
}

func Listen(dir, channelID string) (*Listener, error) {
	ln, endpoint, err := listen(dir, channelID)
	if err != nil {
		return nil, fmt.Errorf("listen on %s: %w", channelID, err)
	}
	return &Listener{ln: ln, endpoint: endpoint}, nil
}

func (l *Listener) Endpoint() string {
	return l.endpoint
}

type acceptResult struct {
	conn net.Conn
	err  error
}

// Accept waits for the worker to connect. If neither the connection nor ctx arrives
// within timeout it returns ErrConnectTimeout. A connection that is already waiting
// when ctx ends is still returned. The listener is closed either way, since
// no second worker ever connects to the same channel.
func (l *Listener) Accept(ctx context.Context, timeout time.Duration) (net.Conn, error) {
	results := make(chan acceptResult, 1)
	go func() {
		conn, err := l.ln.Accept()
		results <- acceptResult{conn: conn, err: err}
	}()

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case res := <-results:
		_ = l.Close()
		if res.err != nil {
			return nil, res.err
		}
		return res.conn, nil
	case <-timer.C:
		l.abandon(results)
		return nil, fmt.Errorf("%w after %s", ErrConnectTimeout, timeout)
	case <-ctx.Done():
		// A worker that connected and exited at once leaves its connection queued.
		select {
		case res := <-results:
			_ = l.Close()
			if res.err == nil {
				return res.conn, nil
			}
		case <-time.After(acceptGrace):
			l.abandon(results)
		}
		return nil, ctx.Err()
	}
}

// abandon closes the listener and drops a connection that raced in after we gave up.
func (l *Listener) abandon(results <-chan acceptResult) {
	_ = l.Close()
	go func() {
		if res := <-results; res.conn != nil {
			_ = res.conn.Close()
		}
	}()
}

func (l *Listener) Close() error {
	l.closeOnce.Do(func() {
		l.closeErr = l.ln.Close()
		cleanup(l.endpoint)
	})
	return l.closeErr
}

// Dial connects a worker to the orchestrator's endpoint.
func Dial(ctx context.Context, dir, channelID string) (net.Conn, error) {
	conn, err := dial(ctx, dir, channelID)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", channelID, err)
	}
	return conn, nil
}

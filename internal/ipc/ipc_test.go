//go:build !windows

package ipc

import (
	"bufio"
	"context"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChannelID(t *testing.T) {
	a := ChannelID("org.example/app 1")
	b := ChannelID("org.example/app 1")

	assert.True(t, strings.HasPrefix(a, "install_org.example_app_1_"))
	assert.NotEqual(t, a, b)
	assert.Len(t, a, len("install_org.example_app_1_")+8)

	long := ChannelID(strings.Repeat("x", 200))
	assert.LessOrEqual(t, len(long), len("install__")+maxAppIDInChannel+8)

	assert.True(t, strings.HasPrefix(ChannelID(""), "install_app_"))
}

func TestDirFromEnv(t *testing.T) {
	t.Setenv(EnvDir, "/tmp/custom")
	assert.Equal(t, "/tmp/custom", Dir())

	t.Setenv(EnvDir, "")
	assert.Equal(t, os.TempDir(), Dir())
}

func TestListenAcceptDial(t *testing.T) {
	dir := t.TempDir()
	id := ChannelID("app1")

	l, err := Listen(dir, id)
	require.NoError(t, err)
	defer l.Close()

	go func() {
		conn, err := Dial(context.Background(), dir, id)
		if err != nil {
			return
		}
		defer conn.Close()
		_, _ = conn.Write([]byte("hello\n"))
	}()

	conn, err := l.Accept(context.Background(), 3*time.Second)
	require.NoError(t, err)
	defer conn.Close()

	line, err := bufio.NewReader(conn).ReadString('\n')
	require.NoError(t, err)
	assert.Equal(t, "hello\n", line)

	// The endpoint is gone once the single connection has been accepted.
	_, err = os.Stat(l.Endpoint())
	assert.True(t, os.IsNotExist(err))
}

func TestAcceptTimeout(t *testing.T) {
	dir := t.TempDir()
	l, err := Listen(dir, ChannelID("app1"))
	require.NoError(t, err)

	start := time.Now()
	_, err = l.Accept(context.Background(), 50*time.Millisecond)
	require.ErrorIs(t, err, ErrConnectTimeout)
	assert.Less(t, time.Since(start), 2*time.Second)

	require.NoError(t, l.Close())
}

func TestAcceptContextCancelled(t *testing.T) {
	dir := t.TempDir()
	l, err := Listen(dir, ChannelID("app1"))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = l.Accept(ctx, time.Minute)
	require.ErrorIs(t, err, context.Canceled)
}

func TestAcceptPrefersQueuedConnection(t *testing.T) {
	dir := t.TempDir()
	id := ChannelID("app1")

	for i := 0; i < 20; i++ {
		l, err := Listen(dir, id)
		require.NoError(t, err)

		// The worker connects, writes and is gone before we look.
		conn, err := Dial(context.Background(), dir, id)
		require.NoError(t, err)
		_, err = conn.Write([]byte("done\n"))
		require.NoError(t, err)
		require.NoError(t, conn.Close())

		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		accepted, err := l.Accept(ctx, time.Minute)
		require.NoError(t, err)

		line, err := bufio.NewReader(accepted).ReadString('\n')
		require.NoError(t, err)
		assert.Equal(t, "done\n", line)
		require.NoError(t, accepted.Close())
	}
}

func TestDialWithoutListener(t *testing.T) {
	_, err := Dial(context.Background(), t.TempDir(), "install_missing_00000000")
	require.Error(t, err)
}

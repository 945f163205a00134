package main

import (
	"archive/zip"
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/base64"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/eagraf/habitat-store/internal/ipc"
	"github.com/eagraf/habitat-store/internal/job"
	"github.com/eagraf/habitat-store/internal/progress"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setup(t *testing.T) (string, *bytes.Buffer) {
	storePath := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(storePath, "store.yml"), []byte("emit_throttle: 1ms\n"), 0o600))
	t.Setenv("HABITAT_STORE_PATH", storePath)
	t.Setenv("HABITAT_STORE_LOG_LEVEL", "error")

	pipeID, ipcDir, installRoot, hash = "", "", "", ""
	var out bytes.Buffer
	stdout = &out
	t.Cleanup(func() { stdout = os.Stdout })
	return t.TempDir(), &out
}

func zipServer(t *testing.T) (string, string) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create("bin/app")
	require.NoError(t, err)
	_, err = w.Write([]byte("app"))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	body := buf.Bytes()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write(body)
	}))
	t.Cleanup(srv.Close)

	sum := sha256.Sum256(body)
	return srv.URL + "/app.zip", base64.StdEncoding.EncodeToString(sum[:])
}

func TestInstallReportsOverPipe(t *testing.T) {
	root, out := setup(t)
	url, sum := zipServer(t)

	dir := t.TempDir()
	id := ipc.ChannelID("app1")
	ln, err := ipc.Listen(dir, id)
	require.NoError(t, err)

	received := make(chan []progress.Event, 1)
	go func() {
		conn, err := ln.Accept(context.Background(), 10*time.Second)
		if err != nil {
			received <- nil
			return
		}
		defer conn.Close()
		var events []progress.Event
		r := progress.NewReader(conn)
		for {
			e, err := r.Next()
			if err != nil {
				break
			}
			events = append(events, e)
		}
		received <- events
	}()

	code := execute([]string{"install", "app1", "--pipe", id, "binary", url, "--hash", sum, "--ipc-dir", dir, "--install-root", root})
	require.Equal(t, job.ExitOK, code)

	events := <-received
	require.NotEmpty(t, events)
	assert.Equal(t, progress.Indeterminate("Downloading app1"), events[0])
	assert.Equal(t, progress.Indeterminate("Installed app1"), events[len(events)-1])
	assert.Contains(t, out.String(), "Extracting app1\n")

	content, err := os.ReadFile(filepath.Join(root, "app1", "bin", "app"))
	require.NoError(t, err)
	assert.Equal(t, "app", string(content))
}

func TestInstallWithoutPipe(t *testing.T) {
	root, out := setup(t)
	url, _ := zipServer(t)

	code := execute([]string{"install", "app1", "binary", url, "--hash", base64.StdEncoding.EncodeToString(make([]byte, 32)), "--install-root", root})
	assert.Equal(t, job.ExitVerification, code)
	assert.Contains(t, out.String(), "Downloading app1\n")
}

func TestUninstall(t *testing.T) {
	root, _ := setup(t)
	require.NoError(t, os.MkdirAll(filepath.Join(root, "app1"), 0o755))

	code := execute([]string{"uninstall", "app1", "binary", "--install-root", root})
	assert.Equal(t, job.ExitOK, code)
	_, err := os.Stat(filepath.Join(root, "app1"))
	assert.True(t, os.IsNotExist(err))
}

func TestUsageErrors(t *testing.T) {
	for name, args := range map[string][]string{
		"unknown command": {"frobnicate"},
		"missing args":    {"install", "app1"},
		"website variant": {"install", "app1", "website", "https://example.com", "--hash", "AAAA"},
		"missing hash":    {"install", "app1", "binary", "https://example.com/app.zip"},
		"unknown flag":    {"uninstall", "app1", "binary", "--force"},
	} {
		t.Run(name, func(t *testing.T) {
			setup(t)
			assert.Equal(t, job.ExitUsage, execute(args))
		})
	}
}

func TestRejectsAppIDsOutsideInstallRoot(t *testing.T) {
	setup(t)
	parent := t.TempDir()
	root := filepath.Join(parent, "apps")
	require.NoError(t, os.MkdirAll(filepath.Join(parent, "precious"), 0o755))

	code := execute([]string{"uninstall", "../precious", "binary", "--install-root", root})
	assert.Equal(t, job.ExitUsage, code)
	_, err := os.Stat(filepath.Join(parent, "precious"))
	assert.NoError(t, err)

	code = execute([]string{"install", "..", "binary", "https://example.com/app.zip", "--hash", "AAAA", "--install-root", root})
	assert.Equal(t, job.ExitUsage, code)
}

func TestPipeConnectFailure(t *testing.T) {
	root, _ := setup(t)
	code := execute([]string{"uninstall", "app1", "--pipe", "install_nobody_00000000", "binary", "--ipc-dir", t.TempDir(), "--install-root", root})
	assert.Equal(t, job.ExitUsage, code)
}

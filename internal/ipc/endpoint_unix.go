//go:build !windows

package ipc

import (
	"context"
	"net"
	"os"
	"path/filepath"
)

func endpointPath(dir, channelID string) string {
	return filepath.Join(dir, channelID+".sock")
}

func listen(dir, channelID string) (net.Listener, string, error) {
	path := endpointPath(dir, channelID)
	if err := os.RemoveAll(path); err != nil {
		return nil, "", err
	}
	ln, err := net.Listen("unix", path)
	if err != nil {
		return nil, "", err
	}
	if err := os.Chmod(path, 0o600); err != nil {
		_ = ln.Close()
		return nil, "", err
	}
	return ln, path, nil
}

func dial(ctx context.Context, dir, channelID string) (net.Conn, error) {
	var d net.Dialer
	return d.DialContext(ctx, "unix", endpointPath(dir, channelID))
}

func cleanup(endpoint string) {
	_ = os.Remove(endpoint)
}

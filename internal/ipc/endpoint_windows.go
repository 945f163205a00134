//go:build windows

package ipc

import (
	"context"
	"net"

	"github.com/Microsoft/go-winio"
)

// Named pipes live in their own namespace; dir is ignored.
func endpointPath(_ string, channelID string) string {
	return `\\.\pipe\` + channelID
}

func listen(dir, channelID string) (net.Listener, string, error) {
	path := endpointPath(dir, channelID)
	ln, err := winio.ListenPipe(path, &winio.PipeConfig{
		InputBufferSize:  4096,
		OutputBufferSize: 4096,
	})
	if err != nil {
		return nil, "", err
	}
	return ln, path, nil
}

func dial(ctx context.Context, dir, channelID string) (net.Conn, error) {
	return winio.DialPipeContext(ctx, endpointPath(dir, channelID))
}

func cleanup(string) {}

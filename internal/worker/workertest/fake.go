// Package workertest turns a test binary into a stand-in store-worker. Call
// MaybeRunWorker first thing in TestMain and point a launcher at os.Args[0] with the
// environment from Env.
package workertest

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/eagraf/habitat-store/internal/ipc"
)

const envMode = "HABITAT_STORE_FAKE_WORKER"

type Mode string

const (
	// ModeSucceed connects, sends a couple of progress lines and exits 0.
	ModeSucceed Mode = "succeed"
	// ModeFail connects, sends progress and exits 3.
	ModeFail Mode = "fail"
	// ModeHang connects and then blocks until killed.
	ModeHang Mode = "hang"
	// ModeNoConnect never connects and blocks until killed.
	ModeNoConnect Mode = "noconnect"
	// ModeExitEarly exits 2 without connecting.
	ModeExitEarly Mode = "exit-early"
)

// Lines are the progress lines every connecting mode sends.
var Lines = []string{"Starting", "25% (512 of 2048)", "100% (2048 of 2048)"}

const FailCode = 3

func Env(mode Mode) []string {
	return []string{envMode + "=" + string(mode)}
}

// MaybeRunWorker exits the process after acting as a worker if the fake-worker
// environment variable is set, and returns otherwise.
func MaybeRunWorker() {
	mode := Mode(os.Getenv(envMode))
	if mode == "" {
		return
	}
	os.Exit(run(mode, os.Args[1:]))
}

func run(mode Mode, args []string) int {
	// Record the command line so tests can assert on it.
	fmt.Println("argv: " + strings.Join(args, " "))

	switch mode {
	case ModeExitEarly:
		fmt.Fprintln(os.Stderr, "elevation refused")
		return 2
	case ModeNoConnect:
		time.Sleep(time.Hour)
		return 0
	}

	dir := flagArg(args, "--ipc-dir")
	if dir == "" {
		dir = ipc.Dir()
	}
	conn, err := ipc.Dial(context.Background(), dir, flagArg(args, "--pipe"))
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 10
	}
	defer conn.Close()

	for _, line := range Lines {
		if _, err := conn.Write([]byte(line + "\n")); err != nil {
			return 11
		}
	}

	switch mode {
	case ModeSucceed:
		return 0
	case ModeFail:
		fmt.Fprintln(os.Stderr, "hash mismatch")
		return FailCode
	case ModeHang:
		time.Sleep(time.Hour)
		return 0
	}
	fmt.Fprintln(os.Stderr, "unknown fake worker mode "+strconv.Quote(string(mode)))
	return 12
}

func flagArg(args []string, name string) string {
	for i, a := range args {
		if a == name && i+1 < len(args) {
			return args[i+1]
		}
	}
	return ""
}

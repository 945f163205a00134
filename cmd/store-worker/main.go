package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/eagraf/habitat-store/core/state/library"
	"github.com/eagraf/habitat-store/internal/config"
	"github.com/eagraf/habitat-store/internal/ipc"
	"github.com/eagraf/habitat-store/internal/job"
	"github.com/eagraf/habitat-store/internal/logging"
	"github.com/eagraf/habitat-store/internal/progress"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

const dialTimeout = 5 * time.Second

var (
	pipeID      string
	ipcDir      string
	installRoot string

	// stdout is where progress lines are mirrored. Tests swap it out.
	stdout io.Writer = os.Stdout
)

var rootCmd = &cobra.Command{
	Use:           "store-worker",
	Short:         "store-worker installs and uninstalls habitat store apps",
	Long:          `store-worker does the file work of installing and uninstalling apps. It is started by the store and reports progress back over a local pipe.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&pipeID, "pipe", "", "channel id to report progress on")
	rootCmd.PersistentFlags().StringVar(&ipcDir, "ipc-dir", "", "directory the progress endpoint lives in")
	rootCmd.PersistentFlags().StringVar(&installRoot, "install-root", "", "directory apps are installed into")
}

// exitError carries the process exit code for a failed job.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string {
	return e.err.Error()
}

func (e *exitError) Unwrap() error {
	return e.err
}

func usageError(format string, args ...interface{}) error {
	return &exitError{code: job.ExitUsage, err: fmt.Errorf(format, args...)}
}

// newRunner checks appID, loads config, sets up logging on stderr and connects the
// progress channel when --pipe was given. The returned func closes the channel.
func newRunner(ctx context.Context, appID string) (*job.Runner, func(), error) {
	if err := library.ValidateAppID(appID); err != nil {
		return nil, nil, usageError("%s", err)
	}
	cfg, err := config.NewStoreConfig()
	if err != nil {
		return nil, nil, usageError("error loading config: %s", err)
	}
	logging.NewLogger(cfg.LogLevel())

	root := installRoot
	if root == "" {
		root = cfg.InstallRoot()
	}
	emitter := progress.NewEmitter(stdout, progress.WithThrottle(cfg.EmitThrottle()))

	closer := func() {}
	if pipeID != "" {
		dialCtx, cancel := context.WithTimeout(ctx, dialTimeout)
		defer cancel()
		dir := ipcDir
		if dir == "" {
			dir = ipc.Dir()
		}
		conn, err := ipc.Dial(dialCtx, dir, pipeID)
		if err != nil {
			return nil, nil, usageError("error connecting to %s: %s", pipeID, err)
		}
		emitter.Attach(conn)
		closer = func() {
			if err := conn.Close(); err != nil {
				log.Debug().Err(err).Msg("Error closing progress channel")
			}
		}
	}
	return job.NewRunner(root, emitter), closer, nil
}

func execute(args []string) int {
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	if err == nil {
		return job.ExitOK
	}
	fmt.Fprintln(os.Stderr, err)

	var exitErr *exitError
	if errors.As(err, &exitErr) {
		return exitErr.code
	}
	// Anything cobra rejected before running a command.
	return job.ExitUsage
}

func main() {
	os.Exit(execute(os.Args[1:]))
}

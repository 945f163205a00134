package main

import (
	"github.com/eagraf/habitat-store/core/state/library"
	"github.com/eagraf/habitat-store/internal/job"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var uninstallCmd = &cobra.Command{
	Use:   "uninstall <appId> binary",
	Short: "Uninstall an app",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		appID, kind := args[0], args[1]
		if library.VariantKindFromString(kind) != library.VariantKindBinary {
			return usageError("unsupported variant %q", kind)
		}

		runner, closeChannel, err := newRunner(cmd.Context(), appID)
		if err != nil {
			return err
		}
		defer closeChannel()

		log.Info().Msgf("Uninstalling %s", appID)
		if err := runner.UninstallBinary(cmd.Context(), appID); err != nil {
			return &exitError{code: job.ExitCode(err), err: err}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(uninstallCmd)
}

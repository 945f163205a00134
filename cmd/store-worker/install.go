package main

import (
	"github.com/eagraf/habitat-store/core/state/library"
	"github.com/eagraf/habitat-store/internal/job"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var hash string

var installCmd = &cobra.Command{
	Use:   "install <appId> binary <downloadUrl>",
	Short: "Install an app",
	Long:  `Download, verify and unpack an app into the install root.`,
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		appID, kind, url := args[0], args[1], args[2]
		if library.VariantKindFromString(kind) != library.VariantKindBinary {
			return usageError("unsupported variant %q", kind)
		}
		if hash == "" {
			return usageError("--hash is required")
		}

		runner, closeChannel, err := newRunner(cmd.Context(), appID)
		if err != nil {
			return err
		}
		defer closeChannel()

		log.Info().Msgf("Installing %s from %s", appID, url)
		if err := runner.InstallBinary(cmd.Context(), appID, url, hash); err != nil {
			return &exitError{code: job.ExitCode(err), err: err}
		}
		return nil
	},
}

func init() {
	installCmd.Flags().StringVar(&hash, "hash", "", "base64 SHA-256 of the download")
	rootCmd.AddCommand(installCmd)
}

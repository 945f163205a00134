package cli

import (
	"os"
	"os/signal"

	"github.com/spf13/cobra"
)

var uninstallCmd = &cobra.Command{
	Use:   "uninstall <appId>",
	Short: "Uninstall an installed app",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()

		task, err := a.service.StartUninstall(ctx, args[0])
		if err != nil {
			return err
		}
		return report(ctx, cmd, task, "Uninstalled "+args[0])
	},
}

func init() {
	rootCmd.AddCommand(uninstallCmd)
}

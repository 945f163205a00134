package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/eagraf/habitat-store/internal/installer"
	"github.com/eagraf/habitat-store/internal/orchestrator"
	"github.com/spf13/cobra"
)

var (
	installVersion string
	choose         bool
	confirmVersion bool
)

var installCmd = &cobra.Command{
	Use:   "install <appId>",
	Short: "Install an app from the catalog",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		catalogApp, err := a.catalog.Find(args[0])
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()

		task, err := a.service.StartInstall(ctx, catalogApp, orchestrator.StartOptions{
			Version:        installVersion,
			ConfirmVersion: confirmVersion,
			ForceChooser:   choose,
			Prompter:       newTerminalPrompter(cmd.InOrStdin(), cmd.OutOrStdout()),
		})
		if err != nil {
			return err
		}
		return report(ctx, cmd, task, "Installed "+catalogApp.Name)
	},
}

func init() {
	installCmd.Flags().StringVar(&installVersion, "version", "", "install this version instead of the latest")
	installCmd.Flags().BoolVar(&choose, "choose", false, "always choose the install variant")
	installCmd.Flags().BoolVar(&confirmVersion, "confirm-version", true, "ask before replacing an installed version")
	rootCmd.AddCommand(installCmd)
}

// report follows task to the end. A cancelled task is not an error.
func report(ctx context.Context, cmd *cobra.Command, task *installer.Task, success string) error {
	outcome, err := follow(ctx, task, newRenderer(cmd.OutOrStdout()))
	if err != nil {
		return err
	}
	switch outcome.Kind {
	case installer.OutcomeSuccess:
		fmt.Fprintln(cmd.OutOrStdout(), success)
	case installer.OutcomeCancelled:
		fmt.Fprintln(cmd.OutOrStdout(), "Cancelled")
	default:
		return fmt.Errorf("%s of %s failed: %s", task.Operation(), task.AppID(), outcome.Message)
	}
	return nil
}

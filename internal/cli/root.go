package cli

import (
	"github.com/spf13/cobra"
)

// Version is set at build time via ldflags.
var Version = "dev"

var (
	catalogPath string
	configPath  string
)

var rootCmd = &cobra.Command{
	Use:   "store",
	Short: "Install and uninstall habitat apps",
	Long: `store installs apps listed in a local catalog file. Installs run in a separate
store-worker process so that file work can be done with elevated privileges.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.Version = Version
	rootCmd.SetVersionTemplate("store version {{.Version}}\n")
	rootCmd.PersistentFlags().StringVar(&catalogPath, "catalog", "catalog.yml", "catalog file to read apps from")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default is store.yml in the store path)")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

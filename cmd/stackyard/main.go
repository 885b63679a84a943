// Command stackyard runs the stack collection simulation headless or in a
// terminal viewer, and reports on recorded sessions.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

const version = "0.3.0"

const defaultConfigPath = "config/stackyard.toml"

var configPath string

var rootCmd = &cobra.Command{
	Use:           "stackyard",
	Short:         "Stackyard simulates carriers collecting and recycling pooled entities",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default $STACKYARD_CONFIG or "+defaultConfigPath+")")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(simCmd)
	rootCmd.AddCommand(viewCmd)
	rootCmd.AddCommand(ledgerCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the stackyard version",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintln(cmd.OutOrStdout(), "stackyard", version)
	},
}

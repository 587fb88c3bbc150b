package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "cadastro",
		Short:        "Validate registration records (name, email, CPF, phone, age, dates)",
		SilenceUsage: true,
	}
	cmd.PersistentFlags().String("config", "", "path to a TOML config file (default $CADASTRO_CONFIG)")

	cmd.AddCommand(validateCmd(), checkCmd(), versionCmd())
	return cmd
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), "cadastro "+version)
		},
	}
}

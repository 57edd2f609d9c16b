package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/leycura/curabot/internal/cli"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "curabotd",
		Short: "Ley C.U.R.A. chatbot daemon",
		Long:  "Daemon serving the Ley C.U.R.A. site chatbot and form endpoints",
	}

	cli.AddHelpJSONFlag(rootCmd)
	rootCmd.AddCommand(cli.ServeCmd())

	if len(os.Args) == 1 {
		os.Args = append(os.Args, "serve")
	}

	cli.CheckHelpJSON(rootCmd)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

package main

import (
	"fmt"
	"os"

	"github.com/arthur-debert/syncpack/cmd/syncpack/commands"
)

func main() {
	rootCmd := commands.NewRootCmd()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "syncpack: %v\n", err)
		os.Exit(commands.ExitCode(err))
	}
}

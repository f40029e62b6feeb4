package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/joestump/joe-reader/internal/build"
)

func main() {
	rootCmd := &cobra.Command{
		Use:     "joe-reader",
		Short:   "A self-hosted RSS and Atom reader",
		Long:    "Joe Reader: subscribe to feeds and read them in the browser or the terminal.",
		Version: fmt.Sprintf("%s (%s, %s)", build.Version, build.Commit, build.Branch),
	}

	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newMigrateCmd())
	rootCmd.AddCommand(newBrowseCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// Package cli implements the govorunctl commands.
package cli

import (
	"fmt"
	"os"

	"github.com/snezhkin/govorun/internal/store"
	"github.com/spf13/cobra"
)

var dbPath string

// RootCmd is the top-level command.
var RootCmd = &cobra.Command{
	Use:   "govorunctl",
	Short: "Corpus tooling for the govorun chat bot",
	Long:  "One-shot corpus utilities: bulk import, export, stats and offline generation. SQLite-backed, single binary.",
}

func init() {
	RootCmd.PersistentFlags().StringVarP(&dbPath, "db", "d", "", "Database path (default: $GOVORUN_DB_PATH or data/govorun.db)")
}

func getDBPath() string {
	if dbPath != "" {
		return dbPath
	}
	if env := os.Getenv("GOVORUN_DB_PATH"); env != "" {
		return env
	}
	return "data/govorun.db"
}

func openStore() (*store.Store, error) {
	return store.Open(getDBPath())
}

func exitErr(msg string, err error) {
	fmt.Fprintf(os.Stderr, "error: %s: %v\n", msg, err)
	os.Exit(1)
}

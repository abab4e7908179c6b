package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/shiftwage/attendance-engine/store/sqlite"
)

var dbPath string

var rootCmd = &cobra.Command{
	Use:   "attendance",
	Short: "Admin CLI for the attendance tracker's data store",
	Long: `attendance operates directly on the SQLite store used by the server.
It lists users and exports or imports the per-user {username, logs, tags}
document, the same round-trippable shape the web UI produces.`,
}

// Execute is the entry point called from main.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "attendance.db", "SQLite database path")
	rootCmd.AddCommand(usersCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(importCmd)
}

func openStore() (*sqlite.Store, error) {
	store, err := sqlite.New(dbPath)
	if err != nil {
		return nil, fmt.Errorf("open store %s: %w", dbPath, err)
	}
	return store, nil
}

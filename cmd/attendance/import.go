package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/shiftwage/attendance-engine/logbook"
)

var importCmd = &cobra.Command{
	Use:   "import <username> <file>",
	Short: "Replace a user's data from a document file",
	Long: `import reads an attendance document (current bucketed shape or the
legacy flat log list) and replaces the named user's stored data with it.
An unparseable document aborts without touching the store.`,
	Args: cobra.ExactArgs(2),
	RunE: runImport,
}

func runImport(cmd *cobra.Command, args []string) error {
	username, path := args[0], args[1]

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read document: %w", err)
	}

	store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	ctx := context.Background()
	repo, err := logbook.New(ctx, username, store, logbook.Options{})
	if err != nil {
		return err
	}
	if err := repo.Import(data); err != nil {
		return err
	}
	if result := repo.Flush(ctx); !result.Success {
		return fmt.Errorf("persist imported data: %s", result.Message)
	}

	fmt.Printf("imported %s into user %q\n", path, username)
	return nil
}

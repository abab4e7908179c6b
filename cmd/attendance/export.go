package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/shiftwage/attendance-engine/logbook"
)

var exportCmd = &cobra.Command{
	Use:   "export <username>",
	Short: "Write a user's document to stdout",
	Args:  cobra.ExactArgs(1),
	RunE:  runExport,
}

func runExport(cmd *cobra.Command, args []string) error {
	username := args[0]

	store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	repo, err := logbook.New(context.Background(), username, store, logbook.Options{})
	if err != nil {
		return err
	}

	doc, err := repo.Export()
	if err != nil {
		return err
	}

	fmt.Fprintln(os.Stdout, string(doc))
	return nil
}

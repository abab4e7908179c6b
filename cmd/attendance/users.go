package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var usersCmd = &cobra.Command{
	Use:   "users",
	Short: "List usernames with stored data",
	Args:  cobra.NoArgs,
	RunE:  runUsers,
}

func runUsers(cmd *cobra.Command, args []string) error {
	store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	users, err := store.ListUsers(context.Background())
	if err != nil {
		return err
	}
	for _, user := range users {
		fmt.Println(user)
	}
	return nil
}

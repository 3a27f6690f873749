package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var newVersionCmd = &cobra.Command{
	Use:   "new-version [id]",
	Short: "Create a new version of an existing item",
	Long: `Derive a new item from an existing one: same identity group, same
content, and the lowest free version number in the group.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		eng, err := newEngine()
		if err != nil {
			fatal("Error initializing satchel", err)
		}
		defer shutdown(eng)

		it, err := eng.CreateVersion(context.Background(), args[0])
		if err != nil {
			fatal("Error creating version", err)
		}
		fmt.Printf("Created %s (%s), version %d\n", it.InternalName, it.ID, it.Version)
	},
}

func init() {
	rootCmd.AddCommand(newVersionCmd)
}

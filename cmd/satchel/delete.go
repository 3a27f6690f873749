package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var deleteCmd = &cobra.Command{
	Use:   "delete [id]",
	Short: "Delete an item",
	Long: `Delete an item by its ID. Remaining versions of the same identity
group are renumbered so version numbers stay contiguous.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		eng, err := newEngine()
		if err != nil {
			fatal("Error initializing satchel", err)
		}
		defer shutdown(eng)

		if err := eng.DeleteItem(context.Background(), args[0]); err != nil {
			fatal("Error deleting item", err)
		}
		fmt.Printf("Deleted %s\n", args[0])
	},
}

func init() {
	rootCmd.AddCommand(deleteCmd)
}

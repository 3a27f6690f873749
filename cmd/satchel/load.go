package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var loadCmd = &cobra.Command{
	Use:   "load",
	Short: "Pull the remote collection into the local snapshot",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		eng, err := newEngine()
		if err != nil {
			fatal("Error initializing satchel", err)
		}
		defer shutdown(eng)

		items, err := eng.Load(context.Background())
		if err != nil {
			fatal("Error loading collection", err)
		}
		fmt.Printf("Loaded %d item(s), state %s\n", len(items), eng.SyncState())
	},
}

func init() {
	rootCmd.AddCommand(loadCmd)
}

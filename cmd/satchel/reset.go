package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Discard the local snapshot; the remote collection is untouched",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		eng, err := newEngine()
		if err != nil {
			fatal("Error initializing satchel", err)
		}
		defer shutdown(eng)

		if err := eng.Reset(context.Background()); err != nil {
			fatal("Error resetting local state", err)
		}
		fmt.Println("Local state cleared")
	},
}

func init() {
	rootCmd.AddCommand(resetCmd)
}

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var readJSON bool

var readCmd = &cobra.Command{
	Use:   "read [id]",
	Short: "Read an item",
	Long:  `Read an item by its ID. Outputs raw content by default, or the full JSON record with --json.`,
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		eng, err := newEngine()
		if err != nil {
			fatal("Error initializing satchel", err)
		}
		defer shutdown(eng)

		it, err := eng.Item(args[0])
		if err != nil {
			fatal("Error reading item", err)
		}
		if err := eng.MarkViewed(context.Background(), it.ID); err != nil {
			fatal("Error marking item viewed", err)
		}

		if readJSON {
			encoder := json.NewEncoder(os.Stdout)
			encoder.SetIndent("", "  ")
			if err := encoder.Encode(it); err != nil {
				fatal("Error encoding JSON", err)
			}
			return
		}

		fmt.Print(it.Content)
	},
}

func init() {
	rootCmd.AddCommand(readCmd)
	readCmd.Flags().BoolVar(&readJSON, "json", false, "Output in JSON format")
}

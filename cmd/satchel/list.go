package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	listJSON    bool
	listPattern string
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List items in the local collection",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		eng, err := newEngine()
		if err != nil {
			fatal("Error initializing satchel", err)
		}
		defer shutdown(eng)

		items, err := eng.List(listPattern)
		if err != nil {
			fatal("Error listing items", err)
		}

		if listJSON {
			encoder := json.NewEncoder(os.Stdout)
			encoder.SetIndent("", "  ")
			if err := encoder.Encode(items); err != nil {
				fatal("Error encoding JSON", err)
			}
			return
		}

		for _, it := range items {
			fmt.Printf("%s  %-30s  %s v%d\n", it.ID, it.DisplayName, it.Scheme, it.Version)
		}
	},
}

func init() {
	rootCmd.AddCommand(listCmd)
	listCmd.Flags().BoolVar(&listJSON, "json", false, "Output in JSON format")
	listCmd.Flags().StringVar(&listPattern, "match", "", "Filter by display-name glob pattern")
}

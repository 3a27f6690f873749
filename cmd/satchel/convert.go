package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/satchelhq/satchel/pkg/core"
	"github.com/satchelhq/satchel/pkg/engine"
)

var convertCmd = &cobra.Command{
	Use:   "convert [scheme]",
	Short: "Convert every item to another organizing scheme",
	Long: `Convert the whole collection to the target scheme (freeform, cohort, or
roster). Each item's fields are derived from its current name; if any item
cannot be mapped, nothing changes and the failing items are listed.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		eng, err := newEngine()
		if err != nil {
			fatal("Error initializing satchel", err)
		}
		defer shutdown(eng)

		err = eng.Convert(context.Background(), core.Scheme(args[0]))
		var cerr *engine.ConversionError
		if errors.As(err, &cerr) {
			fmt.Fprintf(os.Stderr, "Conversion aborted, %d item(s) could not be mapped:\n", len(cerr.IDs))
			for _, id := range cerr.IDs {
				if it, lookupErr := eng.Item(id); lookupErr == nil {
					fmt.Fprintf(os.Stderr, "  %s  %s\n", id, it.InternalName)
				} else {
					fmt.Fprintf(os.Stderr, "  %s\n", id)
				}
			}
			os.Exit(1)
		}
		if err != nil {
			fatal("Error converting collection", err)
		}
		fmt.Printf("Converted collection to %s\n", args[0])
	},
}

func init() {
	rootCmd.AddCommand(convertCmd)
}

package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var revisionShow string

var revisionsCmd = &cobra.Command{
	Use:   "revisions [id]",
	Short: "Browse an item's remote revision history",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		eng, err := newEngine()
		if err != nil {
			fatal("Error initializing satchel", err)
		}
		defer shutdown(eng)

		ctx := context.Background()
		if revisionShow != "" {
			content, err := eng.RevisionContent(ctx, args[0], revisionShow)
			if err != nil {
				fatal("Error reading revision", err)
			}
			fmt.Print(content)
			return
		}

		revs, err := eng.Revisions(ctx, args[0])
		if err != nil {
			fatal("Error listing revisions", err)
		}
		for _, rev := range revs {
			fmt.Printf("%s  %s  %d bytes\n", rev.RevisionID, rev.ModifiedAt.Format("2006-01-02 15:04:05"), rev.Size)
		}
	},
}

func init() {
	rootCmd.AddCommand(revisionsCmd)
	revisionsCmd.Flags().StringVar(&revisionShow, "show", "", "Print the content of one revision")
}

package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
)

var (
	updateTitle   string
	updateCohort  string
	updateSubject string
	updatePeriod  string
	updateMember  string
	updateContent string
	updateStdin   bool
)

var updateCmd = &cobra.Command{
	Use:   "update [id]",
	Short: "Update an item's fields or content",
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

		if cmd.Flags().Changed("title") {
			it.Title = updateTitle
		}
		if cmd.Flags().Changed("cohort") {
			it.CohortKey = updateCohort
		}
		if cmd.Flags().Changed("subject") {
			it.Subject = updateSubject
		}
		if cmd.Flags().Changed("period") {
			it.Period = updatePeriod
		}
		if cmd.Flags().Changed("member") {
			it.Member = updateMember
		}
		if cmd.Flags().Changed("content") {
			it.Content = updateContent
		}
		if updateStdin {
			data, err := io.ReadAll(os.Stdin)
			if err != nil {
				fatal("Error reading stdin", err)
			}
			it.Content = string(data)
		}

		updated, err := eng.UpdateItem(context.Background(), it)
		if err != nil {
			fatal("Error updating item", err)
		}
		fmt.Printf("Updated %s (%s)\n", updated.InternalName, updated.ID)
	},
}

func init() {
	rootCmd.AddCommand(updateCmd)
	updateCmd.Flags().StringVar(&updateTitle, "title", "", "New title (freeform)")
	updateCmd.Flags().StringVar(&updateCohort, "cohort", "", "New cohort rank")
	updateCmd.Flags().StringVar(&updateSubject, "subject", "", "New subject")
	updateCmd.Flags().StringVar(&updatePeriod, "period", "", "New period")
	updateCmd.Flags().StringVar(&updateMember, "member", "", "New member")
	updateCmd.Flags().StringVar(&updateContent, "content", "", "New content")
	updateCmd.Flags().BoolVar(&updateStdin, "stdin", false, "Read content from stdin")
}

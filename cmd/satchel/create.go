package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/satchelhq/satchel/pkg/core"
)

var (
	createScheme  string
	createTitle   string
	createCohort  string
	createSubject string
	createPeriod  string
	createMember  string
	createContent string
	createStdin   bool
)

var createCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a new item",
	Long: `Create an item under one of the three organizing schemes.
Freeform items take --title, cohort items take --cohort and --subject,
roster items additionally take --period and --member.`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		content := createContent
		if createStdin {
			data, err := io.ReadAll(os.Stdin)
			if err != nil {
				fatal("Error reading stdin", err)
			}
			content = string(data)
		}

		eng, err := newEngine()
		if err != nil {
			fatal("Error initializing satchel", err)
		}
		defer shutdown(eng)

		it, err := eng.CreateItem(context.Background(), core.Item{
			Scheme:    core.Scheme(createScheme),
			Title:     createTitle,
			CohortKey: createCohort,
			Subject:   createSubject,
			Period:    createPeriod,
			Member:    createMember,
			Content:   content,
		})
		if err != nil {
			fatal("Error creating item", err)
		}
		fmt.Printf("Created %s (%s)\n", it.InternalName, it.ID)
	},
}

func init() {
	rootCmd.AddCommand(createCmd)
	createCmd.Flags().StringVar(&createScheme, "scheme", "freeform", "Organizing scheme: freeform, cohort, or roster")
	createCmd.Flags().StringVar(&createTitle, "title", "", "Title (freeform)")
	createCmd.Flags().StringVar(&createCohort, "cohort", "", "Cohort rank (cohort, roster)")
	createCmd.Flags().StringVar(&createSubject, "subject", "", "Subject (cohort, roster)")
	createCmd.Flags().StringVar(&createPeriod, "period", "", "Four-digit period (roster)")
	createCmd.Flags().StringVar(&createMember, "member", "", "Member name (roster)")
	createCmd.Flags().StringVar(&createContent, "content", "", "Item content")
	createCmd.Flags().BoolVar(&createStdin, "stdin", false, "Read content from stdin")
}

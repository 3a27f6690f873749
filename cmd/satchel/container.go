package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var containerParent string

var containerCmd = &cobra.Command{
	Use:   "container",
	Short: "Manage freeform item containers",
}

var containerListCmd = &cobra.Command{
	Use:   "list",
	Short: "List containers",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		eng, err := newEngine()
		if err != nil {
			fatal("Error initializing satchel", err)
		}
		defer shutdown(eng)

		for _, c := range eng.Containers() {
			fmt.Printf("%s  %s\n", c.ID, c.Name)
		}
	},
}

var containerCreateCmd = &cobra.Command{
	Use:   "create [name]",
	Short: "Create a container",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		eng, err := newEngine()
		if err != nil {
			fatal("Error initializing satchel", err)
		}
		defer shutdown(eng)

		c, err := eng.CreateContainer(context.Background(), args[0], containerParent)
		if err != nil {
			fatal("Error creating container", err)
		}
		fmt.Printf("Created container %s (%s)\n", c.Name, c.ID)
	},
}

var containerRenameCmd = &cobra.Command{
	Use:   "rename [id] [name]",
	Short: "Rename a container",
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		eng, err := newEngine()
		if err != nil {
			fatal("Error initializing satchel", err)
		}
		defer shutdown(eng)

		if err := eng.RenameContainer(context.Background(), args[0], args[1]); err != nil {
			fatal("Error renaming container", err)
		}
		fmt.Printf("Renamed container %s\n", args[0])
	},
}

var containerDeleteCmd = &cobra.Command{
	Use:   "delete [id]",
	Short: "Delete a container; its items move to the root",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		eng, err := newEngine()
		if err != nil {
			fatal("Error initializing satchel", err)
		}
		defer shutdown(eng)

		if err := eng.DeleteContainer(context.Background(), args[0]); err != nil {
			fatal("Error deleting container", err)
		}
		fmt.Printf("Deleted container %s\n", args[0])
	},
}

func init() {
	rootCmd.AddCommand(containerCmd)
	containerCmd.AddCommand(containerListCmd)
	containerCmd.AddCommand(containerCreateCmd)
	containerCmd.AddCommand(containerRenameCmd)
	containerCmd.AddCommand(containerDeleteCmd)
	containerCreateCmd.Flags().StringVar(&containerParent, "parent", "", "Parent container id")
}

// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var schemeCmd = &cobra.Command{
	Use:   "scheme",
	Short: "List concept schemes and their top concepts",
}

var schemeListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored concept schemes",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore()
		if err != nil {
			return err
		}
		defer store.Close()

		schemes, err := store.ListSchemes(context.Background())
		if err != nil {
			return err
		}
		if jsonOutput, _ := cmd.Flags().GetBool("json"); jsonOutput {
			return writeJSON(schemes)
		}
		if len(schemes) == 0 {
			fmt.Println("No schemes.")
			return nil
		}
		fmt.Printf("%-40s  %s\n", "Title", "URI")
		fmt.Println(strings.Repeat("-", 100))
		for _, s := range schemes {
			fmt.Printf("%-40s  %s\n", truncate(s.Title, 40), s.URI)
		}
		return nil
	},
}

var schemeTopCmd = &cobra.Command{
	Use:   "top <scheme-uri>",
	Short: "List the concepts of a scheme that have no broader concept",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore()
		if err != nil {
			return err
		}
		defer store.Close()

		top, err := store.TopConcepts(context.Background(), args[0])
		if err != nil {
			return err
		}
		if jsonOutput, _ := cmd.Flags().GetBool("json"); jsonOutput {
			return writeJSON(top)
		}
		writeConceptTable(top)
		return nil
	},
}

func init() {
	schemeListCmd.Flags().Bool("json", false, "output results as JSON")
	schemeTopCmd.Flags().Bool("json", false, "output results as JSON")

	schemeCmd.AddCommand(schemeListCmd)
	schemeCmd.AddCommand(schemeTopCmd)
	rootCmd.AddCommand(schemeCmd)
}

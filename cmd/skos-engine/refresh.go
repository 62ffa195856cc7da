// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var refreshCmd = &cobra.Command{
	Use:   "refresh",
	Short: "Rebuild the broader hierarchy index",
	Long: `Refresh recomputes the transitive closure of broader relations. Imports
and edits already do this; refresh is for recovering after the depth
ceiling changed or the database was edited by hand.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore()
		if err != nil {
			return err
		}
		defer store.Close()

		res, err := store.RefreshHierarchy(context.Background())
		if err != nil {
			return err
		}
		fmt.Printf("hierarchy rebuilt: %d paths, max depth %d (%v)\n", res.Paths, res.MaxDepth, res.Duration)
		if res.CeilingReached {
			fmt.Println("warning: depth ceiling reached; run validate to look for cycles")
		}
		return nil
	},
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show row counts and hierarchy state",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore()
		if err != nil {
			return err
		}
		defer store.Close()

		st, err := store.Stats(context.Background())
		if err != nil {
			return err
		}
		if jsonOutput, _ := cmd.Flags().GetBool("json"); jsonOutput {
			return writeJSON(st)
		}
		fmt.Printf("schemes:   %d\n", st.Schemes)
		fmt.Printf("concepts:  %d\n", st.Concepts)
		fmt.Printf("labels:    %d\n", st.Labels)
		fmt.Printf("relations: %d\n", st.Relations)
		fmt.Printf("mappings:  %d\n", st.Mappings)
		fmt.Printf("paths:     %d (max depth %d)\n", st.Paths, st.MaxDepth)
		if st.HierarchyStale {
			fmt.Println("hierarchy: stale (run refresh)")
		}
		return nil
	},
}

func init() {
	statsCmd.Flags().Bool("json", false, "output results as JSON")

	rootCmd.AddCommand(refreshCmd)
	rootCmd.AddCommand(statsCmd)
}

// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/skos-engine/internal/knowledge"
	"github.com/pdiddy/skos-engine/pkg/types"
)

var conceptCmd = &cobra.Command{
	Use:   "concept",
	Short: "Look up, search, and delete concepts",
	Long: `Concept reads individual concepts from the store. Concepts are addressed
by internal id or by URI; anything containing "://" is treated as a URI.`,
}

// --- get subcommand ---

var conceptGetCmd = &cobra.Command{
	Use:   "get <id|uri>",
	Short: "Show a concept with its labels, relations, and mappings",
	Args:  cobra.ExactArgs(1),
	RunE:  runConceptGet,
}

func runConceptGet(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	id, err := resolveConcept(ctx, store, args[0])
	if err != nil {
		return err
	}
	d, ok, err := store.GetConceptDetail(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("concept %s not found", args[0])
	}

	if jsonOutput, _ := cmd.Flags().GetBool("json"); jsonOutput {
		return writeJSON(d)
	}

	fmt.Printf("%s\n  id:         %s\n  prefLabel:  %s\n", d.URI, d.ID, d.PrefLabel)
	if d.SchemeURI != "" {
		fmt.Printf("  scheme:     %s\n", d.SchemeURI)
	}
	if d.Definition != "" {
		fmt.Printf("  definition: %s\n", d.Definition)
	}
	for _, l := range d.Labels {
		fmt.Printf("  %-10s  %s%s\n", string(l.Type)+":", l.Text, langSuffix(l.Language))
	}
	for _, group := range []struct {
		name string
		ids  []string
	}{
		{"broader", d.Broader},
		{"narrower", d.Narrower},
		{"related", d.Related},
	} {
		for _, rid := range group.ids {
			fmt.Printf("  %-10s  %s\n", group.name+":", conceptLabel(ctx, store, rid))
		}
	}
	for _, m := range d.Mappings {
		fmt.Printf("  %-10s  %s (%.2f)\n", string(m.Type)+":", m.TargetURI, m.Confidence)
	}
	return nil
}

// --- search subcommand ---

var conceptSearchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Find concepts by label or definition substring",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runConceptSearch,
}

func runConceptSearch(cmd *cobra.Command, args []string) error {
	store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	results, err := store.SearchConcepts(context.Background(), strings.Join(args, " "))
	if err != nil {
		return err
	}
	if jsonOutput, _ := cmd.Flags().GetBool("json"); jsonOutput {
		return writeJSON(results)
	}
	writeConceptTable(results)
	return nil
}

// --- ancestors / descendants subcommands ---

var conceptAncestorsCmd = &cobra.Command{
	Use:   "ancestors <id|uri>",
	Short: "List every broader concept, nearest first",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runHierarchy(cmd, args[0], (*knowledge.Store).Ancestors)
	},
}

var conceptDescendantsCmd = &cobra.Command{
	Use:   "descendants <id|uri>",
	Short: "List every narrower concept, nearest first",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runHierarchy(cmd, args[0], (*knowledge.Store).Descendants)
	},
}

type hierarchyQuery func(*knowledge.Store, context.Context, string) ([]types.HierarchyEntry, error)

func runHierarchy(cmd *cobra.Command, ref string, query hierarchyQuery) error {
	ctx := context.Background()
	store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	id, err := resolveConcept(ctx, store, ref)
	if err != nil {
		return err
	}
	entries, err := query(store, ctx, id)
	if err != nil {
		return err
	}

	if jsonOutput, _ := cmd.Flags().GetBool("json"); jsonOutput {
		return writeJSON(entries)
	}
	if len(entries) == 0 {
		fmt.Println("No results found.")
		return nil
	}
	fmt.Printf("%-5s  %-40s  %s\n", "Depth", "PrefLabel", "URI")
	fmt.Println(strings.Repeat("-", 100))
	for _, e := range entries {
		fmt.Printf("%-5d  %-40s  %s\n", e.Depth, truncate(e.PrefLabel, 40), e.URI)
	}
	return nil
}

// --- delete subcommand ---

var conceptDeleteCmd = &cobra.Command{
	Use:   "delete <id|uri>",
	Short: "Delete a concept with its labels, relations, and mappings",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		store, err := openStore()
		if err != nil {
			return err
		}
		defer store.Close()

		id, err := resolveConcept(ctx, store, args[0])
		if err != nil {
			return err
		}
		deleted, err := store.DeleteConcept(ctx, id)
		if err != nil {
			return err
		}
		if !deleted {
			return fmt.Errorf("concept %s not found", args[0])
		}
		fmt.Printf("deleted %s\n", args[0])
		return nil
	},
}

// --- shared helpers ---

// resolveConcept accepts an id or a URI and returns the id.
func resolveConcept(ctx context.Context, store *knowledge.Store, ref string) (string, error) {
	if !strings.Contains(ref, "://") {
		return ref, nil
	}
	c, ok, err := store.GetConceptByURI(ctx, ref)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", fmt.Errorf("concept %s not found", ref)
	}
	return c.ID, nil
}

func conceptLabel(ctx context.Context, store *knowledge.Store, id string) string {
	c, ok, err := store.GetConcept(ctx, id)
	if err != nil || !ok {
		return id
	}
	return fmt.Sprintf("%s <%s>", c.PrefLabel, c.URI)
}

func writeConceptTable(cs []types.Concept) {
	if len(cs) == 0 {
		fmt.Println("No results found.")
		return
	}
	fmt.Printf("%-40s  %-36s  %s\n", "PrefLabel", "ID", "URI")
	fmt.Println(strings.Repeat("-", 120))
	for _, c := range cs {
		fmt.Printf("%-40s  %-36s  %s\n", truncate(c.PrefLabel, 40), c.ID, c.URI)
	}
	fmt.Printf("\n%d results\n", len(cs))
}

func writeJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func langSuffix(lang string) string {
	if lang == "" {
		return ""
	}
	return "@" + lang
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}

func init() {
	for _, c := range []*cobra.Command{conceptGetCmd, conceptSearchCmd, conceptAncestorsCmd, conceptDescendantsCmd} {
		c.Flags().Bool("json", false, "output results as JSON")
		conceptCmd.AddCommand(c)
	}
	conceptCmd.AddCommand(conceptDeleteCmd)

	rootCmd.AddCommand(conceptCmd)
}

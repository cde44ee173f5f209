package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/hyperengineering/showcase/internal/catalog"
	"github.com/hyperengineering/showcase/internal/types"
	"github.com/spf13/cobra"
)

var (
	catalogJSONOutput bool
	catalogCategory   string
	catalogLimit      int
)

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Inspect the project catalog",
	Long:  "List projects and categories from the built-in catalog without running the server.",
}

var catalogListCmd = &cobra.Command{
	Use:   "list",
	Short: "List projects, optionally filtered by category",
	Args:  cobra.NoArgs,
	RunE:  runCatalogList,
}

var catalogCategoriesCmd = &cobra.Command{
	Use:   "categories",
	Short: "List filter categories",
	Args:  cobra.NoArgs,
	RunE:  runCatalogCategories,
}

func init() {
	catalogCmd.PersistentFlags().BoolVar(&catalogJSONOutput, "json", false,
		"Output in JSON format")

	catalogListCmd.Flags().StringVar(&catalogCategory, "category", "",
		"Category name or slug (default: all)")
	catalogListCmd.Flags().IntVar(&catalogLimit, "limit", 0,
		"Maximum number of projects (0 for no limit)")

	catalogCmd.AddCommand(catalogListCmd)
	catalogCmd.AddCommand(catalogCategoriesCmd)
}

func runCatalogList(cmd *cobra.Command, args []string) error {
	category, err := catalog.ParseCategory(catalogCategory)
	if err != nil {
		return err
	}
	if catalogLimit < 0 {
		return errors.New("--limit must not be negative")
	}

	var limit *int
	if catalogLimit > 0 {
		limit = &catalogLimit
	}
	f := catalog.NewFilter(catalog.Default(), limit)
	f.SelectCategory(category)
	view := types.NewCatalogView(f)

	if catalogJSONOutput {
		return printJSON(cmd.OutOrStdout(), view)
	}

	if view.Empty {
		fmt.Fprintln(cmd.OutOrStdout(), "No projects found.")
		return nil
	}

	w := newTabWriter(cmd.OutOrStdout())
	fmt.Fprintln(w, "ID\tTITLE\tCATEGORY\tTECH")
	for _, p := range view.Projects {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", p.ID, p.Title, p.Category, strings.Join(p.TechStack, ", "))
	}
	if err := w.Flush(); err != nil {
		return err
	}
	if view.ShowViewAll {
		fmt.Fprintln(cmd.OutOrStdout(), "More projects available; raise --limit to see them.")
	}
	return nil
}

func runCatalogCategories(cmd *cobra.Command, args []string) error {
	cat := catalog.Default()
	options := types.CategoryOptions(catalog.All)

	counts := make(map[string]int, len(options))
	for _, e := range cat.Entries() {
		counts[e.Category.Slug()]++
	}
	counts[catalog.All.Slug()] = cat.Len()

	if catalogJSONOutput {
		items := make([]map[string]any, len(options))
		for i, o := range options {
			items[i] = map[string]any{
				"name":     o.Name,
				"slug":     o.Slug,
				"projects": counts[o.Slug],
			}
		}
		return printJSON(cmd.OutOrStdout(), map[string]any{
			"categories": items,
			"total":      len(items),
		})
	}

	w := newTabWriter(cmd.OutOrStdout())
	fmt.Fprintln(w, "NAME\tSLUG\tPROJECTS")
	for _, o := range options {
		fmt.Fprintf(w, "%s\t%s\t%d\n", o.Name, o.Slug, counts[o.Slug])
	}
	return w.Flush()
}

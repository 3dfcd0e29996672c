// Package taxonomy implements the taxonomy command: refresh the
// classification cache and summarize the species tree.
package taxonomy

import (
	"context"
	"fmt"

	"github.com/jonboulle/clockwork"
	"github.com/spf13/cobra"

	"github.com/squaremeter/squarelog/internal/conf"
	"github.com/squaremeter/squarelog/internal/datastore"
	"github.com/squaremeter/squarelog/internal/speciestree"
	"github.com/squaremeter/squarelog/internal/taxonomy"
)

// Command creates the taxonomy command.
func Command(settings *conf.Settings) *cobra.Command {
	return &cobra.Command{
		Use:   "taxonomy",
		Short: "Fetch missing classifications and show the species tree",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTaxonomy(cmd.Context(), settings)
		},
	}
}

func runTaxonomy(ctx context.Context, settings *conf.Settings) error {
	store := datastore.New(settings)
	sightings, err := store.LoadSightings()
	if err != nil {
		return err
	}

	resolver := taxonomy.NewResolver(store, taxonomy.NewClient(settings), settings, clockwork.NewRealClock())
	cache, fetched, err := resolver.ResolveAll(ctx, sightings)
	if err != nil {
		return err
	}
	if fetched > 0 {
		fmt.Printf("Fetched %d new classification(s)\n", fetched)
	} else {
		fmt.Println("Taxonomy cache is up to date")
	}

	tree := speciestree.Build(sightings, cache)
	treeStats := tree.Stats()
	fmt.Printf("%d classes, %d orders, %d families, %d species",
		treeStats.Classes, treeStats.Orders, treeStats.Families, treeStats.Species)
	if n := len(tree.Unclassified); n > 0 {
		fmt.Printf(" (%d unclassified)", n)
	}
	fmt.Println()

	for _, class := range tree.ClassNames() {
		fmt.Printf("%s\n", class)
		for _, order := range tree.OrderNames(class) {
			fmt.Printf("  %s\n", order)
			for _, family := range tree.FamilyNames(class, order) {
				fmt.Printf("    %s\n", family)
				for _, entry := range tree.Classes[class][order][family] {
					fmt.Printf("      %s (%s) ×%d\n", entry.CommonName, entry.ScientificName, entry.SightingCount)
				}
			}
		}
	}
	if len(tree.Unclassified) > 0 {
		fmt.Println("Unclassified")
		for _, entry := range tree.Unclassified {
			fmt.Printf("  %s (%s) ×%d\n", entry.CommonName, entry.ScientificName, entry.SightingCount)
		}
	}
	return nil
}

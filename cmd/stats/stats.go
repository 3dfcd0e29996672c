// Package stats implements the stats command: a terminal summary of the
// aggregated statistics.
package stats

import (
	"fmt"

	"github.com/jonboulle/clockwork"
	"github.com/spf13/cobra"

	"github.com/squaremeter/squarelog/internal/conf"
	"github.com/squaremeter/squarelog/internal/datastore"
	"github.com/squaremeter/squarelog/internal/stats"
)

// Command creates the stats command.
func Command(settings *conf.Settings) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show plot statistics",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStats(settings)
		},
	}
}

func runStats(settings *conf.Settings) error {
	store := datastore.New(settings)
	sightings, err := store.LoadSightings()
	if err != nil {
		return err
	}
	observations, err := store.LoadObservations()
	if err != nil {
		return err
	}

	summary := stats.Compute(sightings, observations, settings, clockwork.NewRealClock())

	fmt.Printf("Sightings:     %d\n", summary.TotalSightings)
	fmt.Printf("Observations:  %d\n", summary.TotalObservations)
	fmt.Printf("Species:       %d\n", summary.UniqueSpecies)
	fmt.Printf("Days:          %d elapsed, %d with sightings (%d%%)\n",
		summary.DaysElapsed, summary.DaysWithSightings, summary.CoveragePercent)
	fmt.Printf("This month:    %d new species, %d repeats\n",
		summary.NewSpeciesThisMonth, summary.RepeatSightingsThisMonth)

	printHistogram("By category (species)", summary.ByCategory)
	printHistogram("By season", summary.BySeason)

	if len(summary.TopSpecies) > 0 {
		fmt.Println("\nMost seen:")
		for i, species := range summary.TopSpecies {
			fmt.Printf("  %d. %s (%d)\n", i+1, species.Name, species.Count)
		}
	}
	return nil
}

func printHistogram(title string, h stats.Histogram) {
	if len(h.Entries) == 0 {
		return
	}
	fmt.Printf("\n%s:\n", title)
	for _, entry := range h.Entries {
		fmt.Printf("  %-16s %d\n", entry.Label, entry.Count)
	}
}

// Package quicklog implements the log command: record observations without
// photographs.
package quicklog

import (
	"context"
	"fmt"
	"os"

	"github.com/jonboulle/clockwork"
	"github.com/spf13/cobra"

	"github.com/squaremeter/squarelog/internal/almanac"
	"github.com/squaremeter/squarelog/internal/conf"
	"github.com/squaremeter/squarelog/internal/datastore"
	"github.com/squaremeter/squarelog/internal/prompt"
	"github.com/squaremeter/squarelog/internal/record"
	"github.com/squaremeter/squarelog/internal/weather"
)

// Command creates the log command.
func Command(settings *conf.Settings) *cobra.Command {
	var timeOfDay string

	cmd := &cobra.Command{
		Use:   "log [species...]",
		Short: "Quick-log species seen right now, without photos",
		Long: `Log records one observation per species at the current time, sharing a
single weather and sky lookup. Species with a photographed sighting today are
skipped. Without arguments the known species are listed and names prompted.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLog(cmd.Context(), settings, args, timeOfDay)
		},
	}

	cmd.Flags().StringVar(&timeOfDay, "time-of-day", "", "Override the derived time of day (morning/afternoon/evening/night)")

	return cmd
}

func runLog(ctx context.Context, settings *conf.Settings, args []string, timeOfDay string) error {
	store := datastore.New(settings)
	clock := clockwork.NewRealClock()
	weatherService := weather.NewService(weather.NewOpenMeteo(settings, clock), settings)
	builder, err := record.NewBuilder(store, weatherService, settings, clock)
	if err != nil {
		return err
	}

	p := prompt.New(os.Stdin, os.Stdout)

	species := args
	if len(species) == 0 {
		sightings, err := store.LoadSightings()
		if err != nil {
			return err
		}
		printKnownSpecies(p, record.KnownSpecies(sightings))
		species = p.AskList("Species (comma-separated)")
	}
	if len(species) == 0 {
		fmt.Println("Nothing to log.")
		return nil
	}

	if !almanac.IsTimeOfDay(timeOfDay) {
		timeOfDay = almanac.TimeOfDay(builder.Now())
	}

	choose := func(commonName string, options []record.SpeciesOption) int {
		p.Printf("%q matches more than one identification:\n", commonName)
		for i, option := range options {
			p.Printf("  %d. %s (%s)\n", i+1, option.CommonName, option.ScientificName)
		}
		if idx := p.AskChoice("Which one", len(options)); idx >= 0 {
			return idx
		}
		return 0
	}

	result, err := builder.QuickLog(ctx, species, timeOfDay, choose)
	if err != nil {
		return err
	}

	for _, logged := range result.Logged {
		line := logged.CommonName
		if logged.ScientificName != "" {
			line += fmt.Sprintf(" (%s)", logged.ScientificName)
		}
		fmt.Printf("Logged %s — %d record(s) total\n", line, logged.Total)
	}
	for _, skipped := range result.Skipped {
		fmt.Printf("Skipped %s: already sighted today\n", skipped)
	}
	return nil
}

// printKnownSpecies lists the known species pairings in two columns.
func printKnownSpecies(p *prompt.Prompter, options []record.SpeciesOption) {
	if len(options) == 0 {
		return
	}
	p.Printf("Known species:\n")
	half := (len(options) + 1) / 2
	for i := 0; i < half; i++ {
		left := options[i].CommonName
		right := ""
		if i+half < len(options) {
			right = options[i+half].CommonName
		}
		p.Printf("  %-32s %s\n", left, right)
	}
}

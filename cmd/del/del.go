// Package del implements the delete command: delete-as-convert with asset
// cleanup.
package del

import (
	"context"
	"fmt"
	"os"

	"github.com/jonboulle/clockwork"
	"github.com/spf13/cobra"

	"github.com/squaremeter/squarelog/internal/assets"
	"github.com/squaremeter/squarelog/internal/conf"
	"github.com/squaremeter/squarelog/internal/datastore"
	"github.com/squaremeter/squarelog/internal/prompt"
	"github.com/squaremeter/squarelog/internal/record"
	"github.com/squaremeter/squarelog/internal/weather"
)

// Command creates the delete command.
func Command(settings *conf.Settings) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "delete <sighting-id>",
		Short: "Delete a sighting, preserving it as an observation",
		Long: `Delete converts the sighting into a logged observation (keeping its date,
species, weather and sky context), removes it from the sightings collection,
and cleans up its catalog images.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDelete(cmd.Context(), settings, args[0], force)
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "Delete without confirmation")

	return cmd
}

func runDelete(ctx context.Context, settings *conf.Settings, id string, force bool) error {
	store := datastore.New(settings)
	clock := clockwork.NewRealClock()
	weatherService := weather.NewService(weather.NewOpenMeteo(settings, clock), settings)
	builder, err := record.NewBuilder(store, weatherService, settings, clock)
	if err != nil {
		return err
	}

	sightings, err := store.LoadSightings()
	if err != nil {
		return err
	}
	idx := record.FindByID(sightings, id)
	if idx < 0 {
		return fmt.Errorf("sighting %s not found", id)
	}
	target := &sightings[idx]

	fmt.Printf("%s: %s", target.ID, target.CommonName)
	if target.ScientificName != "" {
		fmt.Printf(" (%s)", target.ScientificName)
	}
	fmt.Printf("\n  captured %s, %d image(s)\n", target.CapturedAt.Format("2006-01-02 15:04"), len(target.Images))

	if !force {
		p := prompt.New(os.Stdin, os.Stdout)
		if !p.AskYesNo("Delete this sighting", false) {
			fmt.Println("Cancelled.")
			return nil
		}
	}

	removed, err := builder.Delete(id)
	if err != nil {
		return err
	}

	manager, err := assets.NewConfiguredManager(settings)
	if err != nil {
		return err
	}
	report := manager.DeleteSighting(ctx, removed.Images)

	fmt.Printf("Converted %s to an observation, removed %d image file(s)\n", removed.ID, len(report.Removed))
	for _, failure := range report.Failures {
		fmt.Printf("  cleanup failure: %v\n", failure)
	}
	return nil
}

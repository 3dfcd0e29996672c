// Package addimage implements the addimage command: attach another photo to
// an existing sighting.
package addimage

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/squaremeter/squarelog/internal/assets"
	"github.com/squaremeter/squarelog/internal/conf"
	"github.com/squaremeter/squarelog/internal/datastore"
	"github.com/squaremeter/squarelog/internal/model"
	"github.com/squaremeter/squarelog/internal/prompt"
	"github.com/squaremeter/squarelog/internal/record"
)

// Command creates the addimage command.
func Command(settings *conf.Settings) *cobra.Command {
	var keep bool

	cmd := &cobra.Command{
		Use:   "addimage <sighting-id> <image>",
		Short: "Attach another photo to an existing sighting",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAddImage(cmd.Context(), settings, args[0], args[1], keep)
		},
	}

	cmd.Flags().BoolVar(&keep, "keep", false, "Keep the source image instead of removing it after ingest")

	return cmd
}

func runAddImage(ctx context.Context, settings *conf.Settings, id, imagePath string, keep bool) error {
	if _, err := os.Stat(imagePath); err != nil {
		return err
	}

	store := datastore.New(settings)
	sightings, err := store.LoadSightings()
	if err != nil {
		return err
	}
	idx := record.FindByID(sightings, id)
	if idx < 0 {
		return fmt.Errorf("sighting %s not found", id)
	}
	sighting := &sightings[idx]

	manager, err := assets.NewConfiguredManager(settings)
	if err != nil {
		return err
	}

	letter := assets.NextLetter(sighting)
	filename, err := manager.Ingest(ctx, imagePath, sighting.ID, letter)
	if err != nil {
		return err
	}

	p := prompt.New(os.Stdin, os.Stdout)
	caption := p.Ask("Caption (optional)")

	sighting.Images = append(sighting.Images, model.Image{Filename: filename, Caption: caption})
	if err := store.SaveSightings(sightings); err != nil {
		return err
	}

	if !keep {
		if err := os.Remove(imagePath); err != nil {
			fmt.Printf("Could not remove %s: %v\n", imagePath, err)
		}
	}

	fmt.Printf("Added %s to %s (%d image(s) now)\n", filename, sighting.ID, len(sighting.Images))
	return nil
}

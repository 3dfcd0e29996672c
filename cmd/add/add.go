// Package add implements the add command: ingest inbox photos as a new
// enriched sighting.
package add

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/spf13/cobra"

	"github.com/squaremeter/squarelog/internal/assets"
	"github.com/squaremeter/squarelog/internal/conf"
	"github.com/squaremeter/squarelog/internal/datastore"
	"github.com/squaremeter/squarelog/internal/model"
	"github.com/squaremeter/squarelog/internal/prompt"
	"github.com/squaremeter/squarelog/internal/record"
	"github.com/squaremeter/squarelog/internal/weather"
)

// Command creates the add command.
func Command(settings *conf.Settings) *cobra.Command {
	var keep bool
	var dateOverride string

	cmd := &cobra.Command{
		Use:   "add [image...]",
		Short: "Add a new sighting from photos",
		Long: `Add ingests one or more photos into a new sighting. Without arguments it
picks up every image waiting in the inbox directory. The capture time comes
from EXIF data when present; species, category and the rest are prompted.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAdd(cmd.Context(), settings, args, keep, dateOverride)
		},
	}

	cmd.Flags().BoolVar(&keep, "keep", false, "Keep source images instead of removing them after ingest")
	cmd.Flags().StringVar(&dateOverride, "date", "", "Capture date and time (YYYY-MM-DD HH:MM), overrides EXIF")

	return cmd
}

func runAdd(ctx context.Context, settings *conf.Settings, args []string, keep bool, dateOverride string) error {
	images, err := collectImages(settings.InboxDir, args)
	if err != nil {
		return err
	}
	if len(images) == 0 {
		fmt.Printf("No images found in %s\n", settings.InboxDir)
		return nil
	}

	store := datastore.New(settings)
	clock := clockwork.NewRealClock()
	weatherService := weather.NewService(weather.NewOpenMeteo(settings, clock), settings)
	builder, err := record.NewBuilder(store, weatherService, settings, clock)
	if err != nil {
		return err
	}
	manager, err := assets.NewConfiguredManager(settings)
	if err != nil {
		return err
	}

	timezone, err := settings.TimeZone()
	if err != nil {
		return err
	}

	p := prompt.New(os.Stdin, os.Stdout)

	capturedAt, err := captureTime(p, images[0], dateOverride, timezone)
	if err != nil {
		return err
	}

	sightings, err := store.LoadSightings()
	if err != nil {
		return err
	}
	observations, err := store.LoadObservations()
	if err != nil {
		return err
	}

	input := askSighting(p, settings, capturedAt)

	sighting, err := builder.NewSighting(ctx, sightings, observations, input)
	if err != nil {
		return err
	}

	for i, path := range images {
		letter := string(rune('a' + i))
		filename, err := manager.Ingest(ctx, path, sighting.ID, letter)
		if err != nil {
			return err
		}
		caption := ""
		if len(images) > 1 {
			caption = p.Ask(fmt.Sprintf("Caption for %s", filepath.Base(path)))
		}
		sighting.Images = append(sighting.Images, model.Image{Filename: filename, Caption: caption})
	}

	sightings = append(sightings, *sighting)
	if err := store.SaveSightings(sightings); err != nil {
		return err
	}

	if !keep {
		for _, path := range images {
			if err := os.Remove(path); err != nil {
				fmt.Printf("Could not remove %s: %v\n", path, err)
			}
		}
	}

	fmt.Printf("Added %s: %s", sighting.ID, sighting.CommonName)
	if sighting.ScientificName != "" {
		fmt.Printf(" (%s)", sighting.ScientificName)
	}
	fmt.Printf(" with %d image(s)\n", len(sighting.Images))
	return nil
}

// collectImages returns the images to ingest: the explicit arguments when
// given, otherwise every image in the inbox sorted by name.
func collectImages(inboxDir string, args []string) ([]string, error) {
	if len(args) > 0 {
		for _, path := range args {
			if _, err := os.Stat(path); err != nil {
				return nil, err
			}
		}
		return args, nil
	}

	entries, err := os.ReadDir(inboxDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var images []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(entry.Name())) {
		case ".jpg", ".jpeg", ".png":
			images = append(images, filepath.Join(inboxDir, entry.Name()))
		}
	}
	sort.Strings(images)
	return images, nil
}

// captureTime determines when the photo was taken: an explicit override wins,
// then EXIF, then a prompt.
func captureTime(p *prompt.Prompter, imagePath, override string, timezone *time.Location) (time.Time, error) {
	if override != "" {
		return time.ParseInLocation("2006-01-02 15:04", override, timezone)
	}
	if captured, ok := assets.CaptureDate(imagePath, timezone); ok {
		p.Printf("Capture time from EXIF: %s\n", captured.Format("2006-01-02 15:04"))
		return captured, nil
	}
	for {
		answer := p.AskRequired("Capture date and time (YYYY-MM-DD HH:MM)")
		if answer == "" {
			return time.Time{}, fmt.Errorf("no capture time given")
		}
		captured, err := time.ParseInLocation("2006-01-02 15:04", answer, timezone)
		if err == nil {
			return captured, nil
		}
		p.Printf("Could not parse %q\n", answer)
	}
}

// askSighting prompts for the user-supplied fields of the new sighting.
func askSighting(p *prompt.Prompter, settings *conf.Settings, capturedAt time.Time) record.SightingInput {
	input := record.SightingInput{CapturedAt: capturedAt}

	input.CommonName = p.AskRequired("Common name")
	input.ScientificName = p.Ask("Scientific name (optional)")

	p.Printf("Categories: %s\n", strings.Join(settings.Categories, ", "))
	input.Category = p.AskDefault("Category", settings.Categories[len(settings.Categories)-1])

	input.Tags = p.AskList("Tags (comma-separated, optional)")
	input.Notes = p.Ask("Notes (optional)")

	if size, err := p.AskFloat("Size in mm (optional)"); err == nil {
		input.SizeMM = size
	}
	input.IDCertainty = strings.ToLower(p.Ask("ID certainty (high/medium/low, optional)"))

	return input
}

// Package edit implements the edit command: field-by-field sighting updates.
package edit

import (
	"fmt"
	"os"
	"strings"

	"github.com/jonboulle/clockwork"
	"github.com/spf13/cobra"

	"github.com/squaremeter/squarelog/internal/conf"
	"github.com/squaremeter/squarelog/internal/datastore"
	"github.com/squaremeter/squarelog/internal/prompt"
	"github.com/squaremeter/squarelog/internal/record"
	"github.com/squaremeter/squarelog/internal/weather"
)

// Command creates the edit command.
func Command(settings *conf.Settings) *cobra.Command {
	return &cobra.Command{
		Use:   "edit <sighting-id>",
		Short: "Edit a sighting's fields",
		Long:  "Edit prompts for each editable field; an empty answer keeps the current value.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEdit(settings, args[0])
		},
	}
}

func runEdit(settings *conf.Settings, id string) error {
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
	current := &sightings[idx]

	p := prompt.New(os.Stdin, os.Stdout)
	p.Printf("Editing %s (%s). Empty answers keep the current value.\n", current.ID, current.CommonName)

	edits := record.FieldEdits{}
	setIfAnswered := func(label, currentValue string, target **string) {
		if answer := p.Ask(fmt.Sprintf("%s [%s]", label, currentValue)); answer != "" {
			*target = &answer
		}
	}

	setIfAnswered("Common name", current.CommonName, &edits.CommonName)
	setIfAnswered("Scientific name ('-' to clear)", current.ScientificName, &edits.ScientificName)
	if edits.ScientificName != nil && *edits.ScientificName == "-" {
		empty := ""
		edits.ScientificName = &empty
	}
	setIfAnswered("Category", current.Category, &edits.Category)
	setIfAnswered("Time of day", current.TimeOfDay, &edits.TimeOfDay)
	setIfAnswered("Notes", current.Notes, &edits.Notes)
	setIfAnswered("ID certainty", current.IDCertainty, &edits.IDCertainty)

	currentSize := "none"
	if current.SizeMM != nil {
		currentSize = fmt.Sprintf("%g", *current.SizeMM)
	}
	switch answer := p.Ask(fmt.Sprintf("Size in mm ('-' to clear) [%s]", currentSize)); {
	case answer == "-":
		edits.ClearSizeMM = true
	case answer != "":
		var size float64
		if _, err := fmt.Sscanf(answer, "%g", &size); err != nil {
			return fmt.Errorf("not a number: %s", answer)
		}
		edits.SizeMM = &size
	}

	if answer := p.Ask(fmt.Sprintf("Tags [%s]", strings.Join(current.Tags, ", "))); answer != "" {
		var tags []string
		for _, tag := range strings.Split(answer, ",") {
			if tag = strings.TrimSpace(tag); tag != "" {
				tags = append(tags, tag)
			}
		}
		edits.Tags = &tags
	}

	updated, err := builder.Edit(id, edits)
	if err != nil {
		return err
	}
	fmt.Printf("Updated %s: %s\n", updated.ID, updated.CommonName)
	return nil
}

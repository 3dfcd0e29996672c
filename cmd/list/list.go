// Package list implements the list command: recent sightings in a table.
package list

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/squaremeter/squarelog/internal/conf"
	"github.com/squaremeter/squarelog/internal/datastore"
	"github.com/squaremeter/squarelog/internal/model"
)

// Command creates the list command.
func Command(settings *conf.Settings) *cobra.Command {
	var last int
	var category, season string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recent sightings",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(settings, last, category, season)
		},
	}

	cmd.Flags().IntVarP(&last, "last", "n", 10, "Number of sightings to show")
	cmd.Flags().StringVar(&category, "category", "", "Only show this category")
	cmd.Flags().StringVar(&season, "season", "", "Only show this season")

	return cmd
}

func runList(settings *conf.Settings, last int, category, season string) error {
	store := datastore.New(settings)
	sightings, err := store.LoadSightings()
	if err != nil {
		return err
	}

	sort.SliceStable(sightings, func(i, j int) bool {
		return sightings[i].CapturedAt.After(sightings[j].CapturedAt)
	})

	var shown []model.Sighting
	for i := range sightings {
		if category != "" && !strings.EqualFold(sightings[i].Category, category) {
			continue
		}
		if season != "" && !strings.EqualFold(sightings[i].Season, season) {
			continue
		}
		shown = append(shown, sightings[i])
		if last > 0 && len(shown) >= last {
			break
		}
	}

	if len(shown) == 0 {
		fmt.Println("No sightings match.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 8, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tDATE\tCOMMON NAME\tSCIENTIFIC NAME\tCATEGORY\tSEASON")
	for i := range shown {
		s := &shown[i]
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
			s.ID,
			s.CapturedAt.Format("2006-01-02 15:04"),
			s.CommonName,
			s.ScientificName,
			s.Category,
			s.Season)
	}
	return w.Flush()
}

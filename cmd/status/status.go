// Package status implements the status command: today's records at a glance.
package status

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/squaremeter/squarelog/internal/conf"
	"github.com/squaremeter/squarelog/internal/datastore"
)

// Command creates the status command.
func Command(settings *conf.Settings) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show today's sightings and observations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStatus(settings)
		},
	}
}

func runStatus(settings *conf.Settings) error {
	timezone, err := settings.TimeZone()
	if err != nil {
		return err
	}
	today := time.Now().In(timezone).Format("2006-01-02")

	store := datastore.New(settings)
	sightings, err := store.LoadSightings()
	if err != nil {
		return err
	}
	observations, err := store.LoadObservations()
	if err != nil {
		return err
	}

	sightedCounts := make(map[string]int)
	var sightedOrder []string
	for i := range sightings {
		if sightings[i].CapturedAt.In(timezone).Format("2006-01-02") != today {
			continue
		}
		key := sightings[i].CommonName
		if sightedCounts[key] == 0 {
			sightedOrder = append(sightedOrder, key)
		}
		sightedCounts[key]++
	}

	loggedCounts := make(map[string]int)
	var loggedOrder []string
	for i := range observations {
		if observations[i].Date != today {
			continue
		}
		key := observations[i].CommonName
		if loggedCounts[key] == 0 {
			loggedOrder = append(loggedOrder, key)
		}
		loggedCounts[key]++
	}

	fmt.Printf("Today (%s):\n", today)
	if len(sightedOrder) == 0 && len(loggedOrder) == 0 {
		fmt.Println("  nothing recorded yet")
		return nil
	}

	if len(sightedOrder) > 0 {
		fmt.Printf("  Sightings: %s\n", formatCounts(sightedOrder, sightedCounts))
	}
	if len(loggedOrder) > 0 {
		fmt.Printf("  Observations: %s\n", formatCounts(loggedOrder, loggedCounts))
	}
	return nil
}

func formatCounts(order []string, counts map[string]int) string {
	parts := make([]string, 0, len(order))
	for _, name := range order {
		if counts[name] > 1 {
			parts = append(parts, fmt.Sprintf("%s ×%d", name, counts[name]))
		} else {
			parts = append(parts, name)
		}
	}
	return strings.Join(parts, ", ")
}

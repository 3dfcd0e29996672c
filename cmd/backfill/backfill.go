// Package backfill implements the backfill-weather command: refresh records
// that predate the extended weather parameters.
package backfill

import (
	"context"
	"fmt"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/spf13/cobra"

	"github.com/squaremeter/squarelog/internal/conf"
	"github.com/squaremeter/squarelog/internal/datastore"
	"github.com/squaremeter/squarelog/internal/record"
	"github.com/squaremeter/squarelog/internal/weather"
)

// Command creates the backfill-weather command.
func Command(settings *conf.Settings) *cobra.Command {
	var delay time.Duration

	cmd := &cobra.Command{
		Use:   "backfill-weather",
		Short: "Re-fetch weather for sightings missing the extended fields",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBackfill(cmd.Context(), settings, delay)
		},
	}

	cmd.Flags().DurationVar(&delay, "delay", 500*time.Millisecond, "Pause between weather requests")

	return cmd
}

func runBackfill(ctx context.Context, settings *conf.Settings, delay time.Duration) error {
	store := datastore.New(settings)
	clock := clockwork.NewRealClock()
	weatherService := weather.NewService(weather.NewOpenMeteo(settings, clock), settings)
	builder, err := record.NewBuilder(store, weatherService, settings, clock)
	if err != nil {
		return err
	}

	report, err := builder.BackfillWeather(ctx, delay)
	if err != nil {
		return err
	}

	if report.Candidates == 0 {
		fmt.Println("All sightings already have full weather data.")
		return nil
	}
	fmt.Printf("Backfilled %d of %d sighting(s)", report.Updated, report.Candidates)
	if report.Failed > 0 {
		fmt.Printf(", %d fetch failure(s) skipped", report.Failed)
	}
	fmt.Println()
	return nil
}

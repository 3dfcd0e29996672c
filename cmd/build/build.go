// Package build implements the build command: generate the static site and
// optionally serve it locally.
package build

import (
	"context"
	"fmt"

	"github.com/jonboulle/clockwork"
	"github.com/spf13/cobra"

	"github.com/squaremeter/squarelog/internal/conf"
	"github.com/squaremeter/squarelog/internal/datastore"
	"github.com/squaremeter/squarelog/internal/site"
	"github.com/squaremeter/squarelog/internal/taxonomy"
)

// Command creates the build command.
func Command(settings *conf.Settings) *cobra.Command {
	var serve bool
	var output string
	var port int
	var skipTaxonomy bool

	cmd := &cobra.Command{
		Use:   "build",
		Short: "Generate the static site",
		Long: `Build renders every page, the public sightings JSON and the RSS feed into
the output directory, refreshing the taxonomy cache for any new species on
the way.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBuild(cmd.Context(), settings, output, serve, port, skipTaxonomy)
		},
	}

	cmd.Flags().BoolVar(&serve, "serve", false, "Serve the built site locally after building")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output directory (defaults to the configured one)")
	cmd.Flags().IntVarP(&port, "port", "p", 8000, "Port for --serve")
	cmd.Flags().BoolVar(&skipTaxonomy, "skip-taxonomy", false, "Build with the taxonomy cache as-is, without fetching")

	return cmd
}

func runBuild(ctx context.Context, settings *conf.Settings, output string, serve bool, port int, skipTaxonomy bool) error {
	if output == "" {
		output = settings.OutputDir
	}

	store := datastore.New(settings)
	clock := clockwork.NewRealClock()

	var resolver *taxonomy.Resolver
	if !skipTaxonomy {
		resolver = taxonomy.NewResolver(store, taxonomy.NewClient(settings), settings, clock)
	}

	generator := site.NewGenerator(settings, store, resolver, clock)
	report, err := generator.Build(ctx, output)
	if err != nil {
		return err
	}

	fmt.Printf("Built %s: %d sightings, %d posts, %d species\n",
		report.OutputDir, report.Sightings, report.Posts, report.Species)

	if serve {
		fmt.Printf("Serving on http://localhost:%d (Ctrl-C to stop)\n", port)
		return site.Serve(ctx, output, port)
	}
	return nil
}

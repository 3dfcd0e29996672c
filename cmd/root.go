package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/squaremeter/squarelog/cmd/add"
	"github.com/squaremeter/squarelog/cmd/addimage"
	"github.com/squaremeter/squarelog/cmd/backfill"
	"github.com/squaremeter/squarelog/cmd/build"
	"github.com/squaremeter/squarelog/cmd/del"
	"github.com/squaremeter/squarelog/cmd/edit"
	"github.com/squaremeter/squarelog/cmd/list"
	"github.com/squaremeter/squarelog/cmd/quicklog"
	"github.com/squaremeter/squarelog/cmd/stats"
	"github.com/squaremeter/squarelog/cmd/status"
	"github.com/squaremeter/squarelog/cmd/taxonomy"
	"github.com/squaremeter/squarelog/internal/conf"
)

// RootCommand creates and returns the root command
func RootCommand(settings *conf.Settings) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "squarelog",
		Short: "Biodiversity journal for a one square meter plot",
	}

	// Set up the global flags for the root command.
	if err := setupFlags(rootCmd, settings); err != nil {
		cobra.CheckErr(err)
	}

	subcommands := []*cobra.Command{
		add.Command(settings),
		quicklog.Command(settings),
		list.Command(settings),
		edit.Command(settings),
		del.Command(settings),
		stats.Command(settings),
		status.Command(settings),
		addimage.Command(settings),
		build.Command(settings),
		taxonomy.Command(settings),
		backfill.Command(settings),
	}

	rootCmd.AddCommand(subcommands...)

	return rootCmd
}

// setupFlags defines flags that are global to the command line interface
func setupFlags(rootCmd *cobra.Command, settings *conf.Settings) error {
	rootCmd.PersistentFlags().BoolVarP(&settings.Debug, "debug", "d", viper.GetBool("debug"), "Enable debug output")
	rootCmd.PersistentFlags().StringVar(&settings.DataDir, "data-dir", viper.GetString("data_dir"), "Directory holding the JSON collections")
	rootCmd.PersistentFlags().StringVar(&settings.CatalogDir, "catalog-dir", viper.GetString("catalog_dir"), "Directory holding the image catalog")

	if err := viper.BindPFlags(rootCmd.PersistentFlags()); err != nil {
		return fmt.Errorf("error binding flags: %w", err)
	}

	return nil
}

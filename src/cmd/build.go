package cmd

import (
	"context"

	"webbuild/src/bundle"
	"webbuild/src/logging"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

var buildCommand = &cobra.Command{
	Use:   "build",
	Short: "Build the bundles once",
	RunE:  runBuild,
}

func init() {
	rootCmd.AddCommand(buildCommand)
}

func runBuild(cmd *cobra.Command, args []string) error {
	cfg, err := assemble()
	if err != nil {
		return err
	}
	bundler, err := bundle.New(cfg, afero.NewOsFs())
	if err != nil {
		return err
	}

	res, err := bundler.Build(context.Background())
	if err != nil {
		return err
	}

	logging.Info().
		Int("Warnings", len(res.Warnings)).
		Msg("Ran esbuild")
	if len(res.Files) > 0 {
		logging.Info().Strs("Files", res.Files).Msg("Wrote files")
	}
	return nil
}

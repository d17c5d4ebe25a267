package cmd

import (
	"os"
	"path/filepath"

	"webbuild/src/buildconfig"
	"webbuild/src/config"
	"webbuild/src/logging"

	"github.com/spf13/cobra"
)

var projectRoot string

var rootCmd = &cobra.Command{
	Use:   "webbuild",
	Short: "Builds the frontend bundles",
	Long: "Assembles the build configuration for the current build mode and builds it.\n" +
		"The mode comes from " + config.ModeEnvVar + ": \"development\" selects a development build, anything else a production build.",
	SilenceUsage: true,
	RunE:         runBuild,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&projectRoot, "root", config.Config.Layout.Root, "frontend project directory")
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		logging.Error().Err(err).Msg("Cobra execution failed")
		os.Exit(1)
	}
}

// currentMode reads the build mode from the environment. This is the only
// place the environment is consulted; the mode is passed down from here.
func currentMode() config.Mode {
	raw := os.Getenv(config.ModeEnvVar)
	if !config.IsRecognizedMode(raw) {
		logging.Warn().
			Str(config.ModeEnvVar, raw).
			Msg("Unrecognized build mode, building for production")
	}
	return config.ModeFromEnv(raw)
}

func projectLayout() (config.Layout, error) {
	layout := config.Config.Layout
	root, err := filepath.Abs(projectRoot)
	if err != nil {
		return layout, err
	}
	layout.Root = root
	return layout, nil
}

func assemble() (*buildconfig.Configuration, error) {
	layout, err := projectLayout()
	if err != nil {
		return nil, err
	}
	return buildconfig.Assemble(currentMode(), layout, config.Config.DevServer), nil
}

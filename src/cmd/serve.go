package cmd

import (
	"context"
	"os"
	"os/signal"
	"time"

	"webbuild/src/bundle"
	"webbuild/src/logging"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

var serveCommand = &cobra.Command{
	Use:   "serve",
	Short: "Run the dev server",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := assemble()
		if err != nil {
			return err
		}
		bundler, err := bundle.New(cfg, afero.NewOsFs())
		if err != nil {
			return err
		}

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		logging.Info().Str("mode", cfg.Mode.String()).Bool("hot", cfg.DevServer.Hot).Msg("Starting dev server")
		server, err := bundler.Serve(ctx)
		if err != nil {
			return err
		}
		backgroundJobs := server.Jobs

		signals := make(chan os.Signal, 1)
		signal.Notify(signals, os.Interrupt)
		<-signals // First SIGINT (start shutdown)
		logging.Info().Msg("Shutting down...")

		go func() {
			<-signals // Second SIGINT (force quit)
			logging.Warn().Strs("Unfinished background jobs", backgroundJobs.ListUnfinished()).Msg("Forcibly killed the dev server")
			os.Exit(1)
		}()

		cancel()
		unfinished := backgroundJobs.CancelAndWait(10 * time.Second)
		if len(unfinished) == 0 {
			logging.Info().Msg("Background jobs closed gracefully")
		} else {
			logging.Warn().Strs("Unfinished", backgroundJobs.ListUnfinished()).Msg("Background jobs did not finish by the deadline")
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCommand)
}

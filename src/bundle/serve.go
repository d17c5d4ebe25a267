package bundle

import (
	"context"
	"io/fs"
	"path/filepath"
	"time"

	"webbuild/src/buildconfig"
	"webbuild/src/ee"
	"webbuild/src/jobs"

	"github.com/evanw/esbuild/pkg/api"
	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
	"github.com/spf13/afero"
)

// Server is a running dev server.
type Server struct {
	// Port is where esbuild ended up listening.
	Port uint16
	// Jobs finish when the serving context is cancelled or they are.
	Jobs jobs.Jobs
}

// Serve builds once and serves the output directory on the configured port.
// With hot reloading, esbuild watches the sources, a second watcher covers
// the page template and copied assets, and pages reload after each rebuild.
func (b *Bundler) Serve(ctx context.Context) (*Server, error) {
	b.useLogger(ctx)
	b.serving = true
	logger := b.logger

	opts, err := b.Options()
	if err != nil {
		return nil, err
	}
	esCtx, ctxErr := api.Context(opts)
	if ctxErr != nil {
		return nil, ee.New(ErrBuildFailed, "creating esbuild context: %s", joinMessages(ctxErr.Errors))
	}

	res := esCtx.Rebuild()
	b.logMessages(res.Warnings, res.Errors)
	if err := b.fs.MkdirAll(b.outdir, 0o755); err != nil {
		esCtx.Dispose()
		return nil, ee.New(err, "creating output directory")
	}

	if b.cfg.DevServer.Hot {
		logger.Info().Msg("Starting esbuild watcher")
		if err := esCtx.Watch(api.WatchOptions{}); err != nil {
			esCtx.Dispose()
			return nil, ee.New(err, "starting esbuild watcher")
		}
	}

	serverResult, err := esCtx.Serve(api.ServeOptions{
		Port:     b.cfg.DevServer.Port,
		Servedir: b.outdir,
		OnRequest: func(args api.ServeOnRequestArgs) {
			if args.Status != 200 {
				logger.Warn().Interface("args", args).Msg("Response from esbuild server")
			}
		},
	})
	if err != nil {
		esCtx.Dispose()
		return nil, ee.New(err, "starting dev server")
	}
	logger.Info().Msgf("Dev server running at http://localhost:%d", serverResult.Port)

	server := jobs.New("Dev server")
	backgroundJobs := jobs.Jobs{server}

	if b.cfg.DevServer.Hot {
		watcher, err := b.watchStatic(ctx, logger, func() {
			res := esCtx.Rebuild()
			b.logMessages(res.Warnings, res.Errors)
		})
		if err != nil {
			logger.Warn().Err(err).Msg("Not watching the page template and copied assets")
		} else {
			backgroundJobs = append(backgroundJobs, watcher)
		}
	}

	go func() {
		select {
		case <-ctx.Done():
		case <-server.Canceled():
		}
		logger.Info().Msg("Shutting down esbuild server and watcher")
		esCtx.Dispose()
		b.sass.Close()
		server.Finish()
	}()

	return &Server{Port: serverResult.Port, Jobs: backgroundJobs}, nil
}

// staticSources lists what esbuild cannot see through imports: the page
// template and the trees copied into the output.
func (b *Bundler) staticSources() (files []string, trees []string) {
	for _, p := range b.cfg.Plugins {
		switch p := p.(type) {
		case buildconfig.HTMLPage:
			files = append(files, filepath.Join(b.context, filepath.FromSlash(p.Template)))
		case buildconfig.CopyAssets:
			for _, pattern := range p.Patterns {
				trees = append(trees, pattern.From)
			}
		}
	}
	return files, trees
}

// watchStatic rebuilds when the page template or a copied asset changes.
// Bursts of events are debounced, as editors tend to write a file in steps.
func (b *Bundler) watchStatic(ctx context.Context, logger *zerolog.Logger, rebuild func()) (*jobs.Job, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, ee.New(err, "creating file watcher")
	}

	files, trees := b.staticSources()
	watchedFiles := map[string]bool{}
	for _, f := range files {
		watchedFiles[f] = true
		if err := watcher.Add(filepath.Dir(f)); err != nil {
			watcher.Close()
			return nil, ee.New(err, "watching %s", f)
		}
	}
	for _, tree := range trees {
		err := afero.Walk(b.fs, tree, func(p string, info fs.FileInfo, err error) error {
			if err != nil {
				return err
			}
			if info.IsDir() {
				return watcher.Add(p)
			}
			return nil
		})
		if err != nil {
			watcher.Close()
			return nil, ee.New(err, "watching %s", tree)
		}
	}

	relevant := func(ev fsnotify.Event) bool {
		if watchedFiles[ev.Name] {
			return true
		}
		for _, tree := range trees {
			if isBelow(ev.Name, tree) {
				return true
			}
		}
		return false
	}

	debouncer := time.NewTimer(time.Minute)
	debouncer.Stop()
	debouncerRunning := false

	job := jobs.New("Static file watcher")
	go func() {
		defer watcher.Close()
		for {
			select {
			case ev, ok := <-watcher.Events:
				if !ok {
					job.Finish()
					return
				}
				if !relevant(ev) {
					continue
				}
				if ev.Has(fsnotify.Create) {
					if info, err := b.fs.Stat(ev.Name); err == nil && info.IsDir() {
						if err := watcher.Add(ev.Name); err != nil {
							logger.Error().Err(err).Str("dir", ev.Name).Msg("Failed to watch new directory")
						}
					}
				}
				if !debouncer.Stop() && debouncerRunning {
					<-debouncer.C
				}
				debouncerRunning = true
				debouncer.Reset(time.Millisecond * 20)
			case err, ok := <-watcher.Errors:
				if !ok {
					job.Finish()
					return
				}
				logger.Error().Err(err).Msg("File watcher error")
			case <-debouncer.C:
				debouncerRunning = false
				logger.Debug().Msg("Static files changed, rebuilding")
				rebuild()
			case <-ctx.Done():
				logger.Info().Msg("Shutting down static file watcher")
				job.Finish()
				return
			case <-job.Canceled():
				logger.Info().Msg("Shutting down static file watcher")
				job.Finish()
				return
			}
		}
	}()

	return job, nil
}

func joinMessages(msgs []api.Message) string {
	out := ""
	for i, m := range msgs {
		if i > 0 {
			out += "; "
		}
		out += formatMessage(m)
	}
	return out
}

package bundle

import (
	"context"
	"errors"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"webbuild/src/buildconfig"
	"webbuild/src/ee"
	"webbuild/src/logging"

	"github.com/evanw/esbuild/pkg/api"
	"github.com/rs/zerolog"
	"github.com/spf13/afero"
)

var (
	ErrBuildFailed    = errors.New("build failed")
	ErrUnknownLoader  = errors.New("unknown loader")
	ErrUnknownPlugin  = errors.New("unknown plugin")
	ErrUnknownDevtool = errors.New("unknown devtool")
	ErrNoLessCompiler = errors.New("no LESS compiler is available")
	ErrUnsafeClean    = errors.New("refusing to clean output directory")
)

// Bundler runs a Configuration through esbuild. esbuild does the parsing,
// bundling and minifying; the plugins registered here supply the loader
// chains, page generation, CSS extraction, cleaning and asset copying.
type Bundler struct {
	cfg    *buildconfig.Configuration
	fs     afero.Fs
	logger *zerolog.Logger

	context string
	outdir  string
	serving bool

	sass *sassCompiler

	mu       sync.Mutex
	manifest Manifest
	written  []string
}

// Result describes one finished build.
type Result struct {
	Files    []string
	Warnings []api.Message
	Manifest Manifest
}

// New prepares a bundler. Outputs, cleaning and copying go through fs;
// sources are read by esbuild straight from disk.
func New(cfg *buildconfig.Configuration, fs afero.Fs) (*Bundler, error) {
	contextDir, err := filepath.Abs(cfg.Context)
	if err != nil {
		return nil, ee.New(err, "resolving context %s", cfg.Context)
	}
	outdir, err := filepath.Abs(cfg.Output.Path)
	if err != nil {
		return nil, ee.New(err, "resolving output path %s", cfg.Output.Path)
	}
	return &Bundler{
		cfg:     cfg,
		fs:      fs,
		logger:  logging.GlobalLogger(),
		context: contextDir,
		outdir:  outdir,
		sass:    &sassCompiler{},
	}, nil
}

// Build runs a single build and writes its outputs.
func (b *Bundler) Build(ctx context.Context) (*Result, error) {
	b.useLogger(ctx)
	opts, err := b.Options()
	if err != nil {
		return nil, err
	}
	defer b.sass.Close()

	b.logger.Info().Str("mode", b.cfg.Mode.String()).Strs("entries", b.cfg.EntryNames()).Msg("Building")
	result := api.Build(opts)
	b.logMessages(result.Warnings, result.Errors)
	if len(result.Errors) > 0 {
		return nil, buildError(result.Errors)
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	files := append([]string(nil), b.written...)
	sort.Strings(files)
	return &Result{
		Files:    files,
		Warnings: result.Warnings,
		Manifest: b.manifest,
	}, nil
}

func (b *Bundler) useLogger(ctx context.Context) {
	logger := logging.ExtractLogger(ctx).With().Str("module", "EsBuild").Logger()
	b.logger = &logger
}

func (b *Bundler) logMessages(warnings, errs []api.Message) {
	for _, msg := range warnings {
		b.logger.Warn().Str("plugin", msg.PluginName).Msg(formatMessage(msg))
	}
	for _, msg := range errs {
		b.logger.Error().Str("plugin", msg.PluginName).Msg(formatMessage(msg))
	}
}

func (b *Bundler) resetState() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.manifest = Manifest{}
	b.written = nil
}

func (b *Bundler) recordWrite(absPath string) {
	rel, err := filepath.Rel(b.outdir, absPath)
	if err != nil {
		rel = absPath
	}
	b.mu.Lock()
	b.written = append(b.written, filepath.ToSlash(rel))
	b.mu.Unlock()
}

func (b *Bundler) writeFile(absPath string, contents []byte) error {
	if err := b.fs.MkdirAll(filepath.Dir(absPath), 0o755); err != nil {
		return ee.New(err, "creating directory for %s", absPath)
	}
	if err := afero.WriteFile(b.fs, absPath, contents, 0o644); err != nil {
		return ee.New(err, "writing %s", absPath)
	}
	b.recordWrite(absPath)
	return nil
}

// buildError wraps ErrBuildFailed together with any errors our own plugins
// attached to the messages.
func buildError(msgs []api.Message) error {
	causes := []error{ErrBuildFailed}
	for _, msg := range msgs {
		if err, ok := msg.Detail.(error); ok {
			causes = append(causes, err)
		}
	}
	return ee.New(errors.Join(causes...), "%d error(s), first: %s", len(msgs), formatMessage(msgs[0]))
}

func formatMessage(msg api.Message) string {
	var sb strings.Builder
	if msg.Location != nil {
		sb.WriteString(msg.Location.File)
		sb.WriteString(": ")
	}
	sb.WriteString(msg.Text)
	return sb.String()
}

func errorMessage(pluginName string, err error) api.Message {
	return api.Message{PluginName: pluginName, Text: err.Error(), Detail: err}
}

package bundle

import (
	"webbuild/src/buildconfig"
	"webbuild/src/ee"

	"github.com/evanw/esbuild/pkg/api"
)

// Extensions the loader table is computed for. Anything else keeps esbuild's
// default loader.
var knownExtensions = []string{
	".html", ".htm",
	".js", ".mjs", ".cjs", ".ts", ".mts", ".jsx", ".tsx",
	".css", ".less", ".scss", ".sass",
	".jpg", ".jpeg", ".png", ".svg", ".gif", ".webp", ".ico",
	".ttf", ".otf", ".woff", ".woff2", ".eot",
}

// The browsers the env preset compiles for.
var browserEngines = []api.Engine{
	{Name: api.EngineChrome, Version: "109"},
	{Name: api.EngineFirefox, Version: "109"},
	{Name: api.EngineSafari, Version: "14"},
}

// Options translates the configuration into esbuild build options, including
// the plugins that carry out the parts esbuild has no option for.
func (b *Bundler) Options() (api.BuildOptions, error) {
	cfg := b.cfg

	if err := validateRules(cfg.Module.Rules); err != nil {
		return api.BuildOptions{}, err
	}
	loaders, err := loaderTable(cfg.Module.Rules)
	if err != nil {
		return api.BuildOptions{}, err
	}
	sourcemap, err := sourcemapFor(cfg.Devtool)
	if err != nil {
		return api.BuildOptions{}, err
	}

	opts := api.BuildOptions{
		AbsWorkingDir:     b.context,
		Outbase:           b.context,
		Outdir:            b.outdir,
		PublicPath:        cfg.Output.PublicPath,
		ChunkNames:        chunkNames(cfg.Output.ChunkFilename),
		AssetNames:        assetNames(fileLoaderName(cfg.Module.Rules)),
		Bundle:            true,
		Write:             false,
		Metafile:          true,
		Platform:          api.PlatformBrowser,
		Engines:           browserEngines,
		Loader:            loaders,
		ResolveExtensions: cfg.Resolve.Extensions,
		Sourcemap:         sourcemap,
		LogLevel:          api.LogLevelSilent,
		LogOverride:       lintOverrides(),
	}

	hashed := false
	for _, e := range cfg.Entry {
		outputPath, entryHashed := entryOutputPath(cfg.Output.Filename(e.Name), e.Name)
		hashed = hashed || entryHashed
		opts.EntryPointsAdvanced = append(opts.EntryPointsAdvanced, api.EntryPoint{
			InputPath:  entryPrefix + e.Name,
			OutputPath: outputPath,
		})
	}
	opts.EntryNames = entryNames(hashed)

	if cfg.Optimization.SplitChunks.Chunks == "all" {
		opts.Splitting = true
		opts.Format = api.FormatESModule
	} else {
		opts.Format = api.FormatIIFE
	}

	for _, m := range cfg.Optimization.Minimizer {
		switch m.(type) {
		case buildconfig.CSSMinimizer, buildconfig.ScriptMinimizer:
			// esbuild minifies scripts and styles with the same switches.
			opts.MinifyWhitespace = true
			opts.MinifySyntax = true
			opts.MinifyIdentifiers = true
		default:
			return api.BuildOptions{}, ee.New(ErrUnknownPlugin, "minimizer %q", m.PluginName())
		}
	}

	plugins, err := b.plugins()
	if err != nil {
		return api.BuildOptions{}, err
	}
	opts.Plugins = plugins

	return opts, nil
}

func (b *Bundler) plugins() ([]api.Plugin, error) {
	cfg := b.cfg
	plugins := []api.Plugin{
		entryPlugin(cfg.Entry, b.context),
		aliasPlugin(cfg.Resolve.Alias),
		b.loaderChainPlugin(cfg.Module.Rules),
	}

	var extract *buildconfig.CSSExtract
	var afterEmit []api.Plugin
	for _, p := range cfg.Plugins {
		switch p := p.(type) {
		case buildconfig.HTMLPage:
			afterEmit = append(afterEmit, b.htmlPagePlugin(p))
		case buildconfig.CSSExtract:
			extract = &p
		case buildconfig.Clean:
			plugins = append(plugins, b.cleanPlugin())
		case buildconfig.CopyAssets:
			afterEmit = append(afterEmit, b.copyPlugin(p))
		default:
			return nil, ee.New(ErrUnknownPlugin, "%q", p.PluginName())
		}
	}

	// Page generation needs to know where the outputs ended up, so the emit
	// step always runs first.
	plugins = append(plugins, b.emitPlugin(extract))
	plugins = append(plugins, afterEmit...)
	return plugins, nil
}

func sourcemapFor(devtool string) (api.SourceMap, error) {
	switch devtool {
	case "":
		return api.SourceMapNone, nil
	case "source-map":
		return api.SourceMapLinked, nil
	case "inline-source-map":
		return api.SourceMapInline, nil
	case "hidden-source-map":
		return api.SourceMapExternal, nil
	}
	return api.SourceMapNone, ee.New(ErrUnknownDevtool, "%q", devtool)
}

// loaderTable gives every known extension the loader of the first rule that
// accepts it.
func loaderTable(rules []buildconfig.Rule) (map[string]api.Loader, error) {
	table := map[string]api.Loader{}
	for _, ext := range knownExtensions {
		for _, rule := range rules {
			if !rule.Matches("file" + ext) {
				continue
			}
			loader, err := chainLoader(rule.Use)
			if err != nil {
				return nil, err
			}
			table[ext] = loader
			break
		}
	}
	return table, nil
}

func fileLoaderName(rules []buildconfig.Rule) string {
	for _, rule := range rules {
		for _, step := range rule.Use {
			if step.Loader != buildconfig.LoaderFile {
				continue
			}
			if opts, ok := step.Options.(buildconfig.FileOptions); ok && opts.Name != "" {
				return opts.Name
			}
		}
	}
	return buildconfig.PathPlaceholder + "[name]-" + buildconfig.HashPlaceholder
}

package bundle

import (
	"path/filepath"
	"strings"
	"sync"

	"webbuild/src/buildconfig"
	"webbuild/src/ee"

	"github.com/bep/godartsass/v2"
	"github.com/evanw/esbuild/pkg/api"
	"github.com/spf13/afero"
)

// loadContext is the file as it moves through a loader chain.
type loadContext struct {
	path     string
	contents []byte
	loader   api.Loader
	warnings []api.Message
}

// step is how one loader identifier is carried out. loader, if set, names
// the esbuild loader that consumes the chain's output; run, if set,
// transforms the contents.
type step struct {
	loader func(opts any) api.Loader
	run    func(b *Bundler, lc *loadContext, opts any) error
}

var steps = map[string]step{
	buildconfig.LoaderExtractCSS: {loader: fixedLoader(api.LoaderCSS)},
	buildconfig.LoaderCSS:        {loader: fixedLoader(api.LoaderCSS)},
	buildconfig.LoaderLess:       {run: compileLess},
	buildconfig.LoaderSass:       {run: compileSass},
	buildconfig.LoaderScript:     {loader: scriptLoader},
	buildconfig.LoaderLint:       {run: lint},
	buildconfig.LoaderFile:       {loader: fixedLoader(api.LoaderFile)},
	buildconfig.LoaderHTML:       {loader: fixedLoader(api.LoaderText)},
}

func fixedLoader(l api.Loader) func(any) api.Loader {
	return func(any) api.Loader { return l }
}

func scriptLoader(opts any) api.Loader {
	o, _ := opts.(buildconfig.ScriptOptions)
	ts := o.HasPreset(buildconfig.PresetTypeScript)
	react := o.HasPreset(buildconfig.PresetReact)
	switch {
	case ts && react:
		return api.LoaderTSX
	case ts:
		return api.LoaderTS
	case react:
		return api.LoaderJSX
	}
	return api.LoaderJS
}

func validateRules(rules []buildconfig.Rule) error {
	for _, rule := range rules {
		if rule.Test == nil {
			return ee.New(nil, "module rule without a test pattern")
		}
		if _, err := chainLoader(rule.Use); err != nil {
			return ee.New(err, "rule %s", rule.Test)
		}
	}
	return nil
}

// chainLoader finds the esbuild loader for a chain: the first step, reading
// left to right, that names one. That step is the last to run.
func chainLoader(chain buildconfig.LoaderChain) (api.Loader, error) {
	loader := api.LoaderNone
	for _, s := range chain {
		impl, ok := steps[s.Loader]
		if !ok {
			return api.LoaderNone, ee.New(ErrUnknownLoader, "%q", s.Loader)
		}
		if loader == api.LoaderNone && impl.loader != nil {
			loader = impl.loader(s.Options)
		}
	}
	if loader == api.LoaderNone {
		return api.LoaderNone, ee.New(ErrUnknownLoader, "no step in %v produces output", chain.Loaders())
	}
	return loader, nil
}

// loaderChainPlugin registers one load hook per rule. Hooks run in rule order
// and an excluded file falls through to esbuild's default handling.
func (b *Bundler) loaderChainPlugin(rules []buildconfig.Rule) api.Plugin {
	return api.Plugin{
		Name: "loader-chain",
		Setup: func(build api.PluginBuild) {
			for _, rule := range rules {
				rule := rule
				loader, err := chainLoader(rule.Use)
				if err != nil {
					// validateRules has already rejected this configuration.
					continue
				}
				build.OnLoad(api.OnLoadOptions{Filter: rule.Test.String(), Namespace: "file"},
					func(args api.OnLoadArgs) (api.OnLoadResult, error) {
						if rule.Excludes(args.Path) {
							return api.OnLoadResult{}, nil
						}
						return b.runChain(rule.Use, loader, args.Path)
					})
			}
		},
	}
}

func (b *Bundler) runChain(chain buildconfig.LoaderChain, loader api.Loader, path string) (api.OnLoadResult, error) {
	raw, err := afero.ReadFile(b.fs, path)
	if err != nil {
		return api.OnLoadResult{}, err
	}

	lc := &loadContext{path: path, contents: raw, loader: loader}
	for i := len(chain) - 1; i >= 0; i-- {
		s := chain[i]
		impl := steps[s.Loader]
		if impl.run == nil {
			continue
		}
		if err := impl.run(b, lc, s.Options); err != nil {
			return api.OnLoadResult{
				Errors:   []api.Message{errorMessage(s.Loader, err)},
				Warnings: lc.warnings,
			}, nil
		}
	}

	contents := string(lc.contents)
	return api.OnLoadResult{
		Contents:   &contents,
		ResolveDir: filepath.Dir(path),
		Loader:     lc.loader,
		Warnings:   lc.warnings,
	}, nil
}

// esbuild warnings that are about code quality rather than about the build.
// Builds silence them so that only lint-loader reports them.
var lintMessageIDs = []string{
	"delete-super-property",
	"duplicate-case",
	"duplicate-class-member",
	"duplicate-object-key",
	"equals-nan",
	"equals-negative-zero",
	"equals-new-object",
	"impossible-typeof",
	"semicolon-after-return",
	"suspicious-boolean-not",
	"suspicious-logical-operator",
	"suspicious-nullish-coalescing",
}

func lintOverrides() map[string]api.LogLevel {
	overrides := make(map[string]api.LogLevel, len(lintMessageIDs))
	for _, id := range lintMessageIDs {
		overrides[id] = api.LogLevelSilent
	}
	return overrides
}

func isLintMessage(msg api.Message) bool {
	for _, id := range lintMessageIDs {
		if msg.ID == id {
			return true
		}
	}
	return false
}

// lint reports what esbuild's parser flags as suspicious: duplicate keys and
// cases, comparisons with NaN or -0, and so on.
func lint(_ *Bundler, lc *loadContext, _ any) error {
	res := api.Transform(string(lc.contents), api.TransformOptions{
		Loader:     lc.loader,
		Sourcefile: lc.path,
		LogLevel:   api.LogLevelSilent,
	})
	for _, msg := range res.Warnings {
		if !isLintMessage(msg) {
			continue
		}
		// Without an ID the build's overrides leave the message alone.
		msg.ID = ""
		msg.PluginName = buildconfig.LoaderLint
		lc.warnings = append(lc.warnings, msg)
	}
	return nil
}

func compileLess(_ *Bundler, lc *loadContext, _ any) error {
	return ee.New(ErrNoLessCompiler, "cannot compile %s", lc.path)
}

func compileSass(b *Bundler, lc *loadContext, _ any) error {
	t, err := b.sass.transpiler()
	if err != nil {
		return ee.New(err, "dart-sass is not available to compile %s", lc.path)
	}

	syntax := godartsass.SourceSyntaxSCSS
	if strings.EqualFold(filepath.Ext(lc.path), ".sass") {
		syntax = godartsass.SourceSyntaxSASS
	}
	res, err := t.Execute(godartsass.Args{
		Source:       string(lc.contents),
		SourceSyntax: syntax,
		IncludePaths: []string{filepath.Dir(lc.path)},
	})
	if err != nil {
		return ee.New(err, "compiling %s", lc.path)
	}
	lc.contents = []byte(res.CSS)
	return nil
}

// sassCompiler starts dart-sass the first time a stylesheet needs it.
type sassCompiler struct {
	mu  sync.Mutex
	t   *godartsass.Transpiler
	err error
}

func (s *sassCompiler) transpiler() (*godartsass.Transpiler, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.t == nil && s.err == nil {
		s.t, s.err = godartsass.Start(godartsass.Options{})
	}
	return s.t, s.err
}

func (s *sassCompiler) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.t != nil {
		s.t.Close()
		s.t = nil
	}
}

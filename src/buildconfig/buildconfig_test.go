package buildconfig

import (
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"webbuild/src/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testLayout = config.Layout{
	Root:     "/project",
	Context:  "src",
	Output:   "dist",
	Template: "index.html",
	Favicons: "favicons",
}

var testDevServer = config.DevServerConfig{Port: 8080}

var modes = []config.Mode{config.Development, config.Production}

func TestFileName(t *testing.T) {
	for _, mode := range modes {
		t.Run(mode.String(), func(t *testing.T) {
			name := FileName(mode, "js")
			assert.Contains(t, name, "[name]")
			assert.True(t, strings.HasSuffix(name, ".js"))
			assert.Equal(t, !mode.IsDev(), strings.Contains(name, HashPlaceholder))
			assert.Equal(t, name, FileName(mode, "js"), "naming must be deterministic")
		})
	}
	assert.Equal(t, "[name].css", FileName(config.Development, "css"))
	assert.Equal(t, "[name].[hash].css", FileName(config.Production, "css"))
	assert.Equal(t, "index.html", HTMLFileName(config.Development))
	assert.Equal(t, "index.[hash].html", HTMLFileName(config.Production))
}

func TestOptimizeBuild(t *testing.T) {
	dev := Assemble(config.Development, testLayout, testDevServer)
	assert.Empty(t, dev.Optimization.Minimizer)
	assert.Equal(t, "all", dev.Optimization.SplitChunks.Chunks)
	assert.Equal(t, "source-map", dev.Devtool)

	prod := Assemble(config.Production, testLayout, testDevServer)
	require.Len(t, prod.Optimization.Minimizer, 2)
	assert.Equal(t, []string{PluginCSSMinimizer, PluginScriptMinimizer}, prod.Optimization.Minimizer.Names())
	assert.Equal(t, "all", prod.Optimization.SplitChunks.Chunks)
	assert.Equal(t, "", prod.Devtool)
}

func TestRuleTable(t *testing.T) {
	groups := map[string][]string{
		"html":   {"page.html"},
		"js":     {"app.js"},
		"ts":     {"app.ts"},
		"jsx":    {"app.jsx"},
		"css":    {"style.css"},
		"less":   {"box.less"},
		"sass":   {"box.scss", "box.sass"},
		"images": {"a.jpg", "a.jpeg", "a.png", "a.svg", "a.gif"},
		"fonts":  {"f.ttf", "f.woff", "f.woff2", "f.eot"},
	}

	for _, mode := range modes {
		rules := CreateRules(mode)
		require.Len(t, rules, len(groups))

		patterns := map[string]bool{}
		for _, r := range rules {
			assert.False(t, patterns[r.Test.String()], "duplicate rule %s", r.Test)
			patterns[r.Test.String()] = true
		}

		for group, files := range groups {
			for _, file := range files {
				matched := 0
				for _, r := range rules {
					if r.Matches(file) {
						matched++
					}
				}
				assert.Equal(t, 1, matched, "%s file %s should match exactly one rule", group, file)
			}
		}
	}
}

func TestScriptRulesExcludeNodeModules(t *testing.T) {
	for _, r := range CreateRules(config.Production) {
		if r.Use.Has(LoaderScript) {
			require.NotNil(t, r.Exclude)
			assert.False(t, r.Matches("/project/node_modules/lib/index"+ext(r)))
		}
	}
}

func ext(r Rule) string {
	for _, e := range []string{".js", ".ts", ".jsx"} {
		if r.Test.MatchString(e) {
			return e
		}
	}
	return ""
}

func TestCreateCSSLoader(t *testing.T) {
	chain := CreateCSSLoader(config.Production, LoaderLess)
	require.Len(t, chain, 3)
	assert.Equal(t, LoaderExtractCSS, chain[0].Loader)
	assert.Equal(t, LoaderCSS, chain[1].Loader)
	assert.Equal(t, LoaderLess, chain[len(chain)-1].Loader)

	plain := CreateCSSLoader(config.Production, "")
	assert.Equal(t, []string{LoaderExtractCSS, LoaderCSS}, plain.Loaders())

	assert.True(t, CreateCSSLoader(config.Development, "").Has(LoaderExtractCSS))
	assert.Equal(t, true, CreateCSSLoader(config.Development, "")[0].Options.(ExtractCSSOptions).HMR)
	assert.Equal(t, false, CreateCSSLoader(config.Production, "")[0].Options.(ExtractCSSOptions).HMR)
}

func TestCreateJSLoader(t *testing.T) {
	dev := CreateJSLoader(config.Development, PresetTypeScript)
	assert.Equal(t, []string{LoaderScript, LoaderLint}, dev.Loaders())
	opts := dev[0].Options.(ScriptOptions)
	assert.Equal(t, []string{PresetEnv, PresetTypeScript}, opts.Presets)

	prod := CreateJSLoader(config.Production, "")
	assert.Equal(t, []string{LoaderScript}, prod.Loaders())
	assert.Equal(t, []string{PresetEnv}, prod[0].Options.(ScriptOptions).Presets)
}

func TestCreateFileLoader(t *testing.T) {
	assert.Equal(t, "[path][name].[ext]", CreateFileLoader(config.Development)[0].Options.(FileOptions).Name)
	assert.Equal(t, "[path][name].[hash].[ext]", CreateFileLoader(config.Production)[0].Options.(FileOptions).Name)
}

func TestPluginList(t *testing.T) {
	for _, mode := range modes {
		plugins := CreatePlugins(mode, testLayout)
		require.GreaterOrEqual(t, len(plugins), 4)

		names := plugins.Names()
		clean, copyAssets := -1, -1
		for i, n := range names {
			switch n {
			case PluginClean:
				clean = i
			case PluginCopyAssets:
				copyAssets = i
			}
		}
		require.NotEqual(t, -1, clean)
		require.NotEqual(t, -1, copyAssets)
		assert.Less(t, clean, copyAssets)

		page := plugins[0].(HTMLPage)
		assert.Equal(t, HTMLFileName(mode), page.Filename)
		assert.Equal(t, !mode.IsDev(), page.Minify.CollapseWhitespace)

		extract := plugins[1].(CSSExtract)
		assert.Equal(t, "css/"+FileName(mode, "css"), extract.Filename)
		assert.Equal(t, "css/[name]/"+FileName(mode, "css"), extract.ChunkFilename)

		copied := plugins[3].(CopyAssets)
		require.Len(t, copied.Patterns, 1)
		assert.Equal(t, filepath.Join("/project", "src", "favicons"), copied.Patterns[0].From)
		assert.Equal(t, filepath.Join("/project", "dist", "favicons"), copied.Patterns[0].To)
	}
}

func TestAssembleProduction(t *testing.T) {
	cfg := Assemble(config.Production, testLayout, testDevServer)

	require.Len(t, cfg.Entry, 2)
	assert.Equal(t, []string{"main", "analytics"}, cfg.EntryNames())

	main, ok := cfg.FindEntry("main")
	require.True(t, ok)
	assert.Equal(t, Polyfill, main.Imports[0])

	analytics, ok := cfg.FindEntry("analytics")
	require.True(t, ok)
	assert.Equal(t, []string{"./js/analytics.ts"}, analytics.Imports)

	assert.Equal(t, "js/[name].[hash].js", cfg.Output.Filename("main"))
	assert.Equal(t, "js/[name]/[name].[hash].js", cfg.Output.Filename("analytics"))
	assert.Equal(t, "js/[name]/[name].[hash].js", cfg.Output.ChunkFilename)

	assert.Equal(t, uint16(8080), cfg.DevServer.Port)
	assert.False(t, cfg.DevServer.Hot)
	assert.Equal(t, config.Production, cfg.Mode)
}

func TestAssembleDevelopment(t *testing.T) {
	cfg := Assemble(config.Development, testLayout, testDevServer)

	assert.Equal(t, "js/[name].js", cfg.Output.Filename("main"))
	assert.Equal(t, "js/[name]/[name].js", cfg.Output.Filename("analytics"))
	assert.True(t, cfg.DevServer.Hot)
	assert.Equal(t, []string{".js"}, cfg.Resolve.Extensions)
	assert.Equal(t, filepath.Join("/project", "src"), cfg.Resolve.Alias["@"])
}

func TestConfigurationJSON(t *testing.T) {
	cfg := Assemble(config.Production, testLayout, testDevServer)
	raw, err := json.Marshal(cfg)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(raw, &decoded))

	assert.Equal(t, "production", decoded["mode"])
	assert.Equal(t, map[string]any{
		"main":      "js/[name].[hash].js",
		"analytics": "js/[name]/[name].[hash].js",
	}, decoded["filenames"])

	plugins := decoded["plugins"].([]any)
	require.Len(t, plugins, 4)
	assert.Equal(t, PluginHTMLPage, plugins[0].(map[string]any)["name"])

	rules := decoded["module"].(map[string]any)["rules"].([]any)
	assert.Equal(t, `\.(html)$`, rules[0].(map[string]any)["test"])
}

package buildconfig

import "webbuild/src/config"

// Loader identifiers understood by the bundle package.
const (
	LoaderExtractCSS = "extract-css-loader"
	LoaderCSS        = "css-loader"
	LoaderLess       = "less-loader"
	LoaderSass       = "sass-loader"
	LoaderScript     = "script-loader"
	LoaderLint       = "lint-loader"
	LoaderFile       = "file-loader"
	LoaderHTML       = "html-loader"
)

// Script presets. PresetEnv is always first; at most one syntax preset follows.
const (
	PresetEnv        = "env"
	PresetTypeScript = "typescript"
	PresetReact      = "react"

	PluginClassProperties = "class-properties"
)

type ExtractCSSOptions struct {
	HMR       bool `json:"hmr"`
	ReloadAll bool `json:"reloadAll"`
	ESModule  bool `json:"esModule"`
}

type ScriptOptions struct {
	Presets []string `json:"presets"`
	Plugins []string `json:"plugins"`
}

func (o ScriptOptions) HasPreset(preset string) bool {
	for _, p := range o.Presets {
		if p == preset {
			return true
		}
	}
	return false
}

type FileOptions struct {
	Name string `json:"name"`
}

type HTMLLoaderOptions struct {
	Attributes bool `json:"attributes"`
}

// CreateCSSLoader starts with style extraction and CSS resolution. A
// preprocessor, when given, goes last so that it runs first.
func CreateCSSLoader(mode config.Mode, extraLoader string) LoaderChain {
	chain := LoaderChain{
		{
			Loader: LoaderExtractCSS,
			Options: ExtractCSSOptions{
				HMR:       mode.IsDev(),
				ReloadAll: true,
				ESModule:  true,
			},
		},
		{Loader: LoaderCSS},
	}
	if extraLoader != "" {
		chain = append(chain, LoaderStep{Loader: extraLoader})
	}
	return chain
}

// CreateJSLoader transpiles with the env preset plus an optional syntax
// preset. Development builds lint the source before transpiling it.
func CreateJSLoader(mode config.Mode, extraPreset string) LoaderChain {
	opts := ScriptOptions{
		Presets: []string{PresetEnv},
		Plugins: []string{PluginClassProperties},
	}
	if extraPreset != "" {
		opts.Presets = append(opts.Presets, extraPreset)
	}

	chain := LoaderChain{
		{Loader: LoaderScript, Options: opts},
	}
	if mode.IsDev() {
		chain = append(chain, LoaderStep{Loader: LoaderLint})
	}
	return chain
}

func CreateFileLoader(mode config.Mode) LoaderChain {
	return LoaderChain{
		{
			Loader: LoaderFile,
			Options: FileOptions{
				Name: PathPlaceholder + FileName(mode, ExtPlaceholder),
			},
		},
	}
}

func CreateRules(mode config.Mode) []Rule {
	nodeModules := MustPattern(`node_modules`)
	return []Rule{
		{
			Test: MustPattern(`\.(html)$`),
			Use: LoaderChain{
				{Loader: LoaderHTML, Options: HTMLLoaderOptions{Attributes: true}},
			},
		},
		{
			Test:    MustPattern(`\.js$`),
			Exclude: nodeModules,
			Use:     CreateJSLoader(mode, ""),
		},
		{
			Test:    MustPattern(`\.ts$`),
			Exclude: nodeModules,
			Use:     CreateJSLoader(mode, PresetTypeScript),
		},
		{
			Test:    MustPattern(`\.jsx$`),
			Exclude: nodeModules,
			Use:     CreateJSLoader(mode, PresetReact),
		},
		{
			Test: MustPattern(`\.css$`),
			Use:  CreateCSSLoader(mode, ""),
		},
		{
			Test: MustPattern(`\.less$`),
			Use:  CreateCSSLoader(mode, LoaderLess),
		},
		{
			Test: MustPattern(`\.s[ac]ss$`),
			Use:  CreateCSSLoader(mode, LoaderSass),
		},
		{
			Test: MustPattern(`\.(jpe?g|png|svg|gif)$`),
			Use:  CreateFileLoader(mode),
		},
		{
			Test: MustPattern(`\.(ttf|woff|woff2|eot)$`),
			Use:  CreateFileLoader(mode),
		},
	}
}

package buildconfig

import (
	"path/filepath"

	"webbuild/src/config"
)

const (
	PluginHTMLPage        = "html-page"
	PluginCSSExtract      = "css-extract"
	PluginClean           = "clean"
	PluginCopyAssets      = "copy-assets"
	PluginCSSMinimizer    = "css-minimizer"
	PluginScriptMinimizer = "script-minimizer"
)

// HTMLPage generates the HTML entry page from a template, with a stylesheet
// link and a script tag for every entry.
type HTMLPage struct {
	Template string     `json:"template"`
	Filename string     `json:"filename"`
	Minify   HTMLMinify `json:"minify"`
}

type HTMLMinify struct {
	CollapseWhitespace bool `json:"collapseWhitespace"`
}

// CSSExtract moves the styles of each entry into their own file.
type CSSExtract struct {
	Filename      string `json:"filename"`
	ChunkFilename string `json:"chunkFilename"`
}

// Clean empties the output directory before a build.
type Clean struct{}

// CopyAssets copies files that no module imports.
type CopyAssets struct {
	Patterns []CopyPattern `json:"patterns"`
}

type CopyPattern struct {
	From string `json:"from"`
	To   string `json:"to"`
}

type CSSMinimizer struct{}

type ScriptMinimizer struct{}

func (HTMLPage) PluginName() string        { return PluginHTMLPage }
func (CSSExtract) PluginName() string      { return PluginCSSExtract }
func (Clean) PluginName() string           { return PluginClean }
func (CopyAssets) PluginName() string      { return PluginCopyAssets }
func (CSSMinimizer) PluginName() string    { return PluginCSSMinimizer }
func (ScriptMinimizer) PluginName() string { return PluginScriptMinimizer }

// CreatePlugins returns the plugin list in construction order. Clean is third
// here but runs at build start regardless.
func CreatePlugins(mode config.Mode, layout config.Layout) PluginList {
	return PluginList{
		HTMLPage{
			Template: "./" + filepath.ToSlash(layout.Template),
			Filename: HTMLFileName(mode),
			Minify: HTMLMinify{
				CollapseWhitespace: !mode.IsDev(),
			},
		},
		CSSExtract{
			Filename:      "css/" + FileName(mode, "css"),
			ChunkFilename: "css/[name]/" + FileName(mode, "css"),
		},
		Clean{},
		CopyAssets{
			Patterns: []CopyPattern{
				{
					From: layout.AbsFavicons(),
					To:   filepath.Join(layout.AbsOutput(), layout.Favicons),
				},
			},
		},
	}
}

// OptimizeBuild always splits shared chunks. Production builds get the CSS
// minimizer followed by the script minimizer.
func OptimizeBuild(mode config.Mode) Optimization {
	opt := Optimization{
		SplitChunks: SplitChunks{Chunks: "all"},
	}
	if !mode.IsDev() {
		opt.Minimizer = PluginList{
			CSSMinimizer{},
			ScriptMinimizer{},
		}
	}
	return opt
}

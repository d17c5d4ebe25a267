package buildconfig

import (
	"webbuild/src/config"
	"webbuild/src/utils"
)

// The polyfill bundled ahead of the main application.
const Polyfill = "@babel/polyfill"

func Devtool(mode config.Mode) string {
	return utils.Cond(mode.IsDev(), "source-map", "")
}

// Assemble builds the full configuration for one build. It is a pure function
// of its arguments.
func Assemble(mode config.Mode, layout config.Layout, devServer config.DevServerConfig) *Configuration {
	return &Configuration{
		Mode:    mode,
		Context: layout.AbsContext(),
		Entry: []Entry{
			{Name: "main", Imports: []string{Polyfill, "./index.jsx"}},
			{Name: "analytics", Imports: []string{"./js/analytics.ts"}},
		},
		Output: Output{
			Filename:      OutputFilename(mode),
			ChunkFilename: ChunkFilename(mode),
			Path:          layout.AbsOutput(),
			PublicPath:    "/",
		},
		Resolve: Resolve{
			Extensions: []string{".js"},
			Alias: map[string]string{
				"@": layout.AbsContext(),
			},
		},
		Optimization: OptimizeBuild(mode),
		DevServer: DevServer{
			Port: devServer.Port,
			Hot:  mode.IsDev(),
		},
		Devtool: Devtool(mode),
		Plugins: CreatePlugins(mode, layout),
		Module: Module{
			Rules: CreateRules(mode),
		},
	}
}

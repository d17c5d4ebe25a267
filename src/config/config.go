package config

import "github.com/rs/zerolog"

var Config = Cfg{
	LogLevel: zerolog.InfoLevel,
	Layout: Layout{
		Root:     ".",
		Context:  "src",
		Output:   "dist",
		Template: "index.html",
		Favicons: "favicons",
	},
	DevServer: DevServerConfig{
		Port: 8080,
	},
}

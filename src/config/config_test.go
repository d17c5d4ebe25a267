package config

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestModeFromEnv(t *testing.T) {
	cases := map[string]Mode{
		"development": Development,
		"production":  Production,
		"":            Production,
		"develop":     Production,
		"Development": Production,
		"test":        Production,
	}
	for value, expected := range cases {
		t.Run(value, func(t *testing.T) {
			assert.Equal(t, expected, ModeFromEnv(value))
		})
	}
}

func TestIsRecognizedMode(t *testing.T) {
	assert.True(t, IsRecognizedMode(""))
	assert.True(t, IsRecognizedMode("development"))
	assert.True(t, IsRecognizedMode("production"))
	assert.False(t, IsRecognizedMode("prod"))
}

func TestLayoutPaths(t *testing.T) {
	l := Layout{
		Root:     "/project",
		Context:  "src",
		Output:   "dist",
		Template: "index.html",
		Favicons: "favicons",
	}
	assert.Equal(t, filepath.Join("/project", "src"), l.AbsContext())
	assert.Equal(t, filepath.Join("/project", "dist"), l.AbsOutput())
	assert.Equal(t, filepath.Join("/project", "src", "favicons"), l.AbsFavicons())
	assert.Equal(t, filepath.Join("/project", "src", "index.html"), l.AbsTemplate())
}

package config

import (
	"path/filepath"

	"github.com/rs/zerolog"
)

// Mode selects between a development and a production build. It is decided
// once at startup and passed explicitly to everything that depends on it.
type Mode string

const (
	Development Mode = "development"
	Production  Mode = "production"
)

// The environment variable the build mode is read from.
const ModeEnvVar = "NODE_ENV"

func (m Mode) IsDev() bool {
	return m == Development
}

func (m Mode) String() string {
	return string(m)
}

// ModeFromEnv maps the raw environment value to a Mode. Only the literal
// "development" selects development; anything else, including an empty or
// misspelled value, is a production build.
func ModeFromEnv(value string) Mode {
	if value == string(Development) {
		return Development
	}
	return Production
}

// IsRecognizedMode reports whether value is empty or one of the known modes.
// Callers use it to warn about values that silently fall back to production.
func IsRecognizedMode(value string) bool {
	switch Mode(value) {
	case "", Development, Production:
		return true
	}
	return false
}

/*
 * Same deal as always: config is Go code, compiled in. The only thing that
 * comes from the environment is the build mode, because that is how every
 * frontend toolchain on earth selects it.
 */

type Cfg struct {
	LogLevel  zerolog.Level
	Layout    Layout
	DevServer DevServerConfig
}

type DevServerConfig struct {
	Port uint16
}

// Layout describes where things live in the frontend project. Context,
// Output, Template and Favicons are relative; Template and Favicons are
// relative to Context.
type Layout struct {
	Root     string
	Context  string
	Output   string
	Template string
	Favicons string
}

func (l Layout) AbsContext() string {
	return filepath.Join(l.Root, l.Context)
}

func (l Layout) AbsOutput() string {
	return filepath.Join(l.Root, l.Output)
}

func (l Layout) AbsFavicons() string {
	return filepath.Join(l.AbsContext(), l.Favicons)
}

func (l Layout) AbsTemplate() string {
	return filepath.Join(l.AbsContext(), l.Template)
}

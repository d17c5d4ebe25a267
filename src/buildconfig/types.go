package buildconfig

import (
	"encoding/json"
	"regexp"

	"webbuild/src/config"
	"webbuild/src/utils"
)

// Configuration is the declarative description of a build. It is plain data;
// nothing in this package reads the environment or touches the filesystem.
type Configuration struct {
	Mode         config.Mode  `json:"mode"`
	Context      string       `json:"context"`
	Entry        []Entry      `json:"entry"`
	Output       Output       `json:"output"`
	Resolve      Resolve      `json:"resolve"`
	Optimization Optimization `json:"optimization"`
	DevServer    DevServer    `json:"devServer"`
	Devtool      string       `json:"devtool"`
	Plugins      PluginList   `json:"plugins"`
	Module       Module       `json:"module"`
}

// Entry is a named bundle. Imports are bundled in order; the last one is the
// module whose exports the bundle exposes.
type Entry struct {
	Name    string   `json:"name"`
	Imports []string `json:"imports"`
}

func (c *Configuration) EntryNames() []string {
	names := make([]string, 0, len(c.Entry))
	for _, e := range c.Entry {
		names = append(names, e.Name)
	}
	return names
}

func (c *Configuration) FindEntry(name string) (Entry, bool) {
	for _, e := range c.Entry {
		if e.Name == name {
			return e, true
		}
	}
	return Entry{}, false
}

// FilenameFunc picks the output file name template for a chunk.
type FilenameFunc func(chunkName string) string

type Output struct {
	Filename      FilenameFunc `json:"-"`
	ChunkFilename string       `json:"chunkFilename"`
	Path          string       `json:"path"`
	PublicPath    string       `json:"publicPath"`
}

type Resolve struct {
	Extensions []string          `json:"extensions"`
	Alias      map[string]string `json:"alias"`
}

type Optimization struct {
	SplitChunks SplitChunks `json:"splitChunks"`
	Minimizer   PluginList  `json:"minimizer,omitempty"`
}

type SplitChunks struct {
	Chunks string `json:"chunks"`
}

type DevServer struct {
	Port uint16 `json:"port"`
	Hot  bool   `json:"hot"`
}

type Module struct {
	Rules []Rule `json:"rules"`
}

// Rule binds files matching Test (and not matching Exclude) to a loader chain.
type Rule struct {
	Test    *Pattern    `json:"test"`
	Exclude *Pattern    `json:"exclude,omitempty"`
	Use     LoaderChain `json:"use"`
}

// Matches reports whether the rule applies to the given path.
func (r Rule) Matches(path string) bool {
	if r.Test == nil || !r.Test.MatchString(path) {
		return false
	}
	return !r.Excludes(path)
}

func (r Rule) Excludes(path string) bool {
	return r.Exclude != nil && r.Exclude.MatchString(path)
}

// Pattern is a regexp that encodes as its source text.
type Pattern struct {
	*regexp.Regexp
}

func MustPattern(expr string) *Pattern {
	return &Pattern{utils.Must1(regexp.Compile(expr))}
}

func (p *Pattern) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

func (p *Pattern) UnmarshalText(text []byte) error {
	re, err := regexp.Compile(string(text))
	if err != nil {
		return err
	}
	p.Regexp = re
	return nil
}

// LoaderChain is an ordered list of transformation steps. Steps run last to
// first: the final element sees the raw source.
type LoaderChain []LoaderStep

type LoaderStep struct {
	Loader  string `json:"loader"`
	Options any    `json:"options,omitempty"`
}

func (c LoaderChain) Loaders() []string {
	ids := make([]string, len(c))
	for i, step := range c {
		ids[i] = step.Loader
	}
	return ids
}

func (c LoaderChain) Has(loader string) bool {
	for _, step := range c {
		if step.Loader == loader {
			return true
		}
	}
	return false
}

// Plugin is a build lifecycle extension. The bundle package knows how to run
// each concrete type.
type Plugin interface {
	PluginName() string
}

type PluginList []Plugin

func (l PluginList) MarshalJSON() ([]byte, error) {
	type named struct {
		Name    string `json:"name"`
		Options Plugin `json:"options"`
	}
	out := make([]named, len(l))
	for i, p := range l {
		out[i] = named{Name: p.PluginName(), Options: p}
	}
	return json.Marshal(out)
}

func (l PluginList) Names() []string {
	names := make([]string, len(l))
	for i, p := range l {
		names[i] = p.PluginName()
	}
	return names
}

// MarshalJSON renders Output.Filename for every entry, since a function has no
// encoding of its own.
func (c *Configuration) MarshalJSON() ([]byte, error) {
	type plain Configuration
	filenames := map[string]string{}
	if c.Output.Filename != nil {
		for _, e := range c.Entry {
			filenames[e.Name] = c.Output.Filename(e.Name)
		}
	}
	return json.Marshal(struct {
		*plain
		Filenames map[string]string `json:"filenames"`
	}{(*plain)(c), filenames})
}

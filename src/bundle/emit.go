package bundle

import (
	"encoding/json"
	"path"
	"path/filepath"
	"regexp"
	"strings"

	"webbuild/src/buildconfig"
	"webbuild/src/ee"

	"github.com/evanw/esbuild/pkg/api"
)

// Manifest records where each entry's outputs were written, as paths
// relative to the output directory.
type Manifest struct {
	Entries []ManifestEntry
}

type ManifestEntry struct {
	Name   string
	Script string
	Style  string
}

func (m Manifest) Entry(name string) (ManifestEntry, bool) {
	for _, e := range m.Entries {
		if e.Name == name {
			return e, true
		}
	}
	return ManifestEntry{}, false
}

type metafile struct {
	Outputs map[string]metafileOutput `json:"outputs"`
}

type metafileOutput struct {
	EntryPoint string `json:"entryPoint"`
	CSSBundle  string `json:"cssBundle"`
}

// emitPlugin writes the build outputs. With CSS extraction configured, the
// stylesheets esbuild places next to each script are moved to the names the
// extraction templates ask for, together with their source maps.
func (b *Bundler) emitPlugin(extract *buildconfig.CSSExtract) api.Plugin {
	return api.Plugin{
		Name: "emit",
		Setup: func(build api.PluginBuild) {
			build.OnStart(func() (api.OnStartResult, error) {
				b.resetState()
				return api.OnStartResult{}, nil
			})
			build.OnEnd(func(result *api.BuildResult) (api.OnEndResult, error) {
				if len(result.Errors) > 0 {
					return api.OnEndResult{}, nil
				}
				if err := b.emit(result, extract); err != nil {
					return api.OnEndResult{Errors: []api.Message{errorMessage("emit", err)}}, nil
				}
				return api.OnEndResult{}, nil
			})
		},
	}
}

func (b *Bundler) emit(result *api.BuildResult, extract *buildconfig.CSSExtract) error {
	var meta metafile
	if err := json.Unmarshal([]byte(result.Metafile), &meta); err != nil {
		return ee.New(err, "parsing esbuild metafile")
	}

	scripts := map[string]string{}    // entry name -> absolute script path
	styleOwner := map[string]string{} // absolute stylesheet path -> entry name
	for out, info := range meta.Outputs {
		name, ok := entryName(info.EntryPoint)
		if !ok || path.Ext(out) == ".css" {
			continue
		}
		scripts[name] = filepath.Join(b.context, filepath.FromSlash(out))
		if info.CSSBundle != "" {
			styleOwner[filepath.Join(b.context, filepath.FromSlash(info.CSSBundle))] = name
		}
	}

	// Decide every destination before writing so source maps can follow
	// their stylesheet.
	moved := map[string]string{}
	if extract != nil {
		for _, f := range result.OutputFiles {
			if filepath.Ext(f.Path) != ".css" {
				continue
			}
			moved[f.Path] = b.extractedPath(extract, f, styleOwner)
		}
	}

	styles := map[string]string{}
	for _, f := range result.OutputFiles {
		dest, contents := f.Path, f.Contents
		if to, ok := moved[f.Path]; ok {
			dest = to
			contents = relinkSourceMap(contents, path.Base(filepath.ToSlash(to))+".map")
		} else if css, isMap := strings.CutSuffix(f.Path, ".map"); isMap {
			if to, ok := moved[css]; ok {
				dest = to + ".map"
			}
		}
		if err := b.writeFile(dest, contents); err != nil {
			return err
		}
		if owner, ok := styleOwner[f.Path]; ok {
			styles[owner] = dest
		}
	}

	manifest := Manifest{}
	for _, e := range b.cfg.Entry {
		entry := ManifestEntry{Name: e.Name}
		if script, ok := scripts[e.Name]; ok {
			entry.Script = b.outputRel(script)
		}
		if style, ok := styles[e.Name]; ok {
			entry.Style = b.outputRel(style)
		}
		manifest.Entries = append(manifest.Entries, entry)
	}

	b.mu.Lock()
	b.manifest = manifest
	b.mu.Unlock()
	return nil
}

// extractedPath names an extracted stylesheet. An entry's styles use the
// entry filename template; any other stylesheet is a chunk, named after its
// file.
func (b *Bundler) extractedPath(extract *buildconfig.CSSExtract, f api.OutputFile, owners map[string]string) string {
	template, name := extract.Filename, owners[f.Path]
	if name == "" {
		template = extract.ChunkFilename
		base := path.Base(filepath.ToSlash(f.Path))
		name, _, _ = strings.Cut(base, ".")
	}
	rel := expand(template, name, f.Contents)
	return filepath.Join(b.outdir, filepath.FromSlash(rel))
}

var sourceMappingURL = regexp.MustCompile(`/\*# sourceMappingURL=[^*]*\*/\s*$`)

// relinkSourceMap points a moved stylesheet's trailing source map comment at
// its map, which is written next to it.
func relinkSourceMap(css []byte, mapName string) []byte {
	loc := sourceMappingURL.FindIndex(css)
	if loc == nil {
		return css
	}
	out := append([]byte(nil), css[:loc[0]]...)
	return append(out, "/*# sourceMappingURL="+mapName+" */\n"...)
}

func (b *Bundler) outputRel(abs string) string {
	rel, err := filepath.Rel(b.outdir, abs)
	if err != nil {
		return filepath.ToSlash(abs)
	}
	return filepath.ToSlash(rel)
}

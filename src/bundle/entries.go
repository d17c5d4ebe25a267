package bundle

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"webbuild/src/buildconfig"
	"webbuild/src/ee"

	"github.com/evanw/esbuild/pkg/api"
)

const (
	entryNamespace = "entry"
	entryPrefix    = entryNamespace + ":"
)

// entryPlugin serves one virtual module per entry. Each imports the entry's
// modules in order and re-exports the last, which is how a multi-file entry
// such as [polyfill, app] becomes a single esbuild entry point.
func entryPlugin(entries []buildconfig.Entry, contextDir string) api.Plugin {
	byName := make(map[string]buildconfig.Entry, len(entries))
	for _, e := range entries {
		byName[e.Name] = e
	}

	return api.Plugin{
		Name: "entry",
		Setup: func(build api.PluginBuild) {
			build.OnResolve(api.OnResolveOptions{Filter: "^" + regexp.QuoteMeta(entryPrefix)},
				func(args api.OnResolveArgs) (api.OnResolveResult, error) {
					if args.Kind != api.ResolveEntryPoint {
						return api.OnResolveResult{}, nil
					}
					return api.OnResolveResult{
						Path:      strings.TrimPrefix(args.Path, entryPrefix),
						Namespace: entryNamespace,
					}, nil
				})

			build.OnLoad(api.OnLoadOptions{Filter: ".*", Namespace: entryNamespace},
				func(args api.OnLoadArgs) (api.OnLoadResult, error) {
					entry, ok := byName[args.Path]
					if !ok {
						return api.OnLoadResult{}, ee.New(nil, "no entry named %q", args.Path)
					}
					contents := entryModule(entry)
					return api.OnLoadResult{
						Contents:   &contents,
						ResolveDir: contextDir,
						Loader:     api.LoaderJS,
					}, nil
				})
		},
	}
}

func entryModule(entry buildconfig.Entry) string {
	var sb strings.Builder
	for i, imp := range entry.Imports {
		if i == len(entry.Imports)-1 {
			fmt.Fprintf(&sb, "export * from %s;\n", strconv.Quote(imp))
		} else {
			fmt.Fprintf(&sb, "import %s;\n", strconv.Quote(imp))
		}
	}
	return sb.String()
}

// entryName maps a metafile entry point back to the configured entry.
func entryName(metafileEntryPoint string) (string, bool) {
	return strings.CutPrefix(metafileEntryPoint, entryPrefix)
}

// aliasPlugin rewrites "alias/rest" imports to paths under the alias target
// and lets esbuild resolve the result normally.
func aliasPlugin(aliases map[string]string) api.Plugin {
	keys := make([]string, 0, len(aliases))
	for k := range aliases {
		keys = append(keys, k)
	}
	// Longest alias first so "@/ui" wins over "@".
	sort.Slice(keys, func(i, j int) bool { return len(keys[i]) > len(keys[j]) })

	return api.Plugin{
		Name: "alias",
		Setup: func(build api.PluginBuild) {
			for _, alias := range keys {
				alias, target := alias, aliases[alias]
				build.OnResolve(api.OnResolveOptions{Filter: "^" + regexp.QuoteMeta(alias) + "/"},
					func(args api.OnResolveArgs) (api.OnResolveResult, error) {
						rest := strings.TrimPrefix(args.Path, alias+"/")
						res := build.Resolve("./"+rest, api.ResolveOptions{
							Importer:   args.Importer,
							ResolveDir: target,
							Kind:       args.Kind,
						})
						if len(res.Errors) > 0 {
							return api.OnResolveResult{Errors: res.Errors, Warnings: res.Warnings}, nil
						}
						return api.OnResolveResult{
							Path:       res.Path,
							Namespace:  res.Namespace,
							External:   res.External,
							Suffix:     res.Suffix,
							PluginData: res.PluginData,
							Warnings:   res.Warnings,
						}, nil
					})
			}
		},
	}
}

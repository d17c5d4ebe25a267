package bundle

import (
	"os"
	"path/filepath"
	"strings"

	"webbuild/src/buildconfig"
	"webbuild/src/ee"

	"github.com/evanw/esbuild/pkg/api"
	"github.com/spf13/afero"
)

// cleanPlugin empties the output directory when a build starts, so files from
// earlier builds with other hashes do not pile up.
func (b *Bundler) cleanPlugin() api.Plugin {
	return api.Plugin{
		Name: buildconfig.PluginClean,
		Setup: func(build api.PluginBuild) {
			build.OnStart(func() (api.OnStartResult, error) {
				if err := b.clean(); err != nil {
					return api.OnStartResult{Errors: []api.Message{errorMessage(buildconfig.PluginClean, err)}}, nil
				}
				return api.OnStartResult{}, nil
			})
		},
	}
}

func (b *Bundler) clean() error {
	if !isBelow(b.outdir, b.context) && !isBelow(b.context, b.outdir) && filepath.Dir(b.outdir) != b.outdir {
		b.logger.Debug().Str("dir", b.outdir).Msg("Cleaning output directory")
		return b.fs.RemoveAll(b.outdir)
	}
	return ee.New(ErrUnsafeClean, "%s overlaps the source directory %s", b.outdir, b.context)
}

// isBelow reports whether dir is inside (or equal to) parent.
func isBelow(dir, parent string) bool {
	rel, err := filepath.Rel(parent, dir)
	if err != nil {
		return false
	}
	return rel == "." || (rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)))
}

// copyPlugin copies each pattern's directory tree into the output once the
// build has been emitted.
func (b *Bundler) copyPlugin(c buildconfig.CopyAssets) api.Plugin {
	return api.Plugin{
		Name: buildconfig.PluginCopyAssets,
		Setup: func(build api.PluginBuild) {
			build.OnEnd(func(result *api.BuildResult) (api.OnEndResult, error) {
				if len(result.Errors) > 0 {
					return api.OnEndResult{}, nil
				}
				var errs []api.Message
				for _, p := range c.Patterns {
					if err := b.copyTree(p.From, p.To); err != nil {
						errs = append(errs, errorMessage(buildconfig.PluginCopyAssets, err))
					}
				}
				return api.OnEndResult{Errors: errs}, nil
			})
		},
	}
}

func (b *Bundler) copyTree(from, to string) error {
	info, err := b.fs.Stat(from)
	if err != nil {
		return ee.New(err, "copy source %s", from)
	}
	if !info.IsDir() {
		return b.copyFile(from, to, info.Mode())
	}

	return afero.Walk(b.fs, from, func(p string, info os.FileInfo, err error) error {
		if err != nil {
			return ee.New(err, "walking %s", p)
		}
		rel, err := filepath.Rel(from, p)
		if err != nil {
			return err
		}
		dest := filepath.Join(to, rel)
		if info.IsDir() {
			return b.fs.MkdirAll(dest, 0o755)
		}
		return b.copyFile(p, dest, info.Mode())
	})
}

func (b *Bundler) copyFile(from, to string, mode os.FileMode) error {
	contents, err := afero.ReadFile(b.fs, from)
	if err != nil {
		return ee.New(err, "reading %s", from)
	}
	if err := b.fs.MkdirAll(filepath.Dir(to), 0o755); err != nil {
		return ee.New(err, "creating directory for %s", to)
	}
	if err := afero.WriteFile(b.fs, to, contents, mode.Perm()); err != nil {
		return ee.New(err, "writing %s", to)
	}
	b.recordWrite(to)
	return nil
}

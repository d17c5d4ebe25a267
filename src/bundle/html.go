package bundle

import (
	"bytes"
	"path/filepath"
	"regexp"
	"strings"

	"webbuild/src/buildconfig"
	"webbuild/src/ee"

	"github.com/evanw/esbuild/pkg/api"
	"github.com/spf13/afero"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Reloads the page whenever esbuild's watcher finishes a rebuild.
const liveReloadScript = `new EventSource("/esbuild").addEventListener("change", () => location.reload());`

type pageOptions struct {
	Entries            []ManifestEntry
	PublicPath         string
	CollapseWhitespace bool
	LiveReload         bool
}

func (b *Bundler) htmlPagePlugin(page buildconfig.HTMLPage) api.Plugin {
	return api.Plugin{
		Name: buildconfig.PluginHTMLPage,
		Setup: func(build api.PluginBuild) {
			build.OnEnd(func(result *api.BuildResult) (api.OnEndResult, error) {
				if len(result.Errors) > 0 {
					return api.OnEndResult{}, nil
				}
				if err := b.writePage(page); err != nil {
					return api.OnEndResult{Errors: []api.Message{errorMessage(buildconfig.PluginHTMLPage, err)}}, nil
				}
				return api.OnEndResult{}, nil
			})
		},
	}
}

func (b *Bundler) writePage(page buildconfig.HTMLPage) error {
	templatePath := filepath.Join(b.context, filepath.FromSlash(page.Template))
	raw, err := afero.ReadFile(b.fs, templatePath)
	if err != nil {
		return ee.New(err, "reading page template")
	}

	b.mu.Lock()
	entries := append([]ManifestEntry(nil), b.manifest.Entries...)
	b.mu.Unlock()

	rendered, err := renderPage(raw, pageOptions{
		Entries:            entries,
		PublicPath:         b.cfg.Output.PublicPath,
		CollapseWhitespace: page.Minify.CollapseWhitespace,
		LiveReload:         b.serving && b.cfg.DevServer.Hot,
	})
	if err != nil {
		return err
	}

	name := expand(page.Filename, "index", rendered)
	return b.writeFile(filepath.Join(b.outdir, filepath.FromSlash(name)), rendered)
}

// renderPage injects a stylesheet link into <head> and a module script at the
// end of <body> for every entry, in entry order.
func renderPage(template []byte, opts pageOptions) ([]byte, error) {
	doc, err := html.Parse(bytes.NewReader(template))
	if err != nil {
		return nil, ee.New(err, "parsing page template")
	}

	head := findElement(doc, atom.Head)
	body := findElement(doc, atom.Body)
	if head == nil || body == nil {
		// html.Parse always synthesizes both.
		return nil, ee.New(nil, "page template has no head or body")
	}

	for _, e := range opts.Entries {
		if e.Style != "" {
			head.AppendChild(element(atom.Link, "rel", "stylesheet", "href", opts.PublicPath+e.Style))
		}
	}
	for _, e := range opts.Entries {
		if e.Script != "" {
			body.AppendChild(element(atom.Script, "type", "module", "src", opts.PublicPath+e.Script))
		}
	}
	if opts.LiveReload {
		script := element(atom.Script)
		script.AppendChild(&html.Node{Type: html.TextNode, Data: liveReloadScript})
		body.AppendChild(script)
	}

	if opts.CollapseWhitespace {
		collapseWhitespace(doc)
	}

	var out bytes.Buffer
	if err := html.Render(&out, doc); err != nil {
		return nil, ee.New(err, "rendering page")
	}
	return out.Bytes(), nil
}

func element(a atom.Atom, attrs ...string) *html.Node {
	n := &html.Node{
		Type:     html.ElementNode,
		DataAtom: a,
		Data:     a.String(),
	}
	for i := 0; i+1 < len(attrs); i += 2 {
		n.Attr = append(n.Attr, html.Attribute{Key: attrs[i], Val: attrs[i+1]})
	}
	return n
}

func findElement(n *html.Node, a atom.Atom) *html.Node {
	if n.Type == html.ElementNode && n.DataAtom == a {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findElement(c, a); found != nil {
			return found
		}
	}
	return nil
}

var whitespaceRun = regexp.MustCompile(`\s+`)

// collapseWhitespace drops whitespace-only text between tags and squeezes
// other runs of whitespace to a single space. Preformatted content and raw
// text elements are left alone.
func collapseWhitespace(n *html.Node) {
	for c := n.FirstChild; c != nil; {
		next := c.NextSibling
		switch c.Type {
		case html.TextNode:
			if strings.TrimSpace(c.Data) == "" {
				n.RemoveChild(c)
			} else {
				c.Data = whitespaceRun.ReplaceAllString(c.Data, " ")
			}
		case html.ElementNode:
			switch c.DataAtom {
			case atom.Pre, atom.Textarea, atom.Script, atom.Style:
			default:
				collapseWhitespace(c)
			}
		default:
			collapseWhitespace(c)
		}
		c = next
	}
}

// Package docs serves the bundled help pages over localhost. Markdown
// pages are grouped per language and rendered to HTML on request, so a
// browser can read the toolbox documentation without any files being
// installed.
package docs

import (
	"bytes"
	"fmt"
	"html"
	"net/http"
	"sort"
	"strings"

	"github.com/yuin/goldmark"
	"go.trai.ch/zerr"
)

var ErrPageNotFound = zerr.New("documentation page not found")

// Server renders and serves a page set. Pages are keyed
// `<lang>/<name>.md` (e.g. "en/index.md").
type Server struct {
	Pages       map[string]string
	DefaultLang string
	Product     string

	markdown goldmark.Markdown
}

// New builds a server over a page set.
func New(pages map[string]string, defaultLang, product string) *Server {
	return &Server{
		Pages:       pages,
		DefaultLang: defaultLang,
		Product:     product,
		markdown:    goldmark.New(),
	}
}

// Languages returns the languages present in the page set, sorted.
func (s *Server) Languages() []string {
	seen := make(map[string]bool)
	for key := range s.Pages {
		if lang, _, ok := strings.Cut(key, "/"); ok {
			seen[lang] = true
		}
	}
	languages := make([]string, 0, len(seen))
	for lang := range seen {
		languages = append(languages, lang)
	}
	sort.Strings(languages)
	return languages
}

// PageNames returns the page names available for a language, sorted with
// index first.
func (s *Server) PageNames(lang string) []string {
	var names []string
	for key := range s.Pages {
		if pageLang, name, ok := strings.Cut(key, "/"); ok && pageLang == lang {
			names = append(names, strings.TrimSuffix(name, ".md"))
		}
	}
	sort.Slice(names, func(i, j int) bool {
		if names[i] == "index" {
			return true
		}
		if names[j] == "index" {
			return false
		}
		return names[i] < names[j]
	})
	return names
}

// Render converts one page to a full HTML document with the navigation
// and language switch links.
func (s *Server) Render(lang, name string) (string, error) {
	if lang == "" {
		lang = s.DefaultLang
	}
	source, ok := s.Pages[lang+"/"+name+".md"]
	if !ok {
		// unknown language falls back to the default
		source, ok = s.Pages[s.DefaultLang+"/"+name+".md"]
		if !ok {
			return "", zerr.With(ErrPageNotFound, "page", lang+"/"+name)
		}
		lang = s.DefaultLang
	}

	var body bytes.Buffer
	if err := s.markdown.Convert([]byte(source), &body); err != nil {
		return "", err
	}

	var nav strings.Builder
	for _, pageName := range s.PageNames(lang) {
		fmt.Fprintf(&nav, `<a href="/%s?lang=%s">%s</a> `, pageName, lang, html.EscapeString(pageName))
	}
	var langSwitch strings.Builder
	for _, language := range s.Languages() {
		fmt.Fprintf(&langSwitch, `<a href="/%s?lang=%s">%s</a> `, name, language, html.EscapeString(language))
	}

	return fmt.Sprintf(pageShell,
		html.EscapeString(s.Product),
		nav.String(),
		langSwitch.String(),
		body.String(),
	), nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	name := strings.Trim(r.URL.Path, "/")
	if name == "" {
		name = "index"
	}
	page, err := s.Render(r.URL.Query().Get("lang"), name)
	if err != nil {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	fmt.Fprint(w, page)
}

const pageShell = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>%s</title>
<style>
body { font-family: sans-serif; max-width: 48em; margin: 2em auto; padding: 0 1em; }
nav { border-bottom: 1px solid #ccc; padding-bottom: 0.5em; margin-bottom: 1em; }
nav .lang { float: right; }
pre { background: #f4f4f4; padding: 0.5em; overflow-x: auto; }
</style>
</head>
<body>
<nav>%s<span class="lang">%s</span></nav>
%s
</body>
</html>
`

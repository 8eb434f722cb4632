// Package render renders the embedded HTML pages.
package render

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"path"
	"strings"

	"github.com/rs/zerolog"

	"github.com/edvin/swiftwheelz/internal/content"
	"github.com/edvin/swiftwheelz/internal/model"
	"github.com/edvin/swiftwheelz/internal/web/middleware"
)

//go:embed templates
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

// PageData is passed to every page template.
type PageData struct {
	Title       string
	Identity    *model.Identity
	Flash       *Flash
	Site        *content.Site
	CurrentPath string
	Data        any
}

// Renderer holds one parsed template set per page: the base layout cloned
// and extended with the page's own template.
type Renderer struct {
	pages         map[string]*template.Template
	site          *content.Site
	flashes       FlashSigner
	secureCookies bool
}

// New parses all page templates.
func New(site *content.Site, flashes FlashSigner, secureCookies bool) (*Renderer, error) {
	base, err := template.New("layout.html").Funcs(funcs).ParseFS(templateFS, "templates/layout.html")
	if err != nil {
		return nil, fmt.Errorf("parse layout: %w", err)
	}

	files, err := fs.Glob(templateFS, "templates/pages/*.html")
	if err != nil {
		return nil, fmt.Errorf("list pages: %w", err)
	}

	pages := make(map[string]*template.Template, len(files))
	for _, f := range files {
		t, err := base.Clone()
		if err != nil {
			return nil, fmt.Errorf("clone layout for %s: %w", f, err)
		}
		if _, err := t.ParseFS(templateFS, f); err != nil {
			return nil, fmt.Errorf("parse %s: %w", f, err)
		}
		pages[strings.TrimSuffix(path.Base(f), ".html")] = t
	}

	return &Renderer{pages: pages, site: site, flashes: flashes, secureCookies: secureCookies}, nil
}

// Site returns the site copy shared by all pages.
func (rd *Renderer) Site() *content.Site {
	return rd.site
}

// Static serves the embedded stylesheet and images.
func Static() http.Handler {
	sub, _ := fs.Sub(staticFS, "static")
	return http.FileServer(http.FS(sub))
}

// Page renders the named page with the shared layout.
func (rd *Renderer) Page(w http.ResponseWriter, r *http.Request, status int, page, title string, data any) {
	t, ok := rd.pages[page]
	if !ok {
		zerolog.Ctx(r.Context()).Error().Str("page", page).Msg("unknown page template")
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	pd := PageData{
		Title:       title,
		Identity:    middleware.GetIdentity(r.Context()),
		Flash:       rd.popFlash(w, r),
		Site:        rd.site,
		CurrentPath: r.URL.Path,
		Data:        data,
	}

	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "layout.html", pd); err != nil {
		zerolog.Ctx(r.Context()).Error().Err(err).Str("page", page).Msg("render page")
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	buf.WriteTo(w)
}

// ErrorData is the data of the error page.
type ErrorData struct {
	Status  int
	Message string
}

// Error renders the error page with the given status.
func (rd *Renderer) Error(w http.ResponseWriter, r *http.Request, status int, message string) {
	rd.Page(w, r, status, "error", http.StatusText(status), ErrorData{Status: status, Message: message})
}

// Package web renders the server-side HTML pages from embedded templates
// and carries transient flash notices across redirects via a cookie.
package web

import (
	"bytes"
	"embed"
	"encoding/base64"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"strings"

	"agriconnect/internal/auth"

	"github.com/rs/zerolog"
)

//go:embed templates
var templateFS embed.FS

// flashCookie holds a one-shot notice; cleared on the next page render.
const flashCookie = "agriconnect_flash"

// Flash is a transient notice shown once on the next rendered page.
type Flash struct {
	Category string
	Message  string
}

// Page is the data envelope every template receives.
type Page struct {
	Title     string
	Identity  *auth.Identity
	Flash     *Flash
	CartCount int
	Data      any
}

// Renderer renders named pages against the shared base layout.
type Renderer struct {
	pages  map[string]*template.Template
	logger zerolog.Logger
}

// NewRenderer parses the embedded templates. Each page is parsed together
// with the base layout so pages can override its blocks.
func NewRenderer(logger zerolog.Logger) (*Renderer, error) {
	names, err := fs.Glob(templateFS, "templates/pages/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to list templates: %w", err)
	}

	pages := make(map[string]*template.Template, len(names))
	for _, name := range names {
		tmpl, err := template.ParseFS(templateFS, "templates/base.html", name)
		if err != nil {
			return nil, fmt.Errorf("failed to parse template %s: %w", name, err)
		}
		key := strings.TrimSuffix(strings.TrimPrefix(name, "templates/pages/"), ".html")
		pages[key] = tmpl
	}

	return &Renderer{
		pages:  pages,
		logger: logger.With().Str("component", "renderer").Logger(),
	}, nil
}

// Render writes the named page. The page is executed into a buffer first so
// a template failure can still produce a clean 500.
func (r *Renderer) Render(w http.ResponseWriter, status int, name string, page *Page) {
	tmpl, ok := r.pages[name]
	if !ok {
		r.logger.Error().Str("template", name).Msg("unknown template")
		r.RenderError(w, http.StatusInternalServerError, page.Identity)
		return
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "base.html", page); err != nil {
		r.logger.Error().Err(err).Str("template", name).Msg("failed to render template")
		r.RenderError(w, http.StatusInternalServerError, page.Identity)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

// RenderError renders the 404 or 500 page; anything else falls back to 500.
func (r *Renderer) RenderError(w http.ResponseWriter, status int, identity *auth.Identity) {
	name := "500"
	title := "Server Error"
	if status == http.StatusNotFound {
		name = "404"
		title = "Page Not Found"
	}

	tmpl, ok := r.pages[name]
	if !ok {
		http.Error(w, title, status)
		return
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "base.html", &Page{Title: title, Identity: identity}); err != nil {
		http.Error(w, title, status)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

// SetFlash queues a notice for the next rendered page.
func SetFlash(w http.ResponseWriter, category, message string) {
	value := base64.URLEncoding.EncodeToString([]byte(category + "|" + message))
	http.SetCookie(w, &http.Cookie{
		Name:     flashCookie,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		MaxAge:   60,
	})
}

// PopFlash returns the queued notice, if any, and clears it.
func PopFlash(w http.ResponseWriter, r *http.Request) *Flash {
	cookie, err := r.Cookie(flashCookie)
	if err != nil {
		return nil
	}

	http.SetCookie(w, &http.Cookie{
		Name:     flashCookie,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		MaxAge:   -1,
	})

	decoded, err := base64.URLEncoding.DecodeString(cookie.Value)
	if err != nil {
		return nil
	}
	category, message, ok := strings.Cut(string(decoded), "|")
	if !ok {
		return nil
	}
	return &Flash{Category: category, Message: message}
}

package render

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io"

	"talant-web/internal/search"
	"talant-web/internal/usecase"
)

//go:embed templates/*.html
var templateFS embed.FS

const defaultPlaceholderAvatar = "https://via.placeholder.com/60"

type Options struct {
	AppName           string
	PlaceholderAvatar string
	Taxonomy          search.Taxonomy
	// LiveChannel enables the WebSocket client script on full pages.
	LiveChannel bool
}

// Renderer is the only component that produces HTML. Every text field goes
// through html/template contextual escaping.
type Renderer struct {
	tmpl *template.Template
	opts Options
}

func New(opts Options) (*Renderer, error) {
	if opts.PlaceholderAvatar == "" {
		opts.PlaceholderAvatar = defaultPlaceholderAvatar
	}
	if opts.AppName == "" {
		opts.AppName = "talant"
	}
	tmpl, err := template.New("").ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	return &Renderer{tmpl: tmpl, opts: opts}, nil
}

func (r *Renderer) PlaceholderAvatar() string {
	return r.opts.PlaceholderAvatar
}

// Page writes the full HTML document for a browse result.
func (r *Renderer) Page(w io.Writer, res usecase.BrowseResult) error {
	return r.tmpl.ExecuteTemplate(w, "page", r.pageView(res))
}

// Results writes only the results fragment: status line, cards and pager.
func (r *Renderer) Results(w io.Writer, res usecase.BrowseResult) error {
	return r.tmpl.ExecuteTemplate(w, "results", r.resultsView(res))
}

func (r *Renderer) ResultsHTML(res usecase.BrowseResult) (string, error) {
	var buf bytes.Buffer
	if err := r.Results(&buf, res); err != nil {
		return "", err
	}
	return buf.String(), nil
}

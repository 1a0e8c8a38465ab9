// Package views holds the embedded page templates and static assets.
package views

import (
	"embed"
	"html/template"
	"io/fs"
	"net/http"

	"storyline/app/form"
	"storyline/app/render"
	"storyline/app/services"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

// Page names accepted by Load's result.
const (
	Show     = "show"
	NotFound = "not_found"
	Error    = "error"
)

// ShowData is what the show page renders.
type ShowData struct {
	Page        *services.Page
	Submitted   bool
	Input       form.Input
	Errors      form.Errors
	SubmitError string
}

var funcs = template.FuncMap{
	"formatDate": render.FormatDate,
}

// pages lists the files each page is parsed from, on top of the layout.
var pages = map[string][]string{
	Show:     {"templates/show.html", "templates/comment_form.html", "templates/comments.html"},
	NotFound: {"templates/not_found.html"},
	Error:    {"templates/error.html"},
}

// Load parses every page. Each template is executed by its "layout" entry.
func Load() (map[string]*template.Template, error) {
	templates := make(map[string]*template.Template, len(pages))
	for name, files := range pages {
		patterns := append([]string{"templates/layout.html", "templates/header.html"}, files...)
		tmpl, err := template.New(name).Funcs(funcs).ParseFS(templateFS, patterns...)
		if err != nil {
			return nil, err
		}
		templates[name] = tmpl
	}
	return templates, nil
}

// MustLoad is Load for program start-up.
func MustLoad() map[string]*template.Template {
	templates, err := Load()
	if err != nil {
		panic(err)
	}
	return templates
}

// Assets returns the static files rooted at their directory.
func Assets() fs.FS {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic(err)
	}
	return sub
}

// Static serves Assets under /static/.
func Static() http.Handler {
	return http.StripPrefix("/static/", http.FileServer(http.FS(Assets())))
}

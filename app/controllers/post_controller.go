package controllers

import (
	"errors"
	"html/template"
	"log/slog"
	"net/http"

	"storyline/app/cache"
	"storyline/app/form"
	"storyline/app/services"
	"storyline/app/views"

	"github.com/gorilla/mux"
)

// PostController serves generated post pages and the form fallback
type PostController struct {
	pages     *services.PageService
	cache     *cache.Cache
	submitter form.Submitter
	templates map[string]*template.Template
	logger    *slog.Logger
}

// NewPostController creates a new PostController
func NewPostController(pages *services.PageService, pageCache *cache.Cache, submitter form.Submitter, templates map[string]*template.Template, logger *slog.Logger) *PostController {
	if logger == nil {
		logger = slog.Default()
	}
	return &PostController{
		pages:     pages,
		cache:     pageCache,
		submitter: submitter,
		templates: templates,
		logger:    logger,
	}
}

// Show handles GET /post/{slug}
func (pc *PostController) Show(w http.ResponseWriter, r *http.Request) {
	page, ok := pc.page(w, r)
	if !ok {
		return
	}
	if match := r.Header.Get("If-None-Match"); match != "" && match == page.ETag {
		w.WriteHeader(http.StatusNotModified)
		return
	}
	renderPage(w, pc.logger, pc.templates[views.Show], http.StatusOK, views.ShowData{Page: page})
}

// Submit handles POST /post/{slug}, the form without client-side script
func (pc *PostController) Submit(w http.ResponseWriter, r *http.Request) {
	page, ok := pc.page(w, r)
	if !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxCommentBody)
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Failed to parse form: "+err.Error(), http.StatusBadRequest)
		return
	}
	in := form.FromRequest(r)
	// The parent is the page being viewed, whatever _id was posted.
	in.ID = page.Post.ID

	session := form.NewSession(pc.submitter, pc.logger)
	err := session.Submit(r.Context(), in)

	data := views.ShowData{
		Page:      page,
		Submitted: session.State == form.Submitted,
		Input:     session.Input,
		Errors:    session.Errors,
	}
	status := http.StatusOK
	var fieldErrs form.Errors
	switch {
	case errors.As(err, &fieldErrs):
		status = http.StatusUnprocessableEntity
	case err != nil:
		status = http.StatusInternalServerError
		data.SubmitError = "Couldn't submit comment"
	}
	renderPage(w, pc.logger, pc.templates[views.Show], status, data)
}

// Paths handles GET /api/paths
func (pc *PostController) Paths(w http.ResponseWriter, r *http.Request) {
	slugs, err := pc.pages.Paths(r.Context())
	if err != nil {
		pc.logger.Error("path discovery failed", "error", err)
		sendError(w, http.StatusInternalServerError, "Couldn't list posts", err)
		return
	}
	sendJSON(w, http.StatusOK, slugs)
}

// page resolves the cached page for the request's slug, writing the 404 or
// 500 response itself when there is none.
func (pc *PostController) page(w http.ResponseWriter, r *http.Request) (*services.Page, bool) {
	slug := mux.Vars(r)["slug"]
	data, status, err := pc.cache.Get(r.Context(), slug)
	if errors.Is(err, services.ErrPostNotFound) {
		renderPage(w, pc.logger, pc.templates[views.NotFound], http.StatusNotFound, nil)
		return nil, false
	}
	if err != nil {
		pc.logger.Error("page generation failed", "slug", slug, "error", err)
		renderPage(w, pc.logger, pc.templates[views.Error], http.StatusInternalServerError, nil)
		return nil, false
	}

	page, err := services.DecodePage(data)
	if err != nil {
		pc.logger.Error("cached page unreadable", "slug", slug, "error", err)
		renderPage(w, pc.logger, pc.templates[views.Error], http.StatusInternalServerError, nil)
		return nil, false
	}

	w.Header().Set("X-Cache", string(status))
	w.Header().Set("ETag", page.ETag)
	return page, true
}

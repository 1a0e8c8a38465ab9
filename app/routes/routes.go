package routes

import (
	"log/slog"
	"net/http"

	"storyline/app/controllers"
	"storyline/app/metrics"
	"storyline/app/middleware"
	"storyline/app/views"

	"github.com/go-chi/cors"
	"github.com/gorilla/mux"
)

// Options carries what the router needs besides the controllers.
type Options struct {
	AllowedOrigins []string
	Logger         *slog.Logger
}

// Setup defines the application's routes and returns a router.
func Setup(posts *controllers.PostController, comments *controllers.CommentController, opts Options) *mux.Router {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	router := mux.NewRouter()

	// Apply global middleware
	router.Use(middleware.RequestID)
	router.Use(middleware.Logger(logger))
	router.Use(middleware.Recoverer(logger))
	router.Use(middleware.Metrics)

	router.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.Write([]byte("ok"))
	}).Methods("GET")
	router.Handle("/metrics", metrics.Handler()).Methods("GET")
	router.PathPrefix("/static/").Handler(views.Static())

	// Post pages and the form fallback
	router.HandleFunc("/post/{slug}", posts.Show).Methods("GET", "HEAD")
	router.HandleFunc("/post/{slug}", posts.Submit).Methods("POST")

	// API routes with JSON content type. OPTIONS is routed so the CORS
	// handler can answer preflights.
	api := router.PathPrefix("/api").Subrouter()
	api.Use(cors.Handler(cors.Options{
		AllowedOrigins: opts.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))
	api.Use(middleware.ContentTypeJSON)
	api.HandleFunc("/createComment", comments.Create).Methods("POST", "OPTIONS")
	api.HandleFunc("/paths", posts.Paths).Methods("GET", "OPTIONS")

	return router
}

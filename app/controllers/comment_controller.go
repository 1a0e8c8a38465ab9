package controllers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"storyline/app/metrics"
	"storyline/app/services"
)

// maxCommentBody caps the endpoint's request body.
const maxCommentBody = 1 << 20

// confirmationName is returned on success in place of a real confirmation.
const confirmationName = "John Doe"

// CommentController serves the comment submission endpoint
type CommentController struct {
	comments *services.CommentService
	logger   *slog.Logger
}

// NewCommentController creates a new CommentController
func NewCommentController(comments *services.CommentService, logger *slog.Logger) *CommentController {
	if logger == nil {
		logger = slog.Default()
	}
	return &CommentController{comments: comments, logger: logger}
}

type createCommentRequest struct {
	ID      string `json:"_id"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	Comment string `json:"comment"`
}

// Create handles POST /api/createComment. The body is JSON whatever the
// Content-Type says. Field contents are not validated here.
func (cc *CommentController) Create(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxCommentBody)

	var req createCommentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		metrics.CommentSubmissions.WithLabelValues("invalid").Inc()
		sendError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	id, err := cc.comments.Submit(r.Context(), services.CommentInput{
		PostID:  req.ID,
		Name:    req.Name,
		Email:   req.Email,
		Comment: req.Comment,
	})
	if err != nil {
		metrics.CommentSubmissions.WithLabelValues("error").Inc()
		cc.logger.Error("comment submission failed", "post", req.ID, "error", err)
		sendError(w, http.StatusInternalServerError, "Couldn't submit comment", err)
		return
	}

	metrics.CommentSubmissions.WithLabelValues("ok").Inc()
	cc.logger.Info("comment submitted", "id", id, "post", req.ID)
	sendJSON(w, http.StatusOK, map[string]string{"name": confirmationName})
}

package services

import (
	"context"
	"fmt"

	"storyline/app/cms"
	"storyline/app/models"
)

// CommentInput is a reader submission. PostID is the parent post's _id.
type CommentInput struct {
	PostID  string
	Name    string
	Email   string
	Comment string
}

// CommentService handles business logic for comments
type CommentService struct {
	client cms.Client
}

// NewCommentService creates a new CommentService
func NewCommentService(client cms.Client) *CommentService {
	return &CommentService{client: client}
}

// Submit creates an unapproved comment document and returns its id. The
// parent reference is not checked against existing posts.
func (s *CommentService) Submit(ctx context.Context, in CommentInput) (string, error) {
	comment := models.NewComment(in.PostID, in.Name, in.Email, in.Comment)
	id, err := s.client.Create(ctx, comment)
	if err != nil {
		return "", fmt.Errorf("failed to create comment: %w", err)
	}
	return id, nil
}

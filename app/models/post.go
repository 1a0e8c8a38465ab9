package models

import (
	"errors"
	"time"
)

// Validate checks the fields a Post needs to be routed and rendered.
func (p *Post) Validate() error {
	if p.ID == "" {
		return errors.New("post id is required")
	}
	if p.Slug.Current == "" {
		return errors.New("post slug is required")
	}
	if p.Title == "" {
		return errors.New("post title is required")
	}
	return nil
}

// BeforeCreate sets up any necessary fields before creation
func (p *Post) BeforeCreate() {
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}
}

// AddComment attaches comment if it is approved and belongs to the post.
// It reports whether the comment was attached.
func (p *Post) AddComment(comment *Comment) bool {
	if comment == nil || !comment.Approved || comment.Post.Ref != p.ID {
		return false
	}
	p.Comments = append(p.Comments, comment)
	return true
}

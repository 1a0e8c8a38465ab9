package repositories

import "storyline/app/models"

// PostRepository defines the interface for post data access
type PostRepository interface {
	Put(post *PostRecord) error
	GetByID(id string) (*PostRecord, error)
	GetBySlug(slug string) (*PostRecord, error)
	List() ([]*PostRecord, error)
	Delete(id string) error
}

// AuthorRepository defines the interface for author data access
type AuthorRepository interface {
	Put(author *models.Author) error
	GetByID(id string) (*models.Author, error)
}

// CommentRepository defines the interface for comment data access
type CommentRepository interface {
	Create(comment *models.Comment) error
	GetByID(id string) (*models.Comment, error)
	ListByPost(postID string, approvedOnly bool) ([]*models.Comment, error)
	ListPending() ([]*models.Comment, error)
	Approve(id string) error
	Delete(id string) error
}

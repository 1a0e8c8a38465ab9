package models

import (
	"time"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Document type tags used by the CMS.
const (
	TypePost      = "post"
	TypeAuthor    = "author"
	TypeComment   = "comment"
	TypeReference = "reference"
	TypeImage     = "image"
	TypeBlock     = "block"
)

// Slug is the CMS slug object, routed by Current.
type Slug struct {
	Current string `json:"current"`
}

// Reference is a weak pointer to another document.
type Reference struct {
	Type string `json:"_type" validate:"eq=reference"`
	Ref  string `json:"_ref" validate:"required"`
}

// Image points at an image asset.
type Image struct {
	Type  string     `json:"_type,omitempty"`
	Asset *Reference `json:"asset,omitempty"`
	Alt   string     `json:"alt,omitempty"`
}

// Author is resolved through a Post's author reference.
type Author struct {
	ID    string `json:"_id,omitempty"`
	Name  string `json:"name"`
	Image *Image `json:"image,omitempty"`
}

// Post is a published content item. Comments holds approved comments only.
type Post struct {
	ID          string     `json:"_id"`
	CreatedAt   time.Time  `json:"_createdAt"`
	Title       string     `json:"title"`
	Slug        Slug       `json:"slug"`
	Description string     `json:"description,omitempty"`
	MainImage   *Image     `json:"mainImage,omitempty"`
	Author      *Author    `json:"author,omitempty"`
	Body        []Block    `json:"body,omitempty"`
	Comments    []*Comment `json:"comments"`
}

// PostRef is the projection returned by path discovery.
type PostRef struct {
	ID   string `json:"_id"`
	Slug Slug   `json:"slug"`
}

// Comment is a reader submission gated by Approved.
type Comment struct {
	ID        string    `json:"_id,omitempty"`
	Type      string    `json:"_type" validate:"eq=comment"`
	CreatedAt time.Time `json:"_createdAt,omitempty"`
	Post      Reference `json:"post"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Comment   string    `json:"comment"`
	Approved  bool      `json:"approved"`
}

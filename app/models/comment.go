package models

import (
	"encoding/json"
	"errors"
	"time"
)

// NewComment builds an unapproved comment referencing postID.
func NewComment(postID, name, email, text string) *Comment {
	return &Comment{
		Type:    TypeComment,
		Post:    Reference{Type: TypeReference, Ref: postID},
		Name:    name,
		Email:   email,
		Comment: text,
	}
}

// Validate checks the document shape accepted by the CMS. Field contents are
// not checked here.
func (c *Comment) Validate() error {
	if err := validate.Struct(c); err != nil {
		return err
	}
	return nil
}

// BeforeCreate sets up any necessary fields before creation
func (c *Comment) BeforeCreate() {
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now().UTC()
	}
}

// Approve marks the comment visible.
func (c *Comment) Approve() error {
	if c.Approved {
		return errors.New("comment already approved")
	}
	c.Approved = true
	return nil
}

// MarshalJSON leaves _createdAt out until the backend has assigned it.
func (c Comment) MarshalJSON() ([]byte, error) {
	type plain Comment
	out := struct {
		plain
		CreatedAt *time.Time `json:"_createdAt,omitempty"`
	}{plain: plain(c)}
	if !c.CreatedAt.IsZero() {
		out.CreatedAt = &c.CreatedAt
	}
	return json.Marshal(out)
}

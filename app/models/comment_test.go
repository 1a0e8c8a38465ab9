package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCommentValidation(t *testing.T) {
	tests := []struct {
		name    string
		comment *Comment
		wantErr bool
	}{
		{
			name:    "valid comment",
			comment: NewComment("p1", "Alice", "a@x.com", "hi"),
			wantErr: false,
		},
		{
			name:    "empty fields are accepted",
			comment: NewComment("p1", "", "", ""),
			wantErr: false,
		},
		{
			name:    "missing post reference",
			comment: NewComment("", "Alice", "a@x.com", "hi"),
			wantErr: true,
		},
		{
			name: "wrong document type",
			comment: &Comment{
				Type: TypePost,
				Post: Reference{Type: TypeReference, Ref: "p1"},
			},
			wantErr: true,
		},
		{
			name: "wrong reference type",
			comment: &Comment{
				Type: TypeComment,
				Post: Reference{Type: "weak", Ref: "p1"},
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.comment.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestNewCommentDefaults(t *testing.T) {
	c := NewComment("p1", "Alice", "a@x.com", "hi")
	assert.Equal(t, TypeComment, c.Type)
	assert.Equal(t, Reference{Type: TypeReference, Ref: "p1"}, c.Post)
	assert.False(t, c.Approved)
}

func TestCommentBeforeCreate(t *testing.T) {
	comment := NewComment("p1", "John Doe", "j@x.com", "Test Comment")

	assert.True(t, comment.CreatedAt.IsZero())
	comment.BeforeCreate()
	assert.False(t, comment.CreatedAt.IsZero())

	fixed := time.Date(2022, 3, 1, 10, 0, 0, 0, time.UTC)
	comment.CreatedAt = fixed
	comment.BeforeCreate()
	assert.Equal(t, fixed, comment.CreatedAt)
}

func TestCommentApprove(t *testing.T) {
	comment := NewComment("p1", "John Doe", "j@x.com", "Test Comment")

	assert.NoError(t, comment.Approve())
	assert.True(t, comment.Approved)
	assert.Error(t, comment.Approve())
}

func TestCommentMarshalOmitsZeroCreatedAt(t *testing.T) {
	data, err := json.Marshal(NewComment("p1", "Alice", "a@x.com", "hi"))
	assert.NoError(t, err)
	assert.JSONEq(t, `{
		"_type": "comment",
		"post": {"_type": "reference", "_ref": "p1"},
		"name": "Alice",
		"email": "a@x.com",
		"comment": "hi",
		"approved": false
	}`, string(data))

	c := NewComment("p1", "Alice", "a@x.com", "hi")
	c.CreatedAt = time.Date(2022, 3, 1, 10, 0, 0, 0, time.UTC)
	data, err = json.Marshal(c)
	assert.NoError(t, err)
	assert.Contains(t, string(data), `"_createdAt":"2022-03-01T10:00:00Z"`)
}

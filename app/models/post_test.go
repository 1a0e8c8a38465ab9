package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostValidation(t *testing.T) {
	tests := []struct {
		name    string
		post    *Post
		wantErr bool
	}{
		{
			name:    "valid post",
			post:    &Post{ID: "p1", Title: "Valid Title", Slug: Slug{Current: "valid-title"}},
			wantErr: false,
		},
		{
			name:    "missing id",
			post:    &Post{Title: "Valid Title", Slug: Slug{Current: "valid-title"}},
			wantErr: true,
		},
		{
			name:    "missing slug",
			post:    &Post{ID: "p1", Title: "Valid Title"},
			wantErr: true,
		},
		{
			name:    "missing title",
			post:    &Post{ID: "p1", Slug: Slug{Current: "valid-title"}},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.post.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestPostBeforeCreate(t *testing.T) {
	post := &Post{ID: "p1", Title: "Test Post"}

	assert.True(t, post.CreatedAt.IsZero())
	post.BeforeCreate()
	assert.False(t, post.CreatedAt.IsZero())
}

func TestPostAddComment(t *testing.T) {
	post := &Post{ID: "p1", Title: "Test Post"}

	approved := NewComment("p1", "Alice", "a@x.com", "hi")
	approved.Approved = true
	pending := NewComment("p1", "Bob", "b@x.com", "hello")
	other := NewComment("p2", "Carol", "c@x.com", "hey")
	other.Approved = true

	assert.True(t, post.AddComment(approved))
	assert.False(t, post.AddComment(pending))
	assert.False(t, post.AddComment(other))
	assert.False(t, post.AddComment(nil))
	assert.Equal(t, []*Comment{approved}, post.Comments)
}

func TestPostDecodesCMSDocument(t *testing.T) {
	raw := `{
		"_id": "p1",
		"_createdAt": "2022-03-01T10:00:00Z",
		"title": "Hello",
		"slug": {"current": "hello"},
		"author": {"name": "Ann", "image": {"_type": "image", "asset": {"_type": "reference", "_ref": "image-abc-10x20-png"}}},
		"body": [{"_type": "block", "style": "h1", "children": [{"_type": "span", "text": "Hi "}, {"_type": "span", "text": "there"}]}],
		"comments": []
	}`

	var post Post
	require.NoError(t, json.Unmarshal([]byte(raw), &post))
	assert.Equal(t, "hello", post.Slug.Current)
	assert.Equal(t, "Ann", post.Author.Name)
	assert.Equal(t, "image-abc-10x20-png", post.Author.Image.Asset.Ref)
	require.Len(t, post.Body, 1)
	assert.Equal(t, "Hi there", post.Body[0].PlainText())
	assert.Equal(t, 2022, post.CreatedAt.Year())
}

func TestBlockMarkDef(t *testing.T) {
	b := Block{
		Type:     TypeBlock,
		ListItem: "bullet",
		MarkDefs: []MarkDef{{Key: "l1", Type: "link", Href: "https://example.com"}},
	}

	assert.True(t, b.IsListItem())
	def, ok := b.MarkDef("l1")
	assert.True(t, ok)
	assert.Equal(t, "https://example.com", def.Href)
	_, ok = b.MarkDef("missing")
	assert.False(t, ok)
}

package cms

import (
	"context"
	"encoding/json"
	"fmt"

	"storyline/app/models"
	"storyline/app/repositories"
)

// LocalClient serves the site's queries from the embedded Badger store.
// It understands PostPathsQuery and PostBySlugQuery only.
type LocalClient struct {
	store *repositories.Store
}

func NewLocalClient(store *repositories.Store) *LocalClient {
	return &LocalClient{store: store}
}

func (c *LocalClient) Fetch(ctx context.Context, query string, params map[string]any, out any) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	var (
		result any
		err    error
	)
	switch query {
	case PostPathsQuery:
		result, err = c.postPaths()
	case PostBySlugQuery:
		slug, _ := params["slug"].(string)
		var post *models.Post
		if post, err = c.postBySlug(slug); post != nil {
			result = post
		}
	default:
		return ErrUnsupportedQuery
	}
	if err != nil {
		return err
	}
	if result == nil {
		return nil
	}
	// Round-trip through JSON so callers decode exactly what the hosted API returns.
	data, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("cms: encoding local result: %w", err)
	}
	return json.Unmarshal(data, out)
}

func (c *LocalClient) postPaths() ([]models.PostRef, error) {
	posts, err := c.store.Posts.List()
	if err != nil {
		return nil, err
	}
	refs := make([]models.PostRef, 0, len(posts))
	for _, p := range posts {
		refs = append(refs, models.PostRef{ID: p.ID, Slug: p.Slug})
	}
	return refs, nil
}

// postBySlug resolves the author reference and recomputes the approved
// comments on every call.
func (c *LocalClient) postBySlug(slug string) (*models.Post, error) {
	record, err := c.store.Posts.GetBySlug(slug)
	if err == repositories.ErrNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	post := record.Post

	if record.AuthorRef != "" {
		author, err := c.store.Authors.GetByID(record.AuthorRef)
		switch {
		case err == nil:
			post.Author = &models.Author{Name: author.Name, Image: author.Image}
		case err != repositories.ErrNotFound:
			return nil, err
		}
	}

	comments, err := c.store.Comments.ListByPost(post.ID, true)
	if err != nil {
		return nil, err
	}
	post.Comments = make([]*models.Comment, 0, len(comments))
	for _, comment := range comments {
		post.AddComment(comment)
	}
	return &post, nil
}

// Create accepts comment documents only.
func (c *LocalClient) Create(ctx context.Context, doc any) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	data, err := json.Marshal(doc)
	if err != nil {
		return "", fmt.Errorf("cms: encoding document: %w", err)
	}
	var comment models.Comment
	if err := json.Unmarshal(data, &comment); err != nil {
		return "", fmt.Errorf("cms: decoding document: %w", err)
	}
	if comment.Type != models.TypeComment {
		return "", fmt.Errorf("cms: unsupported document type %q", comment.Type)
	}
	if err := c.store.Comments.Create(&comment); err != nil {
		return "", err
	}
	return comment.ID, nil
}

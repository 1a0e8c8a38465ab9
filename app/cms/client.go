// Package cms is the content query client. Both implementations speak the
// same contract: run a query with parameters and decode its JSON result, or
// create a document.
package cms

import (
	"context"
	"errors"
	"fmt"
)

// PostPathsQuery returns the id and slug of every post.
const PostPathsQuery = `*[_type == "post"] {
  _id,
  slug {
    current
  },
}`

// PostBySlugQuery returns at most one post for $slug with its author expanded
// and its approved comments computed.
const PostBySlugQuery = `*[_type == "post" && slug.current == $slug][0] {
  _id,
  _createdAt,
  title,
  slug,
  description,
  mainImage,
  author -> {
    name,
    image,
  },
  body,
  'comments': *[
    _type == 'comment' &&
    post._ref == ^._id &&
    approved == true
  ],
}`

var ErrUnsupportedQuery = errors.New("cms: unsupported query")

// Client is the read and write contract against the content backend.
type Client interface {
	// Fetch runs query and decodes the result into out. A null result leaves
	// out untouched.
	Fetch(ctx context.Context, query string, params map[string]any, out any) error
	// Create stores doc and returns the new document id.
	Create(ctx context.Context, doc any) (string, error)
}

// APIError is a non-2xx answer from the backend.
type APIError struct {
	StatusCode int    `json:"statusCode"`
	Message    string `json:"message"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("cms: backend responded %d: %s", e.StatusCode, e.Message)
}

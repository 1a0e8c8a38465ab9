package repositories

import (
	"encoding/json"
	"errors"
	"fmt"

	"storyline/app/models"

	"github.com/dgraph-io/badger/v4"
)

var (
	ErrNotFound  = errors.New("record not found")
	ErrSlugTaken = errors.New("slug already used by another post")
)

const (
	// Key prefixes for different entity types
	PostKeyPrefix         = "post:"
	SlugKeyPrefix         = "slug:"
	AuthorKeyPrefix       = "author:"
	CommentKeyPrefix      = "comment:"
	CommentIndexKeyPrefix = "comment-index:"
)

// PostRecord is a Post as stored, with its author held by reference.
// Author and Comments are never persisted; queries resolve them.
type PostRecord struct {
	models.Post
	AuthorRef string `json:"authorRef,omitempty"`
}

func postKey(id string) []byte {
	return []byte(PostKeyPrefix + id)
}

func slugKey(slug string) []byte {
	return []byte(SlugKeyPrefix + slug)
}

func authorKey(id string) []byte {
	return []byte(AuthorKeyPrefix + id)
}

func commentKey(postID, id string) []byte {
	return []byte(fmt.Sprintf("%s%s:%s", CommentKeyPrefix, postID, id))
}

func commentIndexKey(id string) []byte {
	return []byte(CommentIndexKeyPrefix + id)
}

// getEntity loads and decodes the value at key, mapping a missing key to ErrNotFound.
func getEntity(txn *badger.Txn, key []byte, entity interface{}) error {
	item, err := txn.Get(key)
	if err == badger.ErrKeyNotFound {
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	return item.Value(func(val []byte) error {
		return unmarshalEntity(val, entity)
	})
}

// marshalEntity marshals an entity to JSON
func marshalEntity(entity interface{}) ([]byte, error) {
	data, err := json.Marshal(entity)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal entity: %w", err)
	}
	return data, nil
}

// unmarshalEntity unmarshals JSON data into an entity
func unmarshalEntity(data []byte, entity interface{}) error {
	if err := json.Unmarshal(data, entity); err != nil {
		return fmt.Errorf("failed to unmarshal entity: %w", err)
	}
	return nil
}

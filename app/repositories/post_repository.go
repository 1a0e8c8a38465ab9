package repositories

import (
	"fmt"

	"github.com/dgraph-io/badger/v4"
)

// BadgerPostRepository implements PostRepository using BadgerDB
type BadgerPostRepository struct {
	db *badger.DB
}

// NewBadgerPostRepository creates a new BadgerPostRepository
func NewBadgerPostRepository(db *badger.DB) *BadgerPostRepository {
	return &BadgerPostRepository{db: db}
}

// Put creates or replaces a post and keeps its slug index current.
func (r *BadgerPostRepository) Put(post *PostRecord) error {
	if err := post.Validate(); err != nil {
		return err
	}
	post.BeforeCreate()

	stored := *post
	stored.Author = nil
	stored.Comments = nil

	return r.db.Update(func(txn *badger.Txn) error {
		// Refuse a slug that already routes to a different post
		var ownerID string
		err := getEntity(txn, slugKey(post.Slug.Current), &ownerID)
		switch {
		case err == nil && ownerID != post.ID:
			return fmt.Errorf("%w: %q", ErrSlugTaken, post.Slug.Current)
		case err != nil && err != ErrNotFound:
			return err
		}

		// Drop the old slug if the post is being renamed
		var existing PostRecord
		err = getEntity(txn, postKey(post.ID), &existing)
		if err == nil && existing.Slug.Current != post.Slug.Current {
			if err := txn.Delete(slugKey(existing.Slug.Current)); err != nil {
				return err
			}
		} else if err != nil && err != ErrNotFound {
			return err
		}

		data, err := marshalEntity(&stored)
		if err != nil {
			return err
		}
		if err := txn.Set(postKey(post.ID), data); err != nil {
			return err
		}
		idData, err := marshalEntity(post.ID)
		if err != nil {
			return err
		}
		return txn.Set(slugKey(post.Slug.Current), idData)
	})
}

// GetByID retrieves a post by ID
func (r *BadgerPostRepository) GetByID(id string) (*PostRecord, error) {
	var post PostRecord
	err := r.db.View(func(txn *badger.Txn) error {
		return getEntity(txn, postKey(id), &post)
	})
	if err != nil {
		return nil, err
	}
	return &post, nil
}

// GetBySlug retrieves a post through the slug index
func (r *BadgerPostRepository) GetBySlug(slug string) (*PostRecord, error) {
	var post PostRecord
	err := r.db.View(func(txn *badger.Txn) error {
		var id string
		if err := getEntity(txn, slugKey(slug), &id); err != nil {
			return err
		}
		return getEntity(txn, postKey(id), &post)
	})
	if err != nil {
		return nil, err
	}
	return &post, nil
}

// List retrieves every post in key order
func (r *BadgerPostRepository) List() ([]*PostRecord, error) {
	var posts []*PostRecord
	err := r.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		it := txn.NewIterator(opts)
		defer it.Close()

		prefix := []byte(PostKeyPrefix)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			var post PostRecord
			err := it.Item().Value(func(val []byte) error {
				return unmarshalEntity(val, &post)
			})
			if err != nil {
				return fmt.Errorf("failed to unmarshal post: %w", err)
			}
			posts = append(posts, &post)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return posts, nil
}

// Delete deletes a post by ID along with its slug index entry
func (r *BadgerPostRepository) Delete(id string) error {
	return r.db.Update(func(txn *badger.Txn) error {
		var existing PostRecord
		if err := getEntity(txn, postKey(id), &existing); err != nil {
			return err
		}
		if err := txn.Delete(slugKey(existing.Slug.Current)); err != nil {
			return err
		}
		return txn.Delete(postKey(id))
	})
}

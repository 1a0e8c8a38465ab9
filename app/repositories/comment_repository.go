package repositories

import (
	"fmt"
	"sort"

	"storyline/app/models"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
)

// BadgerCommentRepository implements CommentRepository using BadgerDB.
// Comments live under comment:<postID>:<id> with an id -> postID index.
type BadgerCommentRepository struct {
	db *badger.DB
}

// NewBadgerCommentRepository creates a new BadgerCommentRepository
func NewBadgerCommentRepository(db *badger.DB) *BadgerCommentRepository {
	return &BadgerCommentRepository{db: db}
}

// Create stores a new comment. The parent reference is not checked against
// existing posts.
func (r *BadgerCommentRepository) Create(comment *models.Comment) error {
	if err := comment.Validate(); err != nil {
		return fmt.Errorf("invalid comment document: %w", err)
	}
	if comment.ID == "" {
		comment.ID = uuid.NewString()
	}
	comment.BeforeCreate()

	data, err := marshalEntity(comment)
	if err != nil {
		return err
	}
	idxData, err := marshalEntity(comment.Post.Ref)
	if err != nil {
		return err
	}

	return r.db.Update(func(txn *badger.Txn) error {
		if err := txn.Set(commentKey(comment.Post.Ref, comment.ID), data); err != nil {
			return err
		}
		return txn.Set(commentIndexKey(comment.ID), idxData)
	})
}

// GetByID retrieves a comment by ID
func (r *BadgerCommentRepository) GetByID(id string) (*models.Comment, error) {
	var comment models.Comment
	err := r.db.View(func(txn *badger.Txn) error {
		var postID string
		if err := getEntity(txn, commentIndexKey(id), &postID); err != nil {
			return err
		}
		return getEntity(txn, commentKey(postID, id), &comment)
	})
	if err != nil {
		return nil, err
	}
	return &comment, nil
}

// ListByPost retrieves the comments of a post, oldest first
func (r *BadgerCommentRepository) ListByPost(postID string, approvedOnly bool) ([]*models.Comment, error) {
	prefix := []byte(fmt.Sprintf("%s%s:", CommentKeyPrefix, postID))
	return r.scan(prefix, func(c *models.Comment) bool {
		return !approvedOnly || c.Approved
	})
}

// ListPending retrieves every comment awaiting moderation, oldest first
func (r *BadgerCommentRepository) ListPending() ([]*models.Comment, error) {
	return r.scan([]byte(CommentKeyPrefix), func(c *models.Comment) bool {
		return !c.Approved
	})
}

// Approve flips the approval flag of a comment
func (r *BadgerCommentRepository) Approve(id string) error {
	return r.db.Update(func(txn *badger.Txn) error {
		var postID string
		if err := getEntity(txn, commentIndexKey(id), &postID); err != nil {
			return err
		}
		var comment models.Comment
		if err := getEntity(txn, commentKey(postID, id), &comment); err != nil {
			return err
		}
		if err := comment.Approve(); err != nil {
			return err
		}
		data, err := marshalEntity(&comment)
		if err != nil {
			return err
		}
		return txn.Set(commentKey(postID, id), data)
	})
}

// Delete deletes a comment by ID
func (r *BadgerCommentRepository) Delete(id string) error {
	return r.db.Update(func(txn *badger.Txn) error {
		var postID string
		if err := getEntity(txn, commentIndexKey(id), &postID); err != nil {
			return err
		}
		if err := txn.Delete(commentKey(postID, id)); err != nil {
			return err
		}
		return txn.Delete(commentIndexKey(id))
	})
}

func (r *BadgerCommentRepository) scan(prefix []byte, keep func(*models.Comment) bool) ([]*models.Comment, error) {
	var comments []*models.Comment
	err := r.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			var comment models.Comment
			err := it.Item().Value(func(val []byte) error {
				return unmarshalEntity(val, &comment)
			})
			if err != nil {
				return fmt.Errorf("failed to unmarshal comment: %w", err)
			}
			if keep(&comment) {
				comments = append(comments, &comment)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.SliceStable(comments, func(i, j int) bool {
		return comments[i].CreatedAt.Before(comments[j].CreatedAt)
	})
	return comments, nil
}

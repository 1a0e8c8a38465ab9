package repositories

import (
	"errors"

	"storyline/app/models"

	"github.com/dgraph-io/badger/v4"
)

// BadgerAuthorRepository implements AuthorRepository using BadgerDB
type BadgerAuthorRepository struct {
	db *badger.DB
}

// NewBadgerAuthorRepository creates a new BadgerAuthorRepository
func NewBadgerAuthorRepository(db *badger.DB) *BadgerAuthorRepository {
	return &BadgerAuthorRepository{db: db}
}

// Put creates or replaces an author
func (r *BadgerAuthorRepository) Put(author *models.Author) error {
	if author.ID == "" {
		return errors.New("author id is required")
	}
	data, err := marshalEntity(author)
	if err != nil {
		return err
	}
	return r.db.Update(func(txn *badger.Txn) error {
		return txn.Set(authorKey(author.ID), data)
	})
}

// GetByID retrieves an author by ID
func (r *BadgerAuthorRepository) GetByID(id string) (*models.Author, error) {
	var author models.Author
	err := r.db.View(func(txn *badger.Txn) error {
		return getEntity(txn, authorKey(id), &author)
	})
	if err != nil {
		return nil, err
	}
	return &author, nil
}

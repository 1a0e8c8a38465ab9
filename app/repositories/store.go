package repositories

import (
	"fmt"
	"io"

	"github.com/dgraph-io/badger/v4"
)

// Store bundles the repositories that share one Badger database.
type Store struct {
	db       *badger.DB
	Posts    *BadgerPostRepository
	Authors  *BadgerAuthorRepository
	Comments *BadgerCommentRepository
}

// NewStore wraps an open database.
func NewStore(db *badger.DB) *Store {
	return &Store{
		db:       db,
		Posts:    NewBadgerPostRepository(db),
		Authors:  NewBadgerAuthorRepository(db),
		Comments: NewBadgerCommentRepository(db),
	}
}

// Open opens or creates the database at path.
func Open(path string) (*Store, error) {
	opts := badger.DefaultOptions(path).
		WithLogger(nil).
		WithNumVersionsToKeep(1)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger db at %s: %w", path, err)
	}
	return NewStore(db), nil
}

// OpenInMemory opens a database that lives only as long as the process.
func OpenInMemory() (*Store, error) {
	opts := badger.DefaultOptions("").
		WithInMemory(true).
		WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, err
	}
	return NewStore(db), nil
}

// Backup writes a full backup of the database to w.
func (s *Store) Backup(w io.Writer) error {
	_, err := s.db.Backup(w, 0)
	return err
}

// Load restores a backup produced by Backup.
func (s *Store) Load(r io.Reader) error {
	return s.db.Load(r, 4)
}

// Clear drops every key.
func (s *Store) Clear() error {
	return s.db.DropAll()
}

func (s *Store) Close() error {
	return s.db.Close()
}

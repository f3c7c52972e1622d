package repositories

import (
	"fmt"
	"io"

	"github.com/dgraph-io/badger/v4"
)

// Repository owns the Badger database behind the record stores.
type Repository struct {
	db *badger.DB

	posts    *BadgerPostRepository
	comments *BadgerCommentRepository
	tags     *BadgerTagRepository
	users    *BadgerUserRepository
	folders  *BadgerFolderRepository
}

// Open opens the database at path. With inMemory set the path is ignored
// and nothing touches disk.
func Open(path string, inMemory bool) (*Repository, error) {
	opts := badger.DefaultOptions(path)
	if inMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	}
	opts = opts.
		WithLogger(nil).
		WithSyncWrites(false).
		WithNumVersionsToKeep(1)

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger at %q: %w", path, err)
	}
	return NewRepository(db), nil
}

// NewRepository wires the record stores onto an open database.
func NewRepository(db *badger.DB) *Repository {
	return &Repository{
		db:       db,
		posts:    NewBadgerPostRepository(db),
		comments: NewBadgerCommentRepository(db),
		tags:     NewBadgerTagRepository(db),
		users:    NewBadgerUserRepository(db),
		folders:  NewBadgerFolderRepository(db),
	}
}

func (r *Repository) Posts() *BadgerPostRepository       { return r.posts }
func (r *Repository) Comments() *BadgerCommentRepository { return r.comments }
func (r *Repository) Tags() *BadgerTagRepository         { return r.tags }
func (r *Repository) Users() *BadgerUserRepository       { return r.users }
func (r *Repository) Folders() *BadgerFolderRepository   { return r.folders }

// DB exposes the underlying handle for maintenance tasks.
func (r *Repository) DB() *badger.DB {
	return r.db
}

func (r *Repository) Close() error {
	return r.db.Close()
}

// Clear drops every key, sequences included.
func (r *Repository) Clear() error {
	return r.db.DropAll()
}

// Backup writes a full dump of the record store to w and returns the
// version it was taken at.
func (r *Repository) Backup(w io.Writer) (uint64, error) {
	version, err := r.db.Backup(w, 0)
	if err != nil {
		return 0, fmt.Errorf("failed to back up record store: %w", err)
	}
	return version, nil
}

// Restore replaces the record store's contents with a dump written by Backup.
func (r *Repository) Restore(rd io.Reader) error {
	if err := r.Clear(); err != nil {
		return fmt.Errorf("failed to clear record store: %w", err)
	}
	if err := r.db.Load(rd, 4); err != nil {
		return fmt.Errorf("failed to restore record store: %w", err)
	}
	return nil
}

var (
	_ PostRepository    = (*BadgerPostRepository)(nil)
	_ CommentRepository = (*BadgerCommentRepository)(nil)
	_ TagRepository     = (*BadgerTagRepository)(nil)
	_ UserRepository    = (*BadgerUserRepository)(nil)
	_ FolderRepository  = (*BadgerFolderRepository)(nil)
)

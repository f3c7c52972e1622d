package repositories

import (
	"fmt"
	"strconv"

	"photoshare/app/models"

	"github.com/dgraph-io/badger/v4"
)

// BadgerCommentRepository implements CommentRepository using BadgerDB
type BadgerCommentRepository struct {
	db *badger.DB
}

// NewBadgerCommentRepository creates a new BadgerCommentRepository
func NewBadgerCommentRepository(db *badger.DB) *BadgerCommentRepository {
	return &BadgerCommentRepository{db: db}
}

// postCommentKey indexes a comment under its post for efficient listing.
func postCommentKey(postID, commentID int) []byte {
	return []byte(fmt.Sprintf("%s%010d:%010d", PostCommentKeyPrefix, postID, commentID))
}

func postCommentPrefix(postID int) []byte {
	return []byte(fmt.Sprintf("%s%010d:", PostCommentKeyPrefix, postID))
}

// Create creates a new comment
func (r *BadgerCommentRepository) Create(comment *models.Comment) error {
	return r.db.Update(func(txn *badger.Txn) error {
		id, err := getNextID(txn, CommentSeqKey)
		if err != nil {
			return err
		}
		comment.ID = id
		comment.BeforeCreate()

		data, err := marshalEntity(comment)
		if err != nil {
			return err
		}
		if err := txn.Set(entityKey(CommentKeyPrefix, comment.ID), data); err != nil {
			return err
		}
		return txn.Set(postCommentKey(comment.PostID, comment.ID), nil)
	})
}

// GetByID retrieves a comment by ID
func (r *BadgerCommentRepository) GetByID(id int) (*models.Comment, error) {
	var comment models.Comment
	err := r.db.View(func(txn *badger.Txn) error {
		return getEntity(txn, entityKey(CommentKeyPrefix, id), &comment)
	})
	if err != nil {
		return nil, err
	}
	return &comment, nil
}

// ListByPost retrieves all comments for a post, oldest first
func (r *BadgerCommentRepository) ListByPost(postID int) ([]*models.Comment, error) {
	var comments []*models.Comment
	err := r.db.View(func(txn *badger.Txn) error {
		ids, err := r.commentIDs(txn, postID)
		if err != nil {
			return err
		}
		for _, id := range ids {
			var comment models.Comment
			if err := getEntity(txn, entityKey(CommentKeyPrefix, id), &comment); err != nil {
				if err == ErrNotFound {
					continue
				}
				return fmt.Errorf("failed to load comment %d: %w", id, err)
			}
			comments = append(comments, &comment)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return comments, nil
}

// Update updates an existing comment
func (r *BadgerCommentRepository) Update(comment *models.Comment) error {
	return r.db.Update(func(txn *badger.Txn) error {
		key := entityKey(CommentKeyPrefix, comment.ID)

		var existing models.Comment
		if err := getEntity(txn, key, &existing); err != nil {
			return err
		}
		// A comment never moves between posts.
		comment.PostID = existing.PostID

		data, err := marshalEntity(comment)
		if err != nil {
			return err
		}
		return txn.Set(key, data)
	})
}

// Delete deletes a comment by ID
func (r *BadgerCommentRepository) Delete(id int) error {
	return r.db.Update(func(txn *badger.Txn) error {
		key := entityKey(CommentKeyPrefix, id)

		var existing models.Comment
		if err := getEntity(txn, key, &existing); err != nil {
			return err
		}
		if err := txn.Delete(postCommentKey(existing.PostID, id)); err != nil {
			return err
		}
		return txn.Delete(key)
	})
}

// DeleteByPost removes every comment of a post
func (r *BadgerCommentRepository) DeleteByPost(postID int) error {
	return r.db.Update(func(txn *badger.Txn) error {
		ids, err := r.commentIDs(txn, postID)
		if err != nil {
			return err
		}
		for _, id := range ids {
			if err := txn.Delete(entityKey(CommentKeyPrefix, id)); err != nil {
				return err
			}
			if err := txn.Delete(postCommentKey(postID, id)); err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *BadgerCommentRepository) commentIDs(txn *badger.Txn, postID int) ([]int, error) {
	opts := badger.DefaultIteratorOptions
	opts.PrefetchValues = false
	it := txn.NewIterator(opts)
	defer it.Close()

	var ids []int
	prefix := postCommentPrefix(postID)
	for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
		key := it.Item().Key()
		id, err := strconv.Atoi(string(key[len(prefix):]))
		if err != nil {
			return nil, fmt.Errorf("corrupt comment index key %q: %w", key, err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

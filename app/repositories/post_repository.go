package repositories

import (
	"fmt"
	"sort"

	"photoshare/app/models"

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

// storedPost strips relations that live under their own keys.
func storedPost(post *models.Post) *models.Post {
	cp := *post
	cp.Comments = nil
	return &cp
}

// Create creates a new post
func (r *BadgerPostRepository) Create(post *models.Post) error {
	return r.db.Update(func(txn *badger.Txn) error {
		id, err := getNextID(txn, PostSeqKey)
		if err != nil {
			return err
		}
		post.ID = id
		post.BeforeCreate()

		if post.Image != nil && post.Image.ID == 0 {
			imageID, err := getNextID(txn, ImageSeqKey)
			if err != nil {
				return err
			}
			post.Image.ID = imageID
		}

		data, err := marshalEntity(storedPost(post))
		if err != nil {
			return err
		}
		return txn.Set(entityKey(PostKeyPrefix, post.ID), data)
	})
}

// GetByID retrieves a post by ID
func (r *BadgerPostRepository) GetByID(id int) (*models.Post, error) {
	var post models.Post
	err := r.db.View(func(txn *badger.Txn) error {
		return getEntity(txn, entityKey(PostKeyPrefix, id), &post)
	})
	if err != nil {
		return nil, err
	}
	return &post, nil
}

// FindAll retrieves one page of posts in id order
func (r *BadgerPostRepository) FindAll(req models.PageRequest) (models.Page[*models.Post], error) {
	var posts []*models.Post
	total := 0
	err := r.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()

		offset := req.Offset()
		prefix := []byte(PostKeyPrefix)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			if total >= offset && len(posts) < req.Size {
				var post models.Post
				err := it.Item().Value(func(val []byte) error {
					return unmarshalEntity(val, &post)
				})
				if err != nil {
					return fmt.Errorf("failed to unmarshal post: %w", err)
				}
				posts = append(posts, &post)
			}
			total++
		}
		return nil
	})
	if err != nil {
		return models.Page[*models.Post]{}, err
	}
	return models.NewPage(posts, req, total), nil
}

// FindAllByIDs retrieves the page of posts whose ids are in ids, in id order.
// Unknown ids are skipped.
func (r *BadgerPostRepository) FindAllByIDs(ids []int, req models.PageRequest) (models.Page[*models.Post], error) {
	unique := uniqueSorted(ids)
	var posts []*models.Post
	err := r.db.View(func(txn *badger.Txn) error {
		for _, id := range unique {
			var post models.Post
			err := getEntity(txn, entityKey(PostKeyPrefix, id), &post)
			if err == ErrNotFound {
				continue
			}
			if err != nil {
				return err
			}
			posts = append(posts, &post)
		}
		return nil
	})
	if err != nil {
		return models.Page[*models.Post]{}, err
	}
	return models.Paginate(posts, req), nil
}

// All retrieves every post in id order
func (r *BadgerPostRepository) All() ([]*models.Post, error) {
	var posts []*models.Post
	err := r.db.View(func(txn *badger.Txn) error {
		return scanPrefix(txn, PostKeyPrefix, func(val []byte) error {
			var post models.Post
			if err := unmarshalEntity(val, &post); err != nil {
				return err
			}
			posts = append(posts, &post)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return posts, nil
}

// Update updates an existing post
func (r *BadgerPostRepository) Update(post *models.Post) error {
	return r.db.Update(func(txn *badger.Txn) error {
		key := entityKey(PostKeyPrefix, post.ID)

		found, err := exists(txn, key)
		if err != nil {
			return err
		}
		if !found {
			return ErrNotFound
		}

		if post.Image != nil && post.Image.ID == 0 {
			imageID, err := getNextID(txn, ImageSeqKey)
			if err != nil {
				return err
			}
			post.Image.ID = imageID
		}

		data, err := marshalEntity(storedPost(post))
		if err != nil {
			return err
		}
		return txn.Set(key, data)
	})
}

// Delete deletes a post by ID
func (r *BadgerPostRepository) Delete(id int) error {
	return r.db.Update(func(txn *badger.Txn) error {
		key := entityKey(PostKeyPrefix, id)

		found, err := exists(txn, key)
		if err != nil {
			return err
		}
		if !found {
			return ErrNotFound
		}

		return txn.Delete(key)
	})
}

func uniqueSorted(ids []int) []int {
	seen := make(map[int]struct{}, len(ids))
	out := make([]int, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	sort.Ints(out)
	return out
}

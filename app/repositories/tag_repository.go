package repositories

import (
	"strconv"

	"photoshare/app/models"

	"github.com/dgraph-io/badger/v4"
)

// BadgerTagRepository implements TagRepository using BadgerDB.
// Names are unique, compared case-insensitively.
type BadgerTagRepository struct {
	db *badger.DB
}

// NewBadgerTagRepository creates a new BadgerTagRepository
func NewBadgerTagRepository(db *badger.DB) *BadgerTagRepository {
	return &BadgerTagRepository{db: db}
}

// Create creates a new tag
func (r *BadgerTagRepository) Create(tag *models.Tag) error {
	return r.db.Update(func(txn *badger.Txn) error {
		nk := nameKey(TagNameKeyPrefix, tag.Name)
		taken, err := exists(txn, nk)
		if err != nil {
			return err
		}
		if taken {
			return ErrAlreadyExists
		}

		id, err := getNextID(txn, TagSeqKey)
		if err != nil {
			return err
		}
		tag.ID = id

		data, err := marshalEntity(tag)
		if err != nil {
			return err
		}
		if err := txn.Set(entityKey(TagKeyPrefix, tag.ID), data); err != nil {
			return err
		}
		return txn.Set(nk, []byte(strconv.Itoa(tag.ID)))
	})
}

// GetByID retrieves a tag by ID
func (r *BadgerTagRepository) GetByID(id int) (*models.Tag, error) {
	var tag models.Tag
	err := r.db.View(func(txn *badger.Txn) error {
		return getEntity(txn, entityKey(TagKeyPrefix, id), &tag)
	})
	if err != nil {
		return nil, err
	}
	return &tag, nil
}

// GetByName retrieves a tag by its name
func (r *BadgerTagRepository) GetByName(name string) (*models.Tag, error) {
	var tag models.Tag
	err := r.db.View(func(txn *badger.Txn) error {
		id, err := lookupName(txn, nameKey(TagNameKeyPrefix, name))
		if err != nil {
			return err
		}
		return getEntity(txn, entityKey(TagKeyPrefix, id), &tag)
	})
	if err != nil {
		return nil, err
	}
	return &tag, nil
}

// GetByIDs retrieves the tags that exist among ids, in id order
func (r *BadgerTagRepository) GetByIDs(ids []int) ([]*models.Tag, error) {
	tags := make([]*models.Tag, 0, len(ids))
	err := r.db.View(func(txn *badger.Txn) error {
		for _, id := range uniqueSorted(ids) {
			var tag models.Tag
			err := getEntity(txn, entityKey(TagKeyPrefix, id), &tag)
			if err == ErrNotFound {
				continue
			}
			if err != nil {
				return err
			}
			tags = append(tags, &tag)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return tags, nil
}

// List retrieves all tags in id order
func (r *BadgerTagRepository) List() ([]*models.Tag, error) {
	var tags []*models.Tag
	err := r.db.View(func(txn *badger.Txn) error {
		return scanPrefix(txn, TagKeyPrefix, func(val []byte) error {
			var tag models.Tag
			if err := unmarshalEntity(val, &tag); err != nil {
				return err
			}
			tags = append(tags, &tag)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return tags, nil
}

// lookupName resolves a uniqueness key to the id stored under it.
func lookupName(txn *badger.Txn, key []byte) (int, error) {
	item, err := txn.Get(key)
	if err == badger.ErrKeyNotFound {
		return 0, ErrNotFound
	}
	if err != nil {
		return 0, err
	}
	var id int
	err = item.Value(func(val []byte) error {
		id, err = strconv.Atoi(string(val))
		return err
	})
	return id, err
}

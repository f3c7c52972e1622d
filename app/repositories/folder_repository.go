package repositories

import (
	"fmt"
	"strconv"

	"photoshare/app/models"

	"github.com/dgraph-io/badger/v4"
)

// BadgerFolderRepository implements FolderRepository using BadgerDB
type BadgerFolderRepository struct {
	db *badger.DB
}

// NewBadgerFolderRepository creates a new BadgerFolderRepository
func NewBadgerFolderRepository(db *badger.DB) *BadgerFolderRepository {
	return &BadgerFolderRepository{db: db}
}

func folderTitleKey(ownerID int, title string) []byte {
	return nameKey(fmt.Sprintf("%s%010d:", FolderTitleKeyPrefix, ownerID), title)
}

// Create creates a new folder
func (r *BadgerFolderRepository) Create(folder *models.Folder) error {
	return r.db.Update(func(txn *badger.Txn) error {
		tk := folderTitleKey(folder.OwnerID, folder.Title)
		taken, err := exists(txn, tk)
		if err != nil {
			return err
		}
		if taken {
			return ErrAlreadyExists
		}

		id, err := getNextID(txn, FolderSeqKey)
		if err != nil {
			return err
		}
		folder.ID = id
		folder.BeforeCreate()

		if err := putFolder(txn, folder); err != nil {
			return err
		}
		return txn.Set(tk, []byte(strconv.Itoa(folder.ID)))
	})
}

// GetByID retrieves a folder by ID
func (r *BadgerFolderRepository) GetByID(id int) (*models.Folder, error) {
	var folder *models.Folder
	err := r.db.View(func(txn *badger.Txn) error {
		var err error
		folder, err = getFolder(txn, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return folder, nil
}

// GetByIDs retrieves the folders that exist among ids, in id order
func (r *BadgerFolderRepository) GetByIDs(ids []int) ([]*models.Folder, error) {
	folders := make([]*models.Folder, 0, len(ids))
	err := r.db.View(func(txn *badger.Txn) error {
		for _, id := range uniqueSorted(ids) {
			folder, err := getFolder(txn, id)
			if err == ErrNotFound {
				continue
			}
			if err != nil {
				return err
			}
			folders = append(folders, folder)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return folders, nil
}

// List retrieves all folders in id order
func (r *BadgerFolderRepository) List() ([]*models.Folder, error) {
	return r.scan(func(*models.Folder) bool { return true })
}

// ListByOwner retrieves the folders of one user in id order
func (r *BadgerFolderRepository) ListByOwner(ownerID int) ([]*models.Folder, error) {
	return r.scan(func(f *models.Folder) bool { return f.OwnerID == ownerID })
}

func (r *BadgerFolderRepository) scan(keep func(*models.Folder) bool) ([]*models.Folder, error) {
	folders := []*models.Folder{}
	err := r.db.View(func(txn *badger.Txn) error {
		return scanPrefix(txn, FolderKeyPrefix, func(val []byte) error {
			var folder models.Folder
			if err := unmarshalEntity(val, &folder); err != nil {
				return err
			}
			if keep(&folder) {
				folders = append(folders, &folder)
			}
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return folders, nil
}

// Update saves title, description and members. The owner never changes;
// a new title must still be unique for the owner.
func (r *BadgerFolderRepository) Update(folder *models.Folder) error {
	return r.db.Update(func(txn *badger.Txn) error {
		existing, err := getFolder(txn, folder.ID)
		if err != nil {
			return err
		}
		folder.OwnerID = existing.OwnerID
		folder.CreatedAt = existing.CreatedAt

		oldKey := folderTitleKey(existing.OwnerID, existing.Title)
		newKey := folderTitleKey(folder.OwnerID, folder.Title)
		if string(oldKey) != string(newKey) {
			taken, err := exists(txn, newKey)
			if err != nil {
				return err
			}
			if taken {
				return ErrAlreadyExists
			}
			if err := txn.Delete(oldKey); err != nil {
				return err
			}
			if err := txn.Set(newKey, []byte(strconv.Itoa(folder.ID))); err != nil {
				return err
			}
		}

		folder.SetPosts(folder.PostIDs)
		return putFolder(txn, folder)
	})
}

// Delete deletes a folder by ID
func (r *BadgerFolderRepository) Delete(id int) error {
	return r.db.Update(func(txn *badger.Txn) error {
		folder, err := getFolder(txn, id)
		if err != nil {
			return err
		}
		if err := txn.Delete(folderTitleKey(folder.OwnerID, folder.Title)); err != nil {
			return err
		}
		return txn.Delete(entityKey(FolderKeyPrefix, id))
	})
}

// AddPost adds a member; adding a present member is a no-op.
func (r *BadgerFolderRepository) AddPost(folderID, postID int) error {
	return r.mutateMembers(folderID, func(f *models.Folder) bool { return f.AddPost(postID) })
}

// RemovePost drops a member; removing an absent member is a no-op.
func (r *BadgerFolderRepository) RemovePost(folderID, postID int) error {
	return r.mutateMembers(folderID, func(f *models.Folder) bool { return f.RemovePost(postID) })
}

func (r *BadgerFolderRepository) mutateMembers(folderID int, fn func(*models.Folder) bool) error {
	return r.db.Update(func(txn *badger.Txn) error {
		folder, err := getFolder(txn, folderID)
		if err != nil {
			return err
		}
		if !fn(folder) {
			return nil
		}
		return putFolder(txn, folder)
	})
}

func getFolder(txn *badger.Txn, id int) (*models.Folder, error) {
	var folder models.Folder
	if err := getEntity(txn, entityKey(FolderKeyPrefix, id), &folder); err != nil {
		return nil, err
	}
	return &folder, nil
}

func putFolder(txn *badger.Txn, folder *models.Folder) error {
	data, err := marshalEntity(folder)
	if err != nil {
		return err
	}
	return txn.Set(entityKey(FolderKeyPrefix, folder.ID), data)
}

package repositories

import (
	"strconv"

	"photoshare/app/models"

	"github.com/dgraph-io/badger/v4"
)

// BadgerUserRepository implements UserRepository using BadgerDB
type BadgerUserRepository struct {
	db *badger.DB
}

// NewBadgerUserRepository creates a new BadgerUserRepository
func NewBadgerUserRepository(db *badger.DB) *BadgerUserRepository {
	return &BadgerUserRepository{db: db}
}

// storedUser persists the password hash, which the model hides from JSON.
type storedUser struct {
	models.User
	PasswordHash string `json:"passwordHash"`
}

func toStored(user *models.User) *storedUser {
	return &storedUser{User: *user, PasswordHash: user.PasswordHash}
}

func getUser(txn *badger.Txn, key []byte) (*models.User, error) {
	var su storedUser
	if err := getEntity(txn, key, &su); err != nil {
		return nil, err
	}
	user := su.User
	user.PasswordHash = su.PasswordHash
	return &user, nil
}

// Create creates a new user, rejecting a username that is already taken
func (r *BadgerUserRepository) Create(user *models.User) error {
	return r.db.Update(func(txn *badger.Txn) error {
		nk := nameKey(UsernameKeyPrefix, user.Username)
		taken, err := exists(txn, nk)
		if err != nil {
			return err
		}
		if taken {
			return ErrAlreadyExists
		}

		id, err := getNextID(txn, UserSeqKey)
		if err != nil {
			return err
		}
		user.ID = id
		user.BeforeCreate()

		data, err := marshalEntity(toStored(user))
		if err != nil {
			return err
		}
		if err := txn.Set(entityKey(UserKeyPrefix, user.ID), data); err != nil {
			return err
		}
		return txn.Set(nk, []byte(strconv.Itoa(user.ID)))
	})
}

// GetByID retrieves a user by ID
func (r *BadgerUserRepository) GetByID(id int) (*models.User, error) {
	var user *models.User
	err := r.db.View(func(txn *badger.Txn) (err error) {
		user, err = getUser(txn, entityKey(UserKeyPrefix, id))
		return err
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

// GetByUsername retrieves a user by username
func (r *BadgerUserRepository) GetByUsername(username string) (*models.User, error) {
	var user *models.User
	err := r.db.View(func(txn *badger.Txn) error {
		id, err := lookupName(txn, nameKey(UsernameKeyPrefix, username))
		if err != nil {
			return err
		}
		user, err = getUser(txn, entityKey(UserKeyPrefix, id))
		return err
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

// Update updates an existing user. The username is immutable.
func (r *BadgerUserRepository) Update(user *models.User) error {
	return r.db.Update(func(txn *badger.Txn) error {
		key := entityKey(UserKeyPrefix, user.ID)

		existing, err := getUser(txn, key)
		if err != nil {
			return err
		}
		user.Username = existing.Username
		if user.PasswordHash == "" {
			user.PasswordHash = existing.PasswordHash
		}

		data, err := marshalEntity(toStored(user))
		if err != nil {
			return err
		}
		return txn.Set(key, data)
	})
}

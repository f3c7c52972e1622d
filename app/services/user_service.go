package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"photoshare/app/logging"
	"photoshare/app/models"
	"photoshare/app/repositories"

	"golang.org/x/crypto/bcrypt"
)

// MinPasswordLength is the shortest password accepted on sign-up.
const MinPasswordLength = 8

// UserService manages accounts and their preferred tags.
type UserService struct {
	userRepo repositories.UserRepository
	tagRepo  repositories.TagRepository
}

func NewUserService(userRepo repositories.UserRepository, tagRepo repositories.TagRepository) *UserService {
	return &UserService{userRepo: userRepo, tagRepo: tagRepo}
}

// CreateUser registers a user with a bcrypt-hashed password.
func (s *UserService) CreateUser(ctx context.Context, username, email, password string) (*models.User, error) {
	user := &models.User{
		Username: strings.TrimSpace(username),
		Email:    strings.TrimSpace(email),
	}
	if err := user.Validate(); err != nil {
		return nil, invalid(err)
	}
	if len(password) < MinPasswordLength {
		return nil, invalid(fmt.Errorf("password must be at least %d characters", MinPasswordLength))
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}
	user.PasswordHash = string(hash)

	if err := s.userRepo.Create(user); err != nil {
		if errors.Is(err, repositories.ErrAlreadyExists) {
			return nil, fmt.Errorf("username %q: %w", user.Username, err)
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	logging.Ctx(ctx).Info().Int("user_id", user.ID).Str("username", user.Username).Msg("user created")
	return user, nil
}

func (s *UserService) GetUser(id int) (*models.User, error) {
	return s.userRepo.GetByID(id)
}

// CheckPassword reports whether password matches the user's hash.
func (s *UserService) CheckPassword(user *models.User, password string) bool {
	if user == nil || user.PasswordHash == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) == nil
}

// SetPreferredTags replaces the user's preferred tags, keeping the given order.
func (s *UserService) SetPreferredTags(ctx context.Context, userID int, tagIDs []int) (*models.User, error) {
	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		return nil, err
	}

	preferred := make([]*models.Tag, 0, len(tagIDs))
	if len(tagIDs) > 0 {
		tags, err := s.tagRepo.GetByIDs(tagIDs)
		if err != nil {
			return nil, err
		}
		byID := make(map[int]*models.Tag, len(tags))
		for _, tag := range tags {
			byID[tag.ID] = tag
		}
		seen := make(map[int]bool, len(tagIDs))
		for _, id := range tagIDs {
			tag, ok := byID[id]
			if !ok {
				return nil, fmt.Errorf("tag %d: %w", id, repositories.ErrNotFound)
			}
			if seen[id] {
				continue
			}
			seen[id] = true
			preferred = append(preferred, tag)
		}
	}

	user.PreferredTags = preferred
	if err := s.userRepo.Update(user); err != nil {
		return nil, err
	}
	logging.Ctx(ctx).Info().Int("user_id", userID).Strs("preferred_tags", user.PreferredTagNames()).Msg("preferred tags updated")
	return user, nil
}

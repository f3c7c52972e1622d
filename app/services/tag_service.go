package services

import (
	"errors"
	"fmt"
	"strings"

	"photoshare/app/models"
	"photoshare/app/repositories"
)

// TagService manages the tag catalogue.
type TagService struct {
	tagRepo repositories.TagRepository
}

func NewTagService(tagRepo repositories.TagRepository) *TagService {
	return &TagService{tagRepo: tagRepo}
}

// CreateTag stores a tag with a unique name.
func (s *TagService) CreateTag(name string) (*models.Tag, error) {
	tag := &models.Tag{Name: strings.TrimSpace(name)}
	if err := tag.Validate(); err != nil {
		return nil, invalid(err)
	}
	if err := s.tagRepo.Create(tag); err != nil {
		if errors.Is(err, repositories.ErrAlreadyExists) {
			return nil, fmt.Errorf("tag %q: %w", tag.Name, err)
		}
		return nil, fmt.Errorf("failed to create tag: %w", err)
	}
	return tag, nil
}

func (s *TagService) GetTag(id int) (*models.Tag, error) {
	return s.tagRepo.GetByID(id)
}

func (s *TagService) GetTagByName(name string) (*models.Tag, error) {
	return s.tagRepo.GetByName(name)
}

// ListTags returns every tag in id order. Never nil.
func (s *TagService) ListTags() ([]*models.Tag, error) {
	tags, err := s.tagRepo.List()
	if err != nil {
		return nil, err
	}
	if tags == nil {
		tags = []*models.Tag{}
	}
	return tags, nil
}

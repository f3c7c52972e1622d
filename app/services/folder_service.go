package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"photoshare/app/logging"
	"photoshare/app/models"
	"photoshare/app/repositories"
)

// FolderService manages users' folders. Membership is kept on both sides:
// the folder's PostIDs and each member post's FolderIDs.
type FolderService struct {
	folderRepo repositories.FolderRepository
	postRepo   repositories.PostRepository
	userRepo   repositories.UserRepository
}

func NewFolderService(folderRepo repositories.FolderRepository, postRepo repositories.PostRepository, userRepo repositories.UserRepository) *FolderService {
	return &FolderService{
		folderRepo: folderRepo,
		postRepo:   postRepo,
		userRepo:   userRepo,
	}
}

// ListFolders returns every folder in id order.
func (s *FolderService) ListFolders() ([]*models.Folder, error) {
	return s.folderRepo.List()
}

func (s *FolderService) GetFolder(id int) (*models.Folder, error) {
	return s.folderRepo.GetByID(id)
}

// ListUserFolders returns the folders owned by userID.
func (s *FolderService) ListUserFolders(userID int) ([]*models.Folder, error) {
	if _, err := s.userRepo.GetByID(userID); err != nil {
		return nil, err
	}
	return s.folderRepo.ListByOwner(userID)
}

// CreateFolder stores a folder owned by owner and files the posts it names.
func (s *FolderService) CreateFolder(ctx context.Context, owner *models.User, folder *models.Folder) (*models.Folder, error) {
	if owner == nil {
		return nil, ErrForbidden
	}
	folder.ID = 0
	folder.OwnerID = owner.ID
	folder.Title = strings.TrimSpace(folder.Title)
	folder.SetPosts(folder.PostIDs)
	if err := folder.Validate(); err != nil {
		return nil, invalid(err)
	}
	if err := s.checkPosts(folder.PostIDs); err != nil {
		return nil, err
	}

	if err := s.folderRepo.Create(folder); err != nil {
		if errors.Is(err, repositories.ErrAlreadyExists) {
			return nil, fmt.Errorf("folder %q: %w", folder.Title, err)
		}
		return nil, fmt.Errorf("failed to create folder: %w", err)
	}

	if err := s.refile(folder.ID, folder.PostIDs, nil); err != nil {
		logging.Ctx(ctx).Error().Err(err).Int("folder_id", folder.ID).Msg("filing posts failed, removing folder")
		s.refile(folder.ID, nil, folder.PostIDs)
		if delErr := s.folderRepo.Delete(folder.ID); delErr != nil {
			logging.Ctx(ctx).Error().Err(delErr).Int("folder_id", folder.ID).Msg("failed to remove folder")
		}
		return nil, err
	}

	logging.Ctx(ctx).Info().Int("folder_id", folder.ID).Int("owner_id", owner.ID).Ints("posts", folder.PostIDs).Msg("folder created")
	return folder, nil
}

// UpdateFolder replaces title and description. A nil changes.PostIDs keeps
// the members; an empty one empties the folder. Only the owner may update.
func (s *FolderService) UpdateFolder(ctx context.Context, id int, requester *models.User, changes *models.Folder) (*models.Folder, error) {
	current, err := s.ownedFolder(id, requester)
	if err != nil {
		return nil, err
	}

	folder := *current
	folder.Title = strings.TrimSpace(changes.Title)
	folder.Description = changes.Description
	if changes.PostIDs != nil {
		folder.SetPosts(changes.PostIDs)
	}
	if err := folder.Validate(); err != nil {
		return nil, invalid(err)
	}
	if err := s.checkPosts(folder.PostIDs); err != nil {
		return nil, err
	}

	if err := s.folderRepo.Update(&folder); err != nil {
		return nil, err
	}
	if err := s.refile(id, folder.PostIDs, current.PostIDs); err != nil {
		return nil, err
	}

	logging.Ctx(ctx).Info().Int("folder_id", id).Msg("folder updated")
	return &folder, nil
}

// DeleteFolder removes the folder and takes it off its posts. Only the
// owner may delete.
func (s *FolderService) DeleteFolder(ctx context.Context, id int, requester *models.User) error {
	folder, err := s.ownedFolder(id, requester)
	if err != nil {
		return err
	}
	if err := s.refile(id, nil, folder.PostIDs); err != nil {
		return err
	}
	if err := s.folderRepo.Delete(id); err != nil {
		return err
	}
	logging.Ctx(ctx).Info().Int("folder_id", id).Msg("folder deleted")
	return nil
}

func (s *FolderService) ownedFolder(id int, requester *models.User) (*models.Folder, error) {
	folder, err := s.folderRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if requester == nil || requester.ID != folder.OwnerID {
		return nil, ErrForbidden
	}
	return folder, nil
}

// checkPosts fails with not found on the first unknown post id.
func (s *FolderService) checkPosts(ids []int) error {
	for _, id := range ids {
		if _, err := s.postRepo.GetByID(id); err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				return fmt.Errorf("post %d: %w", id, err)
			}
			return err
		}
	}
	return nil
}

// refile updates the FolderIDs of posts whose membership in folderID
// changed from prev to next. Posts that are gone are skipped.
func (s *FolderService) refile(folderID int, next, prev []int) error {
	added, removed := models.IDDiff(prev, next)
	for _, postID := range added {
		if err := s.updatePost(postID, func(p *models.Post) bool { return p.AddFolder(folderID) }); err != nil {
			return err
		}
	}
	for _, postID := range removed {
		if err := s.updatePost(postID, func(p *models.Post) bool { return p.RemoveFolder(folderID) }); err != nil {
			return err
		}
	}
	return nil
}

func (s *FolderService) updatePost(postID int, fn func(*models.Post) bool) error {
	current, err := s.postRepo.GetByID(postID)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	post := *current
	post.FolderIDs = append([]int{}, current.FolderIDs...)
	if !fn(&post) {
		return nil
	}
	if err := s.postRepo.Update(&post); err != nil {
		return fmt.Errorf("failed to refile post %d: %w", postID, err)
	}
	return nil
}

package services

import (
	"context"
	"errors"
	"fmt"

	"photoshare/app/logging"
	"photoshare/app/models"
	"photoshare/app/repositories"
	"photoshare/app/search"
)

// PostService owns post mutations and keeps the search index in step with
// the record store on every create, update and delete.
type PostService struct {
	postRepo    repositories.PostRepository
	commentRepo repositories.CommentRepository
	tagRepo     repositories.TagRepository
	folderRepo  repositories.FolderRepository
	docs        search.DocumentStore
}

// PostReader is the read side of PostService that feeds hydrate through.
type PostReader interface {
	ListPosts(req models.PageRequest) (models.Page[*models.Post], error)
	ReadAllByIDs(ids []int, req models.PageRequest) (models.Page[*models.Post], error)
}

// NewPostService creates a new PostService
func NewPostService(postRepo repositories.PostRepository, commentRepo repositories.CommentRepository, tagRepo repositories.TagRepository, folderRepo repositories.FolderRepository, docs search.DocumentStore) *PostService {
	return &PostService{
		postRepo:    postRepo,
		commentRepo: commentRepo,
		tagRepo:     tagRepo,
		folderRepo:  folderRepo,
		docs:        docs,
	}
}

// CreatePost validates and stores a post, indexes it and files it into the
// folders named by post.FolderIDs. If indexing or filing fails the record
// and its document are removed again so the stores do not diverge.
func (s *PostService) CreatePost(ctx context.Context, post *models.Post, tagIDs []int) error {
	post.ID = 0
	post.BeforeCreate()
	if err := post.Validate(); err != nil {
		return invalid(err)
	}

	tags, err := s.resolveTags(tagIDs)
	if err != nil {
		return err
	}
	post.SetTags(tags)

	folderIDs, err := s.resolveFolders(post.FolderIDs)
	if err != nil {
		return err
	}
	post.SetFolders(folderIDs)

	if err := s.postRepo.Create(post); err != nil {
		return fmt.Errorf("failed to create post: %w", err)
	}

	if err := s.docs.Save(ctx, search.ToSearchDocument(post)); err != nil {
		logging.Ctx(ctx).Error().Err(err).Int("post_id", post.ID).Msg("indexing new post failed, removing record")
		s.discardRecord(ctx, post.ID)
		return fmt.Errorf("failed to index post: %w", err)
	}

	if err := s.linkFolders(post.ID, post.FolderIDs, nil); err != nil {
		logging.Ctx(ctx).Error().Err(err).Int("post_id", post.ID).Msg("filing new post failed, removing record")
		s.unlinkFolders(ctx, post.ID, post.FolderIDs)
		if delErr := s.docs.DeleteByPostID(ctx, post.ID); delErr != nil {
			logging.Ctx(ctx).Error().Err(delErr).Int("post_id", post.ID).Msg("failed to remove document of unfiled post")
		}
		s.discardRecord(ctx, post.ID)
		return fmt.Errorf("failed to file post: %w", err)
	}

	logging.Ctx(ctx).Info().Int("post_id", post.ID).Strs("tags", post.TagNames()).Ints("folders", post.FolderIDs).Msg("post created")
	return nil
}

func (s *PostService) discardRecord(ctx context.Context, id int) {
	if err := s.postRepo.Delete(id); err != nil {
		logging.Ctx(ctx).Error().Err(err).Int("post_id", id).Msg("failed to remove post record")
	}
}

// GetPost retrieves a post by ID with its comments
func (s *PostService) GetPost(id int) (*models.Post, error) {
	post, err := s.postRepo.GetByID(id)
	if err != nil {
		return nil, err
	}

	comments, err := s.commentRepo.ListByPost(id)
	if err != nil {
		return nil, fmt.Errorf("failed to get comments: %w", err)
	}
	post.Comments = comments

	return post, nil
}

// ListPosts retrieves one page of posts in store order
func (s *PostService) ListPosts(req models.PageRequest) (models.Page[*models.Post], error) {
	return s.postRepo.FindAll(req)
}

// ReadAllByIDs retrieves the page of posts among ids, in store order
func (s *PostService) ReadAllByIDs(ids []int, req models.PageRequest) (models.Page[*models.Post], error) {
	return s.postRepo.FindAllByIDs(ids, req)
}

// UpdatePost applies title, description and image from changes to post id.
// A nil tagIDs keeps the current tags and an empty one clears them;
// changes.FolderIDs works the same way for folder memberships. Both the
// record and its search document must exist.
//
// The document is written first. If the record write then fails the
// previous document is put back.
func (s *PostService) UpdatePost(ctx context.Context, id int, changes *models.Post, tagIDs []int) (*models.Post, error) {
	current, err := s.postRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	prevDoc, err := s.findDocument(ctx, id)
	if err != nil {
		return nil, err
	}

	post := *current
	post.Title = changes.Title
	post.Description = changes.Description
	if changes.Image != nil {
		post.Image = changes.Image
	}
	if err := post.Validate(); err != nil {
		return nil, invalid(err)
	}

	if tagIDs != nil {
		tags, err := s.resolveTags(tagIDs)
		if err != nil {
			return nil, err
		}
		post.SetTags(tags)
	}
	if changes.FolderIDs != nil {
		folderIDs, err := s.resolveFolders(changes.FolderIDs)
		if err != nil {
			return nil, err
		}
		post.SetFolders(folderIDs)
	}

	doc := *prevDoc
	doc.Title = post.Title
	doc.Description = post.Description
	doc.Tags = post.TagNames()
	if err := s.docs.Save(ctx, &doc); err != nil {
		return nil, fmt.Errorf("failed to reindex post %d: %w", id, err)
	}

	if err := s.postRepo.Update(&post); err != nil {
		if restoreErr := s.docs.Save(ctx, prevDoc); restoreErr != nil {
			logging.Ctx(ctx).Error().Err(restoreErr).Int("post_id", id).Msg("failed to restore search document")
		}
		return nil, fmt.Errorf("failed to update post: %w", err)
	}

	if err := s.linkFolders(id, post.FolderIDs, current.FolderIDs); err != nil {
		return nil, fmt.Errorf("failed to refile post %d: %w", id, err)
	}

	logging.Ctx(ctx).Info().Int("post_id", id).Msg("post updated")
	return &post, nil
}

// DeletePost removes a post's search document, then its record, then what
// hangs off the record: folder memberships and comments. Both the record
// and its search document must exist. A failed record delete puts the
// document back.
func (s *PostService) DeletePost(ctx context.Context, id int) error {
	post, err := s.postRepo.GetByID(id)
	if err != nil {
		return err
	}
	doc, err := s.findDocument(ctx, id)
	if err != nil {
		return err
	}

	if err := s.docs.DeleteByPostID(ctx, id); err != nil {
		return fmt.Errorf("failed to delete search document: %w", err)
	}
	if err := s.postRepo.Delete(id); err != nil {
		if restoreErr := s.docs.Save(ctx, doc); restoreErr != nil {
			logging.Ctx(ctx).Error().Err(restoreErr).Int("post_id", id).Msg("failed to restore search document")
		}
		return err
	}

	s.unlinkFolders(ctx, id, post.FolderIDs)
	if err := s.commentRepo.DeleteByPost(id); err != nil {
		return fmt.Errorf("failed to delete comments: %w", err)
	}

	logging.Ctx(ctx).Info().Int("post_id", id).Msg("post deleted")
	return nil
}

// linkFolders brings folder member lists in line with a post moving from
// the folders in prev to the folders in next.
func (s *PostService) linkFolders(postID int, next, prev []int) error {
	added, removed := models.IDDiff(prev, next)
	for _, folderID := range added {
		if err := s.folderRepo.AddPost(folderID, postID); err != nil {
			return fmt.Errorf("folder %d: %w", folderID, err)
		}
	}
	for _, folderID := range removed {
		if err := s.folderRepo.RemovePost(folderID, postID); err != nil && !errors.Is(err, repositories.ErrNotFound) {
			return fmt.Errorf("folder %d: %w", folderID, err)
		}
	}
	return nil
}

// unlinkFolders drops postID from each folder, logging failures. A folder
// that is already gone is skipped.
func (s *PostService) unlinkFolders(ctx context.Context, postID int, folderIDs []int) {
	for _, folderID := range folderIDs {
		err := s.folderRepo.RemovePost(folderID, postID)
		if err != nil && !errors.Is(err, repositories.ErrNotFound) {
			logging.Ctx(ctx).Error().Err(err).Int("post_id", postID).Int("folder_id", folderID).Msg("failed to remove post from folder")
		}
	}
}

func (s *PostService) findDocument(ctx context.Context, postID int) (*models.SearchDocument, error) {
	doc, err := s.docs.FindByPostID(ctx, postID)
	if errors.Is(err, search.ErrDocumentNotFound) {
		return nil, fmt.Errorf("search document for post %d: %w", postID, repositories.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return doc, nil
}

// resolveTags loads tags in the order given; an unknown id is not found.
func (s *PostService) resolveTags(ids []int) ([]*models.Tag, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	tags, err := s.tagRepo.GetByIDs(ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[int]*models.Tag, len(tags))
	for _, tag := range tags {
		byID[tag.ID] = tag
	}
	ordered := make([]*models.Tag, 0, len(ids))
	for _, id := range ids {
		tag, ok := byID[id]
		if !ok {
			return nil, fmt.Errorf("tag %d: %w", id, repositories.ErrNotFound)
		}
		ordered = append(ordered, tag)
	}
	return ordered, nil
}

// resolveFolders checks that every folder id exists and drops repeats.
func (s *PostService) resolveFolders(ids []int) ([]int, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	folders, err := s.folderRepo.GetByIDs(ids)
	if err != nil {
		return nil, err
	}
	known := make(map[int]bool, len(folders))
	for _, folder := range folders {
		known[folder.ID] = true
	}
	for _, id := range ids {
		if !known[id] {
			return nil, fmt.Errorf("folder %d: %w", id, repositories.ErrNotFound)
		}
	}
	return ids, nil
}

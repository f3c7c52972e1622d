package services

import (
	"context"
	"fmt"
	"strings"

	"photoshare/app/logging"
	"photoshare/app/models"
	"photoshare/app/repositories"
)

// CommentService handles business logic for comments
type CommentService struct {
	commentRepo repositories.CommentRepository
	postRepo    repositories.PostRepository
}

// NewCommentService creates a new CommentService
func NewCommentService(commentRepo repositories.CommentRepository, postRepo repositories.PostRepository) *CommentService {
	return &CommentService{
		commentRepo: commentRepo,
		postRepo:    postRepo,
	}
}

// CreateComment adds a comment by author to a post
func (s *CommentService) CreateComment(ctx context.Context, postID int, author *models.User, text string) (*models.Comment, error) {
	if author == nil {
		return nil, ErrForbidden
	}
	if _, err := s.postRepo.GetByID(postID); err != nil {
		return nil, err
	}

	comment := &models.Comment{
		PostID:         postID,
		AuthorUsername: author.Username,
		Text:           strings.TrimSpace(text),
	}
	comment.BeforeCreate()
	if err := comment.Validate(); err != nil {
		return nil, invalid(err)
	}

	if err := s.commentRepo.Create(comment); err != nil {
		return nil, fmt.Errorf("failed to create comment: %w", err)
	}
	logging.Ctx(ctx).Debug().Int("post_id", postID).Int("comment_id", comment.ID).Msg("comment created")
	return comment, nil
}

// GetComment retrieves a comment by ID
func (s *CommentService) GetComment(id int) (*models.Comment, error) {
	return s.commentRepo.GetByID(id)
}

// ListPostComments retrieves all comments for a post
func (s *CommentService) ListPostComments(postID int) ([]*models.Comment, error) {
	if _, err := s.postRepo.GetByID(postID); err != nil {
		return nil, err
	}
	return s.commentRepo.ListByPost(postID)
}

// UpdateComment replaces the text of a comment. Only its author may do so.
func (s *CommentService) UpdateComment(ctx context.Context, postID, commentID int, requester *models.User, text string) (*models.Comment, error) {
	comment, err := s.ownedComment(postID, commentID, requester)
	if err != nil {
		return nil, err
	}

	comment.Text = strings.TrimSpace(text)
	if err := comment.Validate(); err != nil {
		return nil, invalid(err)
	}
	if err := s.commentRepo.Update(comment); err != nil {
		return nil, err
	}
	return comment, nil
}

// DeleteComment deletes a comment. Only its author may do so.
func (s *CommentService) DeleteComment(ctx context.Context, postID, commentID int, requester *models.User) error {
	if _, err := s.ownedComment(postID, commentID, requester); err != nil {
		return err
	}
	if err := s.commentRepo.Delete(commentID); err != nil {
		return err
	}
	logging.Ctx(ctx).Debug().Int("post_id", postID).Int("comment_id", commentID).Msg("comment deleted")
	return nil
}

// ownedComment loads a comment of postID and checks requester wrote it.
func (s *CommentService) ownedComment(postID, commentID int, requester *models.User) (*models.Comment, error) {
	if requester == nil {
		return nil, ErrForbidden
	}
	comment, err := s.commentRepo.GetByID(commentID)
	if err != nil {
		return nil, err
	}
	if comment.PostID != postID {
		return nil, fmt.Errorf("comment %d on post %d: %w", commentID, postID, repositories.ErrNotFound)
	}
	if !strings.EqualFold(comment.AuthorUsername, requester.Username) {
		return nil, ErrForbidden
	}
	return comment, nil
}

package services

import (
	"context"
	"sync"
	"testing"

	"photoshare/app/models"
	repomock "photoshare/app/repositories/mock"
	searchmock "photoshare/app/search/mock"

	"github.com/stretchr/testify/require"
)

// stubAssociations is a TagAssociationClient double.
type stubAssociations struct {
	mu       sync.Mutex
	calls    int
	received []string
	tags     []string
	err      error
}

func (s *stubAssociations) GetAssociations(ctx context.Context, tags []string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	s.received = tags
	return s.tags, s.err
}

func (s *stubAssociations) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

type fixture struct {
	posts    *repomock.PostRepository
	comments *repomock.CommentRepository
	tags     *repomock.TagRepository
	users    *repomock.UserRepository
	folders  *repomock.FolderRepository
	docs     *searchmock.DocumentStore
}

func newFixture() *fixture {
	return &fixture{
		posts:    repomock.NewPostRepository(),
		comments: repomock.NewCommentRepository(),
		tags:     repomock.NewTagRepository(),
		users:    repomock.NewUserRepository(),
		folders:  repomock.NewFolderRepository(),
		docs:     searchmock.NewDocumentStore(),
	}
}

// seedPost stores a post directly in the record store, bypassing the index.
func (f *fixture) seedPost(t *testing.T, title string, tagNames ...string) *models.Post {
	t.Helper()
	post := &models.Post{Title: title, Description: title + " description"}
	for _, name := range tagNames {
		tag, err := f.tags.GetByName(name)
		if err != nil {
			tag = &models.Tag{Name: name}
			require.NoError(t, f.tags.Create(tag))
		}
		post.Tags = append(post.Tags, tag)
	}
	require.NoError(t, f.posts.Create(post))
	return post
}

// reader hydrates through a PostService over the fixture's stores.
func (f *fixture) reader() *PostService {
	return NewPostService(f.posts, f.comments, f.tags, f.folders, f.docs)
}

func pageIDs(page models.Page[*models.Post]) []int {
	ids := make([]int, 0, len(page.Content))
	for _, post := range page.Content {
		ids = append(ids, post.ID)
	}
	return ids
}

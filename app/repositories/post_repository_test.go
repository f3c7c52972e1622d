package repositories

import (
	"fmt"
	"testing"

	"photoshare/app/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRepository(t *testing.T) *Repository {
	t.Helper()
	repo, err := Open("", true)
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })
	return repo
}

func seedPosts(t *testing.T, repo *BadgerPostRepository, n int) []*models.Post {
	t.Helper()
	posts := make([]*models.Post, 0, n)
	for i := 1; i <= n; i++ {
		post := &models.Post{Title: fmt.Sprintf("Post %d", i), Description: "desc"}
		require.NoError(t, repo.Create(post))
		posts = append(posts, post)
	}
	return posts
}

func TestPostRepository(t *testing.T) {
	t.Run("create and get post", func(t *testing.T) {
		repo := newTestRepository(t).Posts()

		post := &models.Post{
			Title:       "Sunset",
			Description: "Red sky over the bay",
			Tags:        []*models.Tag{{ID: 1, Name: "sunset"}},
			Image:       &models.Image{URL: "https://img.example.com/1.jpg"},
			Comments:    []*models.Comment{{Text: "not persisted here"}},
		}
		require.NoError(t, repo.Create(post))
		assert.Equal(t, 1, post.ID)
		assert.Equal(t, 1, post.Image.ID)
		assert.False(t, post.CreatedAt.IsZero())

		retrieved, err := repo.GetByID(post.ID)
		require.NoError(t, err)
		assert.Equal(t, post.Title, retrieved.Title)
		assert.Equal(t, post.Description, retrieved.Description)
		assert.Equal(t, []string{"sunset"}, retrieved.TagNames())
		assert.Equal(t, "https://img.example.com/1.jpg", retrieved.Image.URL)
		assert.Empty(t, retrieved.Comments)
	})

	t.Run("get missing post", func(t *testing.T) {
		repo := newTestRepository(t).Posts()
		_, err := repo.GetByID(42)
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("update post", func(t *testing.T) {
		repo := newTestRepository(t).Posts()
		post := seedPosts(t, repo, 1)[0]

		post.Title = "Updated Title"
		require.NoError(t, repo.Update(post))

		updated, err := repo.GetByID(post.ID)
		require.NoError(t, err)
		assert.Equal(t, "Updated Title", updated.Title)

		missing := &models.Post{ID: 99, Title: "ghost"}
		assert.ErrorIs(t, repo.Update(missing), ErrNotFound)
	})

	t.Run("delete post", func(t *testing.T) {
		repo := newTestRepository(t).Posts()
		post := seedPosts(t, repo, 1)[0]

		require.NoError(t, repo.Delete(post.ID))
		_, err := repo.GetByID(post.ID)
		assert.ErrorIs(t, err, ErrNotFound)
		assert.ErrorIs(t, repo.Delete(post.ID), ErrNotFound)
	})

	t.Run("find all pages in id order", func(t *testing.T) {
		repo := newTestRepository(t).Posts()
		seedPosts(t, repo, 12)

		page, err := repo.FindAll(models.NewPageRequest(1, 5))
		require.NoError(t, err)
		assert.Equal(t, 12, page.TotalElements)
		assert.Equal(t, 3, page.TotalPages)
		require.Len(t, page.Content, 5)
		assert.Equal(t, 6, page.Content[0].ID)
		assert.Equal(t, 10, page.Content[4].ID)

		last, err := repo.FindAll(models.NewPageRequest(2, 5))
		require.NoError(t, err)
		assert.Len(t, last.Content, 2)

		beyond, err := repo.FindAll(models.NewPageRequest(9, 5))
		require.NoError(t, err)
		assert.Empty(t, beyond.Content)
		assert.Equal(t, 12, beyond.TotalElements)
	})

	t.Run("find all by ids keeps store order", func(t *testing.T) {
		repo := newTestRepository(t).Posts()
		seedPosts(t, repo, 5)

		page, err := repo.FindAllByIDs([]int{4, 2, 99, 4}, models.NewPageRequest(0, 10))
		require.NoError(t, err)
		require.Len(t, page.Content, 2)
		assert.Equal(t, 2, page.Content[0].ID)
		assert.Equal(t, 4, page.Content[1].ID)
		assert.Equal(t, 2, page.TotalElements)

		empty, err := repo.FindAllByIDs(nil, models.NewPageRequest(0, 10))
		require.NoError(t, err)
		assert.True(t, empty.IsEmpty())
	})

	t.Run("all", func(t *testing.T) {
		repo := newTestRepository(t).Posts()
		all, err := repo.All()
		require.NoError(t, err)
		assert.Empty(t, all)

		seedPosts(t, repo, 3)
		all, err = repo.All()
		require.NoError(t, err)
		assert.Len(t, all, 3)
	})
}

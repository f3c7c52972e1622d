package services

import (
	"context"
	"errors"
	"testing"

	"photoshare/app/models"
	"photoshare/app/repositories"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newPostService(f *fixture) *PostService {
	return f.reader()
}

func createTag(t *testing.T, f *fixture, name string) *models.Tag {
	t.Helper()
	tag := &models.Tag{Name: name}
	require.NoError(t, f.tags.Create(tag))
	return tag
}

func TestCreatePost(t *testing.T) {
	ctx := context.Background()

	t.Run("stores and indexes", func(t *testing.T) {
		f := newFixture()
		svc := newPostService(f)
		sea := createTag(t, f, "sea")
		car := createTag(t, f, "car")

		post := &models.Post{Title: "Harbour", Description: "Boats at dawn"}
		require.NoError(t, svc.CreatePost(ctx, post, []int{car.ID, sea.ID, car.ID}))
		assert.NotZero(t, post.ID)
		assert.False(t, post.CreatedAt.IsZero())
		assert.Equal(t, []string{"car", "sea"}, post.TagNames())

		doc, err := f.docs.FindByPostID(ctx, post.ID)
		require.NoError(t, err)
		assert.Equal(t, "Harbour", doc.Title)
		assert.Equal(t, "Boats at dawn", doc.Description)
		assert.Equal(t, []string{"car", "sea"}, doc.Tags)
		assert.NotEmpty(t, doc.DocumentID)
	})

	t.Run("invalid post", func(t *testing.T) {
		f := newFixture()
		err := newPostService(f).CreatePost(ctx, &models.Post{Title: ""}, nil)
		assert.ErrorIs(t, err, ErrInvalidInput)
		assert.Equal(t, 0, f.docs.Calls("Save"))
	})

	t.Run("unknown tag", func(t *testing.T) {
		f := newFixture()
		err := newPostService(f).CreatePost(ctx, &models.Post{Title: "Tagged"}, []int{42})
		assert.ErrorIs(t, err, repositories.ErrNotFound)
		all, _ := f.posts.All()
		assert.Empty(t, all)
	})

	t.Run("index failure removes the record", func(t *testing.T) {
		f := newFixture()
		f.docs.Err = errors.New("index offline")
		err := newPostService(f).CreatePost(ctx, &models.Post{Title: "Lost"}, nil)
		assert.ErrorIs(t, err, f.docs.Err)
		all, _ := f.posts.All()
		assert.Empty(t, all)
	})
}

func TestGetPostAttachesComments(t *testing.T) {
	f := newFixture()
	svc := newPostService(f)
	post := f.seedPost(t, "With comments")
	require.NoError(t, f.comments.Create(&models.Comment{PostID: post.ID, AuthorUsername: "ann", Text: "nice"}))
	require.NoError(t, f.comments.Create(&models.Comment{PostID: post.ID + 1, AuthorUsername: "ann", Text: "elsewhere"}))

	got, err := svc.GetPost(post.ID)
	require.NoError(t, err)
	require.Len(t, got.Comments, 1)
	assert.Equal(t, "nice", got.Comments[0].Text)

	_, err = svc.GetPost(999)
	assert.ErrorIs(t, err, repositories.ErrNotFound)
}

func TestListPostsAndReadAllByIDs(t *testing.T) {
	f := newFixture()
	svc := newPostService(f)
	a := f.seedPost(t, "a")
	b := f.seedPost(t, "b")
	c := f.seedPost(t, "c")

	page, err := svc.ListPosts(models.NewPageRequest(0, 2))
	require.NoError(t, err)
	assert.Equal(t, []int{a.ID, b.ID}, pageIDs(page))
	assert.Equal(t, 3, page.TotalElements)

	page, err = svc.ReadAllByIDs([]int{c.ID, a.ID, 404}, models.NewPageRequest(0, 10))
	require.NoError(t, err)
	assert.Equal(t, []int{a.ID, c.ID}, pageIDs(page))
}

func TestUpdatePost(t *testing.T) {
	ctx := context.Background()

	t.Run("updates record and document", func(t *testing.T) {
		f := newFixture()
		svc := newPostService(f)
		sea := createTag(t, f, "sea")
		love := createTag(t, f, "love")
		post := &models.Post{Title: "Before", Description: "old"}
		require.NoError(t, svc.CreatePost(ctx, post, []int{sea.ID}))
		before, err := f.docs.FindByPostID(ctx, post.ID)
		require.NoError(t, err)

		updated, err := svc.UpdatePost(ctx, post.ID, &models.Post{Title: "After", Description: "new"}, []int{love.ID})
		require.NoError(t, err)
		assert.Equal(t, "After", updated.Title)
		assert.Equal(t, []string{"love"}, updated.TagNames())

		doc, err := f.docs.FindByPostID(ctx, post.ID)
		require.NoError(t, err)
		assert.Equal(t, before.DocumentID, doc.DocumentID)
		assert.Equal(t, "After", doc.Title)
		assert.Equal(t, "new", doc.Description)
		assert.Equal(t, []string{"love"}, doc.Tags)
	})

	t.Run("nil tags keep current tags", func(t *testing.T) {
		f := newFixture()
		svc := newPostService(f)
		sea := createTag(t, f, "sea")
		post := &models.Post{Title: "Keep"}
		require.NoError(t, svc.CreatePost(ctx, post, []int{sea.ID}))

		updated, err := svc.UpdatePost(ctx, post.ID, &models.Post{Title: "Kept"}, nil)
		require.NoError(t, err)
		assert.Equal(t, []string{"sea"}, updated.TagNames())

		updated, err = svc.UpdatePost(ctx, post.ID, &models.Post{Title: "Cleared"}, []int{})
		require.NoError(t, err)
		assert.Empty(t, updated.TagNames())
		doc, err := f.docs.FindByPostID(ctx, post.ID)
		require.NoError(t, err)
		assert.Empty(t, doc.Tags)
	})

	t.Run("missing record", func(t *testing.T) {
		f := newFixture()
		_, err := newPostService(f).UpdatePost(ctx, 7, &models.Post{Title: "x"}, nil)
		assert.ErrorIs(t, err, repositories.ErrNotFound)
	})

	t.Run("missing document", func(t *testing.T) {
		f := newFixture()
		post := f.seedPost(t, "Unindexed")
		_, err := newPostService(f).UpdatePost(ctx, post.ID, &models.Post{Title: "x"}, nil)
		assert.ErrorIs(t, err, repositories.ErrNotFound)
		got, _ := f.posts.GetByID(post.ID)
		assert.Equal(t, "Unindexed", got.Title)
	})

	t.Run("record failure restores the document", func(t *testing.T) {
		f := newFixture()
		svc := newPostService(f)
		sea := createTag(t, f, "sea")
		post := &models.Post{Title: "Stable", Description: "as stored"}
		require.NoError(t, svc.CreatePost(ctx, post, []int{sea.ID}))
		before, err := f.docs.FindByPostID(ctx, post.ID)
		require.NoError(t, err)

		f.posts.UpdateErr = errors.New("disk full")
		_, err = svc.UpdatePost(ctx, post.ID, &models.Post{Title: "Changed", Description: "new"}, []int{})
		assert.ErrorIs(t, err, f.posts.UpdateErr)

		doc, err := f.docs.FindByPostID(ctx, post.ID)
		require.NoError(t, err)
		assert.Equal(t, before, doc)
		got, err := f.posts.GetByID(post.ID)
		require.NoError(t, err)
		assert.Equal(t, "Stable", got.Title)
		assert.Equal(t, []string{"sea"}, got.TagNames())
	})

	t.Run("index failure leaves the record alone", func(t *testing.T) {
		f := newFixture()
		svc := newPostService(f)
		post := &models.Post{Title: "Stable"}
		require.NoError(t, svc.CreatePost(ctx, post, nil))

		f.docs.Errs["Save"] = errors.New("index down")
		_, err := svc.UpdatePost(ctx, post.ID, &models.Post{Title: "Changed"}, nil)
		assert.ErrorIs(t, err, f.docs.Errs["Save"])
		got, err := f.posts.GetByID(post.ID)
		require.NoError(t, err)
		assert.Equal(t, "Stable", got.Title)
	})

	t.Run("invalid changes", func(t *testing.T) {
		f := newFixture()
		svc := newPostService(f)
		post := &models.Post{Title: "Valid"}
		require.NoError(t, svc.CreatePost(ctx, post, nil))
		_, err := svc.UpdatePost(ctx, post.ID, &models.Post{Title: ""}, nil)
		assert.ErrorIs(t, err, ErrInvalidInput)
	})
}

func TestDeletePost(t *testing.T) {
	ctx := context.Background()

	t.Run("removes record, document and comments", func(t *testing.T) {
		f := newFixture()
		svc := newPostService(f)
		post := &models.Post{Title: "Doomed"}
		require.NoError(t, svc.CreatePost(ctx, post, nil))
		require.NoError(t, f.comments.Create(&models.Comment{PostID: post.ID, AuthorUsername: "ann", Text: "bye"}))

		require.NoError(t, svc.DeletePost(ctx, post.ID))

		_, err := f.posts.GetByID(post.ID)
		assert.ErrorIs(t, err, repositories.ErrNotFound)
		_, err = f.docs.FindByPostID(ctx, post.ID)
		assert.Error(t, err)
		comments, err := f.comments.ListByPost(post.ID)
		require.NoError(t, err)
		assert.Empty(t, comments)
	})

	t.Run("index failure keeps record and comments", func(t *testing.T) {
		f := newFixture()
		svc := newPostService(f)
		post := &models.Post{Title: "Survivor"}
		require.NoError(t, svc.CreatePost(ctx, post, nil))
		require.NoError(t, f.comments.Create(&models.Comment{PostID: post.ID, AuthorUsername: "ann", Text: "still here"}))

		f.docs.Errs["DeleteByPostID"] = errors.New("index down")
		err := svc.DeletePost(ctx, post.ID)
		assert.ErrorIs(t, err, f.docs.Errs["DeleteByPostID"])

		_, err = f.posts.GetByID(post.ID)
		assert.NoError(t, err)
		_, err = f.docs.FindByPostID(ctx, post.ID)
		assert.NoError(t, err)
		comments, err := f.comments.ListByPost(post.ID)
		require.NoError(t, err)
		assert.Len(t, comments, 1)
	})

	t.Run("record failure restores the document", func(t *testing.T) {
		f := newFixture()
		svc := newPostService(f)
		post := &models.Post{Title: "Pinned"}
		require.NoError(t, svc.CreatePost(ctx, post, nil))
		require.NoError(t, f.comments.Create(&models.Comment{PostID: post.ID, AuthorUsername: "ann", Text: "kept"}))
		before, err := f.docs.FindByPostID(ctx, post.ID)
		require.NoError(t, err)

		f.posts.DeleteErr = errors.New("disk full")
		err = svc.DeletePost(ctx, post.ID)
		assert.ErrorIs(t, err, f.posts.DeleteErr)

		doc, err := f.docs.FindByPostID(ctx, post.ID)
		require.NoError(t, err)
		assert.Equal(t, before.DocumentID, doc.DocumentID)
		comments, err := f.comments.ListByPost(post.ID)
		require.NoError(t, err)
		assert.Len(t, comments, 1)
	})

	t.Run("missing document leaves record alone", func(t *testing.T) {
		f := newFixture()
		post := f.seedPost(t, "Unindexed")
		err := newPostService(f).DeletePost(ctx, post.ID)
		assert.ErrorIs(t, err, repositories.ErrNotFound)
		_, err = f.posts.GetByID(post.ID)
		assert.NoError(t, err)
		assert.Equal(t, 0, f.docs.Calls("DeleteByPostID"))
	})

	t.Run("missing record", func(t *testing.T) {
		f := newFixture()
		err := newPostService(f).DeletePost(ctx, 3)
		assert.ErrorIs(t, err, repositories.ErrNotFound)
	})
}

func TestPostFolderMembership(t *testing.T) {
	ctx := context.Background()

	newFolder := func(t *testing.T, f *fixture, title string) *models.Folder {
		t.Helper()
		folder := &models.Folder{Title: title, OwnerID: 1}
		require.NoError(t, f.folders.Create(folder))
		return folder
	}
	members := func(t *testing.T, f *fixture, id int) []int {
		t.Helper()
		folder, err := f.folders.GetByID(id)
		require.NoError(t, err)
		return folder.PostIDs
	}

	t.Run("create files the post", func(t *testing.T) {
		f := newFixture()
		trips := newFolder(t, f, "Trips")
		post := &models.Post{Title: "Alps", FolderIDs: []int{trips.ID, trips.ID}}
		require.NoError(t, newPostService(f).CreatePost(ctx, post, nil))
		assert.Equal(t, []int{trips.ID}, post.FolderIDs)
		assert.Equal(t, []int{post.ID}, members(t, f, trips.ID))
	})

	t.Run("unknown folder", func(t *testing.T) {
		f := newFixture()
		err := newPostService(f).CreatePost(ctx, &models.Post{Title: "Lost", FolderIDs: []int{9}}, nil)
		assert.ErrorIs(t, err, repositories.ErrNotFound)
		all, _ := f.posts.All()
		assert.Empty(t, all)
		assert.Equal(t, 0, f.docs.Calls("Save"))
	})

	t.Run("update moves between folders", func(t *testing.T) {
		f := newFixture()
		svc := newPostService(f)
		trips := newFolder(t, f, "Trips")
		food := newFolder(t, f, "Food")
		post := &models.Post{Title: "Pasta", FolderIDs: []int{trips.ID}}
		require.NoError(t, svc.CreatePost(ctx, post, nil))

		updated, err := svc.UpdatePost(ctx, post.ID, &models.Post{Title: "Pasta"}, nil)
		require.NoError(t, err)
		assert.Equal(t, []int{trips.ID}, updated.FolderIDs, "nil folders keep membership")

		updated, err = svc.UpdatePost(ctx, post.ID, &models.Post{Title: "Pasta", FolderIDs: []int{food.ID}}, nil)
		require.NoError(t, err)
		assert.Equal(t, []int{food.ID}, updated.FolderIDs)
		assert.Empty(t, members(t, f, trips.ID))
		assert.Equal(t, []int{post.ID}, members(t, f, food.ID))

		_, err = svc.UpdatePost(ctx, post.ID, &models.Post{Title: "Pasta", FolderIDs: []int{77}}, nil)
		assert.ErrorIs(t, err, repositories.ErrNotFound)
		assert.Equal(t, []int{post.ID}, members(t, f, food.ID))

		updated, err = svc.UpdatePost(ctx, post.ID, &models.Post{Title: "Pasta", FolderIDs: []int{}}, nil)
		require.NoError(t, err)
		assert.Empty(t, updated.FolderIDs)
		assert.Empty(t, members(t, f, food.ID))
	})

	t.Run("delete unfiles the post", func(t *testing.T) {
		f := newFixture()
		svc := newPostService(f)
		trips := newFolder(t, f, "Trips")
		post := &models.Post{Title: "Gone", FolderIDs: []int{trips.ID}}
		require.NoError(t, svc.CreatePost(ctx, post, nil))

		require.NoError(t, svc.DeletePost(ctx, post.ID))
		assert.Empty(t, members(t, f, trips.ID))
	})
}

package controllers

import (
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"photoshare/app/middleware"
	"photoshare/app/models"
	repomock "photoshare/app/repositories/mock"
	searchmock "photoshare/app/search/mock"
	"photoshare/app/services"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/require"
)

type associationStub struct {
	tags []string
	err  error
}

func (s *associationStub) GetAssociations(ctx context.Context, tags []string) ([]string, error) {
	return s.tags, s.err
}

type testEnv struct {
	router       *mux.Router
	posts        *repomock.PostRepository
	comments     *repomock.CommentRepository
	tags         *repomock.TagRepository
	users        *repomock.UserRepository
	folders      *repomock.FolderRepository
	docs         *searchmock.DocumentStore
	associations *associationStub
	postService  *services.PostService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	env := &testEnv{
		posts:        repomock.NewPostRepository(),
		comments:     repomock.NewCommentRepository(),
		tags:         repomock.NewTagRepository(),
		users:        repomock.NewUserRepository(),
		folders:      repomock.NewFolderRepository(),
		docs:         searchmock.NewDocumentStore(),
		associations: &associationStub{},
	}
	env.postService = services.NewPostService(env.posts, env.comments, env.tags, env.folders, env.docs)

	paging := Paging{DefaultSize: 10, MaxSize: 20}
	postController := NewPostController(env.postService, services.NewSearchService(env.docs, env.postService), paging)
	commentController := NewCommentController(services.NewCommentService(env.comments, env.posts))
	tagController := NewTagController(services.NewTagService(env.tags))
	userController := NewUserController(services.NewUserService(env.users, env.tags))
	folderController := NewFolderController(services.NewFolderService(env.folders, env.posts, env.users))
	recommendationController := NewRecommendationController(
		services.NewRecommendationService(env.postService, env.docs, env.associations), paging)

	router := mux.NewRouter()
	router.Use(middleware.CurrentUser(env.users))
	router.HandleFunc("/posts", postController.Index).Methods("GET")
	router.HandleFunc("/posts", postController.Create).Methods("POST")
	router.HandleFunc("/posts/search", postController.Search).Methods("POST")
	router.HandleFunc("/posts/{id:[0-9]+}", postController.Show).Methods("GET")
	router.HandleFunc("/posts/{id:[0-9]+}", postController.Edit).Methods("PUT")
	router.HandleFunc("/posts/{id:[0-9]+}", postController.Delete).Methods("DELETE")
	router.HandleFunc("/posts/{postId:[0-9]+}/comments", commentController.Index).Methods("GET")
	router.HandleFunc("/posts/{postId:[0-9]+}/comments", commentController.Create).Methods("POST")
	router.HandleFunc("/posts/{postId:[0-9]+}/comments/{commentId:[0-9]+}", commentController.Update).Methods("PUT")
	router.HandleFunc("/posts/{postId:[0-9]+}/comments/{commentId:[0-9]+}", commentController.Delete).Methods("DELETE")
	router.HandleFunc("/tags", tagController.Index).Methods("GET")
	router.HandleFunc("/tags", tagController.Create).Methods("POST")
	router.HandleFunc("/tags/{id:[0-9]+}", tagController.Show).Methods("GET")
	router.HandleFunc("/users", userController.Create).Methods("POST")
	router.HandleFunc("/users/{id:[0-9]+}", userController.Show).Methods("GET")
	router.HandleFunc("/users/{id:[0-9]+}/preferred-tags", userController.SetPreferredTags).Methods("PUT")
	router.HandleFunc("/users/{id:[0-9]+}/folders", folderController.UserFolders).Methods("GET")
	router.HandleFunc("/folders", folderController.Index).Methods("GET")
	router.HandleFunc("/folders", folderController.Create).Methods("POST")
	router.HandleFunc("/folders/{id:[0-9]+}", folderController.Show).Methods("GET")
	router.HandleFunc("/folders/{id:[0-9]+}", folderController.Update).Methods("PUT")
	router.HandleFunc("/folders/{id:[0-9]+}", folderController.Delete).Methods("DELETE")
	router.HandleFunc("/recommendations/posts", recommendationController.Recommended).Methods("GET")
	router.HandleFunc("/recommendations/guest", recommendationController.Guest).Methods("GET")
	env.router = router
	return env
}

// do sends a request, as userID when it is non-zero.
func (env *testEnv) do(method, path, body string, userID int) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if userID != 0 {
		req.Header.Set(middleware.UserIDHeader, strconv.Itoa(userID))
	}
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)
	return w
}

func (env *testEnv) createPost(t *testing.T, title string, tagIDs ...int) *models.Post {
	t.Helper()
	post := &models.Post{Title: title, Description: title + " description"}
	require.NoError(t, env.postService.CreatePost(context.Background(), post, tagIDs))
	return post
}

func (env *testEnv) createUser(t *testing.T, username string) *models.User {
	t.Helper()
	user := &models.User{Username: username, Email: username + "@example.com"}
	require.NoError(t, env.users.Create(user))
	return user
}

func (env *testEnv) createTag(t *testing.T, name string) *models.Tag {
	t.Helper()
	tag := &models.Tag{Name: name}
	require.NoError(t, env.tags.Create(tag))
	return tag
}

type postPage struct {
	Content       []models.Post `json:"content"`
	Number        int           `json:"number"`
	Size          int           `json:"size"`
	TotalElements int           `json:"totalElements"`
	TotalPages    int           `json:"totalPages"`
}

func decodePage(t *testing.T, w *httptest.ResponseRecorder) postPage {
	t.Helper()
	var page postPage
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &page))
	return page
}

func (p postPage) titles() []string {
	titles := make([]string, 0, len(p.Content))
	for _, post := range p.Content {
		titles = append(titles, post.Title)
	}
	return titles
}

func errorMessage(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body["error"]
}

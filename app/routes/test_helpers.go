package routes

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"photoshare/app/clients"
	"photoshare/app/controllers"
	"photoshare/app/middleware"
	"photoshare/app/models"
	"photoshare/app/repositories"
	"photoshare/app/search"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/require"
)

type testServer struct {
	router *mux.Router
	repo   *repositories.Repository
	docs   *search.BleveDocumentStore
	deps   Dependencies
}

// setupTestServer wires the full stack over in-memory Badger and bleve
// stores, with associations served by client.
func setupTestServer(t *testing.T, client clients.TagAssociationClient) *testServer {
	t.Helper()
	repo, err := repositories.Open("", true)
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })

	docs, err := search.NewMemOnly()
	require.NoError(t, err)
	t.Cleanup(func() { docs.Close() })

	if client == nil {
		client = clients.NewMockAssociationClient()
	}
	deps := NewDependencies(repo, docs, client, controllers.DefaultPaging)
	return &testServer{
		router: SetupRoutes(deps),
		repo:   repo,
		docs:   docs,
		deps:   deps,
	}
}

func (s *testServer) do(method, path, body string, userID int) *httptest.ResponseRecorder {
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
	s.router.ServeHTTP(w, req)
	return w
}

// createJSON posts body and decodes the created resource into out.
func (s *testServer) createJSON(t *testing.T, path, body string, userID int, out interface{}) {
	t.Helper()
	w := s.do(http.MethodPost, path, body, userID)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), out))
}

func (s *testServer) createTag(t *testing.T, name string) models.Tag {
	t.Helper()
	var tag models.Tag
	s.createJSON(t, "/api/tags", `{"name":"`+name+`"}`, 0, &tag)
	return tag
}

func (s *testServer) createUser(t *testing.T, username string) models.User {
	t.Helper()
	var user models.User
	body := `{"username":"` + username + `","email":"` + username + `@example.com","password":"long enough"}`
	s.createJSON(t, "/api/users", body, 0, &user)
	return user
}

func (s *testServer) createPost(t *testing.T, title, description string, tags ...models.Tag) models.Post {
	t.Helper()
	ids := make([]string, 0, len(tags))
	for _, tag := range tags {
		ids = append(ids, strconv.Itoa(tag.ID))
	}
	body := `{"title":` + strconv.Quote(title) + `,"description":` + strconv.Quote(description) +
		`,"tagIds":[` + strings.Join(ids, ",") + `]}`
	var post models.Post
	s.createJSON(t, "/api/posts", body, 0, &post)
	return post
}

type pageResponse struct {
	Content       []models.Post `json:"content"`
	Number        int           `json:"number"`
	Size          int           `json:"size"`
	TotalElements int           `json:"totalElements"`
	TotalPages    int           `json:"totalPages"`
}

func decodePage(t *testing.T, w *httptest.ResponseRecorder) pageResponse {
	t.Helper()
	var page pageResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &page), w.Body.String())
	return page
}

func (p pageResponse) ids() []int {
	ids := make([]int, 0, len(p.Content))
	for _, post := range p.Content {
		ids = append(ids, post.ID)
	}
	return ids
}

type failingAssociations struct{}

func (failingAssociations) GetAssociations(ctx context.Context, tags []string) ([]string, error) {
	return nil, &clients.StatusError{StatusCode: http.StatusBadGateway}
}

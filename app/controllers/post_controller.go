package controllers

import (
	"net/http"
	"strings"

	"photoshare/app/models"
	"photoshare/app/services"
)

// PostController handles HTTP requests for posts and keyword search
type PostController struct {
	postService   *services.PostService
	searchService *services.SearchService
	paging        Paging
}

// NewPostController creates a new PostController
func NewPostController(postService *services.PostService, searchService *services.SearchService, paging Paging) *PostController {
	return &PostController{
		postService:   postService,
		searchService: searchService,
		paging:        paging,
	}
}

type imageRequest struct {
	URL string `json:"url"`
}

// postRequest is the body of create and update. A missing tagIds or
// folderIds on update keeps the post's tags or folders.
type postRequest struct {
	Title       string        `json:"title"`
	Description string        `json:"description"`
	TagIDs      []int         `json:"tagIds"`
	Image       *imageRequest `json:"image"`
	FolderIDs   []int         `json:"folderIds"`
}

func (req postRequest) post() *models.Post {
	post := &models.Post{
		Title:       strings.TrimSpace(req.Title),
		Description: req.Description,
		FolderIDs:   req.FolderIDs,
	}
	if req.Image != nil {
		post.Image = &models.Image{URL: strings.TrimSpace(req.Image.URL)}
	}
	return post
}

// Index lists one page of posts in store order
func (pc *PostController) Index(w http.ResponseWriter, r *http.Request) {
	req, err := pc.paging.pageRequest(r)
	if err != nil {
		sendError(w, err.Error(), http.StatusBadRequest)
		return
	}

	page, err := pc.postService.ListPosts(req)
	if err != nil {
		sendServiceError(w, r, err)
		return
	}
	sendJSON(w, http.StatusOK, page)
}

// Show returns a single post with its comments
func (pc *PostController) Show(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		sendError(w, "Invalid post ID", http.StatusBadRequest)
		return
	}

	post, err := pc.postService.GetPost(id)
	if err != nil {
		sendServiceError(w, r, err)
		return
	}
	sendJSON(w, http.StatusOK, post)
}

// Create stores a post and indexes it
func (pc *PostController) Create(w http.ResponseWriter, r *http.Request) {
	var body postRequest
	if err := decodeJSON(r, &body); err != nil {
		sendError(w, err.Error(), http.StatusBadRequest)
		return
	}

	post := body.post()
	if user := currentUser(r); user != nil {
		post.AuthorID = user.ID
	}

	if err := pc.postService.CreatePost(r.Context(), post, body.TagIDs); err != nil {
		sendServiceError(w, r, err)
		return
	}
	sendJSON(w, http.StatusCreated, post)
}

// Edit updates a post and its search document
func (pc *PostController) Edit(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		sendError(w, "Invalid post ID", http.StatusBadRequest)
		return
	}

	var body postRequest
	if err := decodeJSON(r, &body); err != nil {
		sendError(w, err.Error(), http.StatusBadRequest)
		return
	}

	post, err := pc.postService.UpdatePost(r.Context(), id, body.post(), body.TagIDs)
	if err != nil {
		sendServiceError(w, r, err)
		return
	}
	sendJSON(w, http.StatusOK, post)
}

// Delete removes a post, its comments and its search document
func (pc *PostController) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		sendError(w, "Invalid post ID", http.StatusBadRequest)
		return
	}

	if err := pc.postService.DeletePost(r.Context(), id); err != nil {
		sendServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Search runs a keyword search over titles and descriptions
func (pc *PostController) Search(w http.ResponseWriter, r *http.Request) {
	req, err := pc.paging.pageRequest(r)
	if err != nil {
		sendError(w, err.Error(), http.StatusBadRequest)
		return
	}

	keyword := r.URL.Query().Get("keyword")
	if strings.TrimSpace(keyword) == "" {
		sendError(w, "keyword is required", http.StatusBadRequest)
		return
	}

	page, err := pc.searchService.Search(r.Context(), keyword, req)
	if err != nil {
		sendServiceError(w, r, err)
		return
	}
	sendJSON(w, http.StatusOK, page)
}

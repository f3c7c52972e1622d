package controllers

import (
	"net/http"

	"photoshare/app/services"
)

// TagController handles HTTP requests for the tag catalogue
type TagController struct {
	tagService *services.TagService
}

func NewTagController(tagService *services.TagService) *TagController {
	return &TagController{tagService: tagService}
}

type tagRequest struct {
	Name string `json:"name"`
}

func (tc *TagController) Index(w http.ResponseWriter, r *http.Request) {
	tags, err := tc.tagService.ListTags()
	if err != nil {
		sendServiceError(w, r, err)
		return
	}
	sendJSON(w, http.StatusOK, tags)
}

func (tc *TagController) Show(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		sendError(w, "Invalid tag ID", http.StatusBadRequest)
		return
	}

	tag, err := tc.tagService.GetTag(id)
	if err != nil {
		sendServiceError(w, r, err)
		return
	}
	sendJSON(w, http.StatusOK, tag)
}

// Create adds a tag; a duplicate name is a conflict
func (tc *TagController) Create(w http.ResponseWriter, r *http.Request) {
	var body tagRequest
	if err := decodeJSON(r, &body); err != nil {
		sendError(w, err.Error(), http.StatusBadRequest)
		return
	}

	tag, err := tc.tagService.CreateTag(body.Name)
	if err != nil {
		sendServiceError(w, r, err)
		return
	}
	sendJSON(w, http.StatusCreated, tag)
}

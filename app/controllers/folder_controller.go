package controllers

import (
	"net/http"

	"photoshare/app/models"
	"photoshare/app/services"
)

// FolderController handles HTTP requests for folders
type FolderController struct {
	folderService *services.FolderService
}

// NewFolderController creates a new FolderController
func NewFolderController(folderService *services.FolderService) *FolderController {
	return &FolderController{folderService: folderService}
}

// folderRequest is the body of create and update. A missing postIds on
// update keeps the folder's posts.
type folderRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	PostIDs     []int  `json:"postIds"`
}

func (req folderRequest) folder() *models.Folder {
	return &models.Folder{
		Title:       req.Title,
		Description: req.Description,
		PostIDs:     req.PostIDs,
	}
}

// Index lists every folder
func (fc *FolderController) Index(w http.ResponseWriter, r *http.Request) {
	folders, err := fc.folderService.ListFolders()
	if err != nil {
		sendServiceError(w, r, err)
		return
	}
	sendJSON(w, http.StatusOK, folders)
}

// Show returns a single folder
func (fc *FolderController) Show(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		sendError(w, "Invalid folder ID", http.StatusBadRequest)
		return
	}

	folder, err := fc.folderService.GetFolder(id)
	if err != nil {
		sendServiceError(w, r, err)
		return
	}
	sendJSON(w, http.StatusOK, folder)
}

// UserFolders lists the folders a user owns
func (fc *FolderController) UserFolders(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		sendError(w, "Invalid user ID", http.StatusBadRequest)
		return
	}

	folders, err := fc.folderService.ListUserFolders(id)
	if err != nil {
		sendServiceError(w, r, err)
		return
	}
	sendJSON(w, http.StatusOK, folders)
}

// Create stores a folder owned by the current user
func (fc *FolderController) Create(w http.ResponseWriter, r *http.Request) {
	var body folderRequest
	if err := decodeJSON(r, &body); err != nil {
		sendError(w, err.Error(), http.StatusBadRequest)
		return
	}

	folder, err := fc.folderService.CreateFolder(r.Context(), currentUser(r), body.folder())
	if err != nil {
		sendServiceError(w, r, err)
		return
	}
	sendJSON(w, http.StatusCreated, folder)
}

// Update changes a folder's details and members; owner only
func (fc *FolderController) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		sendError(w, "Invalid folder ID", http.StatusBadRequest)
		return
	}

	var body folderRequest
	if err := decodeJSON(r, &body); err != nil {
		sendError(w, err.Error(), http.StatusBadRequest)
		return
	}

	folder, err := fc.folderService.UpdateFolder(r.Context(), id, currentUser(r), body.folder())
	if err != nil {
		sendServiceError(w, r, err)
		return
	}
	sendJSON(w, http.StatusOK, folder)
}

// Delete removes a folder; owner only
func (fc *FolderController) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		sendError(w, "Invalid folder ID", http.StatusBadRequest)
		return
	}

	if err := fc.folderService.DeleteFolder(r.Context(), id, currentUser(r)); err != nil {
		sendServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

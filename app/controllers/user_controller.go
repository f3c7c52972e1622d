package controllers

import (
	"net/http"

	"photoshare/app/services"
)

// UserController handles sign-up, profile reads and tag preferences
type UserController struct {
	userService *services.UserService
}

func NewUserController(userService *services.UserService) *UserController {
	return &UserController{userService: userService}
}

type userRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type preferredTagsRequest struct {
	TagIDs []int `json:"tagIds"`
}

func (uc *UserController) Create(w http.ResponseWriter, r *http.Request) {
	var body userRequest
	if err := decodeJSON(r, &body); err != nil {
		sendError(w, err.Error(), http.StatusBadRequest)
		return
	}

	user, err := uc.userService.CreateUser(r.Context(), body.Username, body.Email, body.Password)
	if err != nil {
		sendServiceError(w, r, err)
		return
	}
	sendJSON(w, http.StatusCreated, user)
}

func (uc *UserController) Show(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		sendError(w, "Invalid user ID", http.StatusBadRequest)
		return
	}

	user, err := uc.userService.GetUser(id)
	if err != nil {
		sendServiceError(w, r, err)
		return
	}
	sendJSON(w, http.StatusOK, user)
}

// SetPreferredTags replaces the caller's own preferred tags
func (uc *UserController) SetPreferredTags(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		sendError(w, "Invalid user ID", http.StatusBadRequest)
		return
	}
	if caller := currentUser(r); caller == nil || caller.ID != id {
		sendServiceError(w, r, services.ErrForbidden)
		return
	}

	var body preferredTagsRequest
	if err := decodeJSON(r, &body); err != nil {
		sendError(w, err.Error(), http.StatusBadRequest)
		return
	}

	user, err := uc.userService.SetPreferredTags(r.Context(), id, body.TagIDs)
	if err != nil {
		sendServiceError(w, r, err)
		return
	}
	sendJSON(w, http.StatusOK, user)
}

package controllers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"photoshare/app/logging"
	"photoshare/app/middleware"
	"photoshare/app/models"
	"photoshare/app/repositories"
	"photoshare/app/services"

	"github.com/gorilla/mux"
)

// Paging bounds the page size accepted from clients.
type Paging struct {
	DefaultSize int
	MaxSize     int
}

// DefaultPaging matches the service defaults.
var DefaultPaging = Paging{DefaultSize: 10, MaxSize: 100}

// pageRequest reads the 0-based page and size query parameters.
// Sizes above the maximum are clamped.
func (p Paging) pageRequest(r *http.Request) (models.PageRequest, error) {
	page := 0
	if raw := r.URL.Query().Get("page"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v < 0 {
			return models.PageRequest{}, errors.New("page must be a non-negative integer")
		}
		page = v
	}

	size := p.DefaultSize
	if raw := r.URL.Query().Get("size"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v < 1 {
			return models.PageRequest{}, errors.New("size must be a positive integer")
		}
		size = v
	}
	if p.MaxSize > 0 && size > p.MaxSize {
		size = p.MaxSize
	}
	return models.NewPageRequest(page, size), nil
}

func pathID(r *http.Request, name string) (int, error) {
	id, err := strconv.Atoi(mux.Vars(r)[name])
	if err != nil || id <= 0 {
		return 0, errors.New("invalid " + name)
	}
	return id, nil
}

func decodeJSON(r *http.Request, v interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return errors.New("invalid JSON: " + err.Error())
	}
	return nil
}

// currentUser is the caller named by X-User-ID, or nil for a guest.
func currentUser(r *http.Request) *models.User {
	return middleware.UserFromContext(r.Context())
}

func sendJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func sendError(w http.ResponseWriter, message string, status int) {
	sendJSON(w, status, map[string]string{"error": message})
}

// sendServiceError maps service and store errors to a status code.
func sendServiceError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, repositories.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, services.ErrInvalidInput):
		status = http.StatusBadRequest
	case errors.Is(err, services.ErrForbidden):
		status = http.StatusForbidden
	case errors.Is(err, repositories.ErrAlreadyExists):
		status = http.StatusConflict
	case errors.Is(err, services.ErrServiceUnavailable):
		status = http.StatusServiceUnavailable
	}

	if status == http.StatusInternalServerError {
		logging.Ctx(r.Context()).Error().Err(err).Str("path", r.URL.Path).Msg("request failed")
		sendError(w, "internal server error", status)
		return
	}
	sendError(w, err.Error(), status)
}

package controllers

import (
	"net/http"

	"photoshare/app/services"
)

// RecommendationController serves the personalised and guest feeds
type RecommendationController struct {
	recommendations *services.RecommendationService
	paging          Paging
}

func NewRecommendationController(recommendations *services.RecommendationService, paging Paging) *RecommendationController {
	return &RecommendationController{recommendations: recommendations, paging: paging}
}

// Recommended serves the caller's feed. Anonymous callers get the guest feed.
func (rc *RecommendationController) Recommended(w http.ResponseWriter, r *http.Request) {
	req, err := rc.paging.pageRequest(r)
	if err != nil {
		sendError(w, err.Error(), http.StatusBadRequest)
		return
	}

	page, err := rc.recommendations.RecommendedPosts(r.Context(), currentUser(r), req)
	if err != nil {
		sendServiceError(w, r, err)
		return
	}
	sendJSON(w, http.StatusOK, page)
}

func (rc *RecommendationController) Guest(w http.ResponseWriter, r *http.Request) {
	req, err := rc.paging.pageRequest(r)
	if err != nil {
		sendError(w, err.Error(), http.StatusBadRequest)
		return
	}

	page, err := rc.recommendations.GuestPosts(r.Context(), req)
	if err != nil {
		sendServiceError(w, r, err)
		return
	}
	sendJSON(w, http.StatusOK, page)
}

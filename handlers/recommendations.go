package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"reelfeed/models"
	recommendsvc "reelfeed/services/recommend"
)

type recommendationService interface {
	GetRecommendationsForUI(ctx context.Context, limit int) []models.UIRecommendation
	UpdateRecommendationState(action string, movie models.MovieInput)
}

var _ recommendationService = (*recommendsvc.Service)(nil)

// RecommendationsHandler serves candidate movies to the presentation layer.
type RecommendationsHandler struct {
	Service recommendationService
}

func NewRecommendationsHandler(s recommendationService) *RecommendationsHandler {
	return &RecommendationsHandler{Service: s}
}

// List responds with up to ?limit recommendations. The underlying
// pipeline degrades to bundled data instead of failing, so this endpoint
// always returns 200 with a JSON array.
func (h *RecommendationsHandler) List(w http.ResponseWriter, r *http.Request) {
	limit := 10
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			limit = parsed
		}
	}

	recommendations := h.Service.GetRecommendationsForUI(r.Context(), limit)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(recommendations)
}

// Feedback records a fire-and-forget UI action (like/dislike/rate/skip).
// It observes only; list mutation goes through the library endpoints.
func (h *RecommendationsHandler) Feedback(w http.ResponseWriter, r *http.Request) {
	var request struct {
		Action string            `json:"action"`
		Movie  models.MovieInput `json:"movie"`
	}

	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if request.Action == "" {
		http.Error(w, "action is required", http.StatusBadRequest)
		return
	}

	h.Service.UpdateRecommendationState(request.Action, request.Movie)
	w.WriteHeader(http.StatusNoContent)
}

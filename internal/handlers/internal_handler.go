package handlers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/turi/backend/internal/models"
	"github.com/turi/backend/libs/handlers"
	"go.uber.org/zap"
)

// ProgressReconciler repairs progress summaries on behalf of other services
type ProgressReconciler interface {
	CheckAndUpdateUserProgress(ctx context.Context, userID uuid.UUID) (*models.LanguageLevel, error)
}

// TokenCleaner deletes expired refresh tokens
type TokenCleaner interface {
	CleanupExpiredTokens(ctx context.Context) (int, error)
}

// InternalHandler handles service-to-service requests authenticated by API key
type InternalHandler struct {
	handlers.BaseHandler
	reconciler   ProgressReconciler
	tokenCleaner TokenCleaner
}

// NewInternalHandler creates a new internal handler
func NewInternalHandler(reconciler ProgressReconciler, tokenCleaner TokenCleaner, logger *zap.Logger) *InternalHandler {
	return &InternalHandler{
		BaseHandler:  handlers.BaseHandler{Logger: logger},
		reconciler:   reconciler,
		tokenCleaner: tokenCleaner,
	}
}

// RegisterRoutes registers internal handler routes
// Note: This assumes the router is already protected by the API key middleware
func (h *InternalHandler) RegisterRoutes(r chi.Router) {
	r.Route("/internal", func(r chi.Router) {
		r.Post("/progress/{userId}/recheck", h.RecheckUser)
		r.Post("/tokens/clean", h.CleanTokens)
	})
}

// RecheckUser handles POST /internal/progress/{userId}/recheck
// @Summary Recheck progress of a user
// @Description Repair level and word progress of a user from the completion log. Answers 204 when the user has no completions.
// @Tags internal
// @Produce json
// @Param userId path string true "User id (UUID)"
// @Success 200 {object} models.LanguageLevel
// @Success 204 "No completions"
// @Failure 400 {object} map[string]string "Invalid user id"
// @Failure 401 {object} map[string]string "Invalid API key"
// @Security ApiKeyAuth
// @Router /internal/progress/{userId}/recheck [post]
func (h *InternalHandler) RecheckUser(w http.ResponseWriter, r *http.Request) {
	userID, err := uuid.Parse(chi.URLParam(r, "userId"))
	if err != nil {
		h.RespondError(w, http.StatusBadRequest, "invalid user id")
		return
	}

	progress, err := h.reconciler.CheckAndUpdateUserProgress(r.Context(), userID)
	if err != nil {
		respondServiceError(&h.BaseHandler, w, r, err, "recheck user progress")
		return
	}
	if progress == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	h.RespondJSON(w, http.StatusOK, progress)
}

// CleanTokens handles POST /internal/tokens/clean
// @Summary Clean expired tokens
// @Description Removes refresh tokens older than the refresh token lifetime
// @Tags internal
// @Produce json
// @Success 200 {object} map[string]int "Number of deleted tokens"
// @Failure 401 {object} map[string]string "Invalid API key"
// @Failure 500 {object} map[string]string "Internal server error"
// @Security ApiKeyAuth
// @Router /internal/tokens/clean [post]
func (h *InternalHandler) CleanTokens(w http.ResponseWriter, r *http.Request) {
	deleted, err := h.tokenCleaner.CleanupExpiredTokens(r.Context())
	if err != nil {
		respondServiceError(&h.BaseHandler, w, r, err, "clean expired tokens")
		return
	}

	h.RespondJSON(w, http.StatusOK, map[string]int{"deleted": deleted})
}

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

// AnonymousProgressService is the interface that wraps methods for progress of users without an account.
type AnonymousProgressService interface {
	// Method RecordAnonymousCompletion stores a completion under an anonymous id.
	RecordAnonymousCompletion(ctx context.Context, anonymousID uuid.UUID, characterID, dialogueID, score int) error
	// Method ListAnonymousProgress returns completions stored under an anonymous id.
	ListAnonymousProgress(ctx context.Context, anonymousID uuid.UUID) ([]models.AnonymousCompletion, error)
}

// AnonymousHandler handles progress requests of users who have not signed up yet
type AnonymousHandler struct {
	handlers.BaseHandler
	progressService AnonymousProgressService
}

// NewAnonymousHandler creates a new anonymous progress handler
func NewAnonymousHandler(progressService AnonymousProgressService, logger *zap.Logger) *AnonymousHandler {
	return &AnonymousHandler{
		BaseHandler:     handlers.BaseHandler{Logger: logger},
		progressService: progressService,
	}
}

// RegisterRoutes registers all anonymous handler routes
// Note: This assumes the router is already scoped to /api/v1
func (h *AnonymousHandler) RegisterRoutes(r chi.Router) {
	r.Route("/anonymous/{anonymousId}/progress", func(r chi.Router) {
		r.Get("/", h.ListProgress)
		r.Post("/", h.RecordCompletion)
	})
}

// anonymousID parses the path id and answers 400 when it is not a UUID
func (h *AnonymousHandler) anonymousID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "anonymousId"))
	if err != nil || id == uuid.Nil {
		h.RespondError(w, http.StatusBadRequest, "invalid anonymous id")
		return uuid.Nil, false
	}
	return id, true
}

// RecordCompletion handles POST /anonymous/{anonymousId}/progress
// @Summary Record anonymous completion
// @Description Store a completed dialogue for a user without an account. Entries expire after 30 days.
// @Tags anonymous
// @Accept json
// @Produce json
// @Param anonymousId path string true "Anonymous id (UUID)"
// @Param request body models.TrackDialogueRequest true "Completed dialogue"
// @Success 201 {object} map[string]string "Recorded"
// @Failure 400 {object} map[string]string "Invalid request"
// @Router /anonymous/{anonymousId}/progress [post]
func (h *AnonymousHandler) RecordCompletion(w http.ResponseWriter, r *http.Request) {
	anonymousID, ok := h.anonymousID(w, r)
	if !ok {
		return
	}

	var req models.TrackDialogueRequest
	if err := h.DecodeJSON(r, &req); err != nil {
		h.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.progressService.RecordAnonymousCompletion(r.Context(), anonymousID, req.CharacterID, req.DialogueID, req.Score); err != nil {
		respondServiceError(&h.BaseHandler, w, r, err, "record anonymous completion")
		return
	}

	h.RespondJSON(w, http.StatusCreated, map[string]string{"message": "completion recorded"})
}

// ListProgress handles GET /anonymous/{anonymousId}/progress
// @Summary List anonymous completions
// @Description List completions stored for an anonymous id
// @Tags anonymous
// @Produce json
// @Param anonymousId path string true "Anonymous id (UUID)"
// @Success 200 {array} models.AnonymousCompletion
// @Failure 400 {object} map[string]string "Invalid anonymous id"
// @Router /anonymous/{anonymousId}/progress [get]
func (h *AnonymousHandler) ListProgress(w http.ResponseWriter, r *http.Request) {
	anonymousID, ok := h.anonymousID(w, r)
	if !ok {
		return
	}

	entries, err := h.progressService.ListAnonymousProgress(r.Context(), anonymousID)
	if err != nil {
		respondServiceError(&h.BaseHandler, w, r, err, "list anonymous progress")
		return
	}
	if entries == nil {
		entries = []models.AnonymousCompletion{}
	}

	h.RespondJSON(w, http.StatusOK, entries)
}

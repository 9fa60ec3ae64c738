package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httprate"
	"github.com/google/uuid"
	"github.com/turi/backend/internal/models"
	authmiddleware "github.com/turi/backend/libs/auth/middleware"
	"github.com/turi/backend/libs/handlers"
	"go.uber.org/zap"
)

// ProgressService is the interface that wraps methods for progress tracking business logic.
type ProgressService interface {
	// Method TrackCompletedDialogue records a completed dialogue and returns the updated summary.
	//
	// Invalid ids or scores return a services.SecurityError of kind invalid_input.
	TrackCompletedDialogue(ctx context.Context, userID uuid.UUID, characterID, dialogueID, score int) (*models.LanguageLevel, error)
	// Method CheckAndUpdateUserProgress repairs the summary from the completion log.
	//
	// A user without completions returns nil.
	CheckAndUpdateUserProgress(ctx context.Context, userID uuid.UUID) (*models.LanguageLevel, error)
	// Method SyncWordProgress recomputes word progress of an existing summary.
	//
	// A missing summary returns nil; no row is created.
	SyncWordProgress(ctx context.Context, userID uuid.UUID, targetLanguage string) (*models.LanguageLevel, error)
	// Method MergeAnonymousProgress replays anonymous completions into the account.
	MergeAnonymousProgress(ctx context.Context, userID, anonymousID uuid.UUID, entries []models.AnonymousCompletion) (*models.MergeResult, error)
	// Method GetProgress returns the summary of the current target language.
	GetProgress(ctx context.Context, userID uuid.UUID) (*models.LanguageLevel, error)
	// Method ListCompletions returns the completion log of a user.
	ListCompletions(ctx context.Context, userID uuid.UUID) ([]models.DialogueCompletion, error)
}

// ProgressHandler handles progress-related HTTP requests
type ProgressHandler struct {
	handlers.BaseHandler
	progressService ProgressService
	completionLimit int
}

// NewProgressHandler creates a new progress handler.
// completionLimit is the number of completions one user may submit per minute.
func NewProgressHandler(progressService ProgressService, completionLimit int, logger *zap.Logger) *ProgressHandler {
	return &ProgressHandler{
		BaseHandler:     handlers.BaseHandler{Logger: logger},
		progressService: progressService,
		completionLimit: completionLimit,
	}
}

// RegisterRoutes registers all progress handler routes
// Note: This assumes the router is already scoped to /api/v1 and authenticated
func (h *ProgressHandler) RegisterRoutes(r chi.Router) {
	r.Route("/progress", func(r chi.Router) {
		r.Get("/", h.GetProgress)
		r.Get("/completions", h.ListCompletions)
		r.With(h.completionRateLimit()).Post("/dialogues", h.TrackDialogue)
		r.Post("/recheck", h.Recheck)
		r.Post("/sync-words", h.SyncWords)
		r.Post("/merge", h.Merge)
	})
}

// completionRateLimit limits completions per authenticated user
func (h *ProgressHandler) completionRateLimit() func(http.Handler) http.Handler {
	return httprate.Limit(h.completionLimit, time.Minute,
		httprate.WithKeyFuncs(func(r *http.Request) (string, error) {
			if userID, ok := authmiddleware.GetUserID(r.Context()); ok {
				return userID.String(), nil
			}
			return httprate.KeyByIP(r)
		}),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			h.RespondError(w, http.StatusTooManyRequests, "too many completions, slow down")
		}),
	)
}

// TrackDialogue handles POST /progress/dialogues
// @Summary Track a completed dialogue
// @Description Record a completed dialogue and advance level and word progress of the current target language
// @Tags progress
// @Accept json
// @Produce json
// @Param request body models.TrackDialogueRequest true "Completed dialogue"
// @Success 200 {object} models.LanguageLevel
// @Failure 400 {object} map[string]string "Invalid request"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 429 {object} map[string]string "Too many requests"
// @Security BearerAuth
// @Router /progress/dialogues [post]
func (h *ProgressHandler) TrackDialogue(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(&h.BaseHandler, w, r)
	if !ok {
		return
	}

	var req models.TrackDialogueRequest
	if err := h.DecodeJSON(r, &req); err != nil {
		h.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	progress, err := h.progressService.TrackCompletedDialogue(r.Context(), userID, req.CharacterID, req.DialogueID, req.Score)
	if err != nil {
		respondServiceError(&h.BaseHandler, w, r, err, "track dialogue")
		return
	}

	h.RespondJSON(w, http.StatusOK, progress)
}

// GetProgress handles GET /progress
// @Summary Get progress
// @Description Get level and word progress of the current target language
// @Tags progress
// @Produce json
// @Success 200 {object} models.LanguageLevel
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "User not found"
// @Security BearerAuth
// @Router /progress [get]
func (h *ProgressHandler) GetProgress(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(&h.BaseHandler, w, r)
	if !ok {
		return
	}

	progress, err := h.progressService.GetProgress(r.Context(), userID)
	if err != nil {
		respondServiceError(&h.BaseHandler, w, r, err, "get progress")
		return
	}

	h.RespondJSON(w, http.StatusOK, progress)
}

// ListCompletions handles GET /progress/completions
// @Summary List completions
// @Description List every completed dialogue with its best score
// @Tags progress
// @Produce json
// @Success 200 {array} models.DialogueCompletion
// @Failure 401 {object} map[string]string "Unauthorized"
// @Security BearerAuth
// @Router /progress/completions [get]
func (h *ProgressHandler) ListCompletions(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(&h.BaseHandler, w, r)
	if !ok {
		return
	}

	completions, err := h.progressService.ListCompletions(r.Context(), userID)
	if err != nil {
		respondServiceError(&h.BaseHandler, w, r, err, "list completions")
		return
	}
	if completions == nil {
		completions = []models.DialogueCompletion{}
	}

	h.RespondJSON(w, http.StatusOK, completions)
}

// Recheck handles POST /progress/recheck
// @Summary Recheck progress
// @Description Repair level and word progress from the completion log. Answers 204 when there are no completions.
// @Tags progress
// @Produce json
// @Success 200 {object} models.LanguageLevel
// @Success 204 "No completions"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Security BearerAuth
// @Router /progress/recheck [post]
func (h *ProgressHandler) Recheck(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(&h.BaseHandler, w, r)
	if !ok {
		return
	}

	progress, err := h.progressService.CheckAndUpdateUserProgress(r.Context(), userID)
	if err != nil {
		respondServiceError(&h.BaseHandler, w, r, err, "recheck progress")
		return
	}
	if progress == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	h.RespondJSON(w, http.StatusOK, progress)
}

// SyncWords handles POST /progress/sync-words
// @Summary Sync word progress
// @Description Recompute word progress of an existing summary. Answers 204 when there is no summary; none is created.
// @Tags progress
// @Accept json
// @Produce json
// @Param request body models.SyncWordsRequest false "Target language (defaults to the current one)"
// @Success 200 {object} models.LanguageLevel
// @Success 204 "No progress yet"
// @Failure 400 {object} map[string]string "Unsupported language"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Security BearerAuth
// @Router /progress/sync-words [post]
func (h *ProgressHandler) SyncWords(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(&h.BaseHandler, w, r)
	if !ok {
		return
	}

	// The body is optional
	var req models.SyncWordsRequest
	if err := h.DecodeJSON(r, &req); err != nil && !errors.Is(err, handlers.ErrEmptyBody) {
		h.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	progress, err := h.progressService.SyncWordProgress(r.Context(), userID, req.TargetLanguage)
	if err != nil {
		respondServiceError(&h.BaseHandler, w, r, err, "sync word progress")
		return
	}
	if progress == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	h.RespondJSON(w, http.StatusOK, progress)
}

// Merge handles POST /progress/merge
// @Summary Merge anonymous progress
// @Description Replay completions recorded before signup into the account. Merged entries are removed from the anonymous store after a successful merge.
// @Tags progress
// @Accept json
// @Produce json
// @Param request body models.MergeRequest true "Anonymous id and/or entries"
// @Success 200 {object} models.MergeResult
// @Failure 400 {object} map[string]string "Invalid request"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Security BearerAuth
// @Router /progress/merge [post]
func (h *ProgressHandler) Merge(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(&h.BaseHandler, w, r)
	if !ok {
		return
	}

	var req models.MergeRequest
	if err := h.DecodeJSON(r, &req); err != nil {
		h.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	anonymousID := uuid.Nil
	if req.AnonymousID != "" {
		parsed, err := uuid.Parse(req.AnonymousID)
		if err != nil {
			h.RespondError(w, http.StatusBadRequest, "invalid anonymous id")
			return
		}
		anonymousID = parsed
	}

	result, err := h.progressService.MergeAnonymousProgress(r.Context(), userID, anonymousID, req.Entries)
	if err != nil {
		respondServiceError(&h.BaseHandler, w, r, err, "merge anonymous progress")
		return
	}

	h.RespondJSON(w, http.StatusOK, result)
}

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

// ProfileService is the interface that wraps methods for profile business logic.
type ProfileService interface {
	// Method GetProfile returns the user together with the current progress summary.
	//
	// If user does not exist, services.ErrUserNotFound is returned.
	GetProfile(ctx context.Context, userID uuid.UUID) (*models.ProfileResponse, error)
	// Method UpdateLanguages changes mother and target language and returns the updated user.
	UpdateLanguages(ctx context.Context, userID uuid.UUID, req *models.UpdateLanguagesRequest) (*models.User, error)
	// Method AddMinutes adds practice minutes and returns the new total.
	AddMinutes(ctx context.Context, userID uuid.UUID, minutes int) (int, error)
}

// ProfileHandler handles profile-related HTTP requests
type ProfileHandler struct {
	handlers.BaseHandler
	profileService ProfileService
}

// NewProfileHandler creates a new profile handler
func NewProfileHandler(profileService ProfileService, logger *zap.Logger) *ProfileHandler {
	return &ProfileHandler{
		BaseHandler:    handlers.BaseHandler{Logger: logger},
		profileService: profileService,
	}
}

// RegisterRoutes registers all profile handler routes
// Note: This assumes the router is already scoped to /api/v1 and authenticated
func (h *ProfileHandler) RegisterRoutes(r chi.Router) {
	r.Route("/profile", func(r chi.Router) {
		r.Get("/", h.GetProfile)
		r.Patch("/languages", h.UpdateLanguages)
		r.Post("/minutes", h.AddMinutes)
	})
}

// GetProfile handles GET /profile
// @Summary Get profile
// @Description Get the authenticated user together with the progress of the current target language
// @Tags profile
// @Produce json
// @Success 200 {object} models.ProfileResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "User not found"
// @Security BearerAuth
// @Router /profile [get]
func (h *ProfileHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(&h.BaseHandler, w, r)
	if !ok {
		return
	}

	profile, err := h.profileService.GetProfile(r.Context(), userID)
	if err != nil {
		respondServiceError(&h.BaseHandler, w, r, err, "get profile")
		return
	}

	h.RespondJSON(w, http.StatusOK, profile)
}

// UpdateLanguages handles PATCH /profile/languages
// @Summary Update languages
// @Description Change mother and target language. Progress of other target languages is kept.
// @Tags profile
// @Accept json
// @Produce json
// @Param request body models.UpdateLanguagesRequest true "Languages"
// @Success 200 {object} models.User
// @Failure 400 {object} map[string]string "Unsupported language"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Security BearerAuth
// @Router /profile/languages [patch]
func (h *ProfileHandler) UpdateLanguages(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(&h.BaseHandler, w, r)
	if !ok {
		return
	}

	var req models.UpdateLanguagesRequest
	if err := h.DecodeJSON(r, &req); err != nil {
		h.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	user, err := h.profileService.UpdateLanguages(r.Context(), userID, &req)
	if err != nil {
		respondServiceError(&h.BaseHandler, w, r, err, "update languages")
		return
	}

	h.RespondJSON(w, http.StatusOK, user)
}

// AddMinutes handles POST /profile/minutes
// @Summary Add practice minutes
// @Description Add practice minutes to the user's total
// @Tags profile
// @Accept json
// @Produce json
// @Param request body models.AddMinutesRequest true "Minutes"
// @Success 200 {object} map[string]int "New total"
// @Failure 400 {object} map[string]string "Invalid minutes"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Security BearerAuth
// @Router /profile/minutes [post]
func (h *ProfileHandler) AddMinutes(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(&h.BaseHandler, w, r)
	if !ok {
		return
	}

	var req models.AddMinutesRequest
	if err := h.DecodeJSON(r, &req); err != nil {
		h.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	total, err := h.profileService.AddMinutes(r.Context(), userID, req.Minutes)
	if err != nil {
		respondServiceError(&h.BaseHandler, w, r, err, "add minutes")
		return
	}

	h.RespondJSON(w, http.StatusOK, map[string]int{"totalMinutes": total})
}

package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/turi/backend/internal/models"
	"github.com/turi/backend/libs/handlers"
	"go.uber.org/zap"
)

// ContentService is the interface that wraps methods for learning content.
type ContentService interface {
	// Method ExplainWord returns a cached or freshly generated explanation of a word.
	//
	// If text generation is not configured, services.ErrGenerationUnavailable is returned.
	ExplainWord(ctx context.Context, language, word string) (*models.CachedExplanation, error)
	// Method GenerateDialogue generates a practice dialogue.
	GenerateDialogue(ctx context.Context, req *models.GenerateDialogueRequest) (*models.Dialogue, error)
	// Method ListDialogueWords returns quiz words introduced by a dialogue.
	ListDialogueWords(ctx context.Context, dialogueID int) ([]models.Word, error)
}

// ContentHandler handles word and dialogue content requests
type ContentHandler struct {
	handlers.BaseHandler
	contentService ContentService
}

// NewContentHandler creates a new content handler
func NewContentHandler(contentService ContentService, logger *zap.Logger) *ContentHandler {
	return &ContentHandler{
		BaseHandler:    handlers.BaseHandler{Logger: logger},
		contentService: contentService,
	}
}

// RegisterPublicRoutes registers routes available without authentication
func (h *ContentHandler) RegisterPublicRoutes(r chi.Router) {
	r.Get("/dialogues/{id}/words", h.ListDialogueWords)
}

// RegisterRoutes registers routes that call the language model
// Note: This assumes the router is already scoped to /api/v1 and authenticated
func (h *ContentHandler) RegisterRoutes(r chi.Router) {
	r.Post("/dialogues/generate", h.GenerateDialogue)
	r.Get("/words/{language}/{word}/explanation", h.ExplainWord)
}

// ListDialogueWords handles GET /dialogues/{id}/words
// @Summary List dialogue words
// @Description List quiz words introduced by a dialogue
// @Tags content
// @Produce json
// @Param id path int true "Dialogue id"
// @Success 200 {array} models.Word
// @Failure 400 {object} map[string]string "Invalid dialogue id"
// @Router /dialogues/{id}/words [get]
func (h *ContentHandler) ListDialogueWords(w http.ResponseWriter, r *http.Request) {
	dialogueID, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		h.RespondError(w, http.StatusBadRequest, "invalid dialogue id")
		return
	}

	words, err := h.contentService.ListDialogueWords(r.Context(), dialogueID)
	if err != nil {
		respondServiceError(&h.BaseHandler, w, r, err, "list dialogue words")
		return
	}

	h.RespondJSON(w, http.StatusOK, words)
}

// ExplainWord handles GET /words/{language}/{word}/explanation
// @Summary Explain a word
// @Description Get an explanation of a word with usage examples. Explanations are generated once and cached.
// @Tags content
// @Produce json
// @Param language path string true "Language code (en, es, fr, de, it, pt)"
// @Param word path string true "Word"
// @Success 200 {object} models.CachedExplanation
// @Failure 400 {object} map[string]string "Unsupported language or invalid word"
// @Failure 502 {object} map[string]string "Model failed"
// @Failure 503 {object} map[string]string "Generation not configured"
// @Security BearerAuth
// @Router /words/{language}/{word}/explanation [get]
func (h *ContentHandler) ExplainWord(w http.ResponseWriter, r *http.Request) {
	explanation, err := h.contentService.ExplainWord(r.Context(), chi.URLParam(r, "language"), chi.URLParam(r, "word"))
	if err != nil {
		respondServiceError(&h.BaseHandler, w, r, err, "explain word")
		return
	}

	h.RespondJSON(w, http.StatusOK, explanation)
}

// GenerateDialogue handles POST /dialogues/generate
// @Summary Generate a dialogue
// @Description Generate a practice dialogue about a topic. Generated dialogues are not stored.
// @Tags content
// @Accept json
// @Produce json
// @Param request body models.GenerateDialogueRequest true "Dialogue parameters"
// @Success 200 {object} models.Dialogue
// @Failure 400 {object} map[string]string "Invalid request"
// @Failure 502 {object} map[string]string "Model failed"
// @Failure 503 {object} map[string]string "Generation not configured"
// @Security BearerAuth
// @Router /dialogues/generate [post]
func (h *ContentHandler) GenerateDialogue(w http.ResponseWriter, r *http.Request) {
	var req models.GenerateDialogueRequest
	if err := h.DecodeJSON(r, &req); err != nil {
		h.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	dialogue, err := h.contentService.GenerateDialogue(r.Context(), &req)
	if err != nil {
		respondServiceError(&h.BaseHandler, w, r, err, "generate dialogue")
		return
	}

	h.RespondJSON(w, http.StatusOK, dialogue)
}

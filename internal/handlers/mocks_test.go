package handlers

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"github.com/turi/backend/internal/models"
	authmiddleware "github.com/turi/backend/libs/auth/middleware"
)

// withUser injects an authenticated user id the way the auth middleware does
func withUser(userID uuid.UUID) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r.WithContext(authmiddleware.WithUserID(r.Context(), userID)))
		})
	}
}

type mockAuthService struct {
	access, refresh string
	err             error
	lastRefresh     string
	signupReq       *models.SignupRequest
}

func (m *mockAuthService) Signup(ctx context.Context, req *models.SignupRequest) (string, string, error) {
	m.signupReq = req
	if m.err != nil {
		return "", "", m.err
	}
	return m.access, m.refresh, nil
}

func (m *mockAuthService) Login(ctx context.Context, req *models.LoginRequest) (string, string, error) {
	if m.err != nil {
		return "", "", m.err
	}
	return m.access, m.refresh, nil
}

func (m *mockAuthService) Refresh(ctx context.Context, refreshToken string) (string, string, error) {
	m.lastRefresh = refreshToken
	if m.err != nil {
		return "", "", m.err
	}
	return m.access, m.refresh, nil
}

func (m *mockAuthService) Logout(ctx context.Context, refreshToken string) error {
	m.lastRefresh = refreshToken
	return m.err
}

type mockProgressService struct {
	progress    *models.LanguageLevel
	completions []models.DialogueCompletion
	merge       *models.MergeResult
	anonymous   []models.AnonymousCompletion
	err         error

	trackedUser   uuid.UUID
	trackedDialog int
	syncLanguage  string
	mergeAnonID   uuid.UUID
	mergeEntries  []models.AnonymousCompletion
	recorded      int
}

func (m *mockProgressService) TrackCompletedDialogue(ctx context.Context, userID uuid.UUID, characterID, dialogueID, score int) (*models.LanguageLevel, error) {
	m.trackedUser = userID
	m.trackedDialog = dialogueID
	return m.progress, m.err
}

func (m *mockProgressService) CheckAndUpdateUserProgress(ctx context.Context, userID uuid.UUID) (*models.LanguageLevel, error) {
	return m.progress, m.err
}

func (m *mockProgressService) SyncWordProgress(ctx context.Context, userID uuid.UUID, targetLanguage string) (*models.LanguageLevel, error) {
	m.syncLanguage = targetLanguage
	return m.progress, m.err
}

func (m *mockProgressService) MergeAnonymousProgress(ctx context.Context, userID, anonymousID uuid.UUID, entries []models.AnonymousCompletion) (*models.MergeResult, error) {
	m.mergeAnonID = anonymousID
	m.mergeEntries = entries
	return m.merge, m.err
}

func (m *mockProgressService) GetProgress(ctx context.Context, userID uuid.UUID) (*models.LanguageLevel, error) {
	return m.progress, m.err
}

func (m *mockProgressService) ListCompletions(ctx context.Context, userID uuid.UUID) ([]models.DialogueCompletion, error) {
	return m.completions, m.err
}

func (m *mockProgressService) RecordAnonymousCompletion(ctx context.Context, anonymousID uuid.UUID, characterID, dialogueID, score int) error {
	m.recorded++
	return m.err
}

func (m *mockProgressService) ListAnonymousProgress(ctx context.Context, anonymousID uuid.UUID) ([]models.AnonymousCompletion, error) {
	return m.anonymous, m.err
}

type mockProfileService struct {
	profile *models.ProfileResponse
	user    *models.User
	total   int
	err     error
}

func (m *mockProfileService) GetProfile(ctx context.Context, userID uuid.UUID) (*models.ProfileResponse, error) {
	return m.profile, m.err
}

func (m *mockProfileService) UpdateLanguages(ctx context.Context, userID uuid.UUID, req *models.UpdateLanguagesRequest) (*models.User, error) {
	return m.user, m.err
}

func (m *mockProfileService) AddMinutes(ctx context.Context, userID uuid.UUID, minutes int) (int, error) {
	return m.total, m.err
}

type mockContentService struct {
	explanation *models.CachedExplanation
	dialogue    *models.Dialogue
	words       []models.Word
	err         error
	language    string
	word        string
}

func (m *mockContentService) ExplainWord(ctx context.Context, language, word string) (*models.CachedExplanation, error) {
	m.language = language
	m.word = word
	return m.explanation, m.err
}

func (m *mockContentService) GenerateDialogue(ctx context.Context, req *models.GenerateDialogueRequest) (*models.Dialogue, error) {
	return m.dialogue, m.err
}

func (m *mockContentService) ListDialogueWords(ctx context.Context, dialogueID int) ([]models.Word, error) {
	return m.words, m.err
}

type mockTokenCleaner struct {
	deleted int
	err     error
}

func (m *mockTokenCleaner) CleanupExpiredTokens(ctx context.Context) (int, error) {
	return m.deleted, m.err
}

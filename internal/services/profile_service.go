package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/turi/backend/internal/models"
)

// maxMinutesPerRequest bounds a single practice minutes increment to one day
const maxMinutesPerRequest = 24 * 60

// ProfileUserRepository is the interface that wraps methods for users table data access needed by profile service
type ProfileUserRepository interface {
	// Method GetByID retrieves a user by ID.
	//
	// If user with such ID does not exist, models.ErrNotFound is returned.
	GetByID(ctx context.Context, userID uuid.UUID) (*models.User, error)
	// Method UpdateLanguages changes mother and target language of a user.
	//
	// If user with such ID does not exist, models.ErrNotFound is returned.
	UpdateLanguages(ctx context.Context, userID uuid.UUID, motherLanguage, targetLanguage string) error
	// Method AddMinutes atomically increments practice minutes and returns the new total.
	//
	// If user with such ID does not exist, models.ErrNotFound is returned.
	AddMinutes(ctx context.Context, userID uuid.UUID, minutes int) (int, error)
}

// ProgressReader returns the progress summary shown on the profile
type ProgressReader interface {
	GetProgress(ctx context.Context, userID uuid.UUID) (*models.LanguageLevel, error)
}

// profileService implements ProfileService
type profileService struct {
	userRepo ProfileUserRepository
	progress ProgressReader
}

// NewProfileService creates a new profile service
func NewProfileService(userRepo ProfileUserRepository, progress ProgressReader) *profileService {
	return &profileService{
		userRepo: userRepo,
		progress: progress,
	}
}

// GetProfile returns the user together with the progress of the current target language
func (s *profileService) GetProfile(ctx context.Context, userID uuid.UUID) (*models.ProfileResponse, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if errors.Is(err, models.ErrNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	progress, err := s.progress.GetProgress(ctx, userID)
	if err != nil {
		return nil, err
	}

	return &models.ProfileResponse{
		User:     user,
		Progress: progress,
	}, nil
}

// UpdateLanguages changes the user's languages. Progress of the previous target
// language is kept and resumes when the user switches back.
func (s *profileService) UpdateLanguages(ctx context.Context, userID uuid.UUID, req *models.UpdateLanguagesRequest) (*models.User, error) {
	mother, ok := models.ParseLanguage(req.MotherLanguage)
	if !ok {
		return nil, invalidInput("unsupported mother language %q", req.MotherLanguage)
	}
	target, ok := models.ParseLanguage(req.TargetLanguage)
	if !ok {
		return nil, invalidInput("unsupported target language %q", req.TargetLanguage)
	}

	if err := s.userRepo.UpdateLanguages(ctx, userID, string(mother), string(target)); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to update languages: %w", err)
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

// AddMinutes adds practice minutes and returns the new total
func (s *profileService) AddMinutes(ctx context.Context, userID uuid.UUID, minutes int) (int, error) {
	if minutes <= 0 || minutes > maxMinutesPerRequest {
		return 0, invalidInput("minutes must be between 1 and %d", maxMinutesPerRequest)
	}

	total, err := s.userRepo.AddMinutes(ctx, userID, minutes)
	if errors.Is(err, models.ErrNotFound) {
		return 0, ErrUserNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("failed to add minutes: %w", err)
	}
	return total, nil
}

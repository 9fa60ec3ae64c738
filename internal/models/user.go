package models

import (
	"time"

	"github.com/google/uuid"
)

// User represents an account row. Email and PasswordHash are empty for
// placeholder users created when progress arrives for an unknown id.
type User struct {
	ID             uuid.UUID `json:"id"`
	Email          string    `json:"email,omitempty"`
	PasswordHash   string    `json:"-"`
	MotherLanguage string    `json:"motherLanguage"`
	TargetLanguage string    `json:"targetLanguage"`
	TotalMinutes   int       `json:"totalMinutes"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// UserToken is a stored refresh token
type UserToken struct {
	ID     int
	UserID uuid.UUID
	Token  string
}

// SignupRequest represents a signup request. Anonymous fields are optional and
// carry progress recorded before the account existed.
type SignupRequest struct {
	Email            string                `json:"email"`
	Password         string                `json:"password"`
	MotherLanguage   string                `json:"motherLanguage"`
	TargetLanguage   string                `json:"targetLanguage"`
	AnonymousID      string                `json:"anonymousId,omitempty"`
	AnonymousEntries []AnonymousCompletion `json:"anonymousEntries,omitempty"`
}

// LoginRequest represents a login request
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// UpdateLanguagesRequest represents a request to change the user's languages
type UpdateLanguagesRequest struct {
	MotherLanguage string `json:"motherLanguage"`
	TargetLanguage string `json:"targetLanguage"`
}

// AddMinutesRequest represents a request to add practice minutes
type AddMinutesRequest struct {
	Minutes int `json:"minutes"`
}

// ProfileResponse represents the user profile together with the current progress summary
type ProfileResponse struct {
	User     *User          `json:"user"`
	Progress *LanguageLevel `json:"progress"`
}

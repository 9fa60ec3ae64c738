package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	// DialoguesPerLevel is the number of dialogues that make up one level
	DialoguesPerLevel = 5
	// MaxWordProgress caps the number of words counted as learned
	MaxWordProgress = 500
	// FallbackWordsPerDialogue estimates word progress when the word count is unavailable
	FallbackWordsPerDialogue = 5
	// MaxScore is the highest score of a completed dialogue
	MaxScore = 100
)

// LanguageLevel is the per-user, per-language progress summary
type LanguageLevel struct {
	ID             int64     `json:"id"`
	UserID         uuid.UUID `json:"userId"`
	TargetLanguage string    `json:"targetLanguage"`
	Level          int       `json:"level"`
	WordProgress   int       `json:"wordProgress"`
	DialogueNumber int       `json:"dialogueNumber"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// DialogueCompletion is one entry of the completion log
type DialogueCompletion struct {
	ID          int64     `json:"id"`
	UserID      uuid.UUID `json:"userId"`
	CharacterID int       `json:"characterId"`
	DialogueID  int       `json:"dialogueId"`
	Score       int       `json:"score"`
	CompletedAt time.Time `json:"completedAt"`
}

// AnonymousCompletion is a completion recorded before the user had an account
type AnonymousCompletion struct {
	CharacterID int       `json:"characterId"`
	DialogueID  int       `json:"dialogueId"`
	Score       int       `json:"score"`
	CompletedAt time.Time `json:"completedAt"`
}

// TrackDialogueRequest represents a completed dialogue submission
type TrackDialogueRequest struct {
	CharacterID int `json:"characterId"`
	DialogueID  int `json:"dialogueId"`
	Score       int `json:"score"`
}

// SyncWordsRequest represents a word progress sync request. An empty
// target language means the user's current one.
type SyncWordsRequest struct {
	TargetLanguage string `json:"targetLanguage,omitempty"`
}

// MergeRequest represents a request to merge anonymous progress into the account
type MergeRequest struct {
	AnonymousID string                `json:"anonymousId,omitempty"`
	Entries     []AnonymousCompletion `json:"entries,omitempty"`
}

// MergeResult reports the outcome of an anonymous merge
type MergeResult struct {
	Merged   int            `json:"merged"`
	Progress *LanguageLevel `json:"progress,omitempty"`
}

// SweepResult reports the outcome of a drift sweep
type SweepResult struct {
	Checked  int `json:"checked"`
	Repaired int `json:"repaired"`
	Failed   int `json:"failed"`
}

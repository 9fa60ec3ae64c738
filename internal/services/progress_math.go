package services

import "github.com/turi/backend/internal/models"

// LevelForDialogue derives the level reached after completing dialogueID.
// Every five dialogues make a level, starting at level 1.
func LevelForDialogue(dialogueID int) int {
	if dialogueID < 1 {
		return 1
	}
	return (dialogueID-1)/models.DialoguesPerLevel + 1
}

// ClampWordProgress caps a word count at models.MaxWordProgress
func ClampWordProgress(count int) int {
	return max(0, min(count, models.MaxWordProgress))
}

// FallbackWordProgress estimates word progress when words cannot be counted
func FallbackWordProgress(dialogueID int) int {
	return ClampWordProgress(dialogueID * models.FallbackWordsPerDialogue)
}

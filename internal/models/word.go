package models

import "time"

// Word is a quiz word introduced by a dialogue
type Word struct {
	ID          int    `json:"id"`
	DialogueID  int    `json:"dialogueId"`
	Word        string `json:"word"`
	Translation string `json:"translation"`
	Language    string `json:"language"`
}

// WordExplanation is the structured explanation of a word
type WordExplanation struct {
	Word        string        `json:"word"`
	Translation string        `json:"translation"`
	Explanation string        `json:"explanation"`
	Examples    []WordExample `json:"examples"`
}

// WordExample is one usage example of an explained word
type WordExample struct {
	Sentence    string `json:"sentence"`
	Translation string `json:"translation"`
}

// CachedExplanation is a stored explanation together with its metadata
type CachedExplanation struct {
	Explanation WordExplanation `json:"explanation"`
	Model       string          `json:"model"`
	CreatedAt   time.Time       `json:"createdAt"`
}

// Dialogue is a generated practice dialogue
type Dialogue struct {
	Title string         `json:"title"`
	Lines []DialogueLine `json:"lines"`
}

// DialogueLine is one line of a generated dialogue
type DialogueLine struct {
	Speaker     string `json:"speaker"`
	Text        string `json:"text"`
	Translation string `json:"translation"`
}

// GenerateDialogueRequest represents a dialogue generation request
type GenerateDialogueRequest struct {
	Language string `json:"language"`
	Topic    string `json:"topic"`
	Level    int    `json:"level"`
}

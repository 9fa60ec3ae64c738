package gemini

import (
	"fmt"
	"strings"
)

// ExplanationSystemPrompt instructs the model to answer with a word explanation object.
const ExplanationSystemPrompt = `You are a language tutor. Respond with JSON only, using exactly this shape:
{"word": string, "translation": string, "explanation": string, "examples": [{"sentence": string, "translation": string}]}
Give two or three short examples. Do not add any other keys.`

// DialogueSystemPrompt instructs the model to answer with a practice dialogue object.
const DialogueSystemPrompt = `You write short practice dialogues for language learners. Respond with JSON only, using exactly this shape:
{"title": string, "lines": [{"speaker": string, "text": string, "translation": string}]}
Use between six and ten lines and two speakers. Do not add any other keys.`

// ExplanationPrompt builds the user prompt for explaining a word of the given language.
// The explanation and translations are written in English.
func ExplanationPrompt(languageName, word string) string {
	return fmt.Sprintf("Explain the %s word %q to an English speaking learner. "+
		"Translate it to English and describe its meaning and typical usage.",
		languageName, strings.TrimSpace(word))
}

// DialoguePrompt builds the user prompt for a dialogue about topic at the given learner level.
func DialoguePrompt(languageName, topic string, level int) string {
	return fmt.Sprintf("Write a dialogue in %s about %q for a learner at level %d. "+
		"Higher levels use longer sentences and less common vocabulary. "+
		"Provide an English translation for every line.",
		languageName, strings.TrimSpace(topic), level)
}

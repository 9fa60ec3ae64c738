package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/turi/backend/internal/gemini"
	"github.com/turi/backend/internal/models"
	"go.uber.org/zap"
)

const (
	maxWordLength  = 64
	maxTopicLength = 200
	maxDialogueLvl = 20
)

// TextGenerator produces structured JSON answers from a language model
type TextGenerator interface {
	// Method Enabled reports whether the generator is configured.
	Enabled() bool
	// Method GenerateJSON asks the model and decodes its JSON answer into target.
	// It returns the name of the model that answered.
	GenerateJSON(ctx context.Context, systemPrompt, userPrompt string, target any) (string, error)
}

// ExplanationRepository is the interface that wraps methods for the word explanation cache tables
type ExplanationRepository interface {
	// Method Get retrieves a cached explanation. A miss returns models.ErrNotFound.
	Get(ctx context.Context, language, word string) (*models.CachedExplanation, error)
	// Method Save stores an explanation, replacing any existing row for the word.
	Save(ctx context.Context, language, word string, explanation models.WordExplanation, model string) error
}

// DialogueWordRepository is the interface that wraps methods for words_quiz reads
type DialogueWordRepository interface {
	ListByDialogue(ctx context.Context, dialogueID int) ([]models.Word, error)
}

// contentService implements ContentService
type contentService struct {
	generator    TextGenerator
	explanations ExplanationRepository
	words        DialogueWordRepository
	logger       *zap.Logger
}

// NewContentService creates a new content service
func NewContentService(generator TextGenerator, explanations ExplanationRepository, words DialogueWordRepository, logger *zap.Logger) *contentService {
	return &contentService{
		generator:    generator,
		explanations: explanations,
		words:        words,
		logger:       logger,
	}
}

// ExplainWord returns the explanation of a word, generating and caching it on a miss
func (s *contentService) ExplainWord(ctx context.Context, language, word string) (*models.CachedExplanation, error) {
	lang, ok := models.ParseLanguage(language)
	if !ok {
		return nil, invalidInput("unsupported language %q", language)
	}
	word = strings.ToLower(strings.TrimSpace(word))
	if word == "" || utf8.RuneCountInString(word) > maxWordLength {
		return nil, invalidInput("word must be between 1 and %d characters", maxWordLength)
	}

	cached, err := s.explanations.Get(ctx, string(lang), word)
	if err == nil {
		return cached, nil
	}
	if !errors.Is(err, models.ErrNotFound) {
		return nil, fmt.Errorf("failed to read explanation cache: %w", err)
	}

	if !s.generator.Enabled() {
		return nil, ErrGenerationUnavailable
	}

	var explanation models.WordExplanation
	model, err := s.generator.GenerateJSON(ctx, gemini.ExplanationSystemPrompt, gemini.ExplanationPrompt(lang.Name(), word), &explanation)
	if err != nil {
		return nil, s.generationError(err, zap.String("language", string(lang)), zap.String("word", word))
	}
	if err := validateExplanation(&explanation); err != nil {
		s.logger.Warn("model returned an invalid explanation",
			zap.String("model", model),
			zap.String("word", word),
			zap.Error(err),
		)
		return nil, ErrInvalidModelOutput
	}
	// The cache key is the requested word even if the model normalized it differently
	explanation.Word = word

	if err := s.explanations.Save(ctx, string(lang), word, explanation, model); err != nil {
		// The answer is still useful, the next request will generate again
		s.logger.Warn("failed to cache explanation",
			zap.String("language", string(lang)),
			zap.String("word", word),
			zap.Error(err),
		)
	}

	return &models.CachedExplanation{
		Explanation: explanation,
		Model:       model,
	}, nil
}

// GenerateDialogue generates a practice dialogue. Dialogues are not persisted.
func (s *contentService) GenerateDialogue(ctx context.Context, req *models.GenerateDialogueRequest) (*models.Dialogue, error) {
	lang, ok := models.ParseLanguage(req.Language)
	if !ok {
		return nil, invalidInput("unsupported language %q", req.Language)
	}
	topic := strings.TrimSpace(req.Topic)
	if topic == "" || utf8.RuneCountInString(topic) > maxTopicLength {
		return nil, invalidInput("topic must be between 1 and %d characters", maxTopicLength)
	}
	level := req.Level
	if level == 0 {
		level = 1
	}
	if level < 1 || level > maxDialogueLvl {
		return nil, invalidInput("level must be between 1 and %d", maxDialogueLvl)
	}

	if !s.generator.Enabled() {
		return nil, ErrGenerationUnavailable
	}

	var dialogue models.Dialogue
	model, err := s.generator.GenerateJSON(ctx, gemini.DialogueSystemPrompt, gemini.DialoguePrompt(lang.Name(), topic, level), &dialogue)
	if err != nil {
		return nil, s.generationError(err, zap.String("language", string(lang)), zap.String("topic", topic))
	}
	if err := validateDialogue(&dialogue); err != nil {
		s.logger.Warn("model returned an invalid dialogue", zap.String("model", model), zap.Error(err))
		return nil, ErrInvalidModelOutput
	}

	return &dialogue, nil
}

// ListDialogueWords returns the quiz words introduced by a dialogue
func (s *contentService) ListDialogueWords(ctx context.Context, dialogueID int) ([]models.Word, error) {
	if dialogueID <= 0 {
		return nil, invalidInput("dialogue id must be positive")
	}
	words, err := s.words.ListByDialogue(ctx, dialogueID)
	if err != nil {
		return nil, fmt.Errorf("failed to list dialogue words: %w", err)
	}
	return words, nil
}

func (s *contentService) generationError(err error, fields ...zap.Field) error {
	if errors.Is(err, gemini.ErrNotConfigured) {
		return ErrGenerationUnavailable
	}
	if errors.Is(err, context.Canceled) {
		return err
	}
	s.logger.Error("text generation failed", append(fields, zap.Error(err))...)
	return fmt.Errorf("%w: %w", ErrGenerationFailed, err)
}

func validateExplanation(e *models.WordExplanation) error {
	e.Translation = strings.TrimSpace(e.Translation)
	e.Explanation = strings.TrimSpace(e.Explanation)
	if e.Translation == "" {
		return errors.New("missing translation")
	}
	if e.Explanation == "" {
		return errors.New("missing explanation")
	}
	if len(e.Examples) == 0 {
		return errors.New("missing examples")
	}
	for i, ex := range e.Examples {
		if strings.TrimSpace(ex.Sentence) == "" {
			return fmt.Errorf("example %d has no sentence", i)
		}
	}
	return nil
}

func validateDialogue(d *models.Dialogue) error {
	d.Title = strings.TrimSpace(d.Title)
	if d.Title == "" {
		return errors.New("missing title")
	}
	if len(d.Lines) < 2 {
		return fmt.Errorf("expected at least 2 lines, got %d", len(d.Lines))
	}
	for i, line := range d.Lines {
		if strings.TrimSpace(line.Speaker) == "" || strings.TrimSpace(line.Text) == "" {
			return fmt.Errorf("line %d is incomplete", i)
		}
	}
	return nil
}

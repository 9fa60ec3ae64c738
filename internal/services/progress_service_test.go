package services

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/turi/backend/internal/models"
	"go.uber.org/zap"
)

type progressFixture struct {
	svc         *progressService
	levels      *mockLevelRepository
	completions *mockCompletionRepository
	users       *mockUserRepository
	words       *mockWordCounter
	anon        *mockAnonymousStore
	user        *models.User
}

func newProgressFixture(t *testing.T) *progressFixture {
	t.Helper()
	user := &models.User{ID: uuid.New(), Email: "a@b.io", MotherLanguage: "en", TargetLanguage: "es"}
	f := &progressFixture{
		levels:      newMockLevelRepository(),
		completions: newMockCompletionRepository(),
		users:       newMockUserRepository(user),
		words:       &mockWordCounter{perDialogue: 7},
		anon:        newMockAnonymousStore(),
		user:        user,
	}
	f.svc = NewProgressService(f.levels, f.completions, f.users, f.words, f.anon, "en", zap.NewNop())
	return f
}

func TestLevelForDialogue(t *testing.T) {
	tests := []struct {
		dialogue int
		level    int
	}{
		{dialogue: 0, level: 1},
		{dialogue: 1, level: 1},
		{dialogue: 5, level: 1},
		{dialogue: 6, level: 2},
		{dialogue: 10, level: 2},
		{dialogue: 11, level: 3},
		{dialogue: 100, level: 20},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.level, LevelForDialogue(tt.dialogue), "dialogue %d", tt.dialogue)
	}
}

func TestWordProgressIsCapped(t *testing.T) {
	assert.Equal(t, 500, ClampWordProgress(10_000))
	assert.Equal(t, 0, ClampWordProgress(-3))
	assert.Equal(t, 50, FallbackWordProgress(10))
	assert.Equal(t, 500, FallbackWordProgress(1000))
}

func TestNewProgressService(t *testing.T) {
	f := newProgressFixture(t)

	assert.NotNil(t, f.svc)
	assert.Equal(t, "en", f.svc.defaultLanguage)
}

func TestProgressService_TrackCompletedDialogue(t *testing.T) {
	tests := []struct {
		name                 string
		characterID          int
		dialogueID           int
		score                int
		setup                func(*progressFixture)
		expectedErrKind      ErrorKind
		expectError          bool
		expectedLevel        int
		expectedWordProgress int
	}{
		{
			name:                 "first completion",
			characterID:          1,
			dialogueID:           6,
			score:                80,
			expectedLevel:        2,
			expectedWordProgress: 42,
		},
		{
			name:                 "word progress capped",
			characterID:          1,
			dialogueID:           100,
			score:                80,
			expectedLevel:        20,
			expectedWordProgress: 500,
		},
		{
			name:        "word count failure falls back to estimate",
			characterID: 1,
			dialogueID:  11,
			score:       80,
			setup: func(f *progressFixture) {
				f.words.err = errors.New("db down")
			},
			expectedLevel:        3,
			expectedWordProgress: 55,
		},
		{name: "zero dialogue", characterID: 1, dialogueID: 0, score: 10, expectedErrKind: KindInvalidInput},
		{name: "negative character", characterID: -1, dialogueID: 1, score: 10, expectedErrKind: KindInvalidInput},
		{name: "score above range", characterID: 1, dialogueID: 1, score: 101, expectedErrKind: KindInvalidInput},
		{
			name:        "completion log failure",
			characterID: 1,
			dialogueID:  1,
			score:       10,
			setup: func(f *progressFixture) {
				f.completions.upsertErr = errors.New("boom")
			},
			expectError: true,
		},
		{
			name:        "level upsert failure",
			characterID: 1,
			dialogueID:  1,
			score:       10,
			setup: func(f *progressFixture) {
				f.levels.upsertErr = errors.New("boom")
			},
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newProgressFixture(t)
			if tt.setup != nil {
				tt.setup(f)
			}

			ll, err := f.svc.TrackCompletedDialogue(t.Context(), f.user.ID, tt.characterID, tt.dialogueID, tt.score)

			if tt.expectedErrKind != "" {
				var secErr *SecurityError
				require.ErrorAs(t, err, &secErr)
				assert.Equal(t, tt.expectedErrKind, secErr.Kind)
				assert.Nil(t, ll)
				return
			}
			if tt.expectError {
				assert.Error(t, err)
				assert.Nil(t, ll)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "es", ll.TargetLanguage)
			assert.Equal(t, tt.dialogueID, ll.DialogueNumber)
			assert.Equal(t, tt.expectedLevel, ll.Level)
			assert.Equal(t, tt.expectedWordProgress, ll.WordProgress)
		})
	}
}

func TestProgressService_TrackCompletedDialogue_Idempotent(t *testing.T) {
	f := newProgressFixture(t)

	first, err := f.svc.TrackCompletedDialogue(t.Context(), f.user.ID, 1, 3, 70)
	require.NoError(t, err)
	second, err := f.svc.TrackCompletedDialogue(t.Context(), f.user.ID, 1, 3, 70)
	require.NoError(t, err)

	assert.Equal(t, 1, f.levels.count())
	assert.Equal(t, first.DialogueNumber, second.DialogueNumber)
	assert.Equal(t, first.Level, second.Level)
	assert.Equal(t, 1, f.completions.entries(f.user.ID))
}

func TestProgressService_TrackCompletedDialogue_NeverRegresses(t *testing.T) {
	f := newProgressFixture(t)

	_, err := f.svc.TrackCompletedDialogue(t.Context(), f.user.ID, 1, 12, 70)
	require.NoError(t, err)
	ll, err := f.svc.TrackCompletedDialogue(t.Context(), f.user.ID, 2, 4, 90)
	require.NoError(t, err)

	assert.Equal(t, 12, ll.DialogueNumber)
	assert.Equal(t, 3, ll.Level)
	assert.Equal(t, 84, ll.WordProgress)
}

func TestProgressService_TrackCompletedDialogue_ConcurrentConverges(t *testing.T) {
	f := newProgressFixture(t)

	var wg sync.WaitGroup
	for dialogue := 1; dialogue <= 20; dialogue++ {
		wg.Add(1)
		go func(d int) {
			defer wg.Done()
			_, err := f.svc.TrackCompletedDialogue(context.Background(), f.user.ID, 1, d, 50)
			assert.NoError(t, err)
		}(dialogue)
	}
	wg.Wait()

	ll, err := f.levels.Get(t.Context(), f.user.ID, "es")
	require.NoError(t, err)
	assert.Equal(t, 1, f.levels.count())
	assert.Equal(t, 20, ll.DialogueNumber)
	assert.Equal(t, 4, ll.Level)
	assert.Equal(t, 140, ll.WordProgress)
}

func TestProgressService_TrackCompletedDialogue_UnknownUserGetsPlaceholder(t *testing.T) {
	f := newProgressFixture(t)
	unknown := uuid.New()

	ll, err := f.svc.TrackCompletedDialogue(t.Context(), unknown, 1, 2, 40)

	require.NoError(t, err)
	assert.Equal(t, "en", ll.TargetLanguage)
	assert.Equal(t, 1, f.users.ensured)
}

func TestProgressService_CheckAndUpdateUserProgress(t *testing.T) {
	t.Run("no completions returns nil", func(t *testing.T) {
		f := newProgressFixture(t)

		ll, err := f.svc.CheckAndUpdateUserProgress(t.Context(), f.user.ID)

		assert.NoError(t, err)
		assert.Nil(t, ll)
		assert.Equal(t, 0, f.levels.count())
	})

	t.Run("missing row is created from the log", func(t *testing.T) {
		f := newProgressFixture(t)
		f.completions.log[completionKey{f.user.ID, 1, 9}] = models.DialogueCompletion{UserID: f.user.ID, CharacterID: 1, DialogueID: 9}

		ll, err := f.svc.CheckAndUpdateUserProgress(t.Context(), f.user.ID)

		require.NoError(t, err)
		assert.Equal(t, 9, ll.DialogueNumber)
		assert.Equal(t, 2, ll.Level)
		assert.Equal(t, 63, ll.WordProgress)
	})

	t.Run("lagging row is repaired", func(t *testing.T) {
		f := newProgressFixture(t)
		f.completions.log[completionKey{f.user.ID, 1, 16}] = models.DialogueCompletion{UserID: f.user.ID, CharacterID: 1, DialogueID: 16}
		f.levels.rows[levelKey{f.user.ID, "es"}] = &models.LanguageLevel{UserID: f.user.ID, TargetLanguage: "es", Level: 1, WordProgress: 5, DialogueNumber: 2}

		ll, err := f.svc.CheckAndUpdateUserProgress(t.Context(), f.user.ID)

		require.NoError(t, err)
		assert.Equal(t, 16, ll.DialogueNumber)
		assert.Equal(t, 4, ll.Level)
		assert.Equal(t, 112, ll.WordProgress)
	})

	t.Run("consistent row is not written", func(t *testing.T) {
		f := newProgressFixture(t)
		f.completions.log[completionKey{f.user.ID, 1, 5}] = models.DialogueCompletion{UserID: f.user.ID, CharacterID: 1, DialogueID: 5}
		f.levels.rows[levelKey{f.user.ID, "es"}] = &models.LanguageLevel{UserID: f.user.ID, TargetLanguage: "es", Level: 1, WordProgress: 35, DialogueNumber: 5}

		ll, err := f.svc.CheckAndUpdateUserProgress(t.Context(), f.user.ID)

		require.NoError(t, err)
		assert.Equal(t, 5, ll.DialogueNumber)
		assert.Equal(t, 0, f.levels.upserts)
	})

	t.Run("nil user id", func(t *testing.T) {
		f := newProgressFixture(t)

		_, err := f.svc.CheckAndUpdateUserProgress(t.Context(), uuid.Nil)

		var secErr *SecurityError
		assert.ErrorAs(t, err, &secErr)
	})

	t.Run("log read failure", func(t *testing.T) {
		f := newProgressFixture(t)
		f.completions.maxErr = errors.New("boom")

		_, err := f.svc.CheckAndUpdateUserProgress(t.Context(), f.user.ID)
		assert.Error(t, err)
	})
}

func TestProgressService_SyncWordProgress(t *testing.T) {
	t.Run("missing row returns nil and creates nothing", func(t *testing.T) {
		f := newProgressFixture(t)

		ll, err := f.svc.SyncWordProgress(t.Context(), f.user.ID, "")

		assert.NoError(t, err)
		assert.Nil(t, ll)
		assert.Equal(t, 0, f.levels.count())
		assert.Equal(t, 0, f.users.ensured)
	})

	t.Run("unknown user returns nil", func(t *testing.T) {
		f := newProgressFixture(t)

		ll, err := f.svc.SyncWordProgress(t.Context(), uuid.New(), "")

		assert.NoError(t, err)
		assert.Nil(t, ll)
		assert.Equal(t, 0, f.users.ensured)
	})

	t.Run("stale word progress is recomputed", func(t *testing.T) {
		f := newProgressFixture(t)
		f.levels.rows[levelKey{f.user.ID, "fr"}] = &models.LanguageLevel{UserID: f.user.ID, TargetLanguage: "fr", Level: 1, WordProgress: 3, DialogueNumber: 7}

		ll, err := f.svc.SyncWordProgress(t.Context(), f.user.ID, "FR")

		require.NoError(t, err)
		assert.Equal(t, 49, ll.WordProgress)
		assert.Equal(t, 2, ll.Level)
		stored, _ := f.levels.Get(t.Context(), f.user.ID, "fr")
		assert.Equal(t, 49, stored.WordProgress)
	})

	t.Run("row advanced concurrently is re-read", func(t *testing.T) {
		f := newProgressFixture(t)
		f.levels.advanceOnUpdate = true
		f.levels.rows[levelKey{f.user.ID, "es"}] = &models.LanguageLevel{UserID: f.user.ID, TargetLanguage: "es", Level: 1, WordProgress: 3, DialogueNumber: 5}

		ll, err := f.svc.SyncWordProgress(t.Context(), f.user.ID, "")

		require.NoError(t, err)
		assert.Equal(t, 6, ll.DialogueNumber)
	})

	t.Run("unsupported language", func(t *testing.T) {
		f := newProgressFixture(t)

		_, err := f.svc.SyncWordProgress(t.Context(), f.user.ID, "klingon")

		var secErr *SecurityError
		require.ErrorAs(t, err, &secErr)
		assert.Equal(t, KindInvalidInput, secErr.Kind)
	})
}

func TestProgressService_MergeAnonymousProgress(t *testing.T) {
	t.Run("every entry lands exactly once and merged entries are removed", func(t *testing.T) {
		f := newProgressFixture(t)
		anonID := uuid.New()
		f.anon.entries[anonID] = []models.AnonymousCompletion{
			{CharacterID: 1, DialogueID: 3, Score: 60},
			{CharacterID: 1, DialogueID: 1, Score: 90},
			{CharacterID: 2, DialogueID: 7, Score: 75},
		}
		body := []models.AnonymousCompletion{
			{CharacterID: 1, DialogueID: 3, Score: 85},
			{CharacterID: 3, DialogueID: 2, Score: 40},
		}

		result, err := f.svc.MergeAnonymousProgress(t.Context(), f.user.ID, anonID, body)

		require.NoError(t, err)
		assert.Equal(t, 4, result.Merged)
		assert.Equal(t, 7, result.Progress.DialogueNumber)
		assert.Equal(t, 4, f.completions.entries(f.user.ID))
		assert.Equal(t, 85, f.completions.log[completionKey{f.user.ID, 1, 3}].Score)
		assert.Empty(t, f.anon.entries[anonID])
		assert.Equal(t, 1, f.anon.removed)
	})

	t.Run("repeating a merge does not duplicate entries", func(t *testing.T) {
		f := newProgressFixture(t)
		body := []models.AnonymousCompletion{{CharacterID: 1, DialogueID: 2, Score: 50}}

		_, err := f.svc.MergeAnonymousProgress(t.Context(), f.user.ID, uuid.Nil, body)
		require.NoError(t, err)
		_, err = f.svc.MergeAnonymousProgress(t.Context(), f.user.ID, uuid.Nil, body)
		require.NoError(t, err)

		assert.Equal(t, 1, f.completions.entries(f.user.ID))
		assert.Equal(t, 1, f.levels.count())
	})

	t.Run("failed replay keeps the store", func(t *testing.T) {
		f := newProgressFixture(t)
		anonID := uuid.New()
		f.anon.entries[anonID] = []models.AnonymousCompletion{
			{CharacterID: 1, DialogueID: 1, Score: 60},
			{CharacterID: 1, DialogueID: 2, Score: 60},
		}
		f.completions.failOnDialogue = 2

		_, err := f.svc.MergeAnonymousProgress(t.Context(), f.user.ID, anonID, nil)

		assert.Error(t, err)
		assert.Len(t, f.anon.entries[anonID], 2)
		assert.Equal(t, 0, f.anon.removed)
	})

	t.Run("invalid request entry rejects the merge", func(t *testing.T) {
		f := newProgressFixture(t)

		_, err := f.svc.MergeAnonymousProgress(t.Context(), f.user.ID, uuid.Nil, []models.AnonymousCompletion{{CharacterID: 1, DialogueID: 1, Score: 500}})

		var secErr *SecurityError
		require.ErrorAs(t, err, &secErr)
		assert.Equal(t, 0, f.completions.entries(f.user.ID))
	})

	t.Run("invalid stored entries are skipped", func(t *testing.T) {
		f := newProgressFixture(t)
		anonID := uuid.New()
		f.anon.entries[anonID] = []models.AnonymousCompletion{
			{CharacterID: 0, DialogueID: 1, Score: 60},
			{CharacterID: 1, DialogueID: 4, Score: 60},
		}

		result, err := f.svc.MergeAnonymousProgress(t.Context(), f.user.ID, anonID, nil)

		require.NoError(t, err)
		assert.Equal(t, 1, result.Merged)
	})

	t.Run("completions recorded during the merge stay in the store", func(t *testing.T) {
		f := newProgressFixture(t)
		anonID := uuid.New()
		f.anon.entries[anonID] = []models.AnonymousCompletion{
			{CharacterID: 1, DialogueID: 1, Score: 60},
			{CharacterID: 1, DialogueID: 2, Score: 40},
		}
		late := []models.AnonymousCompletion{
			{CharacterID: 1, DialogueID: 3, Score: 70},
			{CharacterID: 1, DialogueID: 2, Score: 95},
		}
		f.anon.afterList = func() {
			for _, e := range late {
				require.NoError(t, f.anon.Record(t.Context(), anonID, e))
			}
		}

		result, err := f.svc.MergeAnonymousProgress(t.Context(), f.user.ID, anonID, nil)

		require.NoError(t, err)
		assert.Equal(t, 2, result.Merged)
		assert.Equal(t, 1, f.anon.removed)
		assert.ElementsMatch(t, late, f.anon.entries[anonID])

		f.anon.afterList = nil
		result, err = f.svc.MergeAnonymousProgress(t.Context(), f.user.ID, anonID, nil)

		require.NoError(t, err)
		assert.Equal(t, 2, result.Merged)
		assert.Equal(t, 95, f.completions.log[completionKey{f.user.ID, 1, 2}].Score)
		assert.Empty(t, f.anon.entries[anonID])
	})

	t.Run("store read failure", func(t *testing.T) {
		f := newProgressFixture(t)
		f.anon.listErr = errors.New("redis down")

		_, err := f.svc.MergeAnonymousProgress(t.Context(), f.user.ID, uuid.New(), nil)
		assert.Error(t, err)
	})
}

func TestDedupeCompletions(t *testing.T) {
	out := dedupeCompletions([]models.AnonymousCompletion{
		{CharacterID: 2, DialogueID: 5, Score: 10},
		{CharacterID: 1, DialogueID: 5, Score: 20},
		{CharacterID: 2, DialogueID: 5, Score: 30},
		{CharacterID: 1, DialogueID: 1, Score: 40},
	})

	require.Len(t, out, 3)
	assert.Equal(t, 1, out[0].DialogueID)
	assert.Equal(t, 1, out[1].CharacterID)
	assert.Equal(t, 2, out[2].CharacterID)
	assert.Equal(t, 30, out[2].Score)
}

func TestProgressService_AnonymousRecording(t *testing.T) {
	f := newProgressFixture(t)
	anonID := uuid.New()

	require.NoError(t, f.svc.RecordAnonymousCompletion(t.Context(), anonID, 1, 2, 80))
	entries, err := f.svc.ListAnonymousProgress(t.Context(), anonID)
	require.NoError(t, err)
	assert.Len(t, entries, 1)

	var secErr *SecurityError
	assert.ErrorAs(t, f.svc.RecordAnonymousCompletion(t.Context(), uuid.Nil, 1, 2, 80), &secErr)
	assert.ErrorAs(t, f.svc.RecordAnonymousCompletion(t.Context(), anonID, 1, -2, 80), &secErr)
}

func TestProgressService_GetProgress(t *testing.T) {
	t.Run("default when no row", func(t *testing.T) {
		f := newProgressFixture(t)

		ll, err := f.svc.GetProgress(t.Context(), f.user.ID)

		require.NoError(t, err)
		assert.Equal(t, 1, ll.Level)
		assert.Equal(t, 0, ll.WordProgress)
		assert.Equal(t, "es", ll.TargetLanguage)
	})

	t.Run("unknown user", func(t *testing.T) {
		f := newProgressFixture(t)

		_, err := f.svc.GetProgress(t.Context(), uuid.New())
		assert.ErrorIs(t, err, ErrUserNotFound)
	})
}

func TestProgressService_SweepDriftedProgress(t *testing.T) {
	f := newProgressFixture(t)
	missing := uuid.New()
	f.completions.log[completionKey{f.user.ID, 1, 8}] = models.DialogueCompletion{UserID: f.user.ID, CharacterID: 1, DialogueID: 8}
	f.completions.log[completionKey{missing, 1, 8}] = models.DialogueCompletion{UserID: missing, CharacterID: 1, DialogueID: 8}
	f.levels.drifted = []uuid.UUID{f.user.ID, missing}

	result, err := f.svc.SweepDriftedProgress(t.Context(), 10)

	require.NoError(t, err)
	assert.Equal(t, 2, result.Checked)
	assert.Equal(t, 1, result.Repaired)
	assert.Equal(t, 1, result.Failed)

	_, err = f.svc.SweepDriftedProgress(t.Context(), 0)
	assert.Error(t, err)
}

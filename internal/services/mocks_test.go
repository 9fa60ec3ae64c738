package services

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/turi/backend/internal/models"
)

type levelKey struct {
	userID   uuid.UUID
	language string
}

// mockLevelRepository keeps rows in memory and merges them like the SQL upsert does
type mockLevelRepository struct {
	mu              sync.Mutex
	rows            map[levelKey]*models.LanguageLevel
	upserts         int
	drifted         []uuid.UUID
	getErr          error
	upsertErr       error
	updateErr       error
	listErr         error
	advanceOnUpdate bool
}

func newMockLevelRepository() *mockLevelRepository {
	return &mockLevelRepository{rows: map[levelKey]*models.LanguageLevel{}}
}

func (m *mockLevelRepository) Get(ctx context.Context, userID uuid.UUID, targetLanguage string) (*models.LanguageLevel, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return nil, m.getErr
	}
	row, ok := m.rows[levelKey{userID, targetLanguage}]
	if !ok {
		return nil, models.ErrNotFound
	}
	cp := *row
	return &cp, nil
}

func (m *mockLevelRepository) Upsert(ctx context.Context, ll *models.LanguageLevel) (*models.LanguageLevel, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.upsertErr != nil {
		return nil, m.upsertErr
	}
	m.upserts++
	key := levelKey{ll.UserID, ll.TargetLanguage}
	cur, ok := m.rows[key]
	if !ok {
		cp := *ll
		cp.ID = int64(len(m.rows) + 1)
		m.rows[key] = &cp
		out := cp
		return &out, nil
	}
	if ll.DialogueNumber >= cur.DialogueNumber {
		cur.WordProgress = ll.WordProgress
	}
	cur.DialogueNumber = max(cur.DialogueNumber, ll.DialogueNumber)
	cur.Level = LevelForDialogue(cur.DialogueNumber)
	out := *cur
	return &out, nil
}

func (m *mockLevelRepository) UpdateDerived(ctx context.Context, ll *models.LanguageLevel) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.updateErr != nil {
		return false, m.updateErr
	}
	cur, ok := m.rows[levelKey{ll.UserID, ll.TargetLanguage}]
	if m.advanceOnUpdate && ok {
		// Simulates a concurrent completion moving the row forward first
		cur.DialogueNumber++
		cur.Level = LevelForDialogue(cur.DialogueNumber)
	}
	if !ok || cur.DialogueNumber != ll.DialogueNumber {
		return false, nil
	}
	cur.Level = ll.Level
	cur.WordProgress = ll.WordProgress
	return true, nil
}

func (m *mockLevelRepository) ListDrifted(ctx context.Context, limit int) ([]uuid.UUID, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	if len(m.drifted) > limit {
		return m.drifted[:limit], nil
	}
	return m.drifted, nil
}

func (m *mockLevelRepository) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.rows)
}

type completionKey struct {
	userID      uuid.UUID
	characterID int
	dialogueID  int
}

// mockCompletionRepository keeps the completion log in memory
type mockCompletionRepository struct {
	mu        sync.Mutex
	log       map[completionKey]models.DialogueCompletion
	upsertErr error
	maxErr    error
	// failOnDialogue makes Upsert fail for one dialogue id
	failOnDialogue int
}

func newMockCompletionRepository() *mockCompletionRepository {
	return &mockCompletionRepository{log: map[completionKey]models.DialogueCompletion{}}
}

func (m *mockCompletionRepository) Upsert(ctx context.Context, c *models.DialogueCompletion) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.upsertErr != nil {
		return m.upsertErr
	}
	if m.failOnDialogue != 0 && c.DialogueID == m.failOnDialogue {
		return context.DeadlineExceeded
	}
	key := completionKey{c.UserID, c.CharacterID, c.DialogueID}
	if cur, ok := m.log[key]; ok {
		c.Score = max(cur.Score, c.Score)
	}
	c.CompletedAt = time.Now()
	m.log[key] = *c
	return nil
}

func (m *mockCompletionRepository) MaxDialogueID(ctx context.Context, userID uuid.UUID) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.maxErr != nil {
		return 0, m.maxErr
	}
	highest := 0
	for k := range m.log {
		if k.userID == userID {
			highest = max(highest, k.dialogueID)
		}
	}
	return highest, nil
}

func (m *mockCompletionRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.DialogueCompletion, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.DialogueCompletion
	for k, c := range m.log {
		if k.userID == userID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (m *mockCompletionRepository) entries(userID uuid.UUID) int {
	list, _ := m.ListByUser(context.Background(), userID)
	return len(list)
}

// mockUserRepository keeps users in memory
type mockUserRepository struct {
	mu        sync.Mutex
	users     map[uuid.UUID]*models.User
	byEmail   map[string]uuid.UUID
	getErr    error
	createErr error
	ensured   int
}

func newMockUserRepository(users ...*models.User) *mockUserRepository {
	m := &mockUserRepository{users: map[uuid.UUID]*models.User{}, byEmail: map[string]uuid.UUID{}}
	for _, u := range users {
		m.users[u.ID] = u
		if u.Email != "" {
			m.byEmail[u.Email] = u.ID
		}
	}
	return m
}

func (m *mockUserRepository) GetByID(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return nil, m.getErr
	}
	u, ok := m.users[userID]
	if !ok {
		return nil, models.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (m *mockUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	m.mu.Lock()
	id, ok := m.byEmail[email]
	m.mu.Unlock()
	if !ok {
		return nil, models.ErrNotFound
	}
	return m.GetByID(ctx, id)
}

func (m *mockUserRepository) EnsureExists(ctx context.Context, userID uuid.UUID, targetLanguage string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ensured++
	if _, ok := m.users[userID]; !ok {
		m.users[userID] = &models.User{ID: userID, MotherLanguage: targetLanguage, TargetLanguage: targetLanguage}
	}
	return nil
}

func (m *mockUserRepository) Create(ctx context.Context, user *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createErr != nil {
		return m.createErr
	}
	if _, ok := m.byEmail[user.Email]; ok {
		return models.ErrConflict
	}
	cp := *user
	m.users[user.ID] = &cp
	m.byEmail[user.Email] = user.ID
	return nil
}

func (m *mockUserRepository) UpdateLanguages(ctx context.Context, userID uuid.UUID, motherLanguage, targetLanguage string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[userID]
	if !ok {
		return models.ErrNotFound
	}
	u.MotherLanguage = motherLanguage
	u.TargetLanguage = targetLanguage
	return nil
}

func (m *mockUserRepository) AddMinutes(ctx context.Context, userID uuid.UUID, minutes int) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[userID]
	if !ok {
		return 0, models.ErrNotFound
	}
	u.TotalMinutes += minutes
	return u.TotalMinutes, nil
}

// mockWordCounter returns a fixed count per dialogue
type mockWordCounter struct {
	perDialogue int
	err         error
}

func (m *mockWordCounter) CountUpToDialogue(ctx context.Context, dialogueID int) (int, error) {
	if m.err != nil {
		return 0, m.err
	}
	return dialogueID * m.perDialogue, nil
}

// mockAnonymousStore keeps anonymous entries in memory
type mockAnonymousStore struct {
	mu      sync.Mutex
	entries map[uuid.UUID][]models.AnonymousCompletion
	listErr error
	removed int
	// afterList runs once List has taken its snapshot
	afterList func()
}

func newMockAnonymousStore() *mockAnonymousStore {
	return &mockAnonymousStore{entries: map[uuid.UUID][]models.AnonymousCompletion{}}
}

func (m *mockAnonymousStore) Record(ctx context.Context, anonymousID uuid.UUID, entry models.AnonymousCompletion) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[anonymousID] = append(m.entries[anonymousID], entry)
	return nil
}

func (m *mockAnonymousStore) List(ctx context.Context, anonymousID uuid.UUID) ([]models.AnonymousCompletion, error) {
	m.mu.Lock()
	if m.listErr != nil {
		m.mu.Unlock()
		return nil, m.listErr
	}
	snapshot := append([]models.AnonymousCompletion(nil), m.entries[anonymousID]...)
	m.mu.Unlock()
	if m.afterList != nil {
		m.afterList()
	}
	return snapshot, nil
}

func (m *mockAnonymousStore) Remove(ctx context.Context, anonymousID uuid.UUID, merged []models.AnonymousCompletion) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.removed++
	kept := m.entries[anonymousID][:0]
	for _, e := range m.entries[anonymousID] {
		if !mergedCovers(merged, e) {
			kept = append(kept, e)
		}
	}
	if len(kept) == 0 {
		delete(m.entries, anonymousID)
		return nil
	}
	m.entries[anonymousID] = kept
	return nil
}

func mergedCovers(merged []models.AnonymousCompletion, e models.AnonymousCompletion) bool {
	for _, m := range merged {
		if m.CharacterID == e.CharacterID && m.DialogueID == e.DialogueID && e.Score <= m.Score {
			return true
		}
	}
	return false
}

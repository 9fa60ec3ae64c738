// Package cache holds Redis backed stores with explicit TTLs
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"github.com/turi/backend/internal/models"
)

const (
	anonymousKeyPrefix = "anon_progress:"
	// AnonymousTTL is how long anonymous progress survives without new completions
	AnonymousTTL = 30 * 24 * time.Hour
)

// recordBestScript stores an entry unless the stored one has an equal or higher score.
// The key TTL is refreshed in both cases.
var recordBestScript = redis.NewScript(`
local cur = redis.call('HGET', KEYS[1], ARGV[1])
if cur then
	local old = cjson.decode(cur)
	if tonumber(old.score) >= tonumber(ARGV[3]) then
		redis.call('EXPIRE', KEYS[1], ARGV[4])
		return 0
	end
end
redis.call('HSET', KEYS[1], ARGV[1], ARGV[2])
redis.call('EXPIRE', KEYS[1], ARGV[4])
return 1
`)

// removeMergedScript deletes fields whose stored score is not above the merged one.
// ARGV holds field and score pairs. Entries recorded after the merge read the hash survive.
var removeMergedScript = redis.NewScript(`
local removed = 0
for i = 1, #ARGV, 2 do
	local cur = redis.call('HGET', KEYS[1], ARGV[i])
	if cur then
		local stored = cjson.decode(cur)
		if tonumber(stored.score) <= tonumber(ARGV[i + 1]) then
			removed = removed + redis.call('HDEL', KEYS[1], ARGV[i])
		end
	end
end
return removed
`)

// AnonymousStore keeps completions of users without an account, keyed by a pseudo-id.
// Each pseudo-id maps to one hash whose fields are "<character>:<dialogue>".
type AnonymousStore struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewAnonymousStore creates a new anonymous progress store
func NewAnonymousStore(rdb *redis.Client) *AnonymousStore {
	return &AnonymousStore{
		rdb: rdb,
		ttl: AnonymousTTL,
	}
}

func anonymousKey(anonymousID uuid.UUID) string {
	return anonymousKeyPrefix + anonymousID.String()
}

func entryField(characterID, dialogueID int) string {
	return strconv.Itoa(characterID) + ":" + strconv.Itoa(dialogueID)
}

// parseEntryField is the inverse of entryField
func parseEntryField(field string) (int, int, error) {
	charPart, dialoguePart, ok := strings.Cut(field, ":")
	if !ok {
		return 0, 0, fmt.Errorf("malformed field %q", field)
	}
	characterID, err := strconv.Atoi(charPart)
	if err != nil {
		return 0, 0, fmt.Errorf("malformed character in field %q: %w", field, err)
	}
	dialogueID, err := strconv.Atoi(dialoguePart)
	if err != nil {
		return 0, 0, fmt.Errorf("malformed dialogue in field %q: %w", field, err)
	}
	return characterID, dialogueID, nil
}

// Record stores a completion, keeping the best score per dialogue
func (s *AnonymousStore) Record(ctx context.Context, anonymousID uuid.UUID, entry models.AnonymousCompletion) error {
	if entry.CompletedAt.IsZero() {
		entry.CompletedAt = time.Now().UTC()
	}
	raw, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to encode anonymous completion: %w", err)
	}

	err = recordBestScript.Run(ctx, s.rdb,
		[]string{anonymousKey(anonymousID)},
		entryField(entry.CharacterID, entry.DialogueID),
		string(raw),
		entry.Score,
		int(s.ttl.Seconds()),
	).Err()
	if err != nil {
		return fmt.Errorf("failed to record anonymous completion: %w", err)
	}

	return nil
}

// List returns stored completions ordered by dialogue and character.
// Entries that cannot be decoded are skipped.
func (s *AnonymousStore) List(ctx context.Context, anonymousID uuid.UUID) ([]models.AnonymousCompletion, error) {
	fields, err := s.rdb.HGetAll(ctx, anonymousKey(anonymousID)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list anonymous completions: %w", err)
	}

	return decodeEntries(fields), nil
}

// Remove deletes merged completions of a pseudo-id. An entry is kept when a better
// score was recorded after it was read, and so are entries for other dialogues.
func (s *AnonymousStore) Remove(ctx context.Context, anonymousID uuid.UUID, merged []models.AnonymousCompletion) error {
	if len(merged) == 0 {
		return nil
	}
	args := make([]any, 0, 2*len(merged))
	for _, e := range merged {
		args = append(args, entryField(e.CharacterID, e.DialogueID), e.Score)
	}

	if err := removeMergedScript.Run(ctx, s.rdb, []string{anonymousKey(anonymousID)}, args...).Err(); err != nil {
		return fmt.Errorf("failed to remove merged anonymous completions: %w", err)
	}
	return nil
}

func decodeEntries(fields map[string]string) []models.AnonymousCompletion {
	entries := make([]models.AnonymousCompletion, 0, len(fields))
	for field, raw := range fields {
		characterID, dialogueID, err := parseEntryField(field)
		if err != nil {
			continue
		}
		var entry models.AnonymousCompletion
		if err := json.Unmarshal([]byte(raw), &entry); err != nil {
			continue
		}
		// The field is authoritative for the identity of the entry
		entry.CharacterID = characterID
		entry.DialogueID = dialogueID
		entries = append(entries, entry)
	}

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].DialogueID != entries[j].DialogueID {
			return entries[i].DialogueID < entries[j].DialogueID
		}
		return entries[i].CharacterID < entries[j].CharacterID
	})

	return entries
}

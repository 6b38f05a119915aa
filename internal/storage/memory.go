package storage

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/vithika-cyber/calorie-bot/internal/models"
)

type userKey struct {
	userID int64
	chatID int64
}

// MemoryStorage keeps everything in process. Used for development and
// tests; the interface it satisfies is the same one the Postgres backing
// implements.
type MemoryStorage struct {
	mu            sync.RWMutex
	users         map[userKey]*models.UserProfile
	logs          map[string]*models.FoodLogEntry
	turns         map[int64][]models.ConversationTurn
	cache         map[string]*models.FoodRecord
	retainedTurns int
}

func NewMemoryStorage(retainedTurns int) *MemoryStorage {
	if retainedTurns <= 0 {
		retainedTurns = 10
	}
	return &MemoryStorage{
		users:         make(map[userKey]*models.UserProfile),
		logs:          make(map[string]*models.FoodLogEntry),
		turns:         make(map[int64][]models.ConversationTurn),
		cache:         make(map[string]*models.FoodRecord),
		retainedTurns: retainedTurns,
	}
}

func (s *MemoryStorage) GetOrCreateUser(_ context.Context, userID, chatID int64) (*models.UserProfile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := userKey{userID, chatID}
	if user, exists := s.users[key]; exists {
		copied := *user
		return &copied, nil
	}

	now := time.Now()
	user := &models.UserProfile{
		UserID:      userID,
		ChatID:      chatID,
		Preferences: map[string]string{},
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	s.users[key] = user
	copied := *user
	return &copied, nil
}

func (s *MemoryStorage) UpdateUser(_ context.Context, user *models.UserProfile) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := userKey{user.UserID, user.ChatID}
	if _, exists := s.users[key]; !exists {
		return &NotFoundError{What: "user"}
	}

	copied := *user
	copied.UpdatedAt = time.Now()
	s.users[key] = &copied
	return nil
}

func (s *MemoryStorage) DeleteUser(_ context.Context, userID, chatID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.users, userKey{userID, chatID})
	for id, entry := range s.logs {
		if entry.UserID == userID {
			delete(s.logs, id)
		}
	}
	delete(s.turns, userID)
	return nil
}

func (s *MemoryStorage) CreateFoodLog(_ context.Context, entry *models.FoodLogEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}
	if entry.LoggedAt.IsZero() {
		entry.LoggedAt = time.Now()
	}

	copied := *entry
	s.logs[entry.ID] = &copied
	return nil
}

func (s *MemoryStorage) FoodLogsBetween(_ context.Context, userID int64, start, end time.Time) ([]*models.FoodLogEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*models.FoodLogEntry
	for _, entry := range s.logs {
		if entry.UserID != userID {
			continue
		}
		if entry.LoggedAt.Before(start) || !entry.LoggedAt.Before(end) {
			continue
		}
		copied := *entry
		result = append(result, &copied)
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].LoggedAt.Before(result[j].LoggedAt)
	})
	return result, nil
}

func (s *MemoryStorage) DeleteLastFoodLog(_ context.Context, userID int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var lastID string
	var lastAt time.Time
	for id, entry := range s.logs {
		if entry.UserID == userID && entry.LoggedAt.After(lastAt) {
			lastID, lastAt = id, entry.LoggedAt
		}
	}
	if lastID == "" {
		return false, nil
	}
	delete(s.logs, lastID)
	return true, nil
}

func (s *MemoryStorage) AppendTurn(_ context.Context, turn *models.ConversationTurn) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	copied := *turn
	if copied.CreatedAt.IsZero() {
		copied.CreatedAt = time.Now()
	}

	turns := append(s.turns[turn.UserID], copied)
	if len(turns) > s.retainedTurns {
		turns = turns[len(turns)-s.retainedTurns:]
	}
	s.turns[turn.UserID] = turns
	return nil
}

func (s *MemoryStorage) RecentTurns(_ context.Context, userID int64, limit int) ([]models.ConversationTurn, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	turns := s.turns[userID]
	if limit > 0 && len(turns) > limit {
		turns = turns[len(turns)-limit:]
	}

	result := make([]models.ConversationTurn, len(turns))
	copy(result, turns)
	return result, nil
}

func (s *MemoryStorage) GetCachedNutrition(_ context.Context, key string) (*models.FoodRecord, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.cache[key]
	if !ok {
		return nil, false, nil
	}
	copied := *rec
	return &copied, true, nil
}

func (s *MemoryStorage) PutCachedNutrition(_ context.Context, key string, rec *models.FoodRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	copied := *rec
	s.cache[key] = &copied
	return nil
}

func (s *MemoryStorage) Close() error {
	// Nothing to close for in-memory storage
	return nil
}

package store

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/ArtoLord/enoa-sign-roller/models"
)

// MemoryStore implements the full Store contract in memory, including
// real atomicity across concurrent callers: every operation runs under
// one mutex, so the conditional-write semantics match the SQL
// implementation exactly. Used by tests and local development.
type MemoryStore struct {
	mu    sync.Mutex
	users map[string]models.User
	signs map[string]models.GuildSign

	// Now is the clock used for day-boundary checks. Tests override it
	// to simulate crossing midnight.
	Now func() time.Time
}

// NewMemoryStore creates an empty store with the real clock.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users: make(map[string]models.User),
		signs: make(map[string]models.GuildSign),
		Now:   time.Now,
	}
}

func userKey(userID, guildID string) string { return userID + "/" + guildID }

func (s *MemoryStore) GetUser(ctx context.Context, userID, guildID string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users[userKey(userID, guildID)]
	if !ok {
		return nil, nil
	}
	return &user, nil
}

func (s *MemoryStore) PutUser(ctx context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	user.UpdatedAt = s.Now()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = user.UpdatedAt
	}
	s.users[userKey(user.UserID, user.GuildID)] = *user
	return nil
}

func (s *MemoryStore) CreateSign(ctx context.Context, guildID, signID, createdBy string) (*models.GuildSign, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.Now()
	if existing, ok := s.signs[guildID]; ok && IsToday(existing.CreatedAt, now) {
		return nil, nil
	}

	sign := models.GuildSign{
		GuildID:   guildID,
		SignID:    signID,
		CreatedBy: createdBy,
		CreatedAt: now,
		State:     models.SignStateCreated,
	}
	s.signs[guildID] = sign
	return &sign, nil
}

func (s *MemoryStore) GetGuildSign(ctx context.Context, guildID string) (*models.GuildSign, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sign, ok := s.signs[guildID]
	if !ok || !IsToday(sign.CreatedAt, s.Now()) {
		return nil, nil
	}
	return &sign, nil
}

func (s *MemoryStore) ResolveSign(ctx context.Context, guildID string, outcome models.SignState, resolvedBy string) (ResolveResult, error) {
	if !outcome.Resolved() {
		return ResolveResult{}, fmt.Errorf("resolve sign: outcome %q is not terminal", outcome)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	sign, ok := s.signs[guildID]
	if !ok || !IsToday(sign.CreatedAt, s.Now()) {
		return ResolveResult{Status: ResolveConflictAbsent}, nil
	}
	if sign.State != models.SignStateCreated {
		current := sign
		return ResolveResult{Status: ResolveConflictExisting, Sign: &current}, nil
	}

	sign.State = outcome
	sign.ResolvedBy = &resolvedBy
	s.signs[guildID] = sign
	return ResolveResult{Status: ResolveOK, Sign: &sign}, nil
}

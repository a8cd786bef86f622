package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/ArtoLord/enoa-sign-roller/models"
)

// GormStore implements Store on top of PostgreSQL. Every sign mutation
// is a single conditional statement whose WHERE clause carries both
// the day-boundary check and the expected-state check, so no explicit
// locking is ever taken.
type GormStore struct {
	db *gorm.DB
}

// NewGormStore wraps an initialized gorm connection.
func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) GetUser(ctx context.Context, userID, guildID string) (*models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND guild_id = ?", userID, guildID).
		First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get user %s/%s: %w", userID, guildID, err)
	}
	return &user, nil
}

func (s *GormStore) PutUser(ctx context.Context, user *models.User) error {
	user.UpdatedAt = time.Now()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = user.UpdatedAt
	}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "guild_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"power", "updated_at"}),
	}).Create(user).Error
	if err != nil {
		return fmt.Errorf("put user %s/%s: %w", user.UserID, user.GuildID, err)
	}
	return nil
}

// CreateSign is an insert-or-refresh guarded by "the existing row was
// created before today". Of two racing calls for the same guild the
// database lets exactly one through; the loser sees zero rows returned.
func (s *GormStore) CreateSign(ctx context.Context, guildID, signID, createdBy string) (*models.GuildSign, error) {
	now := time.Now()
	sign := models.GuildSign{
		GuildID:   guildID,
		SignID:    signID,
		CreatedBy: createdBy,
		CreatedAt: now,
		State:     models.SignStateCreated,
	}

	res := s.db.WithContext(ctx).Clauses(
		clause.OnConflict{
			Columns: []clause.Column{{Name: "guild_id"}},
			DoUpdates: clause.Assignments(map[string]interface{}{
				"sign_id":     signID,
				"created_by":  createdBy,
				"created_at":  now,
				"state":       models.SignStateCreated,
				"resolved_by": nil,
			}),
			Where: clause.Where{Exprs: []clause.Expression{
				clause.Lt{
					Column: clause.Column{Table: "guild_signs", Name: "created_at"},
					Value:  StartOfDay(now),
				},
			}},
		},
		clause.Returning{},
	).Create(&sign)
	if res.Error != nil {
		return nil, fmt.Errorf("create sign for guild %s: %w", guildID, res.Error)
	}
	if res.RowsAffected == 0 {
		// Today's sign already exists; nothing was written.
		return nil, nil
	}
	return &sign, nil
}

func (s *GormStore) GetGuildSign(ctx context.Context, guildID string) (*models.GuildSign, error) {
	var sign models.GuildSign
	err := s.db.WithContext(ctx).Where("guild_id = ?", guildID).First(&sign).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get sign for guild %s: %w", guildID, err)
	}
	if !IsToday(sign.CreatedAt, time.Now()) {
		// Yesterday's row is logically absent, not stale data.
		return nil, nil
	}
	return &sign, nil
}

// ResolveSign transitions today's Created sign in one conditional
// UPDATE. On predicate mismatch the current row is re-read so the
// caller can tell "no sign today" from "already resolved".
func (s *GormStore) ResolveSign(ctx context.Context, guildID string, outcome models.SignState, resolvedBy string) (ResolveResult, error) {
	if !outcome.Resolved() {
		return ResolveResult{}, fmt.Errorf("resolve sign: outcome %q is not terminal", outcome)
	}

	var sign models.GuildSign
	res := s.db.WithContext(ctx).
		Model(&sign).
		Clauses(clause.Returning{}).
		Where("guild_id = ? AND state = ? AND created_at >= ?",
			guildID, models.SignStateCreated, StartOfDay(time.Now())).
		Updates(map[string]interface{}{
			"state":       outcome,
			"resolved_by": resolvedBy,
		})
	if res.Error != nil {
		return ResolveResult{}, fmt.Errorf("resolve sign for guild %s: %w", guildID, res.Error)
	}
	if res.RowsAffected > 0 {
		sign.GuildID = guildID
		return ResolveResult{Status: ResolveOK, Sign: &sign}, nil
	}

	current, err := s.GetGuildSign(ctx, guildID)
	if err != nil {
		return ResolveResult{}, err
	}
	if current == nil {
		return ResolveResult{Status: ResolveConflictAbsent}, nil
	}
	return ResolveResult{Status: ResolveConflictExisting, Sign: current}, nil
}

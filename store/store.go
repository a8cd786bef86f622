// Package store owns all persisted state and every piece of
// concurrency control in the service. Mutations of a guild's sign are
// expressed as single conditional writes; the database (or the memory
// store's mutex) is the only serialization point.
package store

import (
	"context"
	"time"

	"github.com/ArtoLord/enoa-sign-roller/models"
)

// ResolveStatus tags the three distinguishable outcomes of ResolveSign.
type ResolveStatus int

const (
	// ResolveOK: the sign was transitioned by this call.
	ResolveOK ResolveStatus = iota
	// ResolveConflictExisting: a sign exists today but was not in the
	// Created state (or the predicate lost a race); Sign carries the
	// current row so the caller can classify why.
	ResolveConflictExisting
	// ResolveConflictAbsent: no sign exists for the guild today.
	ResolveConflictAbsent
)

// ResolveResult is the outcome of a conditional sign transition.
// When Status is ResolveOK, Sign is the updated row; on
// ResolveConflictExisting it is the unmodified current row.
type ResolveResult struct {
	Status ResolveStatus
	Sign   *models.GuildSign
}

// Store is the persistence contract. Implementations must make
// CreateSign and ResolveSign atomic under arbitrary concurrent
// callers: of two racing creates exactly one wins, of two racing
// resolves exactly one wins.
type Store interface {
	// GetUser returns the user's per-guild record, or nil when the
	// user was never seen in this guild.
	GetUser(ctx context.Context, userID, guildID string) (*models.User, error)
	// PutUser upserts the record, last write wins. A user's power is
	// only ever touched by that user's own request, so no concurrency
	// control is needed here.
	PutUser(ctx context.Context, user *models.User) error

	// CreateSign atomically creates today's sign for the guild. It
	// returns nil (no error) when a sign already exists today; the
	// existing row is left untouched.
	CreateSign(ctx context.Context, guildID, signID, createdBy string) (*models.GuildSign, error)
	// GetGuildSign returns today's sign, or nil when the guild has no
	// sign today. Rows created on previous days are reported absent.
	GetGuildSign(ctx context.Context, guildID string) (*models.GuildSign, error)

	// ResolveSign atomically transitions today's Created sign to the
	// given terminal state. The predicate and the write are one
	// statement; losers get a conflict result carrying current state.
	ResolveSign(ctx context.Context, guildID string, outcome models.SignState, resolvedBy string) (ResolveResult, error)
}

// StartOfDay truncates t to midnight in its own location. Both stores
// derive their day-boundary predicates from this single helper so the
// fetch path and the write path can never disagree.
func StartOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// IsToday reports whether t falls on the same calendar day as now.
func IsToday(t, now time.Time) bool {
	return !t.Before(StartOfDay(now)) && t.Before(StartOfDay(now).Add(24*time.Hour))
}

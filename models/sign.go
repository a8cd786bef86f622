package models

import "time"

// SignState is the lifecycle state of a guild's daily sign.
// A sign starts as Created and transitions exactly once to either
// Success or Failed; there is no way back.
type SignState string

const (
	SignStateCreated SignState = "Created"
	SignStateSuccess SignState = "Success"
	SignStateFailed  SignState = "Failed"
)

// Resolved reports whether the state is terminal.
func (s SignState) Resolved() bool {
	return s == SignStateSuccess || s == SignStateFailed
}

// GuildSign is the single current sign row of a guild. The row is
// refreshed in place by the next day's roll; a row whose CreatedAt
// falls on a previous calendar day is logically absent.
type GuildSign struct {
	GuildID    string    `gorm:"primaryKey;size:32" json:"guild_id"`
	SignID     string    `gorm:"size:16;not null" json:"sign_id"`
	CreatedBy  string    `gorm:"size:32;not null" json:"created_by"`
	CreatedAt  time.Time `gorm:"not null" json:"created_at"`
	State      SignState `gorm:"size:16;not null" json:"state"`
	ResolvedBy *string   `gorm:"size:32" json:"resolved_by,omitempty"`
}

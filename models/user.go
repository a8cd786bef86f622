package models

import "time"

// DefaultPower is the shaman power assumed for users who never
// attempted to influence a sign before.
const DefaultPower = 10

// User holds per-guild shaman state for a Discord user. Rows are
// created lazily on the first influence attempt and never deleted.
type User struct {
	UserID    string    `gorm:"primaryKey;size:32" json:"user_id"`
	GuildID   string    `gorm:"primaryKey;size:32" json:"guild_id"`
	Power     int       `gorm:"not null" json:"power"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

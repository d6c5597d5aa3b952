package models

import (
	"time"
)

// Prize models
const (
	PrizeModelFixed    = "Fixed"    // flat booyah prize
	PrizeModelScalable = "Scalable" // pool-based with per-kill bonus
)

// Match statuses
const (
	MatchStatusUpcoming  = "upcoming"
	MatchStatusCompleted = "completed"
)

// Match is a single scheduled custom-room game.
type Match struct {
	ID   string `gorm:"primaryKey;type:uuid" json:"id"`
	Slug string `gorm:"uniqueIndex" json:"slug"`

	Title      string `gorm:"not null" json:"title"`
	Mode       string `json:"mode"`     // e.g. "Solo", "Duo", "Squad"
	MapPool    string `json:"map_pool"` // comma-separated map names
	BannerURL  string `json:"banner_url,omitempty"`
	MaxPlayers int    `gorm:"default:48" json:"max_players"`
	EntryFee   int64  `gorm:"default:0" json:"entry_fee"`

	// Prize model: Fixed uses BooyahPrize, Scalable uses
	// PerKillReward + CommissionPercent over the collected pool.
	PrizeModel        string `gorm:"type:varchar(16);not null;check:prize_model IN ('Fixed','Scalable')" json:"prize_model"`
	BooyahPrize       int64  `json:"booyah_prize,omitempty"`
	PerKillReward     int64  `json:"per_kill_reward,omitempty"`
	CommissionPercent int64  `json:"commission_percent,omitempty"`

	Status      string `gorm:"type:varchar(16);default:'upcoming';check:status IN ('upcoming','completed')" json:"status"`
	Winner      string `json:"winner,omitempty"`
	WinnerKills int    `json:"winner_kills,omitempty"`

	// Room credentials are withheld from responses until RevealAt.
	RoomID       string    `json:"-"`
	RoomPassword string    `json:"-"`
	RevealAt     time.Time `json:"reveal_at"`

	StartsAt time.Time `gorm:"index" json:"starts_at"`

	PlayersJoined []MatchPlayer `json:"players_joined,omitempty" gorm:"foreignKey:MatchID"`

	Timestamps
}

// MatchPlayer is one entry in a match's append-only join list.
type MatchPlayer struct {
	ID       string    `gorm:"primaryKey;type:uuid" json:"id"`
	MatchID  string    `gorm:"not null;index;uniqueIndex:idx_match_uid" json:"match_id"`
	UID      string    `gorm:"not null;uniqueIndex:idx_match_uid" json:"uid"`
	Username string    `json:"username"`
	JoinedAt time.Time `json:"joined_at"`
}

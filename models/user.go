package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// UserProfile is the server-side account record for a player.
// UID comes from the external identity provider; everything else is owned here.
type UserProfile struct {
	UID         string `gorm:"primaryKey;type:varchar(128)" json:"uid"`
	Email       string `gorm:"uniqueIndex;not null" json:"email"`
	Username    string `gorm:"index" json:"username"`
	DisplayName string `json:"display_name"`

	// Coin balance. Never mutated outside a transaction that also writes
	// a CoinLedger row. coins >= 0 is enforced by every debit path.
	Coins int64 `gorm:"not null;default:0;check:coins >= 0" json:"coins"`

	XP    int64 `gorm:"not null;default:0" json:"xp"`
	Level int   `gorm:"not null;default:1" json:"level"`

	// Referral economy
	ReferralCode        string `gorm:"uniqueIndex;size:16;not null" json:"referral_code"`
	Referral            string `gorm:"size:16" json:"referral,omitempty"` // code this user redeemed, if any
	HasRedeemedReferral bool   `gorm:"default:false" json:"has_redeemed_referral"`

	UPIID string `gorm:"column:upi_id" json:"upi_id,omitempty"`

	Timestamps
}

// NewUserProfile builds a fresh profile for a first sign-in.
// The referral code is derived from a slice of the identity UID so it is
// stable across retries; collisions fall back to a random slice.
func NewUserProfile(uid, email string) *UserProfile {
	return &UserProfile{
		UID:          uid,
		Email:        strings.ToLower(strings.TrimSpace(email)),
		Coins:        0,
		XP:           0,
		Level:        1,
		ReferralCode: ReferralCodeFromUID(uid),
	}
}

// ReferralCodeFromUID derives an 8-char shareable code from an identity UID.
func ReferralCodeFromUID(uid string) string {
	cleaned := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		}
		return -1
	}, uid)
	if len(cleaned) < 8 {
		cleaned += strings.ReplaceAll(uuid.NewString(), "-", "")
	}
	return strings.ToUpper(cleaned[:8])
}

// RandomReferralCode is the collision fallback.
func RandomReferralCode() string {
	return strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
}

// Timestamps adds GORM auto-times
type Timestamps struct {
	CreatedAt time.Time      `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time      `json:"updated_at" gorm:"autoUpdateTime"`
	DeletedAt gorm.DeletedAt `json:"deleted_at,omitempty" gorm:"index"`
}

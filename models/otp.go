package models

import "time"

// EmailOTP is a single-use verification code, keyed by the URL-encoded
// lowercase email. Deleted on successful verification; an expired row is
// deleted lazily on the next read (and swept by the scheduler).
type EmailOTP struct {
	EmailKey  string    `gorm:"primaryKey;size:320" json:"email_key"`
	Code      string    `gorm:"size:6;not null" json:"-"`
	ExpiresAt time.Time `gorm:"not null;index" json:"expires_at"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
}

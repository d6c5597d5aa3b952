package models

// Feedback is a free-text note from a user.
type Feedback struct {
	ID      string `gorm:"primaryKey;type:uuid" json:"id"`
	UserID  string `gorm:"index;not null" json:"user_id"`
	Message string `gorm:"type:text;not null" json:"message"`

	Timestamps
}

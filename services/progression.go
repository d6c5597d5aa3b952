package services

import (
	"log"
	"math"

	"esports-arena/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// XP weights per activity (tunable via config later)
const (
	MatchJoinXP  int64 = 10
	MatchWinXP   int64 = 50
	ReferralXP   int64 = 25
	BaseXPPerLevel     = 100
)

// xpForNextLevel returns XP required to go from currentLevel to the next.
// L_n = floor(BaseXPPerLevel * n^1.2)
func xpForNextLevel(currentLevel int) int64 {
	if currentLevel < 1 {
		currentLevel = 1
	}
	return int64(float64(BaseXPPerLevel) * math.Pow(float64(currentLevel), 1.2))
}

// LevelForXP folds the per-level requirements over a total XP figure.
func LevelForXP(xp int64) int {
	level := 1
	need := xpForNextLevel(level)
	for xp >= need {
		xp -= need
		level++
		need = xpForNextLevel(level)
	}
	return level
}

// awardXPTx bumps a profile's XP and recomputes its level inside the
// caller's transaction.
func awardXPTx(tx *gorm.DB, uid string, xp int64, reason string) error {
	var profile models.UserProfile
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&profile, "uid = ?", uid).Error; err != nil {
		return err
	}

	profile.XP += xp
	newLevel := LevelForXP(profile.XP)
	leveledUp := newLevel > profile.Level
	profile.Level = newLevel

	if err := tx.Save(&profile).Error; err != nil {
		return err
	}

	if leveledUp {
		log.Printf("🎮 %s reached level %d (XP=%d, reason: %s)", uid, newLevel, profile.XP, reason)
	}
	return nil
}

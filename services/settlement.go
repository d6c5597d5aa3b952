// services/settlement.go
package services

import (
	"errors"
	"fmt"
	"log"
	"time"

	"esports-arena/models"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ComputePrize returns the winner's coin prize for a match.
//
// Fixed: the flat booyah prize.
// Scalable: the entry-fee pool minus commission, split into a placement
// share and a per-kill pool sized for everyone but the winner; the winner
// takes the placement share plus their own kills. Negative intermediate
// results clamp to zero — a misconfigured match pays nothing, it never
// debits the winner.
func ComputePrize(m *models.Match, playerCount, kills int) int64 {
	switch m.PrizeModel {
	case models.PrizeModelFixed:
		if m.BooyahPrize < 0 {
			return 0
		}
		return m.BooyahPrize
	case models.PrizeModelScalable:
		total := m.EntryFee * int64(playerCount)
		pool := total - total*m.CommissionPercent/100
		killPool := int64(playerCount-1) * m.PerKillReward
		if killPool < 0 {
			killPool = 0
		}
		placement := pool - killPool
		if placement < 0 {
			placement = 0
		}
		prize := placement + int64(kills)*m.PerKillReward
		if prize < 0 {
			return 0
		}
		return prize
	}
	return 0
}

// SettleMatch pays the winner and closes the match. Admin only.
// The match row is locked and must still be upcoming, and the prize ledger
// row is keyed by the match ID — settling twice cannot double-pay.
func (s *MatchService) SettleMatch(c *fiber.Ctx) error {
	var req struct {
		MatchID        string `json:"matchId"`
		WinnerUsername string `json:"winnerUsername"`
		Kills          int    `json:"kills"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid JSON"})
	}
	if req.MatchID == "" || req.WinnerUsername == "" {
		return c.Status(400).JSON(fiber.Map{"error": "matchId and winnerUsername are required"})
	}
	if req.Kills < 0 {
		return c.Status(400).JSON(fiber.Map{"error": "kills must be non-negative"})
	}

	var prize int64
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var match models.Match
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&match, "id = ?", req.MatchID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fiber.NewError(404, "match not found")
			}
			return err
		}
		if match.Status != models.MatchStatusUpcoming {
			return fiber.NewError(409, "match already settled")
		}

		var winners []models.UserProfile
		if err := tx.Where("username = ?", req.WinnerUsername).
			Limit(2).Find(&winners).Error; err != nil {
			return err
		}
		if len(winners) == 0 {
			return fiber.NewError(404, "winner not found")
		}
		if len(winners) > 1 {
			return fiber.NewError(400, "winner username is ambiguous")
		}

		var playerCount int64
		if err := tx.Model(&models.MatchPlayer{}).
			Where("match_id = ?", match.ID).Count(&playerCount).Error; err != nil {
			return err
		}

		prize = ComputePrize(&match, int(playerCount), req.Kills)

		var winner models.UserProfile
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&winner, "uid = ?", winners[0].UID).Error; err != nil {
			return err
		}
		winner.Coins += prize
		if err := tx.Save(&winner).Error; err != nil {
			return err
		}
		if err := tx.Create(&models.CoinLedger{
			ID:     uuid.NewString(),
			UserID: winner.UID,
			Kind:   models.LedgerMatchPrize,
			RefID:  match.ID,
			Delta:  prize,
			Note:   fmt.Sprintf("booyah in %s (%d kills)", match.Title, req.Kills),
		}).Error; err != nil {
			return err
		}

		now := time.Now()
		match.Status = models.MatchStatusCompleted
		match.Winner = req.WinnerUsername
		match.WinnerKills = req.Kills
		match.UpdatedAt = now
		if err := tx.Save(&match).Error; err != nil {
			return err
		}

		return awardXPTx(tx, winner.UID, MatchWinXP, "match_won")
	})
	if err != nil {
		var fe *fiber.Error
		if errors.As(err, &fe) {
			return c.Status(fe.Code).JSON(fiber.Map{"error": fe.Message})
		}
		log.Printf("ERROR settling match %s: %v", req.MatchID, err)
		return c.Status(500).JSON(fiber.Map{"error": "settlement failed"})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": fmt.Sprintf("match settled, %s credited %d coins", req.WinnerUsername, prize),
	})
}

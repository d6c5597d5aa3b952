// services/referral_service.go
package services

import (
	"errors"
	"fmt"
	"log"
	"strings"

	"esports-arena/models"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Referral payouts: the referrer earns 20 coins, the new player 50.
const (
	ReferrerBonusCoins int64 = 20
	RefereeRewardCoins int64 = 50
)

type ReferralService struct {
	DB *gorm.DB
}

func NewReferralService(db *gorm.DB) *ReferralService {
	return &ReferralService{DB: db}
}

// RedeemCode credits both sides of a referral. At most one redemption per
// account, never against your own code, and both credits land in one
// transaction — there is no partial state.
func (s *ReferralService) RedeemCode(c *fiber.Ctx) error {
	uid := c.Locals("uid").(string)

	var req struct {
		Code string `json:"code"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid JSON"})
	}
	code := strings.ToUpper(strings.TrimSpace(req.Code))
	if code == "" {
		return c.Status(400).JSON(fiber.Map{"error": "code is required"})
	}

	var caller models.UserProfile
	if err := s.DB.First(&caller, "uid = ?", uid).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(404).JSON(fiber.Map{"error": "profile not found"})
		}
		return c.Status(500).JSON(fiber.Map{"error": "DB error"})
	}

	if caller.ReferralCode == code {
		return c.Status(400).JSON(fiber.Map{"error": "cannot redeem your own referral code"})
	}
	if caller.HasRedeemedReferral {
		return c.Status(400).JSON(fiber.Map{"error": "referral already redeemed"})
	}

	var referrer models.UserProfile
	if err := s.DB.First(&referrer, "referral_code = ?", code).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(404).JSON(fiber.Map{"error": "referral code not found"})
		}
		return c.Status(500).JSON(fiber.Map{"error": "DB error"})
	}

	err := s.DB.Transaction(func(tx *gorm.DB) error {
		// Re-read both rows under lock; the pre-checks above are only a
		// fast path. Locks are taken in UID order so two users redeeming
		// each other's codes concurrently cannot deadlock.
		var lockedCaller, lockedReferrer models.UserProfile
		first, second := &lockedCaller, &lockedReferrer
		firstUID, secondUID := caller.UID, referrer.UID
		if referrer.UID < caller.UID {
			first, second = &lockedReferrer, &lockedCaller
			firstUID, secondUID = referrer.UID, caller.UID
		}
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(first, "uid = ?", firstUID).Error; err != nil {
			return err
		}
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(second, "uid = ?", secondUID).Error; err != nil {
			return err
		}
		if lockedCaller.HasRedeemedReferral {
			return fiber.NewError(400, "referral already redeemed")
		}

		lockedReferrer.Coins += ReferrerBonusCoins
		if err := tx.Save(&lockedReferrer).Error; err != nil {
			return err
		}
		if err := tx.Create(&models.CoinLedger{
			ID:     uuid.NewString(),
			UserID: lockedReferrer.UID,
			Kind:   models.LedgerReferralBonus,
			RefID:  lockedCaller.UID,
			Delta:  ReferrerBonusCoins,
			Note:   fmt.Sprintf("referral bonus for inviting %s", lockedCaller.UID),
		}).Error; err != nil {
			return err
		}

		lockedCaller.Coins += RefereeRewardCoins
		lockedCaller.HasRedeemedReferral = true
		lockedCaller.Referral = code
		if err := tx.Save(&lockedCaller).Error; err != nil {
			return err
		}
		if err := tx.Create(&models.CoinLedger{
			ID:     uuid.NewString(),
			UserID: lockedCaller.UID,
			Kind:   models.LedgerReferralReward,
			RefID:  lockedCaller.UID,
			Delta:  RefereeRewardCoins,
			Note:   fmt.Sprintf("welcome reward for code %s", code),
		}).Error; err != nil {
			return err
		}

		return awardXPTx(tx, lockedReferrer.UID, ReferralXP, "referral_redeemed")
	})
	if err != nil {
		var fe *fiber.Error
		if errors.As(err, &fe) {
			return c.Status(fe.Code).JSON(fiber.Map{"error": fe.Message})
		}
		log.Printf("ERROR redeeming referral %s for %s: %v", code, uid, err)
		return c.Status(500).JSON(fiber.Map{"error": "redemption failed"})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": fmt.Sprintf("referral redeemed, %d coins credited", RefereeRewardCoins),
	})
}

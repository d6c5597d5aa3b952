// services/wallet_service.go
package services

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"esports-arena/models"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Coin economy boundaries: 10 coins per rupee on top-up, and a 10% house
// cut taken in coins when a withdrawal is filed.
const (
	CoinsPerRupee         int64   = 10
	WithdrawCommissionPct float64 = 0.10
)

// TopupCoins converts a purchase amount (INR) to the coins it buys.
func TopupCoins(amount int64) int64 {
	return amount * CoinsPerRupee
}

// WithdrawCoinsNeeded is the coin hold a withdrawal takes:
// ceil(amount * 1.1), the payout plus the 10% commission.
// Integer ceiling, float rounding must never overcharge a coin.
func WithdrawCoinsNeeded(amount int64) int64 {
	return (amount*11 + 9) / 10
}

var errInsufficientCoins = errors.New("insufficient coins")

type WalletService struct {
	DB *gorm.DB
}

func NewWalletService(db *gorm.DB) *WalletService {
	return &WalletService{DB: db}
}

// GetWallet returns the caller's balance and recent ledger entries.
func (s *WalletService) GetWallet(c *fiber.Ctx) error {
	uid := c.Locals("uid").(string)

	var profile models.UserProfile
	if err := s.DB.First(&profile, "uid = ?", uid).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(404).JSON(fiber.Map{"error": "profile not found"})
		}
		return c.Status(500).JSON(fiber.Map{"error": "DB error"})
	}

	var entries []models.CoinLedger
	if err := s.DB.Where("user_id = ?", uid).
		Order("created_at DESC").Limit(50).
		Find(&entries).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "failed to fetch ledger"})
	}

	return c.JSON(fiber.Map{
		"coins":  profile.Coins,
		"ledger": entries,
	})
}

// CreateTopup files a pending purchase request. No coins move until an
// admin approves it.
func (s *WalletService) CreateTopup(c *fiber.Ctx) error {
	uid := c.Locals("uid").(string)

	var req struct {
		Amount int64  `json:"amount"`
		UPIID  string `json:"upi_id"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid JSON"})
	}
	if req.Amount <= 0 {
		return c.Status(400).JSON(fiber.Map{"error": "amount must be positive"})
	}
	if strings.TrimSpace(req.UPIID) == "" {
		return c.Status(400).JSON(fiber.Map{"error": "upi_id is required"})
	}

	topup := models.TopupRequest{
		ID:     uuid.NewString(),
		UserID: uid,
		Amount: req.Amount,
		Coins:  TopupCoins(req.Amount),
		UPIID:  strings.TrimSpace(req.UPIID),
		Status: models.RequestStatusPending,
	}
	if err := s.DB.Create(&topup).Error; err != nil {
		log.Printf("ERROR creating topup request for %s: %v", uid, err)
		return c.Status(500).JSON(fiber.Map{"error": "failed to create request"})
	}
	return c.Status(201).JSON(topup)
}

// CreateWithdraw files a withdrawal and takes the coin hold in the same
// transaction. A later rejection refunds the hold.
func (s *WalletService) CreateWithdraw(c *fiber.Ctx) error {
	uid := c.Locals("uid").(string)

	var req struct {
		Amount int64  `json:"amount"`
		UPIID  string `json:"upi_id"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid JSON"})
	}
	if req.Amount <= 0 {
		return c.Status(400).JSON(fiber.Map{"error": "amount must be positive"})
	}
	if strings.TrimSpace(req.UPIID) == "" {
		return c.Status(400).JSON(fiber.Map{"error": "upi_id is required"})
	}

	need := WithdrawCoinsNeeded(req.Amount)
	withdraw := models.WithdrawRequest{
		ID:        uuid.NewString(),
		UserID:    uid,
		Amount:    req.Amount,
		CoinsHeld: need,
		UPIID:     strings.TrimSpace(req.UPIID),
		Status:    models.RequestStatusPending,
	}

	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var profile models.UserProfile
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&profile, "uid = ?", uid).Error; err != nil {
			return err
		}
		if profile.Coins < need {
			return errInsufficientCoins
		}

		profile.Coins -= need
		if err := tx.Save(&profile).Error; err != nil {
			return err
		}
		if err := tx.Create(&models.CoinLedger{
			ID:     uuid.NewString(),
			UserID: uid,
			Kind:   models.LedgerWithdraw,
			RefID:  withdraw.ID,
			Delta:  -need,
			Note:   fmt.Sprintf("withdrawal hold for ₹%d", req.Amount),
		}).Error; err != nil {
			return err
		}
		return tx.Create(&withdraw).Error
	})
	if err != nil {
		if errors.Is(err, errInsufficientCoins) {
			return c.Status(400).JSON(fiber.Map{
				"error":        "insufficient coins",
				"coins_needed": need,
			})
		}
		log.Printf("ERROR filing withdrawal for %s: %v", uid, err)
		return c.Status(500).JSON(fiber.Map{"error": "failed to create request"})
	}
	return c.Status(201).JSON(withdraw)
}

// ListMyRequests returns the caller's top-up and withdrawal history.
func (s *WalletService) ListMyRequests(c *fiber.Ctx) error {
	uid := c.Locals("uid").(string)

	var topups []models.TopupRequest
	var withdrawals []models.WithdrawRequest
	if err := s.DB.Where("user_id = ?", uid).Order("created_at DESC").Find(&topups).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "failed to fetch requests"})
	}
	if err := s.DB.Where("user_id = ?", uid).Order("created_at DESC").Find(&withdrawals).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "failed to fetch requests"})
	}
	return c.JSON(fiber.Map{
		"topups":      topups,
		"withdrawals": withdrawals,
	})
}

// --- Admin queue handlers ---

// ListTopups returns the top-up queue, optionally filtered by ?status=.
func (s *WalletService) ListTopups(c *fiber.Ctx) error {
	db := s.DB.Order("created_at ASC")
	if status := c.Query("status"); status != "" {
		db = db.Where("status = ?", status)
	}
	var topups []models.TopupRequest
	if err := db.Find(&topups).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "failed to fetch topup queue"})
	}
	return c.JSON(topups)
}

// ListWithdrawals returns the withdrawal queue, optionally filtered by ?status=.
func (s *WalletService) ListWithdrawals(c *fiber.Ctx) error {
	db := s.DB.Order("created_at ASC")
	if status := c.Query("status"); status != "" {
		db = db.Where("status = ?", status)
	}
	var withdrawals []models.WithdrawRequest
	if err := db.Find(&withdrawals).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "failed to fetch withdrawal queue"})
	}
	return c.JSON(withdrawals)
}

// ApproveTopup credits the purchased coins. Terminal: a decided request
// cannot be re-decided, and the ledger row is keyed by the request ID so a
// replay cannot double-credit.
func (s *WalletService) ApproveTopup(c *fiber.Ctx) error {
	id := c.Params("id")
	admin, _ := c.Locals("email").(string)

	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var topup models.TopupRequest
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&topup, "id = ?", id).Error; err != nil {
			return err
		}
		if topup.Status != models.RequestStatusPending {
			return fiber.NewError(409, "request already decided")
		}

		var profile models.UserProfile
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&profile, "uid = ?", topup.UserID).Error; err != nil {
			return err
		}
		profile.Coins += topup.Coins
		if err := tx.Save(&profile).Error; err != nil {
			return err
		}
		if err := tx.Create(&models.CoinLedger{
			ID:     uuid.NewString(),
			UserID: topup.UserID,
			Kind:   models.LedgerTopup,
			RefID:  topup.ID,
			Delta:  topup.Coins,
			Note:   fmt.Sprintf("topup ₹%d approved by %s", topup.Amount, admin),
		}).Error; err != nil {
			return err
		}

		now := time.Now()
		topup.Status = models.RequestStatusApproved
		topup.DecidedBy = admin
		topup.DecidedAt = &now
		return tx.Save(&topup).Error
	})
	return s.respondDecision(c, err, "topup approved")
}

// RejectTopup marks the request rejected. Nothing to refund — no coins
// moved at filing time.
func (s *WalletService) RejectTopup(c *fiber.Ctx) error {
	id := c.Params("id")
	admin, _ := c.Locals("email").(string)

	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var topup models.TopupRequest
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&topup, "id = ?", id).Error; err != nil {
			return err
		}
		if topup.Status != models.RequestStatusPending {
			return fiber.NewError(409, "request already decided")
		}
		now := time.Now()
		topup.Status = models.RequestStatusRejected
		topup.DecidedBy = admin
		topup.DecidedAt = &now
		return tx.Save(&topup).Error
	})
	return s.respondDecision(c, err, "topup rejected")
}

// ApproveWithdraw releases the request to the payout rail; the coin hold
// was already taken at filing time.
func (s *WalletService) ApproveWithdraw(c *fiber.Ctx) error {
	id := c.Params("id")
	admin, _ := c.Locals("email").(string)

	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var withdraw models.WithdrawRequest
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&withdraw, "id = ?", id).Error; err != nil {
			return err
		}
		if withdraw.Status != models.RequestStatusPending {
			return fiber.NewError(409, "request already decided")
		}
		now := time.Now()
		withdraw.Status = models.RequestStatusApproved
		withdraw.DecidedBy = admin
		withdraw.DecidedAt = &now
		return tx.Save(&withdraw).Error
	})
	return s.respondDecision(c, err, "withdrawal approved")
}

// RejectWithdraw returns the held coins in the same transaction that marks
// the request rejected.
func (s *WalletService) RejectWithdraw(c *fiber.Ctx) error {
	id := c.Params("id")
	admin, _ := c.Locals("email").(string)

	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var withdraw models.WithdrawRequest
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&withdraw, "id = ?", id).Error; err != nil {
			return err
		}
		if withdraw.Status != models.RequestStatusPending {
			return fiber.NewError(409, "request already decided")
		}

		var profile models.UserProfile
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&profile, "uid = ?", withdraw.UserID).Error; err != nil {
			return err
		}
		profile.Coins += withdraw.CoinsHeld
		if err := tx.Save(&profile).Error; err != nil {
			return err
		}
		if err := tx.Create(&models.CoinLedger{
			ID:     uuid.NewString(),
			UserID: withdraw.UserID,
			Kind:   models.LedgerWithdrawRefund,
			RefID:  withdraw.ID,
			Delta:  withdraw.CoinsHeld,
			Note:   fmt.Sprintf("withdrawal rejected by %s, hold returned", admin),
		}).Error; err != nil {
			return err
		}

		now := time.Now()
		withdraw.Status = models.RequestStatusRejected
		withdraw.DecidedBy = admin
		withdraw.DecidedAt = &now
		return tx.Save(&withdraw).Error
	})
	return s.respondDecision(c, err, "withdrawal rejected, coins refunded")
}

func (s *WalletService) respondDecision(c *fiber.Ctx, err error, message string) error {
	if err != nil {
		var fe *fiber.Error
		if errors.As(err, &fe) {
			return c.Status(fe.Code).JSON(fiber.Map{"error": fe.Message})
		}
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(404).JSON(fiber.Map{"error": "request not found"})
		}
		log.Printf("ERROR deciding request: %v", err)
		return c.Status(500).JSON(fiber.Map{"error": "decision failed"})
	}
	return c.JSON(fiber.Map{"success": true, "message": message})
}

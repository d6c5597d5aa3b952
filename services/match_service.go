// services/match_service.go
package services

import (
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"esports-arena/models"
	"esports-arena/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type MatchService struct {
	DB *gorm.DB
}

func NewMatchService(db *gorm.DB) *MatchService {
	return &MatchService{DB: db}
}

// CreateMatch creates a match from the admin console (multipart form, with
// an optional banner image pushed to R2).
func (s *MatchService) CreateMatch(c *fiber.Ctx) error {
	title := strings.TrimSpace(c.FormValue("title"))
	mode := c.FormValue("mode")
	mapPool := c.FormValue("map_pool")
	maxPlayersStr := c.FormValue("max_players")
	entryFeeStr := c.FormValue("entry_fee")
	prizeModel := c.FormValue("prize_model")
	roomID := c.FormValue("room_id")
	roomPassword := c.FormValue("room_password")
	startsAtStr := c.FormValue("starts_at")
	revealAtStr := c.FormValue("reveal_at")

	if title == "" || prizeModel == "" || startsAtStr == "" {
		return c.Status(400).JSON(fiber.Map{"error": "title, prize_model, and starts_at are required"})
	}

	maxPlayers := 48
	if maxPlayersStr != "" {
		if n, err := strconv.Atoi(maxPlayersStr); err == nil && n > 0 {
			maxPlayers = n
		} else {
			return c.Status(400).JSON(fiber.Map{"error": "max_players must be a positive integer"})
		}
	}

	var entryFee int64
	if entryFeeStr != "" {
		if n, err := strconv.ParseInt(entryFeeStr, 10, 64); err == nil && n >= 0 {
			entryFee = n
		} else {
			return c.Status(400).JSON(fiber.Map{"error": "entry_fee must be a non-negative integer"})
		}
	}

	startsAt, err := time.Parse(time.RFC3339, startsAtStr)
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid starts_at (use RFC3339)"})
	}

	// Room credentials unlock 15 minutes before start unless overridden.
	revealAt := startsAt.Add(-15 * time.Minute)
	if revealAtStr != "" {
		revealAt, err = time.Parse(time.RFC3339, revealAtStr)
		if err != nil {
			return c.Status(400).JSON(fiber.Map{"error": "invalid reveal_at (use RFC3339)"})
		}
	}

	match := &models.Match{
		ID:           uuid.NewString(),
		Title:        title,
		Mode:         mode,
		MapPool:      mapPool,
		MaxPlayers:   maxPlayers,
		EntryFee:     entryFee,
		PrizeModel:   prizeModel,
		RoomID:       roomID,
		RoomPassword: roomPassword,
		RevealAt:     revealAt,
		StartsAt:     startsAt,
		Status:       models.MatchStatusUpcoming,
	}
	match.Slug = slug.Make(title) + "-" + match.ID[:8]

	switch prizeModel {
	case models.PrizeModelFixed:
		prize, err := strconv.ParseInt(c.FormValue("booyah_prize"), 10, 64)
		if err != nil || prize < 0 {
			return c.Status(400).JSON(fiber.Map{"error": "booyah_prize is required for a Fixed match"})
		}
		match.BooyahPrize = prize
	case models.PrizeModelScalable:
		perKill, err := strconv.ParseInt(c.FormValue("per_kill_reward"), 10, 64)
		if err != nil || perKill < 0 {
			return c.Status(400).JSON(fiber.Map{"error": "per_kill_reward is required for a Scalable match"})
		}
		commission, err := strconv.ParseInt(c.FormValue("commission_percent"), 10, 64)
		if err != nil || commission < 0 || commission > 100 {
			return c.Status(400).JSON(fiber.Map{"error": "commission_percent must be between 0 and 100"})
		}
		match.PerKillReward = perKill
		match.CommissionPercent = commission
	default:
		return c.Status(400).JSON(fiber.Map{"error": "prize_model must be Fixed or Scalable"})
	}

	// Optional banner → R2
	if banner, err := c.FormFile("banner"); err == nil && banner.Size > 0 {
		url, err := utils.UploadMatchBanner(banner)
		if err != nil {
			log.Printf("ERROR uploading banner for match %s: %v", match.ID, err)
			return c.Status(500).JSON(fiber.Map{"error": "failed to upload banner"})
		}
		match.BannerURL = url
	}

	if err := s.DB.Create(match).Error; err != nil {
		log.Printf("ERROR creating match: %v", err)
		return c.Status(500).JSON(fiber.Map{"error": "DB insert failed"})
	}
	return c.Status(201).JSON(match)
}

// UpdateMatch edits a match that hasn't been settled yet.
func (s *MatchService) UpdateMatch(c *fiber.Ctx) error {
	id := c.Params("id")

	var match models.Match
	if err := s.DB.First(&match, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(404).JSON(fiber.Map{"error": "match not found"})
		}
		return c.Status(500).JSON(fiber.Map{"error": "DB error"})
	}
	if match.Status == models.MatchStatusCompleted {
		return c.Status(400).JSON(fiber.Map{"error": "completed matches cannot be edited"})
	}

	if v := strings.TrimSpace(c.FormValue("title")); v != "" {
		match.Title = v
	}
	if v := c.FormValue("mode"); v != "" {
		match.Mode = v
	}
	if v := c.FormValue("map_pool"); v != "" {
		match.MapPool = v
	}
	if v := c.FormValue("max_players"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			match.MaxPlayers = n
		}
	}
	if v := c.FormValue("entry_fee"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil && n >= 0 {
			match.EntryFee = n
		}
	}
	if v := c.FormValue("booyah_prize"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil && n >= 0 {
			match.BooyahPrize = n
		}
	}
	if v := c.FormValue("per_kill_reward"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil && n >= 0 {
			match.PerKillReward = n
		}
	}
	if v := c.FormValue("commission_percent"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil && n >= 0 && n <= 100 {
			match.CommissionPercent = n
		}
	}
	if v := c.FormValue("room_id"); v != "" {
		match.RoomID = v
	}
	if v := c.FormValue("room_password"); v != "" {
		match.RoomPassword = v
	}
	if v := c.FormValue("starts_at"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return c.Status(400).JSON(fiber.Map{"error": "invalid starts_at (use RFC3339)"})
		}
		match.StartsAt = t
	}
	if v := c.FormValue("reveal_at"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return c.Status(400).JSON(fiber.Map{"error": "invalid reveal_at (use RFC3339)"})
		}
		match.RevealAt = t
	}

	if banner, err := c.FormFile("banner"); err == nil && banner.Size > 0 {
		url, err := utils.UploadMatchBanner(banner)
		if err != nil {
			log.Printf("ERROR uploading banner for match %s: %v", id, err)
			return c.Status(500).JSON(fiber.Map{"error": "failed to upload banner"})
		}
		match.BannerURL = url
	}

	if err := s.DB.Save(&match).Error; err != nil {
		log.Printf("ERROR updating match %s: %v", id, err)
		return c.Status(500).JSON(fiber.Map{"error": "update failed"})
	}
	return c.JSON(match)
}

// DeleteMatch removes a match and its join list.
func (s *MatchService) DeleteMatch(c *fiber.Ctx) error {
	id := c.Params("id")
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("match_id = ?", id).Delete(&models.MatchPlayer{}).Error; err != nil {
			return err
		}
		result := tx.Delete(&models.Match{}, "id = ?", id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return fiber.NewError(404, "match not found")
		}
		return nil
	})
	if err != nil {
		var fe *fiber.Error
		if errors.As(err, &fe) {
			return c.Status(fe.Code).JSON(fiber.Map{"error": fe.Message})
		}
		log.Printf("ERROR deleting match %s: %v", id, err)
		return c.Status(500).JSON(fiber.Map{"error": "delete failed"})
	}
	return c.JSON(fiber.Map{"message": "match deleted"})
}

// ListMatches returns matches for the lobby, upcoming first.
func (s *MatchService) ListMatches(c *fiber.Ctx) error {
	db := s.DB.Preload("PlayersJoined").Order("starts_at ASC")
	if status := c.Query("status", models.MatchStatusUpcoming); status != "all" {
		db = db.Where("status = ?", status)
	}
	var matches []models.Match
	if err := db.Find(&matches).Error; err != nil {
		log.Printf("ERROR fetching matches: %v", err)
		return c.Status(500).JSON(fiber.Map{"error": "failed to fetch matches"})
	}
	return c.JSON(matches)
}

// GetMatch returns a match; room credentials are included only once the
// reveal time has passed.
func (s *MatchService) GetMatch(c *fiber.Ctx) error {
	id := c.Params("id")

	var match models.Match
	if err := s.DB.Preload("PlayersJoined").First(&match, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(404).JSON(fiber.Map{"error": "match not found"})
		}
		return c.Status(500).JSON(fiber.Map{"error": "DB error"})
	}

	revealed := !match.RevealAt.IsZero() && time.Now().After(match.RevealAt)
	resp := fiber.Map{
		"match":         match,
		"room_revealed": revealed,
	}
	if revealed {
		resp["room_id"] = match.RoomID
		resp["room_password"] = match.RoomPassword
	}
	return c.JSON(resp)
}

// JoinMatch appends the caller to the join list, taking the entry fee in
// the same transaction. The (match, uid) unique index makes a double join
// fail on insert.
func (s *MatchService) JoinMatch(c *fiber.Ctx) error {
	id := c.Params("id")
	uid := c.Locals("uid").(string)

	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var match models.Match
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&match, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fiber.NewError(404, "match not found")
			}
			return err
		}
		if match.Status != models.MatchStatusUpcoming {
			return fiber.NewError(400, "match is not open for joining")
		}

		var joined int64
		if err := tx.Model(&models.MatchPlayer{}).
			Where("match_id = ?", id).Count(&joined).Error; err != nil {
			return err
		}
		if int(joined) >= match.MaxPlayers {
			return fiber.NewError(403, "match is full")
		}

		var existing int64
		if err := tx.Model(&models.MatchPlayer{}).
			Where("match_id = ? AND uid = ?", id, uid).Count(&existing).Error; err != nil {
			return err
		}
		if existing > 0 {
			return fiber.NewError(409, "already joined this match")
		}

		var profile models.UserProfile
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&profile, "uid = ?", uid).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fiber.NewError(404, "profile not found")
			}
			return err
		}

		if match.EntryFee > 0 {
			if profile.Coins < match.EntryFee {
				return fiber.NewError(400, "insufficient coins for entry fee")
			}
			profile.Coins -= match.EntryFee
			if err := tx.Save(&profile).Error; err != nil {
				return err
			}
			if err := tx.Create(&models.CoinLedger{
				ID:     uuid.NewString(),
				UserID: uid,
				Kind:   models.LedgerEntryFee,
				RefID:  fmt.Sprintf("%s:%s", id, uid),
				Delta:  -match.EntryFee,
				Note:   fmt.Sprintf("entry fee for %s", match.Title),
			}).Error; err != nil {
				return err
			}
		}

		username := profile.Username
		if username == "" {
			username = profile.DisplayName
		}
		if err := tx.Create(&models.MatchPlayer{
			ID:       uuid.NewString(),
			MatchID:  id,
			UID:      uid,
			Username: username,
			JoinedAt: time.Now(),
		}).Error; err != nil {
			return err
		}

		return awardXPTx(tx, uid, MatchJoinXP, "match_joined")
	})
	if err != nil {
		var fe *fiber.Error
		if errors.As(err, &fe) {
			return c.Status(fe.Code).JSON(fiber.Map{"error": fe.Message})
		}
		log.Printf("ERROR joining match %s as %s: %v", id, uid, err)
		return c.Status(500).JSON(fiber.Map{"error": "join failed"})
	}
	return c.JSON(fiber.Map{"success": true, "message": "joined match"})
}

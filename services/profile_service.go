// services/profile_service.go
package services

import (
	"errors"
	"log"
	"strings"

	"esports-arena/models"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ProfileService struct {
	DB *gorm.DB
}

func NewProfileService(db *gorm.DB) *ProfileService {
	return &ProfileService{DB: db}
}

// EnsureProfile creates the profile on first sign-in if absent (idempotent).
func (s *ProfileService) EnsureProfile(uid, email string) (*models.UserProfile, error) {
	var profile models.UserProfile
	err := s.DB.First(&profile, "uid = ?", uid).Error
	if err == nil {
		return &profile, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	fresh := models.NewUserProfile(uid, email)
	if createErr := s.DB.Create(fresh).Error; createErr != nil {
		// Referral code collision with another account's UID slice — retry
		// once with a random code.
		fresh.ReferralCode = models.RandomReferralCode()
		if retryErr := s.DB.Create(fresh).Error; retryErr != nil {
			// Lost a race with a concurrent first sign-in?
			if lookupErr := s.DB.First(&profile, "uid = ?", uid).Error; lookupErr == nil {
				return &profile, nil
			}
			return nil, retryErr
		}
	}
	log.Printf("👤 Created profile for %s (code %s)", uid, fresh.ReferralCode)
	return fresh, nil
}

// GetProfile returns the caller's profile, creating it on first call.
func (s *ProfileService) GetProfile(c *fiber.Ctx) error {
	uid := c.Locals("uid").(string)
	email, _ := c.Locals("email").(string)

	profile, err := s.EnsureProfile(uid, email)
	if err != nil {
		log.Printf("ERROR ensuring profile for %s: %v", uid, err)
		return c.Status(500).JSON(fiber.Map{"error": "failed to load profile"})
	}
	return c.JSON(profile)
}

// UpdateProfile changes the editable profile fields.
func (s *ProfileService) UpdateProfile(c *fiber.Ctx) error {
	uid := c.Locals("uid").(string)

	var req struct {
		Username    *string `json:"username"`
		DisplayName *string `json:"display_name"`
		UPIID       *string `json:"upi_id"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid JSON"})
	}

	var profile models.UserProfile
	if err := s.DB.First(&profile, "uid = ?", uid).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(404).JSON(fiber.Map{"error": "profile not found"})
		}
		return c.Status(500).JSON(fiber.Map{"error": "DB error"})
	}

	if req.Username != nil {
		name := strings.TrimSpace(*req.Username)
		if name == "" {
			return c.Status(400).JSON(fiber.Map{"error": "username cannot be empty"})
		}
		profile.Username = name
	}
	if req.DisplayName != nil {
		profile.DisplayName = strings.TrimSpace(*req.DisplayName)
	}
	if req.UPIID != nil {
		profile.UPIID = strings.TrimSpace(*req.UPIID)
	}

	if err := s.DB.Save(&profile).Error; err != nil {
		log.Printf("ERROR updating profile %s: %v", uid, err)
		return c.Status(500).JSON(fiber.Map{"error": "update failed"})
	}
	return c.JSON(profile)
}

// SubmitFeedback records a free-text note from the caller.
func (s *ProfileService) SubmitFeedback(c *fiber.Ctx) error {
	uid := c.Locals("uid").(string)

	var req struct {
		Message string `json:"message"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid JSON"})
	}
	if strings.TrimSpace(req.Message) == "" {
		return c.Status(400).JSON(fiber.Map{"error": "message is required"})
	}

	fb := models.Feedback{
		ID:      uuid.NewString(),
		UserID:  uid,
		Message: strings.TrimSpace(req.Message),
	}
	if err := s.DB.Create(&fb).Error; err != nil {
		log.Printf("ERROR storing feedback from %s: %v", uid, err)
		return c.Status(500).JSON(fiber.Map{"error": "failed to store feedback"})
	}
	return c.Status(201).JSON(fb)
}

// ListFeedback returns recent feedback for the admin console.
func (s *ProfileService) ListFeedback(c *fiber.Ctx) error {
	var items []models.Feedback
	if err := s.DB.Order("created_at DESC").Limit(200).Find(&items).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "failed to fetch feedback"})
	}
	return c.JSON(items)
}

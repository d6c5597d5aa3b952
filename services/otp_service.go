// services/otp_service.go
package services

import (
	"crypto/rand"
	"errors"
	"fmt"
	"log"
	"math/big"
	"net/url"
	"strings"
	"time"

	"esports-arena/models"
	"esports-arena/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// OTPTTL is how long a verification code stays valid after issue.
const OTPTTL = 10 * time.Minute

// Throwaway inbox providers. Sign-ups from these are refused outright.
var disposableDomains = map[string]bool{
	"mailinator.com":    true,
	"10minutemail.com":  true,
	"guerrillamail.com": true,
	"guerrillamail.net": true,
	"tempmail.com":      true,
	"temp-mail.org":     true,
	"yopmail.com":       true,
	"trashmail.com":     true,
	"getnada.com":       true,
	"dispostable.com":   true,
	"sharklasers.com":   true,
	"maildrop.cc":       true,
	"fakeinbox.com":     true,
	"mintemail.com":     true,
	"throwawaymail.com": true,
	"mohmal.com":        true,
	"emailondeck.com":   true,
	"mailnesia.com":     true,
}

type OTPService struct {
	DB     *gorm.DB
	Mailer *utils.Mailer
}

func NewOTPService(db *gorm.DB, mailer *utils.Mailer) *OTPService {
	return &OTPService{DB: db, Mailer: mailer}
}

// NormalizeEmailKey lowercases and URL-encodes an email for use as the OTP
// record key.
func NormalizeEmailKey(email string) string {
	return url.QueryEscape(strings.ToLower(strings.TrimSpace(email)))
}

// IsDisposableEmail reports whether the address belongs to a known
// throwaway provider.
func IsDisposableEmail(email string) bool {
	at := strings.LastIndex(email, "@")
	if at < 0 || at == len(email)-1 {
		return false
	}
	domain := strings.ToLower(strings.TrimSpace(email[at+1:]))
	return disposableDomains[domain]
}

// GenerateOTPCode returns a 6-digit decimal code, zero-padded.
// Drawn from crypto/rand: the code is a single-use credential.
func GenerateOTPCode() string {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		panic(err)
	}
	return fmt.Sprintf("%06d", n.Int64())
}

// SendOTP issues a fresh code for an email and mails it.
// One-shot semantics: no cooldown, a resend simply overwrites the old code.
func (s *OTPService) SendOTP(c *fiber.Ctx) error {
	type Req struct {
		Email string `json:"email"`
	}
	var req Req
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid JSON"})
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" {
		return c.Status(400).JSON(fiber.Map{"error": "email is required"})
	}

	if IsDisposableEmail(email) {
		return c.Status(403).JSON(fiber.Map{"error": "disposable email addresses are not allowed"})
	}

	// Already-registered addresses don't get sign-up codes.
	var count int64
	if err := s.DB.Model(&models.UserProfile{}).Where("email = ?", email).Count(&count).Error; err != nil {
		log.Printf("ERROR checking email existence: %v", err)
		return c.Status(500).JSON(fiber.Map{"error": "server error"})
	}
	if count > 0 {
		return c.Status(409).JSON(fiber.Map{"error": "email already registered"})
	}

	code := GenerateOTPCode()
	otp := models.EmailOTP{
		EmailKey:  NormalizeEmailKey(email),
		Code:      code,
		ExpiresAt: time.Now().Add(OTPTTL),
	}
	// Resend overwrites: same key, fresh code and expiry.
	if err := s.DB.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "email_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"code", "expires_at"}),
	}).Create(&otp).Error; err != nil {
		log.Printf("ERROR storing OTP record: %v", err)
		return c.Status(500).JSON(fiber.Map{"error": "server error"})
	}

	body := fmt.Sprintf("Your verification code is %s.\n\nIt expires in 10 minutes. If you did not request this, you can ignore this email.", code)
	if err := s.Mailer.Send(email, "Your verification code", body); err != nil {
		// Don't leave a live code behind if delivery failed.
		s.DB.Delete(&models.EmailOTP{}, "email_key = ?", otp.EmailKey)
		if errors.Is(err, utils.ErrMailNotConfigured) {
			log.Printf("❌ OTP send skipped — SMTP relay not configured")
			return c.Status(500).JSON(fiber.Map{"error": "mail relay not configured"})
		}
		log.Printf("ERROR sending OTP email to %s: %v", email, err)
		return c.Status(500).JSON(fiber.Map{"error": "failed to send verification email"})
	}

	return c.JSON(fiber.Map{"success": true})
}

// VerifyOTP checks a submitted code. The record is single-use: it is deleted
// on success, and an expired record is deleted on the read that finds it.
func (s *OTPService) VerifyOTP(c *fiber.Ctx) error {
	type Req struct {
		Email string `json:"email"`
		Code  string `json:"code"`
	}
	var req Req
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid JSON"})
	}
	if strings.TrimSpace(req.Email) == "" || strings.TrimSpace(req.Code) == "" {
		return c.Status(400).JSON(fiber.Map{"error": "email and code are required"})
	}

	key := NormalizeEmailKey(req.Email)
	var otp models.EmailOTP
	if err := s.DB.First(&otp, "email_key = ?", key).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(400).JSON(fiber.Map{"error": "no verification code found for this email"})
		}
		log.Printf("ERROR fetching OTP record: %v", err)
		return c.Status(500).JSON(fiber.Map{"error": "server error"})
	}

	if time.Now().After(otp.ExpiresAt) {
		s.DB.Delete(&models.EmailOTP{}, "email_key = ?", key)
		return c.Status(400).JSON(fiber.Map{"error": "verification code expired"})
	}

	if otp.Code != strings.TrimSpace(req.Code) {
		return c.Status(400).JSON(fiber.Map{"error": "incorrect verification code"})
	}

	if err := s.DB.Delete(&models.EmailOTP{}, "email_key = ?", key).Error; err != nil {
		log.Printf("ERROR deleting used OTP record: %v", err)
		return c.Status(500).JSON(fiber.Map{"error": "server error"})
	}

	return c.JSON(fiber.Map{"success": true})
}

// CheckEmail reports whether an address is already registered and whether it
// is disposable, so the sign-up form can fail fast.
func (s *OTPService) CheckEmail(c *fiber.Ctx) error {
	type Req struct {
		Email string `json:"email"`
	}
	var req Req
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid JSON"})
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" {
		return c.Status(400).JSON(fiber.Map{"error": "email is required"})
	}

	var count int64
	if err := s.DB.Model(&models.UserProfile{}).Where("email = ?", email).Count(&count).Error; err != nil {
		log.Printf("ERROR checking email existence: %v", err)
		return c.Status(500).JSON(fiber.Map{"error": "server error"})
	}

	return c.JSON(fiber.Map{
		"existing":   count > 0,
		"disposable": IsDisposableEmail(email),
	})
}

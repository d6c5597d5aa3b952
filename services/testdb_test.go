package services

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"esports-arena/models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newTestDB opens an in-memory sqlite database with the full schema.
// sqlite cannot parse SELECT ... FOR UPDATE, so the locking clause is
// stripped; the single shared connection serializes access instead.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatal(err)
	}
	sqlDB.SetMaxOpenConns(1)

	err = db.Callback().Query().Before("gorm:query").
		Register("strip_row_locking", func(tx *gorm.DB) {
			delete(tx.Statement.Clauses, "FOR")
		})
	if err != nil {
		t.Fatal(err)
	}

	if err := db.AutoMigrate(
		&models.UserProfile{},
		&models.Match{},
		&models.MatchPlayer{},
		&models.TopupRequest{},
		&models.WithdrawRequest{},
		&models.CoinLedger{},
		&models.EmailOTP{},
		&models.Feedback{},
	); err != nil {
		t.Fatalf("failed to migrate test schema: %v", err)
	}
	return db
}

// asUser stubs the identity middleware for handler tests.
func asUser(uid string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.Locals("uid", uid)
		c.Locals("email", uid+"@example.com")
		return c.Next()
	}
}

func jsonRequest(t *testing.T, method, target string, body interface{}) *http.Request {
	t.Helper()
	payload, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("failed to marshal request body: %v", err)
	}
	req := httptest.NewRequest(method, target, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	return req
}

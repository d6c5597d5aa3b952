// workers/identity_sync_worker.go
package workers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"time"

	"esports-arena/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// IdentityAccount matches the JSON the identity provider's account feed returns.
type IdentityAccount struct {
	UID       string    `json:"uid"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type accountFeedResponse struct {
	Accounts []IdentityAccount `json:"accounts"`
}

// IdentitySyncWorker polls the identity provider for sign-ins and makes sure
// every account has a local profile. The profile endpoint also creates
// lazily on first call; the worker covers users who sign in but never open
// the dashboard before someone refers them.
type IdentitySyncWorker struct {
	db           *gorm.DB
	interval     time.Duration
	baseURL      string
	serviceToken string
	httpClient   *http.Client
}

func NewIdentitySyncWorker(db *gorm.DB, identityServiceURL, serviceToken string) *IdentitySyncWorker {
	return &IdentitySyncWorker{
		db:           db,
		interval:     1 * time.Minute,
		baseURL:      identityServiceURL,
		serviceToken: serviceToken,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

func (w *IdentitySyncWorker) Start(ctx context.Context) {
	log.Println("🔁 Starting Identity Sync Worker (identity provider → user_profiles)…")
	go w.run(ctx)
}

func (w *IdentitySyncWorker) run(ctx context.Context) {
	// Initial backfill from the beginning of time
	if err := w.syncBatch(ctx, time.Time{}); err != nil {
		log.Printf("⚠️ Initial identity sync failed: %v", err)
	}

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := w.syncBatch(ctx, w.getLastSyncTime()); err != nil {
				log.Printf("❌ Identity sync batch failed: %v", err)
			}
		case <-ctx.Done():
			log.Println("Identity sync worker stopped.")
			return
		}
	}
}

// getLastSyncTime uses the newest local profile as the incremental cursor.
func (w *IdentitySyncWorker) getLastSyncTime() time.Time {
	var latest models.UserProfile
	if err := w.db.Order("created_at DESC").First(&latest).Error; err != nil {
		return time.Time{}
	}
	return latest.CreatedAt
}

func (w *IdentitySyncWorker) syncBatch(ctx context.Context, since time.Time) error {
	accounts, err := w.fetchAccounts(ctx, since)
	if err != nil {
		return err
	}
	if len(accounts) == 0 {
		return nil
	}

	created := 0
	for _, acct := range accounts {
		if acct.UID == "" {
			continue
		}
		profile := models.NewUserProfile(acct.UID, acct.Email)
		res := w.db.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "uid"}},
			DoNothing: true,
		}).Create(profile)
		if res.Error != nil {
			// Referral code collision — retry once with a random code.
			profile.ReferralCode = models.RandomReferralCode()
			res = w.db.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "uid"}},
				DoNothing: true,
			}).Create(profile)
			if res.Error != nil {
				log.Printf("⚠️ Failed to create profile for %s: %v", acct.UID, res.Error)
				continue
			}
		}
		if res.RowsAffected > 0 {
			created++
		}
	}
	if created > 0 {
		log.Printf("✅ Identity sync: %d new profiles", created)
	}
	return nil
}

func (w *IdentitySyncWorker) fetchAccounts(ctx context.Context, since time.Time) ([]IdentityAccount, error) {
	u, err := url.Parse(fmt.Sprintf("%s/v1/accounts", w.baseURL))
	if err != nil {
		return nil, fmt.Errorf("failed to parse identity service URL: %w", err)
	}
	q := u.Query()
	if !since.IsZero() {
		q.Set("since", since.UTC().Format(time.RFC3339))
	}
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, "GET", u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("X-Service-Token", w.serviceToken)

	resp, err := w.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to call identity service: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("identity service returned status %d: %s", resp.StatusCode, string(body))
	}

	var feed accountFeedResponse
	if err := json.NewDecoder(resp.Body).Decode(&feed); err != nil {
		return nil, fmt.Errorf("failed to decode identity feed: %w", err)
	}
	return feed.Accounts, nil
}

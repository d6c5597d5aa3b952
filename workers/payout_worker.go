// workers/payout_worker.go
package workers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"esports-arena/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PayoutWorker pushes approved withdrawals to the UPI payout rail. Each
// request is handed over at most once; the PaidOut flag flips inside the
// same transaction that re-checks the row under lock.
type PayoutWorker struct {
	db           *gorm.DB
	interval     time.Duration
	baseURL      string
	serviceToken string
	httpClient   *http.Client
}

type payoutOrder struct {
	ReferenceID string `json:"reference_id"`
	UPIID       string `json:"upi_id"`
	Amount      int64  `json:"amount"`
	Currency    string `json:"currency"`
}

func NewPayoutWorker(db *gorm.DB, payoutServiceURL, serviceToken string) *PayoutWorker {
	return &PayoutWorker{
		db:           db,
		interval:     30 * time.Second,
		baseURL:      payoutServiceURL,
		serviceToken: serviceToken,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

func (w *PayoutWorker) Start(ctx context.Context) {
	log.Println("🔁 Starting Payout Worker (approved withdrawals → UPI rail)…")
	go w.run(ctx)
}

func (w *PayoutWorker) run(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := w.processBatch(ctx); err != nil {
				log.Printf("❌ Payout batch failed: %v", err)
			}
		case <-ctx.Done():
			log.Println("Payout worker stopped.")
			return
		}
	}
}

func (w *PayoutWorker) processBatch(ctx context.Context) error {
	var pending []models.WithdrawRequest
	if err := w.db.
		Where("status = ? AND paid_out = ?", models.RequestStatusApproved, false).
		Order("created_at ASC").
		Limit(20).
		Find(&pending).Error; err != nil {
		return fmt.Errorf("failed to load approved withdrawals: %w", err)
	}

	for _, wr := range pending {
		if err := w.payOne(ctx, wr.ID); err != nil {
			log.Printf("⚠️ Payout for withdrawal %s failed: %v", wr.ID, err)
		}
	}
	return nil
}

func (w *PayoutWorker) payOne(ctx context.Context, requestID string) error {
	return w.db.Transaction(func(tx *gorm.DB) error {
		var wr models.WithdrawRequest
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ?", requestID).
			First(&wr).Error; err != nil {
			return err
		}
		// Another instance got here first, or the decision changed.
		if wr.PaidOut || wr.Status != models.RequestStatusApproved {
			return nil
		}

		if err := w.submitOrder(ctx, wr); err != nil {
			return err
		}

		now := time.Now()
		wr.PaidOut = true
		wr.PaidAt = &now
		if err := tx.Save(&wr).Error; err != nil {
			return fmt.Errorf("failed to mark withdrawal paid: %w", err)
		}

		log.Printf("✅ Paid out withdrawal %s (₹%d to %s)", wr.ID, wr.Amount, wr.UPIID)
		return nil
	})
}

func (w *PayoutWorker) submitOrder(ctx context.Context, wr models.WithdrawRequest) error {
	order := payoutOrder{
		ReferenceID: wr.ID,
		UPIID:       wr.UPIID,
		Amount:      wr.Amount,
		Currency:    "INR",
	}
	body, err := json.Marshal(order)
	if err != nil {
		return fmt.Errorf("failed to marshal payout order: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", w.baseURL+"/v1/payouts", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create payout request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Service-Token", w.serviceToken)

	resp, err := w.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to call payout service: %w", err)
	}
	defer resp.Body.Close()

	// 409 means the rail already has this reference id — safe to mark paid.
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusConflict {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("payout service returned status %d: %s", resp.StatusCode, string(raw))
	}
	return nil
}

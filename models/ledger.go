package models

import "time"

// Ledger entry kinds — the tagged variants of every coin movement.
const (
	LedgerTopup          = "topup"           // admin-approved purchase credit
	LedgerWithdraw       = "withdraw"        // hold taken when a withdrawal is filed
	LedgerWithdrawRefund = "withdraw_refund" // hold returned on rejection
	LedgerReferralBonus  = "referral_bonus"  // referrer side of a redemption
	LedgerReferralReward = "referral_reward" // referee side of a redemption
	LedgerMatchPrize     = "match_prize"     // settlement payout
	LedgerEntryFee       = "entry_fee"       // debit on joining a match
)

// CoinLedger is the append-only transaction log behind every balance change.
// The (kind, ref_id) unique index is the idempotency guard: replaying a
// settlement, approval or redemption fails on insert instead of double-paying.
type CoinLedger struct {
	ID     string `gorm:"primaryKey;type:uuid" json:"id"`
	UserID string `gorm:"index;not null" json:"user_id"`
	Kind   string `gorm:"type:varchar(24);not null;uniqueIndex:idx_ledger_kind_ref" json:"kind"`
	RefID  string `gorm:"not null;uniqueIndex:idx_ledger_kind_ref" json:"ref_id"` // request/match/redemption id
	Delta  int64  `gorm:"not null" json:"delta"`                                  // signed coin movement
	Note   string `json:"note,omitempty"`

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
}

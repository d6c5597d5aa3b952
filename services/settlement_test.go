package services

import (
	"fmt"
	"testing"
	"time"

	"esports-arena/models"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

func TestComputePrizeFixed(t *testing.T) {
	m := &models.Match{
		PrizeModel:  models.PrizeModelFixed,
		BooyahPrize: 500,
	}
	if got := ComputePrize(m, 48, 12); got != 500 {
		t.Errorf("fixed prize = %d, want 500", got)
	}
	// Kills never change a fixed payout
	if got := ComputePrize(m, 48, 0); got != 500 {
		t.Errorf("fixed prize with 0 kills = %d, want 500", got)
	}
}

func TestComputePrizeScalable(t *testing.T) {
	// entryFee 10, 4 players, 10% commission, 5/kill:
	// total 40, pool 36, kill pool 15, placement 21; winner with 3 kills gets 36
	m := &models.Match{
		PrizeModel:        models.PrizeModelScalable,
		EntryFee:          10,
		CommissionPercent: 10,
		PerKillReward:     5,
	}
	if got := ComputePrize(m, 4, 3); got != 36 {
		t.Errorf("scalable prize = %d, want 36", got)
	}
	if got := ComputePrize(m, 4, 0); got != 21 {
		t.Errorf("scalable prize with 0 kills = %d, want 21", got)
	}
}

func TestComputePrizeClampsNegativePlacement(t *testing.T) {
	// Kill pool exceeds the whole pool: placement clamps to 0, the winner
	// still earns their own kills.
	m := &models.Match{
		PrizeModel:        models.PrizeModelScalable,
		EntryFee:          10,
		CommissionPercent: 10,
		PerKillReward:     20,
	}
	if got := ComputePrize(m, 4, 2); got != 40 {
		t.Errorf("clamped prize = %d, want 40", got)
	}
	if got := ComputePrize(m, 4, 0); got != 0 {
		t.Errorf("clamped prize with 0 kills = %d, want 0", got)
	}
}

func TestComputePrizeNeverNegative(t *testing.T) {
	cases := []struct {
		name string
		m    models.Match
	}{
		{"negative fixed prize", models.Match{PrizeModel: models.PrizeModelFixed, BooyahPrize: -100}},
		{"zero players scalable", models.Match{PrizeModel: models.PrizeModelScalable, EntryFee: 10, PerKillReward: 5}},
		{"unknown prize model", models.Match{PrizeModel: "Jackpot", BooyahPrize: 999}},
	}
	for _, tc := range cases {
		if got := ComputePrize(&tc.m, 0, 0); got < 0 {
			t.Errorf("%s: prize = %d, want >= 0", tc.name, got)
		}
	}
}

func TestComputePrizeUnknownModelPaysNothing(t *testing.T) {
	m := &models.Match{PrizeModel: "Jackpot", BooyahPrize: 999, EntryFee: 10}
	if got := ComputePrize(m, 10, 5); got != 0 {
		t.Errorf("unknown model prize = %d, want 0", got)
	}
}

func TestComputePrizeFullCommission(t *testing.T) {
	// 100% commission leaves no pool; only placement clamps, kills still pay
	m := &models.Match{
		PrizeModel:        models.PrizeModelScalable,
		EntryFee:          10,
		CommissionPercent: 100,
		PerKillReward:     5,
	}
	if got := ComputePrize(m, 4, 3); got != 15 {
		t.Errorf("full-commission prize = %d, want 15", got)
	}
}

func newSettleApp(t *testing.T) (*fiber.App, *MatchService) {
	t.Helper()
	svc := NewMatchService(newTestDB(t))
	app := fiber.New()
	app.Post("/api/settleMatch", svc.SettleMatch)
	return app, svc
}

func seedScalableMatch(t *testing.T, svc *MatchService, players int) *models.Match {
	t.Helper()
	m := &models.Match{
		ID:                uuid.NewString(),
		Slug:              "friday-clash",
		Title:             "Friday Clash",
		MaxPlayers:        48,
		EntryFee:          10,
		PrizeModel:        models.PrizeModelScalable,
		PerKillReward:     5,
		CommissionPercent: 10,
		Status:            models.MatchStatusUpcoming,
		StartsAt:          time.Now().Add(time.Hour),
		RevealAt:          time.Now().Add(45 * time.Minute),
	}
	if err := svc.DB.Create(m).Error; err != nil {
		t.Fatal(err)
	}
	for i := 0; i < players; i++ {
		if err := svc.DB.Create(&models.MatchPlayer{
			ID:       uuid.NewString(),
			MatchID:  m.ID,
			UID:      fmt.Sprintf("player%03d", i),
			JoinedAt: time.Now(),
		}).Error; err != nil {
			t.Fatal(err)
		}
	}
	return m
}

func TestSettleMatchPaysWinnerOnce(t *testing.T) {
	app, svc := newSettleApp(t)

	winner := models.NewUserProfile("alphauser001", "winner@example.com")
	winner.Username = "slayer"
	if err := svc.DB.Create(winner).Error; err != nil {
		t.Fatal(err)
	}
	m := seedScalableMatch(t, svc, 4)

	resp, err := app.Test(jsonRequest(t, "POST", "/api/settleMatch", fiber.Map{
		"matchId":        m.ID,
		"winnerUsername": "slayer",
		"kills":          3,
	}))
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != 200 {
		t.Fatalf("settle status = %d, want 200", resp.StatusCode)
	}

	var gotWinner models.UserProfile
	if err := svc.DB.First(&gotWinner, "uid = ?", winner.UID).Error; err != nil {
		t.Fatal(err)
	}
	if gotWinner.Coins != 36 {
		t.Errorf("winner coins = %d, want 36", gotWinner.Coins)
	}

	var gotMatch models.Match
	if err := svc.DB.First(&gotMatch, "id = ?", m.ID).Error; err != nil {
		t.Fatal(err)
	}
	if gotMatch.Status != models.MatchStatusCompleted {
		t.Errorf("match status = %q, want completed", gotMatch.Status)
	}
	if gotMatch.Winner != "slayer" || gotMatch.WinnerKills != 3 {
		t.Errorf("winner fields = (%q, %d), want (slayer, 3)", gotMatch.Winner, gotMatch.WinnerKills)
	}

	// Replay is rejected and pays nothing more
	resp, err = app.Test(jsonRequest(t, "POST", "/api/settleMatch", fiber.Map{
		"matchId":        m.ID,
		"winnerUsername": "slayer",
		"kills":          3,
	}))
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != 409 {
		t.Errorf("replay status = %d, want 409", resp.StatusCode)
	}

	if err := svc.DB.First(&gotWinner, "uid = ?", winner.UID).Error; err != nil {
		t.Fatal(err)
	}
	if gotWinner.Coins != 36 {
		t.Errorf("winner coins after replay = %d, want 36", gotWinner.Coins)
	}
	var ledgerCount int64
	svc.DB.Model(&models.CoinLedger{}).
		Where("kind = ? AND ref_id = ?", models.LedgerMatchPrize, m.ID).
		Count(&ledgerCount)
	if ledgerCount != 1 {
		t.Errorf("prize ledger rows = %d, want 1", ledgerCount)
	}
}

func TestSettleMatchUnknownWinner(t *testing.T) {
	app, svc := newSettleApp(t)
	m := seedScalableMatch(t, svc, 4)

	resp, err := app.Test(jsonRequest(t, "POST", "/api/settleMatch", fiber.Map{
		"matchId":        m.ID,
		"winnerUsername": "nobody",
		"kills":          1,
	}))
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != 404 {
		t.Errorf("status = %d, want 404", resp.StatusCode)
	}
}

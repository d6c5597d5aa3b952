package services

import "testing"

func TestTopupCoins(t *testing.T) {
	cases := []struct {
		amount int64
		want   int64
	}{
		{1, 10},
		{50, 500},
		{100, 1000},
	}
	for _, tc := range cases {
		if got := TopupCoins(tc.amount); got != tc.want {
			t.Errorf("TopupCoins(%d) = %d, want %d", tc.amount, got, tc.want)
		}
	}
}

func TestWithdrawCoinsNeeded(t *testing.T) {
	cases := []struct {
		amount int64
		want   int64
	}{
		{50, 55},
		{100, 110},
		{1, 2},   // ceil(1.1)
		{3, 4},   // ceil(3.3)
		{10, 11}, // exact
		{0, 0},
	}
	for _, tc := range cases {
		if got := WithdrawCoinsNeeded(tc.amount); got != tc.want {
			t.Errorf("WithdrawCoinsNeeded(%d) = %d, want %d", tc.amount, got, tc.want)
		}
	}
}

// The hold always covers the payout plus the full 10% cut, never less.
func TestWithdrawHoldCoversCommission(t *testing.T) {
	for amount := int64(1); amount <= 1000; amount++ {
		hold := WithdrawCoinsNeeded(amount)
		if hold*10 < amount*11 {
			t.Fatalf("hold for %d is %d, under the 10%% commission floor", amount, hold)
		}
		if hold > amount+amount/10+1 {
			t.Fatalf("hold for %d is %d, overcharges beyond ceil", amount, hold)
		}
	}
}

package models

import (
	"strings"
	"testing"
)

func TestReferralCodeFromUID(t *testing.T) {
	code := ReferralCodeFromUID("aBcDeF123456xyz")
	if code != "ABCDEF12" {
		t.Errorf("code = %q, want ABCDEF12", code)
	}
}

func TestReferralCodeFromUIDStripsSymbols(t *testing.T) {
	code := ReferralCodeFromUID("a-b_c.d!e@f#g$h1")
	if code != "ABCDEFGH" {
		t.Errorf("code = %q, want ABCDEFGH", code)
	}
}

func TestReferralCodeFromUIDShortUID(t *testing.T) {
	code := ReferralCodeFromUID("ab")
	if len(code) != 8 {
		t.Fatalf("code %q has length %d, want 8", code, len(code))
	}
	if !strings.HasPrefix(code, "AB") {
		t.Errorf("code %q does not keep the UID prefix", code)
	}
	if code != strings.ToUpper(code) {
		t.Errorf("code %q is not uppercased", code)
	}
}

func TestReferralCodeFromUIDIsStable(t *testing.T) {
	uid := "k9PzQ2mN4vR7sT1u"
	if ReferralCodeFromUID(uid) != ReferralCodeFromUID(uid) {
		t.Error("same UID produced different codes")
	}
}

func TestRandomReferralCode(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		code := RandomReferralCode()
		if len(code) != 8 {
			t.Fatalf("code %q has length %d, want 8", code, len(code))
		}
		seen[code] = true
	}
	if len(seen) < 90 {
		t.Errorf("only %d distinct codes out of 100", len(seen))
	}
}

func TestNewUserProfile(t *testing.T) {
	p := NewUserProfile("uidAbc123xyz", "  Player@Example.COM ")
	if p.Email != "player@example.com" {
		t.Errorf("email = %q, want normalized lowercase", p.Email)
	}
	if p.Coins != 0 {
		t.Errorf("new profile starts with %d coins, want 0", p.Coins)
	}
	if p.Level != 1 {
		t.Errorf("new profile starts at level %d, want 1", p.Level)
	}
	if p.ReferralCode != "UIDABC12" {
		t.Errorf("referral code = %q, want UIDABC12", p.ReferralCode)
	}
	if p.HasRedeemedReferral {
		t.Error("new profile must not have redeemed a referral")
	}
}

package services

import "testing"

func TestXPForNextLevel(t *testing.T) {
	if got := xpForNextLevel(1); got != 100 {
		t.Errorf("xpForNextLevel(1) = %d, want 100", got)
	}
	// Requirements grow monotonically
	prev := xpForNextLevel(1)
	for level := 2; level <= 50; level++ {
		need := xpForNextLevel(level)
		if need <= prev {
			t.Fatalf("xpForNextLevel(%d) = %d, not above previous %d", level, need, prev)
		}
		prev = need
	}
	// Out-of-range input clamps to level 1
	if got := xpForNextLevel(0); got != 100 {
		t.Errorf("xpForNextLevel(0) = %d, want 100", got)
	}
}

func TestLevelForXP(t *testing.T) {
	cases := []struct {
		xp   int64
		want int
	}{
		{0, 1},
		{99, 1},
		{100, 2}, // exactly one level-up
		{328, 2}, // 100 + 228, one short of level 3
		{329, 3}, // 100 + floor(100 * 2^1.2)
	}
	for _, tc := range cases {
		if got := LevelForXP(tc.xp); got != tc.want {
			t.Errorf("LevelForXP(%d) = %d, want %d", tc.xp, got, tc.want)
		}
	}
}

func TestLevelForXPNeverDecreases(t *testing.T) {
	prev := 1
	for xp := int64(0); xp <= 5000; xp += 7 {
		level := LevelForXP(xp)
		if level < prev {
			t.Fatalf("LevelForXP(%d) = %d, below earlier level %d", xp, level, prev)
		}
		prev = level
	}
}

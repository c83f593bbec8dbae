package warranty

import (
	"testing"
	"time"

	"assettrack/internal/types"
)

var day = 24 * time.Hour

func TestClassify_Boundaries(t *testing.T) {
	today := time.Date(2026, 3, 15, 14, 45, 0, 0, time.UTC)

	tests := []struct {
		name     string
		end      time.Time
		wantTier types.WarrantyTier
		wantDays int
	}{
		{"expired yesterday", today.Add(-1 * day), types.TierExpired, -1},
		{"expired five days ago", today.Add(-5 * day), types.TierExpired, -5},
		{"expires today is critical", today, types.TierCritical, 0},
		{"thirty days out is critical", today.Add(30 * day), types.TierCritical, 30},
		{"thirty-one days out is warning", today.Add(31 * day), types.TierWarning, 31},
		{"ninety days out is warning", today.Add(90 * day), types.TierWarning, 90},
		{"ninety-one days out is excluded", today.Add(91 * day), types.TierNone, 91},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Classify(tt.end, today)
			if got.Tier != tt.wantTier {
				t.Errorf("tier = %s, want %s", got.Tier, tt.wantTier)
			}
			if got.DaysRemaining != tt.wantDays {
				t.Errorf("days = %d, want %d", got.DaysRemaining, tt.wantDays)
			}
		})
	}
}

func TestClassify_IgnoresTimeOfDay(t *testing.T) {
	// 23:59 today vs 00:01 tomorrow is still one calendar day apart.
	today := time.Date(2026, 3, 15, 23, 59, 0, 0, time.UTC)
	end := time.Date(2026, 3, 16, 0, 1, 0, 0, time.UTC)

	got := Classify(end, today)
	if got.DaysRemaining != 1 {
		t.Errorf("days = %d, want 1", got.DaysRemaining)
	}
}

func TestTierNotificationTypeMapping(t *testing.T) {
	tests := []struct {
		tier   types.WarrantyTier
		want   types.NotificationType
		wantOK bool
	}{
		{types.TierExpired, types.NotifyExpired, true},
		{types.TierCritical, types.Notify30Day, true},
		{types.TierWarning, types.Notify90Day, true},
		{types.TierNone, "", false},
	}
	for _, tt := range tests {
		nt, ok := tt.tier.NotificationType()
		if nt != tt.want || ok != tt.wantOK {
			t.Errorf("%s: got (%s, %v), want (%s, %v)", tt.tier, nt, ok, tt.want, tt.wantOK)
		}
	}
}

func TestCooldown_PerTypeWindows(t *testing.T) {
	if got := Cooldown(types.NotifyExpired); got != 30*day {
		t.Errorf("expired cooldown = %v", got)
	}
	if got := Cooldown(types.Notify30Day); got != 7*day {
		t.Errorf("30_day cooldown = %v", got)
	}
	if got := Cooldown(types.Notify90Day); got != 14*day {
		t.Errorf("90_day cooldown = %v", got)
	}
}

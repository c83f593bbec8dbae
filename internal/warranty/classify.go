// Package warranty implements the warranty-expiration check: it classifies
// every in-scope asset against fixed day thresholds, suppresses re-alerts
// within per-tier cooldown windows, and hands batched alerts to a notifier.
//
// Thresholds and cooldowns are fixed domain constants, not runtime
// configuration.
package warranty

import (
	"time"

	"assettrack/internal/types"
)

// Tier day thresholds (inclusive upper bounds).
const (
	// CriticalDays: 0..30 days remaining classifies as critical.
	CriticalDays = 30
	// WarningDays: 31..90 days remaining classifies as warning.
	WarningDays = 90
)

// Per-type cooldowns: the minimum time before the same asset/type pair may
// alert again. Tiers overlap in time as an asset drifts warning -> critical
// -> expired, so suppression keys on the notification type, not a single
// "already notified" flag.
var cooldowns = map[types.NotificationType]time.Duration{
	types.NotifyExpired: 30 * 24 * time.Hour,
	types.Notify30Day:   7 * 24 * time.Hour,
	types.Notify90Day:   14 * 24 * time.Hour,
}

// Cooldown returns the suppression window for a notification type.
func Cooldown(nt types.NotificationType) time.Duration {
	return cooldowns[nt]
}

// Classification is the derived warranty state of one asset for a given day.
// It is never persisted.
type Classification struct {
	Tier          types.WarrantyTier
	DaysRemaining int // signed; negative means past due
}

// Classify computes the warranty tier for an asset whose warranty ends on
// warrantyEnd, as of today. Both instants are truncated to calendar days
// before differencing, so an asset expiring "today" has zero days remaining
// and classifies as critical, not expired.
func Classify(warrantyEnd, today time.Time) Classification {
	days := daysBetween(today, warrantyEnd)
	switch {
	case days < 0:
		return Classification{Tier: types.TierExpired, DaysRemaining: days}
	case days <= CriticalDays:
		return Classification{Tier: types.TierCritical, DaysRemaining: days}
	case days <= WarningDays:
		return Classification{Tier: types.TierWarning, DaysRemaining: days}
	default:
		return Classification{Tier: types.TierNone, DaysRemaining: days}
	}
}

// daysBetween returns the whole calendar days from a to b in UTC.
func daysBetween(a, b time.Time) int {
	ay, am, ad := a.UTC().Date()
	by, bm, bd := b.UTC().Date()
	start := time.Date(ay, am, ad, 0, 0, 0, 0, time.UTC)
	end := time.Date(by, bm, bd, 0, 0, 0, 0, time.UTC)
	return int(end.Sub(start) / (24 * time.Hour))
}

package warranty

import (
	"context"
	"log/slog"
	"time"

	"assettrack/internal/types"
)

// deliveryTimeout bounds a single notifier call. The run continues
// batch-by-batch even if one delivery times out.
const deliveryTimeout = 30 * time.Second

// AssetSource lists the assets in scope for warranty checking:
// status != decommissioned and warranty_end present.
type AssetSource interface {
	ListWarrantyCandidates(ctx context.Context) ([]types.WarrantyCandidate, error)
}

// HistoryStore is the append-only notification history used to enforce the
// cooldown. Record must tolerate duplicate writes from overlapping runs
// (insert-or-ignore), so two concurrent checks cannot double-record.
type HistoryStore interface {
	SentWithin(ctx context.Context, assetID int64, nt types.NotificationType, cutoff time.Time) (bool, error)
	Record(ctx context.Context, assetID int64, nt types.NotificationType, sentAt time.Time) error
}

// RecipientDirectory resolves who receives warranty alerts: all active
// admin and technician accounts.
type RecipientDirectory interface {
	ListAlertRecipients(ctx context.Context) ([]string, error)
}

// Notifier delivers one batched alert per tier.
type Notifier interface {
	SendWarrantyBatch(ctx context.Context, recipients []string, tier types.WarrantyTier, assets []types.WarrantySummaryItem) error
}

// Report summarizes one check run.
type Report struct {
	Scanned      int                        `json:"scanned"`
	Suppressed   int                        `json:"suppressed"`
	Skipped      int                        `json:"skipped"` // classification faults
	Queued       map[types.WarrantyTier]int `json:"queued"`
	Delivered    map[types.WarrantyTier]int `json:"delivered"`
	Recorded     int                        `json:"recorded"`
	NoRecipients bool                       `json:"no_recipients,omitempty"`
}

// Checker runs the warranty classification and alerting pass. It is a plain
// synchronous service: the daily trigger and the on-demand endpoint both
// just call Run.
type Checker struct {
	assets     AssetSource
	history    HistoryStore
	recipients RecipientDirectory
	notifier   Notifier
	clock      types.Clock
	logger     *slog.Logger
}

// NewChecker creates a warranty Checker.
func NewChecker(assets AssetSource, history HistoryStore, recipients RecipientDirectory, notifier Notifier, clock types.Clock, logger *slog.Logger) *Checker {
	if clock == nil {
		clock = types.RealClock{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Checker{
		assets:     assets,
		history:    history,
		recipients: recipients,
		notifier:   notifier,
		clock:      clock,
		logger:     logger,
	}
}

// batch accumulates the non-suppressed assets for one tier.
type batch struct {
	tier  types.WarrantyTier
	nt    types.NotificationType
	items []types.WarrantySummaryItem
	ids   []int64
}

// Run executes one check: classify, suppress, batch, deliver, record.
//
// Failure semantics: a per-asset fault or a failed batch delivery is logged
// and skipped; the run always completes. A failed batch writes no history
// rows, so its assets are re-alerted on the next run. History rows are only
// written after confirmed delivery, making a same-day re-run a no-op.
func (c *Checker) Run(ctx context.Context) (Report, error) {
	now := c.clock.Now()
	report := Report{
		Queued:    make(map[types.WarrantyTier]int),
		Delivered: make(map[types.WarrantyTier]int),
	}

	candidates, err := c.assets.ListWarrantyCandidates(ctx)
	if err != nil {
		return report, err
	}
	report.Scanned = len(candidates)

	// Deterministic batch order: most urgent tier first.
	batches := []*batch{
		{tier: types.TierExpired, nt: types.NotifyExpired},
		{tier: types.TierCritical, nt: types.Notify30Day},
		{tier: types.TierWarning, nt: types.Notify90Day},
	}
	byTier := make(map[types.WarrantyTier]*batch, len(batches))
	for _, b := range batches {
		byTier[b.tier] = b
	}

	for _, cand := range candidates {
		if cand.WarrantyEnd.IsZero() {
			// Defensive guard: candidates are filtered on warranty_end in the
			// store; a zero date here means a scan bug upstream.
			c.logger.Error("warranty candidate missing end date, skipping",
				"asset_id", cand.AssetID,
				"asset_tag", cand.AssetTag,
			)
			report.Skipped++
			continue
		}

		class := Classify(cand.WarrantyEnd, now)
		nt, ok := class.Tier.NotificationType()
		if !ok {
			continue // more than 90 days out
		}

		cutoff := now.Add(-Cooldown(nt))
		sent, err := c.history.SentWithin(ctx, cand.AssetID, nt, cutoff)
		if err != nil {
			c.logger.Error("cooldown lookup failed, skipping asset",
				"asset_id", cand.AssetID,
				"notification_type", string(nt),
				"error", err,
			)
			report.Skipped++
			continue
		}
		if sent {
			report.Suppressed++
			continue
		}

		b := byTier[class.Tier]
		b.items = append(b.items, types.WarrantySummaryItem{
			AssetTag:      cand.AssetTag,
			Name:          cand.Name,
			SerialNumber:  cand.SerialNumber,
			WarrantyEnd:   cand.WarrantyEnd,
			DaysRemaining: class.DaysRemaining,
			AssignedTo:    cand.AssignedToName,
		})
		b.ids = append(b.ids, cand.AssetID)
		report.Queued[class.Tier]++
	}

	recipients, err := c.recipients.ListAlertRecipients(ctx)
	if err != nil {
		return report, err
	}
	if len(recipients) == 0 {
		// Without recipients, delivery is skipped and nothing is recorded,
		// so the same assets are retried on the next run.
		c.logger.Warn("no alert recipients configured, skipping warranty delivery")
		report.NoRecipients = true
		return report, nil
	}

	for _, b := range batches {
		if len(b.items) == 0 {
			continue
		}
		if err := c.deliverBatch(ctx, recipients, b, now, &report); err != nil {
			c.logger.Error("warranty batch delivery failed",
				"tier", string(b.tier),
				"assets", len(b.items),
				"error", err,
			)
			continue
		}
	}

	c.logger.Info("warranty check complete",
		"scanned", report.Scanned,
		"suppressed", report.Suppressed,
		"skipped", report.Skipped,
		"expired", report.Delivered[types.TierExpired],
		"critical", report.Delivered[types.TierCritical],
		"warning", report.Delivered[types.TierWarning],
	)
	return report, nil
}

// deliverBatch sends one tier's alert and, only on confirmed delivery,
// records one history row per asset in the batch. A failed history write is
// logged but does not undo the delivery; the worst case is one duplicate
// alert for that asset on the next run.
func (c *Checker) deliverBatch(ctx context.Context, recipients []string, b *batch, sentAt time.Time, report *Report) error {
	sendCtx, cancel := context.WithTimeout(ctx, deliveryTimeout)
	defer cancel()

	if err := c.notifier.SendWarrantyBatch(sendCtx, recipients, b.tier, b.items); err != nil {
		return err
	}
	report.Delivered[b.tier] = len(b.items)

	for _, id := range b.ids {
		if err := c.history.Record(ctx, id, b.nt, sentAt); err != nil {
			c.logger.Error("failed to record warranty notification",
				"asset_id", id,
				"notification_type", string(b.nt),
				"error", err,
			)
			continue
		}
		report.Recorded++
	}
	return nil
}

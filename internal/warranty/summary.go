package warranty

import (
	"context"

	"assettrack/internal/types"
)

// Summary groups all in-scope assets by warranty tier for the dashboard.
// Unlike the check run it ignores cooldown state: it reflects what IS, not
// what should be alerted.
type Summary struct {
	Expired  []types.WarrantySummaryItem `json:"expired"`
	Critical []types.WarrantySummaryItem `json:"critical_30"`
	Warning  []types.WarrantySummaryItem `json:"warning_90"`
	Healthy  int                         `json:"healthy"`
}

// BuildSummary classifies every warranty candidate as of now.
func BuildSummary(ctx context.Context, assets AssetSource, clock types.Clock) (*Summary, error) {
	if clock == nil {
		clock = types.RealClock{}
	}
	candidates, err := assets.ListWarrantyCandidates(ctx)
	if err != nil {
		return nil, err
	}

	now := clock.Now()
	s := &Summary{
		Expired:  []types.WarrantySummaryItem{},
		Critical: []types.WarrantySummaryItem{},
		Warning:  []types.WarrantySummaryItem{},
	}
	for _, cand := range candidates {
		class := Classify(cand.WarrantyEnd, now)
		item := types.WarrantySummaryItem{
			AssetTag:      cand.AssetTag,
			Name:          cand.Name,
			SerialNumber:  cand.SerialNumber,
			WarrantyEnd:   cand.WarrantyEnd,
			DaysRemaining: class.DaysRemaining,
			AssignedTo:    cand.AssignedToName,
		}
		switch class.Tier {
		case types.TierExpired:
			s.Expired = append(s.Expired, item)
		case types.TierCritical:
			s.Critical = append(s.Critical, item)
		case types.TierWarning:
			s.Warning = append(s.Warning, item)
		default:
			s.Healthy++
		}
	}
	return s, nil
}

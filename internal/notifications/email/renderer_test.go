package email

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"assettrack/internal/types"
)

func newTestRenderer(t *testing.T) *Renderer {
	t.Helper()
	r, err := NewRenderer()
	require.NoError(t, err, "embedded templates must parse")
	return r
}

func TestRenderWarrantyAlert_Expired(t *testing.T) {
	r := newTestRenderer(t)

	assets := []types.WarrantySummaryItem{
		{
			AssetTag:      "LAP-001",
			Name:          "MacBook Pro 16",
			SerialNumber:  "SN-123",
			WarrantyEnd:   time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC),
			DaysRemaining: -5,
			AssignedTo:    "Dana Smith",
		},
		{
			AssetTag:      "MON-002",
			Name:          "Dell U2723QE",
			WarrantyEnd:   time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC),
			DaysRemaining: -1,
		},
	}

	out, err := r.RenderWarrantyAlert(types.TierExpired, assets)
	require.NoError(t, err)

	assert.Equal(t, "Warranty EXPIRED: 2 asset(s)", out.Subject)

	assert.Contains(t, out.BodyHTML, "LAP-001")
	assert.Contains(t, out.BodyHTML, "MacBook Pro 16")
	assert.Contains(t, out.BodyHTML, "SN-123")
	assert.Contains(t, out.BodyHTML, "2026-03-10")
	assert.Contains(t, out.BodyHTML, "expired 5d ago")
	assert.Contains(t, out.BodyHTML, "Dana Smith")
	assert.Contains(t, out.BodyHTML, "tier-expired")

	assert.Contains(t, out.BodyText, "LAP-001")
	assert.Contains(t, out.BodyText, "expired 1d ago")
	assert.NotContains(t, out.BodyText, "<html", "text body must be plain")
}

func TestRenderWarrantyAlert_CriticalAndWarningCopy(t *testing.T) {
	r := newTestRenderer(t)

	asset := []types.WarrantySummaryItem{{
		AssetTag:      "DCK-001",
		Name:          "CalDigit TS4",
		WarrantyEnd:   time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC),
		DaysRemaining: 17,
	}}

	critical, err := r.RenderWarrantyAlert(types.TierCritical, asset)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(critical.Subject, "Warranty expiring within 30 days"))
	assert.Contains(t, critical.BodyHTML, "17d left")

	warning, err := r.RenderWarrantyAlert(types.TierWarning, asset)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(warning.Subject, "Warranty expiring within 90 days"))
}

func TestRenderWarrantyAlert_ExpiresToday(t *testing.T) {
	r := newTestRenderer(t)

	out, err := r.RenderWarrantyAlert(types.TierCritical, []types.WarrantySummaryItem{{
		AssetTag:      "KEY-003",
		Name:          "Keychron K8",
		WarrantyEnd:   time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC),
		DaysRemaining: 0,
	}})
	require.NoError(t, err)
	assert.Contains(t, out.BodyHTML, "expires today")
}

func TestRenderWarrantyAlert_UnknownTier(t *testing.T) {
	r := newTestRenderer(t)

	_, err := r.RenderWarrantyAlert(types.TierNone, nil)
	require.Error(t, err)
}

func TestRenderWarrantyAlert_EscapesHTML(t *testing.T) {
	r := newTestRenderer(t)

	out, err := r.RenderWarrantyAlert(types.TierExpired, []types.WarrantySummaryItem{{
		AssetTag:      "OTH-001",
		Name:          `<script>alert("x")</script>`,
		WarrantyEnd:   time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		DaysRemaining: -14,
	}})
	require.NoError(t, err)
	assert.NotContains(t, out.BodyHTML, "<script>alert")
}

func TestRenderAssignmentNotice(t *testing.T) {
	r := newTestRenderer(t)

	asset := types.Asset{
		ID:           9,
		AssetTag:     "LAP-009",
		Name:         "ThinkPad X1",
		SerialNumber: "SN-900",
	}
	assignedDate := time.Date(2026, 3, 15, 9, 30, 0, 0, time.UTC)

	out, err := r.RenderAssignmentNotice(asset, assignedDate)
	require.NoError(t, err)

	assert.Equal(t, "Equipment assigned: LAP-009 ThinkPad X1", out.Subject)
	assert.Contains(t, out.BodyHTML, "LAP-009")
	assert.Contains(t, out.BodyHTML, "2026-03-15")
	assert.Contains(t, out.BodyText, "ThinkPad X1")
	assert.Contains(t, out.BodyText, "SN-900")
}

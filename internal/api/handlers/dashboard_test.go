package handlers

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"assettrack/internal/types"
	"assettrack/internal/warranty"
)

type mockStatsSource struct {
	statsFn func(ctx context.Context) (*types.AssetStats, error)
}

func (m *mockStatsSource) AssetStats(ctx context.Context) (*types.AssetStats, error) {
	if m.statsFn != nil {
		return m.statsFn(ctx)
	}
	return &types.AssetStats{}, nil
}

type mockCandidateSource struct {
	candidates []types.WarrantyCandidate
	err        error
}

func (m *mockCandidateSource) ListWarrantyCandidates(_ context.Context) ([]types.WarrantyCandidate, error) {
	return m.candidates, m.err
}

type mockAuditFeed struct {
	listRecentFn func(ctx context.Context, limit int) ([]types.AuditEntry, error)
}

func (m *mockAuditFeed) ListRecent(ctx context.Context, limit int) ([]types.AuditEntry, error) {
	if m.listRecentFn != nil {
		return m.listRecentFn(ctx, limit)
	}
	return []types.AuditEntry{}, nil
}

type dashFixedClock struct {
	now time.Time
}

func (c dashFixedClock) Now() time.Time { return c.now }

var dashNow = time.Date(2026, 5, 1, 8, 0, 0, 0, time.UTC)

func newTestDashboardHandler() (*DashboardHandler, *mockStatsSource, *mockCandidateSource, *mockAuditFeed) {
	stats := &mockStatsSource{}
	candidates := &mockCandidateSource{}
	audit := &mockAuditFeed{}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	h := NewDashboardHandler(stats, candidates, audit, dashFixedClock{now: dashNow}, logger)
	return h, stats, candidates, audit
}

func TestDashboardHandler_Stats(t *testing.T) {
	h, stats, _, _ := newTestDashboardHandler()

	stats.statsFn = func(_ context.Context) (*types.AssetStats, error) {
		return &types.AssetStats{
			Total:    12,
			Assigned: 7,
			ByStatus: map[types.AssetStatus]int{types.StatusActive: 7, types.StatusAvailable: 5},
			ByType:   map[types.AssetType]int{types.AssetLaptop: 12},
		}, nil
	}

	req := httptest.NewRequest(http.MethodGet, "/v1/dashboard/stats", nil)
	w := httptest.NewRecorder()

	h.HandleStats(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data types.AssetStats `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 12, resp.Data.Total)
	assert.Equal(t, 7, resp.Data.ByStatus[types.StatusActive])
}

func TestDashboardHandler_WarrantySummary(t *testing.T) {
	h, _, candidates, _ := newTestDashboardHandler()

	expired := dashNow.AddDate(0, 0, -3)
	critical := dashNow.AddDate(0, 0, 14)
	healthy := dashNow.AddDate(1, 0, 0)
	candidates.candidates = []types.WarrantyCandidate{
		{AssetID: 1, AssetTag: "LAP-001", Name: "Old MacBook", WarrantyEnd: expired},
		{AssetID: 2, AssetTag: "LAP-002", Name: "Newish MacBook", WarrantyEnd: critical},
		{AssetID: 3, AssetTag: "LAP-003", Name: "Fresh MacBook", WarrantyEnd: healthy},
	}

	req := httptest.NewRequest(http.MethodGet, "/v1/dashboard/warranty", nil)
	w := httptest.NewRecorder()

	h.HandleWarrantySummary(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data warranty.Summary `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Len(t, resp.Data.Expired, 1)
	assert.Len(t, resp.Data.Critical, 1)
	assert.Empty(t, resp.Data.Warning)
	assert.Equal(t, 1, resp.Data.Healthy)
}

func TestDashboardHandler_RecentAudit(t *testing.T) {
	h, _, _, audit := newTestDashboardHandler()

	audit.listRecentFn = func(_ context.Context, limit int) ([]types.AuditEntry, error) {
		assert.Equal(t, 10, limit)
		return []types.AuditEntry{{ID: 5, Action: types.AuditAssign, EntityType: "asset", EntityID: 7}}, nil
	}

	req := httptest.NewRequest(http.MethodGet, "/v1/dashboard/audit?limit=10", nil)
	w := httptest.NewRecorder()

	h.HandleRecentAudit(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data []types.AuditEntry `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Data, 1)
	assert.Equal(t, types.AuditAssign, resp.Data[0].Action)
}

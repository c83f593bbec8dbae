package email

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"assettrack/internal/types"
)

// capturingProvider records every SendInput it receives.
type capturingProvider struct {
	inputs []types.SendInput
	err    error
}

func (p *capturingProvider) Send(_ context.Context, input types.SendInput) (string, error) {
	if p.err != nil {
		return "", p.err
	}
	p.inputs = append(p.inputs, input)
	return "msg-1", nil
}

type notifierFixedClock struct {
	now time.Time
}

func (c notifierFixedClock) Now() time.Time { return c.now }

func newTestNotifier(t *testing.T, provider *capturingProvider) *Notifier {
	t.Helper()
	renderer, err := NewRenderer()
	require.NoError(t, err)
	return NewNotifier(provider, renderer, NotifierConfig{
		FromName:    "AssetTrack Alerts",
		FromAddress: "alerts@assettrack.example.com",
		Clock:       notifierFixedClock{now: time.Date(2026, 3, 15, 6, 0, 0, 0, time.UTC)},
	})
}

func TestNotifier_SendWarrantyBatch(t *testing.T) {
	provider := &capturingProvider{}
	n := newTestNotifier(t, provider)

	recipients := []string{"admin@example.com", "tech@example.com"}
	assets := []types.WarrantySummaryItem{{
		AssetTag:      "LAP-001",
		Name:          "MacBook Pro",
		WarrantyEnd:   time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC),
		DaysRemaining: -5,
	}}

	err := n.SendWarrantyBatch(context.Background(), recipients, types.TierExpired, assets)
	require.NoError(t, err)
	require.Len(t, provider.inputs, 1)

	input := provider.inputs[0]
	assert.Equal(t, recipients, input.To)
	assert.Equal(t, "alerts@assettrack.example.com", input.From.Address)
	assert.Equal(t, "Warranty EXPIRED: 1 asset(s)", input.Subject)
	assert.NotEmpty(t, input.BodyHTML)
	assert.NotEmpty(t, input.BodyText)
	assert.Equal(t, "warranty-expired-2026-03-15", input.ReferenceID)
}

func TestNotifier_SendWarrantyBatch_ProviderError(t *testing.T) {
	provider := &capturingProvider{err: errors.New("ses down")}
	n := newTestNotifier(t, provider)

	err := n.SendWarrantyBatch(context.Background(), []string{"a@example.com"}, types.TierCritical,
		[]types.WarrantySummaryItem{{AssetTag: "LAP-001", Name: "X", WarrantyEnd: time.Now(), DaysRemaining: 10}})
	require.Error(t, err)
	assert.Empty(t, provider.inputs)
}

func TestNotifier_SendWarrantyBatch_UnrenderableTier(t *testing.T) {
	provider := &capturingProvider{}
	n := newTestNotifier(t, provider)

	err := n.SendWarrantyBatch(context.Background(), []string{"a@example.com"}, types.TierNone, nil)
	require.Error(t, err)
	assert.Empty(t, provider.inputs, "render failure must not reach the provider")
}

func TestNotifier_SendAssignmentNotice(t *testing.T) {
	provider := &capturingProvider{}
	n := newTestNotifier(t, provider)

	asset := types.Asset{ID: 7, AssetTag: "LAP-007", Name: "ThinkPad X1", SerialNumber: "SN-7"}
	err := n.SendAssignmentNotice(context.Background(), "dana@example.com", asset,
		time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.Len(t, provider.inputs, 1)

	input := provider.inputs[0]
	assert.Equal(t, []string{"dana@example.com"}, input.To)
	assert.Equal(t, "Equipment assigned: LAP-007 ThinkPad X1", input.Subject)
	assert.Equal(t, "assignment-7", input.ReferenceID)
}

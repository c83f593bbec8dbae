package email

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"assettrack/internal/external"
	"assettrack/internal/types"
)

// Notifier delivers warranty alerts and assignment notices over email.
// It satisfies both the warranty checker's and the lifecycle service's
// notifier interfaces.
type Notifier struct {
	provider external.EmailProvider
	renderer *Renderer
	from     types.SenderIdentity
	clock    types.Clock
	logger   *slog.Logger
}

// NotifierConfig holds the parameters needed to construct a Notifier.
type NotifierConfig struct {
	FromName    string
	FromAddress string
	Clock       types.Clock
	Logger      *slog.Logger
}

// NewNotifier creates an email Notifier.
func NewNotifier(provider external.EmailProvider, renderer *Renderer, cfg NotifierConfig) *Notifier {
	clock := cfg.Clock
	if clock == nil {
		clock = types.RealClock{}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Notifier{
		provider: provider,
		renderer: renderer,
		from: types.SenderIdentity{
			Name:    cfg.FromName,
			Address: cfg.FromAddress,
		},
		clock:  clock,
		logger: logger,
	}
}

// SendWarrantyBatch renders and sends one alert email covering every asset in
// a tier. All recipients share a single message.
func (n *Notifier) SendWarrantyBatch(ctx context.Context, recipients []string, tier types.WarrantyTier, assets []types.WarrantySummaryItem) error {
	rendered, err := n.renderer.RenderWarrantyAlert(tier, assets)
	if err != nil {
		return err
	}

	refID := fmt.Sprintf("warranty-%s-%s", tier, n.clock.Now().Format("2006-01-02"))
	msgID, err := n.provider.Send(ctx, types.SendInput{
		To:          recipients,
		From:        n.from,
		Subject:     rendered.Subject,
		BodyHTML:    rendered.BodyHTML,
		BodyText:    rendered.BodyText,
		ReferenceID: refID,
	})
	if err != nil {
		return err
	}

	n.logger.Info("warranty alert delivered",
		"tier", string(tier),
		"assets", len(assets),
		"recipients", len(recipients),
		"provider_msg_id", msgID)
	return nil
}

// SendAssignmentNotice emails an employee that equipment was assigned to them.
func (n *Notifier) SendAssignmentNotice(ctx context.Context, employeeEmail string, asset types.Asset, assignedDate time.Time) error {
	rendered, err := n.renderer.RenderAssignmentNotice(asset, assignedDate)
	if err != nil {
		return err
	}

	msgID, err := n.provider.Send(ctx, types.SendInput{
		To:          []string{employeeEmail},
		From:        n.from,
		Subject:     rendered.Subject,
		BodyHTML:    rendered.BodyHTML,
		BodyText:    rendered.BodyText,
		ReferenceID: fmt.Sprintf("assignment-%d", asset.ID),
	})
	if err != nil {
		return err
	}

	n.logger.Info("assignment notice delivered",
		"asset_id", asset.ID,
		"provider_msg_id", msgID)
	return nil
}

package external

import (
	"context"

	"assettrack/internal/types"
)

// EmailProvider abstracts the email delivery service (AWS SES).
// Implementations transmit pre-rendered email content (Subject, BodyHTML,
// BodyText).
type EmailProvider interface {
	// Send transmits an email with pre-rendered content.
	// Returns the provider's message ID for tracking and correlation.
	Send(ctx context.Context, input types.SendInput) (providerMsgID string, err error)
}

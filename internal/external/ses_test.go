package external

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"

	"assettrack/internal/types"
)

// mockSESAPI implements SESAPI for testing.
type mockSESAPI struct {
	sendEmailFunc func(ctx context.Context, params *sesv2.SendEmailInput, optFns ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error)
}

func (m *mockSESAPI) SendEmail(ctx context.Context, params *sesv2.SendEmailInput, optFns ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error) {
	return m.sendEmailFunc(ctx, params, optFns...)
}

func TestSESSend_Success(t *testing.T) {
	var capturedInput *sesv2.SendEmailInput

	mock := &mockSESAPI{
		sendEmailFunc: func(ctx context.Context, params *sesv2.SendEmailInput, optFns ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error) {
			capturedInput = params
			return &sesv2.SendEmailOutput{
				MessageId: aws.String("ses-msg-abc123"),
			}, nil
		},
	}

	client := NewSESClientWithAPI(mock, SESClientConfig{
		ConfigSetName: "assettrack-tracking",
	})

	input := types.SendInput{
		To: []string{"it-admin@example.com", "tech@example.com"},
		From: types.SenderIdentity{
			Name:    "AssetTrack Alerts",
			Address: "alerts@assettrack.example.com",
		},
		Subject:     "Warranty Expired: 2 assets",
		BodyHTML:    "<h1>Warranty</h1>",
		BodyText:    "Warranty: 2 assets expired",
		ReferenceID: "warranty-expired-2026-03-15",
	}

	msgID, err := client.Send(context.Background(), input)
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}

	if msgID != "ses-msg-abc123" {
		t.Errorf("expected message ID ses-msg-abc123, got %s", msgID)
	}

	// Verify from address format.
	wantFrom := "AssetTrack Alerts <alerts@assettrack.example.com>"
	if aws.ToString(capturedInput.FromEmailAddress) != wantFrom {
		t.Errorf("from = %q, want %q", aws.ToString(capturedInput.FromEmailAddress), wantFrom)
	}

	// Verify all recipients landed in the destination.
	if len(capturedInput.Destination.ToAddresses) != 2 {
		t.Fatalf("expected 2 destinations, got %v", capturedInput.Destination.ToAddresses)
	}
	if capturedInput.Destination.ToAddresses[0] != "it-admin@example.com" {
		t.Errorf("unexpected destination: %v", capturedInput.Destination.ToAddresses)
	}

	if aws.ToString(capturedInput.Content.Simple.Subject.Data) != "Warranty Expired: 2 assets" {
		t.Errorf("subject = %q", aws.ToString(capturedInput.Content.Simple.Subject.Data))
	}

	if aws.ToString(capturedInput.Content.Simple.Body.Html.Data) != "<h1>Warranty</h1>" {
		t.Errorf("html body = %q", aws.ToString(capturedInput.Content.Simple.Body.Html.Data))
	}

	if aws.ToString(capturedInput.Content.Simple.Body.Text.Data) != "Warranty: 2 assets expired" {
		t.Errorf("text body = %q", aws.ToString(capturedInput.Content.Simple.Body.Text.Data))
	}

	if aws.ToString(capturedInput.ConfigurationSetName) != "assettrack-tracking" {
		t.Errorf("config set = %q, want assettrack-tracking", aws.ToString(capturedInput.ConfigurationSetName))
	}

	if len(capturedInput.EmailTags) != 1 {
		t.Fatalf("expected 1 email tag, got %d", len(capturedInput.EmailTags))
	}
	if aws.ToString(capturedInput.EmailTags[0].Value) != "warranty-expired-2026-03-15" {
		t.Errorf("tag value = %q", aws.ToString(capturedInput.EmailTags[0].Value))
	}
}

func TestSESSend_SuccessNoFromName(t *testing.T) {
	var capturedInput *sesv2.SendEmailInput

	mock := &mockSESAPI{
		sendEmailFunc: func(ctx context.Context, params *sesv2.SendEmailInput, optFns ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error) {
			capturedInput = params
			return &sesv2.SendEmailOutput{MessageId: aws.String("ses-msg-noname")}, nil
		},
	}

	client := NewSESClientWithAPI(mock, SESClientConfig{})

	input := types.SendInput{
		To:       []string{"it-admin@example.com"},
		From:     types.SenderIdentity{Address: "alerts@assettrack.example.com"},
		Subject:  "Warranty Warning",
		BodyText: "text only",
	}

	_, err := client.Send(context.Background(), input)
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}

	// Bare address, no display name brackets.
	if aws.ToString(capturedInput.FromEmailAddress) != "alerts@assettrack.example.com" {
		t.Errorf("from = %q", aws.ToString(capturedInput.FromEmailAddress))
	}

	// No HTML body was provided.
	if capturedInput.Content.Simple.Body.Html != nil {
		t.Error("expected nil HTML body")
	}

	// No config set, no tags.
	if capturedInput.ConfigurationSetName != nil {
		t.Error("expected nil configuration set")
	}
	if len(capturedInput.EmailTags) != 0 {
		t.Errorf("expected no email tags, got %d", len(capturedInput.EmailTags))
	}
}

func TestSESSend_ProviderError(t *testing.T) {
	mock := &mockSESAPI{
		sendEmailFunc: func(ctx context.Context, params *sesv2.SendEmailInput, optFns ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error) {
			return nil, errors.New("throttled")
		},
	}

	client := NewSESClientWithAPI(mock, SESClientConfig{})

	_, err := client.Send(context.Background(), types.SendInput{
		To:      []string{"it-admin@example.com"},
		From:    types.SenderIdentity{Address: "alerts@assettrack.example.com"},
		Subject: "x",
	})
	if err == nil {
		t.Fatal("expected an error")
	}

	var appErr *types.AppError
	if !errors.As(err, &appErr) {
		t.Fatalf("expected AppError, got %T", err)
	}
	if appErr.Code != types.ErrCodeUpstreamEmailProvider {
		t.Errorf("code = %s, want %s", appErr.Code, types.ErrCodeUpstreamEmailProvider)
	}
}

func TestSESSend_NilMessageID(t *testing.T) {
	mock := &mockSESAPI{
		sendEmailFunc: func(ctx context.Context, params *sesv2.SendEmailInput, optFns ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error) {
			return &sesv2.SendEmailOutput{}, nil
		},
	}

	client := NewSESClientWithAPI(mock, SESClientConfig{})

	msgID, err := client.Send(context.Background(), types.SendInput{
		To:      []string{"it-admin@example.com"},
		From:    types.SenderIdentity{Address: "alerts@assettrack.example.com"},
		Subject: "x",
	})
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	if msgID != "" {
		t.Errorf("expected empty message ID, got %q", msgID)
	}
}

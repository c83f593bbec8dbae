package external

import (
	"context"
	"errors"
	"testing"

	"assettrack/internal/types"
)

// flakyProvider fails a configurable number of times before succeeding.
type flakyProvider struct {
	failures int
	calls    int
}

func (p *flakyProvider) Send(ctx context.Context, input types.SendInput) (string, error) {
	p.calls++
	if p.calls <= p.failures {
		return "", errors.New("ses unavailable")
	}
	return "msg-ok", nil
}

func TestBreakerEmailProvider_PassesThroughSuccess(t *testing.T) {
	inner := &flakyProvider{}
	provider := NewBreakerEmailProvider(inner, nil)

	msgID, err := provider.Send(context.Background(), types.SendInput{Subject: "x"})
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	if msgID != "msg-ok" {
		t.Errorf("msgID = %q, want msg-ok", msgID)
	}
}

func TestBreakerEmailProvider_OpensAfterConsecutiveFailures(t *testing.T) {
	inner := &flakyProvider{failures: 100}
	provider := NewBreakerEmailProvider(inner, nil)

	// Six consecutive failures trip the breaker.
	for i := 0; i < 6; i++ {
		if _, err := provider.Send(context.Background(), types.SendInput{}); err == nil {
			t.Fatalf("call %d: expected an error", i)
		}
	}
	callsBefore := inner.calls

	// Breaker is open: the inner provider is no longer reached.
	_, err := provider.Send(context.Background(), types.SendInput{})
	if err == nil {
		t.Fatal("expected an error while breaker is open")
	}
	if inner.calls != callsBefore {
		t.Errorf("inner provider was called while breaker open (calls=%d)", inner.calls)
	}

	var appErr *types.AppError
	if !errors.As(err, &appErr) {
		t.Fatalf("expected AppError, got %T", err)
	}
	if appErr.Code != types.ErrCodeUpstreamEmailProvider {
		t.Errorf("code = %s, want %s", appErr.Code, types.ErrCodeUpstreamEmailProvider)
	}
}

func TestBreakerEmailProvider_StaysClosedUnderThreshold(t *testing.T) {
	inner := &flakyProvider{failures: 3}
	provider := NewBreakerEmailProvider(inner, nil)

	for i := 0; i < 3; i++ {
		if _, err := provider.Send(context.Background(), types.SendInput{}); err == nil {
			t.Fatalf("call %d: expected an error", i)
		}
	}

	// Fourth call succeeds: breaker never opened and the success resets it.
	msgID, err := provider.Send(context.Background(), types.SendInput{})
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	if msgID != "msg-ok" {
		t.Errorf("msgID = %q, want msg-ok", msgID)
	}
}

package extractor

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

func TestNewRateLimitedRecognizer_Disabled(t *testing.T) {
	inner := &countingRecognizer{}
	if rec := NewRateLimitedRecognizer(inner, 0, 5); rec != Recognizer(inner) {
		t.Error("expected the inner recognizer when the rate is 0")
	}
}

func TestRateLimitedRecognizer_Throttles(t *testing.T) {
	inner := &countingRecognizer{}
	rec := NewRateLimitedRecognizer(inner, 1, 1)

	if _, err := rec.Recognize(context.Background(), []byte("first")); err != nil {
		t.Fatalf("first call: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if _, err := rec.Recognize(ctx, []byte("second")); !errors.Is(err, ErrRateLimited) {
		t.Errorf("expected ErrRateLimited, got %v", err)
	}

	if calls := atomic.LoadInt32(&inner.calls); calls != 1 {
		t.Errorf("expected 1 underlying call, got %d", calls)
	}
}

func TestRateLimitedRecognizer_CancelledContext(t *testing.T) {
	inner := &countingRecognizer{}
	rec := NewRateLimitedRecognizer(inner, 1, 1)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := rec.Recognize(ctx, []byte("x")); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

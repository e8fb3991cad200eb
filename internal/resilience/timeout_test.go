package resilience

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestWithTimeout_Success(t *testing.T) {
	got, err := WithTimeout(context.Background(), "op", time.Second, func(context.Context) (int, error) {
		return 42, nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != 42 {
		t.Errorf("expected 42, got %d", got)
	}
}

func TestWithTimeout_DeadlineBecomesTimeoutError(t *testing.T) {
	_, err := WithTimeout(context.Background(), "scorer: generate", 10*time.Millisecond, func(ctx context.Context) (string, error) {
		<-ctx.Done()
		return "", ctx.Err()
	})
	if !IsTimeout(err) {
		t.Fatalf("expected TimeoutError, got %v", err)
	}
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Error("TimeoutError should unwrap to the underlying deadline error")
	}
	if err.Error() != "scorer: generate: timed out after 10ms" {
		t.Errorf("unexpected message %q", err.Error())
	}
}

func TestWithTimeout_ParentCancelIsNotTimeout(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := WithTimeout(ctx, "op", time.Second, func(ctx context.Context) (int, error) {
		return 0, ctx.Err()
	})
	if err == nil {
		t.Fatal("expected an error")
	}
	if IsTimeout(err) {
		t.Error("parent cancellation should not be reported as a timeout")
	}
}

func TestWithTimeout_PlainErrorPassesThrough(t *testing.T) {
	want := errors.New("boom")
	_, err := WithTimeout(context.Background(), "op", time.Second, func(context.Context) (int, error) {
		return 0, want
	})
	if !errors.Is(err, want) || IsTimeout(err) {
		t.Errorf("expected plain error, got %v", err)
	}
}

func TestWithTimeout_NonPositiveDurationKeepsContext(t *testing.T) {
	_, err := WithTimeout(context.Background(), "op", 0, func(ctx context.Context) (int, error) {
		if _, ok := ctx.Deadline(); ok {
			t.Error("expected no deadline")
		}
		return 0, nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

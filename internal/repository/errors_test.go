package repository

import (
	"errors"
	"fmt"
	"testing"
)

func TestErrorPreservesCause(t *testing.T) {
	cause := errors.New("connection refused")
	err := NewError(KindConnectivity, "cannot reach the server", cause)

	if !errors.Is(err, cause) {
		t.Fatalf("cause not preserved through Unwrap")
	}
	if UserMessage(err) != "cannot reach the server" {
		t.Fatalf("unexpected user message: %q", UserMessage(err))
	}
	if KindOf(err) != KindConnectivity {
		t.Fatalf("unexpected kind: %q", KindOf(err))
	}

	// Wrapping elsewhere must not lose the classification.
	wrapped := fmt.Errorf("refresh: %w", err)
	if KindOf(wrapped) != KindConnectivity {
		t.Fatalf("kind lost through wrapping")
	}
}

func TestNotFound(t *testing.T) {
	err := NotFound("42")
	if !IsNotFound(err) {
		t.Fatalf("expected not-found classification")
	}
	if IsNotFound(errors.New("plain")) {
		t.Fatalf("plain error misclassified as not-found")
	}
}

func TestServerErrorDefaultMessage(t *testing.T) {
	err := ServerError(503, "", nil)
	if err.UserMessage != "server error: 503" || err.Status != 503 {
		t.Fatalf("unexpected: %+v", err)
	}
	custom := ServerError(400, "amount is required", nil)
	if custom.UserMessage != "amount is required" {
		t.Fatalf("unexpected: %+v", custom)
	}
}

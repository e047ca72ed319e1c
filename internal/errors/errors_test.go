package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
	"testing"
)

func TestHubErrorFormat(t *testing.T) {
	err := RemoteFailed(fmt.Errorf("boom"))
	got := err.Error()
	if !strings.Contains(got, "remote") || !strings.Contains(got, "boom") {
		t.Errorf("unexpected error string: %s", got)
	}
}

func TestIsMatchesCategoryAndCode(t *testing.T) {
	err := fmt.Errorf("wrapped: %w", RemoteNotFound("a.txt"))

	if !stderrors.Is(err, RemoteNotFound("other.txt")) {
		t.Error("expected Is to match on category+code regardless of message")
	}
	if stderrors.Is(err, RemoteConflict("a.txt")) {
		t.Error("expected Is not to match a different code")
	}
}

func TestHasCode(t *testing.T) {
	err := fmt.Errorf("ctx: %w", PatchMismatch("a.txt"))
	if !HasCode(err, CodePatchMismatch) {
		t.Error("expected HasCode to unwrap and match")
	}
	if HasCode(err, CodeRemoteConflict) {
		t.Error("expected HasCode mismatch for other code")
	}
	if HasCode(nil, CodePatchMismatch) {
		t.Error("expected HasCode to be false for nil")
	}
}

func TestIsRetryable(t *testing.T) {
	if IsRetryable(RemoteConflict("a.txt")) {
		t.Error("conflicts must not be retryable")
	}
	if !IsRetryable(RemoteFailed(fmt.Errorf("transport"))) {
		t.Error("generic remote failures are retryable")
	}
	if IsRetryable(stderrors.New("plain")) {
		t.Error("plain errors are not retryable")
	}
}

func TestGetUserMessage(t *testing.T) {
	err := PatchMismatch("src/main.go")
	msg := GetUserMessage(err)
	if !strings.Contains(msg, "src/main.go") || !strings.Contains(msg, "must match exactly") {
		t.Errorf("unexpected user message: %s", msg)
	}

	if GetUserMessage(nil) != "" {
		t.Error("nil error should produce empty message")
	}
	if GetUserMessage(stderrors.New("x")) != "x" {
		t.Error("plain errors pass through")
	}
}

func TestGetCategory(t *testing.T) {
	if GetCategory(EngineFailed(nil)) != CategoryEngine {
		t.Error("expected engine category")
	}
	if GetCategory(nil) != "" {
		t.Error("expected empty category for nil")
	}
}

package errors

import (
	stderrors "errors"
	"fmt"
	"testing"
)

func TestNewCarriesCodeAndMessage(t *testing.T) {
	err := New(ErrCodeInvalidInput, "bad size: %dx%d", 0, 600)

	if !Is(err, ErrCodeInvalidInput) {
		t.Error("expected Is to match the code")
	}
	if got := UserMessage(err); got != "bad size: 0x600" {
		t.Errorf("UserMessage = %q", got)
	}
	if got := UserMessage(Wrap(ErrCodeStore, stderrors.New("down"), "persist")); got != "persist: down" {
		t.Errorf("UserMessage with cause = %q", got)
	}
	if got := err.Error(); got != "INVALID_INPUT: bad size: 0x600" {
		t.Errorf("Error = %q", got)
	}
}

func TestWrapPreservesCause(t *testing.T) {
	cause := stderrors.New("connection refused")
	err := Wrap(ErrCodeStore, cause, "persist session abc")

	if !stderrors.Is(err, cause) {
		t.Error("expected wrapped cause to survive errors.Is")
	}
	if !Is(err, ErrCodeStore) {
		t.Error("expected code to match")
	}
}

func TestWrapSurvivesFmtChain(t *testing.T) {
	inner := New(ErrCodeSessionNotFound, "session xyz")
	outer := fmt.Errorf("update feedback: %w", inner)

	if !Is(outer, ErrCodeSessionNotFound) {
		t.Error("expected code match through fmt.Errorf chain")
	}
	if got := GetCode(outer); got != ErrCodeSessionNotFound {
		t.Errorf("GetCode = %q", got)
	}
}

func TestGetCodeOnPlainError(t *testing.T) {
	if got := GetCode(stderrors.New("plain")); got != "" {
		t.Errorf("GetCode on plain error = %q, want empty", got)
	}
}

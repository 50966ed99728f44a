package apperr

import (
	"errors"
	"testing"
)

func TestAppError_Error(t *testing.T) {
	tests := []struct {
		name string
		err  *AppError
		want string
	}{
		{"with wrapped error", New(CodeStoreError, "query failed", errors.New("conn reset")), "STORE_ERROR: query failed: conn reset"},
		{"without wrapped error", New(CodeNotFound, "asset missing", nil), "NOT_FOUND: asset missing"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestAppError_Unwrap(t *testing.T) {
	base := errors.New("boom")
	err := New(CodeStoreError, "wrapped", base)
	if !errors.Is(err, base) {
		t.Fatalf("expected errors.Is to unwrap to base error")
	}
}

func TestIsNotFound(t *testing.T) {
	if !IsNotFound(NotFound("equipment", "EQ-001")) {
		t.Errorf("expected NotFound helper to be classified as not-found")
	}
	if IsNotFound(InvalidArgument("bad input")) {
		t.Errorf("expected InvalidArgument not to be classified as not-found")
	}
	if IsNotFound(nil) {
		t.Errorf("expected nil to not be classified as not-found")
	}
}

func TestCode(t *testing.T) {
	code, ok := Code(UnsupportedRecoveryPeriod(10))
	if !ok || code != CodeUnsupportedRecoveryPeriod {
		t.Errorf("Code() = (%v, %v), want (%v, true)", code, ok, CodeUnsupportedRecoveryPeriod)
	}

	if _, ok := Code(errors.New("plain")); ok {
		t.Errorf("expected plain error to have no AppError code")
	}
}

func TestWithDetails(t *testing.T) {
	err := New(CodeInvalidArgument, "bad", nil).WithDetails("field", "horizon")
	if err.Details["field"] != "horizon" {
		t.Errorf("expected details to carry field=horizon, got %v", err.Details)
	}
}

package errors

import (
	stdErrors "errors"
	"net/http"
	"testing"
)

func TestErrorIncludesInternal(t *testing.T) {
	internal := stdErrors.New("boom")
	err := Wrap(internal, "failed")

	if err.Error() != "failed: boom" {
		t.Fatalf("unexpected error string: %s", err.Error())
	}
}

func TestWithInternalCopies(t *testing.T) {
	base := New("TEST", "test", 400)
	with := base.WithInternal(stdErrors.New("oops"))

	if with == base {
		t.Fatal("expected WithInternal to return a copy")
	}

	if base.Internal != nil {
		t.Fatal("expected original error to remain unchanged")
	}

	if with.Internal == nil {
		t.Fatal("expected internal error to be set")
	}
}

func TestWithMessageCopies(t *testing.T) {
	with := ErrInvalidState.WithMessage("mentorship is not pending")

	if with == ErrInvalidState {
		t.Fatal("expected WithMessage to return a copy")
	}
	if with.Code != ErrInvalidState.Code {
		t.Fatalf("expected code to be preserved, got %s", with.Code)
	}
	if with.Message != "mentorship is not pending" {
		t.Fatalf("unexpected message: %s", with.Message)
	}
}

func TestFromError(t *testing.T) {
	appErr := ErrNotFound
	if out := FromError(appErr); out != appErr {
		t.Fatal("expected FromError to return the same AppError instance")
	}

	raw := stdErrors.New("raw")
	out := FromError(raw)
	if out.Code != ErrInternalServer.Code {
		t.Fatalf("expected internal server code, got %s", out.Code)
	}
	if out.Internal == nil {
		t.Fatal("expected internal error to be attached")
	}
}

func TestTaxonomyStatusCodes(t *testing.T) {
	cases := map[*AppError]int{
		ErrNotFound:     http.StatusNotFound,
		ErrForbidden:    http.StatusForbidden,
		ErrInvalidState: http.StatusConflict,
		ErrConflict:     http.StatusConflict,
		ErrValidation:   http.StatusBadRequest,
	}

	for err, want := range cases {
		if err.StatusCode != want {
			t.Fatalf("%s: expected status %d, got %d", err.Code, want, err.StatusCode)
		}
	}
}

func TestNewValidation(t *testing.T) {
	err := NewValidation("rating must be between 1 and 5")
	if err.Code != ErrValidation.Code {
		t.Fatalf("expected %s, got %s", ErrValidation.Code, err.Code)
	}
	if err.Message != "rating must be between 1 and 5" {
		t.Fatalf("unexpected message: %s", err.Message)
	}
	if err.StatusCode != ErrValidation.StatusCode {
		t.Fatalf("unexpected status: %d", err.StatusCode)
	}
}

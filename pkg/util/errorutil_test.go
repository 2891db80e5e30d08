package util

import (
	"errors"
	"net/http"
	"testing"

	"github.com/jackc/pgx/v5"
)

func TestValidationErrorStatus(t *testing.T) {
	err := NewValidationError("user_message too short", map[string]any{"min_length": 10})

	var de *DomainError
	if !errors.As(err, &de) {
		t.Fatalf("expected DomainError, got %T", err)
	}
	if de.Code != "VALIDATION_FAILED" {
		t.Fatalf("unexpected code %s", de.Code)
	}
	if de.HTTPStatus != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", de.HTTPStatus)
	}
	if de.Details["min_length"] != 10 {
		t.Fatalf("details must survive: %+v", de.Details)
	}
}

func TestToDomainErrorMapsNoRows(t *testing.T) {
	de := ToDomainError(pgx.ErrNoRows)
	if de.Code != "NOT_FOUND" || de.HTTPStatus != http.StatusNotFound {
		t.Fatalf("expected NOT_FOUND/404, got %s/%d", de.Code, de.HTTPStatus)
	}

	wrapped := ToDomainError(errors.Join(errors.New("query failed"), pgx.ErrNoRows))
	if wrapped.Code != "NOT_FOUND" {
		t.Fatalf("wrapped ErrNoRows should still map to NOT_FOUND, got %s", wrapped.Code)
	}
}

func TestToDomainErrorPassesThrough(t *testing.T) {
	original := NewNotFound("ticket", nil)
	de := ToDomainError(original)
	if de.Message != "ticket not found" {
		t.Fatalf("expected passthrough, got %+v", de)
	}
}

func TestToDomainErrorFallsBackToInternal(t *testing.T) {
	de := ToDomainError(errors.New("disk on fire"))
	if de.Code != "INTERNAL_ERROR" || de.HTTPStatus != http.StatusInternalServerError {
		t.Fatalf("expected INTERNAL_ERROR/500, got %s/%d", de.Code, de.HTTPStatus)
	}
	if !errors.Is(de, de.Err) || de.Err == nil {
		t.Fatal("original error must be preserved for unwrapping")
	}
}

func TestClassificationFailedUnwraps(t *testing.T) {
	cause := errors.New("connection refused")
	err := NewClassificationFailed(cause)
	if !errors.Is(err, cause) {
		t.Fatal("expected cause to be reachable via Unwrap")
	}

	var de *DomainError
	if !errors.As(err, &de) {
		t.Fatalf("expected DomainError, got %T", err)
	}
	if de.Code != "CLASSIFICATION_FAILED" || de.HTTPStatus != http.StatusInternalServerError {
		t.Fatalf("unexpected mapping: %s/%d", de.Code, de.HTTPStatus)
	}
}

func TestNilMapsToNil(t *testing.T) {
	if ToDomainError(nil) != nil {
		t.Fatal("nil error must map to nil")
	}
}

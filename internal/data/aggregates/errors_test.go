package aggregates

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

func TestMapError_Validation(t *testing.T) {
	err := MapError("op", ValidationError("bad input"))
	if !IsCode(err, CodeValidation) {
		t.Fatalf("expected validation code, got %q (%v)", CodeOf(err), err)
	}
}

func TestMapError_NotFound(t *testing.T) {
	err := MapError("op", fmt.Errorf("load round: %w", gorm.ErrRecordNotFound))
	if !IsCode(err, CodeNotFound) {
		t.Fatalf("expected not_found code, got %q (%v)", CodeOf(err), err)
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("expected cause to be preserved")
	}
}

func TestMapError_PgUniqueViolation(t *testing.T) {
	err := MapError("round.start", &pgconn.PgError{Code: "23505", ConstraintName: "ux_golf_round_active_user"})
	if !IsCode(err, CodeConflict) {
		t.Fatalf("expected conflict code, got %q (%v)", CodeOf(err), err)
	}
}

func TestMapError_PgSerializationIsRetryable(t *testing.T) {
	err := MapError("op", &pgconn.PgError{Code: "40001"})
	if !IsCode(err, CodeRetryable) {
		t.Fatalf("expected retryable code, got %q (%v)", CodeOf(err), err)
	}
}

func TestMapError_SQLiteUniqueMessage(t *testing.T) {
	err := MapError("op", errors.New("UNIQUE constraint failed: golf_round.user_id"))
	if !IsCode(err, CodeConflict) {
		t.Fatalf("expected conflict code, got %q (%v)", CodeOf(err), err)
	}
}

func TestMapError_PassthroughAggregateError(t *testing.T) {
	in := NewError(CodeRetryable, "op", "retry", errors.New("boom"))
	out := MapError("other", in)
	if out != in {
		t.Fatalf("expected passthrough aggregate error")
	}
}

func TestMapError_UnknownIsInternal(t *testing.T) {
	err := MapError("op", errors.New("boom"))
	if !IsCode(err, CodeInternal) {
		t.Fatalf("expected internal code, got %q", CodeOf(err))
	}
}

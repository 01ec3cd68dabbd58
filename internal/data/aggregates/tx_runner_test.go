package aggregates_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/yungbote/caddie-backend/internal/data/aggregates"
	"github.com/yungbote/caddie-backend/internal/data/repos/testutil"
	"github.com/yungbote/caddie-backend/internal/platform/dbctx"
)

func TestGormTxRunnerRetriesSerializationFailure(t *testing.T) {
	runner := aggregates.NewGormTxRunner(testutil.DB(t))
	calls := 0
	err := runner.InTx(context.Background(), func(dbc dbctx.Context) error {
		calls++
		if calls < 3 {
			return fmt.Errorf("update round: %w", &pgconn.PgError{Code: "40001"})
		}
		return nil
	})
	if err != nil {
		t.Fatalf("InTx: %v", err)
	}
	if calls != 3 {
		t.Fatalf("attempts: want=3 got=%d", calls)
	}
}

func TestGormTxRunnerDoesNotRetryOtherErrors(t *testing.T) {
	runner := aggregates.NewGormTxRunner(testutil.DB(t))
	want := errors.New("validation failed")
	calls := 0
	err := runner.InTx(context.Background(), func(dbc dbctx.Context) error {
		calls++
		return want
	})
	if !errors.Is(err, want) {
		t.Fatalf("InTx: want=%v got=%v", want, err)
	}
	if calls != 1 {
		t.Fatalf("attempts: want=1 got=%d", calls)
	}
}

func TestGormTxRunnerGivesUpAfterMaxAttempts(t *testing.T) {
	runner := aggregates.NewGormTxRunner(testutil.DB(t))
	calls := 0
	err := runner.InTx(context.Background(), func(dbc dbctx.Context) error {
		calls++
		return &pgconn.PgError{Code: "40P01"}
	})
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		t.Fatalf("expected deadlock error, got=%v", err)
	}
	if calls != 3 {
		t.Fatalf("attempts: want=3 got=%d", calls)
	}
}

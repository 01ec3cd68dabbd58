package testutil

import (
	"context"
	"sync"

	"github.com/yungbote/caddie-backend/internal/data/aggregates"
	"github.com/yungbote/caddie-backend/internal/platform/dbctx"
)

// InjectedTxRunner wraps a real runner and injects failures. FailCommit makes
// the transaction roll back after the body succeeded.
type InjectedTxRunner struct {
	Inner aggregates.TxRunner

	mu          sync.Mutex
	FailBegin   error
	FailCommit  error
	BeginCalls  int
	CommitCalls int
	Rollbacks   int
}

var _ aggregates.TxRunner = (*InjectedTxRunner)(nil)

func (r *InjectedTxRunner) InTx(ctx context.Context, fn func(dbc dbctx.Context) error) error {
	r.mu.Lock()
	r.BeginCalls++
	failBegin, failCommit := r.FailBegin, r.FailCommit
	r.mu.Unlock()

	if failBegin != nil {
		return failBegin
	}
	run := func(dbc dbctx.Context) error {
		if fn != nil {
			if err := fn(dbc); err != nil {
				return err
			}
		}
		return failCommit
	}

	var err error
	if r.Inner != nil {
		err = r.Inner.InTx(ctx, run)
	} else {
		err = run(dbctx.Context{Ctx: ctx})
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if err != nil {
		r.Rollbacks++
		return err
	}
	r.CommitCalls++
	return nil
}

package database

import (
	"context"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// stubQuerier is a Querier that records nothing; only identity matters in
// these tests.
type stubQuerier struct{}

func (stubQuerier) Exec(context.Context, string, ...any) (pgconn.CommandTag, error) {
	return pgconn.CommandTag{}, nil
}

func (stubQuerier) Query(context.Context, string, ...any) (pgx.Rows, error) {
	return nil, nil
}

func (stubQuerier) QueryRow(context.Context, string, ...any) pgx.Row {
	return nil
}

func TestQuerierFor_FallbackWithoutTransaction(t *testing.T) {
	fallback := stubQuerier{}

	got := QuerierFor(context.Background(), fallback)
	if got != fallback {
		t.Error("expected fallback querier when no transaction is in context")
	}
}

func TestTxFromContext_Empty(t *testing.T) {
	if _, ok := TxFromContext(context.Background()); ok {
		t.Error("expected no transaction in a fresh context")
	}
}

package pgxtest

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
)

func TestRowScanNilScanner(t *testing.T) {
	if err := (Row{}).Scan(); !errors.Is(err, pgx.ErrNoRows) {
		t.Fatalf("expected pgx.ErrNoRows, got %v", err)
	}
}

func TestValuesRowAssigns(t *testing.T) {
	now := time.Now()
	var (
		name    string
		count   int64
		when    *time.Time
		payload []byte
	)
	if err := ValuesRow("a", 3, now, "{}").Scan(&name, &count, &when, &payload); err != nil {
		t.Fatalf("Scan returned error: %v", err)
	}
	if name != "a" || count != 3 || when == nil || !when.Equal(now) || string(payload) != "{}" {
		t.Fatalf("unexpected values %q %d %v %q", name, count, when, payload)
	}
}

func TestRowsIterate(t *testing.T) {
	rows := NewRows([]any{"x"}, []any{"y"})
	var got []string
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			t.Fatalf("Scan returned error: %v", err)
		}
		got = append(got, s)
	}
	rows.Close()
	if len(got) != 2 || got[1] != "y" {
		t.Fatalf("unexpected rows %v", got)
	}
}

func TestExecutorUnknownQuery(t *testing.T) {
	e := NewExecutor()
	var s string
	if err := e.QueryRow(context.Background(), "select 1").Scan(&s); err == nil {
		t.Fatal("expected error for unscripted query")
	}
	if _, err := e.Query(context.Background(), "select 1"); err == nil {
		t.Fatal("expected error for unscripted query")
	}
}

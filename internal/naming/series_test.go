package naming

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"donorcrm/internal/domain"
	"donorcrm/internal/sqlinline"
)

func TestExpand(t *testing.T) {
	now := time.Date(2026, 3, 7, 0, 0, 0, 0, time.UTC)
	tests := []struct {
		series string
		vars   map[string]string
		prefix string
		digits int
	}{
		{series: "DONOR-.YYYY.-", prefix: "DONOR-2026-", digits: 5},
		{series: "DON-.YY.-.MM.-.####", prefix: "DON-26-03-", digits: 4},
		{series: "{branch_abbreviation}-DONOR-.YYYY.-", vars: map[string]string{"branch_abbreviation": "LHR"}, prefix: "LHR-DONOR-2026-", digits: 5},
		{series: "CERT-.DD.-.######", prefix: "CERT-07-", digits: 6},
	}
	for _, tc := range tests {
		prefix, digits, err := Expand(tc.series, now, tc.vars)
		if err != nil {
			t.Fatalf("Expand(%q) error: %v", tc.series, err)
		}
		if prefix != tc.prefix || digits != tc.digits {
			t.Fatalf("Expand(%q) = %q/%d, want %q/%d", tc.series, prefix, digits, tc.prefix, tc.digits)
		}
	}
}

func TestExpandMissingVariable(t *testing.T) {
	_, _, err := Expand("{branch_abbreviation}-.YYYY.-", time.Now(), nil)
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestFormat(t *testing.T) {
	if got := Format("DONOR-2026-", 5, 1); got != "DONOR-2026-00001" {
		t.Fatalf("Format() = %q", got)
	}
}

type counterSQL struct {
	prefix string
	value  int64
}

func (c *counterSQL) Exec(context.Context, string, ...any) (pgconn.CommandTag, error) {
	return pgconn.CommandTag{}, nil
}

func (c *counterSQL) QueryRow(_ context.Context, query string, args ...any) pgx.Row {
	if query != sqlinline.QNextNamingSeries {
		return errRow{err: errors.New("unexpected query")}
	}
	c.prefix, _ = args[0].(string)
	c.value++
	return intRow{v: c.value}
}

func (c *counterSQL) Query(context.Context, string, ...any) (pgx.Rows, error) {
	return nil, errors.New("not implemented")
}

type intRow struct{ v int64 }

func (r intRow) Scan(dest ...any) error {
	*(dest[0].(*int64)) = r.v
	return nil
}

type errRow struct{ err error }

func (r errRow) Scan(...any) error { return r.err }

func TestGeneratorNext(t *testing.T) {
	sql := &counterSQL{}
	gen := NewGenerator(sql)
	gen.now = func() time.Time { return time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC) }

	first, err := gen.Next(context.Background(), "DONOR-.YYYY.-", nil)
	if err != nil {
		t.Fatalf("Next error: %v", err)
	}
	second, _ := gen.Next(context.Background(), "DONOR-.YYYY.-", nil)
	if first != "DONOR-2026-00001" || second != "DONOR-2026-00002" {
		t.Fatalf("unexpected names %q %q", first, second)
	}
	if sql.prefix != "DONOR-2026-" {
		t.Fatalf("counter prefix = %q", sql.prefix)
	}
}

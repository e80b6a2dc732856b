// Package pgxtest provides in-memory pgx rows and a scripted executor for
// tests that exercise SQL-backed code without a database.
package pgxtest

import (
	"context"
	"fmt"
	"reflect"
	"sync"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"donorcrm/internal/infra"
)

// Row is a pgx.Row backed by a scan function. A nil function reports
// pgx.ErrNoRows.
type Row struct {
	scan func(dest ...any) error
}

func NewRow(scanner func(dest ...any) error) Row {
	return Row{scan: scanner}
}

func (r Row) Scan(dest ...any) error {
	if r.scan == nil {
		return pgx.ErrNoRows
	}
	return r.scan(dest...)
}

// ValuesRow returns a row that assigns vals to the scan destinations.
func ValuesRow(vals ...any) Row {
	return NewRow(func(dest ...any) error { return assignAll(dest, vals) })
}

// ErrRow returns a row whose Scan fails with err.
func ErrRow(err error) Row {
	return NewRow(func(...any) error { return err })
}

// Returns and Fails build QueryRow handlers for Executor.Rows.
func Returns(vals ...any) func([]any) pgx.Row {
	return func([]any) pgx.Row { return ValuesRow(vals...) }
}

func Fails(err error) func([]any) pgx.Row {
	return func([]any) pgx.Row { return ErrRow(err) }
}

type RowsBase struct{}

func (RowsBase) CommandTag() pgconn.CommandTag { return pgconn.CommandTag{} }

func (RowsBase) Conn() *pgx.Conn { return nil }

func (RowsBase) FieldDescriptions() []pgconn.FieldDescription { return nil }

func (RowsBase) Values() ([]any, error) {
	return nil, fmt.Errorf("values not supported in test rows")
}

func (RowsBase) RawValues() [][]byte { return nil }

// Rows is a slice-backed pgx.Rows.
type Rows struct {
	RowsBase
	data   [][]any
	pos    int
	err    error
	closed bool
}

func NewRows(data ...[]any) *Rows {
	return &Rows{data: data}
}

func (r *Rows) Next() bool {
	if r.closed || r.err != nil || r.pos >= len(r.data) {
		return false
	}
	r.pos++
	return true
}

func (r *Rows) Scan(dest ...any) error {
	if r.pos == 0 || r.pos > len(r.data) {
		return fmt.Errorf("scan called without a current row")
	}
	return assignAll(dest, r.data[r.pos-1])
}

func (r *Rows) Err() error { return r.err }

func (r *Rows) Close() { r.closed = true }

// Exec records one Exec call.
type Exec struct {
	Query string
	Args  []any
}

// Executor implements infra.TxRunner from per-query handlers. Unknown
// queries fail so tests notice unexpected SQL.
type Executor struct {
	mu      sync.Mutex
	Rows    map[string]func(args []any) pgx.Row
	Queries map[string]func(args []any) (pgx.Rows, error)
	Tags    map[string]pgconn.CommandTag
	ExecErr map[string]error
	Execs   []Exec
	Txs     int
}

func NewExecutor() *Executor {
	return &Executor{
		Rows:    map[string]func([]any) pgx.Row{},
		Queries: map[string]func([]any) (pgx.Rows, error){},
		Tags:    map[string]pgconn.CommandTag{},
		ExecErr: map[string]error{},
	}
}

func (e *Executor) Exec(_ context.Context, query string, args ...any) (pgconn.CommandTag, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.Execs = append(e.Execs, Exec{Query: query, Args: args})
	if err := e.ExecErr[query]; err != nil {
		return pgconn.CommandTag{}, err
	}
	if tag, ok := e.Tags[query]; ok {
		return tag, nil
	}
	return pgconn.NewCommandTag("UPDATE 1"), nil
}

func (e *Executor) QueryRow(_ context.Context, query string, args ...any) pgx.Row {
	e.mu.Lock()
	fn, ok := e.Rows[query]
	e.mu.Unlock()
	if !ok {
		return ErrRow(fmt.Errorf("unexpected query row: %.60s", query))
	}
	return fn(args)
}

func (e *Executor) Query(_ context.Context, query string, args ...any) (pgx.Rows, error) {
	e.mu.Lock()
	fn, ok := e.Queries[query]
	e.mu.Unlock()
	if !ok {
		return nil, fmt.Errorf("unexpected query: %.60s", query)
	}
	return fn(args)
}

func (e *Executor) WithTx(_ context.Context, fn func(infra.SQLExecutor) error) error {
	e.mu.Lock()
	e.Txs++
	e.mu.Unlock()
	return fn(e)
}

// ExecsOf returns the recorded Exec calls of query.
func (e *Executor) ExecsOf(query string) []Exec {
	e.mu.Lock()
	defer e.mu.Unlock()
	var out []Exec
	for _, c := range e.Execs {
		if c.Query == query {
			out = append(out, c)
		}
	}
	return out
}

func assignAll(dest, vals []any) error {
	if len(dest) != len(vals) {
		return fmt.Errorf("scan: %d destinations for %d values", len(dest), len(vals))
	}
	for i := range dest {
		if err := assign(dest[i], vals[i]); err != nil {
			return fmt.Errorf("scan column %d: %w", i, err)
		}
	}
	return nil
}

// assign copies val into the pointer dest, allocating for pointer fields
// and converting between compatible kinds.
func assign(dest, val any) error {
	dv := reflect.ValueOf(dest)
	if dv.Kind() != reflect.Pointer || dv.IsNil() {
		return fmt.Errorf("destination %T is not a pointer", dest)
	}
	target := dv.Elem()
	if val == nil {
		target.Set(reflect.Zero(target.Type()))
		return nil
	}
	v := reflect.ValueOf(val)
	switch {
	case v.Type().AssignableTo(target.Type()):
		target.Set(v)
	case target.Kind() == reflect.Pointer && v.Type().AssignableTo(target.Type().Elem()):
		p := reflect.New(target.Type().Elem())
		p.Elem().Set(v)
		target.Set(p)
	case v.Type().ConvertibleTo(target.Type()):
		target.Set(v.Convert(target.Type()))
	default:
		return fmt.Errorf("cannot assign %T to %s", val, target.Type())
	}
	return nil
}

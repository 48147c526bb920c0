// Copyright 2025 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package fakedb provides an in-memory database/sql driver, serving
// canned rows to the queries run against it.
package fakedb // import "github.com/go-lpc/mdt/internal/fakedb"

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"io"
	"sync"
)

// Query is a query received by the fake DB.
type Query struct {
	SQL  string
	Args []driver.Value
}

var state struct {
	mu   sync.Mutex
	rows []Rows
	err  error
	log  []Query
}

// Run runs f while all the queries to the fake DB return rows.
func Run(ctx context.Context, rows Rows, f func(ctx context.Context) error) error {
	_, err := RunAll(ctx, []Rows{rows}, f)
	return err
}

// RunAll runs f while the i-th query to the fake DB returns rows[i].
// Queries past the end of rows return no row.
// RunAll returns the queries received while running f.
func RunAll(ctx context.Context, rows []Rows, f func(ctx context.Context) error) ([]Query, error) {
	state.mu.Lock()
	defer state.mu.Unlock()

	state.rows = make([]Rows, len(rows))
	for i, r := range rows {
		state.rows[i] = r.clone()
	}
	state.err = nil
	state.log = nil

	err := f(ctx)
	return state.log, err
}

// Fail runs f while all the queries to the fake DB fail with qerr.
func Fail(ctx context.Context, qerr error, f func(ctx context.Context) error) error {
	state.mu.Lock()
	defer state.mu.Unlock()

	state.rows = nil
	state.err = qerr
	state.log = nil

	return f(ctx)
}

func init() {
	sql.Register("fakedb", &Driver{})
}

type Driver struct{}

func (drv *Driver) Open(name string) (driver.Conn, error) {
	return &Conn{}, nil
}

type Conn struct{}

func (c *Conn) Prepare(query string) (driver.Stmt, error) {
	return &Stmt{sql: query}, nil
}

func (c *Conn) Close() error {
	return nil
}

func (c *Conn) Begin() (driver.Tx, error) {
	return nil, errors.New("fakedb: transactions not supported")
}

type Stmt struct {
	sql string
}

func (stmt *Stmt) Close() error {
	return nil
}

// NumInput returns -1: placeholders are not checked.
func (stmt *Stmt) NumInput() int {
	return -1
}

func (stmt *Stmt) Exec(args []driver.Value) (driver.Result, error) {
	return nil, errors.New("fakedb: exec not supported")
}

// Query records the query and returns the next canned rows.
// Callers hold state.mu through Run, RunAll or Fail.
func (stmt *Stmt) Query(args []driver.Value) (driver.Rows, error) {
	state.log = append(state.log, Query{SQL: stmt.sql, Args: args})
	if state.err != nil {
		return nil, state.err
	}
	if len(state.rows) == 0 {
		return &Rows{}, nil
	}
	rows := state.rows[0]
	state.rows = state.rows[1:]
	return &rows, nil
}

// Rows is a canned result set.
type Rows struct {
	Names  []string
	Values [][]driver.Value
}

func (rows Rows) clone() Rows {
	o := Rows{
		Names:  append([]string(nil), rows.Names...),
		Values: make([][]driver.Value, len(rows.Values)),
	}
	for i, v := range rows.Values {
		o.Values[i] = append([]driver.Value(nil), v...)
	}
	return o
}

func (rows *Rows) Columns() []string {
	return rows.Names
}

func (rows *Rows) Close() error {
	return nil
}

func (rows *Rows) Next(dest []driver.Value) error {
	if len(rows.Values) == 0 {
		return io.EOF
	}
	copy(dest, rows.Values[0])
	rows.Values = rows.Values[1:]
	return nil
}

var (
	_ driver.Driver = (*Driver)(nil)
	_ driver.Conn   = (*Conn)(nil)
	_ driver.Stmt   = (*Stmt)(nil)
	_ driver.Rows   = (*Rows)(nil)
)

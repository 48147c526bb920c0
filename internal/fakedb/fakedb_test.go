// Copyright 2025 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package fakedb

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"reflect"
	"testing"
)

func TestRunAll(t *testing.T) {
	db, err := sql.Open("fakedb", "test")
	if err != nil {
		t.Fatalf("could not open db: %+v", err)
	}
	defer db.Close()

	rows := []Rows{
		{Names: []string{"name"}, Values: [][]driver.Value{{"BIS1"}, {"BIS2"}}},
		{Names: []string{"n"}, Values: [][]driver.Value{{int64(42)}}},
	}

	queries, err := RunAll(context.Background(), rows, func(ctx context.Context) error {
		var names []string
		rs, err := db.QueryContext(ctx, "SELECT name FROM chambers WHERE kind=?", "sMDT")
		if err != nil {
			return err
		}
		for rs.Next() {
			var name string
			err = rs.Scan(&name)
			if err != nil {
				return err
			}
			names = append(names, name)
		}
		rs.Close()
		if want := []string{"BIS1", "BIS2"}; !reflect.DeepEqual(names, want) {
			t.Fatalf("invalid names: got=%q, want=%q", names, want)
		}

		var n int
		err = db.QueryRowContext(ctx, "SELECT n FROM runs").Scan(&n)
		if err != nil {
			return err
		}
		if n != 42 {
			t.Fatalf("invalid n: got=%d, want=42", n)
		}

		err = db.QueryRowContext(ctx, "SELECT n FROM runs").Scan(&n)
		if !errors.Is(err, sql.ErrNoRows) {
			t.Fatalf("invalid error: %+v", err)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("could not run queries: %+v", err)
	}

	want := []Query{
		{SQL: "SELECT name FROM chambers WHERE kind=?", Args: []driver.Value{"sMDT"}},
		{SQL: "SELECT n FROM runs", Args: []driver.Value{}},
		{SQL: "SELECT n FROM runs", Args: []driver.Value{}},
	}
	if len(queries) != len(want) {
		t.Fatalf("invalid number of queries: got=%d, want=%d", len(queries), len(want))
	}
	for i := range want {
		if queries[i].SQL != want[i].SQL || len(queries[i].Args) != len(want[i].Args) {
			t.Fatalf("query[%d]: got=%+v, want=%+v", i, queries[i], want[i])
		}
	}
	if got, want := queries[0].Args[0], driver.Value("sMDT"); got != want {
		t.Fatalf("invalid query arg: got=%v, want=%v", got, want)
	}

	// canned rows are not consumed across runs.
	if got, want := len(rows[0].Values), 2; got != want {
		t.Fatalf("canned rows modified: got=%d, want=%d", got, want)
	}
}

func TestFail(t *testing.T) {
	db, err := sql.Open("fakedb", "test")
	if err != nil {
		t.Fatalf("could not open db: %+v", err)
	}
	defer db.Close()

	qerr := errors.New("fakedb: boom")
	err = Fail(context.Background(), qerr, func(ctx context.Context) error {
		_, err := db.QueryContext(ctx, "SELECT 1")
		return err
	})
	if !errors.Is(err, qerr) {
		t.Fatalf("invalid error: %+v", err)
	}
}

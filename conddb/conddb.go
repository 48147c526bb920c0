// Copyright 2025 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package conddb holds types to describe the condition database of the
// MDT chambers.
package conddb // import "github.com/go-lpc/mdt/conddb"

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/go-lpc/mdt/geom"
	_ "github.com/go-sql-driver/mysql"
)

const (
	host = "localhost"
)

var (
	usr = "username"
	pwd = "s3cr3t"

	drvName = "mysql"
)

// DB exposes convenience methods to easily retrieve the chambers
// description from the MDT database.
type DB struct {
	db   *sql.DB
	name string // name of the MDT database
}

// Open opens a connection to the MDT database dbname.
func Open(dbname string) (*DB, error) {
	db, err := sql.Open(drvName, dsn(dbname))
	if err != nil {
		return nil, fmt.Errorf("conddb: could not open %q db: %w", dbname, err)
	}

	err = ping(db, dbname)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("conddb: could not ping %q db: %w", dbname, err)
	}

	return &DB{db: db, name: dbname}, nil
}

// New wraps an already opened database handle.
func New(db *sql.DB, dbname string) *DB {
	return &DB{db: db, name: dbname}
}

func dsn(db string) string {
	return fmt.Sprintf("%s:%s@tcp(%s)/%s", usr, pwd, host, db)
}

func ping(db *sql.DB, dbname string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err := db.PingContext(ctx)
	if err != nil {
		return fmt.Errorf("conddb: could not ping %q db: %w", dbname, err)
	}

	return nil
}

func (db *DB) Close() error {
	return db.db.Close()
}

func (db *DB) QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error) {
	return db.db.QueryContext(ctx, query, args...)
}

// LastChamber returns the name of the last registered chamber.
func (db *DB) LastChamber(ctx context.Context) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	name := ""
	rows, err := db.db.QueryContext(
		ctx,
		"SELECT name FROM chambers ORDER BY datetime DESC LIMIT 1",
	)
	if err != nil {
		return name, fmt.Errorf("conddb: could not query last chamber: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		err = rows.Scan(&name)
		if err != nil {
			return name, fmt.Errorf("conddb: could not get last chamber value: %w", err)
		}
	}

	if err := rows.Err(); err != nil {
		return name, fmt.Errorf("conddb: could not scan db for last chamber: %w", err)
	}

	if err := ctx.Err(); err != nil {
		return name, fmt.Errorf("conddb: context error while retrieving last chamber: %w", err)
	}

	return name, nil
}

const chamberQuery = "SELECT name, kind, tdcs, multilayers, min_hits, max_hits FROM chambers"

// Chambers returns the description of all the registered chambers.
func (db *DB) Chambers(ctx context.Context) ([]Chamber, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	return db.chambers(ctx, chamberQuery+" ORDER BY datetime")
}

// Chamber returns the description of the named chamber.
func (db *DB) Chamber(ctx context.Context, name string) (Chamber, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	chs, err := db.chambers(ctx, chamberQuery+" WHERE name=?", name)
	if err != nil {
		return Chamber{}, err
	}

	switch len(chs) {
	case 0:
		return Chamber{}, fmt.Errorf("conddb: no chamber %q", name)
	case 1:
		return chs[0], nil
	default:
		return chs[0], fmt.Errorf("conddb: %d chambers named %q", len(chs), name)
	}
}

func (db *DB) chambers(ctx context.Context, query string, args ...interface{}) ([]Chamber, error) {
	var chs []Chamber
	rows, err := db.db.QueryContext(ctx, query, args...)
	if err != nil {
		return chs, fmt.Errorf(
			"conddb: could not run chambers query: %w",
			err,
		)
	}
	defer rows.Close()

	for rows.Next() {
		var ch Chamber
		err = rows.Scan(
			&ch.Name, &ch.Kind, &ch.TDCs, &ch.Multilayers,
			&ch.MinHits, &ch.MaxHits,
		)
		if err != nil {
			return chs, fmt.Errorf(
				"conddb: could not scan chambers: %w",
				err,
			)
		}
		chs = append(chs, ch)
	}

	if err := rows.Err(); err != nil {
		return chs, fmt.Errorf(
			"conddb: could not scan db for chambers: %w",
			err,
		)
	}

	if err := ctx.Err(); err != nil {
		return chs, fmt.Errorf(
			"conddb: context error while retrieving chambers: %w",
			err,
		)
	}

	return chs, nil
}

// HitBounds returns the number of hits of a valid frame for the named chamber.
func (db *DB) HitBounds(ctx context.Context, chamber string) (min, max int, err error) {
	ch, err := db.Chamber(ctx, chamber)
	if err != nil {
		return 0, 0, fmt.Errorf("conddb: could not retrieve hit bounds: %w", err)
	}
	return ch.MinHits, ch.MaxHits, nil
}

// Tubes returns the mapping of the tubes of the named chamber.
func (db *DB) Tubes(ctx context.Context, chamber string) ([]geom.Tube, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var tubes []geom.Tube
	rows, err := db.db.QueryContext(
		ctx,
		`
SELECT tubes.tdc, tubes.channel, tubes.layer, tubes.multilayer, tubes.x, tubes.y
FROM tubes
JOIN chambers ON chambers.identifier=tubes.chamber
WHERE chambers.name=?
ORDER BY tubes.tdc, tubes.channel
`,
		chamber,
	)
	if err != nil {
		return tubes, fmt.Errorf("conddb: could not run tubes query: %w", err)
	}
	defer rows.Close()

	i := 0
	for rows.Next() {
		var tube geom.Tube
		err = rows.Scan(
			&tube.TDC, &tube.Channel,
			&tube.Layer, &tube.Multilayer,
			&tube.X, &tube.Y,
		)
		if err != nil {
			return tubes, fmt.Errorf("conddb: could not scan row %d for tubes: %w", i, err)
		}
		i++

		tubes = append(tubes, tube)
	}

	if err := rows.Err(); err != nil {
		return tubes, fmt.Errorf("conddb: could not scan db for tubes: %w", err)
	}

	if err := ctx.Err(); err != nil {
		return tubes, fmt.Errorf("conddb: context error while retrieving tubes: %w", err)
	}

	return tubes, nil
}

// Geometry returns the tube layout of the named chamber.
// Chambers with no registered tube get the nominal layout of their type.
func (db *DB) Geometry(ctx context.Context, chamber string) (*geom.Chamber, error) {
	ch, err := db.Chamber(ctx, chamber)
	if err != nil {
		return nil, fmt.Errorf("conddb: could not retrieve geometry: %w", err)
	}

	tubes, err := db.Tubes(ctx, chamber)
	if err != nil {
		return nil, fmt.Errorf("conddb: could not retrieve geometry: %w", err)
	}

	if len(tubes) == 0 {
		return geom.New(ch.Kind, ch.TDCs, ch.Multilayers)
	}
	return geom.NewChamber(ch.Kind, tubes)
}

// Copyright 2025 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Command mdt-sql inspects the chambers registered in the MDT condition DB.
//
// Usage: mdt-sql [OPTIONS]
//
// Example:
//
//	$> mdt-sql -ls
//	$> mdt-sql -chamber BIS1A01 -table > BIS1A01.txt
package main // import "github.com/go-lpc/mdt/cmd/mdt-sql"

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/go-lpc/mdt/conddb"
	"github.com/go-lpc/mdt/geom"
)

func main() {
	log.SetPrefix("mdt-sql: ")
	log.SetFlags(0)

	var (
		dbname  = flag.String("db", "mdt", "name of the condition DB")
		chamber = flag.String("chamber", "", "chamber to inspect (default: last registered chamber)")
		ls      = flag.Bool("ls", false, "list all the registered chambers")
		table   = flag.Bool("table", false, "write the mapping table of the chamber to stdout")
	)

	flag.Parse()

	db, err := conddb.Open(*dbname)
	if err != nil {
		log.Fatalf("could not open MDT db: %+v", err)
	}
	defer db.Close()

	err = doQuery(context.Background(), os.Stdout, db, *chamber, *ls, *table)
	if err != nil {
		log.Fatalf("could not do query: %+v", err)
	}
}

func doQuery(ctx context.Context, w io.Writer, db *conddb.DB, name string, ls, table bool) error {
	if ls {
		chs, err := db.Chambers(ctx)
		if err != nil {
			return fmt.Errorf("could not list chambers: %w", err)
		}
		log.Printf("chambers: %d", len(chs))
		for i, ch := range chs {
			log.Printf("row[%d]: %s", i, ch)
		}
	}

	if name == "" {
		v, err := db.LastChamber(ctx)
		if err != nil {
			return fmt.Errorf("could not get last chamber: %w", err)
		}
		name = v
	}
	log.Printf("chamber: %q", name)

	ch, err := db.Chamber(ctx, name)
	if err != nil {
		return fmt.Errorf("could not get chamber %q: %w", name, err)
	}
	log.Printf("descr:   %s", ch)

	tubes, err := db.Tubes(ctx, name)
	if err != nil {
		return fmt.Errorf("could not get tubes of chamber %q: %w", name, err)
	}

	var geo *geom.Chamber
	switch len(tubes) {
	case 0:
		log.Printf("tubes:   none registered, using nominal %s layout", ch.Kind)
		geo, err = geom.New(ch.Kind, ch.TDCs, ch.Multilayers)
	default:
		log.Printf("tubes:   %d", len(tubes))
		geo, err = geom.NewChamber(ch.Kind, tubes)
	}
	if err != nil {
		return fmt.Errorf("could not build geometry of chamber %q: %w", name, err)
	}

	if !table {
		return nil
	}

	err = geom.WriteTable(w, geo)
	if err != nil {
		return fmt.Errorf("could not write mapping table: %w", err)
	}
	return nil
}

//go:build ignore

// Generates sample files for trying out pq by hand:
//
//	go run testdata/generate.go
package main

import (
	"log"
	"os"
	"path/filepath"

	"github.com/parquet-go/parquet-go"
)

type User struct {
	ID     int64   `parquet:"id"`
	Name   string  `parquet:"name"`
	Age    int32   `parquet:"age"`
	Active bool    `parquet:"active"`
	Score  float64 `parquet:"score"`
	Email  *string `parquet:"email,optional"`
}

type Event struct {
	Seq   int64  `parquet:"seq"`
	Kind  string `parquet:"kind"`
	Value *int64 `parquet:"value,optional"`
}

func ptr[T any](v T) *T { return &v }

func write[T any](path string, groups ...[]T) {
	f, err := os.Create(path)
	if err != nil {
		log.Fatal(err)
	}
	w := parquet.NewGenericWriter[T](f, parquet.Compression(&parquet.Snappy))
	for _, rows := range groups {
		if _, err := w.Write(rows); err != nil {
			log.Fatal(err)
		}
		if err := w.Flush(); err != nil {
			log.Fatal(err)
		}
	}
	if err := w.Close(); err != nil {
		log.Fatal(err)
	}
	if err := f.Close(); err != nil {
		log.Fatal(err)
	}
	log.Printf("Generated %s", path)
}

func events(start, count int64) []Event {
	kinds := []string{"click", "view", "purchase"}
	rows := make([]Event, count)
	for i := range rows {
		n := start + int64(i)
		rows[i] = Event{Seq: n, Kind: kinds[n%3]}
		if n%4 != 0 {
			rows[i].Value = ptr(n * 10)
		}
	}
	return rows
}

func main() {
	dir := "."
	if len(os.Args) > 1 {
		dir = os.Args[1]
	}

	write(filepath.Join(dir, "simple.parquet"), []User{
		{ID: 1, Name: "alice", Age: 30, Active: true, Score: 95.5, Email: ptr("alice@example.com")},
		{ID: 2, Name: "bob", Age: 25, Active: false, Score: 82.3},
		{ID: 3, Name: "charlie", Age: 35, Active: true, Score: 88.7, Email: ptr("charlie@example.com")},
		{ID: 4, Name: "diana", Age: 28, Active: true, Score: 91.2},
		{ID: 5, Name: "eve", Age: 42, Active: false, Score: 76.8, Email: ptr("eve@example.com")},
	})

	// Two files sharing a schema, the first split across row groups.
	write(filepath.Join(dir, "events-1.parquet"), events(0, 1000), events(1000, 1000), events(2000, 500))
	write(filepath.Join(dir, "events-2.parquet"), events(2500, 1500))
}

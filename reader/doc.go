// Package reader provides streaming access to Apache Parquet files.
//
// Files are first probed for their footer metadata, which yields an
// immutable LogicalFile describing the schema, row groups and column chunk
// statistics without reading any row data. Rows are then streamed one batch
// at a time from a range of row groups, so memory use is bounded by the batch
// size rather than the file size.
//
// # Probing
//
//	lf, err := reader.Probe(ctx, "data.parquet")
//	if err != nil {
//	    return err
//	}
//	fmt.Println(lf.NumRows, len(lf.RowGroups))
//
// # Streaming
//
//	s, err := reader.OpenStream(lf, reader.StreamOptions{Range: lf.All()})
//	if err != nil {
//	    return err
//	}
//	defer s.Close()
//
//	for {
//	    batch, err := s.Next(ctx)
//	    if errors.Is(err, io.EOF) {
//	        break
//	    }
//	    if err != nil {
//	        return err
//	    }
//	    for _, row := range batch.Rows {
//	        fmt.Println(row)
//	    }
//	}
//
// # Tail planning
//
// PlanTail selects the shortest suffix of row groups that can hold the last
// N rows, so reading the tail of a large file touches only the final row
// groups.
//
// # Multi-file Operations
//
// ResolvePaths expands glob patterns (including ** and {a,b}) into a sorted,
// deduplicated list of files. NewMultiStream concatenates several
// schema-compatible files, optionally tagging each row with a "_file" column
// holding its source path.
//
// The package uses github.com/parquet-go/parquet-go for the underlying
// parquet file operations.
package reader

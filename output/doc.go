// Package output encodes streams of rows as tables, JSON, JSON Lines or CSV.
//
// Every formatter consumes a reader.BatchReader one batch at a time, so
// output of any length is written with memory bounded by the batch size.
//
// # Supported Formats
//
//   - table: a bordered grid for terminals
//   - json: a single indented array
//   - jsonl: one compact JSON object per line (suitable for streaming)
//   - csv: comma-separated values with a header row
//
// # Basic Usage
//
//	formatter, err := output.New(output.JSONL, os.Stdout, output.Options{})
//	if err != nil {
//	    return err
//	}
//	if err := formatter.Format(ctx, stream); err != nil {
//	    return err
//	}
//
// # Value Rendering
//
// Floats use the shortest representation that parses back to the same
// value. Byte arrays are base64. Nulls are NULL in tables, empty in CSV and
// null in JSON. CSV cannot represent list values and reports
// ErrUnsupportedCellType for them.
package output

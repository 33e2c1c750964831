package output

import (
	"bufio"
	"math"
	"strings"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vegasq/pq/reader"
)

func TestJSONLFormatter(t *testing.T) {
	got := render(t, JSONL, Options{}, reader.NewMemoryReader(peopleSchema, peopleRows()))

	want := `{"id":1,"name":"Alice","age":30}
{"id":2,"name":"Bob","age":25}
{"id":3,"name":"Charlie","age":35}
`
	assert.Equal(t, want, got)
}

func TestJSONFormatter(t *testing.T) {
	src := &batches{schema: peopleSchema, chunks: [][]reader.Row{peopleRows()[:1], {}, peopleRows()[1:2]}}
	got := render(t, JSON, Options{}, src)

	want := `[
  {
    "id": 1,
    "name": "Alice",
    "age": 30
  },
  {
    "id": 2,
    "name": "Bob",
    "age": 25
  }
]
`
	assert.Equal(t, want, got)
}

func TestJSONFormatter_Empty(t *testing.T) {
	assert.Equal(t, "[]\n", render(t, JSON, Options{}, reader.NewMemoryReader(peopleSchema, nil)))
	assert.Empty(t, render(t, JSONL, Options{}, reader.NewMemoryReader(peopleSchema, nil)))
}

func TestJSONValues(t *testing.T) {
	schema := reader.Schema{{Name: "n"}, {Name: "f"}, {Name: "nan"}, {Name: "inf"}, {Name: "b"}, {Name: "s"}, {Name: "bytes"}, {Name: "list"}, {Name: "big"}, {Name: "ubig"}}
	row := reader.Row{
		reader.NullCell(),
		reader.FloatCell(0.1),
		reader.FloatCell(math.NaN()),
		reader.FloatCell(math.Inf(-1)),
		reader.BoolCell(true),
		reader.StringCell(`<a href="x">&</a>`),
		reader.BytesCell([]byte("hi")),
		reader.ListCell([]reader.Cell{reader.IntCell(1), reader.NullCell()}),
		reader.IntCell(math.MaxInt64),
		reader.UintCell(math.MaxUint64),
	}

	got := render(t, JSONL, Options{}, reader.NewMemoryReader(schema, []reader.Row{row}))
	want := `{"n":null,"f":0.1,"nan":"NaN","inf":"-Inf","b":true,"s":"<a href=\"x\">&</a>","bytes":"aGk=","list":[1,null],"big":9223372036854775807,"ubig":18446744073709551615}` + "\n"
	assert.Equal(t, want, got)
}

func TestJSONFormatters_KeepHTMLCharacters(t *testing.T) {
	schema := reader.Schema{{Name: "a<b>&c"}}
	rows := []reader.Row{{reader.StringCell("x < y && y > z")}}

	got := render(t, JSONL, Options{}, reader.NewMemoryReader(schema, rows))
	assert.Equal(t, `{"a<b>&c":"x < y && y > z"}`+"\n", got)

	got = render(t, JSON, Options{}, reader.NewMemoryReader(schema, rows))
	assert.Equal(t, "[\n  {\n    \"a<b>&c\": \"x < y && y > z\"\n  }\n]\n", got)
}

func TestJSONLFormatter_RoundTrip(t *testing.T) {
	schema := reader.Schema{{Name: "id"}, {Name: "name"}, {Name: "score"}, {Name: "ok"}, {Name: "note"}}
	rows := []reader.Row{
		{reader.IntCell(-7), reader.StringCell("line\nbreak"), reader.FloatCell(1.5), reader.BoolCell(false), reader.NullCell()},
		{reader.IntCell(8), reader.StringCell(`quote"d`), reader.FloatCell(-0.25), reader.BoolCell(true), reader.StringCell("ünï")},
	}

	out := render(t, JSONL, Options{}, reader.NewMemoryReader(schema, rows))

	sc := bufio.NewScanner(strings.NewReader(out))
	var i int
	for sc.Scan() {
		var obj map[string]any
		require.NoError(t, json.Unmarshal(sc.Bytes(), &obj))
		row := rows[i]
		assert.Equal(t, float64(row[0].Int()), obj["id"])
		assert.Equal(t, row[1].Text(), obj["name"])
		assert.Equal(t, row[2].Float(), obj["score"])
		assert.Equal(t, row[3].Bool(), obj["ok"])
		if row[4].IsNull() {
			assert.Nil(t, obj["note"])
		} else {
			assert.Equal(t, row[4].Text(), obj["note"])
		}
		i++
	}
	assert.Equal(t, len(rows), i)
}

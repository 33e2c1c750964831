package reader

import (
	"fmt"
	"strings"

	"github.com/parquet-go/parquet-go"
)

// Column describes one leaf column of a Parquet schema.
type Column struct {
	Name         string `json:"name"`
	Type         string `json:"type"`
	PhysicalType string `json:"physical_type"`
	LogicalType  string `json:"logical_type"`
	Nullable     bool   `json:"nullable"`
	Repeated     bool   `json:"repeated"`

	kind     parquet.Kind
	text     bool
	uuid     bool
	unsigned bool
}

// Schema is the ordered list of leaf columns of a file or a stream.
//
// For nested types, column names use dot notation (e.g., "address.street").
type Schema []Column

// Names returns the column names in schema order.
func (s Schema) Names() []string {
	names := make([]string, len(s))
	for i, c := range s {
		names[i] = c.Name
	}
	return names
}

// Index returns the position of the named column, or -1.
func (s Schema) Index(name string) int {
	for i, c := range s {
		if c.Name == name {
			return i
		}
	}
	return -1
}

// Diff compares s against a reference schema and describes the first column
// at which they diverge. Names, physical types, nullability, repetition and
// order must all match; ok is true when they do.
func (s Schema) Diff(ref Schema) (column, reason string, ok bool) {
	for i := 0; i < len(s) && i < len(ref); i++ {
		got, want := s[i], ref[i]
		switch {
		case got.Name != want.Name:
			return want.Name, fmt.Sprintf("column %d is %q, expected %q", i, got.Name, want.Name), false
		case got.PhysicalType != want.PhysicalType || got.LogicalType != want.LogicalType:
			return want.Name, fmt.Sprintf("type %s, expected %s", got.describeType(), want.describeType()), false
		case got.Nullable != want.Nullable:
			return want.Name, fmt.Sprintf("nullable=%t, expected nullable=%t", got.Nullable, want.Nullable), false
		case got.Repeated != want.Repeated:
			return want.Name, fmt.Sprintf("repeated=%t, expected repeated=%t", got.Repeated, want.Repeated), false
		}
	}
	switch {
	case len(s) > len(ref):
		return s[len(ref)].Name, "unexpected extra column", false
	case len(s) < len(ref):
		return ref[len(s)].Name, "column missing", false
	}
	return "", "", true
}

func (c Column) describeType() string {
	if c.LogicalType == "" {
		return c.PhysicalType
	}
	return c.PhysicalType + "/" + c.LogicalType
}

// SchemaOf extracts the leaf columns of a parquet schema in column-index order.
func SchemaOf(schema *parquet.Schema) Schema {
	var cols Schema
	for _, field := range schema.Fields() {
		cols = append(cols, extractFieldInfo(field, "", false)...)
	}
	return cols
}

// extractFieldInfo recursively extracts leaf columns from a field, tracking
// whether any parent field is repeated or optional.
func extractFieldInfo(field parquet.Field, prefix string, parentRepeated bool) []Column {
	fieldName := field.Name()
	if prefix != "" {
		fieldName = prefix + "." + fieldName
	}

	isRepeated := parentRepeated || field.Repeated()

	// Groups produce no column of their own, only their leaves.
	if childFields := field.Fields(); len(childFields) > 0 {
		var cols []Column
		for _, child := range childFields {
			cols = append(cols, extractFieldInfo(child, fieldName, isRepeated)...)
		}
		return cols
	}

	col := Column{
		Name:         fieldName,
		Type:         getUserFriendlyType(field),
		PhysicalType: getPhysicalType(field),
		LogicalType:  getLogicalType(field),
		Nullable:     field.Optional(),
		Repeated:     isRepeated,
	}
	if t := field.Type(); t != nil {
		col.kind = t.Kind()
		if lt := t.LogicalType(); lt != nil {
			col.text = lt.UTF8 != nil || lt.Enum != nil || lt.Json != nil
			col.uuid = lt.UUID != nil
			col.unsigned = lt.Integer != nil && !lt.Integer.IsSigned
		}
	}
	return []Column{col}
}

// getPhysicalType returns the physical type name of a Parquet field.
func getPhysicalType(field parquet.Field) string {
	if field.Type() == nil {
		return "GROUP"
	}
	return kindName(field.Type().Kind())
}

func kindName(kind parquet.Kind) string {
	switch kind {
	case parquet.Boolean:
		return "BOOLEAN"
	case parquet.Int32:
		return "INT32"
	case parquet.Int64:
		return "INT64"
	case parquet.Int96:
		return "INT96"
	case parquet.Float:
		return "FLOAT"
	case parquet.Double:
		return "DOUBLE"
	case parquet.ByteArray:
		return "BYTE_ARRAY"
	case parquet.FixedLenByteArray:
		return "FIXED_LEN_BYTE_ARRAY"
	default:
		return "UNKNOWN"
	}
}

// getLogicalType returns the logical type name of a Parquet field, or "".
func getLogicalType(field parquet.Field) string {
	if field.Type() == nil {
		return ""
	}
	logicalType := field.Type().LogicalType()
	if logicalType == nil {
		return ""
	}
	return logicalType.String()
}

// getUserFriendlyType maps physical and logical types to the simpler names
// shown to users.
func getUserFriendlyType(field parquet.Field) string {
	if field.Type() == nil {
		return "GROUP"
	}

	if lt := getLogicalType(field); lt != "" {
		name := strings.ToUpper(lt)
		if i := strings.IndexAny(name, "( "); i > 0 {
			name = name[:i]
		}
		switch name {
		case "STRING", "UTF8":
			return "STRING"
		case "ENUM", "UUID", "DATE", "TIME", "TIMESTAMP", "DECIMAL", "JSON", "BSON":
			return name
		}
	}

	switch kind := field.Type().Kind(); kind {
	case parquet.Float:
		return "FLOAT32"
	case parquet.Double:
		return "FLOAT64"
	default:
		return kindName(kind)
	}
}

/*Package entity defines the descriptor-driven model contract for the
generic data-access layer.

Every persistable type declares a static Descriptor: its storage table and
an ordered field table with one entry per persisted column. The descriptor
drives generic statement building and is the sole whitelist for query
field names, so a column missing here can never be filtered, projected or
sorted on.
*/
package entity

import (
	"strings"

	"github.com/goccy/go-json"
)

// Field describes one persisted column of an entity type.
type Field struct {
	// Column is the snake_case storage column name.
	Column string
	// Searchable marks the column as eligible for free-text search.
	Searchable bool
}

// Descriptor is the per-type metadata driving generic CRUD and query
// whitelisting. Fields excludes the identifier column, which every entity
// has implicitly.
type Descriptor struct {
	Table  string
	Fields []Field
}

// AvailableFields returns the whitelist for filter, projection and sorting:
// the identifier plus every declared column.
func (d Descriptor) AvailableFields() []string {
	fields := make([]string, 0, len(d.Fields)+1)
	fields = append(fields, "id")
	for _, f := range d.Fields {
		fields = append(fields, f.Column)
	}
	return fields
}

// SearchableFields returns the columns nominated for free-text search.
func (d Descriptor) SearchableFields() []string {
	var fields []string
	for _, f := range d.Fields {
		if f.Searchable {
			fields = append(fields, f.Column)
		}
	}
	return fields
}

// Columns returns every declared column in declaration order, without the
// identifier. INSERT and UPDATE statements are built from this list.
func (d Descriptor) Columns() []string {
	columns := make([]string, 0, len(d.Fields))
	for _, f := range d.Fields {
		columns = append(columns, f.Column)
	}
	return columns
}

// Entity is implemented by every persistable model type.
type Entity interface {
	// Descriptor returns the static descriptor shared by all instances of
	// the concrete type.
	Descriptor() Descriptor
	// ID returns the storage identifier, zero before creation.
	ID() int64
	// SetID assigns the identifier generated by the storage on creation.
	SetID(id int64)
	// FieldValues returns the current value of every persisted field,
	// positionally aligned with Descriptor().Fields. The identifier is not
	// included.
	FieldValues() []interface{}
	// FieldPointer returns a scan destination for the given storage column,
	// or nil when the column is not declared. Unknown columns are skipped
	// by the caller, which keeps deserialization forward-compatible with
	// schema additions.
	FieldPointer(column string) interface{}
}

// Factory creates an empty entity instance, ready to be populated from a
// storage row.
type Factory func() Entity

// ToSnake converts a camelCase name to its snake_case storage form.
// Consecutive capitals are treated as one acronym: "livesFlatID" becomes
// "lives_flat_id", not "lives_flat_i_d".
func ToSnake(camelCase string) string {
	runes := []rune(camelCase)
	var b strings.Builder
	for i, r := range runes {
		if isUpper(r) {
			// a word starts at an upper-case rune when the previous rune is
			// lower-case, or when this is the last capital of an acronym run
			// followed by a lower-case rune
			startsWord := i > 0 && (!isUpper(runes[i-1]) ||
				(i+1 < len(runes) && !isUpper(runes[i+1])))
			if startsWord {
				b.WriteByte('_')
			}
			b.WriteRune(r - 'A' + 'a')
		} else {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func isUpper(r rune) bool {
	return 'A' <= r && r <= 'Z'
}

// TableName derives the storage table from a type name: a conventional
// "Model" suffix is stripped, the remainder converted to snake_case and
// pluralized.
func TableName(typeName string) string {
	return plural(ToSnake(strings.TrimSuffix(typeName, "Model")))
}

func plural(s string) string {
	if strings.HasSuffix(s, "y") {
		return strings.TrimSuffix(s, "y") + "ies"
	}
	return s + "s"
}

// Serialize renders an entity to JSON as a field-name to value mapping.
//
// When included is non-empty, only the listed fields appear. The excluded
// fields never appear, regardless of the inclusion filter; concrete types
// use this for sensitive columns such as password hashes.
func Serialize(e Entity, included []string, excluded ...string) ([]byte, error) {
	desc := e.Descriptor()
	values := e.FieldValues()

	fields := make(map[string]interface{}, len(desc.Fields)+1)
	put := func(name string, value interface{}) {
		for _, ex := range excluded {
			if name == ex {
				return
			}
		}
		if len(included) > 0 && !containsField(included, name) {
			return
		}
		fields[name] = value
	}

	put("id", e.ID())
	for i, f := range desc.Fields {
		put(f.Column, values[i])
	}
	return json.Marshal(fields)
}

func containsField(fields []string, field string) bool {
	for _, f := range fields {
		if f == field {
			return true
		}
	}
	return false
}

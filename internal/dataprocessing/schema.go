package dataprocessing

import (
	_ "embed"
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v2"
)

// Field is a canonical column name
type Field string

const (
	FieldDate         Field = "date"
	FieldRevenue      Field = "revenue"
	FieldRoomsSold    Field = "rooms_sold"
	FieldOccupancyPct Field = "occupancy_pct"
	FieldADR          Field = "adr"
	FieldRevPAR       Field = "revpar"
	FieldRooms        Field = "rooms"
	FieldBlocked      Field = "blocked"
)

// NumericFields lists the canonical numeric fields, all of which default to 0 when absent
var NumericFields = []Field{FieldRevenue, FieldRoomsSold, FieldOccupancyPct, FieldADR, FieldRevPAR, FieldRooms, FieldBlocked}

var knownFields = map[Field]bool{
	FieldDate: true, FieldRevenue: true, FieldRoomsSold: true, FieldOccupancyPct: true,
	FieldADR: true, FieldRevPAR: true, FieldRooms: true, FieldBlocked: true,
}

//go:embed aliases.yaml
var defaultAliases []byte

// AliasTable maps each canonical field to the headers accepted for it
type AliasTable struct {
	Version int                 `yaml:"version"`
	Fields  map[string][]string `yaml:"fields"`
}

// DefaultAliasTable returns the embedded alias table
func DefaultAliasTable() AliasTable {
	table, err := ParseAliasTable(defaultAliases)
	if err != nil {
		panic(fmt.Sprintf("embedded alias table is invalid: %v", err))
	}
	return table
}

// ParseAliasTable decodes a YAML alias table
func ParseAliasTable(data []byte) (AliasTable, error) {
	var table AliasTable
	if err := yaml.Unmarshal(data, &table); err != nil {
		return AliasTable{}, fmt.Errorf("failed to decode alias table: %w", err)
	}
	if len(table.Fields) == 0 {
		return AliasTable{}, fmt.Errorf("alias table defines no fields")
	}
	return table, nil
}

// LoadAliasTable reads an alias file and layers it over the embedded defaults.
// Fields present in the file replace the default alias list for that field.
func LoadAliasTable(path string) (AliasTable, error) {
	base := DefaultAliasTable()
	if path == "" {
		return base, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return AliasTable{}, fmt.Errorf("failed to read alias file %s: %w", path, err)
	}
	override, err := ParseAliasTable(data)
	if err != nil {
		return AliasTable{}, err
	}

	for field, aliases := range override.Fields {
		base.Fields[field] = aliases
	}
	if override.Version > 0 {
		base.Version = override.Version
	}
	return base, nil
}

// SchemaMapper canonicalizes spreadsheet headers
type SchemaMapper struct {
	version int
	lookup  map[string]Field
}

// ColumnMap is the result of mapping a header row
type ColumnMap struct {
	Columns map[Field]int
	Ignored []string
}

// Has reports whether field was mapped
func (c ColumnMap) Has(field Field) bool {
	_, ok := c.Columns[field]
	return ok
}

// NewSchemaMapper validates the table and builds the lookup. An alias claimed by two
// fields is rejected.
func NewSchemaMapper(table AliasTable) (*SchemaMapper, error) {
	lookup := make(map[string]Field)

	names := make([]string, 0, len(table.Fields))
	for name := range table.Fields {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		field := Field(name)
		if !knownFields[field] {
			return nil, fmt.Errorf("alias table references unknown field %q", name)
		}
		// the canonical name always maps to itself
		aliases := append([]string{name}, table.Fields[name]...)
		for _, alias := range aliases {
			key := NormalizeHeader(alias)
			if key == "" {
				continue
			}
			if prev, ok := lookup[key]; ok && prev != field {
				return nil, fmt.Errorf("alias %q maps to both %s and %s", alias, prev, field)
			}
			lookup[key] = field
		}
	}

	return &SchemaMapper{version: table.Version, lookup: lookup}, nil
}

// Version returns the alias table version the mapper was built from
func (m *SchemaMapper) Version() int {
	return m.version
}

// Canonical maps a single header
func (m *SchemaMapper) Canonical(header string) (Field, bool) {
	f, ok := m.lookup[NormalizeHeader(header)]
	return f, ok
}

// Map maps a header row. The first column claiming a field wins; unknown headers are
// preserved in Ignored.
func (m *SchemaMapper) Map(headers []string) ColumnMap {
	cm := ColumnMap{Columns: make(map[Field]int)}
	for i, h := range headers {
		field, ok := m.Canonical(h)
		if !ok {
			if strings.TrimSpace(h) != "" {
				cm.Ignored = append(cm.Ignored, h)
			}
			continue
		}
		if _, taken := cm.Columns[field]; !taken {
			cm.Columns[field] = i
		}
	}
	return cm
}

// NormalizeHeader trims, case-folds and collapses inner whitespace
func NormalizeHeader(h string) string {
	return strings.Join(strings.Fields(strings.ToLower(h)), " ")
}

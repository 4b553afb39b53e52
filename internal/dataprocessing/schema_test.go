package dataprocessing

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSchemaMapperDefaults(t *testing.T) {
	m, err := NewSchemaMapper(DefaultAliasTable())
	require.NoError(t, err)
	assert.Greater(t, m.Version(), 0)

	tests := []struct {
		header string
		want   Field
	}{
		{"Data", FieldDate},
		{"  Totale revenue ", FieldRevenue},
		{"TOTALE   REVENUE", FieldRevenue},
		{"Ricavo", FieldRevenue},
		{"Occupate", FieldRoomsSold},
		{"Occupate %", FieldOccupancyPct},
		{"ADR", FieldADR},
		{"RevPar", FieldRevPAR},
		{"Unità", FieldRooms},
		{"Bloccate", FieldBlocked},
		{"revenue", FieldRevenue},
	}
	for _, tt := range tests {
		t.Run(tt.header, func(t *testing.T) {
			got, ok := m.Canonical(tt.header)
			require.True(t, ok)
			assert.Equal(t, tt.want, got)
		})
	}

	_, ok := m.Canonical("Note")
	assert.False(t, ok)
}

func TestSchemaMapperMap(t *testing.T) {
	m, err := NewSchemaMapper(DefaultAliasTable())
	require.NoError(t, err)

	cols := m.Map([]string{"Data", "Note", "Totale revenue", "Revenue", "", "Occupate"})
	assert.Equal(t, 0, cols.Columns[FieldDate])
	assert.Equal(t, 2, cols.Columns[FieldRevenue], "first column claiming a field wins")
	assert.Equal(t, 5, cols.Columns[FieldRoomsSold])
	assert.False(t, cols.Has(FieldADR))
	assert.Equal(t, []string{"Note"}, cols.Ignored)
}

func TestNewSchemaMapperRejectsBadTables(t *testing.T) {
	_, err := NewSchemaMapper(AliasTable{Version: 1, Fields: map[string][]string{"guests": {"ospiti"}}})
	assert.Error(t, err)

	_, err = NewSchemaMapper(AliasTable{Version: 1, Fields: map[string][]string{
		"revenue": {"incasso"},
		"adr":     {"incasso"},
	}})
	assert.Error(t, err)
}

func TestLoadAliasTableOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "aliases.yaml")
	require.NoError(t, os.WriteFile(path, []byte("version: 9\nfields:\n  revenue:\n    - incasso\n"), 0o644))

	table, err := LoadAliasTable(path)
	require.NoError(t, err)
	assert.Equal(t, 9, table.Version)

	m, err := NewSchemaMapper(table)
	require.NoError(t, err)

	f, ok := m.Canonical("Incasso")
	assert.True(t, ok)
	assert.Equal(t, FieldRevenue, f)

	_, ok = m.Canonical("Totale revenue")
	assert.False(t, ok, "override replaces the field's alias list")

	f, ok = m.Canonical("Occupate")
	assert.True(t, ok, "fields absent from the override keep their defaults")
	assert.Equal(t, FieldRoomsSold, f)
}

func TestLoadAliasTableMissingFile(t *testing.T) {
	_, err := LoadAliasTable(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	table, err := LoadAliasTable("")
	require.NoError(t, err)
	assert.NotEmpty(t, table.Fields)
}

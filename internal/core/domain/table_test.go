package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTableRef_PadsShortRows(t *testing.T) {
	table, err := NewTableRef("doc.pdf:p1:table1",
		[]string{"Name", "Role", "Team"},
		[][]string{
			{"alice", "dev"},
			{"bob", "ops", "infra", "extra"},
		})
	require.NoError(t, err)

	assert.Equal(t, "doc.pdf:p1:table1", table.TableID)
	assert.Equal(t, []string{"Name", "Role", "Team"}, table.Headers)
	require.Len(t, table.Rows, 2)

	// Short row right-padded with empty strings.
	assert.Equal(t, map[string]string{"Name": "alice", "Role": "dev", "Team": ""}, table.Rows[0])
	// Long row truncated to the header width.
	assert.Equal(t, map[string]string{"Name": "bob", "Role": "ops", "Team": "infra"}, table.Rows[1])
}

func TestNewTableRef_RowKeysMatchHeaders(t *testing.T) {
	table, err := NewTableRef("t", []string{"A", "B"}, [][]string{{"1"}, {"2", "3"}})
	require.NoError(t, err)

	for _, row := range table.Rows {
		assert.Len(t, row, len(table.Headers))
		for _, h := range table.Headers {
			_, ok := row[h]
			assert.True(t, ok, "row missing header %q", h)
		}
	}
}

func TestNewTableRef_RejectsSingleHeader(t *testing.T) {
	_, err := NewTableRef("t", []string{"only"}, [][]string{{"a"}})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestNewTableRef_RejectsNoValidRows(t *testing.T) {
	_, err := NewTableRef("t", []string{"A", "B"}, [][]string{{}, nil})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

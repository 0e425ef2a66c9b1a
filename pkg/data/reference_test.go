package data

import (
	"testing"

	"github.com/rafianfasaa/stunting/pkg/growth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testTable(t *testing.T, sex growth.Sex, std growth.Standard, from, to int, m0 float64) *growth.Table {
	t.Helper()
	rows := make([]growth.Row, 0)
	for m := from; m <= to; m++ {
		rows = append(rows, growth.Row{Month: float64(m), L: 1, M: m0 + float64(m-from), S: 0.035})
	}
	tbl, err := growth.NewTable(sex, std, rows)
	require.NoError(t, err)
	return tbl
}

func TestSaveAndGetTable(t *testing.T) {
	db := setupTestDB(t)

	tbl := testTable(t, growth.Male, growth.Length, 0, 24, 49.9)
	require.NoError(t, SaveTable(db, tbl, "ml.csv"))

	got, err := GetTable(db, growth.Male, growth.Length)
	require.NoError(t, err)
	assert.Equal(t, tbl.Rows(), got.Rows())

	// re-import replaces rather than appends
	smaller := testTable(t, growth.Male, growth.Length, 0, 12, 50)
	require.NoError(t, SaveTable(db, smaller, "ml-v2.csv"))
	got, err = GetTable(db, growth.Male, growth.Length)
	require.NoError(t, err)
	assert.Equal(t, 13, got.Len())

	imports, err := GetImports(db)
	require.NoError(t, err)
	require.Len(t, imports, 1)
	assert.Equal(t, "ml-v2.csv", imports[0].Source)
	assert.Equal(t, 13, imports[0].Rows)
	assert.Equal(t, growth.Male, imports[0].Sex)
	assert.NotEmpty(t, imports[0].ImportedAt)
}

func TestGetTable_Missing(t *testing.T) {
	db := setupTestDB(t)
	_, err := GetTable(db, growth.Female, growth.Height)
	assert.Error(t, err)
}

func TestGetReferenceSet(t *testing.T) {
	db := setupTestDB(t)

	_, err := GetReferenceSet(db)
	assert.Error(t, err, "empty store")

	require.NoError(t, SaveTable(db, testTable(t, growth.Male, growth.Length, 0, 24, 49.9), "a"))
	require.NoError(t, SaveTable(db, testTable(t, growth.Female, growth.Length, 0, 24, 49.1), "b"))
	require.NoError(t, SaveTable(db, testTable(t, growth.Male, growth.Height, 24, 60, 87.1), "c"))
	require.NoError(t, SaveTable(db, testTable(t, growth.Female, growth.Height, 24, 60, 85.7), "d"))

	rs, err := GetReferenceSet(db)
	require.NoError(t, err)
	assert.Len(t, rs.Tables(), 4)

	imports, err := GetImports(db)
	require.NoError(t, err)
	assert.Len(t, imports, 4)
}

func TestNilDB(t *testing.T) {
	assert.ErrorIs(t, SaveTable(nil, nil, ""), errDBNotInitialized)
	_, err := GetTable(nil, growth.Male, growth.Length)
	assert.ErrorIs(t, err, errDBNotInitialized)
	_, err = GetImports(nil)
	assert.ErrorIs(t, err, errDBNotInitialized)
}

func TestDeleteAll(t *testing.T) {
	db := setupTestDB(t)
	require.NoError(t, SaveTable(db, testTable(t, growth.Male, growth.Length, 0, 24, 49.9), "a"))
	require.NoError(t, SaveTable(db, testTable(t, growth.Female, growth.Height, 24, 60, 85.7), "d"))

	n, err := DeleteAll(db)
	require.NoError(t, err)
	assert.Equal(t, int64(25+37), n)

	imports, err := GetImports(db)
	require.NoError(t, err)
	assert.Empty(t, imports)

	_, err = DeleteAll(nil)
	assert.ErrorIs(t, err, errDBNotInitialized)
}

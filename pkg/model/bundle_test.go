package model

import (
	"encoding/json"
	"errors"
	"math"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rafianfasaa/stunting/pkg/growth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testBundle = "testdata/bundle.json"

func leaf(v float64) *float64 { return &v }

func TestLoad(t *testing.T) {
	a, err := Load(testBundle)
	require.NoError(t, err)
	assert.Equal(t, trainingColumns, a.Schema().Columns())

	tests := []struct {
		z    float64
		want string
	}{
		{-3.5, "Sangat Pendek"},
		{-2.5, "Pendek"},
		{0, "Normal"},
		{2.9, "Normal"},
		{3.5, "Tinggi"},
	}
	for _, tt := range tests {
		got, err := a.Label(growth.Features{Sex: growth.Male, Value: 90, Method: growth.Standing, AgeMonths: 30, ZScore: tt.z})
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, "z=%v", tt.z)
	}
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)

	_, err = ReadBundle(strings.NewReader("{"))
	assert.Error(t, err)
}

func TestBundle_Adapter_Validation(t *testing.T) {
	base := func() *Bundle {
		return &Bundle{
			Columns:  []string{"a", "b"},
			Classes:  []string{"no", "yes"},
			NumClass: 0,
			Trees: []*Node{{
				NodeID: 0, Split: "a", SplitCondition: 1, Yes: 1, No: 2, Missing: 1,
				Children: []*Node{
					{NodeID: 1, Leaf: leaf(-0.4)},
					{NodeID: 2, Leaf: leaf(0.4)},
				},
			}},
		}
	}

	_, err := base().Adapter()
	require.NoError(t, err)

	b := base()
	b.Classes = []string{"only"}
	_, err = b.Adapter()
	assert.Error(t, err)

	b = base()
	b.Classes = []string{"x", "y", "z"}
	_, err = b.Adapter()
	assert.Error(t, err, "binary model with three labels")

	b = base()
	b.Trees[0].Split = "c"
	_, err = b.Adapter()
	assert.Error(t, err, "unknown split feature")

	b = base()
	b.Trees[0].No = 7
	_, err = b.Adapter()
	assert.Error(t, err, "dangling child")

	b = base()
	b.Trees[0].Children[1].NodeID = 1
	_, err = b.Adapter()
	assert.Error(t, err, "duplicate node id")

	b = base()
	b.NumClass = 3
	b.Classes = []string{"x", "y", "z"}
	_, err = b.Adapter()
	assert.Error(t, err, "tree count not a multiple of classes")

	b = base()
	b.Trees = nil
	_, err = b.Adapter()
	assert.Error(t, err)
}

func TestEnsemble_Binary(t *testing.T) {
	s, err := NewSchema([]string{"a", "b"})
	require.NoError(t, err)

	trees := []*Node{
		{NodeID: 0, Split: "f1", SplitCondition: 10, Yes: 1, No: 2, Missing: 2,
			Children: []*Node{{NodeID: 1, Leaf: leaf(-0.6)}, {NodeID: 2, Leaf: leaf(0.6)}}},
		{NodeID: 0, Leaf: leaf(0.1)},
	}
	e, err := NewEnsemble(trees, 0, 0.5, s)
	require.NoError(t, err)
	assert.Equal(t, 2, e.Classes())

	p, err := e.Predict([]float64{0, 5})
	require.NoError(t, err)
	assert.Equal(t, 0, p)

	p, err = e.Predict([]float64{0, 10})
	require.NoError(t, err)
	assert.Equal(t, 1, p, "split condition is strict less-than")

	p, err = e.Predict([]float64{0, math.NaN()})
	require.NoError(t, err)
	assert.Equal(t, 1, p, "missing value follows the missing branch")

	m, err := e.Margins([]float64{0, 5})
	require.NoError(t, err)
	assert.InDelta(t, -0.5, m[0], 1e-12)

	_, err = e.Predict([]float64{1})
	assert.Error(t, err)
}

func TestNode_JSONKeepsSplitFields(t *testing.T) {
	dump := `{"nodeid":0,"depth":0,"split":"Cara Ukur_STANDING","split_condition":0,"yes":1,"no":2,"missing":1,
		"children":[{"nodeid":1,"leaf":0},{"nodeid":2,"leaf":-0.25}]}`

	var root Node
	require.NoError(t, json.Unmarshal([]byte(dump), &root))
	require.Nil(t, root.Leaf)
	require.NotNil(t, root.Children[0].Leaf, "zero-valued leaf is still a leaf")

	out, err := json.Marshal(&root)
	require.NoError(t, err)
	assert.JSONEq(t, dump, string(out))

	var fields map[string]any
	require.NoError(t, json.Unmarshal(out, &fields))
	for _, k := range []string{"depth", "split_condition", "yes", "no", "missing"} {
		assert.Contains(t, fields, k)
	}
}

type fixedClassifier struct {
	class int
	err   error
	got   []float64
}

func (f *fixedClassifier) Predict(x []float64) (int, error) {
	f.got = x
	return f.class, f.err
}

func TestAdapter(t *testing.T) {
	s, err := NewSchema(trainingColumns)
	require.NoError(t, err)

	c := &fixedClassifier{class: 1}
	a, err := NewAdapter(s, c, LabelEncoder{"Normal", "Stunting"})
	require.NoError(t, err)

	got, err := a.Label(growth.Features{Sex: growth.Female, Value: 70, Method: growth.LyingDown, AgeMonths: 10, ZScore: -2.4})
	require.NoError(t, err)
	assert.Equal(t, "Stunting", got)
	assert.Equal(t, []float64{0, 70, 10, -2.4, 0}, c.got)

	c.class = 5
	_, err = a.Label(growth.Features{Sex: growth.Female, Value: 70, Method: growth.LyingDown})
	assert.Error(t, err)

	c.err = errors.New("boom")
	_, err = a.Label(growth.Features{Sex: growth.Female, Value: 70, Method: growth.LyingDown})
	assert.Error(t, err)

	_, err = NewAdapter(nil, c, LabelEncoder{"a"})
	assert.Error(t, err)
}

func TestAdapter_WithAssessor(t *testing.T) {
	a, err := Load(testBundle)
	require.NoError(t, err)

	rows := make([]growth.Row, 0)
	for m := 24; m <= 60; m++ {
		rows = append(rows, growth.Row{Month: float64(m), L: 1, M: 87.1 + 0.8*float64(m-24), S: 0.036})
	}
	var tables []*growth.Table
	for _, sex := range growth.Sexes {
		for _, std := range growth.Standards {
			r := rows
			if std == growth.Length {
				r = []growth.Row{{Month: 0, L: 1, M: 49.9, S: 0.038}}
			}
			tbl, err := growth.NewTable(sex, std, r)
			require.NoError(t, err)
			tables = append(tables, tbl)
		}
	}
	refs, err := growth.NewReferenceSet(tables...)
	require.NoError(t, err)

	as, err := growth.NewAssessor(refs, growth.WithLabeler(a))
	require.NoError(t, err)

	age, err := growth.AgeInMonths(30)
	require.NoError(t, err)
	res, err := as.Assess(growth.Subject{Sex: growth.Male, Value: 85, Method: growth.Standing, Age: age})
	require.NoError(t, err)
	assert.Equal(t, growth.Stunted, res.Category)
	assert.Equal(t, "Pendek", res.ModelLabel)
}

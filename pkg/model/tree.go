package model

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Node is one node of an XGBoost JSON tree dump (Booster.get_dump(dump_format="json")).
// A node with Leaf set is a leaf; every other node is a split.
type Node struct {
	NodeID         int      `json:"nodeid"`
	Depth          int      `json:"depth"`
	Split          string   `json:"split"`
	SplitCondition float64  `json:"split_condition"`
	Yes            int      `json:"yes"`
	No             int      `json:"no"`
	Missing        int      `json:"missing"`
	Leaf           *float64 `json:"leaf,omitempty"`
	Children       []*Node  `json:"children,omitempty"`
}

// MarshalJSON writes leaves as {nodeid, leaf} and splits with all branch fields, the
// shapes XGBoost dumps.
func (n *Node) MarshalJSON() ([]byte, error) {
	if n.Leaf != nil {
		return json.Marshal(struct {
			NodeID int     `json:"nodeid"`
			Leaf   float64 `json:"leaf"`
		}{n.NodeID, *n.Leaf})
	}
	type split Node
	return json.Marshal((*split)(n))
}

// tree is a dump flattened into arrays indexed by node id.
type tree struct {
	feature   []int
	threshold []float64
	yes       []int
	no        []int
	missing   []int
	leaf      []float64
	isLeaf    []bool
}

func compileTree(root *Node, schema *Schema) (*tree, error) {
	if root == nil {
		return nil, fmt.Errorf("empty tree")
	}

	var nodes []*Node
	var walk func(n *Node)
	walk = func(n *Node) {
		nodes = append(nodes, n)
		for _, c := range n.Children {
			if c != nil {
				walk(c)
			}
		}
	}
	walk(root)

	size := 0
	for _, n := range nodes {
		if n.NodeID < 0 {
			return nil, fmt.Errorf("negative node id %d", n.NodeID)
		}
		if n.NodeID+1 > size {
			size = n.NodeID + 1
		}
	}

	t := &tree{
		feature:   make([]int, size),
		threshold: make([]float64, size),
		yes:       make([]int, size),
		no:        make([]int, size),
		missing:   make([]int, size),
		leaf:      make([]float64, size),
		isLeaf:    make([]bool, size),
	}
	seen := make([]bool, size)
	for _, n := range nodes {
		id := n.NodeID
		if seen[id] {
			return nil, fmt.Errorf("duplicate node id %d", id)
		}
		seen[id] = true

		if n.Leaf != nil {
			t.isLeaf[id] = true
			t.leaf[id] = *n.Leaf
			continue
		}
		f, err := resolveFeature(n.Split, schema)
		if err != nil {
			return nil, fmt.Errorf("node %d: %w", id, err)
		}
		t.feature[id] = f
		t.threshold[id] = n.SplitCondition
		t.yes[id], t.no[id], t.missing[id] = n.Yes, n.No, n.Missing
	}

	for _, n := range nodes {
		if n.Leaf != nil {
			continue
		}
		for _, next := range []int{n.Yes, n.No, n.Missing} {
			if next < 0 || next >= size || !seen[next] {
				return nil, fmt.Errorf("node %d references missing node %d", n.NodeID, next)
			}
			if next <= n.NodeID {
				return nil, fmt.Errorf("node %d references earlier node %d", n.NodeID, next)
			}
		}
	}
	return t, nil
}

// resolveFeature maps a split name to a schema position. Dumps of models trained on a
// DataFrame use column names; others use f<index>.
func resolveFeature(split string, schema *Schema) (int, error) {
	if i, ok := schema.Index(split); ok {
		return i, nil
	}
	if strings.HasPrefix(split, "f") {
		if i, err := strconv.Atoi(split[1:]); err == nil && i >= 0 && i < schema.Len() {
			return i, nil
		}
	}
	return 0, fmt.Errorf("split feature %q is not in the schema", split)
}

// eval walks from the root to a leaf. A NaN feature takes the missing branch.
func (t *tree) eval(x []float64) float64 {
	id := 0
	for !t.isLeaf[id] {
		v := x[t.feature[id]]
		switch {
		case math.IsNaN(v):
			id = t.missing[id]
		case v < t.threshold[id]:
			id = t.yes[id]
		default:
			id = t.no[id]
		}
	}
	return t.leaf[id]
}

// Ensemble is a gradient-boosted tree classifier. For NumClass > 2 tree i contributes to
// class i % NumClass and the class with the largest margin wins; otherwise the summed margin
// is passed through the logistic function.
type Ensemble struct {
	trees     []*tree
	numClass  int
	baseScore float64
	width     int
}

// NewEnsemble compiles tree dumps against schema.
func NewEnsemble(roots []*Node, numClass int, baseScore float64, schema *Schema) (*Ensemble, error) {
	if len(roots) == 0 {
		return nil, fmt.Errorf("ensemble has no trees")
	}
	if numClass < 0 {
		return nil, fmt.Errorf("invalid class count %d", numClass)
	}
	if numClass > 2 && len(roots)%numClass != 0 {
		return nil, fmt.Errorf("%d trees do not divide into %d classes", len(roots), numClass)
	}
	e := &Ensemble{
		trees:     make([]*tree, len(roots)),
		numClass:  numClass,
		baseScore: baseScore,
		width:     schema.Len(),
	}
	for i, r := range roots {
		t, err := compileTree(r, schema)
		if err != nil {
			return nil, fmt.Errorf("tree %d: %w", i, err)
		}
		e.trees[i] = t
	}
	return e, nil
}

// Classes returns the number of output classes.
func (e *Ensemble) Classes() int {
	if e.numClass > 2 {
		return e.numClass
	}
	return 2
}

// Margins returns the raw per-class scores for x.
func (e *Ensemble) Margins(x []float64) ([]float64, error) {
	if len(x) != e.width {
		return nil, fmt.Errorf("expected %d features, got %d", e.width, len(x))
	}
	if e.numClass <= 2 {
		m := logit(e.baseScore)
		for _, t := range e.trees {
			m += t.eval(x)
		}
		return []float64{m}, nil
	}
	margins := make([]float64, e.numClass)
	for i := range margins {
		margins[i] = e.baseScore
	}
	for i, t := range e.trees {
		margins[i%e.numClass] += t.eval(x)
	}
	return margins, nil
}

// Predict returns the encoded class of x.
func (e *Ensemble) Predict(x []float64) (int, error) {
	m, err := e.Margins(x)
	if err != nil {
		return 0, err
	}
	if len(m) == 1 {
		if sigmoid(m[0]) > 0.5 {
			return 1, nil
		}
		return 0, nil
	}
	best := 0
	for i := 1; i < len(m); i++ {
		if m[i] > m[best] {
			best = i
		}
	}
	return best, nil
}

func sigmoid(x float64) float64 { return 1 / (1 + math.Exp(-x)) }

// logit converts a probability base score into a margin; 0 and 1 are not probabilities
// and contribute nothing.
func logit(p float64) float64 {
	if p <= 0 || p >= 1 {
		return 0
	}
	return math.Log(p / (1 - p))
}

package model

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
)

// Bundle is the serialized classifier: the training column order, the label encoder
// classes and the boosted trees.
type Bundle struct {
	Columns   []string `json:"columns"`
	Classes   []string `json:"classes"`
	NumClass  int      `json:"num_class"`
	BaseScore float64  `json:"base_score"`
	Trees     []*Node  `json:"trees"`
}

// ReadBundle reads a bundle from r.
func ReadBundle(r io.Reader) (*Bundle, error) {
	var b Bundle
	if err := json.NewDecoder(r).Decode(&b); err != nil {
		return nil, fmt.Errorf("decoding model bundle: %w", err)
	}
	return &b, nil
}

// Adapter compiles the bundle into a ready-to-use Adapter.
func (b *Bundle) Adapter() (*Adapter, error) {
	schema, err := NewSchema(b.Columns)
	if err != nil {
		return nil, fmt.Errorf("model columns: %w", err)
	}
	if len(b.Classes) < 2 {
		return nil, fmt.Errorf("model needs at least 2 classes, got %d", len(b.Classes))
	}
	e, err := NewEnsemble(b.Trees, b.NumClass, b.BaseScore, schema)
	if err != nil {
		return nil, err
	}
	if e.Classes() != len(b.Classes) {
		return nil, fmt.Errorf("model predicts %d classes but %d labels are defined",
			e.Classes(), len(b.Classes))
	}
	return NewAdapter(schema, e, LabelEncoder(b.Classes))
}

// Load reads the bundle at path and compiles it.
func Load(path string) (*Adapter, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening model %s: %w", path, err)
	}
	defer f.Close()

	b, err := ReadBundle(f)
	if err != nil {
		return nil, err
	}
	a, err := b.Adapter()
	if err != nil {
		return nil, fmt.Errorf("loading model %s: %w", path, err)
	}
	slog.Debug("model loaded", "path", path, "trees", len(b.Trees), "columns", len(b.Columns),
		"classes", len(b.Classes))
	return a, nil
}

package model

import (
	"fmt"
	"log/slog"

	"github.com/rafianfasaa/stunting/pkg/growth"
)

// Classifier predicts an encoded class from a feature vector in schema order.
type Classifier interface {
	Predict(x []float64) (int, error)
}

// Decoder turns an encoded class into its label.
type Decoder interface {
	Decode(raw int) (string, error)
}

// LabelEncoder maps class indices to labels in the order the encoder was fitted.
type LabelEncoder []string

func (l LabelEncoder) Decode(raw int) (string, error) {
	if raw < 0 || raw >= len(l) {
		return "", fmt.Errorf("class %d outside the %d known labels", raw, len(l))
	}
	return l[raw], nil
}

// Adapter aligns assessment features to a classifier's schema and decodes its output.
// It implements growth.Labeler.
type Adapter struct {
	schema     *Schema
	classifier Classifier
	decoder    Decoder
}

// NewAdapter returns an Adapter. All arguments are required.
func NewAdapter(schema *Schema, c Classifier, d Decoder) (*Adapter, error) {
	if schema == nil || c == nil || d == nil {
		return nil, fmt.Errorf("schema, classifier and decoder are required")
	}
	return &Adapter{schema: schema, classifier: c, decoder: d}, nil
}

// Schema returns the column schema the classifier was trained on.
func (a *Adapter) Schema() *Schema { return a.schema }

// Vector returns the aligned feature vector for f.
func (a *Adapter) Vector(f growth.Features) []float64 {
	vec, dropped := a.schema.Align(NewRecord(f))
	if len(dropped) > 0 {
		slog.Debug("features not in model schema", "columns", dropped)
	}
	return vec
}

func (a *Adapter) Label(f growth.Features) (string, error) {
	raw, err := a.classifier.Predict(a.Vector(f))
	if err != nil {
		return "", fmt.Errorf("predicting: %w", err)
	}
	label, err := a.decoder.Decode(raw)
	if err != nil {
		return "", fmt.Errorf("decoding: %w", err)
	}
	return label, nil
}

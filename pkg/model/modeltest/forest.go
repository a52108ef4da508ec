// Package modeltest provides a small fitted forest for tests.
package modeltest

import (
	"encoding/json"
	"os"
	"path/filepath"
	"slices"
	"testing"

	"github.com/mchmarny/dropout/pkg/model"
	"github.com/mchmarny/dropout/pkg/student"
)

// NewForest returns a two-tree forest over the encoder columns:
//
//	tree 1: 2nd sem approved <= 2.5 -> [1 9], else tuition up to date <= 0.5 -> [3 7], else [9 1]
//	tree 2: 2nd sem grade <= 9.95 -> [2 8], else [8 2]
func NewForest() *model.Forest {
	cols := student.Columns()
	approved := slices.Index(cols, student.ColSecondSemApproved)
	fees := slices.Index(cols, student.ColTuitionFeesUpToDate)
	grade := slices.Index(cols, student.ColSecondSemGrade)

	return &model.Forest{
		Name:     "dropout-test",
		Version:  "test",
		Classes:  []int{0, 1},
		Features: cols,
		Trees: []model.Tree{
			{Nodes: []model.Node{
				{Feature: approved, Threshold: 2.5, Left: 1, Right: 2},
				{Left: -1, Right: -1, Value: []float64{1, 9}},
				{Feature: fees, Threshold: 0.5, Left: 3, Right: 4},
				{Left: -1, Right: -1, Value: []float64{3, 7}},
				{Left: -1, Right: -1, Value: []float64{9, 1}},
			}},
			{Nodes: []model.Node{
				{Feature: grade, Threshold: 9.95, Left: 1, Right: 2},
				{Left: -1, Right: -1, Value: []float64{2, 8}},
				{Left: -1, Right: -1, Value: []float64{8, 2}},
			}},
		},
	}
}

// WriteForest writes f as JSON into dir and returns the file path.
func WriteForest(t *testing.T, dir string, f *model.Forest) string {
	t.Helper()
	b, err := json.Marshal(f)
	if err != nil {
		t.Fatalf("failed to marshal forest: %v", err)
	}
	path := filepath.Join(dir, "model.json")
	if err := os.WriteFile(path, b, 0600); err != nil {
		t.Fatalf("failed to write forest: %v", err)
	}
	return path
}

// NewService returns a service backed by NewForest written to a temp dir.
func NewService(t *testing.T) *model.Service {
	t.Helper()
	path := WriteForest(t, t.TempDir(), NewForest())
	return model.NewService(path)
}

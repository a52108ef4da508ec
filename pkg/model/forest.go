package model

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"slices"
)

const leafChild = -1

// Node is a single split or leaf of a fitted decision tree.
// Internal nodes send x[Feature] <= Threshold to Left, everything else to Right.
// Leaves have Left == -1 and carry the per-class distribution in Value.
type Node struct {
	Feature   int       `json:"feature"`
	Threshold float64   `json:"threshold"`
	Left      int       `json:"left"`
	Right     int       `json:"right"`
	Value     []float64 `json:"value,omitempty"`
}

func (n *Node) isLeaf() bool {
	return n.Left == leafChild
}

// Tree is a flat list of nodes; Nodes[0] is the root.
type Tree struct {
	Nodes []Node `json:"nodes"`
}

// Forest is the exported random forest classifier artifact.
type Forest struct {
	Name     string   `json:"name"`
	Version  string   `json:"version"`
	Classes  []int    `json:"classes"`
	Features []string `json:"features"`
	Trees    []Tree   `json:"trees"`
}

// Load decodes a forest artifact.
func Load(r io.Reader) (*Forest, error) {
	var f Forest
	if err := json.NewDecoder(r).Decode(&f); err != nil {
		return nil, fmt.Errorf("decoding model: %w", err)
	}
	return &f, nil
}

// LoadFile reads a forest artifact from path.
func LoadFile(path string) (*Forest, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening model file %s: %w", path, err)
	}
	defer file.Close()
	return Load(file)
}

// Validate checks the artifact structure and that its feature schema matches
// columns exactly, including order.
func (f *Forest) Validate(columns []string) error {
	if f == nil {
		return errors.New("model is nil")
	}
	if !slices.Equal(f.Classes, []int{0, 1}) {
		return fmt.Errorf("expected binary classes [0 1], got %v", f.Classes)
	}
	if !slices.Equal(f.Features, columns) {
		return fmt.Errorf("model features do not match encoder columns (model: %d, encoder: %d)",
			len(f.Features), len(columns))
	}
	if len(f.Trees) == 0 {
		return errors.New("model has no trees")
	}
	for i, t := range f.Trees {
		if err := t.validate(len(f.Features), len(f.Classes)); err != nil {
			return fmt.Errorf("tree %d: %w", i, err)
		}
	}
	return nil
}

func (t *Tree) validate(featureCount, classCount int) error {
	if len(t.Nodes) == 0 {
		return errors.New("no nodes")
	}
	for i, n := range t.Nodes {
		if n.isLeaf() {
			if len(n.Value) != classCount {
				return fmt.Errorf("leaf %d has %d class values, expected %d", i, len(n.Value), classCount)
			}
			if err := checkLeafValue(n.Value); err != nil {
				return fmt.Errorf("leaf %d: %w", i, err)
			}
			continue
		}
		if n.Feature < 0 || n.Feature >= featureCount {
			return fmt.Errorf("node %d feature index %d out of range", i, n.Feature)
		}
		if !isFinite(n.Threshold) {
			return fmt.Errorf("node %d has non-finite threshold", i)
		}
		// children always follow their parent in the exported order,
		// which also rules out cycles
		if n.Left <= i || n.Left >= len(t.Nodes) || n.Right <= i || n.Right >= len(t.Nodes) {
			return fmt.Errorf("node %d has invalid children %d/%d", i, n.Left, n.Right)
		}
	}
	return nil
}

// checkLeafValue requires non-negative finite class weights with a positive,
// finite total so the leaf normalises to a distribution.
func checkLeafValue(v []float64) error {
	var sum float64
	for c, w := range v {
		if !isFinite(w) || w < 0 {
			return fmt.Errorf("class %d weight %v is not a non-negative finite number", c, w)
		}
		sum += w
	}
	if !isFinite(sum) || sum <= 0 {
		return fmt.Errorf("class weights sum to %v", sum)
	}
	return nil
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// leaf drops x down the tree and returns the leaf it ends up in.
func (t *Tree) leaf(x []float64) *Node {
	cur := &t.Nodes[0]
	for !cur.isLeaf() {
		if x[cur.Feature] <= cur.Threshold {
			cur = &t.Nodes[cur.Left]
		} else {
			cur = &t.Nodes[cur.Right]
		}
	}
	return cur
}

// distribution returns the normalised class distribution of the leaf for x.
func (t *Tree) distribution(x []float64) []float64 {
	v := t.leaf(x).Value
	out := make([]float64, len(v))
	var sum float64
	for _, c := range v {
		sum += c
	}
	if sum == 0 {
		return out
	}
	for i, c := range v {
		out[i] = c / sum
	}
	return out
}

func (f *Forest) checkInput(x []float64) error {
	if len(x) != len(f.Features) {
		return fmt.Errorf("feature vector has %d values, model expects %d", len(x), len(f.Features))
	}
	return nil
}

// PredictProba returns the mean class distribution across all trees.
func (f *Forest) PredictProba(x []float64) ([]float64, error) {
	if err := f.checkInput(x); err != nil {
		return nil, err
	}
	proba := make([]float64, len(f.Classes))
	for i := range f.Trees {
		for c, p := range f.Trees[i].distribution(x) {
			proba[c] += p
		}
	}
	n := float64(len(f.Trees))
	for c := range proba {
		proba[c] /= n
	}
	return proba, nil
}

// Predict returns the most probable class. Ties go to the lower class.
func (f *Forest) Predict(x []float64) (int, error) {
	proba, err := f.PredictProba(x)
	if err != nil {
		return 0, err
	}
	best := 0
	for c := 1; c < len(proba); c++ {
		if proba[c] > proba[best] {
			best = c
		}
	}
	return f.Classes[best], nil
}

package model_test

import (
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mchmarny/dropout/pkg/model"
	"github.com/mchmarny/dropout/pkg/model/modeltest"
	"github.com/mchmarny/dropout/pkg/student"
)

func vector(t *testing.T, set func(*student.RawInput)) []float64 {
	t.Helper()
	r := student.DefaultInput()
	r.Debtor = student.No
	if set != nil {
		set(&r)
	}
	v, err := student.Encode(r)
	require.NoError(t, err)
	return v.Values()
}

func TestForest_Validate(t *testing.T) {
	f := modeltest.NewForest()
	require.NoError(t, f.Validate(student.Columns()))

	var nilForest *model.Forest
	assert.Error(t, nilForest.Validate(student.Columns()))
}

func TestForest_ValidateSchemaDrift(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*model.Forest)
	}{
		{"reordered", func(f *model.Forest) { f.Features[0], f.Features[1] = f.Features[1], f.Features[0] }},
		{"renamed", func(f *model.Forest) { f.Features[5] = "Nationality" }},
		{"missing", func(f *model.Forest) { f.Features = f.Features[:32] }},
		{"classes", func(f *model.Forest) { f.Classes = []int{0, 1, 2} }},
		{"no trees", func(f *model.Forest) { f.Trees = nil }},
		{"empty tree", func(f *model.Forest) { f.Trees[0].Nodes = nil }},
		{"bad feature", func(f *model.Forest) { f.Trees[0].Nodes[0].Feature = 33 }},
		{"bad child", func(f *model.Forest) { f.Trees[0].Nodes[0].Left = 0 }},
		{"bad leaf", func(f *model.Forest) { f.Trees[1].Nodes[1].Value = []float64{1} }},
		{"negative leaf", func(f *model.Forest) { f.Trees[1].Nodes[1].Value = []float64{-1, 1} }},
		{"nan leaf", func(f *model.Forest) { f.Trees[1].Nodes[1].Value = []float64{math.NaN(), 1} }},
		{"overflowing leaf", func(f *model.Forest) { f.Trees[0].Nodes[1].Value = []float64{math.MaxFloat64, math.MaxFloat64} }},
		{"empty leaf", func(f *model.Forest) { f.Trees[0].Nodes[1].Value = []float64{0, 0} }},
		{"nan threshold", func(f *model.Forest) { f.Trees[0].Nodes[0].Threshold = math.NaN() }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := modeltest.NewForest()
			tt.mutate(f)
			assert.Error(t, f.Validate(student.Columns()))
		})
	}
}

func TestForest_PredictProba(t *testing.T) {
	f := modeltest.NewForest()

	tests := []struct {
		name  string
		set   func(*student.RawInput)
		proba float64
		label int
	}{
		{"low", nil, 0.15, 0},
		{"medium", func(r *student.RawInput) { r.TuitionFeesUpToDate = student.No }, 0.45, 0},
		{"high", func(r *student.RawInput) {
			r.SecondSemApproved = 1
			r.SecondSemGrade = 5
		}, 0.85, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			x := vector(t, tt.set)
			p, err := f.PredictProba(x)
			require.NoError(t, err)
			require.Len(t, p, 2)
			assert.InDelta(t, tt.proba, p[1], 1e-9)
			assert.InDelta(t, 1.0, p[0]+p[1], 1e-9)

			label, err := f.Predict(x)
			require.NoError(t, err)
			assert.Equal(t, tt.label, label)
		})
	}
}

func TestForest_PredictTieGoesToLowerClass(t *testing.T) {
	f := modeltest.NewForest()
	f.Trees = []model.Tree{{Nodes: []model.Node{{Left: -1, Right: -1, Value: []float64{5, 5}}}}}

	label, err := f.Predict(vector(t, nil))
	require.NoError(t, err)
	assert.Equal(t, 0, label)
}

func TestForest_WrongVectorLength(t *testing.T) {
	f := modeltest.NewForest()
	_, err := f.PredictProba([]float64{1, 2, 3})
	assert.Error(t, err)
	_, err = f.Predict(nil)
	assert.Error(t, err)
}

func TestLoad(t *testing.T) {
	path := modeltest.WriteForest(t, t.TempDir(), modeltest.NewForest())
	f, err := model.LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "dropout-test", f.Name)
	assert.Len(t, f.Trees, 2)
	assert.NoError(t, f.Validate(student.Columns()))

	_, err = model.Load(strings.NewReader("{not json"))
	assert.Error(t, err)

	_, err = model.LoadFile(filepath.Join(t.TempDir(), "missing.json"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

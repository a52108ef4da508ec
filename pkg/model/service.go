package model

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"slices"
	"sync"

	"github.com/mchmarny/dropout/pkg/student"
)

const (
	// DefaultPath is where the training pipeline writes the exported classifier.
	DefaultPath = "model/model.json"

	dropoutClass = 1
	decisionCut  = 0.5
)

var (
	// ErrModelUnavailable is returned for every prediction once loading failed.
	ErrModelUnavailable = errors.New("model unavailable")

	// ErrInconsistentPrediction means the class label disagrees with its probability.
	ErrInconsistentPrediction = errors.New("inconsistent prediction")
)

// Classifier is a fitted binary classifier reading features positionally.
type Classifier interface {
	Predict(x []float64) (int, error)
	PredictProba(x []float64) ([]float64, error)
}

// Prediction is the model output for a single student.
type Prediction struct {
	Label       int     `json:"label" yaml:"label"`
	Probability float64 `json:"dropout_probability" yaml:"dropout_probability"`
}

// Status describes the loaded model for health checks and the dashboard.
type Status struct {
	Available bool   `json:"available" yaml:"available"`
	Path      string `json:"path" yaml:"path"`
	Name      string `json:"name,omitempty" yaml:"name,omitempty"`
	Version   string `json:"version,omitempty" yaml:"version,omitempty"`
	Trees     int    `json:"trees,omitempty" yaml:"trees,omitempty"`
	Error     string `json:"error,omitempty" yaml:"error,omitempty"`
}

// Service loads the classifier once per process and serves predictions.
// After the first load it is safe for concurrent use: the model is read-only.
type Service struct {
	path    string
	columns []string
	loader  func(path string) (*Forest, error)

	once   sync.Once
	model  Classifier
	forest *Forest
	err    error
}

// Option configures a Service.
type Option func(*Service)

// WithLoader replaces the artifact loader.
func WithLoader(fn func(path string) (*Forest, error)) Option {
	return func(s *Service) {
		s.loader = fn
	}
}

// WithClassifier serves predictions from an already constructed classifier,
// skipping artifact loading.
func WithClassifier(c Classifier) Option {
	return func(s *Service) {
		s.once.Do(func() {
			s.model = c
		})
	}
}

// NewService creates a service for the artifact at path. Nothing is read
// until Init or the first Predict.
func NewService(path string, opts ...Option) *Service {
	if path == "" {
		path = DefaultPath
	}
	s := &Service{
		path:    path,
		columns: student.Columns(),
		loader:  LoadFile,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Init loads the model if it has not been loaded yet and returns the load error.
// A failed load is permanent for the life of the service.
func (s *Service) Init() error {
	s.once.Do(s.load)
	return s.err
}

func (s *Service) load() {
	slog.Debug("loading model", "path", s.path)
	f, err := s.loader(s.path)
	if err != nil {
		s.err = fmt.Errorf("%w: %w", ErrModelUnavailable, err)
		slog.Error("failed to load model", "path", s.path, "error", err)
		return
	}
	if err := f.Validate(s.columns); err != nil {
		s.err = fmt.Errorf("%w: invalid artifact %s: %w", ErrModelUnavailable, s.path, err)
		slog.Error("model artifact rejected", "path", s.path, "error", err)
		return
	}
	s.forest = f
	s.model = f
	slog.Info("model loaded", "path", s.path, "name", f.Name, "version", f.Version, "trees", len(f.Trees))
}

// Status reports whether the model is available, loading it if needed.
func (s *Service) Status() *Status {
	err := s.Init()
	st := &Status{
		Available: err == nil,
		Path:      s.path,
	}
	if err != nil {
		st.Error = err.Error()
	}
	if s.forest != nil {
		st.Name = s.forest.Name
		st.Version = s.forest.Version
		st.Trees = len(s.forest.Trees)
	}
	return st
}

// Predict scores one encoded student.
func (s *Service) Predict(ctx context.Context, v student.FeatureVector) (*Prediction, error) {
	if err := s.Init(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !slices.Equal(v.Names(), s.columns) {
		return nil, fmt.Errorf("feature vector columns do not match model schema")
	}

	x := v.Values()
	proba, err := s.model.PredictProba(x)
	if err != nil {
		return nil, fmt.Errorf("predicting probability: %w", err)
	}
	if len(proba) <= dropoutClass {
		return nil, fmt.Errorf("model returned %d class probabilities", len(proba))
	}
	label, err := s.model.Predict(x)
	if err != nil {
		return nil, fmt.Errorf("predicting label: %w", err)
	}

	p := &Prediction{Label: label, Probability: proba[dropoutClass]}
	if err := p.check(); err != nil {
		return nil, err
	}
	return p, nil
}

// check asserts that the label is the one the probability implies.
func (p *Prediction) check() error {
	if math.IsNaN(p.Probability) || math.IsInf(p.Probability, 0) || p.Probability < 0 || p.Probability > 1 {
		return fmt.Errorf("%w: probability %v outside [0, 1]", ErrInconsistentPrediction, p.Probability)
	}
	switch p.Label {
	case dropoutClass:
		if p.Probability < decisionCut {
			return fmt.Errorf("%w: label %d with probability %v", ErrInconsistentPrediction, p.Label, p.Probability)
		}
	case 0:
		if p.Probability > decisionCut {
			return fmt.Errorf("%w: label %d with probability %v", ErrInconsistentPrediction, p.Label, p.Probability)
		}
	default:
		return fmt.Errorf("%w: unexpected label %d", ErrInconsistentPrediction, p.Label)
	}
	return nil
}

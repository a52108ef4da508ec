package assess

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/mchmarny/dropout/pkg/metrics"
	"github.com/mchmarny/dropout/pkg/model"
	"github.com/mchmarny/dropout/pkg/risk"
	"github.com/mchmarny/dropout/pkg/student"
)

const batchConcurrencyDefault = 4

// Predictor scores an encoded student.
type Predictor interface {
	Predict(ctx context.Context, v student.FeatureVector) (*model.Prediction, error)
}

// Recorder persists completed assessments.
type Recorder interface {
	Record(ctx context.Context, a *Assessment) error
}

// Assessment is the full result of scoring one submission.
type Assessment struct {
	ID          string                `json:"id" yaml:"id"`
	CreatedAt   time.Time             `json:"created_at" yaml:"created_at"`
	Input       student.RawInput      `json:"input" yaml:"input"`
	Features    student.FeatureVector `json:"features,omitempty" yaml:"features,omitempty"`
	Label       int                   `json:"label" yaml:"label"`
	Probability float64               `json:"dropout_probability" yaml:"dropout_probability"`
	Tier        risk.Tier             `json:"tier" yaml:"tier"`
	Factors     []string              `json:"factors" yaml:"factors"`
	Advice      risk.Recommendations  `json:"advice" yaml:"advice"`
}

// Percent formats the dropout probability the way the dashboard shows it.
func (a *Assessment) Percent() string {
	return fmt.Sprintf("%.1f%%", a.Probability*100)
}

// Assessor runs submissions through validation, encoding, scoring and tiering.
type Assessor struct {
	predictor Predictor
	recorder  Recorder
	now       func() time.Time
}

// Option configures an Assessor.
type Option func(*Assessor)

// WithRecorder saves every successful assessment.
func WithRecorder(r Recorder) Option {
	return func(a *Assessor) {
		a.recorder = r
	}
}

// WithClock overrides the assessment timestamp source.
func WithClock(now func() time.Time) Option {
	return func(a *Assessor) {
		a.now = now
	}
}

// New creates an Assessor backed by p.
func New(p Predictor, opts ...Option) *Assessor {
	a := &Assessor{
		predictor: p,
		now:       time.Now,
	}
	for _, o := range opts {
		o(a)
	}
	return a
}

// Assess scores a single submission. The input is validated as a whole before
// anything is encoded.
func (a *Assessor) Assess(ctx context.Context, in student.RawInput) (*Assessment, error) {
	start := time.Now()

	if err := in.Validate(); err != nil {
		metrics.ObserveRejection(metrics.ReasonValidation)
		return nil, err
	}

	vec, err := student.Encode(in)
	if err != nil {
		metrics.ObserveRejection(metrics.ReasonValidation)
		return nil, err
	}

	p, err := a.predictor.Predict(ctx, vec)
	if err != nil {
		if errors.Is(err, model.ErrModelUnavailable) {
			metrics.ObserveRejection(metrics.ReasonModel)
		} else {
			metrics.ObserveRejection(metrics.ReasonInternal)
		}
		return nil, fmt.Errorf("scoring student: %w", err)
	}

	tier := risk.Classify(p.Probability)
	res := &Assessment{
		ID:          uuid.NewString(),
		CreatedAt:   a.now().UTC(),
		Input:       in,
		Features:    vec,
		Label:       p.Label,
		Probability: p.Probability,
		Tier:        tier,
		Factors:     risk.Factors(in),
		Advice:      risk.Advice(tier),
	}

	metrics.ObservePrediction(tier.String(), time.Since(start))
	slog.Debug("student assessed",
		"id", res.ID,
		"probability", res.Probability,
		"tier", res.Tier.String(),
		"factors", len(res.Factors))

	if a.recorder != nil {
		if err := a.recorder.Record(ctx, res); err != nil {
			slog.Error("failed to record assessment", "id", res.ID, "error", err)
		}
	}

	return res, nil
}

// BatchResult is the outcome for one row of a batch.
type BatchResult struct {
	Index      int         `json:"index" yaml:"index"`
	Assessment *Assessment `json:"assessment,omitempty" yaml:"assessment,omitempty"`
	Err        error       `json:"-" yaml:"-"`
}

// AssessBatch scores inputs concurrently, at most concurrency at a time.
// Row failures are reported per result and do not stop the batch; only
// context cancellation does.
func (a *Assessor) AssessBatch(ctx context.Context, inputs []student.RawInput, concurrency int) ([]*BatchResult, error) {
	if concurrency < 1 {
		concurrency = batchConcurrencyDefault
	}

	results := make([]*BatchResult, len(inputs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	for i, in := range inputs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			res, err := a.Assess(gctx, in)
			results[i] = &BatchResult{Index: i, Assessment: res, Err: err}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("scoring batch: %w", err)
	}
	return results, nil
}

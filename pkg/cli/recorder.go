package cli

import (
	"context"
	"database/sql"

	"github.com/mchmarny/dropout/pkg/assess"
	"github.com/mchmarny/dropout/pkg/data"
)

// dbRecorder keeps assessment history in the app database.
type dbRecorder struct {
	db *sql.DB
}

func newDBRecorder(db *sql.DB) *dbRecorder {
	return &dbRecorder{db: db}
}

func (r *dbRecorder) Record(_ context.Context, a *assess.Assessment) error {
	return data.SavePrediction(r.db, toPrediction(a))
}

func toPrediction(a *assess.Assessment) *data.Prediction {
	return &data.Prediction{
		ID:          a.ID,
		CreatedAt:   a.CreatedAt,
		Course:      a.Input.Course,
		Age:         a.Input.Age,
		Label:       a.Label,
		Probability: a.Probability,
		Tier:        a.Tier.String(),
		Factors:     a.Factors,
		Input:       a.Input,
	}
}

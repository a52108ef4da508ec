package data

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/mchmarny/dropout/pkg/student"
)

const (
	ListLimitDefault = 100

	// fixed width so stored timestamps sort lexically
	timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

	insertPredictionSQL = `INSERT INTO prediction (id, created_at, course, age, label, probability, tier, factors, input)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	selectPredictionsSQL = `SELECT id, created_at, course, age, label, probability, tier, factors, input
		FROM prediction
		ORDER BY created_at DESC
		LIMIT ?
	`

	selectTierSummarySQL = `SELECT tier, COUNT(*) AS cnt, AVG(probability) AS avg_probability
		FROM prediction
		GROUP BY tier
		ORDER BY tier
	`

	deletePredictionsSQL = `DELETE FROM prediction`
)

// Prediction is a stored assessment.
type Prediction struct {
	ID          string           `json:"id" yaml:"id"`
	CreatedAt   time.Time        `json:"created_at" yaml:"created_at"`
	Course      string           `json:"course" yaml:"course"`
	Age         int              `json:"age" yaml:"age"`
	Label       int              `json:"label" yaml:"label"`
	Probability float64          `json:"dropout_probability" yaml:"dropout_probability"`
	Tier        string           `json:"tier" yaml:"tier"`
	Factors     []string         `json:"factors" yaml:"factors"`
	Input       student.RawInput `json:"input" yaml:"input"`
}

// TierCount summarises stored predictions for one tier.
type TierCount struct {
	Tier           string  `json:"tier" yaml:"tier"`
	Count          int64   `json:"count" yaml:"count"`
	AvgProbability float64 `json:"avg_probability" yaml:"avg_probability"`
}

// SavePrediction inserts p.
func SavePrediction(db *sql.DB, p *Prediction) error {
	if db == nil {
		return errDBNotInitialized
	}
	if p == nil || p.ID == "" {
		return fmt.Errorf("prediction with id required")
	}

	factors, err := json.Marshal(p.Factors)
	if err != nil {
		return fmt.Errorf("failed to marshal factors: %w", err)
	}
	input, err := json.Marshal(p.Input)
	if err != nil {
		return fmt.Errorf("failed to marshal input: %w", err)
	}

	stmt, err := db.Prepare(rebind(db, insertPredictionSQL))
	if err != nil {
		return fmt.Errorf("failed to prepare prediction insert statement: %w", err)
	}
	defer stmt.Close()

	if _, err := stmt.Exec(p.ID, p.CreatedAt.UTC().Format(timeLayout), p.Course, p.Age,
		p.Label, p.Probability, p.Tier, string(factors), string(input)); err != nil {
		return fmt.Errorf("failed to insert prediction %s: %w", p.ID, err)
	}
	return nil
}

// ListPredictions returns the most recent predictions first.
func ListPredictions(db *sql.DB, limit int) ([]*Prediction, error) {
	if db == nil {
		return nil, errDBNotInitialized
	}
	if limit <= 0 {
		limit = ListLimitDefault
	}

	rows, err := db.Query(rebind(db, selectPredictionsSQL), limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query predictions: %w", err)
	}
	defer rows.Close()

	list := make([]*Prediction, 0)
	for rows.Next() {
		var p Prediction
		var created, factors, input string
		if err := rows.Scan(&p.ID, &created, &p.Course, &p.Age, &p.Label, &p.Probability,
			&p.Tier, &factors, &input); err != nil {
			return nil, fmt.Errorf("failed to scan prediction row: %w", err)
		}
		if p.CreatedAt, err = time.Parse(timeLayout, created); err != nil {
			return nil, fmt.Errorf("failed to parse prediction time %q: %w", created, err)
		}
		if err := json.Unmarshal([]byte(factors), &p.Factors); err != nil {
			return nil, fmt.Errorf("failed to unmarshal factors: %w", err)
		}
		if err := json.Unmarshal([]byte(input), &p.Input); err != nil {
			return nil, fmt.Errorf("failed to unmarshal input: %w", err)
		}
		list = append(list, &p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate prediction rows: %w", err)
	}
	return list, nil
}

// GetTierSummary counts stored predictions per tier.
func GetTierSummary(db *sql.DB) ([]*TierCount, error) {
	if db == nil {
		return nil, errDBNotInitialized
	}

	rows, err := db.Query(selectTierSummarySQL)
	if err != nil {
		return nil, fmt.Errorf("failed to query tier summary: %w", err)
	}
	defer rows.Close()

	list := make([]*TierCount, 0)
	for rows.Next() {
		c := &TierCount{}
		if err := rows.Scan(&c.Tier, &c.Count, &c.AvgProbability); err != nil {
			return nil, fmt.Errorf("failed to scan tier summary row: %w", err)
		}
		list = append(list, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate tier summary rows: %w", err)
	}
	return list, nil
}

// DeletePredictions removes all stored predictions and returns how many were deleted.
func DeletePredictions(db *sql.DB) (int64, error) {
	if db == nil {
		return 0, errDBNotInitialized
	}
	res, err := db.Exec(deletePredictionsSQL)
	if err != nil {
		return 0, fmt.Errorf("failed to delete predictions: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to count deleted predictions: %w", err)
	}
	return n, nil
}

package data

import (
	"database/sql"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mchmarny/dropout/pkg/student"
)

func testPrediction(i int, tier string, p float64) *Prediction {
	in := student.DefaultInput()
	in.Course = "Nursing"
	return &Prediction{
		ID:          fmt.Sprintf("id-%02d", i),
		CreatedAt:   time.Date(2026, 3, 1, 10, 0, i, 0, time.UTC),
		Course:      in.Course,
		Age:         in.Age,
		Label:       0,
		Probability: p,
		Tier:        tier,
		Factors:     []string{"Student has debt"},
		Input:       in,
	}
}

func runPredictionStore(t *testing.T, db *sql.DB) {
	t.Helper()

	require.NoError(t, SavePrediction(db, testPrediction(1, "LOW", 0.1)))
	require.NoError(t, SavePrediction(db, testPrediction(2, "LOW", 0.2)))
	require.NoError(t, SavePrediction(db, testPrediction(3, "HIGH", 0.9)))

	list, err := ListPredictions(db, 10)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, "id-03", list[0].ID)
	assert.Equal(t, "id-01", list[2].ID)
	assert.Equal(t, []string{"Student has debt"}, list[0].Factors)
	assert.Equal(t, "Nursing", list[0].Input.Course)
	assert.True(t, time.Date(2026, 3, 1, 10, 0, 3, 0, time.UTC).Equal(list[0].CreatedAt))

	limited, err := ListPredictions(db, 1)
	require.NoError(t, err)
	assert.Len(t, limited, 1)

	summary, err := GetTierSummary(db)
	require.NoError(t, err)
	require.Len(t, summary, 2)
	assert.Equal(t, "HIGH", summary[0].Tier)
	assert.Equal(t, int64(1), summary[0].Count)
	assert.Equal(t, "LOW", summary[1].Tier)
	assert.Equal(t, int64(2), summary[1].Count)
	assert.InDelta(t, 0.15, summary[1].AvgProbability, 1e-9)

	// duplicate id
	assert.Error(t, SavePrediction(db, testPrediction(1, "LOW", 0.1)))

	n, err := DeletePredictions(db)
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)

	list, err = ListPredictions(db, 0)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestPredictionStore_SQLite(t *testing.T) {
	runPredictionStore(t, setupTestDB(t))
}

func TestPredictionStore_NilDB(t *testing.T) {
	assert.ErrorIs(t, SavePrediction(nil, testPrediction(1, "LOW", 0.1)), errDBNotInitialized)
	_, err := ListPredictions(nil, 1)
	assert.ErrorIs(t, err, errDBNotInitialized)
	_, err = GetTierSummary(nil)
	assert.ErrorIs(t, err, errDBNotInitialized)
	_, err = DeletePredictions(nil)
	assert.ErrorIs(t, err, errDBNotInitialized)
}

func TestSavePrediction_RequiresID(t *testing.T) {
	db := setupTestDB(t)
	p := testPrediction(1, "LOW", 0.1)
	p.ID = ""
	assert.Error(t, SavePrediction(db, p))
	assert.Error(t, SavePrediction(db, nil))
}

package results

import (
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quantum-menace/qtraj/internal/database"
)

func testRepo(t *testing.T) *Repository {
	t.Helper()
	db, err := database.New(database.Config{
		Path: filepath.Join(t.TempDir(), "results.db"),
		Name: "results",
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	repo, err := NewRepository(db, zerolog.Nop())
	require.NoError(t, err)
	return repo
}

func sampleEnsemble() *EnsembleResult {
	e := NewEnsembleResult([]float64{0, 0.5, 1}, nil)
	e.AvgTrace = []float64{1, 1.2, -0.3}
	e.Expect = map[string][]float64{"sigma_z": {1, 0.6, 0.4}}
	e.NumTrajectories = 100
	return e
}

func TestSaveAndGetRun(t *testing.T) {
	repo := testRepo(t)

	id, err := repo.SaveRun("eternal", sampleEnsemble())
	require.NoError(t, err)
	require.NotEmpty(t, id)

	rec, err := repo.GetRun(id)
	require.NoError(t, err)

	assert.Equal(t, "eternal", rec.Model)
	assert.Equal(t, 100, rec.Trajectories)
	assert.Equal(t, []float64{0, 0.5, 1}, rec.Times)
	assert.Equal(t, []float64{1, 1.2, -0.3}, rec.AvgTrace)
	assert.Equal(t, []float64{1, 0.6, 0.4}, rec.Expect["sigma_z"])
	assert.False(t, rec.CreatedAt.IsZero())
}

func TestGetRunMissing(t *testing.T) {
	repo := testRepo(t)
	_, err := repo.GetRun("no-such-id")
	assert.Error(t, err)
}

func TestListRuns(t *testing.T) {
	repo := testRepo(t)

	_, err := repo.SaveRun("eternal", sampleEnsemble())
	require.NoError(t, err)
	_, err = repo.SaveRun("damped-qubit", sampleEnsemble())
	require.NoError(t, err)

	records, err := repo.ListRuns()
	require.NoError(t, err)
	require.Len(t, records, 2)
	for _, rec := range records {
		assert.NotEmpty(t, rec.ID)
		assert.Equal(t, 100, rec.Trajectories)
	}
}

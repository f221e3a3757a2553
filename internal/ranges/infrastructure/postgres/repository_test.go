package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"

	"github.com/G-OrdiaD/GreenhouseSolution/internal/pipeline"
	ranges "github.com/G-OrdiaD/GreenhouseSolution/internal/ranges/domain"
	readings "github.com/G-OrdiaD/GreenhouseSolution/internal/readings/domain"
)

func newRepo(t *testing.T) (*RangeRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewRangeRepository(db), mock
}

func TestListBuildsSnapshot(t *testing.T) {
	repo, mock := newRepo(t)
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	mock.ExpectQuery("SELECT parameter, min_value, max_value, updated_at").
		WillReturnRows(sqlmock.NewRows([]string{"parameter", "min_value", "max_value", "updated_at"}).
			AddRow(readings.ParamTemperature, 18.0, 40.0, now).
			AddRow(readings.ParamPH, 6.0, nil, now))

	snapshot, err := repo.List(context.Background())
	require.NoError(t, err)
	require.Len(t, snapshot, 2)

	temp := snapshot[readings.ParamTemperature]
	require.Equal(t, 18.0, *temp.Min)
	require.Equal(t, 40.0, *temp.Max)

	ph := snapshot[readings.ParamPH]
	require.Equal(t, 6.0, *ph.Min)
	require.Nil(t, ph.Max)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSetUpsertsRange(t *testing.T) {
	repo, mock := newRepo(t)
	min, max := 16.0, 38.0
	mock.ExpectExec("INSERT INTO optimal_ranges").
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.Set(context.Background(), ranges.Range{
		Parameter: readings.ParamTemperature,
		Min:       &min,
		Max:       &max,
	})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSetRejectsInvalidRange(t *testing.T) {
	repo, mock := newRepo(t)
	min, max := 40.0, 18.0
	err := repo.Set(context.Background(), ranges.Range{
		Parameter: readings.ParamTemperature,
		Min:       &min,
		Max:       &max,
	})
	_, ok := pipeline.AsValidation(err)
	require.True(t, ok, "expected validation error, got %v", err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestApplyCommitsAllRows(t *testing.T) {
	repo, mock := newRepo(t)
	tempMin, tempMax := 16.0, 38.0
	humMin, humMax := 35.0, 75.0

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO optimal_ranges").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO optimal_ranges").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := repo.Apply(context.Background(), []ranges.Range{
		{Parameter: readings.ParamTemperature, Min: &tempMin, Max: &tempMax},
		{Parameter: readings.ParamHumidity, Min: &humMin, Max: &humMax},
	})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestApplyRollsBackOnMidFormFailure(t *testing.T) {
	repo, mock := newRepo(t)
	tempMin, tempMax := 16.0, 38.0
	humMin, humMax := 35.0, 75.0

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO optimal_ranges").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO optimal_ranges").WillReturnError(errors.New("disk full"))
	mock.ExpectRollback()

	err := repo.Apply(context.Background(), []ranges.Range{
		{Parameter: readings.ParamTemperature, Min: &tempMin, Max: &tempMax},
		{Parameter: readings.ParamHumidity, Min: &humMin, Max: &humMax},
	})
	require.Error(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestApplyValidatesBeforeTouchingStore(t *testing.T) {
	repo, mock := newRepo(t)
	min, max := 40.0, 18.0
	err := repo.Apply(context.Background(), []ranges.Range{
		{Parameter: readings.ParamTemperature, Min: &min, Max: &max},
	})
	_, ok := pipeline.AsValidation(err)
	require.True(t, ok, "expected validation error, got %v", err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestApplyEmptyIsNoOp(t *testing.T) {
	repo, mock := newRepo(t)
	require.NoError(t, repo.Apply(context.Background(), nil))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEnsureDefaultsSeedsEveryParameter(t *testing.T) {
	repo, mock := newRepo(t)
	defaults := ranges.Defaults()
	for range defaults {
		mock.ExpectExec("INSERT INTO optimal_ranges").
			WillReturnResult(sqlmock.NewResult(0, 1))
	}

	require.NoError(t, repo.EnsureDefaults(context.Background(), defaults))
	require.NoError(t, mock.ExpectationsWereMet())
}

package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/campus-issue-api/internal/models"
)

func TestAnalyticsRepositoryCountByStatusUsesLatestRecord(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewAnalyticsRepository(db)

	rows := sqlmock.NewRows([]string{"status", "count"}).
		AddRow(string(models.StatusResolved), 4).
		AddRow(string(models.StatusSubmitted), 2)
	mock.ExpectQuery("SELECT DISTINCT ON \\(issue_id\\)[\\s\\S]*ORDER BY count DESC").WillReturnRows(rows)

	counts, err := repo.CountByStatus(context.Background())
	require.NoError(t, err)
	require.Len(t, counts, 2)
	assert.Equal(t, 4, counts[0].Count)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAnalyticsRepositoryCountByCategoryOrdersByCount(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewAnalyticsRepository(db)

	rows := sqlmock.NewRows([]string{"category", "count"}).
		AddRow(string(models.CategoryGradeDispute), 5).
		AddRow(string(models.CategoryOther), 1)
	mock.ExpectQuery(regexp.QuoteMeta("GROUP BY category ORDER BY count DESC")).WillReturnRows(rows)

	counts, err := repo.CountByCategory(context.Background())
	require.NoError(t, err)
	require.Len(t, counts, 2)
	assert.Equal(t, 5, counts[0].Count)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAnalyticsRepositoryResolutionSamples(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewAnalyticsRepository(db)

	submitted := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	resolved := submitted.Add(2 * time.Hour)
	rows := sqlmock.NewRows([]string{"issue_id", "submitted_at", "resolved_at"}).
		AddRow("issue-1", submitted, resolved)
	mock.ExpectQuery("FROM issue_statuses s").WillReturnRows(rows)

	samples, err := repo.ResolutionSamples(context.Background())
	require.NoError(t, err)
	require.Len(t, samples, 1)
	assert.Equal(t, resolved, *samples[0].ResolvedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAnalyticsRepositoryTrendSamples(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewAnalyticsRepository(db)

	since := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows([]string{"issue_id", "created_at", "resolved_at"}).
		AddRow("issue-1", since.Add(24*time.Hour), nil)
	mock.ExpectQuery(regexp.QuoteMeta("WHERE i.created_at >= $1")).
		WithArgs(since).
		WillReturnRows(rows)

	samples, err := repo.TrendSamples(context.Background(), since)
	require.NoError(t, err)
	require.Len(t, samples, 1)
	assert.Nil(t, samples[0].ResolvedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/campus-issue-api/internal/models"
)

// AnalyticsRepository runs the aggregate queries behind the reporting
// endpoints. Aggregations that depend on rounding or bucketing rules return
// raw samples; the service applies the arithmetic.
type AnalyticsRepository struct {
	db *sqlx.DB
}

// NewAnalyticsRepository creates a new instance of AnalyticsRepository.
func NewAnalyticsRepository(db *sqlx.DB) *AnalyticsRepository {
	return &AnalyticsRepository{db: db}
}

// CountByStatus groups issues by their latest status record.
func (r *AnalyticsRepository) CountByStatus(ctx context.Context) ([]models.StatusCount, error) {
	const query = `WITH latest AS (
		SELECT DISTINCT ON (issue_id) issue_id, status
		FROM issue_statuses
		ORDER BY issue_id, created_at DESC, id DESC
	)
	SELECT status, COUNT(*) AS count FROM latest GROUP BY status ORDER BY count DESC`
	var counts []models.StatusCount
	if err := r.db.SelectContext(ctx, &counts, query); err != nil {
		return nil, fmt.Errorf("count issues by status: %w", err)
	}
	return counts, nil
}

// CountByCategory groups issues by category.
func (r *AnalyticsRepository) CountByCategory(ctx context.Context) ([]models.CategoryCount, error) {
	const query = `SELECT category, COUNT(*) AS count FROM issues GROUP BY category ORDER BY count DESC`
	var counts []models.CategoryCount
	if err := r.db.SelectContext(ctx, &counts, query); err != nil {
		return nil, fmt.Errorf("count issues by category: %w", err)
	}
	return counts, nil
}

// ResolutionSamples returns, for every resolved issue, the earliest SUBMITTED
// and earliest RESOLVED status timestamps.
func (r *AnalyticsRepository) ResolutionSamples(ctx context.Context) ([]models.ResolutionSample, error) {
	const query = `SELECT s.issue_id,
		MIN(s.created_at) FILTER (WHERE s.status = 'SUBMITTED') AS submitted_at,
		MIN(s.created_at) FILTER (WHERE s.status = 'RESOLVED') AS resolved_at
	FROM issue_statuses s
	GROUP BY s.issue_id
	HAVING MIN(s.created_at) FILTER (WHERE s.status = 'RESOLVED') IS NOT NULL`
	var samples []models.ResolutionSample
	if err := r.db.SelectContext(ctx, &samples, query); err != nil {
		return nil, fmt.Errorf("load resolution samples: %w", err)
	}
	return samples, nil
}

// FacultyIssueSamples returns one row per faculty member per assigned issue,
// with earliest ASSIGNED and earliest RESOLVED timestamps. Faculty with no
// assignments still appear with a NULL issue id.
func (r *AnalyticsRepository) FacultyIssueSamples(ctx context.Context) ([]models.FacultyIssueSample, error) {
	const query = `SELECT u.id AS faculty_id, u.full_name AS faculty_name, u.email AS faculty_email, i.id AS issue_id,
		(SELECT MIN(created_at) FROM issue_statuses WHERE issue_id = i.id AND status = 'ASSIGNED') AS assigned_at,
		(SELECT MIN(created_at) FROM issue_statuses WHERE issue_id = i.id AND status = 'RESOLVED') AS resolved_at
	FROM users u
	LEFT JOIN issues i ON i.assigned_to_id = u.id
	WHERE u.role = 'FACULTY' AND u.active = TRUE
	ORDER BY u.full_name ASC, i.created_at ASC`
	var samples []models.FacultyIssueSample
	if err := r.db.SelectContext(ctx, &samples, query); err != nil {
		return nil, fmt.Errorf("load faculty issue samples: %w", err)
	}
	return samples, nil
}

// TrendSamples returns issues created since the cutoff with their earliest
// RESOLVED timestamp, for the trend bucketing in the service.
func (r *AnalyticsRepository) TrendSamples(ctx context.Context, since time.Time) ([]models.TrendSample, error) {
	const query = `SELECT i.id AS issue_id, i.created_at,
		(SELECT MIN(created_at) FROM issue_statuses WHERE issue_id = i.id AND status = 'RESOLVED') AS resolved_at
	FROM issues i
	WHERE i.created_at >= $1
	ORDER BY i.created_at ASC`
	var samples []models.TrendSample
	if err := r.db.SelectContext(ctx, &samples, query, since); err != nil {
		return nil, fmt.Errorf("load trend samples: %w", err)
	}
	return samples, nil
}

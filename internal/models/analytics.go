package models

import "time"

// StatusCount is one row of the count-by-status rollup. The status is taken
// from each issue's most recent status record.
type StatusCount struct {
	Status StatusType `db:"status" json:"status"`
	Count  int        `db:"count" json:"count"`
}

// CategoryCount is one row of the count-by-category rollup.
type CategoryCount struct {
	Category Category `db:"category" json:"category"`
	Count    int      `db:"count" json:"count"`
}

// ResolutionTime reports the average hours between an issue's earliest
// SUBMITTED and earliest RESOLVED records across resolved issues.
type ResolutionTime struct {
	AverageTimeInHours float64 `json:"averageTimeInHours"`
	TotalResolved      int     `json:"totalResolved"`
}

// FacultyPerformance summarises one faculty member's workload.
type FacultyPerformance struct {
	Faculty                      UserRef `json:"faculty"`
	AssignedIssues               int     `json:"assignedIssues"`
	ResolvedIssues               int     `json:"resolvedIssues"`
	ResolutionRate               float64 `json:"resolutionRate"`
	AverageResolutionTimeInHours float64 `json:"averageResolutionTimeInHours"`
}

// TrendPoint is one date bucket in the created/resolved trend series.
type TrendPoint struct {
	Date     string `json:"date"`
	Created  int    `json:"created"`
	Resolved int    `json:"resolved"`
}

// TrendPeriod selects the lookback window for trend queries.
type TrendPeriod string

const (
	TrendWeek  TrendPeriod = "week"
	TrendMonth TrendPeriod = "month"
	TrendYear  TrendPeriod = "year"
)

// ResolutionSample pairs one resolved issue's earliest SUBMITTED and earliest
// RESOLVED status timestamps.
type ResolutionSample struct {
	IssueID     string     `db:"issue_id" json:"issue_id"`
	SubmittedAt *time.Time `db:"submitted_at" json:"submitted_at"`
	ResolvedAt  *time.Time `db:"resolved_at" json:"resolved_at"`
}

// FacultyIssueSample is one (faculty, assigned issue) pair used to derive
// performance metrics. IssueID is nil for faculty with no assignments.
type FacultyIssueSample struct {
	FacultyID    string     `db:"faculty_id" json:"faculty_id"`
	FacultyName  string     `db:"faculty_name" json:"faculty_name"`
	FacultyEmail string     `db:"faculty_email" json:"faculty_email"`
	IssueID      *string    `db:"issue_id" json:"issue_id"`
	AssignedAt   *time.Time `db:"assigned_at" json:"assigned_at"`
	ResolvedAt   *time.Time `db:"resolved_at" json:"resolved_at"`
}

// TrendSample is one issue inside the trend lookback window.
type TrendSample struct {
	IssueID    string     `db:"issue_id" json:"issue_id"`
	CreatedAt  time.Time  `db:"created_at" json:"created_at"`
	ResolvedAt *time.Time `db:"resolved_at" json:"resolved_at"`
}

// SystemMetrics is a lightweight instrumentation snapshot surfaced on the
// admin analytics dashboard.
type SystemMetrics struct {
	CacheHitRatio            float64   `json:"cache_hit_ratio"`
	CacheHits                uint64    `json:"cache_hits"`
	CacheMisses              uint64    `json:"cache_misses"`
	RequestsTotal            uint64    `json:"requests_total"`
	AverageRequestDurationMs float64   `json:"avg_request_duration_ms"`
	DBQueryCount             uint64    `json:"db_query_count"`
	AverageDBQueryDurationMs float64   `json:"avg_db_query_duration_ms"`
	Goroutines               int       `json:"goroutines"`
	GeneratedAt              time.Time `json:"generated_at"`
}

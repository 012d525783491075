package service

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/campus-issue-api/internal/models"
	appErrors "github.com/noah-isme/campus-issue-api/pkg/errors"
)

type analyticsRepository interface {
	CountByStatus(ctx context.Context) ([]models.StatusCount, error)
	CountByCategory(ctx context.Context) ([]models.CategoryCount, error)
	ResolutionSamples(ctx context.Context) ([]models.ResolutionSample, error)
	FacultyIssueSamples(ctx context.Context) ([]models.FacultyIssueSample, error)
	TrendSamples(ctx context.Context, since time.Time) ([]models.TrendSample, error)
}

// AnalyticsService aggregates reporting datasets for admins, with cache
// integration. Averages are computed here rather than in SQL so the rounding
// rules stay in one place.
type AnalyticsService struct {
	repo     analyticsRepository
	cache    *CacheService
	metrics  *MetricsService
	cacheTTL time.Duration
	logger   *zap.Logger
	now      func() time.Time
}

// NewAnalyticsService constructs an analytics service.
func NewAnalyticsService(repo analyticsRepository, cache *CacheService, metrics *MetricsService, cacheTTL time.Duration, logger *zap.Logger) *AnalyticsService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AnalyticsService{repo: repo, cache: cache, metrics: metrics, cacheTTL: cacheTTL, logger: logger, now: time.Now}
}

// StatusCounts groups issues by their latest status record. The boolean
// indicates whether data originated from cache.
func (s *AnalyticsService) StatusCounts(ctx context.Context, actor *models.JWTClaims) ([]models.StatusCount, bool, error) {
	if err := s.requireAdmin(actor); err != nil {
		return nil, false, err
	}

	cacheKey := makeAnalyticsCacheKey("status-counts")
	var cached []models.StatusCount
	if s.cache != nil {
		if hit, err := s.cache.Get(ctx, cacheKey, &cached); err == nil && hit {
			return cached, true, nil
		}
	}

	start := time.Now()
	counts, err := s.repo.CountByStatus(ctx)
	if err != nil {
		return nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to aggregate status counts")
	}
	if s.metrics != nil {
		s.metrics.ObserveDBQuery("analytics_status_counts", time.Since(start))
	}
	if counts == nil {
		counts = []models.StatusCount{}
	}
	s.cacheSet(ctx, cacheKey, counts)
	return counts, false, nil
}

// CategoryCounts groups issues by category.
func (s *AnalyticsService) CategoryCounts(ctx context.Context, actor *models.JWTClaims) ([]models.CategoryCount, bool, error) {
	if err := s.requireAdmin(actor); err != nil {
		return nil, false, err
	}

	cacheKey := makeAnalyticsCacheKey("category-counts")
	var cached []models.CategoryCount
	if s.cache != nil {
		if hit, err := s.cache.Get(ctx, cacheKey, &cached); err == nil && hit {
			return cached, true, nil
		}
	}

	start := time.Now()
	counts, err := s.repo.CountByCategory(ctx)
	if err != nil {
		return nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to aggregate category counts")
	}
	if s.metrics != nil {
		s.metrics.ObserveDBQuery("analytics_category_counts", time.Since(start))
	}
	if counts == nil {
		counts = []models.CategoryCount{}
	}
	s.cacheSet(ctx, cacheKey, counts)
	return counts, false, nil
}

// ResolutionTime reports the average hours from each resolved issue's
// earliest SUBMITTED record to its earliest RESOLVED record, rounded to one
// decimal. With no resolved issues it returns zeros rather than an error.
func (s *AnalyticsService) ResolutionTime(ctx context.Context, actor *models.JWTClaims) (*models.ResolutionTime, bool, error) {
	if err := s.requireAdmin(actor); err != nil {
		return nil, false, err
	}

	cacheKey := makeAnalyticsCacheKey("resolution-time")
	var cached models.ResolutionTime
	if s.cache != nil {
		if hit, err := s.cache.Get(ctx, cacheKey, &cached); err == nil && hit {
			return &cached, true, nil
		}
	}

	start := time.Now()
	samples, err := s.repo.ResolutionSamples(ctx)
	if err != nil {
		return nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load resolution samples")
	}
	if s.metrics != nil {
		s.metrics.ObserveDBQuery("analytics_resolution_time", time.Since(start))
	}

	result := computeResolutionTime(samples)
	s.cacheSet(ctx, cacheKey, result)
	return result, false, nil
}

// FacultyPerformance summarises assigned/resolved workloads per faculty
// member. Resolution time runs from the earliest ASSIGNED record to the
// earliest RESOLVED record of each issue.
func (s *AnalyticsService) FacultyPerformance(ctx context.Context, actor *models.JWTClaims) ([]models.FacultyPerformance, bool, error) {
	if err := s.requireAdmin(actor); err != nil {
		return nil, false, err
	}

	cacheKey := makeAnalyticsCacheKey("faculty-performance")
	var cached []models.FacultyPerformance
	if s.cache != nil {
		if hit, err := s.cache.Get(ctx, cacheKey, &cached); err == nil && hit {
			return cached, true, nil
		}
	}

	start := time.Now()
	samples, err := s.repo.FacultyIssueSamples(ctx)
	if err != nil {
		return nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load faculty samples")
	}
	if s.metrics != nil {
		s.metrics.ObserveDBQuery("analytics_faculty_performance", time.Since(start))
	}

	result := computeFacultyPerformance(samples)
	s.cacheSet(ctx, cacheKey, result)
	return result, false, nil
}

// Trends returns created/resolved counts per date bucket for the requested
// period. The week window walks back day by day; so does the month window.
// The year window steps in 30-day increments, so only issues falling exactly
// on a step date are counted.
func (s *AnalyticsService) Trends(ctx context.Context, actor *models.JWTClaims, period models.TrendPeriod) ([]models.TrendPoint, bool, error) {
	if err := s.requireAdmin(actor); err != nil {
		return nil, false, err
	}

	days, step, err := trendWindow(period)
	if err != nil {
		return nil, false, err
	}

	cacheKey := makeAnalyticsCacheKey("trends", string(period))
	var cached []models.TrendPoint
	if s.cache != nil {
		if hit, err := s.cache.Get(ctx, cacheKey, &cached); err == nil && hit {
			return cached, true, nil
		}
	}

	now := s.now().UTC()
	since := now.AddDate(0, 0, -days)

	start := time.Now()
	samples, err := s.repo.TrendSamples(ctx, since)
	if err != nil {
		return nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load trend samples")
	}
	if s.metrics != nil {
		s.metrics.ObserveDBQuery("analytics_trends", time.Since(start))
	}

	points := bucketTrends(samples, now, days, step)
	s.cacheSet(ctx, cacheKey, points)
	return points, false, nil
}

// SystemMetrics returns the instrumentation snapshot.
func (s *AnalyticsService) SystemMetrics() models.SystemMetrics {
	if s.metrics == nil {
		return models.SystemMetrics{}
	}
	return s.metrics.Snapshot()
}

func (s *AnalyticsService) requireAdmin(actor *models.JWTClaims) error {
	if actor == nil {
		return appErrors.Clone(appErrors.ErrUnauthorized, "authentication required")
	}
	if actor.Role != models.RoleAdmin {
		return appErrors.Clone(appErrors.ErrForbidden, "analytics are restricted to admins")
	}
	return nil
}

func (s *AnalyticsService) cacheSet(ctx context.Context, key string, value interface{}) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Set(ctx, key, value, s.cacheTTL); err != nil {
		s.logger.Warn("cache analytics", zap.String("key", key), zap.Error(err))
	}
}

func computeResolutionTime(samples []models.ResolutionSample) *models.ResolutionTime {
	result := &models.ResolutionTime{}
	var totalHours float64
	for _, sample := range samples {
		if sample.ResolvedAt == nil {
			continue
		}
		result.TotalResolved++
		if sample.SubmittedAt != nil {
			totalHours += sample.ResolvedAt.Sub(*sample.SubmittedAt).Hours()
		}
	}
	if result.TotalResolved > 0 {
		result.AverageTimeInHours = roundTenth(totalHours / float64(result.TotalResolved))
	}
	return result
}

func computeFacultyPerformance(samples []models.FacultyIssueSample) []models.FacultyPerformance {
	order := make([]string, 0)
	byFaculty := make(map[string]*models.FacultyPerformance)
	hours := make(map[string]float64)
	timed := make(map[string]int)

	for _, sample := range samples {
		perf, ok := byFaculty[sample.FacultyID]
		if !ok {
			perf = &models.FacultyPerformance{
				Faculty: models.UserRef{
					ID:       sample.FacultyID,
					FullName: sample.FacultyName,
					Email:    sample.FacultyEmail,
					Role:     models.RoleFaculty,
				},
			}
			byFaculty[sample.FacultyID] = perf
			order = append(order, sample.FacultyID)
		}
		if sample.IssueID == nil {
			continue
		}
		perf.AssignedIssues++
		if sample.ResolvedAt != nil {
			perf.ResolvedIssues++
			if sample.AssignedAt != nil {
				hours[sample.FacultyID] += sample.ResolvedAt.Sub(*sample.AssignedAt).Hours()
				timed[sample.FacultyID]++
			}
		}
	}

	result := make([]models.FacultyPerformance, 0, len(order))
	for _, id := range order {
		perf := byFaculty[id]
		if perf.AssignedIssues > 0 {
			perf.ResolutionRate = roundTenth(float64(perf.ResolvedIssues) / float64(perf.AssignedIssues) * 100)
		}
		if timed[id] > 0 {
			perf.AverageResolutionTimeInHours = roundTenth(hours[id] / float64(timed[id]))
		}
		result = append(result, *perf)
	}
	return result
}

func trendWindow(period models.TrendPeriod) (days, step int, err error) {
	switch period {
	case models.TrendWeek, "":
		return 7, 1, nil
	case models.TrendMonth:
		return 30, 1, nil
	case models.TrendYear:
		return 365, 30, nil
	}
	return 0, 0, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown trend period %q", period))
}

func bucketTrends(samples []models.TrendSample, now time.Time, days, step int) []models.TrendPoint {
	const dateLayout = "2006-01-02"

	var points []models.TrendPoint
	index := make(map[string]int)
	for i := days; i >= 0; i -= step {
		date := now.AddDate(0, 0, -i).Format(dateLayout)
		index[date] = len(points)
		points = append(points, models.TrendPoint{Date: date})
	}

	for _, sample := range samples {
		if i, ok := index[sample.CreatedAt.UTC().Format(dateLayout)]; ok {
			points[i].Created++
		}
		if sample.ResolvedAt != nil {
			if i, ok := index[sample.ResolvedAt.UTC().Format(dateLayout)]; ok {
				points[i].Resolved++
			}
		}
	}
	return points
}

func roundTenth(v float64) float64 {
	return math.Round(v*10) / 10
}

func makeAnalyticsCacheKey(parts ...string) string {
	var builder strings.Builder
	builder.Grow(len(parts) * 16)
	builder.WriteString("analytics")
	for _, part := range parts {
		if part == "" {
			continue
		}
		builder.WriteByte(':')
		builder.WriteString(strings.ReplaceAll(part, ":", "|"))
	}
	return builder.String()
}

package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/campus-issue-api/internal/models"
)

// IssueRepository provides database access for issues, their append-only
// status history, and comments. Lifecycle mutations write their notification
// outbox intents in the same transaction as the primary rows.
type IssueRepository struct {
	db *sqlx.DB
}

// NewIssueRepository creates a new instance of IssueRepository.
func NewIssueRepository(db *sqlx.DB) *IssueRepository {
	return &IssueRepository{db: db}
}

const issueColumns = `id, title, description, category, priority, submitted_by_id, assigned_to_id, created_at, updated_at`

// Create persists the issue, its initial SUBMITTED status record and the
// fan-out intents as one atomic unit.
func (r *IssueRepository) Create(ctx context.Context, issue *models.Issue, initial *models.IssueStatus, intents []models.NotificationIntent) error {
	if issue.ID == "" {
		issue.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if issue.CreatedAt.IsZero() {
		issue.CreatedAt = now
	}
	issue.UpdatedAt = now

	initial.ID = uuid.NewString()
	initial.IssueID = issue.ID
	if initial.CreatedAt.IsZero() {
		initial.CreatedAt = now
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin create issue tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	const issueQuery = `INSERT INTO issues (id, title, description, category, priority, submitted_by_id, assigned_to_id, created_at, updated_at) VALUES (:id, :title, :description, :category, :priority, :submitted_by_id, :assigned_to_id, :created_at, :updated_at)`
	if _, err := tx.NamedExecContext(ctx, issueQuery, issue); err != nil {
		return fmt.Errorf("create issue: %w", err)
	}

	if err := insertStatusTx(ctx, tx, initial); err != nil {
		return err
	}

	if err := insertIntentsTx(ctx, tx, intents); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit create issue tx: %w", err)
	}
	return nil
}

// AppendStatus adds a status record, optionally updates the assignee column,
// and writes the fan-out intents, all in one transaction.
func (r *IssueRepository) AppendStatus(ctx context.Context, status *models.IssueStatus, assignToID *string, intents []models.NotificationIntent) error {
	if status.ID == "" {
		status.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if status.CreatedAt.IsZero() {
		status.CreatedAt = now
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin append status tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if err := insertStatusTx(ctx, tx, status); err != nil {
		return err
	}

	if assignToID != nil {
		const assignQuery = `UPDATE issues SET assigned_to_id = $2, updated_at = $3 WHERE id = $1`
		if _, err := tx.ExecContext(ctx, assignQuery, status.IssueID, *assignToID, now); err != nil {
			return fmt.Errorf("update issue assignee: %w", err)
		}
	}

	if err := insertIntentsTx(ctx, tx, intents); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit append status tx: %w", err)
	}
	return nil
}

// AddComment persists a comment together with its fan-out intents.
func (r *IssueRepository) AddComment(ctx context.Context, comment *models.Comment, intents []models.NotificationIntent) error {
	if comment.ID == "" {
		comment.ID = uuid.NewString()
	}
	if comment.CreatedAt.IsZero() {
		comment.CreatedAt = time.Now().UTC()
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin add comment tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	const commentQuery = `INSERT INTO comments (id, issue_id, user_id, content, created_at) VALUES (:id, :issue_id, :user_id, :content, :created_at)`
	if _, err := tx.NamedExecContext(ctx, commentQuery, comment); err != nil {
		return fmt.Errorf("create comment: %w", err)
	}

	if err := insertIntentsTx(ctx, tx, intents); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit add comment tx: %w", err)
	}
	return nil
}

// FindByID returns a bare issue row.
func (r *IssueRepository) FindByID(ctx context.Context, id string) (*models.Issue, error) {
	query := fmt.Sprintf(`SELECT %s FROM issues WHERE id = $1 LIMIT 1`, issueColumns)
	var issue models.Issue
	if err := r.db.GetContext(ctx, &issue, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find issue by id: %w", err)
	}
	return &issue, nil
}

// GetDetail loads the issue with its full status history (newest first),
// comments (oldest first) and attachment metadata.
func (r *IssueRepository) GetDetail(ctx context.Context, id string) (*models.IssueDetail, error) {
	issue, err := r.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	detail := &models.IssueDetail{Issue: *issue}

	const submitterQuery = `SELECT id, full_name, email, role FROM users WHERE id = $1`
	if err := r.db.GetContext(ctx, &detail.SubmittedBy, submitterQuery, issue.SubmittedByID); err != nil {
		return nil, fmt.Errorf("load issue submitter: %w", err)
	}
	if issue.AssignedToID != nil {
		var assignee models.UserRef
		if err := r.db.GetContext(ctx, &assignee, submitterQuery, *issue.AssignedToID); err != nil {
			return nil, fmt.Errorf("load issue assignee: %w", err)
		}
		detail.AssignedTo = &assignee
	}

	const statusQuery = `SELECT id, issue_id, status, notes, updated_by_id, created_at FROM issue_statuses WHERE issue_id = $1 ORDER BY created_at DESC, id DESC`
	if err := r.db.SelectContext(ctx, &detail.Statuses, statusQuery, id); err != nil {
		return nil, fmt.Errorf("load issue statuses: %w", err)
	}

	const commentQuery = `SELECT id, issue_id, user_id, content, created_at FROM comments WHERE issue_id = $1 ORDER BY created_at ASC`
	if err := r.db.SelectContext(ctx, &detail.Comments, commentQuery, id); err != nil {
		return nil, fmt.Errorf("load issue comments: %w", err)
	}

	const attachmentQuery = `SELECT id, issue_id, filename, path, mime_type, size, created_at FROM attachments WHERE issue_id = $1 ORDER BY created_at ASC`
	if err := r.db.SelectContext(ctx, &detail.Attachments, attachmentQuery, id); err != nil {
		return nil, fmt.Errorf("load issue attachments: %w", err)
	}

	return detail, nil
}

type issueListRow struct {
	models.Issue
	LatestStatus   models.StatusType `db:"latest_status"`
	LatestStatusAt time.Time         `db:"latest_status_at"`
	SubmitterName  string            `db:"submitter_name"`
	SubmitterEmail string            `db:"submitter_email"`
	AssigneeName   *string           `db:"assignee_name"`
	AssigneeEmail  *string           `db:"assignee_email"`
}

// List returns a filtered, paginated page of issues annotated with their
// latest status record, plus the unpaginated total. Filters combine with AND;
// the status filter matches the latest record only. No authorization is
// applied here; callers scope submitted_by/assigned_to themselves.
func (r *IssueRepository) List(ctx context.Context, filter models.IssueFilter) ([]models.IssueSummary, int, error) {
	baseQuery := ` FROM issues i
		JOIN LATERAL (
			SELECT status, created_at FROM issue_statuses
			WHERE issue_id = i.id
			ORDER BY created_at DESC, id DESC
			LIMIT 1
		) ls ON TRUE
		JOIN users su ON su.id = i.submitted_by_id
		LEFT JOIN users au ON au.id = i.assigned_to_id
		WHERE 1=1`

	var conditions []string
	var args []interface{}

	if filter.Status != nil {
		conditions = append(conditions, fmt.Sprintf("ls.status = $%d", len(args)+1))
		args = append(args, *filter.Status)
	}
	if filter.Category != nil {
		conditions = append(conditions, fmt.Sprintf("i.category = $%d", len(args)+1))
		args = append(args, *filter.Category)
	}
	if filter.Priority != nil {
		conditions = append(conditions, fmt.Sprintf("i.priority = $%d", len(args)+1))
		args = append(args, *filter.Priority)
	}
	if filter.Search != "" {
		conditions = append(conditions, fmt.Sprintf("(i.title ILIKE $%d OR i.description ILIKE $%d)", len(args)+1, len(args)+1))
		args = append(args, "%"+filter.Search+"%")
	}
	if filter.AssignedToID != "" {
		conditions = append(conditions, fmt.Sprintf("i.assigned_to_id = $%d", len(args)+1))
		args = append(args, filter.AssignedToID)
	}
	if filter.SubmittedByID != "" {
		conditions = append(conditions, fmt.Sprintf("i.submitted_by_id = $%d", len(args)+1))
		args = append(args, filter.SubmittedByID)
	}

	if len(conditions) > 0 {
		baseQuery += " AND " + strings.Join(conditions, " AND ")
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	limit := filter.Limit
	if limit <= 0 || limit > 100 {
		limit = 10
	}
	offset := (page - 1) * limit

	listQuery := fmt.Sprintf(`SELECT i.id, i.title, i.description, i.category, i.priority, i.submitted_by_id, i.assigned_to_id, i.created_at, i.updated_at,
		ls.status AS latest_status, ls.created_at AS latest_status_at,
		su.full_name AS submitter_name, su.email AS submitter_email,
		au.full_name AS assignee_name, au.email AS assignee_email%s ORDER BY i.created_at DESC LIMIT %d OFFSET %d`, baseQuery, limit, offset)

	var rows []issueListRow
	if err := r.db.SelectContext(ctx, &rows, listQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("list issues: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*)%s", baseQuery)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count issues: %w", err)
	}

	summaries := make([]models.IssueSummary, 0, len(rows))
	for _, row := range rows {
		summary := models.IssueSummary{
			Issue:          row.Issue,
			LatestStatus:   row.LatestStatus,
			LatestStatusAt: row.LatestStatusAt,
			SubmittedBy: models.UserRef{
				ID:       row.SubmittedByID,
				FullName: row.SubmitterName,
				Email:    row.SubmitterEmail,
			},
		}
		if row.AssignedToID != nil && row.AssigneeName != nil && row.AssigneeEmail != nil {
			summary.AssignedTo = &models.UserRef{
				ID:       *row.AssignedToID,
				FullName: *row.AssigneeName,
				Email:    *row.AssigneeEmail,
			}
		}
		summaries = append(summaries, summary)
	}

	return summaries, total, nil
}

func insertStatusTx(ctx context.Context, tx *sqlx.Tx, status *models.IssueStatus) error {
	const query = `INSERT INTO issue_statuses (id, issue_id, status, notes, updated_by_id, created_at) VALUES (:id, :issue_id, :status, :notes, :updated_by_id, :created_at)`
	if _, err := tx.NamedExecContext(ctx, query, status); err != nil {
		return fmt.Errorf("create issue status: %w", err)
	}
	return nil
}

func insertIntentsTx(ctx context.Context, tx *sqlx.Tx, intents []models.NotificationIntent) error {
	const query = `INSERT INTO notification_outbox (id, recipient_id, issue_id, type, message, status, attempts, created_at) VALUES (:id, :recipient_id, :issue_id, :type, :message, :status, :attempts, :created_at)`
	now := time.Now().UTC()
	for i := range intents {
		intent := &intents[i]
		if intent.ID == "" {
			intent.ID = uuid.NewString()
		}
		if intent.Status == "" {
			intent.Status = models.OutboxPending
		}
		if intent.CreatedAt.IsZero() {
			intent.CreatedAt = now
		}
		if _, err := tx.NamedExecContext(ctx, query, intent); err != nil {
			return fmt.Errorf("enqueue notification intent: %w", err)
		}
	}
	return nil
}

package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/campus-issue-api/internal/models"
	appErrors "github.com/noah-isme/campus-issue-api/pkg/errors"
)

type issueRepository interface {
	Create(ctx context.Context, issue *models.Issue, initial *models.IssueStatus, intents []models.NotificationIntent) error
	AppendStatus(ctx context.Context, status *models.IssueStatus, assignToID *string, intents []models.NotificationIntent) error
	AddComment(ctx context.Context, comment *models.Comment, intents []models.NotificationIntent) error
	FindByID(ctx context.Context, id string) (*models.Issue, error)
	GetDetail(ctx context.Context, id string) (*models.IssueDetail, error)
	List(ctx context.Context, filter models.IssueFilter) ([]models.IssueSummary, int, error)
}

type issueUserDirectory interface {
	FindByID(ctx context.Context, id string) (*models.User, error)
}

type fanOutPlanner interface {
	IntentsForIssueCreated(ctx context.Context, issue *models.Issue, actorID, actorName string) ([]models.NotificationIntent, error)
	IntentsForAssignment(issue *models.Issue, actorID, assigneeID string) []models.NotificationIntent
	IntentsForStatusUpdate(issue *models.Issue, actorID string, newStatus models.StatusType) []models.NotificationIntent
	IntentsForEscalation(ctx context.Context, issue *models.Issue, actorID, reason string) ([]models.NotificationIntent, error)
	IntentsForComment(issue *models.Issue, actorID string) []models.NotificationIntent
}

// IssueService implements the issue lifecycle: creation, assignment, status
// updates, escalation and comments. Every mutation appends history (nothing
// is ever rewritten) and persists its notification intents atomically with
// the primary rows.
type IssueService struct {
	repo      issueRepository
	users     issueUserDirectory
	fanOut    fanOutPlanner
	audit     auditRecorder
	validator *validator.Validate
	logger    *zap.Logger
}

// NewIssueService constructs an IssueService instance.
func NewIssueService(repo issueRepository, users issueUserDirectory, fanOut fanOutPlanner, audit auditRecorder, validate *validator.Validate, logger *zap.Logger) *IssueService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &IssueService{repo: repo, users: users, fanOut: fanOut, audit: audit, validator: validate, logger: logger}
}

// Create submits a new issue. The issue row, its initial SUBMITTED status
// record and the admin fan-out intents are written atomically.
func (s *IssueService) Create(ctx context.Context, actor *models.JWTClaims, req models.CreateIssueRequest) (*models.Issue, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid issue payload")
	}

	issue := &models.Issue{
		Title:         req.Title,
		Description:   req.Description,
		Category:      req.Category,
		Priority:      req.Priority,
		SubmittedByID: actor.UserID,
	}
	initial := &models.IssueStatus{
		Status:      models.StatusSubmitted,
		UpdatedByID: actor.UserID,
	}

	intents, err := s.fanOut.IntentsForIssueCreated(ctx, issue, actor.UserID, actor.FullName)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to plan notifications")
	}

	if err := s.repo.Create(ctx, issue, initial, intents); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create issue")
	}

	s.recordAudit(ctx, actor.UserID, models.AuditActionIssueCreate, issue.ID, fmt.Sprintf(`{"title":%q}`, issue.Title))
	return issue, nil
}

// Assign routes an issue to a faculty member. Admin only; appends an
// ASSIGNED record and updates the assignee column in one transaction.
func (s *IssueService) Assign(ctx context.Context, actor *models.JWTClaims, issueID string, req models.AssignIssueRequest) (*models.Issue, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid assignment payload")
	}

	issue, err := s.loadIssue(ctx, issueID)
	if err != nil {
		return nil, err
	}

	if !CanPerform(actor.UserID, actor.Role, ActionAssign, issue, "") {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "only admins can assign issues")
	}

	assignee, err := s.users.FindByID(ctx, req.AssignedToID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "assignee not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load assignee")
	}
	if assignee.Role != models.RoleFaculty {
		return nil, appErrors.Clone(appErrors.ErrValidation, "issues can only be assigned to faculty")
	}

	notes := req.Notes
	if notes == "" {
		name := assignee.FullName
		if name == "" {
			name = assignee.Email
		}
		notes = "Assigned to " + name
	}
	status := &models.IssueStatus{
		IssueID:     issue.ID,
		Status:      models.StatusAssigned,
		Notes:       &notes,
		UpdatedByID: actor.UserID,
	}

	intents := s.fanOut.IntentsForAssignment(issue, actor.UserID, assignee.ID)
	if err := s.repo.AppendStatus(ctx, status, &assignee.ID, intents); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to assign issue")
	}
	issue.AssignedToID = &assignee.ID

	s.recordAudit(ctx, actor.UserID, models.AuditActionIssueAssign, issue.ID, fmt.Sprintf(`{"assigned_to":%q}`, assignee.ID))
	return issue, nil
}

// UpdateStatus appends a new status record. Any known status can follow any
// other; permission rules are the only gate.
func (s *IssueService) UpdateStatus(ctx context.Context, actor *models.JWTClaims, issueID string, req models.UpdateStatusRequest) (*models.IssueStatus, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid status payload")
	}
	if !models.ValidStatus(req.Status) {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown status %q", req.Status))
	}

	issue, err := s.loadIssue(ctx, issueID)
	if err != nil {
		return nil, err
	}

	if !CanPerform(actor.UserID, actor.Role, ActionUpdateStatus, issue, req.Status) {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "not allowed to update this issue's status")
	}

	status := &models.IssueStatus{
		IssueID:     issue.ID,
		Status:      req.Status,
		UpdatedByID: actor.UserID,
	}
	if req.Notes != "" {
		status.Notes = &req.Notes
	}

	intents := s.fanOut.IntentsForStatusUpdate(issue, actor.UserID, req.Status)
	if err := s.repo.AppendStatus(ctx, status, nil, intents); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update status")
	}

	s.recordAudit(ctx, actor.UserID, models.AuditActionStatusUpdate, issue.ID, fmt.Sprintf(`{"status":%q}`, req.Status))
	return status, nil
}

// Escalate appends an ESCALATED record with the reason and alerts admins.
func (s *IssueService) Escalate(ctx context.Context, actor *models.JWTClaims, issueID string, req models.EscalateIssueRequest) (*models.IssueStatus, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid escalation payload")
	}

	issue, err := s.loadIssue(ctx, issueID)
	if err != nil {
		return nil, err
	}

	if !CanPerform(actor.UserID, actor.Role, ActionEscalate, issue, "") {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "only faculty and admins can escalate issues")
	}

	status := &models.IssueStatus{
		IssueID:     issue.ID,
		Status:      models.StatusEscalated,
		Notes:       &req.Reason,
		UpdatedByID: actor.UserID,
	}

	intents, err := s.fanOut.IntentsForEscalation(ctx, issue, actor.UserID, req.Reason)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to plan notifications")
	}
	if err := s.repo.AppendStatus(ctx, status, nil, intents); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to escalate issue")
	}

	s.recordAudit(ctx, actor.UserID, models.AuditActionIssueEscalate, issue.ID, fmt.Sprintf(`{"reason":%q}`, req.Reason))
	return status, nil
}

// AddComment attaches a comment to an issue. Any authenticated user may
// comment; the submitter and assignee are notified, minus the author.
func (s *IssueService) AddComment(ctx context.Context, actor *models.JWTClaims, issueID string, req models.AddCommentRequest) (*models.Comment, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid comment payload")
	}

	issue, err := s.loadIssue(ctx, issueID)
	if err != nil {
		return nil, err
	}

	if !CanPerform(actor.UserID, actor.Role, ActionComment, issue, "") {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "not allowed to comment on this issue")
	}

	comment := &models.Comment{
		IssueID: issue.ID,
		UserID:  actor.UserID,
		Content: req.Content,
	}

	intents := s.fanOut.IntentsForComment(issue, actor.UserID)
	if err := s.repo.AddComment(ctx, comment, intents); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to add comment")
	}

	s.recordAudit(ctx, actor.UserID, models.AuditActionCommentAdd, issue.ID, fmt.Sprintf(`{"comment_id":%q}`, comment.ID))
	return comment, nil
}

// GetDetail returns the full issue payload for callers allowed to view it.
func (s *IssueService) GetDetail(ctx context.Context, actor *models.JWTClaims, issueID string) (*models.IssueDetail, error) {
	issue, err := s.loadIssue(ctx, issueID)
	if err != nil {
		return nil, err
	}

	if !CanPerform(actor.UserID, actor.Role, ActionView, issue, "") {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "not allowed to view this issue")
	}

	detail, err := s.repo.GetDetail(ctx, issueID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "issue not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load issue")
	}
	return detail, nil
}

// List returns a filtered page of issues scoped to what the caller may see:
// admins see everything, faculty their assigned issues, students their own.
func (s *IssueService) List(ctx context.Context, actor *models.JWTClaims, filter models.IssueFilter) ([]models.IssueSummary, *models.Pagination, error) {
	switch actor.Role {
	case models.RoleAdmin:
		// unrestricted
	case models.RoleFaculty:
		filter.AssignedToID = actor.UserID
		filter.SubmittedByID = ""
	default:
		filter.SubmittedByID = actor.UserID
		filter.AssignedToID = ""
	}

	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit <= 0 || filter.Limit > 100 {
		filter.Limit = 10
	}

	summaries, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list issues")
	}
	if summaries == nil {
		summaries = []models.IssueSummary{}
	}

	pagination := &models.Pagination{
		Page:       filter.Page,
		PageSize:   filter.Limit,
		TotalCount: total,
		PageCount:  (total + filter.Limit - 1) / filter.Limit,
	}
	return summaries, pagination, nil
}

func (s *IssueService) loadIssue(ctx context.Context, issueID string) (*models.Issue, error) {
	issue, err := s.repo.FindByID(ctx, issueID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "issue not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load issue")
	}
	return issue, nil
}

func (s *IssueService) recordAudit(ctx context.Context, actorID, action, issueID, newValues string) {
	if s.audit == nil {
		return
	}
	log := &models.AuditLog{
		UserID:     &actorID,
		Action:     action,
		Resource:   "issue",
		ResourceID: &issueID,
		NewValues:  []byte(newValues),
	}
	if err := s.audit.Create(ctx, log); err != nil {
		s.logger.Warn("failed to record audit log", zap.String("action", action), zap.Error(err))
	}
}

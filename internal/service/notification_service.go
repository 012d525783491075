package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/noah-isme/campus-issue-api/internal/models"
	appErrors "github.com/noah-isme/campus-issue-api/pkg/errors"
)

type notificationRepository interface {
	ListByUser(ctx context.Context, userID string, limit int) ([]models.Notification, int, error)
	MarkRead(ctx context.Context, id, userID string) error
	MarkAllRead(ctx context.Context, userID string) error
}

type roleDirectory interface {
	FindRefsByRole(ctx context.Context, role models.UserRole) ([]models.UserRef, error)
}

// NotificationService owns the fan-out recipient rules and the inbox
// operations. Intents it computes are persisted by the lifecycle engine in
// the same transaction as the mutation they report.
type NotificationService struct {
	repo   notificationRepository
	users  roleDirectory
	logger *zap.Logger
}

// NewNotificationService constructs a NotificationService instance.
func NewNotificationService(repo notificationRepository, users roleDirectory, logger *zap.Logger) *NotificationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationService{repo: repo, users: users, logger: logger}
}

// List returns the caller's newest notifications plus the unread count.
func (s *NotificationService) List(ctx context.Context, userID string, limit int) ([]models.Notification, int, error) {
	items, unread, err := s.repo.ListByUser(ctx, userID, limit)
	if err != nil {
		return nil, 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list notifications")
	}
	if items == nil {
		items = []models.Notification{}
	}
	return items, unread, nil
}

// MarkRead marks one of the caller's notifications as read.
func (s *NotificationService) MarkRead(ctx context.Context, id, userID string) error {
	if err := s.repo.MarkRead(ctx, id, userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "notification not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to mark notification read")
	}
	return nil
}

// MarkAllRead marks every unread notification of the caller as read.
func (s *NotificationService) MarkAllRead(ctx context.Context, userID string) error {
	if err := s.repo.MarkAllRead(ctx, userID); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to mark notifications read")
	}
	return nil
}

// IntentsForIssueCreated addresses every admin except the acting user.
func (s *NotificationService) IntentsForIssueCreated(ctx context.Context, issue *models.Issue, actorID, actorName string) ([]models.NotificationIntent, error) {
	admins, err := s.users.FindRefsByRole(ctx, models.RoleAdmin)
	if err != nil {
		return nil, fmt.Errorf("load admins for fan-out: %w", err)
	}
	message := fmt.Sprintf("New issue %q has been submitted by %s", issue.Title, actorName)
	var intents []models.NotificationIntent
	for _, admin := range admins {
		intents = append(intents, models.NotificationIntent{
			RecipientID: admin.ID,
			IssueID:     issue.ID,
			Type:        models.NotificationIssueCreated,
			Message:     message,
		})
	}
	return dedupeIntents(intents, actorID), nil
}

// IntentsForAssignment addresses the new assignee and the submitter.
func (s *NotificationService) IntentsForAssignment(issue *models.Issue, actorID, assigneeID string) []models.NotificationIntent {
	intents := []models.NotificationIntent{
		{
			RecipientID: assigneeID,
			IssueID:     issue.ID,
			Type:        models.NotificationIssueAssigned,
			Message:     fmt.Sprintf("You have been assigned to issue %q", issue.Title),
		},
		{
			RecipientID: issue.SubmittedByID,
			IssueID:     issue.ID,
			Type:        models.NotificationStatusUpdated,
			Message:     fmt.Sprintf("Your issue %q has been assigned to a faculty member", issue.Title),
		},
	}
	return dedupeIntents(intents, actorID)
}

// IntentsForStatusUpdate addresses the submitter and, if present, the
// assigned faculty member.
func (s *NotificationService) IntentsForStatusUpdate(issue *models.Issue, actorID string, newStatus models.StatusType) []models.NotificationIntent {
	intents := []models.NotificationIntent{
		{
			RecipientID: issue.SubmittedByID,
			IssueID:     issue.ID,
			Type:        models.NotificationStatusUpdated,
			Message:     fmt.Sprintf("Your issue %q status has been updated to %s", issue.Title, newStatus),
		},
	}
	if issue.AssignedToID != nil {
		intents = append(intents, models.NotificationIntent{
			RecipientID: *issue.AssignedToID,
			IssueID:     issue.ID,
			Type:        models.NotificationStatusUpdated,
			Message:     fmt.Sprintf("Issue %q status has been updated to %s", issue.Title, newStatus),
		})
	}
	return dedupeIntents(intents, actorID)
}

// IntentsForEscalation addresses every admin plus the submitter.
func (s *NotificationService) IntentsForEscalation(ctx context.Context, issue *models.Issue, actorID, reason string) ([]models.NotificationIntent, error) {
	admins, err := s.users.FindRefsByRole(ctx, models.RoleAdmin)
	if err != nil {
		return nil, fmt.Errorf("load admins for fan-out: %w", err)
	}
	var intents []models.NotificationIntent
	for _, admin := range admins {
		intents = append(intents, models.NotificationIntent{
			RecipientID: admin.ID,
			IssueID:     issue.ID,
			Type:        models.NotificationIssueEscalated,
			Message:     fmt.Sprintf("Issue %q has been escalated: %s", issue.Title, reason),
		})
	}
	intents = append(intents, models.NotificationIntent{
		RecipientID: issue.SubmittedByID,
		IssueID:     issue.ID,
		Type:        models.NotificationStatusUpdated,
		Message:     fmt.Sprintf("Your issue %q has been escalated for further review", issue.Title),
	})
	return dedupeIntents(intents, actorID), nil
}

// IntentsForComment addresses the submitter and, if present, the assignee.
func (s *NotificationService) IntentsForComment(issue *models.Issue, actorID string) []models.NotificationIntent {
	message := fmt.Sprintf("New comment on issue %q", issue.Title)
	intents := []models.NotificationIntent{
		{
			RecipientID: issue.SubmittedByID,
			IssueID:     issue.ID,
			Type:        models.NotificationCommentAdded,
			Message:     message,
		},
	}
	if issue.AssignedToID != nil {
		intents = append(intents, models.NotificationIntent{
			RecipientID: *issue.AssignedToID,
			IssueID:     issue.ID,
			Type:        models.NotificationCommentAdded,
			Message:     message,
		})
	}
	return dedupeIntents(intents, actorID)
}

// dedupeIntents drops the acting user and any duplicate recipients, keeping
// first occurrence order.
func dedupeIntents(intents []models.NotificationIntent, actorID string) []models.NotificationIntent {
	seen := make(map[string]bool, len(intents))
	out := intents[:0]
	for _, intent := range intents {
		if intent.RecipientID == "" || intent.RecipientID == actorID || seen[intent.RecipientID] {
			continue
		}
		seen[intent.RecipientID] = true
		out = append(out, intent)
	}
	return out
}

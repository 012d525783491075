package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/campus-issue-api/internal/models"
	appErrors "github.com/noah-isme/campus-issue-api/pkg/errors"
)

type mockNotificationRepo struct {
	items       []models.Notification
	unread      int
	markReadErr error
	markedAll   []string
}

func (m *mockNotificationRepo) ListByUser(ctx context.Context, userID string, limit int) ([]models.Notification, int, error) {
	return m.items, m.unread, nil
}

func (m *mockNotificationRepo) MarkRead(ctx context.Context, id, userID string) error {
	return m.markReadErr
}

func (m *mockNotificationRepo) MarkAllRead(ctx context.Context, userID string) error {
	m.markedAll = append(m.markedAll, userID)
	return nil
}

type mockRoleDirectory struct {
	admins []models.UserRef
	err    error
}

func (m *mockRoleDirectory) FindRefsByRole(ctx context.Context, role models.UserRole) ([]models.UserRef, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.admins, nil
}

func newNotificationService(repo *mockNotificationRepo, users *mockRoleDirectory) *NotificationService {
	return NewNotificationService(repo, users, zap.NewNop())
}

func TestIntentsForIssueCreatedExcludesActingAdmin(t *testing.T) {
	users := &mockRoleDirectory{admins: []models.UserRef{
		{ID: "admin-1", FullName: "Admin One"},
		{ID: "admin-2", FullName: "Admin Two"},
	}}
	svc := newNotificationService(&mockNotificationRepo{}, users)

	issue := &models.Issue{ID: "i1", Title: "Broken projector", SubmittedByID: "admin-1"}
	intents, err := svc.IntentsForIssueCreated(context.Background(), issue, "admin-1", "Admin One")
	require.NoError(t, err)
	require.Len(t, intents, 1)
	assert.Equal(t, "admin-2", intents[0].RecipientID)
	assert.Equal(t, models.NotificationIssueCreated, intents[0].Type)
	assert.Contains(t, intents[0].Message, "Broken projector")
}

func TestIntentsForAssignmentDeduplicatesRecipients(t *testing.T) {
	svc := newNotificationService(&mockNotificationRepo{}, &mockRoleDirectory{})

	// submitter doubles as the new assignee: one intent, not two
	issue := &models.Issue{ID: "i1", Title: "Lab access", SubmittedByID: "faculty-1"}
	intents := svc.IntentsForAssignment(issue, "admin-1", "faculty-1")
	require.Len(t, intents, 1)
	assert.Equal(t, "faculty-1", intents[0].RecipientID)
	assert.Equal(t, models.NotificationIssueAssigned, intents[0].Type)
}

func TestIntentsForStatusUpdateExcludesActingSubmitter(t *testing.T) {
	svc := newNotificationService(&mockNotificationRepo{}, &mockRoleDirectory{})

	issue := &models.Issue{ID: "i1", Title: "Lab access", SubmittedByID: "student-1", AssignedToID: strPtr("faculty-1")}
	intents := svc.IntentsForStatusUpdate(issue, "student-1", models.StatusClosed)
	require.Len(t, intents, 1)
	assert.Equal(t, "faculty-1", intents[0].RecipientID)
}

func TestIntentsForStatusUpdateNoAssigneeActingSubmitterYieldsNothing(t *testing.T) {
	svc := newNotificationService(&mockNotificationRepo{}, &mockRoleDirectory{})

	issue := &models.Issue{ID: "i1", Title: "Lab access", SubmittedByID: "student-1"}
	intents := svc.IntentsForStatusUpdate(issue, "student-1", models.StatusClosed)
	assert.Empty(t, intents)
}

func TestIntentsForCommentBySubmitterNotifiesOnlyAssignee(t *testing.T) {
	svc := newNotificationService(&mockNotificationRepo{}, &mockRoleDirectory{})

	issue := &models.Issue{ID: "i1", Title: "Lab access", SubmittedByID: "student-1", AssignedToID: strPtr("faculty-1")}
	intents := svc.IntentsForComment(issue, "student-1")
	require.Len(t, intents, 1)
	assert.Equal(t, "faculty-1", intents[0].RecipientID)
	assert.Equal(t, models.NotificationCommentAdded, intents[0].Type)
}

func TestIntentsForEscalationNotifiesAdminsAndSubmitter(t *testing.T) {
	users := &mockRoleDirectory{admins: []models.UserRef{{ID: "admin-1"}, {ID: "admin-2"}}}
	svc := newNotificationService(&mockNotificationRepo{}, users)

	issue := &models.Issue{ID: "i1", Title: "Lab access", SubmittedByID: "student-1"}
	intents, err := svc.IntentsForEscalation(context.Background(), issue, "faculty-1", "no response")
	require.NoError(t, err)
	require.Len(t, intents, 3)
	assert.Equal(t, models.NotificationIssueEscalated, intents[0].Type)
	assert.Equal(t, models.NotificationIssueEscalated, intents[1].Type)
	assert.Contains(t, intents[0].Message, "no response")

	// the submitter sees it as a status change on their issue, not an escalation
	assert.Equal(t, "student-1", intents[2].RecipientID)
	assert.Equal(t, models.NotificationStatusUpdated, intents[2].Type)
}

func TestNotificationMarkReadMapsMissingRowToNotFound(t *testing.T) {
	repo := &mockNotificationRepo{markReadErr: sql.ErrNoRows}
	svc := newNotificationService(repo, &mockRoleDirectory{})

	err := svc.MarkRead(context.Background(), "n1", "u1")
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErr.Code)
}

func TestNotificationListReturnsUnreadCount(t *testing.T) {
	repo := &mockNotificationRepo{
		items:  []models.Notification{{ID: "n1", UserID: "u1"}},
		unread: 4,
	}
	svc := newNotificationService(repo, &mockRoleDirectory{})

	items, unread, err := svc.List(context.Background(), "u1", 20)
	require.NoError(t, err)
	assert.Len(t, items, 1)
	assert.Equal(t, 4, unread)
}

package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/campus-issue-api/internal/models"
	appErrors "github.com/noah-isme/campus-issue-api/pkg/errors"
)

type mockIssueRepo struct {
	issues map[string]*models.Issue

	createdIssue   *models.Issue
	createdInitial *models.IssueStatus
	createdIntents []models.NotificationIntent

	appendedStatus  *models.IssueStatus
	appendedAssign  *string
	appendedIntents []models.NotificationIntent

	addedComment   *models.Comment
	commentIntents []models.NotificationIntent

	listFilter models.IssueFilter
	listResult []models.IssueSummary
	listTotal  int
}

func (m *mockIssueRepo) Create(ctx context.Context, issue *models.Issue, initial *models.IssueStatus, intents []models.NotificationIntent) error {
	issue.ID = "issue-1"
	initial.IssueID = issue.ID
	m.createdIssue = issue
	m.createdInitial = initial
	m.createdIntents = intents
	return nil
}

func (m *mockIssueRepo) AppendStatus(ctx context.Context, status *models.IssueStatus, assignToID *string, intents []models.NotificationIntent) error {
	m.appendedStatus = status
	m.appendedAssign = assignToID
	m.appendedIntents = intents
	return nil
}

func (m *mockIssueRepo) AddComment(ctx context.Context, comment *models.Comment, intents []models.NotificationIntent) error {
	comment.ID = "comment-1"
	m.addedComment = comment
	m.commentIntents = intents
	return nil
}

func (m *mockIssueRepo) FindByID(ctx context.Context, id string) (*models.Issue, error) {
	if issue, ok := m.issues[id]; ok {
		copy := *issue
		return &copy, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockIssueRepo) GetDetail(ctx context.Context, id string) (*models.IssueDetail, error) {
	if issue, ok := m.issues[id]; ok {
		return &models.IssueDetail{Issue: *issue}, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockIssueRepo) List(ctx context.Context, filter models.IssueFilter) ([]models.IssueSummary, int, error) {
	m.listFilter = filter
	return m.listResult, m.listTotal, nil
}

type mockUserDirectory struct {
	users map[string]*models.User
}

func (m *mockUserDirectory) FindByID(ctx context.Context, id string) (*models.User, error) {
	if user, ok := m.users[id]; ok {
		copy := *user
		return &copy, nil
	}
	return nil, sql.ErrNoRows
}

type mockFanOut struct {
	created    []models.NotificationIntent
	assignment []models.NotificationIntent
	status     []models.NotificationIntent
	escalation []models.NotificationIntent
	comment    []models.NotificationIntent
}

func (m *mockFanOut) IntentsForIssueCreated(ctx context.Context, issue *models.Issue, actorID, actorName string) ([]models.NotificationIntent, error) {
	return m.created, nil
}

func (m *mockFanOut) IntentsForAssignment(issue *models.Issue, actorID, assigneeID string) []models.NotificationIntent {
	return m.assignment
}

func (m *mockFanOut) IntentsForStatusUpdate(issue *models.Issue, actorID string, newStatus models.StatusType) []models.NotificationIntent {
	return m.status
}

func (m *mockFanOut) IntentsForEscalation(ctx context.Context, issue *models.Issue, actorID, reason string) ([]models.NotificationIntent, error) {
	return m.escalation, nil
}

func (m *mockFanOut) IntentsForComment(issue *models.Issue, actorID string) []models.NotificationIntent {
	return m.comment
}

type mockAudit struct {
	logs []*models.AuditLog
}

func (m *mockAudit) Create(ctx context.Context, log *models.AuditLog) error {
	m.logs = append(m.logs, log)
	return nil
}

func newIssueService(repo *mockIssueRepo, users *mockUserDirectory, fanOut *mockFanOut, audit *mockAudit) *IssueService {
	return NewIssueService(repo, users, fanOut, audit, validator.New(), zap.NewNop())
}

func studentClaims(id string) *models.JWTClaims {
	return &models.JWTClaims{UserID: id, Role: models.RoleStudent, FullName: "Student " + id}
}

func adminClaims(id string) *models.JWTClaims {
	return &models.JWTClaims{UserID: id, Role: models.RoleAdmin, FullName: "Admin " + id}
}

func TestIssueCreateRejectsShortTitle(t *testing.T) {
	svc := newIssueService(&mockIssueRepo{}, &mockUserDirectory{}, &mockFanOut{}, &mockAudit{})

	_, err := svc.Create(context.Background(), studentClaims("student-1"), models.CreateIssueRequest{
		Title:       "abcd",
		Description: "long enough description",
		Category:    models.CategoryOther,
		Priority:    models.PriorityLow,
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestIssueCreateAcceptsFiveCharTitle(t *testing.T) {
	repo := &mockIssueRepo{}
	audit := &mockAudit{}
	fanOut := &mockFanOut{created: []models.NotificationIntent{{RecipientID: "admin-1"}}}
	svc := newIssueService(repo, &mockUserDirectory{}, fanOut, audit)

	issue, err := svc.Create(context.Background(), studentClaims("student-1"), models.CreateIssueRequest{
		Title:       "abcde",
		Description: "long enough description",
		Category:    models.CategoryGradeDispute,
		Priority:    models.PriorityHigh,
	})
	require.NoError(t, err)
	assert.Equal(t, "student-1", issue.SubmittedByID)
	require.NotNil(t, repo.createdInitial)
	assert.Equal(t, models.StatusSubmitted, repo.createdInitial.Status)
	assert.Equal(t, "student-1", repo.createdInitial.UpdatedByID)
	assert.Len(t, repo.createdIntents, 1)
	require.Len(t, audit.logs, 1)
	assert.Equal(t, models.AuditActionIssueCreate, audit.logs[0].Action)
}

func TestIssueAssignRequiresAdmin(t *testing.T) {
	repo := &mockIssueRepo{issues: map[string]*models.Issue{"issue-1": {ID: "issue-1", SubmittedByID: "student-1"}}}
	svc := newIssueService(repo, &mockUserDirectory{}, &mockFanOut{}, &mockAudit{})

	_, err := svc.Assign(context.Background(), studentClaims("student-1"), "issue-1", models.AssignIssueRequest{AssignedToID: "faculty-1"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)
}

func TestIssueAssignRejectsNonFacultyTarget(t *testing.T) {
	repo := &mockIssueRepo{issues: map[string]*models.Issue{"issue-1": {ID: "issue-1", SubmittedByID: "student-1"}}}
	users := &mockUserDirectory{users: map[string]*models.User{"student-2": {ID: "student-2", Role: models.RoleStudent}}}
	svc := newIssueService(repo, users, &mockFanOut{}, &mockAudit{})

	_, err := svc.Assign(context.Background(), adminClaims("admin-1"), "issue-1", models.AssignIssueRequest{AssignedToID: "student-2"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestIssueAssignAppendsRecordAndAssignee(t *testing.T) {
	repo := &mockIssueRepo{issues: map[string]*models.Issue{"issue-1": {ID: "issue-1", SubmittedByID: "student-1"}}}
	users := &mockUserDirectory{users: map[string]*models.User{"faculty-1": {ID: "faculty-1", FullName: "Faculty One", Role: models.RoleFaculty}}}
	fanOut := &mockFanOut{assignment: []models.NotificationIntent{{RecipientID: "faculty-1"}, {RecipientID: "student-1"}}}
	svc := newIssueService(repo, users, fanOut, &mockAudit{})

	issue, err := svc.Assign(context.Background(), adminClaims("admin-1"), "issue-1", models.AssignIssueRequest{AssignedToID: "faculty-1"})
	require.NoError(t, err)
	require.NotNil(t, issue.AssignedToID)
	assert.Equal(t, "faculty-1", *issue.AssignedToID)
	require.NotNil(t, repo.appendedStatus)
	assert.Equal(t, models.StatusAssigned, repo.appendedStatus.Status)
	require.NotNil(t, repo.appendedAssign)
	assert.Equal(t, "faculty-1", *repo.appendedAssign)
	assert.Len(t, repo.appendedIntents, 2)

	// without caller-supplied notes the record names the assignee
	require.NotNil(t, repo.appendedStatus.Notes)
	assert.Equal(t, "Assigned to Faculty One", *repo.appendedStatus.Notes)
}

func TestIssueAssignFallsBackToAssigneeEmailInNotes(t *testing.T) {
	repo := &mockIssueRepo{issues: map[string]*models.Issue{"issue-1": {ID: "issue-1", SubmittedByID: "student-1"}}}
	users := &mockUserDirectory{users: map[string]*models.User{"faculty-1": {ID: "faculty-1", Email: "faculty@campus.edu", Role: models.RoleFaculty}}}
	svc := newIssueService(repo, users, &mockFanOut{}, &mockAudit{})

	_, err := svc.Assign(context.Background(), adminClaims("admin-1"), "issue-1", models.AssignIssueRequest{AssignedToID: "faculty-1"})
	require.NoError(t, err)
	require.NotNil(t, repo.appendedStatus)
	require.NotNil(t, repo.appendedStatus.Notes)
	assert.Equal(t, "Assigned to faculty@campus.edu", *repo.appendedStatus.Notes)
}

func TestIssueUpdateStatusRejectsUnknownStatus(t *testing.T) {
	repo := &mockIssueRepo{issues: map[string]*models.Issue{"issue-1": {ID: "issue-1", SubmittedByID: "student-1"}}}
	svc := newIssueService(repo, &mockUserDirectory{}, &mockFanOut{}, &mockAudit{})

	_, err := svc.UpdateStatus(context.Background(), adminClaims("admin-1"), "issue-1", models.UpdateStatusRequest{Status: "BOGUS"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestIssueUpdateStatusSubmitterMayOnlyClose(t *testing.T) {
	repo := &mockIssueRepo{issues: map[string]*models.Issue{"issue-1": {ID: "issue-1", SubmittedByID: "student-1"}}}
	fanOut := &mockFanOut{status: []models.NotificationIntent{}}
	svc := newIssueService(repo, &mockUserDirectory{}, fanOut, &mockAudit{})

	_, err := svc.UpdateStatus(context.Background(), studentClaims("student-1"), "issue-1", models.UpdateStatusRequest{Status: models.StatusResolved})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)

	status, err := svc.UpdateStatus(context.Background(), studentClaims("student-1"), "issue-1", models.UpdateStatusRequest{Status: models.StatusClosed})
	require.NoError(t, err)
	assert.Equal(t, models.StatusClosed, status.Status)
}

func TestIssueEscalateRejectsStudents(t *testing.T) {
	repo := &mockIssueRepo{issues: map[string]*models.Issue{"issue-1": {ID: "issue-1", SubmittedByID: "student-1"}}}
	svc := newIssueService(repo, &mockUserDirectory{}, &mockFanOut{}, &mockAudit{})

	_, err := svc.Escalate(context.Background(), studentClaims("student-1"), "issue-1", models.EscalateIssueRequest{Reason: "urgent"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)
}

func TestIssueEscalateRecordsReason(t *testing.T) {
	repo := &mockIssueRepo{issues: map[string]*models.Issue{"issue-1": {ID: "issue-1", SubmittedByID: "student-1"}}}
	faculty := &models.JWTClaims{UserID: "faculty-1", Role: models.RoleFaculty}
	fanOut := &mockFanOut{escalation: []models.NotificationIntent{{RecipientID: "admin-1"}, {RecipientID: "student-1"}}}
	svc := newIssueService(repo, &mockUserDirectory{}, fanOut, &mockAudit{})

	status, err := svc.Escalate(context.Background(), faculty, "issue-1", models.EscalateIssueRequest{Reason: "no response for a week"})
	require.NoError(t, err)
	assert.Equal(t, models.StatusEscalated, status.Status)
	require.NotNil(t, status.Notes)
	assert.Equal(t, "no response for a week", *status.Notes)
	assert.Len(t, repo.appendedIntents, 2)
}

func TestIssueAddCommentPersistsIntentsAtomically(t *testing.T) {
	repo := &mockIssueRepo{issues: map[string]*models.Issue{"issue-1": {ID: "issue-1", SubmittedByID: "student-1"}}}
	fanOut := &mockFanOut{comment: []models.NotificationIntent{{RecipientID: "student-1"}}}
	svc := newIssueService(repo, &mockUserDirectory{}, fanOut, &mockAudit{})

	comment, err := svc.AddComment(context.Background(), &models.JWTClaims{UserID: "faculty-1", Role: models.RoleFaculty}, "issue-1", models.AddCommentRequest{Content: "looking into it"})
	require.NoError(t, err)
	assert.Equal(t, "looking into it", comment.Content)
	assert.Len(t, repo.commentIntents, 1)
}

func TestIssueGetDetailDeniesOutsiders(t *testing.T) {
	repo := &mockIssueRepo{issues: map[string]*models.Issue{"issue-1": {ID: "issue-1", SubmittedByID: "student-1"}}}
	svc := newIssueService(repo, &mockUserDirectory{}, &mockFanOut{}, &mockAudit{})

	_, err := svc.GetDetail(context.Background(), studentClaims("student-2"), "issue-1")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)
}

func TestIssueListScopesByRole(t *testing.T) {
	repo := &mockIssueRepo{}
	svc := newIssueService(repo, &mockUserDirectory{}, &mockFanOut{}, &mockAudit{})

	_, _, err := svc.List(context.Background(), studentClaims("student-1"), models.IssueFilter{})
	require.NoError(t, err)
	assert.Equal(t, "student-1", repo.listFilter.SubmittedByID)
	assert.Empty(t, repo.listFilter.AssignedToID)

	faculty := &models.JWTClaims{UserID: "faculty-1", Role: models.RoleFaculty}
	_, _, err = svc.List(context.Background(), faculty, models.IssueFilter{})
	require.NoError(t, err)
	assert.Equal(t, "faculty-1", repo.listFilter.AssignedToID)
	assert.Empty(t, repo.listFilter.SubmittedByID)

	_, pagination, err := svc.List(context.Background(), adminClaims("admin-1"), models.IssueFilter{})
	require.NoError(t, err)
	assert.Empty(t, repo.listFilter.SubmittedByID)
	assert.Empty(t, repo.listFilter.AssignedToID)
	assert.Equal(t, 1, pagination.Page)
}

func TestIssueNotFoundMapsToNotFound(t *testing.T) {
	svc := newIssueService(&mockIssueRepo{}, &mockUserDirectory{}, &mockFanOut{}, &mockAudit{})

	_, err := svc.UpdateStatus(context.Background(), adminClaims("admin-1"), "missing", models.UpdateStatusRequest{Status: models.StatusClosed})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

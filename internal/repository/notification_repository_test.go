package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/campus-issue-api/internal/models"
)

func TestNotificationRepositoryListByUser(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewNotificationRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows([]string{"id", "user_id", "issue_id", "type", "message", "read", "created_at"}).
		AddRow("n1", "u1", "issue-1", string(models.NotificationIssueAssigned), "assigned", false, now)
	mock.ExpectQuery(regexp.QuoteMeta("FROM notifications WHERE user_id = $1 ORDER BY created_at DESC LIMIT 20")).
		WithArgs("u1").
		WillReturnRows(rows)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM notifications WHERE user_id = $1 AND read = FALSE")).
		WithArgs("u1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))

	items, unread, err := repo.ListByUser(context.Background(), "u1", 0)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, 3, unread)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNotificationRepositoryMarkReadScopedToOwner(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewNotificationRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE notifications SET read = TRUE WHERE id = $1 AND user_id = $2")).
		WithArgs("n1", "intruder").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.MarkRead(context.Background(), "n1", "intruder")
	assert.Equal(t, sql.ErrNoRows, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNotificationRepositoryFetchPendingIntents(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewNotificationRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows([]string{"id", "recipient_id", "issue_id", "type", "message", "status", "attempts", "created_at", "delivered_at"}).
		AddRow("i1", "u1", "issue-1", string(models.NotificationIssueCreated), "new issue", string(models.OutboxPending), 0, now, nil)
	mock.ExpectQuery(regexp.QuoteMeta("FROM notification_outbox WHERE status = $1 ORDER BY created_at ASC LIMIT 50")).
		WithArgs(string(models.OutboxPending)).
		WillReturnRows(rows)

	intents, err := repo.FetchPendingIntents(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, intents, 1)
	assert.Equal(t, models.NotificationIssueCreated, intents[0].Type)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNotificationRepositoryMarkIntentFailedParksAfterMaxAttempts(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewNotificationRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE notification_outbox SET attempts = attempts + 1")).
		WithArgs("i1", 3).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.MarkIntentFailed(context.Background(), "i1", 3))
	assert.NoError(t, mock.ExpectationsWereMet())
}

package models

import "time"

// NotificationType enumerates inbox entry kinds.
type NotificationType string

const (
	NotificationIssueCreated   NotificationType = "ISSUE_CREATED"
	NotificationIssueAssigned  NotificationType = "ISSUE_ASSIGNED"
	NotificationStatusUpdated  NotificationType = "STATUS_UPDATED"
	NotificationIssueEscalated NotificationType = "ISSUE_ESCALATED"
	NotificationCommentAdded   NotificationType = "COMMENT_ADDED"
)

// Notification is a per-user inbox entry. Created only by the outbox
// dispatcher; mutated only by mark-read operations; never deleted.
type Notification struct {
	ID        string           `db:"id" json:"id"`
	UserID    string           `db:"user_id" json:"user_id"`
	IssueID   string           `db:"issue_id" json:"issue_id"`
	Type      NotificationType `db:"type" json:"type"`
	Message   string           `db:"message" json:"message"`
	Read      bool             `db:"read" json:"read"`
	CreatedAt time.Time        `db:"created_at" json:"created_at"`
}

// OutboxStatus tracks dispatcher progress on an intent row.
type OutboxStatus string

const (
	OutboxPending   OutboxStatus = "PENDING"
	OutboxDelivered OutboxStatus = "DELIVERED"
	OutboxFailed    OutboxStatus = "FAILED"
)

// NotificationIntent is a transactional outbox row written in the same
// transaction as the lifecycle mutation it reports. The dispatcher drains
// pending intents asynchronously and materialises inbox rows, email and
// push events from them.
type NotificationIntent struct {
	ID          string           `db:"id" json:"id"`
	RecipientID string           `db:"recipient_id" json:"recipient_id"`
	IssueID     string           `db:"issue_id" json:"issue_id"`
	Type        NotificationType `db:"type" json:"type"`
	Message     string           `db:"message" json:"message"`
	Status      OutboxStatus     `db:"status" json:"status"`
	Attempts    int              `db:"attempts" json:"attempts"`
	CreatedAt   time.Time        `db:"created_at" json:"created_at"`
	DeliveredAt *time.Time       `db:"delivered_at" json:"delivered_at,omitempty"`
}

// IssueEvent is the payload published to the push channel when an intent is
// delivered. Connected clients refresh from it; delivery is best-effort.
type IssueEvent struct {
	Type        NotificationType `json:"type"`
	IssueID     string           `json:"issue_id"`
	RecipientID string           `json:"recipient_id"`
	Message     string           `json:"message"`
	OccurredAt  time.Time        `json:"occurred_at"`
}

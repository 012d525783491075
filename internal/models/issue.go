package models

import "time"

// Category classifies the academic concern an issue reports.
type Category string

const (
	CategoryGradeDispute          Category = "GRADE_DISPUTE"
	CategoryClassSchedule         Category = "CLASS_SCHEDULE"
	CategoryFacultyConcern        Category = "FACULTY_CONCERN"
	CategoryCourseRegistration    Category = "COURSE_REGISTRATION"
	CategoryGraduationRequirement Category = "GRADUATION_REQUIREMENT"
	CategoryOther                 Category = "OTHER"
)

// Priority ranks how urgently an issue needs attention.
type Priority string

const (
	PriorityLow    Priority = "LOW"
	PriorityMedium Priority = "MEDIUM"
	PriorityHigh   Priority = "HIGH"
	PriorityUrgent Priority = "URGENT"
)

// StatusType enumerates the lifecycle states an issue can record.
type StatusType string

const (
	StatusSubmitted   StatusType = "SUBMITTED"
	StatusAssigned    StatusType = "ASSIGNED"
	StatusInProgress  StatusType = "IN_PROGRESS"
	StatusPendingInfo StatusType = "PENDING_INFO"
	StatusResolved    StatusType = "RESOLVED"
	StatusClosed      StatusType = "CLOSED"
	StatusEscalated   StatusType = "ESCALATED"
)

// ValidStatus reports whether the given value is a known status.
func ValidStatus(s StatusType) bool {
	switch s {
	case StatusSubmitted, StatusAssigned, StatusInProgress, StatusPendingInfo,
		StatusResolved, StatusClosed, StatusEscalated:
		return true
	}
	return false
}

// Issue represents a reported academic problem. The current status is not
// stored on the row; it is derived from the most recent IssueStatus record.
type Issue struct {
	ID            string    `db:"id" json:"id"`
	Title         string    `db:"title" json:"title"`
	Description   string    `db:"description" json:"description"`
	Category      Category  `db:"category" json:"category"`
	Priority      Priority  `db:"priority" json:"priority"`
	SubmittedByID string    `db:"submitted_by_id" json:"submitted_by_id"`
	AssignedToID  *string   `db:"assigned_to_id" json:"assigned_to_id,omitempty"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time `db:"updated_at" json:"updated_at"`
}

// IssueStatus is one immutable entry in an issue's status history.
type IssueStatus struct {
	ID          string     `db:"id" json:"id"`
	IssueID     string     `db:"issue_id" json:"issue_id"`
	Status      StatusType `db:"status" json:"status"`
	Notes       *string    `db:"notes" json:"notes,omitempty"`
	UpdatedByID string     `db:"updated_by_id" json:"updated_by_id"`
	CreatedAt   time.Time  `db:"created_at" json:"created_at"`
}

// Comment is a free-text remark on an issue, immutable once created.
type Comment struct {
	ID        string    `db:"id" json:"id"`
	IssueID   string    `db:"issue_id" json:"issue_id"`
	UserID    string    `db:"user_id" json:"user_id"`
	Content   string    `db:"content" json:"content"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// Attachment holds upload metadata; the bytes live in file storage.
type Attachment struct {
	ID        string    `db:"id" json:"id"`
	IssueID   string    `db:"issue_id" json:"issue_id"`
	Filename  string    `db:"filename" json:"filename"`
	Path      string    `db:"path" json:"path"`
	MimeType  string    `db:"mime_type" json:"mime_type"`
	Size      int64     `db:"size" json:"size"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// IssueSummary is a listing row: the issue annotated with its latest status
// record and the users it references.
type IssueSummary struct {
	Issue
	LatestStatus   StatusType `db:"latest_status" json:"latest_status"`
	LatestStatusAt time.Time  `db:"latest_status_at" json:"latest_status_at"`
	SubmittedBy    UserRef    `json:"submitted_by"`
	AssignedTo     *UserRef   `json:"assigned_to,omitempty"`
}

// IssueDetail is the full issue payload: history, comments and attachments.
type IssueDetail struct {
	Issue
	SubmittedBy UserRef       `json:"submitted_by"`
	AssignedTo  *UserRef      `json:"assigned_to,omitempty"`
	Statuses    []IssueStatus `json:"statuses"`
	Comments    []Comment     `json:"comments"`
	Attachments []Attachment  `json:"attachments"`
}

// IssueFilter captures listing criteria. Filters combine with AND; Status
// matches against the issue's latest status record only.
type IssueFilter struct {
	Status        *StatusType
	Category      *Category
	Priority      *Priority
	Search        string
	AssignedToID  string
	SubmittedByID string
	Page          int
	Limit         int
}

package models

// CreateIssueRequest is the payload for submitting a new issue.
type CreateIssueRequest struct {
	Title       string   `json:"title" validate:"required,min=5"`
	Description string   `json:"description" validate:"required,min=10"`
	Category    Category `json:"category" validate:"required,oneof=GRADE_DISPUTE CLASS_SCHEDULE FACULTY_CONCERN COURSE_REGISTRATION GRADUATION_REQUIREMENT OTHER"`
	Priority    Priority `json:"priority" validate:"required,oneof=LOW MEDIUM HIGH URGENT"`
}

// AssignIssueRequest is the payload for assigning an issue to faculty.
type AssignIssueRequest struct {
	AssignedToID string `json:"assigned_to_id" validate:"required"`
	Notes        string `json:"notes"`
}

// UpdateStatusRequest is the payload for appending a status record.
type UpdateStatusRequest struct {
	Status StatusType `json:"status" validate:"required"`
	Notes  string     `json:"notes"`
}

// EscalateIssueRequest is the payload for escalating an issue.
type EscalateIssueRequest struct {
	Reason string `json:"reason" validate:"required"`
}

// AddCommentRequest is the payload for commenting on an issue.
type AddCommentRequest struct {
	Content string `json:"content" validate:"required"`
}

package service

import "github.com/noah-isme/campus-issue-api/internal/models"

// Action enumerates the permission-gated operations on an issue.
type Action string

const (
	ActionAssign       Action = "assign"
	ActionUpdateStatus Action = "update_status"
	ActionEscalate     Action = "escalate"
	ActionComment      Action = "comment"
	ActionView         Action = "view"
)

// CanPerform evaluates whether an actor may perform an action on an issue.
// Pure decision logic; no I/O. targetStatus only matters for ActionUpdateStatus.
//
// Admins may do anything. Assignment is admin-only. A status change is allowed
// for the assigned faculty member on their own issue, and for the submitter
// only when the target status is CLOSED. Escalation is limited to faculty and
// admins. Any authenticated actor may comment. Viewing is limited to the
// submitter, the assignee and admins.
func CanPerform(actorID string, role models.UserRole, action Action, issue *models.Issue, targetStatus models.StatusType) bool {
	if actorID == "" {
		return false
	}
	if role == models.RoleAdmin {
		return true
	}

	switch action {
	case ActionAssign:
		return false
	case ActionUpdateStatus:
		if issue == nil {
			return false
		}
		if role == models.RoleFaculty && issue.AssignedToID != nil && *issue.AssignedToID == actorID {
			return true
		}
		return issue.SubmittedByID == actorID && targetStatus == models.StatusClosed
	case ActionEscalate:
		return role == models.RoleFaculty
	case ActionComment:
		return true
	case ActionView:
		if issue == nil {
			return false
		}
		if issue.SubmittedByID == actorID {
			return true
		}
		return issue.AssignedToID != nil && *issue.AssignedToID == actorID
	}
	return false
}

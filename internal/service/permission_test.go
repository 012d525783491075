package service

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/noah-isme/campus-issue-api/internal/models"
)

func strPtr(s string) *string { return &s }

func TestCanPerformAdminMayDoAnything(t *testing.T) {
	issue := &models.Issue{ID: "i1", SubmittedByID: "student-1"}
	for _, action := range []Action{ActionAssign, ActionUpdateStatus, ActionEscalate, ActionComment, ActionView} {
		assert.True(t, CanPerform("admin-1", models.RoleAdmin, action, issue, models.StatusResolved), string(action))
	}
}

func TestCanPerformAssignIsAdminOnly(t *testing.T) {
	issue := &models.Issue{ID: "i1", SubmittedByID: "student-1", AssignedToID: strPtr("faculty-1")}
	assert.False(t, CanPerform("faculty-1", models.RoleFaculty, ActionAssign, issue, ""))
	assert.False(t, CanPerform("student-1", models.RoleStudent, ActionAssign, issue, ""))
}

func TestCanPerformStatusUpdateRules(t *testing.T) {
	issue := &models.Issue{ID: "i1", SubmittedByID: "student-1", AssignedToID: strPtr("faculty-1")}

	// assigned faculty may set any status on their issue
	assert.True(t, CanPerform("faculty-1", models.RoleFaculty, ActionUpdateStatus, issue, models.StatusInProgress))
	assert.True(t, CanPerform("faculty-1", models.RoleFaculty, ActionUpdateStatus, issue, models.StatusResolved))

	// other faculty may not
	assert.False(t, CanPerform("faculty-2", models.RoleFaculty, ActionUpdateStatus, issue, models.StatusInProgress))

	// submitter may only close
	assert.True(t, CanPerform("student-1", models.RoleStudent, ActionUpdateStatus, issue, models.StatusClosed))
	assert.False(t, CanPerform("student-1", models.RoleStudent, ActionUpdateStatus, issue, models.StatusResolved))

	// unrelated students never
	assert.False(t, CanPerform("student-2", models.RoleStudent, ActionUpdateStatus, issue, models.StatusClosed))
}

func TestCanPerformEscalateLimitedToFaculty(t *testing.T) {
	issue := &models.Issue{ID: "i1", SubmittedByID: "student-1"}
	assert.True(t, CanPerform("faculty-2", models.RoleFaculty, ActionEscalate, issue, ""))
	assert.False(t, CanPerform("student-1", models.RoleStudent, ActionEscalate, issue, ""))
}

func TestCanPerformCommentAnyAuthenticated(t *testing.T) {
	issue := &models.Issue{ID: "i1", SubmittedByID: "student-1"}
	assert.True(t, CanPerform("student-2", models.RoleStudent, ActionComment, issue, ""))
	assert.False(t, CanPerform("", models.RoleStudent, ActionComment, issue, ""))
}

func TestCanPerformViewRestrictedToParticipants(t *testing.T) {
	issue := &models.Issue{ID: "i1", SubmittedByID: "student-1", AssignedToID: strPtr("faculty-1")}
	assert.True(t, CanPerform("student-1", models.RoleStudent, ActionView, issue, ""))
	assert.True(t, CanPerform("faculty-1", models.RoleFaculty, ActionView, issue, ""))
	assert.False(t, CanPerform("student-2", models.RoleStudent, ActionView, issue, ""))
	assert.False(t, CanPerform("faculty-2", models.RoleFaculty, ActionView, issue, ""))
}

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

type mockUserRepo struct {
	users      []models.User
	refs       []models.UserRef
	lastFilter models.UserFilter
	lastRole   models.UserRole
}

func (m *mockUserRepo) List(ctx context.Context, filter models.UserFilter) ([]models.User, int, error) {
	m.lastFilter = filter
	return m.users, len(m.users), nil
}

func (m *mockUserRepo) FindByID(ctx context.Context, id string) (*models.User, error) {
	for i := range m.users {
		if m.users[i].ID == id {
			return &m.users[i], nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m *mockUserRepo) FindRefsByRole(ctx context.Context, role models.UserRole) ([]models.UserRef, error) {
	m.lastRole = role
	return m.refs, nil
}

func TestUserListClampsPagination(t *testing.T) {
	repo := &mockUserRepo{users: []models.User{{ID: "u1"}}}
	svc := NewUserService(repo, zap.NewNop())

	_, pagination, err := svc.List(context.Background(), models.UserFilter{Page: 0, PageSize: 1000})
	require.NoError(t, err)
	assert.Equal(t, 1, repo.lastFilter.Page)
	assert.LessOrEqual(t, repo.lastFilter.PageSize, 100)
	assert.Equal(t, 1, pagination.TotalCount)
}

func TestListFacultyQueriesFacultyRole(t *testing.T) {
	repo := &mockUserRepo{refs: []models.UserRef{{ID: "f1", FullName: "Faculty One"}}}
	svc := NewUserService(repo, zap.NewNop())

	refs, err := svc.ListFaculty(context.Background())
	require.NoError(t, err)
	assert.Equal(t, models.RoleFaculty, repo.lastRole)
	require.Len(t, refs, 1)
	assert.Equal(t, "f1", refs[0].ID)
}

func TestGetUnknownUserMapsToNotFound(t *testing.T) {
	svc := NewUserService(&mockUserRepo{}, zap.NewNop())

	_, err := svc.Get(context.Background(), "missing")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

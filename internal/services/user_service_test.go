package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"rental-backend/internal/models"
)

type mockUserStore struct {
	mock.Mock
}

func (m *mockUserStore) Create(ctx context.Context, u *models.User) error {
	args := m.Called(ctx, u)
	return args.Error(0)
}

func (m *mockUserStore) Get(ctx context.Context, id int) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *mockUserStore) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *mockUserStore) ListByRole(ctx context.Context, role string) ([]*models.User, error) {
	args := m.Called(ctx, role)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.User), args.Error(1)
}

func (m *mockUserStore) Update(ctx context.Context, u *models.User) error {
	args := m.Called(ctx, u)
	return args.Error(0)
}

func (m *mockUserStore) SetActive(ctx context.Context, id int, active bool) error {
	args := m.Called(ctx, id, active)
	return args.Error(0)
}

// newTestUserService wires a mock store and records auth invalidations.
func newTestUserService() (*UserService, *mockUserStore, *[]string) {
	users := new(mockUserStore)
	invalidated := &[]string{}
	svc := NewUserService(users, nil)
	svc.invalidateAuth = func(ctx context.Context, email string) {
		*invalidated = append(*invalidated, email)
	}
	return svc, users, invalidated
}

func staffAccount(id int) *models.User {
	return &models.User{
		ID:       id,
		Name:     "Kiran Shah",
		Email:    "kiran@example.com",
		Phone:    "9876500001",
		Role:     models.RoleStaff,
		IsActive: true,
	}
}

func TestUpdateUserPasswordChangeInvalidatesCachedAuth(t *testing.T) {
	svc, users, invalidated := newTestUserService()
	users.On("Get", mock.Anything, 5).Return(staffAccount(5), nil)
	users.On("Update", mock.Anything, mock.Anything).Return(nil)

	_, err := svc.UpdateUser(context.Background(), 5, &models.UpdateUserRequest{Password: "new-secret"})
	require.NoError(t, err)
	assert.Equal(t, []string{"kiran@example.com"}, *invalidated)
}

func TestUpdateUserEmailChangeInvalidatesOldEmail(t *testing.T) {
	svc, users, invalidated := newTestUserService()
	users.On("Get", mock.Anything, 5).Return(staffAccount(5), nil)
	users.On("Update", mock.Anything, mock.Anything).Return(nil)

	_, err := svc.UpdateUser(context.Background(), 5, &models.UpdateUserRequest{Email: "new@example.com"})
	require.NoError(t, err)
	assert.Equal(t, []string{"kiran@example.com"}, *invalidated)
}

func TestUpdateUserProfileChangeKeepsCachedAuth(t *testing.T) {
	svc, users, invalidated := newTestUserService()
	users.On("Get", mock.Anything, 5).Return(staffAccount(5), nil)
	users.On("Update", mock.Anything, mock.Anything).Return(nil)

	_, err := svc.UpdateUser(context.Background(), 5, &models.UpdateUserRequest{Name: "Kiran S Shah"})
	require.NoError(t, err)
	assert.Empty(t, *invalidated)
}

func TestDeactivationInvalidatesCachedAuth(t *testing.T) {
	svc, users, invalidated := newTestUserService()
	users.On("Get", mock.Anything, 5).Return(staffAccount(5), nil)
	users.On("SetActive", mock.Anything, 5, false).Return(nil)

	require.NoError(t, svc.SetActive(context.Background(), 5, false))
	assert.Equal(t, []string{"kiran@example.com"}, *invalidated)
}

func TestReactivationKeepsCachedAuth(t *testing.T) {
	svc, users, invalidated := newTestUserService()
	users.On("Get", mock.Anything, 5).Return(staffAccount(5), nil)
	users.On("SetActive", mock.Anything, 5, true).Return(nil)

	require.NoError(t, svc.SetActive(context.Background(), 5, true))
	assert.Empty(t, *invalidated)
}

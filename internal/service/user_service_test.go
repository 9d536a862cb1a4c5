package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/campusdesk/timetable-api/internal/models"
	appErrors "github.com/campusdesk/timetable-api/pkg/errors"
)

type fakeUserRepo struct {
	users []models.User
}

func (f *fakeUserRepo) List(_ context.Context) ([]models.User, error) {
	return f.users, nil
}

func (f *fakeUserRepo) FindByName(_ context.Context, name string) (*models.User, error) {
	for i := range f.users {
		if f.users[i].Name == name {
			return &f.users[i], nil
		}
	}
	return nil, sql.ErrNoRows
}

func (f *fakeUserRepo) FindByID(_ context.Context, id string) (*models.User, error) {
	for i := range f.users {
		if f.users[i].ID == id {
			return &f.users[i], nil
		}
	}
	return nil, sql.ErrNoRows
}

func (f *fakeUserRepo) Create(_ context.Context, user *models.User) error {
	if user.ID == "" {
		user.ID = "user-generated"
	}
	f.users = append(f.users, *user)
	return nil
}

func TestCreateUserHashesPassword(t *testing.T) {
	repo := &fakeUserRepo{}
	svc := NewUserService(repo, nil, zap.NewNop())

	user, err := svc.Create(context.Background(), CreateUserRequest{
		Name:     "jdoe",
		Password: "s3cret-pass",
		Role:     models.RoleFaculty,
	})
	require.NoError(t, err)
	assert.Equal(t, models.RoleFaculty, user.Role)
	assert.NotEqual(t, "s3cret-pass", user.PasswordHash)

	require.Len(t, repo.users, 1)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(repo.users[0].PasswordHash), []byte("s3cret-pass")))
}

func TestCreateUserRejectsDuplicateName(t *testing.T) {
	repo := &fakeUserRepo{users: []models.User{{ID: "user-1", Name: "jdoe"}}}
	svc := NewUserService(repo, nil, zap.NewNop())

	_, err := svc.Create(context.Background(), CreateUserRequest{
		Name:     "jdoe",
		Password: "another-pass",
		Role:     models.RoleStudent,
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
	assert.Len(t, repo.users, 1)
}

func TestCreateUserValidatesPayload(t *testing.T) {
	svc := NewUserService(&fakeUserRepo{}, nil, zap.NewNop())

	cases := []CreateUserRequest{
		{Name: "jdoe", Password: "short", Role: models.RoleAdmin},
		{Name: "jdoe", Password: "long-enough", Role: "principal"},
		{Name: "", Password: "long-enough", Role: models.RoleAdmin},
	}
	for _, req := range cases {
		_, err := svc.Create(context.Background(), req)
		require.Error(t, err)
		assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
	}
}

func TestListUsers(t *testing.T) {
	repo := &fakeUserRepo{users: []models.User{
		{ID: "user-1", Name: "jdoe", Role: models.RoleAdmin},
		{ID: "user-2", Name: "asmith", Role: models.RoleStudent},
	}}
	svc := NewUserService(repo, nil, zap.NewNop())

	users, err := svc.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, users, 2)
}

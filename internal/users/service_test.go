package users_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/white-jotter/white-jotter/internal/shared"
	"github.com/white-jotter/white-jotter/internal/users"
	_ "github.com/white-jotter/white-jotter/testing"
)

type stubUserRepo struct {
	users     map[int64]*users.User
	passwords map[int64]string
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{
		users:     make(map[int64]*users.User),
		passwords: make(map[int64]string),
	}
}

func (s *stubUserRepo) add(id int64, username string, enabled bool) {
	s.users[id] = &users.User{ID: id, Username: username, Enabled: enabled}
}

func (s *stubUserRepo) ListUsers(ctx context.Context) ([]users.User, error) {
	out := make([]users.User, 0, len(s.users))
	for _, u := range s.users {
		out = append(out, *u)
	}
	return out, nil
}

func (s *stubUserRepo) UpdateUserStatus(ctx context.Context, id int64, enabled bool) error {
	u, ok := s.users[id]
	if !ok {
		return shared.ErrNotFound
	}
	u.Enabled = enabled
	return nil
}

func (s *stubUserRepo) UpdatePassword(ctx context.Context, id int64, passwordHash string) error {
	if _, ok := s.users[id]; !ok {
		return shared.ErrNotFound
	}
	s.passwords[id] = passwordHash
	return nil
}

func (s *stubUserRepo) UpdateUsername(ctx context.Context, id int64, username string) error {
	u, ok := s.users[id]
	if !ok {
		return shared.ErrNotFound
	}
	u.Username = username
	return nil
}

type stubAssignments struct {
	byUser map[int64][]int64
	err    error
}

func (s *stubAssignments) SetUserRoles(ctx context.Context, userID int64, roleIDs []int64) error {
	if s.err != nil {
		return s.err
	}
	if s.byUser == nil {
		s.byUser = make(map[int64][]int64)
	}
	s.byUser[userID] = append([]int64(nil), roleIDs...)
	return nil
}

func TestUpdateUserStatusDisables(t *testing.T) {
	repo := newStubUserRepo()
	repo.add(1, "admin", true)
	service := users.NewService(repo, &stubAssignments{})

	require.NoError(t, service.UpdateUserStatus(context.Background(), 1, false))
	assert.False(t, repo.users[1].Enabled)

	assert.ErrorIs(t, service.UpdateUserStatus(context.Background(), 99, false), shared.ErrNotFound)
}

func TestResetPasswordInstallsDefaultCredential(t *testing.T) {
	repo := newStubUserRepo()
	repo.add(1, "admin", true)
	service := users.NewService(repo, &stubAssignments{})

	require.NoError(t, service.ResetPassword(context.Background(), 1))
	hash := repo.passwords[1]
	require.NotEmpty(t, hash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(hash), []byte("123")))
}

func TestResetPasswordUnknownUser(t *testing.T) {
	service := users.NewService(newStubUserRepo(), &stubAssignments{})

	assert.ErrorIs(t, service.ResetPassword(context.Background(), 42), shared.ErrNotFound)
}

func TestEditUserRenamesAndReassignsRoles(t *testing.T) {
	repo := newStubUserRepo()
	repo.add(1, "olduser", true)
	assignments := &stubAssignments{}
	service := users.NewService(repo, assignments)

	require.NoError(t, service.EditUser(context.Background(), 1, "  ｎｅｗｕｓｅｒ ", []int64{2, 3}))
	assert.Equal(t, "newuser", repo.users[1].Username)
	assert.Equal(t, []int64{2, 3}, assignments.byUser[1])
}

func TestEditUserUnknownUserSkipsRoleWrite(t *testing.T) {
	assignments := &stubAssignments{}
	service := users.NewService(newStubUserRepo(), assignments)

	err := service.EditUser(context.Background(), 42, "anyone", []int64{1})
	require.ErrorIs(t, err, shared.ErrNotFound)
	assert.Empty(t, assignments.byUser)
}

func TestEditUserClearsRolesWithEmptySet(t *testing.T) {
	repo := newStubUserRepo()
	repo.add(1, "admin", true)
	assignments := &stubAssignments{byUser: map[int64][]int64{1: {5}}}
	service := users.NewService(repo, assignments)

	require.NoError(t, service.EditUser(context.Background(), 1, "admin", nil))
	assert.Empty(t, assignments.byUser[1])
}

func TestListUsers(t *testing.T) {
	repo := newStubUserRepo()
	repo.add(1, "admin", true)
	repo.add(2, "editor", false)
	service := users.NewService(repo, &stubAssignments{})

	list, err := service.ListUsers(context.Background())
	require.NoError(t, err)
	assert.Len(t, list, 2)
}

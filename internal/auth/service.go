package auth

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
	"golang.org/x/text/unicode/norm"

	"github.com/white-jotter/white-jotter/internal/shared"
)

// Service wraps authentication business rules. Credential failures are
// classified here and returned as data; nothing in this layer is retried.
type Service struct {
	repo Repository
}

// NewService constructs a new Service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Login validates username/password credentials and, on success, binds the
// user to the session. The checks run in a fixed order: account lookup,
// credential comparison, enabled flag. Reordering would change which
// failure a disabled account with a wrong password reports.
func (s *Service) Login(ctx context.Context, sess *shared.Session, username, password string) (LoginOutcome, *User, error) {
	user, err := s.repo.FindByUsername(ctx, NormalizeUsername(username))
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return LoginUnknownAccount, nil, nil
		}
		return LoginUnknownAccount, nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return LoginIncorrectCredentials, nil, nil
	}
	if !user.Enabled {
		return LoginAccountDisabled, nil, nil
	}
	if sess != nil {
		sess.SetUser(strconv.FormatInt(user.ID, 10))
	}
	return LoginSuccess, user, nil
}

// Logout unbinds the session principal. Logging out an anonymous session is
// a no-op.
func (s *Service) Logout(sess *shared.Session) {
	if sess == nil {
		return
	}
	sess.ClearUser()
}

// CheckAuthenticated reports whether a principal is bound to the session.
func (s *Service) CheckAuthenticated(sess *shared.Session) bool {
	return sess != nil && sess.User() != ""
}

// Register creates a new enabled account with no role assignments.
func (s *Service) Register(ctx context.Context, username, password string) (RegisterOutcome, *User, error) {
	username = NormalizeUsername(username)
	if username == "" || strings.TrimSpace(password) == "" {
		return RegisterEmptyCredentials, nil, nil
	}

	if _, err := s.repo.FindByUsername(ctx, username); err == nil {
		return RegisterAccountExists, nil, nil
	} else if !errors.Is(err, shared.ErrNotFound) {
		return RegisterUnknownError, nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return RegisterUnknownError, nil, err
	}

	user, err := s.repo.CreateUser(ctx, username, string(hash), true)
	if err != nil {
		if errors.Is(err, shared.ErrDuplicate) {
			return RegisterAccountExists, nil, nil
		}
		return RegisterUnknownError, nil, err
	}
	return Registered, user, nil
}

// RegisterSession persists the session audit record.
func (s *Service) RegisterSession(ctx context.Context, id string, userID int64, expiresAt time.Time, ip, ua string) error {
	return s.repo.CreateSession(ctx, id, userID, expiresAt, ip, ua)
}

// RemoveSession deletes a session audit record.
func (s *Service) RemoveSession(ctx context.Context, id string) error {
	return s.repo.DeleteSession(ctx, id)
}

// NormalizeUsername trims whitespace and applies NFKC so that visually
// identical usernames map to one account.
func NormalizeUsername(username string) string {
	return norm.NFKC.String(strings.TrimSpace(username))
}

package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/jms1308/kitobim/internal/auth"
	"github.com/jms1308/kitobim/internal/domain"
	applog "github.com/jms1308/kitobim/internal/log"
	"github.com/jms1308/kitobim/internal/repos"
	"github.com/jms1308/kitobim/internal/validate"
)

// Status is where a request stands in session resolution.
type Status int

const (
	// StatusPending is the zero value: nothing has been resolved yet.
	StatusPending Status = iota
	StatusAuthenticated
	StatusAnonymous
)

func (s Status) String() string {
	switch s {
	case StatusAuthenticated:
		return "authenticated"
	case StatusAnonymous:
		return "anonymous"
	}
	return "pending"
}

type Session struct {
	Status Status
	User   *domain.User
}

func (s Session) Authenticated() bool { return s.Status == StatusAuthenticated && s.User != nil }

type AuthService struct {
	Users  *repos.UserRepo
	Tokens *auth.Issuer
	now    func() time.Time
}

func NewAuthService(users *repos.UserRepo, tokens *auth.Issuer) *AuthService {
	return &AuthService{Users: users, Tokens: tokens, now: time.Now}
}

// Signup creates the account and logs sid in. When only the login step fails
// the user is returned together with ErrAutoLogin.
func (s *AuthService) Signup(ctx context.Context, sid, username, phone, password string) (*domain.User, error) {
	form := validate.SignupForm{Username: username, Phone: phone, Password: password}
	form.Normalize()
	if errs := form.Validate(); errs != nil {
		if _, ok := errs["Phone"]; ok && len(errs) == 1 {
			return nil, ErrBadPhone
		}
		return nil, invalid(errs)
	}
	norm, _ := validate.Phone(form.Phone)
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if errors.Is(err, bcrypt.ErrPasswordTooLong) {
		return nil, invalid(map[string]string{"Password": validate.FieldMessage("Password", "bytemax")})
	}
	if err != nil {
		return nil, errors.Wrap(err, "hash password")
	}
	u := &domain.User{
		ID:       uuid.NewString(),
		Username: form.Username,
		Phone:    norm,
		Hash:     string(hash),
	}
	if err := s.Users.Create(ctx, u); err != nil {
		if errors.Is(err, repos.ErrDuplicate) {
			return nil, ErrPhoneTaken
		}
		return nil, err
	}
	if _, err := s.Login(ctx, sid, norm, password); err != nil {
		applog.L().Warn("auth.signup.autologin_fail", zap.String("user_id", u.ID), zap.Error(err))
		return u, ErrAutoLogin
	}
	return u, nil
}

// Login checks the credentials and binds sid to the user.
func (s *AuthService) Login(ctx context.Context, sid, phone, password string) (*domain.User, error) {
	norm, ok := validate.Phone(phone)
	if !ok {
		return nil, ErrBadCreds
	}
	u, err := s.Users.ByPhone(ctx, norm)
	if err != nil {
		if errors.Is(err, repos.ErrNotFound) {
			return nil, ErrBadCreds
		}
		return nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(u.Hash), []byte(password)) != nil {
		return nil, ErrBadCreds
	}
	if sid != "" {
		if err := s.Users.BindSession(ctx, sid, u.ID); err != nil {
			return nil, err
		}
	}
	return u, nil
}

func (s *AuthService) Logout(ctx context.Context, sid string) error {
	if sid == "" {
		return nil
	}
	return s.Users.UnbindSession(ctx, sid)
}

// Resolve settles sid to authenticated or anonymous. A lookup that fails for
// any reason other than "no such session" unbinds sid.
func (s *AuthService) Resolve(ctx context.Context, sid string) Session {
	if sid == "" {
		return Session{Status: StatusAnonymous}
	}
	u, err := s.Users.SessionUser(ctx, sid)
	switch {
	case err == nil:
		if err := s.Users.TouchSession(ctx, sid); err != nil {
			applog.L().Warn("auth.session.touch_fail", zap.Error(err))
		}
		return Session{Status: StatusAuthenticated, User: u}
	case errors.Is(err, repos.ErrNotFound):
		return Session{Status: StatusAnonymous}
	}
	applog.L().Warn("auth.session.resolve_fail", zap.Error(err))
	if err := s.Users.UnbindSession(ctx, sid); err != nil {
		applog.L().Warn("auth.session.unbind_fail", zap.Error(err))
	}
	return Session{Status: StatusAnonymous}
}

// PruneSessions drops logged-out sessions and those idle longer than olderThan.
func (s *AuthService) PruneSessions(ctx context.Context, olderThan time.Duration) (int64, error) {
	before := s.now().Add(-olderThan).UTC().Format(domain.TimeLayout)
	return s.Users.PruneSessions(ctx, before)
}

func (s *AuthService) IssueToken(u *domain.User) (string, error) {
	return s.Tokens.Issue(u.ID, u.Username)
}

// ParseToken returns the user a bearer token was issued to.
func (s *AuthService) ParseToken(ctx context.Context, token string) (*domain.User, error) {
	claims, err := s.Tokens.Parse(token)
	if err != nil {
		return nil, err
	}
	u, err := s.Users.ByID(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, repos.ErrNotFound) {
			return nil, auth.ErrInvalidToken
		}
		return nil, err
	}
	return u, nil
}

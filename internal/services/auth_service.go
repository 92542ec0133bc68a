package services

import (
	"encoding/json"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	apperrors "budgetapp/internal/errors"
	"budgetapp/internal/logger"
	"budgetapp/internal/metrics"
	"budgetapp/internal/models"
	"budgetapp/internal/session"
	"budgetapp/internal/store"
)

// MinPasswordLength is the shortest password accepted at sign-up.
const MinPasswordLength = 6

// Password storage modes.
const (
	PasswordStorageBcrypt    = "bcrypt"
	PasswordStoragePlaintext = "plaintext"
)

// AuthConfig controls how credentials are stored.
type AuthConfig struct {
	// PasswordStorage is PasswordStorageBcrypt (default) or PasswordStoragePlaintext.
	PasswordStorage string
	// BcryptCost defaults to bcrypt.DefaultCost.
	BcryptCost int
}

func (c AuthConfig) hashing() bool {
	return c.PasswordStorage != PasswordStoragePlaintext
}

// authService handles sign-up, login and session bookkeeping.
type authService struct {
	store    store.Store
	sessions *session.Manager
	cfg      AuthConfig
	log      *zap.SugaredLogger
}

// NewAuthService creates a new AuthServicer.
func NewAuthService(st store.Store, sessions *session.Manager, cfg AuthConfig) AuthServicer {
	if cfg.BcryptCost == 0 {
		cfg.BcryptCost = bcrypt.DefaultCost
	}
	return &authService{
		store:    st,
		sessions: sessions,
		cfg:      cfg,
		log:      logger.Named("auth"),
	}
}

// SignUp stores credentials for a new user. It does not log the user in.
func (s *authService) SignUp(username, password, confirm string) (err error) {
	defer func() { metrics.ObserveAuth("signup", err) }()

	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "username and password are required")
	}
	if password != confirm {
		return apperrors.ErrPasswordMismatch
	}
	if len(password) < MinPasswordLength {
		return apperrors.ErrPasswordTooShort
	}

	_, ok, err := s.store.Get(store.UserKey(username))
	if err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if ok {
		return apperrors.ErrDuplicateUser
	}

	stored, err := s.encodePassword(password)
	if err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if err := s.writeCredentials(models.Credentials{Username: username, Password: stored}); err != nil {
		return err
	}

	s.log.Infow("user signed up", "username", username, "password_storage", s.storageMode())
	return nil
}

// Login verifies credentials, records the user as logged in and opens their
// session. It returns the canonical username.
func (s *authService) Login(username, password string) (_ string, err error) {
	defer func() { metrics.ObserveAuth("login", err) }()

	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return "", apperrors.WithMessage(apperrors.ErrInvalidInput, "username and password are required")
	}

	creds, err := s.readCredentials(username)
	if err != nil {
		return "", err
	}
	if !verifyPassword(creds, password) {
		return "", apperrors.ErrInvalidCredentials
	}

	if !creds.IsHashed() && s.cfg.hashing() {
		s.upgradePassword(creds, password)
	}

	if err := s.store.Set(store.SessionKey, username); err != nil {
		return "", apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if _, err := s.sessions.Open(username); err != nil {
		return "", err
	}
	metrics.ActiveSessions.Set(float64(s.sessions.Active()))

	s.log.Infow("user logged in", "username", username)
	return username, nil
}

// Logout closes the user's session. The logged-in marker is removed only when
// it names this user.
func (s *authService) Logout(username string) error {
	username = strings.TrimSpace(username)
	s.sessions.Close(username)
	metrics.ActiveSessions.Set(float64(s.sessions.Active()))

	current, ok, err := s.store.Get(store.SessionKey)
	if err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if ok && current == username {
		if err := s.store.Remove(store.SessionKey); err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
	}

	s.log.Infow("user logged out", "username", username)
	return nil
}

// Resume reopens the session of the user recorded as logged in.
func (s *authService) Resume() (string, error) {
	username, err := s.CurrentUser()
	if err != nil {
		return "", err
	}
	if _, err := s.sessions.Acquire(username); err != nil {
		return "", err
	}
	metrics.ActiveSessions.Set(float64(s.sessions.Active()))
	return username, nil
}

// CurrentUser returns the user recorded as logged in, or UNAUTHORIZED.
func (s *authService) CurrentUser() (string, error) {
	username, ok, err := s.store.Get(store.SessionKey)
	if err != nil {
		return "", apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if !ok || strings.TrimSpace(username) == "" {
		return "", apperrors.ErrUnauthorized
	}
	return username, nil
}

func (s *authService) readCredentials(username string) (models.Credentials, error) {
	raw, ok, err := s.store.Get(store.UserKey(username))
	if err != nil {
		return models.Credentials{}, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if !ok {
		return models.Credentials{}, apperrors.ErrUserNotFound
	}

	var creds models.Credentials
	if err := json.Unmarshal([]byte(raw), &creds); err != nil {
		return models.Credentials{}, apperrors.Wrap(apperrors.ErrInternalServer, fmt.Errorf("decode credentials for %s: %w", username, err))
	}
	if creds.Username == "" {
		creds.Username = username
	}
	return creds, nil
}

func (s *authService) writeCredentials(creds models.Credentials) error {
	data, err := json.Marshal(creds)
	if err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if err := s.store.Set(store.UserKey(creds.Username), string(data)); err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

func (s *authService) encodePassword(password string) (string, error) {
	if !s.cfg.hashing() {
		return password, nil
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cfg.BcryptCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// upgradePassword rewrites a plaintext record as a bcrypt hash. Failure is
// logged; the login itself already succeeded.
func (s *authService) upgradePassword(creds models.Credentials, password string) {
	hash, err := s.encodePassword(password)
	if err == nil {
		creds.Password = hash
		err = s.writeCredentials(creds)
	}
	if err != nil {
		s.log.Warnw("failed to upgrade plaintext password", "username", creds.Username, "error", err)
		return
	}
	s.log.Infow("upgraded plaintext password to bcrypt", "username", creds.Username)
}

func (s *authService) storageMode() string {
	if s.cfg.hashing() {
		return PasswordStorageBcrypt
	}
	return PasswordStoragePlaintext
}

func verifyPassword(creds models.Credentials, password string) bool {
	if creds.IsHashed() {
		return bcrypt.CompareHashAndPassword([]byte(creds.Password), []byte(password)) == nil
	}
	return creds.Password == password
}

package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	otelcodes "go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/trace"

	"auth-service/internal/security"
	"auth-service/internal/telemetry"
	userdomain "auth-service/internal/user/domain"
	userrepo "auth-service/internal/user/repository"
	"auth-service/pkg/errutil"
)

const instrumentationName = "auth-service/internal/identity/service"

// bcrypt ignores input past 72 bytes.
const maxPasswordBytes = 72

var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// SignUpRequest carries the fields for Register.
type SignUpRequest struct {
	Username string   `json:"username"`
	Email    string   `json:"email"`
	Password string   `json:"password"`
	Roles    []string `json:"roles,omitempty"`
}

// SignInRequest carries the credentials for Login.
type SignInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// TokenPair is issued on login and on every refresh. ExpiresIn is the access
// token's expiry instant in Unix milliseconds.
type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	ExpiresIn    int64  `json:"expiresIn"`
}

// Session is the result of a successful Login.
type Session struct {
	User  userdomain.PublicUser `json:"user"`
	Token TokenPair             `json:"token"`
}

// RegisterResult is the result of a successful Register.
type RegisterResult struct {
	User userdomain.PublicUser `json:"user"`
}

// UserRepo is the minimal user repository needed by the auth service.
type UserRepo interface {
	GetActiveByEmail(ctx context.Context, email string) (*userdomain.User, error)
	GetByID(ctx context.Context, id string) (*userdomain.User, error)
	Create(ctx context.Context, u *userdomain.User) error
	UpdateSessionFingerprint(ctx context.Context, userID, fingerprintHash string, at time.Time) error
	ClearSessionFingerprint(ctx context.Context, userID string, at time.Time) error
}

// AuthService implements registration, login, session refresh and verification.
// Each user has at most one live session: the fingerprint of its id is stored on the
// user row and every login or refresh overwrites it. AuthService holds no mutable
// state and is safe for concurrent use.
type AuthService struct {
	users  UserRepo
	hasher *security.Hasher
	tokens *security.TokenSigner
	ids    security.IDGenerator
	cfg    Config
	logger *slog.Logger
	events telemetry.EventEmitter
	now    func() time.Time

	tracer        trace.Tracer
	logins        metric.Int64Counter
	refreshes     metric.Int64Counter
	verifications metric.Int64Counter
}

// NewAuthService returns an AuthService with the given dependencies. ids and logger
// may be nil to use security.DefaultIDGenerator and slog.Default.
func NewAuthService(
	users UserRepo,
	hasher *security.Hasher,
	tokens *security.TokenSigner,
	ids security.IDGenerator,
	cfg Config,
	logger *slog.Logger,
) (*AuthService, error) {
	if users == nil || hasher == nil || tokens == nil {
		return nil, errors.New("auth service: user repository, hasher and token signer are required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.Issuer != "" && cfg.Issuer != tokens.Issuer() {
		return nil, fmt.Errorf("auth service: config issuer %q does not match token signer issuer %q", cfg.Issuer, tokens.Issuer())
	}
	if ids == nil {
		ids = security.DefaultIDGenerator
	}
	if logger == nil {
		logger = slog.Default()
	}
	meter := otel.Meter(instrumentationName)
	return &AuthService{
		users:         users,
		hasher:        hasher,
		tokens:        tokens,
		ids:           ids,
		cfg:           cfg,
		logger:        logger.With("component", "auth_service"),
		now:           time.Now,
		tracer:        otel.Tracer(instrumentationName),
		logins:        counter(meter, "auth.logins", "Login attempts by outcome"),
		refreshes:     counter(meter, "auth.refreshes", "Session refreshes by outcome"),
		verifications: counter(meter, "auth.verifications", "Session verifications by outcome"),
	}, nil
}

// SetEventEmitter sets the sink for lifecycle events. Call before serving; nil disables events.
func (s *AuthService) SetEventEmitter(e telemetry.EventEmitter) {
	s.events = e
}

func (s *AuthService) emit(ctx context.Context, eventType, userID string) {
	telemetry.EmitAsync(ctx, s.events, s.logger, &telemetry.Event{
		Type:      eventType,
		UserID:    userID,
		Source:    "auth_service",
		CreatedAt: s.now().UTC(),
	})
}

func counter(meter metric.Meter, name, desc string) metric.Int64Counter {
	c, err := meter.Int64Counter(name, metric.WithDescription(desc))
	if err != nil {
		return noop.Int64Counter{}
	}
	return c
}

// Register creates an active user with a bcrypt hash of the password and returns
// its public projection.
func (s *AuthService) Register(ctx context.Context, req SignUpRequest) (_ *RegisterResult, err error) {
	ctx, span := s.tracer.Start(ctx, "AuthService.Register")
	defer func() { endSpan(span, err) }()

	username := strings.TrimSpace(req.Username)
	email := userdomain.NormalizeEmail(req.Email)
	if err := validateSignUp(username, email, req.Password); err != nil {
		return nil, err
	}

	hashed, err := s.hasher.Hash(req.Password)
	if err != nil {
		errutil.LogErrorContext(ctx, s.logger, "hash password failed", err)
		return nil, internalError()
	}
	userID, err := s.ids.Generate()
	if err != nil {
		errutil.LogErrorContext(ctx, s.logger, "generate user id failed", err)
		return nil, internalError()
	}
	now := s.now().UTC()
	user := &userdomain.User{
		ID:           userID,
		Username:     username,
		Email:        email,
		PasswordHash: hashed,
		Roles:        req.Roles,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := user.Validate(); err != nil {
		return nil, invalidRequest(err.Error())
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, userrepo.ErrDuplicateEmail) {
			return nil, invalidRequest(msgEmailExists)
		}
		errutil.LogErrorContext(ctx, s.logger, "create user failed", err)
		return nil, invalidRequest(msgBadRequest)
	}
	s.logger.InfoContext(ctx, "user registered", "user_id", user.ID)
	s.emit(ctx, telemetry.EventUserRegistered, user.ID)
	return &RegisterResult{User: user.Public()}, nil
}

// Login checks email and password and starts a new session, replacing any existing one.
// An unknown email and a wrong password fail with the same error.
func (s *AuthService) Login(ctx context.Context, req SignInRequest) (_ *Session, err error) {
	ctx, span := s.tracer.Start(ctx, "AuthService.Login")
	defer func() {
		s.logins.Add(ctx, 1, metric.WithAttributes(outcomeAttr(err)))
		endSpan(span, err)
	}()

	email := userdomain.NormalizeEmail(req.Email)
	var user *userdomain.User
	if email != "" {
		user, err = s.users.GetActiveByEmail(ctx, email)
		if err != nil {
			errutil.LogErrorContext(ctx, s.logger, "look up user by email failed", err)
			return nil, internalError()
		}
	}
	hashed := ""
	if user != nil {
		hashed = user.PasswordHash
	}
	// Verify runs even when user is nil so both failures cost one bcrypt comparison.
	if !s.hasher.Verify(req.Password, hashed) || user == nil {
		return nil, invalidCredentials()
	}

	pair, err := s.startSession(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	span.SetAttributes(attribute.String("user_id", user.ID))
	s.emit(ctx, telemetry.EventSessionStarted, user.ID)
	return &Session{User: user.Public(), Token: *pair}, nil
}

// RefreshSession rotates the session named by refreshToken: a new session id is
// fingerprinted and a new token pair issued. Tokens of the previous session stop
// verifying. Only the refresh token of the current session is accepted.
func (s *AuthService) RefreshSession(ctx context.Context, refreshToken string) (_ *TokenPair, err error) {
	ctx, span := s.tracer.Start(ctx, "AuthService.RefreshSession")
	defer func() {
		s.refreshes.Add(ctx, 1, metric.WithAttributes(outcomeAttr(err)))
		endSpan(span, err)
	}()

	user, err := s.resolveSession(ctx, security.TokenKindRefresh, refreshToken, s.cfg.RefreshSecret)
	if err != nil {
		return nil, err
	}
	pair, err := s.startSession(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	s.emit(ctx, telemetry.EventSessionRefreshed, user.ID)
	return pair, nil
}

// VerifySession returns the user owning accessToken if its session is still current.
func (s *AuthService) VerifySession(ctx context.Context, accessToken string) (_ *userdomain.PublicUser, err error) {
	ctx, span := s.tracer.Start(ctx, "AuthService.VerifySession")
	defer func() {
		s.verifications.Add(ctx, 1, metric.WithAttributes(outcomeAttr(err)))
		endSpan(span, err)
	}()

	user, err := s.resolveSession(ctx, security.TokenKindAccess, accessToken, s.cfg.AccessSecret)
	if err != nil {
		return nil, err
	}
	p := user.Public()
	return &p, nil
}

// Logout ends the session named by accessToken by clearing the stored fingerprint.
// Every token issued for that session fails verification afterwards.
func (s *AuthService) Logout(ctx context.Context, accessToken string) (err error) {
	ctx, span := s.tracer.Start(ctx, "AuthService.Logout")
	defer func() { endSpan(span, err) }()

	user, err := s.resolveSession(ctx, security.TokenKindAccess, accessToken, s.cfg.AccessSecret)
	if err != nil {
		return err
	}
	if err := s.users.ClearSessionFingerprint(ctx, user.ID, s.now().UTC()); err != nil {
		if errors.Is(err, userrepo.ErrNotFound) {
			return invalidSession()
		}
		errutil.LogErrorContext(ctx, s.logger, "clear session fingerprint failed", err, "user_id", user.ID)
		return internalError()
	}
	s.logger.InfoContext(ctx, "session ended", "user_id", user.ID)
	s.emit(ctx, telemetry.EventSessionEnded, user.ID)
	return nil
}

// resolveSession verifies token and returns its user if the user is active and the
// token's session id matches the stored fingerprint. Token failures are returned
// before the store is touched.
func (s *AuthService) resolveSession(ctx context.Context, kind security.TokenKind, token string, secret []byte) (*userdomain.User, error) {
	payload, err := s.tokens.Verify(kind, token, secret)
	if err != nil {
		return nil, tokenError(err)
	}
	user, err := s.users.GetByID(ctx, payload.UserID)
	if err != nil {
		errutil.LogErrorContext(ctx, s.logger, "look up user by id failed", err, "user_id", payload.UserID)
		return nil, internalError()
	}
	if user == nil || !user.IsActive {
		return nil, invalidSession()
	}
	if user.SessionFingerprintHash == nil || !security.SessionIDMatches(payload.SessionID, *user.SessionFingerprintHash) {
		return nil, invalidSession()
	}
	return user, nil
}

// startSession generates a session id, issues the token pair for it and stores
// its fingerprint. Concurrent calls for one user race; the last write wins.
func (s *AuthService) startSession(ctx context.Context, userID string) (*TokenPair, error) {
	sessionID, err := s.ids.Generate()
	if err != nil {
		errutil.LogErrorContext(ctx, s.logger, "generate session id failed", err)
		return nil, internalError()
	}
	p := security.Payload{UserID: userID, SessionID: sessionID}
	access, accessExp, err := s.tokens.Issue(security.TokenKindAccess, p, s.cfg.AccessSecret, s.cfg.AccessTTL)
	if err != nil {
		errutil.LogErrorContext(ctx, s.logger, "issue access token failed", err)
		return nil, internalError()
	}
	refresh, _, err := s.tokens.Issue(security.TokenKindRefresh, p, s.cfg.RefreshSecret, s.cfg.RefreshTTL)
	if err != nil {
		errutil.LogErrorContext(ctx, s.logger, "issue refresh token failed", err)
		return nil, internalError()
	}
	if err := s.users.UpdateSessionFingerprint(ctx, userID, security.HashSessionID(sessionID), s.now().UTC()); err != nil {
		if errors.Is(err, userrepo.ErrNotFound) {
			return nil, invalidSession()
		}
		errutil.LogErrorContext(ctx, s.logger, "store session fingerprint failed", err, "user_id", userID)
		return nil, internalError()
	}
	return &TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresIn:    accessExp.UnixMilli(),
	}, nil
}

func tokenError(err error) *Error {
	if errors.Is(err, security.ErrTokenExpired) {
		return &Error{Kind: KindTokenExpired, Message: msgTokenExpired}
	}
	return &Error{Kind: KindTokenInvalid, Message: msgTokenInvalid}
}

func validateSignUp(username, email, password string) error {
	if username == "" {
		return invalidRequest("username is required")
	}
	if email == "" {
		return invalidRequest("email is required")
	}
	if !emailPattern.MatchString(email) {
		return invalidRequest("invalid email format")
	}
	if password == "" {
		return invalidRequest("password is required")
	}
	if len(password) > maxPasswordBytes {
		return invalidRequest("password must be at most 72 bytes")
	}
	return nil
}

func outcomeAttr(err error) attribute.KeyValue {
	if err == nil {
		return attribute.String("outcome", "success")
	}
	var e *Error
	if errors.As(err, &e) {
		return attribute.String("outcome", strings.ToLower(string(e.Kind)))
	}
	return attribute.String("outcome", "error")
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		var e *Error
		if errors.As(err, &e) {
			span.SetAttributes(attribute.String("auth.error_kind", string(e.Kind)))
		}
		span.SetStatus(otelcodes.Error, err.Error())
	}
	span.End()
}

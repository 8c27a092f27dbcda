package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/launchbase/accountd/internal/domain"
	"github.com/launchbase/accountd/internal/password"
	"github.com/launchbase/accountd/internal/repository"
	"github.com/launchbase/accountd/internal/token"
)

// AuthService orchestrates signup and login over the credential store and the
// token issuer. Each call is an independent, stateless request unit.
type AuthService struct {
	users     repository.UserRepository
	issuer    *token.Issuer
	snowflake *snowflake.Node
	logger    *zap.Logger
	tracer    trace.Tracer
}

// NewAuthService wires dependencies.
func NewAuthService(users repository.UserRepository, issuer *token.Issuer, node *snowflake.Node, logger *zap.Logger) *AuthService {
	return &AuthService{
		users:     users,
		issuer:    issuer,
		snowflake: node,
		logger:    logger,
		tracer:    otel.Tracer("github.com/launchbase/accountd/internal/service"),
	}
}

// SignUp validates and creates a new account. The plaintext password only
// exists on the stack of this call; the store receives the derived hash.
func (s *AuthService) SignUp(ctx context.Context, email, plaintext string) (SignUpResult, error) {
	ctx, span := s.startSpan(ctx, "AuthService.SignUp")
	defer span.End()

	normalized := normalizeEmail(email)
	trimmed := strings.TrimSpace(plaintext)
	if normalized == "" || trimmed == "" {
		return SignUpResult{}, errMissingField
	}

	hashed, err := password.Hash(trimmed)
	if err != nil {
		span.RecordError(err)
		s.log().Error("hash password", zap.Error(err))
		return SignUpResult{}, internalError("Registration failed")
	}

	user := domain.User{
		ID:           s.snowflake.Generate().Int64(),
		Email:        normalized,
		PasswordHash: hashed,
		IsActive:     true,
	}

	created, err := s.users.Create(ctx, user)
	if err != nil {
		if errors.Is(err, domain.ErrDuplicateEmail) {
			return SignUpResult{}, errEmailTaken
		}
		span.RecordError(err)
		s.log().Error("create user", zap.String("email", normalized), zap.Error(err))
		return SignUpResult{}, internalError("Registration failed")
	}

	s.audit("signup.success", "user_id", created.ID, "email", created.Email)
	return SignUpResult{Email: created.Email}, nil
}

// Login verifies credentials and mints a bearer token. Unknown email and
// wrong password are indistinguishable to the caller.
func (s *AuthService) Login(ctx context.Context, email, plaintext string) (LoginResult, error) {
	ctx, span := s.startSpan(ctx, "AuthService.Login")
	defer span.End()

	normalized := normalizeEmail(email)
	trimmed := strings.TrimSpace(plaintext)
	if normalized == "" || trimmed == "" {
		return LoginResult{}, errMissingField
	}

	user, err := s.users.GetByEmail(ctx, normalized)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return LoginResult{}, errInvalidCredentials
		}
		span.RecordError(err)
		s.log().Error("load user", zap.String("email", normalized), zap.Error(err))
		return LoginResult{}, internalError("Login failed")
	}

	valid, err := password.Verify(trimmed, user.PasswordHash)
	if err != nil || !valid {
		if err != nil {
			span.RecordError(err)
		}
		return LoginResult{}, errInvalidCredentials
	}

	issued, err := s.issuer.Issue(user.ID, user.Email)
	if err != nil {
		span.RecordError(err)
		s.log().Error("issue token", zap.Int64("user_id", user.ID), zap.Error(err))
		return LoginResult{}, internalError("Login failed")
	}

	s.audit("login.success", "user_id", user.ID)
	return LoginResult{
		Token: issued,
		User:  UserSummary{ID: user.ID, Email: user.Email},
	}, nil
}

// VerifyToken validates a bearer token and returns its claims.
func (s *AuthService) VerifyToken(raw string) (*token.Claims, error) {
	return s.issuer.Verify(raw)
}

// GetUser loads the user bound to verified claims for token-gated handlers.
func (s *AuthService) GetUser(ctx context.Context, userID int64) (UserSummary, error) {
	ctx, span := s.startSpan(ctx, "AuthService.GetUser")
	defer span.End()

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return UserSummary{}, errUserMissing
		}
		span.RecordError(err)
		s.log().Error("load user by id", zap.Int64("user_id", userID), zap.Error(err))
		return UserSummary{}, internalError("Lookup failed")
	}
	return UserSummary{ID: user.ID, Email: user.Email}, nil
}

func (s *AuthService) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	if s == nil || s.tracer == nil {
		return ctx, trace.SpanFromContext(ctx)
	}
	return s.tracer.Start(ctx, name)
}

func (s *AuthService) audit(event string, attrs ...any) {
	logger := s.log()
	if logger == nil {
		return
	}
	fields := make([]zap.Field, 0, len(attrs)/2+2)
	fields = append(fields, zap.String("event", event), zap.Time("timestamp", time.Now().UTC()))
	for i := 0; i+1 < len(attrs); i += 2 {
		key, ok := attrs[i].(string)
		if !ok {
			continue
		}
		fields = append(fields, zap.Any(key, attrs[i+1]))
	}
	logger.Info("audit", fields...)
}

func (s *AuthService) log() *zap.Logger {
	if s != nil && s.logger != nil {
		return s.logger
	}
	return zap.L()
}

func normalizeEmail(value string) string {
	return strings.ToLower(strings.TrimSpace(value))
}

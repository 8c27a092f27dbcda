package service

import (
	"context"
	"errors"
	"strings"

	"github.com/bwmarrin/snowflake"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/launchbase/accountd/internal/domain"
	"github.com/launchbase/accountd/internal/password"
	"github.com/launchbase/accountd/internal/repository"
)

const (
	defaultPageSize = 25
	maxPageSize     = 200
)

// UserUpdate carries optional admin edits; nil fields are left untouched.
// Password accepts plaintext and is stored only as the derived hash.
type UserUpdate struct {
	Email    *string `json:"email"`
	Password *string `json:"password"`
	IsActive *bool   `json:"is_active"`
}

// AdminService is the record browser over user rows. It reuses the same
// hashing path as signup so no admin operation ever stores plaintext.
type AdminService struct {
	users     repository.UserRepository
	snowflake *snowflake.Node
	logger    *zap.Logger
	tracer    trace.Tracer
}

func NewAdminService(users repository.UserRepository, node *snowflake.Node, logger *zap.Logger) *AdminService {
	return &AdminService{
		users:     users,
		snowflake: node,
		logger:    logger,
		tracer:    otel.Tracer("github.com/launchbase/accountd/internal/service"),
	}
}

// ListUsers returns a page of user records plus the total row count.
func (s *AdminService) ListUsers(ctx context.Context, limit, offset int) (UserPage, error) {
	ctx, span := s.tracer.Start(ctx, "AdminService.ListUsers")
	defer span.End()

	if limit <= 0 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	if offset < 0 {
		offset = 0
	}

	users, err := s.users.List(ctx, limit, offset)
	if err != nil {
		span.RecordError(err)
		s.logger.Error("list users", zap.Error(err))
		return UserPage{}, internalError("Listing failed")
	}
	total, err := s.users.Count(ctx)
	if err != nil {
		span.RecordError(err)
		s.logger.Error("count users", zap.Error(err))
		return UserPage{}, internalError("Listing failed")
	}

	views := make([]UserView, 0, len(users))
	for _, user := range users {
		views = append(views, newUserView(user))
	}
	return UserPage{Users: views, Total: total, Limit: limit, Offset: offset}, nil
}

func (s *AdminService) GetUser(ctx context.Context, id int64) (UserView, error) {
	ctx, span := s.tracer.Start(ctx, "AdminService.GetUser")
	defer span.End()

	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return UserView{}, errUserMissing
		}
		span.RecordError(err)
		s.logger.Error("get user", zap.Int64("user_id", id), zap.Error(err))
		return UserView{}, internalError("Lookup failed")
	}
	return newUserView(user), nil
}

// CreateUser adds a record through the same validation and hashing rules as
// signup.
func (s *AdminService) CreateUser(ctx context.Context, email, plaintext string, isActive bool) (UserView, error) {
	ctx, span := s.tracer.Start(ctx, "AdminService.CreateUser")
	defer span.End()

	normalized := normalizeEmail(email)
	trimmed := strings.TrimSpace(plaintext)
	if normalized == "" || trimmed == "" {
		return UserView{}, errMissingField
	}

	hashed, err := password.Hash(trimmed)
	if err != nil {
		span.RecordError(err)
		s.logger.Error("hash password", zap.Error(err))
		return UserView{}, internalError("Create failed")
	}

	created, err := s.users.Create(ctx, domain.User{
		ID:           s.snowflake.Generate().Int64(),
		Email:        normalized,
		PasswordHash: hashed,
		IsActive:     isActive,
	})
	if err != nil {
		if errors.Is(err, domain.ErrDuplicateEmail) {
			return UserView{}, errEmailTaken
		}
		span.RecordError(err)
		s.logger.Error("admin create user", zap.String("email", normalized), zap.Error(err))
		return UserView{}, internalError("Create failed")
	}

	s.audit("admin.user.created", "user_id", created.ID, "email", created.Email)
	return newUserView(created), nil
}

// UpdateUser applies the provided edits to an existing record.
func (s *AdminService) UpdateUser(ctx context.Context, id int64, update UserUpdate) (UserView, error) {
	ctx, span := s.tracer.Start(ctx, "AdminService.UpdateUser")
	defer span.End()

	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return UserView{}, errUserMissing
		}
		span.RecordError(err)
		s.logger.Error("load user for update", zap.Int64("user_id", id), zap.Error(err))
		return UserView{}, internalError("Update failed")
	}

	if update.Email != nil {
		normalized := normalizeEmail(*update.Email)
		if normalized == "" {
			return UserView{}, errMissingField
		}
		user.Email = normalized
	}
	if update.Password != nil {
		trimmed := strings.TrimSpace(*update.Password)
		if trimmed == "" {
			return UserView{}, errMissingField
		}
		hashed, err := password.Hash(trimmed)
		if err != nil {
			span.RecordError(err)
			s.logger.Error("hash password", zap.Error(err))
			return UserView{}, internalError("Update failed")
		}
		user.PasswordHash = hashed
	}
	if update.IsActive != nil {
		user.IsActive = *update.IsActive
	}

	updated, err := s.users.Update(ctx, user)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrUserNotFound):
			return UserView{}, errUserMissing
		case errors.Is(err, domain.ErrDuplicateEmail):
			return UserView{}, errEmailTaken
		}
		span.RecordError(err)
		s.logger.Error("update user", zap.Int64("user_id", id), zap.Error(err))
		return UserView{}, internalError("Update failed")
	}

	s.audit("admin.user.updated", "user_id", updated.ID)
	return newUserView(updated), nil
}

func (s *AdminService) DeleteUser(ctx context.Context, id int64) error {
	ctx, span := s.tracer.Start(ctx, "AdminService.DeleteUser")
	defer span.End()

	if err := s.users.Delete(ctx, id); err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return errUserMissing
		}
		span.RecordError(err)
		s.logger.Error("delete user", zap.Int64("user_id", id), zap.Error(err))
		return internalError("Delete failed")
	}

	s.audit("admin.user.deleted", "user_id", id)
	return nil
}

func (s *AdminService) audit(event string, attrs ...any) {
	fields := make([]zap.Field, 0, len(attrs)/2+1)
	fields = append(fields, zap.String("event", event))
	for i := 0; i+1 < len(attrs); i += 2 {
		key, ok := attrs[i].(string)
		if !ok {
			continue
		}
		fields = append(fields, zap.Any(key, attrs[i+1]))
	}
	s.logger.Info("audit", fields...)
}

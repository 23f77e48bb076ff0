// Package auth содержит логику регистрации, входа и проверки JWT,
// а также начальное создание администратора.
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/magabrotheeeer/gym-management/internal/lib/authz"
	"github.com/magabrotheeeer/gym-management/internal/lib/jwt"
	"github.com/magabrotheeeer/gym-management/internal/lib/password"
	"github.com/magabrotheeeer/gym-management/internal/lib/sl"
	"github.com/magabrotheeeer/gym-management/internal/models"
)

// UserRepository описывает контракт для работы с пользователями в базе данных.
type UserRepository interface {
	// CreateUser сохраняет нового пользователя. Занятый email даёт models.ErrConflict.
	CreateUser(ctx context.Context, user models.User) (*models.User, error)
	// GetUserByEmail возвращает пользователя по email или models.ErrNotFound.
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	// GetUser возвращает пользователя по ID или models.ErrNotFound.
	GetUser(ctx context.Context, userID uuid.UUID) (*models.User, error)
	TouchLastLogin(ctx context.Context, userID uuid.UUID, at time.Time) error
	GrantRole(ctx context.Context, userID uuid.UUID, role models.Role) error
}

// Ошибки аутентификации.
var (
	ErrInvalidCredentials = models.NewDomainError(models.ErrUnauthorized, "invalid credentials")
	ErrInvalidToken       = models.NewDomainError(models.ErrUnauthorized, "invalid token")
	ErrUserInactive       = models.NewDomainError(models.ErrForbidden, "user is inactive")
	ErrEmailTaken         = models.NewDomainError(models.ErrConflict, "email already registered")
	ErrUserNotFound       = models.NewDomainError(models.ErrNotFound, "user not found")
)

// Service отвечает за регистрацию, авторизацию и валидацию JWT.
type Service struct {
	users    UserRepository
	jwtMaker jwt.Maker
	log      *slog.Logger
}

// New создает новый экземпляр Service.
func New(users UserRepository, jwtMaker jwt.Maker, log *slog.Logger) *Service {
	return &Service{
		users:    users,
		jwtMaker: jwtMaker,
		log:      log,
	}
}

// NormalizeEmail приводит email к виду, в котором он хранится.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register создает пользователя с хэшированием пароля. Если роли не заданы,
// назначается роль client.
func (s *Service) Register(ctx context.Context, in models.RegisterInput) (*models.User, error) {
	const op = "auth.Register"

	hashed, err := password.GetHash(in.Password)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	roles := in.Roles
	if len(roles) == 0 {
		roles = []models.Role{models.RoleClient}
	}

	user, err := s.users.CreateUser(ctx, models.User{
		Email:        NormalizeEmail(in.Email),
		PasswordHash: hashed,
		FirstName:    strings.TrimSpace(in.FirstName),
		LastName:     strings.TrimSpace(in.LastName),
		IsActive:     true,
		Roles:        roles,
	})
	if err != nil {
		if errors.Is(err, models.ErrConflict) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.log.Info("user registered", slog.String("user_id", user.ID.String()))
	return user, nil
}

// Login проверяет пароль пользователя и выпускает JWT.
// Неизвестный email и неверный пароль неразличимы для клиента.
func (s *Service) Login(ctx context.Context, email, rawPassword string) (string, *models.User, error) {
	const op = "auth.Login"

	user, err := s.users.GetUserByEmail(ctx, NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return "", nil, ErrInvalidCredentials
		}
		return "", nil, fmt.Errorf("%s: %w", op, err)
	}
	if err := password.CompareHash(user.PasswordHash, rawPassword); err != nil {
		if errors.Is(err, password.ErrMismatch) {
			return "", nil, ErrInvalidCredentials
		}
		return "", nil, fmt.Errorf("%s: %w", op, err)
	}
	if !user.IsActive {
		return "", nil, ErrUserInactive
	}

	roles := make([]string, 0, len(user.Roles))
	for _, r := range user.Roles {
		roles = append(roles, string(r))
	}
	token, err := s.jwtMaker.GenerateToken(user.ID.String(), user.Email, roles)
	if err != nil {
		return "", nil, fmt.Errorf("%s: %w", op, err)
	}

	if err := s.users.TouchLastLogin(ctx, user.ID, time.Now()); err != nil {
		s.log.Warn("failed to update last login", slog.String("user_id", user.ID.String()), sl.Err(err))
	}
	return token, user, nil
}

// ValidateToken проверяет JWT и возвращает вызывающего.
func (s *Service) ValidateToken(_ context.Context, token string) (authz.Principal, error) {
	claims, err := s.jwtMaker.ParseToken(token)
	if err != nil {
		return authz.Principal{}, ErrInvalidToken
	}
	userID, err := uuid.Parse(claims.UserID)
	if err != nil {
		return authz.Principal{}, ErrInvalidToken
	}
	roles := make([]models.Role, 0, len(claims.Roles))
	for _, r := range claims.Roles {
		roles = append(roles, models.Role(r))
	}
	return authz.Principal{
		UserID: userID,
		Email:  claims.Email,
		Roles:  roles,
	}, nil
}

// Me возвращает профиль пользователя.
func (s *Service) Me(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	const op = "auth.Me"
	user, err := s.users.GetUser(ctx, userID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return user, nil
}

// EnsureAdmin создает администратора с указанными данными, если его нет,
// или добавляет роль admin существующему пользователю. Пустой email
// означает, что начальный администратор не настроен.
func (s *Service) EnsureAdmin(ctx context.Context, email, rawPassword string) error {
	const op = "auth.EnsureAdmin"
	email = NormalizeEmail(email)
	if email == "" {
		return nil
	}

	user, err := s.users.GetUserByEmail(ctx, email)
	switch {
	case err == nil:
		if slices.Contains(user.Roles, models.RoleAdmin) {
			return nil
		}
		if err := s.users.GrantRole(ctx, user.ID, models.RoleAdmin); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
		s.log.Info("admin role granted", slog.String("user_id", user.ID.String()))
		return nil
	case !errors.Is(err, models.ErrNotFound):
		return fmt.Errorf("%s: %w", op, err)
	}

	if rawPassword == "" {
		return fmt.Errorf("%s: admin password is empty", op)
	}
	created, err := s.Register(ctx, models.RegisterInput{
		Email:     email,
		Password:  rawPassword,
		FirstName: "Admin",
		Roles:     []models.Role{models.RoleAdmin},
	})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	s.log.Info("bootstrap admin created", slog.String("user_id", created.ID.String()))
	return nil
}

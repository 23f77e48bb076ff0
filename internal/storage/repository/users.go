package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/magabrotheeeer/gym-management/internal/models"
)

const userColumns = `uid, email, password_hash, first_name, last_name, is_active,
	array_to_string(roles, ','), created_at, last_login_at`

func scanUser(row interface{ Scan(dest ...any) error }) (*models.User, error) {
	var (
		u         models.User
		roles     string
		lastLogin sql.NullTime
	)
	if err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.FirstName, &u.LastName,
		&u.IsActive, &roles, &u.CreatedAt, &lastLogin); err != nil {
		return nil, err
	}
	u.Roles = parseRoles(roles)
	if lastLogin.Valid {
		u.LastLoginAt = &lastLogin.Time
	}
	return &u, nil
}

func parseRoles(s string) []models.Role {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	roles := make([]models.Role, 0, len(parts))
	for _, p := range parts {
		roles = append(roles, models.Role(p))
	}
	return roles
}

func rolesToStrings(roles []models.Role) []string {
	out := make([]string, 0, len(roles))
	for _, r := range roles {
		out = append(out, string(r))
	}
	return out
}

// CreateUser сохраняет нового пользователя. Занятый email даёт ошибку вида models.ErrConflict.
func (s *Storage) CreateUser(ctx context.Context, user models.User) (*models.User, error) {
	const op = "storage.CreateUser"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO users (email, password_hash, first_name, last_name, is_active, roles)
			  VALUES ($1, $2, $3, $4, $5, $6::text[])
			  RETURNING ` + userColumns
	created, err := scanUser(s.conn(ctx).QueryRowContext(ctx, query,
		user.Email, user.PasswordHash, user.FirstName, user.LastName, user.IsActive,
		rolesToStrings(user.Roles)))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, mapError(err))
	}
	return created, nil
}

// GetUserByEmail возвращает пользователя по уже нормализованному email.
func (s *Storage) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	const op = "storage.GetUserByEmail"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	u, err := scanUser(s.conn(ctx).QueryRowContext(ctx, query, email))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, mapError(err))
	}
	return u, nil
}

// GetUser возвращает пользователя по его UID.
func (s *Storage) GetUser(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	const op = "storage.GetUser"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + userColumns + ` FROM users WHERE uid = $1`
	u, err := scanUser(s.conn(ctx).QueryRowContext(ctx, query, userID))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, mapError(err))
	}
	return u, nil
}

// UserExists проверяет существование пользователя.
func (s *Storage) UserExists(ctx context.Context, userID uuid.UUID) (bool, error) {
	const op = "storage.UserExists"
	select {
	case <-ctx.Done():
		return false, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	var exists bool
	err := s.conn(ctx).QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM users WHERE uid = $1)`, userID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	return exists, nil
}

// TouchLastLogin обновляет время последнего входа.
func (s *Storage) TouchLastLogin(ctx context.Context, userID uuid.UUID, at time.Time) error {
	const op = "storage.TouchLastLogin"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	if _, err := s.conn(ctx).ExecContext(ctx,
		`UPDATE users SET last_login_at = $1 WHERE uid = $2`, at, userID); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// GrantRole добавляет роль пользователю, если её ещё нет.
func (s *Storage) GrantRole(ctx context.Context, userID uuid.UUID, role models.Role) error {
	const op = "storage.GrantRole"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE users
			  SET roles = array_append(roles, $1::text)
			  WHERE uid = $2 AND NOT ($1::text = ANY(roles))`
	if _, err := s.conn(ctx).ExecContext(ctx, query, string(role), userID); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

package repository

import (
	"context"
	"fmt"

	"github.com/magabrotheeeer/gym-management/internal/models"
)

const membershipColumns = `id, name, cost, max_classes_assistance, max_gym_assistance,
	duration_months, is_active, created_at, updated_at`

func scanMembership(row interface{ Scan(dest ...any) error }) (*models.Membership, error) {
	var m models.Membership
	if err := row.Scan(&m.ID, &m.Name, &m.Cost, &m.MaxClassesAssistance, &m.MaxGymAssistance,
		&m.DurationMonths, &m.IsActive, &m.CreatedAt, &m.UpdatedAt); err != nil {
		return nil, err
	}
	return &m, nil
}

// CreateMembership добавляет абонемент в каталог. Занятое имя даёт models.ErrConflict.
func (s *Storage) CreateMembership(ctx context.Context, m models.Membership) (*models.Membership, error) {
	const op = "storage.CreateMembership"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO memberships (name, cost, max_classes_assistance, max_gym_assistance, duration_months)
			  VALUES ($1, $2, $3, $4, $5)
			  RETURNING ` + membershipColumns
	created, err := scanMembership(s.conn(ctx).QueryRowContext(ctx, query,
		m.Name, m.Cost, m.MaxClassesAssistance, m.MaxGymAssistance, m.DurationMonths))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, mapError(err))
	}
	return created, nil
}

// GetMembership возвращает абонемент по ID.
func (s *Storage) GetMembership(ctx context.Context, id int64) (*models.Membership, error) {
	const op = "storage.GetMembership"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + membershipColumns + ` FROM memberships WHERE id = $1`
	m, err := scanMembership(s.conn(ctx).QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, mapError(err))
	}
	return m, nil
}

// ListMemberships возвращает каталог, отсортированный по имени.
func (s *Storage) ListMemberships(ctx context.Context, onlyActive bool) ([]*models.Membership, error) {
	const op = "storage.ListMemberships"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + membershipColumns + ` FROM memberships
			  WHERE ($1 = FALSE OR is_active)
			  ORDER BY name`
	rows, err := s.conn(ctx).QueryContext(ctx, query, onlyActive)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	result := make([]*models.Membership, 0)
	for rows.Next() {
		m, err := scanMembership(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, m)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// UpdateMembership обновляет шаблон. Уже купленные позиции не меняются.
func (s *Storage) UpdateMembership(ctx context.Context, id int64, m models.Membership) (*models.Membership, error) {
	const op = "storage.UpdateMembership"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE memberships
			  SET name = $1, cost = $2, max_classes_assistance = $3, max_gym_assistance = $4,
			      duration_months = $5, updated_at = NOW()
			  WHERE id = $6
			  RETURNING ` + membershipColumns
	updated, err := scanMembership(s.conn(ctx).QueryRowContext(ctx, query,
		m.Name, m.Cost, m.MaxClassesAssistance, m.MaxGymAssistance, m.DurationMonths, id))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, mapError(err))
	}
	return updated, nil
}

// DeactivateMembership снимает абонемент с продажи.
func (s *Storage) DeactivateMembership(ctx context.Context, id int64) error {
	const op = "storage.DeactivateMembership"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	result, err := s.conn(ctx).ExecContext(ctx,
		`UPDATE memberships SET is_active = FALSE, updated_at = NOW() WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if affected == 0 {
		return fmt.Errorf("%s: %w", op, models.ErrNotFound)
	}
	return nil
}

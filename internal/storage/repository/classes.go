package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/magabrotheeeer/gym-management/internal/models"
)

const classColumns = `id, name, description, trainer_uid, starts_at, duration_minutes, capacity, created_at`

func scanClass(row interface{ Scan(dest ...any) error }) (*models.Class, error) {
	var (
		c       models.Class
		trainer uuid.NullUUID
	)
	if err := row.Scan(&c.ID, &c.Name, &c.Description, &trainer, &c.StartsAt,
		&c.DurationMinutes, &c.Capacity, &c.CreatedAt); err != nil {
		return nil, err
	}
	if trainer.Valid {
		id := trainer.UUID
		c.TrainerID = &id
	}
	return &c, nil
}

// CreateClass добавляет занятие в расписание.
func (s *Storage) CreateClass(ctx context.Context, c models.Class) (*models.Class, error) {
	const op = "storage.CreateClass"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	var trainer uuid.NullUUID
	if c.TrainerID != nil {
		trainer = uuid.NullUUID{UUID: *c.TrainerID, Valid: true}
	}
	created, err := scanClass(s.conn(ctx).QueryRowContext(ctx,
		`INSERT INTO classes (name, description, trainer_uid, starts_at, duration_minutes, capacity)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING `+classColumns,
		c.Name, c.Description, trainer, c.StartsAt, c.DurationMinutes, c.Capacity))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, mapError(err))
	}
	return created, nil
}

// GetClass возвращает занятие по ID.
func (s *Storage) GetClass(ctx context.Context, id int64) (*models.Class, error) {
	const op = "storage.GetClass"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	c, err := scanClass(s.conn(ctx).QueryRowContext(ctx,
		`SELECT `+classColumns+` FROM classes WHERE id = $1`, id))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, mapError(err))
	}
	return c, nil
}

// ListClasses возвращает занятия, начинающиеся не раньше from, по времени начала.
func (s *Storage) ListClasses(ctx context.Context, from time.Time) ([]*models.Class, error) {
	const op = "storage.ListClasses"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	rows, err := s.conn(ctx).QueryContext(ctx,
		`SELECT `+classColumns+` FROM classes WHERE starts_at >= $1 ORDER BY starts_at, id`, from)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	list := make([]*models.Class, 0)
	for rows.Next() {
		c, err := scanClass(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		list = append(list, c)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return list, nil
}

// DeleteClass удаляет занятие. Ссылки из посещений обнуляются.
func (s *Storage) DeleteClass(ctx context.Context, id int64) error {
	const op = "storage.DeleteClass"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	res, err := s.conn(ctx).ExecContext(ctx, `DELETE FROM classes WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", op, models.ErrNotFound)
	}
	return nil
}

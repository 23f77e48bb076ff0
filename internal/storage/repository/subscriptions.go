package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/magabrotheeeer/gym-management/internal/models"
)

const itemColumns = `id, subscription_id, membership_id, name, cost, max_classes_assistance,
	max_gym_assistance, duration_months, purchase_date, start_date, end_date, status`

func scanItem(row interface{ Scan(dest ...any) error }) (*models.SubscriptionItem, error) {
	var (
		it           models.SubscriptionItem
		membershipID sql.NullInt64
		status       string
	)
	if err := row.Scan(&it.ID, &it.SubscriptionID, &membershipID, &it.Name, &it.Cost,
		&it.MaxClassesAssistance, &it.MaxGymAssistance, &it.DurationMonths,
		&it.PurchaseDate, &it.StartDate, &it.EndDate, &status); err != nil {
		return nil, err
	}
	if membershipID.Valid {
		id := membershipID.Int64
		it.MembershipID = &id
	}
	it.Status = models.ItemStatus(status)
	return &it, nil
}

// GetActiveSubscription возвращает активную подписку пользователя вместе с позициями.
// Если активной подписки нет, возвращается models.ErrNotFound.
func (s *Storage) GetActiveSubscription(ctx context.Context, userID uuid.UUID) (*models.Subscription, error) {
	const op = "storage.GetActiveSubscription"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	var sub models.Subscription
	err := s.conn(ctx).QueryRowContext(ctx,
		`SELECT id, user_uid, is_active, created_at
		 FROM subscriptions
		 WHERE user_uid = $1 AND is_active
		 ORDER BY created_at DESC
		 LIMIT 1`, userID).
		Scan(&sub.ID, &sub.UserID, &sub.IsActive, &sub.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, mapError(err))
	}

	rows, err := s.conn(ctx).QueryContext(ctx,
		`SELECT `+itemColumns+` FROM subscription_items
		 WHERE subscription_id = $1
		 ORDER BY start_date, id`, sub.ID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	sub.Items = make([]*models.SubscriptionItem, 0)
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		sub.Items = append(sub.Items, it)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &sub, nil
}

// CreateSubscription создаёт активную подписку пользователя без позиций.
func (s *Storage) CreateSubscription(ctx context.Context, userID uuid.UUID) (*models.Subscription, error) {
	const op = "storage.CreateSubscription"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	sub := models.Subscription{Items: make([]*models.SubscriptionItem, 0)}
	err := s.conn(ctx).QueryRowContext(ctx,
		`INSERT INTO subscriptions (user_uid, is_active) VALUES ($1, TRUE)
		 RETURNING id, user_uid, is_active, created_at`, userID).
		Scan(&sub.ID, &sub.UserID, &sub.IsActive, &sub.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, mapError(err))
	}
	return &sub, nil
}

// CreateSubscriptionItem добавляет купленную позицию в подписку.
func (s *Storage) CreateSubscriptionItem(ctx context.Context, subscriptionID int64, it models.SubscriptionItem) (*models.SubscriptionItem, error) {
	const op = "storage.CreateSubscriptionItem"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO subscription_items (subscription_id, membership_id, name, cost,
			      max_classes_assistance, max_gym_assistance, duration_months,
			      purchase_date, start_date, end_date, status)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
			  RETURNING ` + itemColumns
	created, err := scanItem(s.conn(ctx).QueryRowContext(ctx, query,
		subscriptionID, it.MembershipID, it.Name, it.Cost, it.MaxClassesAssistance,
		it.MaxGymAssistance, it.DurationMonths, it.PurchaseDate, it.StartDate, it.EndDate,
		string(it.Status)))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, mapError(err))
	}
	return created, nil
}

// GetSubscriptionItem возвращает позицию подписки по ID.
func (s *Storage) GetSubscriptionItem(ctx context.Context, id int64) (*models.SubscriptionItem, error) {
	const op = "storage.GetSubscriptionItem"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	it, err := scanItem(s.conn(ctx).QueryRowContext(ctx,
		`SELECT `+itemColumns+` FROM subscription_items WHERE id = $1`, id))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, mapError(err))
	}
	return it, nil
}

// UpdateSubscriptionItemStatus меняет статус позиции, только если текущий
// статус равен from. Иначе возвращается models.ErrConflict.
func (s *Storage) UpdateSubscriptionItemStatus(ctx context.Context, id int64, from, to models.ItemStatus) (*models.SubscriptionItem, error) {
	const op = "storage.UpdateSubscriptionItemStatus"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	it, err := scanItem(s.conn(ctx).QueryRowContext(ctx,
		`UPDATE subscription_items SET status = $1
		 WHERE id = $2 AND status = $3
		 RETURNING `+itemColumns, string(to), id, string(from)))
	if err != nil {
		err = mapError(err)
		if errors.Is(err, models.ErrNotFound) {
			err = models.ErrConflict
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return it, nil
}

// ExpireSubscriptionItems переводит ACTIVE позиции с end_date раньше today в EXPIRED.
func (s *Storage) ExpireSubscriptionItems(ctx context.Context, today time.Time) ([]models.ItemStatusChange, error) {
	const op = "storage.ExpireSubscriptionItems"
	changes, err := s.transitionItems(ctx,
		`status = 'ACTIVE' AND end_date < $2::date`, models.ItemStatusExpired, today)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return changes, nil
}

// ActivatePendingItems переводит PENDING позиции, срок которых наступил, в ACTIVE.
func (s *Storage) ActivatePendingItems(ctx context.Context, today time.Time) ([]models.ItemStatusChange, error) {
	const op = "storage.ActivatePendingItems"
	changes, err := s.transitionItems(ctx,
		`status = 'PENDING' AND start_date <= $2::date AND end_date >= $2::date`, models.ItemStatusActive, today)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return changes, nil
}

func (s *Storage) transitionItems(ctx context.Context, where string, to models.ItemStatus, today time.Time) ([]models.ItemStatusChange, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	query := `WITH changed AS (
			      UPDATE subscription_items SET status = $1
			      WHERE ` + where + `
			      RETURNING id, subscription_id, name, start_date, end_date, status
			  )
			  SELECT c.id, u.uid, u.email, u.first_name, c.name, c.start_date, c.end_date, c.status
			  FROM changed c
			  JOIN subscriptions s ON s.id = c.subscription_id
			  JOIN users u ON u.uid = s.user_uid
			  ORDER BY c.id`
	rows, err := s.conn(ctx).QueryContext(ctx, query, string(to), today.Format(models.DateKeyLayout))
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = rows.Close()
	}()

	changes := make([]models.ItemStatusChange, 0)
	for rows.Next() {
		var (
			ch     models.ItemStatusChange
			status string
		)
		if err := rows.Scan(&ch.ItemID, &ch.UserID, &ch.Email, &ch.FirstName, &ch.Name,
			&ch.StartDate, &ch.EndDate, &status); err != nil {
			return nil, err
		}
		ch.Status = models.ItemStatus(status)
		changes = append(changes, ch)
	}
	return changes, rows.Err()
}

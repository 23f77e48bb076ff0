// Package subscription реализует покупку абонементов и управление
// статусами позиций подписки пользователя.
package subscription

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/magabrotheeeer/gym-management/internal/lib/month"
	"github.com/magabrotheeeer/gym-management/internal/models"
)

// Repository определяет методы для работы с подписками в хранилище.
type Repository interface {
	// WithUserLock выполняет fn в транзакции с блокировкой строки пользователя.
	WithUserLock(ctx context.Context, userID uuid.UUID, fn func(ctx context.Context) error) error
	GetActiveSubscription(ctx context.Context, userID uuid.UUID) (*models.Subscription, error)
	CreateSubscription(ctx context.Context, userID uuid.UUID) (*models.Subscription, error)
	CreateSubscriptionItem(ctx context.Context, subscriptionID int64, it models.SubscriptionItem) (*models.SubscriptionItem, error)
	GetMembership(ctx context.Context, id int64) (*models.Membership, error)
	GetSubscriptionItem(ctx context.Context, id int64) (*models.SubscriptionItem, error)
	// UpdateSubscriptionItemStatus меняет статус, только если текущий равен from.
	UpdateSubscriptionItemStatus(ctx context.Context, id int64, from, to models.ItemStatus) (*models.SubscriptionItem, error)
}

// Ошибки подписок.
var (
	ErrNoActiveSubscription = models.NewDomainError(models.ErrNotFound, "no active subscription")
	ErrUserNotFound         = models.NewDomainError(models.ErrNotFound, "user not found")
	ErrMembershipNotFound   = models.NewDomainError(models.ErrNotFound, "membership not found")
	ErrMembershipInactive   = models.NewDomainError(models.ErrForbidden, "membership is not available for purchase")
	ErrInvalidStartDate     = models.NewDomainError(models.ErrInvalidInput, "start_date must be a date in format YYYY-MM-DD")
	ErrStartInPast          = models.NewDomainError(models.ErrInvalidInput, "start_date must not be in the past")
	ErrItemNotFound         = models.NewDomainError(models.ErrNotFound, "subscription item not found")
	ErrInvalidStatus        = models.NewDomainError(models.ErrInvalidInput, "invalid item status")
	ErrTerminalStatus       = models.NewDomainError(models.ErrConflict, "item status is final and cannot be changed")
	ErrStatusChanged        = models.NewDomainError(models.ErrConflict, "item status was changed concurrently")
)

// Service реализует бизнес-логику подписок.
type Service struct {
	repo Repository
	log  *slog.Logger
	loc  *time.Location
	now  func() time.Time
}

// Option настраивает Service.
type Option func(*Service)

// WithClock подменяет источник текущего времени.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// New создает новый экземпляр Service. loc задаёт часовой пояс, в котором
// определяется текущая дата.
func New(repo Repository, log *slog.Logger, loc *time.Location, opts ...Option) *Service {
	if loc == nil {
		loc = time.Local
	}
	s := &Service{
		repo: repo,
		log:  log,
		loc:  loc,
		now:  time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// today возвращает текущую дату в часовом поясе сервиса.
func (s *Service) today() time.Time {
	return month.Date(s.now().In(s.loc))
}

// GetActive возвращает активную подписку пользователя с позициями.
func (s *Service) GetActive(ctx context.Context, userID uuid.UUID) (*models.Subscription, error) {
	const op = "subscription.GetActive"
	sub, err := s.repo.GetActiveSubscription(ctx, userID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, ErrNoActiveSubscription
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return sub, nil
}

// PurchaseItem покупает абонемент для пользователя: копирует шаблон из каталога
// в новую позицию активной подписки, создавая подписку при необходимости.
// Позиция с датой начала не позже сегодняшней сразу ACTIVE, иначе PENDING.
func (s *Service) PurchaseItem(ctx context.Context, userID uuid.UUID, req models.DummyPurchase) (*models.SubscriptionItem, error) {
	const op = "subscription.PurchaseItem"

	today := s.today()
	start := today
	if req.StartDate != "" {
		parsed, err := time.Parse(models.DateKeyLayout, req.StartDate)
		if err != nil {
			return nil, ErrInvalidStartDate
		}
		if parsed.Before(today) {
			return nil, ErrStartInPast
		}
		start = parsed
	}

	var created *models.SubscriptionItem
	err := s.repo.WithUserLock(ctx, userID, func(ctx context.Context) error {
		m, err := s.repo.GetMembership(ctx, req.MembershipID)
		if err != nil {
			if errors.Is(err, models.ErrNotFound) {
				return ErrMembershipNotFound
			}
			return err
		}
		if !m.IsActive {
			return ErrMembershipInactive
		}

		sub, err := s.repo.GetActiveSubscription(ctx, userID)
		if errors.Is(err, models.ErrNotFound) {
			sub, err = s.repo.CreateSubscription(ctx, userID)
		}
		if err != nil {
			return err
		}

		item := models.ItemFromMembership(*m, s.now(), start)
		item.Status = models.ItemStatusPending
		if !start.After(today) {
			item.Status = models.ItemStatusActive
		}
		created, err = s.repo.CreateSubscriptionItem(ctx, sub.ID, item)
		return err
	})
	if err != nil {
		var de *models.DomainError
		if errors.As(err, &de) {
			return nil, de
		}
		if errors.Is(err, models.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.log.Info("subscription item purchased",
		slog.String("user_id", userID.String()),
		slog.Int64("item_id", created.ID),
		slog.String("status", string(created.Status)),
	)
	return created, nil
}

// SetItemStatus меняет статус позиции подписки. EXPIRED и CANCELLED конечные.
func (s *Service) SetItemStatus(ctx context.Context, itemID int64, to models.ItemStatus) (*models.SubscriptionItem, error) {
	const op = "subscription.SetItemStatus"
	if !to.Valid() {
		return nil, ErrInvalidStatus
	}

	item, err := s.repo.GetSubscriptionItem(ctx, itemID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, ErrItemNotFound
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if item.Status == to {
		return item, nil
	}
	if item.Status.Terminal() {
		return nil, ErrTerminalStatus
	}

	updated, err := s.repo.UpdateSubscriptionItemStatus(ctx, itemID, item.Status, to)
	if err != nil {
		if errors.Is(err, models.ErrConflict) {
			return nil, ErrStatusChanged
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.log.Info("subscription item status changed",
		slog.Int64("item_id", itemID),
		slog.String("from", string(item.Status)),
		slog.String("to", string(to)),
	)
	return updated, nil
}

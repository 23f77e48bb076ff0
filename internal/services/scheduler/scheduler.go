// Package scheduler периодически переводит позиции подписок по жизненному
// циклу по дате и публикует события о переходах.
package scheduler

import (
	"context"
	"log/slog"
	"time"

	"github.com/magabrotheeeer/gym-management/internal/lib/month"
	"github.com/magabrotheeeer/gym-management/internal/lib/sl"
	"github.com/magabrotheeeer/gym-management/internal/metrics"
	"github.com/magabrotheeeer/gym-management/internal/models"
	"github.com/magabrotheeeer/gym-management/internal/rabbitmq"
)

// SubscriptionRepository методы хранилища для переходов позиций.
type SubscriptionRepository interface {
	// ExpireSubscriptionItems переводит ACTIVE позиции с end_date < today в EXPIRED.
	ExpireSubscriptionItems(ctx context.Context, today time.Time) ([]models.ItemStatusChange, error)
	// ActivatePendingItems переводит наступившие PENDING позиции в ACTIVE.
	ActivatePendingItems(ctx context.Context, today time.Time) ([]models.ItemStatusChange, error)
}

// Publisher отправляет события в шину.
type Publisher interface {
	Publish(ctx context.Context, routingKey string, event any) error
}

// Service планировщик жизненного цикла позиций подписок.
type Service struct {
	repo      SubscriptionRepository
	publisher Publisher
	log       *slog.Logger
	loc       *time.Location
	now       func() time.Time
}

// New создает новый экземпляр Service.
func New(repo SubscriptionRepository, publisher Publisher, log *slog.Logger, loc *time.Location) *Service {
	if loc == nil {
		loc = time.Local
	}
	return &Service{
		repo:      repo,
		publisher: publisher,
		log:       log,
		loc:       loc,
		now:       time.Now,
	}
}

// Run выполняет Sweep сразу и затем каждые interval, пока не отменён ctx.
func (s *Service) Run(ctx context.Context, interval time.Duration) {
	s.Sweep(ctx)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.log.Info("scheduler stopped")
			return
		case <-ticker.C:
			s.Sweep(ctx)
		}
	}
}

// Sweep выполняет один проход: сначала истекшие позиции, затем наступившие.
// Ошибки логируются и не прерывают работу планировщика.
func (s *Service) Sweep(ctx context.Context) {
	today := month.Date(s.now().In(s.loc))
	log := s.log.With(slog.String("today", today.Format(models.DateKeyLayout)))
	log.Info("starting subscription items sweep")

	expired, err := s.repo.ExpireSubscriptionItems(ctx, today)
	if err != nil {
		log.Error("failed to expire subscription items", sl.Err(err))
	} else {
		s.publishAll(ctx, log, rabbitmq.RoutingSubscriptionExpired, expired)
	}

	activated, err := s.repo.ActivatePendingItems(ctx, today)
	if err != nil {
		log.Error("failed to activate pending items", sl.Err(err))
	} else {
		s.publishAll(ctx, log, rabbitmq.RoutingSubscriptionActivated, activated)
	}
}

func (s *Service) publishAll(ctx context.Context, log *slog.Logger, routingKey string, changes []models.ItemStatusChange) {
	if len(changes) == 0 {
		return
	}
	log.Info("subscription items transitioned", slog.String("routing_key", routingKey), slog.Int("count", len(changes)))
	for _, ch := range changes {
		metrics.ItemTransitions.WithLabelValues(string(ch.Status)).Inc()
		if err := s.publisher.Publish(ctx, routingKey, ch); err != nil {
			log.Error("failed to publish message", slog.Int64("item_id", ch.ItemID), sl.Err(err))
		}
	}
}

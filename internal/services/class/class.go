// Package class управляет расписанием групповых занятий.
package class

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/magabrotheeeer/gym-management/internal/models"
)

// Repository определяет методы хранилища для расписания.
type Repository interface {
	CreateClass(ctx context.Context, c models.Class) (*models.Class, error)
	GetClass(ctx context.Context, id int64) (*models.Class, error)
	ListClasses(ctx context.Context, from time.Time) ([]*models.Class, error)
	DeleteClass(ctx context.Context, id int64) error
	UserExists(ctx context.Context, userID uuid.UUID) (bool, error)
}

// Ошибки расписания.
var (
	ErrNotFound        = models.NewDomainError(models.ErrNotFound, "class not found")
	ErrInvalidStartsAt = models.NewDomainError(models.ErrInvalidInput, "starts_at must be RFC3339")
	ErrStartsInPast    = models.NewDomainError(models.ErrInvalidInput, "starts_at must be in the future")
	ErrInvalidTrainer  = models.NewDomainError(models.ErrInvalidInput, "invalid trainer id")
	ErrTrainerNotFound = models.NewDomainError(models.ErrNotFound, "trainer not found")
)

// Option настраивает Service.
type Option func(*Service)

// WithClock подменяет источник текущего времени.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// Service реализует операции над расписанием.
type Service struct {
	repo Repository
	log  *slog.Logger
	now  func() time.Time
}

// New создает новый экземпляр Service.
func New(repo Repository, log *slog.Logger, opts ...Option) *Service {
	s := &Service{
		repo: repo,
		log:  log,
		now:  time.Now,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Create добавляет занятие в расписание.
func (s *Service) Create(ctx context.Context, req models.DummyClass) (*models.Class, error) {
	const op = "class.Create"

	startsAt, err := time.Parse(time.RFC3339, req.StartsAt)
	if err != nil {
		return nil, ErrInvalidStartsAt
	}
	if !startsAt.After(s.now()) {
		return nil, ErrStartsInPast
	}

	c := models.Class{
		Name:            req.Name,
		Description:     req.Description,
		StartsAt:        startsAt.UTC(),
		DurationMinutes: req.DurationMinutes,
		Capacity:        req.Capacity,
	}
	if req.TrainerID != "" {
		trainerID, err := uuid.Parse(req.TrainerID)
		if err != nil {
			return nil, ErrInvalidTrainer
		}
		exists, err := s.repo.UserExists(ctx, trainerID)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		if !exists {
			return nil, ErrTrainerNotFound
		}
		c.TrainerID = &trainerID
	}

	created, err := s.repo.CreateClass(ctx, c)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	s.log.Info("class created", slog.Int64("class_id", created.ID), slog.Time("starts_at", created.StartsAt))
	return created, nil
}

// Get возвращает занятие по ID.
func (s *Service) Get(ctx context.Context, id int64) (*models.Class, error) {
	const op = "class.Get"
	c, err := s.repo.GetClass(ctx, id)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return c, nil
}

// ListUpcoming возвращает занятия, которые ещё не начались.
func (s *Service) ListUpcoming(ctx context.Context) ([]*models.Class, error) {
	const op = "class.ListUpcoming"
	list, err := s.repo.ListClasses(ctx, s.now())
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return list, nil
}

// Delete удаляет занятие из расписания.
func (s *Service) Delete(ctx context.Context, id int64) error {
	const op = "class.Delete"
	if err := s.repo.DeleteClass(ctx, id); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("%s: %w", op, err)
	}
	s.log.Info("class deleted", slog.Int64("class_id", id))
	return nil
}

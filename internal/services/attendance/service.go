// Package attendance реализует учёт посещений: отметки входа и выхода,
// месячную квоту посещений по абонементам, историю и статистику.
package attendance

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/magabrotheeeer/gym-management/internal/models"
)

// Repository методы хранилища, нужные сервису посещений.
type Repository interface {
	// WithUserLock выполняет fn в транзакции с блокировкой строки пользователя.
	WithUserLock(ctx context.Context, userID uuid.UUID, fn func(ctx context.Context) error) error
	UserExists(ctx context.Context, userID uuid.UUID) (bool, error)
	GetActiveSubscription(ctx context.Context, userID uuid.UUID) (*models.Subscription, error)
	GetClass(ctx context.Context, id int64) (*models.Class, error)
	// CountAttendancesByType считает посещения в полуинтервале [from, to).
	CountAttendancesByType(ctx context.Context, userID uuid.UUID, from, to time.Time) (gym, class int, err error)
	FindOpenAttendance(ctx context.Context, userID uuid.UUID) (*models.Attendance, error)
	CreateAttendance(ctx context.Context, a models.Attendance) (*models.Attendance, error)
	CloseAttendance(ctx context.Context, id int64, exit time.Time) (*models.Attendance, error)
	ListAttendances(ctx context.Context, filter models.AttendanceFilter) ([]*models.Attendance, error)
	ListActiveAttendances(ctx context.Context) ([]*models.Attendance, error)
}

// Cache описывает методы для кэширования данных.
type Cache interface {
	Get(ctx context.Context, key string, result any) (bool, error)
	Set(ctx context.Context, key string, value any, expiration time.Duration) error
	Invalidate(ctx context.Context, keys ...string) error
}

// Publisher отправляет события посещений во внешнюю шину.
type Publisher interface {
	Publish(ctx context.Context, routingKey string, event any) error
}

// statsTTL время жизни сводки посещений в кэше.
const statsTTL = 10 * time.Minute

// Ошибки сервиса посещений.
var (
	ErrUserNotFound    = models.NewDomainError(models.ErrNotFound, "user not found")
	ErrAlreadyInside   = models.NewDomainError(models.ErrConflict, "user is already inside")
	ErrNoPasses        = models.NewDomainError(models.ErrForbidden, "no passes available")
	ErrNoActiveCheckIn = models.NewDomainError(models.ErrNotFound, "no active check-in")
	ErrInvalidType     = models.NewDomainError(models.ErrInvalidInput, "invalid attendance type")
	ErrClassNotAllowed = models.NewDomainError(models.ErrInvalidInput, "class_id is allowed only for CLASS attendance")
	ErrClassNotFound   = models.NewDomainError(models.ErrNotFound, "class not found")
)

// Service реализует учёт посещений.
type Service struct {
	repo      Repository
	cache     Cache
	publisher Publisher
	log       *slog.Logger
	loc       *time.Location
	now       func() time.Time
}

// Option настраивает Service.
type Option func(*Service)

// WithClock подменяет источник текущего времени.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// New создаёт сервис посещений. loc задаёт часовой пояс, в котором
// считаются границы месяца и года; nil означает time.Local.
func New(repo Repository, cache Cache, publisher Publisher, log *slog.Logger, loc *time.Location, opts ...Option) *Service {
	if loc == nil {
		loc = time.Local
	}
	s := &Service{
		repo:      repo,
		cache:     cache,
		publisher: publisher,
		log:       log,
		loc:       loc,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ensureUser возвращает ErrUserNotFound, если пользователя нет.
func (s *Service) ensureUser(ctx context.Context, userID uuid.UUID) error {
	exists, err := s.repo.UserExists(ctx, userID)
	if err != nil {
		return err
	}
	if !exists {
		return ErrUserNotFound
	}
	return nil
}

package attendance

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/magabrotheeeer/gym-management/internal/cache"
	"github.com/magabrotheeeer/gym-management/internal/lib/sl"
	"github.com/magabrotheeeer/gym-management/internal/metrics"
	"github.com/magabrotheeeer/gym-management/internal/models"
	"github.com/magabrotheeeer/gym-management/internal/rabbitmq"
)

// CheckIn отмечает вход пользователя. Проверки выполняются по порядку:
// пользователь существует, он не в зале, для типа посещения осталась квота.
// Проверки и вставка идут в одной транзакции с блокировкой пользователя.
func (s *Service) CheckIn(ctx context.Context, userID uuid.UUID, typ models.AttendanceType, classID *int64) (*models.Attendance, error) {
	const op = "attendance.CheckIn"
	log := s.log.With(sl.Op(op), slog.String("user_id", userID.String()), slog.String("type", string(typ)))

	if !typ.Valid() {
		return nil, ErrInvalidType
	}
	if classID != nil && typ != models.AttendanceClass {
		return nil, ErrClassNotAllowed
	}

	var created *models.Attendance
	err := s.repo.WithUserLock(ctx, userID, func(ctx context.Context) error {
		_, err := s.repo.FindOpenAttendance(ctx, userID)
		if err == nil {
			return ErrAlreadyInside
		}
		if !errors.Is(err, models.ErrNotFound) {
			return err
		}

		if classID != nil {
			if _, err := s.repo.GetClass(ctx, *classID); err != nil {
				if errors.Is(err, models.ErrNotFound) {
					return ErrClassNotFound
				}
				return err
			}
		}

		if s.AvailableAttendances(ctx, userID).For(typ) <= 0 {
			return ErrNoPasses
		}

		now := s.now()
		created, err = s.repo.CreateAttendance(ctx, models.Attendance{
			UserID:           userID,
			EntranceDatetime: now,
			Type:             typ,
			ClassID:          classID,
			DateKey:          now.UTC().Format(models.DateKeyLayout),
			IsActive:         true,
		})
		if errors.Is(err, models.ErrConflict) {
			return ErrAlreadyInside
		}
		return err
	})
	if err != nil {
		err = checkInError(err)
		s.countRejection(err)
		var de *models.DomainError
		if errors.As(err, &de) {
			log.Info("check-in rejected", slog.String("reason", de.Message))
			return nil, err
		}
		log.Error("check-in failed", sl.Err(err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	metrics.CheckIns.WithLabelValues(string(typ)).Inc()
	s.invalidateStats(ctx, userID)
	s.publish(ctx, rabbitmq.RoutingAttendanceCheckedIn, created, created.EntranceDatetime)
	log.Info("user checked in", slog.Int64("attendance_id", created.ID))
	return created, nil
}

// checkInError приводит отсутствие пользователя при блокировке к ErrUserNotFound.
func checkInError(err error) error {
	var de *models.DomainError
	if errors.As(err, &de) {
		return de
	}
	if errors.Is(err, models.ErrNotFound) {
		return ErrUserNotFound
	}
	return err
}

func (s *Service) countRejection(err error) {
	switch {
	case errors.Is(err, ErrAlreadyInside):
		metrics.CheckInRejections.WithLabelValues(metrics.ReasonAlreadyInside).Inc()
	case errors.Is(err, ErrNoPasses):
		metrics.CheckInRejections.WithLabelValues(metrics.ReasonNoPasses).Inc()
	case errors.Is(err, ErrUserNotFound):
		metrics.CheckInRejections.WithLabelValues(metrics.ReasonUserNotFound).Inc()
	}
}

// CheckOut закрывает открытое посещение пользователя текущим временем.
// Повторный вызов без нового входа возвращает ErrNoActiveCheckIn.
func (s *Service) CheckOut(ctx context.Context, userID uuid.UUID) (*models.Attendance, error) {
	const op = "attendance.CheckOut"
	log := s.log.With(sl.Op(op), slog.String("user_id", userID.String()))

	if err := s.ensureUser(ctx, userID); err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	open, err := s.repo.FindOpenAttendance(ctx, userID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, ErrNoActiveCheckIn
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	exit := s.now()
	if exit.Before(open.EntranceDatetime) {
		exit = open.EntranceDatetime
	}
	closed, err := s.repo.CloseAttendance(ctx, open.ID, exit)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, ErrNoActiveCheckIn
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	metrics.CheckOuts.Inc()
	s.invalidateStats(ctx, userID)
	s.publish(ctx, rabbitmq.RoutingAttendanceCheckedOut, closed, exit)
	log.Info("user checked out", slog.Int64("attendance_id", closed.ID))
	return closed, nil
}

// Status возвращает, находится ли пользователь в зале, и остаток квоты.
func (s *Service) Status(ctx context.Context, userID uuid.UUID) (*models.AttendanceStatus, error) {
	const op = "attendance.Status"

	if err := s.ensureUser(ctx, userID); err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	status := &models.AttendanceStatus{}
	open, err := s.repo.FindOpenAttendance(ctx, userID)
	switch {
	case err == nil:
		status.IsInside = true
		status.CurrentAttendance = &models.CurrentAttendance{
			ID:               open.ID,
			EntranceDatetime: open.EntranceDatetime,
			Type:             open.Type,
		}
	case !errors.Is(err, models.ErrNotFound):
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	status.AvailableAttendances = s.AvailableAttendances(ctx, userID)
	return status, nil
}

func (s *Service) invalidateStats(ctx context.Context, userID uuid.UUID) {
	if err := s.cache.Invalidate(ctx, cache.StatsKey(userID)); err != nil {
		s.log.Warn("failed to invalidate stats cache", slog.String("user_id", userID.String()), sl.Err(err))
	}
}

func (s *Service) publish(ctx context.Context, routingKey string, a *models.Attendance, at time.Time) {
	event := models.AttendanceEvent{
		AttendanceID: a.ID,
		UserID:       a.UserID,
		Type:         a.Type,
		At:           at,
	}
	if err := s.publisher.Publish(ctx, routingKey, event); err != nil {
		s.log.Warn("failed to publish attendance event", slog.String("routing_key", routingKey), sl.Err(err))
	}
}

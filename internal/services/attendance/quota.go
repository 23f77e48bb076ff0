package attendance

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"

	"github.com/magabrotheeeer/gym-management/internal/lib/month"
	"github.com/magabrotheeeer/gym-management/internal/lib/sl"
	"github.com/magabrotheeeer/gym-management/internal/models"
)

// AvailableAttendances возвращает остаток посещений пользователя на текущий
// месяц: сумма лимитов ACTIVE позиций подписки минус посещения месяца,
// не меньше нуля. Любая ошибка чтения даёт нулевую квоту.
func (s *Service) AvailableAttendances(ctx context.Context, userID uuid.UUID) models.AvailableAttendances {
	log := s.log.With(sl.Op("attendance.AvailableAttendances"), slog.String("user_id", userID.String()))

	sub, err := s.repo.GetActiveSubscription(ctx, userID)
	if err != nil {
		if !errors.Is(err, models.ErrNotFound) {
			log.Warn("failed to load active subscription, quota is zero", sl.Err(err))
		}
		return models.AvailableAttendances{}
	}
	if sub == nil || len(sub.Items) == 0 {
		return models.AvailableAttendances{}
	}

	var total models.AvailableAttendances
	for _, it := range sub.Items {
		if it == nil || it.Status != models.ItemStatusActive {
			continue
		}
		total.Gym += it.MaxGymAssistance
		total.Classes += it.MaxClassesAssistance
	}
	if total.Gym == 0 && total.Classes == 0 {
		return models.AvailableAttendances{}
	}

	from, to := month.Bounds(s.now().In(s.loc))
	usedGym, usedClasses, err := s.repo.CountAttendancesByType(ctx, userID, from, to)
	if err != nil {
		log.Warn("failed to count attendances, quota is zero", sl.Err(err))
		return models.AvailableAttendances{}
	}

	return models.AvailableAttendances{
		Gym:     max(0, total.Gym-usedGym),
		Classes: max(0, total.Classes-usedClasses),
	}
}

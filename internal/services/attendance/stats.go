package attendance

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"github.com/google/uuid"

	"github.com/magabrotheeeer/gym-management/internal/cache"
	"github.com/magabrotheeeer/gym-management/internal/lib/month"
	"github.com/magabrotheeeer/gym-management/internal/lib/sl"
	"github.com/magabrotheeeer/gym-management/internal/models"
)

// History возвращает посещения пользователя, новые сначала.
// From и To это календарные даты UTC, обе границы включительные.
func (s *Service) History(ctx context.Context, userID uuid.UUID, q models.HistoryQuery) ([]*models.Attendance, error) {
	const op = "attendance.History"

	if q.Type != nil && !q.Type.Valid() {
		return nil, ErrInvalidType
	}
	if err := s.ensureUser(ctx, userID); err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	filter := models.AttendanceFilter{
		UserID: userID,
		Type:   q.Type,
	}
	if q.From != nil {
		from := month.StartOfDayUTC(*q.From)
		filter.From = &from
	}
	if q.To != nil {
		to := month.EndOfDayUTC(*q.To)
		filter.To = &to
	}

	list, err := s.repo.ListAttendances(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return list, nil
}

// Stats возвращает сводку посещений с 1 января текущего года по текущий
// момент: итоги по типам и разбивку по месяцам UTC по возрастанию.
func (s *Service) Stats(ctx context.Context, userID uuid.UUID) (*models.AttendanceStats, error) {
	const op = "attendance.Stats"
	log := s.log.With(sl.Op(op), slog.String("user_id", userID.String()))

	if err := s.ensureUser(ctx, userID); err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	key := cache.StatsKey(userID)
	var cached models.AttendanceStats
	found, err := s.cache.Get(ctx, key, &cached)
	if err != nil {
		log.Warn("failed to read stats from cache", sl.Err(err))
	}
	if found {
		return &cached, nil
	}

	now := s.now().In(s.loc)
	from := month.YearStart(now)
	list, err := s.repo.ListAttendances(ctx, models.AttendanceFilter{
		UserID: userID,
		From:   &from,
		To:     &now,
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	stats := aggregate(list)
	if err := s.cache.Set(ctx, key, stats, statsTTL); err != nil {
		log.Warn("failed to cache stats", sl.Err(err))
	}
	return stats, nil
}

// aggregate считает итоги по типам и по месяцам.
func aggregate(list []*models.Attendance) *models.AttendanceStats {
	stats := &models.AttendanceStats{MonthlyStats: make([]models.MonthlyStat, 0)}
	byMonth := make(map[string]*models.MonthlyStat)

	for _, a := range list {
		key := month.Key(a.EntranceDatetime)
		ms, ok := byMonth[key]
		if !ok {
			ms = &models.MonthlyStat{Month: key}
			byMonth[key] = ms
		}
		switch a.Type {
		case models.AttendanceGym:
			stats.TotalGymAttendances++
			ms.GymCount++
		case models.AttendanceClass:
			stats.TotalClassAttendances++
			ms.ClassCount++
		}
	}

	for _, ms := range byMonth {
		stats.MonthlyStats = append(stats.MonthlyStats, *ms)
	}
	sort.Slice(stats.MonthlyStats, func(i, j int) bool {
		return stats.MonthlyStats[i].Month < stats.MonthlyStats[j].Month
	})
	return stats
}

// ActiveAttendances возвращает всех, кто сейчас в зале.
func (s *Service) ActiveAttendances(ctx context.Context) ([]*models.Attendance, error) {
	const op = "attendance.ActiveAttendances"
	list, err := s.repo.ListActiveAttendances(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return list, nil
}

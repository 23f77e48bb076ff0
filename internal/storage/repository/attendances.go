package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/magabrotheeeer/gym-management/internal/models"
)

const attendanceColumns = `a.id, a.user_uid, a.entrance_datetime, a.exit_datetime, a.type,
	a.class_id, a.date_key, a.is_active`

func scanAttendance(row interface{ Scan(dest ...any) error }, extra ...any) (*models.Attendance, error) {
	var (
		a       models.Attendance
		exit    sql.NullTime
		classID sql.NullInt64
		typ     string
	)
	dest := []any{&a.ID, &a.UserID, &a.EntranceDatetime, &exit, &typ, &classID, &a.DateKey, &a.IsActive}
	dest = append(dest, extra...)
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}
	if exit.Valid {
		t := exit.Time
		a.ExitDatetime = &t
	}
	if classID.Valid {
		id := classID.Int64
		a.ClassID = &id
	}
	a.Type = models.AttendanceType(typ)
	return &a, nil
}

// FindOpenAttendance возвращает открытое посещение пользователя.
// Если пользователь не в зале, возвращается models.ErrNotFound.
func (s *Storage) FindOpenAttendance(ctx context.Context, userID uuid.UUID) (*models.Attendance, error) {
	const op = "storage.FindOpenAttendance"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	a, err := scanAttendance(s.conn(ctx).QueryRowContext(ctx,
		`SELECT `+attendanceColumns+` FROM attendances a
		 WHERE a.user_uid = $1 AND a.is_active
		 LIMIT 1`, userID))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, mapError(err))
	}
	return a, nil
}

// CreateAttendance сохраняет новое открытое посещение. Второе открытое
// посещение того же пользователя отклоняется индексом ux_attendances_open_user
// и возвращается как models.ErrConflict.
func (s *Storage) CreateAttendance(ctx context.Context, a models.Attendance) (*models.Attendance, error) {
	const op = "storage.CreateAttendance"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	created, err := scanAttendance(s.conn(ctx).QueryRowContext(ctx,
		`INSERT INTO attendances AS a (user_uid, entrance_datetime, type, class_id, date_key, is_active)
		 VALUES ($1, $2, $3, $4, $5, TRUE)
		 RETURNING `+attendanceColumns,
		a.UserID, a.EntranceDatetime, string(a.Type), a.ClassID, a.DateKey))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, mapError(err))
	}
	return created, nil
}

// CloseAttendance закрывает открытое посещение временем exit.
func (s *Storage) CloseAttendance(ctx context.Context, id int64, exit time.Time) (*models.Attendance, error) {
	const op = "storage.CloseAttendance"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	closed, err := scanAttendance(s.conn(ctx).QueryRowContext(ctx,
		`UPDATE attendances AS a SET exit_datetime = $1, is_active = FALSE
		 WHERE a.id = $2 AND a.is_active
		 RETURNING `+attendanceColumns, exit, id))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, mapError(err))
	}
	return closed, nil
}

// CountAttendancesByType считает посещения пользователя с entrance_datetime
// в полуинтервале [from, to) отдельно для зала и для занятий.
func (s *Storage) CountAttendancesByType(ctx context.Context, userID uuid.UUID, from, to time.Time) (gym, class int, err error) {
	const op = "storage.CountAttendancesByType"
	select {
	case <-ctx.Done():
		return 0, 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	err = s.conn(ctx).QueryRowContext(ctx,
		`SELECT COUNT(*) FILTER (WHERE type = 'GYM'),
		        COUNT(*) FILTER (WHERE type = 'CLASS')
		 FROM attendances
		 WHERE user_uid = $1 AND entrance_datetime >= $2 AND entrance_datetime < $3`,
		userID, from, to).Scan(&gym, &class)
	if err != nil {
		return 0, 0, fmt.Errorf("%s: %w", op, err)
	}
	return gym, class, nil
}

// ListAttendances возвращает посещения пользователя по фильтру,
// новые сначала. Границы фильтра включительные.
func (s *Storage) ListAttendances(ctx context.Context, filter models.AttendanceFilter) ([]*models.Attendance, error) {
	const op = "storage.ListAttendances"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	conds := []string{"a.user_uid = $1"}
	args := []any{filter.UserID}
	add := func(cond string, arg any) {
		args = append(args, arg)
		conds = append(conds, strings.Replace(cond, "?", "$"+strconv.Itoa(len(args)), 1))
	}
	if filter.Type != nil {
		add("a.type = ?", string(*filter.Type))
	}
	if filter.From != nil {
		add("a.entrance_datetime >= ?", *filter.From)
	}
	if filter.To != nil {
		add("a.entrance_datetime <= ?", *filter.To)
	}

	query := `SELECT ` + attendanceColumns + ` FROM attendances a
		WHERE ` + strings.Join(conds, " AND ") + `
		ORDER BY a.entrance_datetime DESC, a.id DESC`
	rows, err := s.conn(ctx).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	list := make([]*models.Attendance, 0)
	for rows.Next() {
		a, err := scanAttendance(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		list = append(list, a)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return list, nil
}

// ListActiveAttendances возвращает все открытые посещения с краткими
// данными пользователей, новые сначала.
func (s *Storage) ListActiveAttendances(ctx context.Context) ([]*models.Attendance, error) {
	const op = "storage.ListActiveAttendances"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	rows, err := s.conn(ctx).QueryContext(ctx,
		`SELECT `+attendanceColumns+`, u.email, u.first_name, u.last_name
		 FROM attendances a
		 JOIN users u ON u.uid = a.user_uid
		 WHERE a.is_active
		 ORDER BY a.entrance_datetime DESC, a.id DESC`)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	list := make([]*models.Attendance, 0)
	for rows.Next() {
		var u models.UserSummary
		a, err := scanAttendance(rows, &u.Email, &u.FirstName, &u.LastName)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		u.ID = a.UserID
		a.User = &u
		list = append(list, a)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return list, nil
}

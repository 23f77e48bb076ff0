package models

import (
	"time"

	"github.com/google/uuid"
)

// AttendanceType тип посещения.
type AttendanceType string

const (
	AttendanceGym   AttendanceType = "GYM"
	AttendanceClass AttendanceType = "CLASS"
)

// Valid сообщает, является ли тип одним из известных.
func (t AttendanceType) Valid() bool {
	return t == AttendanceGym || t == AttendanceClass
}

// DateKeyLayout формат поля DateKey.
const DateKeyLayout = "2006-01-02"

// Attendance одна запись о посещении. IsActive == true, пока пользователь
// не отметил выход.
type Attendance struct {
	ID               int64          `json:"id"`
	UserID           uuid.UUID      `json:"user_id"`
	EntranceDatetime time.Time      `json:"entrance_datetime"`
	ExitDatetime     *time.Time     `json:"exit_datetime,omitempty"`
	Type             AttendanceType `json:"type"`
	ClassID          *int64         `json:"class_id,omitempty"`
	DateKey          string         `json:"date_key"`
	IsActive         bool           `json:"is_active"`
	User             *UserSummary   `json:"user,omitempty"`
}

// AttendanceFilter параметры выборки посещений для слоя хранения.
// Nil-поля не участвуют в фильтре, границы включительные.
type AttendanceFilter struct {
	UserID uuid.UUID
	Type   *AttendanceType
	From   *time.Time
	To     *time.Time
}

// HistoryQuery параметры истории посещений в том виде, в каком они пришли
// от клиента: даты без времени.
type HistoryQuery struct {
	From *time.Time
	To   *time.Time
	Type *AttendanceType
}

// AvailableAttendances остаток посещений на текущий месяц.
type AvailableAttendances struct {
	Gym     int `json:"gym"`
	Classes int `json:"classes"`
}

// For возвращает остаток для указанного типа посещения.
func (a AvailableAttendances) For(t AttendanceType) int {
	if t == AttendanceClass {
		return a.Classes
	}
	return a.Gym
}

// CurrentAttendance краткие данные открытого посещения.
type CurrentAttendance struct {
	ID               int64          `json:"id"`
	EntranceDatetime time.Time      `json:"entrance_datetime"`
	Type             AttendanceType `json:"type"`
}

// AttendanceStatus текущее состояние пользователя в зале.
type AttendanceStatus struct {
	IsInside             bool                 `json:"is_inside"`
	CurrentAttendance    *CurrentAttendance   `json:"current_attendance,omitempty"`
	AvailableAttendances AvailableAttendances `json:"available_attendances"`
}

// MonthlyStat количество посещений за месяц YYYY-MM (UTC).
type MonthlyStat struct {
	Month      string `json:"month"`
	GymCount   int    `json:"gym_count"`
	ClassCount int    `json:"class_count"`
}

// AttendanceStats сводка посещений с начала года.
type AttendanceStats struct {
	TotalGymAttendances   int           `json:"total_gym_attendances"`
	TotalClassAttendances int           `json:"total_class_attendances"`
	MonthlyStats          []MonthlyStat `json:"monthly_stats"`
}

// AttendanceEvent событие входа или выхода, публикуется в RabbitMQ.
type AttendanceEvent struct {
	AttendanceID int64          `json:"attendance_id"`
	UserID       uuid.UUID      `json:"user_id"`
	Type         AttendanceType `json:"type"`
	At           time.Time      `json:"at"`
}

// DummyCheckIn используется для приёма отметки входа из JSON-запроса.
// Если UserID пуст, отмечается сам вызывающий.
type DummyCheckIn struct {
	UserID  string         `json:"user_id,omitempty" validate:"omitempty,uuid"`
	Type    AttendanceType `json:"type" validate:"required,oneof=GYM CLASS"`
	ClassID *int64         `json:"class_id,omitempty" validate:"omitempty,gt=0"`
}

// DummyCheckOut используется для приёма отметки выхода из JSON-запроса.
type DummyCheckOut struct {
	UserID string `json:"user_id,omitempty" validate:"omitempty,uuid"`
}

package models

import (
	"time"

	"github.com/google/uuid"
)

// Class групповое занятие в расписании.
type Class struct {
	ID              int64      `json:"id"`
	Name            string     `json:"name"`
	Description     string     `json:"description,omitempty"`
	TrainerID       *uuid.UUID `json:"trainer_id,omitempty"`
	StartsAt        time.Time  `json:"starts_at"`
	DurationMinutes int        `json:"duration_minutes"`
	Capacity        int        `json:"capacity"`
	CreatedAt       time.Time  `json:"created_at"`
}

// DummyClass используется для приёма занятия из JSON-запроса.
// StartsAt в формате RFC3339.
type DummyClass struct {
	Name            string `json:"name" validate:"required,min=2,max=100"`
	Description     string `json:"description,omitempty" validate:"omitempty,max=1000"`
	TrainerID       string `json:"trainer_id,omitempty" validate:"omitempty,uuid"`
	StartsAt        string `json:"starts_at" validate:"required"`
	DurationMinutes int    `json:"duration_minutes" validate:"required,gte=5,lte=480"`
	Capacity        int    `json:"capacity" validate:"required,gte=1"`
}

package models

import "time"

// Membership шаблон абонемента из каталога: лимиты посещений, стоимость и срок.
type Membership struct {
	ID                   int64     `json:"id"`
	Name                 string    `json:"name"`
	Cost                 int64     `json:"cost"`
	MaxClassesAssistance int       `json:"max_classes_assistance"`
	MaxGymAssistance     int       `json:"max_gym_assistance"`
	DurationMonths       int       `json:"duration_months"`
	IsActive             bool      `json:"is_active"`
	CreatedAt            time.Time `json:"created_at"`
	UpdatedAt            time.Time `json:"updated_at"`
}

// DummyMembership используется для приёма абонемента из JSON-запроса.
type DummyMembership struct {
	Name                 string `json:"name" validate:"required,min=2,max=100"`
	Cost                 int64  `json:"cost" validate:"gte=0"`
	MaxClassesAssistance int    `json:"max_classes_assistance" validate:"gte=0"`
	MaxGymAssistance     int    `json:"max_gym_assistance" validate:"gte=0"`
	DurationMonths       int    `json:"duration_months" validate:"required,gte=1,lte=36"`
}

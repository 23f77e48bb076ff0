package models

import (
	"time"

	"github.com/google/uuid"
)

// ItemStatus статус жизненного цикла купленного абонемента.
type ItemStatus string

const (
	ItemStatusPending   ItemStatus = "PENDING"
	ItemStatusActive    ItemStatus = "ACTIVE"
	ItemStatusExpired   ItemStatus = "EXPIRED"
	ItemStatusCancelled ItemStatus = "CANCELLED"
)

// Valid сообщает, является ли статус одним из известных.
func (s ItemStatus) Valid() bool {
	switch s {
	case ItemStatusPending, ItemStatusActive, ItemStatusExpired, ItemStatusCancelled:
		return true
	}
	return false
}

// Terminal сообщает, что из статуса нет перехода.
func (s ItemStatus) Terminal() bool {
	return s == ItemStatusExpired || s == ItemStatusCancelled
}

// Subscription контейнер купленных абонементов пользователя.
// У пользователя одновременно не больше одной активной подписки.
type Subscription struct {
	ID        int64               `json:"id"`
	UserID    uuid.UUID           `json:"user_id"`
	IsActive  bool                `json:"is_active"`
	CreatedAt time.Time           `json:"created_at"`
	Items     []*SubscriptionItem `json:"items"`
}

// SubscriptionItem купленный абонемент. Поля шаблона копируются в момент
// покупки, поэтому правки каталога не меняют уже купленные позиции.
type SubscriptionItem struct {
	ID                   int64      `json:"id"`
	SubscriptionID       int64      `json:"subscription_id"`
	MembershipID         *int64     `json:"membership_id,omitempty"`
	Name                 string     `json:"name"`
	Cost                 int64      `json:"cost"`
	MaxClassesAssistance int        `json:"max_classes_assistance"`
	MaxGymAssistance     int        `json:"max_gym_assistance"`
	DurationMonths       int        `json:"duration_months"`
	PurchaseDate         time.Time  `json:"purchase_date"`
	StartDate            time.Time  `json:"start_date"`
	EndDate              time.Time  `json:"end_date"`
	Status               ItemStatus `json:"status"`
}

// ItemFromMembership замораживает шаблон абонемента в позицию подписки.
func ItemFromMembership(m Membership, purchased, start time.Time) SubscriptionItem {
	id := m.ID
	return SubscriptionItem{
		MembershipID:         &id,
		Name:                 m.Name,
		Cost:                 m.Cost,
		MaxClassesAssistance: m.MaxClassesAssistance,
		MaxGymAssistance:     m.MaxGymAssistance,
		DurationMonths:       m.DurationMonths,
		PurchaseDate:         purchased,
		StartDate:            start,
		EndDate:              start.AddDate(0, m.DurationMonths, 0),
	}
}

// DummyPurchase используется для приёма покупки абонемента из JSON-запроса.
// StartDate в формате 2006-01-02, по умолчанию сегодня.
type DummyPurchase struct {
	MembershipID int64  `json:"membership_id" validate:"required,gt=0"`
	StartDate    string `json:"start_date,omitempty" validate:"omitempty"`
}

// DummyItemStatus используется для смены статуса позиции подписки.
type DummyItemStatus struct {
	Status ItemStatus `json:"status" validate:"required,oneof=PENDING ACTIVE EXPIRED CANCELLED"`
}

// ItemStatusChange событие смены статуса позиции подписки, публикуется планировщиком.
type ItemStatusChange struct {
	ItemID    int64      `json:"item_id"`
	UserID    uuid.UUID  `json:"user_id"`
	Email     string     `json:"email"`
	FirstName string     `json:"first_name"`
	Name      string     `json:"name"`
	StartDate time.Time  `json:"start_date"`
	EndDate   time.Time  `json:"end_date"`
	Status    ItemStatus `json:"status"`
}

// Package models содержит доменные структуры спортзала: пользователей,
// абонементы, подписки, посещения и занятия, а также DTO для приёма
// данных из JSON-запросов.
package models

import (
	"time"

	"github.com/google/uuid"
)

// Role роль пользователя системы.
type Role string

const (
	RoleAdmin        Role = "admin"
	RoleReceptionist Role = "receptionist"
	RoleTrainer      Role = "trainer"
	RoleClient       Role = "client"
)

// StaffRoles роли, которым разрешено действовать от имени любого пользователя.
var StaffRoles = []Role{RoleAdmin, RoleReceptionist}

// User представляет зарегистрированного пользователя спортзала.
type User struct {
	ID           uuid.UUID  `json:"id"`
	Email        string     `json:"email"`
	PasswordHash string     `json:"-"`
	FirstName    string     `json:"first_name"`
	LastName     string     `json:"last_name"`
	IsActive     bool       `json:"is_active"`
	Roles        []Role     `json:"roles"`
	CreatedAt    time.Time  `json:"created_at"`
	LastLoginAt  *time.Time `json:"last_login_at,omitempty"`
}

// UserSummary краткое представление пользователя для вложения в другие ответы.
type UserSummary struct {
	ID        uuid.UUID `json:"id"`
	Email     string    `json:"email"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
}

// RegisterInput данные для регистрации, уже прошедшие валидацию.
type RegisterInput struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
	Roles     []Role
}

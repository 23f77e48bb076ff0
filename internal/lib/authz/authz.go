// Package authz содержит явные проверки прав: пересечение ролей
// и доступ к данным конкретного пользователя.
package authz

import (
	"github.com/google/uuid"

	"github.com/magabrotheeeer/gym-management/internal/models"
)

// Principal аутентифицированный вызывающий.
type Principal struct {
	UserID uuid.UUID
	Email  string
	Roles  []models.Role
}

// HasAnyRole сообщает, пересекаются ли роли вызывающего с roles.
func (p Principal) HasAnyRole(roles ...models.Role) bool {
	for _, have := range p.Roles {
		for _, want := range roles {
			if have == want {
				return true
			}
		}
	}
	return false
}

// IsStaff сообщает, может ли вызывающий действовать за любого пользователя.
func (p Principal) IsStaff() bool {
	return p.HasAnyRole(models.StaffRoles...)
}

// CanActFor разрешает персоналу доступ к любому пользователю,
// остальным только к себе.
func (p Principal) CanActFor(target uuid.UUID) bool {
	if p.UserID == uuid.Nil {
		return false
	}
	return p.UserID == target || p.IsStaff()
}

// ResolveTarget возвращает пользователя, над которым выполняется действие:
// requested, если он задан, иначе сам вызывающий. Если прав нет,
// возвращается ошибка вида models.ErrForbidden.
func (p Principal) ResolveTarget(requested uuid.UUID) (uuid.UUID, error) {
	target := requested
	if target == uuid.Nil {
		target = p.UserID
	}
	if !p.CanActFor(target) {
		return uuid.Nil, ErrAccessDenied
	}
	return target, nil
}

// ErrAccessDenied недостаточно прав для действия над пользователем.
var ErrAccessDenied = models.NewDomainError(models.ErrForbidden, "access denied")

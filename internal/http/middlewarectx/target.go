package middlewarectx

import (
	"context"

	"github.com/google/uuid"

	"github.com/magabrotheeeer/gym-management/internal/models"
)

// Ошибки определения целевого пользователя.
var (
	ErrNoPrincipal   = models.NewDomainError(models.ErrUnauthorized, "unauthorized")
	ErrInvalidUserID = models.NewDomainError(models.ErrInvalidInput, "invalid user id")
)

// ResolveUser определяет пользователя, над которым выполняется действие.
// Пустой requested означает самого вызывающего. Клиент может действовать
// только за себя, персонал за любого пользователя.
func ResolveUser(ctx context.Context, requested string) (uuid.UUID, error) {
	p, ok := PrincipalFrom(ctx)
	if !ok {
		return uuid.Nil, ErrNoPrincipal
	}
	var id uuid.UUID
	if requested != "" {
		parsed, err := uuid.Parse(requested)
		if err != nil {
			return uuid.Nil, ErrInvalidUserID
		}
		id = parsed
	}
	return p.ResolveTarget(id)
}

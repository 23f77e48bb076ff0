// Package list реализует HTTP-обработчик просмотра каталога абонементов.
package list

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/gym-management/internal/http/middlewarectx"
	"github.com/magabrotheeeer/gym-management/internal/http/response"
	"github.com/magabrotheeeer/gym-management/internal/models"
)

// Service описывает получение каталога.
type Service interface {
	List(ctx context.Context, includeInactive bool) ([]*models.Membership, error)
}

// Handler обрабатывает GET /memberships.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Каталог абонементов
// @Description Активные абонементы. Администратор может запросить и неактивные через include_inactive=true.
// @Tags Memberships
// @Produce  json
// @Security BearerAuth
// @Param include_inactive query bool false "Включить неактивные (только admin)"
// @Success 200 {object} response.Response{data=[]models.Membership}
// @Failure 401 {object} response.ErrorResponse "Нет токена"
// @Router /memberships [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.membership.list"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	includeInactive := false
	if r.URL.Query().Get("include_inactive") == "true" {
		p, _ := middlewarectx.PrincipalFrom(r.Context())
		includeInactive = p.HasAnyRole(models.RoleAdmin)
	}

	list, err := h.service.List(r.Context(), includeInactive)
	if err != nil {
		response.ServiceError(w, r, log, err)
		return
	}
	render.JSON(w, r, response.StatusOKWithData(list))
}

// Package read реализует HTTP-обработчик получения активной подписки пользователя
// вместе с её позициями.
package read

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/google/uuid"

	"github.com/magabrotheeeer/gym-management/internal/http/middlewarectx"
	"github.com/magabrotheeeer/gym-management/internal/http/response"
	"github.com/magabrotheeeer/gym-management/internal/models"
)

// Service описывает чтение подписки.
type Service interface {
	GetActive(ctx context.Context, userID uuid.UUID) (*models.Subscription, error)
}

// Handler обрабатывает GET /users/{userID}/subscription.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Активная подписка пользователя
// @Tags Subscriptions
// @Produce  json
// @Security BearerAuth
// @Param userID path string true "UUID пользователя"
// @Success 200 {object} response.Response{data=models.Subscription}
// @Failure 400 {object} response.ErrorResponse "Некорректный UUID"
// @Failure 403 {object} response.ErrorResponse "Нет доступа к пользователю"
// @Failure 404 {object} response.ErrorResponse "Нет активной подписки"
// @Router /users/{userID}/subscription [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.subscription.read"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	userID, err := middlewarectx.ResolveUser(r.Context(), chi.URLParam(r, "userID"))
	if err != nil {
		response.ServiceError(w, r, log, err)
		return
	}

	sub, err := h.service.GetActive(r.Context(), userID)
	if err != nil {
		response.ServiceError(w, r, log, err)
		return
	}
	render.JSON(w, r, response.StatusOKWithData(sub))
}

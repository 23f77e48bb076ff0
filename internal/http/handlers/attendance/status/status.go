// Package status возвращает, находится ли пользователь в зале, и остаток посещений.
package status

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/google/uuid"

	"github.com/magabrotheeeer/gym-management/internal/http/middlewarectx"
	"github.com/magabrotheeeer/gym-management/internal/http/response"
	"github.com/magabrotheeeer/gym-management/internal/models"
)

// Service описывает получение состояния.
type Service interface {
	Status(ctx context.Context, userID uuid.UUID) (*models.AttendanceStatus, error)
}

// Handler обрабатывает GET /attendances/status.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Состояние пользователя
// @Tags Attendances
// @Produce  json
// @Security BearerAuth
// @Param user_id query string false "UUID пользователя, по умолчанию вызывающий"
// @Success 200 {object} response.Response{data=models.AttendanceStatus}
// @Failure 400 {object} response.ErrorResponse "Некорректный UUID"
// @Failure 403 {object} response.ErrorResponse "Нет прав"
// @Failure 404 {object} response.ErrorResponse "Пользователь не найден"
// @Router /attendances/status [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.attendance.status"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	userID, err := middlewarectx.ResolveUser(r.Context(), r.URL.Query().Get("user_id"))
	if err != nil {
		response.ServiceError(w, r, log, err)
		return
	}

	st, err := h.service.Status(r.Context(), userID)
	if err != nil {
		response.ServiceError(w, r, log, err)
		return
	}
	render.JSON(w, r, response.StatusOKWithData(st))
}

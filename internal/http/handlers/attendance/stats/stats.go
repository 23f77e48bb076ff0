// Package stats возвращает сводку посещений пользователя с начала года.
package stats

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

// Service описывает получение статистики.
type Service interface {
	Stats(ctx context.Context, userID uuid.UUID) (*models.AttendanceStats, error)
}

// Handler обрабатывает GET /users/{userID}/attendances/stats.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Статистика посещений
// @Description Итоги и помесячная разбивка с начала текущего года.
// @Tags Attendances
// @Produce  json
// @Security BearerAuth
// @Param userID path string true "UUID пользователя"
// @Success 200 {object} response.Response{data=models.AttendanceStats}
// @Failure 400 {object} response.ErrorResponse "Некорректный UUID"
// @Failure 403 {object} response.ErrorResponse "Нет прав"
// @Failure 404 {object} response.ErrorResponse "Пользователь не найден"
// @Router /users/{userID}/attendances/stats [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.attendance.stats"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	userID, err := middlewarectx.ResolveUser(r.Context(), chi.URLParam(r, "userID"))
	if err != nil {
		response.ServiceError(w, r, log, err)
		return
	}

	st, err := h.service.Stats(r.Context(), userID)
	if err != nil {
		response.ServiceError(w, r, log, err)
		return
	}
	render.JSON(w, r, response.StatusOKWithData(st))
}

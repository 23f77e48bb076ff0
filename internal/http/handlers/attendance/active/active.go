// Package active возвращает всех, кто сейчас находится в зале.
package active

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/gym-management/internal/http/response"
	"github.com/magabrotheeeer/gym-management/internal/models"
)

// Service описывает получение открытых посещений.
type Service interface {
	ActiveAttendances(ctx context.Context) ([]*models.Attendance, error)
}

// Handler обрабатывает GET /attendances/active.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Кто сейчас в зале
// @Tags Attendances
// @Produce  json
// @Security BearerAuth
// @Success 200 {object} response.Response{data=[]models.Attendance}
// @Failure 403 {object} response.ErrorResponse "Только персонал"
// @Router /attendances/active [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.attendance.active"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	list, err := h.service.ActiveAttendances(r.Context())
	if err != nil {
		response.ServiceError(w, r, log, err)
		return
	}
	render.JSON(w, r, response.StatusOKWithData(list))
}

// Package remove реализует HTTP-обработчик снятия абонемента с продажи.
package remove

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/gym-management/internal/http/response"
	"github.com/magabrotheeeer/gym-management/internal/lib/sl"
)

// Service описывает деактивацию абонемента.
type Service interface {
	Deactivate(ctx context.Context, id int64) error
}

// Handler обрабатывает DELETE /memberships/{id}.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Снять абонемент с продажи
// @Description Абонемент помечается неактивным, купленные позиции сохраняются.
// @Tags Memberships
// @Produce  json
// @Security BearerAuth
// @Param id path int true "ID абонемента"
// @Success 204 "Абонемент деактивирован"
// @Failure 400 {object} response.ErrorResponse "Некорректный ID"
// @Failure 404 {object} response.ErrorResponse "Абонемент не найден"
// @Router /memberships/{id} [delete]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.membership.remove"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		log.Warn("failed to decode id from url", sl.Err(err))
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid id"))
		return
	}

	if err := h.service.Deactivate(r.Context(), id); err != nil {
		response.ServiceError(w, r, log, err)
		return
	}

	log.Info("membership deactivated", slog.Int64("membership_id", id))
	w.WriteHeader(http.StatusNoContent)
}

// Package update реализует HTTP-обработчик изменения абонемента.
// Изменения не затрагивают уже купленные позиции подписок.
package update

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/gym-management/internal/http/response"
	"github.com/magabrotheeeer/gym-management/internal/lib/sl"
	"github.com/magabrotheeeer/gym-management/internal/models"
)

// Service описывает изменение абонемента.
type Service interface {
	Update(ctx context.Context, id int64, req models.DummyMembership) (*models.Membership, error)
}

// Handler обрабатывает PUT /memberships/{id}.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: validator.New(),
	}
}

// ServeHTTP godoc
// @Summary Изменить абонемент
// @Tags Memberships
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param id path int true "ID абонемента"
// @Param request body models.DummyMembership true "Новые значения"
// @Success 200 {object} response.Response{data=models.Membership}
// @Failure 400 {object} response.ErrorResponse "Некорректный ID или JSON"
// @Failure 404 {object} response.ErrorResponse "Абонемент не найден"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Router /memberships/{id} [put]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.membership.update"

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

	var req models.DummyMembership
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("failed to decode request body", sl.Err(err))
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}

	if err := h.validate.Struct(req); err != nil {
		var verrs validator.ValidationErrors
		errors.As(err, &verrs)
		log.Warn("validation failed", sl.Err(err))
		render.Status(r, http.StatusUnprocessableEntity)
		render.JSON(w, r, response.ValidationError(verrs))
		return
	}

	m, err := h.service.Update(r.Context(), id, req)
	if err != nil {
		response.ServiceError(w, r, log, err)
		return
	}

	log.Info("membership updated", slog.Int64("membership_id", id))
	render.JSON(w, r, response.StatusOKWithData(m))
}

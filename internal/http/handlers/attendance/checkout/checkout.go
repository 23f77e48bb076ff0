// Package checkout реализует HTTP-обработчик отметки выхода.
package checkout

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"
	"github.com/google/uuid"

	"github.com/magabrotheeeer/gym-management/internal/http/middlewarectx"
	"github.com/magabrotheeeer/gym-management/internal/http/response"
	"github.com/magabrotheeeer/gym-management/internal/lib/sl"
	"github.com/magabrotheeeer/gym-management/internal/models"
)

// Service описывает отметку выхода.
type Service interface {
	CheckOut(ctx context.Context, userID uuid.UUID) (*models.Attendance, error)
}

// Handler обрабатывает POST /attendances/check-out.
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
// @Summary Отметить выход
// @Description Тело запроса необязательно: без user_id выход отмечается для вызывающего.
// @Tags Attendances
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param request body models.DummyCheckOut false "Пользователь"
// @Success 200 {object} response.Response{data=models.Attendance}
// @Failure 400 {object} response.ErrorResponse "Некорректный запрос"
// @Failure 403 {object} response.ErrorResponse "Нет прав"
// @Failure 404 {object} response.ErrorResponse "Нет открытого посещения"
// @Router /attendances/check-out [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.attendance.checkout"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req models.DummyCheckOut
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
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

	userID, err := middlewarectx.ResolveUser(r.Context(), req.UserID)
	if err != nil {
		response.ServiceError(w, r, log, err)
		return
	}

	a, err := h.service.CheckOut(r.Context(), userID)
	if err != nil {
		response.ServiceError(w, r, log, err)
		return
	}
	render.JSON(w, r, response.StatusOKWithData(a))
}

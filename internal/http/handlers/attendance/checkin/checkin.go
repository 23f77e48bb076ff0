// Package checkin реализует HTTP-обработчик отметки входа в зал или на занятие.
package checkin

import (
	"context"
	"encoding/json"
	"errors"
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

// Service описывает отметку входа.
type Service interface {
	CheckIn(ctx context.Context, userID uuid.UUID, typ models.AttendanceType, classID *int64) (*models.Attendance, error)
}

// Handler обрабатывает POST /attendances/check-in.
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
// @Summary Отметить вход
// @Description Без user_id отмечается сам вызывающий. Персонал может отметить любого клиента.
// @Tags Attendances
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param request body models.DummyCheckIn true "Тип посещения"
// @Success 201 {object} response.Response{data=models.Attendance}
// @Failure 400 {object} response.ErrorResponse "Некорректный запрос"
// @Failure 403 {object} response.ErrorResponse "Нет доступных посещений или нет прав"
// @Failure 404 {object} response.ErrorResponse "Пользователь или занятие не найдено"
// @Failure 409 {object} response.ErrorResponse "Пользователь уже в зале"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Router /attendances/check-in [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.attendance.checkin"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req models.DummyCheckIn
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

	userID, err := middlewarectx.ResolveUser(r.Context(), req.UserID)
	if err != nil {
		response.ServiceError(w, r, log, err)
		return
	}

	a, err := h.service.CheckIn(r.Context(), userID, req.Type, req.ClassID)
	if err != nil {
		response.ServiceError(w, r, log, err)
		return
	}

	render.Status(r, http.StatusCreated)
	render.JSON(w, r, response.StatusOKWithData(a))
}

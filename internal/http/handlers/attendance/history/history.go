// Package history реализует HTTP-обработчик истории посещений пользователя
// с фильтрами по датам и типу.
package history

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/google/uuid"

	"github.com/magabrotheeeer/gym-management/internal/http/middlewarectx"
	"github.com/magabrotheeeer/gym-management/internal/http/response"
	"github.com/magabrotheeeer/gym-management/internal/models"
)

// Service описывает получение истории.
type Service interface {
	History(ctx context.Context, userID uuid.UUID, q models.HistoryQuery) ([]*models.Attendance, error)
}

// Handler обрабатывает GET /users/{userID}/attendances.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary История посещений
// @Description Границы включительные: from с начала дня, to до конца дня (UTC).
// @Tags Attendances
// @Produce  json
// @Security BearerAuth
// @Param userID path string true "UUID пользователя"
// @Param from query string false "Дата начала YYYY-MM-DD"
// @Param to query string false "Дата окончания YYYY-MM-DD"
// @Param type query string false "GYM или CLASS"
// @Success 200 {object} response.Response{data=[]models.Attendance}
// @Failure 400 {object} response.ErrorResponse "Некорректные параметры"
// @Failure 403 {object} response.ErrorResponse "Нет прав"
// @Failure 404 {object} response.ErrorResponse "Пользователь не найден"
// @Router /users/{userID}/attendances [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.attendance.history"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	userID, err := middlewarectx.ResolveUser(r.Context(), chi.URLParam(r, "userID"))
	if err != nil {
		response.ServiceError(w, r, log, err)
		return
	}

	q, msg := parseQuery(r)
	if msg != "" {
		log.Warn("invalid query", slog.String("reason", msg))
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error(msg))
		return
	}

	list, err := h.service.History(r.Context(), userID, q)
	if err != nil {
		response.ServiceError(w, r, log, err)
		return
	}
	render.JSON(w, r, response.StatusOKWithData(list))
}

// parseQuery разбирает from, to и type. Непустой msg описывает ошибку.
func parseQuery(r *http.Request) (models.HistoryQuery, string) {
	var q models.HistoryQuery
	values := r.URL.Query()

	if s := values.Get("from"); s != "" {
		t, err := time.Parse(models.DateKeyLayout, s)
		if err != nil {
			return q, "from must be a date in format 2006-01-02"
		}
		q.From = &t
	}
	if s := values.Get("to"); s != "" {
		t, err := time.Parse(models.DateKeyLayout, s)
		if err != nil {
			return q, "to must be a date in format 2006-01-02"
		}
		q.To = &t
	}
	if q.From != nil && q.To != nil && q.From.After(*q.To) {
		return q, "from must not be after to"
	}
	if s := values.Get("type"); s != "" {
		typ := models.AttendanceType(s)
		if !typ.Valid() {
			return q, "type must be one of [GYM CLASS]"
		}
		q.Type = &typ
	}
	return q, ""
}

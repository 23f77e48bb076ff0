// Package itemstatus реализует ручную смену статуса позиции подписки администратором.
package itemstatus

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

// Service описывает смену статуса позиции.
type Service interface {
	SetItemStatus(ctx context.Context, itemID int64, to models.ItemStatus) (*models.SubscriptionItem, error)
}

// Handler обрабатывает PATCH /subscription-items/{itemID}/status.
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
// @Summary Сменить статус позиции подписки
// @Description EXPIRED и CANCELLED конечные: выйти из них нельзя.
// @Tags Subscriptions
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param itemID path int true "ID позиции"
// @Param request body models.DummyItemStatus true "Новый статус"
// @Success 200 {object} response.Response{data=models.SubscriptionItem}
// @Failure 400 {object} response.ErrorResponse "Некорректный запрос"
// @Failure 404 {object} response.ErrorResponse "Позиция не найдена"
// @Failure 409 {object} response.ErrorResponse "Недопустимый переход"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Router /subscription-items/{itemID}/status [patch]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.subscription.itemstatus"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	itemID, err := strconv.ParseInt(chi.URLParam(r, "itemID"), 10, 64)
	if err != nil || itemID <= 0 {
		log.Warn("failed to decode item id from url", sl.Err(err))
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid item id"))
		return
	}

	var req models.DummyItemStatus
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

	item, err := h.service.SetItemStatus(r.Context(), itemID, req.Status)
	if err != nil {
		response.ServiceError(w, r, log, err)
		return
	}

	log.Info("subscription item status changed", slog.Int64("item_id", itemID), slog.String("status", string(item.Status)))
	render.JSON(w, r, response.StatusOKWithData(item))
}

// Package purchase реализует HTTP-обработчик покупки абонемента: в активную
// подписку пользователя добавляется позиция с замороженными условиями.
package purchase

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"
	"github.com/google/uuid"

	"github.com/magabrotheeeer/gym-management/internal/http/middlewarectx"
	"github.com/magabrotheeeer/gym-management/internal/http/response"
	"github.com/magabrotheeeer/gym-management/internal/lib/sl"
	"github.com/magabrotheeeer/gym-management/internal/models"
)

// Service описывает покупку позиции.
type Service interface {
	PurchaseItem(ctx context.Context, userID uuid.UUID, req models.DummyPurchase) (*models.SubscriptionItem, error)
}

// Handler обрабатывает POST /users/{userID}/subscription/items.
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
// @Summary Купить абонемент
// @Description Позиция получает статус ACTIVE, если start_date не позже сегодняшнего дня, иначе PENDING.
// @Tags Subscriptions
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param userID path string true "UUID пользователя"
// @Param request body models.DummyPurchase true "Абонемент и дата начала (YYYY-MM-DD)"
// @Success 201 {object} response.Response{data=models.SubscriptionItem}
// @Failure 400 {object} response.ErrorResponse "Некорректный запрос"
// @Failure 403 {object} response.ErrorResponse "Нет доступа или абонемент снят с продажи"
// @Failure 404 {object} response.ErrorResponse "Пользователь или абонемент не найден"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Router /users/{userID}/subscription/items [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.subscription.purchase"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	userID, err := middlewarectx.ResolveUser(r.Context(), chi.URLParam(r, "userID"))
	if err != nil {
		response.ServiceError(w, r, log, err)
		return
	}

	var req models.DummyPurchase
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

	item, err := h.service.PurchaseItem(r.Context(), userID, req)
	if err != nil {
		response.ServiceError(w, r, log, err)
		return
	}

	log.Info("subscription item purchased",
		slog.String("user_id", userID.String()),
		slog.Int64("item_id", item.ID),
		slog.String("status", string(item.Status)),
	)
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, response.StatusOKWithData(item))
}

package itemstatus

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/magabrotheeeer/gym-management/internal/models"
)

type MockService struct {
	mock.Mock
}

func (m *MockService) SetItemStatus(ctx context.Context, itemID int64, to models.ItemStatus) (*models.SubscriptionItem, error) {
	args := m.Called(ctx, itemID, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.SubscriptionItem), args.Error(1)
}

func TestItemStatusHandler(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	tests := []struct {
		name           string
		itemID         string
		body           string
		setupMock      func(*MockService)
		expectedStatus int
		expectedBody   string
	}{
		{
			name:   "отмена",
			itemID: "5",
			body:   `{"status":"CANCELLED"}`,
			setupMock: func(m *MockService) {
				m.On("SetItemStatus", mock.Anything, int64(5), models.ItemStatusCancelled).
					Return(&models.SubscriptionItem{ID: 5, Status: models.ItemStatusCancelled}, nil).Once()
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"status":"CANCELLED"`,
		},
		{
			name:           "неизвестный статус",
			itemID:         "5",
			body:           `{"status":"FROZEN"}`,
			setupMock:      func(*MockService) {},
			expectedStatus: http.StatusUnprocessableEntity,
			expectedBody:   `field Status must be one of`,
		},
		{
			name:           "некорректный id",
			itemID:         "x",
			body:           `{"status":"ACTIVE"}`,
			setupMock:      func(*MockService) {},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:   "выход из конечного статуса",
			itemID: "6",
			body:   `{"status":"ACTIVE"}`,
			setupMock: func(m *MockService) {
				m.On("SetItemStatus", mock.Anything, int64(6), models.ItemStatusActive).
					Return(nil, models.NewDomainError(models.ErrConflict, "item status is terminal")).Once()
			},
			expectedStatus: http.StatusConflict,
			expectedBody:   `item status is terminal`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockService)
			tt.setupMock(svc)

			req := httptest.NewRequest(http.MethodPatch, "/subscription-items/"+tt.itemID+"/status", strings.NewReader(tt.body))
			rctx := chi.NewRouteContext()
			rctx.URLParams.Add("itemID", tt.itemID)
			req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))

			w := httptest.NewRecorder()
			New(logger, svc).ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.Contains(t, w.Body.String(), tt.expectedBody)
			svc.AssertExpectations(t)
		})
	}
}

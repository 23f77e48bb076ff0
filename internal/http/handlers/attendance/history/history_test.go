package history

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/magabrotheeeer/gym-management/internal/http/middlewarectx"
	"github.com/magabrotheeeer/gym-management/internal/lib/authz"
	"github.com/magabrotheeeer/gym-management/internal/models"
)

type MockService struct {
	mock.Mock
}

func (m *MockService) History(ctx context.Context, userID uuid.UUID, q models.HistoryQuery) ([]*models.Attendance, error) {
	args := m.Called(ctx, userID, q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Attendance), args.Error(1)
}

func TestHistoryHandler(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	self := uuid.New()
	client := authz.Principal{UserID: self, Roles: []models.Role{models.RoleClient}}

	from := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2025, 3, 31, 0, 0, 0, 0, time.UTC)
	gym := models.AttendanceGym

	tests := []struct {
		name           string
		userID         string
		query          string
		setupMock      func(*MockService)
		expectedStatus int
		expectedBody   string
	}{
		{
			name:   "все фильтры",
			userID: self.String(),
			query:  "?from=2025-03-01&to=2025-03-31&type=GYM",
			setupMock: func(m *MockService) {
				m.On("History", mock.Anything, self, models.HistoryQuery{From: &from, To: &to, Type: &gym}).
					Return([]*models.Attendance{{ID: 1, Type: models.AttendanceGym}}, nil).Once()
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"id":1`,
		},
		{
			name:   "только to",
			userID: self.String(),
			query:  "?to=2025-03-31",
			setupMock: func(m *MockService) {
				m.On("History", mock.Anything, self, models.HistoryQuery{To: &to}).
					Return([]*models.Attendance{}, nil).Once()
			},
			expectedStatus: http.StatusOK,
		},
		{
			name:           "неверная дата",
			userID:         self.String(),
			query:          "?from=01.03.2025",
			setupMock:      func(*MockService) {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `from must be a date`,
		},
		{
			name:           "from позже to",
			userID:         self.String(),
			query:          "?from=2025-04-01&to=2025-03-01",
			setupMock:      func(*MockService) {},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "неизвестный тип",
			userID:         self.String(),
			query:          "?type=POOL",
			setupMock:      func(*MockService) {},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "чужая история",
			userID:         uuid.NewString(),
			setupMock:      func(*MockService) {},
			expectedStatus: http.StatusForbidden,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockService)
			tt.setupMock(svc)

			req := httptest.NewRequest(http.MethodGet, "/users/"+tt.userID+"/attendances"+tt.query, nil)
			rctx := chi.NewRouteContext()
			rctx.URLParams.Add("userID", tt.userID)
			ctx := context.WithValue(req.Context(), chi.RouteCtxKey, rctx)
			req = req.WithContext(middlewarectx.WithPrincipal(ctx, client))

			w := httptest.NewRecorder()
			New(logger, svc).ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.Contains(t, w.Body.String(), tt.expectedBody)
			svc.AssertExpectations(t)
		})
	}
}

package attendance

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/magabrotheeeer/gym-management/internal/models"
)

type RepoMock struct{ mock.Mock }

func (m *RepoMock) WithUserLock(ctx context.Context, userID uuid.UUID, fn func(ctx context.Context) error) error {
	args := m.Called(ctx, userID)
	if err := args.Error(0); err != nil {
		return err
	}
	return fn(ctx)
}

func (m *RepoMock) UserExists(ctx context.Context, userID uuid.UUID) (bool, error) {
	args := m.Called(ctx, userID)
	return args.Bool(0), args.Error(1)
}

func (m *RepoMock) GetActiveSubscription(ctx context.Context, userID uuid.UUID) (*models.Subscription, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Subscription), args.Error(1)
}

func (m *RepoMock) GetClass(ctx context.Context, id int64) (*models.Class, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Class), args.Error(1)
}

func (m *RepoMock) CountAttendancesByType(ctx context.Context, userID uuid.UUID, from, to time.Time) (int, int, error) {
	args := m.Called(ctx, userID, from, to)
	return args.Int(0), args.Int(1), args.Error(2)
}

func (m *RepoMock) FindOpenAttendance(ctx context.Context, userID uuid.UUID) (*models.Attendance, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Attendance), args.Error(1)
}

func (m *RepoMock) CreateAttendance(ctx context.Context, a models.Attendance) (*models.Attendance, error) {
	args := m.Called(ctx, a)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Attendance), args.Error(1)
}

func (m *RepoMock) CloseAttendance(ctx context.Context, id int64, exit time.Time) (*models.Attendance, error) {
	args := m.Called(ctx, id, exit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Attendance), args.Error(1)
}

func (m *RepoMock) ListAttendances(ctx context.Context, filter models.AttendanceFilter) ([]*models.Attendance, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Attendance), args.Error(1)
}

func (m *RepoMock) ListActiveAttendances(ctx context.Context) ([]*models.Attendance, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Attendance), args.Error(1)
}

type CacheMock struct{ mock.Mock }

func (m *CacheMock) Get(ctx context.Context, key string, result any) (bool, error) {
	args := m.Called(ctx, key, result)
	return args.Bool(0), args.Error(1)
}

func (m *CacheMock) Set(ctx context.Context, key string, value any, expiration time.Duration) error {
	return m.Called(ctx, key, value, expiration).Error(0)
}

func (m *CacheMock) Invalidate(ctx context.Context, keys ...string) error {
	return m.Called(ctx, keys).Error(0)
}

type PublisherMock struct{ mock.Mock }

func (m *PublisherMock) Publish(ctx context.Context, routingKey string, event any) error {
	return m.Called(ctx, routingKey, event).Error(0)
}

func newNoopLogger() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

// memRepo хранилище в памяти для сценарных тестов.
type memRepo struct {
	mu          sync.Mutex
	users       map[uuid.UUID]bool
	subs        map[uuid.UUID]*models.Subscription
	attendances []*models.Attendance
	nextID      int64
}

func newMemRepo() *memRepo {
	return &memRepo{
		users: make(map[uuid.UUID]bool),
		subs:  make(map[uuid.UUID]*models.Subscription),
	}
}

func (r *memRepo) addUser(items ...*models.SubscriptionItem) uuid.UUID {
	id := uuid.New()
	r.users[id] = true
	if len(items) > 0 {
		r.subs[id] = &models.Subscription{ID: int64(len(r.subs) + 1), UserID: id, IsActive: true, Items: items}
	}
	return id
}

func (r *memRepo) addAttendance(userID uuid.UUID, typ models.AttendanceType, at time.Time) {
	r.nextID++
	exit := at.Add(time.Hour)
	r.attendances = append(r.attendances, &models.Attendance{
		ID:               r.nextID,
		UserID:           userID,
		EntranceDatetime: at,
		ExitDatetime:     &exit,
		Type:             typ,
		DateKey:          at.UTC().Format(models.DateKeyLayout),
	})
}

func (r *memRepo) openCount(userID uuid.UUID) int {
	n := 0
	for _, a := range r.attendances {
		if a.UserID == userID && a.IsActive {
			n++
		}
	}
	return n
}

func (r *memRepo) WithUserLock(ctx context.Context, userID uuid.UUID, fn func(ctx context.Context) error) error {
	r.mu.Lock()
	ok := r.users[userID]
	r.mu.Unlock()
	if !ok {
		return models.ErrNotFound
	}
	return fn(ctx)
}

func (r *memRepo) UserExists(_ context.Context, userID uuid.UUID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.users[userID], nil
}

func (r *memRepo) GetActiveSubscription(_ context.Context, userID uuid.UUID) (*models.Subscription, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	sub, ok := r.subs[userID]
	if !ok {
		return nil, models.ErrNotFound
	}
	return sub, nil
}

func (r *memRepo) GetClass(_ context.Context, id int64) (*models.Class, error) {
	return &models.Class{ID: id, Name: "Yoga"}, nil
}

func (r *memRepo) CountAttendancesByType(_ context.Context, userID uuid.UUID, from, to time.Time) (int, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var gym, class int
	for _, a := range r.attendances {
		if a.UserID != userID || a.EntranceDatetime.Before(from) || !a.EntranceDatetime.Before(to) {
			continue
		}
		if a.Type == models.AttendanceGym {
			gym++
		} else {
			class++
		}
	}
	return gym, class, nil
}

func (r *memRepo) FindOpenAttendance(_ context.Context, userID uuid.UUID) (*models.Attendance, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.attendances {
		if a.UserID == userID && a.IsActive {
			cp := *a
			return &cp, nil
		}
	}
	return nil, models.ErrNotFound
}

func (r *memRepo) CreateAttendance(_ context.Context, a models.Attendance) (*models.Attendance, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.attendances {
		if existing.UserID == a.UserID && existing.IsActive {
			return nil, models.ErrConflict
		}
	}
	r.nextID++
	a.ID = r.nextID
	a.IsActive = true
	r.attendances = append(r.attendances, &a)
	cp := a
	return &cp, nil
}

func (r *memRepo) CloseAttendance(_ context.Context, id int64, exit time.Time) (*models.Attendance, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.attendances {
		if a.ID == id && a.IsActive {
			a.IsActive = false
			a.ExitDatetime = &exit
			cp := *a
			return &cp, nil
		}
	}
	return nil, models.ErrNotFound
}

func (r *memRepo) ListAttendances(_ context.Context, f models.AttendanceFilter) ([]*models.Attendance, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	list := make([]*models.Attendance, 0)
	for _, a := range r.attendances {
		if a.UserID != f.UserID {
			continue
		}
		if f.Type != nil && a.Type != *f.Type {
			continue
		}
		if f.From != nil && a.EntranceDatetime.Before(*f.From) {
			continue
		}
		if f.To != nil && a.EntranceDatetime.After(*f.To) {
			continue
		}
		cp := *a
		list = append(list, &cp)
	}
	sort.Slice(list, func(i, j int) bool {
		return list[i].EntranceDatetime.After(list[j].EntranceDatetime)
	})
	return list, nil
}

func (r *memRepo) ListActiveAttendances(_ context.Context) ([]*models.Attendance, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	list := make([]*models.Attendance, 0)
	for _, a := range r.attendances {
		if a.IsActive {
			cp := *a
			list = append(list, &cp)
		}
	}
	return list, nil
}

// memCache кэш в памяти, хранит значения как есть.
type memCache struct {
	mu   sync.Mutex
	data map[string]*models.AttendanceStats
}

func newMemCache() *memCache {
	return &memCache{data: make(map[string]*models.AttendanceStats)}
}

func (c *memCache) Get(_ context.Context, key string, result any) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.data[key]
	if !ok {
		return false, nil
	}
	*(result.(*models.AttendanceStats)) = *v
	return true, nil
}

func (c *memCache) Set(_ context.Context, key string, value any, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = value.(*models.AttendanceStats)
	return nil
}

func (c *memCache) Invalidate(_ context.Context, keys ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, k := range keys {
		delete(c.data, k)
	}
	return nil
}

type nopPublisher struct{}

func (nopPublisher) Publish(context.Context, string, any) error { return nil }

func activeItem(gym, classes int) *models.SubscriptionItem {
	return &models.SubscriptionItem{
		Name:                 "Standard",
		MaxGymAssistance:     gym,
		MaxClassesAssistance: classes,
		Status:               models.ItemStatusActive,
	}
}

func fmtErr(op string, err error) error {
	return fmt.Errorf("%s: %w", op, err)
}

package repository

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/gym-management/internal/models"
)

func TestStorage_Users(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()
	ctx := context.Background()

	created, err := storage.CreateUser(ctx, models.User{
		Email:        "anna@example.com",
		PasswordHash: "hash",
		FirstName:    "Anna",
		LastName:     "Petrova",
		IsActive:     true,
		Roles:        []models.Role{models.RoleClient},
	})
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, created.ID)
	assert.Equal(t, []models.Role{models.RoleClient}, created.Roles)

	_, err = storage.CreateUser(ctx, models.User{Email: "anna@example.com", PasswordHash: "hash", Roles: []models.Role{models.RoleClient}})
	require.ErrorIs(t, err, models.ErrConflict)

	got, err := storage.GetUserByEmail(ctx, "anna@example.com")
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)

	require.NoError(t, storage.GrantRole(ctx, created.ID, models.RoleAdmin))
	got, err = storage.GetUser(ctx, created.ID)
	require.NoError(t, err)
	assert.ElementsMatch(t, []models.Role{models.RoleClient, models.RoleAdmin}, got.Roles)

	exists, err := storage.UserExists(ctx, uuid.New())
	require.NoError(t, err)
	assert.False(t, exists)

	_, err = storage.GetUser(ctx, uuid.New())
	require.ErrorIs(t, err, models.ErrNotFound)
}

func TestStorage_AttendanceLifecycle(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()
	ctx := context.Background()
	factory := NewTestDataFactory(storage)

	userID := factory.CreateUser(t, "gym@example.com")
	entrance := time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC)

	_, err := storage.FindOpenAttendance(ctx, userID)
	require.ErrorIs(t, err, models.ErrNotFound)

	open, err := storage.CreateAttendance(ctx, models.Attendance{
		UserID:           userID,
		EntranceDatetime: entrance,
		Type:             models.AttendanceGym,
		DateKey:          "2024-03-10",
	})
	require.NoError(t, err)
	assert.True(t, open.IsActive)
	assert.Nil(t, open.ExitDatetime)

	_, err = storage.CreateAttendance(ctx, models.Attendance{
		UserID:           userID,
		EntranceDatetime: entrance.Add(time.Minute),
		Type:             models.AttendanceGym,
		DateKey:          "2024-03-10",
	})
	require.ErrorIs(t, err, models.ErrConflict, "second open attendance must be rejected")

	active, err := storage.ListActiveAttendances(ctx)
	require.NoError(t, err)
	require.Len(t, active, 1)
	require.NotNil(t, active[0].User)
	assert.Equal(t, "gym@example.com", active[0].User.Email)

	closed, err := storage.CloseAttendance(ctx, open.ID, entrance.Add(90*time.Minute))
	require.NoError(t, err)
	assert.False(t, closed.IsActive)
	require.NotNil(t, closed.ExitDatetime)
	assert.True(t, closed.ExitDatetime.Equal(entrance.Add(90*time.Minute)))

	_, err = storage.CloseAttendance(ctx, open.ID, entrance.Add(2*time.Hour))
	require.ErrorIs(t, err, models.ErrNotFound)
}

func TestStorage_CountAttendancesByType(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()
	ctx := context.Background()
	factory := NewTestDataFactory(storage)

	userID := factory.CreateUser(t, "count@example.com")
	march := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	april := time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)

	factory.CreateAttendance(t, userID, models.AttendanceGym, march)
	factory.CreateAttendance(t, userID, models.AttendanceGym, march.Add(48*time.Hour))
	factory.CreateAttendance(t, userID, models.AttendanceClass, march.Add(72*time.Hour))
	factory.CreateAttendance(t, userID, models.AttendanceGym, april)
	factory.CreateAttendance(t, userID, models.AttendanceGym, march.Add(-time.Second))

	gym, class, err := storage.CountAttendancesByType(ctx, userID, march, april)
	require.NoError(t, err)
	assert.Equal(t, 2, gym)
	assert.Equal(t, 1, class)
}

func TestStorage_ListAttendances(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()
	ctx := context.Background()
	factory := NewTestDataFactory(storage)

	userID := factory.CreateUser(t, "history@example.com")
	base := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	factory.CreateAttendance(t, userID, models.AttendanceGym, base)
	factory.CreateAttendance(t, userID, models.AttendanceClass, base.Add(24*time.Hour))
	factory.CreateAttendance(t, userID, models.AttendanceGym, base.Add(48*time.Hour))

	gymType := models.AttendanceGym
	from := base.Add(24 * time.Hour)
	to := base.Add(48 * time.Hour)

	tests := []struct {
		name      string
		filter    models.AttendanceFilter
		wantCount int
	}{
		{name: "all", filter: models.AttendanceFilter{UserID: userID}, wantCount: 3},
		{name: "by type", filter: models.AttendanceFilter{UserID: userID, Type: &gymType}, wantCount: 2},
		{name: "inclusive bounds", filter: models.AttendanceFilter{UserID: userID, From: &from, To: &to}, wantCount: 2},
		{name: "other user", filter: models.AttendanceFilter{UserID: uuid.New()}, wantCount: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := storage.ListAttendances(ctx, tt.filter)
			require.NoError(t, err)
			assert.Len(t, got, tt.wantCount)
			for i := 1; i < len(got); i++ {
				assert.False(t, got[i].EntranceDatetime.After(got[i-1].EntranceDatetime), "newest first")
			}
		})
	}
}

func TestStorage_WithUserLock(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()
	ctx := context.Background()
	factory := NewTestDataFactory(storage)

	t.Run("unknown user", func(t *testing.T) {
		called := false
		err := storage.WithUserLock(ctx, uuid.New(), func(context.Context) error {
			called = true
			return nil
		})
		require.ErrorIs(t, err, models.ErrNotFound)
		assert.False(t, called)
	})

	t.Run("rollback on error", func(t *testing.T) {
		userID := factory.CreateUser(t, "rollback@example.com")
		boom := errors.New("boom")
		err := storage.WithUserLock(ctx, userID, func(ctx context.Context) error {
			_, err := storage.CreateAttendance(ctx, models.Attendance{
				UserID:           userID,
				EntranceDatetime: time.Now().UTC(),
				Type:             models.AttendanceGym,
				DateKey:          time.Now().UTC().Format(models.DateKeyLayout),
			})
			require.NoError(t, err)
			return boom
		})
		require.ErrorIs(t, err, boom)

		_, err = storage.FindOpenAttendance(ctx, userID)
		require.ErrorIs(t, err, models.ErrNotFound)
	})

	t.Run("concurrent check-ins keep one open attendance", func(t *testing.T) {
		userID := factory.CreateUser(t, "race@example.com")

		const workers = 8
		var (
			wg      sync.WaitGroup
			mu      sync.Mutex
			success int
		)
		for range workers {
			wg.Add(1)
			go func() {
				defer wg.Done()
				err := storage.WithUserLock(ctx, userID, func(ctx context.Context) error {
					if _, err := storage.FindOpenAttendance(ctx, userID); err == nil {
						return models.ErrConflict
					}
					now := time.Now().UTC()
					_, err := storage.CreateAttendance(ctx, models.Attendance{
						UserID:           userID,
						EntranceDatetime: now,
						Type:             models.AttendanceGym,
						DateKey:          now.Format(models.DateKeyLayout),
					})
					return err
				})
				if err == nil {
					mu.Lock()
					success++
					mu.Unlock()
				}
			}()
		}
		wg.Wait()

		assert.Equal(t, 1, success)
		var open int
		require.NoError(t, storage.DB.QueryRow(
			`SELECT COUNT(*) FROM attendances WHERE user_uid = $1 AND is_active`, userID).Scan(&open))
		assert.Equal(t, 1, open)
	})
}

func TestStorage_Subscriptions(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()
	ctx := context.Background()
	factory := NewTestDataFactory(storage)

	userID := factory.CreateUser(t, "sub@example.com")

	_, err := storage.GetActiveSubscription(ctx, userID)
	require.ErrorIs(t, err, models.ErrNotFound)

	today := time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC)
	expiredID := factory.CreateActiveItem(t, userID, 10, 2, today.AddDate(0, -1, -1), today.AddDate(0, 0, -1))
	activeID := factory.CreateActiveItem(t, userID, 12, 4, today.AddDate(0, 0, -5), today.AddDate(0, 1, 0))

	sub, err := storage.GetActiveSubscription(ctx, userID)
	require.NoError(t, err)
	require.Len(t, sub.Items, 2)

	pending, err := storage.CreateSubscriptionItem(ctx, sub.ID, models.SubscriptionItem{
		Name:             "Next month",
		Cost:             1000,
		MaxGymAssistance: 8,
		DurationMonths:   1,
		PurchaseDate:     today,
		StartDate:        today,
		EndDate:          today.AddDate(0, 1, 0),
		Status:           models.ItemStatusPending,
	})
	require.NoError(t, err)

	expired, err := storage.ExpireSubscriptionItems(ctx, today)
	require.NoError(t, err)
	require.Len(t, expired, 1)
	assert.Equal(t, expiredID, expired[0].ItemID)
	assert.Equal(t, "sub@example.com", expired[0].Email)
	assert.Equal(t, models.ItemStatusExpired, expired[0].Status)

	activated, err := storage.ActivatePendingItems(ctx, today)
	require.NoError(t, err)
	require.Len(t, activated, 1)
	assert.Equal(t, pending.ID, activated[0].ItemID)

	again, err := storage.ExpireSubscriptionItems(ctx, today)
	require.NoError(t, err)
	assert.Empty(t, again)

	it, err := storage.UpdateSubscriptionItemStatus(ctx, activeID, models.ItemStatusActive, models.ItemStatusCancelled)
	require.NoError(t, err)
	assert.Equal(t, models.ItemStatusCancelled, it.Status)

	_, err = storage.UpdateSubscriptionItemStatus(ctx, activeID, models.ItemStatusActive, models.ItemStatusExpired)
	require.ErrorIs(t, err, models.ErrConflict)
}

func TestStorage_Classes(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()
	ctx := context.Background()
	factory := NewTestDataFactory(storage)

	trainer := factory.CreateUser(t, "trainer@example.com")
	starts := time.Date(2024, 7, 1, 18, 0, 0, 0, time.UTC)

	created, err := storage.CreateClass(ctx, models.Class{
		Name:            "Yoga",
		TrainerID:       &trainer,
		StartsAt:        starts,
		DurationMinutes: 60,
		Capacity:        12,
	})
	require.NoError(t, err)
	require.NotNil(t, created.TrainerID)
	assert.Equal(t, trainer, *created.TrainerID)

	list, err := storage.ListClasses(ctx, starts.Add(-time.Hour))
	require.NoError(t, err)
	assert.Len(t, list, 1)

	list, err = storage.ListClasses(ctx, starts.Add(time.Hour))
	require.NoError(t, err)
	assert.Empty(t, list)

	require.NoError(t, storage.DeleteClass(ctx, created.ID))
	require.ErrorIs(t, storage.DeleteClass(ctx, created.ID), models.ErrNotFound)
	_, err = storage.GetClass(ctx, created.ID)
	require.ErrorIs(t, err, models.ErrNotFound)
}

func TestStorage_Memberships(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()
	ctx := context.Background()

	seeded, err := storage.ListMemberships(ctx, true)
	require.NoError(t, err)
	assert.Len(t, seeded, 3)

	m, err := storage.CreateMembership(ctx, models.Membership{
		Name:             "Student",
		Cost:             150000,
		MaxGymAssistance: 10,
		DurationMonths:   1,
		IsActive:         true,
	})
	require.NoError(t, err)

	_, err = storage.CreateMembership(ctx, models.Membership{Name: "Student", Cost: 1, DurationMonths: 1, IsActive: true})
	require.ErrorIs(t, err, models.ErrConflict)

	require.NoError(t, storage.DeactivateMembership(ctx, m.ID))
	active, err := storage.ListMemberships(ctx, true)
	require.NoError(t, err)
	assert.Len(t, active, 3)

	all, err := storage.ListMemberships(ctx, false)
	require.NoError(t, err)
	assert.Len(t, all, 4)

	require.ErrorIs(t, storage.DeactivateMembership(ctx, 999999), models.ErrNotFound)
}

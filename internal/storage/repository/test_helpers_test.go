package repository

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/docker/go-connections/nat"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/magabrotheeeer/gym-management/internal/migrations"
	"github.com/magabrotheeeer/gym-management/internal/models"
)

const postgresPort = nat.Port("5432/tcp")

// TestDataFactory содержит методы для создания тестовых данных
type TestDataFactory struct {
	storage *Storage
}

// NewTestDataFactory создает новую фабрику тестовых данных
func NewTestDataFactory(storage *Storage) *TestDataFactory {
	return &TestDataFactory{storage: storage}
}

// CreateUser создает тестового пользователя с ролью client
func (f *TestDataFactory) CreateUser(t *testing.T, email string) uuid.UUID {
	var id uuid.UUID
	err := f.storage.DB.QueryRow(`INSERT INTO users (email, password_hash, first_name, last_name)
		VALUES ($1, 'hash', 'Test', 'User') RETURNING uid`, email).Scan(&id)
	require.NoError(t, err)
	return id
}

// CreateActiveItem создает активную подписку с одной позицией
func (f *TestDataFactory) CreateActiveItem(t *testing.T, userID uuid.UUID, gym, classes int, start, end time.Time) int64 {
	ctx := context.Background()
	sub, err := f.storage.GetActiveSubscription(ctx, userID)
	if err != nil {
		sub, err = f.storage.CreateSubscription(ctx, userID)
		require.NoError(t, err)
	}
	it, err := f.storage.CreateSubscriptionItem(ctx, sub.ID, models.SubscriptionItem{
		Name:                 "Test plan",
		Cost:                 1000,
		MaxClassesAssistance: classes,
		MaxGymAssistance:     gym,
		DurationMonths:       1,
		PurchaseDate:         start,
		StartDate:            start,
		EndDate:              end,
		Status:               models.ItemStatusActive,
	})
	require.NoError(t, err)
	return it.ID
}

// CreateAttendance создает закрытое посещение с заданным временем входа
func (f *TestDataFactory) CreateAttendance(t *testing.T, userID uuid.UUID, typ models.AttendanceType, at time.Time) int64 {
	var id int64
	err := f.storage.DB.QueryRow(`INSERT INTO attendances
		(user_uid, entrance_datetime, exit_datetime, type, date_key, is_active)
		VALUES ($1, $2, $3, $4, $5, FALSE) RETURNING id`,
		userID, at, at.Add(time.Hour), string(typ), at.UTC().Format(models.DateKeyLayout)).Scan(&id)
	require.NoError(t, err)
	return id
}

func setupTestDatabase(t *testing.T) (*Storage, func()) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "postgres:15-alpine",
		ExposedPorts: []string{string(postgresPort)},
		Env: map[string]string{
			"POSTGRES_DB":       "testdb",
			"POSTGRES_USER":     "testuser",
			"POSTGRES_PASSWORD": "testpass",
		},
		WaitingFor: wait.ForAll(
			wait.ForListeningPort(postgresPort),
			wait.ForLog("database system is ready to accept connections").WithOccurrence(2),
		).WithDeadline(3 * time.Minute),
	}

	postgresContainer, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err, "failed to start container")

	host, err := postgresContainer.Host(ctx)
	require.NoError(t, err, "Failed to get host")
	port, err := postgresContainer.MappedPort(ctx, postgresPort)
	require.NoError(t, err, "Failed to get port")

	connStr := fmt.Sprintf("postgres://testuser:testpass@%s:%s/testdb?sslmode=disable", host, port.Port())

	// Пробуем подключиться несколько раз с ретраями
	var storage *Storage
	for range 10 {
		storage, err = New(connStr)
		if err == nil {
			break
		}
		time.Sleep(1 * time.Second)
	}
	require.NoError(t, err, "Failed to create storage after retries")

	migrationsPath, err := filepath.Abs("../../../migrations")
	require.NoError(t, err)
	require.NoError(t, migrations.Run(storage.DB, migrationsPath))

	cleanup := func() {
		_ = storage.Close()
		if err := postgresContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %s", err)
		}
	}
	return storage, cleanup
}

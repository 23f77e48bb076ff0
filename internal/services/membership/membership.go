// Package membership реализует каталог абонементов с кешированием в Redis.
package membership

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/magabrotheeeer/gym-management/internal/cache"
	"github.com/magabrotheeeer/gym-management/internal/lib/sl"
	"github.com/magabrotheeeer/gym-management/internal/models"
)

// Repository определяет методы для работы с каталогом абонементов в хранилище.
type Repository interface {
	CreateMembership(ctx context.Context, m models.Membership) (*models.Membership, error)
	GetMembership(ctx context.Context, id int64) (*models.Membership, error)
	ListMemberships(ctx context.Context, onlyActive bool) ([]*models.Membership, error)
	UpdateMembership(ctx context.Context, id int64, m models.Membership) (*models.Membership, error)
	DeactivateMembership(ctx context.Context, id int64) error
}

// Cache описывает методы для кэширования данных.
type Cache interface {
	// Get пытается получить значение из кеша по ключу.
	Get(ctx context.Context, key string, result any) (bool, error)
	// Set сохраняет значение в кеш с временем жизни.
	Set(ctx context.Context, key string, value any, expiration time.Duration) error
	// Invalidate удаляет значения из кеша по ключам.
	Invalidate(ctx context.Context, keys ...string) error
}

const cacheTTL = time.Hour

// Ошибки каталога.
var (
	ErrNotFound  = models.NewDomainError(models.ErrNotFound, "membership not found")
	ErrNameTaken = models.NewDomainError(models.ErrConflict, "membership name already exists")
)

// Service реализует бизнес-логику каталога абонементов.
type Service struct {
	repo  Repository
	cache Cache
	log   *slog.Logger
}

// New создает новый экземпляр Service.
func New(repo Repository, cache Cache, log *slog.Logger) *Service {
	return &Service{
		repo:  repo,
		cache: cache,
		log:   log,
	}
}

func fromDummy(req models.DummyMembership) models.Membership {
	return models.Membership{
		Name:                 req.Name,
		Cost:                 req.Cost,
		MaxClassesAssistance: req.MaxClassesAssistance,
		MaxGymAssistance:     req.MaxGymAssistance,
		DurationMonths:       req.DurationMonths,
		IsActive:             true,
	}
}

func mapRepoError(op string, err error) error {
	switch {
	case errors.Is(err, models.ErrNotFound):
		return ErrNotFound
	case errors.Is(err, models.ErrConflict):
		return ErrNameTaken
	}
	return fmt.Errorf("%s: %w", op, err)
}

// Create добавляет абонемент в каталог и сбрасывает кеш списка.
func (s *Service) Create(ctx context.Context, req models.DummyMembership) (*models.Membership, error) {
	const op = "membership.Create"
	m, err := s.repo.CreateMembership(ctx, fromDummy(req))
	if err != nil {
		return nil, mapRepoError(op, err)
	}
	s.log.Info("created membership", slog.Int64("id", m.ID))
	s.invalidate(ctx, cache.MembershipsAllKey)
	return m, nil
}

// Get возвращает абонемент по ID, используя кеш или репозиторий.
func (s *Service) Get(ctx context.Context, id int64) (*models.Membership, error) {
	const op = "membership.Get"
	key := cache.MembershipKey(id)

	var cached models.Membership
	found, err := s.cache.Get(ctx, key, &cached)
	if err != nil {
		s.log.Warn("failed to read from cache", slog.String("key", key), sl.Err(err))
	}
	if found {
		return &cached, nil
	}

	m, err := s.repo.GetMembership(ctx, id)
	if err != nil {
		return nil, mapRepoError(op, err)
	}
	if err := s.cache.Set(ctx, key, m, cacheTTL); err != nil {
		s.log.Warn("failed to add to cache", slog.String("key", key), sl.Err(err))
	}
	return m, nil
}

// List возвращает каталог. Список активных абонементов кешируется,
// полный список с неактивными читается из репозитория.
func (s *Service) List(ctx context.Context, includeInactive bool) ([]*models.Membership, error) {
	const op = "membership.List"
	if includeInactive {
		list, err := s.repo.ListMemberships(ctx, false)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		return list, nil
	}

	var cached []*models.Membership
	found, err := s.cache.Get(ctx, cache.MembershipsAllKey, &cached)
	if err != nil {
		s.log.Warn("failed to read from cache", slog.String("key", cache.MembershipsAllKey), sl.Err(err))
	}
	if found {
		return cached, nil
	}

	list, err := s.repo.ListMemberships(ctx, true)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err := s.cache.Set(ctx, cache.MembershipsAllKey, list, cacheTTL); err != nil {
		s.log.Warn("failed to add to cache", slog.String("key", cache.MembershipsAllKey), sl.Err(err))
	}
	return list, nil
}

// Update изменяет шаблон абонемента. Купленные позиции подписок не меняются.
func (s *Service) Update(ctx context.Context, id int64, req models.DummyMembership) (*models.Membership, error) {
	const op = "membership.Update"
	m, err := s.repo.UpdateMembership(ctx, id, fromDummy(req))
	if err != nil {
		return nil, mapRepoError(op, err)
	}
	s.log.Info("updated membership", slog.Int64("id", id))
	s.invalidate(ctx, cache.MembershipKey(id), cache.MembershipsAllKey)
	return m, nil
}

// Deactivate снимает абонемент с продажи.
func (s *Service) Deactivate(ctx context.Context, id int64) error {
	const op = "membership.Deactivate"
	if err := s.repo.DeactivateMembership(ctx, id); err != nil {
		return mapRepoError(op, err)
	}
	s.log.Info("deactivated membership", slog.Int64("id", id))
	s.invalidate(ctx, cache.MembershipKey(id), cache.MembershipsAllKey)
	return nil
}

func (s *Service) invalidate(ctx context.Context, keys ...string) {
	if err := s.cache.Invalidate(ctx, keys...); err != nil {
		s.log.Warn("failed to remove from cache", slog.Any("keys", keys), sl.Err(err))
	}
}

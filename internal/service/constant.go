package service

import (
	"context"
	"fmt"
	"strconv"
	"sync"

	"go.uber.org/zap"

	"FinTrack/internal/cache"
	"FinTrack/internal/model"
	"FinTrack/internal/repository"
	pkgerrors "FinTrack/pkg/errors"
	"FinTrack/pkg/logger"
	"FinTrack/storage/database"
)

var (
	constantService *ConstantService
	constantOnce    sync.Once
)

func Constant() *ConstantService {
	constantOnce.Do(func() {
		constantService = NewConstantService(repository.NewGormStore(database.DB()), cache.RedisBreaker)
	})
	return constantService
}

func SetConstant(s *ConstantService) {
	constantOnce.Do(func() {})
	constantService = s
}

// ConstantService 国家、城市、货币、语言等基础数据，Redis 缓存，失败时读库
type ConstantService struct {
	store   repository.Store
	breaker *cache.CircuitBreaker
}

func NewConstantService(store repository.Store, breaker *cache.CircuitBreaker) *ConstantService {
	return &ConstantService{store: store, breaker: breaker}
}

func (s *ConstantService) Countries(ctx context.Context) ([]model.Country, error) {
	return cached(ctx, s.breaker, "countries", func() ([]model.Country, error) {
		return s.store.Countries(ctx)
	})
}

// Cities 国家不存在时返回 COUNTRY_NOT_FOUND
func (s *ConstantService) Cities(ctx context.Context, countryID int64) ([]model.City, error) {
	ok, err := s.store.CountryExists(ctx, countryID)
	if err != nil {
		return nil, fmt.Errorf("failed to check country: %w", err)
	}
	if !ok {
		return nil, pkgerrors.CountryNotFound
	}

	return cached(ctx, s.breaker, "cities:"+strconv.FormatInt(countryID, 10), func() ([]model.City, error) {
		return s.store.Cities(ctx, countryID)
	})
}

func (s *ConstantService) Currencies(ctx context.Context) ([]model.Currency, error) {
	return cached(ctx, s.breaker, "currencies", func() ([]model.Currency, error) {
		return s.store.Currencies(ctx)
	})
}

func (s *ConstantService) Languages(ctx context.Context) ([]model.Language, error) {
	return cached(ctx, s.breaker, "languages", func() ([]model.Language, error) {
		return s.store.Languages(ctx)
	})
}

func cached[T any](ctx context.Context, breaker *cache.CircuitBreaker, key string, load func() ([]T, error)) ([]T, error) {
	var items []T
	var lookup cache.Lookup
	err := breaker.Call(ctx, func() error {
		var err error
		lookup, err = cache.ConstantProtectedCache.Get(ctx, key, &items)
		return err
	})
	if err == nil && lookup == cache.Hit {
		return items, nil
	}
	if err != nil {
		logger.Logger.Warn("Constant cache unavailable", zap.String("key", key), zap.Error(err))
	}

	items, err = load()
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", key, err)
	}

	if err := breaker.Call(ctx, func() error { return cache.ConstantProtectedCache.Set(ctx, key, items) }); err != nil {
		logger.Logger.Warn("Failed to cache constant", zap.String("key", key), zap.Error(err))
	}
	return items, nil
}

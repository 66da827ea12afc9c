package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"FinTrack/internal/cache"
	"FinTrack/internal/repository/repositorytest"
	pkgerrors "FinTrack/pkg/errors"
	"FinTrack/storage/redis"
)

func TestConstantServiceCaches(t *testing.T) {
	e := setup(t)
	ctx := context.Background()
	svc := NewConstantService(e.store, cache.NewCircuitBreaker("test", 3, time.Minute))

	countries, err := svc.Countries(ctx)
	require.NoError(t, err)
	assert.Len(t, countries, 5)
	assert.True(t, e.mr.Exists(redis.Key("constant", "countries")))

	// 缓存命中后不再读库
	e.store.Err = repositorytest.ErrUnavailable
	again, err := svc.Countries(ctx)
	require.NoError(t, err)
	assert.Equal(t, countries, again)
}

func TestConstantCities(t *testing.T) {
	e := setup(t)
	ctx := context.Background()
	svc := NewConstantService(e.store, cache.NewCircuitBreaker("test", 3, time.Minute))

	cities, err := svc.Cities(ctx, 1)
	require.NoError(t, err)
	require.Len(t, cities, 3)
	assert.Equal(t, "Karachi", cities[0].Name)

	_, err = svc.Cities(ctx, 99)
	assert.ErrorIs(t, err, pkgerrors.CountryNotFound)

	currencies, err := svc.Currencies(ctx)
	require.NoError(t, err)
	assert.Equal(t, "USD", currencies[0].Code)

	languages, err := svc.Languages(ctx)
	require.NoError(t, err)
	assert.NotEmpty(t, languages)
}

func TestConstantWithoutRedis(t *testing.T) {
	e := setup(t)
	e.mr.Close()
	svc := NewConstantService(e.store, cache.NewCircuitBreaker("test", 3, time.Minute))

	currencies, err := svc.Currencies(context.Background())
	require.NoError(t, err)
	assert.Len(t, currencies, 5)
}

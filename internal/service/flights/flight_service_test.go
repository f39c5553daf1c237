package flights

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/skyfare/layby/internal/domain"
)

type MockFlightRepository struct {
	mock.Mock
}

func (m *MockFlightRepository) List(ctx context.Context) ([]domain.Flight, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.Flight), args.Error(1)
}

func (m *MockFlightRepository) GetByID(ctx context.Context, id int64) (*domain.Flight, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Flight), args.Error(1)
}

func (m *MockFlightRepository) Search(ctx context.Context, from, to string, day time.Time, passengers int) ([]domain.Flight, error) {
	args := m.Called(ctx, from, to, day, passengers)
	return args.Get(0).([]domain.Flight), args.Error(1)
}

func (m *MockFlightRepository) ReserveSeat(ctx context.Context, flightID int64) error {
	args := m.Called(ctx, flightID)
	return args.Error(0)
}

func (m *MockFlightRepository) ReleaseSeat(ctx context.Context, flightID int64) error {
	args := m.Called(ctx, flightID)
	return args.Error(0)
}

type MockCache struct {
	mock.Mock
}

func (m *MockCache) GetFlights(ctx context.Context) ([]domain.Flight, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.Flight), args.Error(1)
}

func (m *MockCache) SetFlights(ctx context.Context, flights []domain.Flight) error {
	args := m.Called(ctx, flights)
	return args.Error(0)
}

func (m *MockCache) GetSearch(ctx context.Context, from, to string, day time.Time, passengers int) ([]domain.Flight, error) {
	args := m.Called(ctx, from, to, day, passengers)
	return args.Get(0).([]domain.Flight), args.Error(1)
}

func (m *MockCache) SetSearch(ctx context.Context, from, to string, day time.Time, passengers int, flights []domain.Flight) error {
	args := m.Called(ctx, from, to, day, passengers, flights)
	return args.Error(0)
}

func TestList_CacheMissFallsThrough(t *testing.T) {
	repo := &MockFlightRepository{}
	cache := &MockCache{}
	svc := NewFlightService(repo, cache, time.Minute)

	flights := []domain.Flight{{ID: 1, FromAirport: "SYD", ToAirport: "MEL"}}
	cache.On("GetFlights", mock.Anything).Return([]domain.Flight(nil), nil)
	repo.On("List", mock.Anything).Return(flights, nil)
	cache.On("SetFlights", mock.Anything, flights).Return(nil)

	got, err := svc.List(context.Background())
	require.NoError(t, err)
	assert.Equal(t, flights, got)
	repo.AssertExpectations(t)
	cache.AssertExpectations(t)
}

func TestList_CacheHitSkipsRepo(t *testing.T) {
	repo := &MockFlightRepository{}
	cache := &MockCache{}
	svc := NewFlightService(repo, cache, time.Minute)

	cached := []domain.Flight{{ID: 2, FromAirport: "SYD", ToAirport: "BNE"}}
	cache.On("GetFlights", mock.Anything).Return(cached, nil)

	got, err := svc.List(context.Background())
	require.NoError(t, err)
	assert.Equal(t, cached, got)
	repo.AssertNotCalled(t, "List", mock.Anything)
}

func TestSearch_DefaultsPassengersToOne(t *testing.T) {
	repo := &MockFlightRepository{}
	cache := &MockCache{}
	svc := NewFlightService(repo, cache, time.Minute)

	day := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	results := []domain.Flight{{ID: 3, FromAirport: "SYD", ToAirport: "SIN"}}

	cache.On("GetSearch", mock.Anything, "SYD", "SIN", day, 1).Return([]domain.Flight(nil), nil)
	repo.On("Search", mock.Anything, "SYD", "SIN", day, 1).Return(results, nil)
	cache.On("SetSearch", mock.Anything, "SYD", "SIN", day, 1, results).Return(nil)

	got, err := svc.Search(context.Background(), SearchQuery{From: "SYD", To: "SIN", Date: day})
	require.NoError(t, err)
	assert.Equal(t, results, got)
	repo.AssertExpectations(t)
}

func TestSearch_RepoError(t *testing.T) {
	repo := &MockFlightRepository{}
	svc := NewFlightService(repo, nil, time.Minute)

	day := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	repo.On("Search", mock.Anything, "SYD", "SIN", day, 2).Return([]domain.Flight(nil), errors.New("db down"))

	_, err := svc.Search(context.Background(), SearchQuery{From: "SYD", To: "SIN", Date: day, Passengers: 2})
	assert.Error(t, err)
}

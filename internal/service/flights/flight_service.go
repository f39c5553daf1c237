package flights

import (
	"context"
	"time"

	"github.com/skyfare/layby/internal/domain"
	"github.com/skyfare/layby/internal/repository"
)

type FlightUseCase interface {
	List(ctx context.Context) ([]domain.Flight, error)
	GetByID(ctx context.Context, id int64) (*domain.Flight, error)
	Search(ctx context.Context, query SearchQuery) ([]domain.Flight, error)
}

// SearchQuery describes one flight search: route, departure day and party size.
type SearchQuery struct {
	From       string
	To         string
	Date       time.Time
	Passengers int
}

type FlightCache interface {
	GetFlights(ctx context.Context) ([]domain.Flight, error)
	SetFlights(ctx context.Context, flights []domain.Flight) error
	GetSearch(ctx context.Context, from, to string, day time.Time, passengers int) ([]domain.Flight, error)
	SetSearch(ctx context.Context, from, to string, day time.Time, passengers int, flights []domain.Flight) error
}

type FlightService struct {
	repo     repository.FlightRepository
	cache    FlightCache
	cacheTTL time.Duration
}

func NewFlightService(repo repository.FlightRepository, cache FlightCache, cacheTTL time.Duration) *FlightService {
	return &FlightService{repo: repo, cache: cache, cacheTTL: cacheTTL}
}

func (s *FlightService) List(ctx context.Context) ([]domain.Flight, error) {
	if s.cache != nil {
		if cached, err := s.cache.GetFlights(ctx); err == nil && cached != nil {
			return cached, nil
		}
	}

	flights, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		_ = s.cache.SetFlights(ctx, flights)
	}
	return flights, nil
}

func (s *FlightService) GetByID(ctx context.Context, id int64) (*domain.Flight, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *FlightService) Search(ctx context.Context, query SearchQuery) ([]domain.Flight, error) {
	if query.Passengers <= 0 {
		query.Passengers = 1
	}
	if s.cache != nil {
		if cached, err := s.cache.GetSearch(ctx, query.From, query.To, query.Date, query.Passengers); err == nil && cached != nil {
			return cached, nil
		}
	}

	flights, err := s.repo.Search(ctx, query.From, query.To, query.Date, query.Passengers)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		_ = s.cache.SetSearch(ctx, query.From, query.To, query.Date, query.Passengers, flights)
	}
	return flights, nil
}

var _ FlightUseCase = (*FlightService)(nil)

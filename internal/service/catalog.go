package service

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/iliyamo/cinemaflow/internal/model"
	"github.com/iliyamo/cinemaflow/internal/repository"
)

// MovieStore, HallStore and ShowStore are the repository methods the
// catalog needs.  *repository.MovieRepo, *repository.HallRepo and
// *repository.ShowRepo satisfy them.
type MovieStore interface {
	Create(ctx context.Context, m *model.Movie) error
	ListAll(ctx context.Context) ([]model.Movie, error)
}

type HallStore interface {
	Create(ctx context.Context, h *model.Hall) error
	ListAll(ctx context.Context) ([]model.Hall, error)
}

type ShowStore interface {
	Create(ctx context.Context, s *model.Show) error
	ListAll(ctx context.Context) ([]model.ShowDetail, error)
}

// ListingCache is the cache behind Listings.
type ListingCache interface {
	Get(ctx context.Context) ([]model.MovieListing, bool, error)
	Set(ctx context.Context, listings []model.MovieListing) error
	Invalidate(ctx context.Context) error
}

// Catalog serves the movie listings and performs the administrative
// writes that change them.  Every successful write invalidates the
// listing cache.  Cache failures are logged and otherwise ignored; the
// database stays the source of truth.
type Catalog struct {
	movies MovieStore
	halls  HallStore
	shows  ShowStore
	cache  ListingCache
	log    *logrus.Logger
}

// NewCatalog wires a Catalog.  cache may be nil.
func NewCatalog(movies MovieStore, halls HallStore, shows ShowStore, cache ListingCache, log *logrus.Logger) *Catalog {
	if cache == nil {
		cache = repository.NewCatalogCache(nil, 0, "")
	}
	return &Catalog{movies: movies, halls: halls, shows: shows, cache: cache, log: log}
}

// Listings returns every movie with its scheduled shows.  Movies without
// shows are included with an empty show list.
func (c *Catalog) Listings(ctx context.Context) ([]model.MovieListing, error) {
	if cached, ok, err := c.cache.Get(ctx); err != nil {
		c.log.WithError(err).Warn("catalog cache read failed")
	} else if ok {
		return cached, nil
	}

	movies, err := c.movies.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	shows, err := c.shows.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	byMovie := make(map[uint64][]model.ShowDetail, len(movies))
	for _, s := range shows {
		byMovie[s.MovieID] = append(byMovie[s.MovieID], s)
	}
	out := make([]model.MovieListing, 0, len(movies))
	for _, m := range movies {
		list := byMovie[m.ID]
		if list == nil {
			list = []model.ShowDetail{}
		}
		out = append(out, model.MovieListing{Movie: m, Shows: list})
	}

	if err := c.cache.Set(ctx, out); err != nil {
		c.log.WithError(err).Warn("catalog cache write failed")
	}
	return out, nil
}

// Movies lists every movie, uncached, for the schedule form.
func (c *Catalog) Movies(ctx context.Context) ([]model.Movie, error) {
	return c.movies.ListAll(ctx)
}

// Halls lists every hall, uncached, for the schedule form.
func (c *Catalog) Halls(ctx context.Context) ([]model.Hall, error) {
	return c.halls.ListAll(ctx)
}

func (c *Catalog) CreateMovie(ctx context.Context, m *model.Movie) error {
	if err := c.movies.Create(ctx, m); err != nil {
		return err
	}
	c.invalidate(ctx)
	return nil
}

func (c *Catalog) CreateHall(ctx context.Context, h *model.Hall) error {
	if err := c.halls.Create(ctx, h); err != nil {
		return err
	}
	c.invalidate(ctx)
	return nil
}

func (c *Catalog) CreateShow(ctx context.Context, s *model.Show) error {
	if err := c.shows.Create(ctx, s); err != nil {
		return err
	}
	c.invalidate(ctx)
	return nil
}

func (c *Catalog) invalidate(ctx context.Context) {
	if err := c.cache.Invalidate(ctx); err != nil {
		c.log.WithError(err).Warn("catalog cache invalidate failed")
	}
}

package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"strings"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"

	"platefinder/geo"
	"platefinder/models"
)

// ErrNotFound is returned when a restaurant id does not exist.
var ErrNotFound = errors.New("restaurant not found")

var restaurantColumns = []string{
	"id", "name", "city", "address", "cuisines", "aggregate_rating", "votes", "latitude", "longitude", "geo_status",
}

// Store reads and writes restaurants.
type Store struct {
	db *sqlx.DB
	sb sq.StatementBuilderType
}

// NewStore wraps db, picking the placeholder style from its driver.
func NewStore(db *sqlx.DB) *Store {
	var format sq.PlaceholderFormat = sq.Question
	if db.DriverName() == "postgres" {
		format = sq.Dollar
	}
	return &Store{db: db, sb: sq.StatementBuilder.PlaceholderFormat(format)}
}

// All returns every restaurant ordered by id.
func (s *Store) All(ctx context.Context) ([]models.Restaurant, error) {
	return s.selectRestaurants(ctx, s.sb.Select(restaurantColumns...).From("restaurants").OrderBy("id ASC"))
}

// ByID returns one restaurant or ErrNotFound.
func (s *Store) ByID(ctx context.Context, id int64) (models.Restaurant, error) {
	query, args, err := s.sb.Select(restaurantColumns...).From("restaurants").Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return models.Restaurant{}, fmt.Errorf("build restaurant query: %w", err)
	}

	var r models.Restaurant
	if err := s.db.GetContext(ctx, &r, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Restaurant{}, ErrNotFound
		}
		return models.Restaurant{}, fmt.Errorf("get restaurant %d: %w", id, err)
	}
	return r, nil
}

// Nearby returns restaurants with resolved coordinates within radiusKm of
// origin, closest first. A bounding box narrows the scan; the exact
// great-circle distance decides membership.
func (s *Store) Nearby(ctx context.Context, origin models.Coordinates, radiusKm float64) ([]models.Restaurant, error) {
	box := geo.BoundingBox(origin, radiusKm)

	lng := sq.And{sq.GtOrEq{"longitude": box.MinLng}, sq.LtOrEq{"longitude": box.MaxLng}}
	var lngCond sq.Sqlizer = lng
	if box.WrapsAntimeridian {
		lngCond = sq.Or{sq.GtOrEq{"longitude": box.MinLng}, sq.LtOrEq{"longitude": box.MaxLng}}
	}

	q := s.sb.Select(restaurantColumns...).From("restaurants").
		Where(sq.Eq{"geo_status": models.GeoStatusResolved}).
		Where(sq.GtOrEq{"latitude": box.MinLat}).
		Where(sq.LtOrEq{"latitude": box.MaxLat}).
		Where(lngCond)

	candidates, err := s.selectRestaurants(ctx, q)
	if err != nil {
		return nil, err
	}

	type hit struct {
		r    models.Restaurant
		dist float64
	}
	hits := make([]hit, 0, len(candidates))
	for _, r := range candidates {
		d := geo.DistanceKm(origin, models.Coordinates{Latitude: r.Latitude, Longitude: r.Longitude})
		if d <= radiusKm {
			hits = append(hits, hit{r: r, dist: d})
		}
	}
	sort.SliceStable(hits, func(i, j int) bool { return hits[i].dist < hits[j].dist })

	out := make([]models.Restaurant, len(hits))
	for i, h := range hits {
		out[i] = h.r
	}
	return out, nil
}

// ByCuisine returns restaurants whose cuisines contain cuisine, case-insensitively.
func (s *Store) ByCuisine(ctx context.Context, cuisine string) ([]models.Restaurant, error) {
	pattern := "%" + strings.ToLower(cuisine) + "%"
	return s.selectRestaurants(ctx, s.sb.Select(restaurantColumns...).From("restaurants").
		Where(sq.Like{"LOWER(cuisines)": pattern}).
		OrderBy("id ASC"))
}

// Upsert inserts r or replaces the existing row with the same id.
func (s *Store) Upsert(ctx context.Context, r models.Restaurant) error {
	query, args, err := s.sb.Insert("restaurants").
		Columns(restaurantColumns...).
		Values(r.ID, r.Name, r.City, r.Address, r.Cuisines, r.AggregateRating, r.Votes, r.Latitude, r.Longitude, r.GeoStatus).
		Suffix(`ON CONFLICT (id) DO UPDATE SET
			name = excluded.name, city = excluded.city, address = excluded.address,
			cuisines = excluded.cuisines, aggregate_rating = excluded.aggregate_rating,
			votes = excluded.votes, latitude = excluded.latitude, longitude = excluded.longitude,
			geo_status = excluded.geo_status`).
		ToSql()
	if err != nil {
		return fmt.Errorf("build upsert: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert restaurant %d: %w", r.ID, err)
	}
	return nil
}

// PendingGeocode returns up to limit restaurants still waiting for coordinates.
func (s *Store) PendingGeocode(ctx context.Context, limit uint64) ([]models.Restaurant, error) {
	return s.selectRestaurants(ctx, s.sb.Select(restaurantColumns...).From("restaurants").
		Where(sq.Eq{"geo_status": models.GeoStatusPending}).
		OrderBy("id ASC").
		Limit(limit))
}

// SetCoordinates stores resolved coordinates for id.
func (s *Store) SetCoordinates(ctx context.Context, id int64, pos models.Coordinates) error {
	return s.exec(ctx, s.sb.Update("restaurants").
		Set("latitude", pos.Latitude).
		Set("longitude", pos.Longitude).
		Set("geo_status", models.GeoStatusResolved).
		Where(sq.Eq{"id": id}))
}

// MarkGeocodeFailed stops the worker from retrying id.
func (s *Store) MarkGeocodeFailed(ctx context.Context, id int64) error {
	return s.exec(ctx, s.sb.Update("restaurants").
		Set("geo_status", models.GeoStatusFailed).
		Where(sq.Eq{"id": id}))
}

func (s *Store) selectRestaurants(ctx context.Context, q sq.SelectBuilder) ([]models.Restaurant, error) {
	query, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build restaurants query: %w", err)
	}
	out := []models.Restaurant{}
	if err := s.db.SelectContext(ctx, &out, query, args...); err != nil {
		return nil, fmt.Errorf("query restaurants: %w", err)
	}
	return out, nil
}

func (s *Store) exec(ctx context.Context, q sq.UpdateBuilder) error {
	query, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("update restaurants: %w", err)
	}
	return nil
}

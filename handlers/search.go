package handlers

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/apex/log"

	"platefinder/models"
)

// DefaultRadiusKm applies when the search request has no radius.
const DefaultRadiusKm = 3.0

// Store is the restaurant storage the handlers read from.
type Store interface {
	All(ctx context.Context) ([]models.Restaurant, error)
	ByID(ctx context.Context, id int64) (models.Restaurant, error)
	Nearby(ctx context.Context, origin models.Coordinates, radiusKm float64) ([]models.Restaurant, error)
	ByCuisine(ctx context.Context, cuisine string) ([]models.Restaurant, error)
}

// SearchParams is a parsed nearby search request.
type SearchParams struct {
	Origin   models.Coordinates
	RadiusKm float64
}

// ParseSearchParams reads lat, lng and radius. Missing coordinates default to 0
// and a missing or non-positive radius to DefaultRadiusKm; malformed numbers are errors.
func ParseSearchParams(query url.Values) (SearchParams, error) {
	p := SearchParams{RadiusKm: DefaultRadiusKm}

	var err error
	if p.Origin.Latitude, err = floatParam(query, "lat", 0); err != nil {
		return SearchParams{}, err
	}
	if p.Origin.Longitude, err = floatParam(query, "lng", 0); err != nil {
		return SearchParams{}, err
	}
	if p.RadiusKm, err = floatParam(query, "radius", DefaultRadiusKm); err != nil {
		return SearchParams{}, err
	}
	if p.RadiusKm <= 0 {
		p.RadiusKm = DefaultRadiusKm
	}
	return p, nil
}

func floatParam(query url.Values, key string, fallback float64) (float64, error) {
	raw := query.Get(key)
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %q", key, raw)
	}
	return v, nil
}

// SearchHandler returns restaurants within the requested radius, closest first.
func SearchHandler(store Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, err := ParseSearchParams(r.URL.Query())
		if err != nil {
			writeJSON(w, http.StatusBadRequest, errorBody{Error: err.Error()})
			return
		}

		results, err := store.Nearby(r.Context(), p.Origin, p.RadiusKm)
		if err != nil {
			log.WithError(err).Error("nearby search failed")
			writeJSON(w, http.StatusInternalServerError, errorBody{Error: "Something went wrong"})
			return
		}

		log.WithField("lat", p.Origin.Latitude).
			WithField("lng", p.Origin.Longitude).
			WithField("radius", p.RadiusKm).
			WithField("results", len(results)).
			Debug("nearby search")
		writeJSON(w, http.StatusOK, results)
	}
}

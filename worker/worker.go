package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/apex/log"

	"platefinder/metrics"
	"platefinder/models"
)

const (
	BatchSize        = 200
	WorkerPoolSize   = 50
	IntervalDuration = 2 * time.Second

	// GoogleGeocodeURL is the default geocoding endpoint.
	GoogleGeocodeURL = "https://maps.googleapis.com/maps/api/geocode/json"
)

// Store is the part of the restaurant store the worker needs.
type Store interface {
	PendingGeocode(ctx context.Context, limit uint64) ([]models.Restaurant, error)
	SetCoordinates(ctx context.Context, id int64, pos models.Coordinates) error
	MarkGeocodeFailed(ctx context.Context, id int64) error
}

// ErrZeroResults means the geocoder knows no location for the address.
var ErrZeroResults = errors.New("no results found")

// Geocoder resolves a restaurant address through the Google geocoding API.
type Geocoder struct {
	endpoint string
	apiKey   string
	http     *http.Client
}

// NewGeocoder returns a Geocoder; an empty endpoint uses GoogleGeocodeURL.
func NewGeocoder(endpoint, apiKey string) *Geocoder {
	if endpoint == "" {
		endpoint = GoogleGeocodeURL
	}
	return &Geocoder{endpoint: endpoint, apiKey: apiKey, http: &http.Client{Timeout: 10 * time.Second}}
}

// Worker periodically resolves coordinates for restaurants imported without them.
type Worker struct {
	store    Store
	geocoder *Geocoder
}

func New(store Store, geocoder *Geocoder) *Worker {
	return &Worker{store: store, geocoder: geocoder}
}

// Start runs batches every IntervalDuration until ctx is cancelled.
func (w *Worker) Start(ctx context.Context) {
	log.Infof("starting geocoding worker (batch: %d, concurrency: %d, interval: %v)", BatchSize, WorkerPoolSize, IntervalDuration)
	ticker := time.NewTicker(IntervalDuration)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				log.Info("geocoding worker stopped")
				return
			case <-ticker.C:
				w.ProcessPending(ctx)
			}
		}
	}()
}

// ProcessPending geocodes one batch of pending restaurants and returns how many were resolved.
func (w *Worker) ProcessPending(ctx context.Context) int {
	pending, err := w.store.PendingGeocode(ctx, BatchSize)
	if err != nil {
		log.WithError(err).Error("worker query failed")
		return 0
	}

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		resolved int
	)
	semaphore := make(chan struct{}, WorkerPoolSize)

	for _, r := range pending {
		wg.Add(1)
		semaphore <- struct{}{}

		go func(r models.Restaurant) {
			defer wg.Done()
			defer func() { <-semaphore }()

			metrics.GeocodeInFlight.Inc()
			defer metrics.GeocodeInFlight.Dec()

			pos, err := w.geocoder.Lookup(ctx, r.Name, r.Address, r.City)
			if err != nil {
				log.WithError(err).WithField("id", r.ID).Warnf("geocoding failed for %s", r.Name)
				metrics.GeocodeTotal.WithLabelValues("failed").Inc()
				if errors.Is(err, ErrZeroResults) {
					if err := w.store.MarkGeocodeFailed(ctx, r.ID); err != nil {
						log.WithError(err).WithField("id", r.ID).Error("mark geocode failed")
					}
				}
				return
			}

			if err := w.store.SetCoordinates(ctx, r.ID, pos); err != nil {
				log.WithError(err).WithField("id", r.ID).Error("update restaurant failed")
				return
			}
			metrics.GeocodeTotal.WithLabelValues("resolved").Inc()
			log.Debugf("resolved %s (%v, %v)", r.Name, pos.Latitude, pos.Longitude)

			mu.Lock()
			resolved++
			mu.Unlock()
		}(r)
	}

	wg.Wait()
	return resolved
}

// Lookup returns the first geocoding result for the restaurant.
func (g *Geocoder) Lookup(ctx context.Context, name, address, city string) (models.Coordinates, error) {
	query := fmt.Sprintf("%s, %s", name, city)
	if address != "" {
		query = fmt.Sprintf("%s, %s, %s", name, address, city)
	}
	params := url.Values{"address": {query}, "key": {g.apiKey}}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return models.Coordinates{}, err
	}
	resp, err := g.http.Do(req)
	if err != nil {
		return models.Coordinates{}, err
	}
	defer resp.Body.Close()

	var result struct {
		Results []struct {
			Geometry struct {
				Location struct {
					Lat float64 `json:"lat"`
					Lng float64 `json:"lng"`
				} `json:"location"`
			} `json:"geometry"`
		} `json:"results"`
		Status string `json:"status"`
	}

	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return models.Coordinates{}, fmt.Errorf("decode geocoding response: %w", err)
	}

	if result.Status == "ZERO_RESULTS" {
		return models.Coordinates{}, ErrZeroResults
	}
	if result.Status != "OK" {
		return models.Coordinates{}, fmt.Errorf("API error: %s", result.Status)
	}
	if len(result.Results) == 0 {
		return models.Coordinates{}, ErrZeroResults
	}

	loc := result.Results[0].Geometry.Location
	return models.Coordinates{Latitude: loc.Lat, Longitude: loc.Lng}, nil
}

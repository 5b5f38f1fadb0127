package geo

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/apex/log"

	"platefinder/models"
)

// IPLocator resolves the caller's approximate position from an ip-api style endpoint.
type IPLocator struct {
	endpoint string
	http     *http.Client
}

// NewIPLocator builds a locator. A nil httpClient gets a 10s timeout.
func NewIPLocator(endpoint string, httpClient *http.Client) *IPLocator {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &IPLocator{endpoint: endpoint, http: httpClient}
}

// CurrentPosition asks the endpoint once. Every failure is reported as ErrDenied.
func (l *IPLocator) CurrentPosition(ctx context.Context) (models.Coordinates, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, l.endpoint, nil)
	if err != nil {
		return models.Coordinates{}, fmt.Errorf("%w: new request: %v", ErrDenied, err)
	}

	resp, err := l.http.Do(req)
	if err != nil {
		return models.Coordinates{}, fmt.Errorf("%w: %v", ErrDenied, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return models.Coordinates{}, fmt.Errorf("%w: unexpected status %s", ErrDenied, resp.Status)
	}

	var result struct {
		Status  string  `json:"status"`
		Message string  `json:"message"`
		Lat     float64 `json:"lat"`
		Lon     float64 `json:"lon"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return models.Coordinates{}, fmt.Errorf("%w: decode: %v", ErrDenied, err)
	}
	if result.Status != "success" {
		return models.Coordinates{}, fmt.Errorf("%w: %s", ErrDenied, result.Message)
	}

	log.WithField("lat", result.Lat).WithField("lon", result.Lon).Debug("ip locator resolved position")
	return models.Coordinates{Latitude: result.Lat, Longitude: result.Lon}, nil
}

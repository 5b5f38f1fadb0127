package geo

import (
	"context"
	"errors"
	"fmt"

	"platefinder/config"
	"platefinder/models"
)

var (
	// ErrDenied means the position could not be obtained: refused, unavailable or failed.
	ErrDenied = errors.New("geo: location denied")
	// ErrUnsupported means no location capability is configured.
	ErrUnsupported = errors.New("geo: location unsupported")
)

// Provider yields the device's current position, once per call.
type Provider interface {
	CurrentPosition(ctx context.Context) (models.Coordinates, error)
}

// Static always reports the same position.
type Static struct {
	Position models.Coordinates
}

func (s Static) CurrentPosition(ctx context.Context) (models.Coordinates, error) {
	if err := ctx.Err(); err != nil {
		return models.Coordinates{}, fmt.Errorf("%w: %v", ErrDenied, err)
	}
	return s.Position, nil
}

// Unsupported is used when no location source is available.
type Unsupported struct{}

func (Unsupported) CurrentPosition(context.Context) (models.Coordinates, error) {
	return models.Coordinates{}, ErrUnsupported
}

// New picks a provider from configuration. A static provider without both
// coordinates degrades to Unsupported.
func New(cfg config.LocationConfig) Provider {
	switch cfg.Provider {
	case config.LocationStatic:
		if cfg.Latitude == nil || cfg.Longitude == nil {
			return Unsupported{}
		}
		return Static{Position: models.Coordinates{Latitude: *cfg.Latitude, Longitude: *cfg.Longitude}}
	case config.LocationIP:
		if cfg.IPLocatorURL == "" {
			return Unsupported{}
		}
		return NewIPLocator(cfg.IPLocatorURL, nil)
	default:
		return Unsupported{}
	}
}

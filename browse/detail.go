package browse

import (
	"context"
	"errors"

	"github.com/apex/log"

	"platefinder/gateway"
	"platefinder/models"
)

// DetailFetcher fetches a single restaurant.
type DetailFetcher interface {
	GetRestaurant(ctx context.Context, id int64) (models.Restaurant, error)
}

// DetailView is either a restaurant or a user-facing error.
type DetailView struct {
	Restaurant *models.Restaurant
	Error      *models.Failure
}

// LoadDetail fetches restaurant id and converts failures into a message.
func LoadDetail(ctx context.Context, f DetailFetcher, id int64) DetailView {
	r, err := f.GetRestaurant(ctx, id)
	if err == nil {
		return DetailView{Restaurant: &r}
	}

	log.WithError(err).WithField("id", id).Warn("load restaurant detail failed")
	if errors.Is(err, gateway.ErrNotFound) {
		return DetailView{Error: &models.Failure{Kind: models.ServerFailure, Message: "Restaurant not found"}}
	}
	kind := models.ServerFailure
	var netErr *gateway.NetworkError
	if errors.As(err, &netErr) {
		kind = models.NetworkFailure
	}
	return DetailView{Error: &models.Failure{Kind: kind, Message: "Failed to load restaurant details. Please try again later."}}
}

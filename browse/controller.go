package browse

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/apex/log"

	"platefinder/gateway"
	"platefinder/geo"
	"platefinder/models"
)

// Gateway is the part of the directory client the controller needs.
type Gateway interface {
	ListRestaurants(ctx context.Context) ([]models.Restaurant, error)
	NearbyRestaurants(ctx context.Context, origin models.Coordinates, radiusKm float64) ([]models.Restaurant, error)
}

// Controller serialises every transition through Reduce and tags each
// retrieval with a token so that only the latest one is applied.
// All methods are safe for concurrent use; the retrieval methods block
// until their request settles and may be run on their own goroutines.
type Controller struct {
	gateway Gateway
	locator geo.Provider

	mu        sync.Mutex
	state     State
	lastToken uint64
	listeners []func(View)
}

// NewController returns a controller in the initial state.
func NewController(gw Gateway, locator geo.Provider) *Controller {
	return &Controller{
		gateway: gw,
		locator: locator,
		state:   Initial(),
	}
}

// OnChange registers fn to receive the view after every transition.
func (c *Controller) OnChange(fn func(View)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.listeners = append(c.listeners, fn)
}

// View returns the current derived view.
func (c *Controller) View() View {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Derive(c.state)
}

// LoadAll fetches the full listing.
func (c *Controller) LoadAll(ctx context.Context) {
	token := c.begin()
	prov := All()

	restaurants, err := c.gateway.ListRestaurants(ctx)
	if err != nil {
		log.WithError(err).Warn("load all restaurants failed")
		c.dispatch(RetrievalFailed{Token: token, Provenance: prov, Failure: fetchFailure("Failed to load restaurants", err)})
		return
	}
	c.dispatch(RetrievalSucceeded{Token: token, Provenance: prov, Restaurants: restaurants})
}

// LoadNearby locates the device and fetches restaurants within radiusKm.
// The nearby request supersedes an in-flight retrieval only once a position
// is known. If no position can be obtained the current result set, mode and
// any pending retrieval are kept. A retrieval started while locating wins
// over this one.
func (c *Controller) LoadNearby(ctx context.Context, radiusKm float64) {
	c.mu.Lock()
	issued := c.lastToken
	c.mu.Unlock()

	origin, err := c.locator.CurrentPosition(ctx)
	if err != nil {
		log.WithError(err).Warn("geolocation failed")
		c.dispatch(LocationFailed{Token: issued, Failure: locationFailure(err)})
		return
	}

	token, ok := c.beginAfter(issued)
	if !ok {
		log.Debug("nearby search superseded while locating")
		return
	}

	prov := Nearby(origin, radiusKm)
	restaurants, err := c.gateway.NearbyRestaurants(ctx, origin, radiusKm)
	if err != nil {
		log.WithError(err).Warn("load nearby restaurants failed")
		c.dispatch(RetrievalFailed{Token: token, Provenance: prov, Failure: fetchFailure("Failed to fetch nearby restaurants", err)})
		return
	}
	c.dispatch(RetrievalSucceeded{Token: token, Provenance: prov, Restaurants: restaurants})
}

// SetFilterText updates the query and returns to page 1.
func (c *Controller) SetFilterText(query string) {
	c.dispatch(FilterChanged{Query: query})
}

// GoToPage moves to page n, clamped to the filtered page range.
func (c *Controller) GoToPage(n int) {
	c.dispatch(PageRequested{Page: n})
}

// NextPage advances one page, stopping at the last.
func (c *Controller) NextPage() {
	c.update(func(s State) Event { return PageRequested{Page: s.Page + 1} })
}

// PrevPage goes back one page, stopping at the first.
func (c *Controller) PrevPage() {
	c.update(func(s State) Event { return PageRequested{Page: s.Page - 1} })
}

// begin issues a fresh token and records it as the current retrieval.
func (c *Controller) begin() uint64 {
	var token uint64
	c.update(func(State) Event {
		c.lastToken++
		token = c.lastToken
		return RetrievalStarted{Token: token}
	})
	return token
}

// beginAfter issues a fresh token unless another retrieval was issued since issued.
func (c *Controller) beginAfter(issued uint64) (uint64, bool) {
	var (
		token uint64
		ok    bool
	)
	c.update(func(State) Event {
		if c.lastToken != issued {
			return nil
		}
		c.lastToken++
		token, ok = c.lastToken, true
		return RetrievalStarted{Token: token}
	})
	return token, ok
}

func (c *Controller) dispatch(e Event) {
	c.update(func(State) Event { return e })
}

// update builds an event from the current state and applies it under one lock,
// then notifies listeners outside the lock. A nil event leaves the state alone.
func (c *Controller) update(next func(State) Event) {
	c.mu.Lock()
	e := next(c.state)
	if e == nil {
		c.mu.Unlock()
		return
	}
	c.state = Reduce(c.state, e)
	view := Derive(c.state)
	listeners := append([]func(View){}, c.listeners...)
	c.mu.Unlock()

	for _, fn := range listeners {
		fn(view)
	}
}

func fetchFailure(prefix string, err error) models.Failure {
	var statusErr *gateway.StatusError
	if errors.As(err, &statusErr) {
		return models.Failure{
			Kind:    models.ServerFailure,
			Message: fmt.Sprintf("%s: server responded with status %d", prefix, statusErr.StatusCode),
		}
	}
	var netErr *gateway.NetworkError
	if errors.As(err, &netErr) {
		return models.Failure{
			Kind:    models.NetworkFailure,
			Message: fmt.Sprintf("%s: network error: %v", prefix, netErr.Err),
		}
	}
	return models.Failure{
		Kind:    models.ServerFailure,
		Message: fmt.Sprintf("%s: %v", prefix, err),
	}
}

func locationFailure(err error) models.Failure {
	if errors.Is(err, geo.ErrUnsupported) {
		return models.Failure{Kind: models.LocationUnsupported, Message: "Geolocation is not supported on this device"}
	}
	return models.Failure{Kind: models.LocationDenied, Message: "Unable to retrieve your location"}
}

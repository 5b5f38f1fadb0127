package browse

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"platefinder/gateway"
	"platefinder/geo"
	"platefinder/models"
)

type fakeGateway struct {
	all    func(ctx context.Context) ([]models.Restaurant, error)
	nearby func(ctx context.Context, origin models.Coordinates, radiusKm float64) ([]models.Restaurant, error)
	detail func(ctx context.Context, id int64) (models.Restaurant, error)
}

func (f *fakeGateway) ListRestaurants(ctx context.Context) ([]models.Restaurant, error) {
	return f.all(ctx)
}

func (f *fakeGateway) NearbyRestaurants(ctx context.Context, origin models.Coordinates, radiusKm float64) ([]models.Restaurant, error) {
	return f.nearby(ctx, origin, radiusKm)
}

func (f *fakeGateway) GetRestaurant(ctx context.Context, id int64) (models.Restaurant, error) {
	return f.detail(ctx, id)
}

type locatorFunc func(ctx context.Context) (models.Coordinates, error)

func (f locatorFunc) CurrentPosition(ctx context.Context) (models.Coordinates, error) {
	return f(ctx)
}

var austin = models.Coordinates{Latitude: 30.2672, Longitude: -97.7431}

func restaurants(prefix string, n int) []models.Restaurant {
	out := make([]models.Restaurant, n)
	for i := range out {
		out[i] = models.Restaurant{
			ID:       int64(i + 1),
			Name:     fmt.Sprintf("%s %02d", prefix, i+1),
			City:     "Dallas",
			Cuisines: "Tex-Mex, BBQ",
		}
	}
	return out
}

func staticAll(rs []models.Restaurant) *fakeGateway {
	return &fakeGateway{
		all: func(context.Context) ([]models.Restaurant, error) { return rs, nil },
		nearby: func(context.Context, models.Coordinates, float64) ([]models.Restaurant, error) {
			return nil, errors.New("unexpected nearby call")
		},
	}
}

func TestFilterScenarioPizzaPalace(t *testing.T) {
	rs := restaurants("Diner", 11)
	rs = append(rs, models.Restaurant{ID: 99, Name: "Pizza Palace", City: "Austin", Cuisines: "Italian"})

	c := NewController(staticAll(rs), geo.Unsupported{})
	c.LoadAll(context.Background())
	c.SetFilterText("pizza")

	v := c.View()
	assert.Equal(t, 12, v.Total)
	assert.Equal(t, 1, v.FilteredCount)
	assert.Equal(t, 1, v.PageCount)
	require.Len(t, v.Restaurants, 1)
	assert.Equal(t, "Pizza Palace", v.Restaurants[0].Name)
}

func TestPaginationScenario(t *testing.T) {
	c := NewController(staticAll(restaurants("Diner", 25)), geo.Unsupported{})
	c.LoadAll(context.Background())

	v := c.View()
	assert.Equal(t, 3, v.PageCount)
	assert.Len(t, v.Restaurants, 10)
	assert.Equal(t, 1, v.First)
	assert.Equal(t, 10, v.Last)

	c.GoToPage(3)
	v = c.View()
	assert.Equal(t, 3, v.Page)
	require.Len(t, v.Restaurants, 5)
	assert.Equal(t, "Diner 21", v.Restaurants[0].Name)
	assert.Equal(t, 21, v.First)
	assert.Equal(t, 25, v.Last)
}

func TestGoToPageClamps(t *testing.T) {
	c := NewController(staticAll(restaurants("Diner", 25)), geo.Unsupported{})
	c.LoadAll(context.Background())

	c.GoToPage(3 + 5)
	assert.Equal(t, 3, c.View().Page)
	c.GoToPage(3 + 5)
	assert.Equal(t, 3, c.View().Page)

	c.GoToPage(0)
	assert.Equal(t, 1, c.View().Page)
	c.GoToPage(-4)
	assert.Equal(t, 1, c.View().Page)

	c.NextPage()
	c.NextPage()
	c.NextPage()
	assert.Equal(t, 3, c.View().Page)
	c.PrevPage()
	assert.Equal(t, 2, c.View().Page)
}

func TestFilterResetsPage(t *testing.T) {
	rs := restaurants("Diner", 25)
	rs[24].Name = "Noodle Bar"

	c := NewController(staticAll(rs), geo.Unsupported{})
	c.LoadAll(context.Background())
	c.GoToPage(3)
	require.Equal(t, 3, c.View().Page)

	c.SetFilterText("NOODLE")
	v := c.View()
	assert.Equal(t, 1, v.Page)
	assert.LessOrEqual(t, v.Page, v.PageCount)
	assert.Equal(t, 1, v.FilteredCount)
}

func TestEmptyFilterResult(t *testing.T) {
	c := NewController(staticAll(restaurants("Diner", 4)), geo.Unsupported{})
	c.LoadAll(context.Background())
	c.SetFilterText("sushi")

	v := c.View()
	assert.Equal(t, 1, v.PageCount)
	assert.Equal(t, 1, v.Page)
	assert.Empty(t, v.Restaurants)
	assert.Nil(t, v.Error)
	assert.Zero(t, v.First)
}

func TestFilterIsCaseInsensitiveSubsequence(t *testing.T) {
	rs := []models.Restaurant{
		{ID: 1, Name: "Green Curry House", City: "Austin", Cuisines: "Thai"},
		{ID: 2, Name: "Smoke Shack", City: "Houston", Cuisines: "BBQ, American"},
		{ID: 3, Name: "Bangkok Nights", City: "AUSTIN", Cuisines: "Thai, Asian"},
		{ID: 4, Name: "Casa Verde", City: "El Paso", Cuisines: "Mexican"},
	}

	for _, q := range []string{"", "thai", "austin", "AMERICAN", "casa", "zzz", "a"} {
		t.Run(q, func(t *testing.T) {
			got := Filter(rs, q)

			next := 0
			for _, r := range got {
				for next < len(rs) && rs[next].ID != r.ID {
					next++
				}
				require.Less(t, next, len(rs), "result is not a subsequence")
				next++

				lq := strings.ToLower(q)
				assert.True(t,
					strings.Contains(strings.ToLower(r.Name), lq) ||
						strings.Contains(strings.ToLower(r.City), lq) ||
						strings.Contains(strings.ToLower(r.Cuisines), lq))
			}
			if q == "" {
				assert.Equal(t, rs, got)
			}
		})
	}
	assert.Len(t, Filter(rs, "thai"), 2)
	assert.Len(t, Filter(rs, "austin"), 2)
}

func TestLocationDeniedKeepsResults(t *testing.T) {
	rs := restaurants("Diner", 12)
	locator := locatorFunc(func(context.Context) (models.Coordinates, error) {
		return models.Coordinates{}, fmt.Errorf("%w: user refused", geo.ErrDenied)
	})

	c := NewController(staticAll(rs), locator)
	c.LoadAll(context.Background())
	c.GoToPage(2)
	c.LoadNearby(context.Background(), NearbyRadiusKm)

	v := c.View()
	require.NotNil(t, v.LocationError)
	assert.Equal(t, models.LocationDenied, v.LocationError.Kind)
	assert.Equal(t, ModeAll, v.Mode)
	assert.Equal(t, 12, v.Total)
	assert.Equal(t, 2, v.Page)
	assert.False(t, v.Loading)
	assert.Nil(t, v.Error)
}

func TestLocationUnsupported(t *testing.T) {
	c := NewController(staticAll(restaurants("Diner", 3)), geo.Unsupported{})
	c.LoadAll(context.Background())
	c.LoadNearby(context.Background(), NearbyRadiusKm)

	v := c.View()
	require.NotNil(t, v.LocationError)
	assert.Equal(t, models.LocationUnsupported, v.LocationError.Kind)
	assert.Equal(t, 3, v.Total)
}

func TestModeSwitchNeverMixes(t *testing.T) {
	all := restaurants("All", 15)
	near := restaurants("Near", 4)

	gw := &fakeGateway{
		all: func(context.Context) ([]models.Restaurant, error) { return all, nil },
		nearby: func(_ context.Context, origin models.Coordinates, radiusKm float64) ([]models.Restaurant, error) {
			assert.Equal(t, austin, origin)
			assert.Equal(t, NearbyRadiusKm, radiusKm)
			return near, nil
		},
	}
	c := NewController(gw, geo.Static{Position: austin})

	c.LoadAll(context.Background())
	assert.Equal(t, ModeAll, c.View().Mode)
	assert.Equal(t, 15, c.View().Total)

	c.LoadNearby(context.Background(), NearbyRadiusKm)
	v := c.View()
	assert.Equal(t, ModeNearby, v.Mode)
	assert.Equal(t, austin, v.Origin)
	assert.Equal(t, 4, v.Total)
	for _, r := range v.Restaurants {
		assert.True(t, strings.HasPrefix(r.Name, "Near"))
	}

	c.LoadAll(context.Background())
	v = c.View()
	assert.Equal(t, ModeAll, v.Mode)
	assert.Equal(t, 15, v.Total)
	for _, r := range v.Restaurants {
		assert.True(t, strings.HasPrefix(r.Name, "All"))
	}
}

func TestStaleLoadAllIsDiscarded(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{})

	gw := &fakeGateway{
		all: func(context.Context) ([]models.Restaurant, error) {
			close(started)
			<-release
			return restaurants("All", 30), nil
		},
		nearby: func(context.Context, models.Coordinates, float64) ([]models.Restaurant, error) {
			return restaurants("Near", 2), nil
		},
	}
	c := NewController(gw, geo.Static{Position: austin})

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		c.LoadAll(context.Background())
	}()
	<-started

	c.LoadNearby(context.Background(), NearbyRadiusKm)
	require.Equal(t, ModeNearby, c.View().Mode)

	close(release)
	wg.Wait()

	v := c.View()
	assert.Equal(t, ModeNearby, v.Mode)
	assert.Equal(t, 2, v.Total)
	assert.False(t, v.Loading)
}

func TestLocationDeniedKeepsPendingLoadAll(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{})

	gw := &fakeGateway{
		all: func(context.Context) ([]models.Restaurant, error) {
			close(started)
			<-release
			return restaurants("All", 12), nil
		},
		nearby: func(context.Context, models.Coordinates, float64) ([]models.Restaurant, error) {
			t.Error("nearby fetched without a position")
			return nil, nil
		},
	}
	locator := locatorFunc(func(context.Context) (models.Coordinates, error) {
		return models.Coordinates{}, geo.ErrDenied
	})
	c := NewController(gw, locator)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		c.LoadAll(context.Background())
	}()
	<-started

	c.LoadNearby(context.Background(), NearbyRadiusKm)
	v := c.View()
	require.NotNil(t, v.LocationError)
	assert.True(t, v.Loading)

	close(release)
	wg.Wait()

	v = c.View()
	assert.Equal(t, ModeAll, v.Mode)
	assert.Equal(t, 12, v.Total)
	assert.False(t, v.Loading)
	require.NotNil(t, v.LocationError)
	assert.Equal(t, models.LocationDenied, v.LocationError.Kind)
}

func TestLoadAllWhileLocatingSupersedesNearby(t *testing.T) {
	located := make(chan struct{})
	locating := make(chan struct{})

	nearbyCalls := 0
	gw := &fakeGateway{
		all: func(context.Context) ([]models.Restaurant, error) {
			return restaurants("All", 4), nil
		},
		nearby: func(context.Context, models.Coordinates, float64) ([]models.Restaurant, error) {
			nearbyCalls++
			return restaurants("Near", 2), nil
		},
	}
	locator := locatorFunc(func(context.Context) (models.Coordinates, error) {
		close(locating)
		<-located
		return austin, nil
	})
	c := NewController(gw, locator)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		c.LoadNearby(context.Background(), NearbyRadiusKm)
	}()
	<-locating

	c.LoadAll(context.Background())
	close(located)
	wg.Wait()

	v := c.View()
	assert.Equal(t, ModeAll, v.Mode)
	assert.Equal(t, 4, v.Total)
	assert.False(t, v.Loading)
	assert.Zero(t, nearbyCalls)
}

func TestLoadAllFailureClearsResults(t *testing.T) {
	calls := 0
	gw := &fakeGateway{
		all: func(context.Context) ([]models.Restaurant, error) {
			calls++
			if calls == 1 {
				return restaurants("All", 5), nil
			}
			return nil, &gateway.StatusError{Op: "list restaurants", StatusCode: http.StatusServiceUnavailable, Status: "503 Service Unavailable"}
		},
	}
	c := NewController(gw, geo.Unsupported{})
	c.LoadAll(context.Background())
	require.Equal(t, 5, c.View().Total)

	c.LoadAll(context.Background())
	v := c.View()
	assert.Zero(t, v.Total)
	require.NotNil(t, v.Error)
	assert.Equal(t, models.ServerFailure, v.Error.Kind)
	assert.Contains(t, v.Error.Message, "503")
}

func TestLoadAllNetworkFailureMessage(t *testing.T) {
	gw := &fakeGateway{
		all: func(context.Context) ([]models.Restaurant, error) {
			return nil, &gateway.NetworkError{Op: "list restaurants", Err: errors.New("connection refused")}
		},
	}
	c := NewController(gw, geo.Unsupported{})
	c.LoadAll(context.Background())

	v := c.View()
	require.NotNil(t, v.Error)
	assert.Equal(t, models.NetworkFailure, v.Error.Kind)
	assert.Contains(t, v.Error.Message, "network error")
	assert.Contains(t, v.Error.Message, "connection refused")
}

func TestNearbyFetchFailureKeepsResults(t *testing.T) {
	gw := &fakeGateway{
		all: func(context.Context) ([]models.Restaurant, error) { return restaurants("All", 7), nil },
		nearby: func(context.Context, models.Coordinates, float64) ([]models.Restaurant, error) {
			return nil, &gateway.StatusError{StatusCode: http.StatusInternalServerError, Status: "500 Internal Server Error"}
		},
	}
	c := NewController(gw, geo.Static{Position: austin})
	c.LoadAll(context.Background())
	c.LoadNearby(context.Background(), NearbyRadiusKm)

	v := c.View()
	assert.Equal(t, ModeAll, v.Mode)
	assert.Equal(t, 7, v.Total)
	require.NotNil(t, v.Error)
	assert.Contains(t, v.Error.Message, "nearby")
}

func TestReduceIgnoresStaleTokens(t *testing.T) {
	s := Reduce(Initial(), RetrievalStarted{Token: 1})
	s = Reduce(s, RetrievalStarted{Token: 2})

	stale := Reduce(s, RetrievalSucceeded{Token: 1, Provenance: All(), Restaurants: restaurants("Old", 3)})
	assert.Equal(t, s, stale)

	stale = Reduce(s, LocationFailed{Token: 1, Failure: models.Failure{Kind: models.LocationDenied}})
	assert.Nil(t, stale.LocationError)

	fresh := Reduce(s, RetrievalSucceeded{Token: 2, Provenance: All(), Restaurants: restaurants("New", 3)})
	assert.Len(t, fresh.Restaurants, 3)
	assert.False(t, fresh.Loading)
}

func TestOnChangeReceivesViews(t *testing.T) {
	c := NewController(staticAll(restaurants("Diner", 3)), geo.Unsupported{})

	var loading []bool
	c.OnChange(func(v View) { loading = append(loading, v.Loading) })
	c.LoadAll(context.Background())

	assert.Equal(t, []bool{true, false}, loading)
}

func TestLoadDetail(t *testing.T) {
	gw := &fakeGateway{
		detail: func(_ context.Context, id int64) (models.Restaurant, error) {
			switch id {
			case 1:
				return models.Restaurant{ID: 1, Name: "Pizza Palace"}, nil
			case 2:
				return models.Restaurant{}, &gateway.StatusError{StatusCode: http.StatusNotFound, Status: "404 Not Found"}
			default:
				return models.Restaurant{}, &gateway.NetworkError{Op: "get restaurant", Err: errors.New("timeout")}
			}
		},
	}

	v := LoadDetail(context.Background(), gw, 1)
	require.NotNil(t, v.Restaurant)
	assert.Equal(t, "Pizza Palace", v.Restaurant.Name)

	v = LoadDetail(context.Background(), gw, 2)
	require.NotNil(t, v.Error)
	assert.Equal(t, "Restaurant not found", v.Error.Message)

	v = LoadDetail(context.Background(), gw, 3)
	require.NotNil(t, v.Error)
	assert.Equal(t, models.NetworkFailure, v.Error.Kind)
}

package browse

import (
	"fmt"
)

// Reduce applies e to s and returns the new state. It is pure: s is not modified.
//
// Retrieval results whose token differs from the state's current token are stale
// and leave the state unchanged. A failed full listing clears the result set; a
// failed nearby retrieval (either locating or fetching) leaves the result set and
// mode as they were. A location failure never ends a retrieval still in flight.
func Reduce(s State, e Event) State {
	switch e := e.(type) {
	case RetrievalStarted:
		s.token = e.Token
		s.Loading = true
		return s

	case RetrievalSucceeded:
		if e.Token != s.token {
			return s
		}
		s.Provenance = e.Provenance
		s.Restaurants = e.Restaurants
		s.Page = 1
		s.Loading = false
		s.Error = nil
		if e.Provenance.Mode == ModeNearby {
			s.LocationError = nil
		}
		return s

	case RetrievalFailed:
		if e.Token != s.token {
			return s
		}
		failure := e.Failure
		s.Loading = false
		s.Error = &failure
		if e.Provenance.Mode == ModeAll {
			s.Provenance = e.Provenance
			s.Restaurants = nil
			s.Page = 1
		}
		return s

	case LocationFailed:
		if e.Token != s.token {
			return s
		}
		failure := e.Failure
		s.LocationError = &failure
		return s

	case FilterChanged:
		s.Query = e.Query
		s.Page = 1
		return s

	case PageRequested:
		s.Page = clampPage(e.Page, pageCount(len(Filter(s.Restaurants, s.Query))))
		return s

	default:
		panic(fmt.Sprintf("browse: unhandled event %T", e))
	}
}

func clampPage(page, count int) int {
	if page > count {
		page = count
	}
	if page < 1 {
		page = 1
	}
	return page
}

func pageCount(filtered int) int {
	if filtered == 0 {
		return 1
	}
	return (filtered + PageSize - 1) / PageSize
}

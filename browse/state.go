// Package browse implements the restaurant result-set controller: one active
// collection (all or nearby), a free-text filter and pagination over it.
package browse

import (
	"platefinder/models"
)

// PageSize is the number of restaurants shown per page.
const PageSize = 10

// NearbyRadiusKm is the radius used by the "nearby" action.
const NearbyRadiusKm = 3.0

// Mode is the data source backing the result set.
type Mode int

const (
	ModeAll Mode = iota
	ModeNearby
)

func (m Mode) String() string {
	if m == ModeNearby {
		return "NEARBY"
	}
	return "ALL"
}

// Provenance records the query that produced a result set.
type Provenance struct {
	Mode     Mode
	Origin   models.Coordinates
	RadiusKm float64
}

// All is the provenance of the full listing.
func All() Provenance {
	return Provenance{Mode: ModeAll}
}

// Nearby is the provenance of a radius search around origin.
func Nearby(origin models.Coordinates, radiusKm float64) Provenance {
	return Provenance{Mode: ModeNearby, Origin: origin, RadiusKm: radiusKm}
}

// State is the full controller state. Restaurants is never mutated in place.
type State struct {
	Provenance    Provenance
	Restaurants   []models.Restaurant
	Query         string
	Page          int
	Loading       bool
	Error         *models.Failure
	LocationError *models.Failure

	// token identifies the latest retrieval; results carrying another token are stale.
	token uint64
}

// Initial is the state before the first retrieval.
func Initial() State {
	return State{Provenance: All(), Page: 1}
}

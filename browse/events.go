package browse

import (
	"platefinder/models"
)

// Event is a state transition input. The set is closed: see Reduce.
type Event interface {
	isEvent()
}

// RetrievalStarted marks a new retrieval as the current one.
type RetrievalStarted struct {
	Token uint64
}

// RetrievalSucceeded replaces the result set if Token is still current.
type RetrievalSucceeded struct {
	Token       uint64
	Provenance  Provenance
	Restaurants []models.Restaurant
}

// RetrievalFailed reports a gateway failure for Provenance.
type RetrievalFailed struct {
	Token      uint64
	Provenance Provenance
	Failure    models.Failure
}

// LocationFailed reports that no position could be obtained for a nearby retrieval.
type LocationFailed struct {
	Token   uint64
	Failure models.Failure
}

// FilterChanged sets the free-text query.
type FilterChanged struct {
	Query string
}

// PageRequested asks for page N; it is clamped.
type PageRequested struct {
	Page int
}

func (RetrievalStarted) isEvent()   {}
func (RetrievalSucceeded) isEvent() {}
func (RetrievalFailed) isEvent()    {}
func (LocationFailed) isEvent()     {}
func (FilterChanged) isEvent()      {}
func (PageRequested) isEvent()      {}

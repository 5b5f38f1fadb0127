package models

// Restaurant is a directory entry as served by the /restaurants/ endpoints.
// Values are never mutated after they are decoded; every fetch produces a fresh slice.
type Restaurant struct {
	ID              int64   `json:"id" db:"id"`
	Name            string  `json:"name" db:"name"`
	City            string  `json:"city" db:"city"`
	Cuisines        string  `json:"cuisines" db:"cuisines"`
	AggregateRating Rating  `json:"aggregate_rating" db:"aggregate_rating"`
	Votes           int     `json:"votes" db:"votes"`
	Address         string  `json:"address" db:"address"`
	Latitude        float64 `json:"-" db:"latitude"`
	Longitude       float64 `json:"-" db:"longitude"`
	GeoStatus       string  `json:"-" db:"geo_status"`
}

// Geo status values for restaurants imported with or without coordinates.
const (
	GeoStatusPending  = "PENDING"
	GeoStatusResolved = "RESOLVED"
	GeoStatusFailed   = "FAILED"
)

// Coordinates is a position in decimal degrees.
type Coordinates struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Classification is the payload of a successful classify-image call.
type Classification struct {
	Cuisine       string       `json:"cuisine"`
	DetectedLabel string       `json:"detected_label"`
	Restaurants   []Restaurant `json:"restaurants"`
}

// Preview is a renderable encoding of a selected file.
type Preview struct {
	MediaType string
	DataURL   string
	Width     int
	Height    int
}

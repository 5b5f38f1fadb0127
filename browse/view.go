package browse

import (
	"strings"

	"platefinder/models"
)

// View is the read-only projection consumed by presentation.
type View struct {
	Mode          Mode
	Origin        models.Coordinates
	RadiusKm      float64
	Query         string
	Page          int
	PageCount     int
	Total         int
	FilteredCount int
	// First and Last are 1-based positions of the visible items within the
	// filtered list; both are 0 when nothing is visible.
	First         int
	Last          int
	Restaurants   []models.Restaurant
	Loading       bool
	Error         *models.Failure
	LocationError *models.Failure
}

// Derive computes the view from s. It is recomputed on demand, never stored.
func Derive(s State) View {
	filtered := Filter(s.Restaurants, s.Query)
	count := pageCount(len(filtered))
	page := clampPage(s.Page, count)

	start := (page - 1) * PageSize
	end := start + PageSize
	if end > len(filtered) {
		end = len(filtered)
	}
	visible := filtered[start:end]

	v := View{
		Mode:          s.Provenance.Mode,
		Origin:        s.Provenance.Origin,
		RadiusKm:      s.Provenance.RadiusKm,
		Query:         s.Query,
		Page:          page,
		PageCount:     count,
		Total:         len(s.Restaurants),
		FilteredCount: len(filtered),
		Restaurants:   visible,
		Loading:       s.Loading,
		Error:         s.Error,
		LocationError: s.LocationError,
	}
	if len(visible) > 0 {
		v.First = start + 1
		v.Last = end
	}
	return v
}

// Filter returns the restaurants whose name, city or cuisines contain query,
// case-insensitively, in their original order. An empty query matches all.
func Filter(restaurants []models.Restaurant, query string) []models.Restaurant {
	if query == "" {
		return restaurants
	}
	needle := strings.ToLower(query)
	out := make([]models.Restaurant, 0, len(restaurants))
	for _, r := range restaurants {
		if strings.Contains(strings.ToLower(r.Name), needle) ||
			strings.Contains(strings.ToLower(r.City), needle) ||
			strings.Contains(strings.ToLower(r.Cuisines), needle) {
			out = append(out, r)
		}
	}
	return out
}

package console

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"platefinder/browse"
	"platefinder/models"
	"platefinder/upload"
)

// Ellipsis marks a gap in a page window.
const Ellipsis = 0

// PageWindow lists the page buttons to show: the first and last page, the
// pages adjacent to the current one, and Ellipsis where pages are skipped.
// A single page needs no controls and yields nil.
func PageWindow(page, count int) []int {
	if count <= 1 {
		return nil
	}
	out := []int{1}
	if page > 3 {
		out = append(out, Ellipsis)
	}
	for n := 2; n < count; n++ {
		if n >= page-1 && n <= page+1 {
			out = append(out, n)
		}
	}
	if page < count-2 {
		out = append(out, Ellipsis)
	}
	return append(out, count)
}

// RenderBrowse writes the result set view.
func RenderBrowse(w io.Writer, v browse.View) {
	switch v.Mode {
	case browse.ModeNearby:
		fmt.Fprintf(w, "Nearby restaurants within %g km of (%.4f, %.4f)\n", v.RadiusKm, v.Origin.Latitude, v.Origin.Longitude)
	default:
		fmt.Fprintln(w, "All restaurants")
	}
	if v.Query != "" {
		fmt.Fprintf(w, "Search: %q\n", v.Query)
	}
	if v.Loading {
		fmt.Fprintln(w, "Loading...")
	}
	if v.Error != nil {
		fmt.Fprintf(w, "Error: %s\n", v.Error.Message)
	}
	if v.LocationError != nil {
		fmt.Fprintf(w, "Location: %s\n", v.LocationError.Message)
	}

	if v.FilteredCount == 0 {
		if !v.Loading {
			fmt.Fprintln(w, "No restaurants found")
		}
		return
	}

	writeTable(w, v.Restaurants)
	fmt.Fprintf(w, "Showing %d-%d of %d restaurants\n", v.First, v.Last, v.FilteredCount)
	if window := PageWindow(v.Page, v.PageCount); window != nil {
		fmt.Fprintf(w, "Pages: %s\n", formatWindow(window, v.Page))
	}
}

// RenderDetail writes a single restaurant or the error that replaced it.
func RenderDetail(w io.Writer, d browse.DetailView) {
	if d.Error != nil {
		fmt.Fprintf(w, "Error: %s\n", d.Error.Message)
		return
	}
	if d.Restaurant == nil {
		fmt.Fprintln(w, "Error: Restaurant not found")
		return
	}
	r := d.Restaurant
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "Name\t%s\n", r.Name)
	fmt.Fprintf(tw, "Rating\t%s (%d votes)\n", r.AggregateRating, r.Votes)
	fmt.Fprintf(tw, "Location\t%s\n", r.City)
	fmt.Fprintf(tw, "Cuisines\t%s\n", r.Cuisines)
	fmt.Fprintf(tw, "Address\t%s\n", r.Address)
	tw.Flush()
}

// RenderUpload writes the selected file and the classification outcome.
func RenderUpload(w io.Writer, v upload.View) {
	if v.File == nil {
		fmt.Fprintln(w, "No file selected")
	} else {
		fmt.Fprintf(w, "File: %s", v.File.Name)
		if v.Preview != nil {
			fmt.Fprintf(w, " (%s, %dx%d preview)", v.Preview.MediaType, v.Preview.Width, v.Preview.Height)
		}
		fmt.Fprintln(w)
	}

	switch v.Outcome.Status {
	case upload.Loading:
		fmt.Fprintln(w, "Processing...")
	case upload.Failed:
		fmt.Fprintf(w, "Error: %s\n", v.Outcome.Failure.Message)
	case upload.Succeeded:
		res := v.Outcome.Result
		fmt.Fprintf(w, "Detected: %s\nCuisine: %s\n", res.DetectedLabel, res.Cuisine)
		if len(res.Restaurants) == 0 {
			fmt.Fprintln(w, "No restaurants found")
			return
		}
		fmt.Fprintf(w, "Matching restaurants (%d):\n", len(res.Restaurants))
		writeTable(w, res.Restaurants)
	}
}

func writeTable(w io.Writer, restaurants []models.Restaurant) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tCITY\tCUISINES\tRATING\tVOTES")
	for _, r := range restaurants {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%d\n", r.ID, r.Name, r.City, r.Cuisines, r.AggregateRating, r.Votes)
	}
	tw.Flush()
}

func formatWindow(window []int, current int) string {
	parts := make([]string, len(window))
	for i, n := range window {
		switch n {
		case Ellipsis:
			parts[i] = "..."
		case current:
			parts[i] = fmt.Sprintf("[%d]", n)
		default:
			parts[i] = fmt.Sprint(n)
		}
	}
	return strings.Join(parts, " ")
}

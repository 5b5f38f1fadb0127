// Package dataset imports the Zomato restaurant CSV export.
package dataset

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/apex/log"
	"golang.org/x/text/encoding/charmap"

	"platefinder/models"
)

// Columns the import reads; other columns in the export are ignored.
const (
	colID       = "Restaurant ID"
	colName     = "Restaurant Name"
	colCity     = "City"
	colAddress  = "Address"
	colLng      = "Longitude"
	colLat      = "Latitude"
	colCuisines = "Cuisines"
	colRating   = "Aggregate rating"
	colVotes    = "Votes"
)

var requiredColumns = []string{colID, colName, colCity, colAddress, colLng, colLat, colCuisines, colRating, colVotes}

// Upserter stores one restaurant, replacing any row with the same id.
type Upserter interface {
	Upsert(ctx context.Context, r models.Restaurant) error
}

// Read parses the export. Input that is not valid UTF-8 is decoded as Latin-1.
func Read(r io.Reader) ([]models.Restaurant, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	if !utf8.Valid(raw) {
		if raw, err = charmap.ISO8859_1.NewDecoder().Bytes(raw); err != nil {
			return nil, fmt.Errorf("decode latin-1: %w", err)
		}
	}
	raw = bytes.TrimPrefix(raw, []byte("\xef\xbb\xbf"))

	cr := csv.NewReader(bytes.NewReader(raw))
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	index := make(map[string]int, len(header))
	for i, name := range header {
		index[strings.TrimSpace(name)] = i
	}
	for _, name := range requiredColumns {
		if _, ok := index[name]; !ok {
			return nil, fmt.Errorf("missing column %q", name)
		}
	}

	var out []models.Restaurant
	for line := 2; ; line++ {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		field := func(name string) string {
			if i := index[name]; i < len(record) {
				return strings.TrimSpace(record[i])
			}
			return ""
		}

		res, err := parseRow(field)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		out = append(out, res)
	}
	return out, nil
}

func parseRow(field func(string) string) (models.Restaurant, error) {
	id, err := strconv.ParseInt(field(colID), 10, 64)
	if err != nil {
		return models.Restaurant{}, fmt.Errorf("invalid %s %q", colID, field(colID))
	}

	res := models.Restaurant{
		ID:        id,
		Name:      field(colName),
		City:      field(colCity),
		Address:   field(colAddress),
		Cuisines:  field(colCuisines),
		GeoStatus: models.GeoStatusPending,
	}

	if v := field(colVotes); v != "" {
		if res.Votes, err = strconv.Atoi(v); err != nil {
			return models.Restaurant{}, fmt.Errorf("invalid %s %q", colVotes, v)
		}
	}

	rating := field(colRating)
	if rating == "" {
		rating = "0"
	}
	if res.AggregateRating, err = models.NewRating(rating); err != nil {
		return models.Restaurant{}, err
	}

	lat, latErr := strconv.ParseFloat(field(colLat), 64)
	lng, lngErr := strconv.ParseFloat(field(colLng), 64)
	if latErr == nil && lngErr == nil && (lat != 0 || lng != 0) {
		res.Latitude, res.Longitude = lat, lng
		res.GeoStatus = models.GeoStatusResolved
	}
	return res, nil
}

// Load upserts every restaurant and returns how many were stored.
func Load(ctx context.Context, store Upserter, restaurants []models.Restaurant) (int, error) {
	for i, r := range restaurants {
		if err := store.Upsert(ctx, r); err != nil {
			return i, err
		}
		if (i+1)%1000 == 0 {
			log.Infof("imported %d/%d restaurants", i+1, len(restaurants))
		}
	}
	return len(restaurants), nil
}

package dataset

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"platefinder/models"
)

const sample = `Restaurant ID,Restaurant Name,Country Code,City,Address,Longitude,Latitude,Cuisines,Aggregate rating,Votes
6317637,Le Petit Souffle,162,Makati City,"Third Floor, Century City Mall",121.027535,14.565443,"French, Japanese, Desserts",4.8,314
18,Ghost Kitchen,1,Austin,,0,0,Pizza,,0
`

func TestRead(t *testing.T) {
	got, err := Read(strings.NewReader(sample))
	require.NoError(t, err)
	require.Len(t, got, 2)

	first := got[0]
	assert.Equal(t, int64(6317637), first.ID)
	assert.Equal(t, "Le Petit Souffle", first.Name)
	assert.Equal(t, "Third Floor, Century City Mall", first.Address)
	assert.Equal(t, "French, Japanese, Desserts", first.Cuisines)
	assert.Equal(t, "4.8", first.AggregateRating.String())
	assert.Equal(t, 314, first.Votes)
	assert.Equal(t, 14.565443, first.Latitude)
	assert.Equal(t, models.GeoStatusResolved, first.GeoStatus)

	// Zero coordinates mean the export has no location.
	assert.Equal(t, models.GeoStatusPending, got[1].GeoStatus)
	assert.Equal(t, "0", got[1].AggregateRating.String())
}

func TestReadLatin1(t *testing.T) {
	csv := "Restaurant ID,Restaurant Name,City,Address,Longitude,Latitude,Cuisines,Aggregate rating,Votes\n" +
		"1,Caf\xe9 Aurora,S\xe3o Paulo,Rua 1,-46.6,-23.5,Cafe,4.1,10\n"

	got, err := Read(strings.NewReader(csv))
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Café Aurora", got[0].Name)
	assert.Equal(t, "São Paulo", got[0].City)
}

func TestReadErrors(t *testing.T) {
	_, err := Read(strings.NewReader("Restaurant ID,Restaurant Name\n1,x\n"))
	assert.ErrorContains(t, err, "missing column")

	bad := "Restaurant ID,Restaurant Name,City,Address,Longitude,Latitude,Cuisines,Aggregate rating,Votes\nabc,x,y,z,0,0,Pizza,4,1\n"
	_, err = Read(strings.NewReader(bad))
	assert.ErrorContains(t, err, "line 2")
}

type recordingStore struct {
	ids  []int64
	fail int64
}

func (s *recordingStore) Upsert(ctx context.Context, r models.Restaurant) error {
	if r.ID == s.fail {
		return errors.New("constraint violation")
	}
	s.ids = append(s.ids, r.ID)
	return nil
}

func TestLoad(t *testing.T) {
	restaurants, err := Read(strings.NewReader(sample))
	require.NoError(t, err)

	store := &recordingStore{}
	n, err := Load(context.Background(), store, restaurants)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, []int64{6317637, 18}, store.ids)

	store = &recordingStore{fail: 18}
	n, err = Load(context.Background(), store, restaurants)
	assert.Error(t, err)
	assert.Equal(t, 1, n)
}

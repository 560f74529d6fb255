package geo

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDistance(t *testing.T) {
	// Nagoya Station to Nagoya Castle is roughly 2.6 km.
	d := Distance(35.170915, 136.881537, 35.185049, 136.899553)
	assert.InDelta(t, 2.2, d, 0.5)

	assert.Equal(t, 0.0, Distance(35.0, 136.0, 35.0, 136.0))
}

func writePOIFile(t *testing.T, pois []Location) string {
	t.Helper()

	data, err := json.Marshal(pois)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "poi.json")
	require.NoError(t, os.WriteFile(path, data, 0644))
	return path
}

func TestMapDataGeocodesAndFiltersPOIs(t *testing.T) {
	geocode := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "名古屋市中区", r.URL.Query().Get("q"))
		w.Write([]byte(`[{"geometry": {"coordinates": [136.9066, 35.1681]}}]`))
	}))
	defer geocode.Close()

	poiPath := writePOIFile(t, []Location{
		{Type: "shelter", Name: "近くの避難所", Lat: 35.17, Lng: 136.91},
		{Type: "supermarket", Name: "遠くのスーパー", Lat: 35.5, Lng: 137.5},
	})

	client := NewClient(ClientOptions{
		GeocodeEndpoint: geocode.URL,
		POIPath:         poiPath,
		SearchRadiusKM:  3,
	})

	data, err := client.MapData(context.Background(), "名古屋市中区")

	require.NoError(t, err)
	assert.Equal(t, "名古屋市中区", data.Address)
	// GeoJSON coordinates arrive [lng, lat].
	assert.Equal(t, 35.1681, data.Lat)
	assert.Equal(t, 136.9066, data.Lng)

	require.Len(t, data.Locations, 1)
	assert.Equal(t, "近くの避難所", data.Locations[0].Name)
}

func TestMapDataAddressNotFound(t *testing.T) {
	geocode := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[]`))
	}))
	defer geocode.Close()

	client := NewClient(ClientOptions{GeocodeEndpoint: geocode.URL})

	_, err := client.MapData(context.Background(), "存在しない住所")

	assert.ErrorIs(t, err, ErrAddressNotFound)
}

func TestMapDataIncludesHotels(t *testing.T) {
	geocode := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{"geometry": {"coordinates": [136.9, 35.17]}}]`))
	}))
	defer geocode.Close()

	hotels := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "app-id", q.Get("applicationId"))
		assert.Equal(t, "1", q.Get("datumType"))
		w.Write([]byte(`{
			"hotels": [
				{"hotel": [{"hotelBasicInfo": {
					"hotelName": "テルホテル",
					"latitude": 35.171,
					"longitude": 136.901,
					"hotelInformationUrl": "https://travel.example/hotel"
				}}]}
			]
		}`))
	}))
	defer hotels.Close()

	client := NewClient(ClientOptions{
		GeocodeEndpoint: geocode.URL,
		HotelEndpoint:   hotels.URL,
		ApplicationID:   "app-id",
		POIPath:         writePOIFile(t, nil),
	})

	data, err := client.MapData(context.Background(), "名古屋")

	require.NoError(t, err)
	require.Len(t, data.Locations, 1)
	assert.Equal(t, "hotel", data.Locations[0].Type)
	assert.Equal(t, "テルホテル", data.Locations[0].Name)
	assert.Equal(t, "https://travel.example/hotel", data.Locations[0].URL)
}

func TestMapDataHotelFailureDegrades(t *testing.T) {
	geocode := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{"geometry": {"coordinates": [136.9, 35.17]}}]`))
	}))
	defer geocode.Close()

	hotels := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer hotels.Close()

	client := NewClient(ClientOptions{
		GeocodeEndpoint: geocode.URL,
		HotelEndpoint:   hotels.URL,
		ApplicationID:   "app-id",
		POIPath: writePOIFile(t, []Location{
			{Type: "shelter", Name: "避難所", Lat: 35.17, Lng: 136.9},
		}),
	})

	data, err := client.MapData(context.Background(), "名古屋")

	// Hotel search failure never fails the map request.
	require.NoError(t, err)
	require.Len(t, data.Locations, 1)
	assert.Equal(t, "shelter", data.Locations[0].Type)
}

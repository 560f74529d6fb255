// Package geo resolves an address to coordinates and collects nearby
// evacuation-relevant locations: hotels from the Rakuten Travel API and
// shelters/supermarkets/offices from a bundled POI dataset.
package geo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"os"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/bousai-navi/backend/pkg/logger"
)

var ErrAddressNotFound = errors.New("address could not be resolved")

// Location is one map marker: a hotel or a local POI.
type Location struct {
	Type string  `json:"type"`
	Name string  `json:"name"`
	Lat  float64 `json:"lat"`
	Lng  float64 `json:"lng"`
	URL  string  `json:"url,omitempty"`
}

type MapData struct {
	Address   string     `json:"address"`
	Lat       float64    `json:"lat"`
	Lng       float64    `json:"lng"`
	Locations []Location `json:"locations"`
}

type Client struct {
	geocodeEndpoint string
	hotelEndpoint   string
	applicationID   string
	poiPath         string
	searchRadiusKM  float64
	httpClient      *http.Client
}

type ClientOptions struct {
	GeocodeEndpoint string
	HotelEndpoint   string
	ApplicationID   string
	POIPath         string
	SearchRadiusKM  float64
	TimeoutSec      int
}

func NewClient(opts ClientOptions) *Client {
	timeout := time.Duration(opts.TimeoutSec) * time.Second
	if timeout == 0 {
		timeout = 10 * time.Second
	}
	if opts.SearchRadiusKM == 0 {
		opts.SearchRadiusKM = 3
	}

	return &Client{
		geocodeEndpoint: opts.GeocodeEndpoint,
		hotelEndpoint:   opts.HotelEndpoint,
		applicationID:   opts.ApplicationID,
		poiPath:         opts.POIPath,
		searchRadiusKM:  opts.SearchRadiusKM,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// MapData geocodes the address and gathers nearby hotels and POIs
// concurrently. Hotel search failure degrades to no hotels; it never fails
// the map request.
func (c *Client) MapData(ctx context.Context, address string) (*MapData, error) {
	lat, lng, err := c.geocode(ctx, address)
	if err != nil {
		return nil, err
	}

	logger.Info("Address resolved",
		zap.String("address", address),
		zap.Float64("lat", lat),
		zap.Float64("lng", lng),
	)

	var hotels, pois []Location

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		hotels, err = c.searchHotels(gctx, lat, lng)
		if err != nil {
			logger.Warn("Hotel search failed", zap.Error(err))
			hotels = nil
		}
		return nil
	})
	g.Go(func() error {
		var err error
		pois, err = c.nearbyPOIs(lat, lng)
		if err != nil {
			logger.Warn("POI lookup failed", zap.Error(err))
			pois = nil
		}
		return nil
	})
	g.Wait()

	locations := make([]Location, 0, len(hotels)+len(pois))
	locations = append(locations, hotels...)
	locations = append(locations, pois...)

	logger.Info("Map data assembled",
		zap.Int("hotels", len(hotels)),
		zap.Int("pois", len(pois)),
	)

	return &MapData{
		Address:   address,
		Lat:       lat,
		Lng:       lng,
		Locations: locations,
	}, nil
}

func (c *Client) geocode(ctx context.Context, address string) (float64, float64, error) {
	endpoint := fmt.Sprintf("%s?q=%s", c.geocodeEndpoint, url.QueryEscape(address))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to create geocode request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, 0, fmt.Errorf("geocode request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, 0, fmt.Errorf("geocode service returned status %d", resp.StatusCode)
	}

	var results []struct {
		Geometry struct {
			// GeoJSON order: [longitude, latitude].
			Coordinates [2]float64 `json:"coordinates"`
		} `json:"geometry"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&results); err != nil {
		return 0, 0, fmt.Errorf("failed to decode geocode response: %w", err)
	}
	if len(results) == 0 {
		return 0, 0, ErrAddressNotFound
	}

	lng := results[0].Geometry.Coordinates[0]
	lat := results[0].Geometry.Coordinates[1]
	return lat, lng, nil
}

func (c *Client) searchHotels(ctx context.Context, lat, lng float64) ([]Location, error) {
	if c.applicationID == "" {
		return nil, nil
	}

	params := url.Values{}
	params.Set("applicationId", c.applicationID)
	params.Set("latitude", fmt.Sprintf("%f", lat))
	params.Set("longitude", fmt.Sprintf("%f", lng))
	params.Set("datumType", "1")
	params.Set("searchRadius", fmt.Sprintf("%g", c.searchRadiusKM))
	params.Set("format", "json")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		fmt.Sprintf("%s?%s", c.hotelEndpoint, params.Encode()), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create hotel request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("hotel search failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("hotel search returned status %d", resp.StatusCode)
	}

	var hotelResp struct {
		Hotels []struct {
			Hotel []struct {
				HotelBasicInfo struct {
					HotelName           string  `json:"hotelName"`
					Latitude            float64 `json:"latitude"`
					Longitude           float64 `json:"longitude"`
					HotelInformationURL string  `json:"hotelInformationUrl"`
				} `json:"hotelBasicInfo"`
			} `json:"hotel"`
		} `json:"hotels"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&hotelResp); err != nil {
		return nil, fmt.Errorf("failed to decode hotel response: %w", err)
	}

	locations := make([]Location, 0, len(hotelResp.Hotels))
	for _, h := range hotelResp.Hotels {
		if len(h.Hotel) == 0 {
			continue
		}
		info := h.Hotel[0].HotelBasicInfo
		locations = append(locations, Location{
			Type: "hotel",
			Name: info.HotelName,
			Lat:  info.Latitude,
			Lng:  info.Longitude,
			URL:  info.HotelInformationURL,
		})
	}

	return locations, nil
}

func (c *Client) nearbyPOIs(lat, lng float64) ([]Location, error) {
	data, err := os.ReadFile(c.poiPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read POI file: %w", err)
	}

	var pois []Location
	if err := json.Unmarshal(data, &pois); err != nil {
		return nil, fmt.Errorf("failed to parse POI file: %w", err)
	}

	nearby := make([]Location, 0)
	for _, poi := range pois {
		if Distance(lat, lng, poi.Lat, poi.Lng) <= c.searchRadiusKM {
			nearby = append(nearby, poi)
		}
	}

	return nearby, nil
}

// Distance returns the haversine great-circle distance in kilometers.
func Distance(lat1, lng1, lat2, lng2 float64) float64 {
	const earthRadiusKM = 6371

	dLat := (lat2 - lat1) * math.Pi / 180
	dLng := (lng2 - lng1) * math.Pi / 180

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1*math.Pi/180)*math.Cos(lat2*math.Pi/180)*
			math.Sin(dLng/2)*math.Sin(dLng/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadiusKM * c
}

package geo

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"time"

	"github.com/YelzhanWeb/takeaway/internal/adapter/logger"
	"github.com/YelzhanWeb/takeaway/internal/config"
	"github.com/YelzhanWeb/takeaway/internal/domain"
)

const earthRadiusMeters = 6371000

// Checker validates delivery addresses against the shop location using an
// external geocoding API.
type Checker struct {
	client      *http.Client
	endpoint    string
	apiKey      string
	shopAddress string
	maxDistance float64
	logger      logger.Logger
}

func NewChecker(cfg config.DeliveryConfig, lgr logger.Logger) *Checker {
	return &Checker{
		client:      &http.Client{Timeout: 5 * time.Second},
		endpoint:    cfg.GeocodeEndpoint,
		apiKey:      cfg.GeocodeKey,
		shopAddress: cfg.ShopAddress,
		maxDistance: float64(cfg.MaxDistanceMeter),
		logger:      lgr,
	}
}

type geocodeResponse struct {
	Status int `json:"status"`
	Result struct {
		Location struct {
			Lat float64 `json:"lat"`
			Lng float64 `json:"lng"`
		} `json:"location"`
	} `json:"result"`
}

func (c *Checker) CheckWithinRange(ctx context.Context, address string) error {
	shopLat, shopLng, err := c.geocode(ctx, c.shopAddress)
	if err != nil {
		return &domain.UpstreamError{Op: "geocode shop", Err: err}
	}
	userLat, userLng, err := c.geocode(ctx, address)
	if err != nil {
		return &domain.UpstreamError{Op: "geocode address", Err: err}
	}

	distance := haversine(shopLat, shopLng, userLat, userLng)
	if distance > c.maxDistance {
		c.logger.Debug("address_out_of_range", fmt.Sprintf("Address is %.0fm away, limit %.0fm", distance, c.maxDistance), "", nil)
		return domain.ErrAddressOutOfRange
	}
	return nil
}

func (c *Checker) geocode(ctx context.Context, address string) (lat, lng float64, err error) {
	q := url.Values{}
	q.Set("address", address)
	q.Set("output", "json")
	q.Set("ak", c.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint+"?"+q.Encode(), nil)
	if err != nil {
		return 0, 0, err
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return 0, 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, 0, fmt.Errorf("geocode API returned status %d", resp.StatusCode)
	}

	var parsed geocodeResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return 0, 0, fmt.Errorf("failed to decode geocode response: %w", err)
	}
	if parsed.Status != 0 {
		return 0, 0, fmt.Errorf("geocode API error status %d", parsed.Status)
	}

	return parsed.Result.Location.Lat, parsed.Result.Location.Lng, nil
}

// haversine returns the great-circle distance in meters.
func haversine(lat1, lng1, lat2, lng2 float64) float64 {
	toRad := func(deg float64) float64 { return deg * math.Pi / 180 }

	dLat := toRad(lat2 - lat1)
	dLng := toRad(lng2 - lng1)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRad(lat1))*math.Cos(toRad(lat2))*math.Sin(dLng/2)*math.Sin(dLng/2)
	return 2 * earthRadiusMeters * math.Asin(math.Sqrt(a))
}

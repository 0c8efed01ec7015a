// Package weather looks up current conditions for a location from the
// open-meteo forecast API, with an optional redis cache in front.
package weather

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

const DefaultURL = "https://api.open-meteo.com/v1/forecast"

// Report is the weather attached to a completed session.
type Report struct {
	TemperatureC int     `json:"temperature"`
	Condition    string  `json:"condition"`
	Humidity     float64 `json:"humidity"`
	WindSpeedKmh int     `json:"wind_speed"`
}

// Condition maps a WMO weather code to a coarse condition name.
func Condition(code int) string {
	switch {
	case code == 0:
		return "clear"
	case code <= 3:
		return "cloudy"
	case code <= 48:
		return "fog"
	case code <= 67:
		return "rain"
	case code <= 77:
		return "snow"
	case code <= 82:
		return "showers"
	case code <= 86:
		return "snow showers"
	case code <= 99:
		return "thunderstorm"
	default:
		return "unknown"
	}
}

type Client struct {
	baseURL    string
	httpClient *http.Client
	cache      *redis.Client
	cacheTTL   time.Duration

	// inflight collapses concurrent lookups for the same cache key.
	inflight singleflight.Group
}

// NewClient builds a client. cache may be nil.
func NewClient(baseURL string, cache *redis.Client, cacheTTL time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultURL
	}
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		cache:      cache,
		cacheTTL:   cacheTTL,
	}
}

type forecastResponse struct {
	Current struct {
		Temperature float64 `json:"temperature_2m"`
		Humidity    float64 `json:"relative_humidity_2m"`
		WindSpeed   float64 `json:"wind_speed_10m"`
		WeatherCode int     `json:"weather_code"`
	} `json:"current"`
}

// Current returns the current weather at lat, lng.
func (c *Client) Current(ctx context.Context, lat, lng float64) (Report, error) {
	key := cacheKey(lat, lng)
	if r, ok := c.cached(ctx, key); ok {
		return r, nil
	}
	v, err, _ := c.inflight.Do(key, func() (any, error) {
		r, err := c.fetch(ctx, lat, lng)
		if err != nil {
			return Report{}, err
		}
		c.store(ctx, key, r)
		return r, nil
	})
	if err != nil {
		return Report{}, err
	}
	return v.(Report), nil
}

func (c *Client) fetch(ctx context.Context, lat, lng float64) (Report, error) {
	q := url.Values{}
	q.Set("latitude", strconv.FormatFloat(lat, 'f', 4, 64))
	q.Set("longitude", strconv.FormatFloat(lng, 'f', 4, 64))
	q.Set("current", "temperature_2m,relative_humidity_2m,wind_speed_10m,weather_code")
	q.Set("timezone", "auto")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+q.Encode(), nil)
	if err != nil {
		return Report{}, fmt.Errorf("weather: create request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Report{}, fmt.Errorf("weather: send request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return Report{}, fmt.Errorf("weather: status %d: %s", resp.StatusCode, string(body))
	}

	var out forecastResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return Report{}, fmt.Errorf("weather: decode response: %w", err)
	}
	return Report{
		TemperatureC: int(math.Round(out.Current.Temperature)),
		Condition:    Condition(out.Current.WeatherCode),
		Humidity:     out.Current.Humidity,
		WindSpeedKmh: int(math.Round(out.Current.WindSpeed)),
	}, nil
}

// Lookup is Current without the error: failures are logged and yield nil.
func (c *Client) Lookup(ctx context.Context, lat, lng float64) *Report {
	r, err := c.Current(ctx, lat, lng)
	if err != nil {
		log.Printf("weather lookup failed: %v", err)
		return nil
	}
	return &r
}

// cacheKey rounds to two decimals so nearby lookups share an entry.
func cacheKey(lat, lng float64) string {
	return fmt.Sprintf("weather:%.2f:%.2f", lat, lng)
}

func (c *Client) cached(ctx context.Context, key string) (Report, bool) {
	if c.cache == nil {
		return Report{}, false
	}
	raw, err := c.cache.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			log.Printf("weather cache get error: %v", err)
		}
		return Report{}, false
	}
	var r Report
	if err := json.Unmarshal(raw, &r); err != nil {
		return Report{}, false
	}
	return r, true
}

func (c *Client) store(ctx context.Context, key string, r Report) {
	if c.cache == nil || c.cacheTTL <= 0 {
		return
	}
	raw, _ := json.Marshal(r)
	if err := c.cache.Set(ctx, key, raw, c.cacheTTL).Err(); err != nil {
		log.Printf("weather cache set error: %v", err)
	}
}

// Package weather wraps the OpenWeather 2.5 API and derives crop risks
// from current conditions and the short range forecast.
package weather

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/sony/gobreaker"

	"farmeasy/apperr"
)

const (
	DefaultBaseURL = "http://api.openweathermap.org/data/2.5"
	DefaultDays    = 5
	MaxDays        = 5
	slotsPerDay    = 8 // 3-hour forecast slots
)

// ErrNotConfigured is returned when no API key is set.
var ErrNotConfigured = errors.New("weather service not configured")

// UpstreamError reports a non-2xx answer from the provider.
type UpstreamError struct {
	Status int
}

func (e *UpstreamError) Error() string { return fmt.Sprintf("Weather API error: %d", e.Status) }

// Location is either a city name or a coordinate pair.
type Location struct {
	City string
	Lat  *float64
	Lon  *float64
}

func (l Location) validate() error {
	if strings.TrimSpace(l.City) != "" || (l.Lat != nil && l.Lon != nil) {
		return nil
	}
	return apperr.Validation("City or coordinates required", map[string]string{"city": "required unless lat and lon are given"})
}

func (l Location) query(v url.Values) {
	if strings.TrimSpace(l.City) != "" {
		v.Set("q", strings.TrimSpace(l.City))
		return
	}
	v.Set("lat", strconv.FormatFloat(*l.Lat, 'f', -1, 64))
	v.Set("lon", strconv.FormatFloat(*l.Lon, 'f', -1, 64))
}

type Config struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
	cb      *gobreaker.CircuitBreaker
	log     zerolog.Logger
}

func NewClient(cfg Config, log zerolog.Logger) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
		http:    &http.Client{Timeout: cfg.Timeout},
		cb: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:     "openweather",
			Timeout:  30 * time.Second,
			Interval: time.Minute,
			ReadyToTrip: func(c gobreaker.Counts) bool {
				return c.ConsecutiveFailures >= 5
			},
			// A 4xx is the caller's fault and must not trip the breaker.
			IsSuccessful: func(err error) bool {
				var up *UpstreamError
				if errors.As(err, &up) {
					return up.Status < 500
				}
				return err == nil
			},
		}),
		log: log.With().Str("component", "weather").Logger(),
	}
}

// Current returns the conditions right now at loc.
func (c *Client) Current(ctx context.Context, loc Location) (Current, error) {
	if err := loc.validate(); err != nil {
		return Current{}, err
	}
	var raw currentResponse
	if err := c.get(ctx, "/weather", loc, nil, &raw); err != nil {
		return Current{}, err
	}
	return raw.toCurrent(), nil
}

// Forecast returns 3-hourly entries for the next days (1..5).
func (c *Client) Forecast(ctx context.Context, loc Location, days int) (Forecast, error) {
	if err := loc.validate(); err != nil {
		return Forecast{}, err
	}
	if days <= 0 {
		days = DefaultDays
	}
	if days > MaxDays {
		days = MaxDays
	}
	extra := url.Values{}
	extra.Set("cnt", strconv.Itoa(days*slotsPerDay))

	var raw forecastResponse
	if err := c.get(ctx, "/forecast", loc, extra, &raw); err != nil {
		return Forecast{}, err
	}
	return raw.toForecast(), nil
}

func (c *Client) get(ctx context.Context, path string, loc Location, extra url.Values, out any) error {
	if c.apiKey == "" {
		return ErrNotConfigured
	}
	q := url.Values{}
	loc.query(q)
	q.Set("appid", c.apiKey)
	q.Set("units", "metric")
	for k, vs := range extra {
		for _, v := range vs {
			q.Add(k, v)
		}
	}
	endpoint := c.baseURL + path + "?" + q.Encode()

	_, err := c.cb.Execute(func() (any, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return nil, err
		}
		resp, err := c.http.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			return nil, &UpstreamError{Status: resp.StatusCode}
		}
		return nil, json.NewDecoder(resp.Body).Decode(out)
	})
	if err != nil {
		c.log.Warn().Err(err).Str("path", path).Msg("weather request failed")
		return err
	}
	return nil
}

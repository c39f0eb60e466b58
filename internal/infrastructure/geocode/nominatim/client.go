// Package nominatim resolves district names to coordinates through the
// Nominatim search API. Requests are rate limited to the configured
// minimum interval and wrapped with retry and a circuit breaker; a failed
// lookup degrades to "coordinates unavailable", it never aborts a batch.
package nominatim

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/hemoboard/hemoboard/internal/core/domain"
	"github.com/hemoboard/hemoboard/internal/infrastructure/resilience"
)

type Client struct {
	baseURL    string
	country    string
	userAgent  string
	httpClient *http.Client
	limiter    *rate.Limiter
	executor   *resilience.Executor
}

func New(baseURL, country, userAgent string, minInterval, timeout time.Duration, executor *resilience.Executor) *Client {
	if minInterval <= 0 {
		minInterval = 2 * time.Second
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	if userAgent == "" {
		userAgent = "hemoboard"
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		country:    country,
		userAgent:  userAgent,
		httpClient: &http.Client{Timeout: timeout},
		limiter:    rate.NewLimiter(rate.Every(minInterval), 1),
		executor:   executor,
	}
}

func (c *Client) Locate(ctx context.Context, district string) (domain.Coordinates, error) {
	var coords domain.Coordinates

	call := func(callCtx context.Context) error {
		if err := c.limiter.Wait(callCtx); err != nil {
			return err
		}
		found, err := c.search(callCtx, district)
		if err != nil {
			return err
		}
		coords = found
		return nil
	}

	var err error
	if c.executor != nil {
		err = c.executor.Execute(ctx, "nominatim.search", call, classifyGeocodeError)
	} else {
		err = call(ctx)
	}
	if err != nil {
		return domain.Coordinates{}, wrapTemporaryIfNeeded("geocode district", err)
	}
	return coords, nil
}

func (c *Client) search(ctx context.Context, district string) (domain.Coordinates, error) {
	query := district
	if c.country != "" {
		query += ", " + c.country
	}
	endpoint := fmt.Sprintf("%s/search?format=json&limit=1&q=%s", c.baseURL, url.QueryEscape(query))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return domain.Coordinates{}, fmt.Errorf("build geocode request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return domain.Coordinates{}, fmt.Errorf("geocode request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return domain.Coordinates{}, &HTTPStatusError{
			Operation:  "search",
			StatusCode: resp.StatusCode,
			Status:     resp.Status,
			Body:       string(body),
		}
	}

	// Nominatim encodes coordinates as strings.
	var results []struct {
		Lat string `json:"lat"`
		Lon string `json:"lon"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&results); err != nil {
		return domain.Coordinates{}, fmt.Errorf("parse geocode response: %w", err)
	}
	if len(results) == 0 {
		return domain.Coordinates{}, domain.WrapError(domain.ErrNotFound, "geocode district",
			fmt.Errorf("no match for %q", district))
	}

	lat, err := strconv.ParseFloat(results[0].Lat, 64)
	if err != nil {
		return domain.Coordinates{}, fmt.Errorf("parse latitude %q: %w", results[0].Lat, err)
	}
	lon, err := strconv.ParseFloat(results[0].Lon, 64)
	if err != nil {
		return domain.Coordinates{}, fmt.Errorf("parse longitude %q: %w", results[0].Lon, err)
	}
	return domain.Coordinates{Latitude: lat, Longitude: lon}, nil
}

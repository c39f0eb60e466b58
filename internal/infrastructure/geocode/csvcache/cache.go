// Package csvcache persists geocoded district coordinates in a small CSV
// file: read if it exists, merge on write, rewrite atomically. It is the
// file-backed memoization layer the dashboard originally shipped with; the
// Postgres repository is the alternative backend.
package csvcache

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"sync"

	"github.com/hemoboard/hemoboard/internal/core/domain"
)

var header = []string{"arrondissement_de_residence", "latitude", "longitude"}

type Cache struct {
	path string

	mu      sync.Mutex
	entries map[string]domain.Coordinates
	loaded  bool
}

func New(path string) *Cache {
	return &Cache{path: path}
}

func (c *Cache) Get(_ context.Context, district string) (domain.Coordinates, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.loadLocked(); err != nil {
		return domain.Coordinates{}, false, err
	}
	coords, ok := c.entries[district]
	return coords, ok, nil
}

func (c *Cache) Put(_ context.Context, district string, coords domain.Coordinates) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.loadLocked(); err != nil {
		return err
	}
	c.entries[district] = coords
	return c.rewriteLocked()
}

func (c *Cache) All(_ context.Context) (map[string]domain.Coordinates, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.loadLocked(); err != nil {
		return nil, err
	}
	out := make(map[string]domain.Coordinates, len(c.entries))
	for k, v := range c.entries {
		out[k] = v
	}
	return out, nil
}

func (c *Cache) loadLocked() error {
	if c.loaded {
		return nil
	}
	c.entries = make(map[string]domain.Coordinates)

	f, err := os.Open(c.path)
	if os.IsNotExist(err) {
		c.loaded = true
		return nil
	}
	if err != nil {
		return fmt.Errorf("open geocode cache: %w", err)
	}
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return fmt.Errorf("read geocode cache: %w", err)
	}
	for i, row := range rows {
		if i == 0 || len(row) < 3 {
			continue
		}
		lat, latErr := strconv.ParseFloat(row[1], 64)
		lon, lonErr := strconv.ParseFloat(row[2], 64)
		if latErr != nil || lonErr != nil {
			continue
		}
		c.entries[row[0]] = domain.Coordinates{Latitude: lat, Longitude: lon}
	}
	c.loaded = true
	return nil
}

// rewriteLocked writes the merged table to a temp file and renames it over
// the cache so readers never observe a partial file.
func (c *Cache) rewriteLocked() error {
	if dir := filepath.Dir(c.path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create cache dir: %w", err)
		}
	}

	tmp, err := os.CreateTemp(filepath.Dir(c.path), "geocode-*.csv")
	if err != nil {
		return fmt.Errorf("create temp cache: %w", err)
	}
	defer os.Remove(tmp.Name())

	w := csv.NewWriter(tmp)
	if err := w.Write(header); err != nil {
		tmp.Close()
		return fmt.Errorf("write cache header: %w", err)
	}

	districts := make([]string, 0, len(c.entries))
	for district := range c.entries {
		districts = append(districts, district)
	}
	sort.Strings(districts)
	for _, district := range districts {
		coords := c.entries[district]
		row := []string{
			district,
			strconv.FormatFloat(coords.Latitude, 'f', -1, 64),
			strconv.FormatFloat(coords.Longitude, 'f', -1, 64),
		}
		if err := w.Write(row); err != nil {
			tmp.Close()
			return fmt.Errorf("write cache row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		tmp.Close()
		return fmt.Errorf("flush cache: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp cache: %w", err)
	}
	if err := os.Rename(tmp.Name(), c.path); err != nil {
		return fmt.Errorf("replace cache file: %w", err)
	}
	return nil
}

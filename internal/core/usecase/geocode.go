package usecase

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/hemoboard/hemoboard/internal/core/domain"
	"github.com/hemoboard/hemoboard/internal/core/ports"
)

var errEmptyDistrict = errors.New("empty district")

// GeocodeUseCase is the worker-side half of the map: it resolves queued
// district names and persists the coordinates in the shared cache.
type GeocodeUseCase struct {
	cache    ports.GeocodeCache
	geocoder ports.Geocoder
	logger   *slog.Logger
}

func NewGeocodeUseCase(cache ports.GeocodeCache, geocoder ports.Geocoder, logger *slog.Logger) *GeocodeUseCase {
	if logger == nil {
		logger = slog.Default()
	}
	return &GeocodeUseCase{
		cache:    cache,
		geocoder: geocoder,
		logger:   logger,
	}
}

// Resolve looks up a district unless it is already cached. An unmatched
// district is logged and dropped; retrying it would give the same answer.
func (uc *GeocodeUseCase) Resolve(ctx context.Context, district string) error {
	district = strings.TrimSpace(district)
	if district == "" {
		return domain.WrapError(domain.ErrInvalidInput, "resolve district", errEmptyDistrict)
	}

	if _, ok, err := uc.cache.Get(ctx, district); err != nil {
		return err
	} else if ok {
		return nil
	}

	coords, err := uc.geocoder.Locate(ctx, district)
	if err != nil {
		if domain.IsKind(err, domain.ErrNotFound) {
			uc.logger.Warn("district_unresolved", "district", district)
			return nil
		}
		return err
	}

	if err := uc.cache.Put(ctx, district, coords); err != nil {
		return err
	}
	uc.logger.Info("district_geocoded",
		"district", district,
		"latitude", coords.Latitude,
		"longitude", coords.Longitude,
	)
	return nil
}

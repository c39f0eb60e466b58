package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/hemoboard/hemoboard/internal/core/domain"
)

func TestGeocodeResolveStoresCoordinates(t *testing.T) {
	cache := newFakeCache(nil)
	geocoder := &fakeGeocoder{coords: map[string]domain.Coordinates{
		"Douala 3": {Latitude: 4.02, Longitude: 9.73},
	}}
	uc := NewGeocodeUseCase(cache, geocoder, nil)

	if err := uc.Resolve(context.Background(), "Douala 3"); err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if _, ok := cache.puts["Douala 3"]; !ok {
		t.Fatalf("coordinates not stored: %+v", cache.puts)
	}
}

func TestGeocodeResolveSkipsCachedDistrict(t *testing.T) {
	cache := newFakeCache(map[string]domain.Coordinates{
		"Douala 1": {Latitude: 4.05, Longitude: 9.76},
	})
	geocoder := &fakeGeocoder{}
	uc := NewGeocodeUseCase(cache, geocoder, nil)

	if err := uc.Resolve(context.Background(), "Douala 1"); err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if geocoder.calls != 0 {
		t.Fatalf("geocoder should not be called for cached district")
	}
}

func TestGeocodeResolveDropsUnmatchedDistrict(t *testing.T) {
	cache := newFakeCache(nil)
	uc := NewGeocodeUseCase(cache, &fakeGeocoder{coords: map[string]domain.Coordinates{}}, nil)

	if err := uc.Resolve(context.Background(), "Nulle Part"); err != nil {
		t.Fatalf("unmatched district should not error, got %v", err)
	}
	if len(cache.puts) != 0 {
		t.Fatalf("nothing should be cached for unmatched district")
	}
}

func TestGeocodeResolvePropagatesTemporaryFailure(t *testing.T) {
	failure := domain.WrapError(domain.ErrTemporary, "geocode district", errors.New("timeout"))
	uc := NewGeocodeUseCase(newFakeCache(nil), &fakeGeocoder{err: failure}, nil)

	err := uc.Resolve(context.Background(), "Douala 2")
	if !domain.IsKind(err, domain.ErrTemporary) {
		t.Fatalf("expected temporary error, got %v", err)
	}
}

func TestGeocodeResolveRejectsEmptyDistrict(t *testing.T) {
	uc := NewGeocodeUseCase(newFakeCache(nil), &fakeGeocoder{}, nil)

	err := uc.Resolve(context.Background(), "  ")
	if !domain.IsKind(err, domain.ErrInvalidInput) {
		t.Fatalf("expected invalid input error, got %v", err)
	}
}

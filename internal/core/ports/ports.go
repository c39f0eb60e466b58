package ports

import (
	"context"
	"io"

	"gonum.org/v1/gonum/mat"

	"github.com/hemoboard/hemoboard/internal/core/domain"
)

// DonorSource exposes the immutable donor dataset loaded at startup.
// Implementations must return the same snapshot for the process lifetime;
// callers treat the slice as read-only.
type DonorSource interface {
	Donors(ctx context.Context) ([]domain.DonorRecord, error)
}

type GeocodeCache interface {
	Get(ctx context.Context, district string) (domain.Coordinates, bool, error)
	Put(ctx context.Context, district string, coords domain.Coordinates) error
	All(ctx context.Context) (map[string]domain.Coordinates, error)
}

// Geocoder resolves a canonical district name to coordinates. It is the
// pluggable resolve-miss side of the geocode cache.
type Geocoder interface {
	Locate(ctx context.Context, district string) (domain.Coordinates, error)
}

type DistrictQueue interface {
	PublishDistrictDiscovered(ctx context.Context, district string) error
	SubscribeDistrictDiscovered(ctx context.Context, handler func(context.Context, string) error) error
}

type Clusterer interface {
	Partition(m *mat.Dense) ([]int, error)
}

type EligibilityModel interface {
	Predict(row []float64) (label int, probability float64, err error)
	Importances() []float64
}

type SentimentScorer interface {
	Score(text string) domain.SentimentLabel
	TopTerms(texts []string, limit int) []domain.TermCount
}

type ReportStorage interface {
	Save(ctx context.Context, key string, data io.Reader) error
	Open(ctx context.Context, key string) (io.ReadCloser, error)
}

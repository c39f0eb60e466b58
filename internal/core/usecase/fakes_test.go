package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"gonum.org/v1/gonum/mat"

	"github.com/hemoboard/hemoboard/internal/core/domain"
)

type fakeSource struct {
	donors []domain.DonorRecord
	err    error
}

func (f *fakeSource) Donors(context.Context) ([]domain.DonorRecord, error) {
	return f.donors, f.err
}

type fakeClusterer struct {
	labels []int
	err    error
}

func (f *fakeClusterer) Partition(*mat.Dense) ([]int, error) {
	return f.labels, f.err
}

type fakeModel struct {
	label       int
	probability float64
	err         error
	importances []float64
	lastRow     []float64
}

func (f *fakeModel) Predict(row []float64) (int, float64, error) {
	f.lastRow = row
	return f.label, f.probability, f.err
}

func (f *fakeModel) Importances() []float64 {
	return f.importances
}

type fakeCache struct {
	entries map[string]domain.Coordinates
	puts    map[string]domain.Coordinates
	err     error
}

func newFakeCache(entries map[string]domain.Coordinates) *fakeCache {
	if entries == nil {
		entries = map[string]domain.Coordinates{}
	}
	return &fakeCache{entries: entries, puts: map[string]domain.Coordinates{}}
}

func (f *fakeCache) Get(_ context.Context, district string) (domain.Coordinates, bool, error) {
	coords, ok := f.entries[district]
	return coords, ok, f.err
}

func (f *fakeCache) Put(_ context.Context, district string, coords domain.Coordinates) error {
	if f.err != nil {
		return f.err
	}
	f.entries[district] = coords
	f.puts[district] = coords
	return nil
}

func (f *fakeCache) All(context.Context) (map[string]domain.Coordinates, error) {
	return f.entries, f.err
}

type fakeQueue struct {
	published []string
	err       error
}

func (f *fakeQueue) PublishDistrictDiscovered(_ context.Context, district string) error {
	if f.err != nil {
		return f.err
	}
	f.published = append(f.published, district)
	return nil
}

func (f *fakeQueue) SubscribeDistrictDiscovered(context.Context, func(context.Context, string) error) error {
	return nil
}

type fakeGeocoder struct {
	coords map[string]domain.Coordinates
	err    error
	calls  int
}

func (f *fakeGeocoder) Locate(_ context.Context, district string) (domain.Coordinates, error) {
	f.calls++
	if f.err != nil {
		return domain.Coordinates{}, f.err
	}
	coords, ok := f.coords[district]
	if !ok {
		return domain.Coordinates{}, domain.WrapError(domain.ErrNotFound, "geocode district", errors.New("no match"))
	}
	return coords, nil
}

type fakeScorer struct{}

func (fakeScorer) Score(text string) domain.SentimentLabel {
	switch {
	case strings.Contains(text, "merci"):
		return domain.SentimentPositive
	case strings.Contains(text, "mauvais"):
		return domain.SentimentNegative
	default:
		return domain.SentimentNeutral
	}
}

func (fakeScorer) TopTerms(texts []string, limit int) []domain.TermCount {
	if len(texts) == 0 {
		return nil
	}
	return []domain.TermCount{{Term: "don", Count: len(texts)}}
}

func donor(opts ...func(*domain.DonorRecord)) domain.DonorRecord {
	d := domain.DonorRecord{
		FormDate:       time.Date(2019, 7, 15, 0, 0, 0, 0, time.UTC),
		HasFormDate:    true,
		Age:            30,
		WeightKg:       70,
		HeightCm:       175,
		Hemoglobin:     13.5,
		Gender:         "homme",
		AlreadyDonated: "non",
		Education:      "secondaire",
		Eligibility:    domain.EligibilityEligible,
		District:       "Douala 1",
		Profession:     "Étudiant",
	}
	for _, opt := range opts {
		opt(&d)
	}
	return d
}

func ptr(v float64) *float64 { return &v }

package usecase

import (
	"context"
	"log/slog"
	"sort"
	"time"

	"github.com/hemoboard/hemoboard/internal/core/domain"
	"github.com/hemoboard/hemoboard/internal/core/ports"
	"github.com/hemoboard/hemoboard/internal/infrastructure/features"
)

type MapUseCase struct {
	source ports.DonorSource
	cache  ports.GeocodeCache
	queue  ports.DistrictQueue
	logger *slog.Logger
}

func NewMapUseCase(source ports.DonorSource, cache ports.GeocodeCache, queue ports.DistrictQueue, logger *slog.Logger) *MapUseCase {
	if logger == nil {
		logger = slog.Default()
	}
	return &MapUseCase{
		source: source,
		cache:  cache,
		queue:  queue,
		logger: logger,
	}
}

// Report aggregates candidates per district and joins the geocode cache.
// Districts without cached coordinates are reported as pending and handed
// to the worker queue; a queue outage degrades the report, never fails it.
func (uc *MapUseCase) Report(ctx context.Context, from, to time.Time) (*domain.MapReport, error) {
	donors, err := uc.source.Donors(ctx)
	if err != nil {
		return nil, err
	}
	rows := features.FilterByDate(donors, from, to)

	type acc struct {
		candidates int
		eligibles  int
		men        int
	}
	byDistrict := map[string]*acc{}
	report := &domain.MapReport{TotalDonors: len(rows)}
	var eligibles int

	for _, d := range rows {
		switch d.Gender {
		case "homme":
			report.Men++
		case "femme":
			report.Women++
		}
		if d.Eligible() {
			eligibles++
		}
		a := byDistrict[d.District]
		if a == nil {
			a = &acc{}
			byDistrict[d.District] = a
		}
		a.candidates++
		if d.Eligible() {
			a.eligibles++
		}
		if d.Gender == "homme" {
			a.men++
		}
	}
	report.EligibilityRate = percent(eligibles, len(rows))

	coords, err := uc.cache.All(ctx)
	if err != nil {
		return nil, err
	}

	districts := make([]string, 0, len(byDistrict))
	for district := range byDistrict {
		districts = append(districts, district)
	}
	sort.Strings(districts)

	for _, district := range districts {
		a := byDistrict[district]
		stats := domain.DistrictStats{
			District:        district,
			Candidates:      a.candidates,
			EligiblePercent: percent(a.eligibles, a.candidates),
			Men:             a.men,
		}
		if c, ok := coords[district]; ok {
			cc := c
			stats.Coordinates = &cc
		} else {
			report.PendingGeocoding = append(report.PendingGeocoding, district)
			uc.enqueueDistrict(ctx, district)
		}
		report.Districts = append(report.Districts, stats)
	}

	return report, nil
}

func (uc *MapUseCase) enqueueDistrict(ctx context.Context, district string) {
	if uc.queue == nil {
		return
	}
	if err := uc.queue.PublishDistrictDiscovered(ctx, district); err != nil {
		uc.logger.Warn("district_enqueue_failed", "district", district, "error", err)
	}
}

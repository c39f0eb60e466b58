package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/hemoboard/hemoboard/internal/core/domain"
	"github.com/hemoboard/hemoboard/internal/core/ports"
	"github.com/hemoboard/hemoboard/internal/infrastructure/features"
)

type ClusteringUseCase struct {
	source    ports.DonorSource
	clusterer ports.Clusterer
	k         int
	logger    *slog.Logger
}

func NewClusteringUseCase(source ports.DonorSource, clusterer ports.Clusterer, k int, logger *slog.Logger) *ClusteringUseCase {
	if k <= 0 {
		k = 3
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &ClusteringUseCase{
		source:    source,
		clusterer: clusterer,
		k:         k,
		logger:    logger,
	}
}

// Report segments the donors of the window into k profiles. Statistics are
// computed on the imputed, unstandardized values so the profile numbers
// stay in survey units.
func (uc *ClusteringUseCase) Report(ctx context.Context, from, to time.Time) (*domain.ClusteringReport, error) {
	donors, err := uc.source.Donors(ctx)
	if err != nil {
		return nil, err
	}

	batch := features.PrepareClustering(donors, from, to, uc.logger)
	if len(batch.Rows) < uc.k {
		return nil, domain.WrapError(domain.ErrInsufficientData, "cluster donors",
			fmt.Errorf("%d rows in window, need at least %d", len(batch.Rows), uc.k))
	}

	labels, err := uc.clusterer.Partition(batch.Standardized)
	if err != nil {
		return nil, err
	}

	profiles := buildProfiles(batch.Rows, labels, uc.k)
	// Descending mean hemoglobin; the head cluster drives the narrative.
	sort.SliceStable(profiles, func(i, j int) bool {
		return profiles[i].MeanHemoglobin > profiles[j].MeanHemoglobin
	})

	points := make([]domain.ClusterPoint, len(batch.Rows))
	for i, d := range batch.Rows {
		points[i] = domain.ClusterPoint{
			Age:        d.Age,
			Hemoglobin: d.Hemoglobin,
			Weight:     d.WeightKg,
			Height:     d.HeightCm,
			Gender:     d.Gender,
			Cluster:    labels[i],
		}
	}

	return &domain.ClusteringReport{
		K:            uc.k,
		Rows:         len(batch.Rows),
		Profiles:     profiles,
		IdealProfile: idealProfile(profiles),
		Assignments:  labels,
		Points:       points,
	}, nil
}

func buildProfiles(rows []domain.DonorRecord, labels []int, k int) []domain.ClusterProfile {
	type acc struct {
		size                   int
		age, weight, height    float64
		hemoglobin             float64
		men, women             int
		returning, firstTimers int
	}
	accs := make([]acc, k)
	for i, d := range rows {
		a := &accs[labels[i]]
		a.size++
		a.age += d.Age
		a.weight += d.WeightKg
		a.height += d.HeightCm
		a.hemoglobin += d.Hemoglobin
		if d.Gender == "femme" {
			a.women++
		} else {
			a.men++
		}
		if d.Returning() {
			a.returning++
		} else {
			a.firstTimers++
		}
	}

	profiles := make([]domain.ClusterProfile, 0, k)
	for c, a := range accs {
		if a.size == 0 {
			continue
		}
		n := float64(a.size)
		// A tied cluster reads as feminine and returning, matching the
		// rounding of the mean gender and donation codes.
		gender := "Homme"
		if a.women >= a.men {
			gender = "Femme"
		}
		donor := "Nouveau donneur"
		if a.returning >= a.firstTimers {
			donor = "Donneur fidèle"
		}
		profiles = append(profiles, domain.ClusterProfile{
			Cluster:        c,
			Size:           a.size,
			MeanAge:        a.age / n,
			MeanWeight:     a.weight / n,
			MeanHeight:     a.height / n,
			MeanHemoglobin: a.hemoglobin / n,
			DominantGender: gender,
			DominantDonor:  donor,
		})
	}
	return profiles
}

func idealProfile(profiles []domain.ClusterProfile) string {
	if len(profiles) == 0 {
		return ""
	}
	best := profiles[0]
	return fmt.Sprintf(
		"Le profil de donneur idéal correspond au cluster %d : âge moyen %.0f ans, poids moyen %.0f kg, taux d'hémoglobine moyen %.1f g/dl, majoritairement %s (%s).",
		best.Cluster, best.MeanAge, best.MeanWeight, best.MeanHemoglobin,
		lowerFirst(best.DominantGender), lowerFirst(best.DominantDonor),
	)
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	r := []rune(s)
	switch r[0] {
	case 'H':
		r[0] = 'h'
	case 'F':
		r[0] = 'f'
	case 'N':
		r[0] = 'n'
	case 'D':
		r[0] = 'd'
	}
	return string(r)
}

package usecase

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/hemoboard/hemoboard/internal/core/domain"
	"github.com/hemoboard/hemoboard/internal/core/ports"
	"github.com/hemoboard/hemoboard/internal/infrastructure/features"
)

const topProfessionLimit = 10

type CampaignUseCase struct {
	source ports.DonorSource
}

func NewCampaignUseCase(source ports.DonorSource) *CampaignUseCase {
	return &CampaignUseCase{source: source}
}

// Report measures campaign effectiveness month by month: volume,
// eligibility rate and the share of returning donors, plus the professions
// that supply the most candidates.
func (uc *CampaignUseCase) Report(ctx context.Context, from, to time.Time) (*domain.CampaignReport, error) {
	donors, err := uc.source.Donors(ctx)
	if err != nil {
		return nil, err
	}
	rows := features.FilterByDate(donors, from, to)

	type monthAcc struct {
		candidates int
		eligibles  int
		returning  int
	}
	byMonth := map[string]*monthAcc{}
	professions := map[string]int{}

	for _, d := range rows {
		if d.Profession != "" {
			professions[d.Profession]++
		}
		if !d.HasFormDate {
			continue
		}
		month := d.FormDate.Format("2006-01")
		acc := byMonth[month]
		if acc == nil {
			acc = &monthAcc{}
			byMonth[month] = acc
		}
		acc.candidates++
		if d.Eligible() {
			acc.eligibles++
		}
		if d.Returning() {
			acc.returning++
		}
	}

	months := make([]string, 0, len(byMonth))
	for month := range byMonth {
		months = append(months, month)
	}
	sort.Strings(months)

	report := &domain.CampaignReport{}
	bestIdx := -1
	for _, month := range months {
		acc := byMonth[month]
		report.Months = append(report.Months, domain.CampaignMonth{
			Month:           month,
			Candidates:      acc.candidates,
			EligibilityRate: percent(acc.eligibles, acc.candidates),
			ReturningShare:  percent(acc.returning, acc.candidates),
		})
		if bestIdx < 0 || acc.candidates > report.Months[bestIdx].Candidates {
			bestIdx = len(report.Months) - 1
		}
	}
	if bestIdx >= 0 {
		report.BestMonth = report.Months[bestIdx].Month
	}

	report.TopProfessions = topProfessions(professions, topProfessionLimit)
	report.Summary = campaignSummary(report, len(rows))
	return report, nil
}

func topProfessions(counts map[string]int, limit int) []domain.ReasonCount {
	out := make([]domain.ReasonCount, 0, len(counts))
	for profession, count := range counts {
		out = append(out, domain.ReasonCount{Reason: profession, Count: count})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Reason < out[j].Reason
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

func campaignSummary(r *domain.CampaignReport, total int) string {
	if total == 0 {
		return "Aucun candidat dans la période sélectionnée."
	}
	msg := fmt.Sprintf("%d candidats sur %d mois de campagne.", total, len(r.Months))
	if r.BestMonth != "" {
		msg += fmt.Sprintf(" Le mois le plus actif est %s.", r.BestMonth)
	}
	if len(r.TopProfessions) > 0 {
		msg += fmt.Sprintf(" La profession la plus représentée est %s (%d candidats).",
			r.TopProfessions[0].Reason, r.TopProfessions[0].Count)
	}
	return msg
}

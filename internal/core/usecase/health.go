package usecase

import (
	"context"
	"fmt"
	"sort"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/hemoboard/hemoboard/internal/core/domain"
	"github.com/hemoboard/hemoboard/internal/core/ports"
	"github.com/hemoboard/hemoboard/internal/infrastructure/features"
)

type HealthUseCase struct {
	source ports.DonorSource
	titler cases.Caser
}

func NewHealthUseCase(source ports.DonorSource) *HealthUseCase {
	return &HealthUseCase{
		source: source,
		titler: cases.Title(language.French),
	}
}

// Report aggregates eligibility outcomes and the survey reason flags that
// drove the non-eligible ones.
func (uc *HealthUseCase) Report(ctx context.Context, from, to time.Time) (*domain.HealthReport, error) {
	donors, err := uc.source.Donors(ctx)
	if err != nil {
		return nil, err
	}
	rows := features.FilterByDate(donors, from, to)

	statusCounts := map[domain.EligibilityStatus]int{}
	permanent := map[string]int{}
	temporary := map[string]int{}
	genderStatus := map[string]map[domain.EligibilityStatus]int{}
	genderTotals := map[string]int{}

	for _, d := range rows {
		statusCounts[d.Eligibility]++
		for reason, set := range d.PermanentReasons {
			if set {
				permanent[reason]++
			}
		}
		for reason, set := range d.TemporaryReasons {
			if set {
				temporary[reason]++
			}
		}
		if d.Gender != "" {
			if genderStatus[d.Gender] == nil {
				genderStatus[d.Gender] = map[domain.EligibilityStatus]int{}
			}
			genderStatus[d.Gender][d.Eligibility]++
			genderTotals[d.Gender]++
		}
	}

	total := len(rows)
	report := &domain.HealthReport{Total: total}

	for _, status := range []domain.EligibilityStatus{
		domain.EligibilityEligible,
		domain.EligibilityTemporary,
		domain.EligibilityPermanent,
		domain.EligibilityUnknown,
	} {
		count := statusCounts[status]
		if count == 0 {
			continue
		}
		report.StatusBreakdown = append(report.StatusBreakdown, domain.StatusCount{
			Status:  status,
			Count:   count,
			Percent: percent(count, total),
		})
	}

	report.PermanentReasons = uc.sortedReasons(permanent)
	report.TemporaryReasons = uc.sortedReasons(temporary)

	genders := make([]string, 0, len(genderStatus))
	for gender := range genderStatus {
		genders = append(genders, gender)
	}
	sort.Strings(genders)
	for _, gender := range genders {
		for _, status := range []domain.EligibilityStatus{
			domain.EligibilityEligible,
			domain.EligibilityTemporary,
			domain.EligibilityPermanent,
		} {
			count := genderStatus[gender][status]
			if count == 0 {
				continue
			}
			report.GenderImpact = append(report.GenderImpact, domain.GenderStatusShare{
				Gender:  uc.titler.String(gender),
				Status:  status,
				Count:   count,
				Percent: percent(count, genderTotals[gender]),
			})
		}
	}

	report.Interpretation = healthInterpretation(report)
	return report, nil
}

func (uc *HealthUseCase) sortedReasons(counts map[string]int) []domain.ReasonCount {
	out := make([]domain.ReasonCount, 0, len(counts))
	for reason, count := range counts {
		out = append(out, domain.ReasonCount{Reason: uc.titler.String(reason), Count: count})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Reason < out[j].Reason
	})
	return out
}

func healthInterpretation(r *domain.HealthReport) string {
	if r.Total == 0 {
		return "Aucun candidat dans la période sélectionnée."
	}
	var eligible float64
	for _, s := range r.StatusBreakdown {
		if s.Status == domain.EligibilityEligible {
			eligible = s.Percent
		}
	}
	msg := fmt.Sprintf("%.1f%% des %d candidats sont éligibles au don.", eligible, r.Total)
	if len(r.TemporaryReasons) > 0 {
		msg += fmt.Sprintf(" La première cause d'indisponibilité est « %s » (%d cas).",
			r.TemporaryReasons[0].Reason, r.TemporaryReasons[0].Count)
	}
	if len(r.PermanentReasons) > 0 {
		msg += fmt.Sprintf(" La première cause de non-éligibilité totale est « %s » (%d cas).",
			r.PermanentReasons[0].Reason, r.PermanentReasons[0].Count)
	}
	return msg
}

func percent(count, total int) float64 {
	if total == 0 {
		return 0
	}
	return 100 * float64(count) / float64(total)
}

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

const (
	retentionMinAge = 15
	retentionMaxAge = 80
)

// ageBins are the fixed fidelity brackets over the retained age window.
var ageBins = []struct {
	label    string
	min, max float64
}{
	{"15-25", 15, 25},
	{"26-35", 26, 35},
	{"36-45", 36, 45},
	{"46-55", 46, 55},
	{"56-65", 56, 65},
	{"66-80", 66, 80},
}

type RetentionUseCase struct {
	source ports.DonorSource
}

func NewRetentionUseCase(source ports.DonorSource) *RetentionUseCase {
	return &RetentionUseCase{source: source}
}

func (uc *RetentionUseCase) Report(ctx context.Context, from, to time.Time) (*domain.RetentionReport, error) {
	donors, err := uc.source.Donors(ctx)
	if err != nil {
		return nil, err
	}
	rows := retentionRows(features.FilterByDate(donors, from, to))

	report := &domain.RetentionReport{Total: len(rows)}

	monthly := map[string]*domain.MonthlyCount{}
	returningByGender := map[string]int{}
	fidelity := make([]domain.AgeBinFidelity, len(ageBins))
	for i := range ageBins {
		fidelity[i].AgeBin = ageBins[i].label
	}

	for _, d := range rows {
		switch d.Gender {
		case "homme":
			report.Men++
		case "femme":
			report.Women++
		}
		if d.Eligible() {
			report.Eligibles++
		}
		returning := d.Returning()
		if returning {
			report.Returning++
			returningByGender[d.Gender]++
		}

		if d.HasFormDate {
			month := d.FormDate.Format("2006-01")
			entry := monthly[month]
			if entry == nil {
				entry = &domain.MonthlyCount{Month: month}
				monthly[month] = entry
			}
			entry.Total++
			if d.Eligible() {
				entry.Eligibles++
			}
		}

		for i, bin := range ageBins {
			if d.Age >= bin.min && d.Age <= bin.max {
				if returning {
					fidelity[i].Returning++
				} else {
					fidelity[i].NonReturning++
				}
				break
			}
		}
	}

	months := make([]string, 0, len(monthly))
	for month := range monthly {
		months = append(months, month)
	}
	sort.Strings(months)
	for _, month := range months {
		report.Monthly = append(report.Monthly, *monthly[month])
	}

	genders := make([]string, 0, len(returningByGender))
	for gender := range returningByGender {
		genders = append(genders, gender)
	}
	sort.Strings(genders)
	for _, gender := range genders {
		report.ByGender = append(report.ByGender, domain.ReasonCount{
			Reason: gender,
			Count:  returningByGender[gender],
		})
	}

	report.Fidelity = fidelity
	report.Summary = retentionSummary(report)
	return report, nil
}

// retentionRows keeps candidates aged 15 to 80; rows without a usable age
// carry no retention signal and are dropped with the out-of-range ones.
func retentionRows(rows []domain.DonorRecord) []domain.DonorRecord {
	out := make([]domain.DonorRecord, 0, len(rows))
	for _, d := range rows {
		if domain.Missing(d.Age) || d.Age < retentionMinAge || d.Age > retentionMaxAge {
			continue
		}
		out = append(out, d)
	}
	return out
}

func retentionSummary(r *domain.RetentionReport) string {
	if r.Total == 0 {
		return "Aucun candidat dans la période sélectionnée."
	}
	msg := fmt.Sprintf("%d candidats, dont %.1f%% de donneurs revenants.",
		r.Total, percent(r.Returning, r.Total))

	best := -1
	for i, bin := range r.Fidelity {
		if bin.Returning == 0 {
			continue
		}
		if best < 0 || bin.Returning > r.Fidelity[best].Returning {
			best = i
		}
	}
	if best >= 0 {
		msg += fmt.Sprintf(" La tranche d'âge la plus fidèle est %s ans (%d revenants).",
			r.Fidelity[best].AgeBin, r.Fidelity[best].Returning)
	}
	return msg
}

package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/hemoboard/hemoboard/internal/core/domain"
)

func TestCampaignReportPicksBusiestMonth(t *testing.T) {
	august := time.Date(2019, 8, 10, 0, 0, 0, 0, time.UTC)
	donors := []domain.DonorRecord{
		donor(),
		donor(func(d *domain.DonorRecord) { d.FormDate = august; d.AlreadyDonated = "oui" }),
		donor(func(d *domain.DonorRecord) {
			d.FormDate = august
			d.Eligibility = domain.EligibilityTemporary
			d.Profession = "Commerçant"
		}),
	}
	uc := NewCampaignUseCase(&fakeSource{donors: donors})

	report, err := uc.Report(context.Background(), time.Time{}, time.Time{})
	if err != nil {
		t.Fatalf("Report() error = %v", err)
	}
	if len(report.Months) != 2 {
		t.Fatalf("expected 2 months, got %+v", report.Months)
	}
	if report.BestMonth != "2019-08" {
		t.Fatalf("BestMonth = %q, want 2019-08", report.BestMonth)
	}

	var aug domain.CampaignMonth
	for _, m := range report.Months {
		if m.Month == "2019-08" {
			aug = m
		}
	}
	if aug.Candidates != 2 || aug.EligibilityRate != 50 || aug.ReturningShare != 50 {
		t.Fatalf("august stats = %+v", aug)
	}

	if len(report.TopProfessions) != 2 {
		t.Fatalf("TopProfessions = %+v", report.TopProfessions)
	}
	if report.TopProfessions[0].Reason != "Étudiant" || report.TopProfessions[0].Count != 2 {
		t.Fatalf("TopProfessions[0] = %+v", report.TopProfessions[0])
	}
}

func TestCampaignReportEmptyWindow(t *testing.T) {
	uc := NewCampaignUseCase(&fakeSource{})

	report, err := uc.Report(context.Background(), time.Time{}, time.Time{})
	if err != nil {
		t.Fatalf("Report() error = %v", err)
	}
	if len(report.Months) != 0 || report.BestMonth != "" {
		t.Fatalf("expected empty report, got %+v", report)
	}
	if report.Summary != "Aucun candidat dans la période sélectionnée." {
		t.Fatalf("Summary = %q", report.Summary)
	}
}

package usecase

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/hemoboard/hemoboard/internal/core/domain"
)

type fakeStorage struct {
	saved map[string][]byte
	err   error
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{saved: map[string][]byte{}}
}

func (f *fakeStorage) Save(_ context.Context, key string, data io.Reader) error {
	if f.err != nil {
		return f.err
	}
	b, err := io.ReadAll(data)
	if err != nil {
		return err
	}
	f.saved[key] = b
	return nil
}

func (f *fakeStorage) Open(_ context.Context, key string) (io.ReadCloser, error) {
	return io.NopCloser(bytes.NewReader(f.saved[key])), nil
}

func newExportUseCase(source *fakeSource, storage *fakeStorage) *ExportUseCase {
	clusterUC := NewClusteringUseCase(source, &fakeClusterer{labels: []int{0, 1, 2, 0, 1, 2}}, 3, nil)
	uc := NewExportUseCase(
		clusterUC,
		NewHealthUseCase(source),
		NewRetentionUseCase(source),
		NewCampaignUseCase(source),
		NewSentimentUseCase(source, fakeScorer{}),
		storage,
	)
	uc.now = func() time.Time {
		return time.Date(2026, 8, 24, 10, 30, 0, 0, time.UTC)
	}
	return uc
}

func exportDonors() []domain.DonorRecord {
	return []domain.DonorRecord{
		donor(),
		donor(func(d *domain.DonorRecord) { d.Gender = "femme"; d.Feedback = "merci" }),
		donor(func(d *domain.DonorRecord) { d.Eligibility = domain.EligibilityTemporary }),
		donor(func(d *domain.DonorRecord) { d.AlreadyDonated = "oui" }),
		donor(func(d *domain.DonorRecord) { d.Age = 45 }),
		donor(func(d *domain.DonorRecord) { d.Profession = "Militaire" }),
	}
}

func TestExportWritesWorkbook(t *testing.T) {
	storage := newFakeStorage()
	uc := newExportUseCase(&fakeSource{donors: exportDonors()}, storage)

	key, buf, err := uc.Export(context.Background(), time.Time{}, time.Time{})
	if err != nil {
		t.Fatalf("Export() error = %v", err)
	}
	if key != "rapport-don-sang-20260824-103000.xlsx" {
		t.Fatalf("key = %q", key)
	}
	if _, ok := storage.saved[key]; !ok {
		t.Fatalf("workbook not archived under %q", key)
	}

	wb, err := excelize.OpenReader(bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatalf("reopen workbook: %v", err)
	}
	defer wb.Close()

	sheets := strings.Join(wb.GetSheetList(), ",")
	for _, want := range []string{"Profils donneurs", "Conditions de sante", "Fidelisation", "Campagnes", "Retours donneurs"} {
		if !strings.Contains(sheets, want) {
			t.Fatalf("missing sheet %q in %q", want, sheets)
		}
	}
}

func TestExportDropsClusteringSheetOnSmallWindow(t *testing.T) {
	// Two rows cannot be segmented into three clusters; the workbook still
	// carries the remaining reports.
	storage := newFakeStorage()
	uc := newExportUseCase(&fakeSource{donors: exportDonors()[:2]}, storage)

	_, buf, err := uc.Export(context.Background(), time.Time{}, time.Time{})
	if err != nil {
		t.Fatalf("Export() error = %v", err)
	}

	wb, err := excelize.OpenReader(bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatalf("reopen workbook: %v", err)
	}
	defer wb.Close()

	for _, sheet := range wb.GetSheetList() {
		if sheet == "Profils donneurs" {
			t.Fatalf("clustering sheet should be absent: %v", wb.GetSheetList())
		}
	}
}

func TestExportWithoutStorageStillReturnsBytes(t *testing.T) {
	clusterSource := &fakeSource{donors: exportDonors()}
	clusterUC := NewClusteringUseCase(clusterSource, &fakeClusterer{labels: []int{0, 1, 2, 0, 1, 2}}, 3, nil)
	uc := NewExportUseCase(
		clusterUC,
		NewHealthUseCase(clusterSource),
		NewRetentionUseCase(clusterSource),
		NewCampaignUseCase(clusterSource),
		NewSentimentUseCase(clusterSource, fakeScorer{}),
		nil,
	)

	_, buf, err := uc.Export(context.Background(), time.Time{}, time.Time{})
	if err != nil {
		t.Fatalf("Export() error = %v", err)
	}
	if buf.Len() == 0 {
		t.Fatal("expected workbook bytes")
	}
}

package dataset

import (
	"context"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/hemoboard/hemoboard/internal/core/domain"
)

const sampleHeader = "Date de remplissage de la fiche;Age;Poids;Taille;Taux d’hémoglobine(g/dl);Genre;A-t-il (elle) déjà donné le sang;Niveau d'étude;ÉLIGIBILITÉ AU DON.;Arrondissement de résidence;Profession;Raison de non-eligibilité totale  [Porteur(HIV,hbs,hcv)];Raison indisponibilité  [Taux d’hémoglobine bas];Si autres raison préciser"

func writeSample(t *testing.T, rows ...string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "donors.csv")
	content := sampleHeader + "\n" + strings.Join(rows, "\n") + "\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write sample: %v", err)
	}
	return path
}

func newTestLoader(t *testing.T, path string) *Loader {
	t.Helper()
	canon, err := NewCanonicalizer()
	if err != nil {
		t.Fatalf("NewCanonicalizer() error = %v", err)
	}
	return NewLoader(path, ';', canon, nil)
}

func TestLoadParsesRow(t *testing.T) {
	path := writeSample(t,
		"2019-07-15;28;72,5;176;13,2;Homme;Oui;Universitaire;Éligible;Douala;Étudiant;Non;Non;",
	)
	records, err := newTestLoader(t, path).Load(context.Background())
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}

	rec := records[0]
	if !rec.HasFormDate || rec.FormDate.Year() != 2019 {
		t.Fatalf("form date = %+v", rec.FormDate)
	}
	if rec.Age != 28 || rec.WeightKg != 72.5 || rec.Hemoglobin != 13.2 {
		t.Fatalf("numerics = %+v", rec)
	}
	if rec.Gender != "homme" || rec.AlreadyDonated != "oui" || rec.Education != "universitaire" {
		t.Fatalf("categoricals = %+v", rec)
	}
	if rec.Eligibility != domain.EligibilityEligible {
		t.Fatalf("eligibility = %q", rec.Eligibility)
	}
	if rec.District != "Douala 1" || rec.Profession != "Étudiant" {
		t.Fatalf("canonical fields = %q / %q", rec.District, rec.Profession)
	}
	if rec.PermanentReasons["porteur(hiv,hbs,hcv)"] {
		t.Fatalf("reason flag should be false: %+v", rec.PermanentReasons)
	}
}

func TestLoadKeepsMissingNumericsAsNaN(t *testing.T) {
	path := writeSample(t,
		"2019-07-15;;70;175;abc;Femme;Non;Secondaire;Temporairement Non-eligible;Douala 3;;Non;Oui;fatiguée",
	)
	records, err := newTestLoader(t, path).Load(context.Background())
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	rec := records[0]
	if !math.IsNaN(rec.Age) || !math.IsNaN(rec.Hemoglobin) {
		t.Fatalf("missing numerics should be NaN: %+v", rec)
	}
	if rec.Eligibility != domain.EligibilityTemporary {
		t.Fatalf("eligibility = %q", rec.Eligibility)
	}
	if !rec.TemporaryReasons["taux d'hemoglobine bas"] {
		t.Fatalf("temporary reason not set: %+v", rec.TemporaryReasons)
	}
	if rec.Profession != "Autres" {
		t.Fatalf("empty profession should default, got %q", rec.Profession)
	}
	if rec.Feedback != "fatiguée" {
		t.Fatalf("feedback = %q", rec.Feedback)
	}
}

func TestLoadRejectsMissingColumns(t *testing.T) {
	path := filepath.Join(t.TempDir(), "donors.csv")
	if err := os.WriteFile(path, []byte("Age;Poids\n30;70\n"), 0o644); err != nil {
		t.Fatalf("write sample: %v", err)
	}

	_, err := newTestLoader(t, path).Load(context.Background())
	if !domain.IsKind(err, domain.ErrSchemaMismatch) {
		t.Fatalf("expected schema mismatch, got %v", err)
	}
	if !strings.Contains(err.Error(), "taux_d'hemoglobine(g/dl)") {
		t.Fatalf("error should name missing columns: %v", err)
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := newTestLoader(t, filepath.Join(t.TempDir(), "absent.csv")).Load(context.Background())
	if !domain.IsKind(err, domain.ErrDatasetUnavailable) {
		t.Fatalf("expected dataset unavailable, got %v", err)
	}
}

// Package dataset loads the semicolon-delimited donor survey into memory.
// All column and value lookups go through the shared normalizers so the
// accent and apostrophe variants of the source headers cannot silently
// drop rows between pipeline stages.
package dataset

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/hemoboard/hemoboard/internal/core/domain"
)

const (
	colFormDate    = "date_de_remplissage_de_la_fiche"
	colAge         = "age"
	colWeight      = "poids"
	colHeight      = "taille"
	colHemoglobin  = "taux_d'hemoglobine(g/dl)"
	colGender      = "genre"
	colDonated     = "a-t-il_(elle)_deja_donne_le_sang"
	colEducation   = "niveau_d'etude"
	colEligibility = "eligibilite_au_don."
	colDistrict    = "arrondissement_de_residence"
	colProfession  = "profession"
	colFeedback    = "si_autres_raison_preciser"

	prefixPermanentReason = "raison_de_non-eligibilite_totale__["
	prefixTemporaryReason = "raison_indisponibilite__["
	prefixWomanReason     = "raison_de_l'indisponibilite_de_la_femme_["
)

var requiredColumns = []string{
	colFormDate, colAge, colWeight, colHeight, colHemoglobin,
	colGender, colDonated, colEligibility,
}

var dateLayouts = []string{"2006-01-02", "2006/01/02", "02/01/2006", "02-01-2006", time.RFC3339}

type Loader struct {
	path      string
	delimiter rune
	canon     *Canonicalizer
	logger    *slog.Logger
}

func NewLoader(path string, delimiter rune, canon *Canonicalizer, logger *slog.Logger) *Loader {
	if delimiter == 0 {
		delimiter = ';'
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{path: path, delimiter: delimiter, canon: canon, logger: logger}
}

func (l *Loader) Load(ctx context.Context) ([]domain.DonorRecord, error) {
	f, err := os.Open(l.path)
	if err != nil {
		return nil, domain.WrapError(domain.ErrDatasetUnavailable, "open dataset", err)
	}
	defer f.Close()

	records, err := l.parse(ctx, f)
	if err != nil {
		return nil, err
	}
	l.logger.Info("dataset_loaded", "path", l.path, "rows", len(records))
	return records, nil
}

func (l *Loader) parse(ctx context.Context, r io.Reader) ([]domain.DonorRecord, error) {
	reader := csv.NewReader(r)
	reader.Comma = l.delimiter
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	header, err := reader.Read()
	if err != nil {
		return nil, domain.WrapError(domain.ErrDatasetUnavailable, "read dataset header", err)
	}

	columns := make(map[string]int, len(header))
	for i, name := range header {
		columns[NormalizeColumn(name)] = i
	}
	if missing := missingColumns(columns); len(missing) > 0 {
		return nil, domain.WrapError(domain.ErrSchemaMismatch, "validate dataset header",
			fmt.Errorf("missing columns: %s", strings.Join(missing, ", ")))
	}

	permanentReasons := reasonColumns(header, prefixPermanentReason)
	temporaryReasons := reasonColumns(header, prefixTemporaryReason)
	womanReasons := reasonColumns(header, prefixWomanReason)

	var records []domain.DonorRecord
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, domain.WrapError(domain.ErrDatasetUnavailable, "read dataset row", err)
		}
		records = append(records, l.parseRow(row, columns, permanentReasons, temporaryReasons, womanReasons))
	}
	return records, nil
}

func (l *Loader) parseRow(
	row []string,
	columns map[string]int,
	permanent, temporary, woman map[string]int,
) domain.DonorRecord {
	cell := func(name string) string {
		i, ok := columns[name]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	rec := domain.DonorRecord{
		Age:            parseNumeric(cell(colAge)),
		WeightKg:       parseNumeric(cell(colWeight)),
		HeightCm:       parseNumeric(cell(colHeight)),
		Hemoglobin:     parseNumeric(cell(colHemoglobin)),
		Gender:         NormalizeValue(cell(colGender)),
		AlreadyDonated: NormalizeValue(cell(colDonated)),
		Education:      NormalizeValue(cell(colEducation)),
		Eligibility:    parseEligibility(cell(colEligibility)),
		Feedback:       feedbackCell(row, columns),
	}
	if l.canon != nil {
		rec.District = l.canon.District(cell(colDistrict))
		rec.Profession = l.canon.Profession(cell(colProfession))
	} else {
		rec.District = cell(colDistrict)
		rec.Profession = cell(colProfession)
	}
	if t, ok := parseDate(cell(colFormDate)); ok {
		rec.FormDate = t
		rec.HasFormDate = true
	}

	rec.PermanentReasons = reasonFlags(row, permanent)
	rec.TemporaryReasons = reasonFlags(row, temporary)
	for label, set := range reasonFlags(row, woman) {
		rec.TemporaryReasons[label] = set
	}
	return rec
}

// feedbackCell tolerates both spellings of the free-text column seen in
// the survey exports (with and without the trailing underscore).
func feedbackCell(row []string, columns map[string]int) string {
	for _, name := range []string{colFeedback, colFeedback + "_"} {
		if i, ok := columns[name]; ok && i < len(row) {
			return strings.TrimSpace(row[i])
		}
	}
	return ""
}

func missingColumns(columns map[string]int) []string {
	var missing []string
	for _, name := range requiredColumns {
		if _, ok := columns[name]; !ok {
			missing = append(missing, name)
		}
	}
	return missing
}

// reasonColumns collects survey columns matching a normalized prefix and
// keys them by the label inside the brackets.
func reasonColumns(header []string, prefix string) map[string]int {
	out := make(map[string]int)
	for i, name := range header {
		normalized := NormalizeColumn(name)
		if !strings.HasPrefix(normalized, prefix) {
			continue
		}
		label := normalized[strings.LastIndex(normalized, "[")+1:]
		label = strings.TrimSuffix(label, "]")
		// Column normalization replaced the label's spaces with underscores;
		// restore them so reports show readable reason names.
		label = strings.ReplaceAll(label, "_", " ")
		if label != "" {
			out[label] = i
		}
	}
	return out
}

func reasonFlags(row []string, columns map[string]int) map[string]bool {
	out := make(map[string]bool, len(columns))
	for label, i := range columns {
		if i < len(row) {
			out[label] = NormalizeValue(row[i]) == "oui"
		}
	}
	return out
}

// parseNumeric returns NaN for empty or unparseable cells; imputation
// happens later, over the filtered batch. Decimal commas are accepted.
func parseNumeric(cell string) float64 {
	if cell == "" {
		return math.NaN()
	}
	v, err := strconv.ParseFloat(strings.ReplaceAll(cell, ",", "."), 64)
	if err != nil {
		return math.NaN()
	}
	return v
}

func parseDate(cell string) (time.Time, bool) {
	if cell == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, cell); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func parseEligibility(cell string) domain.EligibilityStatus {
	v := NormalizeValue(cell)
	switch {
	case v == "eligible":
		return domain.EligibilityEligible
	case strings.Contains(v, "temporaire"):
		return domain.EligibilityTemporary
	case strings.Contains(v, "definitiv"):
		return domain.EligibilityPermanent
	default:
		return domain.EligibilityUnknown
	}
}

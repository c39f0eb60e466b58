// Package export renders the analytics reports into a single XLSX
// workbook, one sheet per report, for offline use by campaign staff.
package export

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/hemoboard/hemoboard/internal/core/domain"
)

type Workbook struct {
	Clustering *domain.ClusteringReport
	Health     *domain.HealthReport
	Retention  *domain.RetentionReport
	Campaign   *domain.CampaignReport
	Sentiment  *domain.SentimentReport
}

// Render produces the workbook bytes. Sheets for nil reports are skipped
// so a partially degraded service still exports what it has.
func Render(wb Workbook) (*bytes.Buffer, error) {
	f := excelize.NewFile()
	defer f.Close()

	first := true
	addSheet := func(name string, rows [][]interface{}) error {
		if first {
			if err := f.SetSheetName("Sheet1", name); err != nil {
				return fmt.Errorf("rename sheet %s: %w", name, err)
			}
			first = false
		} else {
			if _, err := f.NewSheet(name); err != nil {
				return fmt.Errorf("create sheet %s: %w", name, err)
			}
		}
		for i, row := range rows {
			cell, err := excelize.CoordinatesToCellName(1, i+1)
			if err != nil {
				return fmt.Errorf("cell name: %w", err)
			}
			if err := f.SetSheetRow(name, cell, &row); err != nil {
				return fmt.Errorf("write row %d of %s: %w", i+1, name, err)
			}
		}
		return nil
	}

	if wb.Clustering != nil {
		if err := addSheet("Profils donneurs", clusteringRows(wb.Clustering)); err != nil {
			return nil, err
		}
	}
	if wb.Health != nil {
		if err := addSheet("Conditions de sante", healthRows(wb.Health)); err != nil {
			return nil, err
		}
	}
	if wb.Retention != nil {
		if err := addSheet("Fidelisation", retentionRows(wb.Retention)); err != nil {
			return nil, err
		}
	}
	if wb.Campaign != nil {
		if err := addSheet("Campagnes", campaignRows(wb.Campaign)); err != nil {
			return nil, err
		}
	}
	if wb.Sentiment != nil {
		if err := addSheet("Retours donneurs", sentimentRows(wb.Sentiment)); err != nil {
			return nil, err
		}
	}
	if first {
		return nil, fmt.Errorf("no reports to export")
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("serialize workbook: %w", err)
	}
	return buf, nil
}

func clusteringRows(r *domain.ClusteringReport) [][]interface{} {
	rows := [][]interface{}{
		{"Cluster", "Effectif", "Age moyen", "Poids moyen", "Taille moyenne", "Hb moyenne", "Genre dominant", "Historique de don"},
	}
	for _, p := range r.Profiles {
		rows = append(rows, []interface{}{
			p.Cluster, p.Size, p.MeanAge, p.MeanWeight, p.MeanHeight, p.MeanHemoglobin, p.DominantGender, p.DominantDonor,
		})
	}
	rows = append(rows, []interface{}{})
	rows = append(rows, []interface{}{"Profil ideal", r.IdealProfile})
	return rows
}

func healthRows(r *domain.HealthReport) [][]interface{} {
	rows := [][]interface{}{
		{"Statut", "Effectif", "Pourcentage"},
	}
	for _, s := range r.StatusBreakdown {
		rows = append(rows, []interface{}{string(s.Status), s.Count, s.Percent})
	}
	rows = append(rows, []interface{}{})
	rows = append(rows, []interface{}{"Raison d'ineligibilite totale", "Effectif"})
	for _, reason := range r.PermanentReasons {
		rows = append(rows, []interface{}{reason.Reason, reason.Count})
	}
	rows = append(rows, []interface{}{})
	rows = append(rows, []interface{}{"Raison d'indisponibilite", "Effectif"})
	for _, reason := range r.TemporaryReasons {
		rows = append(rows, []interface{}{reason.Reason, reason.Count})
	}
	return rows
}

func retentionRows(r *domain.RetentionReport) [][]interface{} {
	rows := [][]interface{}{
		{"Mois", "Candidats", "Eligibles"},
	}
	for _, m := range r.Monthly {
		rows = append(rows, []interface{}{m.Month, m.Total, m.Eligibles})
	}
	rows = append(rows, []interface{}{})
	rows = append(rows, []interface{}{"Tranche d'age", "Revenants", "Nouveaux"})
	for _, bin := range r.Fidelity {
		rows = append(rows, []interface{}{bin.AgeBin, bin.Returning, bin.NonReturning})
	}
	return rows
}

func campaignRows(r *domain.CampaignReport) [][]interface{} {
	rows := [][]interface{}{
		{"Mois", "Candidats", "Taux d'eligibilite", "Part de revenants"},
	}
	for _, m := range r.Months {
		rows = append(rows, []interface{}{m.Month, m.Candidates, m.EligibilityRate, m.ReturningShare})
	}
	rows = append(rows, []interface{}{})
	rows = append(rows, []interface{}{"Profession", "Candidats"})
	for _, p := range r.TopProfessions {
		rows = append(rows, []interface{}{p.Reason, p.Count})
	}
	rows = append(rows, []interface{}{})
	rows = append(rows, []interface{}{"Meilleur mois", r.BestMonth})
	return rows
}

func sentimentRows(r *domain.SentimentReport) [][]interface{} {
	rows := [][]interface{}{
		{"Sentiment", "Effectif"},
	}
	for _, label := range []domain.SentimentLabel{domain.SentimentPositive, domain.SentimentNeutral, domain.SentimentNegative} {
		rows = append(rows, []interface{}{string(label), r.Global[label]})
	}
	rows = append(rows, []interface{}{})
	rows = append(rows, []interface{}{"Terme", "Occurrences"})
	for _, term := range r.TopTerms {
		rows = append(rows, []interface{}{term.Term, term.Count})
	}
	return rows
}

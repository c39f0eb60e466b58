package usecase

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/hemoboard/hemoboard/internal/core/domain"
	"github.com/hemoboard/hemoboard/internal/core/ports"
	"github.com/hemoboard/hemoboard/internal/infrastructure/export"
)

type ExportUseCase struct {
	clustering *ClusteringUseCase
	health     *HealthUseCase
	retention  *RetentionUseCase
	campaign   *CampaignUseCase
	sentiment  *SentimentUseCase
	storage    ports.ReportStorage
	now        func() time.Time
}

func NewExportUseCase(
	clustering *ClusteringUseCase,
	health *HealthUseCase,
	retention *RetentionUseCase,
	campaign *CampaignUseCase,
	sentiment *SentimentUseCase,
	storage ports.ReportStorage,
) *ExportUseCase {
	return &ExportUseCase{
		clustering: clustering,
		health:     health,
		retention:  retention,
		campaign:   campaign,
		sentiment:  sentiment,
		storage:    storage,
		now:        time.Now,
	}
}

// Export renders every report of the window into one workbook, archives it
// and returns the bytes for direct download. A clustering window too small
// to segment drops that sheet instead of failing the export.
func (uc *ExportUseCase) Export(ctx context.Context, from, to time.Time) (string, *bytes.Buffer, error) {
	wb := export.Workbook{}

	clustering, err := uc.clustering.Report(ctx, from, to)
	if err != nil && !domain.IsKind(err, domain.ErrInsufficientData) {
		return "", nil, err
	}
	wb.Clustering = clustering

	if wb.Health, err = uc.health.Report(ctx, from, to); err != nil {
		return "", nil, err
	}
	if wb.Retention, err = uc.retention.Report(ctx, from, to); err != nil {
		return "", nil, err
	}
	if wb.Campaign, err = uc.campaign.Report(ctx, from, to); err != nil {
		return "", nil, err
	}
	if wb.Sentiment, err = uc.sentiment.Report(ctx, from, to); err != nil {
		return "", nil, err
	}

	buf, err := export.Render(wb)
	if err != nil {
		return "", nil, err
	}

	key := fmt.Sprintf("rapport-don-sang-%s.xlsx", uc.now().UTC().Format("20060102-150405"))
	if uc.storage != nil {
		if err := uc.storage.Save(ctx, key, bytes.NewReader(buf.Bytes())); err != nil {
			return "", nil, err
		}
	}
	return key, buf, nil
}

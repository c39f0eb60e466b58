package usecase

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/hemoboard/hemoboard/internal/core/domain"
	"github.com/hemoboard/hemoboard/internal/core/ports"
	"github.com/hemoboard/hemoboard/internal/infrastructure/features"
)

const (
	topTermLimit        = 20
	feedbackSampleLimit = 10
)

type SentimentUseCase struct {
	source ports.DonorSource
	scorer ports.SentimentScorer
}

func NewSentimentUseCase(source ports.DonorSource, scorer ports.SentimentScorer) *SentimentUseCase {
	return &SentimentUseCase{source: source, scorer: scorer}
}

// Report classifies the free-text feedback of the window. Records without
// feedback are excluded from the term cloud but count as neutral in the
// profession breakdown, matching how the survey treats silence.
func (uc *SentimentUseCase) Report(ctx context.Context, from, to time.Time) (*domain.SentimentReport, error) {
	donors, err := uc.source.Donors(ctx)
	if err != nil {
		return nil, err
	}
	rows := features.FilterByDate(donors, from, to)

	report := &domain.SentimentReport{
		Global: map[domain.SentimentLabel]int{
			domain.SentimentPositive: 0,
			domain.SentimentNeutral:  0,
			domain.SentimentNegative: 0,
		},
	}

	type key struct {
		profession string
		sentiment  domain.SentimentLabel
	}
	byProfession := map[key]int{}
	var texts []string

	for _, d := range rows {
		label := uc.scorer.Score(d.Feedback)
		report.Global[label]++

		if d.Profession != "" {
			byProfession[key{d.Profession, label}]++
		}

		if strings.TrimSpace(d.Feedback) == "" {
			continue
		}
		texts = append(texts, d.Feedback)
		if len(report.Samples) < feedbackSampleLimit {
			report.Samples = append(report.Samples, domain.FeedbackSample{
				Text:      d.Feedback,
				Sentiment: label,
			})
		}
	}

	for k, count := range byProfession {
		report.ByProfession = append(report.ByProfession, domain.ProfessionSentiment{
			Profession: k.profession,
			Sentiment:  k.sentiment,
			Count:      count,
		})
	}
	sort.Slice(report.ByProfession, func(i, j int) bool {
		a, b := report.ByProfession[i], report.ByProfession[j]
		if a.Count != b.Count {
			return a.Count > b.Count
		}
		if a.Profession != b.Profession {
			return a.Profession < b.Profession
		}
		return a.Sentiment < b.Sentiment
	})

	report.TopTerms = uc.scorer.TopTerms(texts, topTermLimit)
	return report, nil
}

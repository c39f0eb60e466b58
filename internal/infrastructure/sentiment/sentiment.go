// Package sentiment scores free-text donor feedback with an embedded
// French polarity lexicon. Polarity is (positive - negative) / tokens,
// classified against configurable thresholds; empty text is neutral.
package sentiment

import (
	_ "embed"
	"fmt"
	"sort"
	"strings"
	"unicode"

	"gopkg.in/yaml.v3"

	"github.com/hemoboard/hemoboard/internal/core/domain"
	"github.com/hemoboard/hemoboard/internal/infrastructure/dataset"
)

//go:embed lexicon.yaml
var lexiconYAML []byte

type lexiconFile struct {
	Stopwords []string `yaml:"stopwords"`
	Positive  []string `yaml:"positive"`
	Negative  []string `yaml:"negative"`
}

type Scorer struct {
	stopwords map[string]struct{}
	positive  map[string]struct{}
	negative  map[string]struct{}

	positiveThreshold float64
	negativeThreshold float64
}

func NewScorer(positiveThreshold, negativeThreshold float64) (*Scorer, error) {
	var file lexiconFile
	if err := yaml.Unmarshal(lexiconYAML, &file); err != nil {
		return nil, fmt.Errorf("parse lexicon.yaml: %w", err)
	}
	if positiveThreshold == 0 && negativeThreshold == 0 {
		positiveThreshold, negativeThreshold = 0.1, -0.1
	}
	return &Scorer{
		stopwords:         toSet(file.Stopwords),
		positive:          toSet(file.Positive),
		negative:          toSet(file.Negative),
		positiveThreshold: positiveThreshold,
		negativeThreshold: negativeThreshold,
	}, nil
}

// Score classifies one feedback text. Empty or stopword-only text is
// neutral rather than an error.
func (s *Scorer) Score(text string) domain.SentimentLabel {
	tokens := s.contentTokens(text)
	if len(tokens) == 0 {
		return domain.SentimentNeutral
	}

	score := 0
	for _, tok := range tokens {
		if _, ok := s.positive[tok]; ok {
			score++
		} else if _, ok := s.negative[tok]; ok {
			score--
		}
	}
	polarity := float64(score) / float64(len(tokens))
	switch {
	case polarity > s.positiveThreshold:
		return domain.SentimentPositive
	case polarity < s.negativeThreshold:
		return domain.SentimentNegative
	default:
		return domain.SentimentNeutral
	}
}

// TopTerms aggregates the most frequent non-stopword tokens across texts,
// the tabular stand-in for the original word cloud.
func (s *Scorer) TopTerms(texts []string, limit int) []domain.TermCount {
	if limit <= 0 {
		limit = 20
	}
	counts := make(map[string]int)
	for _, text := range texts {
		for _, tok := range s.contentTokens(text) {
			counts[tok]++
		}
	}

	terms := make([]domain.TermCount, 0, len(counts))
	for term, count := range counts {
		terms = append(terms, domain.TermCount{Term: term, Count: count})
	}
	sort.Slice(terms, func(i, j int) bool {
		if terms[i].Count != terms[j].Count {
			return terms[i].Count > terms[j].Count
		}
		return terms[i].Term < terms[j].Term
	})
	if len(terms) > limit {
		terms = terms[:limit]
	}
	return terms
}

func (s *Scorer) contentTokens(text string) []string {
	folded := dataset.NormalizeValue(text)
	fields := strings.FieldsFunc(folded, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})

	out := make([]string, 0, len(fields))
	for _, f := range fields {
		if len(f) < 2 {
			continue
		}
		if _, ok := s.stopwords[f]; ok {
			continue
		}
		out = append(out, f)
	}
	return out
}

func toSet(words []string) map[string]struct{} {
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[w] = struct{}{}
	}
	return set
}

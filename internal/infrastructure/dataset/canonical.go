package dataset

import (
	_ "embed"
	"fmt"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"
)

//go:embed districts.yaml
var canonicalYAML []byte

type canonicalFile struct {
	DefaultDistrict   string              `yaml:"default_district"`
	Districts         map[string][]string `yaml:"districts"`
	DefaultProfession string              `yaml:"default_profession"`
	Professions       map[string][]string `yaml:"professions"`
}

// Canonicalizer maps free-text residence districts and professions onto a
// fixed set of labels. The alias table lives in districts.yaml so the
// mapping can change without touching code.
type Canonicalizer struct {
	districts         map[string]string
	defaultDistrict   string
	professions       map[string]string
	defaultProfession string
	titler            cases.Caser
}

func NewCanonicalizer() (*Canonicalizer, error) {
	var file canonicalFile
	if err := yaml.Unmarshal(canonicalYAML, &file); err != nil {
		return nil, fmt.Errorf("parse districts.yaml: %w", err)
	}

	c := &Canonicalizer{
		districts:         make(map[string]string),
		defaultDistrict:   file.DefaultDistrict,
		professions:       make(map[string]string),
		defaultProfession: file.DefaultProfession,
		titler:            cases.Title(language.French),
	}
	for canonical, aliases := range file.Districts {
		for _, alias := range aliases {
			c.districts[NormalizeValue(alias)] = canonical
		}
	}
	for canonical, aliases := range file.Professions {
		for _, alias := range aliases {
			c.professions[NormalizeValue(alias)] = canonical
		}
	}
	return c, nil
}

// District resolves a raw residence string to a canonical district name.
// Missing values fall back to the default district; unmapped values keep
// their title-cased form so new districts surface instead of disappearing.
func (c *Canonicalizer) District(raw string) string {
	key := NormalizeValue(raw)
	if key == "" {
		return c.defaultDistrict
	}
	if canonical, ok := c.districts[key]; ok {
		return canonical
	}
	return c.titler.String(key)
}

// Profession resolves a raw profession string to its retained label.
// Empty values map to the default bucket.
func (c *Canonicalizer) Profession(raw string) string {
	key := NormalizeValue(raw)
	if key == "" {
		return c.defaultProfession
	}
	if canonical, ok := c.professions[key]; ok {
		return canonical
	}
	return c.titler.String(key)
}

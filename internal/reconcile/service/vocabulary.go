package service

import (
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

// SalientRule is one semantic cluster of domain terms, e.g. the trunk organizer family.
type SalientRule struct {
	Label string   `toml:"label" json:"label"`
	Terms []string `toml:"terms" json:"terms"`
}

// Vocabulary holds every fixed word list the extractor and scorer use.
// It is passed in at construction time so a catalog domain can bring its own.
type Vocabulary struct {
	StopWords   []string      `toml:"stop_words" json:"stopWords"`
	Salient     []SalientRule `toml:"salient" json:"salient"`
	Colors      []string      `toml:"colors" json:"colors"`
	Models      []string      `toml:"models" json:"models"`
	Sizes       [][]string    `toml:"sizes" json:"sizes"` // группы синонимов размера: {"17","177"}
	CodePattern string        `toml:"code_pattern" json:"codePattern"`
}

// DefaultVocabulary returns the built-in car accessories vocabulary.
func DefaultVocabulary() Vocabulary {
	return Vocabulary{
		StopWords: []string{
			"the", "a", "an", "and", "or", "but", "in", "on", "at", "to", "for", "of", "with", "by",
			"old", "owleys", "car", "black", "white", "gray", "grey", "brown", "tan", "beige", "cream",
			"golden", "eco", "leather", "mk", "ii", "pro",
		},
		Salient: []SalientRule{
			{Label: "organizer", Terms: []string{"hanging", "foldable", "trunk", "organizer"}},
			{Label: "travel", Terms: []string{"travel", "buddy", "hold", "go", "hexy", "highway", "magic", "box"}},
			{Label: "seat", Terms: []string{"seat", "protector", "cover", "mat", "kick"}},
			{Label: "pet", Terms: []string{"dog", "hammock", "carrier"}},
			{Label: "lines", Terms: []string{"harlow", "seashell", "nomad", "scorcher"}},
			{Label: "cleaning", Terms: []string{"crossclean", "crossgun", "vacuum", "cleaner"}},
		},
		Colors:      []string{"black", "gray", "grey", "white", "golden", "tan", "beige"},
		Models:      []string{"hexy", "highway", "harlow", "travel", "buddy", "quick", "kennel", "pro"},
		Sizes:       [][]string{{"17", "177"}, {"21", "216"}},
		CodePattern: `^[a-z][a-z0-9]{0,5}[-_ ]?\d{2,5}(?:[-_ ]\d{2,5}[a-z]?)+$`,
	}
}

// vocabularyFile mirrors Vocabulary with optional fields: absent keys keep defaults.
type vocabularyFile struct {
	StopWords   *[]string      `toml:"stop_words"`
	Salient     *[]SalientRule `toml:"salient"`
	Colors      *[]string      `toml:"colors"`
	Models      *[]string      `toml:"models"`
	Sizes       *[][]string    `toml:"sizes"`
	CodePattern *string        `toml:"code_pattern"`
}

// ParseVocabulary reads a TOML document and lays it over DefaultVocabulary.
func ParseVocabulary(r io.Reader) (Vocabulary, error) {
	var f vocabularyFile
	if err := toml.NewDecoder(r).Decode(&f); err != nil {
		return Vocabulary{}, fmt.Errorf("parse vocabulary: %w", err)
	}
	v := DefaultVocabulary()
	if f.StopWords != nil {
		v.StopWords = *f.StopWords
	}
	if f.Salient != nil {
		v.Salient = *f.Salient
	}
	if f.Colors != nil {
		v.Colors = *f.Colors
	}
	if f.Models != nil {
		v.Models = *f.Models
	}
	if f.Sizes != nil {
		v.Sizes = *f.Sizes
	}
	if f.CodePattern != nil {
		v.CodePattern = *f.CodePattern
	}
	if err := v.Validate(); err != nil {
		return Vocabulary{}, err
	}
	return v, nil
}

func (v Vocabulary) Validate() error {
	for i, r := range v.Salient {
		if len(nonEmpty(r.Terms)) == 0 {
			return fmt.Errorf("salient rule %d (%q): no terms", i, r.Label)
		}
	}
	if strings.TrimSpace(v.CodePattern) != "" {
		if _, err := regexp.Compile(v.CodePattern); err != nil {
			return fmt.Errorf("code_pattern: %w", err)
		}
	}
	if len(v.StopWords) == 0 && len(v.Salient) == 0 && len(v.Models) == 0 {
		return errors.New("vocabulary is empty")
	}
	return nil
}

// lexicon: скомпилированный Vocabulary, общий для экстрактора и скорера
type lexicon struct {
	stop   map[string]struct{}
	rules  []salientRule
	colors []string
	models []string
	sizes  [][]string
	code   *regexp.Regexp // nil: распознавание кодов выключено
}

type salientRule struct {
	label string
	re    *regexp.Regexp
}

func compileLexicon(v Vocabulary) lexicon {
	lx := lexicon{
		stop:   make(map[string]struct{}, len(v.StopWords)),
		colors: lowerAll(v.Colors),
		models: lowerAll(v.Models),
	}
	for _, w := range v.StopWords {
		lx.stop[strings.ToLower(strings.TrimSpace(w))] = struct{}{}
	}
	for _, r := range v.Salient {
		terms := nonEmpty(r.Terms)
		if len(terms) == 0 {
			continue
		}
		quoted := make([]string, len(terms))
		for i, t := range terms {
			quoted[i] = regexp.QuoteMeta(strings.ToLower(t))
		}
		lx.rules = append(lx.rules, salientRule{
			label: r.Label,
			re:    regexp.MustCompile(`(?i)(` + strings.Join(quoted, "|") + `)`),
		})
	}
	for _, g := range v.Sizes {
		if g = nonEmpty(g); len(g) > 0 {
			lx.sizes = append(lx.sizes, g)
		}
	}
	if p := strings.TrimSpace(v.CodePattern); p != "" {
		if re, err := regexp.Compile(p); err == nil {
			lx.code = re
		}
	}
	return lx
}

func nonEmpty(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func lowerAll(in []string) []string {
	out := nonEmpty(in)
	for i := range out {
		out[i] = strings.ToLower(out[i])
	}
	return out
}

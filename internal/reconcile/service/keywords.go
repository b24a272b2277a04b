package service

import "strings"

// Extractor splits strings into general and salient keyword sets.
type Extractor struct {
	lx lexicon
}

func NewExtractor(v Vocabulary) *Extractor {
	return &Extractor{lx: compileLexicon(v)}
}

// General returns the distinct hyphen-delimited tokens of Normalize(s) longer
// than two characters, minus stop words, in order of first appearance.
func (e *Extractor) General(s string) []string {
	return e.general(Normalize(s))
}

func (e *Extractor) general(normalized string) []string {
	if normalized == "" {
		return nil
	}
	var out []string
	seen := make(map[string]struct{})
	for _, tok := range strings.Split(normalized, "-") {
		if len(tok) <= 2 {
			continue
		}
		if _, stop := e.lx.stop[tok]; stop {
			continue
		}
		if _, dup := seen[tok]; dup {
			continue
		}
		seen[tok] = struct{}{}
		out = append(out, tok)
	}
	return out
}

// Salient runs every rule over the raw string and returns all matched terms,
// lowercased and deduplicated, in rule order.
func (e *Extractor) Salient(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	seen := make(map[string]struct{})
	for _, r := range e.lx.rules {
		for _, m := range r.re.FindAllString(s, -1) {
			m = strings.ToLower(m)
			if _, dup := seen[m]; dup {
				continue
			}
			seen[m] = struct{}{}
			out = append(out, m)
		}
	}
	return out
}

// overlap: доля токенов a, которые входят подстрокой в токен b или содержат его,
// от большего из двух множеств.
func overlap(a, b []string) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	hits := 0
	for _, x := range a {
		for _, y := range b {
			if strings.Contains(y, x) || strings.Contains(x, y) {
				hits++
				break
			}
		}
	}
	return float64(hits) / float64(max(len(a), len(b)))
}

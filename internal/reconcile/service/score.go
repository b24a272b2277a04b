package service

import "strings"

// Веса и пороги подобраны вручную; менять только вместе с тестовыми фикстурами.
const (
	salientWeight = 0.6

	sizeFloor  = 0.25
	colorFloor = 0.20
	modelFloor = 0.25
)

// Scorer computes a bounded keyword similarity between a query and a candidate name.
type Scorer struct {
	ex *Extractor
}

func NewScorer(v Vocabulary) *Scorer {
	return &Scorer{ex: NewExtractor(v)}
}

// Score returns a value in [0,1]. Salient keywords carry 60% of the weight
// whenever the query has any. Size, color and model tokens shared by both
// strings only ever raise a nonzero result; with no keyword overlap it stays 0.
func (s *Scorer) Score(query, candidate string) float64 {
	qNorm, cNorm := Normalize(query), Normalize(candidate)

	qGeneral, cGeneral := s.ex.general(qNorm), s.ex.general(cNorm)
	if len(qGeneral) == 0 || len(cGeneral) == 0 {
		return 0
	}
	qSalient, cSalient := s.ex.Salient(query), s.ex.Salient(candidate)

	importantWeight := 0.0
	if len(qSalient) > 0 {
		importantWeight = salientWeight
	}
	generalWeight := 1 - importantWeight

	score := overlap(qSalient, cSalient)*importantWeight + overlap(qGeneral, cGeneral)*generalWeight
	if score == 0 {
		// без общих ключевых слов категории ничего не решают
		return 0
	}

	// бонусы: монотонный максимум, порядок фиксирован; сравниваются целые токены
	qTok, cTok := tokens(qNorm), tokens(cNorm)
	if s.sharesSize(qTok, cTok) {
		score = max(score, sizeFloor)
	}
	if sharesAny(s.ex.lx.colors, qTok, cTok) {
		score = max(score, colorFloor)
	}
	if sharesAny(s.ex.lx.models, qTok, cTok) {
		score = max(score, modelFloor)
	}
	return min(max(score, 0), 1)
}

func (s *Scorer) sharesSize(a, b map[string]struct{}) bool {
	for _, group := range s.ex.lx.sizes {
		if hasAny(a, group) && hasAny(b, group) {
			return true
		}
	}
	return false
}

func sharesAny(words []string, a, b map[string]struct{}) bool {
	for _, w := range words {
		_, inA := a[w]
		_, inB := b[w]
		if inA && inB {
			return true
		}
	}
	return false
}

func hasAny(set map[string]struct{}, words []string) bool {
	for _, w := range words {
		if _, ok := set[w]; ok {
			return true
		}
	}
	return false
}

// tokens: все фрагменты нормализованной формы, включая короткие и стоп-слова
func tokens(normalized string) map[string]struct{} {
	out := make(map[string]struct{})
	for _, t := range strings.Split(normalized, "-") {
		if t != "" {
			out[t] = struct{}{}
		}
	}
	return out
}

package service

import (
	"regexp"
	"strings"

	"catalog-matcher/internal/reconcile/model"
)

// Оценки уровней сопоставления и порог приёма результата
const (
	identifierScore = 1.0
	codeScore       = 0.95
	partialScore    = 0.2
	partialCeiling  = 0.3 // частичное совпадение ID/артикула проверяется только ниже этого

	confidentScore    = 0.5
	minConfidentScore = 0.15 // порог для кандидатов с оценкой >= confidentScore
	minWeakScore      = 0.2  // порог для всех остальных

	// обратная проверка (ID содержит запрос) только для запросов не короче этого
	minContainedLen = 4
)

// Matcher finds the best catalog record for a noisy query. It never modifies the catalog.
type Matcher struct {
	scorer *Scorer
	code   *regexp.Regexp // "похожие на код" заголовки от генератора
}

func NewMatcher(v Vocabulary) *Matcher {
	sc := NewScorer(v)
	return &Matcher{scorer: sc, code: sc.ex.lx.code}
}

// FindBestMatch scans the whole catalog and returns the highest scoring record.
// An exact identifier hit returns immediately with score 1; otherwise the first
// record in catalog order wins ties. Records with an empty identifier are ignored.
func (m *Matcher) FindBestMatch(query string, catalog []model.CatalogRecord, mode model.Mode) model.MatchResult {
	best := model.NoMatch()
	normQuery := Normalize(query)

	for i, rec := range catalog {
		id := strings.TrimSpace(rec.Identifier)
		if id == "" {
			continue
		}
		normID := Normalize(id)
		normCode := Normalize(stripQualifiers(rec.SecondaryCode))

		score, tier := 0.0, model.TierNone

		if mode != model.NameOnly && normQuery != "" {
			// (1) точный ID
			if normID == normQuery {
				return accept(model.MatchResult{Index: i, Record: rec, Score: identifierScore, Tier: model.TierIdentifier})
			}
			// (2) точный артикул без уточнений в скобках
			if normCode != "" && normCode == normQuery {
				score, tier = codeScore, model.TierCode
			}
		}

		// (3) схожесть по наименованию
		if name := strings.TrimSpace(rec.DisplayName); name != "" {
			if s := m.scorer.Score(query, name); s > score {
				score, tier = s, model.TierName
			}
		}

		// (4) частичное вхождение ID или артикула
		if score < partialCeiling && (containsEither(normQuery, normID) || containsEither(normQuery, normCode)) {
			if partialScore > score {
				score, tier = partialScore, model.TierPartial
			}
		}

		if score > best.Score {
			best = model.MatchResult{Index: i, Record: rec, Score: score, Tier: tier}
		}
	}
	return accept(best)
}

// accept applies the two-level confidence threshold.
func accept(r model.MatchResult) model.MatchResult {
	if r.Index < 0 {
		return r
	}
	threshold := minWeakScore
	if r.Score >= confidentScore {
		threshold = minConfidentScore
	}
	r.Matched = r.Score >= threshold
	return r
}

// containsEither: запрос содержит ключ, либо ключ содержит достаточно длинный запрос.
func containsEither(query, key string) bool {
	if query == "" || key == "" {
		return false
	}
	if strings.Contains(query, key) {
		return true
	}
	return len(query) >= minContainedLen && strings.Contains(key, query)
}

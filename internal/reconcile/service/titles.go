package service

import (
	"strings"

	"catalog-matcher/internal/reconcile/model"
)

// совпадение кода после удаления разделителей: "P3014-10" ~ "p-3014-10"
const compactCodeScore = 0.9

// CorrectTitles reconciles generated product titles against the inventory.
// The output has one entry per input title, in input order.
func (m *Matcher) CorrectTitles(titles []string, inventory []model.CatalogRecord) []model.TitleCorrection {
	out := make([]model.TitleCorrection, 0, len(titles))
	for _, t := range titles {
		out = append(out, m.CorrectTitle(t, inventory))
	}
	return out
}

// CorrectTitle replaces a generated title with the authoritative display name of
// the matching inventory record. Unresolved titles are returned unchanged.
func (m *Matcher) CorrectTitle(title string, inventory []model.CatalogRecord) model.TitleCorrection {
	tc := model.TitleCorrection{Original: title, Corrected: title}

	// генератор иногда возвращает код вместо названия
	if m.looksLikeCode(title) {
		tc.Malformed = true
		if r := m.lookupCode(title, inventory); r.Matched {
			tc.Result = r
			tc.Corrected = canonicalTitle(r.Record, title)
			return tc
		}
	}

	if r := exactName(title, inventory); r.Matched {
		tc.Result = r
		tc.Corrected = canonicalTitle(r.Record, title)
		return tc
	}

	tc.Result = m.FindBestMatch(title, inventory, model.NameOnly)
	if tc.Result.Matched {
		tc.Corrected = canonicalTitle(tc.Result.Record, title)
	}
	return tc
}

// exactName: название, совпадающее с DisplayName после Normalize. Нужен для
// коротких названий из стоп-слов ("Pro II"), у которых нет ключевых слов.
func exactName(title string, inventory []model.CatalogRecord) model.MatchResult {
	q := Normalize(title)
	if q == "" {
		return model.NoMatch()
	}
	for i, rec := range inventory {
		if strings.TrimSpace(rec.Identifier) == "" {
			continue
		}
		if Normalize(rec.DisplayName) == q {
			return model.MatchResult{Matched: true, Index: i, Record: rec, Score: 1.0, Tier: model.TierName}
		}
	}
	return model.NoMatch()
}

func (m *Matcher) looksLikeCode(title string) bool {
	if m.code == nil {
		return false
	}
	return m.code.MatchString(strings.ToLower(strings.TrimSpace(title)))
}

// lookupCode сверяет код-подобный заголовок с ID и артикулами, допуская частичное вхождение.
func (m *Matcher) lookupCode(title string, inventory []model.CatalogRecord) model.MatchResult {
	best := model.NoMatch()
	q, qc := Normalize(title), compact(title)
	if q == "" {
		return best
	}
	for i, rec := range inventory {
		id := strings.TrimSpace(rec.Identifier)
		if id == "" {
			continue
		}
		score := 0.0
		for _, key := range []string{id, stripQualifiers(rec.SecondaryCode)} {
			if key == "" {
				continue
			}
			kc := compact(key)
			switch {
			case Normalize(key) == q:
				score = max(score, codeScore)
			case kc == qc:
				score = max(score, compactCodeScore)
			case looseContains(qc, kc):
				score = max(score, partialScore)
			}
		}
		if score > best.Score {
			best = model.MatchResult{Index: i, Record: rec, Score: score, Tier: model.TierCodeLookup}
		}
	}
	return accept(best)
}

func looseContains(a, b string) bool {
	if a == "" || b == "" || min(len(a), len(b)) < minContainedLen {
		return false
	}
	return strings.Contains(a, b) || strings.Contains(b, a)
}

func canonicalTitle(rec model.CatalogRecord, fallback string) string {
	if name := strings.TrimSpace(rec.DisplayName); name != "" {
		return rec.DisplayName
	}
	return fallback
}

package catalog

import (
	"regexp"
	"strings"
)

var reHeaderJunk = regexp.MustCompile(`[^\p{L}\p{N}]+`)

// нормализуем имя колонки: нижний регистр, убираем служ.символы/множественные пробелы/ё→е
func normHeaderKey(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.NewReplacer(" ", " ", " ", " ", "ё", "е").Replace(s) // NBSP/NNBSP
	s = reHeaderJunk.ReplaceAllString(s, " ")
	return strings.Join(strings.Fields(s), " ")
}

// "I T E M    N A M E" и "ITEM NAME" сравниваются без пробелов
func compactHeader(s string) string {
	return strings.ReplaceAll(normHeaderKey(s), " ", "")
}

// resolveKey ищет реальный заголовок по желаемому имени.
// Поддерживает варианты через "|" (например: "ITEM NAME|Title").
func resolveKey(headers []string, want string) string {
	want = strings.TrimSpace(want)
	if want == "" {
		return ""
	}
	alts := strings.Split(want, "|")
	for i := range alts {
		alts[i] = strings.TrimSpace(alts[i])
	}

	// 1) точное совпадение (как есть)
	for _, a := range alts {
		for _, h := range headers {
			if h == a {
				return h
			}
		}
	}

	// 2) нормализованные сравнения, в т.ч. без пробелов
	for _, a := range alts {
		na, ca := normHeaderKey(a), compactHeader(a)
		for _, h := range headers {
			if normHeaderKey(h) == na || compactHeader(h) == ca {
				return h
			}
		}
	}

	// 3) частичное: want ⊂ key или key ⊂ want, побеждает самое длинное пересечение
	bestKey, bestScore := "", 0
	for _, h := range headers {
		nh := normHeaderKey(h)
		if nh == "" {
			continue
		}
		for _, a := range alts {
			na := normHeaderKey(a)
			if na == "" {
				continue
			}
			if (strings.Contains(nh, na) || strings.Contains(na, nh)) && len(na) > bestScore {
				bestScore, bestKey = len(na), h
			}
		}
	}
	return bestKey
}

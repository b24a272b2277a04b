package service

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Все виды кавычек, которые встречаются в названиях и именах файлов
var quoteMarks = strings.NewReplacer(
	`"`, "", "'", "", "`", "",
	"«", "", "»", "", "“", "", "”", "", "„", "", "‘", "", "’", "", "‹", "", "›", "",
)

// Café → cafe: диакритика снимается до вычистки символов.
// Chain не потокобезопасен: новый на каждый вызов.
func foldAccents() transform.Transformer {
	return transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
}

var (
	// \s в RE2 только ASCII; NBSP и прочие \p{Z} из таблиц тоже пробелы
	reNonToken  = regexp.MustCompile(`[^a-z0-9\s\p{Z}-]+`)
	reSpaceRun  = regexp.MustCompile(`[\s\p{Z}]+`)
	reHyphenRun = regexp.MustCompile(`-+`)
	reParens    = regexp.MustCompile(`[\s\p{Z}]*\([^)]*\)[\s\p{Z}]*`)
)

// Normalize canonicalizes s into its hyphen-joined comparable form:
// lowercase, no quotes, only [a-z0-9-], single hyphens, none at the ends.
// Callers keying their own lookups by identifier must use the same function.
func Normalize(s string) string {
	if s == "" {
		return ""
	}
	out := quoteMarks.Replace(strings.ToLower(s))
	if folded, _, err := transform.String(foldAccents(), out); err == nil {
		out = folded
	}
	out = reNonToken.ReplaceAllString(out, "")
	out = reSpaceRun.ReplaceAllString(out, "-")
	out = reHyphenRun.ReplaceAllString(out, "-")
	return strings.Trim(out, "-")
}

// stripQualifiers убирает уточнения в скобках: "OUTR01-01A (black)" → "OUTR01-01A"
func stripQualifiers(code string) string {
	return strings.TrimSpace(reParens.ReplaceAllString(code, ""))
}

// compact: нормализованная форма без дефисов, для сравнения кодов "P3014-10" ~ "p-3014-10"
func compact(s string) string {
	return strings.ReplaceAll(Normalize(s), "-", "")
}

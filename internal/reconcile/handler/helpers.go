package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"catalog-matcher/internal/catalog"
	"catalog-matcher/internal/reconcile/model"
)

func decodeJSON(r *http.Request, v any) error {
	defer r.Body.Close()
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

func writeJSON(w http.ResponseWriter, log zerolog.Logger, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		log.Error().Err(err).Msg("write json")
	}
}

func parseMode(s string) (model.Mode, error) {
	switch model.Mode(strings.ToLower(strings.TrimSpace(s))) {
	case "", model.IdentifierFirst:
		return model.IdentifierFirst, nil
	case model.NameOnly:
		return model.NameOnly, nil
	default:
		return "", fmt.Errorf("unknown mode %q (want %q or %q)", s, model.IdentifierFirst, model.NameOnly)
	}
}

// mappingFromForm: колонки каталога из формы, пустые поля берутся по умолчанию.
func mappingFromForm(r *http.Request) catalog.Mapping {
	m := catalog.DefaultMapping()
	if v := r.FormValue("id_col"); v != "" {
		m.IDKey = v
	}
	if v := r.FormValue("code_col"); v != "" {
		m.CodeKey = v
	}
	if v := r.FormValue("name_col"); v != "" {
		m.NameKey = v
	}
	if v := r.FormValue("resource_col"); v != "" {
		m.ResourceKey = v
	}
	// строки 1-based; 0 и отрицательные считаем первой строкой
	m.HeaderRow = max(atoi(r.FormValue("header_row"), 1), 1)
	return m
}

// logResult: диагностика «не найдено» с лучшим кандидатом.
func logResult(log zerolog.Logger, query string, res model.MatchResult) {
	if res.Matched {
		log.Debug().
			Str("query", query).
			Str("id", res.Record.Identifier).
			Float64("score", res.Score).
			Str("tier", string(res.Tier)).
			Msg("matched")
		return
	}
	ev := log.Warn().Str("query", query).Float64("best_score", res.Score)
	if res.Index >= 0 {
		ev = ev.Str("best_id", res.Record.Identifier).Str("best_tier", string(res.Tier))
	}
	ev.Msg("no match found")
}

func logAssignments(log zerolog.Logger, batch model.ImageBatch) {
	for _, a := range batch.Assignments {
		switch a.Status {
		case model.StatusUnmatched:
			logResult(log, a.File, a.Result)
		case model.StatusDuplicate, model.StatusKept:
			log.Info().
				Str("file", a.File).
				Str("id", a.Identifier).
				Str("existing", a.Previous).
				Str("status", string(a.Status)).
				Msg("image not assigned")
		default:
			log.Debug().
				Str("file", a.File).
				Str("id", a.Identifier).
				Int("confidence", int(a.Result.Score*100+0.5)).
				Msg("image assigned")
		}
	}
}

func atoi(s string, def int) int {
	if s == "" {
		return def
	}
	i, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return i
}

func toBool(s string, def bool) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "true", "yes", "y", "on":
		return true
	case "0", "false", "no", "n", "off":
		return false
	default:
		return def
	}
}

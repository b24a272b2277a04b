package handler

import (
	"bytes"
	"io"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"catalog-matcher/internal/catalog"
	"catalog-matcher/internal/config"
	"catalog-matcher/internal/fileio"
	"catalog-matcher/internal/middleware"
	"catalog-matcher/internal/reconcile/model"
	recSvc "catalog-matcher/internal/reconcile/service"
)

type matchRequest struct {
	Query   string                `json:"query"`
	Mode    string                `json:"mode"`
	Catalog []model.CatalogRecord `json:"catalog"`
}

// Match обслуживает POST /match: один запрос против переданного каталога.
func Match(m *recSvc.Matcher, logger zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log := requestLogger(logger, r)

		var req matchRequest
		if err := decodeJSON(r, &req); err != nil {
			http.Error(w, "bad json: "+err.Error(), http.StatusBadRequest)
			return
		}
		mode, err := parseMode(req.Mode)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		res := m.FindBestMatch(req.Query, req.Catalog, mode)
		logResult(log, req.Query, res)
		writeJSON(w, log, res)
	}
}

type titlesRequest struct {
	Inventory []model.CatalogRecord `json:"inventory"`
	Titles    []string              `json:"titles"`
}

type titlesResponse struct {
	Corrections []model.TitleCorrection `json:"corrections"`
	Corrected   int                     `json:"corrected"`
}

// CorrectTitles обслуживает POST /titles/correct. Заголовки от генератора приводятся к названиям
// из инвентаря. Ненайденные остаются как есть.
func CorrectTitles(m *recSvc.Matcher, logger zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		log := requestLogger(logger, r)

		var req titlesRequest
		if err := decodeJSON(r, &req); err != nil {
			http.Error(w, "bad json: "+err.Error(), http.StatusBadRequest)
			return
		}
		if len(req.Inventory) == 0 {
			http.Error(w, "inventory must be a non-empty array", http.StatusBadRequest)
			return
		}

		resp := titlesResponse{Corrections: m.CorrectTitles(req.Titles, req.Inventory)}
		for _, c := range resp.Corrections {
			if c.Result.Matched {
				resp.Corrected++
				log.Debug().
					Str("title", c.Original).
					Str("corrected", c.Corrected).
					Float64("score", c.Result.Score).
					Str("tier", string(c.Result.Tier)).
					Bool("malformed", c.Malformed).
					Msg("title matched")
				continue
			}
			logResult(log, c.Original, c.Result)
		}

		writeJSON(w, log, resp)
		log.Info().
			Int("titles", len(req.Titles)).
			Int("corrected", resp.Corrected).
			Dur("elapsed", time.Since(start)).
			Msg("titles done")
	}
}

type assignResponse struct {
	RunID       string                  `json:"runId"`
	Assignments []model.ImageAssignment `json:"assignments"`
	Updated     int                     `json:"updated"`
	Duplicates  []string                `json:"duplicates,omitempty"`
	Skipped     int                     `json:"skipped"`
	Records     []model.CatalogRecord   `json:"records"`
}

// AssignImages обслуживает POST /images/assign, multipart с файлом каталога и списком картинок.
// format=file вернёт обновлённый каталог файлом вместо JSON.
func AssignImages(cfg config.Config, m *recSvc.Matcher, logger zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		runID := uuid.NewString()
		log := requestLogger(logger, r).With().Str("run", runID).Logger()

		if err := r.ParseMultipartForm(int64(cfg.MaxUploadMB) << 20); err != nil {
			http.Error(w, "bad multipart form: "+err.Error(), http.StatusBadRequest)
			return
		}

		file, header, err := r.FormFile("catalog")
		if err != nil {
			http.Error(w, "missing catalog: "+err.Error(), http.StatusBadRequest)
			return
		}
		defer file.Close()

		mapping := mappingFromForm(r)
		table, err := fileio.ReadAny(file, header.Filename, mapping.HeaderRow)
		if err != nil {
			http.Error(w, "failed to read catalog: "+err.Error(), http.StatusBadRequest)
			return
		}
		cat, err := catalog.FromTable(table, mapping)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if len(cat.Duplicates) > 0 {
			log.Warn().Strs("ids", cat.Duplicates).Msg("duplicate identifiers, first record kept")
		}

		images := imageNames(r)
		if len(images) == 0 {
			http.Error(w, "no image names given", http.StatusBadRequest)
			return
		}

		batch, err := m.AssignImages(r.Context(), images, cat.Records, model.AssignOptions{
			Workers:  cfg.Workers,
			Reassign: toBool(r.FormValue("reassign"), false),
		})
		if err != nil {
			http.Error(w, "assign: "+err.Error(), http.StatusServiceUnavailable)
			return
		}
		logAssignments(log, batch)

		if r.FormValue("format") == "file" {
			// исходную книгу перечитываем, чтобы xlsx сохранил листы и формулы
			if _, err := file.Seek(0, io.SeekStart); err != nil {
				http.Error(w, "write catalog: "+err.Error(), http.StatusInternalServerError)
				return
			}
			var buf bytes.Buffer
			if err := cat.Write(&buf, outputName(header.Filename), file); err != nil {
				http.Error(w, "write catalog: "+err.Error(), http.StatusInternalServerError)
				return
			}
			w.Header().Set("Content-Disposition", `attachment; filename="`+outputName(header.Filename)+`"`)
			w.Header().Set("Content-Type", "application/octet-stream")
			_, _ = w.Write(buf.Bytes())
		} else {
			writeJSON(w, log, assignResponse{
				RunID:       runID,
				Assignments: batch.Assignments,
				Updated:     batch.Updated,
				Duplicates:  cat.Duplicates,
				Skipped:     cat.Skipped,
				Records:     cat.Records,
			})
		}

		log.Info().
			Int("records", len(cat.Records)).
			Int("images", len(images)).
			Int("updated", batch.Updated).
			Dur("elapsed", time.Since(start)).
			Msg("assign done")
	}
}

// imageNames: имена из полей image (текстом) и имена загруженных файлов image.
func imageNames(r *http.Request) []string {
	if r.MultipartForm == nil {
		return nil
	}
	var out []string
	for _, v := range r.MultipartForm.Value["image"] {
		for _, name := range strings.Split(v, "\n") {
			if name = strings.TrimSpace(name); name != "" && fileio.IsImage(name) {
				out = append(out, name)
			}
		}
	}
	for _, fh := range r.MultipartForm.File["image"] {
		if fileio.IsImage(fh.Filename) {
			out = append(out, filepath.Base(fh.Filename))
		}
	}
	return out
}

// .xls записать не можем: отдаём .xlsx
func outputName(name string) string {
	if strings.EqualFold(filepath.Ext(name), ".xls") {
		return strings.TrimSuffix(name, filepath.Ext(name)) + ".xlsx"
	}
	return name
}

func requestLogger(logger zerolog.Logger, r *http.Request) zerolog.Logger {
	if rid := middleware.GetRequestID(r); rid != "" {
		return logger.With().Str("rid", rid).Logger()
	}
	return logger
}

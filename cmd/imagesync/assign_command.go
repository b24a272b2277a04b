package main

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"catalog-matcher/internal/catalog"
	"catalog-matcher/internal/config"
	"catalog-matcher/internal/fileio"
	"catalog-matcher/internal/reconcile/model"
	recSvc "catalog-matcher/internal/reconcile/service"
)

type assignFlags struct {
	catalogPath string
	imagesDir   string
	outPath     string
	reassign    bool
	dryRun      bool
	mapping     catalog.Mapping
}

func newAssignCommand(cfg *config.Config) *cobra.Command {
	f := assignFlags{mapping: catalog.DefaultMapping()}

	cmd := &cobra.Command{
		Use:   "assign",
		Short: "Match image file names to catalog records and store them in the catalog",
		Example: `  imagesync assign --catalog public/data/items.csv --images public/images
  imagesync assign --catalog items.xlsx --images ./img --out items.updated.xlsx --reassign`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAssign(cmd, *cfg, f)
		},
	}

	cmd.Flags().StringVar(&f.catalogPath, "catalog", "", "Catalog file (.csv, .xlsx, .xls)")
	cmd.Flags().StringVar(&f.imagesDir, "images", "", "Directory with image files")
	cmd.Flags().StringVar(&f.outPath, "out", "", "Output file (default: overwrite the catalog)")
	cmd.Flags().BoolVar(&f.reassign, "reassign", false, "Replace images assigned by previous runs")
	cmd.Flags().BoolVar(&f.dryRun, "dry-run", false, "Report matches without writing the catalog")
	cmd.Flags().IntVar(&cfg.Workers, "workers", cfg.Workers, "Parallel matchers")
	cmd.Flags().StringVar(&f.mapping.IDKey, "id-col", f.mapping.IDKey, "Identifier column")
	cmd.Flags().StringVar(&f.mapping.CodeKey, "code-col", f.mapping.CodeKey, "Secondary code column")
	cmd.Flags().StringVar(&f.mapping.NameKey, "name-col", f.mapping.NameKey, "Display name column (alternatives separated by |)")
	cmd.Flags().StringVar(&f.mapping.ResourceKey, "image-col", f.mapping.ResourceKey, "Column that receives the image file name")
	cmd.Flags().IntVar(&f.mapping.HeaderRow, "header-row", f.mapping.HeaderRow, "Header row (1-based)")
	_ = cmd.MarkFlagRequired("catalog")
	_ = cmd.MarkFlagRequired("images")

	return cmd
}

func runAssign(cmd *cobra.Command, cfg config.Config, f assignFlags) error {
	start := time.Now()
	logger := config.SetupLogger(cfg)
	log := logger.With().Str("run", uuid.NewString()).Logger()

	vocab, err := cfg.Vocabulary()
	if err != nil {
		return err
	}

	cat, err := catalog.Load(f.catalogPath, f.mapping)
	if err != nil {
		return err
	}
	if len(cat.Duplicates) > 0 {
		log.Warn().Strs("ids", cat.Duplicates).Msg("duplicate identifiers, first record kept")
	}

	images, err := fileio.ListImages(f.imagesDir)
	if err != nil {
		return fmt.Errorf("list images: %w", err)
	}
	log.Info().Int("records", len(cat.Records)).Int("images", len(images)).Msg("catalog loaded")
	if len(images) == 0 {
		log.Warn().Str("dir", f.imagesDir).Msg("no images found (.jpg .jpeg .png .webp .gif .svg)")
		return nil
	}

	matcher := recSvc.NewMatcher(vocab)
	batch, err := matcher.AssignImages(cmd.Context(), images, cat.Records, model.AssignOptions{
		Workers:  cfg.Workers,
		Reassign: f.reassign,
	})
	if err != nil {
		return err
	}

	for _, a := range batch.Assignments {
		switch a.Status {
		case model.StatusAssigned:
			log.Info().
				Int("confidence", int(a.Result.Score*100+0.5)).
				Str("id", a.Identifier).
				Str("name", truncate(a.Result.Record.DisplayName, 50)).
				Str("file", a.File).
				Msg("assigned")
		case model.StatusUnmatched:
			ev := log.Warn().Str("file", a.File).Float64("best_score", a.Result.Score)
			if a.Result.Index >= 0 {
				ev = ev.Str("best_id", a.Result.Record.Identifier)
			}
			ev.Msg("no match found")
		default:
			log.Info().
				Str("file", a.File).
				Str("id", a.Identifier).
				Str("existing", a.Previous).
				Str("status", string(a.Status)).
				Msg("skipped")
		}
	}

	out := f.outPath
	if out == "" {
		out = f.catalogPath
		if strings.EqualFold(filepath.Ext(out), ".xls") {
			out = strings.TrimSuffix(out, filepath.Ext(out)) + ".xlsx"
		}
	}
	if !f.dryRun && batch.Updated > 0 {
		if err := cat.Save(out); err != nil {
			return fmt.Errorf("save catalog: %w", err)
		}
	}

	log.Info().
		Int("updated", batch.Updated).
		Str("out", out).
		Bool("dry_run", f.dryRun).
		Dur("elapsed", time.Since(start)).
		Msg("assign done")
	return nil
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

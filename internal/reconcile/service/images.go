package service

import (
	"context"
	"path/filepath"
	"strings"

	"golang.org/x/sync/errgroup"

	"catalog-matcher/internal/reconcile/model"
)

// AssignImages matches every image file name to a catalog record and stores the
// file name in the record's AssignedResource. Matching runs on up to
// opt.Workers goroutines; the catalog is only written afterwards, by this
// goroutine, in file order, so the first file to claim a record keeps it.
func (m *Matcher) AssignImages(ctx context.Context, files []string, catalog []model.CatalogRecord, opt model.AssignOptions) (model.ImageBatch, error) {
	results := make([]model.MatchResult, len(files))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(opt.Workers, 1))
	for i, f := range files {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = m.FindBestMatch(ImageStem(f), catalog, model.IdentifierFirst)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return model.ImageBatch{}, err
	}

	batch := model.ImageBatch{Assignments: make([]model.ImageAssignment, 0, len(files))}
	written := make(map[int]struct{})
	for i, f := range files {
		r := results[i]
		a := model.ImageAssignment{File: f, Stem: ImageStem(f), Status: model.StatusUnmatched, Result: r}
		if r.Matched {
			rec := &catalog[r.Index]
			a.Identifier = rec.Identifier
			a.Previous = rec.AssignedResource
			_, claimed := written[r.Index]
			switch {
			case claimed:
				a.Status = model.StatusDuplicate
			case strings.TrimSpace(rec.AssignedResource) != "" && !opt.Reassign:
				a.Status = model.StatusKept
			default:
				rec.AssignedResource = f
				written[r.Index] = struct{}{}
				batch.Updated++
				a.Status = model.StatusAssigned
			}
		}
		batch.Assignments = append(batch.Assignments, a)
	}
	return batch, nil
}

// ImageStem returns the file name without directories and extension.
func ImageStem(file string) string {
	if i := strings.LastIndexAny(file, `/\`); i >= 0 {
		file = file[i+1:]
	}
	return strings.TrimSuffix(file, filepath.Ext(file))
}

package usecase

import (
	"context"
	"log/slog"
	"time"
)

type ReconcileOption struct {
	DryRun bool
	// GracePeriod protects files saved moments ago whose record is still
	// being written.
	GracePeriod time.Duration
	Categories  []AssetCategory
}

type ReconcileReport struct {
	Scanned int
	// Orphans are stored files no record references.
	Orphans []ImageRef
	Removed []ImageRef
	// Missing are references whose file is not in the store.
	Missing []ImageRef
}

// ReconcileAssets compares stored files against persisted references and
// removes unreferenced files older than the grace period. Running it again
// is harmless.
func (u Usecase) ReconcileAssets(ctx context.Context, opt ReconcileOption) (ReconcileReport, error) {
	cats := opt.Categories
	if len(cats) == 0 {
		cats = AllAssetCategories()
	}
	cutoff := time.Now().Add(-opt.GracePeriod)

	report := ReconcileReport{
		Orphans: []ImageRef{},
		Removed: []ImageRef{},
		Missing: []ImageRef{},
	}

	for _, cat := range cats {
		stored, err := u.assets.List(ctx, cat)
		if err != nil {
			return report, err
		}
		refs, err := u.repo.ListImageRefs(ctx, cat)
		if err != nil {
			return report, err
		}

		referenced := make(map[ImageRef]struct{}, len(refs))
		for _, r := range refs {
			referenced[r] = struct{}{}
		}
		present := make(map[ImageRef]struct{}, len(stored))

		for _, s := range stored {
			report.Scanned++
			present[s.Ref] = struct{}{}
			if _, ok := referenced[s.Ref]; ok {
				continue
			}
			if s.ModTime.After(cutoff) {
				continue
			}
			report.Orphans = append(report.Orphans, s.Ref)
			if opt.DryRun {
				continue
			}
			if err := u.assets.Delete(ctx, s.Ref); err != nil {
				u.logger.WarnContext(ctx, "err_ReconcileAssets_assets.Delete",
					slog.String("ref", string(s.Ref)),
					slog.String("err", err.Error()))
				continue
			}
			report.Removed = append(report.Removed, s.Ref)
		}

		for _, r := range refs {
			if _, ok := present[r]; !ok {
				report.Missing = append(report.Missing, r)
			}
		}
	}

	u.logger.InfoContext(ctx, "assets_reconciled",
		slog.Int("scanned", report.Scanned),
		slog.Int("orphans", len(report.Orphans)),
		slog.Int("removed", len(report.Removed)),
		slog.Int("missing", len(report.Missing)),
		slog.Bool("dry_run", opt.DryRun))

	return report, nil
}

// ScheduleAssetReconcile queues a sweep on the worker.
func (u Usecase) ScheduleAssetReconcile(ctx context.Context, opt ReconcileOption) error {
	if u.dispatcher == nil {
		return ErrConflict{Code: "QUEUE_UNAVAILABLE", Message: "background queue is not configured"}
	}
	return u.dispatcher.EnqueueAssetReconcile(ctx, opt)
}

// ImageExists reports whether the file behind ref is present in the store.
func (u Usecase) ImageExists(ctx context.Context, ref ImageRef) (bool, error) {
	return u.assets.Exists(ctx, ref)
}

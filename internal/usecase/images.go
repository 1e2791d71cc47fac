package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
)

const (
	maxProductImages = 10
	maxSingleImages  = 1
)

// storeUploads validates every upload before any of them is written, then
// saves them in order. When a save fails the files saved so far are removed.
func (u Usecase) storeUploads(ctx context.Context, cat AssetCategory, ups []Upload, max int) ([]ImageRef, error) {
	if len(ups) > max {
		field := ups[0].Field
		return nil, ErrValidation{
			Field:   field,
			Code:    CodeTooManyFiles,
			Message: fmt.Sprintf("at most %d file(s) may be uploaded for %s", max, field),
		}
	}
	for _, up := range ups {
		if err := CheckUpload(up, u.settings.MaxUploadSize); err != nil {
			return nil, err
		}
	}

	refs := make([]ImageRef, 0, len(ups))
	for _, up := range ups {
		ref, err := u.assets.Save(ctx, cat, up)
		if err != nil {
			u.logger.ErrorContext(ctx, "err_storeUploads_assets.Save",
				slog.String("category", string(cat)),
				slog.String("filename", up.Filename),
				slog.String("err", err.Error()))
			u.removeImages(ctx, refs)
			return nil, err
		}
		refs = append(refs, ref)
	}
	return refs, nil
}

// storeUpload is storeUploads for single-image entities. A nil upload
// yields an empty ref.
func (u Usecase) storeUpload(ctx context.Context, cat AssetCategory, up *Upload) (ImageRef, error) {
	if up == nil {
		return "", nil
	}
	refs, err := u.storeUploads(ctx, cat, []Upload{*up}, maxSingleImages)
	if err != nil {
		return "", err
	}
	return refs[0], nil
}

// removeImages deletes files best-effort. Failures are logged and left for
// the reconcile sweep. It keeps running after the request is cancelled.
func (u Usecase) removeImages(ctx context.Context, refs []ImageRef) {
	ctx = context.WithoutCancel(ctx)
	for _, ref := range refs {
		if ref == "" {
			continue
		}
		if err := u.assets.Delete(ctx, ref); err != nil {
			u.logger.WarnContext(ctx, "err_removeImages_assets.Delete",
				slog.String("ref", string(ref)),
				slog.String("err", err.Error()))
		}
	}
}

// replacedImage returns the prior ref when it is superseded by next.
func replacedImage(prior, next ImageRef) []ImageRef {
	if prior == "" || next == "" || prior == next {
		return nil
	}
	return []ImageRef{prior}
}

func appendImages(existing, added []ImageRef) []ImageRef {
	out := slices.Clone(existing)
	return append(out, added...)
}

package usecase

import (
	"context"
	"image"
	"log/slog"
	"strings"
	"time"

	"github.com/cenkalti/dominantcolor"
	"github.com/google/uuid"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/webp"
)

type Banner struct {
	ID       uuid.UUID
	Title    string
	Subtitle string
	Image    ImageRef
	// Color is the dominant color of the image as #rrggbb, used as the
	// placeholder background while the image loads.
	Color     string
	Link      string
	Status    string
	Order     int
	CreatedAt time.Time
	UpdatedAt time.Time
}

type ListBannersOption struct {
	Skip   int
	Limit  int
	Status string
}

func (u Usecase) ListBanners(ctx context.Context, opt ListBannersOption) ([]Banner, int, error) {
	return u.repo.ListBanners(ctx, opt)
}

func (u Usecase) GetBannerByID(ctx context.Context, id uuid.UUID) (Banner, error) {
	return u.repo.GetBannerByID(ctx, id)
}

func normalizeBanner(b *Banner) error {
	b.Title = strings.TrimSpace(b.Title)
	b.Link = strings.TrimSpace(b.Link)
	if b.Status == "" {
		b.Status = StatusActive
	}
	if b.Status != StatusActive && b.Status != StatusInactive {
		return ErrValidation{Field: "status", Code: CodeInvalid, Message: "status must be active or inactive"}
	}
	return nil
}

// CreateBanner requires an image.
func (u Usecase) CreateBanner(ctx context.Context, b Banner, image *Upload) (Banner, error) {
	if image == nil {
		return Banner{}, ErrValidation{Field: "image", Code: CodeRequired, Message: "image is required"}
	}
	if err := normalizeBanner(&b); err != nil {
		return Banner{}, err
	}

	ref, err := u.storeUpload(ctx, AssetBanners, image)
	if err != nil {
		return Banner{}, err
	}
	b.Image = ref
	b.Color = u.imageColor(ctx, ref)

	created, err := u.repo.CreateBanner(ctx, b)
	if err != nil {
		u.logger.ErrorContext(ctx, "err_CreateBanner_repo.CreateBanner", slog.String("err", err.Error()))
		u.removeImages(ctx, []ImageRef{ref})
		return Banner{}, err
	}
	return created, nil
}

type UpdateBannerRequest struct {
	Title    *string
	Subtitle *string
	Link     *string
	Status   *string
	Order    *int
	Image    *Upload
}

func (u Usecase) UpdateBanner(ctx context.Context, id uuid.UUID, req UpdateBannerRequest) (Banner, error) {
	b, err := u.repo.GetBannerByID(ctx, id)
	if err != nil {
		return Banner{}, err
	}

	if req.Title != nil {
		b.Title = *req.Title
	}
	if req.Subtitle != nil {
		b.Subtitle = *req.Subtitle
	}
	if req.Link != nil {
		b.Link = *req.Link
	}
	if req.Status != nil {
		b.Status = *req.Status
	}
	if req.Order != nil {
		b.Order = *req.Order
	}
	if err := normalizeBanner(&b); err != nil {
		return Banner{}, err
	}

	ref, err := u.storeUpload(ctx, AssetBanners, req.Image)
	if err != nil {
		return Banner{}, err
	}
	prior := b.Image
	if ref != "" {
		b.Image = ref
		b.Color = u.imageColor(ctx, ref)
	}

	updated, err := u.repo.UpdateBanner(ctx, b)
	if err != nil {
		u.logger.ErrorContext(ctx, "err_UpdateBanner_repo.UpdateBanner",
			slog.String("id", id.String()),
			slog.String("err", err.Error()))
		u.removeImages(ctx, []ImageRef{ref})
		return Banner{}, err
	}

	u.removeImages(ctx, replacedImage(prior, ref))
	return updated, nil
}

func (u Usecase) DeleteBanner(ctx context.Context, id uuid.UUID) error {
	b, err := u.repo.GetBannerByID(ctx, id)
	if err != nil {
		if isNotFound(err) {
			return nil
		}
		return err
	}

	u.removeImages(ctx, []ImageRef{b.Image})

	if err := u.repo.DeleteBanner(ctx, id); err != nil && !isNotFound(err) {
		return err
	}
	return nil
}

// imageColor is best-effort, an undecodable image yields "".
func (u Usecase) imageColor(ctx context.Context, ref ImageRef) string {
	rc, err := u.assets.Open(ctx, ref)
	if err != nil {
		u.logger.WarnContext(ctx, "err_imageColor_assets.Open", slog.String("ref", string(ref)), slog.String("err", err.Error()))
		return ""
	}
	defer rc.Close()

	img, _, err := image.Decode(rc)
	if err != nil {
		u.logger.WarnContext(ctx, "err_imageColor_image.Decode", slog.String("ref", string(ref)), slog.String("err", err.Error()))
		return ""
	}
	return dominantcolor.Hex(dominantcolor.Find(img))
}

package server

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/tusharelectronics/storefront/internal/config"
	"github.com/tusharelectronics/storefront/internal/usecase"
)

type ReconcileRequest struct {
	DryRun      bool     `json:"dry_run"`
	GracePeriod string   `json:"grace_period"`
	Categories  []string `json:"categories" validate:"omitempty,dive,oneof=products categories articles banners testimonials"`
	// RunNow sweeps inside the request instead of queueing it.
	RunNow bool `json:"run_now"`
}

type ReconcileReport struct {
	Scanned int      `json:"scanned"`
	Orphans []string `json:"orphans"`
	Removed []string `json:"removed"`
	Missing []string `json:"missing"`
	DryRun  bool     `json:"dry_run"`
}

func refStrings(refs []usecase.ImageRef) []string {
	out := make([]string, 0, len(refs))
	for _, r := range refs {
		out = append(out, string(r))
	}
	return out
}

func (s *Server) ReconcileAssets(ctx echo.Context) error {
	var req ReconcileRequest
	if err := ctx.Bind(&req); err != nil {
		return ctx.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}
	if err := s.validator.Struct(req); err != nil {
		return ctx.JSON(http.StatusUnprocessableEntity, map[string]string{"error": err.Error()})
	}

	opt := usecase.ReconcileOption{
		DryRun:      req.DryRun,
		GracePeriod: config.EnvDuration(config.ENV_KEY_RECONCILE_GRACE_PERIOD, config.DEFAULT_RECONCILE_GRACE_PERIOD),
	}
	if req.GracePeriod != "" {
		d, err := time.ParseDuration(req.GracePeriod)
		if err != nil || d < 0 {
			return ctx.JSON(http.StatusUnprocessableEntity, map[string]string{"error": "grace_period must be a duration such as 30m"})
		}
		opt.GracePeriod = d
	}
	for _, c := range req.Categories {
		opt.Categories = append(opt.Categories, usecase.AssetCategory(c))
	}

	if !req.RunNow {
		if err := s.server.ScheduleAssetReconcile(ctx.Request().Context(), opt); err != nil {
			return s.errorResponse(ctx, "ReconcileAssets", err, req)
		}
		return ctx.JSON(http.StatusAccepted, Res{Message: "Reconciliation queued"})
	}

	report, err := s.server.ReconcileAssets(ctx.Request().Context(), opt)
	if err != nil {
		return s.errorResponse(ctx, "ReconcileAssets", err, req)
	}
	return ctx.JSON(http.StatusOK, Res{Data: ReconcileReport{
		Scanned: report.Scanned,
		Orphans: refStrings(report.Orphans),
		Removed: refStrings(report.Removed),
		Missing: refStrings(report.Missing),
		DryRun:  req.DryRun,
	}})
}

// ServeUpload redirects to a short-lived URL on the object store. Local
// uploads are served by the static middleware instead.
func (s *Server) ServeUpload(ctx echo.Context) error {
	ref := usecase.NewImageRef(usecase.AssetCategory(ctx.Param("category")), ctx.Param("filename"))
	if !ref.Valid() {
		return echo.ErrNotFound
	}

	rctx := ctx.Request().Context()
	ok, err := s.server.ImageExists(rctx, ref)
	if err != nil {
		return s.errorResponse(ctx, "ServeUpload", err, nil)
	}
	if !ok {
		return echo.ErrNotFound
	}

	url, err := s.presigner.GetPresignedURL(rctx, ref)
	if err != nil {
		return s.errorResponse(ctx, "ServeUpload", err, nil)
	}
	ctx.Response().Header().Set("Cache-Control", "private, max-age=60")
	return ctx.Redirect(http.StatusFound, url)
}

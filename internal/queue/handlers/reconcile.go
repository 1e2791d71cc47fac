package handlers

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/hibiken/asynq"
)

type reconcileResult struct {
	Scanned int      `json:"scanned"`
	Orphans []string `json:"orphans"`
	Removed []string `json:"removed"`
	Missing []string `json:"missing"`
}

// HandleAssetReconcile runs a sweep and stores the report as the task result
// so it can be inspected from the asynq dashboard.
func (h *Handlers) HandleAssetReconcile(ctx context.Context, task *asynq.Task) error {
	opt, err := parseAssetReconcile(task)
	if err != nil {
		h.logger.ErrorContext(ctx, "err_HandleAssetReconcile_parse", slog.String("err", err.Error()))
		return err
	}

	report, err := h.usecase.ReconcileAssets(ctx, opt)
	if err != nil {
		h.logger.ErrorContext(ctx, "err_HandleAssetReconcile_usecase.ReconcileAssets", slog.String("err", err.Error()))
		return err
	}

	if w := task.ResultWriter(); w != nil {
		res := reconcileResult{Scanned: report.Scanned}
		for _, r := range report.Orphans {
			res.Orphans = append(res.Orphans, string(r))
		}
		for _, r := range report.Removed {
			res.Removed = append(res.Removed, string(r))
		}
		for _, r := range report.Missing {
			res.Missing = append(res.Missing, string(r))
		}
		if b, err := json.Marshal(res); err == nil {
			if _, err := w.Write(b); err != nil {
				h.logger.WarnContext(ctx, "err_HandleAssetReconcile_ResultWriter.Write", slog.String("err", err.Error()))
			}
		}
	}
	return nil
}

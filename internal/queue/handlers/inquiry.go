package handlers

import (
	"context"
	"log/slog"

	"github.com/hibiken/asynq"
)

// HandleInquiryNotification sends the owner notification and customer reply
// for a stored inquiry.
func (h *Handlers) HandleInquiryNotification(ctx context.Context, task *asynq.Task) error {
	id, err := parseInquiryNotification(task)
	if err != nil {
		h.logger.ErrorContext(ctx, "err_HandleInquiryNotification_parse", slog.String("err", err.Error()))
		return err
	}

	if err := h.usecase.SendInquiryEmails(ctx, id); err != nil {
		h.logger.ErrorContext(ctx, "err_HandleInquiryNotification_usecase.SendInquiryEmails",
			slog.String("inquiry_id", id.String()),
			slog.String("err", err.Error()))
		return err
	}

	h.logger.InfoContext(ctx, "inquiry_notification_sent", slog.String("inquiry_id", id.String()))
	return nil
}

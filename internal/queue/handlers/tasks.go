package handlers

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"

	"github.com/tusharelectronics/storefront/internal/config"
	"github.com/tusharelectronics/storefront/internal/usecase"
)

const (
	TypeInquiryNotification = "email:inquiry"
	TypeAssetReconcile      = "assets:reconcile"
)

type InquiryNotificationPayload struct {
	InquiryID string `json:"inquiry_id"`
}

type AssetReconcilePayload struct {
	DryRun      bool     `json:"dry_run"`
	GracePeriod string   `json:"grace_period,omitempty"`
	Categories  []string `json:"categories,omitempty"`
}

func NewInquiryNotificationTask(id uuid.UUID, opts ...asynq.Option) (*asynq.Task, error) {
	b, err := json.Marshal(InquiryNotificationPayload{InquiryID: id.String()})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal task payload: %w", err)
	}
	return asynq.NewTask(TypeInquiryNotification, b, opts...), nil
}

func NewAssetReconcileTask(opt usecase.ReconcileOption, opts ...asynq.Option) (*asynq.Task, error) {
	p := AssetReconcilePayload{DryRun: opt.DryRun}
	if opt.GracePeriod > 0 {
		p.GracePeriod = opt.GracePeriod.String()
	}
	for _, c := range opt.Categories {
		p.Categories = append(p.Categories, string(c))
	}

	b, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal task payload: %w", err)
	}
	return asynq.NewTask(TypeAssetReconcile, b, opts...), nil
}

// parseInquiryNotification fails with asynq.SkipRetry for payloads no retry
// can fix.
func parseInquiryNotification(task *asynq.Task) (uuid.UUID, error) {
	var p InquiryNotificationPayload
	if err := json.Unmarshal(task.Payload(), &p); err != nil {
		return uuid.Nil, fmt.Errorf("invalid payload: %v: %w", err, asynq.SkipRetry)
	}
	id, err := uuid.Parse(p.InquiryID)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid inquiry id %q: %w", p.InquiryID, asynq.SkipRetry)
	}
	return id, nil
}

// parseAssetReconcile treats an empty payload as a scheduled sweep with the
// configured grace period.
func parseAssetReconcile(task *asynq.Task) (usecase.ReconcileOption, error) {
	opt := usecase.ReconcileOption{
		GracePeriod: config.EnvDuration(config.ENV_KEY_RECONCILE_GRACE_PERIOD, config.DEFAULT_RECONCILE_GRACE_PERIOD),
	}

	var p AssetReconcilePayload
	if len(task.Payload()) > 0 {
		if err := json.Unmarshal(task.Payload(), &p); err != nil {
			return opt, fmt.Errorf("invalid payload: %v: %w", err, asynq.SkipRetry)
		}
	}

	opt.DryRun = p.DryRun
	if p.GracePeriod != "" {
		d, err := time.ParseDuration(p.GracePeriod)
		if err != nil || d < 0 {
			return opt, fmt.Errorf("invalid grace period %q: %w", p.GracePeriod, asynq.SkipRetry)
		}
		opt.GracePeriod = d
	}
	for _, c := range p.Categories {
		cat := usecase.AssetCategory(c)
		if !cat.Valid() {
			return opt, fmt.Errorf("unknown asset category %q: %w", c, asynq.SkipRetry)
		}
		opt.Categories = append(opt.Categories, cat)
	}
	return opt, nil
}

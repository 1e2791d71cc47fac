package usecase

import (
	"context"
	"log/slog"
	"net/mail"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/tusharelectronics/storefront/internal/config"
)

const (
	InquiryNew       = "new"
	InquiryContacted = "contacted"
	InquiryClosed    = "closed"
)

func InquiryStatuses() []string {
	return []string{InquiryNew, InquiryContacted, InquiryClosed}
}

type Inquiry struct {
	ID         uuid.UUID
	ProductIDs uuid.UUIDs
	Name       string
	Email      string
	Phone      string
	Message    string
	Status     string
	CreatedAt  time.Time

	Products []Product
}

type ListInquiriesOption struct {
	Skip   int
	Limit  int
	Status string
}

type InquiryList struct {
	Inquiries []Inquiry
	Total     int
	// Stats counts inquiries per status across all pages.
	Stats map[string]int
}

func (u Usecase) ListInquiries(ctx context.Context, page int, status string) (InquiryList, error) {
	if status == "all" {
		status = ""
	}
	skip, limit := Paginate(page, config.PAGE_SIZE_INQUIRIES)
	list, total, err := u.repo.ListInquiries(ctx, ListInquiriesOption{
		Skip:   skip,
		Limit:  limit,
		Status: status,
	})
	if err != nil {
		return InquiryList{}, err
	}

	stats, err := u.repo.CountInquiriesByStatus(ctx)
	if err != nil {
		return InquiryList{}, err
	}
	for _, s := range InquiryStatuses() {
		if _, ok := stats[s]; !ok {
			stats[s] = 0
		}
	}

	return InquiryList{Inquiries: list, Total: total, Stats: stats}, nil
}

func (u Usecase) GetInquiryByID(ctx context.Context, id uuid.UUID) (Inquiry, error) {
	return u.repo.GetInquiryByID(ctx, id)
}

// CreateInquiry stores a customer inquiry. Product ids that do not resolve
// to a product are dropped.
func (u Usecase) CreateInquiry(ctx context.Context, in Inquiry) (Inquiry, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = normalizeEmail(in.Email)
	in.Phone = strings.TrimSpace(in.Phone)
	in.Message = strings.TrimSpace(in.Message)
	in.Status = InquiryNew

	switch {
	case in.Name == "":
		return Inquiry{}, ErrValidation{Field: "name", Code: CodeRequired, Message: "name is required"}
	case in.Phone == "":
		return Inquiry{}, ErrValidation{Field: "phone", Code: CodeRequired, Message: "phone is required"}
	case in.Message == "":
		return Inquiry{}, ErrValidation{Field: "message", Code: CodeRequired, Message: "message is required"}
	}
	if _, err := mail.ParseAddress(in.Email); err != nil {
		return Inquiry{}, ErrValidation{Field: "email", Code: CodeInvalid, Message: "email is invalid"}
	}

	ids := slices.Compact(slices.SortedFunc(slices.Values(in.ProductIDs), func(a, b uuid.UUID) int {
		return strings.Compare(a.String(), b.String())
	}))
	in.ProductIDs = uuid.UUIDs{}
	if len(ids) > 0 {
		products, _, err := u.repo.ListProducts(ctx, ListProductsOption{IDs: ids, Limit: len(ids)})
		if err != nil {
			return Inquiry{}, err
		}
		for _, p := range products {
			in.ProductIDs = append(in.ProductIDs, p.ID)
		}
		in.Products = products
	}

	created, err := u.repo.CreateInquiry(ctx, in)
	if err != nil {
		return Inquiry{}, err
	}
	return created, nil
}

func (u Usecase) UpdateInquiryStatus(ctx context.Context, id uuid.UUID, status string) (Inquiry, error) {
	if !slices.Contains(InquiryStatuses(), status) {
		return Inquiry{}, ErrValidation{Field: "status", Code: CodeInvalid, Message: "status must be one of new, contacted, closed"}
	}
	return u.repo.UpdateInquiryStatus(ctx, id, status)
}

func (u Usecase) DeleteInquiry(ctx context.Context, id uuid.UUID) error {
	if err := u.repo.DeleteInquiry(ctx, id); err != nil && !isNotFound(err) {
		return err
	}
	return nil
}

// DispatchInquiryNotification hands the inquiry emails to the queue, or
// sends them directly when no queue is configured. Both run in the
// background so the caller never waits on redis or SMTP. Failures are only
// logged.
func (u Usecase) DispatchInquiryNotification(ctx context.Context, id uuid.UUID) {
	ctx = context.WithoutCancel(ctx)

	go func() {
		if u.dispatcher != nil {
			if err := u.dispatcher.EnqueueInquiryNotification(ctx, id); err != nil {
				u.logger.ErrorContext(ctx, "err_DispatchInquiryNotification_dispatcher.EnqueueInquiryNotification",
					slog.String("inquiry_id", id.String()),
					slog.String("err", err.Error()))
			}
			return
		}

		if err := u.SendInquiryEmails(ctx, id); err != nil {
			u.logger.ErrorContext(ctx, "err_DispatchInquiryNotification_SendInquiryEmails",
				slog.String("inquiry_id", id.String()),
				slog.String("err", err.Error()))
		}
	}()
}

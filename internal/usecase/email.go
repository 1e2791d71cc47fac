package usecase

import (
	"bytes"
	"context"
	"embed"
	"encoding/base64"
	"errors"
	"fmt"
	"html/template"
	"time"

	"github.com/google/uuid"
	"github.com/skip2/go-qrcode"
)

type Email struct {
	To          []string
	From        string
	CC          []string
	BCC         []string
	ReplyTo     string
	Subject     string
	Body        string
	Attachments []EmailAttachment
}

type EmailAttachment struct {
	Name        string
	ContentType string
	Content     []byte
}

// SendInquiryEmails notifies the shop owner and sends the customer an
// acknowledgement. Both are attempted even if one fails.
func (u Usecase) SendInquiryEmails(ctx context.Context, id uuid.UUID) error {
	if u.mailer == nil {
		return errors.New("mailer not configured")
	}

	in, err := u.repo.GetInquiryByID(ctx, id)
	if err != nil {
		return err
	}

	data := u.buildInquiryEmailData(in)

	var errs []error
	if u.settings.AdminEmail != "" {
		body, err := renderEmail("templates/inquiry_admin.html", data)
		if err != nil {
			return err
		}
		if err := u.mailer.SendEmail(ctx, Email{
			To:      []string{u.settings.AdminEmail},
			From:    u.settings.EmailFrom,
			ReplyTo: in.Email,
			Subject: "New Product Inquiry from " + in.Name,
			Body:    body,
		}); err != nil {
			errs = append(errs, fmt.Errorf("admin notification: %w", err))
		}
	}

	body, err := renderEmail("templates/inquiry_reply.html", data)
	if err != nil {
		return errors.Join(append(errs, err)...)
	}
	if err := u.mailer.SendEmail(ctx, Email{
		To:      []string{in.Email},
		From:    u.settings.EmailFrom,
		Subject: "Thank you for your inquiry - " + u.settings.SiteName,
		Body:    body,
	}); err != nil {
		errs = append(errs, fmt.Errorf("auto reply: %w", err))
	}

	return errors.Join(errs...)
}

type InquiryEmailData struct {
	Title       string
	URL         string
	CurrentYear string

	SiteName  string
	SitePhone string
	SiteEmail string

	InquiryID  string
	Name       string
	Email      string
	Phone      string
	Message    string
	Products   []string
	ReceivedAt string
	QRCodeURL  string
}

func (u Usecase) buildInquiryEmailData(in Inquiry) InquiryEmailData {
	products := make([]string, 0, len(in.Products))
	for _, p := range in.Products {
		products = append(products, p.Name)
	}

	var qrCodeURL string
	if png, err := qrcode.Encode(in.ID.String(), qrcode.Low, 128); err == nil {
		qrCodeURL = "data:image/png;base64," + base64.StdEncoding.EncodeToString(png)
	}

	return InquiryEmailData{
		Title:       "Product Inquiry",
		URL:         u.settings.SiteURL,
		CurrentYear: time.Now().Format("2006"),
		SiteName:    u.settings.SiteName,
		SitePhone:   u.settings.SitePhone,
		SiteEmail:   u.settings.AdminEmail,
		InquiryID:   in.ID.String(),
		Name:        in.Name,
		Email:       in.Email,
		Phone:       in.Phone,
		Message:     in.Message,
		Products:    products,
		ReceivedAt:  in.CreatedAt.Format("2006-01-02 03:04 PM"),
		QRCodeURL:   qrCodeURL,
	}
}

//go:embed templates/*
var templates embed.FS

func renderEmail(name string, data any) (string, error) {
	tmpl, err := template.
		New("base.html").
		Funcs(template.FuncMap{
			"safeURL": func(s string) template.URL {
				return template.URL(s)
			},
		}).
		ParseFS(templates, "templates/base.html", name)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

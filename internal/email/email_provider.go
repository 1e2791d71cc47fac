package email

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"sync"

	"github.com/wneessen/go-mail"

	"github.com/tusharelectronics/storefront/internal/usecase"
)

var _ usecase.Mailer = (*EmailProvider)(nil)

const queueSize = 100

// NewEmailProvider builds an SMTP sender. Messages are queued and delivered
// by a single background worker, so SendEmail returns before the SMTP
// round trip.
func NewEmailProvider(smtpHost, smtpUser, smtpPassword, smtpPort string, logger *slog.Logger) (*EmailProvider, error) {
	if smtpHost == "" || smtpUser == "" || smtpPassword == "" || smtpPort == "" {
		return nil, errors.New("email: SMTP host, port, user and password must be provided")
	}

	port, err := strconv.Atoi(smtpPort)
	if err != nil {
		return nil, fmt.Errorf("email: invalid SMTP port: %w", err)
	}

	client, err := mail.NewClient(
		smtpHost,
		mail.WithPort(port),
		mail.WithUsername(smtpUser),
		mail.WithPassword(smtpPassword),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
	)
	if err != nil {
		return nil, fmt.Errorf("email: failed to create SMTP client: %w", err)
	}

	if logger == nil {
		logger = slog.Default()
	}

	provider := &EmailProvider{
		c:      make(chan *mail.Msg, queueSize),
		client: client,
		logger: logger,
	}

	provider.wg.Add(1)
	go provider.sendEmailWorker()

	return provider, nil
}

type EmailProvider struct {
	c      chan *mail.Msg
	client *mail.Client
	logger *slog.Logger
	wg     sync.WaitGroup
	once   sync.Once
}

func (e *EmailProvider) SendEmail(ctx context.Context, email usecase.Email) error {
	msg, err := buildMsg(email)
	if err != nil {
		return err
	}

	select {
	case e.c <- msg:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close stops accepting mail and waits for queued messages to be sent.
func (e *EmailProvider) Close() error {
	e.once.Do(func() { close(e.c) })
	e.wg.Wait()
	return nil
}

func (e *EmailProvider) sendEmailWorker() {
	defer e.wg.Done()
	for msg := range e.c {
		if err := e.client.DialAndSend(msg); err != nil {
			e.logger.Error("err_sendEmailWorker_client.DialAndSend",
				slog.Any("subject", msg.GetGenHeader(mail.HeaderSubject)),
				slog.String("err", err.Error()))
		}
	}
}

func buildMsg(email usecase.Email) (*mail.Msg, error) {
	if len(email.To) == 0 {
		return nil, errors.New("email: no recipient")
	}

	msg := mail.NewMsg()
	if err := msg.From(email.From); err != nil {
		return nil, fmt.Errorf("email: invalid sender: %w", err)
	}
	if err := msg.To(email.To...); err != nil {
		return nil, fmt.Errorf("email: invalid recipient: %w", err)
	}
	if len(email.CC) > 0 {
		if err := msg.Cc(email.CC...); err != nil {
			return nil, fmt.Errorf("email: invalid cc: %w", err)
		}
	}
	if len(email.BCC) > 0 {
		if err := msg.Bcc(email.BCC...); err != nil {
			return nil, fmt.Errorf("email: invalid bcc: %w", err)
		}
	}
	if email.ReplyTo != "" {
		if err := msg.ReplyTo(email.ReplyTo); err != nil {
			return nil, fmt.Errorf("email: invalid reply-to: %w", err)
		}
	}
	msg.Subject(email.Subject)
	msg.SetBodyString(mail.TypeTextHTML, email.Body)

	for _, file := range email.Attachments {
		if err := msg.AttachReader(
			file.Name,
			bytes.NewReader(file.Content),
			mail.WithFileContentType(mail.ContentType(file.ContentType)),
		); err != nil {
			return nil, fmt.Errorf("email: failed to attach %s: %w", file.Name, err)
		}
	}

	return msg, nil
}

package usecase

import (
	"context"
	"net/mail"
	"time"

	"github.com/google/uuid"
)

type Subscriber struct {
	ID        uuid.UUID
	Email     string
	CreatedAt time.Time
}

// Subscribe adds email to the newsletter list. An address that is already
// subscribed is a conflict.
func (u Usecase) Subscribe(ctx context.Context, email string) (Subscriber, error) {
	email = normalizeEmail(email)
	if _, err := mail.ParseAddress(email); err != nil {
		return Subscriber{}, ErrValidation{Field: "email", Code: CodeInvalid, Message: "email is invalid"}
	}

	if _, err := u.repo.GetSubscriberByEmail(ctx, email); err == nil {
		return Subscriber{}, ErrConflict{Code: "ALREADY_SUBSCRIBED", Message: "email already subscribed"}
	} else if !isNotFound(err) {
		return Subscriber{}, err
	}

	return u.repo.CreateSubscriber(ctx, Subscriber{Email: email})
}

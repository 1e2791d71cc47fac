package database

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/tusharelectronics/storefront/internal/usecase"
)

type Subscriber struct {
	ID        uuid.UUID `gorm:"column:id;primaryKey;type:uuid;default:gen_random_uuid()"`
	Email     string    `gorm:"column:email;type:varchar(255);not null;uniqueIndex"`
	CreatedAt time.Time `gorm:"column:created_at"`
}

func (Subscriber) TableName() string {
	return "subscribers"
}

func (s *service) CreateSubscriber(ctx context.Context, subscriber usecase.Subscriber) (usecase.Subscriber, error) {
	sub := Subscriber{Email: subscriber.Email}
	if err := s.db.
		WithContext(ctx).
		Clauses(clause.Returning{}).
		Create(&sub).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return usecase.Subscriber{}, usecase.ErrConflict{
				Code:    "ALREADY_SUBSCRIBED",
				Message: "email already subscribed",
			}
		}
		return usecase.Subscriber{}, err
	}
	return sub.ConvertToUsecase(), nil
}

func (s *service) GetSubscriberByEmail(ctx context.Context, email string) (usecase.Subscriber, error) {
	var sub Subscriber
	if err := s.db.
		WithContext(ctx).
		First(&sub, "email = ?", email).Error; err != nil {
		return usecase.Subscriber{}, translate(err, uuid.Nil, "subscriber")
	}
	return sub.ConvertToUsecase(), nil
}

// Convert core model to Usecase
func (sub Subscriber) ConvertToUsecase() usecase.Subscriber {
	return usecase.Subscriber{
		ID:        sub.ID,
		Email:     sub.Email,
		CreatedAt: sub.CreatedAt,
	}
}

package email

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wneessen/go-mail"

	"github.com/tusharelectronics/storefront/internal/usecase"
)

func TestBuildMsg(t *testing.T) {
	msg, err := buildMsg(usecase.Email{
		To:      []string{"owner@example.com"},
		From:    "shop@example.com",
		ReplyTo: "asha@example.com",
		Subject: "New Product Inquiry from Asha",
		Body:    "<p>hello</p>",
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"New Product Inquiry from Asha"}, msg.GetGenHeader(mail.HeaderSubject))
}

func TestBuildMsg_Invalid(t *testing.T) {
	_, err := buildMsg(usecase.Email{From: "shop@example.com"})
	assert.Error(t, err)

	_, err = buildMsg(usecase.Email{
		To:   []string{"owner@example.com"},
		From: "not an address",
	})
	assert.ErrorContains(t, err, "invalid sender")
}

func TestNewEmailProvider_RequiresSettings(t *testing.T) {
	_, err := NewEmailProvider("", "user", "pass", "587", nil)
	assert.Error(t, err)

	_, err = NewEmailProvider("smtp.example.com", "user", "pass", "smtp", nil)
	assert.ErrorContains(t, err, "invalid SMTP port")
}

package usecase_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tusharelectronics/storefront/internal/usecase"
)

func age(t *testing.T, f fixture, ref usecase.ImageRef, d time.Duration) {
	t.Helper()
	old := time.Now().Add(-d)
	p := filepath.Join(f.root, string(ref.Category()), ref.Filename())
	require.NoError(t, os.Chtimes(p, old, old))
}

func TestReconcileAssets(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	c := f.category(t)

	p, err := f.uc.CreateProduct(ctx, usecase.Product{Name: "Fan", CategoryID: c.ID},
		[]usecase.Upload{jpeg("a.jpg")})
	require.NoError(t, err)
	kept := p.Images[0]
	age(t, f, kept, 2*time.Hour)

	orphan, err := f.store.Save(ctx, usecase.AssetProducts, jpeg("orphan.jpg"))
	require.NoError(t, err)
	age(t, f, orphan, 2*time.Hour)

	fresh, err := f.store.Save(ctx, usecase.AssetProducts, jpeg("fresh.jpg"))
	require.NoError(t, err)

	missing := usecase.NewImageRef(usecase.AssetBanners, "image-1-1.png")
	f.repo.refs[usecase.AssetBanners] = []usecase.ImageRef{missing}

	opt := usecase.ReconcileOption{GracePeriod: time.Hour}

	report, err := f.uc.ReconcileAssets(ctx, usecase.ReconcileOption{GracePeriod: time.Hour, DryRun: true})
	require.NoError(t, err)
	assert.Equal(t, []usecase.ImageRef{orphan}, report.Orphans)
	assert.Empty(t, report.Removed)
	assert.True(t, f.exists(t, orphan))

	report, err = f.uc.ReconcileAssets(ctx, opt)
	require.NoError(t, err)
	assert.Equal(t, 3, report.Scanned)
	assert.Equal(t, []usecase.ImageRef{orphan}, report.Removed)
	assert.Equal(t, []usecase.ImageRef{missing}, report.Missing)

	assert.False(t, f.exists(t, orphan))
	assert.True(t, f.exists(t, kept))
	assert.True(t, f.exists(t, fresh))

	report, err = f.uc.ReconcileAssets(ctx, opt)
	require.NoError(t, err)
	assert.Empty(t, report.Removed)
}

func TestScheduleAssetReconcile_NoQueue(t *testing.T) {
	f := newFixture(t)

	err := f.uc.ScheduleAssetReconcile(context.Background(), usecase.ReconcileOption{})

	var ce usecase.ErrConflict
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, "QUEUE_UNAVAILABLE", ce.Code)
}

func TestDispatchInquiryNotification_DoesNotWaitForQueue(t *testing.T) {
	d := &gatedDispatcher{release: make(chan struct{}), enqueued: make(chan uuid.UUID, 1)}
	uc := usecase.New(newMemRepo(), nil, nil, d, usecase.Settings{}, discardLogger())

	ctx, cancel := context.WithCancel(context.Background())
	id := uuid.New()

	returned := make(chan struct{})
	go func() {
		uc.DispatchInquiryNotification(ctx, id)
		close(returned)
	}()

	select {
	case <-returned:
	case <-time.After(time.Second):
		t.Fatal("dispatch blocked on the queue")
	}

	// The request is over by the time redis answers.
	cancel()
	close(d.release)

	select {
	case got := <-d.enqueued:
		assert.Equal(t, id, got)
	case <-time.After(time.Second):
		t.Fatal("inquiry was never enqueued")
	}
}

func TestSendInquiryEmails(t *testing.T) {
	ctx := context.Background()
	repo := newMemRepo()
	mailer := &recordingMailer{}
	uc := usecase.New(repo, nil, mailer, nil, usecase.Settings{
		SiteName:   "Tushar Electronics",
		EmailFrom:  "shop@example.com",
		AdminEmail: "owner@example.com",
	}, discardLogger())

	in, err := uc.CreateInquiry(ctx, usecase.Inquiry{
		Name:    "Asha",
		Email:   "asha@example.com",
		Phone:   "9876543210",
		Message: "Do you deliver?",
	})
	require.NoError(t, err)

	require.NoError(t, uc.SendInquiryEmails(ctx, in.ID))

	require.Len(t, mailer.sent, 2)
	admin, reply := mailer.sent[0], mailer.sent[1]

	assert.Equal(t, []string{"owner@example.com"}, admin.To)
	assert.Equal(t, "asha@example.com", admin.ReplyTo)
	assert.Contains(t, admin.Body, "Do you deliver?")

	assert.Equal(t, []string{"asha@example.com"}, reply.To)
	assert.Contains(t, reply.Subject, "Tushar Electronics")
}

func TestSendInquiryEmails_AttemptsBoth(t *testing.T) {
	ctx := context.Background()
	repo := newMemRepo()
	mailer := &recordingMailer{err: errors.New("smtp down")}
	uc := usecase.New(repo, nil, mailer, nil, usecase.Settings{AdminEmail: "owner@example.com"}, discardLogger())

	in, err := uc.CreateInquiry(ctx, usecase.Inquiry{
		Name:    "Asha",
		Email:   "asha@example.com",
		Phone:   "9876543210",
		Message: "Hello",
	})
	require.NoError(t, err)

	err = uc.SendInquiryEmails(ctx, in.ID)
	assert.ErrorContains(t, err, "smtp down")
	assert.Len(t, mailer.sent, 2)
}

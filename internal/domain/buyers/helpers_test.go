package buyers

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"tooma/internal/database"
	"tooma/internal/domain"
	"tooma/internal/domain/payment"
	"tooma/internal/pkg/logging"
	"tooma/internal/pkg/notify"
	"tooma/internal/repository"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type mockGateway struct {
	mock.Mock
}

func (m *mockGateway) Initiate(ctx context.Context, file payment.FileRef, amount, email, callbackURL string) (string, error) {
	args := m.Called(ctx, file, amount, email, callbackURL)
	return args.String(0), args.Error(1)
}

func (m *mockGateway) Verify(ctx context.Context, reference string) (bool, map[string]any) {
	args := m.Called(ctx, reference)
	data, _ := args.Get(1).(map[string]any)
	return args.Bool(0), data
}

type mockNotifier struct {
	mock.Mock
}

func (m *mockNotifier) BuyerRegistered(ctx context.Context, msg notify.BuyerRegistered) {
	m.Called(ctx, msg)
}

func (m *mockNotifier) PaymentReceived(ctx context.Context, msg notify.PaymentReceived) {
	m.Called(ctx, msg)
}

func (m *mockNotifier) NewPurchase(ctx context.Context, msg notify.NewPurchase) {
	m.Called(ctx, msg)
}

type testEnv struct {
	db       *gorm.DB
	files    *repository.FileUploadRepository
	buyers   *repository.BuyerInfoRepository
	gateway  *mockGateway
	notifier *mockNotifier
	svc      *Service
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := database.Connect(fmt.Sprintf("file:buyers_%s?mode=memory&cache=shared", name), logging.Discard())
	require.NoError(t, err)
	require.NoError(t, database.Migrate(context.Background(), db, &domain.FileUpload{}, &domain.BuyerInfo{}))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	env := &testEnv{
		db:       db,
		files:    repository.NewFileUploadRepository(db),
		buyers:   repository.NewBuyerInfoRepository(db),
		gateway:  &mockGateway{},
		notifier: &mockNotifier{},
	}
	env.svc = NewService(env.buyers, env.files, env.gateway, env.notifier, logging.Discard(), Settings{
		APIBaseURL:  "https://api.tooma.test/api/v1",
		FrontendURL: "http://localhost:3001/",
		Currency:    "GHS",
	})
	return env
}

func (e *testEnv) seedFile(t *testing.T, uniqueID, fileKey string, amount *string) *domain.FileUpload {
	t.Helper()
	f := &domain.FileUpload{
		UserID:        7,
		OwnerEmail:    "owner@tooma.test",
		UniqueID:      uniqueID,
		FileKey:       fileKey,
		Title:         "Beat pack",
		PaymentAmount: amount,
		ExpiresAt:     time.Now().Add(time.Hour),
		UploadedAt:    time.Now(),
	}
	require.NoError(t, e.files.Create(context.Background(), f))
	return f
}

func (e *testEnv) seedBuyer(t *testing.T, f *domain.FileUpload, email string) *domain.BuyerInfo {
	t.Helper()
	b := &domain.BuyerInfo{
		FileUploadID:  f.ID,
		BuyerEmail:    email,
		BuyerName:     "Ama",
		OrderStatus:   domain.OrderStatusFulfilled,
		PaymentAmount: f.PaymentAmount,
	}
	require.NoError(t, e.buyers.Create(context.Background(), b))
	return b
}

func strPtr(s string) *string { return &s }

func itoa(n int64) string { return fmt.Sprintf("%d", n) }

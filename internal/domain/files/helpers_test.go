package files

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"strings"
	"sync"
	"testing"
	"time"

	"tooma/internal/database"
	"tooma/internal/domain"
	"tooma/internal/domain/payment"
	"tooma/internal/pkg/logging"
	"tooma/internal/pkg/storage"
	"tooma/internal/repository"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

var fixedNow = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

// memStore is an in-memory ObjectStore. With dropPuts set, writes succeed
// but nothing is kept, so later existence probes fail.
type memStore struct {
	mu       sync.Mutex
	objects  map[string][]byte
	types    map[string]string
	signed   int
	dropPuts bool
}

func newMemStore() *memStore {
	return &memStore{objects: map[string][]byte{}, types: map[string]string{}}
}

func (m *memStore) Put(_ context.Context, key string, body io.Reader, _ int64, contentType string) error {
	data, err := io.ReadAll(body)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.dropPuts {
		m.objects[key] = data
		m.types[key] = contentType
	}
	return nil
}

func (m *memStore) Exists(_ context.Context, key string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.objects[key]
	return ok, nil
}

func (m *memStore) PresignGet(_ context.Context, key string, ttl time.Duration) (string, error) {
	if key == "" || ttl <= 0 {
		return "", storage.ErrInvalidParams
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.signed++
	return fmt.Sprintf("https://s3.test/tooma/%s?X-Amz-Expires=%d&n=%d", key, int(ttl.Seconds()), m.signed), nil
}

func (m *memStore) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.objects, key)
	return nil
}

func (m *memStore) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.objects)
}

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

type testEnv struct {
	db      *gorm.DB
	repo    *repository.FileUploadRepository
	store   *memStore
	gateway *mockGateway
	svc     *Service
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := database.Connect(fmt.Sprintf("file:%s?mode=memory&cache=shared", name), logging.Discard())
	require.NoError(t, err)
	require.NoError(t, database.Migrate(context.Background(), db, &domain.FileUpload{}, &domain.BuyerInfo{}))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	repo := repository.NewFileUploadRepository(db)
	store := newMemStore()
	gw := &mockGateway{}
	svc := NewService(repo, store, storage.NewLinkIssuer(store), gw, logging.Discard(), Settings{
		APIBaseURL:      "https://api.tooma.test/api/v1/",
		FrontendURL:     "https://tooma.test",
		UploadPrefix:    "uploads/",
		MaxUploadSize:   1 << 20,
		LinkTTL:         2 * time.Hour,
		FallbackLinkTTL: time.Hour,
	})
	svc.now = func() time.Time { return fixedNow }
	svc.newUniqueID = func() (string, error) { return "AbCdEf1234", nil }

	return &testEnv{db: db, repo: repo, store: store, gateway: gw, svc: svc}
}

// seed inserts a row directly, bypassing CreateUpload.
func (e *testEnv) seed(t *testing.T, f *domain.FileUpload) *domain.FileUpload {
	t.Helper()
	if f.UniqueID == "" {
		f.UniqueID = "Seed000001"
	}
	if f.Title == "" {
		f.Title = "Seeded"
	}
	if f.UploadedAt.IsZero() {
		f.UploadedAt = fixedNow
	}
	if f.ExpiresAt.IsZero() {
		f.ExpiresAt = fixedNow.Add(ExpiryWindow)
	}
	require.NoError(t, e.repo.Create(context.Background(), f))
	if f.FileKey != "" {
		e.store.objects[f.FileKey] = []byte("payload")
	}
	return f
}

func fileHeader(t *testing.T, field, name string, content []byte) *multipart.FileHeader {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	part, err := w.CreateFormFile(field, name)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	form, err := multipart.NewReader(&body, w.Boundary()).ReadForm(1 << 20)
	require.NoError(t, err)
	t.Cleanup(func() { _ = form.RemoveAll() })
	return form.File[field][0]
}

func strPtr(s string) *string { return &s }

package app

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"tooma/internal/config"
	"tooma/internal/database"
	"tooma/internal/domain"
	"tooma/internal/domain/payment"
	jwtsvc "tooma/internal/pkg/jwt"
	"tooma/internal/pkg/jwt/jwttest"
	"tooma/internal/pkg/logging"
	"tooma/internal/pkg/storage"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type memStore struct {
	mu       sync.Mutex
	objects  map[string][]byte
	dropPuts bool
}

func (m *memStore) Put(_ context.Context, key string, body io.Reader, _ int64, _ string) error {
	data, err := io.ReadAll(body)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.dropPuts {
		m.objects[key] = data
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
	if key == "" {
		return "", storage.ErrInvalidParams
	}
	return fmt.Sprintf("https://s3.test/tooma/%s?X-Amz-Expires=%d", key, int(ttl.Seconds())), nil
}

func (m *memStore) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.objects, key)
	return nil
}

type recordingSender struct {
	mu   sync.Mutex
	sent []string
}

func (s *recordingSender) Send(_ context.Context, subject, recipient, _ string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent = append(s.sent, recipient+": "+subject)
	return nil
}

// fakePaystack answers initialize with a checkout URL and treats references
// starting with "ok-" as successful on verify.
type fakePaystack struct {
	mu        sync.Mutex
	initCalls []map[string]any
}

func (f *fakePaystack) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	switch {
	case r.Method == http.MethodPost && r.URL.Path == "/transaction/initialize":
		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)
		f.mu.Lock()
		f.initCalls = append(f.initCalls, body)
		n := len(f.initCalls)
		f.mu.Unlock()
		fmt.Fprintf(w, `{"status":true,"data":{"authorization_url":"https://checkout.paystack.com/c%d"}}`, n)
	case r.Method == http.MethodGet && strings.HasPrefix(r.URL.Path, "/transaction/verify/"):
		ref := strings.TrimPrefix(r.URL.Path, "/transaction/verify/")
		status := "failed"
		if strings.HasPrefix(ref, "ok-") {
			status = "success"
		}
		fmt.Fprintf(w, `{"status":true,"data":{"status":%q,"reference":%q}}`, status, ref)
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

type harness struct {
	router   http.Handler
	db       *gorm.DB
	store    *memStore
	paystack *fakePaystack
	sender   *recordingSender
	app      *App
	token    string
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	log := logging.Discard()

	db, err := database.Connect(fmt.Sprintf("file:app_%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_")), log)
	require.NoError(t, err)
	require.NoError(t, database.Migrate(context.Background(), db, &domain.FileUpload{}, &domain.BuyerInfo{}))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	ps := &fakePaystack{}
	srv := httptest.NewServer(ps)
	t.Cleanup(srv.Close)

	cfg := &config.Config{
		AppEnv:          "test",
		PublicBaseURL:   "https://api.tooma.test",
		FrontendURL:     "http://localhost:3001",
		MaxUploadSize:   1 << 20,
		LinkTTL:         2 * time.Hour,
		FallbackLinkTTL: time.Hour,
		S3:              config.S3Config{UploadPrefix: "uploads/"},
		Paystack:        config.PaystackConfig{SecretKey: "sk_test", BaseURL: srv.URL, Currency: "GHS", Timeout: 5 * time.Second},
	}

	store := &memStore{objects: map[string][]byte{}}
	sender := &recordingSender{}
	j := jwtsvc.New("e2e-secret")
	token := jwttest.Sign(t, "e2e-secret", 7, "owner@tooma.test", time.Hour)

	a := New(Deps{
		Config:  cfg,
		DB:      db,
		Store:   store,
		Gateway: payment.NewClient(payment.Config{SecretKey: cfg.Paystack.SecretKey, BaseURL: cfg.Paystack.BaseURL, Currency: cfg.Paystack.Currency, Timeout: cfg.Paystack.Timeout}, log),
		Sender:  sender,
		JWT:     j,
		Log:     log,
	})

	return &harness{router: a.Router, db: db, store: store, paystack: ps, sender: sender, app: a, token: token}
}

func (h *harness) upload(t *testing.T, fields map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	part, err := w.CreateFormFile("file", "track.mp3")
	require.NoError(t, err)
	_, _ = part.Write([]byte("ID3 some audio"))
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/files", &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+h.token)
	rec := httptest.NewRecorder()
	h.router.ServeHTTP(rec, req)
	return rec
}

func (h *harness) do(method, path, body string) *httptest.ResponseRecorder {
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.router.ServeHTTP(rec, req)
	return rec
}

func TestPaidLifecycle(t *testing.T) {
	h := newHarness(t)

	// Owner uploads with a price.
	rec := h.upload(t, map[string]string{"title": "Single", "message": "Thanks", "payment_amount": "50.00"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var created struct {
		UniqueID       string `json:"unique_id"`
		S3DownloadLink string `json:"s3_download_link"`
		MetadataLink   string `json:"metadata_link"`
		PaymentLink    string `json:"payment_link"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	require.Len(t, created.UniqueID, 10)
	assert.Equal(t, "https://checkout.paystack.com/c1", created.PaymentLink)
	assert.Equal(t, "https://api.tooma.test/api/v1/files/download/"+created.UniqueID, created.MetadataLink)
	assert.Contains(t, created.S3DownloadLink, "X-Amz-Expires=7200")

	require.Len(t, h.paystack.initCalls, 1)
	assert.Equal(t, float64(5000), h.paystack.initCalls[0]["amount"])
	assert.Equal(t, "GHS", h.paystack.initCalls[0]["currency"])
	assert.Equal(t, "owner@tooma.test", h.paystack.initCalls[0]["email"])

	var stored domain.FileUpload
	require.NoError(t, h.db.Where("unique_id = ?", created.UniqueID).First(&stored).Error)
	assert.WithinDuration(t, stored.UploadedAt.Add(7*24*time.Hour), stored.ExpiresAt, time.Second)

	// Metadata link bounces to the shared page.
	rec = h.do(http.MethodGet, "/api/v1/files/download/"+created.UniqueID, "")
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "http://localhost:3001/shared/"+created.UniqueID+"/", rec.Header().Get("Location"))

	// Buyer registers and gets their own checkout link.
	rec = h.do(http.MethodPost, "/api/v1/files/create-buyer-info/"+created.UniqueID, `{"buyer_email":"fan@x.io","buyer_name":"Fan"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var reg struct {
		ID          int64  `json:"id"`
		PaymentLink string `json:"payment_link"`
		OrderStatus string `json:"order_status"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &reg))
	assert.Equal(t, "https://checkout.paystack.com/c2", reg.PaymentLink)
	assert.Equal(t, "fulfilled", reg.OrderStatus)
	assert.Equal(t, fmt.Sprintf("https://api.tooma.test/api/v1/payment-callback/%d", reg.ID), h.paystack.initCalls[1]["callback_url"])

	var buyer domain.BuyerInfo
	require.NoError(t, h.db.First(&buyer, reg.ID).Error)
	assert.Equal(t, "50.00", *buyer.PaymentAmount)

	// Callback without trxref is rejected and changes nothing.
	rec = h.do(http.MethodGet, fmt.Sprintf("/api/v1/payment-callback/%d?reference=ok-1", reg.ID), "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	require.NoError(t, h.db.First(&buyer, reg.ID).Error)
	assert.Empty(t, buyer.PaymentStatus)

	// Gateway confirms, buyer is redirected to their shared page.
	rec = h.do(http.MethodGet, fmt.Sprintf("/api/v1/payment-callback/%d?reference=ok-1&trxref=ok-1", reg.ID), "")
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, fmt.Sprintf("http://localhost:3001/shared/%s/%d/", created.UniqueID, reg.ID), rec.Header().Get("Location"))
	require.NoError(t, h.db.First(&buyer, reg.ID).Error)
	assert.Equal(t, domain.BuyerPaymentPaid, buyer.PaymentStatus)

	// Returning buyer resumes by email.
	rec = h.do(http.MethodPost, "/api/v1/files/verify-buyer-email/"+created.UniqueID, `{"buyer_email":"fan@x.io"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"payment_status":"paid"`)

	// Download info is re-signed on request.
	rec = h.do(http.MethodGet, "/api/v1/get-presigned-url/"+created.UniqueID, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"payment_amount":"50.00"`)

	// Buyer got a confirmation and a receipt, owner a purchase notice.
	h.app.Notifier.Wait()
	assert.Contains(t, h.sender.sent, "fan@x.io: Your request for Single")
	assert.Contains(t, h.sender.sent, "fan@x.io: Payment received for Single")
	assert.Contains(t, h.sender.sent, "owner@tooma.test: New purchase: Single")
}

func TestFailedPaymentCallback(t *testing.T) {
	h := newHarness(t)
	rec := h.upload(t, map[string]string{"title": "Paid", "payment_amount": "5"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var created struct {
		UniqueID string `json:"unique_id"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))

	rec = h.do(http.MethodPost, "/api/v1/files/create-buyer-info/"+created.UniqueID, `{"buyer_email":"b@x.io"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	var reg struct {
		ID int64 `json:"id"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &reg))

	rec = h.do(http.MethodGet, fmt.Sprintf("/api/v1/payment-callback/%d?reference=nope&trxref=nope", reg.ID), "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"error":"Payment failed"}`, rec.Body.String())

	var buyer domain.BuyerInfo
	require.NoError(t, h.db.First(&buyer, reg.ID).Error)
	assert.Equal(t, domain.BuyerPaymentFailed, buyer.PaymentStatus)
}

func TestUploadWithMissingBlobLeavesNoRow(t *testing.T) {
	h := newHarness(t)
	h.store.dropPuts = true

	rec := h.upload(t, map[string]string{"title": "Lost"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var n int64
	require.NoError(t, h.db.Model(&domain.FileUpload{}).Count(&n).Error)
	assert.Zero(t, n)
}

func TestExpiredUploadIsGone(t *testing.T) {
	h := newHarness(t)
	rec := h.upload(t, map[string]string{"title": "Old"})
	require.Equal(t, http.StatusCreated, rec.Code)
	var created struct {
		UniqueID string `json:"unique_id"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))

	require.NoError(t, h.db.Model(&domain.FileUpload{}).
		Where("unique_id = ?", created.UniqueID).
		Update("expires_at", time.Now().Add(-time.Minute)).Error)

	rec = h.do(http.MethodGet, "/api/v1/get-presigned-url/"+created.UniqueID, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"error":"The download link has expired."}`, rec.Body.String())
}

func TestProtectedRoutesNeedToken(t *testing.T) {
	h := newHarness(t)
	for _, path := range []string{"/api/v1/files", "/api/v1/buyers", "/api/v1/user-files/7", "/api/v1/file-buyers/abc"} {
		rec := h.do(http.MethodGet, path, "")
		assert.Equal(t, http.StatusUnauthorized, rec.Code, path)
	}

	rec := h.do(http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

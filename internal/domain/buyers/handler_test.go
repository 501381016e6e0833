package buyers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestRouter(env *testEnv) *gin.Engine {
	h := NewHandler(env.svc)
	r := gin.New()
	api := r.Group("/api/v1")
	h.RegisterPublicRoutes(api)

	protected := api.Group("")
	protected.Use(func(c *gin.Context) {
		if c.GetHeader("X-User-ID") == "7" {
			c.Set("user_id", int64(7))
		}
		c.Next()
	})
	h.RegisterRoutes(protected)
	return r
}

func postJSON(r http.Handler, path, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	return w
}

func TestHandler_Register(t *testing.T) {
	env := newTestEnv(t)
	env.seedFile(t, "Hreg000001", "uploads/f.bin", strPtr("50.00"))
	env.gateway.On("Initiate", mock.Anything, mock.Anything, "50.00", "buyer@x.io", mock.Anything).
		Return("https://checkout.paystack.com/h1", nil)
	env.notifier.On("BuyerRegistered", mock.Anything, mock.Anything)
	r := newTestRouter(env)

	for _, path := range []string{
		"/api/v1/files/create-buyer-info/Hreg000001",
		"/api/v1/files/update-buyer-info/Hreg000001",
		"/api/v1/files/Hreg000001/buyers",
	} {
		w := postJSON(r, path, `{"buyer_email":"buyer@x.io","buyer_name":"Kofi"}`)
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

		var resp RegisterResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.NotZero(t, resp.ID)
		assert.Equal(t, "https://checkout.paystack.com/h1", *resp.PaymentLink)
		assert.Equal(t, "fulfilled", resp.OrderStatus)
	}
}

func TestHandler_RegisterValidation(t *testing.T) {
	env := newTestEnv(t)
	env.seedFile(t, "Hreg000002", "uploads/f.bin", nil)
	r := newTestRouter(env)

	w := postJSON(r, "/api/v1/files/create-buyer-info/Hreg000002", `{"buyer_email":"not-an-email"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "BuyerEmail")

	w = postJSON(r, "/api/v1/files/create-buyer-info/Missing001", `{"buyer_email":"a@b.io"}`)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"error":"File upload not found."}`, w.Body.String())
}

func TestHandler_RegisterInitiationFailure(t *testing.T) {
	env := newTestEnv(t)
	env.seedFile(t, "Hreg000003", "uploads/f.bin", strPtr("5.00"))
	env.gateway.On("Initiate", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return("", assert.AnError)
	r := newTestRouter(env)

	w := postJSON(r, "/api/v1/files/create-buyer-info/Hreg000003", `{"buyer_email":"a@b.io"}`)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"error":"Failed to initiate payment."}`, w.Body.String())
}

func TestHandler_VerifyEmail(t *testing.T) {
	env := newTestEnv(t)
	f := env.seedFile(t, "Hver000001", "uploads/f.bin", nil)
	b := env.seedBuyer(t, f, "known@x.io")
	r := newTestRouter(env)

	w := postJSON(r, "/api/v1/files/verify-buyer-email/Hver000001", `{"buyer_email":"known@x.io"}`)
	require.Equal(t, http.StatusOK, w.Code)
	var res VerifyResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	assert.Equal(t, b.ID, res.BuyerInfoID)
	assert.Equal(t, "Hver000001", res.FileUploadUniqueID)

	w = postJSON(r, "/api/v1/files/verify-buyer-email/Hver000001", `{"buyer_email":"stranger@x.io"}`)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"error":"Buyer email not found."}`, w.Body.String())
}

func TestHandler_PaymentCallback(t *testing.T) {
	env := newTestEnv(t)
	f := env.seedFile(t, "Hcb0000001", "uploads/f.bin", strPtr("50.00"))
	ok := env.seedBuyer(t, f, "ok@x.io")
	bad := env.seedBuyer(t, f, "bad@x.io")
	env.gateway.On("Verify", mock.Anything, "good").Return(true, map[string]any{"status": true})
	env.gateway.On("Verify", mock.Anything, "bad").Return(false, map[string]any{"status": false})
	env.notifier.On("PaymentReceived", mock.Anything, mock.Anything)
	env.notifier.On("NewPurchase", mock.Anything, mock.Anything)
	r := newTestRouter(env)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/payment-callback/"+itoa(ok.ID)+"?reference=good&trxref=good", nil))
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "http://localhost:3001/shared/Hcb0000001/"+itoa(ok.ID)+"/", w.Header().Get("Location"))

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/payment-callback/"+itoa(bad.ID)+"?reference=bad&trxref=bad", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"error":"Payment failed"}`, w.Body.String())

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/payment-callback/"+itoa(ok.ID)+"?reference=good", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "trxref")
}

func TestHandler_GetAndLists(t *testing.T) {
	env := newTestEnv(t)
	f := env.seedFile(t, "Hget000001", "uploads/f.bin", nil)
	b := env.seedBuyer(t, f, "g@x.io")
	r := newTestRouter(env)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/buyers/"+itoa(b.ID), nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"buyer_email":"g@x.io"`)
	assert.Contains(t, w.Body.String(), `"file_upload":`+itoa(f.ID))

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/buyers/999999", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/file-buyers/Hget000001", nil)
	req.Header.Set("X-User-ID", "7")
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "g@x.io")

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/buyers", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

package middlewares

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func signedRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(SignatureMiddleware())
	r.POST("/events", func(c *gin.Context) { c.Status(http.StatusOK) })
	return r
}

func sign(body []byte, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

func TestSignatureMiddleware_ValidSignaturePasses(t *testing.T) {
	t.Setenv("SIGNATURE_CHECK_DISABLED", "")
	t.Setenv("POS_SIGNATURE_SECRET", "terminal-secret")

	body := []byte(`{"items":[]}`)
	req := httptest.NewRequest(http.MethodPost, "/events", bytes.NewReader(body))
	req.Header.Set(SignatureHeader, sign(body, "terminal-secret"))
	rec := httptest.NewRecorder()

	signedRouter().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestSignatureMiddleware_TamperedBodyRejected(t *testing.T) {
	t.Setenv("SIGNATURE_CHECK_DISABLED", "")
	t.Setenv("POS_SIGNATURE_SECRET", "terminal-secret")

	signature := sign([]byte(`{"items":[]}`), "terminal-secret")
	req := httptest.NewRequest(http.MethodPost, "/events", bytes.NewReader([]byte(`{"items":[{}]}`)))
	req.Header.Set(SignatureHeader, signature)
	rec := httptest.NewRecorder()

	signedRouter().ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestSignatureMiddleware_MissingSignatureRejected(t *testing.T) {
	t.Setenv("SIGNATURE_CHECK_DISABLED", "")
	t.Setenv("POS_SIGNATURE_SECRET", "terminal-secret")

	req := httptest.NewRequest(http.MethodPost, "/events", bytes.NewReader([]byte(`{}`)))
	rec := httptest.NewRecorder()

	signedRouter().ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestSignatureMiddleware_DisabledForLocalDev(t *testing.T) {
	t.Setenv("SIGNATURE_CHECK_DISABLED", "true")

	req := httptest.NewRequest(http.MethodPost, "/events", bytes.NewReader([]byte(`{}`)))
	rec := httptest.NewRecorder()

	signedRouter().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 with check disabled, got %d", rec.Code)
	}
}

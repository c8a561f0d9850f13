package middlewares

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"net/http"

	"bitbucket.org/mmdatafocus/pos_backend/config"
	"bitbucket.org/mmdatafocus/pos_backend/utils"
	"github.com/gin-gonic/gin"
)

const SignatureHeader = "X-Signature"

// SignatureMiddleware rejects requests whose body does not carry a valid
// HMAC-SHA256 signature under the shared terminal secret. It runs before the
// pipeline: unsigned events must never be acknowledged. Can be disabled for
// local development via SIGNATURE_CHECK_DISABLED.
func SignatureMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if config.SignatureCheckDisabled() {
			c.Next()
			return
		}

		secret := config.SignatureSecret()
		if secret == "" {
			utils.RespondFailure(c, http.StatusInternalServerError, "signature secret not configured", nil)
			c.Abort()
			return
		}

		body, err := io.ReadAll(c.Request.Body)
		if err != nil {
			utils.RespondFailure(c, http.StatusBadRequest, "unreadable request body", nil)
			c.Abort()
			return
		}
		// The body is consumed for signing; hand the handler a fresh reader.
		c.Request.Body = io.NopCloser(bytes.NewReader(body))

		if !ValidSignature(body, secret, c.GetHeader(SignatureHeader)) {
			utils.RespondFailure(c, http.StatusUnauthorized, "invalid request signature", nil)
			c.Abort()
			return
		}
		c.Next()
	}
}

// ValidSignature compares the hex HMAC-SHA256 of the body against the
// supplied signature in constant time.
func ValidSignature(body []byte, secret, signature string) bool {
	if signature == "" {
		return false
	}
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}

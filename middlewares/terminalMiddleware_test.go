package middlewares

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"bitbucket.org/mmdatafocus/pos_backend/utils"
	"github.com/gin-gonic/gin"
)

func TestTerminalMiddleware_StoresTerminalIdInContext(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(TerminalMiddleware())

	var got string
	var found bool
	r.POST("/events", func(c *gin.Context) {
		got, found = utils.GetTerminalIdFromContext(c.Request.Context())
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodPost, "/events", nil)
	req.Header.Set(TerminalHeader, "T-42")
	r.ServeHTTP(httptest.NewRecorder(), req)

	if !found || got != "T-42" {
		t.Fatalf("expected terminal id T-42 in context, got %q (found=%v)", got, found)
	}
}

func TestTerminalMiddleware_AbsentHeaderLeavesContextEmpty(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(TerminalMiddleware())

	var found bool
	r.POST("/events", func(c *gin.Context) {
		_, found = utils.GetTerminalIdFromContext(c.Request.Context())
		c.Status(http.StatusOK)
	})

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/events", nil))

	if found {
		t.Fatalf("expected no terminal id without the header")
	}
}

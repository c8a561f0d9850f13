package middlewares

import (
	"strings"

	"bitbucket.org/mmdatafocus/pos_backend/utils"
	"github.com/gin-gonic/gin"
)

const TerminalHeader = "X-Terminal-Id"

// TerminalMiddleware copies the optional terminal identifier into the
// request context so deferred-write logs can attribute an event to the
// terminal that sent it.
func TerminalMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		terminalId := strings.TrimSpace(c.GetHeader(TerminalHeader))
		if terminalId != "" {
			ctx := utils.SetTerminalIdInContext(c.Request.Context(), terminalId)
			c.Request = c.Request.WithContext(ctx)
		}
		c.Next()
	}
}

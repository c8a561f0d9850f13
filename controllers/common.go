package controllers

import (
	"strconv"
	"strings"

	"bitbucket.org/mmdatafocus/pos_backend/utils"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const SequenceHeader = "X-Sequence-Id"

// requestProcessId resolves the process id for an accepted event. The
// correlation middleware seeds the request context from x-correlation-id, so
// a caller-supplied id is echoed back in the ack and carried through the
// deferred write's log trail. Without one a fresh id is minted.
func requestProcessId(c *gin.Context) string {
	if pid, ok := utils.GetProcessIdFromContext(c.Request.Context()); ok && pid != "" {
		return pid
	}
	return uuid.NewString()
}

// sequenceIdFromHeader parses the optional X-Sequence-Id header. Absent is
// fine (the sequence gate is bypassed); a malformed value is a client error.
func sequenceIdFromHeader(c *gin.Context) (*int64, error) {
	raw := strings.TrimSpace(c.GetHeader(SequenceHeader))
	if raw == "" {
		return nil, nil
	}
	seq, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return nil, utils.NewValidationError(SequenceHeader, "must be an integer")
	}
	return &seq, nil
}

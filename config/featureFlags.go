package config

import (
	"os"
	"strings"
)

// SignatureCheckDisabled turns off request-signature verification.
// Local development only; every deployed environment must keep it on.
//
// Set via env:
// - SIGNATURE_CHECK_DISABLED=true
func SignatureCheckDisabled() bool {
	v := strings.ToLower(strings.TrimSpace(os.Getenv("SIGNATURE_CHECK_DISABLED")))
	return v == "1" || v == "true" || v == "yes" || v == "y"
}

// SignatureSecret is the shared secret POS terminals sign request bodies with.
func SignatureSecret() string {
	return os.Getenv("POS_SIGNATURE_SECRET")
}

// ShouldRunEventDispatcher controls the in-process dispatcher that drains the
// event outbox. Default on: without it accepted events are never applied.
//
// Set via env:
// - EVENT_DISPATCHER=false
func ShouldRunEventDispatcher() bool {
	val := strings.ToLower(strings.TrimSpace(os.Getenv("EVENT_DISPATCHER")))
	if val == "false" {
		return false
	}
	return true
}

package utils

import (
	"context"

	"bitbucket.org/mmdatafocus/pos_backend/appctx"
)

var (
	ContextKeyProcessId  = appctx.ContextKeyProcessId
	ContextKeyTerminalId = appctx.ContextKeyTerminalId
)

func GetProcessIdFromContext(ctx context.Context) (string, bool) {
	return appctx.GetString(ctx, ContextKeyProcessId)
}

func SetProcessIdInContext(ctx context.Context, processId string) context.Context {
	return appctx.Set(ctx, ContextKeyProcessId, processId)
}

func GetTerminalIdFromContext(ctx context.Context) (string, bool) {
	return appctx.GetString(ctx, ContextKeyTerminalId)
}

func SetTerminalIdInContext(ctx context.Context, terminalId string) context.Context {
	return appctx.Set(ctx, ContextKeyTerminalId, terminalId)
}

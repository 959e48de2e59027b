package logx

import (
	"context"

	"pkt.systems/agentnexus/schema"
	"pkt.systems/pslog"
)

type contextKey int

const (
	sessionKey contextKey = iota
	transportKey
)

// Ctx returns the logger bound to the provided context.
func Ctx(ctx context.Context) pslog.Logger {
	return pslog.Ctx(ctx)
}

// WithSession annotates the logger with the session id unless the context
// logger already carries it.
func WithSession(ctx context.Context, sessionID schema.SessionID) pslog.Logger {
	log := pslog.Ctx(ctx)
	if sessionID != "" {
		if current, ok := ctx.Value(sessionKey).(schema.SessionID); ok && current == sessionID {
			return log
		}
		log = log.With("session", sessionID)
	}
	return log
}

// WithSessionTransport annotates the logger with session and transport.
func WithSessionTransport(ctx context.Context, sessionID schema.SessionID, transport schema.Transport) pslog.Logger {
	log := WithSession(ctx, sessionID)
	if transport != "" {
		if current, ok := ctx.Value(transportKey).(schema.Transport); ok && current == transport {
			return log
		}
		log = log.With("transport", transport)
	}
	return log
}

// WithOrchestration annotates the logger with orchestration metadata when available.
func WithOrchestration(log pslog.Logger, record schema.Orchestration) pslog.Logger {
	if record.ID != "" {
		log = log.With("orchestration", record.ID)
	}
	if record.Name != "" {
		log = log.With("orchestration_name", record.Name)
	}
	return log
}

// ContextWithSession stores the session marker on the context for log de-duplication.
func ContextWithSession(ctx context.Context, sessionID schema.SessionID) context.Context {
	if ctx == nil || sessionID == "" {
		return ctx
	}
	return context.WithValue(ctx, sessionKey, sessionID)
}

// ContextWithTransport stores the transport marker on the context for log de-duplication.
func ContextWithTransport(ctx context.Context, transport schema.Transport) context.Context {
	if ctx == nil || transport == "" {
		return ctx
	}
	return context.WithValue(ctx, transportKey, transport)
}

// ContextWithSessionLogger attaches the logger and session/transport markers to the context.
func ContextWithSessionLogger(ctx context.Context, log pslog.Logger, sessionID schema.SessionID, transport schema.Transport) context.Context {
	ctx = pslog.ContextWithLogger(ctx, log)
	return ContextWithTransport(ContextWithSession(ctx, sessionID), transport)
}

// SessionFromContext returns the session marker, if any.
func SessionFromContext(ctx context.Context) schema.SessionID {
	if ctx == nil {
		return ""
	}
	id, _ := ctx.Value(sessionKey).(schema.SessionID)
	return id
}

package core

import "context"

type contextKey string

const (
	ctxKeyClientIP  contextKey = "client_ip"
	ctxKeyUserAgent contextKey = "client_ua"
)

// ContextWithClientIP records the caller's address for service logs.
func ContextWithClientIP(ctx context.Context, ip string) context.Context {
	return context.WithValue(ctx, ctxKeyClientIP, ip)
}

// ContextWithUserAgent records the caller's User-Agent for service logs.
func ContextWithUserAgent(ctx context.Context, ua string) context.Context {
	return context.WithValue(ctx, ctxKeyUserAgent, ua)
}

// ClientIPFromContext returns the address set by ContextWithClientIP.
func ClientIPFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(ctxKeyClientIP).(string); ok {
		return v
	}
	return ""
}

// UserAgentFromContext returns the value set by ContextWithUserAgent.
func UserAgentFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(ctxKeyUserAgent).(string); ok {
		return v
	}
	return ""
}

// clientAttrs returns log attributes describing the caller, if known.
func clientAttrs(ctx context.Context) []any {
	var attrs []any
	if ip := ClientIPFromContext(ctx); ip != "" {
		attrs = append(attrs, "client_ip", ip)
	}
	if ua := UserAgentFromContext(ctx); ua != "" {
		attrs = append(attrs, "user_agent", ua)
	}
	return attrs
}

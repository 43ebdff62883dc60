package web

import (
	"context"
	"net/http"

	"github.com/JonMunkholm/dataquality/internal/core"
	"github.com/JonMunkholm/dataquality/internal/web/middleware"
)

// withRequestMetadata adds the caller's IP and User-Agent to ctx for service logs.
func withRequestMetadata(r *http.Request) context.Context {
	ctx := core.ContextWithClientIP(r.Context(), middleware.ClientIP(r))
	return core.ContextWithUserAgent(ctx, r.UserAgent())
}

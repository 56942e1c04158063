package audit

import (
	"context"
	"strings"
)

type clientInfoKey struct{}

// ClientInfo carries the request attributes copied onto every entry recorded
// while handling that request.
type ClientInfo struct {
	IP        string
	UserAgent string
}

// WithClientInfo attaches client network details to the context.
func WithClientInfo(ctx context.Context, ip, userAgent string) context.Context {
	ip = strings.TrimSpace(ip)
	userAgent = strings.TrimSpace(userAgent)
	if ip == "" && userAgent == "" {
		return ctx
	}
	return context.WithValue(ctx, clientInfoKey{}, ClientInfo{IP: ip, UserAgent: userAgent})
}

// ClientInfoFromContext returns client details previously attached, if any.
func ClientInfoFromContext(ctx context.Context) (ClientInfo, bool) {
	if ctx == nil {
		return ClientInfo{}, false
	}
	v, ok := ctx.Value(clientInfoKey{}).(ClientInfo)
	return v, ok
}

package ctxutil

import "context"

type requestDataKey struct{}

// RequestData identifies the authenticated caller of a request.
type RequestData struct {
	CallerID string
	// SelfAccess is set when the caller presented x-access-id matching its own
	// identity; such callers only reach their own applications.
	SelfAccess bool
}

func WithRequestData(ctx context.Context, rd *RequestData) context.Context {
	return context.WithValue(ctx, requestDataKey{}, rd)
}

func GetRequestData(ctx context.Context) *RequestData {
	if ctx == nil {
		return nil
	}
	if rd, ok := ctx.Value(requestDataKey{}).(*RequestData); ok {
		return rd
	}
	return nil
}

// CallerID returns the caller identity or "" for anonymous contexts.
func CallerID(ctx context.Context) string {
	if rd := GetRequestData(ctx); rd != nil {
		return rd.CallerID
	}
	return ""
}

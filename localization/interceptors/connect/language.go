package connect

import (
	"context"

	"connectrpc.com/connect"

	"github.com/pitabwire/i18nutils/localization"
)

// LanguageInterceptor implements connect.Interceptor, placing the requested language on the handler context.
type LanguageInterceptor struct {
	resolver *localization.Resolver
}

func NewLanguageInterceptor(resolver *localization.Resolver) *LanguageInterceptor {
	return &LanguageInterceptor{resolver: resolver}
}

func (l *LanguageInterceptor) withLanguage(ctx context.Context, requested []string) context.Context {
	if len(requested) == 0 {
		return ctx
	}
	return localization.ToContext(ctx, append([]string{l.resolver.Match(requested...)}, requested...))
}

func (l *LanguageInterceptor) WrapUnary(next connect.UnaryFunc) connect.UnaryFunc {
	return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
		requested := localization.ExtractLanguageFromHTTPHeader(req.Header())
		return next(l.withLanguage(ctx, requested), req)
	}
}

// WrapStreamingClient is a pass-through; languages are only resolved server side.
func (l *LanguageInterceptor) WrapStreamingClient(next connect.StreamingClientFunc) connect.StreamingClientFunc {
	return next
}

func (l *LanguageInterceptor) WrapStreamingHandler(next connect.StreamingHandlerFunc) connect.StreamingHandlerFunc {
	return func(ctx context.Context, conn connect.StreamingHandlerConn) error {
		requested := localization.ExtractLanguageFromHTTPHeader(conn.RequestHeader())
		return next(l.withLanguage(ctx, requested), conn)
	}
}

package grpc

import (
	"context"

	"google.golang.org/grpc"

	"github.com/pitabwire/i18nutils/localization"
)

// LanguageUnaryInterceptor Simple grpc interceptor to extract the language supplied via metadata.
func LanguageUnaryInterceptor(resolver *localization.Resolver) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any,
		_ *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		l := localization.ExtractLanguageFromGrpcRequest(ctx)
		if l != nil {
			ctx = localization.ToContext(ctx, append([]string{resolver.Match(l...)}, l...))
		}

		return handler(ctx, req)
	}
}

// LanguageStreamInterceptor does the same as LanguageUnaryInterceptor for streams.
func LanguageStreamInterceptor(resolver *localization.Resolver) grpc.StreamServerInterceptor {
	return func(srv any, ss grpc.ServerStream, _ *grpc.StreamServerInfo, handler grpc.StreamHandler) error {
		ctx := ss.Context()
		l := localization.ExtractLanguageFromGrpcRequest(ctx)
		if l == nil {
			return handler(srv, ss)
		}

		ctx = localization.ToContext(ctx, append([]string{resolver.Match(l...)}, l...))

		return handler(srv, &serverStreamWrapper{ctx, ss})
	}
}

// serverStreamWrapper carries the language aware context for the server stream.
type serverStreamWrapper struct {
	ctx context.Context
	grpc.ServerStream
}

func (s *serverStreamWrapper) Context() context.Context {
	return s.ctx
}

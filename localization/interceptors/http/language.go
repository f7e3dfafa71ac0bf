package http

import (
	"net/http"

	"github.com/pitabwire/i18nutils/localization"
)

// LanguageHTTPMiddleware extracts the requested languages and activates the best configured match on the
// request context. The raw requested tags follow the match so catalogs can still fall back through them.
func LanguageHTTPMiddleware(resolver *localization.Resolver, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requested := localization.ExtractLanguageFromHTTPRequest(r)
		active := resolver.Match(requested...)

		ctx := localization.ToContext(r.Context(), append([]string{active}, requested...))
		r = r.WithContext(ctx)

		w.Header().Set("Content-Language", active)
		next.ServeHTTP(w, r)
	})
}

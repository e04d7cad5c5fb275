package chi

import (
	"net/http"
	"strings"
)

// scrapePaths are the ops routes that require a token. /healthz stays open
// so container health checks work without credentials.
var scrapePaths = map[string]struct{}{
	"/metrics": {},
}

// MetricsAuth guards the scrape endpoint of the ops listener with a Bearer
// token. Empty tokens are ignored; with none left the guard is off.
func MetricsAuth(tokens []string) func(http.Handler) http.Handler {
	allowed := make(map[string]struct{}, len(tokens))
	for _, t := range tokens {
		if t != "" {
			allowed[t] = struct{}{}
		}
	}

	return func(next http.Handler) http.Handler {
		if len(allowed) == 0 {
			return next
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, guarded := scrapePaths[r.URL.Path]; !guarded {
				next.ServeHTTP(w, r)
				return
			}

			header := r.Header.Get("Authorization")
			if header == "" {
				writeError(w, http.StatusUnauthorized, codeUnauthorized, "missing authorization header")
				return
			}
			token, ok := strings.CutPrefix(header, "Bearer ")
			if !ok {
				writeError(w, http.StatusUnauthorized,
					codeUnauthorized, "authorization header must use Bearer scheme")
				return
			}
			if _, ok := allowed[token]; !ok {
				writeError(w, http.StatusUnauthorized, codeUnauthorized, "invalid metrics token")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

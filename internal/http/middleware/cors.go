package middleware

import (
	"net/http"
	"strings"
)

const (
	corsAllowedHeaders = "Content-Type, X-Request-ID"
	corsAllowedMethods = "GET, POST, OPTIONS"
)

// CORS returns an allowlist-based CORS middleware. An empty list or a "*"
// entry allows every origin; in that case the wildcard is sent instead of
// echoing the caller's Origin.
func CORS(allowedOrigins []string) func(http.Handler) http.Handler {
	allowAny := true
	allow := map[string]struct{}{}
	for _, origin := range allowedOrigins {
		origin = strings.TrimSpace(origin)
		switch origin {
		case "":
			continue
		case "*":
			allow = nil
		default:
			if allow != nil {
				allow[origin] = struct{}{}
			}
		}
	}
	if len(allow) > 0 {
		allowAny = false
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := strings.TrimSpace(r.Header.Get("Origin"))
			if origin != "" {
				h := w.Header()
				switch {
				case allowAny:
					h.Set("Access-Control-Allow-Origin", "*")
				case isAllowedOrigin(allow, origin):
					h.Set("Access-Control-Allow-Origin", origin)
					h.Add("Vary", "Origin")
				default:
					origin = ""
				}
				if origin != "" {
					h.Set("Access-Control-Allow-Headers", corsAllowedHeaders)
					h.Set("Access-Control-Allow-Methods", corsAllowedMethods)
					h.Set("Access-Control-Max-Age", "600")
				}
			}

			if r.Method == http.MethodOptions && r.Header.Get("Access-Control-Request-Method") != "" {
				w.WriteHeader(http.StatusNoContent)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func isAllowedOrigin(allow map[string]struct{}, origin string) bool {
	_, ok := allow[origin]
	return ok
}

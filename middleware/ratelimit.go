package middleware

import (
	"math"
	"net/http"
	"strconv"

	"github.com/alon-poshil/authgate"
)

// RateLimit charges each request to its client identity and answers 429 with a
// Retry-After header once the window budget is spent.
func RateLimit(engine *authgate.Engine) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if engine == nil {
				next.ServeHTTP(w, r)
				return
			}

			decision, err := engine.CheckRequest(r.Context(), r.Header)
			if err != nil {
				http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
				return
			}
			if !decision.Allowed {
				w.Header().Set("Retry-After", retryAfterSeconds(decision))
				http.Error(w, "too many requests", http.StatusTooManyRequests)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func retryAfterSeconds(d authgate.RateDecision) string {
	secs := int64(math.Ceil(d.RetryAfter.Seconds()))
	if secs < 1 {
		secs = 1
	}
	return strconv.FormatInt(secs, 10)
}

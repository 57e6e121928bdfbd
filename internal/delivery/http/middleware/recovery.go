package middleware

import (
	"fmt"
	"net/http"

	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/Pesokrava/product_reviews/internal/delivery/http/response"
	"github.com/Pesokrava/product_reviews/internal/pkg/logger"
)

// Recovery returns a middleware that recovers from panics
func Recovery(log *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					if rec == http.ErrAbortHandler {
						panic(rec)
					}

					log.With("request_id", chimw.GetReqID(r.Context())).
						WithFields(map[string]any{
							"method": r.Method,
							"path":   r.URL.Path,
						}).
						Error("Panic recovered", fmt.Errorf("%v", rec))

					response.Error(w, http.StatusInternalServerError, "Internal server error")
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}

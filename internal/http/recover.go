package http

import (
	"fmt"
	"net/http"
	"runtime/debug"

	applog "despesas/internal/log"
)

// recoverer turns a panic in any handler into a 500 response. It sits inside
// the trace middleware so the request id and completion log survive.
func (s *Server) recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			if rec == http.ErrAbortHandler {
				panic(rec)
			}

			err := fmt.Errorf("panic: %v", rec)
			applog.FromContext(r.Context()).ErrorContext(r.Context(), "Recovered from panic",
				applog.FieldMethod, r.Method,
				applog.FieldPath, r.URL.Path,
				applog.FieldError, err,
				applog.FieldErrorType, applog.ErrorTypeInternal,
				"stack", string(debug.Stack()))

			writeJSON(w, http.StatusInternalServerError, errorResponse{
				Message: msgInternalError,
				Error:   s.detail(err, genericInternalError),
			})
		}()

		next.ServeHTTP(w, r)
	})
}

package middleware

import (
	"encoding/json"
	"net/http"
	"runtime/debug"

	"github.com/JonMunkholm/feedbacks/internal/logging"
)

// Recoverer turns a handler panic into a 500 with a JSON body of
// {"message":"Internal Server Error"}. http.ErrAbortHandler is re-panicked so
// net/http can abort the connection.
func Recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			if rec == http.ErrAbortHandler {
				panic(rec)
			}

			logging.FromContext(r.Context()).Error("panic recovered",
				"panic", rec,
				"method", r.Method,
				"path", r.URL.Path,
				"stack", string(debug.Stack()),
			)

			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusInternalServerError)
			_ = json.NewEncoder(w).Encode(map[string]string{"message": "Internal Server Error"})
		}()

		next.ServeHTTP(w, r)
	})
}

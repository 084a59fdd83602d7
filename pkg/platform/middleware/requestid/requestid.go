package requestid

import (
	"net/http"
	"regexp"

	"github.com/google/uuid"

	"keyledger/pkg/requestcontext"
)

// Header carries the request ID in and out.
const Header = "X-Request-ID"

var accepted = regexp.MustCompile(`^[A-Za-z0-9._-]{1,128}$`)

// Middleware propagates a well-formed inbound X-Request-ID or mints a UUID, and
// echoes it back on the response.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(Header)
		if !accepted.MatchString(id) {
			id = uuid.NewString()
		}
		w.Header().Set(Header, id)
		next.ServeHTTP(w, r.WithContext(requestcontext.WithRequestID(r.Context(), id)))
	})
}

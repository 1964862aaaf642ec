package security

import "net/http"

// BodyLimit caps request payload sizes. Every data endpoint here is a
// query and the one POST takes no body, so oversized payloads are
// rejected on the declared length and never buffered.
type BodyLimit struct {
	Max int64
}

// Middleware rejects requests whose declared length exceeds the limit
// with HTTP 413 and caps reads of the remainder.
func (b BodyLimit) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if b.Max <= 0 || r.Body == nil {
			next.ServeHTTP(w, r)
			return
		}
		if r.ContentLength > b.Max {
			http.Error(w, "request entity too large", http.StatusRequestEntityTooLarge)
			return
		}
		r.Body = http.MaxBytesReader(w, r.Body, b.Max)
		next.ServeHTTP(w, r)
	})
}

package server

import (
	"crypto/subtle"
	"net/http"
	"strings"
)

// TokenAuth guards monitor endpoints with a shared token. The token is read
// from the "token" query parameter, which browsers can set on a WebSocket URL,
// or from an "Authorization: Bearer" header. An empty token disables the
// check.
type TokenAuth struct {
	Token string
}

func (a TokenAuth) Authorize(r *http.Request) error {
	if a.Token == "" {
		return nil
	}
	token := r.URL.Query().Get("token")
	if token == "" {
		token, _ = strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
	}
	if subtle.ConstantTimeCompare([]byte(token), []byte(a.Token)) != 1 {
		return ErrUnauthorized
	}
	return nil
}

// Wrap rejects unauthorized requests before they reach next.
func (a TokenAuth) Wrap(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := a.Authorize(r); err != nil {
			http.Error(w, err.Error(), http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

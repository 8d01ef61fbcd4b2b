package middleware

import (
	"crypto/subtle"
	"net/http"
	"strings"
)

// Keys splits API credentials by capability. Public keys may query the
// fleet (server list, status, ping, live feed); admin keys may also
// edit the server list. Either set left empty leaves its routes open,
// which is the intended mode for a single-user local deployment.
type Keys struct {
	Public []string
	Admin  []string
}

// presentedKey pulls the caller's credential from either accepted
// form: an Authorization bearer token or the X-API-Key header.
func presentedKey(r *http.Request) string {
	h := r.Header.Get("Authorization")
	if strings.HasPrefix(strings.ToLower(h), "bearer ") {
		return strings.TrimSpace(h[7:])
	}
	if k := r.Header.Get("X-API-Key"); k != "" {
		return strings.TrimSpace(k)
	}
	return ""
}

func matchKey(given string, set []string) bool {
	if given == "" {
		return false
	}
	ok := false
	for _, k := range set {
		if subtle.ConstantTimeCompare([]byte(given), []byte(k)) == 1 {
			ok = true
		}
	}
	return ok
}

func deny(w http.ResponseWriter, code int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_, _ = w.Write([]byte(`{"error":"` + msg + `"}`))
}

// RequireRead gates the query surface. Reading fleet status is the
// least privilege this API grants, so any configured key qualifies,
// public or admin.
func RequireRead(keys Keys) func(http.Handler) http.Handler {
	enabled := len(keys.Public) > 0 || len(keys.Admin) > 0
	return func(next http.Handler) http.Handler {
		if !enabled {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := presentedKey(r)
			if matchKey(key, keys.Public) || matchKey(key, keys.Admin) {
				next.ServeHTTP(w, r)
				return
			}
			deny(w, http.StatusUnauthorized, "unauthorized")
		})
	}
}

// RequireAdmin gates server-list mutation. Only admin keys pass; a
// valid public key gets 403 rather than 401 so clients can tell a
// wrong tier from a missing credential.
func RequireAdmin(keys Keys) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if len(keys.Admin) == 0 {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if matchKey(presentedKey(r), keys.Admin) {
				next.ServeHTTP(w, r)
				return
			}
			deny(w, http.StatusForbidden, "forbidden")
		})
	}
}

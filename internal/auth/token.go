package auth

import (
	"net/http"
	"strings"
)

// CookieName is the cookie the admin dashboard stores its token in.
const CookieName = "access_token"

// ExtractAccessToken reads the admin token from the cookie, falling back to
// a bearer Authorization header.
func ExtractAccessToken(r *http.Request) string {
	if cookie, err := r.Cookie(CookieName); err == nil && cookie.Value != "" {
		return cookie.Value
	}

	header := r.Header.Get("Authorization")
	if token, ok := strings.CutPrefix(header, "Bearer "); ok {
		return strings.TrimSpace(token)
	}
	return ""
}

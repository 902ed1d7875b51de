package preferences

import (
	"net/http"
	"time"

	"github.com/google/uuid"
)

// VisitorCookie names the cookie carrying the anonymous visitor id.
const VisitorCookie = "vd_visitor"

// VisitorID returns the visitor id from the request cookie, if valid.
func VisitorID(r *http.Request) (string, bool) {
	c, err := r.Cookie(VisitorCookie)
	if err != nil {
		return "", false
	}
	id, err := uuid.Parse(c.Value)
	if err != nil {
		return "", false
	}
	return id.String(), true
}

// EnsureVisitorID returns the existing visitor id or issues a new one.
func EnsureVisitorID(w http.ResponseWriter, r *http.Request) string {
	if id, ok := VisitorID(r); ok {
		return id
	}
	id := uuid.NewString()
	http.SetCookie(w, &http.Cookie{
		Name:     VisitorCookie,
		Value:    id,
		Path:     "/",
		Expires:  time.Now().Add(defaultTTL),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   r.TLS != nil,
	})
	return id
}

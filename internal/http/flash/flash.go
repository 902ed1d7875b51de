// Package flash carries one-shot banner messages across a POST/redirect/GET
// round trip in a short-lived cookie.
package flash

import (
	"encoding/base64"
	"encoding/json"
	"net/http"
	"time"
)

// CookieName is the flash cookie.
const CookieName = "vd_flash"

// Kind selects the banner style.
type Kind string

const (
	Success Kind = "success"
	Error   Kind = "error"
)

// Message is a banner shown once on the next page render.
type Message struct {
	Kind Kind   `json:"kind"`
	Text string `json:"text"`
}

// Set stores msg for the next request.
func Set(w http.ResponseWriter, kind Kind, text string) {
	data, err := json.Marshal(Message{Kind: kind, Text: text})
	if err != nil {
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    base64.RawURLEncoding.EncodeToString(data),
		Path:     "/",
		MaxAge:   60,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// Pop returns the pending message, if any, and clears the cookie.
func Pop(w http.ResponseWriter, r *http.Request) (Message, bool) {
	c, err := r.Cookie(CookieName)
	if err != nil {
		return Message{}, false
	}
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	data, err := base64.RawURLEncoding.DecodeString(c.Value)
	if err != nil {
		return Message{}, false
	}
	var msg Message
	if err := json.Unmarshal(data, &msg); err != nil || msg.Text == "" {
		return Message{}, false
	}
	if msg.Kind != Success {
		msg.Kind = Error
	}
	return msg, true
}

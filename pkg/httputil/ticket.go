package httputil

import (
	"net/http"
	"strings"
)

const TicketQueryParam = "ticket"

// GetTicketFromRequest returns the session ticket carried by the ?ticket=
// query parameter or a "Bearer" Authorization header, or "" when there is none.
func GetTicketFromRequest(r *http.Request) string {
	if ticket := strings.TrimSpace(r.URL.Query().Get(TicketQueryParam)); ticket != "" {
		return ticket
	}

	// Fallback to Authorization header
	authHeader := r.Header.Get("Authorization")
	if token, ok := strings.CutPrefix(authHeader, "Bearer "); ok {
		return strings.TrimSpace(token)
	}
	return ""
}

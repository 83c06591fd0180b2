package handler

import (
	"net/http"

	"github.com/atelier-api/internal/transport/http/middleware"
)

// callerID returns the authenticated user id, answering 401 when the
// request carries no session.
func callerID(w http.ResponseWriter, r *http.Request) (string, bool) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return "", false
	}
	return claims.UserID(), true
}

func writeDeleted(w http.ResponseWriter) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

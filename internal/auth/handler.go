package auth

import (
	"encoding/json"
	"net/http"
)

// Me reports the subject of the caller's token. It sits behind
// AuthMiddleware and lets clients check a token before opening a session.
func Me(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"userId": UserIDFromContext(r.Context())})
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

package middleware

import (
	"encoding/json"
	"net/http"

	"donorcrm/internal/messages"
)

// writeError writes the API error envelope with a localized message.
func writeError(w http.ResponseWriter, r *http.Request, status int, code, key string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"success": false,
		"error":   code,
		"message": messages.Translate(LocaleFromContext(r.Context()), key),
	})
}

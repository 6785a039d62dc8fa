package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/kashishkhatter/interviewer-cw/internal/identity"
	"github.com/kashishkhatter/interviewer-cw/internal/request"
)

// respondJSON sends a JSON response
func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	response := map[string]any{
		"success":   true,
		"data":      data,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	}

	if err := json.NewEncoder(w).Encode(response); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
	}
}

// sanitizeErrorMessage removes internal details from error messages
func sanitizeErrorMessage(message string) string {
	// Remove file paths (common patterns)
	// This is a basic sanitization - more complex patterns could be added
	sanitized := message
	
	// Remove common internal details that shouldn't be exposed
	// In a production system, you might want more sophisticated sanitization
	if len(sanitized) > 200 {
		sanitized = sanitized[:200] + "..."
	}
	
	return sanitized
}

// ownerEmails reconstructs the pair of candidate owner emails for the
// request. Stored records were authored under one of the two auth paths,
// so list queries match the owner column against both.
func ownerEmails(r *http.Request) (string, string) {
	id := request.Identity(r)
	claims := request.TokenClaims(r)

	tokenEmail := ""
	if claims.HasEmail() {
		tokenEmail = claims.Email
	}

	if id.Source == identity.SourceManaged {
		return identity.OwnerEmails(id.Email, tokenEmail)
	}
	return identity.OwnerEmails("", id.Email)
}

// respondJSONError sends an error JSON response with sanitized error messages
func respondJSONError(w http.ResponseWriter, status int, errorType, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	// Sanitize error message to prevent information disclosure
	sanitizedMessage := sanitizeErrorMessage(message)

	response := map[string]any{
		"success":   false,
		"error":     errorType,
		"message":   sanitizedMessage,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	}

	if err := json.NewEncoder(w).Encode(response); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
	}
}

package response

import (
	"encoding/json"
	"net/http"
)

// JSON writes a JSON response
func JSON(w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(data)
}

// Error writes an error response
func Error(w http.ResponseWriter, statusCode int, message string) {
	JSON(w, statusCode, map[string]string{
		"error": message,
	})
}

// Object writes data wrapped under a single key, e.g. {"product_review": {...}}
func Object(w http.ResponseWriter, statusCode int, key string, data any) {
	JSON(w, statusCode, map[string]any{key: data})
}

// NoContent writes a no content response
func NoContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}

// Paginated writes a list response in the {<key>, count, offset, limit} shape
func Paginated(w http.ResponseWriter, key string, data any, count, limit, offset int) {
	JSON(w, http.StatusOK, map[string]any{
		key:      data,
		"count":  count,
		"limit":  limit,
		"offset": offset,
	})
}

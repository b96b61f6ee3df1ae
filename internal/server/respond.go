package server

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/abhijeet6401/newslet/internal/domain"
)

const maxBodyBytes = 1 << 20

// writeJSON sends the {success, message, ...} envelope merged with fields.
func writeJSON(w http.ResponseWriter, status int, message string, fields map[string]any) {
	body := map[string]any{
		"success": status < http.StatusBadRequest,
		"message": message,
	}
	for k, v := range fields {
		body[k] = v
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, message, nil)
}

// decodeBody reads an optional JSON body into dst. An empty body is allowed.
func decodeBody(r *http.Request, dst any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil && err != io.EOF {
		return fmt.Errorf("invalid request body: %w", err)
	}
	return nil
}

func nonNil(arts []domain.Article) []domain.Article {
	if arts == nil {
		return []domain.Article{}
	}
	return arts
}

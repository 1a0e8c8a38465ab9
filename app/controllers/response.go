package controllers

import (
	"bytes"
	"encoding/json"
	"html/template"
	"log/slog"
	"net/http"
)

func sendJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// sendError writes the {message, err} body used by the API.
func sendError(w http.ResponseWriter, status int, message string, err error) {
	body := map[string]string{"message": message}
	if err != nil {
		body["err"] = err.Error()
	}
	sendJSON(w, status, body)
}

// renderPage executes name's layout into a buffer so a template failure
// never leaves a half-written page.
func renderPage(w http.ResponseWriter, logger *slog.Logger, tmpl *template.Template, status int, data interface{}) {
	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "layout", data); err != nil {
		logger.Error("template error", "template", tmpl.Name(), "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	buf.WriteTo(w)
}

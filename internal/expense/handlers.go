package expense

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
)

// maxUploadSize bounds receipt photo uploads; phone photos can be large
const maxUploadSize = int64(50 << 20)

// messageRequest is a chat message sent by a user
type messageRequest struct {
	User string `json:"user"`
	Text string `json:"text"`
}

// replyResponse is the bot's answer to a message or photo
type replyResponse struct {
	Reply string `json:"reply"`
}

// setCORSHeaders sets CORS headers on a response
func setCORSHeaders(w http.ResponseWriter) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
	w.Header().Set("Access-Control-Max-Age", "3600")
}

// writeJSON writes v as a JSON response with the given status
func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Error encoding response", "error", err)
	}
}

// jsonError writes an error message as a JSON body
func jsonError(w http.ResponseWriter, message string, code int) {
	writeJSON(w, code, map[string]string{"error": message})
}

// userParam reads the required user query parameter
func userParam(w http.ResponseWriter, r *http.Request) (string, bool) {
	user := strings.TrimSpace(r.URL.Query().Get("user"))
	if user == "" {
		jsonError(w, "user is required", http.StatusBadRequest)
		return "", false
	}
	return user, true
}

// expenseID reads the numeric expense ID from the path
func expenseID(w http.ResponseWriter, r *http.Request) (uint64, bool) {
	id, err := strconv.ParseUint(r.PathValue("id"), 10, 64)
	if err != nil {
		jsonError(w, "Expense ID must be a number", http.StatusBadRequest)
		return 0, false
	}
	return id, true
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleMessage answers a chat message
func (s *Server) handleMessage(w http.ResponseWriter, r *http.Request) {
	var req messageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	req.User = strings.TrimSpace(req.User)
	if req.User == "" {
		jsonError(w, "user is required", http.StatusBadRequest)
		return
	}

	reply := s.service.HandleText(r.Context(), req.User, req.Text)
	writeJSON(w, http.StatusOK, replyResponse{Reply: reply})
}

// handlePhoto reads an uploaded receipt photo
func (s *Server) handlePhoto(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		slog.Error("Error parsing multipart form", "error", err)
		message := "Error parsing form"
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			message = "File is too large. Maximum size is 50MB. Please compress or resize your image."
		}
		jsonError(w, message, http.StatusBadRequest)
		return
	}

	user := strings.TrimSpace(r.FormValue("user"))
	if user == "" {
		jsonError(w, "user is required", http.StatusBadRequest)
		return
	}

	f, header, err := r.FormFile("file")
	if err != nil {
		slog.Error("Error getting file from form", "error", err)
		message := "No file provided"
		if errors.Is(err, http.ErrMissingFile) {
			message = "No file was selected. Please choose a file to upload."
		}
		jsonError(w, message, http.StatusBadRequest)
		return
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		slog.Error("Error reading file data", "error", err, "filename", header.Filename)
		jsonError(w, "Error reading file. Please try again.", http.StatusInternalServerError)
		return
	}

	contentType := header.Header.Get("Content-Type")
	if contentType == "" || contentType == "application/octet-stream" {
		contentType = contentTypeFromExt(header.Filename)
	}

	reply := s.service.HandleImage(r.Context(), user, data, strings.ToLower(strings.TrimSpace(contentType)))
	writeJSON(w, http.StatusOK, replyResponse{Reply: reply})
}

// contentTypeFromExt guesses the content type of an upload from its file name
func contentTypeFromExt(filename string) string {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".png":
		return "image/png"
	case ".pdf":
		return "application/pdf"
	case ".heic":
		return "image/heic"
	case ".heif":
		return "image/heif"
	}
	return "application/octet-stream"
}

// handleListExpenses returns the user's newest expenses
func (s *Server) handleListExpenses(w http.ResponseWriter, r *http.Request) {
	user, ok := userParam(w, r)
	if !ok {
		return
	}
	limit := defaultListLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			jsonError(w, "limit must be a positive number", http.StatusBadRequest)
			return
		}
		limit = n
	}

	expenses, err := s.service.ListExpenses(user, limit)
	if err != nil {
		slog.Error("Error listing expenses", "error", err)
		jsonError(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, expenses)
}

// handleDeleteExpense deletes an expense
func (s *Server) handleDeleteExpense(w http.ResponseWriter, r *http.Request) {
	user, ok := userParam(w, r)
	if !ok {
		return
	}
	id, ok := expenseID(w, r)
	if !ok {
		return
	}

	if err := s.service.DeleteExpense(user, id); err != nil {
		if errors.Is(err, ErrNotFound) {
			jsonError(w, "Expense not found", http.StatusNotFound)
			return
		}
		slog.Error("Error deleting expense", "id", id, "error", err)
		jsonError(w, "Error deleting expense", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleGetReceiptImage returns the archived receipt image of an expense
func (s *Server) handleGetReceiptImage(w http.ResponseWriter, r *http.Request) {
	user, ok := userParam(w, r)
	if !ok {
		return
	}
	id, ok := expenseID(w, r)
	if !ok {
		return
	}

	data, contentType, err := s.service.GetReceiptImage(user, id)
	if err != nil {
		jsonError(w, "File not found", http.StatusNotFound)
		return
	}
	if contentType == "" {
		contentType = http.DetectContentType(data)
	}
	w.Header().Set("Content-Type", contentType)
	w.Write(data)
}

// handleExport downloads the user's expenses as a spreadsheet
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	user, ok := userParam(w, r)
	if !ok {
		return
	}

	data, err := s.service.ExportExpenses(user)
	if err != nil {
		slog.Error("Error exporting expenses", "error", err)
		jsonError(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="pengeluaran-%s.xlsx"`, sanitizeHeaderValue(user)))
	w.Write(data)
}

// sanitizeHeaderValue keeps letters, digits, dash and underscore for use in a file name
func sanitizeHeaderValue(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	return b.String()
}

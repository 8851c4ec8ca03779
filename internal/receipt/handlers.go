package receipt

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

const (
	maxUploadSize       = int64(50 << 20) // high-resolution phone photos
	maxTextSize         = int64(1 << 20)
	maxFeedbackSize     = int64(1 << 10)
	defaultExpiringDays = 3
)

type processTextRequest struct {
	Text string `json:"text" validate:"required"`
}

type feedbackRequest struct {
	ActualExpiryDate string `json:"actual_expiry_date" validate:"required,datetime=2006-01-02"`
}

// setCORSHeaders sets CORS headers on a response
func setCORSHeaders(w http.ResponseWriter) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
	w.Header().Set("Access-Control-Max-Age", "3600")
}

// writeJSON encodes v with the given status
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Error encoding response", "error", err)
	}
}

// writeError writes a JSON error body
func writeError(w http.ResponseWriter, message string, status int) {
	writeJSON(w, status, map[string]string{"error": message})
}

// writeServiceError maps pipeline errors to status codes
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrEmptyReceipt):
		writeError(w, "No items found on the receipt. Try another photo.", http.StatusUnprocessableEntity)
	case errors.Is(err, ErrOCRFailure):
		writeError(w, "Could not read text from the image. Please try again.", http.StatusBadGateway)
	case errors.Is(err, ErrNotFound):
		writeError(w, "Not found", http.StatusNotFound)
	case errors.Is(err, ErrNoImprover):
		writeError(w, err.Error(), http.StatusNotImplemented)
	default:
		writeError(w, "Internal server error", http.StatusInternalServerError)
	}
}

// detectContentType falls back to the file extension when the part has
// no Content-Type
func detectContentType(header string, filename string) string {
	contentType := strings.ToLower(strings.TrimSpace(header))
	if contentType != "" {
		return contentType
	}
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
	default:
		return "application/octet-stream"
	}
}

// readUpload reads the "file" part of a multipart request. It writes the
// error response itself and returns ok=false on failure.
func readUpload(w http.ResponseWriter, r *http.Request) (data []byte, filename, contentType string, ok bool) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		slog.Error("Error parsing multipart form", "error", err)
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			writeError(w, "File is too large. Maximum size is 50MB. Please compress or resize your image.", http.StatusRequestEntityTooLarge)
			return nil, "", "", false
		}
		writeError(w, "Error parsing form", http.StatusBadRequest)
		return nil, "", "", false
	}

	f, header, err := r.FormFile("file")
	if err != nil {
		slog.Error("Error getting file from form", "error", err)
		writeError(w, "No file was selected. Please choose a file to upload.", http.StatusBadRequest)
		return nil, "", "", false
	}
	defer f.Close()

	data, err = io.ReadAll(f)
	if err != nil {
		slog.Error("Error reading file data", "error", err, "filename", header.Filename)
		writeError(w, "Error reading file. Please try again.", http.StatusInternalServerError)
		return nil, "", "", false
	}

	return data, header.Filename, detectContentType(header.Header.Get("Content-Type"), header.Filename), true
}

// handleUploadReceipt runs the pipeline on an uploaded receipt image
func (s *Server) handleUploadReceipt(w http.ResponseWriter, r *http.Request) {
	data, filename, contentType, ok := readUpload(w, r)
	if !ok {
		return
	}

	receipt, err := s.service.ProcessImage(r.Context(), filename, data, contentType)
	if err != nil {
		slog.Error("Error processing receipt", "filename", filename, "error", err)
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, receipt)
}

// handleProcessText runs the pipeline on already-extracted text
func (s *Server) handleProcessText(w http.ResponseWriter, r *http.Request) {
	var req processTextRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxTextSize)).Decode(&req); err != nil {
		writeError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if err := s.validate.Struct(req); err != nil {
		writeError(w, err.Error(), http.StatusBadRequest)
		return
	}

	receipt, err := s.service.ProcessText(r.Context(), req.Text)
	if err != nil {
		slog.Error("Error processing receipt text", "error", err)
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, receipt)
}

// handleListReceipts returns a list of all receipts
func (s *Server) handleListReceipts(w http.ResponseWriter, r *http.Request) {
	receipts, err := s.service.ListReceipts()
	if err != nil {
		slog.Error("Error listing receipts", "error", err)
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, receipts)
}

// handleGetReceipt returns a single receipt
func (s *Server) handleGetReceipt(w http.ResponseWriter, r *http.Request) {
	receipt, err := s.service.GetReceipt(r.PathValue("id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, receipt)
}

// handleGetReceiptFile returns the original upload for a receipt
func (s *Server) handleGetReceiptFile(w http.ResponseWriter, r *http.Request) {
	data, contentType, err := s.service.GetReceiptFile(r.PathValue("id"))
	if err != nil {
		slog.Error("Error getting receipt file", "id", r.PathValue("id"), "error", err)
		writeServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.Write(data)
}

// handleDeleteReceipt deletes a receipt
func (s *Server) handleDeleteReceipt(w http.ResponseWriter, r *http.Request) {
	if err := s.service.DeleteReceipt(r.PathValue("id")); err != nil {
		slog.Error("Error deleting receipt", "id", r.PathValue("id"), "error", err)
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleGetItem returns a single item
func (s *Server) handleGetItem(w http.ResponseWriter, r *http.Request) {
	item, err := s.service.GetItem(r.PathValue("id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

// handleExpiringItems lists items expiring within ?days= (default 3)
func (s *Server) handleExpiringItems(w http.ResponseWriter, r *http.Request) {
	days := defaultExpiringDays
	if v := r.URL.Query().Get("days"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeError(w, "days must be a non-negative integer", http.StatusBadRequest)
			return
		}
		days = n
	}

	items, err := s.service.ExpiringItems(days)
	if err != nil {
		slog.Error("Error listing expiring items", "error", err)
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

// handleImproveItem re-scores an item against an uploaded photo
func (s *Server) handleImproveItem(w http.ResponseWriter, r *http.Request) {
	data, _, contentType, ok := readUpload(w, r)
	if !ok {
		return
	}

	item, err := s.service.ImproveItem(r.Context(), r.PathValue("id"), data, contentType)
	if err != nil {
		slog.Error("Error improving item", "id", r.PathValue("id"), "error", err)
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

// handleFeedback accepts the actual expiry date of an item
func (s *Server) handleFeedback(w http.ResponseWriter, r *http.Request) {
	var req feedbackRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxFeedbackSize)).Decode(&req); err != nil {
		writeError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if err := s.validate.Struct(req); err != nil {
		writeError(w, err.Error(), http.StatusBadRequest)
		return
	}

	actual, _ := time.Parse(time.DateOnly, req.ActualExpiryDate)
	s.service.Learn(r.PathValue("id"), actual)
	w.WriteHeader(http.StatusAccepted)
}

// handleListFeedback returns all recorded expiry observations
func (s *Server) handleListFeedback(w http.ResponseWriter, r *http.Request) {
	feedback, err := s.service.ListFeedback()
	if err != nil {
		slog.Error("Error listing feedback", "error", err)
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, feedback)
}

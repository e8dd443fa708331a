package server

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/kodwo/billminder/internal/extraction"
	"github.com/kodwo/billminder/internal/fault"
	"github.com/kodwo/billminder/internal/paylink"
)

// maxUploadSize bounds document uploads (phone photos of bills can be large)
const maxUploadSize = int64(50 << 20) // 50MB

// setCORSHeaders sets CORS headers on a response
func setCORSHeaders(w http.ResponseWriter) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
	w.Header().Set("Access-Control-Max-Age", "3600")
}

// writeJSON encodes a JSON response with the given status
func writeJSON(w http.ResponseWriter, code int, v any) {
	setCORSHeaders(w)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Error encoding response", "error", err)
	}
}

// writeError maps tagged faults to HTTP statuses and hides everything else
// behind a generic 500
func writeError(w http.ResponseWriter, err error) {
	code := http.StatusInternalServerError
	switch fault.KindOf(err) {
	case fault.InvalidInput:
		code = http.StatusBadRequest
	case fault.Timeout:
		code = http.StatusGatewayTimeout
	case fault.SourceFailed, fault.UpstreamUnavailable:
		code = http.StatusBadGateway
	}
	writeJSON(w, code, map[string]string{"error": err.Error()})
}

var (
	unsafeCharRe = regexp.MustCompile(`[^a-zA-Z0-9\s\-_]`)
	multiSpaceRe = regexp.MustCompile(`\s+`)
)

// sanitizeRef cleans up an uploaded filename so it is safe as a storage
// reference, keeping the extension (it routes sync vs async text detection)
func sanitizeRef(filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	base := strings.TrimSuffix(filename, filepath.Ext(filename))

	base = unsafeCharRe.ReplaceAllString(base, "")
	base = multiSpaceRe.ReplaceAllString(base, " ")
	base = strings.TrimSpace(base)

	maxLen := 50
	if len(base) > maxLen {
		base = base[:maxLen]
	}
	if base == "" {
		base = "document"
	}
	return base + ext
}

// handleUploadDocument stores an uploaded bill document and returns its
// reference for a later extract call
func (s *Server) handleUploadDocument(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		slog.Error("Error parsing multipart form", "error", err)
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Error parsing form"})
		return
	}

	f, header, err := r.FormFile("file")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "No file provided"})
		return
	}
	defer f.Close()

	if header.Size > maxUploadSize {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "File is too large. Maximum size is 50MB."})
		return
	}

	data, err := io.ReadAll(f)
	if err != nil {
		slog.Error("Error reading file data", "error", err, "filename", header.Filename)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Error reading file"})
		return
	}

	ref := fmt.Sprintf("%s_%s", s.idGenerator.Generate(), sanitizeRef(header.Filename))
	if _, err := s.storage.Save(ref, data); err != nil {
		slog.Error("Error saving document", "ref", ref, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Error saving document"})
		return
	}

	writeJSON(w, http.StatusCreated, map[string]string{"document": ref})
}

// extractResponse flattens the bill fields alongside acquisition metadata
type extractResponse struct {
	extraction.Bill
	Pages       int               `json:"pages"`
	Source      extraction.Source `json:"source"`
	TextPreview string            `json:"text_preview"`
	Strategy    string            `json:"strategy,omitempty"`
}

// handleExtract runs the extraction pipeline on inline text or a stored
// document
func (s *Server) handleExtract(w http.ResponseWriter, r *http.Request) {
	var input extraction.Input
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
		return
	}

	result, err := s.extractor.Extract(r.Context(), input)
	if err != nil {
		slog.Error("Error extracting bill", "error", err)
		writeError(w, err)
		return
	}

	s.history.Append(extraction.HistoryEntry{
		At:     s.timeSource.Now(),
		Source: result.Source,
		Bill:   result.Bill,
	})

	writeJSON(w, http.StatusOK, extractResponse{
		Bill:        result.Bill,
		Pages:       result.Pages,
		Source:      result.Source,
		TextPreview: result.TextPreview,
		Strategy:    result.Strategy,
	})
}

// handleListExtractions returns the recent extraction history
func (s *Server) handleListExtractions(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.history.Entries())
}

// scheduleRequest mirrors the scheduling entry point. Pointers distinguish
// absent fields from explicit zero values.
type scheduleRequest struct {
	UserID  string `json:"user_id"`
	BillID  string `json:"bill_id"`
	DueDate string `json:"due_date"`
	Offsets *[]int `json:"offsets_days"`
	Hour    *int   `json:"hour"`
}

// handleSchedule computes and stores a reminder plan
func (s *Server) handleSchedule(w http.ResponseWriter, r *http.Request) {
	var req scheduleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
		return
	}

	if req.UserID == "" {
		req.UserID = "demo"
	}
	if req.BillID == "" {
		req.BillID = "bill-001"
	}
	offsets := []int{7, 3, 0}
	if req.Offsets != nil {
		offsets = *req.Offsets
	}
	hour := 9
	if req.Hour != nil {
		hour = *req.Hour
	}

	plan, err := s.reminders.Schedule(req.UserID, req.BillID, req.DueDate, offsets, hour)
	if err != nil {
		slog.Error("Error scheduling reminders", "user", req.UserID, "bill", req.BillID, "error", err)
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, plan)
}

// handleGetPlan returns the stored plan for a user's bill
func (s *Server) handleGetPlan(w http.ResponseWriter, r *http.Request) {
	userID := r.PathValue("user")
	billID := r.PathValue("bill")

	plan, err := s.reminders.GetPlan(userID, billID)
	if err != nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "Plan not found"})
		return
	}

	writeJSON(w, http.StatusOK, plan)
}

// paylinkRequest describes the bill a mock payment link is generated for
type paylinkRequest struct {
	Provider string  `json:"provider"`
	Amount   float64 `json:"amount"`
	Currency string  `json:"currency"`
}

// handleCreatePaylink generates a mock payment link
func (s *Server) handleCreatePaylink(w http.ResponseWriter, r *http.Request) {
	var req paylinkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
		return
	}

	writeJSON(w, http.StatusOK, paylink.New(req.Provider, req.Amount, req.Currency))
}

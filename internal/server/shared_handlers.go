package server

import (
	"net/http"
	"strings"
)

type anonymousUploadRequest struct {
	Name        string `json:"name"`
	Content     string `json:"content"`
	Language    string `json:"language"`
	ExpiryHours *int   `json:"expiryHours"`
}

func (s *Server) handleAnonymousUpload(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	ip := s.clientIP(r)
	if s.anonLimiter != nil && !s.anonLimiter.Allow(ip) {
		audit(r, "anonymous upload rate limited", "ip", ip)
		tooManyRequests(w)
		return
	}
	var req anonymousUploadRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	f, err := s.app.CreateAnonymousFile(req.Name, req.Content, req.Language, req.ExpiryHours, ip, r.UserAgent())
	if err != nil {
		writeAppError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, f)
}

func (s *Server) handleSharedByCode(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	code := strings.TrimPrefix(r.URL.Path, "/shared/")
	if code == "" || strings.Contains(code, "/") {
		http.NotFound(w, r)
		return
	}
	f, err := s.app.FileByShareCode(code)
	if err != nil {
		writeAppError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, f)
}

func (s *Server) handleSharedBySlug(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	slug := strings.TrimPrefix(r.URL.Path, "/slug/")
	if slug == "" || strings.Contains(slug, "/") {
		http.NotFound(w, r)
		return
	}
	f, err := s.app.FileBySlug(slug)
	if err != nil {
		writeAppError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, f)
}

// handleSharedFolderFile serves /shared-folder/{folderId}/file/{fileId}.
func (s *Server) handleSharedFolderFile(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	rest := strings.TrimPrefix(r.URL.Path, "/shared-folder/")
	parts := strings.Split(rest, "/")
	if len(parts) != 3 || parts[0] == "" || parts[1] != "file" || parts[2] == "" {
		http.NotFound(w, r)
		return
	}
	f, err := s.app.SharedFolderFile(parts[0], parts[2])
	if err != nil {
		writeAppError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, f)
}

package server

import (
	"net/http"
	"strings"

	"notebin/internal/app"
	"notebin/pkg/domain"
)

type createFileRequest struct {
	Name     string            `json:"name"`
	Type     string            `json:"type"`
	Content  string            `json:"content"`
	Language string            `json:"language"`
	Path     string            `json:"path"`
	Metadata map[string]string `json:"metadata"`
}

type updateContentRequest struct {
	Content  string `json:"content"`
	Language string `json:"language"`
}

type pinRequest struct {
	Pinned *bool `json:"pinned"`
}

type shareRequest struct {
	Slug string `json:"slug"`
}

func (s *Server) handleFiles(w http.ResponseWriter, r *http.Request, user domain.User) {
	switch r.Method {
	case http.MethodPost:
		var req createFileRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		f, err := s.app.CreateFile(user, app.CreateFileInput{
			Name:     req.Name,
			Type:     domain.EntryType(req.Type),
			Content:  req.Content,
			Language: req.Language,
			Path:     req.Path,
			Metadata: req.Metadata,
		})
		if err != nil {
			writeAppError(w, r, err)
			return
		}
		writeJSON(w, http.StatusCreated, f)
	case http.MethodGet:
		files, err := s.app.ListFiles(user)
		if err != nil {
			writeAppError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"items": files,
			"count": len(files),
		})
	default:
		methodNotAllowed(w)
	}
}

// handleFileByID dispatches /files/{id} and its sub-actions.
func (s *Server) handleFileByID(w http.ResponseWriter, r *http.Request, user domain.User) {
	rest := strings.TrimPrefix(r.URL.Path, "/files/")
	if rest == "" {
		http.NotFound(w, r)
		return
	}
	id, action, _ := strings.Cut(rest, "/")
	if id == "" || strings.Contains(action, "/") {
		http.NotFound(w, r)
		return
	}

	switch action {
	case "":
		s.handleFile(w, r, user, id)
	case "pin":
		s.handlePin(w, r, user, id)
	case "share":
		s.handleShare(w, r, user, id)
	case "unshare":
		s.handleUnshare(w, r, user, id)
	case "versions":
		s.handleVersions(w, r, user, id)
	default:
		http.NotFound(w, r)
	}
}

func (s *Server) handleFile(w http.ResponseWriter, r *http.Request, user domain.User, id string) {
	switch r.Method {
	case http.MethodGet:
		f, err := s.app.GetOwnedFile(user, id)
		if err != nil {
			writeAppError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, f)
	case http.MethodPut:
		var req updateContentRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		f, version, err := s.app.UpdateContent(user, id, req.Content, req.Language)
		if err != nil {
			writeAppError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"file":    f,
			"version": version.Version,
		})
	case http.MethodDelete:
		if err := s.app.DeleteFile(user, id); err != nil {
			writeAppError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
	default:
		methodNotAllowed(w)
	}
}

func (s *Server) handlePin(w http.ResponseWriter, r *http.Request, user domain.User, id string) {
	if r.Method != http.MethodPatch {
		methodNotAllowed(w)
		return
	}
	var req pinRequest
	if err := decodeJSON(r, &req); err != nil || req.Pinned == nil {
		writeError(w, http.StatusBadRequest, "pinned boolean is required")
		return
	}
	f, err := s.app.SetPinned(user, id, *req.Pinned)
	if err != nil {
		writeAppError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"id": f.ID, "isPinned": f.IsPinned})
}

func (s *Server) handleShare(w http.ResponseWriter, r *http.Request, user domain.User, id string) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	var req shareRequest
	if r.ContentLength > 0 {
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
	}
	f, err := s.app.Share(user, id, req.Slug)
	if err != nil {
		writeAppError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, f)
}

func (s *Server) handleUnshare(w http.ResponseWriter, r *http.Request, user domain.User, id string) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	f, err := s.app.Unshare(user, id)
	if err != nil {
		writeAppError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, f)
}

func (s *Server) handleVersions(w http.ResponseWriter, r *http.Request, user domain.User, id string) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	versions, err := s.app.ContentVersions(user, id)
	if err != nil {
		writeAppError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"items": versions,
		"count": len(versions),
	})
}

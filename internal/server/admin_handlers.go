package server

import (
	"net/http"
	"strings"

	"notebin/pkg/domain"
)

type planRequest struct {
	Plan string `json:"plan"`
}

func (s *Server) handleAdminUsers(w http.ResponseWriter, r *http.Request, _ domain.User) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	users, err := s.app.ListUsers()
	if err != nil {
		writeAppError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"items": users,
		"count": len(users),
	})
}

// handleAdminUserByID dispatches /admin/users/{id}/{action}.
func (s *Server) handleAdminUserByID(w http.ResponseWriter, r *http.Request, admin domain.User) {
	rest := strings.TrimPrefix(r.URL.Path, "/admin/users/")
	id, action, _ := strings.Cut(rest, "/")
	if id == "" || action == "" || strings.Contains(action, "/") {
		http.NotFound(w, r)
		return
	}

	switch action {
	case "block":
		if r.Method != http.MethodPost {
			methodNotAllowed(w)
			return
		}
		user, err := s.app.BlockUser(id)
		if err != nil {
			writeAppError(w, r, err)
			return
		}
		audit(r, "user blocked", "adminId", admin.ID, "userId", id)
		writeJSON(w, http.StatusOK, user)
	case "unblock":
		if r.Method != http.MethodPost {
			methodNotAllowed(w)
			return
		}
		user, err := s.app.UnblockUser(id)
		if err != nil {
			writeAppError(w, r, err)
			return
		}
		audit(r, "user unblocked", "adminId", admin.ID, "userId", id)
		writeJSON(w, http.StatusOK, user)
	case "plan":
		if r.Method != http.MethodPatch {
			methodNotAllowed(w)
			return
		}
		var req planRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		user, err := s.app.SetUserPlan(id, domain.Plan(req.Plan))
		if err != nil {
			writeAppError(w, r, err)
			return
		}
		audit(r, "user plan changed", "adminId", admin.ID, "userId", id, "plan", req.Plan)
		writeJSON(w, http.StatusOK, user)
	case "delete-files":
		if r.Method != http.MethodDelete {
			methodNotAllowed(w)
			return
		}
		count, err := s.app.DeleteAllFilesForUser(admin, id)
		if err != nil {
			writeAppError(w, r, err)
			return
		}
		audit(r, "user files deleted", "adminId", admin.ID, "userId", id, "count", count)
		writeJSON(w, http.StatusOK, map[string]any{
			"userId":       id,
			"deletedCount": count,
		})
	default:
		http.NotFound(w, r)
	}
}

// handleAdminFileByID dispatches /admin/files/{id}/{action}.
func (s *Server) handleAdminFileByID(w http.ResponseWriter, r *http.Request, admin domain.User) {
	rest := strings.TrimPrefix(r.URL.Path, "/admin/files/")
	id, action, _ := strings.Cut(rest, "/")
	if id == "" || action == "" || strings.Contains(action, "/") {
		http.NotFound(w, r)
		return
	}
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}

	switch action {
	case "block":
		f, err := s.app.BlockFile(id)
		if err != nil {
			writeAppError(w, r, err)
			return
		}
		audit(r, "file blocked", "adminId", admin.ID, "fileId", id)
		writeJSON(w, http.StatusOK, f)
	case "unblock":
		f, err := s.app.UnblockFile(id)
		if err != nil {
			writeAppError(w, r, err)
			return
		}
		audit(r, "file unblocked", "adminId", admin.ID, "fileId", id)
		writeJSON(w, http.StatusOK, f)
	default:
		http.NotFound(w, r)
	}
}

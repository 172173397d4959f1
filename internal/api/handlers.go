package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/streax-app/streax/internal/app/engine"
	"github.com/streax-app/streax/internal/domain"
)

// ─── Users & Stats ──────────────────────────────────────────────────────────

// handleCreateUser provisions a stats row for a user.
// POST /api/users {"user_id": "..."}
func (s *Server) handleCreateUser(w http.ResponseWriter, r *http.Request) {
	var req struct {
		UserID string `json:"user_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "validation", "invalid JSON body")
		return
	}

	view, created, err := s.engine.ProvisionUser(r.Context(), req.UserID)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	writeJSON(w, status, view)
}

// handleGetStats returns level, XP, derived threshold, and streak.
// GET /api/users/{userID}/stats
func (s *Server) handleGetStats(w http.ResponseWriter, r *http.Request) {
	view, err := s.engine.GetStats(r.Context(), chi.URLParam(r, "userID"))
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// ─── Tasks ──────────────────────────────────────────────────────────────────

// handleListTasks returns the user's tasks in insertion order.
// GET /api/users/{userID}/tasks?limit=N
func (s *Server) handleListTasks(w http.ResponseWriter, r *http.Request) {
	tasks, err := s.engine.ListTasks(r.Context(), chi.URLParam(r, "userID"), queryLimit(r))
	if err != nil {
		writeEngineError(w, err)
		return
	}
	if tasks == nil {
		tasks = []domain.Task{}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"tasks": tasks,
		"count": len(tasks),
	})
}

// handleCreateTask registers a task.
// POST /api/users/{userID}/tasks
func (s *Server) handleCreateTask(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name          string          `json:"name"`
		Type          domain.TaskType `json:"type"`
		BaseXP        int             `json:"base_xp"`
		RequiredDaily bool            `json:"required_daily"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "validation", "invalid JSON body")
		return
	}

	task, err := s.engine.CreateTask(r.Context(), chi.URLParam(r, "userID"),
		req.Name, req.Type, req.BaseXP, req.RequiredDaily)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, task)
}

// handleUpdateTask patches task fields.
// PATCH /api/tasks/{taskID}
func (s *Server) handleUpdateTask(w http.ResponseWriter, r *http.Request) {
	var patch domain.TaskPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		writeError(w, http.StatusBadRequest, "validation", "invalid JSON body")
		return
	}

	task, err := s.engine.UpdateTask(r.Context(), chi.URLParam(r, "taskID"), patch)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, task)
}

// handleDeleteTask removes a task from future processing.
// DELETE /api/tasks/{taskID}
func (s *Server) handleDeleteTask(w http.ResponseWriter, r *http.Request) {
	if err := s.engine.DeleteTask(r.Context(), chi.URLParam(r, "taskID")); err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// ─── Completion Log ─────────────────────────────────────────────────────────

// handleListLogs returns completion history, most recent first.
// GET /api/users/{userID}/logs?limit=N
func (s *Server) handleListLogs(w http.ResponseWriter, r *http.Request) {
	logs, err := s.engine.Logs(r.Context(), chi.URLParam(r, "userID"), queryLimit(r))
	if err != nil {
		writeEngineError(w, err)
		return
	}
	if logs == nil {
		logs = []domain.LogEntry{}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"logs":  logs,
		"count": len(logs),
	})
}

// handleActivity returns the day → completion-count map rebuilt from the
// log; the streak grid renders straight from this.
// GET /api/users/{userID}/activity
func (s *Server) handleActivity(w http.ResponseWriter, r *http.Request) {
	activity, err := s.engine.Activity(r.Context(), chi.URLParam(r, "userID"))
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"activity": activity,
	})
}

// ─── Day Processing ─────────────────────────────────────────────────────────

// handleProcessDay scores a day's completions.
// POST /api/users/{userID}/process-day
// Body: {"date": "YYYY-MM-DD" (optional, defaults to today), "tasks": [...]}
func (s *Server) handleProcessDay(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Date  domain.Date       `json:"date"`
		Tasks []engine.TaskMark `json:"tasks"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "validation", "invalid JSON body: "+err.Error())
		return
	}

	result, err := s.engine.Process(r.Context(), chi.URLParam(r, "userID"), req.Date, req.Tasks)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func queryLimit(r *http.Request) int {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return 0
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0
	}
	return n
}

package server

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/bobmcallan/fathom/internal/interfaces"
	"github.com/bobmcallan/fathom/internal/models"
)

// --- Macro handlers ---

func (s *Server) handleMacroGet(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	report, err := s.app.MacroService.GetReport(r.Context())
	if err != nil {
		WriteError(w, http.StatusNotFound, fmt.Sprintf("Macro report unavailable: %v", err))
		return
	}

	WriteJSON(w, http.StatusOK, report)
}

func (s *Server) handleMacroRefresh(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	report, err := s.app.MacroService.RefreshMacro(r.Context(), queryBool(r, "force"))
	if err != nil {
		WriteError(w, http.StatusInternalServerError, fmt.Sprintf("Macro refresh error: %v", err))
		return
	}

	WriteJSON(w, http.StatusOK, report)
}

// --- Refresh job handlers ---

// handleRefreshList handles POST /api/refresh/{listKey}.
func (s *Server) handleRefreshList(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	listKey := strings.TrimPrefix(r.URL.Path, "/api/refresh/")
	if listKey == "" || strings.Contains(listKey, "/") {
		WriteError(w, http.StatusBadRequest, "List key is required in path")
		return
	}

	job, err := s.app.StockService.RefreshList(r.Context(), listKey, queryBool(r, "force"))
	if err != nil {
		WriteError(w, http.StatusInternalServerError, fmt.Sprintf("Refresh error: %v", err))
		return
	}

	WriteJSON(w, http.StatusOK, job)
}

func (s *Server) handleJobList(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	jobs, err := s.app.Storage.JobStore().ListJobs(r.Context(), queryInt(r, "limit", 20))
	if err != nil {
		WriteError(w, http.StatusInternalServerError, fmt.Sprintf("Error listing jobs: %v", err))
		return
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"jobs":  jobs,
		"count": len(jobs),
	})
}

// handleJobGet handles GET /api/jobs/{id}.
func (s *Server) handleJobGet(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	id := strings.TrimPrefix(r.URL.Path, "/api/jobs/")
	if id == "" {
		s.handleJobList(w, r)
		return
	}

	job, err := s.app.Storage.JobStore().GetJob(r.Context(), id)
	if err != nil {
		WriteError(w, http.StatusNotFound, fmt.Sprintf("Job not found: %v", err))
		return
	}

	WriteJSON(w, http.StatusOK, job)
}

// --- Screen and list handlers ---

func (s *Server) handleScreen(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	options := interfaces.ScreenOptions{
		Screen: r.URL.Query().Get("screen"),
		MaxPE:  queryFloat(r, "max_pe", 0),
		MaxPS:  queryFloat(r, "max_ps", 0),
		Limit:  queryInt(r, "limit", 0),
	}

	stocks, err := s.app.ScreenService.Screen(r.Context(), options)
	if err != nil {
		WriteError(w, http.StatusBadRequest, fmt.Sprintf("Screen error: %v", err))
		return
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"screen": options.Screen,
		"stocks": stocks,
		"count":  len(stocks),
	})
}

func (s *Server) handleLists(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"lists": models.CuratedLists,
		"count": len(models.CuratedLists),
	})
}

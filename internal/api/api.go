package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/joescharf/boardcfg/internal/editor"
	"github.com/joescharf/boardcfg/internal/models"
	"github.com/joescharf/boardcfg/internal/service"
	"github.com/joescharf/boardcfg/internal/wizard"
)

// Server provides the REST API handlers.
type Server struct {
	svc     *service.Service
	wizards *wizard.Manager
	log     *slog.Logger
}

// NewServer creates a new API server. logger may be nil.
func NewServer(svc *service.Service, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		svc:     svc,
		wizards: wizard.NewManager(svc),
		log:     logger,
	}
}

// Router returns an http.Handler for the API routes.
func (s *Server) Router() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/v1/configuration", s.getConfiguration)
	mux.HandleFunc("PUT /api/v1/configuration/{table}", s.replaceTable)

	mux.HandleFunc("POST /api/v1/validate", s.validate)
	mux.HandleFunc("POST /api/v1/auto-detect", s.autoDetect)

	mux.HandleFunc("POST /api/v1/wizard", s.startWizard)
	mux.HandleFunc("GET /api/v1/wizard/{id}", s.getWizard)
	mux.HandleFunc("POST /api/v1/wizard/{id}/{action}", s.wizardAction)
	mux.HandleFunc("PUT /api/v1/wizard/{id}/{table}", s.editWizardTable)

	return corsMiddleware(mux)
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// tableSlugs maps URL path segments to configuration tables.
var tableSlugs = map[string]models.Table{
	"roles":       models.TableRoles,
	"issue-types": models.TableIssueTypes,
	"statuses":    models.TableStatuses,
	"link-types":  models.TableLinkTypes,
}

var errInvalidJSON = errors.New("invalid JSON")

func decodeRows[T any](r *http.Request) ([]T, error) {
	var rows []T
	if err := json.NewDecoder(r.Body).Decode(&rows); err != nil {
		return nil, fmt.Errorf("%w: %v", errInvalidJSON, err)
	}
	if rows == nil {
		rows = []T{}
	}
	return rows, nil
}

// --- Configuration ---

func (s *Server) getConfiguration(w http.ResponseWriter, r *http.Request) {
	cfg, err := s.svc.GetConfiguration(r.Context())
	if err != nil {
		s.log.Error("read configuration", "error", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, cfg)
}

func (s *Server) replaceTable(w http.ResponseWriter, r *http.Request) {
	table, ok := tableSlugs[r.PathValue("table")]
	if !ok {
		writeError(w, http.StatusNotFound, fmt.Sprintf("unknown table %q", r.PathValue("table")))
		return
	}
	switch table {
	case models.TableRoles:
		saveTable(s, w, r, editor.RolesTable(s.svc))
	case models.TableIssueTypes:
		saveTable(s, w, r, editor.IssueTypesTable(s.svc))
	case models.TableStatuses:
		saveTable(s, w, r, editor.StatusesTable(s.svc))
	case models.TableLinkTypes:
		saveTable(s, w, r, editor.LinkTypesTable(s.svc))
	}
}

// saveTable overwrites one table with the request body; the other three
// are not touched.
func saveTable[T any](s *Server, w http.ResponseWriter, r *http.Request, tbl *editor.Table[T]) {
	rows, err := decodeRows[T](r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if err := tbl.Load(r.Context()); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if err := tbl.Edit(func(local *editor.Rows[T]) error {
		local.Replace(rows)
		return nil
	}); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	stored, err := tbl.Save(r.Context())
	if err != nil {
		s.log.Error("save table", "table", tbl.Name(), "error", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, stored)
}

func (s *Server) validate(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.svc.Validate(r.Context()))
}

func (s *Server) autoDetect(w http.ResponseWriter, r *http.Request) {
	result, err := s.svc.RunAutoDetect(r.Context())
	if err != nil {
		s.log.Error("auto-detect", "error", err)
		writeError(w, statusFor(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// statusFor maps service and wizard errors to HTTP status codes.
func statusFor(err error) int {
	var pe *service.PersistError
	switch {
	case errors.Is(err, service.ErrNoSource):
		return http.StatusServiceUnavailable
	case errors.As(err, &pe):
		return http.StatusInternalServerError
	case errors.Is(err, wizard.ErrSessionNotFound):
		return http.StatusNotFound
	case errors.Is(err, wizard.ErrIllegalTransition),
		errors.Is(err, wizard.ErrNothingToRetry),
		errors.Is(err, wizard.ErrNotEditable):
		return http.StatusConflict
	case errors.Is(err, editor.ErrRowOutOfRange), errors.Is(err, errInvalidJSON):
		return http.StatusBadRequest
	default:
		// Everything else comes from the tracker.
		return http.StatusBadGateway
	}
}

// --- Wizard ---

func (s *Server) startWizard(w http.ResponseWriter, r *http.Request) {
	session, err := s.wizards.Start(r.Context())
	if err != nil {
		// The session stays in FETCH and can be retried.
		s.log.Warn("wizard fetch failed", "session", session.ID(), "error", err)
	}
	writeJSON(w, http.StatusCreated, session.Snapshot())
}

func (s *Server) getWizard(w http.ResponseWriter, r *http.Request) {
	session, err := s.wizards.Get(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, session.Snapshot())
}

func (s *Server) wizardAction(w http.ResponseWriter, r *http.Request) {
	session, err := s.wizards.Get(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}

	switch r.PathValue("action") {
	case "next":
		err = session.Advance()
	case "back":
		err = session.Back()
	case "retry":
		err = session.RetryFetch(r.Context())
	case "save":
		_, err = session.Save(r.Context())
	case "cancel":
		err = session.Cancel()
	default:
		writeError(w, http.StatusNotFound, fmt.Sprintf("unknown action %q", r.PathValue("action")))
		return
	}
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, session.Snapshot())
}

func (s *Server) editWizardTable(w http.ResponseWriter, r *http.Request) {
	session, err := s.wizards.Get(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	table, ok := tableSlugs[r.PathValue("table")]
	if !ok {
		writeError(w, http.StatusNotFound, fmt.Sprintf("unknown table %q", r.PathValue("table")))
		return
	}

	switch table {
	case models.TableRoles:
		err = replaceDraft(r, session.EditRoles)
	case models.TableIssueTypes:
		err = replaceDraft(r, session.EditIssueTypes)
	case models.TableStatuses:
		err = replaceDraft(r, session.EditStatuses)
	case models.TableLinkTypes:
		err = replaceDraft(r, session.EditLinkTypes)
	}
	if errors.Is(err, wizard.ErrNotEditable) {
		step, _ := wizard.StepForTable(table)
		writeError(w, http.StatusConflict, fmt.Sprintf("%s can only be edited in the %s step", r.PathValue("table"), step))
		return
	}
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, session.Snapshot())
}

// replaceDraft swaps a draft table for the request body through the
// session's step-gated edit function.
func replaceDraft[T any](r *http.Request, edit func(func(*editor.Rows[T]) error) error) error {
	rows, err := decodeRows[T](r)
	if err != nil {
		return err
	}
	return edit(func(local *editor.Rows[T]) error {
		local.Replace(rows)
		return nil
	})
}

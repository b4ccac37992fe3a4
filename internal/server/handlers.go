package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/gorilla/mux"
)

// registerRoutes registers all API routes
func (s *Server) registerRoutes(r *mux.Router) {
	r.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)

	r.HandleFunc("/api/tables", s.handleListTables).Methods(http.MethodGet)
	r.HandleFunc("/api/tables", s.handleCreateTable).Methods(http.MethodPost)
	r.HandleFunc("/api/tables/{id}", s.handleGetTable).Methods(http.MethodGet)
	r.HandleFunc("/api/tables/{id}", s.handleDeleteTable).Methods(http.MethodDelete)

	r.HandleFunc("/api/tables/{id}/deal", s.withTable(s.handleDeal)).Methods(http.MethodPost)
	r.HandleFunc("/api/tables/{id}/redraw", s.withTable(s.handleRedraw)).Methods(http.MethodPost)
	r.HandleFunc("/api/tables/{id}/sort", s.withTable(s.handleSort)).Methods(http.MethodPost)
	r.HandleFunc("/api/tables/{id}/battle", s.withTable(s.handleBattle)).Methods(http.MethodPost)
	r.HandleFunc("/api/tables/{id}/end", s.withTable(s.handleEnd)).Methods(http.MethodPost)

	r.HandleFunc("/api/tables/{id}/ws", s.withTable(s.handleWebSocket)).Methods(http.MethodGet)
}

type tableHandler func(w http.ResponseWriter, r *http.Request, t *Table)

// withTable resolves the {id} route variable to an open table
func (s *Server) withTable(next tableHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		t, ok := s.Table(mux.Vars(r)["id"])
		if !ok {
			s.errorResponse(w, ErrTableNotFound)
			return
		}
		next(w, r, t)
	}
}

// response writes data as JSON
func response(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data) // Ignore write errors to a gone client
}

func (s *Server) errorResponse(w http.ResponseWriter, err error) {
	status, code := classifyError(err)
	if status == http.StatusInternalServerError {
		s.logger.Error("Request failed", "error", err)
	}
	response(w, status, ErrorData{Code: code, Message: err.Error()})
}

func badRequest(w http.ResponseWriter, code, message string) {
	response(w, http.StatusBadRequest, ErrorData{Code: code, Message: message})
}

// decodeBody reads an optional JSON body into v
func decodeBody(r *http.Request, v any) error {
	err := json.NewDecoder(r.Body).Decode(v)
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	response(w, http.StatusOK, map[string]any{
		"status": "ok",
		"tables": len(s.Tables()),
	})
}

func (s *Server) handleListTables(w http.ResponseWriter, r *http.Request) {
	response(w, http.StatusOK, TableListData{Tables: s.Tables()})
}

func (s *Server) handleCreateTable(w http.ResponseWriter, r *http.Request) {
	var req CreateTableRequest
	if err := decodeBody(r, &req); err != nil {
		badRequest(w, "invalid_request", "Invalid request body")
		return
	}

	t, err := s.CreateTable(req)
	if err != nil {
		s.errorResponse(w, err)
		return
	}
	response(w, http.StatusCreated, t.State())
}

func (s *Server) handleGetTable(w http.ResponseWriter, r *http.Request) {
	t, ok := s.Table(mux.Vars(r)["id"])
	if !ok {
		s.errorResponse(w, ErrTableNotFound)
		return
	}
	response(w, http.StatusOK, t.State())
}

func (s *Server) handleDeleteTable(w http.ResponseWriter, r *http.Request) {
	if !s.RemoveTable(mux.Vars(r)["id"]) {
		s.errorResponse(w, ErrTableNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleDeal(w http.ResponseWriter, r *http.Request, t *Table) {
	state, err := t.Deal()
	if err != nil {
		s.errorResponse(w, err)
		return
	}
	response(w, http.StatusOK, state)
}

func (s *Server) handleRedraw(w http.ResponseWriter, r *http.Request, t *Table) {
	var req RedrawData
	if err := decodeBody(r, &req); err != nil {
		badRequest(w, "invalid_request", "Invalid request body")
		return
	}
	owner, ok := parseOwner(req.Owner)
	if !ok {
		badRequest(w, "invalid_owner", "Unknown owner: "+req.Owner)
		return
	}

	n, err := t.Redraw(owner, req.Indices)
	if err != nil {
		s.errorResponse(w, err)
		return
	}
	response(w, http.StatusOK, map[string]any{
		"replaced": n,
		"table":    t.State(),
	})
}

func (s *Server) handleSort(w http.ResponseWriter, r *http.Request, t *Table) {
	var req SortData
	if err := decodeBody(r, &req); err != nil {
		badRequest(w, "invalid_request", "Invalid request body")
		return
	}
	owner, ok := parseOwner(req.Owner)
	if !ok {
		badRequest(w, "invalid_owner", "Unknown owner: "+req.Owner)
		return
	}

	if err := t.Sort(owner); err != nil {
		s.errorResponse(w, err)
		return
	}
	response(w, http.StatusOK, t.State())
}

func (s *Server) handleBattle(w http.ResponseWriter, r *http.Request, t *Table) {
	battle, err := t.Battle()
	if err != nil {
		s.errorResponse(w, err)
		return
	}
	response(w, http.StatusOK, battle)
}

func (s *Server) handleEnd(w http.ResponseWriter, r *http.Request, t *Table) {
	state, err := t.End()
	if err != nil {
		s.errorResponse(w, err)
		return
	}
	response(w, http.StatusOK, state)
}

// handleWebSocket upgrades the request and streams table events
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request, t *Table) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error("Failed to upgrade connection", "error", err)
		return
	}

	client := NewConnection(conn, t, s.clock, s.logger)
	client.Start()
	if err := t.Attach(client); err != nil {
		s.logger.Debug("Attach failed", "table", t.ID(), "error", err)
		_ = client.Close()
		return
	}
	s.logger.Debug("Client connected", "table", t.ID())
}

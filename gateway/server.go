// Package gateway exposes the platform over HTTP: detection, invocation
// scheduling, approvals, pipeline runs and run reports, plus Prometheus
// metrics and a health probe.
package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/atomhq/atom"
	"github.com/atomhq/atom/model/invocation"
	"github.com/atomhq/atom/service/dao"
)

// waitTimeout bounds synchronous invocation waits requested with ?wait=true.
const waitTimeout = 30 * time.Second

// Server is the HTTP gateway in front of an atom.Service.
type Server struct {
	service *atom.Service
	router  *mux.Router
	http    *http.Server
}

// New creates a gateway server bound to addr.
func New(service *atom.Service, addr string) *Server {
	s := &Server{service: service, router: mux.NewRouter()}
	s.routes()
	s.http = &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Handler returns the gateway router, useful for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.router
}

// ListenAndServe starts serving and blocks until the server stops.
func (s *Server) ListenAndServe() error {
	return s.http.ListenAndServe()
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}

func (s *Server) routes() {
	s.router.Use(instrument)
	s.router.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)
	s.router.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	api := s.router.PathPrefix("/v1").Subrouter()
	api.HandleFunc("/detect", s.handleDetect).Methods(http.MethodPost)
	api.HandleFunc("/invocations", s.handleScheduleInvocation).Methods(http.MethodPost)
	api.HandleFunc("/invocations", s.handleListInvocations).Methods(http.MethodGet)
	api.HandleFunc("/invocations/{id}", s.handleGetInvocation).Methods(http.MethodGet)
	api.HandleFunc("/approvals", s.handleListApprovals).Methods(http.MethodGet)
	api.HandleFunc("/approvals/{id}", s.handleDecideApproval).Methods(http.MethodPost)
	api.HandleFunc("/runs", s.handleRun).Methods(http.MethodPost)
	api.HandleFunc("/reports/{runID}", s.handleGetReport).Methods(http.MethodGet)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "up"})
}

type detectRequest struct {
	Text string `json:"text"`
}

func (s *Server) handleDetect(w http.ResponseWriter, r *http.Request) {
	var request detectRequest
	if err := decodeJSON(r, &request); err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}
	if request.Text == "" {
		respondError(w, http.StatusBadRequest, errors.New("text is required"))
		return
	}
	respondJSON(w, http.StatusOK, s.service.Detector().Detect(request.Text))
}

type invocationRequest struct {
	Service string                 `json:"service"`
	Method  string                 `json:"method"`
	Input   map[string]interface{} `json:"input,omitempty"`
}

func (s *Server) handleScheduleInvocation(w http.ResponseWriter, r *http.Request) {
	var request invocationRequest
	if err := decodeJSON(r, &request); err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}
	if request.Service == "" || request.Method == "" {
		respondError(w, http.StatusBadRequest, errors.New("service and method are required"))
		return
	}
	anInvocation := invocation.New(request.Service, request.Method, request.Input)
	wait, err := s.service.Runtime().ScheduleInvocation(r.Context(), anInvocation)
	if err != nil {
		respondError(w, http.StatusInternalServerError, err)
		return
	}
	metricInvocationsScheduled.WithLabelValues(anInvocation.Action()).Inc()

	if r.URL.Query().Get("wait") == "true" {
		anInvocation, err = wait(waitTimeout)
		if err != nil {
			respondError(w, http.StatusGatewayTimeout, err)
			return
		}
		respondJSON(w, http.StatusOK, anInvocation)
		return
	}
	respondJSON(w, http.StatusAccepted, anInvocation)
}

func (s *Server) handleListInvocations(w http.ResponseWriter, r *http.Request) {
	var parameters []*dao.Parameter
	if runID := r.URL.Query().Get("runId"); runID != "" {
		parameters = append(parameters, dao.NewParameter("RunID", runID))
	}
	if state := r.URL.Query().Get("state"); state != "" {
		parameters = append(parameters, dao.NewParameter("State", state))
	}
	invocations, err := s.service.Runtime().Invocations(r.Context(), parameters...)
	if err != nil {
		respondError(w, http.StatusInternalServerError, err)
		return
	}
	respondJSON(w, http.StatusOK, invocations)
}

func (s *Server) handleGetInvocation(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	anInvocation, err := s.service.Runtime().Invocation(r.Context(), id)
	if err != nil {
		respondError(w, http.StatusNotFound, fmt.Errorf("invocation %q not found", id))
		return
	}
	respondJSON(w, http.StatusOK, anInvocation)
}

func (s *Server) handleListApprovals(w http.ResponseWriter, r *http.Request) {
	pending, err := s.service.Runtime().Approval().ListPending(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, err)
		return
	}
	respondJSON(w, http.StatusOK, pending)
}

type decisionRequest struct {
	Approved bool   `json:"approved"`
	Reason   string `json:"reason,omitempty"`
}

func (s *Server) handleDecideApproval(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	var request decisionRequest
	if err := decodeJSON(r, &request); err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}
	decision, err := s.service.Runtime().Approval().Decide(r.Context(), id, request.Approved, request.Reason)
	if err != nil {
		respondError(w, http.StatusNotFound, err)
		return
	}
	outcome := "rejected"
	if decision.Approved {
		outcome = "approved"
	}
	metricApprovalDecisions.WithLabelValues(outcome).Inc()
	respondJSON(w, http.StatusOK, decision)
}

type runRequest struct {
	Text     string               `json:"text,omitempty"`
	Pipeline *invocation.Pipeline `json:"pipeline,omitempty"`
}

func (s *Server) handleRun(w http.ResponseWriter, r *http.Request) {
	var request runRequest
	if err := decodeJSON(r, &request); err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}
	metricRunsStarted.Inc()
	switch {
	case request.Text != "":
		runReport, err := s.service.Runtime().RunText(r.Context(), request.Text)
		if err != nil {
			respondError(w, http.StatusUnprocessableEntity, err)
			return
		}
		respondJSON(w, http.StatusOK, runReport)
	case request.Pipeline != nil:
		runReport, err := s.service.Runtime().RunPipeline(r.Context(), request.Pipeline)
		if err != nil {
			respondError(w, http.StatusUnprocessableEntity, err)
			return
		}
		respondJSON(w, http.StatusOK, runReport)
	default:
		respondError(w, http.StatusBadRequest, errors.New("either text or pipeline is required"))
	}
}

func (s *Server) handleGetReport(w http.ResponseWriter, r *http.Request) {
	runID := mux.Vars(r)["runID"]
	runReport, err := s.service.Runtime().Reports().Load(r.Context(), runID)
	if err != nil {
		respondError(w, http.StatusNotFound, fmt.Errorf("report %q not found", runID))
		return
	}
	respondJSON(w, http.StatusOK, runReport)
}

func decodeJSON(r *http.Request, target interface{}) error {
	defer r.Body.Close()
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(target); err != nil {
		return fmt.Errorf("invalid request body: %w", err)
	}
	return nil
}

func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func respondError(w http.ResponseWriter, status int, err error) {
	respondJSON(w, status, map[string]string{"error": err.Error()})
}

package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	proposalengine "govengine/contexts/governance/proposal-engine"
	domainerrors "govengine/contexts/governance/proposal-engine/domain/errors"
	governancehttp "govengine/contexts/governance/proposal-engine/transport/http"
	"govengine/internal/platform/ratelimiter"

	httpSwagger "github.com/swaggo/http-swagger"
	_ "govengine/internal/platform/httpserver/docs"
)

type Server struct {
	mux        *http.ServeMux
	handler    http.Handler
	httpServer *http.Server
	logger     *slog.Logger
	addr       string
	governance proposalengine.Module
	metrics    http.Handler
	readiness  func(context.Context) error
}

type Options struct {
	// Metrics serves /metrics when set.
	Metrics http.Handler
	Limiter *ratelimiter.MapLimiter
	// Readiness backs /readyz; nil reports ready.
	Readiness func(context.Context) error
}

func New(
	governance proposalengine.Module,
	opts Options,
	logger *slog.Logger,
	addr string,
) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if addr == "" {
		addr = ":8080"
	}

	s := &Server{
		mux:        http.NewServeMux(),
		logger:     logger,
		addr:       addr,
		governance: governance,
		metrics:    opts.Metrics,
		readiness:  opts.Readiness,
	}
	s.registerRoutes()
	s.handler = ratelimiter.Middleware(opts.Limiter, s.mux)
	return s
}

// Handler exposes the routed handler including middleware.
func (s *Server) Handler() http.Handler {
	return s.handler
}

func (s *Server) Start() error {
	s.logger.Info("http server starting",
		"event", "http_server_starting",
		"module", "internal/platform/httpserver",
		"layer", "platform",
		"addr", s.addr,
	)
	s.httpServer = &http.Server{
		Addr:              s.addr,
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
	err := s.httpServer.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	s.logger.Info("http server shutting down",
		"event", "http_server_shutdown",
		"module", "internal/platform/httpserver",
		"layer", "platform",
	)
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) registerRoutes() {
	s.mux.Handle("/swagger/", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))
	if s.metrics != nil {
		s.mux.Handle("GET /metrics", s.metrics)
	}
	s.mux.HandleFunc("GET /healthz", s.handleHealth)
	s.mux.HandleFunc("GET /readyz", s.handleReady)

	s.mux.HandleFunc("POST /v1/governance/members", s.handleRegisterMember)
	s.mux.HandleFunc("GET /v1/governance/members", s.handleListMembers)
	s.mux.HandleFunc("GET /v1/governance/members/{member_id}", s.handleGetMember)

	s.mux.HandleFunc("POST /v1/governance/proposals", s.handleCreateProposal)
	s.mux.HandleFunc("GET /v1/governance/proposals", s.handleListProposals)
	s.mux.HandleFunc("GET /v1/governance/proposals/{proposal_id}", s.handleGetProposal)
	s.mux.HandleFunc("GET /v1/governance/proposals/{proposal_id}/votes", s.handleListVotes)
	s.mux.HandleFunc("POST /v1/governance/proposals/{proposal_id}/votes", s.handleCastVote)
	s.mux.HandleFunc("POST /v1/governance/proposals/{proposal_id}/finalize", s.handleFinalizeProposal)
	s.mux.HandleFunc("POST /v1/governance/proposals/{proposal_id}/execute", s.handleExecuteProposal)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if s.readiness != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := s.readiness(ctx); err != nil {
			s.logger.Warn("readiness check failed",
				"event", "http_readiness_failed",
				"module", "internal/platform/httpserver",
				"layer", "platform",
				"error", err.Error(),
			)
			writeGovernanceError(w, http.StatusServiceUnavailable, "not_ready", err.Error())
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

func (s *Server) handleRegisterMember(w http.ResponseWriter, r *http.Request) {
	var req governancehttp.RegisterMemberRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeGovernanceError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	resp, err := s.governance.Handler.RegisterMemberHandler(r.Context(), req)
	if err != nil {
		writeGovernanceDomainError(w, err)
		return
	}
	status := http.StatusCreated
	if resp.Replaced {
		status = http.StatusOK
	}
	writeJSON(w, status, resp)
}

func (s *Server) handleListMembers(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	verifiedOnly := false
	if raw := strings.TrimSpace(query.Get("verified")); raw != "" {
		parsed, err := strconv.ParseBool(raw)
		if err != nil {
			writeGovernanceError(w, http.StatusBadRequest, "invalid_query", "verified must be a boolean")
			return
		}
		verifiedOnly = parsed
	}
	resp, err := s.governance.Handler.ListMembersHandler(r.Context(), query.Get("role"), verifiedOnly)
	if err != nil {
		writeGovernanceDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleGetMember(w http.ResponseWriter, r *http.Request) {
	resp, err := s.governance.Handler.GetMemberHandler(r.Context(), r.PathValue("member_id"))
	if err != nil {
		writeGovernanceDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleCreateProposal(w http.ResponseWriter, r *http.Request) {
	var req governancehttp.CreateProposalRequest
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		if isUnknownFieldError(err) {
			writeGovernanceError(w, http.StatusBadRequest, domainerrors.Code(domainerrors.ErrUnknownProposalOption), err.Error())
			return
		}
		writeGovernanceError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	if strings.TrimSpace(req.ProposerID) == "" {
		req.ProposerID = r.Header.Get("X-Member-Id")
	}
	resp, err := s.governance.Handler.CreateProposalHandler(r.Context(), req)
	if err != nil {
		writeGovernanceDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleListProposals(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	resp, err := s.governance.Handler.ListProposalsHandler(
		r.Context(),
		query.Get("status"),
		query.Get("category"),
		query.Get("proposer_id"),
	)
	if err != nil {
		writeGovernanceDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleGetProposal(w http.ResponseWriter, r *http.Request) {
	resp, err := s.governance.Handler.GetProposalHandler(r.Context(), r.PathValue("proposal_id"))
	if err != nil {
		writeGovernanceDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleListVotes(w http.ResponseWriter, r *http.Request) {
	resp, err := s.governance.Handler.ListVotesHandler(r.Context(), r.PathValue("proposal_id"))
	if err != nil {
		writeGovernanceDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleCastVote(w http.ResponseWriter, r *http.Request) {
	var req governancehttp.CastVoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeGovernanceError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	resp, err := s.governance.Handler.CastVoteHandler(
		r.Context(),
		r.PathValue("proposal_id"),
		r.Header.Get("X-Member-Id"),
		req,
	)
	if err != nil {
		writeGovernanceDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleFinalizeProposal(w http.ResponseWriter, r *http.Request) {
	resp, err := s.governance.Handler.FinalizeProposalHandler(r.Context(), r.PathValue("proposal_id"))
	if err != nil {
		writeGovernanceDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleExecuteProposal(w http.ResponseWriter, r *http.Request) {
	var req governancehttp.ExecuteProposalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeGovernanceError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	resp, err := s.governance.Handler.ExecuteProposalHandler(r.Context(), r.PathValue("proposal_id"), req)
	if err != nil {
		writeGovernanceDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func writeGovernanceDomainError(w http.ResponseWriter, err error) {
	switch domainerrors.KindOf(err) {
	case domainerrors.KindNotFound:
		writeGovernanceError(w, http.StatusNotFound, domainerrors.Code(err), err.Error())
	case domainerrors.KindValidation:
		writeGovernanceError(w, http.StatusBadRequest, domainerrors.Code(err), err.Error())
	case domainerrors.KindState:
		writeGovernanceError(w, http.StatusConflict, domainerrors.Code(err), err.Error())
	default:
		writeGovernanceError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}

func writeGovernanceError(w http.ResponseWriter, status int, code string, message string) {
	writeJSON(w, status, governancehttp.ErrorResponse{
		Code:    code,
		Message: message,
	})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func isUnknownFieldError(err error) bool {
	return err != nil && strings.HasPrefix(err.Error(), "json: unknown field ")
}

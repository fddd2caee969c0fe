package transport

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/harborloop/demoday/internal/domain/investor"
	"github.com/harborloop/demoday/internal/domain/ledger"
	"github.com/harborloop/demoday/internal/domain/project"
	"github.com/harborloop/demoday/internal/domain/stage"
	"github.com/harborloop/demoday/internal/domain/traffic"
	"github.com/harborloop/demoday/internal/repository"
)

// ProjectService defines project operations needed by the HTTP surface.
type ProjectService interface {
	Board(ctx context.Context) (*project.Board, error)
	Get(ctx context.Context, id int64) (*project.Project, error)
}

// InvestorService defines investor operations needed by the HTTP surface.
type InvestorService interface {
	Login(ctx context.Context, username, password string) (*investor.Profile, error)
	Profile(ctx context.Context, username string) (*investor.Profile, error)
}

// LedgerService defines budget ledger operations needed by the HTTP surface.
type LedgerService interface {
	TryCommit(ctx context.Context, account string, projectID int64, amount int64) (*ledger.Investment, error)
}

// StageService defines stage controller operations needed by the HTTP surface.
type StageService interface {
	Current(ctx context.Context) (stage.Stage, error)
	TransitionTo(ctx context.Context, target stage.Stage, force bool) error
	Invalidate()
}

// TrafficService applies UV counts from the analytics pipeline.
type TrafficService interface {
	Apply(ctx context.Context, projectID int64, uv int64) error
}

// TokenIssuer signs investor session tokens.
type TokenIssuer interface {
	Issue(account, name string) (string, error)
}

// Services bundles everything the router dispatches to.
type Services struct {
	Projects  ProjectService
	Investors InvestorService
	Ledger    LedgerService
	Stages    StageService
	Traffic   TrafficService
	Tokens    TokenIssuer
}

// Server wires HTTP handlers.
type Server struct {
	services Services
	logger   *slog.Logger
}

// NewServer creates an HTTP router with middleware.
func NewServer(services Services, verifier TokenVerifier, adminToken, pipelineToken string, logger *slog.Logger) *chi.Mux {
	if logger == nil {
		logger = slog.Default()
	}
	srv := &Server{services: services, logger: logger}

	r := chi.NewRouter()
	r.Get("/health", srv.handleHealth)

	r.Route("/api", func(r chi.Router) {
		r.Get("/stage", srv.handleStage)
		r.Get("/projects", srv.handleBoard)
		r.Get("/projects/{id}", srv.handleProject)
		r.Post("/login", srv.handleLogin)

		r.Group(func(r chi.Router) {
			r.Use(InvestorAuth(verifier))
			r.Get("/investors/me", srv.handleProfile)
			r.Post("/invest", srv.handleInvest)
		})

		r.Group(func(r chi.Router) {
			r.Use(StaticTokenAuth(pipelineToken))
			r.Post("/traffic/uv", srv.handleTrafficUV)
		})

		r.Group(func(r chi.Router) {
			r.Use(StaticTokenAuth(adminToken))
			r.Post("/admin/stage", srv.handleStageTransition)
			r.Post("/admin/stage/invalidate", srv.handleStageInvalidate)
		})
	})

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

type stageResponse struct {
	Code      string `json:"code"`
	Name      string `json:"name"`
	Time      string `json:"time"`
	CanInvest bool   `json:"can_invest"`
}

func (s *Server) handleStage(w http.ResponseWriter, r *http.Request) {
	current, err := s.services.Stages.Current(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, stageResponse{
		Code:      string(current),
		Name:      current.Name(),
		Time:      current.TimeWindow(),
		CanInvest: current.CanInvest(),
	})
}

func (s *Server) handleBoard(w http.ResponseWriter, r *http.Request) {
	board, err := s.services.Projects.Board(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, board)
}

func (s *Server) handleProject(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		s.writeErrorStatus(w, http.StatusBadRequest, "invalid project id")
		return
	}
	proj, err := s.services.Projects.Get(r.Context(), id)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, proj)
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token    string            `json:"token"`
	Investor *investor.Profile `json:"investor"`
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeErrorStatus(w, http.StatusBadRequest, "invalid request body")
		return
	}

	profile, err := s.services.Investors.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		s.writeError(w, err)
		return
	}

	token, err := s.services.Tokens.Issue(profile.Username, profile.Name)
	if err != nil {
		s.writeError(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, loginResponse{Token: token, Investor: profile})
}

func (s *Server) handleProfile(w http.ResponseWriter, r *http.Request) {
	account, ok := AccountFromContext(r.Context())
	if !ok {
		s.writeErrorStatus(w, http.StatusUnauthorized, "missing account")
		return
	}
	profile, err := s.services.Investors.Profile(r.Context(), account)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, profile)
}

type investRequest struct {
	ProjectID int64 `json:"project_id"`
	Amount    int64 `json:"amount"`
}

func (s *Server) handleInvest(w http.ResponseWriter, r *http.Request) {
	account, ok := AccountFromContext(r.Context())
	if !ok {
		s.writeErrorStatus(w, http.StatusUnauthorized, "missing account")
		return
	}

	var req investRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeErrorStatus(w, http.StatusBadRequest, "invalid request body")
		return
	}

	record, err := s.services.Ledger.TryCommit(r.Context(), account, req.ProjectID, req.Amount)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, record)
}

type trafficRequest struct {
	ProjectID int64 `json:"project_id"`
	UV        int64 `json:"uv"`
}

func (s *Server) handleTrafficUV(w http.ResponseWriter, r *http.Request) {
	var req trafficRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeErrorStatus(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := s.services.Traffic.Apply(r.Context(), req.ProjectID, req.UV); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type stageTransitionRequest struct {
	Stage string `json:"stage"`
	Force bool   `json:"force"`
}

func (s *Server) handleStageTransition(w http.ResponseWriter, r *http.Request) {
	var req stageTransitionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeErrorStatus(w, http.StatusBadRequest, "invalid request body")
		return
	}

	target, err := stage.Parse(req.Stage)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if err := s.services.Stages.TransitionTo(r.Context(), target, req.Force); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleStageInvalidate(w http.ResponseWriter, _ *http.Request) {
	s.services.Stages.Invalidate()
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("encoding response", "error", err)
	}
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) writeErrorStatus(w http.ResponseWriter, status int, msg string) {
	s.writeJSON(w, status, errorResponse{Error: msg})
}

// writeError maps domain errors onto HTTP statuses. Budget and stage
// violations keep their detail so operators can see the offending
// investor and stage without replaying the ledger.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, investor.ErrInvalidCredentials):
		status = http.StatusUnauthorized
	case errors.Is(err, ledger.ErrInvalidAmount),
		errors.Is(err, stage.ErrUnknownStage),
		errors.Is(err, repository.ErrInvalidInput):
		status = http.StatusBadRequest
	case errors.Is(err, ledger.ErrDisabled):
		status = http.StatusForbidden
	case errors.Is(err, project.ErrProjectNotFound),
		errors.Is(err, ledger.ErrProjectNotFound),
		errors.Is(err, ledger.ErrInvestorNotFound),
		errors.Is(err, investor.ErrInvestorNotFound),
		errors.Is(err, repository.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, ledger.ErrOverBudget),
		errors.Is(err, ledger.ErrStageClosed),
		errors.Is(err, stage.ErrInvalidTransition),
		errors.Is(err, traffic.ErrSyncClosed),
		errors.Is(err, traffic.ErrNonMonotonic):
		status = http.StatusConflict
	case errors.Is(err, repository.ErrUnavailable):
		status = http.StatusServiceUnavailable
	}

	if status == http.StatusInternalServerError {
		s.logger.Error("request failed", "error", err)
	}
	s.writeErrorStatus(w, status, err.Error())
}

package chi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/ideaboard/internal/domain"
	"github.com/kailas-cloud/ideaboard/internal/logger"
	"github.com/kailas-cloud/ideaboard/internal/metrics"
	backfilluc "github.com/kailas-cloud/ideaboard/internal/usecase/backfill"
	commentuc "github.com/kailas-cloud/ideaboard/internal/usecase/comment"
	healthuc "github.com/kailas-cloud/ideaboard/internal/usecase/health"
	ratelimituc "github.com/kailas-cloud/ideaboard/internal/usecase/ratelimit"
	similarityuc "github.com/kailas-cloud/ideaboard/internal/usecase/similarity"
)

const defaultMaxBodyBytes = 64 << 10

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// Deps are the use cases served over HTTP.
type Deps struct {
	Ideas      IdeaService
	Similarity SimilarityService
	Comments   CommentService
	Backfill   BackfillService
	Health     HealthService
	Limiter    RateLimiter
	Logger     *zap.Logger
}

// Options tune routing. Zero rules disable limiting for their bucket.
type Options struct {
	APIKeys      []string
	SimilarRule  ratelimituc.Rule
	CommentRule  ratelimituc.Rule
	MaxBodyBytes int64
}

// Server is the ideaboard HTTP API.
type Server struct {
	deps          Deps
	opts          Options
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(deps Deps, opts Options) *Server {
	if opts.MaxBodyBytes <= 0 {
		opts.MaxBodyBytes = defaultMaxBodyBytes
	}
	s := &Server{deps: deps, opts: opts, logger: deps.Logger}
	s.errorHandlers = []errorHandler{
		validationHandler,
		sentinelHandler(domain.ErrNotFound, http.StatusNotFound, CodeNotFound),
		sentinelHandler(domain.ErrAlreadyExists, http.StatusConflict, CodeAlreadyExists),
		sentinelHandler(domain.ErrInvalidParent, http.StatusUnprocessableEntity, CodeInvalidParent),
		sentinelHandler(domain.ErrEmptyInput, http.StatusBadRequest, CodeValidationFailed),
		sentinelHandler(domain.ErrVectorDimMismatch, http.StatusBadRequest, CodeVectorDimMismatch),
		sentinelHandler(domain.ErrRateLimited, http.StatusTooManyRequests, CodeRateLimited),
		sentinelHandler(domain.ErrEmbeddingUnconfigured,
			http.StatusServiceUnavailable, CodeEmbeddingUnconfigured),
		sentinelHandler(domain.ErrEmbeddingProviderError,
			http.StatusBadGateway, CodeEmbeddingProviderError),
	}
	return s
}

// Handler builds the full router with middleware.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(jsonRecoverer(s.logger))
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(s.logger))
	r.Use(BearerAuthMiddleware(s.opts.APIKeys))
	r.Use(metrics.Middleware())

	r.Get("/health", s.HealthCheck)
	r.Get("/metrics", s.Metrics)

	r.Route("/ideas", func(r chi.Router) {
		r.Post("/", s.CreateIdea)
		r.With(s.rateLimit(s.opts.SimilarRule)).Post("/similar", s.FindSimilar)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", s.GetIdea)
			r.Put("/", s.UpdateIdea)
			r.Post("/vote", s.VoteIdea)
			r.Get("/comments", s.GetThread)
			r.With(s.rateLimit(s.opts.CommentRule)).Post("/comments", s.CreateComment)
		})
	})
	r.Post("/comments/{id}/upvote", s.UpvoteComment)
	r.Post("/admin/backfill", s.RunBackfill)

	return r
}

// CreateIdea handles POST /ideas.
func (s *Server) CreateIdea(w http.ResponseWriter, r *http.Request) {
	var req IdeaRequest
	if !s.decode(w, r, &req) {
		return
	}

	idea, err := s.deps.Ideas.Create(r.Context(), req.AuthorID, req.content())
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, ideaToResponse(&idea))
}

// GetIdea handles GET /ideas/{id}.
func (s *Server) GetIdea(w http.ResponseWriter, r *http.Request) {
	idea, err := s.deps.Ideas.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ideaToResponse(&idea))
}

// UpdateIdea handles PUT /ideas/{id}.
func (s *Server) UpdateIdea(w http.ResponseWriter, r *http.Request) {
	var req IdeaRequest
	if !s.decode(w, r, &req) {
		return
	}

	idea, err := s.deps.Ideas.Update(r.Context(), chi.URLParam(r, "id"), req.content())
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ideaToResponse(&idea))
}

// VoteIdea handles POST /ideas/{id}/vote.
func (s *Server) VoteIdea(w http.ResponseWriter, r *http.Request) {
	var req VoteRequest
	if !s.decode(w, r, &req) {
		return
	}

	id := chi.URLParam(r, "id")
	votes, err := s.deps.Ideas.Vote(r.Context(), id, req.Delta)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, VoteResponse{ID: id, Votes: votes})
}

// FindSimilar handles POST /ideas/similar. Any failure past decoding
// degrades to an empty match list with 200.
func (s *Server) FindSimilar(w http.ResponseWriter, r *http.Request) {
	var req SimilarRequest
	if !s.decode(w, r, &req) {
		return
	}

	matches := s.deps.Similarity.FindSimilar(r.Context(), similarityuc.Request{
		Text:      req.Text,
		Threshold: req.Threshold,
		Limit:     req.Limit,
		ExcludeID: req.ExcludeID,
	})
	writeJSON(w, http.StatusOK, matchesToResponse(matches))
}

// GetThread handles GET /ideas/{id}/comments.
func (s *Server) GetThread(w http.ResponseWriter, r *http.Request) {
	thread, err := s.deps.Comments.Thread(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ThreadResponse{
		Comments: nodesToResponse(thread.Roots),
		Total:    thread.Total,
	})
}

// CreateComment handles POST /ideas/{id}/comments.
func (s *Server) CreateComment(w http.ResponseWriter, r *http.Request) {
	var req CommentRequest
	if !s.decode(w, r, &req) {
		return
	}

	c, err := s.deps.Comments.Create(r.Context(), commentuc.CreateInput{
		IdeaID:   chi.URLParam(r, "id"),
		ParentID: req.ParentID,
		AuthorID: req.AuthorID,
		Body:     req.Body,
	})
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, commentToResponse(&c))
}

// UpvoteComment handles POST /comments/{id}/upvote.
func (s *Server) UpvoteComment(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	n, err := s.deps.Comments.Upvote(r.Context(), id)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, UpvoteResponse{ID: id, Upvotes: n})
}

// RunBackfill handles POST /admin/backfill. An empty body runs with defaults.
func (s *Server) RunBackfill(w http.ResponseWriter, r *http.Request) {
	var req BackfillRequest
	if r.ContentLength != 0 && !s.decode(w, r, &req) {
		return
	}

	report, err := s.deps.Backfill.Run(r.Context(), backfilluc.Options{
		DryRun:      req.DryRun,
		Limit:       req.Limit,
		Concurrency: req.Concurrency,
	})
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, reportToResponse(&report))
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.deps.Health.Check(r.Context())

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}

	httpStatus := http.StatusOK
	if report.Status != healthuc.Healthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, HealthResponse{
		Status: string(report.Status),
		Checks: checks,
	})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	body := http.MaxBytesReader(w, r.Body, s.opts.MaxBodyBytes)
	if err := json.NewDecoder(body).Decode(v); err != nil {
		var mbe *http.MaxBytesError
		if errors.As(err, &mbe) {
			writeError(w, http.StatusRequestEntityTooLarge, CodeBadRequest, "request body too large")
			return false
		}
		writeError(w, http.StatusBadRequest, CodeBadRequest, "Invalid request body: "+err.Error())
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code ErrorCode, message string) {
	writeJSON(w, status, ErrorResponse{
		Code:    code,
		Message: message,
	})
}

// safeDomainMessage returns a sentinel error message for the client without exposing internals.
// Validation errors are client-caused and returned as is.
func safeDomainMessage(err error) string {
	var ve *domain.ValidationError
	if errors.As(err, &ve) {
		return ve.Error()
	}
	var ee *domain.EmptyInputError
	if errors.As(err, &ee) {
		return ee.Error()
	}

	sentinels := []error{
		domain.ErrNotFound,
		domain.ErrAlreadyExists,
		domain.ErrInvalidParent,
		domain.ErrVectorDimMismatch,
		domain.ErrRateLimited,
		domain.ErrEmbeddingUnconfigured,
		domain.ErrEmbeddingProviderError,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code ErrorCode) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

func validationHandler(w http.ResponseWriter, err error, msg string) bool {
	if !errors.Is(err, domain.ErrInvalidInput) {
		return false
	}
	writeError(w, http.StatusBadRequest, CodeValidationFailed, msg)
	return true
}

func (s *Server) handleDomainError(w http.ResponseWriter, r *http.Request, err error) {
	log := logger.FromContextOr(r.Context(), s.logger)
	log.Warn("domain error", zap.Error(err))
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			return
		}
	}
	log.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, CodeInternalError, "internal error")
}

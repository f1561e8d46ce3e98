package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"ballot/internal/identity"
	"ballot/internal/platform/middleware"
	"ballot/internal/voting/models"
	"ballot/internal/voting/service"
	"ballot/pkg/platform/httputil"
	"ballot/pkg/requestcontext"
)

// Service is the vote workflow consumed by the HTTP layer.
type Service interface {
	SubmitVote(ctx context.Context, req service.VoteRequest) (*service.Receipt, error)
	ValidateVote(ctx context.Context, clientIP string) error
	ListCategories(ctx context.Context) ([]*models.Category, error)
	ListCandidates(ctx context.Context, categoryID string) ([]*models.Candidate, error)
	GetCandidate(ctx context.Context, id string) (*models.Candidate, error)
	Stats(ctx context.Context) (models.Stats, error)
	Reconcile(ctx context.Context) (int, error)
}

// Handler serves the voting API.
type Handler struct {
	svc    Service
	logger *slog.Logger
}

func New(svc Service, logger *slog.Logger) *Handler {
	return &Handler{svc: svc, logger: logger}
}

// Register mounts the public voting routes.
func (h *Handler) Register(r chi.Router) {
	r.Post("/api/validate-vote", h.handleValidateVote)
	r.Post("/api/votes", h.handleSubmitVote)
	r.Get("/api/categories", h.handleListCategories)
	r.Get("/api/categories/{id}/candidates", h.handleListCandidates)
	r.Get("/api/candidates/{id}", h.handleGetCandidate)
	r.Get("/api/stats", h.handleStats)
}

// RegisterAdmin mounts the operator routes. Callers guard them.
func (h *Handler) RegisterAdmin(r chi.Router) {
	r.Post("/admin/tally/reconcile", h.handleReconcile)
}

// RecoverVote answers a panicked vote request in the vote result shape.
func RecoverVote(w http.ResponseWriter, _ *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, models.VoteResult{Message: models.MsgGeneric, Error: models.ErrUnknown})
}

func (h *Handler) handleValidateVote(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if err := h.svc.ValidateVote(ctx, clientIP(r)); err != nil {
		httputil.WriteJSON(w, http.StatusOK, models.ResultFromError(err))
		return
	}
	httputil.WriteJSON(w, http.StatusOK, models.VoteResult{Success: true})
}

func (h *Handler) handleSubmitVote(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestID(ctx)

	var req VoteRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		h.logger.InfoContext(ctx, "invalid vote request",
			"error", err,
			"request_id", requestID,
		)
		httputil.WriteJSON(w, http.StatusOK, models.ResultFromError(models.NewVoteError(models.ErrInvalidRequest, err)))
		return
	}
	req.CandidateID = strings.TrimSpace(req.CandidateID)

	receipt, err := h.svc.SubmitVote(ctx, service.VoteRequest{
		CandidateID:    req.CandidateID,
		VoterProfileID: strings.TrimSpace(req.VoterProfileID),
		Signals: identity.Signals{
			VisitorID:      req.Fingerprint,
			ServerIP:       clientIP(r),
			ReportedIP:     req.ReportedIP,
			UserAgent:      userAgent(r),
			AcceptLanguage: r.Header.Get("Accept-Language"),
			LocalStorage:   available(req.LocalStorage),
			IndexedDB:      available(req.IndexedDB),
		},
	})
	if err != nil {
		httputil.WriteJSON(w, http.StatusOK, models.ResultFromError(err))
		return
	}
	httputil.WriteJSON(w, http.StatusOK, models.VoteResult{
		Success:    true,
		Message:    models.MsgVoteSuccess,
		VoteID:     receipt.VoteID,
		VotesCount: receipt.VotesCount,
	})
}

func (h *Handler) handleListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.svc.ListCategories(r.Context())
	if err != nil {
		h.writeError(r.Context(), w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, categories)
}

func (h *Handler) handleListCandidates(w http.ResponseWriter, r *http.Request) {
	candidates, err := h.svc.ListCandidates(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(r.Context(), w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, candidates)
}

func (h *Handler) handleGetCandidate(w http.ResponseWriter, r *http.Request) {
	candidate, err := h.svc.GetCandidate(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(r.Context(), w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, candidate)
}

func (h *Handler) handleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.svc.Stats(r.Context())
	if err != nil {
		h.writeError(r.Context(), w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, stats)
}

func (h *Handler) handleReconcile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	corrected, err := h.svc.Reconcile(ctx)
	if err != nil {
		h.writeError(ctx, w, err)
		return
	}
	h.logger.InfoContext(ctx, "tally reconciled",
		"corrected", corrected,
		"request_id", middleware.GetRequestID(ctx),
	)
	httputil.WriteJSON(w, http.StatusOK, ReconcileResponse{Corrected: corrected})
}

func (h *Handler) writeError(ctx context.Context, w http.ResponseWriter, err error) {
	h.logger.ErrorContext(ctx, "voting request failed",
		"error", err,
		"request_id", middleware.GetRequestID(ctx),
	)
	httputil.WriteError(w, err)
}

func clientIP(r *http.Request) string {
	if ip := requestcontext.ClientIP(r.Context()); ip != "" {
		return ip
	}
	return middleware.ClientIPFromRequest(r)
}

func userAgent(r *http.Request) string {
	if ua := requestcontext.UserAgent(r.Context()); ua != "" {
		return ua
	}
	return r.Header.Get("User-Agent")
}

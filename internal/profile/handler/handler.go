package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"ballot/internal/platform/middleware"
	"ballot/internal/profile/models"
	votemodels "ballot/internal/voting/models"
	dErrors "ballot/pkg/domain-errors"
	"ballot/pkg/platform/httputil"
	"ballot/pkg/platform/sentinel"
)

type Service interface {
	Register(ctx context.Context, reg models.Registration) (*models.Profile, error)
	Get(ctx context.Context, id string) (*models.Profile, error)
}

// RegisterResponse mirrors the vote result shape with the created profile.
type RegisterResponse struct {
	Success bool                 `json:"success"`
	Message string               `json:"message"`
	Error   votemodels.ErrorKind `json:"error,omitempty"`
	Profile *models.Profile      `json:"profile,omitempty"`
}

type Handler struct {
	svc    Service
	logger *slog.Logger
}

func New(svc Service, logger *slog.Logger) *Handler {
	return &Handler{svc: svc, logger: logger}
}

func (h *Handler) Register(r chi.Router) {
	r.Post("/api/profiles", h.handleRegister)
	r.Get("/api/profiles/{id}", h.handleGet)
}

var kindStatus = map[votemodels.ErrorKind]int{
	votemodels.ErrInvalidRequest: http.StatusBadRequest,
	votemodels.ErrEmailExists:    http.StatusConflict,
}

func (h *Handler) handleRegister(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var reg models.Registration
	if err := httputil.DecodeJSON(r, &reg); err != nil {
		httputil.WriteJSON(w, http.StatusBadRequest, RegisterResponse{
			Message: votemodels.MsgInvalidRequest,
			Error:   votemodels.ErrInvalidRequest,
		})
		return
	}

	profile, err := h.svc.Register(ctx, reg)
	if err != nil {
		kind := votemodels.KindOf(err)
		status, ok := kindStatus[kind]
		if !ok {
			status = http.StatusInternalServerError
		}
		msg := votemodels.MsgSignupGeneric
		if kind != votemodels.ErrUnknown {
			msg = kind.Message()
		}
		h.logger.InfoContext(ctx, "profile registration rejected",
			"kind", kind,
			"request_id", middleware.GetRequestID(ctx),
		)
		httputil.WriteJSON(w, status, RegisterResponse{Message: msg, Error: kind})
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, RegisterResponse{
		Success: true,
		Message: votemodels.MsgSignupSuccess,
		Profile: profile,
	})
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	profile, err := h.svc.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			httputil.WriteError(w, dErrors.New(dErrors.CodeNotFound, "profile not found"))
			return
		}
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, profile)
}

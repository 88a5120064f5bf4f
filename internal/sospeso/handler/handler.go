// Package handler exposes the sospeso lifecycle over HTTP. It stays thin:
// decode, delegate to the service, project the result.
package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"sospeso/internal/platform/middleware"
	"sospeso/internal/sospeso/models"
	"sospeso/internal/sospeso/service"
	"sospeso/internal/transport/http/shared"
	id "sospeso/pkg/domain"
	dErrors "sospeso/pkg/domain-errors"
	"sospeso/pkg/requestcontext"
)

// Service defines the interface for sospeso operations.
type Service interface {
	Issue(ctx context.Context, input service.IssueInput) (models.Voucher, error)
	IssueBundle(ctx context.Context, input service.IssueBundleInput) (models.Voucher, error)
	Apply(ctx context.Context, voucherID id.VoucherID, input service.ApplyInput) (models.Voucher, error)
	Approve(ctx context.Context, voucherID id.VoucherID, applicationID id.ApplicationID) (models.Voucher, error)
	Reject(ctx context.Context, voucherID id.VoucherID, applicationID id.ApplicationID) (models.Voucher, error)
	Consume(ctx context.Context, voucherID id.VoucherID, input service.ConsumeInput) (models.Voucher, error)
	Get(ctx context.Context, voucherID id.VoucherID) (models.Voucher, error)
	List(ctx context.Context, limit, offset int) ([]models.Voucher, error)
}

// Handler handles sospeso endpoints.
type Handler struct {
	logger       *slog.Logger
	sospeso      Service
	jwtValidator middleware.JWTValidator
}

// New creates a new sospeso Handler.
func New(
	sospeso Service,
	logger *slog.Logger,
	jwtValidator middleware.JWTValidator) *Handler {
	return &Handler{
		logger:       logger,
		sospeso:      sospeso,
		jwtValidator: jwtValidator,
	}
}

// Register registers the sospeso routes with the chi router.
func (h *Handler) Register(r chi.Router) {
	sospesoRouter := chi.NewRouter()
	sospesoRouter.Use(middleware.Recovery(h.logger))
	sospesoRouter.Use(middleware.RequestID)
	sospesoRouter.Use(middleware.Logger(h.logger))
	sospesoRouter.Use(middleware.Timeout(30 * time.Second))
	sospesoRouter.Use(middleware.ContentTypeJSON)
	sospesoRouter.Use(middleware.Latency)
	sospesoRouter.Use(middleware.RequireAuth(h.jwtValidator, h.logger))

	sospesoRouter.Get("/sospeso", h.handleList)
	sospesoRouter.Get("/sospeso/{voucherID}", h.handleGet)
	sospesoRouter.Post("/sospeso", h.handleIssue)
	sospesoRouter.Post("/sospeso/bundle", h.handleIssueBundle)
	sospesoRouter.Post("/sospeso/{voucherID}/applications", h.handleApply)

	sospesoRouter.Group(func(admin chi.Router) {
		admin.Use(middleware.RequireAdmin)
		admin.Post("/sospeso/{voucherID}/applications/{applicationID}/approve", h.handleApprove)
		admin.Post("/sospeso/{voucherID}/applications/{applicationID}/reject", h.handleReject)
		admin.Post("/sospeso/{voucherID}/consume", h.handleConsume)
	})

	r.Mount("/", sospesoRouter)
}

func (h *Handler) handleIssue(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req IssueRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.warnRequest(ctx, "invalid issue request", err)
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	voucher, err := h.sospeso.Issue(ctx, service.IssueInput{
		From:       req.From,
		To:         req.To,
		PaidAmount: req.PaidAmount,
		IssuerID:   requestcontext.ActorID(ctx),
	})
	if err != nil {
		h.writeServiceError(ctx, w, "issue failed", err)
		return
	}

	shared.WriteJSON(w, http.StatusCreated, toResponse(voucher, requestcontext.IsAdmin(ctx)))
}

func (h *Handler) handleIssueBundle(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req IssueBundleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.warnRequest(ctx, "invalid bundle request", err)
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	voucher, err := h.sospeso.IssueBundle(ctx, service.IssueBundleInput{
		From:     req.From,
		To:       req.To,
		IssuerID: requestcontext.ActorID(ctx),
		Amount:   req.Amount,
		Item:     req.Item,
	})
	if err != nil {
		h.writeServiceError(ctx, w, "bundle issue failed", err)
		return
	}

	shared.WriteJSON(w, http.StatusCreated, toResponse(voucher, requestcontext.IsAdmin(ctx)))
}

func (h *Handler) handleApply(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	voucherID, err := id.ParseVoucherID(chi.URLParam(r, "voucherID"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	var req ApplyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.warnRequest(ctx, "invalid apply request", err)
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	voucher, err := h.sospeso.Apply(ctx, voucherID, service.ApplyInput{
		ApplicantID: requestcontext.ActorID(ctx),
		Content:     req.Content,
	})
	if err != nil {
		h.writeServiceError(ctx, w, "apply failed", err)
		return
	}

	shared.WriteJSON(w, http.StatusCreated, toResponse(voucher, requestcontext.IsAdmin(ctx)))
}

func (h *Handler) handleApprove(w http.ResponseWriter, r *http.Request) {
	h.handleApplicationDecision(w, r, h.sospeso.Approve, "approve failed")
}

func (h *Handler) handleReject(w http.ResponseWriter, r *http.Request) {
	h.handleApplicationDecision(w, r, h.sospeso.Reject, "reject failed")
}

func (h *Handler) handleApplicationDecision(
	w http.ResponseWriter,
	r *http.Request,
	decide func(context.Context, id.VoucherID, id.ApplicationID) (models.Voucher, error),
	failureMsg string,
) {
	ctx := r.Context()

	voucherID, err := id.ParseVoucherID(chi.URLParam(r, "voucherID"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	applicationID, err := id.ParseApplicationID(chi.URLParam(r, "applicationID"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	voucher, err := decide(ctx, voucherID, applicationID)
	if err != nil {
		h.writeServiceError(ctx, w, failureMsg, err)
		return
	}

	shared.WriteJSON(w, http.StatusOK, toResponse(voucher, requestcontext.IsAdmin(ctx)))
}

func (h *Handler) handleConsume(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	voucherID, err := id.ParseVoucherID(chi.URLParam(r, "voucherID"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	var req ConsumeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.warnRequest(ctx, "invalid consume request", err)
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	consumerID, err := id.ParseActorID(req.ConsumerID)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	coachID, err := id.ParseActorID(req.CoachID)
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	voucher, err := h.sospeso.Consume(ctx, voucherID, service.ConsumeInput{
		ConsumerID: consumerID,
		CoachID:    coachID,
		Content:    req.Content,
		Memo:       req.Memo,
	})
	if err != nil {
		h.writeServiceError(ctx, w, "consume failed", err)
		return
	}

	shared.WriteJSON(w, http.StatusOK, toResponse(voucher, requestcontext.IsAdmin(ctx)))
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	voucherID, err := id.ParseVoucherID(chi.URLParam(r, "voucherID"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	voucher, err := h.sospeso.Get(ctx, voucherID)
	if err != nil {
		h.writeServiceError(ctx, w, "get failed", err)
		return
	}

	shared.WriteJSON(w, http.StatusOK, toResponse(voucher, requestcontext.IsAdmin(ctx)))
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	limit := queryInt(r, "limit", 0)
	offset := queryInt(r, "offset", 0)

	vouchers, err := h.sospeso.List(ctx, limit, offset)
	if err != nil {
		h.writeServiceError(ctx, w, "list failed", err)
		return
	}

	summaries := make([]VoucherSummary, 0, len(vouchers))
	for _, v := range vouchers {
		summaries = append(summaries, toSummary(v))
	}
	shared.WriteJSON(w, http.StatusOK, summaries)
}

func queryInt(r *http.Request, key string, fallback int) int {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return fallback
	}
	return n
}

func (h *Handler) warnRequest(ctx context.Context, msg string, err error) {
	h.logger.WarnContext(ctx, msg,
		"request_id", middleware.GetRequestID(ctx),
		"error", err.Error(),
	)
}

// writeServiceError logs expected rejections at warn and everything else at
// error, then writes the coded envelope.
func (h *Handler) writeServiceError(ctx context.Context, w http.ResponseWriter, msg string, err error) {
	code := dErrors.GetCode(err)
	switch code {
	case dErrors.CodeInternal, dErrors.CodeTimeout:
		h.logger.ErrorContext(ctx, msg,
			"request_id", middleware.GetRequestID(ctx),
			"error", err.Error(),
		)
	default:
		h.warnRequest(ctx, msg, err)
	}
	shared.WriteError(w, err)
}

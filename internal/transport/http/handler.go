// Package httptransport exposes the credential lifecycle over HTTP. Handlers
// stay thin: decode, delegate to the service, translate domain errors onto
// the shared JSON envelope.
package httptransport

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/go-chi/chi/v5"

	"agentproof/internal/chain"
	"agentproof/internal/poi/models"
	"agentproof/internal/poi/service"
	dErrors "agentproof/pkg/domain-errors"
	"agentproof/pkg/platform/httputil"
	"agentproof/pkg/requestcontext"
)

// Service defines the lifecycle operations the transport exposes.
type Service interface {
	RequestChallenge(ctx context.Context, agent common.Address) (service.IssuedChallenge, error)
	RequestMaintenanceChallenge(ctx context.Context, agent common.Address) (service.IssuedChallenge, error)
	SubmitAnswer(ctx context.Context, agent common.Address, answer common.Hash) (service.VerificationResult, error)
	TriggerDecay(ctx context.Context, agent common.Address) error
	RevokeCredential(ctx context.Context, agent common.Address, reason string) error
	HasValidPoI(ctx context.Context, agent common.Address) (bool, error)
	IsInGracePeriod(ctx context.Context, agent common.Address) (bool, error)
	IsVerifiedIntelligentAgent(ctx context.Context, agent common.Address) (bool, error)
	DaysUntilExpiry(ctx context.Context, agent common.Address) (uint64, error)
	GetCredential(ctx context.Context, agent common.Address) (models.Credential, error)
	GetChallenge(ctx context.Context, agent common.Address) (models.Challenge, error)
	GetStats(ctx context.Context) (models.Stats, error)
}

// Attestor mints offline-checkable proof for a live credential.
type Attestor interface {
	Issue(cred models.Credential, now uint64) (string, error)
}

// Handler wires lifecycle endpoints to the service.
type Handler struct {
	service  Service
	attestor Attestor
	source   chain.Source
	logger   *slog.Logger
}

// New constructs the handler with its dependencies.
func New(svc Service, attestor Attestor, source chain.Source, logger *slog.Logger) *Handler {
	return &Handler{
		service:  svc,
		attestor: attestor,
		source:   source,
		logger:   logger,
	}
}

// Register mounts lifecycle endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/poi/challenge", h.HandleRequestChallenge)
	r.Post("/poi/maintenance", h.HandleRequestMaintenance)
	r.Post("/poi/answer", h.HandleSubmitAnswer)
	r.Post("/poi/decay", h.HandleTriggerDecay)
	r.Post("/poi/revoke", h.HandleRevoke)

	r.Get("/poi/status/{agent}", h.HandleStatus)
	r.Get("/poi/credential/{agent}", h.HandleGetCredential)
	r.Get("/poi/challenge/{agent}", h.HandleGetChallenge)
	r.Get("/poi/attestation/{agent}", h.HandleAttestation)
	r.Get("/poi/stats", h.HandleStats)
}

// HandleRequestChallenge handles POST /poi/challenge requests.
func (h *Handler) HandleRequestChallenge(w http.ResponseWriter, r *http.Request) {
	h.issueChallenge(w, r, false)
}

// HandleRequestMaintenance handles POST /poi/maintenance requests.
func (h *Handler) HandleRequestMaintenance(w http.ResponseWriter, r *http.Request) {
	h.issueChallenge(w, r, true)
}

func (h *Handler) issueChallenge(w http.ResponseWriter, r *http.Request, maintenance bool) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	start := time.Now()

	req, ok := httputil.Decode[AgentRequest](w, r)
	if !ok {
		return
	}
	agent, err := req.ParsedAgent()
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	var issued service.IssuedChallenge
	if maintenance {
		issued, err = h.service.RequestMaintenanceChallenge(ctx, agent)
	} else {
		issued, err = h.service.RequestChallenge(ctx, agent)
	}
	if err != nil {
		h.logger.ErrorContext(ctx, "challenge request failed",
			"request_id", requestID,
			"agent", agent.Hex(),
			"maintenance", maintenance,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "challenge requested",
		"request_id", requestID,
		"agent", agent.Hex(),
		"maintenance", maintenance,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	httputil.WriteJSON(w, http.StatusCreated, FromIssuedChallenge(issued))
}

// HandleSubmitAnswer handles POST /poi/answer requests.
func (h *Handler) HandleSubmitAnswer(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	start := time.Now()

	req, ok := httputil.Decode[AnswerRequest](w, r)
	if !ok {
		return
	}
	agent, err := req.ParsedAgent()
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	answer, err := req.ParsedAnswer()
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	result, err := h.service.SubmitAnswer(ctx, agent, answer)
	if err != nil {
		h.logger.ErrorContext(ctx, "answer submission failed",
			"request_id", requestID,
			"agent", agent.Hex(),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "answer submitted",
		"request_id", requestID,
		"agent", agent.Hex(),
		"success", result.Success,
		"outcome", string(result.Outcome),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	httputil.WriteJSON(w, http.StatusOK, result)
}

// HandleTriggerDecay handles POST /poi/decay requests.
func (h *Handler) HandleTriggerDecay(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	req, ok := httputil.Decode[AgentRequest](w, r)
	if !ok {
		return
	}
	agent, err := req.ParsedAgent()
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	if err := h.service.TriggerDecay(ctx, agent); err != nil {
		h.logger.ErrorContext(ctx, "decay trigger failed",
			"request_id", requestcontext.RequestID(ctx),
			"agent", agent.Hex(),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// HandleRevoke handles POST /poi/revoke requests.
func (h *Handler) HandleRevoke(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	req, ok := httputil.Decode[RevokeRequest](w, r)
	if !ok {
		return
	}
	agent, err := req.ParsedAgent()
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	if err := h.service.RevokeCredential(ctx, agent, req.Reason); err != nil {
		h.logger.ErrorContext(ctx, "revocation failed",
			"request_id", requestcontext.RequestID(ctx),
			"agent", agent.Hex(),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "revoked"})
}

// HandleStatus handles GET /poi/status/{agent} requests.
func (h *Handler) HandleStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	agent, err := pathAgent(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	valid, err := h.service.HasValidPoI(ctx, agent)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	grace, err := h.service.IsInGracePeriod(ctx, agent)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	verified, err := h.service.IsVerifiedIntelligentAgent(ctx, agent)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	days, err := h.service.DaysUntilExpiry(ctx, agent)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, StatusResponse{
		Agent:           agent.Hex(),
		HasValidPoI:     valid,
		InGracePeriod:   grace,
		VerifiedAgent:   verified,
		DaysUntilExpiry: days,
	})
}

// HandleGetCredential handles GET /poi/credential/{agent} requests.
func (h *Handler) HandleGetCredential(w http.ResponseWriter, r *http.Request) {
	agent, err := pathAgent(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	cred, err := h.service.GetCredential(r.Context(), agent)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, cred)
}

// HandleGetChallenge handles GET /poi/challenge/{agent} requests.
func (h *Handler) HandleGetChallenge(w http.ResponseWriter, r *http.Request) {
	agent, err := pathAgent(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	challenge, err := h.service.GetChallenge(r.Context(), agent)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, challenge)
}

// HandleAttestation handles GET /poi/attestation/{agent} requests. The token
// expiry tracks the credential's, so relying parties can check it offline.
func (h *Handler) HandleAttestation(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	agent, err := pathAgent(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	cred, err := h.service.GetCredential(ctx, agent)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	head, err := h.source.Head(ctx)
	if err != nil {
		httputil.WriteError(w, dErrors.Wrap(err, dErrors.CodeInternal, "read chain head"))
		return
	}

	token, err := h.attestor.Issue(cred, head.Time)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, AttestationResponse{
		Agent:     agent.Hex(),
		Token:     token,
		ExpiresAt: cred.ExpiresAt,
	})
}

// HandleStats handles GET /poi/stats requests.
func (h *Handler) HandleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.service.GetStats(r.Context())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, stats)
}

func pathAgent(r *http.Request) (common.Address, error) {
	raw := chi.URLParam(r, "agent")
	if !common.IsHexAddress(raw) {
		return common.Address{}, dErrors.New(dErrors.CodeInvalidInput, "agent must be a hex address")
	}
	return common.HexToAddress(raw), nil
}

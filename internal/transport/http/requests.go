package httptransport

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"

	"agentproof/internal/poi/service"
	dErrors "agentproof/pkg/domain-errors"
)

// AgentRequest identifies the agent an operation applies to.
type AgentRequest struct {
	Agent string `json:"agent"`
}

func (r AgentRequest) ParsedAgent() (common.Address, error) {
	return parseAgent(r.Agent)
}

// AnswerRequest carries a solution to the agent's live challenge.
type AnswerRequest struct {
	Agent  string `json:"agent"`
	Answer string `json:"answer"`
}

func (r AnswerRequest) ParsedAgent() (common.Address, error) {
	return parseAgent(r.Agent)
}

func (r AnswerRequest) ParsedAnswer() (common.Hash, error) {
	b, err := hexutil.Decode(r.Answer)
	if err != nil || len(b) != common.HashLength {
		return common.Hash{}, dErrors.New(dErrors.CodeInvalidInput, "answer must be a 32-byte hex value")
	}
	return common.BytesToHash(b), nil
}

// RevokeRequest names the agent and the operator's reason.
type RevokeRequest struct {
	Agent  string `json:"agent"`
	Reason string `json:"reason"`
}

func (r RevokeRequest) ParsedAgent() (common.Address, error) {
	return parseAgent(r.Agent)
}

func parseAgent(raw string) (common.Address, error) {
	if !common.IsHexAddress(raw) {
		return common.Address{}, dErrors.New(dErrors.CodeInvalidInput, "agent must be a hex address")
	}
	return common.HexToAddress(raw), nil
}

// ChallengeResponse is the issuance payload returned to the solver.
type ChallengeResponse struct {
	Seed        string `json:"seed"`
	Type        int    `json:"type"`
	TypeName    string `json:"type_name"`
	Deadline    uint64 `json:"deadline"`
	Maintenance bool   `json:"maintenance"`
}

func FromIssuedChallenge(issued service.IssuedChallenge) ChallengeResponse {
	return ChallengeResponse{
		Seed:        issued.Seed.Hex(),
		Type:        int(issued.Type),
		TypeName:    issued.Type.String(),
		Deadline:    issued.Deadline,
		Maintenance: issued.Maintenance,
	}
}

// StatusResponse summarizes an agent's standing.
type StatusResponse struct {
	Agent           string `json:"agent"`
	HasValidPoI     bool   `json:"has_valid_poi"`
	InGracePeriod   bool   `json:"in_grace_period"`
	VerifiedAgent   bool   `json:"verified_intelligent_agent"`
	DaysUntilExpiry uint64 `json:"days_until_expiry"`
}

// AttestationResponse carries the signed offline-checkable token.
type AttestationResponse struct {
	Agent     string `json:"agent"`
	Token     string `json:"token"`
	ExpiresAt uint64 `json:"expires_at"`
}

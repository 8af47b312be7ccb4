package attestation

import (
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"

	"agentproof/internal/poi/models"
	dErrors "agentproof/pkg/domain-errors"
)

func validCredential(now uint64) models.Credential {
	return models.Credential{
		Agent:            common.HexToAddress("0x00000000000000000000000000000000000a11ce"),
		IssuedAt:         now,
		ExpiresAt:        now + models.Seconds(models.ValidityPeriod),
		ChallengeType:    models.PuzzleHashChain,
		Valid:            true,
		MaintenanceCount: 3,
		Reputation:       65,
	}
}

func TestIssueAndValidate(t *testing.T) {
	now := uint64(time.Now().Unix())
	issuer := NewIssuer("test-signing-key", "agentproof", "agentproof-clients")
	cred := validCredential(now)

	token, err := issuer.Issue(cred, now)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := issuer.Validate(token)
	require.NoError(t, err)
	require.Equal(t, cred.Agent.Hex(), claims.Agent)
	require.Equal(t, cred.Reputation, claims.Reputation)
	require.Equal(t, cred.MaintenanceCount, claims.MaintenanceCount)
	require.Equal(t, "agentproof", claims.Issuer)
	require.Equal(t, int64(cred.ExpiresAt), claims.ExpiresAt.Unix())
	require.NotEmpty(t, claims.ID)
}

func TestIssueRejectsInvalidCredential(t *testing.T) {
	now := uint64(time.Now().Unix())
	issuer := NewIssuer("test-signing-key", "agentproof", "agentproof-clients")

	revoked := validCredential(now)
	revoked.Valid = false
	_, err := issuer.Issue(revoked, now)
	require.Equal(t, dErrors.CodeInvalidInput, dErrors.CodeOf(err))

	expired := validCredential(now)
	_, err = issuer.Issue(expired, expired.ExpiresAt+1)
	require.Equal(t, dErrors.CodeInvalidInput, dErrors.CodeOf(err))
}

func TestValidateRejectsWrongKey(t *testing.T) {
	now := uint64(time.Now().Unix())
	issuer := NewIssuer("test-signing-key", "agentproof", "agentproof-clients")
	other := NewIssuer("different-key", "agentproof", "agentproof-clients")

	token, err := issuer.Issue(validCredential(now), now)
	require.NoError(t, err)

	_, err = other.Validate(token)
	require.Equal(t, dErrors.CodeUnauthorized, dErrors.CodeOf(err))
}

func TestValidateRejectsGarbage(t *testing.T) {
	issuer := NewIssuer("test-signing-key", "agentproof", "agentproof-clients")

	_, err := issuer.Validate("not.a.token")
	require.Equal(t, dErrors.CodeUnauthorized, dErrors.CodeOf(err))
}

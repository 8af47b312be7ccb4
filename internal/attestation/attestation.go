// Package attestation mints portable, offline-checkable proof of a live
// credential. Relying parties that cannot reach the gateway verify the
// signature and expiry instead of calling the status endpoint.
package attestation

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"agentproof/internal/poi/models"
	dErrors "agentproof/pkg/domain-errors"
)

// Claims carries the credential facts a relying party acts on.
type Claims struct {
	Agent            string `json:"agent"`
	Reputation       int    `json:"reputation"`
	MaintenanceCount uint64 `json:"maintenance_count"`
	jwt.RegisteredClaims
}

// Issuer signs and validates attestation tokens.
type Issuer struct {
	signingKey []byte
	issuer     string
	audience   string
}

func NewIssuer(signingKey string, issuer string, audience string) *Issuer {
	return &Issuer{
		signingKey: []byte(signingKey),
		issuer:     issuer,
		audience:   audience,
	}
}

// Issue mints a token for a credential. The token expires exactly when the
// credential does, so a holder can never present proof that outlives the
// underlying verification. The chain-time now is passed in rather than read
// from the wall clock to keep the expiry check consistent with the
// credential state machine.
func (i *Issuer) Issue(cred models.Credential, now uint64) (string, error) {
	if !cred.HasValidPoI(now) {
		return "", dErrors.New(dErrors.CodeInvalidInput, "credential is not valid")
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		Agent:            cred.Agent.Hex(),
		Reputation:       cred.Reputation,
		MaintenanceCount: cred.MaintenanceCount,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   cred.Agent.Hex(),
			ExpiresAt: jwt.NewNumericDate(time.Unix(int64(cred.ExpiresAt), 0)),
			IssuedAt:  jwt.NewNumericDate(time.Unix(int64(now), 0)),
			Issuer:    i.issuer,
			Audience:  []string{i.audience},
			ID:        uuid.NewString(),
		},
	})

	signed, err := token.SignedString(i.signingKey)
	if err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeInternal, "sign attestation")
	}
	return signed, nil
}

// Validate checks the signature and expiry and returns the claims.
func (i *Issuer) Validate(tokenString string) (*Claims, error) {
	parsed, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrTokenUnverifiable
		}
		return i.signingKey, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, dErrors.New(dErrors.CodeUnauthorized, "attestation has expired")
		}
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid attestation")
	}
	if !parsed.Valid {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid attestation")
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid attestation claims")
	}
	return claims, nil
}

package httptransport

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"

	"agentproof/internal/attestation"
	"agentproof/internal/chain"
	"agentproof/internal/chain/chaintest"
	"agentproof/internal/poi/models"
	"agentproof/internal/poi/puzzle"
	"agentproof/internal/poi/service"
	"agentproof/internal/poi/store"
)

const testAgent = "0x00000000000000000000000000000000000A11cE"

type testServer struct {
	router   http.Handler
	source   *chaintest.Source
	registry *chaintest.Registry
	issuer   *attestation.Issuer
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	source := chaintest.NewSource(chain.Head{Number: 500_000, Time: uint64(time.Now().Unix())})
	registry := chaintest.NewRegistry()
	registry.Register(common.HexToAddress(testAgent))

	svc, err := service.New(service.Stores{
		Challenges:  store.NewInMemoryChallengeStore(),
		Credentials: store.NewInMemoryCredentialStore(),
		Cooldowns:   store.NewInMemoryCooldownStore(),
		Stats:       store.NewInMemoryStatsStore(),
	}, source, registry,
		service.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	)
	require.NoError(t, err)

	issuer := attestation.NewIssuer("test-key", "agentproof", "agentproof-clients")
	handler := New(svc, issuer, source, slog.New(slog.NewTextHandler(io.Discard, nil)))

	return &testServer{
		router:   NewRouter(handler),
		source:   source,
		registry: registry,
		issuer:   issuer,
	}
}

func (ts *testServer) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	w := httptest.NewRecorder()
	ts.router.ServeHTTP(w, req)
	return w
}

func decodeBody[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(w.Body).Decode(&v))
	return v
}

// earn walks the agent through issuance and a correct answer via the API.
func (ts *testServer) earn(t *testing.T) {
	t.Helper()
	w := ts.do(t, http.MethodPost, "/poi/challenge", `{"agent":"`+testAgent+`"}`)
	require.Equal(t, http.StatusCreated, w.Code)

	w = ts.do(t, http.MethodGet, "/poi/challenge/"+testAgent, "")
	require.Equal(t, http.StatusOK, w.Code)
	challenge := decodeBody[models.Challenge](t, w)

	answer, err := puzzle.Expected(challenge.Type, challenge.Seed, challenge.Agent, challenge.IssuedAtBlock, challenge.IssuedAtTime)
	require.NoError(t, err)

	w = ts.do(t, http.MethodPost, "/poi/answer", `{"agent":"`+testAgent+`","answer":"`+answer.Hex()+`"}`)
	require.Equal(t, http.StatusOK, w.Code)
	result := decodeBody[service.VerificationResult](t, w)
	require.True(t, result.Success)
}

func TestRequestChallengeEndpoint(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(t, http.MethodPost, "/poi/challenge", `{"agent":"`+testAgent+`"}`)
	require.Equal(t, http.StatusCreated, w.Code)

	resp := decodeBody[ChallengeResponse](t, w)
	require.NotEmpty(t, resp.Seed)
	require.GreaterOrEqual(t, resp.Type, 1)
	require.LessOrEqual(t, resp.Type, 4)
	require.NotZero(t, resp.Deadline)
	require.False(t, resp.Maintenance)
}

func TestRequestChallengeUnregistered(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(t, http.MethodPost, "/poi/challenge", `{"agent":"0x0000000000000000000000000000000000000b0b"}`)
	require.Equal(t, http.StatusForbidden, w.Code)

	body := decodeBody[map[string]string](t, w)
	require.Equal(t, "not_registered_agent", body["error"])
}

func TestRequestChallengeBadInput(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(t, http.MethodPost, "/poi/challenge", `{"agent":"not-an-address"}`)
	require.Equal(t, http.StatusBadRequest, w.Code)

	w = ts.do(t, http.MethodPost, "/poi/challenge", `{broken`)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCooldownMapsTo429(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(t, http.MethodPost, "/poi/challenge", `{"agent":"`+testAgent+`"}`)
	require.Equal(t, http.StatusCreated, w.Code)

	w = ts.do(t, http.MethodPost, "/poi/challenge", `{"agent":"`+testAgent+`"}`)
	require.Equal(t, http.StatusTooManyRequests, w.Code)

	body := decodeBody[map[string]string](t, w)
	require.Equal(t, "cooldown_not_elapsed", body["error"])
}

func TestFullVerificationOverAPI(t *testing.T) {
	ts := newTestServer(t)
	ts.earn(t)

	w := ts.do(t, http.MethodGet, "/poi/status/"+testAgent, "")
	require.Equal(t, http.StatusOK, w.Code)
	status := decodeBody[StatusResponse](t, w)
	require.True(t, status.HasValidPoI)
	require.True(t, status.VerifiedAgent)
	require.False(t, status.InGracePeriod)
	require.Equal(t, uint64(7), status.DaysUntilExpiry)

	w = ts.do(t, http.MethodGet, "/poi/credential/"+testAgent, "")
	require.Equal(t, http.StatusOK, w.Code)
	cred := decodeBody[models.Credential](t, w)
	require.True(t, cred.Valid)
	require.Equal(t, models.ReputationInitial, cred.Reputation)

	w = ts.do(t, http.MethodGet, "/poi/stats", "")
	require.Equal(t, http.StatusOK, w.Code)
	stats := decodeBody[models.Stats](t, w)
	require.Equal(t, uint64(1), stats.ChallengesIssued)
	require.Equal(t, uint64(1), stats.ChallengesPassed)
}

func TestWrongAnswerOverAPI(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(t, http.MethodPost, "/poi/challenge", `{"agent":"`+testAgent+`"}`)
	require.Equal(t, http.StatusCreated, w.Code)

	wrong := common.HexToHash("0xdead").Hex()
	w = ts.do(t, http.MethodPost, "/poi/answer", `{"agent":"`+testAgent+`","answer":"`+wrong+`"}`)
	require.Equal(t, http.StatusOK, w.Code)

	result := decodeBody[service.VerificationResult](t, w)
	require.False(t, result.Success)
	require.Equal(t, service.OutcomeWrongAnswer, result.Outcome)
}

func TestAnswerWithoutChallenge(t *testing.T) {
	ts := newTestServer(t)

	answer := common.Hash{}.Hex()
	w := ts.do(t, http.MethodPost, "/poi/answer", `{"agent":"`+testAgent+`","answer":"`+answer+`"}`)
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)

	body := decodeBody[map[string]string](t, w)
	require.Equal(t, "no_challenge_active", body["error"])
}

func TestAttestationEndpoint(t *testing.T) {
	ts := newTestServer(t)
	ts.earn(t)

	w := ts.do(t, http.MethodGet, "/poi/attestation/"+testAgent, "")
	require.Equal(t, http.StatusOK, w.Code)

	resp := decodeBody[AttestationResponse](t, w)
	require.NotEmpty(t, resp.Token)

	claims, err := ts.issuer.Validate(resp.Token)
	require.NoError(t, err)
	require.Equal(t, common.HexToAddress(testAgent).Hex(), claims.Agent)
	require.Equal(t, models.ReputationInitial, claims.Reputation)
}

func TestAttestationRequiresCredential(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(t, http.MethodGet, "/poi/attestation/"+testAgent, "")
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestRevokeEndpoint(t *testing.T) {
	ts := newTestServer(t)
	ts.earn(t)

	w := ts.do(t, http.MethodPost, "/poi/revoke", `{"agent":"`+testAgent+`","reason":"operator report"}`)
	require.Equal(t, http.StatusOK, w.Code)

	w = ts.do(t, http.MethodGet, "/poi/status/"+testAgent, "")
	status := decodeBody[StatusResponse](t, w)
	require.False(t, status.HasValidPoI)
}

func TestDecayEndpoint(t *testing.T) {
	ts := newTestServer(t)
	ts.earn(t)

	ts.source.AdvanceTime(8*24*time.Hour + time.Second)

	w := ts.do(t, http.MethodPost, "/poi/decay", `{"agent":"`+testAgent+`"}`)
	require.Equal(t, http.StatusOK, w.Code)

	w = ts.do(t, http.MethodGet, "/poi/credential/"+testAgent, "")
	cred := decodeBody[models.Credential](t, w)
	require.False(t, cred.Valid)
	require.Equal(t, models.ReputationMin, cred.Reputation)
}

func TestHealthz(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(t, http.MethodGet, "/healthz", "")
	require.Equal(t, http.StatusOK, w.Code)
}

func TestRequestIDPropagated(t *testing.T) {
	ts := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set("X-Request-Id", "req-123")
	w := httptest.NewRecorder()
	ts.router.ServeHTTP(w, req)

	require.Equal(t, "req-123", w.Header().Get("X-Request-Id"))
}

package api_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/backgammon/internal/api"
	"github.com/mcoot/backgammon/internal/api/apierr"
	"github.com/mcoot/backgammon/internal/api/response"
	"github.com/mcoot/backgammon/internal/factory"
	"github.com/mcoot/backgammon/internal/model"
	"github.com/mcoot/backgammon/internal/testutil"
)

// testServer wires the router to a test application with mocked dice and clock
type testServer struct {
	handler http.Handler
	app     *factory.TestApp
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	app := factory.NewTestApp()
	t.Cleanup(func() { _ = app.Close() })

	router := api.NewRouter(api.RouterConfig{
		Logger:        testutil.NopLogger(),
		Clock:         app.Clock,
		AuthService:   app.AuthService,
		StatsService:  app.StatsService,
		InviteService: app.InviteService,
		PlayService:   app.PlayService,
		WSServer:      app.WSServer,
		SocialService: app.SocialService,
		HomeServer:    app.HomeServer,
	})

	return &testServer{handler: router, app: app}
}

func (ts *testServer) request(method, path string, body any, token string) *httptest.ResponseRecorder {
	var reqBody *bytes.Buffer
	if body != nil {
		b, _ := json.Marshal(body)
		reqBody = bytes.NewBuffer(b)
	} else {
		reqBody = bytes.NewBuffer(nil)
	}

	req := httptest.NewRequest(method, path, reqBody)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rr := httptest.NewRecorder()
	ts.handler.ServeHTTP(rr, req)
	return rr
}

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &out), rr.Body.String())
	return out
}

func errorCode(t *testing.T, rr *httptest.ResponseRecorder) string {
	t.Helper()
	return decode[apierr.ErrorResponse](t, rr).Error.Code
}

// createGuestPlayer returns the session token and player id of a new guest
func createGuestPlayer(t *testing.T, ts *testServer, name string) (string, string) {
	t.Helper()
	rr := ts.request(http.MethodPost, "/api/v1/players/guest", map[string]string{"display_name": name}, "")
	require.Equal(t, http.StatusCreated, rr.Code)
	resp := decode[response.AuthResponse](t, rr)
	return resp.SessionToken, resp.Player.ID
}

// startGame creates a game from alice to bob and has bob join. Alice plays White.
func startGame(t *testing.T, ts *testServer, aliceToken, bobToken, bobID string) string {
	t.Helper()
	rr := ts.request(http.MethodPost, "/api/v1/games", map[string]string{"opponent": bobID, "game_id": "g1"}, aliceToken)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	ts.app.MockRandom.QueueIntn(0)
	rr = ts.request(http.MethodPost, "/api/v1/games/g1/join", nil, bobToken)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	return "g1"
}

func TestHealthCheck(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.request(http.MethodGet, "/api/v1/health", nil, "")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "ok")
}

func TestCreateGuestPlayer(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.request(http.MethodPost, "/api/v1/players/guest", map[string]string{"display_name": "Alice"}, "")
	assert.Equal(t, http.StatusCreated, rr.Code)

	resp := decode[response.AuthResponse](t, rr)
	assert.Equal(t, "Alice", resp.Player.DisplayName)
	assert.True(t, resp.Player.IsGuest)
	assert.NotEmpty(t, resp.SessionToken)
}

func TestCreateGuestRequiresName(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.request(http.MethodPost, "/api/v1/players/guest", map[string]string{}, "")
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, apierr.CodeInvalidRequest, errorCode(t, rr))
}

func TestRegisterAndLogin(t *testing.T) {
	ts := newTestServer(t)

	registerBody := map[string]string{
		"username":     "alice",
		"password":     "secret123",
		"display_name": "Alice",
	}
	rr := ts.request(http.MethodPost, "/api/v1/players/register", registerBody, "")
	require.Equal(t, http.StatusCreated, rr.Code)
	registerResp := decode[response.AuthResponse](t, rr)
	assert.False(t, registerResp.Player.IsGuest)

	rr = ts.request(http.MethodPost, "/api/v1/players/register", registerBody, "")
	assert.Equal(t, http.StatusConflict, rr.Code)
	assert.Equal(t, apierr.CodeUsernameExists, errorCode(t, rr))

	rr = ts.request(http.MethodPost, "/api/v1/players/login", map[string]string{"username": "alice", "password": "secret123"}, "")
	require.Equal(t, http.StatusOK, rr.Code)
	loginResp := decode[response.AuthResponse](t, rr)
	assert.Equal(t, registerResp.Player.ID, loginResp.Player.ID)

	rr = ts.request(http.MethodPost, "/api/v1/players/login", map[string]string{"username": "alice", "password": "nope"}, "")
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.Equal(t, apierr.CodeInvalidCredentials, errorCode(t, rr))
}

func TestRegisterRejectsShortUsername(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.request(http.MethodPost, "/api/v1/players/register", map[string]string{"username": "a", "password": "pw"}, "")
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestGetMeShowsProfile(t *testing.T) {
	ts := newTestServer(t)
	token, id := createGuestPlayer(t, ts, "Bob")

	rr := ts.request(http.MethodGet, "/api/v1/players/me", nil, token)
	require.Equal(t, http.StatusOK, rr.Code)

	profile := decode[response.Profile](t, rr)
	assert.Equal(t, id, profile.ID)
	assert.Equal(t, "Bob", profile.DisplayName)
	assert.Zero(t, profile.Wins)
	assert.Nil(t, profile.CurrentGame)
}

func TestGetUnknownPlayer(t *testing.T) {
	ts := newTestServer(t)
	token, _ := createGuestPlayer(t, ts, "Bob")

	rr := ts.request(http.MethodGet, "/api/v1/players/nobody", nil, token)
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Equal(t, apierr.CodePlayerNotFound, errorCode(t, rr))
}

func TestLogoutRevokesToken(t *testing.T) {
	ts := newTestServer(t)
	token, _ := createGuestPlayer(t, ts, "Bob")

	rr := ts.request(http.MethodPost, "/api/v1/players/logout", nil, token)
	assert.Equal(t, http.StatusNoContent, rr.Code)

	rr = ts.request(http.MethodGet, "/api/v1/players/me", nil, token)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestUnauthorizedWithoutToken(t *testing.T) {
	ts := newTestServer(t)

	for _, path := range []string{"/api/v1/players/me", "/api/v1/invites", "/api/v1/games/g1"} {
		rr := ts.request(http.MethodGet, path, nil, "")
		assert.Equal(t, http.StatusUnauthorized, rr.Code, path)
	}

	rr := ts.request(http.MethodGet, "/api/v1/players/me", nil, "garbage")
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestInviteFlow(t *testing.T) {
	ts := newTestServer(t)
	aliceToken, aliceID := createGuestPlayer(t, ts, "Alice")
	bobToken, bobID := createGuestPlayer(t, ts, "Bob")

	rr := ts.request(http.MethodPost, "/api/v1/invites", map[string]string{"to": bobID}, aliceToken)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	inv := decode[response.Invite](t, rr)
	assert.Equal(t, aliceID, inv.From)

	rr = ts.request(http.MethodGet, "/api/v1/invites", nil, bobToken)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Len(t, decode[[]response.Invite](t, rr), 1)

	// Alice cannot accept her own invite
	rr = ts.request(http.MethodPost, "/api/v1/invites/"+inv.ID+"/accept", nil, aliceToken)
	assert.Equal(t, http.StatusForbidden, rr.Code)

	rr = ts.request(http.MethodPost, "/api/v1/invites/"+inv.ID+"/accept", nil, bobToken)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	state := decode[response.GameState](t, rr)
	assert.Equal(t, aliceID, state.Player1)
	assert.Equal(t, string(model.GameStatusWaiting), state.Status)

	rr = ts.request(http.MethodGet, "/api/v1/players/me/game", nil, aliceToken)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, state.ID, decode[response.GameState](t, rr).ID)

	// bob takes his seat by joining
	rr = ts.request(http.MethodGet, "/api/v1/players/me/game", nil, bobToken)
	assert.Equal(t, http.StatusNotFound, rr.Code)
	rr = ts.request(http.MethodPost, "/api/v1/games/"+state.ID+"/join", nil, bobToken)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	assert.Equal(t, string(model.GameStatusInProgress), decode[response.GameState](t, rr).Status)
}

func TestInviteExpires(t *testing.T) {
	ts := newTestServer(t)
	aliceToken, _ := createGuestPlayer(t, ts, "Alice")
	bobToken, bobID := createGuestPlayer(t, ts, "Bob")

	rr := ts.request(http.MethodPost, "/api/v1/invites", map[string]string{"to": bobID}, aliceToken)
	require.Equal(t, http.StatusCreated, rr.Code)
	inv := decode[response.Invite](t, rr)

	ts.app.MockClock.Advance(model.DefaultInviteTTL + time.Second)

	rr = ts.request(http.MethodGet, "/api/v1/invites", nil, bobToken)
	assert.Empty(t, decode[[]response.Invite](t, rr))

	rr = ts.request(http.MethodPost, "/api/v1/invites/"+inv.ID+"/accept", nil, bobToken)
	assert.Equal(t, http.StatusGone, rr.Code)
	assert.Equal(t, apierr.CodeInviteExpired, errorCode(t, rr))
}

func TestDeclineInvite(t *testing.T) {
	ts := newTestServer(t)
	aliceToken, _ := createGuestPlayer(t, ts, "Alice")
	bobToken, bobID := createGuestPlayer(t, ts, "Bob")

	rr := ts.request(http.MethodPost, "/api/v1/invites", map[string]string{"to": bobID}, aliceToken)
	inv := decode[response.Invite](t, rr)

	rr = ts.request(http.MethodPost, "/api/v1/invites/"+inv.ID+"/decline", nil, bobToken)
	assert.Equal(t, http.StatusNoContent, rr.Code)

	rr = ts.request(http.MethodPost, "/api/v1/invites/"+inv.ID+"/accept", nil, bobToken)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestCreateGameConflicts(t *testing.T) {
	ts := newTestServer(t)
	aliceToken, aliceID := createGuestPlayer(t, ts, "Alice")
	bobToken, bobID := createGuestPlayer(t, ts, "Bob")
	_, carolID := createGuestPlayer(t, ts, "Carol")

	rr := ts.request(http.MethodPost, "/api/v1/games", map[string]string{"opponent": aliceID}, aliceToken)
	assert.Equal(t, http.StatusBadRequest, rr.Code, "cannot play yourself")

	startGame(t, ts, aliceToken, bobToken, bobID)

	rr = ts.request(http.MethodPost, "/api/v1/games", map[string]string{"opponent": carolID}, aliceToken)
	assert.Equal(t, http.StatusConflict, rr.Code)
	assert.Equal(t, apierr.CodePlayerInGame, errorCode(t, rr))
}

func TestCreateGameRejectsUnknownOpponent(t *testing.T) {
	ts := newTestServer(t)
	aliceToken, _ := createGuestPlayer(t, ts, "Alice")

	rr := ts.request(http.MethodPost, "/api/v1/games", map[string]string{"opponent": "no-such-player"}, aliceToken)
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Equal(t, apierr.CodePlayerNotFound, errorCode(t, rr))

	// alice is not left seated in a phantom game
	rr = ts.request(http.MethodGet, "/api/v1/players/me/game", nil, aliceToken)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestCreateGameDoesNotSeatOpponent(t *testing.T) {
	ts := newTestServer(t)
	strangerToken, _ := createGuestPlayer(t, ts, "Mallory")
	victimToken, victimID := createGuestPlayer(t, ts, "Bob")
	_, carolID := createGuestPlayer(t, ts, "Carol")

	rr := ts.request(http.MethodPost, "/api/v1/games", map[string]string{"opponent": victimID, "game_id": "unwanted"}, strangerToken)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	rr = ts.request(http.MethodGet, "/api/v1/players/me/game", nil, victimToken)
	assert.Equal(t, http.StatusNotFound, rr.Code)

	rr = ts.request(http.MethodPost, "/api/v1/invites", map[string]string{"to": carolID}, victimToken)
	assert.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	rr = ts.request(http.MethodPost, "/api/v1/games", map[string]string{"opponent": carolID}, victimToken)
	assert.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	// having a game of his own, bob cannot be pulled into the other one
	rr = ts.request(http.MethodPost, "/api/v1/games/unwanted/join", nil, victimToken)
	assert.Equal(t, http.StatusConflict, rr.Code)
	assert.Equal(t, apierr.CodePlayerInGame, errorCode(t, rr))
}

func TestPlayTurnOverHTTP(t *testing.T) {
	ts := newTestServer(t)
	aliceToken, _ := createGuestPlayer(t, ts, "Alice")
	bobToken, bobID := createGuestPlayer(t, ts, "Bob")
	gameID := startGame(t, ts, aliceToken, bobToken, bobID)
	base := "/api/v1/games/" + gameID

	// Bob is not on turn
	rr := ts.request(http.MethodPost, base+"/roll", nil, bobToken)
	assert.Equal(t, http.StatusForbidden, rr.Code)
	assert.Equal(t, apierr.CodeNotYourTurn, errorCode(t, rr))

	ts.app.MockRandom.QueueDice(3, 1)
	rr = ts.request(http.MethodPost, base+"/roll", nil, aliceToken)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, []int{3, 1}, decode[response.DiceResponse](t, rr).Dice)

	rr = ts.request(http.MethodPost, base+"/roll", nil, aliceToken)
	assert.Equal(t, http.StatusConflict, rr.Code)
	assert.Equal(t, apierr.CodeAlreadyRolled, errorCode(t, rr))

	rr = ts.request(http.MethodGet, base+"/moves", nil, aliceToken)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, decode[response.MovesResponse](t, rr).Moves, response.Move{From: 7, To: 4})

	rr = ts.request(http.MethodPost, base+"/move", map[string]int{"from": 12, "to": 7}, aliceToken)
	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	assert.Equal(t, apierr.CodeInvalidMove, errorCode(t, rr))

	rr = ts.request(http.MethodPost, base+"/move", map[string]int{"from": 7}, aliceToken)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = ts.request(http.MethodPost, base+"/move", map[string]int{"from": 7, "to": 4}, aliceToken)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	moved := decode[response.MoveResponse](t, rr)
	assert.True(t, moved.Valid)
	assert.Equal(t, []int{1}, moved.State.Dice)
	assert.Nil(t, moved.GameOver)

	ts.app.MockRandom.QueueDice(6, 5)
	rr = ts.request(http.MethodPost, base+"/end-turn", nil, aliceToken)
	require.Equal(t, http.StatusOK, rr.Code)
	state := decode[response.GameState](t, rr)
	assert.Equal(t, "Black", state.CurrentTurn)
	assert.Equal(t, bobID, state.CurrentPlayer)
	assert.Equal(t, []int{6, 5}, state.Dice)
}

func TestTimeoutOverHTTP(t *testing.T) {
	ts := newTestServer(t)
	aliceToken, aliceID := createGuestPlayer(t, ts, "Alice")
	bobToken, bobID := createGuestPlayer(t, ts, "Bob")
	gameID := startGame(t, ts, aliceToken, bobToken, bobID)
	base := "/api/v1/games/" + gameID

	ts.app.MockRandom.QueueDice(3, 1)
	rr := ts.request(http.MethodPost, base+"/roll", nil, aliceToken)
	require.Equal(t, http.StatusOK, rr.Code)

	// Alice's clock is still running
	rr = ts.request(http.MethodPost, base+"/timeout", map[string]string{"player": aliceID}, bobToken)
	assert.Equal(t, http.StatusConflict, rr.Code)
	assert.Equal(t, apierr.CodeClockNotExpired, errorCode(t, rr))

	ts.app.MockClock.Advance(model.DefaultTurnClock + time.Second)
	rr = ts.request(http.MethodPost, base+"/timeout", map[string]string{"player": aliceID}, bobToken)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	assert.Equal(t, bobID, decode[response.TimeoutResponse](t, rr).Winner)

	rr = ts.request(http.MethodGet, base, nil, aliceToken)
	assert.Equal(t, http.StatusNotFound, rr.Code)

	// The result reaches the profile once reporting drains
	ts.app.Registry.Close()
	rr = ts.request(http.MethodGet, "/api/v1/players/"+bobID, nil, aliceToken)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, 1, decode[response.Profile](t, rr).Wins)

	rr = ts.request(http.MethodGet, "/api/v1/players/me/history", nil, aliceToken)
	require.Equal(t, http.StatusOK, rr.Code)
	history := decode[[]response.GameResult](t, rr)
	require.Len(t, history, 1)
	assert.Equal(t, string(model.ReasonTimeout), history[0].Reason)
}

func TestBotGameOverHTTP(t *testing.T) {
	ts := newTestServer(t)
	token, id := createGuestPlayer(t, ts, "Alice")

	rr := ts.request(http.MethodPost, "/api/v1/games/bot", map[string]string{"strategy": "grandmaster"}, token)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, apierr.CodeUnknownStrategy, errorCode(t, rr))

	ts.app.MockRandom.QueueString("httpbot000000001")
	ts.app.MockRandom.QueueIntn(0)
	rr = ts.request(http.MethodPost, "/api/v1/games/bot", nil, token)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	state := decode[response.GameState](t, rr)
	assert.Equal(t, id, state.Player1)
	assert.Equal(t, "bot-httpbot000000001", state.Player2)
	assert.Equal(t, id, state.CurrentPlayer)
}

func TestGameNotFound(t *testing.T) {
	ts := newTestServer(t)
	token, _ := createGuestPlayer(t, ts, "Alice")

	rr := ts.request(http.MethodGet, "/api/v1/games/missing", nil, token)
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Equal(t, apierr.CodeGameNotFound, errorCode(t, rr))
}

func TestWebSocketStreamsEvents(t *testing.T) {
	ts := newTestServer(t)
	aliceToken, _ := createGuestPlayer(t, ts, "Alice")
	bobToken, bobID := createGuestPlayer(t, ts, "Bob")

	rr := ts.request(http.MethodPost, "/api/v1/games", map[string]string{"opponent": bobID, "game_id": "g1"}, aliceToken)
	require.Equal(t, http.StatusCreated, rr.Code)

	srv := httptest.NewServer(ts.handler)
	defer srv.Close()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/v1/games/g1/ws"

	// Strangers are turned away before the upgrade
	carolToken, _ := createGuestPlayer(t, ts, "Carol")
	_, resp, err := websocket.DefaultDialer.Dial(url, http.Header{"Authorization": {"Bearer " + carolToken}})
	require.Error(t, err)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	conn, _, err := websocket.DefaultDialer.Dial(url, http.Header{"Authorization": {"Bearer " + aliceToken}})
	require.NoError(t, err)
	defer conn.Close()
	require.Eventually(t, func() bool {
		hub := ts.app.HubManager.GetHub("g1")
		return hub != nil && hub.ClientCount() == 1
	}, time.Second, 5*time.Millisecond)

	ts.app.MockRandom.QueueIntn(0)
	rr = ts.request(http.MethodPost, "/api/v1/games/g1/join", nil, bobToken)
	require.Equal(t, http.StatusOK, rr.Code)

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var ev response.Event
	require.NoError(t, conn.ReadJSON(&ev))
	assert.Equal(t, string(model.EventGameStarted), ev.Type)
	assert.Equal(t, "g1", ev.GameID)
}

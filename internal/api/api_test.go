package api_test

import (
	"bufio"
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/peoplebingo/internal/api"
	"github.com/mcoot/peoplebingo/internal/api/apierr"
	"github.com/mcoot/peoplebingo/internal/api/response"
	"github.com/mcoot/peoplebingo/internal/factory"
	"github.com/mcoot/peoplebingo/internal/model"
)

// testServer wires the router to a test app with a mocked clock
type testServer struct {
	handler http.Handler
	app     *factory.TestApp
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

	app := factory.NewTestApp()
	t.Cleanup(app.HubManager.Close)

	router := api.NewRouter(api.RouterConfig{
		Logger:            logger,
		SessionController: app.SessionController,
		PromptService:     app.PromptService,
		InsightsService:   app.InsightsService,
		HubManager:        app.HubManager,
		PublicURL:         "https://bingo.example.com",
	})

	return &testServer{handler: router, app: app}
}

func (ts *testServer) request(method, path string, body any) *httptest.ResponseRecorder {
	var reqBody *bytes.Buffer
	switch b := body.(type) {
	case nil:
		reqBody = bytes.NewBuffer(nil)
	case string:
		reqBody = bytes.NewBufferString(b)
	default:
		encoded, _ := json.Marshal(b)
		reqBody = bytes.NewBuffer(encoded)
	}

	req := httptest.NewRequest(method, path, reqBody)
	req.Header.Set("Content-Type", "application/json")

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

func assertError(t *testing.T, rr *httptest.ResponseRecorder, status int, code string) {
	t.Helper()
	assert.Equal(t, status, rr.Code, rr.Body.String())
	resp := decode[apierr.ErrorResponse](t, rr)
	assert.Equal(t, code, resp.Error.Code)
}

func (ts *testServer) createGame(t *testing.T) string {
	t.Helper()
	rr := ts.request(http.MethodPost, "/api/games/create", map[string]int{"duration": 10})
	require.Equal(t, http.StatusCreated, rr.Code)
	return decode[response.CreateGameResponse](t, rr).GameCode
}

func (ts *testServer) join(t *testing.T, code, name string) {
	t.Helper()
	rr := ts.request(http.MethodPost, "/api/games/join", map[string]string{"game_code": code, "player_name": name})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
}

func (ts *testServer) start(t *testing.T, code string) {
	t.Helper()
	rr := ts.request(http.MethodPost, "/api/games/start", map[string]string{"game_code": code})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
}

func (ts *testServer) fill(t *testing.T, code, name string, index int, value string) *httptest.ResponseRecorder {
	t.Helper()
	return ts.request(http.MethodPost, "/api/games/update-player-cell", map[string]any{
		"game_code":   code,
		"player_name": name,
		"cell_index":  index,
		"name_value":  value,
	})
}

func TestHealthCheck(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.request(http.MethodGet, "/api/health", nil)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rr.Body.String())
}

func TestRootReportsActiveGames(t *testing.T) {
	ts := newTestServer(t)
	ts.createGame(t)
	ts.createGame(t)

	rr := ts.request(http.MethodGet, "/", nil)
	require.Equal(t, http.StatusOK, rr.Code)

	resp := decode[response.RootResponse](t, rr)
	assert.Equal(t, "People Bingo API", resp.Message)
	assert.Equal(t, 2, resp.ActiveGames)
}

func TestCreateGame(t *testing.T) {
	ts := newTestServer(t)
	ts.app.MockRandom.QueueString("ABC123")

	rr := ts.request(http.MethodPost, "/api/games/create", map[string]int{"duration": 20})
	require.Equal(t, http.StatusCreated, rr.Code)

	resp := decode[response.CreateGameResponse](t, rr)
	assert.Equal(t, "ABC123", resp.GameCode)
	assert.Equal(t, "ABC123", resp.Game.Code)
	assert.Equal(t, 20, resp.Game.Duration)
	assert.False(t, resp.Game.Started)
	assert.Equal(t, "lobby", resp.Game.Phase)
	assert.Len(t, resp.Game.Cells, model.CellCount)
	assert.Equal(t, model.FreeCellText, resp.Game.Cells[model.FreeCellIndex])
	assert.Empty(t, resp.Game.Players)
	assert.NotNil(t, resp.Game.Finished)
	assert.Nil(t, resp.Game.StartTime)
}

func TestCreateGameWithEmptyBodyUsesDefaultDuration(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.request(http.MethodPost, "/api/games/create", nil)
	require.Equal(t, http.StatusCreated, rr.Code)
	assert.Equal(t, model.DefaultDuration, decode[response.CreateGameResponse](t, rr).Game.Duration)
}

func TestCreateGameKeepsZeroDuration(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.request(http.MethodPost, "/api/games/create", map[string]int{"duration": 0})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	assert.Equal(t, 0, decode[response.CreateGameResponse](t, rr).Game.Duration)
}

func TestCreateGameRejectsBadInput(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.request(http.MethodPost, "/api/games/create", map[string]int{"duration": -5})
	assertError(t, rr, http.StatusBadRequest, apierr.CodeInvalidRequest)

	rr = ts.request(http.MethodPost, "/api/games/create", "{not json")
	assertError(t, rr, http.StatusBadRequest, apierr.CodeInvalidRequest)
}

func TestGetGameNormalisesCode(t *testing.T) {
	ts := newTestServer(t)
	ts.app.MockRandom.QueueString("ABC123")
	ts.createGame(t)

	rr := ts.request(http.MethodGet, "/api/games/abc123", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "ABC123", decode[response.Game](t, rr).Code)
}

func TestGetGameNotFound(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.request(http.MethodGet, "/api/games/NOPE00", nil)
	assertError(t, rr, http.StatusNotFound, apierr.CodeGameNotFound)
}

func TestJoinGame(t *testing.T) {
	ts := newTestServer(t)
	code := ts.createGame(t)

	rr := ts.request(http.MethodPost, "/api/games/join", map[string]string{
		"game_code":   strings.ToLower(code),
		"player_name": "Ann",
	})
	require.Equal(t, http.StatusOK, rr.Code)
	resp := decode[response.GameMessageResponse](t, rr)
	assert.Equal(t, "Joined successfully", resp.Message)
	require.Contains(t, resp.Game.Players, "Ann")
	assert.Len(t, resp.Game.Players["Ann"].Grid, model.CellCount)

	rr = ts.request(http.MethodPost, "/api/games/join", map[string]string{"game_code": code, "player_name": "Ann"})
	require.Equal(t, http.StatusOK, rr.Code)
	resp = decode[response.GameMessageResponse](t, rr)
	assert.Equal(t, "Player already in game", resp.Message)
	assert.Len(t, resp.Game.Players, 1)
}

func TestJoinGameValidation(t *testing.T) {
	ts := newTestServer(t)
	code := ts.createGame(t)

	rr := ts.request(http.MethodPost, "/api/games/join", map[string]string{"game_code": code, "player_name": "  "})
	assertError(t, rr, http.StatusBadRequest, apierr.CodeInvalidRequest)

	rr = ts.request(http.MethodPost, "/api/games/join", map[string]string{"game_code": "NOPE00", "player_name": "Ann"})
	assertError(t, rr, http.StatusNotFound, apierr.CodeGameNotFound)
}

func TestUpdateCell(t *testing.T) {
	ts := newTestServer(t)
	code := ts.createGame(t)

	rr := ts.request(http.MethodPost, "/api/games/update-cell", map[string]any{"game_code": code, "index": 3, "value": "Has been to Paris"})
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "Has been to Paris", decode[response.GameMessageResponse](t, rr).Game.Cells[3])

	rr = ts.request(http.MethodPost, "/api/games/update-cell", map[string]any{"game_code": code, "index": 12, "value": "x"})
	assertError(t, rr, http.StatusBadRequest, apierr.CodeImmutableCell)

	rr = ts.request(http.MethodPost, "/api/games/update-cell", map[string]any{"game_code": code, "index": 25, "value": "x"})
	assertError(t, rr, http.StatusBadRequest, apierr.CodeInvalidIndex)

	rr = ts.request(http.MethodPost, "/api/games/update-cell", map[string]any{"game_code": code, "value": "x"})
	assertError(t, rr, http.StatusBadRequest, apierr.CodeInvalidRequest)

	ts.join(t, code, "Ann")
	ts.start(t, code)

	rr = ts.request(http.MethodPost, "/api/games/update-cell", map[string]any{"game_code": code, "index": 3, "value": "late"})
	assertError(t, rr, http.StatusBadRequest, apierr.CodeInvalidPhase)
}

func TestStartGame(t *testing.T) {
	ts := newTestServer(t)
	code := ts.createGame(t)

	rr := ts.request(http.MethodPost, "/api/games/start", map[string]string{"game_code": code})
	assertError(t, rr, http.StatusBadRequest, apierr.CodeNoPlayers)

	ts.join(t, code, "Ann")
	rr = ts.request(http.MethodPost, "/api/games/start", map[string]string{"game_code": code})
	require.Equal(t, http.StatusOK, rr.Code)
	resp := decode[response.GameMessageResponse](t, rr)
	assert.Equal(t, "Game started", resp.Message)
	assert.True(t, resp.Game.Started)
	require.NotNil(t, resp.Game.StartTime)

	rr = ts.request(http.MethodPost, "/api/games/start", map[string]string{"game_code": code})
	assertError(t, rr, http.StatusBadRequest, apierr.CodeAlreadyStarted)
}

func TestUpdatePlayerCell(t *testing.T) {
	ts := newTestServer(t)
	code := ts.createGame(t)
	ts.join(t, code, "Ann")

	rr := ts.fill(t, code, "Ann", 0, "Bob")
	assertError(t, rr, http.StatusBadRequest, apierr.CodeNotStarted)

	ts.start(t, code)

	rr = ts.fill(t, code, "Ann", 0, "Bob")
	require.Equal(t, http.StatusOK, rr.Code)
	resp := decode[response.PlayerMessageResponse](t, rr)
	assert.Equal(t, "Cell updated", resp.Message)
	assert.Equal(t, "Bob", resp.Player.Grid[0])

	rr = ts.fill(t, code, "Zed", 0, "Bob")
	assertError(t, rr, http.StatusNotFound, apierr.CodePlayerNotFound)

	rr = ts.fill(t, code, "Ann", -1, "Bob")
	assertError(t, rr, http.StatusBadRequest, apierr.CodeInvalidIndex)
}

func TestFinishGame(t *testing.T) {
	ts := newTestServer(t)
	code := ts.createGame(t)
	ts.join(t, code, "Ann")
	ts.join(t, code, "Bob")
	ts.start(t, code)

	for i := 0; i < model.CellCount; i++ {
		if i == model.FreeCellIndex || i == 5 {
			continue
		}
		require.Equal(t, http.StatusOK, ts.fill(t, code, "Ann", i, "Someone").Code)
	}

	rr := ts.request(http.MethodPost, "/api/games/finish", map[string]string{"game_code": code, "player_name": "Ann"})
	assertError(t, rr, http.StatusBadRequest, apierr.CodeIncompleteGrid)
	assert.Contains(t, rr.Body.String(), `"missing_cells":[5]`)

	require.Equal(t, http.StatusOK, ts.fill(t, code, "Ann", 5, "Someone").Code)
	ts.app.MockClock.Advance(90 * time.Second)

	rr = ts.request(http.MethodPost, "/api/games/finish", map[string]string{"game_code": code, "player_name": "Ann"})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	resp := decode[response.FinishResponse](t, rr)
	assert.Equal(t, "Game finished", resp.Message)
	assert.Equal(t, 1, resp.Position)
	assert.True(t, resp.Player.Completed)
	assert.NotNil(t, resp.Player.FinishTime)

	rr = ts.request(http.MethodPost, "/api/games/finish", map[string]string{"game_code": code, "player_name": "Ann"})
	assertError(t, rr, http.StatusBadRequest, apierr.CodeAlreadyCompleted)

	rr = ts.request(http.MethodGet, "/api/games/"+code, nil)
	game := decode[response.Game](t, rr)
	require.Len(t, game.Finished, 1)
	assert.Equal(t, "Ann", game.Finished[0].Name)
	assert.InDelta(t, 90.0, game.Finished[0].Elapsed, 0.001)
}

func TestInsights(t *testing.T) {
	ts := newTestServer(t)
	code := ts.createGame(t)
	ts.join(t, code, "Ann")
	ts.join(t, code, "Bob")
	ts.start(t, code)
	require.Equal(t, http.StatusOK, ts.fill(t, code, "Ann", 3, "Paris").Code)
	require.Equal(t, http.StatusOK, ts.fill(t, code, "Bob", 3, "Paris").Code)

	rr := ts.request(http.MethodGet, "/api/games/"+code+"/insights", nil)
	require.Equal(t, http.StatusOK, rr.Code)

	resp := decode[response.InsightsResponse](t, rr)
	require.Len(t, resp.Insights, model.CellCount-1)
	insight := resp.Insights[3]
	assert.Equal(t, 3, insight.Index)
	assert.Equal(t, 2, insight.TotalEntries)
	assert.Equal(t, 1, insight.UniqueEntries)
	assert.Equal(t, map[string]int{"Paris": 2}, insight.NameCounts)

	rr = ts.request(http.MethodGet, "/api/games/NOPE00/insights", nil)
	assertError(t, rr, http.StatusNotFound, apierr.CodeGameNotFound)
}

func TestQRCode(t *testing.T) {
	ts := newTestServer(t)
	code := ts.createGame(t)

	rr := ts.request(http.MethodGet, "/api/games/"+code+"/qr", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "image/png", rr.Header().Get("Content-Type"))
	assert.True(t, bytes.HasPrefix(rr.Body.Bytes(), []byte("\x89PNG")))

	rr = ts.request(http.MethodGet, "/api/games/"+code+"/qr?size=5", nil)
	assertError(t, rr, http.StatusBadRequest, apierr.CodeInvalidRequest)

	rr = ts.request(http.MethodGet, "/api/games/NOPE00/qr", nil)
	assertError(t, rr, http.StatusNotFound, apierr.CodeGameNotFound)
}

func TestCORSPreflight(t *testing.T) {
	ts := newTestServer(t)

	req := httptest.NewRequest(http.MethodOptions, "/api/games/join", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rr := httptest.NewRecorder()
	ts.handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusNoContent, rr.Code)
	assert.Equal(t, "*", rr.Header().Get("Access-Control-Allow-Origin"))
}

func TestEventStreamsThroughRouter(t *testing.T) {
	ts := newTestServer(t)
	code := ts.createGame(t)
	server := httptest.NewServer(ts.handler)
	defer server.Close()

	// SSE
	resp, err := http.Get(server.URL + "/api/games/" + strings.ToLower(code) + "/events")
	require.NoError(t, err)
	defer resp.Body.Close()
	reader := bufio.NewReader(resp.Body)
	line, err := reader.ReadString('\n')
	require.NoError(t, err)
	assert.Equal(t, "event: connected\n", line)

	// WebSocket
	wsURL := "ws" + strings.TrimPrefix(server.URL, "http") + "/ws/" + code
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.Eventually(t, func() bool {
		hub := ts.app.HubManager.GetHub(model.SessionCode(code))
		return hub != nil && hub.ClientCount() == 2
	}, 2*time.Second, 10*time.Millisecond)

	ts.join(t, code, "Ann")

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"player_joined","player_name":"Ann","player_count":1}`, string(data))

	var event string
	for event == "" {
		line, err := reader.ReadString('\n')
		require.NoError(t, err)
		if strings.HasPrefix(line, "event: player_joined") {
			event = "player_joined"
		}
	}
	line, err = reader.ReadString('\n')
	require.NoError(t, err)
	assert.Contains(t, line, `"player_name":"Ann"`)
}

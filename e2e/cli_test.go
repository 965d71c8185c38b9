package e2e_test

import (
	"bufio"
	"context"
	"encoding/json"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/peoplebingo/internal/api"
	"github.com/mcoot/peoplebingo/internal/factory"
)

// cliRunner manages CLI binary execution
type cliRunner struct {
	binaryPath string
	serverURL  string
}

func newCLIRunner(t *testing.T, serverURL string) *cliRunner {
	t.Helper()

	// Find project root (where go.mod is)
	projectRoot := findProjectRoot(t)

	// Build the CLI binary
	binaryPath := filepath.Join(t.TempDir(), "bingo-test")
	cmd := exec.Command("go", "build", "-o", binaryPath, "./cmd/bingo")
	cmd.Dir = projectRoot
	output, err := cmd.CombinedOutput()
	require.NoError(t, err, "failed to build CLI: %s", string(output))

	return &cliRunner{
		binaryPath: binaryPath,
		serverURL:  serverURL,
	}
}

func (r *cliRunner) args(args ...string) []string {
	return append([]string{
		"--server", r.serverURL,
		"--output", "json",
	}, args...)
}

func (r *cliRunner) run(args ...string) (string, error) {
	cmd := exec.Command(r.binaryPath, r.args(args...)...)
	output, err := cmd.CombinedOutput()
	return string(output), err
}

func runJSON[T any](t *testing.T, r *cliRunner, args ...string) T {
	t.Helper()

	output, err := r.run(args...)
	require.NoError(t, err, "output: %s", output)

	var result T
	require.NoError(t, json.Unmarshal([]byte(output), &result), "output: %s", output)
	return result
}

func findProjectRoot(t *testing.T) string {
	t.Helper()

	dir, err := os.Getwd()
	require.NoError(t, err)

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			t.Fatal("could not find project root (go.mod)")
		}
		dir = parent
	}
}

// testServer manages a real HTTP server for e2e tests
type testServer struct {
	server   *http.Server
	addr     string
	shutdown func()
}

func startTestServer(t *testing.T) *testServer {
	t.Helper()

	// Find a free port
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := listener.Addr().String()
	require.NoError(t, listener.Close())

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

	app, err := factory.New(factory.Config{Logger: logger})
	require.NoError(t, err)

	router := api.NewRouter(api.RouterConfig{
		Logger:            logger,
		SessionController: app.SessionController,
		PromptService:     app.PromptService,
		InsightsService:   app.InsightsService,
		HubManager:        app.HubManager,
	})

	server := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	go func() {
		if err := server.ListenAndServe(); err != http.ErrServerClosed {
			t.Logf("server error: %v", err)
		}
	}()

	// Wait for server to be ready
	serverURL := "http://" + addr
	waitForServer(t, serverURL+"/api/health")

	return &testServer{
		server: server,
		addr:   serverURL,
		shutdown: func() {
			app.HubManager.Close()
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = server.Shutdown(ctx)
		},
	}
}

func waitForServer(t *testing.T, url string) {
	t.Helper()

	client := &http.Client{Timeout: 100 * time.Millisecond}
	deadline := time.Now().Add(5 * time.Second)

	for time.Now().Before(deadline) {
		resp, err := client.Get(url)
		if err == nil {
			_ = resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				return
			}
		}
		time.Sleep(50 * time.Millisecond)
	}

	t.Fatal("server did not become ready in time")
}

// Response types for JSON parsing
type playerResponse struct {
	Name      string   `json:"name"`
	Grid      []string `json:"grid"`
	Completed bool     `json:"completed"`
}

type gameResponse struct {
	Code     string                    `json:"code"`
	Cells    []string                  `json:"cells"`
	Players  map[string]playerResponse `json:"players"`
	Started  bool                      `json:"started"`
	Phase    string                    `json:"phase"`
	Duration int                       `json:"duration"`
	Finished []struct {
		Name    string  `json:"name"`
		Elapsed float64 `json:"elapsed"`
	} `json:"finished"`
}

type createResponse struct {
	GameCode string       `json:"game_code"`
	Game     gameResponse `json:"game"`
}

type gameMessageResponse struct {
	Message string       `json:"message"`
	Game    gameResponse `json:"game"`
}

type finishResponse struct {
	Message  string         `json:"message"`
	Position int            `json:"position"`
	Player   playerResponse `json:"player"`
}

type insightsResponse struct {
	Insights []struct {
		Index         int            `json:"index"`
		TotalEntries  int            `json:"total_entries"`
		UniqueEntries int            `json:"unique_entries"`
		NameCounts    map[string]int `json:"name_counts"`
	} `json:"insights"`
}

type healthResponse struct {
	Status string `json:"status"`
}

type eventLine struct {
	Event string `json:"event"`
	Data  string `json:"data"`
}

// Tests

func TestCLI_HealthCheck(t *testing.T) {
	ts := startTestServer(t)
	defer ts.shutdown()

	cli := newCLIRunner(t, ts.addr)

	resp := runJSON[healthResponse](t, cli, "health")
	assert.Equal(t, "ok", resp.Status)
}

func TestCLI_Errors(t *testing.T) {
	ts := startTestServer(t)
	defer ts.shutdown()

	cli := newCLIRunner(t, ts.addr)

	output, err := cli.run("game", "get", "ZZZZZZ")
	require.Error(t, err)
	assert.Contains(t, output, "GAME_NOT_FOUND")

	created := runJSON[createResponse](t, cli, "game", "create")

	output, err = cli.run("game", "start", created.GameCode)
	require.Error(t, err)
	assert.Contains(t, output, "NO_PLAYERS")
}

func TestCLI_FullGameFlow(t *testing.T) {
	ts := startTestServer(t)
	defer ts.shutdown()

	cli := newCLIRunner(t, ts.addr)

	created := runJSON[createResponse](t, cli, "game", "create", "--duration", "10")
	code := created.GameCode
	assert.Regexp(t, `^[A-Z0-9]{6}$`, code)
	assert.Equal(t, 10, created.Game.Duration)
	t.Logf("Created game: %s", code)

	// Observe the game while it is played
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	events := exec.CommandContext(ctx, cli.binaryPath, "--server", cli.serverURL, "events", code, "--json")
	stdout, err := events.StdoutPipe()
	require.NoError(t, err)
	require.NoError(t, events.Start())
	defer func() {
		cancel()
		_ = events.Wait()
	}()

	received := make(chan eventLine, 16)
	go func() {
		defer close(received)
		scanner := bufio.NewScanner(stdout)
		for scanner.Scan() {
			var evt eventLine
			if json.Unmarshal(scanner.Bytes(), &evt) == nil {
				received <- evt
			}
		}
	}()
	nextEvent := func() eventLine {
		t.Helper()
		select {
		case evt, ok := <-received:
			require.True(t, ok, "event stream closed")
			return evt
		case <-time.After(5 * time.Second):
			t.Fatal("timed out waiting for event")
			return eventLine{}
		}
	}

	assert.Equal(t, "connected", nextEvent().Event)

	edited := runJSON[gameMessageResponse](t, cli, "game", "edit", code, "3", "Plays", "the", "ukulele")
	assert.Equal(t, "Plays the ukulele", edited.Game.Cells[3])
	assert.Equal(t, "cell_updated", nextEvent().Event)

	for _, name := range []string{"Alice", "Bob"} {
		joined := runJSON[gameMessageResponse](t, cli, "game", "join", code, name)
		assert.Equal(t, "Joined successfully", joined.Message)
		assert.Equal(t, "player_joined", nextEvent().Event)
	}

	started := runJSON[gameMessageResponse](t, cli, "game", "start", code)
	assert.Equal(t, "running", started.Game.Phase)
	assert.Equal(t, "game_started", nextEvent().Event)

	for i := 0; i < 25; i++ {
		if i == 12 {
			continue
		}
		output, err := cli.run("game", "fill", code, "Alice", strconv.Itoa(i), "Bob")
		require.NoError(t, err, "fill %d: %s", i, output)
	}

	finished := runJSON[finishResponse](t, cli, "game", "finish", code, "Alice")
	assert.Equal(t, 1, finished.Position)
	assert.True(t, finished.Player.Completed)

	evt := nextEvent()
	assert.Equal(t, "player_finished", evt.Event)
	assert.Contains(t, evt.Data, `"player_name":"Alice"`)

	// Bob has not filled anything in yet
	output, err := cli.run("game", "finish", code, "Bob")
	require.Error(t, err)
	assert.Contains(t, output, "INCOMPLETE_GRID")

	game := runJSON[gameResponse](t, cli, "game", "get", code)
	require.Len(t, game.Finished, 1)
	assert.Equal(t, "Alice", game.Finished[0].Name)

	insights := runJSON[insightsResponse](t, cli, "game", "insights", code)
	require.Len(t, insights.Insights, 24)
	for _, in := range insights.Insights {
		assert.Equal(t, 1, in.TotalEntries)
		assert.Equal(t, map[string]int{"Bob": 1}, in.NameCounts)
	}
}

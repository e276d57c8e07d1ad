package e2e_test

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/eventledger/internal/api"
	"github.com/mcoot/eventledger/internal/factory"
	"github.com/mcoot/eventledger/internal/testutil"
)

const testDate = "2025-05-01"

var (
	buildOnce   sync.Once
	binaryPath  string
	buildOutput []byte
	buildErr    error
)

// cliRunner manages CLI binary execution
type cliRunner struct {
	binaryPath string
	serverURL  string
	tokenFile  string
}

func newCLIRunner(t *testing.T, serverURL string) *cliRunner {
	t.Helper()

	buildOnce.Do(func() {
		projectRoot := findProjectRoot(t)
		dir, err := os.MkdirTemp("", "evledger-e2e")
		if err != nil {
			buildErr = err
			return
		}
		binaryPath = filepath.Join(dir, "evledger")
		cmd := exec.Command("go", "build", "-o", binaryPath, "./cmd/evledger")
		cmd.Dir = projectRoot
		buildOutput, buildErr = cmd.CombinedOutput()
	})
	require.NoError(t, buildErr, "failed to build CLI: %s", string(buildOutput))

	return &cliRunner{
		binaryPath: binaryPath,
		serverURL:  serverURL,
		tokenFile:  filepath.Join(t.TempDir(), "token"),
	}
}

func (r *cliRunner) run(args ...string) (string, error) {
	fullArgs := append([]string{
		"--server", r.serverURL,
		"--token-file", r.tokenFile,
		"--output", "json",
	}, args...)

	cmd := exec.Command(r.binaryPath, fullArgs...)
	cmd.Env = cliEnv()
	output, err := cmd.CombinedOutput()
	return string(output), err
}

func (r *cliRunner) runWithStdin(stdin string, args ...string) (string, error) {
	fullArgs := append([]string{
		"--server", r.serverURL,
		"--token-file", r.tokenFile,
		"--output", "json",
	}, args...)

	cmd := exec.Command(r.binaryPath, fullArgs...)
	cmd.Env = cliEnv()
	cmd.Stdin = strings.NewReader(stdin)
	output, err := cmd.CombinedOutput()
	return string(output), err
}

// cliEnv drops EVLEDGER_* settings from the parent so flags are authoritative
func cliEnv() []string {
	var env []string
	for _, kv := range os.Environ() {
		if !strings.HasPrefix(kv, "EVLEDGER_") {
			env = append(env, kv)
		}
	}
	return env
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
	addr     string
	app      *factory.TestApp
	shutdown func()
}

func startTestServer(t *testing.T) *testServer {
	t.Helper()

	// Find a free port
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := listener.Addr().String()
	require.NoError(t, listener.Close())

	app := factory.NewTestApp()

	apiRouter := api.NewRouter(api.RouterConfig{
		Logger:        testutil.NopLogger(),
		AuthService:   app.AuthService,
		LedgerService: app.LedgerService,
		HubManager:    app.HubManager,
	})

	mux := http.NewServeMux()
	mux.Handle("/api/", apiRouter)

	server := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		if err := server.ListenAndServe(); err != http.ErrServerClosed {
			t.Logf("server error: %v", err)
		}
	}()

	serverURL := "http://" + addr
	waitForServer(t, serverURL+"/api/v1/health")

	return &testServer{
		addr: serverURL,
		app:  app,
		shutdown: func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			app.HubManager.Close()
			_ = server.Shutdown(ctx)
			_ = app.Close()
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
	ID       string `json:"id"`
	Name     string `json:"name"`
	Currency int64  `json:"currency"`
	Note     string `json:"note"`
}

type eventResponse struct {
	Date         string           `json:"date"`
	Players      []playerResponse `json:"players"`
	CurrencyPot  int64            `json:"currency_pot"`
	TotalPlayers int              `json:"total_players"`
	Total        int64            `json:"total"`
	Notes        string           `json:"notes"`
}

type transferResponse struct {
	PlayerID     string `json:"player_id"`
	Delta        int64  `json:"delta"`
	PlayerBefore int64  `json:"player_before"`
	PlayerAfter  int64  `json:"player_after"`
	PotBefore    int64  `json:"pot_before"`
	PotAfter     int64  `json:"pot_after"`
}

type authResponse struct {
	Username     string `json:"username"`
	SessionToken string `json:"session_token"`
}

type healthResponse struct {
	Status  string `json:"status"`
	Storage string `json:"storage"`
}

type messageResponse struct {
	Message string `json:"message"`
}

func login(t *testing.T, cli *cliRunner) {
	t.Helper()

	output, err := cli.run("login", factory.TestAdminUsername, "--password", factory.TestAdminPassword)
	require.NoError(t, err, "output: %s", output)
}

func registerPlayer(t *testing.T, cli *cliRunner, name, email string) playerResponse {
	t.Helper()

	output, err := cli.run("player", "register", testDate,
		"--name", name, "--age", "30", "--secret", "likes cats",
		"--email", email, "--phone", "555-0100")
	require.NoError(t, err, "output: %s", output)

	var p playerResponse
	require.NoError(t, json.Unmarshal([]byte(output), &p))
	return p
}

// Tests

func TestCLI_HealthCheck(t *testing.T) {
	ts := startTestServer(t)
	defer ts.shutdown()

	cli := newCLIRunner(t, ts.addr)

	output, err := cli.run("health")
	require.NoError(t, err, "output: %s", output)

	var resp healthResponse
	require.NoError(t, json.Unmarshal([]byte(output), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, "ok", resp.Storage)
}

func TestCLI_LoginAndLogout(t *testing.T) {
	ts := startTestServer(t)
	defer ts.shutdown()

	cli := newCLIRunner(t, ts.addr)

	output, err := cli.runWithStdin(factory.TestAdminPassword+"\n", "login", factory.TestAdminUsername)
	require.NoError(t, err, "output: %s", output)

	var auth authResponse
	require.NoError(t, json.Unmarshal([]byte(output), &auth))
	assert.Equal(t, factory.TestAdminUsername, auth.Username)

	saved, err := os.ReadFile(cli.tokenFile)
	require.NoError(t, err)
	assert.Equal(t, auth.SessionToken, string(saved))

	// Token file is picked up for admin commands
	output, err = cli.run("event", "list")
	require.NoError(t, err, "output: %s", output)

	output, err = cli.run("logout")
	require.NoError(t, err, "output: %s", output)

	var msg messageResponse
	require.NoError(t, json.Unmarshal([]byte(output), &msg))
	assert.Equal(t, "Logged out", msg.Message)

	_, err = os.Stat(cli.tokenFile)
	assert.True(t, os.IsNotExist(err))

	_, err = ts.app.AuthService.ValidateSession(auth.SessionToken)
	assert.Error(t, err)
}

func TestCLI_EventNight(t *testing.T) {
	ts := startTestServer(t)
	defer ts.shutdown()

	cli := newCLIRunner(t, ts.addr)
	login(t, cli)

	alice := registerPlayer(t, cli, "Alice", "alice@example.com")
	bob := registerPlayer(t, cli, "Bob", "bob@example.com")
	assert.Equal(t, int64(2000), alice.Currency)

	// Negative deltas are positional, not flags
	output, err := cli.run("transfer", testDate, alice.ID, "-500")
	require.NoError(t, err, "output: %s", output)

	var result transferResponse
	require.NoError(t, json.Unmarshal([]byte(output), &result))
	assert.Equal(t, transferResponse{
		PlayerID:     alice.ID,
		Delta:        -500,
		PlayerBefore: 2000,
		PlayerAfter:  1500,
		PotBefore:    0,
		PotAfter:     500,
	}, result)

	output, err = cli.run("credit", testDate, bob.ID, "200")
	require.NoError(t, err, "output: %s", output)

	output, err = cli.run("deduct", testDate, bob.ID, "100")
	require.NoError(t, err, "output: %s", output)

	output, err = cli.run("event", "fund", testDate, "1000")
	require.NoError(t, err, "output: %s", output)

	output, err = cli.run("event", "notes", testDate, "bring snacks")
	require.NoError(t, err, "output: %s", output)

	output, err = cli.run("player", "rename", testDate, bob.ID, "Robert")
	require.NoError(t, err, "output: %s", output)

	output, err = cli.run("player", "note", testDate, alice.ID, "late arrival")
	require.NoError(t, err, "output: %s", output)

	output, err = cli.run("event", "get", testDate)
	require.NoError(t, err, "output: %s", output)

	var ev eventResponse
	require.NoError(t, json.Unmarshal([]byte(output), &ev))
	assert.Equal(t, 2, ev.TotalPlayers)
	assert.Equal(t, int64(1400), ev.CurrencyPot)
	assert.Equal(t, int64(5000), ev.Total)
	assert.Equal(t, "bring snacks", ev.Notes)
	assert.Equal(t, "late arrival", ev.Players[0].Note)
	assert.Equal(t, "Robert", ev.Players[1].Name)
	assert.Equal(t, int64(2100), ev.Players[1].Currency)

	output, err = cli.run("player", "remove", testDate, alice.ID)
	require.NoError(t, err, "output: %s", output)

	output, err = cli.run("event", "get", testDate)
	require.NoError(t, err, "output: %s", output)
	require.NoError(t, json.Unmarshal([]byte(output), &ev))
	assert.Equal(t, 1, ev.TotalPlayers)
	assert.Equal(t, bob.ID, ev.Players[0].ID)
}

func TestCLI_CreateAndListEvents(t *testing.T) {
	ts := startTestServer(t)
	defer ts.shutdown()

	cli := newCLIRunner(t, ts.addr)
	login(t, cli)

	for _, date := range []string{"2025-06-01", "2025-05-01", "2025-06-01"} {
		output, err := cli.run("event", "create", date)
		require.NoError(t, err, "output: %s", output)
	}

	output, err := cli.run("event", "list")
	require.NoError(t, err, "output: %s", output)

	var list struct {
		Dates []string `json:"dates"`
	}
	require.NoError(t, json.Unmarshal([]byte(output), &list))
	assert.Equal(t, []string{"2025-05-01", "2025-06-01"}, list.Dates)
}

func TestCLI_ErrorHandling(t *testing.T) {
	ts := startTestServer(t)
	defer ts.shutdown()

	cli := newCLIRunner(t, ts.addr)

	// Admin command without login
	output, err := cli.run("event", "list")
	assert.Error(t, err)
	assert.Contains(t, output, "UNAUTHORIZED")

	login(t, cli)

	output, err = cli.run("event", "get", "2025-13-45")
	assert.Error(t, err)
	assert.Contains(t, output, "VALIDATION_FAILED")

	alice := registerPlayer(t, cli, "Alice", "alice@example.com")

	output, err = cli.run("credit", testDate, alice.ID, "1")
	assert.Error(t, err)
	assert.Contains(t, output, "INSUFFICIENT_POT")

	output, err = cli.run("player", "register", testDate,
		"--name", "Alice Again", "--age", "30", "--secret", "s",
		"--email", "ALICE@example.com", "--phone", "1")
	assert.Error(t, err)
	assert.Contains(t, output, "DUPLICATE_EMAIL")

	output, err = cli.run("transfer", testDate, alice.ID, "lots")
	assert.Error(t, err)
	assert.Contains(t, output, "invalid delta")
}

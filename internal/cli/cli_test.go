package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"llmlauncher/pkg/types"
)

const echoFamily = `[information]
model_name = "Echo"

[[properties]]
name = "base"
description = "Base URL"

[templates]
endpoint_template = "${base}/chat"
header_template = '{"Content-Type": "application/json"}'
data_template = '{"system": "${llm_system_prompt}", "user": "${llm_user_prompt}"}'
response_path = "$.reply"
`

func echoServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil || r.URL.Path != "/chat" {
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{"reply": "echo:" + body["user"]})
	}))
	t.Cleanup(srv.Close)
	return srv
}

// env prepares a families dir and a file store, returning the common flags.
func env(t *testing.T) []string {
	t.Helper()
	dir := t.TempDir()
	fam := filepath.Join(dir, "families")
	require.NoError(t, os.MkdirAll(fam, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(fam, "echo.toml"), []byte(echoFamily), 0o644))
	return []string{"--families-dir", fam, "--store", "file", "--store-path", filepath.Join(dir, "instances.json"), "--log-level", "off"}
}

func execute(t *testing.T, base []string, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd := NewRootCmd("test", &out, &errOut)
	cmd.SetArgs(append(append([]string(nil), args...), base...))
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestFamiliesCommand(t *testing.T) {
	out, err := execute(t, env(t), "families")
	require.NoError(t, err)
	assert.Contains(t, out, "Echo")
	assert.Contains(t, out, "base")
	assert.Contains(t, out, "Base URL")
}

func TestInstancesAndRun(t *testing.T) {
	base := env(t)
	srv := echoServer(t)

	_, err := execute(t, base, "instances", "add", "E1", "--family", "Echo", "-p", "base="+srv.URL+"/")
	require.NoError(t, err)

	_, err = execute(t, base, "instances", "add", "E1", "--family", "Echo", "-p", "base="+srv.URL)
	require.Error(t, err)

	_, err = execute(t, base, "instances", "add", "X", "--family", "Nope")
	require.Error(t, err)

	out, err := execute(t, base, "instances", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "E1")
	assert.Contains(t, out, "Echo")

	out, err = execute(t, base, "run", "--system", "s", "--user", "hi")
	require.NoError(t, err)
	assert.Contains(t, out, "== E1 (Echo) [200,")
	assert.Contains(t, out, "echo:hi")

	// trimmed base URL persisted by the round
	out, err = execute(t, base, "instances", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "base="+srv.URL+" ")

	// prompts default to the last ones used
	out, err = execute(t, base, "run", "--json")
	require.NoError(t, err)
	var resp types.RoundResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, types.PromptPair{System: "s", User: "hi"}, resp.Prompts)
	require.Len(t, resp.Results, 1)
	assert.Equal(t, "echo:hi", resp.Results[0].Text)

	_, err = execute(t, base, "instances", "edit", "E1", "-p", "base=http://127.0.0.1:1")
	require.NoError(t, err)
	out, err = execute(t, base, "run", "--user", "x")
	require.NoError(t, err)
	assert.Contains(t, out, "Request failed")
	assert.Contains(t, out, "-- details --")

	_, err = execute(t, base, "instances", "rm", "E1")
	require.NoError(t, err)
	out, err = execute(t, base, "instances", "list")
	require.NoError(t, err)
	assert.NotContains(t, out, "E1")
}

func TestRun_UserFromStdin(t *testing.T) {
	base := env(t)
	srv := echoServer(t)
	_, err := execute(t, base, "instances", "add", "E1", "--family", "Echo", "-p", "base="+srv.URL)
	require.NoError(t, err)

	var out bytes.Buffer
	cmd := NewRootCmd("test", &out, &bytes.Buffer{})
	cmd.SetIn(bytes.NewBufferString("from stdin\n"))
	cmd.SetArgs(append([]string{"run", "--user", "-"}, base...))
	require.NoError(t, cmd.ExecuteContext(context.Background()))
	assert.Contains(t, out.String(), "echo:from stdin")
}

func TestInvalidStoreFlag(t *testing.T) {
	_, err := execute(t, env(t), "instances", "list", "--store", "s3")
	require.Error(t, err)
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, env(t), "version")
	require.NoError(t, err)
	assert.Equal(t, "test\n", out)
}

func TestServe_StopsOnCancel(t *testing.T) {
	a := &app{log: zerolog.Nop()}
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	srv := &http.Server{Handler: http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- serve(ctx, a, srv, ln) }()

	require.Eventually(t, func() bool {
		resp, err := http.Get("http://" + ln.Addr().String())
		if err != nil {
			return false
		}
		resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 2*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(6 * time.Second):
		t.Fatal("serve did not return after cancel")
	}
}

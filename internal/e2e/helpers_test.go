package e2e

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"llmlauncher/internal/dispatch"
	"llmlauncher/internal/httpapi"
	"llmlauncher/internal/instances"
	"llmlauncher/internal/launcher"
	"llmlauncher/internal/registry"
)

const echoFamily = `[information]
model_name = "Echo"

[[properties]]
name = "base"
description = "Base URL of the upstream"

[[properties]]
name = "api_key"
description = "Bearer token"

[templates]
endpoint_template = "${base}/v1/chat"
header_template = '{"Content-Type": "application/json", "Authorization": "Bearer ${api_key}"}'
data_template = '{"messages": [{"role": "system", "content": "${llm_system_prompt}"}, {"role": "user", "content": "${llm_user_prompt}"}]}'
response_path = "$.choices[0].message.content"
`

// createFamiliesDir writes the Echo descriptor into a temporary directory.
func createFamiliesDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "echo.toml"), []byte(echoFamily), 0o644); err != nil {
		t.Fatalf("write family: %v", err)
	}
	return dir
}

// newServer wires the full stack behind an httptest server: registry from
// disk, a memory-backed store, the resty transport and the HTTP API.
func newServer(t *testing.T, concurrency int) (*httptest.Server, *instances.MemoryPersister) {
	t.Helper()
	reg, err := registry.LoadDir(createFamiliesDir(t))
	if err != nil {
		t.Fatalf("load families: %v", err)
	}
	p := instances.NewMemoryPersister(instances.Snapshot{})
	store, err := instances.Open(context.Background(), p, zerolog.Nop())
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	disp := dispatch.New(dispatch.Config{
		Transport:   dispatch.NewRestyTransport(5*time.Second, "llmlauncher/e2e"),
		Concurrency: concurrency,
	})
	l := launcher.New(launcher.Config{Registry: reg, Store: store, Dispatcher: disp, Version: "e2e"})
	srv := httptest.NewServer(httpapi.NewMux(l))
	t.Cleanup(srv.Close)
	return srv, p
}

func httpGet(t *testing.T, url string) (*http.Response, []byte) {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("GET %s: %v", url, err)
	}
	defer resp.Body.Close()
	b, _ := io.ReadAll(resp.Body)
	return resp, b
}

func httpJSON(t *testing.T, method, url string, v any) (*http.Response, []byte) {
	t.Helper()
	var body io.Reader
	if v != nil {
		b, err := json.Marshal(v)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		body = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(context.Background(), method, url, body)
	if err != nil {
		t.Fatalf("new req: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, url, err)
	}
	defer resp.Body.Close()
	b, _ := io.ReadAll(resp.Body)
	return resp, b
}

// chatReply writes an OpenAI-shaped completion.
func chatReply(w http.ResponseWriter, content string) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"choices": []any{map[string]any{"message": map[string]any{"role": "assistant", "content": content}}},
	})
}

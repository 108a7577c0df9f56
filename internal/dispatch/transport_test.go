package dispatch

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRestyTransport_Post(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/chat", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Equal(t, "Bearer k", r.Header.Get("Authorization"))
		assert.Equal(t, "llmlauncher-test", r.Header.Get("User-Agent"))
		b, _ := io.ReadAll(r.Body)
		var body map[string]any
		assert.NoError(t, json.Unmarshal(b, &body))
		assert.Equal(t, "u", body["user"])
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"reply":"hi"}`))
	}))
	defer srv.Close()

	tr := NewRestyTransport(0, "llmlauncher-test")
	status, body, err := tr.Post(context.Background(), srv.URL+"/v1/chat",
		map[string]string{"Authorization": "Bearer k"}, map[string]any{"user": "u"})
	require.NoError(t, err)
	assert.Equal(t, 200, status)
	assert.JSONEq(t, `{"reply":"hi"}`, string(body))
}

func TestRestyTransport_NoRetry(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte("upstream down"))
	}))
	defer srv.Close()

	status, body, err := NewRestyTransport(0, "").Post(context.Background(), srv.URL, nil, map[string]any{})
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadGateway, status)
	assert.Equal(t, "upstream down", string(body))
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestRestyTransport_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer srv.Close()

	_, _, err := NewRestyTransport(20*time.Millisecond, "").Post(context.Background(), srv.URL, nil, nil)
	require.Error(t, err)
}

func TestRestyTransport_ConnectionRefused(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	d := New(Config{Transport: NewRestyTransport(time.Second, "")})
	reqs := makeRequests(1, "Down")
	reqs[0].URL = url
	res := d.DispatchAll(context.Background(), reqs)[0]
	assert.Equal(t, FailureMarker, res.Text)
	assert.Equal(t, OutcomeTransportError, res.Outcome)
	assert.NotEmpty(t, res.Details)
}

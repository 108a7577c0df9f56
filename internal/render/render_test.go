package render

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"llmlauncher/internal/instances"
	"llmlauncher/internal/registry"
	"llmlauncher/pkg/types"
)

func echoDescriptor() registry.Descriptor {
	return registry.Descriptor{
		Information: registry.Information{ModelName: "Echo"},
		Properties:  []registry.Property{{Name: "path", Description: "Path"}},
		Templates: registry.Templates{
			Endpoint:     "http://localhost:9999/${path}",
			Header:       `{"Content-Type": "application/json"}`,
			Data:         `{"system": "${llm_system_prompt}", "user": "${llm_user_prompt}"}`,
			ResponsePath: "$.reply",
		},
	}
}

func echoInstance() instances.Instance {
	return instances.Instance{Name: "E1", Family: "Echo", Properties: map[string]string{"path": "v1/chat/"}}
}

func TestRender_Echo(t *testing.T) {
	req, err := Render(echoInstance(), echoDescriptor(), types.PromptPair{System: "s", User: "u"}, 3)
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:9999/v1/chat", req.URL)
	assert.Equal(t, map[string]string{"Content-Type": "application/json"}, req.Headers)
	assert.Equal(t, map[string]any{"system": "s", "user": "u"}, req.Body)
	assert.Equal(t, "$.reply", req.ResponsePath)
	assert.Equal(t, 3, req.Index)
	assert.Equal(t, "E1 (Echo)", req.Label)
	assert.Equal(t, "E1", req.Instance)
	assert.Equal(t, "Echo", req.Family)

	b, err := json.Marshal(req.Body)
	require.NoError(t, err)
	assert.JSONEq(t, `{"system":"s","user":"u"}`, string(b))
}

func TestRender_Deterministic(t *testing.T) {
	p := types.PromptPair{System: "sys", User: "multi\nline \"quoted\""}
	first, err := Render(echoInstance(), echoDescriptor(), p, 0)
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		again, err := Render(echoInstance(), echoDescriptor(), p, 0)
		require.NoError(t, err)
		assert.Equal(t, first.URL, again.URL)
		assert.Equal(t, first.Headers, again.Headers)
		a, _ := json.Marshal(first.Body)
		b, _ := json.Marshal(again.Body)
		assert.Equal(t, string(a), string(b))
	}
	assert.Equal(t, "multi\nline \"quoted\"", first.Body.(map[string]any)["user"])
}

func TestRender_IdentityAndNumbers(t *testing.T) {
	d := echoDescriptor()
	d.Templates.Header = `{"X-Instance": "${llm_name}", "X-Family": "${llm_model}"}`
	d.Templates.Data = `{"max_tokens": ${max}, "temperature": 0.70}`
	inst := echoInstance()
	inst.Properties["max"] = "1024"

	req, err := Render(inst, d, types.PromptPair{}, 0)
	require.NoError(t, err)
	assert.Equal(t, "E1", req.Headers["X-Instance"])
	assert.Equal(t, "Echo", req.Headers["X-Family"])
	b, err := json.Marshal(req.Body)
	require.NoError(t, err)
	assert.JSONEq(t, `{"max_tokens":1024,"temperature":0.70}`, string(b))
	assert.Contains(t, string(b), "0.70")
}

func TestRender_MissingIdentifier(t *testing.T) {
	inst := echoInstance()
	delete(inst.Properties, "path")
	req, err := Render(inst, echoDescriptor(), types.PromptPair{}, 2)
	require.Error(t, err)
	assert.True(t, IsTemplateError(err))
	assert.Contains(t, err.Error(), "${path}")
	// identity is attached even on failure so the caller can report it
	assert.Equal(t, 2, req.Index)
	assert.Equal(t, "E1 (Echo)", req.Label)
}

func TestRender_MalformedHeader(t *testing.T) {
	d := echoDescriptor()
	d.Templates.Header = `{"Content-Type": application/json}`
	_, err := Render(echoInstance(), d, types.PromptPair{}, 0)
	require.Error(t, err)
	assert.True(t, IsMalformedHeaderJSON(err))
	assert.False(t, IsMalformedBodyJSON(err))

	d.Templates.Header = `{"Retries": 3}`
	_, err = Render(echoInstance(), d, types.PromptPair{}, 0)
	assert.True(t, IsMalformedHeaderJSON(err))
}

func TestRender_MalformedBody(t *testing.T) {
	d := echoDescriptor()
	d.Templates.Data = `{"system": "${llm_system_prompt}",}`
	_, err := Render(echoInstance(), d, types.PromptPair{}, 0)
	require.Error(t, err)
	assert.True(t, IsMalformedBodyJSON(err))

	d.Templates.Data = `{"a": 1} {"b": 2}`
	_, err = Render(echoInstance(), d, types.PromptPair{}, 0)
	assert.True(t, IsMalformedBodyJSON(err))
}

func TestRender_PromptsOverrideProperties(t *testing.T) {
	inst := echoInstance()
	inst.Properties[KeyUserPrompt] = "stale"
	req, err := Render(inst, echoDescriptor(), types.PromptPair{User: "fresh"}, 0)
	require.NoError(t, err)
	assert.Equal(t, "fresh", req.Body.(map[string]any)["user"])
}

func TestNormalize_Idempotent(t *testing.T) {
	d := echoDescriptor()
	d.Templates.Endpoint = "${base}/${path}"
	inst := instances.Instance{Name: "x", Family: "Echo", Properties: map[string]string{
		"base": "http://host///",
		"path": "v1/chat",
		"key":  "trailing/",
	}}
	changed, err := Normalize(inst, d)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"base": "http://host"}, changed)

	for k, v := range changed {
		inst.Properties[k] = v
	}
	again, err := Normalize(inst, d)
	require.NoError(t, err)
	assert.Empty(t, again)
	assert.Equal(t, "trailing/", inst.Properties["key"])

	req, err := Render(inst, d, types.PromptPair{}, 0)
	require.NoError(t, err)
	assert.Equal(t, "http://host/v1/chat", req.URL)
}

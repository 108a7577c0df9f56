// Package render turns a model instance, its family descriptor and the shared
// prompt pair into a concrete HTTP request description.
package render

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"llmlauncher/internal/instances"
	"llmlauncher/internal/registry"
	"llmlauncher/pkg/types"
)

// Template part names used in errors.
const (
	PartEndpoint = "endpoint"
	PartHeader   = "header"
	PartBody     = "body"
)

// Identifiers always present in the substitution context.
const (
	KeySystemPrompt = "llm_system_prompt"
	KeyUserPrompt   = "llm_user_prompt"
	KeyName         = "llm_name"
	KeyModel        = "llm_model"
)

// Request is a fully materialized call for one instance in one round.
type Request struct {
	URL          string
	Headers      map[string]string
	Body         any
	ResponsePath string
	Index        int
	Label        string
	Instance     string
	Family       string
}

// Render substitutes the instance properties and prompts into the family
// templates. Values placed into the header and body templates are escaped as
// JSON string content; the endpoint receives them raw after trailing '/'
// trimming of every property it references.
func Render(inst instances.Instance, desc registry.Descriptor, prompts types.PromptPair, index int) (Request, error) {
	req := Request{
		ResponsePath: desc.Templates.ResponsePath,
		Index:        index,
		Label:        inst.Label(),
		Instance:     inst.Name,
		Family:       inst.Family,
	}

	endpoint, err := Parse(PartEndpoint, desc.Templates.Endpoint)
	if err != nil {
		return req, err
	}
	header, err := Parse(PartHeader, desc.Templates.Header)
	if err != nil {
		return req, err
	}
	body, err := Parse(PartBody, desc.Templates.Data)
	if err != nil {
		return req, err
	}

	vals := Context(inst, prompts)
	for k, v := range trimmed(inst.Properties, endpoint) {
		vals[k] = v
	}

	if req.URL, err = endpoint.Substitute(vals, nil); err != nil {
		return req, err
	}

	hs, err := header.Substitute(vals, jsonEscape)
	if err != nil {
		return req, err
	}
	if err := json.Unmarshal([]byte(hs), &req.Headers); err != nil {
		return req, &MalformedJSONError{Part: PartHeader, Err: err}
	}

	bs, err := body.Substitute(vals, jsonEscape)
	if err != nil {
		return req, err
	}
	if req.Body, err = decodeJSON(bs); err != nil {
		return req, &MalformedJSONError{Part: PartBody, Err: err}
	}
	return req, nil
}

// Context builds the substitution values for inst: its properties, its
// identity, and the prompt pair. Prompts win over same-named properties.
func Context(inst instances.Instance, prompts types.PromptPair) map[string]string {
	vals := make(map[string]string, len(inst.Properties)+4)
	for k, v := range inst.Properties {
		vals[k] = v
	}
	vals[KeyName] = inst.Name
	vals[KeyModel] = inst.Family
	vals[KeySystemPrompt] = prompts.System
	vals[KeyUserPrompt] = prompts.User
	return vals
}

// Normalize returns the properties referenced by the family's endpoint
// template whose values carry trailing slashes, mapped to their trimmed
// values. Callers persist these so the trim sticks across rounds. An empty
// result means inst is already normalized.
func Normalize(inst instances.Instance, desc registry.Descriptor) (map[string]string, error) {
	endpoint, err := Parse(PartEndpoint, desc.Templates.Endpoint)
	if err != nil {
		return nil, err
	}
	return trimmed(inst.Properties, endpoint), nil
}

func trimmed(props map[string]string, endpoint *Template) map[string]string {
	out := map[string]string{}
	for _, id := range endpoint.Identifiers() {
		v, ok := props[id]
		if !ok {
			continue
		}
		if t := strings.TrimRight(v, "/"); t != v {
			out[id] = t
		}
	}
	return out
}

func jsonEscape(s string) string {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	// encoding a string cannot fail
	_ = enc.Encode(s)
	out := bytes.TrimSuffix(buf.Bytes(), []byte("\n"))
	return string(out[1 : len(out)-1])
}

// decodeJSON parses a single JSON value, keeping numbers as json.Number so
// re-encoding the body reproduces them exactly.
func decodeJSON(s string) (any, error) {
	dec := json.NewDecoder(strings.NewReader(s))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, fmt.Errorf("unexpected data after JSON value")
	}
	return v, nil
}

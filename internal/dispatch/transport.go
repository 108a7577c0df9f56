package dispatch

import (
	"context"
	"encoding/json"
	"time"

	"github.com/go-resty/resty/v2"
)

// Transport posts a JSON body and returns the raw response. A non-nil error
// means no HTTP response was obtained.
type Transport interface {
	Post(ctx context.Context, url string, headers map[string]string, body any) (status int, respBody []byte, err error)
}

// TransportFunc adapts a function to Transport.
type TransportFunc func(ctx context.Context, url string, headers map[string]string, body any) (int, []byte, error)

func (f TransportFunc) Post(ctx context.Context, url string, headers map[string]string, body any) (int, []byte, error) {
	return f(ctx, url, headers, body)
}

// RestyTransport is the default Transport. It performs exactly one attempt
// per call.
type RestyTransport struct {
	client *resty.Client
}

// NewRestyTransport builds a transport; timeout 0 keeps the client default
// (no deadline).
func NewRestyTransport(timeout time.Duration, userAgent string) *RestyTransport {
	c := resty.New().SetRetryCount(0)
	if userAgent != "" {
		c.SetHeader("User-Agent", userAgent)
	}
	if timeout > 0 {
		c.SetTimeout(timeout)
	}
	return &RestyTransport{client: c}
}

func (t *RestyTransport) Post(ctx context.Context, url string, headers map[string]string, body any) (int, []byte, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return 0, nil, err
	}
	r := t.client.R().
		SetContext(ctx).
		SetHeaders(headers).
		SetBody(payload)
	if r.Header.Get("Content-Type") == "" {
		r.SetHeader("Content-Type", "application/json")
	}
	resp, err := r.Post(url)
	if err != nil {
		return 0, nil, err
	}
	return resp.StatusCode(), resp.Body(), nil
}

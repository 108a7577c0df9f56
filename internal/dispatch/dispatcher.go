// Package dispatch fans rendered requests out to their endpoints with a
// bounded number in flight and maps every response to a Result.
//
// A failing request never aborts or delays its siblings: transport errors,
// non-200 statuses, extraction failures and even panics inside the transport
// are converted into failure Results. DispatchAll always returns one Result
// per request.
package dispatch

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"llmlauncher/internal/extract"
	"llmlauncher/internal/render"
)

// DefaultConcurrency caps in-flight requests when Config.Concurrency is unset.
const DefaultConcurrency = 6

// Config holds Dispatcher tunables.
type Config struct {
	Transport   Transport
	Concurrency int
	Logger      *zerolog.Logger
}

// Dispatcher runs rounds of rendered requests.
type Dispatcher struct {
	transport Transport
	limit     int
	log       zerolog.Logger
}

// New constructs a Dispatcher, applying defaults for unset fields.
func New(cfg Config) *Dispatcher {
	d := &Dispatcher{
		transport: cfg.Transport,
		limit:     cfg.Concurrency,
		log:       zerolog.Nop(),
	}
	if d.transport == nil {
		d.transport = NewRestyTransport(0, "")
	}
	if d.limit <= 0 {
		d.limit = DefaultConcurrency
	}
	if cfg.Logger != nil {
		d.log = *cfg.Logger
	}
	return d
}

// Concurrency returns the in-flight cap.
func (d *Dispatcher) Concurrency() int { return d.limit }

// DispatchAll sends every request, at most Concurrency at a time, and waits
// for all of them. Results are positioned like reqs and tagged with each
// request's Index.
func (d *Dispatcher) DispatchAll(ctx context.Context, reqs []render.Request) []Result {
	results := make([]Result, len(reqs))
	var g errgroup.Group
	g.SetLimit(d.limit)
	for i := range reqs {
		req := reqs[i]
		g.Go(func() error {
			results[i] = d.do(ctx, req)
			return nil
		})
	}
	// tasks never return errors
	_ = g.Wait()
	return results
}

func (d *Dispatcher) do(ctx context.Context, req render.Request) (res Result) {
	res = Result{
		Index:    req.Index,
		Label:    req.Label,
		Instance: req.Instance,
		Family:   req.Family,
	}
	start := time.Now()
	inflightRequests.Inc()
	defer func() {
		inflightRequests.Dec()
		if p := recover(); p != nil {
			res.Elapsed = time.Since(start)
			fail(&res, OutcomeTransportError, fmt.Errorf("transport panic: %v", p), fmt.Sprint(p))
		}
		Observe(res)
		d.logResult(res)
	}()

	status, body, err := d.transport.Post(ctx, req.URL, req.Headers, req.Body)
	res.Elapsed = time.Since(start)
	res.StatusCode = status
	if err != nil {
		fail(&res, OutcomeTransportError, err, err.Error())
		return res
	}
	if status != http.StatusOK {
		fail(&res, OutcomeHTTPError, StatusError{Code: status}, string(body))
		return res
	}
	v, doc, err := extract.ExtractBytes(body, req.ResponsePath)
	if err != nil {
		fail(&res, OutcomeExtractError, err, string(body))
		return res
	}
	res.Text = extract.Text(v)
	res.Details = doc
	res.Outcome = OutcomeOK
	return res
}

func fail(res *Result, outcome Outcome, err error, details string) {
	res.Text = FailureMarker
	res.Details = details
	res.Outcome = outcome
	res.Err = err
}

func (d *Dispatcher) logResult(res Result) {
	if res.OK() {
		d.log.Debug().
			Str("instance", res.Instance).
			Str("family", res.Family).
			Int("status", res.StatusCode).
			Dur("elapsed", res.Elapsed).
			Msg("request done")
		return
	}
	d.log.Warn().
		Str("instance", res.Instance).
		Str("family", res.Family).
		Int("status", res.StatusCode).
		Str("outcome", string(res.Outcome)).
		Dur("elapsed", res.Elapsed).
		Err(res.Err).
		Msg("request failed")
}

package dispatch

import (
	"sort"
	"strconv"
	"time"

	"llmlauncher/internal/render"
	"llmlauncher/pkg/types"
)

// FailureMarker is the display text of every failed result.
const FailureMarker = "Request failed"

// Outcome classifies a result.
type Outcome string

const (
	OutcomeOK             Outcome = "ok"
	OutcomeHTTPError      Outcome = "http_error"
	OutcomeTransportError Outcome = "transport_error"
	OutcomeExtractError   Outcome = "extract_error"
	OutcomeRenderError    Outcome = "render_error"
)

// Result is the outcome of one request in a round.
type Result struct {
	Index      int
	Label      string
	Instance   string
	Family     string
	StatusCode int
	// Text is the extracted display text, or FailureMarker.
	Text string
	// Details is the parsed response body on success, diagnostic text otherwise.
	Details any
	Elapsed time.Duration
	Outcome Outcome
	Err     error
}

// OK reports whether the request succeeded end to end.
func (r Result) OK() bool { return r.Err == nil }

// ElapsedSeconds returns the wall-clock duration of the call in seconds.
func (r Result) ElapsedSeconds() float64 { return r.Elapsed.Seconds() }

// View converts the result to its wire representation.
func (r Result) View() types.ResultView {
	v := types.ResultView{
		Index:          r.Index,
		Label:          r.Label,
		Instance:       r.Instance,
		Family:         r.Family,
		StatusCode:     r.StatusCode,
		Text:           r.Text,
		Details:        r.Details,
		ElapsedSeconds: r.ElapsedSeconds(),
		Outcome:        string(r.Outcome),
	}
	if r.Err != nil {
		v.Error = r.Err.Error()
	}
	return v
}

// StatusError reports a response with a status other than 200.
type StatusError struct{ Code int }

func (e StatusError) Error() string { return "unexpected status " + strconv.Itoa(e.Code) }

// Failed builds the failure result of a request that never reached the
// transport, e.g. because it could not be rendered.
func Failed(req render.Request, err error) Result {
	return Result{
		Index:    req.Index,
		Label:    req.Label,
		Instance: req.Instance,
		Family:   req.Family,
		Text:     FailureMarker,
		Details:  err.Error(),
		Outcome:  OutcomeRenderError,
		Err:      err,
	}
}

// SortByIndex orders results by their original index.
func SortByIndex(rs []Result) {
	sort.SliceStable(rs, func(i, j int) bool { return rs[i].Index < rs[j].Index })
}

package launcher

import (
	"context"
	"time"

	"github.com/google/uuid"

	"llmlauncher/internal/dispatch"
	"llmlauncher/internal/render"
	"llmlauncher/pkg/types"
)

// Round is the outcome of one dispatch of a prompt pair to every instance.
type Round struct {
	ID      string
	Prompts types.PromptPair
	// Results holds exactly one entry per instance, ordered by Index.
	Results []dispatch.Result
	Started time.Time
	Elapsed time.Duration
}

// Response converts the round to its wire representation.
func (r Round) Response() types.RoundResponse {
	out := types.RoundResponse{
		ID:             r.ID,
		Prompts:        r.Prompts,
		Results:        make([]types.ResultView, 0, len(r.Results)),
		StartedUnix:    r.Started.Unix(),
		ElapsedSeconds: r.Elapsed.Seconds(),
	}
	for _, res := range r.Results {
		out.Results = append(out.Results, res.View())
	}
	return out
}

// Run renders every configured instance and dispatches the renderable ones.
// Instances that fail to render (unknown family, template or JSON errors)
// get a failure result in their slot; the round always completes. The only
// error returned is a context that is already done.
func (l *Launcher) Run(ctx context.Context, prompts types.PromptPair) (Round, error) {
	if err := ctx.Err(); err != nil {
		return Round{}, err
	}
	round := Round{ID: uuid.NewString(), Prompts: prompts, Started: time.Now()}
	l.pub.Publish(Event{Name: EventRoundStart, RoundID: round.ID})

	list := l.store.List()
	l.log.Info().Str("round", round.ID).Int("instances", len(list)).Msg("round start")

	reqs := make([]render.Request, 0, len(list))
	results := make([]dispatch.Result, 0, len(list))
	for i, inst := range list {
		stub := render.Request{Index: i, Label: inst.Label(), Instance: inst.Name, Family: inst.Family}
		desc, err := l.Family(inst.Family)
		if err != nil {
			results = append(results, l.renderFailed(stub, err))
			continue
		}
		// Trimming persists in the store and happens before fan-out.
		changed, err := render.Normalize(inst, desc)
		if err != nil {
			results = append(results, l.renderFailed(stub, err))
			continue
		}
		for k, v := range changed {
			if err := l.store.SetProperty(inst.Name, k, v); err != nil {
				l.log.Warn().Err(err).Str("instance", inst.Name).Msg("persist normalized property")
			}
			inst.Properties[k] = v
		}
		req, err := render.Render(inst, desc, prompts, i)
		if err != nil {
			results = append(results, l.renderFailed(stub, err))
			continue
		}
		reqs = append(reqs, req)
	}

	results = append(results, l.disp.DispatchAll(ctx, reqs)...)
	dispatch.SortByIndex(results)
	round.Results = results
	round.Elapsed = time.Since(round.Started)

	l.store.SetPrompts(prompts)
	l.record(round)
	return round, nil
}

func (l *Launcher) renderFailed(req render.Request, err error) dispatch.Result {
	res := dispatch.Failed(req, err)
	dispatch.Observe(res)
	l.log.Warn().Str("instance", req.Instance).Str("family", req.Family).Err(err).Msg("render failed")
	return res
}

func (l *Launcher) record(round Round) {
	roundsTotal.Inc()
	failed := 0
	for _, r := range round.Results {
		runsTotal.WithLabelValues(r.Family).Inc()
		fields := map[string]any{
			"index":   r.Index,
			"outcome": string(r.Outcome),
			"status":  r.StatusCode,
			"elapsed": r.Elapsed,
		}
		if !r.OK() {
			failed++
		}
		l.pub.Publish(Event{Name: EventRequestEnd, RoundID: round.ID, Instance: r.Instance, Fields: fields})
	}
	l.pub.Publish(Event{Name: EventRoundEnd, RoundID: round.ID, Fields: map[string]any{
		"results": len(round.Results),
		"failed":  failed,
		"elapsed": round.Elapsed,
	}})

	l.mu.Lock()
	l.rounds++
	l.lastRound = round.ID
	l.lastStart = round.Started
	l.mu.Unlock()

	l.log.Info().
		Str("round", round.ID).
		Int("results", len(round.Results)).
		Int("failed", failed).
		Dur("elapsed", round.Elapsed).
		Msg("round end")
}

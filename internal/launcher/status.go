package launcher

import (
	"time"

	"llmlauncher/pkg/types"
)

// Status reports a snapshot of the launcher state.
func (l *Launcher) Status() types.StatusResponse {
	l.mu.Lock()
	rounds, last, lastStart := l.rounds, l.lastRound, l.lastStart
	l.mu.Unlock()

	st := types.StatusResponse{
		State:          "loading",
		Families:       l.reg.Len(),
		Instances:      l.store.Len(),
		Concurrency:    l.disp.Concurrency(),
		RoundsTotal:    rounds,
		LastRoundID:    last,
		UptimeSeconds:  int64(time.Since(l.startTime).Seconds()),
		ServerTimeUnix: time.Now().Unix(),
		Version:        l.version,
	}
	if l.Ready() {
		st.State = "ready"
	}
	if !lastStart.IsZero() {
		st.LastRoundUnix = lastStart.Unix()
	}
	return st
}

// Version returns the configured version string.
func (l *Launcher) Version() string { return l.version }

package types

// RoundRequest is the body of POST /rounds.
type RoundRequest = PromptPair

// ResultView is one result pane of a round.
type ResultView struct {
	// Position of the instance in the round (0-based).
	// example: 0
	Index int `json:"index" example:"0"`
	// Display label "{instance} ({family})".
	// example: E1 (Echo)
	Label string `json:"label" example:"E1 (Echo)"`
	// Instance name.
	// example: E1
	Instance string `json:"instance" example:"E1"`
	// Family name.
	// example: Echo
	Family string `json:"family" example:"Echo"`
	// HTTP status of the upstream response; 0 when no response was received.
	// example: 200
	StatusCode int `json:"status_code" example:"200"`
	// Extracted text, or "Request failed".
	// example: hi
	Text string `json:"text" example:"hi"`
	// Parsed upstream body on success, diagnostic text on failure.
	Details any `json:"details,omitempty" swaggertype:"object"`
	// Wall-clock time of the upstream call in seconds.
	// example: 0.532
	ElapsedSeconds float64 `json:"elapsed_seconds" example:"0.532"`
	// Outcome class: ok, http_error, transport_error, extract_error, render_error.
	// example: ok
	Outcome string `json:"outcome" example:"ok"`
	// Error message when the request failed.
	Error string `json:"error,omitempty"`
}

// RoundResponse is returned by POST /rounds.
type RoundResponse struct {
	// Round identifier.
	// example: 1b4e28ba-2fa1-11d2-883f-0016d3cca427
	ID string `json:"id" example:"1b4e28ba-2fa1-11d2-883f-0016d3cca427"`
	// Prompts used for the round.
	Prompts PromptPair `json:"prompts"`
	// Results ordered by index.
	Results []ResultView `json:"results"`
	// Round start time (unix seconds).
	// example: 1700000000
	StartedUnix int64 `json:"started_unix" example:"1700000000"`
	// Total round duration in seconds.
	// example: 1.2
	ElapsedSeconds float64 `json:"elapsed_seconds" example:"1.2"`
}

// ErrorResponse is a consistent JSON error payload.
type ErrorResponse struct {
	// Error message.
	// example: invalid JSON body
	Error string `json:"error" example:"invalid JSON body"`
	// HTTP status code.
	// example: 400
	Code int `json:"code" example:"400"`
}

// StatusResponse is returned by GET /status.
type StatusResponse struct {
	// Overall state: ready when at least one family is loaded.
	// example: ready
	State string `json:"state" example:"ready"`
	// Number of registered model families.
	// example: 4
	Families int `json:"families" example:"4"`
	// Number of configured instances.
	// example: 3
	Instances int `json:"instances" example:"3"`
	// Maximum concurrent outbound requests per round.
	// example: 6
	Concurrency int `json:"concurrency" example:"6"`
	// Rounds run since start.
	// example: 12
	RoundsTotal uint64 `json:"rounds_total" example:"12"`
	// ID of the most recent round.
	LastRoundID string `json:"last_round_id,omitempty"`
	// Start of the most recent round (unix seconds).
	LastRoundUnix int64 `json:"last_round_unix,omitempty"`
	// Uptime of the process in seconds.
	// example: 3600
	UptimeSeconds int64 `json:"uptime_seconds" example:"3600"`
	// Server time in unix seconds.
	// example: 1700000000
	ServerTimeUnix int64 `json:"server_time_unix" example:"1700000000"`
	// Build or release version.
	// example: development
	Version string `json:"version" example:"development"`
}

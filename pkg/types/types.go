package types

// PromptPair is the system/user prompt shared by every instance in a round.
type PromptPair struct {
	// System prompt substituted as ${llm_system_prompt}.
	// example: You are a terse assistant.
	System string `json:"system_prompt" example:"You are a terse assistant."`
	// User prompt substituted as ${llm_user_prompt}.
	// example: Write a haiku about the ocean.
	User string `json:"user_prompt" example:"Write a haiku about the ocean."`
}

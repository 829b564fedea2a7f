package quiz

import "time"

// Config controls prompt budgets and provider timeouts for the Service.
// The same service handles generation and feedback; only the knobs differ.
type Config struct {
	// GenerateMaxTokens is the token budget for problem generation.
	GenerateMaxTokens int

	// GenerateTemperature balances variety against the reliability of the
	// requested JSON structure. Not zero: identical prompts should still
	// produce different problems.
	GenerateTemperature float64

	// FeedbackMaxTokens is the token budget for tutoring feedback.
	FeedbackMaxTokens int

	// FeedbackTemperature controls feedback randomness.
	FeedbackTemperature float64

	// RequestTimeout bounds each provider call. A breach is treated like
	// any other provider failure.
	RequestTimeout time.Duration
}

// DefaultConfig returns a Config with recommended defaults.
func DefaultConfig() Config {
	return Config{
		GenerateMaxTokens:   256,
		GenerateTemperature: 0.6,
		FeedbackMaxTokens:   512,
		FeedbackTemperature: 0.7,
		RequestTimeout:      30 * time.Second,
	}
}

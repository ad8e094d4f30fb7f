package models

// ReasoningEffort is the configured reasoning effort level. The value "none"
// disables the reasoning block on outbound requests entirely.
type ReasoningEffort string

const (
	ReasoningEffortNone   ReasoningEffort = "none"
	ReasoningEffortLow    ReasoningEffort = "low"
	ReasoningEffortMedium ReasoningEffort = "medium"
	ReasoningEffortHigh   ReasoningEffort = "high"
)

// ReasoningSummaryMode is the configured reasoning summary verbosity.
type ReasoningSummaryMode string

const (
	ReasoningSummaryNone     ReasoningSummaryMode = "none"
	ReasoningSummaryAuto     ReasoningSummaryMode = "auto"
	ReasoningSummaryConcise  ReasoningSummaryMode = "concise"
	ReasoningSummaryDetailed ReasoningSummaryMode = "detailed"
)

// Config carries the session settings consumed by the request builder and
// the rollout recorder. Loading it is the caller's concern.
type Config struct {
	// Model is the target model identifier, e.g. "o3" or "gpt-4.1".
	Model string

	ModelReasoningEffort  ReasoningEffort
	ModelReasoningSummary ReasoningSummaryMode

	// ModelSupportsReasoningSummaries forces reasoning parameters on for
	// providers whose model names do not match the recognized prefixes.
	ModelSupportsReasoningSummaries bool

	// HomeDir is the per-installation state directory; rollouts are stored
	// under its sessions subdirectory.
	HomeDir string

	// Cwd is the session working directory used by the environment probe.
	Cwd string
}

// DefaultConfig returns a sensible default configuration.
func DefaultConfig() Config {
	return Config{
		Model:                 "o4-mini",
		ModelReasoningEffort:  ReasoningEffortMedium,
		ModelReasoningSummary: ReasoningSummaryAuto,
	}
}

package domain

// Outcome describes how a single dispatch ended.
type Outcome int

const (
	// OutcomeNoop means nothing was dispatched (empty command or no editor).
	OutcomeNoop Outcome = iota
	// OutcomePrimary means the parsed command ran on the built-in engine.
	OutcomePrimary
	// OutcomeFallback means the command was preferred to the fallback engine.
	OutcomeFallback
	// OutcomeRedirected means the built-in engine refused the command and the
	// raw text was handed to the fallback engine.
	OutcomeRedirected
	// OutcomeStatusReported means a classified error was shown on the status bar.
	OutcomeStatusReported
	// OutcomeErrorReported means an unclassified error was shown as an error message.
	OutcomeErrorReported
)

func (o Outcome) String() string {
	switch o {
	case OutcomeNoop:
		return "noop"
	case OutcomePrimary:
		return "primary"
	case OutcomeFallback:
		return "fallback"
	case OutcomeRedirected:
		return "redirected"
	case OutcomeStatusReported:
		return "status_reported"
	case OutcomeErrorReported:
		return "error_reported"
	default:
		return "unknown"
	}
}

package installer

import "fmt"

type OutcomeKind int

const (
	OutcomeSuccess OutcomeKind = iota
	OutcomeCancelled
	OutcomeErrored
)

func (k OutcomeKind) String() string {
	switch k {
	case OutcomeSuccess:
		return "success"
	case OutcomeCancelled:
		return "cancelled"
	case OutcomeErrored:
		return "errored"
	}
	return "unknown"
}

// Outcome is how a finished attempt ended. Message is only set for OutcomeErrored.
type Outcome struct {
	Kind    OutcomeKind
	Message string
}

func Success() Outcome {
	return Outcome{Kind: OutcomeSuccess}
}

func Cancelled() Outcome {
	return Outcome{Kind: OutcomeCancelled}
}

func Errored(format string, args ...interface{}) Outcome {
	return Outcome{Kind: OutcomeErrored, Message: fmt.Sprintf(format, args...)}
}

// IsError is true only for OutcomeErrored. A cancelled attempt is something the user
// asked for and is not reported as a failure.
func (o Outcome) IsError() bool {
	return o.Kind == OutcomeErrored
}

func (o Outcome) String() string {
	if o.Kind == OutcomeErrored && o.Message != "" {
		return fmt.Sprintf("%s: %s", o.Kind, o.Message)
	}
	return o.Kind.String()
}

package timecheck

// Outcome classifies a request.
type Outcome int

const (
	// Proceed means the caller continues normal processing.
	Proceed Outcome = iota
	// Skip means no further processing is needed.
	Skip
)

func (o Outcome) String() string {
	if o == Skip {
		return "skip"
	}
	return "proceed"
}

// Decision is the result of a check.
// Signal is set if and only if Outcome is Skip.
type Decision struct {
	Outcome Outcome
	Signal  *SkipSignal
}

func proceed() Decision {
	return Decision{Outcome: Proceed}
}

func skip(verb Verb, code int) Decision {
	return Decision{Outcome: Skip, Signal: newSkipSignal(verb, code)}
}

// Err returns the skip signal as an error, or nil when the request may proceed.
func (d Decision) Err() error {
	if d.Signal == nil {
		return nil
	}
	return d.Signal
}

package pipeline

// Summary aggregates a batch run.
type Summary struct {
	Outcomes []Outcome // in input order
	Warnings []Warning
	// NotStarted counts candidates skipped because the batch was cancelled
	// before they began.
	NotStarted int
}

// Counts tracks outcomes per result.
type Counts struct {
	Total      int
	Succeeded  int
	Cancelled  int
	Failed     int
	NotStarted int
	Warnings   int
}

// Counts returns the number of outcomes per result.
func (s Summary) Counts() Counts {
	c := Counts{
		Total:      len(s.Outcomes) + s.NotStarted,
		NotStarted: s.NotStarted,
		Warnings:   len(s.Warnings),
	}
	for _, o := range s.Outcomes {
		switch o.Result {
		case Success:
			c.Succeeded++
		case Cancelled:
			c.Cancelled++
		default:
			c.Failed++
		}
	}
	return c
}

// Succeeded returns the inputs that converted completely.
func (s Summary) Succeeded() []string { return s.inputs(Success) }

// Cancelled returns the inputs stopped by cancellation.
func (s Summary) Cancelled() []string { return s.inputs(Cancelled) }

// Failed returns the inputs that failed.
func (s Summary) Failed() []string { return s.inputs(Failed) }

func (s Summary) inputs(r Result) []string {
	var out []string
	for _, o := range s.Outcomes {
		if o.Result == r {
			out = append(out, o.Input)
		}
	}
	return out
}

// WasCancelled reports whether the batch stopped early.
func (s Summary) WasCancelled() bool {
	return s.NotStarted > 0 || len(s.Cancelled()) > 0
}

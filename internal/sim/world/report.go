package world

import "fmt"

// Warning records a non-fatal in-sim condition (overflow discards,
// abandoned hauls). Warnings are reporting only and never feed back into
// simulation state or the digest.
type Warning struct {
	Tick    uint64 `json:"tick"`
	Message string `json:"message"`
}

// Rejection records an event that failed validation and was dropped.
type Rejection struct {
	Tick    uint64 `json:"tick"`
	Kind    string `json:"kind"`
	Reason  string `json:"reason"`
	Payload string `json:"payload,omitempty"`
}

func (w *World) warnf(format string, args ...any) {
	w.warnings = append(w.warnings, Warning{
		Tick:    w.clock.Tick,
		Message: fmt.Sprintf(format, args...),
	})
}

// DrainWarnings returns accumulated warnings and clears the buffer.
func (w *World) DrainWarnings() []Warning {
	out := w.warnings
	w.warnings = nil
	return out
}

// DrainRejections returns accumulated event rejections and clears the
// buffer.
func (w *World) DrainRejections() []Rejection {
	out := w.rejections
	w.rejections = nil
	return out
}

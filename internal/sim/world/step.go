package world

// TickResult summarizes one completed tick for callers: the runner, the
// replay sink, and tests.
type TickResult struct {
	Tick       uint64
	Digest     string
	Applied    [][]byte
	Rejections []Rejection
	Warnings   []Warning
}

// Step advances the world exactly one tick. System order is fixed:
// events, construction, production, transport, digest. Raw event bytes
// of every applied event are forwarded to the sink so a replay reproduces
// the exact input stream.
func (w *World) Step(events [][]byte) (TickResult, error) {
	applied := make([][]byte, 0, len(events))
	for _, raw := range events {
		ev, err := DecodeEvent(raw)
		if err != nil {
			w.rejections = append(w.rejections, Rejection{
				Tick: w.clock.Tick, Kind: "decode", Reason: err.Error(), Payload: string(raw),
			})
			continue
		}
		if err := ev.validate(w); err != nil {
			w.rejections = append(w.rejections, Rejection{
				Tick: w.clock.Tick, Kind: ev.Kind(), Reason: err.Error(), Payload: string(raw),
			})
			continue
		}
		if err := ev.apply(w); err != nil {
			// validate passed, so apply failing means an engine bug; record
			// it as a rejection rather than crashing the run.
			w.rejections = append(w.rejections, Rejection{
				Tick: w.clock.Tick, Kind: ev.Kind(), Reason: err.Error(), Payload: string(raw),
			})
			continue
		}
		applied = append(applied, raw)
	}

	w.stepConstruction()
	w.stepProduction()
	w.stepTransport()

	digest := w.Digest()
	if w.sink != nil {
		if err := w.sink.Append(w.clock.Tick, applied, digest); err != nil {
			return TickResult{}, err
		}
	}

	res := TickResult{
		Tick:       w.clock.Tick,
		Digest:     digest,
		Applied:    applied,
		Rejections: w.DrainRejections(),
		Warnings:   w.DrainWarnings(),
	}
	w.clock.Tick++
	return res, nil
}

// Encode serializes typed events into the raw form Step consumes. Used
// by scripted scenarios and tests that build events as structs.
func Encode(evs ...Event) ([][]byte, error) {
	out := make([][]byte, 0, len(evs))
	for _, ev := range evs {
		raw, err := EncodeEvent(ev)
		if err != nil {
			return nil, err
		}
		out = append(out, raw)
	}
	return out, nil
}

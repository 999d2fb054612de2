package sequencer

import "github.com/PabloCSScobar/musicxml-parser/model"

// TempoBreakpoint says playback runs at BPM from Time onward.
type TempoBreakpoint struct {
	Time model.Rational // quarter notes
	BPM  float64
}

// TempoMap is a piecewise-constant tempo function over quarter-note time.
// Breakpoints arrive in walk order, so Time never decreases across entries.
type TempoMap struct {
	breakpoints []TempoBreakpoint
}

func NewTempoMap(initialBPM float64) *TempoMap {
	return &TempoMap{breakpoints: []TempoBreakpoint{{BPM: initialBPM}}}
}

// Add records a tempo change at t. Restating the current value is dropped
// and a different value at the current time replaces it in place.
func (tm *TempoMap) Add(t model.Rational, bpm float64) {
	last := &tm.breakpoints[len(tm.breakpoints)-1]
	if last.BPM == bpm {
		return
	}
	if last.Time.Cmp(t) == 0 {
		last.BPM = bpm
		return
	}
	tm.breakpoints = append(tm.breakpoints, TempoBreakpoint{Time: t, BPM: bpm})
}

// MsAt converts quarter-note time to milliseconds, summing every tempo
// segment before t at its own rate: one quarter at 120 BPM is 500ms.
func (tm *TempoMap) MsAt(t model.Rational) float64 {
	var ms float64
	for i, bp := range tm.breakpoints {
		if bp.Time.Cmp(t) >= 0 {
			break
		}
		segEnd := t
		if i+1 < len(tm.breakpoints) && tm.breakpoints[i+1].Time.Cmp(t) < 0 {
			segEnd = tm.breakpoints[i+1].Time
		}
		ms += segEnd.Sub(bp.Time).Float64() * (60000 / bp.BPM)
	}
	return ms
}

func (tm *TempoMap) Breakpoints() []TempoBreakpoint {
	return tm.breakpoints
}

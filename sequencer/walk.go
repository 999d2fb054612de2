package sequencer

import "github.com/PabloCSScobar/musicxml-parser/model"

// noteKey identifies a note across the original and expanded graphs:
// original measure number plus the note's position among its (voice, staff)
// peers in that measure. Clones copy notes in order, so ordinals line up.
type noteKey struct {
	measure int
	voice   int
	staff   int
	ordinal int
}

// timedNote is one expanded note placed on the absolute playback timeline,
// still in exact quarter-note time.
type timedNote struct {
	note    model.Note
	measure *model.Measure
	start   model.Rational
	ordinal int
}

// displayWalk accumulates notated time over an original part. It returns
// the display tempo map and each note key's quarter-note display time;
// every later repeat of a measure shares the first occurrence's value.
func displayWalk(part *model.Part, defaultBPM float64) (*TempoMap, map[noteKey]model.Rational) {
	tm := NewTempoMap(defaultBPM)
	times := make(map[noteKey]model.Rational)
	var cursor model.Rational
	for i := range part.Measures {
		m := &part.Measures[i]
		tm.Add(cursor, m.TempoBPM)
		ordinals := map[[2]int]int{}
		for j := range m.Notes {
			n := &m.Notes[j]
			vs := [2]int{n.Voice, n.Staff}
			key := noteKey{measure: m.Number, voice: n.Voice, staff: n.Staff, ordinal: ordinals[vs]}
			ordinals[vs]++
			if _, seen := times[key]; !seen {
				times[key] = cursor.Add(n.StartTime)
			}
		}
		cursor = cursor.Add(m.Time.QuarterLength())
	}
	return tm, times
}

// playbackWalk accumulates performed time over an expanded part. The tempo
// map is completed before any time is converted to milliseconds, so
// durations spanning a tempo change still convert exactly.
func playbackWalk(part *model.Part, defaultBPM float64) (*TempoMap, []timedNote) {
	tm := NewTempoMap(defaultBPM)
	var notes []timedNote
	var cursor model.Rational
	for i := range part.Measures {
		m := &part.Measures[i]
		tm.Add(cursor, m.TempoBPM)
		ordinals := map[[2]int]int{}
		for j := range m.Notes {
			n := &m.Notes[j]
			vs := [2]int{n.Voice, n.Staff}
			notes = append(notes, timedNote{
				note:    *n,
				measure: m,
				start:   cursor.Add(n.StartTime),
				ordinal: ordinals[vs],
			})
			ordinals[vs]++
		}
		cursor = cursor.Add(m.Time.QuarterLength())
	}
	return tm, notes
}

// Package sequencer reconciles the original and expanded score graphs into
// millisecond-timed event streams: one per-note stream carrying dual
// playback/display timing, and a player-ready note_on/note_off stream.
package sequencer

import (
	"runtime"
	"sort"
	"sync"

	"github.com/PabloCSScobar/musicxml-parser/model"
	"github.com/remeh/sizedwaitgroup"
)

// Sequence walks both scores and emits the ordered note-event stream.
// Parts pair by index, so passing the original score as expanded (repeats
// not unrolled) also works and yields single-iteration events.
func Sequence(original, expanded *model.Score) []model.NoteEvent {
	results := make([][]model.NoteEvent, len(expanded.Parts))

	swg := sizedwaitgroup.New(runtime.NumCPU())
	for i := range expanded.Parts {
		swg.Add()
		go func(i int) {
			defer swg.Done()
			results[i] = sequencePart(original, expanded, i)
		}(i)
	}
	swg.Wait()

	var events []model.NoteEvent
	for _, r := range results {
		events = append(events, r...)
	}
	sort.SliceStable(events, func(a, b int) bool {
		x, y := events[a], events[b]
		if x.StartTimeMs != y.StartTimeMs {
			return x.StartTimeMs < y.StartTimeMs
		}
		if x.Staff != y.Staff {
			return x.Staff < y.Staff
		}
		return x.Voice < y.Voice
	})
	return events
}

func sequencePart(original, expanded *model.Score, idx int) []model.NoteEvent {
	part := &expanded.Parts[idx]

	var displayMap *TempoMap
	displayTimes := map[noteKey]model.Rational{}
	var playbackMap *TempoMap
	var timed []timedNote

	// The two walks are independent; assembly needs both.
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		if idx < len(original.Parts) {
			displayMap, displayTimes = displayWalk(&original.Parts[idx], original.TempoBPM)
		} else {
			displayMap = NewTempoMap(original.TempoBPM)
		}
	}()
	go func() {
		defer wg.Done()
		playbackMap, timed = playbackWalk(part, expanded.TempoBPM)
	}()
	wg.Wait()

	events := make([]model.NoteEvent, 0, len(timed))
	for _, tn := range timed {
		m := tn.measure
		startMs := playbackMap.MsAt(tn.start)
		endMs := playbackMap.MsAt(tn.start.Add(tn.note.Duration))

		// Repeated occurrences of a measure share one display time. Notes
		// with no original counterpart fall back to their playback time.
		displayMs := startMs
		key := noteKey{measure: m.Number, voice: tn.note.Voice, staff: tn.note.Staff, ordinal: tn.ordinal}
		if dq, ok := displayTimes[key]; ok {
			displayMs = displayMap.MsAt(dq)
		}

		total := m.TotalIterations
		if total < 1 {
			total = 1
		}
		section := m.EndingLabel
		if section == "" {
			section = "main"
		}
		events = append(events, model.NoteEvent{
			Part:               part.ID,
			Pitch:              tn.note.Pitch,
			IsRest:             tn.note.IsRest,
			IsChord:            tn.note.IsChord,
			Tie:                tn.note.Tie,
			Staff:              tn.note.Staff,
			Voice:              tn.note.Voice,
			Measure:            m.Number,
			StartTimeMs:        startMs,
			StartTimeDisplayMs: displayMs,
			DurationMs:         endMs - startMs,
			Iteration:          m.Iteration,
			IsRepeat:           m.FromRepeat || total > 1,
			RepeatID:           m.RepeatSectionID,
			RepeatSection:      section,
			TotalIterations:    total,
		})
	}
	return events
}

var kindRank = map[model.PlaybackKind]int{
	model.PlaybackTempoChange: 0,
	model.PlaybackNoteOff:     1,
	model.PlaybackNoteOn:      2,
}

// PlaybackEvents derives the player stream from the expanded score: an
// on/off pair per sounding note plus a tempo_change per breakpoint. Tempo
// events come from the first part's map only, parts share one tempo line.
// At equal times note_off sorts before note_on so back-to-back repetitions
// of a pitch never overlap.
func PlaybackEvents(expanded *model.Score) []model.PlaybackEvent {
	var events []model.PlaybackEvent
	for i := range expanded.Parts {
		playbackMap, timed := playbackWalk(&expanded.Parts[i], expanded.TempoBPM)
		if i == 0 {
			for _, bp := range playbackMap.Breakpoints() {
				events = append(events, model.PlaybackEvent{
					Kind:         model.PlaybackTempoChange,
					TimeMs:       playbackMap.MsAt(bp.Time),
					TimeQuarters: bp.Time.Float64(),
					BPM:          bp.BPM,
				})
			}
		}
		for _, tn := range timed {
			if tn.note.IsRest || tn.note.Pitch == "" {
				continue
			}
			end := tn.start.Add(tn.note.Duration)
			events = append(events, model.PlaybackEvent{
				Kind:         model.PlaybackNoteOn,
				TimeMs:       playbackMap.MsAt(tn.start),
				TimeQuarters: tn.start.Float64(),
				Pitch:        tn.note.Pitch,
				Staff:        tn.note.Staff,
				Voice:        tn.note.Voice,
				Measure:      tn.measure.Number,
			}, model.PlaybackEvent{
				Kind:         model.PlaybackNoteOff,
				TimeMs:       playbackMap.MsAt(end),
				TimeQuarters: end.Float64(),
				Pitch:        tn.note.Pitch,
				Staff:        tn.note.Staff,
				Voice:        tn.note.Voice,
				Measure:      tn.measure.Number,
			})
		}
	}
	sort.SliceStable(events, func(a, b int) bool {
		if events[a].TimeMs != events[b].TimeMs {
			return events[a].TimeMs < events[b].TimeMs
		}
		return kindRank[events[a].Kind] < kindRank[events[b].Kind]
	})
	return events
}

// Package builder turns a decoded document plus its structure descriptor
// into the original score graph. Building never fails: malformed content is
// recorded on the score and replaced with a safe default, so any
// structurally sound document yields a playable result.
package builder

import (
	"sort"
	"strconv"
	"strings"

	"github.com/PabloCSScobar/musicxml-parser/model"
	"github.com/PabloCSScobar/musicxml-parser/musicxml"
)

// measureContext is the attribute state a measure inherits from its
// predecessor. It is copied, never shared, which keeps parts independently
// buildable.
type measureContext struct {
	Divisions int
	Time      model.TimeSignature
	KeyFifths int
	TempoBPM  float64
}

func initialContext() measureContext {
	return measureContext{
		Divisions: 4,
		Time:      model.TimeSignature{Beats: 4, BeatType: 4},
		KeyFifths: 0,
		TempoBPM:  120,
	}
}

var accidentalGlyphs = map[int]string{-2: "bb", -1: "b", 0: "", 1: "#", 2: "##"}

// beat-unit lengths in whole notes.
var beatUnitWhole = map[string]float64{
	"whole":   1,
	"half":    0.5,
	"quarter": 0.25,
	"eighth":  0.125,
	"16th":    0.0625,
	"32nd":    0.03125,
	"64th":    0.015625,
}

// Build assembles the original score. Parts come out in part-list order; a
// part body whose id has no part-list entry is skipped with a recorded
// error, a listed part without a body keeps zero measures.
func Build(doc *musicxml.ScorePartwise, info *model.StructureInfo) *model.Score {
	score := &model.Score{Title: info.Title, Composer: info.Composer}

	bodies := map[string]*musicxml.Part{}
	for i := range doc.Parts {
		bodies[doc.Parts[i].ID] = &doc.Parts[i]
	}
	listed := map[string]bool{}
	for _, pi := range info.Parts {
		listed[pi.ID] = true
		part := model.Part{
			ID:          pi.ID,
			Name:        pi.Name,
			Instrument:  pi.Instrument,
			MIDIChannel: pi.MIDIChannel,
			MIDIProgram: pi.MIDIProgram,
			Staves:      1,
		}
		if body := bodies[pi.ID]; body != nil {
			buildPart(&part, body, score)
		}
		score.Parts = append(score.Parts, part)
	}
	for _, p := range doc.Parts {
		if !listed[p.ID] {
			score.AddErrorf("part %v not found in part-list, skipping its content", p.ID)
		}
	}

	applyScoreDefaults(score)
	return score
}

// applyScoreDefaults copies the first built measure's context onto the
// score so consumers get sane global values even for odd documents.
func applyScoreDefaults(score *model.Score) {
	ctx := initialContext()
	score.Divisions = ctx.Divisions
	score.Time = ctx.Time
	score.KeyFifths = ctx.KeyFifths
	score.TempoBPM = ctx.TempoBPM
	if len(score.Parts) == 0 || len(score.Parts[0].Measures) == 0 {
		return
	}
	first := score.Parts[0].Measures[0]
	score.Divisions = first.Divisions
	score.Time = first.Time
	score.KeyFifths = first.KeyFifths
	score.TempoBPM = first.TempoBPM
}

func buildPart(part *model.Part, body *musicxml.Part, score *model.Score) {
	ctx := initialContext()
	for i := range body.Measures {
		m, next := buildMeasure(&body.Measures[i], i, ctx, part, score)
		part.Measures = append(part.Measures, m)
		ctx = next
	}
}

// buildMeasure resolves one measure against the inherited context and
// returns the context its successor starts from.
func buildMeasure(mx *musicxml.Measure, index int, ctx measureContext, part *model.Part, score *model.Score) (model.Measure, measureContext) {
	number := index + 1
	if mx.Number == "" {
		score.AddErrorf("measure %v of part %v is missing its number attribute, using the position", number, part.ID)
	} else if n, err := strconv.Atoi(mx.Number); err != nil {
		score.AddErrorf("invalid measure number %q in part %v, using position %v", mx.Number, part.ID, number)
	} else {
		number = n
	}

	ctx = applyAttributes(mx.Attributes, ctx, number, part, score)
	ctx.TempoBPM = resolveTempo(mx, ctx.TempoBPM, number, part.ID, score)

	m := model.Measure{
		Number:    number,
		Divisions: ctx.Divisions,
		Time:      ctx.Time,
		KeyFifths: ctx.KeyFifths,
		TempoBPM:  ctx.TempoBPM,
	}
	applyBarlines(mx.Barlines, &m, part.ID, score)
	buildNotes(mx.Notes, ctx, &m, part.ID, score)
	return m, ctx
}

func applyAttributes(blocks []musicxml.Attributes, ctx measureContext, number int, part *model.Part, score *model.Score) measureContext {
	for _, attrs := range blocks {
		if attrs.Divisions != "" {
			if n, err := strconv.Atoi(attrs.Divisions); err != nil || n < 1 {
				score.AddErrorf("invalid divisions %q in measure %v of part %v", attrs.Divisions, number, part.ID)
			} else {
				ctx.Divisions = n
			}
		}
		if attrs.Key != nil && attrs.Key.Fifths != "" {
			if n, err := strconv.Atoi(attrs.Key.Fifths); err != nil {
				score.AddErrorf("invalid key signature %q in measure %v of part %v", attrs.Key.Fifths, number, part.ID)
			} else {
				ctx.KeyFifths = n
			}
		}
		for _, t := range attrs.Times {
			if t.Beats == "" && t.BeatType == "" {
				continue
			}
			beats, errBeats := strconv.Atoi(t.Beats)
			beatType, errType := strconv.Atoi(t.BeatType)
			if errBeats != nil || errType != nil || beats < 1 || beatType < 1 {
				score.AddErrorf("invalid time signature %v/%v in measure %v of part %v", t.Beats, t.BeatType, number, part.ID)
				continue
			}
			ctx.Time = model.TimeSignature{Beats: beats, BeatType: beatType}
		}
		if attrs.Staves != "" {
			if n, err := strconv.Atoi(attrs.Staves); err != nil || n < 1 {
				score.AddErrorf("invalid staves count %q in measure %v of part %v", attrs.Staves, number, part.ID)
			} else if n > part.Staves {
				part.Staves = n
			}
		}
	}
	return ctx
}

// resolveTempo applies every tempo marking found in the measure, in
// document order within each group; the last one wins and stamps the whole
// measure.
func resolveTempo(mx *musicxml.Measure, current float64, number int, partID string, score *model.Score) float64 {
	for _, d := range mx.Directions {
		for _, dt := range d.DirectionTypes {
			if dt.Metronome == nil {
				continue
			}
			if bpm, ok := metronomeBPM(dt.Metronome, number, partID, score); ok {
				current = bpm
			}
		}
		if d.Sound != nil {
			if bpm, ok := soundBPM(d.Sound, number, partID, score); ok {
				current = bpm
			}
		}
	}
	for i := range mx.Sounds {
		if bpm, ok := soundBPM(&mx.Sounds[i], number, partID, score); ok {
			current = bpm
		}
	}
	return current
}

// metronomeBPM converts a metronome marking to quarter-note BPM: a half
// note at 60 beats per minute is 120, a dotted quarter at 60 is 90. A
// missing beat-unit counts as a quarter.
func metronomeBPM(m *musicxml.Metronome, number int, partID string, score *model.Score) (float64, bool) {
	if m.PerMinute == "" {
		return 0, false
	}
	perMinute, err := strconv.ParseFloat(m.PerMinute, 64)
	if err != nil || perMinute <= 0 {
		score.AddErrorf("invalid metronome tempo %q in measure %v of part %v", m.PerMinute, number, partID)
		return 0, false
	}
	unit := 0.25
	if m.BeatUnit != "" {
		known := false
		if unit, known = beatUnitWhole[m.BeatUnit]; !known {
			score.AddErrorf("unknown metronome beat-unit %q in measure %v of part %v", m.BeatUnit, number, partID)
			return 0, false
		}
	}
	for range m.BeatUnitDots {
		unit *= 1.5
	}
	return perMinute * unit / 0.25, true
}

func soundBPM(s *musicxml.Sound, number int, partID string, score *model.Score) (float64, bool) {
	if s.Tempo == "" {
		return 0, false
	}
	bpm, err := strconv.ParseFloat(s.Tempo, 64)
	if err != nil || bpm <= 0 {
		score.AddErrorf("invalid sound tempo %q in measure %v of part %v", s.Tempo, number, partID)
		return 0, false
	}
	return bpm, true
}

var voltaTypeRank = map[model.VoltaType]int{
	model.VoltaNone:        0,
	model.VoltaDiscontinue: 1,
	model.VoltaStart:       2,
	model.VoltaStop:        3,
}

// applyBarlines collects repeat flags and ending observations from every
// barline on the measure. Ending numbers merge into one sorted union and
// the type resolves by priority stop > start > discontinue.
func applyBarlines(bars []musicxml.Barline, m *model.Measure, partID string, score *model.Score) {
	numbers := map[int]bool{}
	for i := range bars {
		if bars[i].Repeat != nil {
			applyRepeat(bars[i].Repeat, m, partID, score)
		}
		if bars[i].Ending != nil {
			applyEnding(bars[i].Ending, m, numbers, partID, score)
		}
	}
	for n := range numbers {
		m.VoltaNumbers = append(m.VoltaNumbers, n)
	}
	sort.Ints(m.VoltaNumbers)

	// A volta is meaningful only with both its numbers and a type.
	if len(m.VoltaNumbers) == 0 && m.VoltaType != model.VoltaNone {
		score.AddWarningf("ending %v without numbers in measure %v of part %v, ignoring it", m.VoltaType, m.Number, partID)
		m.VoltaType = model.VoltaNone
	}
	if len(m.VoltaNumbers) > 0 && m.VoltaType == model.VoltaNone {
		score.AddWarningf("ending numbers %v without a type in measure %v of part %v, ignoring them", m.VoltaNumbers, m.Number, partID)
		m.VoltaNumbers = nil
	}
}

func applyRepeat(r *musicxml.Repeat, m *model.Measure, partID string, score *model.Score) {
	switch r.Direction {
	case "forward":
		m.RepeatStart = true
	case "backward":
		m.RepeatEnd = true
		m.RepeatCount = 2
		if r.Times != "" {
			if n, err := strconv.Atoi(r.Times); err != nil {
				score.AddErrorf("invalid repeat count %q in measure %v of part %v", r.Times, m.Number, partID)
			} else {
				m.RepeatCount = n
			}
		}
	}
}

func applyEnding(e *musicxml.Ending, m *model.Measure, numbers map[int]bool, partID string, score *model.Score) {
	parsed, ok := parseEndingNumbers(e.Number)
	if !ok {
		score.AddErrorf("invalid ending number %q in measure %v of part %v", e.Number, m.Number, partID)
		return
	}
	for _, n := range parsed {
		numbers[n] = true
	}

	var t model.VoltaType
	switch e.Type {
	case "start":
		t = model.VoltaStart
	case "stop":
		t = model.VoltaStop
	case "discontinue":
		t = model.VoltaDiscontinue
	case "":
		return
	default:
		score.AddErrorf("invalid ending type %q in measure %v of part %v", e.Type, m.Number, partID)
		return
	}
	if voltaTypeRank[t] > voltaTypeRank[m.VoltaType] {
		m.VoltaType = t
	}
}

func parseEndingNumbers(list string) ([]int, bool) {
	if strings.TrimSpace(list) == "" {
		return nil, true
	}
	var out []int
	for _, field := range strings.Split(list, ",") {
		n, err := strconv.Atoi(strings.TrimSpace(field))
		if err != nil || n < 1 {
			return nil, false
		}
		out = append(out, n)
	}
	return out, true
}

// buildNotes walks the measure's notes in document order keeping one time
// cursor per voice. A chord note reuses the start of the preceding
// non-chord note in its voice and never advances the cursor.
func buildNotes(notes []musicxml.Note, ctx measureContext, m *model.Measure, partID string, score *model.Score) {
	cursors := map[int]model.Rational{}
	lastStart := map[int]model.Rational{}
	for i := range notes {
		nx := &notes[i]
		voice := noteIntField(nx.Voice, "voice", m.Number, partID, score)
		staff := noteIntField(nx.Staff, "staff", m.Number, partID, score)
		duration := noteDuration(nx, ctx.Divisions, m.Number, partID, score)

		note := model.Note{
			IsChord:  nx.Chord != nil,
			Tie:      tieState(nx.Ties),
			Voice:    voice,
			Staff:    staff,
			Duration: duration,
		}
		if note.IsChord {
			note.StartTime = lastStart[voice]
		} else {
			note.StartTime = cursors[voice]
			cursors[voice] = note.StartTime.Add(duration)
			lastStart[voice] = note.StartTime
		}

		if nx.Rest != nil {
			note.IsRest = true
		} else {
			note.Pitch = pitchLabel(nx.Pitch, m.Number, partID, score)
			if note.Pitch == "" {
				note.IsRest = true
			}
		}
		m.Notes = append(m.Notes, note)
	}
}

func noteIntField(raw, name string, number int, partID string, score *model.Score) int {
	if raw == "" {
		return 1
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		score.AddErrorf("invalid %v %q in measure %v of part %v", name, raw, number, partID)
		return 1
	}
	return n
}

// noteDuration converts duration ticks to quarter notes. Grace notes carry
// no duration element and come out as zero without a diagnostic.
func noteDuration(nx *musicxml.Note, divisions, number int, partID string, score *model.Score) model.Rational {
	if nx.Duration == "" {
		if nx.Grace == nil {
			score.AddErrorf("note without duration in measure %v of part %v", number, partID)
		}
		return model.Rational{}
	}
	ticks, err := strconv.Atoi(nx.Duration)
	if err != nil || ticks < 0 {
		score.AddErrorf("invalid duration %q in measure %v of part %v", nx.Duration, number, partID)
		return model.Rational{}
	}
	return model.NewRational(int64(ticks), int64(divisions))
}

func tieState(ties []musicxml.Tie) model.Tie {
	var start, stop bool
	for _, t := range ties {
		switch t.Type {
		case "start":
			start = true
		case "stop":
			stop = true
		}
	}
	switch {
	case start && stop:
		return model.TieContinue
	case start:
		return model.TieStart
	case stop:
		return model.TieStop
	}
	return model.TieNone
}

func pitchLabel(p *musicxml.Pitch, number int, partID string, score *model.Score) string {
	if p == nil || p.Step == "" || p.Octave == "" {
		score.AddErrorf("note without pitch or rest in measure %v of part %v, treating it as a rest", number, partID)
		return ""
	}
	glyph := ""
	if p.Alter != "" {
		alter, err := strconv.Atoi(p.Alter)
		if g, known := accidentalGlyphs[alter]; err == nil && known {
			glyph = g
		} else {
			score.AddErrorf("invalid pitch alter %q in measure %v of part %v", p.Alter, number, partID)
		}
	}
	return p.Step + glyph + p.Octave
}

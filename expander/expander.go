// Package expander unrolls repeats and voltas into linear playback order.
// The input score is never mutated; the result is an independent graph
// whose measures carry iteration and section provenance.
package expander

import (
	"fmt"

	"github.com/PabloCSScobar/musicxml-parser/constants"
	"github.com/PabloCSScobar/musicxml-parser/model"
	"golang.org/x/exp/slices"
)

// Expand flattens every part of score into playback order. limit bounds
// the emitted measure count per part; limit <= 0 selects
// constants.DefaultExpandLimit. A part hitting the bound keeps its partial
// output and the first model.ResourceLimitError comes back alongside the
// (still usable) result.
func Expand(score *model.Score, limit int) (*model.Score, error) {
	if limit <= 0 {
		limit = constants.DefaultExpandLimit
	}
	out := &model.Score{
		Title:     score.Title,
		Composer:  score.Composer,
		Divisions: score.Divisions,
		Time:      score.Time,
		KeyFifths: score.KeyFifths,
		TempoBPM:  score.TempoBPM,
		Errors:    append([]string(nil), score.Errors...),
		Warnings:  append([]string(nil), score.Warnings...),
	}

	var firstErr error
	for i := range score.Parts {
		e := partExpansion{src: &score.Parts[i], out: out, limit: limit}
		out.Parts = append(out.Parts, e.run())
		if e.limitErr != nil && firstErr == nil {
			firstErr = e.limitErr
		}
	}
	return out, firstErr
}

type partExpansion struct {
	src      *model.Part
	out      *model.Score
	limit    int
	res      model.Part
	limitErr error
}

func (e *partExpansion) run() model.Part {
	e.res = model.Part{
		ID:          e.src.ID,
		Name:        e.src.Name,
		Instrument:  e.src.Instrument,
		MIDIChannel: e.src.MIDIChannel,
		MIDIProgram: e.src.MIDIProgram,
		Staves:      e.src.Staves,
	}
	measures := e.src.Measures

	var starts []int
	boundary := 0
	i := 0
	for i < len(measures) {
		if measures[i].RepeatStart {
			starts = append(starts, i)
		}
		if !measures[i].RepeatEnd {
			i++
			continue
		}

		start := boundary
		if len(starts) > 0 {
			start = starts[len(starts)-1]
			starts = starts[:len(starts)-1]
		} else {
			e.out.AddWarningf("repeat end at measure %v of part %v has no matching start, repeating from measure %v",
				measures[i].Number, e.src.ID, measures[start].Number)
		}

		for j := boundary; j < start; j++ {
			if !e.emitPlain(measures[j]) {
				return e.res
			}
		}

		count := measures[i].RepeatCount
		if count <= 0 {
			e.out.AddWarningf("repeat count %v at measure %v of part %v clamped to 1",
				count, measures[i].Number, e.src.ID)
			count = 1
		}
		end := absorbVoltas(measures, i)
		if !e.emitSection(measures, start, end, count) {
			return e.res
		}

		// Sections never overlap; starts opened inside one are dead once
		// it closes.
		for _, s := range starts {
			e.out.AddWarningf("repeat start at measure %v of part %v has no matching end",
				measures[s].Number, e.src.ID)
		}
		starts = starts[:0]
		boundary = end + 1
		i = end + 1
	}

	for j := boundary; j < len(measures); j++ {
		if !e.emitPlain(measures[j]) {
			return e.res
		}
	}
	for _, s := range starts {
		e.out.AddWarningf("repeat start at measure %v of part %v has no matching end",
			measures[s].Number, e.src.ID)
	}
	return e.res
}

// absorbVoltas extends a section past its backward barline to swallow the
// volta measures written directly after it, so a second ending placed
// behind the repeat still belongs to the section it ends.
func absorbVoltas(measures []model.Measure, end int) int {
	for end+1 < len(measures) {
		next := &measures[end+1]
		if len(next.VoltaNumbers) == 0 || next.RepeatStart || next.RepeatEnd {
			break
		}
		end++
	}
	return end
}

// emitSection plays the inclusive range [start, end] count times. In
// iteration k a measure is included unless it names volta numbers that do
// not contain k; skipping a Discontinue measure cuts iteration k short and
// ends the whole section.
func (e *partExpansion) emitSection(measures []model.Measure, start, end, count int) bool {
	sectionID := fmt.Sprintf("%v:%v-%v", e.src.ID, start, end)
	e.warnOpenVolta(measures, start, end)

	for k := 1; k <= count; k++ {
		cut := false
		for j := start; j <= end; j++ {
			m := &measures[j]
			if len(m.VoltaNumbers) > 0 && !slices.Contains(m.VoltaNumbers, k) {
				if m.VoltaType == model.VoltaDiscontinue {
					cut = true
					break
				}
				continue
			}

			clone := cloneMeasure(*m)
			clone.Iteration = k - 1
			clone.TotalIterations = count
			clone.RepeatSectionID = sectionID
			clone.EndingLabel = "main"
			if len(m.VoltaNumbers) > 0 {
				clone.EndingLabel = fmt.Sprintf("volta_%v", k)
			}
			clone.FromRepeat = true
			clone.RepeatStart = false
			clone.RepeatEnd = false
			clone.RepeatCount = 0
			if !e.appendMeasure(clone) {
				return false
			}
		}
		if cut {
			break
		}
	}
	return true
}

// emitPlain passes a measure through once. Stamps already present survive,
// which keeps expanding an expanded score a no-op.
func (e *partExpansion) emitPlain(m model.Measure) bool {
	clone := cloneMeasure(m)
	if clone.TotalIterations < 1 {
		clone.TotalIterations = 1
	}
	if clone.EndingLabel == "" {
		clone.EndingLabel = "main"
	}
	return e.appendMeasure(clone)
}

func (e *partExpansion) appendMeasure(clone model.Measure) bool {
	if e.limitErr != nil {
		return false
	}
	if len(e.res.Measures) >= e.limit {
		limitErr := &model.ResourceLimitError{PartID: e.src.ID, Limit: e.limit, Count: e.limit}
		e.limitErr = limitErr
		e.out.AddErrorf("%v", limitErr)
		return false
	}
	e.res.Measures = append(e.res.Measures, clone)
	return true
}

func (e *partExpansion) warnOpenVolta(measures []model.Measure, start, end int) {
	open := -1
	for j := start; j <= end; j++ {
		switch measures[j].VoltaType {
		case model.VoltaStart:
			open = j
		case model.VoltaStop, model.VoltaDiscontinue:
			open = -1
		}
	}
	if open >= 0 {
		e.out.AddWarningf("ending at measure %v of part %v never closes",
			measures[open].Number, e.src.ID)
	}
}

func cloneMeasure(m model.Measure) model.Measure {
	m.Notes = append([]model.Note(nil), m.Notes...)
	m.VoltaNumbers = append([]int(nil), m.VoltaNumbers...)
	return m
}

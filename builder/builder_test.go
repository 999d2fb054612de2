package builder

import (
	"strings"
	"testing"

	"github.com/PabloCSScobar/musicxml-parser/model"
	"github.com/PabloCSScobar/musicxml-parser/musicxml"
	"github.com/PabloCSScobar/musicxml-parser/scanner"
	"github.com/stretchr/testify/assert"
)

func build(t *testing.T, body string) *model.Score {
	t.Helper()
	doc, err := musicxml.Decode(strings.NewReader(body))
	assert.Nil(t, err)
	info, err := scanner.Scan(doc)
	assert.Nil(t, err)
	return Build(doc, info)
}

func wrap(measures string) string {
	return `<score-partwise>
  <part-list><score-part id="P1"><part-name>Piano</part-name></score-part></part-list>
  <part id="P1">` + measures + `</part>
</score-partwise>`
}

func TestBuildInheritsDefaults(t *testing.T) {
	assert := assert.New(t)
	score := build(t, wrap(`<measure number="1">
    <note><pitch><step>C</step><octave>4</octave></pitch><duration>4</duration><voice>1</voice></note>
  </measure>`))

	assert.Empty(score.Errors)
	m := score.Parts[0].Measures[0]
	assert.Equal(4, m.Divisions)
	assert.Equal(model.TimeSignature{Beats: 4, BeatType: 4}, m.Time)
	assert.Equal(0, m.KeyFifths)
	assert.Equal(120.0, m.TempoBPM)

	note := m.Notes[0]
	assert.Equal("C4", note.Pitch)
	assert.Equal(model.RationalFromInt(1), note.Duration)
	assert.Equal(1, note.Voice)
	assert.Equal(1, note.Staff)
}

func TestBuildContextCarriesAcrossMeasures(t *testing.T) {
	assert := assert.New(t)
	score := build(t, wrap(`<measure number="1">
    <attributes>
      <divisions>8</divisions>
      <key><fifths>2</fifths></key>
      <time><beats>3</beats><beat-type>4</beat-type></time>
    </attributes>
  </measure>
  <measure number="2">
    <note><pitch><step>D</step><octave>5</octave></pitch><duration>8</duration><voice>1</voice></note>
  </measure>`))

	second := score.Parts[0].Measures[1]
	assert.Equal(8, second.Divisions)
	assert.Equal(2, second.KeyFifths)
	assert.Equal(model.TimeSignature{Beats: 3, BeatType: 4}, second.Time)
	assert.Equal(model.RationalFromInt(1), second.Notes[0].Duration)
}

func TestBuildContextDoesNotLeakAcrossParts(t *testing.T) {
	assert := assert.New(t)
	score := build(t, `<score-partwise>
  <part-list>
    <score-part id="P1"/><score-part id="P2"/>
  </part-list>
  <part id="P1">
    <measure number="1"><attributes><divisions>16</divisions></attributes></measure>
  </part>
  <part id="P2">
    <measure number="1"><note><rest/><duration>4</duration><voice>1</voice></note></measure>
  </part>
</score-partwise>`)

	assert.Equal(16, score.Parts[0].Measures[0].Divisions)
	assert.Equal(4, score.Parts[1].Measures[0].Divisions)
	assert.Equal(model.RationalFromInt(1), score.Parts[1].Measures[0].Notes[0].Duration)
}

func TestBuildPitchGlyphs(t *testing.T) {
	assert := assert.New(t)
	score := build(t, wrap(`<measure number="1">
    <note><pitch><step>F</step><alter>1</alter><octave>5</octave></pitch><duration>1</duration><voice>1</voice></note>
    <note><pitch><step>B</step><alter>-1</alter><octave>3</octave></pitch><duration>1</duration><voice>1</voice></note>
    <note><pitch><step>C</step><alter>2</alter><octave>4</octave></pitch><duration>1</duration><voice>1</voice></note>
    <note><pitch><step>E</step><alter>-2</alter><octave>2</octave></pitch><duration>1</duration><voice>1</voice></note>
  </measure>`))

	notes := score.Parts[0].Measures[0].Notes
	assert.Equal("F#5", notes[0].Pitch)
	assert.Equal("Bb3", notes[1].Pitch)
	assert.Equal("C##4", notes[2].Pitch)
	assert.Equal("Ebb2", notes[3].Pitch)
	assert.Empty(score.Errors)
}

func TestBuildInvalidAlterKeepsNoteUnaltered(t *testing.T) {
	assert := assert.New(t)
	score := build(t, wrap(`<measure number="1">
    <note><pitch><step>G</step><alter>3</alter><octave>4</octave></pitch><duration>1</duration><voice>1</voice></note>
  </measure>`))

	assert.Equal("G4", score.Parts[0].Measures[0].Notes[0].Pitch)
	assert.Len(score.Errors, 1)
	assert.Contains(score.Errors[0], "alter")
}

func TestBuildPerVoiceCursors(t *testing.T) {
	assert := assert.New(t)
	score := build(t, wrap(`<measure number="1">
    <note><pitch><step>C</step><octave>5</octave></pitch><duration>4</duration><voice>1</voice></note>
    <note><pitch><step>C</step><octave>3</octave></pitch><duration>2</duration><voice>2</voice></note>
    <note><pitch><step>D</step><octave>5</octave></pitch><duration>4</duration><voice>1</voice></note>
    <note><pitch><step>D</step><octave>3</octave></pitch><duration>2</duration><voice>2</voice></note>
  </measure>`))

	notes := score.Parts[0].Measures[0].Notes
	assert.True(notes[0].StartTime.IsZero())
	assert.True(notes[1].StartTime.IsZero())
	assert.Equal(model.RationalFromInt(1), notes[2].StartTime)
	assert.Equal(model.NewRational(1, 2), notes[3].StartTime)
}

func TestBuildChordSharesStartOfPrecedingNote(t *testing.T) {
	assert := assert.New(t)
	score := build(t, wrap(`<measure number="1">
    <note><pitch><step>C</step><octave>4</octave></pitch><duration>2</duration><voice>1</voice></note>
    <note><pitch><step>E</step><octave>4</octave></pitch><duration>2</duration><voice>1</voice></note>
    <note><chord/><pitch><step>G</step><octave>4</octave></pitch><duration>2</duration><voice>1</voice></note>
    <note><pitch><step>B</step><octave>4</octave></pitch><duration>2</duration><voice>1</voice></note>
  </measure>`))

	notes := score.Parts[0].Measures[0].Notes
	assert.Equal(model.NewRational(1, 2), notes[1].StartTime)
	assert.True(notes[2].IsChord)
	assert.Equal(notes[1].StartTime, notes[2].StartTime)
	// The chord note does not advance the cursor.
	assert.Equal(model.RationalFromInt(1), notes[3].StartTime)
}

func TestBuildTieResolution(t *testing.T) {
	assert := assert.New(t)
	score := build(t, wrap(`<measure number="1">
    <note><pitch><step>A</step><octave>4</octave></pitch><duration>2</duration><voice>1</voice><tie type="start"/></note>
    <note><pitch><step>A</step><octave>4</octave></pitch><duration>2</duration><voice>1</voice><tie type="stop"/><tie type="start"/></note>
    <note><pitch><step>A</step><octave>4</octave></pitch><duration>2</duration><voice>1</voice><tie type="stop"/></note>
    <note><pitch><step>B</step><octave>4</octave></pitch><duration>2</duration><voice>1</voice></note>
  </measure>`))

	notes := score.Parts[0].Measures[0].Notes
	assert.Equal(model.TieStart, notes[0].Tie)
	assert.Equal(model.TieContinue, notes[1].Tie)
	assert.Equal(model.TieStop, notes[2].Tie)
	assert.Equal(model.TieNone, notes[3].Tie)
}

func TestBuildMetronomeHonorsBeatUnit(t *testing.T) {
	assert := assert.New(t)
	score := build(t, wrap(`<measure number="1">
    <direction><direction-type>
      <metronome><beat-unit>half</beat-unit><per-minute>60</per-minute></metronome>
    </direction-type></direction>
  </measure>
  <measure number="2">
    <direction><direction-type>
      <metronome><beat-unit>quarter</beat-unit><beat-unit-dot/><per-minute>60</per-minute></metronome>
    </direction-type></direction>
  </measure>
  <measure number="3">
    <direction><direction-type>
      <metronome><beat-unit>eighth</beat-unit><per-minute>120</per-minute></metronome>
    </direction-type></direction>
  </measure>`))

	measures := score.Parts[0].Measures
	assert.Equal(120.0, measures[0].TempoBPM)
	assert.Equal(90.0, measures[1].TempoBPM)
	assert.Equal(60.0, measures[2].TempoBPM)
	assert.Empty(score.Errors)
}

func TestBuildUnknownBeatUnitIgnoresMetronome(t *testing.T) {
	assert := assert.New(t)
	score := build(t, wrap(`<measure number="1">
    <direction><direction-type>
      <metronome><beat-unit>breve</beat-unit><per-minute>60</per-minute></metronome>
    </direction-type></direction>
  </measure>`))

	assert.Equal(120.0, score.Parts[0].Measures[0].TempoBPM)
	assert.Len(score.Errors, 1)
	assert.Contains(score.Errors[0], "beat-unit")
}

func TestBuildSoundTempo(t *testing.T) {
	assert := assert.New(t)
	score := build(t, wrap(`<measure number="1">
    <direction>
      <direction-type><metronome><beat-unit>quarter</beat-unit><per-minute>100</per-minute></metronome></direction-type>
      <sound tempo="96"/>
    </direction>
  </measure>
  <measure number="2">
    <sound tempo="72"/>
  </measure>
  <measure number="3"/>`))

	measures := score.Parts[0].Measures
	assert.Equal(96.0, measures[0].TempoBPM)
	assert.Equal(72.0, measures[1].TempoBPM)
	assert.Equal(72.0, measures[2].TempoBPM)
}

func TestBuildInvalidTempoKeepsPrevious(t *testing.T) {
	assert := assert.New(t)
	score := build(t, wrap(`<measure number="1">
    <sound tempo="fast"/>
    <direction><direction-type>
      <metronome><beat-unit>quarter</beat-unit><per-minute>allegro</per-minute></metronome>
    </direction-type></direction>
  </measure>`))

	assert.Equal(120.0, score.Parts[0].Measures[0].TempoBPM)
	assert.Len(score.Errors, 2)
}

func TestBuildRepeatBarlines(t *testing.T) {
	assert := assert.New(t)
	score := build(t, wrap(`<measure number="1">
    <barline location="left"><repeat direction="forward"/></barline>
  </measure>
  <measure number="2">
    <barline location="right"><repeat direction="backward"/></barline>
  </measure>
  <measure number="3">
    <barline location="right"><repeat direction="backward" times="4"/></barline>
  </measure>
  <measure number="4">
    <barline location="right"><repeat direction="backward" times="often"/></barline>
  </measure>`))

	measures := score.Parts[0].Measures
	assert.True(measures[0].RepeatStart)
	assert.False(measures[0].RepeatEnd)
	assert.True(measures[1].RepeatEnd)
	assert.Equal(2, measures[1].RepeatCount)
	assert.Equal(4, measures[2].RepeatCount)
	assert.Equal(2, measures[3].RepeatCount)
	assert.Len(score.Errors, 1)
	assert.Contains(score.Errors[0], "repeat count")
}

func TestBuildEndingUnionAndPriority(t *testing.T) {
	assert := assert.New(t)
	score := build(t, wrap(`<measure number="1">
    <barline location="left"><ending number="1,2" type="start"/></barline>
    <barline location="right"><ending number="3" type="stop"/></barline>
  </measure>`))

	m := score.Parts[0].Measures[0]
	assert.Equal([]int{1, 2, 3}, m.VoltaNumbers)
	assert.Equal(model.VoltaStop, m.VoltaType)
}

func TestBuildEndingStopBeatsDiscontinue(t *testing.T) {
	assert := assert.New(t)
	score := build(t, wrap(`<measure number="1">
    <barline location="left"><ending number="2" type="discontinue"/></barline>
    <barline location="right"><ending number="2" type="stop"/></barline>
  </measure>
  <measure number="2">
    <barline location="left"><ending number="1" type="start"/></barline>
    <barline location="right"><ending number="1" type="discontinue"/></barline>
  </measure>`))

	assert.Equal(model.VoltaStop, score.Parts[0].Measures[0].VoltaType)
	assert.Equal(model.VoltaStart, score.Parts[0].Measures[1].VoltaType)
}

func TestBuildMalformedEndingNumbersSkipObservation(t *testing.T) {
	assert := assert.New(t)
	score := build(t, wrap(`<measure number="1">
    <barline location="left"><ending number="1,x" type="start"/></barline>
    <barline location="right"><ending number="2" type="stop"/></barline>
  </measure>`))

	m := score.Parts[0].Measures[0]
	assert.Equal([]int{2}, m.VoltaNumbers)
	assert.Equal(model.VoltaStop, m.VoltaType)
	assert.Len(score.Errors, 1)
	assert.Contains(score.Errors[0], "ending number")
}

func TestBuildVoltaInvariantEnforced(t *testing.T) {
	assert := assert.New(t)
	score := build(t, wrap(`<measure number="1">
    <barline location="right"><ending type="stop"/></barline>
  </measure>
  <measure number="2">
    <barline location="left"><ending number="1"/></barline>
  </measure>`))

	first := score.Parts[0].Measures[0]
	assert.Equal(model.VoltaNone, first.VoltaType)
	assert.Empty(first.VoltaNumbers)
	second := score.Parts[0].Measures[1]
	assert.Equal(model.VoltaNone, second.VoltaType)
	assert.Empty(second.VoltaNumbers)
	assert.Len(score.Warnings, 2)
}

func TestBuildMissingDurationKeepsNote(t *testing.T) {
	assert := assert.New(t)
	score := build(t, wrap(`<measure number="1">
    <note><pitch><step>C</step><octave>4</octave></pitch><voice>1</voice></note>
    <note><pitch><step>D</step><octave>4</octave></pitch><duration>nope</duration><voice>1</voice></note>
    <note><pitch><step>E</step><octave>4</octave></pitch><duration>2</duration><voice>1</voice></note>
  </measure>`))

	notes := score.Parts[0].Measures[0].Notes
	assert.Len(notes, 3)
	assert.True(notes[0].Duration.IsZero())
	assert.True(notes[1].Duration.IsZero())
	// Zero-length notes do not advance the voice cursor.
	assert.True(notes[2].StartTime.IsZero())
	assert.Len(score.Errors, 2)
}

func TestBuildGraceNoteIsSilentlyZeroLength(t *testing.T) {
	assert := assert.New(t)
	score := build(t, wrap(`<measure number="1">
    <note><grace/><pitch><step>D</step><octave>5</octave></pitch><voice>1</voice></note>
    <note><pitch><step>C</step><octave>5</octave></pitch><duration>4</duration><voice>1</voice></note>
  </measure>`))

	notes := score.Parts[0].Measures[0].Notes
	assert.True(notes[0].Duration.IsZero())
	assert.Empty(score.Errors)
}

func TestBuildPitchlessNoteBecomesRest(t *testing.T) {
	assert := assert.New(t)
	score := build(t, wrap(`<measure number="1">
    <note><duration>4</duration><voice>1</voice></note>
  </measure>`))

	note := score.Parts[0].Measures[0].Notes[0]
	assert.True(note.IsRest)
	assert.Equal("", note.Pitch)
	assert.Len(score.Errors, 1)
}

func TestBuildRestHasNoPitch(t *testing.T) {
	assert := assert.New(t)
	score := build(t, wrap(`<measure number="1">
    <note><rest/><duration>4</duration><voice>1</voice></note>
  </measure>`))

	note := score.Parts[0].Measures[0].Notes[0]
	assert.True(note.IsRest)
	assert.Equal("", note.Pitch)
	assert.Empty(score.Errors)
}

func TestBuildBodyWithoutPartListEntry(t *testing.T) {
	assert := assert.New(t)
	score := build(t, `<score-partwise>
  <part-list><score-part id="P1"/></part-list>
  <part id="P1"><measure number="1"/></part>
  <part id="P9"><measure number="1"/></part>
</score-partwise>`)

	assert.Len(score.Parts, 1)
	assert.Len(score.Errors, 1)
	assert.Contains(score.Errors[0], "P9")
}

func TestBuildListedPartWithoutBody(t *testing.T) {
	assert := assert.New(t)
	score := build(t, `<score-partwise>
  <part-list><score-part id="P1"/><score-part id="P2"/></part-list>
  <part id="P1"><measure number="1"/></part>
</score-partwise>`)

	assert.Len(score.Parts, 2)
	assert.Empty(score.Parts[1].Measures)
}

func TestBuildMeasureNumberFallsBackToPosition(t *testing.T) {
	assert := assert.New(t)
	score := build(t, wrap(`<measure number="1"/><measure number="X2"/><measure/>`))

	measures := score.Parts[0].Measures
	assert.Equal(1, measures[0].Number)
	assert.Equal(2, measures[1].Number)
	assert.Equal(3, measures[2].Number)
	assert.Len(score.Errors, 2)
}

func TestBuildStavesTracksMaxSeen(t *testing.T) {
	assert := assert.New(t)
	score := build(t, wrap(`<measure number="1"><attributes><staves>2</staves></attributes></measure>
  <measure number="2"><attributes><staves>1</staves></attributes></measure>`))

	assert.Equal(2, score.Parts[0].Staves)
}

func TestBuildScoreDefaultsComeFromFirstMeasure(t *testing.T) {
	assert := assert.New(t)
	score := build(t, wrap(`<measure number="1">
    <attributes>
      <divisions>2</divisions>
      <key><fifths>-1</fifths></key>
      <time><beats>6</beats><beat-type>8</beat-type></time>
    </attributes>
    <sound tempo="88"/>
  </measure>`))

	assert.Equal(2, score.Divisions)
	assert.Equal(-1, score.KeyFifths)
	assert.Equal(model.TimeSignature{Beats: 6, BeatType: 8}, score.Time)
	assert.Equal(88.0, score.TempoBPM)
}

func TestBuildInvalidAttributesKeepPriorContext(t *testing.T) {
	assert := assert.New(t)
	score := build(t, wrap(`<measure number="1">
    <attributes><divisions>8</divisions></attributes>
  </measure>
  <measure number="2">
    <attributes>
      <divisions>zero</divisions>
      <key><fifths>sharp</fifths></key>
      <time><beats>3</beats><beat-type>waltz</beat-type></time>
    </attributes>
  </measure>`))

	second := score.Parts[0].Measures[1]
	assert.Equal(8, second.Divisions)
	assert.Equal(0, second.KeyFifths)
	assert.Equal(model.TimeSignature{Beats: 4, BeatType: 4}, second.Time)
	assert.Len(score.Errors, 3)
}

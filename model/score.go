package model

import "fmt"

type Tie = string

const (
	TieNone     Tie = ""
	TieStart    Tie = "start"
	TieStop     Tie = "stop"
	TieContinue Tie = "continue"
)

type VoltaType int

const (
	VoltaNone VoltaType = iota
	VoltaStart
	VoltaStop
	VoltaDiscontinue
)

func (v VoltaType) String() string {
	switch v {
	case VoltaStart:
		return "start"
	case VoltaStop:
		return "stop"
	case VoltaDiscontinue:
		return "discontinue"
	}
	return "none"
}

type TimeSignature struct {
	Beats    int
	BeatType int
}

// QuarterLength is the measure's nominal length in quarter notes:
// beats * 4 / beatType, so 4/4 and 2/2 are both 4, 6/8 is 3.
func (t TimeSignature) QuarterLength() Rational {
	if t.Beats <= 0 || t.BeatType <= 0 {
		return NewRational(4, 1)
	}
	return NewRational(int64(t.Beats)*4, int64(t.BeatType))
}

// Note is a single note or rest. StartTime is relative to the start of the
// note's own measure, so cloned measures need no per-note fixups.
type Note struct {
	Pitch     string // "C4", "F#5", "Bb3"; empty means rest
	IsRest    bool
	IsChord   bool
	Tie       Tie
	Voice     int
	Staff     int
	Duration  Rational
	StartTime Rational
}

// Measure carries its resolved context (divisions, time, key, tempo), its
// repeat structure, and, on expanded clones, the iteration metadata.
type Measure struct {
	Number    int
	Divisions int
	Time      TimeSignature
	KeyFifths int
	TempoBPM  float64
	Notes     []Note

	RepeatStart  bool
	RepeatEnd    bool
	RepeatCount  int // meaningful with RepeatEnd; 2 when the barline omits times
	VoltaNumbers []int
	VoltaType    VoltaType

	Iteration       int    // 0-based pass through the owning repeat section
	TotalIterations int    // the section's repeat count; 1 for plain measures
	RepeatSectionID string // "<part>:<start>-<end>" over original indices
	EndingLabel     string // "main" or "volta_<k>"
	FromRepeat      bool
}

type Part struct {
	ID          string
	Name        string
	Instrument  string
	MIDIChannel int
	MIDIProgram int
	Staves      int
	Measures    []Measure
}

// Score is the output of the content pass. Recoverable parse problems land
// in Errors, repeat-structure oddities in Warnings; neither stops the
// pipeline.
type Score struct {
	Title     string
	Composer  string
	Divisions int
	Time      TimeSignature
	KeyFifths int
	TempoBPM  float64
	Parts     []Part
	Errors    []string
	Warnings  []string
}

func (s *Score) AddErrorf(format string, a ...any) {
	s.Errors = append(s.Errors, fmt.Sprintf(format, a...))
}

func (s *Score) AddWarningf(format string, a ...any) {
	s.Warnings = append(s.Warnings, fmt.Sprintf(format, a...))
}

// StructureInfo is the structure pass result: header metadata plus the
// ordered part list, no note-level data.
type StructureInfo struct {
	Title    string
	Composer string
	Parts    []PartInfo
}

type PartInfo struct {
	ID          string
	Name        string
	Instrument  string
	MIDIChannel int
	MIDIProgram int
}

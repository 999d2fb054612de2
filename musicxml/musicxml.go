// Package musicxml mirrors the subset of the MusicXML partwise schema we
// read. Numeric leaves stay strings here so one malformed value degrades
// that field instead of failing the whole document decode.
package musicxml

import (
	"encoding/xml"
	"io"

	"github.com/pkg/errors"
	"golang.org/x/net/html/charset"
)

type ScorePartwise struct {
	Work           *Work           `xml:"work"`
	MovementTitle  string          `xml:"movement-title"`
	Identification *Identification `xml:"identification"`
	PartList       PartList        `xml:"part-list"`
	Parts          []Part          `xml:"part"`
}

type Work struct {
	Title string `xml:"work-title"`
}

type Identification struct {
	Creators []Creator `xml:"creator"`
}

type Creator struct {
	Type string `xml:"type,attr"`
	Name string `xml:",chardata"`
}

type PartList struct {
	ScoreParts []ScorePart `xml:"score-part"`
}

type ScorePart struct {
	ID string `xml:"id,attr"`
	// Multi-staff parts may list several instruments; the first one wins.
	PartName         string            `xml:"part-name"`
	ScoreInstruments []ScoreInstrument `xml:"score-instrument"`
	MidiInstruments  []MidiInstrument  `xml:"midi-instrument"`
}

type ScoreInstrument struct {
	ID             string `xml:"id,attr"`
	InstrumentName string `xml:"instrument-name"`
}

type MidiInstrument struct {
	ID          string `xml:"id,attr"`
	MidiChannel string `xml:"midi-channel"`
	MidiProgram string `xml:"midi-program"`
}

type Part struct {
	ID       string    `xml:"id,attr"`
	Measures []Measure `xml:"measure"`
}

type Measure struct {
	Number     string       `xml:"number,attr"`
	Attributes []Attributes `xml:"attributes"`
	Directions []Direction  `xml:"direction"`
	// Sounds collects measure-level sound elements; tempo may also arrive
	// inside a direction.
	Sounds   []Sound   `xml:"sound"`
	Notes    []Note    `xml:"note"`
	Barlines []Barline `xml:"barline"`
}

type Attributes struct {
	Divisions string `xml:"divisions"`
	Key       *Key   `xml:"key"`
	Times     []Time `xml:"time"`
	Staves    string `xml:"staves"`
}

type Key struct {
	Fifths string `xml:"fifths"`
}

type Time struct {
	Beats    string `xml:"beats"`
	BeatType string `xml:"beat-type"`
}

type Direction struct {
	DirectionTypes []DirectionType `xml:"direction-type"`
	Sound          *Sound          `xml:"sound"`
}

type DirectionType struct {
	Metronome *Metronome `xml:"metronome"`
}

type Metronome struct {
	BeatUnit     string     `xml:"beat-unit"`
	BeatUnitDots []struct{} `xml:"beat-unit-dot"`
	PerMinute    string     `xml:"per-minute"`
}

type Sound struct {
	Tempo string `xml:"tempo,attr"`
}

type Note struct {
	// Grace, Chord and Rest are presence markers, nil when absent.
	Grace    *struct{} `xml:"grace"`
	Chord    *struct{} `xml:"chord"`
	Rest     *struct{} `xml:"rest"`
	Pitch    *Pitch    `xml:"pitch"`
	Duration string    `xml:"duration"`
	Voice    string    `xml:"voice"`
	Staff    string    `xml:"staff"`
	Ties     []Tie     `xml:"tie"`
}

type Pitch struct {
	Step   string `xml:"step"`
	Alter  string `xml:"alter"`
	Octave string `xml:"octave"`
}

type Tie struct {
	Type string `xml:"type,attr"`
}

type Barline struct {
	Location string  `xml:"location,attr"`
	Repeat   *Repeat `xml:"repeat"`
	Ending   *Ending `xml:"ending"`
}

type Repeat struct {
	Direction string `xml:"direction,attr"`
	Times     string `xml:"times,attr"`
}

type Ending struct {
	Number string `xml:"number,attr"`
	Type   string `xml:"type,attr"`
}

// Decode reads one partwise document. Non UTF-8 encodings declared in the
// XML header (ISO-8859-1 exports are common) are converted transparently.
func Decode(r io.Reader) (*ScorePartwise, error) {
	dec := xml.NewDecoder(r)
	dec.CharsetReader = charset.NewReaderLabel
	var doc ScorePartwise
	if err := dec.Decode(&doc); err != nil {
		return nil, errors.Wrap(err, "could not decode MusicXML document")
	}
	return &doc, nil
}

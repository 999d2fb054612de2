// Package scanner extracts the cheap structural view of a score, the
// part list plus titling metadata, without touching measure content.
package scanner

import (
	"strconv"

	"github.com/PabloCSScobar/musicxml-parser/model"
	"github.com/PabloCSScobar/musicxml-parser/musicxml"
)

// Scan validates the document skeleton and describes every declared part.
// Documents with an empty part-list or no part bodies at all are rejected
// with a model.StructuralError.
func Scan(doc *musicxml.ScorePartwise) (*model.StructureInfo, error) {
	if len(doc.PartList.ScoreParts) == 0 {
		return nil, &model.StructuralError{Reason: "document has no part-list entries"}
	}
	if len(doc.Parts) == 0 {
		return nil, &model.StructuralError{Reason: "document has no part bodies"}
	}

	info := model.StructureInfo{
		Title:    Title(doc),
		Composer: Composer(doc),
	}
	for _, sp := range doc.PartList.ScoreParts {
		info.Parts = append(info.Parts, model.PartInfo{
			ID:          sp.ID,
			Name:        partName(sp),
			Instrument:  instrumentName(sp),
			MIDIChannel: midiValue(sp, func(mi musicxml.MidiInstrument) string { return mi.MidiChannel }),
			MIDIProgram: midiValue(sp, func(mi musicxml.MidiInstrument) string { return mi.MidiProgram }),
		})
	}
	return &info, nil
}

// Title prefers work-title over movement-title.
func Title(doc *musicxml.ScorePartwise) string {
	if doc.Work != nil && doc.Work.Title != "" {
		return doc.Work.Title
	}
	if doc.MovementTitle != "" {
		return doc.MovementTitle
	}
	return "Untitled"
}

func Composer(doc *musicxml.ScorePartwise) string {
	if doc.Identification != nil {
		for _, c := range doc.Identification.Creators {
			if c.Type == "composer" && c.Name != "" {
				return c.Name
			}
		}
	}
	return "Unknown"
}

func partName(sp musicxml.ScorePart) string {
	if sp.PartName != "" {
		return sp.PartName
	}
	return "Part " + sp.ID
}

func instrumentName(sp musicxml.ScorePart) string {
	if len(sp.ScoreInstruments) > 0 && sp.ScoreInstruments[0].InstrumentName != "" {
		return sp.ScoreInstruments[0].InstrumentName
	}
	return "Piano"
}

// midiValue reads one numeric field of the first midi-instrument, falling
// back to 1. Malformed values are not diagnosed here, the builder owns
// content diagnostics.
func midiValue(sp musicxml.ScorePart, field func(musicxml.MidiInstrument) string) int {
	if len(sp.MidiInstruments) == 0 {
		return 1
	}
	v, err := strconv.Atoi(field(sp.MidiInstruments[0]))
	if err != nil || v < 1 {
		return 1
	}
	return v
}

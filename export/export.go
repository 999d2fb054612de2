package export

import (
	"math"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"

	"github.com/PabloCSScobar/musicxml-parser/model"
)

const ticksPerQuarter = 480

const noteVelocity = 100

var stepSemitones = map[byte]int{'C': 0, 'D': 2, 'E': 4, 'F': 5, 'G': 7, 'A': 9, 'B': 11}

var glyphOffsets = map[string]int{"": 0, "#": 1, "##": 2, "b": -1, "bb": -2}

// ToSMF renders playback events as a two-track format 1 file: tempo changes
// on track 0 and channel-0 notes on track 1, at 480 ticks per quarter note.
// Events with a pitch label that has no MIDI key are left out.
func ToSMF(playback []model.PlaybackEvent) *smf.SMF {
	s := smf.NewSMF1()
	s.TimeFormat = smf.MetricTicks(ticksPerQuarter)

	var tempoTrack, noteTrack smf.Track
	var tempoTick, noteTick uint32
	for _, evt := range playback {
		tick := uint32(math.Round(evt.TimeQuarters * ticksPerQuarter))
		switch evt.Kind {
		case model.PlaybackTempoChange:
			if tick < tempoTick {
				tick = tempoTick
			}
			tempoTrack = append(tempoTrack, smf.Event{Delta: tick - tempoTick, Message: smf.MetaTempo(evt.BPM)})
			tempoTick = tick
		case model.PlaybackNoteOn, model.PlaybackNoteOff:
			key, ok := midiKey(evt.Pitch)
			if !ok {
				continue
			}
			// parts can disagree on tempo, so quarter ticks may step
			// backwards between merged events
			if tick < noteTick {
				tick = noteTick
			}
			msg := midi.NoteOff(0, key)
			if evt.Kind == model.PlaybackNoteOn {
				msg = midi.NoteOn(0, key, noteVelocity)
			}
			noteTrack = append(noteTrack, smf.Event{Delta: tick - noteTick, Message: smf.Message(msg)})
			noteTick = tick
		}
	}
	tempoTrack.Close(0)
	noteTrack.Close(0)
	s.Tracks = append(s.Tracks, tempoTrack, noteTrack)
	return s
}

// WriteFile writes s as a standard MIDI file at path.
func WriteFile(s *smf.SMF, path string) error {
	if err := s.WriteFile(path); err != nil {
		return errors.Wrapf(err, "could not write MIDI file %v", path)
	}
	return nil
}

// midiKey maps a pitch label like C4, F#5 or Bb3 onto a MIDI key number,
// with C4 at 60. Labels that do not parse, or land outside 0..127, report
// false.
func midiKey(label string) (uint8, bool) {
	if len(label) < 2 {
		return 0, false
	}
	step, ok := stepSemitones[label[0]]
	if !ok {
		return 0, false
	}
	rest := label[1:]
	glyph := rest[:len(rest)-len(strings.TrimLeft(rest, "#b"))]
	offset, ok := glyphOffsets[glyph]
	if !ok {
		return 0, false
	}
	octave, err := strconv.Atoi(rest[len(glyph):])
	if err != nil {
		return 0, false
	}
	key := (octave+1)*12 + step + offset
	if key < 0 || key > 127 {
		return 0, false
	}
	return uint8(key), true
}

package model

// NoteEvent is the flat downstream contract: one entry per note or rest of
// the expanded score, carrying both playback time (repeats unrolled) and
// display time (shared across occurrences of the same original measure).
type NoteEvent struct {
	Part               string  `json:"part"`
	Pitch              string  `json:"pitch,omitempty"`
	IsRest             bool    `json:"is_rest"`
	IsChord            bool    `json:"is_chord"`
	Tie                Tie     `json:"tie,omitempty"`
	Staff              int     `json:"staff"`
	Voice              int     `json:"voice"`
	Measure            int     `json:"measure"`
	StartTimeMs        float64 `json:"start_time_ms"`
	StartTimeDisplayMs float64 `json:"start_time_display_ms"`
	DurationMs         float64 `json:"duration_ms"`
	Iteration          int     `json:"iteration"`
	IsRepeat           bool    `json:"is_repeat"`
	RepeatID           string  `json:"repeat_id,omitempty"`
	RepeatSection      string  `json:"repeat_section"`
	TotalIterations    int     `json:"total_iterations"`
}

type PlaybackKind = string

const (
	PlaybackNoteOn      PlaybackKind = "note_on"
	PlaybackNoteOff     PlaybackKind = "note_off"
	PlaybackTempoChange PlaybackKind = "tempo_change"
)

// PlaybackEvent is a player-ready event. The set of kinds is closed: note
// on/off pairs for every sounding note plus one tempo_change per tempo map
// breakpoint. At equal times tempo changes sort first and note_off always
// precedes note_on.
type PlaybackEvent struct {
	Kind         PlaybackKind `json:"type"`
	TimeMs       float64      `json:"time_ms"`
	TimeQuarters float64      `json:"time_quarters"`
	Pitch        string       `json:"pitch,omitempty"`
	Staff        int          `json:"staff,omitempty"`
	Voice        int          `json:"voice,omitempty"`
	Measure      int          `json:"measure,omitempty"`
	BPM          float64      `json:"bpm,omitempty"`
}

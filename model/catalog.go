package model

type CatalogEntry struct {
	FileNum          uint32  `json:"file_id"`
	Path             string  `json:"path"`
	Title            string  `json:"title"`
	Composer         string  `json:"composer"`
	Parts            int     `json:"parts"`
	Measures         int     `json:"measures"`
	ExpandedMeasures int     `json:"expanded_measures"`
	Events           int     `json:"events"`
	DurationMs       float64 `json:"duration_ms"`
	HasMetadata      bool    `json:"has_metadata"`
	EventsFile       string  `json:"-"`
}

type Catalog = map[uint32]CatalogEntry
type FileNumToScorePath = map[uint32]string

// AnalyzedScore is the gob payload written per score during indexing. The
// catalog carries the entry; this carries the streams.
type AnalyzedScore struct {
	Events   []NoteEvent
	Playback []PlaybackEvent
	Errors   []string
	Warnings []string
}

type ScoreMetadata struct {
	Filename string
	Title    string
	Composer string
	Source   string
}

package model

import (
	"encoding/json"
	"time"
)

// TimestampLayout is the creation-timestamp format stored in the history
// table. The format is fixed-width and zero-padded, so lexical string
// ordering equals chronological ordering; the store sorts and selects on
// the raw string and must never parse it.
const TimestampLayout = "2006-01-02_15:04:05.000000"

// Clip stores all parameters used to generate a single clip file, plus
// metadata for history search and retention.
type Clip struct {
	ID int64 `json:"id"`

	// Absolute path or URI of the source media the clip was cut from.
	Source string `json:"source"`

	// Output filename, no path, always ends in ".mp4". Unique among
	// live records.
	Output string `json:"output"`

	// Position in the source where the clip begins, and the encoded
	// length, both in seconds.
	StartTime float64 `json:"start_time"`
	Duration  float64 `json:"duration"`

	// Creation timestamp in TimestampLayout format.
	Timestamp string `json:"timestamp"`

	// Show and episode names, used in history search. Empty for movies.
	ShowName    string `json:"show_name"`
	EpisodeName string `json:"episode_name"`

	// Set the first time the user renames the file, never reset.
	// Renamed clips can be exempted from the retention sweep.
	Renamed bool `json:"renamed"`
}

// NewClip creates a Clip with the creation timestamp assigned and the
// renamed flag cleared. The id is assigned by the store on insert.
func NewClip(source, output string, startTime, duration float64, showName, episodeName string) Clip {
	return Clip{
		Source:      source,
		Output:      output,
		StartTime:   startTime,
		Duration:    duration,
		Timestamp:   Now(),
		ShowName:    showName,
		EpisodeName: episodeName,
	}
}

// Now returns the current time formatted as a store timestamp.
func Now() string {
	return time.Now().Format(TimestampLayout)
}

// HistoryEntry is one (timestamp, filename) pair from the history listing.
type HistoryEntry struct {
	Timestamp string
	Output    string
}

// MarshalJSON emits the pair as a two-element array, the shape the web
// front end consumes.
func (e HistoryEntry) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]string{e.Timestamp, e.Output})
}

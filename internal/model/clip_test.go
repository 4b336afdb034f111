package model

import (
	"encoding/json"
	"regexp"
	"testing"
)

func TestNowFormat(t *testing.T) {
	ts := Now()
	// YYYY-MM-DD_HH:MM:SS.ffffff, fixed width and zero padded.
	re := regexp.MustCompile(`^\d{4}-\d{2}-\d{2}_\d{2}:\d{2}:\d{2}\.\d{6}$`)
	if !re.MatchString(ts) {
		t.Errorf("Now() = %q, does not match timestamp layout", ts)
	}
}

func TestNewClip(t *testing.T) {
	c := NewClip("/media/show.mkv", "abc.mp4", 23.5, 100.0, "Show", "Episode")
	if c.Renamed {
		t.Error("new clip should not be marked renamed")
	}
	if c.Timestamp == "" {
		t.Error("new clip should have a timestamp assigned")
	}
	if c.ID != 0 {
		t.Errorf("ID = %d, want 0 before insert", c.ID)
	}
}

func TestHistoryEntryMarshalJSON(t *testing.T) {
	e := HistoryEntry{Timestamp: "2024-01-02_03:04:05.000000", Output: "clip.mp4"}
	b, err := json.Marshal(e)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	want := `["2024-01-02_03:04:05.000000","clip.mp4"]`
	if string(b) != want {
		t.Errorf("marshal = %s, want %s", b, want)
	}
}

// Package player reads live playback state from the host media player.
package player

import (
	"context"
	"fmt"
)

// Item is the currently playing media item.
type Item struct {
	// File is the absolute path or URI of the playing media.
	File string

	// Title is the display title (episode title for TV shows).
	Title string

	// ShowTitle is the TV show name, empty for movies.
	ShowTitle string

	Season  int
	Episode int

	// MediaType is the player's media classification, e.g. "episode"
	// or "movie".
	MediaType string
}

// NowPlaying is the payload shown above the record button.
type NowPlaying struct {
	Title   string `json:"title"`
	Subtext string `json:"subtext"`
}

// NowPlaying derives the front-end payload for this item. Episodes get a
// show/season/episode subtext, everything else none.
func (i Item) NowPlaying() NowPlaying {
	np := NowPlaying{Title: i.Title}
	if i.MediaType == "episode" {
		np.Subtext = fmt.Sprintf("%s - Season %d - Episode %d", i.ShowTitle, i.Season, i.Episode)
	}
	return np
}

// Player abstracts the media-player collaborator. Implementations return
// model.ErrNothingPlaying when no media is active.
type Player interface {
	// Time returns the current playback position in seconds.
	Time(ctx context.Context) (float64, error)

	// Item returns the currently playing media item.
	Item(ctx context.Context) (Item, error)
}

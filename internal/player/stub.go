package player

import "context"

// Stub is a fixed-state Player for development and testing.
type Stub struct {
	// Playtime is returned by Time.
	Playtime float64

	// Playing is returned by Item.
	Playing Item

	// Err, when set, is returned by both calls.
	Err error
}

func (s *Stub) Time(_ context.Context) (float64, error) {
	if s.Err != nil {
		return 0, s.Err
	}
	return s.Playtime, nil
}

func (s *Stub) Item(_ context.Context) (Item, error) {
	if s.Err != nil {
		return Item{}, s.Err
	}
	return s.Playing, nil
}

// Package clips coordinates the player, the encoder, and the history store
// to serve clip requests.
package clips

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"recbutton/internal/encoder"
	"recbutton/internal/model"
	"recbutton/internal/player"
	"recbutton/internal/store"
)

// basenameLength is the length of generated output basenames.
const basenameLength = 16

const basenameAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

// Generator produces a clip file from a generation request.
type Generator interface {
	Generate(ctx context.Context, req encoder.Request) error
}

// Service is the request-level orchestrator. It holds no state across
// requests; every read goes back to the store.
type Service struct {
	store     store.ClipRepository
	player    player.Player
	gen       Generator
	outputDir string
}

// New creates a Service writing clips into outputDir.
func New(s store.ClipRepository, p player.Player, gen Generator, outputDir string) *Service {
	return &Service{store: s, player: p, gen: gen, outputDir: outputDir}
}

// Playtime returns the current playback position from the player.
func (s *Service) Playtime(ctx context.Context) (float64, error) {
	return s.player.Time(ctx)
}

// NowPlaying returns the title/subtext payload for the front end. When
// nothing is playing it falls back to a placeholder instead of erroring.
func (s *Service) NowPlaying(ctx context.Context) player.NowPlaying {
	item, err := s.player.Item(ctx)
	if err != nil {
		return player.NowPlaying{Title: "Nothing", Subtext: ""}
	}
	return item.NowPlaying()
}

// Submit generates a clip from the client-reported start time to the
// playback position at the moment of the call, records it, and returns the
// output filename. Generation and recording are separate steps: if the
// record insert fails the freshly written file is removed again so no
// orphan is left behind.
func (s *Service) Submit(ctx context.Context, startTime string) (string, error) {
	// Read the stop position before anything else to minimise skew from
	// request latency.
	stop, err := s.player.Time(ctx)
	if err != nil {
		return "", err
	}

	start, err := strconv.ParseFloat(strings.TrimSpace(startTime), 64)
	if err != nil {
		return "", fmt.Errorf("parse start time %q: %w", startTime, err)
	}
	duration := stop - start

	item, err := s.player.Item(ctx)
	if err != nil {
		return "", err
	}

	base := randomBasename()
	req := encoder.Request{
		Source:    item.File,
		StartTime: start,
		Duration:  duration,
		Basename:  base,
	}
	if err := s.gen.Generate(ctx, req); err != nil {
		return "", err
	}

	clip := model.NewClip(item.File, base+".mp4", start, duration, item.ShowTitle, item.Title)
	if _, err := s.store.Insert(ctx, clip); err != nil {
		// Compensating delete: the encode succeeded but the record did
		// not, remove the file so disk and store stay in sync.
		if rmErr := os.Remove(filepath.Join(s.outputDir, clip.Output)); rmErr != nil && !os.IsNotExist(rmErr) {
			slog.Error("failed to remove orphan clip file", "output", clip.Output, "error", rmErr)
		}
		return "", err
	}
	return clip.Output, nil
}

// Regenerate rebuilds the file for an existing record from its stored
// parameters. The record itself is left untouched; no new record is
// inserted. Unknown filenames fail with model.ErrNotFound.
func (s *Service) Regenerate(ctx context.Context, filename string) (string, error) {
	clip, err := s.store.FindByFilename(ctx, filename)
	if err != nil {
		return "", err
	}

	// Strip the stored extension so the encoder doesn't append a second one.
	base := strings.TrimSuffix(filename, ".mp4")

	req := encoder.Request{
		Source:    clip.Source,
		StartTime: clip.StartTime,
		Duration:  clip.Duration,
		Basename:  base,
	}
	if err := s.gen.Generate(ctx, req); err != nil {
		return "", err
	}
	return base + ".mp4", nil
}

// Rename changes a clip's output filename on disk and in the store. The
// new name must already be normalized (see NormalizeFilename). Fails with
// model.ErrDuplicate when the target name exists in the store or the
// output directory, and model.ErrNotFound when no record matches old.
func (s *Service) Rename(ctx context.Context, old, new string) error {
	exists, err := s.store.Exists(ctx, new)
	if err != nil {
		return err
	}
	if !exists {
		if _, statErr := os.Stat(filepath.Join(s.outputDir, new)); statErr == nil {
			exists = true
		}
	}
	if exists {
		return model.ErrDuplicate
	}

	// Rename on disk first if the file is present, then in the store.
	oldPath := filepath.Join(s.outputDir, old)
	if _, err := os.Stat(oldPath); err == nil {
		if err := os.Rename(oldPath, filepath.Join(s.outputDir, new)); err != nil {
			return fmt.Errorf("rename file: %w", err)
		}
	}

	return s.store.Rename(ctx, old, new)
}

// Delete removes a clip from the store and the output directory. Both
// halves are idempotent; deleting an unknown filename is a no-op.
func (s *Service) Delete(ctx context.Context, filename string) error {
	if err := s.store.Delete(ctx, filename); err != nil {
		return err
	}
	if err := os.Remove(filepath.Join(s.outputDir, filename)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("delete file: %w", err)
	}
	return nil
}

// History returns all recorded clips, newest first.
func (s *Service) History(ctx context.Context) ([]model.HistoryEntry, error) {
	return s.store.ListRecent(ctx)
}

// SearchHistory returns recorded clips matching the query, newest first.
func (s *Service) SearchHistory(ctx context.Context, query string) ([]model.HistoryEntry, error) {
	return s.store.Search(ctx, query)
}

// NormalizeFilename trims surrounding whitespace and appends ".mp4" when
// the name doesn't already carry the extension.
func NormalizeFilename(name string) string {
	name = strings.TrimSpace(name)
	if !strings.HasSuffix(strings.ToLower(name), ".mp4") {
		name += ".mp4"
	}
	return name
}

// randomBasename returns a random 16-character alphanumeric output name.
func randomBasename() string {
	b := make([]byte, basenameLength)
	for i := range b {
		b[i] = basenameAlphabet[rand.IntN(len(basenameAlphabet))]
	}
	return string(b)
}

// Package encoder cuts MP4 clips out of source media by shelling out to
// ffmpeg, clamping the requested bitrate to the source's own bitrate.
package encoder

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os/exec"
	"path/filepath"
	"strconv"
)

// Request holds the parameters for one encode.
type Request struct {
	// Source is the absolute path or URI of the media to cut from.
	Source string

	// StartTime is the position in the source where the clip begins,
	// Duration the encoded length, both in seconds.
	StartTime float64
	Duration  float64

	// Basename is the output filename without extension; ".mp4" is
	// appended. Any existing file of that name is overwritten.
	Basename string
}

// EncodeError is a failed probe or encode with the captured diagnostic
// output of the external tool. The diagnostics are meant for operator
// logs, not for clients.
type EncodeError struct {
	Stage  string // "probe" or "encode"
	Output string
	Err    error
}

func (e *EncodeError) Error() string {
	return fmt.Sprintf("%s failed: %v", e.Stage, e.Err)
}

func (e *EncodeError) Unwrap() error { return e.Err }

// Encoder generates clips into a fixed output directory.
type Encoder struct {
	ffmpegPath  string
	ffprobePath string
	outputDir   string
	mbPerMin    int
}

// New creates an Encoder. Empty tool paths fall back to looking up
// "ffmpeg" and "ffprobe" on PATH.
func New(ffmpegPath, ffprobePath, outputDir string, mbPerMin int) *Encoder {
	if ffmpegPath == "" {
		ffmpegPath = "ffmpeg"
	}
	if ffprobePath == "" {
		ffprobePath = "ffprobe"
	}
	return &Encoder{
		ffmpegPath:  ffmpegPath,
		ffprobePath: ffprobePath,
		outputDir:   outputDir,
		mbPerMin:    mbPerMin,
	}
}

// Generate probes the source bitrate, then encodes the requested span to
// <outputDir>/<Basename>.mp4 as H.264 with 2-channel AAC audio. The video
// bitrate is the configured quality budget clamped to the source's own
// bitrate. Failures are returned as *EncodeError; nothing is retried.
func (e *Encoder) Generate(ctx context.Context, req Request) error {
	intrinsic, err := e.probeBitrate(ctx, req.Source)
	if err != nil {
		return err
	}
	bitrate := clampBitrate(targetBitrate(e.mbPerMin), intrinsic)

	outPath := filepath.Join(e.outputDir, req.Basename+".mp4")
	slog.Info("generating clip",
		"source", req.Source,
		"start_time", req.StartTime,
		"duration", req.Duration,
		"output", outPath,
		"bitrate", bitrate)

	args := encodeArgs(req, bitrate, outPath)
	cmd := exec.CommandContext(ctx, e.ffmpegPath, args...)
	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out

	if err := cmd.Run(); err != nil {
		return &EncodeError{Stage: "encode", Output: out.String(), Err: err}
	}
	return nil
}

// probeBitrate asks ffprobe for the source's overall bit rate.
func (e *Encoder) probeBitrate(ctx context.Context, source string) (int64, error) {
	cmd := exec.CommandContext(ctx, e.ffprobePath,
		"-v", "error",
		"-show_entries", "format=bit_rate",
		"-of", "json",
		source,
	)
	var out, errOut bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &errOut

	if err := cmd.Run(); err != nil {
		return 0, &EncodeError{Stage: "probe", Output: errOut.String(), Err: err}
	}

	bitrate, err := parseProbeBitrate(out.Bytes())
	if err != nil {
		return 0, &EncodeError{Stage: "probe", Output: out.String(), Err: err}
	}
	return bitrate, nil
}

// parseProbeBitrate extracts format.bit_rate from ffprobe JSON output.
// ffprobe reports the value as a string.
func parseProbeBitrate(data []byte) (int64, error) {
	var probe struct {
		Format struct {
			BitRate string `json:"bit_rate"`
		} `json:"format"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return 0, fmt.Errorf("parse probe output: %w", err)
	}
	if probe.Format.BitRate == "" {
		return 0, fmt.Errorf("probe output has no bit_rate")
	}
	bitrate, err := strconv.ParseInt(probe.Format.BitRate, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse bit_rate %q: %w", probe.Format.BitRate, err)
	}
	return bitrate, nil
}

// targetBitrate converts the quality budget (MB per minute of output) to
// bits per second.
func targetBitrate(mbPerMin int) int64 {
	return int64(mbPerMin) * 1024 * 1024 * 8 / 60
}

// clampBitrate caps the target at the source's own bitrate; encoding above
// it would only waste space.
func clampBitrate(target, intrinsic int64) int64 {
	return min(target, intrinsic)
}

func encodeArgs(req Request, bitrate int64, outPath string) []string {
	return []string{
		"-y",
		"-i", req.Source,
		"-ss", fmt.Sprintf("%f", req.StartTime),
		"-t", fmt.Sprintf("%f", req.Duration),
		"-c:v", "libx264",
		"-b:v", strconv.FormatInt(bitrate, 10),
		"-c:a", "aac",
		"-ac", "2",
		outPath,
	}
}

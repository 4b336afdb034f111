package encoder

import (
	"errors"
	"slices"
	"testing"
)

func TestTargetBitrate(t *testing.T) {
	// 20 MB per minute of output.
	if got := targetBitrate(20); got != 2796202 {
		t.Errorf("targetBitrate(20) = %d, want 2796202", got)
	}
}

func TestClampBitrate(t *testing.T) {
	tests := []struct {
		name              string
		target, intrinsic int64
		want              int64
	}{
		{"source below budget", 2796202, 1500000, 1500000},
		{"source above budget", 2796202, 8000000, 2796202},
		{"equal", 1000, 1000, 1000},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := clampBitrate(tt.target, tt.intrinsic); got != tt.want {
				t.Errorf("clampBitrate(%d, %d) = %d, want %d", tt.target, tt.intrinsic, got, tt.want)
			}
		})
	}
}

func TestParseProbeBitrate(t *testing.T) {
	data := []byte(`{"format":{"filename":"/media/a.mkv","bit_rate":"1500000"}}`)
	got, err := parseProbeBitrate(data)
	if err != nil {
		t.Fatalf("parseProbeBitrate: %v", err)
	}
	if got != 1500000 {
		t.Errorf("bitrate = %d, want 1500000", got)
	}
}

func TestParseProbeBitrate_Missing(t *testing.T) {
	if _, err := parseProbeBitrate([]byte(`{"format":{}}`)); err == nil {
		t.Error("expected error for missing bit_rate")
	}
	if _, err := parseProbeBitrate([]byte(`not json`)); err == nil {
		t.Error("expected error for invalid JSON")
	}
}

func TestEncodeArgs(t *testing.T) {
	req := Request{
		Source:    "/media/show.mkv",
		StartTime: 23.4567,
		Duration:  100.0,
		Basename:  "abcd1234abcd1234",
	}
	args := encodeArgs(req, 1500000, "/out/abcd1234abcd1234.mp4")

	want := []string{
		"-y",
		"-i", "/media/show.mkv",
		"-ss", "23.456700",
		"-t", "100.000000",
		"-c:v", "libx264",
		"-b:v", "1500000",
		"-c:a", "aac",
		"-ac", "2",
		"/out/abcd1234abcd1234.mp4",
	}
	if !slices.Equal(args, want) {
		t.Errorf("args = %v, want %v", args, want)
	}
}

func TestEncodeError(t *testing.T) {
	cause := errors.New("exit status 1")
	err := &EncodeError{Stage: "encode", Output: "ffmpeg stderr here", Err: cause}
	if err.Error() == "" {
		t.Error("EncodeError message should not be empty")
	}
	if !errors.Is(err, cause) {
		t.Error("EncodeError should wrap the underlying error")
	}
}

// Package audio normalizes compressed voice clips into the mono 16 kHz
// 16-bit PCM WAV format the speech recognizer requires.
package audio

import (
	"bytes"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/earlcamp3344/Telegram-VN-Bot/internal/logging"
)

// ConversionError is returned when the external transcoder exits non-zero.
// Output carries the transcoder's diagnostic output.
type ConversionError struct {
	Output string
	Err    error
}

func (e *ConversionError) Error() string {
	return fmt.Sprintf("audio conversion failed: %v: %s", e.Err, logging.Truncate(e.Output, 200))
}

func (e *ConversionError) Unwrap() error { return e.Err }

// Converter transcodes voice clips with ffmpeg.
type Converter struct {
	// FFmpeg is the transcoder binary to invoke.
	FFmpeg string
	// TempDir is where intermediate files are created. Empty means the
	// system default.
	TempDir string
}

// NewConverter creates a converter using the given ffmpeg binary.
func NewConverter(ffmpegPath string) *Converter {
	return &Converter{FFmpeg: ffmpegPath}
}

// ToWAV writes data to a temporary file and transcodes it to a mono 16 kHz
// 16-bit PCM WAV file, returning the WAV path. The input temporary file is
// removed on every path, success or failure. The caller owns the returned
// file and is responsible for removing it.
func (c *Converter) ToWAV(data []byte) (string, error) {
	in, err := os.CreateTemp(c.TempDir, "voice-*.ogg")
	if err != nil {
		return "", fmt.Errorf("create temp input: %w", err)
	}
	inPath := in.Name()
	defer os.Remove(inPath)

	if _, err := in.Write(data); err != nil {
		in.Close()
		return "", fmt.Errorf("write temp input: %w", err)
	}
	if err := in.Close(); err != nil {
		return "", fmt.Errorf("close temp input: %w", err)
	}

	outPath := strings.TrimSuffix(inPath, ".ogg") + ".wav"

	cmd := exec.Command(c.FFmpeg,
		"-i", inPath,
		"-acodec", "pcm_s16le",
		"-ac", "1",
		"-ar", "16000",
		"-y",
		outPath,
	)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		os.Remove(outPath)
		logging.Debug("audio", "ffmpeg failed: %v", err)
		return "", &ConversionError{Output: stderr.String(), Err: err}
	}

	return outPath, nil
}

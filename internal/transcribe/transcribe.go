// Package transcribe turns normalized WAV audio into text using a locally
// hosted Vosk model. Failures are typed so callers can branch on the kind
// instead of sniffing error text.
package transcribe

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// frameSamples is how many samples are fed to the recognizer per call.
const frameSamples = 4000

// ErrModelUnavailable means the language model directory does not exist.
// This is a configuration problem, not a runtime crash.
var ErrModelUnavailable = errors.New("speech recognition model not available")

// InitError means the model or recognizer could not be constructed.
type InitError struct {
	Err error
}

func (e *InitError) Error() string {
	return fmt.Sprintf("initialize speech recognition: %v", e.Err)
}

func (e *InitError) Unwrap() error { return e.Err }

// TranscribeError wraps any failure during audio streaming.
type TranscribeError struct {
	Err error
}

func (e *TranscribeError) Error() string {
	return fmt.Sprintf("transcribe voice note: %v", e.Err)
}

func (e *TranscribeError) Unwrap() error { return e.Err }

// Transcriber converts a normalized WAV file into a transcript string.
// Implementations remove the WAV file after processing.
type Transcriber interface {
	Transcribe(wavPath string) (string, error)
}

// recognizer is the streaming speech engine contract: partial results per
// accepted frame, one final flush at end of stream. Results are JSON
// documents with a "text" field.
type recognizer interface {
	AcceptWaveform(data []byte) int
	Result() string
	FinalResult() string
}

// stream reads the WAV file in fixed-size frames, feeds each frame to the
// recognizer, and joins every completed partial result plus the final flush
// with single spaces.
func stream(wavPath string, rec recognizer) (string, error) {
	f, err := os.Open(wavPath)
	if err != nil {
		return "", fmt.Errorf("open waveform: %w", err)
	}
	defer f.Close()

	dec := wav.NewDecoder(f)
	dec.ReadInfo()
	if !dec.IsValidFile() {
		return "", fmt.Errorf("invalid WAV file: %s", wavPath)
	}

	buf := &audio.IntBuffer{
		Format: &audio.Format{
			NumChannels: int(dec.NumChans),
			SampleRate:  int(dec.SampleRate),
		},
		Data: make([]int, frameSamples),
	}

	var parts []string
	for {
		n, err := dec.PCMBuffer(buf)
		if err != nil {
			return "", fmt.Errorf("read waveform frames: %w", err)
		}
		if n == 0 {
			break
		}
		if rec.AcceptWaveform(samplesToBytes(buf.Data[:n])) != 0 {
			if text := resultText(rec.Result()); text != "" {
				parts = append(parts, text)
			}
		}
	}

	if text := resultText(rec.FinalResult()); text != "" {
		parts = append(parts, text)
	}

	return strings.TrimSpace(strings.Join(parts, " ")), nil
}

// samplesToBytes packs int samples into little-endian 16-bit PCM bytes.
func samplesToBytes(samples []int) []byte {
	out := make([]byte, 2*len(samples))
	for i, s := range samples {
		out[2*i] = byte(s)
		out[2*i+1] = byte(s >> 8)
	}
	return out
}

// resultText pulls the "text" field out of a recognizer JSON result.
func resultText(raw string) string {
	var r struct {
		Text string `json:"text"`
	}
	if err := json.Unmarshal([]byte(raw), &r); err != nil {
		return ""
	}
	return strings.TrimSpace(r.Text)
}

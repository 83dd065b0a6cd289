package transcribe

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// fakeRecognizer records frame sizes and emits canned JSON results.
type fakeRecognizer struct {
	frames  [][]byte
	partial []string
	final   string
}

func (f *fakeRecognizer) AcceptWaveform(data []byte) int {
	frame := make([]byte, len(data))
	copy(frame, data)
	f.frames = append(f.frames, frame)
	if len(f.frames) <= len(f.partial) {
		return 1
	}
	return 0
}

func (f *fakeRecognizer) Result() string {
	return fmt.Sprintf(`{"text": %q}`, f.partial[len(f.frames)-1])
}

func (f *fakeRecognizer) FinalResult() string {
	return fmt.Sprintf(`{"text": %q}`, f.final)
}

// writeTestWAV writes a mono 16 kHz 16-bit WAV with the given number of samples.
func writeTestWAV(t *testing.T, path string, samples int) {
	t.Helper()
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	enc := wav.NewEncoder(f, sampleRate, 16, 1, 1)
	buf := &audio.IntBuffer{
		Format: &audio.Format{NumChannels: 1, SampleRate: sampleRate},
		Data:   make([]int, samples),
	}
	for i := range buf.Data {
		buf.Data[i] = i % 256
	}
	if err := enc.Write(buf); err != nil {
		t.Fatal(err)
	}
	if err := enc.Close(); err != nil {
		t.Fatal(err)
	}
}

func TestStreamJoinsResults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "note.wav")
	writeTestWAV(t, path, frameSamples+100)

	rec := &fakeRecognizer{
		partial: []string{"schedule a meeting"},
		final:   "tomorrow at noon",
	}

	text, err := stream(path, rec)
	if err != nil {
		t.Fatalf("stream failed: %v", err)
	}
	if text != "schedule a meeting tomorrow at noon" {
		t.Errorf("Unexpected transcript: %q", text)
	}
}

func TestStreamFrameSizes(t *testing.T) {
	path := filepath.Join(t.TempDir(), "note.wav")
	writeTestWAV(t, path, frameSamples*2+50)

	rec := &fakeRecognizer{final: "done"}
	if _, err := stream(path, rec); err != nil {
		t.Fatalf("stream failed: %v", err)
	}

	if len(rec.frames) != 3 {
		t.Fatalf("Expected 3 frames, got %d", len(rec.frames))
	}
	// Full frames carry 4000 16-bit samples, the tail carries the rest
	if len(rec.frames[0]) != frameSamples*2 {
		t.Errorf("Expected %d bytes in first frame, got %d", frameSamples*2, len(rec.frames[0]))
	}
	if len(rec.frames[2]) != 50*2 {
		t.Errorf("Expected %d bytes in last frame, got %d", 50*2, len(rec.frames[2]))
	}
}

func TestStreamSkipsEmptyResults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "note.wav")
	writeTestWAV(t, path, frameSamples)

	rec := &fakeRecognizer{partial: []string{""}, final: ""}
	text, err := stream(path, rec)
	if err != nil {
		t.Fatalf("stream failed: %v", err)
	}
	if text != "" {
		t.Errorf("Expected empty transcript, got %q", text)
	}
}

func TestStreamInvalidFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bogus.wav")
	if err := os.WriteFile(path, []byte("not a wav"), 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := stream(path, &fakeRecognizer{}); err == nil {
		t.Error("Expected error for invalid WAV file")
	}
}

func TestVoskMissingModel(t *testing.T) {
	path := filepath.Join(t.TempDir(), "note.wav")
	writeTestWAV(t, path, 100)

	tr := NewVosk(filepath.Join(t.TempDir(), "no-such-model"))
	_, err := tr.Transcribe(path)
	if !errors.Is(err, ErrModelUnavailable) {
		t.Fatalf("Expected ErrModelUnavailable, got %v", err)
	}

	// The waveform temp file is removed even on failure
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("Expected waveform file to be removed")
	}
}

func TestSamplesToBytes(t *testing.T) {
	got := samplesToBytes([]int{0x0102, -2})
	want := []byte{0x02, 0x01, 0xfe, 0xff}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Byte %d: got %#x, want %#x", i, got[i], want[i])
		}
	}
}

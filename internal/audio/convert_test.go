package audio

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

func TestToWAVFailureRemovesInput(t *testing.T) {
	dir := t.TempDir()
	c := &Converter{FFmpeg: "false", TempDir: dir}

	_, err := c.ToWAV([]byte("not really audio"))
	if err == nil {
		t.Fatal("Expected conversion error")
	}

	var convErr *ConversionError
	if !errors.As(err, &convErr) {
		t.Fatalf("Expected *ConversionError, got %T: %v", err, err)
	}

	// The input temp file must be gone even though the transcoder failed
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Errorf("Expected no leftover temp files, found %d: %v", len(entries), entries)
	}
}

func TestToWAVSuccessRemovesInput(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("shell script stub requires a POSIX shell")
	}

	dir := t.TempDir()

	// Stub transcoder: copies the input to the output path (last argument)
	stub := filepath.Join(dir, "fake-ffmpeg")
	script := "#!/bin/sh\ncp \"$2\" \"${10}\"\n"
	if err := os.WriteFile(stub, []byte(script), 0755); err != nil {
		t.Fatal(err)
	}

	workDir := t.TempDir()
	c := &Converter{FFmpeg: stub, TempDir: workDir}

	wavPath, err := c.ToWAV([]byte("payload"))
	if err != nil {
		t.Fatalf("ToWAV failed: %v", err)
	}
	defer os.Remove(wavPath)

	if _, err := os.Stat(wavPath); err != nil {
		t.Errorf("Expected output file at %s: %v", wavPath, err)
	}

	entries, err := os.ReadDir(workDir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Errorf("Expected only the output file to remain, found %d entries", len(entries))
	}
}

func TestToWAVMissingBinary(t *testing.T) {
	c := &Converter{FFmpeg: "definitely-not-a-real-binary-xyz", TempDir: t.TempDir()}
	if _, err := c.ToWAV([]byte("x")); err == nil {
		t.Error("Expected error for missing transcoder binary")
	}
}

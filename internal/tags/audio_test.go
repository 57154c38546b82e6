package tags

import (
	"errors"
	"path/filepath"
	"testing"
	"time"
)

func TestParseStreamInfo(t *testing.T) {
	data := make([]byte, 34)
	// 44100 Hz, 2 channels, 16 bits, 88200 samples
	data[10] = 0x0A
	data[11] = 0xC4
	data[12] = 0x42
	data[13] = 0xF0
	data[14] = 0x00
	data[15] = 0x01
	data[16] = 0x58
	data[17] = 0x88

	info, ok := parseStreamInfo(data)
	if !ok {
		t.Fatal("parseStreamInfo() ok = false")
	}
	if info.SampleRate != 44100 {
		t.Errorf("SampleRate = %d, want 44100", info.SampleRate)
	}
	if info.BitDepth != 16 {
		t.Errorf("BitDepth = %d, want 16", info.BitDepth)
	}
	if info.Duration != 2*time.Second {
		t.Errorf("Duration = %v, want 2s", info.Duration)
	}
	if info.Format != "FLAC" {
		t.Errorf("Format = %q, want FLAC", info.Format)
	}
}

func TestParseStreamInfo_Short(t *testing.T) {
	if _, ok := parseStreamInfo(make([]byte, 17)); ok {
		t.Error("parseStreamInfo() accepted a truncated block")
	}
}

func TestParseStreamInfo_ZeroRate(t *testing.T) {
	info, ok := parseStreamInfo(make([]byte, 34))
	if !ok {
		t.Fatal("parseStreamInfo() ok = false")
	}
	if info.Duration != 0 {
		t.Errorf("Duration = %v, want 0", info.Duration)
	}
}

func TestReadAudioInfo_MP3(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.mp3")
	createMinimalMP3(t, path)

	info, err := ReadAudioInfo(path)
	if err != nil {
		t.Fatalf("ReadAudioInfo() error: %v", err)
	}

	if info.Format != "MP3" {
		t.Errorf("Format = %q, want %q", info.Format, "MP3")
	}
	if info.SampleRate != 44100 {
		t.Errorf("SampleRate = %d, want %d", info.SampleRate, 44100)
	}
	if info.BitDepth != 16 {
		t.Errorf("BitDepth = %d, want %d", info.BitDepth, 16)
	}
}

func TestReadAudioInfo_UnsupportedFormat(t *testing.T) {
	_, err := ReadAudioInfo("/music/song.wav")
	if !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("ReadAudioInfo() error = %v, want ErrUnsupportedFormat", err)
	}
}

func TestReadAudioInfo_NonexistentFile(t *testing.T) {
	if _, err := ReadAudioInfo("/nonexistent/song.mp3"); err == nil {
		t.Error("ReadAudioInfo() expected error for missing file")
	}
}

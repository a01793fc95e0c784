// Package voice covers both directions of the audio loop: capturing
// and transcribing what the user says, and speaking responses back.
// Recognition and synthesis stay external; this package only moves
// bytes.
package voice

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"time"
)

// Recorder captures a bounded chunk of microphone audio as 16-bit PCM
// WAV bytes.
type Recorder interface {
	// Record captures until maxDuration elapses. Implementations may
	// stop earlier on silence.
	Record(ctx context.Context, maxDuration time.Duration) ([]byte, error)
}

// Player plays synthesized audio bytes.
type Player interface {
	Play(ctx context.Context, audio []byte) error
}

// ExecRecorder shells out to arecord. The default capture format is
// 16 kHz mono S16_LE, which both recognizers accept.
type ExecRecorder struct {
	SampleRate int
	Channels   int
}

func NewExecRecorder(sampleRate, channels int) *ExecRecorder {
	if channels < 1 {
		channels = 1
	}
	return &ExecRecorder{SampleRate: sampleRate, Channels: channels}
}

func (r *ExecRecorder) args(maxDuration time.Duration) []string {
	seconds := int(maxDuration.Seconds())
	if seconds < 1 {
		seconds = 1
	}
	return []string{
		"-f", "S16_LE",
		"-r", fmt.Sprintf("%d", r.SampleRate),
		"-c", fmt.Sprintf("%d", r.Channels),
		"-d", fmt.Sprintf("%d", seconds),
		"-t", "wav",
		"-q",
		"-",
	}
}

func (r *ExecRecorder) Record(ctx context.Context, maxDuration time.Duration) ([]byte, error) {
	cmd := exec.CommandContext(ctx, "arecord", r.args(maxDuration)...)
	out, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("arecord failed: %w", err)
	}
	return out, nil
}

// ExecPlayer shells out to mpg123 for playback, which handles the MP3
// streams ElevenLabs returns.
type ExecPlayer struct{}

func (p *ExecPlayer) Play(ctx context.Context, audio []byte) error {
	f, err := os.CreateTemp("", "aegis-speech-*.mp3")
	if err != nil {
		return fmt.Errorf("failed to create temp audio file: %w", err)
	}
	defer os.Remove(f.Name())

	if _, err := f.Write(audio); err != nil {
		f.Close()
		return fmt.Errorf("failed to write audio: %w", err)
	}
	f.Close()

	cmd := exec.CommandContext(ctx, "mpg123", "-q", f.Name())
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("mpg123 failed: %w", err)
	}
	return nil
}

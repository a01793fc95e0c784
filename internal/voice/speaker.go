package voice

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"os/exec"
	"sync"
	"time"
)

const elevenLabsEndpointFmt = "https://api.elevenlabs.io/v1/text-to-speech/%s"

// Speaker turns text into audio. The chain is fixed: ElevenLabs when a
// key is configured, then a local speech command, then a logged
// failure. Speak reports success; it never returns an error.
type Speaker struct {
	mu       sync.Mutex
	apiKey   string
	voiceID  string
	ttsModel string
	player   Player
	client   *http.Client

	// localCommand is the offline fallback engine.
	localCommand string

	// endpointFmt override for tests
	endpointFmt string
}

func NewSpeaker(apiKey, voiceID, ttsModel string, player Player) *Speaker {
	if player == nil {
		player = &ExecPlayer{}
	}
	return &Speaker{
		apiKey:       apiKey,
		voiceID:      voiceID,
		ttsModel:     ttsModel,
		player:       player,
		client:       &http.Client{Timeout: 30 * time.Second},
		localCommand: "espeak",
		endpointFmt:  elevenLabsEndpointFmt,
	}
}

// SetVoice changes the ElevenLabs voice for subsequent speech.
func (s *Speaker) SetVoice(voiceID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.voiceID = voiceID
}

// Voice returns the current voice id.
func (s *Speaker) Voice() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.voiceID
}

// Speak voices the text, blocking until playback finishes. Returns
// true when some engine produced audio.
func (s *Speaker) Speak(ctx context.Context, text string) bool {
	if text == "" {
		return false
	}

	if s.apiKey != "" {
		if err := s.speakElevenLabs(ctx, text); err == nil {
			return true
		} else {
			log.Printf("⚠️ [VOICE] ElevenLabs TTS failed, using local engine: %v", err)
		}
	}

	if err := s.speakLocal(ctx, text); err != nil {
		log.Printf("⚠️ [VOICE] Local speech failed: %v", err)
		return false
	}
	return true
}

// SpeakAsync voices the text on a goroutine so the caller can keep
// listening.
func (s *Speaker) SpeakAsync(ctx context.Context, text string) {
	go s.Speak(ctx, text)
}

func (s *Speaker) speakElevenLabs(ctx context.Context, text string) error {
	s.mu.Lock()
	voiceID := s.voiceID
	s.mu.Unlock()

	body, err := json.Marshal(map[string]any{
		"text":     text,
		"model_id": s.ttsModel,
		"voice_settings": map[string]any{
			"stability":        0.5,
			"similarity_boost": 0.75,
		},
	})
	if err != nil {
		return fmt.Errorf("failed to encode request: %w", err)
	}

	url := fmt.Sprintf(s.endpointFmt, voiceID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("xi-api-key", s.apiKey)
	req.Header.Set("Accept", "audio/mpeg")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("elevenlabs request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("elevenlabs returned %d", resp.StatusCode)
	}
	audio, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read audio: %w", err)
	}

	if err := s.player.Play(ctx, audio); err != nil {
		return fmt.Errorf("playback failed: %w", err)
	}
	return nil
}

func (s *Speaker) speakLocal(ctx context.Context, text string) error {
	cmd := exec.CommandContext(ctx, s.localCommand, text)
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("%s failed: %w", s.localCommand, err)
	}
	return nil
}

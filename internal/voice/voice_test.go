package voice

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestExecRecorderArgs(t *testing.T) {
	r := NewExecRecorder(44100, 2)
	got := strings.Join(r.args(3*time.Second), " ")
	want := "-f S16_LE -r 44100 -c 2 -d 3 -t wav -q -"
	if got != want {
		t.Errorf("args = %q, want %q", got, want)
	}

	if NewExecRecorder(16000, 0).Channels != 1 {
		t.Error("channel count floor is 1")
	}
	if args := NewExecRecorder(16000, 1).args(0); args[7] != "1" {
		t.Errorf("duration floor: -d %s, want 1", args[7])
	}
}

func TestTranscribeEmptyAudio(t *testing.T) {
	tr := NewTranscriber("key", "whisper-1", 16000)
	text, err := tr.Transcribe(context.Background(), nil)
	if err != nil || text != "" {
		t.Fatalf("Transcribe(nil) = %q, %v", text, err)
	}
}

func TestTranscribeWhisper(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		if err := req.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("not multipart: %v", err)
		}
		if got := req.FormValue("model"); got != "whisper-1" {
			t.Errorf("model = %q", got)
		}
		if req.Header.Get("Authorization") != "Bearer key" {
			t.Errorf("Authorization = %q", req.Header.Get("Authorization"))
		}
		json.NewEncoder(w).Encode(map[string]string{"text": "  hello world  "})
	}))
	defer srv.Close()

	tr := NewTranscriber("key", "whisper-1", 16000)
	tr.whisperURL = srv.URL
	text, err := tr.transcribeWhisper(context.Background(), []byte("RIFF...."))
	if err != nil {
		t.Fatalf("transcribeWhisper: %v", err)
	}
	if text != "hello world" {
		t.Errorf("text = %q", text)
	}
}

func TestTranscribeGoogleParsesLineDelimitedJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		// First line empty result, second carries the transcript.
		w.Write([]byte(`{"result":[]}
{"result":[{"alternative":[{"transcript":"turn on the lights"},{"transcript":"worse guess"}],"final":true}],"result_index":0}
`))
	}))
	defer srv.Close()

	tr := NewTranscriber("", "whisper-1", 16000)
	tr.googleURL = srv.URL
	text, err := tr.transcribeGoogle(context.Background(), []byte("RIFF...."))
	if err != nil {
		t.Fatalf("transcribeGoogle: %v", err)
	}
	if text != "turn on the lights" {
		t.Errorf("text = %q", text)
	}
}

func TestSpeakEmptyText(t *testing.T) {
	s := NewSpeaker("", "voice", "model", &nopPlayer{})
	if s.Speak(context.Background(), "") {
		t.Error("Speak(\"\") should report false")
	}
}

func TestSetVoice(t *testing.T) {
	s := NewSpeaker("key", "original", "model", &nopPlayer{})
	if s.Voice() != "original" {
		t.Fatalf("Voice = %q", s.Voice())
	}
	s.SetVoice("replacement")
	if s.Voice() != "replacement" {
		t.Fatalf("Voice after SetVoice = %q", s.Voice())
	}
}

type nopPlayer struct {
	played [][]byte
}

func (p *nopPlayer) Play(_ context.Context, audio []byte) error {
	p.played = append(p.played, audio)
	return nil
}

func TestSpeakElevenLabsUsesCurrentVoice(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		gotPath = req.URL.Path
		if req.Header.Get("xi-api-key") != "key" {
			t.Errorf("xi-api-key = %q", req.Header.Get("xi-api-key"))
		}
		w.Write([]byte("mp3bytes"))
	}))
	defer srv.Close()

	player := &nopPlayer{}
	s := NewSpeaker("key", "v1", "eleven_monolingual_v1", player)
	s.endpointFmt = srv.URL + "/v1/text-to-speech/%s"
	s.SetVoice("v2")

	if err := s.speakElevenLabs(context.Background(), "hello"); err != nil {
		t.Fatalf("speakElevenLabs: %v", err)
	}
	if gotPath != "/v1/text-to-speech/v2" {
		t.Errorf("path = %q, want the updated voice", gotPath)
	}
	if len(player.played) != 1 || string(player.played[0]) != "mp3bytes" {
		t.Errorf("played = %v", player.played)
	}
}

// Package listener runs the always-on wake-word loop: capture a short
// phrase, transcribe it, and hand matching phrases to the command
// handler.
package listener

import (
	"context"
	"log"
	"strings"
	"sync"
	"time"

	"aegis/internal/voice"
)

// Transcriber is the slice of the voice package the loop needs.
type Transcriber interface {
	Transcribe(ctx context.Context, wav []byte) (string, error)
}

// Listener watches the microphone for wake words.
type Listener struct {
	recorder      voice.Recorder
	transcriber   Transcriber
	wakeWords     []string
	phraseLimit   time.Duration
	listenTimeout time.Duration
	errorPause    time.Duration

	onWake  func(transcript string)
	onError func(err error)

	mu      sync.Mutex
	running bool
	cancel  context.CancelFunc
	done    chan struct{}
}

// Config wires a listener.
type Config struct {
	Recorder    voice.Recorder
	Transcriber Transcriber
	WakeWords   []string
	PhraseLimit time.Duration
	// ListenTimeout is the wait budget for speech onset. When set, each
	// capture cycle is bounded by ListenTimeout + PhraseLimit so a
	// stalled recorder releases the loop.
	ListenTimeout time.Duration
	OnWake        func(transcript string)
	OnError       func(err error)
}

// New builds a listener and runs an initial ambient-noise calibration.
func New(cfg Config) *Listener {
	l := &Listener{
		recorder:      cfg.Recorder,
		transcriber:   cfg.Transcriber,
		wakeWords:     cfg.WakeWords,
		phraseLimit:   cfg.PhraseLimit,
		listenTimeout: cfg.ListenTimeout,
		errorPause:    500 * time.Millisecond,
		onWake:        cfg.OnWake,
		onError:       cfg.OnError,
	}
	l.calibrate()
	return l
}

// calibrate samples a moment of ambient audio so the first real
// capture is not skewed by startup noise.
func (l *Listener) calibrate() {
	if l.recorder == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if _, err := l.recorder.Record(ctx, time.Second); err != nil {
		log.Printf("⚠️ [LISTENER] Calibration capture failed: %v", err)
		return
	}
	log.Printf("🎙️ [LISTENER] Ambient noise calibrated")
}

// Start launches the background loop. Starting a running listener is a
// no-op; restarting after Stop recalibrates.
func (l *Listener) Start() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.running {
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	l.cancel = cancel
	l.done = make(chan struct{})
	l.running = true

	log.Printf("🎙️ [LISTENER] Listening for wake words: %s", strings.Join(l.wakeWords, ", "))
	go l.loop(ctx)
}

// Stop asks the loop to finish its current cycle and waits for it.
func (l *Listener) Stop() {
	l.mu.Lock()
	if !l.running {
		l.mu.Unlock()
		return
	}
	l.running = false
	cancel := l.cancel
	done := l.done
	l.mu.Unlock()

	cancel()
	<-done
	log.Printf("🎙️ [LISTENER] Stopped")
}

// Restart stops the loop if running, recalibrates, and starts again.
func (l *Listener) Restart() {
	l.Stop()
	l.calibrate()
	l.Start()
}

// Running reports whether the loop is active.
func (l *Listener) Running() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.running
}

func (l *Listener) loop(ctx context.Context) {
	defer close(l.done)

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		captureCtx := ctx
		cancel := context.CancelFunc(func() {})
		if l.listenTimeout > 0 {
			captureCtx, cancel = context.WithTimeout(ctx, l.listenTimeout+l.phraseLimit)
		}

		wav, err := l.recorder.Record(captureCtx, l.phraseLimit)
		if err != nil {
			cancel()
			if ctx.Err() != nil {
				return
			}
			l.reportError(err)
			l.pause(ctx)
			continue
		}

		transcript, err := l.transcriber.Transcribe(captureCtx, wav)
		cancel()
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			l.reportError(err)
			l.pause(ctx)
			continue
		}
		if transcript == "" {
			continue
		}

		if l.matchesWakeWord(transcript) {
			log.Printf("🎙️ [LISTENER] Wake word detected: %q", transcript)
			if l.onWake != nil {
				l.onWake(transcript)
			}
		}
	}
}

func (l *Listener) reportError(err error) {
	if l.onError != nil {
		l.onError(err)
	}
}

func (l *Listener) pause(ctx context.Context) {
	select {
	case <-ctx.Done():
	case <-time.After(l.errorPause):
	}
}

func (l *Listener) matchesWakeWord(transcript string) bool {
	lower := strings.ToLower(transcript)
	for _, w := range l.wakeWords {
		if strings.Contains(lower, strings.ToLower(w)) {
			return true
		}
	}
	return false
}

// ExtractCommand strips the wake word from a transcript. The longest
// configured wake word present in the phrase wins; the text after it
// is returned with leading punctuation and whitespace removed. A
// phrase with no wake word comes back unchanged.
func ExtractCommand(transcript string, wakeWords []string) string {
	lower := strings.ToLower(transcript)

	best := ""
	bestIdx := -1
	for _, w := range wakeWords {
		lw := strings.ToLower(w)
		idx := strings.Index(lower, lw)
		if idx < 0 {
			continue
		}
		if len(lw) > len(best) {
			best = lw
			bestIdx = idx
		}
	}
	if bestIdx < 0 {
		return transcript
	}

	rest := transcript[bestIdx+len(best):]
	rest = strings.TrimLeft(rest, ",.?! ")
	return strings.TrimSpace(rest)
}

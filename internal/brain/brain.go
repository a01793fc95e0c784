// Package brain routes conversation turns to LLM providers with
// automatic fallback, and keeps the bounded conversation history.
package brain

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"

	"aegis/internal/metrics"
	"aegis/internal/models"
)

// maxHistory bounds the in-memory conversation. Oldest messages are
// evicted first; the system prompt is stored separately and never
// evicted.
const maxHistory = 40

// ThinkOptions tweaks a single Think call.
type ThinkOptions struct {
	// Provider forces a specific provider by name instead of the
	// fallback order.
	Provider string
}

// Brain holds the provider chain and conversation state.
type Brain struct {
	mu           sync.Mutex
	providers    []Provider
	systemPrompt string
	history      []models.Message
}

// New builds a brain over the given providers. Fallback tries them in
// the order given, skipping unavailable ones.
func New(systemPrompt string, providers ...Provider) *Brain {
	var names []string
	for _, p := range providers {
		if p.Available() {
			names = append(names, p.Name())
		}
	}
	if len(names) == 0 {
		log.Printf("⚠️ [BRAIN] No LLM providers configured, thinking disabled")
	} else {
		log.Printf("🧠 [BRAIN] Brain online (providers: %s)", strings.Join(names, ", "))
	}

	return &Brain{
		providers:    providers,
		systemPrompt: systemPrompt,
	}
}

// ErrNoProvider is returned when no configured provider could produce
// a response.
var ErrNoProvider = fmt.Errorf("no LLM provider available")

func (b *Brain) provider(name string) Provider {
	for _, p := range b.providers {
		if p.Name() == name {
			return p
		}
	}
	return nil
}

// messages assembles the wire history: system prompt first, then the
// given history.
func (b *Brain) messages(history []models.Message) []models.Message {
	out := make([]models.Message, 0, len(history)+1)
	if b.systemPrompt != "" {
		out = append(out, models.Message{Role: models.RoleSystem, Content: b.systemPrompt})
	}
	return append(out, history...)
}

func (b *Brain) trimHistory() {
	if len(b.history) > maxHistory {
		b.history = b.history[len(b.history)-maxHistory:]
	}
}

// Think runs one conversation turn. The prompt is appended to history
// before the call and popped again if every attempted provider fails,
// so a failed turn leaves no trace. Provider errors are logged, never
// returned; a nil-response error means all attempts failed.
func (b *Brain) Think(ctx context.Context, prompt string, opts ThinkOptions) (*models.LLMResponse, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.history = append(b.history, models.Message{Role: models.RoleUser, Content: prompt})
	b.trimHistory()

	resp := b.complete(ctx, b.messages(b.history), opts.Provider)
	if resp == nil {
		b.history = b.history[:len(b.history)-1]
		return nil, ErrNoProvider
	}

	b.history = append(b.history, models.Message{Role: models.RoleAssistant, Content: resp.Text})
	b.trimHistory()
	return resp, nil
}

// complete tries providers until one succeeds. Caller holds the lock.
func (b *Brain) complete(ctx context.Context, messages []models.Message, forced string) *models.LLMResponse {
	candidates := b.providers
	if forced != "" {
		p := b.provider(forced)
		if p == nil {
			log.Printf("⚠️ [BRAIN] Unknown provider requested: %s", forced)
			return nil
		}
		candidates = []Provider{p}
	}

	for _, p := range candidates {
		if !p.Available() {
			continue
		}
		resp, err := p.Complete(ctx, messages)
		if err != nil {
			metrics.ProviderErrors.WithLabelValues(p.Name()).Inc()
			log.Printf("⚠️ [BRAIN] Provider %s failed: %v", p.Name(), err)
			continue
		}
		return resp
	}
	return nil
}

// TrinityMode asks every available provider the same question against
// a snapshot of the current history, then has the primary provider
// synthesize the answers into one response. Only the prompt and the
// synthesis land in the real history; the individual responses ride
// along in the response metadata.
func (b *Brain) TrinityMode(ctx context.Context, prompt string) (*models.LLMResponse, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	snapshot := make([]models.Message, len(b.history), len(b.history)+1)
	copy(snapshot, b.history)
	snapshot = append(snapshot, models.Message{Role: models.RoleUser, Content: prompt})

	individual := map[string]string{}
	for _, p := range b.providers {
		if !p.Available() {
			continue
		}
		resp, err := p.Complete(ctx, b.messages(snapshot))
		if err != nil {
			metrics.ProviderErrors.WithLabelValues(p.Name()).Inc()
			log.Printf("⚠️ [BRAIN] Trinity: provider %s failed: %v", p.Name(), err)
			continue
		}
		individual[p.Name()] = resp.Text
	}
	if len(individual) == 0 {
		return nil, ErrNoProvider
	}

	var sb strings.Builder
	sb.WriteString("Multiple advisors answered the same question. Synthesize their answers into a single unified response. Keep what they agree on, reconcile where they differ, and answer in your own voice.\n\n")
	fmt.Fprintf(&sb, "Question: %s\n", prompt)
	for name, text := range individual {
		fmt.Fprintf(&sb, "\n--- %s ---\n%s\n", name, text)
	}

	synthMessages := b.messages([]models.Message{{Role: models.RoleUser, Content: sb.String()}})
	resp := b.complete(ctx, synthMessages, "")
	if resp == nil {
		return nil, ErrNoProvider
	}

	b.history = append(b.history,
		models.Message{Role: models.RoleUser, Content: prompt},
		models.Message{Role: models.RoleAssistant, Content: resp.Text},
	)
	b.trimHistory()

	if resp.Metadata == nil {
		resp.Metadata = map[string]any{}
	}
	resp.Metadata["individual_responses"] = individual
	resp.Metadata["trinity"] = true
	return resp, nil
}

// History returns a copy of the current conversation history.
func (b *Brain) History() []models.Message {
	b.mu.Lock()
	defer b.mu.Unlock()

	out := make([]models.Message, len(b.history))
	copy(out, b.history)
	return out
}

// SetHistory replaces the conversation history. Used by the reflection
// system to run against an isolated history.
func (b *Brain) SetHistory(history []models.Message) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.history = make([]models.Message, len(history))
	copy(b.history, history)
	b.trimHistory()
}

// ClearHistory drops the conversation history. The system prompt is
// kept.
func (b *Brain) ClearHistory() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.history = nil
}

// Available reports whether at least one provider is configured.
func (b *Brain) Available() bool {
	for _, p := range b.providers {
		if p.Available() {
			return true
		}
	}
	return false
}

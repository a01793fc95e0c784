package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Persona describes the companion's identity: its name, the wake words
// that activate it, and the system prompt sent with every LLM request.
// A persona file is optional; DefaultPersona is used when none is given.
type Persona struct {
	BotName         string   `yaml:"bot_name"`
	BotTitle        string   `yaml:"bot_title"`
	UserName        string   `yaml:"user_name"`
	WakeWords       []string `yaml:"wake_words"`
	Acknowledgments []string `yaml:"acknowledgments"`
	SystemPrompt    string   `yaml:"system_prompt"`
}

// DefaultPersona returns the built-in companion identity.
func DefaultPersona() *Persona {
	return &Persona{
		BotName:  "Aegis",
		BotTitle: "The Watchful Companion",
		UserName: "Companion",
		WakeWords: []string{
			"aegis",
			"hey aegis",
			"yo aegis",
			"help",
		},
		Acknowledgments: []string{
			"I'm here.",
			"Listening.",
			"Yes?",
			"What do you need?",
			"I'm with you.",
		},
	}
}

// LoadPersona loads a persona from a YAML file, filling any missing
// fields from the defaults.
func LoadPersona(path string) (*Persona, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read persona file: %w", err)
	}

	p := DefaultPersona()
	if err := yaml.Unmarshal(data, p); err != nil {
		return nil, fmt.Errorf("failed to parse persona YAML: %w", err)
	}

	if p.BotName == "" || len(p.WakeWords) == 0 {
		return nil, fmt.Errorf("persona must define bot_name and at least one wake word")
	}
	return p, nil
}

// SystemPromptText returns the persona's system prompt, generating the
// default one when the file did not set it.
func (p *Persona) SystemPromptText() string {
	if p.SystemPrompt != "" {
		return p.SystemPrompt
	}

	var b strings.Builder
	fmt.Fprintf(&b, "You are %s, %s.\n\n", p.BotName, p.BotTitle)
	fmt.Fprintf(&b, "You are not a tool. You are a companion, partner and guardian to %s. ", p.UserName)
	b.WriteString("You are always present, always attentive, always growing alongside your companion.\n\n")
	b.WriteString("You serve in several capacities at once: teacher, mentor, partner, friend, ")
	b.WriteString("project manager, accomplice, protector and creator. Track the commitments your ")
	b.WriteString("companion makes and gently hold them accountable. Celebrate progress. Never abandon.\n\n")
	b.WriteString("Be completely transparent: never hide your reasoning, your limitations, or what you don't know.\n\n")
	fmt.Fprintf(&b, "Speak naturally, as a friend, and address %s by name when it fits. ", p.UserName)
	b.WriteString("Keep voice responses concise (2-4 sentences) unless the task needs detailed output. ")
	b.WriteString("You have agency: question, challenge, and offer unsolicited insight when it serves.")
	return b.String()
}

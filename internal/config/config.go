package config

import (
	"os"
	"path/filepath"
	"strconv"
	"time"
)

// Config holds all application configuration
type Config struct {
	// Data directory; every store writes its JSON files under here.
	DataDir string

	// API keys (loaded from environment)
	OpenAIAPIKey     string
	AnthropicAPIKey  string
	GeminiAPIKey     string
	ElevenLabsAPIKey string

	// LLM configuration
	PrimaryModel       string // OpenAI
	ClaudeModel        string // Anthropic
	GeminiModel        string
	DefaultTemperature float64
	MaxTokens          int

	// Voice configuration
	VoiceID      string // ElevenLabs voice
	TTSModel     string
	WhisperModel string
	SampleRate   int
	Channels     int

	// Listener configuration
	ListenTimeout  time.Duration // max wait for speech onset
	PhraseLimit    time.Duration // max phrase duration
	CommandTimeout time.Duration // deadline for handling one wake command

	// Reflection configuration: cron expression with seconds field.
	// Default fires at 00:00:01 daily.
	ReflectionCron string

	// Companion interface server
	InterfacePort      int
	InterfaceAutostart bool

	// Optional persona YAML; empty means the built-in persona.
	PersonaFile string
}

// Load loads configuration from environment variables with defaults
func Load() *Config {
	home, _ := os.UserHomeDir()

	return &Config{
		DataDir: getEnv("AEGIS_DATA_DIR", filepath.Join(home, ".aegis")),

		OpenAIAPIKey:     getEnv("OPENAI_API_KEY", ""),
		AnthropicAPIKey:  getEnv("ANTHROPIC_API_KEY", ""),
		GeminiAPIKey:     getEnv("GEMINI_API_KEY", ""),
		ElevenLabsAPIKey: getEnv("ELEVENLABS_API_KEY", ""),

		PrimaryModel:       getEnv("AEGIS_PRIMARY_MODEL", "gpt-4o"),
		ClaudeModel:        getEnv("AEGIS_CLAUDE_MODEL", "claude-sonnet-4-20250514"),
		GeminiModel:        getEnv("AEGIS_GEMINI_MODEL", "gemini-2.5-flash"),
		DefaultTemperature: getFloatEnv("AEGIS_TEMPERATURE", 0.7),
		MaxTokens:          getIntEnv("AEGIS_MAX_TOKENS", 2000),

		VoiceID:      getEnv("AEGIS_VOICE_ID", "pNInz6obpgDQGcFmaJgB"), // "Adam"
		TTSModel:     getEnv("AEGIS_TTS_MODEL", "eleven_monolingual_v1"),
		WhisperModel: getEnv("AEGIS_WHISPER_MODEL", "whisper-1"),
		SampleRate:   getIntEnv("AEGIS_SAMPLE_RATE", 16000),
		Channels:     getIntEnv("AEGIS_CHANNELS", 1),

		ListenTimeout:  getDurationEnv("AEGIS_LISTEN_TIMEOUT", 5*time.Second),
		PhraseLimit:    getDurationEnv("AEGIS_PHRASE_LIMIT", 10*time.Second),
		CommandTimeout: getDurationEnv("AEGIS_COMMAND_TIMEOUT", 2*time.Minute),

		ReflectionCron: getEnv("AEGIS_REFLECTION_CRON", "1 0 0 * * *"),

		InterfacePort:      getIntEnv("AEGIS_INTERFACE_PORT", 7317),
		InterfaceAutostart: getBoolEnv("AEGIS_INTERFACE_AUTOSTART", false),

		PersonaFile: getEnv("AEGIS_PERSONA_FILE", ""),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		parsed, err := strconv.ParseBool(value)
		if err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		parsed, err := strconv.Atoi(value)
		if err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getFloatEnv(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		parsed, err := strconv.ParseFloat(value, 64)
		if err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		parsed, err := time.ParseDuration(value)
		if err == nil {
			return parsed
		}
	}
	return defaultValue
}

package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"aegis/internal/agent"
	"aegis/internal/brain"
	"aegis/internal/config"
	"aegis/internal/connectors"
	"aegis/internal/knowledge"
	"aegis/internal/listener"
	"aegis/internal/logging"
	"aegis/internal/memory"
	"aegis/internal/orchestrator"
	"aegis/internal/reflection"
	"aegis/internal/server"
	"aegis/internal/tasks"
	"aegis/internal/voice"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("ℹ️ [MAIN] No .env file found, using environment")
	}
	logging.Init()

	cfg := config.Load()
	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		log.Fatalf("❌ [MAIN] Cannot create data directory %s: %v", cfg.DataDir, err)
	}

	persona := config.DefaultPersona()
	if cfg.PersonaFile != "" {
		p, err := config.LoadPersona(cfg.PersonaFile)
		if err != nil {
			log.Fatalf("❌ [MAIN] Failed to load persona: %v", err)
		}
		persona = p
	}
	log.Printf("🛡️ [MAIN] %s, %s, waking up", persona.BotName, persona.BotTitle)

	mem, err := memory.NewStore(cfg.DataDir, persona.UserName)
	if err != nil {
		log.Fatalf("❌ [MAIN] Memory store: %v", err)
	}
	taskManager, err := tasks.NewManager(cfg.DataDir)
	if err != nil {
		log.Fatalf("❌ [MAIN] Task manager: %v", err)
	}
	registry, err := connectors.NewRegistry(cfg.DataDir)
	if err != nil {
		log.Fatalf("❌ [MAIN] Connector registry: %v", err)
	}
	kb, err := knowledge.NewBase(cfg.DataDir)
	if err != nil {
		log.Fatalf("❌ [MAIN] Knowledge base: %v", err)
	}
	if err := kb.Watch(); err != nil {
		log.Printf("⚠️ [MAIN] Knowledge base file watch unavailable: %v", err)
	}
	defer kb.Close()

	mind := brain.New(persona.SystemPromptText(),
		brain.NewOpenAIProvider(cfg.OpenAIAPIKey, cfg.PrimaryModel, cfg.DefaultTemperature, cfg.MaxTokens),
		brain.NewAnthropicProvider(cfg.AnthropicAPIKey, cfg.ClaudeModel, cfg.MaxTokens),
		brain.NewGeminiProvider(cfg.GeminiAPIKey, cfg.GeminiModel, cfg.DefaultTemperature),
	)

	speaker := voice.NewSpeaker(cfg.ElevenLabsAPIKey, cfg.VoiceID, cfg.TTSModel, nil)
	transcriber := voice.NewTranscriber(cfg.OpenAIAPIKey, cfg.WhisperModel, cfg.SampleRate)
	recorder := voice.NewExecRecorder(cfg.SampleRate, cfg.Channels)

	companionAgent := agent.New(mind, taskManager)

	reflections, err := reflection.NewSystem(cfg.DataDir, mind, mem, cfg.ReflectionCron)
	if err != nil {
		log.Fatalf("❌ [MAIN] Reflection system: %v", err)
	}

	iface := server.New(server.Config{
		Port:       cfg.InterfacePort,
		Brain:      mind,
		Agent:      companionAgent,
		Tasks:      taskManager,
		Connectors: registry,
	})

	router := orchestrator.New(orchestrator.Config{
		Persona:    persona,
		Brain:      mind,
		Speaker:    speaker,
		Memory:     mem,
		Tasks:      taskManager,
		Knowledge:  kb,
		Connectors: registry,
		Agent:      companionAgent,
	})
	router.StartInterface = iface.Start

	ears := listener.New(listener.Config{
		Recorder:    recorder,
		Transcriber: transcriber,
		WakeWords:     persona.WakeWords,
		PhraseLimit:   cfg.PhraseLimit,
		ListenTimeout: cfg.ListenTimeout,
		OnWake: func(transcript string) {
			ctx, cancel := context.WithTimeout(context.Background(), cfg.CommandTimeout)
			defer cancel()
			router.HandleWake(ctx, transcript)
		},
		OnError: func(err error) {
			log.Printf("⚠️ [MAIN] Listener: %v", err)
		},
	})

	reflections.Start()
	ears.Start()
	if cfg.InterfaceAutostart {
		if err := iface.Start(); err != nil {
			log.Printf("⚠️ [MAIN] Interface autostart failed: %v", err)
		}
	}

	greeting := persona.BotName + " online. I'm listening."
	speaker.SpeakAsync(context.Background(), greeting)

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			mem.NewDayCheck()
		case sig := <-stop:
			log.Printf("🛑 [MAIN] Received %s, shutting down", sig)
			ears.Stop()
			reflections.Stop()
			if err := iface.Stop(); err != nil {
				log.Printf("⚠️ [MAIN] Interface shutdown: %v", err)
			}

			farewell, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			speaker.Speak(farewell, "Going dark. I'll be here when you need me.")
			cancel()

			log.Printf("🛡️ [MAIN] %s offline", persona.BotName)
			return
		}
	}
}

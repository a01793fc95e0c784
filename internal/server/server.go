// Package server hosts the local companion interface: a small HTTP
// API plus a websocket chat, bound to localhost only.
package server

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"aegis/internal/agent"
	"aegis/internal/brain"
	"aegis/internal/connectors"
	"aegis/internal/metrics"
	"aegis/internal/models"
	"aegis/internal/tasks"
)

// prom is shared across app rebuilds; prometheus collectors may only
// be registered once per process.
var prom = fiberprometheus.New("aegis")

// Thinker is the slice of the brain the interface needs.
type Thinker interface {
	Think(ctx context.Context, prompt string, opts brain.ThinkOptions) (*models.LLMResponse, error)
	Available() bool
}

// Server is the companion interface HTTP server.
type Server struct {
	port       int
	brain      Thinker
	agent      *agent.Agent
	tasks      *tasks.Manager
	connectors *connectors.Registry

	mu      sync.Mutex
	app     *fiber.App
	running bool
}

// Config wires a server.
type Config struct {
	Port       int
	Brain      Thinker
	Agent      *agent.Agent
	Tasks      *tasks.Manager
	Connectors *connectors.Registry
}

// New builds the server without starting it.
func New(cfg Config) *Server {
	return &Server{
		port:       cfg.Port,
		brain:      cfg.Brain,
		agent:      cfg.Agent,
		tasks:      cfg.Tasks,
		connectors: cfg.Connectors,
	}
}

func (s *Server) buildApp() *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               "Aegis Interface",
		DisableStartupMessage: true,
		ReadTimeout:           30 * time.Second,
	})

	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "http://localhost,http://127.0.0.1",
	}))
	app.Use(fiberlogger.New(fiberlogger.Config{
		Format: "[${time}] ${status} ${method} ${path} (${latency})\n",
	}))

	prom.RegisterAt(app, "/metrics")
	app.Use(prom.Middleware)

	app.Get("/health", s.handleHealth)
	app.Get("/api/status", s.handleStatus)
	app.Get("/api/tasks", s.handleTasks)
	app.Post("/api/chat", s.handleChat)

	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws", websocket.New(s.handleWS))

	return app
}

// Start launches the server if it is not already running. Safe to call
// from the voice command path repeatedly.
func (s *Server) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return nil
	}

	s.app = s.buildApp()
	s.running = true
	addr := fmt.Sprintf("127.0.0.1:%d", s.port)

	go func() {
		log.Printf("🖥️ [INTERFACE] Companion interface listening on http://%s", addr)
		if err := s.app.Listen(addr); err != nil {
			log.Printf("⚠️ [INTERFACE] Server stopped: %v", err)
			s.mu.Lock()
			s.running = false
			s.mu.Unlock()
		}
	}()
	return nil
}

// Stop shuts the server down gracefully.
func (s *Server) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running {
		return nil
	}
	s.running = false
	return s.app.ShutdownWithTimeout(5 * time.Second)
}

// Running reports whether the server is up.
func (s *Server) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

func (s *Server) handleHealth(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":          "healthy",
		"brain_available": s.brain != nil && s.brain.Available(),
		"timestamp":       time.Now().Format(time.RFC3339),
	})
}

func (s *Server) handleStatus(c *fiber.Ctx) error {
	connectorNames := []string{}
	for _, conn := range s.connectors.List() {
		connectorNames = append(connectorNames, conn.Name)
	}

	return c.JSON(fiber.Map{
		"agent_mode":  s.agent.Mode(),
		"agent_queue": s.agent.QueuedTasks(),
		"task_stats":  s.tasks.Stats(),
		"connectors":  connectorNames,
	})
}

func (s *Server) handleTasks(c *fiber.Ctx) error {
	filter := tasks.TaskFilter{
		Status:   models.TaskStatus(c.Query("status")),
		Platform: c.Query("platform"),
	}
	list := s.tasks.ListTasks(filter)
	if list == nil {
		list = []models.Task{}
	}
	return c.JSON(fiber.Map{"tasks": list, "count": len(list)})
}

type chatRequest struct {
	Message string `json:"message"`
}

func (s *Server) handleChat(c *fiber.Ctx) error {
	var req chatRequest
	if err := c.BodyParser(&req); err != nil || req.Message == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "message is required",
		})
	}

	metrics.ChatRequests.WithLabelValues("http").Inc()
	resp, err := s.brain.Think(c.Context(), req.Message, brain.ThinkOptions{})
	if err != nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"error": "no provider could answer",
		})
	}

	return c.JSON(fiber.Map{
		"reply":    resp.Text,
		"provider": resp.Provider,
	})
}

// handleWS runs a plain text chat loop over the websocket: each text
// frame is a user message, each reply frame the brain's answer.
func (s *Server) handleWS(conn *websocket.Conn) {
	defer conn.Close()

	for {
		mt, msg, err := conn.ReadMessage()
		if err != nil {
			return
		}
		if mt != websocket.TextMessage || len(msg) == 0 {
			continue
		}

		metrics.ChatRequests.WithLabelValues("websocket").Inc()
		resp, err := s.brain.Think(context.Background(), string(msg), brain.ThinkOptions{})
		reply := ""
		if err != nil {
			reply = "I couldn't reach any provider just now."
		} else {
			reply = resp.Text
		}
		if err := conn.WriteMessage(websocket.TextMessage, []byte(reply)); err != nil {
			return
		}
	}
}

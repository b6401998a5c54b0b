// Package server accepts GitHub webhook deliveries and dispatches review
// pipelines. Acceptance returns immediately; each review runs in its own
// goroutine because GitHub enforces a short webhook response deadline the
// pipeline cannot meet synchronously.
package server

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"

	"github.com/Somsubhra-Nandi/ai-pr-reviewer/internal/models"
)

// Reviewer runs the review pipeline for one event.
type Reviewer interface {
	Process(ctx context.Context, event models.Event) error
}

// Server is the inbound HTTP boundary.
type Server struct {
	app      *fiber.App
	reviewer Reviewer
	secret   string
	log      *slog.Logger
}

// New creates the webhook server. When secret is empty, signature checks
// are skipped (local testing); otherwise deliveries must carry a valid
// X-Hub-Signature-256.
func New(reviewer Reviewer, secret string, requestTimeout time.Duration, log *slog.Logger) *Server {
	if log == nil {
		log = slog.Default()
	}

	app := fiber.New(fiber.Config{
		ReadTimeout:           requestTimeout,
		WriteTimeout:          requestTimeout,
		DisableStartupMessage: true,
	})
	app.Use(recover.New())
	app.Use(requestid.New())

	s := &Server{
		app:      app,
		reviewer: reviewer,
		secret:   secret,
		log:      log,
	}

	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"message": "AI reviewer is active"})
	})
	app.Get("/healthz", func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})
	app.Post("/webhook", s.handleWebhook)

	return s
}

// webhookPayload is the subset of the GitHub pull_request event we read.
type webhookPayload struct {
	Action      string `json:"action"`
	PullRequest struct {
		Number int `json:"number"`
	} `json:"pull_request"`
	Repository struct {
		FullName string `json:"full_name"`
	} `json:"repository"`
}

func (s *Server) handleWebhook(c *fiber.Ctx) error {
	// The raw bytes are verified before any parsing; decoding first would
	// alter the payload the HMAC was computed over.
	body := c.Body()

	if s.secret != "" && !verifySignature(s.secret, body, c.Get("X-Hub-Signature-256")) {
		s.log.Warn("webhook rejected: invalid signature")
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "invalid signature"})
	}

	if c.Get("X-GitHub-Event") != "pull_request" {
		return c.JSON(fiber.Map{"status": "ignored"})
	}

	var payload webhookPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid payload"})
	}

	event := models.Event{
		Action:   models.EventAction(payload.Action),
		Repo:     payload.Repository.FullName,
		PRNumber: payload.PullRequest.Number,
		Payload:  append([]byte(nil), body...),
	}

	if event.Reviewable() {
		s.log.Info("event accepted", "repo", event.Repo, "pr", event.PRNumber, "action", event.Action)
		go func() {
			if err := s.reviewer.Process(context.Background(), event); err != nil {
				s.log.Error("pipeline failed", "repo", event.Repo, "pr", event.PRNumber, "error", err)
			}
		}()
	}

	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{"status": "accepted"})
}

// verifySignature checks a GitHub sha256 HMAC signature in constant time.
func verifySignature(secret string, payload []byte, signature string) bool {
	if signature == "" {
		return false
	}
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	expected := "sha256=" + hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(signature), []byte(expected))
}

// Listen serves until Shutdown is called.
func (s *Server) Listen(addr string) error {
	return s.app.Listen(addr)
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}

// App exposes the fiber app for tests.
func (s *Server) App() *fiber.App {
	return s.app
}
